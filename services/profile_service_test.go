package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"race-wager-system/models"
)

func TestCreateProfileValidation(t *testing.T) {
	rig := newTestRig(t)

	cases := []struct {
		username string
		wantErr  error
	}{
		{"", ErrUsernameEmpty},
		{"   ", ErrUsernameEmpty},
		{strings.Repeat("x", 33), ErrUsernameTooLong},
		{"bad name", ErrInvalidUsernameChars},
		{"bad!name", ErrInvalidUsernameChars},
		{"пилот", ErrInvalidUsernameChars},
		// 20 characters but 40 bytes: charset failure, not length.
		{strings.Repeat("п", 20), ErrInvalidUsernameChars},
		{strings.Repeat("п", 33), ErrUsernameTooLong},
	}
	for _, tc := range cases {
		_, _, err := rig.profiles.createProfile("wallet-1", tc.username)
		require.ErrorIs(t, err, tc.wantErr, "username %q", tc.username)
	}

	profile, txID, err := rig.profiles.createProfile("wallet-1", "  Lucky_Rider.99  ")
	require.NoError(t, err)
	require.NotEmpty(t, txID)
	require.Equal(t, "Lucky_Rider.99", profile.Username)
	require.Zero(t, profile.TotalRaces)

	_, _, err = rig.profiles.createProfile("wallet-1", "SecondName")
	require.ErrorIs(t, err, ErrProfileAlreadyExists)

	// 32 chars exactly is fine.
	_, _, err = rig.profiles.createProfile("wallet-2", strings.Repeat("y", 32))
	require.NoError(t, err)
}

func TestUpdateStatisticsLifecycle(t *testing.T) {
	rig := newTestRig(t)

	entropy := []byte{3, 1, 4, 1, 5, 9, 2, 6}
	rig.races.entropy = func() []byte { return entropy }
	winners := drawWinningHorses(entropy, 11)

	_, _, err := rig.profiles.createProfile("winner", "winner")
	require.NoError(t, err)
	_, _, err = rig.profiles.createProfile("loser", "loser")
	require.NoError(t, err)

	loserHorse := uint8(0)
	for h := uint8(1); h <= 10; h++ {
		if h != winners[0] && h != winners[1] && h != winners[2] {
			loserHorse = h
			break
		}
	}

	race := rig.startRace(t, 11, map[string]uint8{
		"winner": winners[0],
		"loser":  loserHorse,
	})

	// Stats are gated on completion.
	_, _, _, err = rig.profiles.updateStatistics(race.ReferralCode, "winner")
	require.ErrorIs(t, err, ErrRaceNotCompleted)

	done := rig.finishRace(t, race)

	// Winner claims first so earnings reflect the payout.
	entry, _, err := rig.races.claimPrize("winner", done.ReferralCode)
	require.NoError(t, err)

	profile, _, applied, err := rig.profiles.updateStatistics(done.ReferralCode, "winner")
	require.NoError(t, err)
	require.True(t, applied)
	require.Equal(t, uint32(1), profile.TotalRaces)
	require.Equal(t, uint32(1), profile.TotalWins)
	require.Equal(t, uint32(1), profile.TotalPodiums)
	require.Equal(t, entry.PrizeAmount, profile.TotalEarnings)

	// Idempotent: the second call reports success but changes nothing. It
	// still hands back a transaction id like every successful mutation.
	profile, txID, applied, err := rig.profiles.updateStatistics(done.ReferralCode, "winner")
	require.NoError(t, err)
	require.False(t, applied)
	require.NotEmpty(t, txID)
	require.Equal(t, uint32(1), profile.TotalRaces)
	require.Equal(t, entry.PrizeAmount, profile.TotalEarnings)

	// The loser gets participation only.
	profile, _, applied, err = rig.profiles.updateStatistics(done.ReferralCode, "loser")
	require.NoError(t, err)
	require.True(t, applied)
	require.Equal(t, uint32(1), profile.TotalRaces)
	require.Zero(t, profile.TotalWins)
	require.Zero(t, profile.TotalPodiums)
	require.Zero(t, profile.TotalEarnings)

	var entryRow models.PlayerEntry
	require.NoError(t, rig.db.First(&entryRow, "race_address = ? AND player = ?", done.Address, "loser").Error)
	require.True(t, entryRow.StatsApplied)
}

func TestUpdateStatisticsRequiresEntryAndProfile(t *testing.T) {
	rig := newTestRig(t)

	race := rig.startRace(t, 12, map[string]uint8{"alice": 1})
	done := rig.finishRace(t, race)

	// alice joined but never created a profile.
	_, _, _, err := rig.profiles.updateStatistics(done.ReferralCode, "alice")
	require.ErrorIs(t, err, ErrProfileNotFound)

	// bystander has a profile but no entry.
	_, _, err2 := rig.profiles.createProfile("bystander", "bystander")
	require.NoError(t, err2)
	_, _, _, err = rig.profiles.updateStatistics(done.ReferralCode, "bystander")
	require.ErrorIs(t, err, ErrEntryNotFound)

	// The worker-side variant skips the missing profile instead of failing.
	applied, err := rig.profiles.ApplyEntryStats(done.ReferralCode, "alice")
	require.NoError(t, err)
	require.False(t, applied)
}
