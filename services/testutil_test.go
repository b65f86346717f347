package services

import (
	"fmt"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"race-wager-system/models"
	"race-wager-system/utils"
)

// testClock lets tests walk the wall clock past the engine's timing gates.
type testClock struct {
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time          { return c.now }
func (c *testClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.PlatformTreasury{},
		&models.PlayerProfile{},
		&models.Race{},
		&models.PlayerEntry{},
		&models.LedgerAccount{},
		&models.TransactionLog{},
	))
	return db
}

type testRig struct {
	db       *gorm.DB
	clock    *testClock
	races    *RaceService
	treasury *TreasuryService
	profiles *ProfileService
}

const testAuthority = "authority-wallet"

// newTestRig wires the services against a fresh database with an initialized
// treasury at 500 bps (5%) and a controllable clock.
func newTestRig(t *testing.T) *testRig {
	t.Helper()

	db := newTestDB(t)
	clock := newTestClock()

	races := NewRaceService(db)
	races.now = clock.Now

	rig := &testRig{
		db:       db,
		clock:    clock,
		races:    races,
		treasury: NewTreasuryService(db),
		profiles: NewProfileService(db),
	}

	_, _, err := rig.treasury.initializeTreasury(testAuthority, 500)
	require.NoError(t, err)
	return rig
}

// fund credits a player wallet directly.
func (r *testRig) fund(t *testing.T, player string, amount uint64) {
	t.Helper()
	require.NoError(t, creditAccount(r.db, utils.PlayerWalletAddress(player), models.AccountKindPlayerWallet, amount))
}

func (r *testRig) walletBalance(t *testing.T, player string) uint64 {
	t.Helper()
	return r.balance(t, utils.PlayerWalletAddress(player))
}

func (r *testRig) escrowBalance(t *testing.T, raceID uint64) uint64 {
	t.Helper()
	return r.balance(t, utils.RaceVaultAddress(utils.RaceAddress(raceID)))
}

func (r *testRig) balance(t *testing.T, address string) uint64 {
	t.Helper()
	var acct models.LedgerAccount
	err := r.db.First(&acct, "address = ?", address).Error
	if err != nil {
		return 0
	}
	return acct.Balance
}

// startRace creates a race and advances it into the racing phase. Races are
// referenced by numeric id here so the helpers work for ids whose referral
// codes are all digits.
func (r *testRig) startRace(t *testing.T, raceID uint64, players map[string]uint8) *models.Race {
	t.Helper()

	race, _, err := r.races.createRace("creator", raceID, nil)
	require.NoError(t, err)
	ref := strconv.FormatUint(raceID, 10)

	for player, horse := range players {
		r.fund(t, player, utils.EntryFee)
		_, _, err := r.races.joinRace(player, ref, horse, race.ReferralCode)
		require.NoError(t, err)
	}

	r.clock.Advance(time.Duration(race.WaitDuration)*time.Second + time.Second)
	race, _, err = r.races.executeRace(ref)
	require.NoError(t, err)
	return race
}

// finishRace drives a racing-phase race to completion.
func (r *testRig) finishRace(t *testing.T, race *models.Race) *models.Race {
	t.Helper()

	r.clock.Advance(utils.RaceDuration + time.Second)
	done, _, err := r.races.executeRace(strconv.FormatUint(race.RaceID, 10))
	require.NoError(t, err)
	return done
}
