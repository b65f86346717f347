package services

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"race-wager-system/models"
	"race-wager-system/utils"
)

func TestDrawWinningHorsesProperties(t *testing.T) {
	entropies := [][]byte{
		make([]byte, 32),
		{1, 2, 3, 4, 5, 6, 7, 8},
		{255, 254, 253, 252},
	}
	for _, entropy := range entropies {
		for raceID := uint64(1); raceID <= 50; raceID++ {
			winners := drawWinningHorses(entropy, raceID)

			seen := make(map[uint8]bool, 3)
			for _, h := range winners {
				require.GreaterOrEqual(t, h, uint8(1))
				require.LessOrEqual(t, h, uint8(utils.MaxHorses))
				require.False(t, seen[h], "duplicate horse in %v", winners)
				seen[h] = true
			}
		}
	}
}

func TestDrawWinningHorsesIsDeterministic(t *testing.T) {
	entropy := []byte{9, 8, 7, 6, 5, 4, 3, 2, 1, 0}
	require.Equal(t, drawWinningHorses(entropy, 99), drawWinningHorses(entropy, 99))

	// Different race ids on the same entropy should not all reuse the draw.
	base := drawWinningHorses(entropy, 99)
	varied := false
	for raceID := uint64(100); raceID < 120; raceID++ {
		if drawWinningHorses(entropy, raceID) != base {
			varied = true
			break
		}
	}
	require.True(t, varied, "draw ignores race id")
}

func TestComputePrizesSplitsPositionShares(t *testing.T) {
	entries := []models.PlayerEntry{
		{Address: "e1", HorseNumber: 1},
		{Address: "e2", HorseNumber: 1},
		{Address: "e3", HorseNumber: 2},
		{Address: "e4", HorseNumber: 3},
	}
	winners := [3]uint8{1, 2, 3}
	postFeePool := uint64(1_000_000_000)

	prizes, err := computePrizes(entries, winners, postFeePool)
	require.NoError(t, err)

	// 1st place share (50%) split between two backers.
	require.Equal(t, uint64(250_000_000), prizes["e1"])
	require.Equal(t, uint64(250_000_000), prizes["e2"])
	// 2nd (30%) and 3rd (15%) each have a single backer.
	require.Equal(t, uint64(300_000_000), prizes["e3"])
	require.Equal(t, uint64(150_000_000), prizes["e4"])
}

func TestComputePrizesUnbackedPositionsStayInEscrow(t *testing.T) {
	entries := []models.PlayerEntry{
		{Address: "e1", HorseNumber: 4},
	}
	winners := [3]uint8{4, 5, 6}

	prizes, err := computePrizes(entries, winners, 300_000_000)
	require.NoError(t, err)
	require.Len(t, prizes, 1)
	require.Equal(t, uint64(150_000_000), prizes["e1"])
}

func TestComputePrizesNeverExceedsPool(t *testing.T) {
	entries := []models.PlayerEntry{
		{Address: "e1", HorseNumber: 1},
		{Address: "e2", HorseNumber: 2},
		{Address: "e3", HorseNumber: 3},
	}
	pool := uint64(101) // forces truncation everywhere

	prizes, err := computePrizes(entries, [3]uint8{1, 2, 3}, pool)
	require.NoError(t, err)

	var total uint64
	for _, p := range prizes {
		total += p
	}
	require.LessOrEqual(t, total, pool)
}

func TestMulDivBps(t *testing.T) {
	v, err := mulDivBps(300_000_000, 500)
	require.NoError(t, err)
	require.Equal(t, uint64(15_000_000), v)

	v, err = mulDivBps(12345, 0)
	require.NoError(t, err)
	require.Zero(t, v)

	_, err = mulDivBps(math.MaxUint64, 2)
	require.ErrorIs(t, err, ErrMathOverflow)
}

func TestAddPoolRefusesWraparound(t *testing.T) {
	v, err := addPool(10, 20)
	require.NoError(t, err)
	require.Equal(t, uint64(30), v)

	_, err = addPool(math.MaxUint64, 1)
	require.ErrorIs(t, err, ErrMathOverflow)
}
