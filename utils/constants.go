// utils/constants.go
package utils

import "time"

// Game constants. Amounts are in the smallest native-token unit.
const (
	MaxHorses = 10

	// EntryFee is the fixed stake every player pays to join a race (0.1 token).
	EntryFee uint64 = 100_000_000

	MinWaitDuration     int64 = 30  // seconds
	MaxWaitDuration     int64 = 180 // 3 minutes
	DefaultWaitDuration int64 = 60

	// RaceDuration is how long the racing phase lasts before results can be drawn.
	RaceDuration = 60 * time.Second

	// MinPlayersToStart — a race with fewer entries when the wait elapses is
	// cancelled. 1 means even a single-entry race resolves.
	MinPlayersToStart = 1

	// MaxEntriesPerRace caps entries at the competitor count.
	MaxEntriesPerRace = MaxHorses

	// MaxFeeBps — platform fee is expressed in basis points (10000 = 100%).
	MaxFeeBps uint16 = 10000
)

// PrizeDistributionBps is the 1st/2nd/3rd share of the post-fee pool in
// basis points. The remaining 5% stays in escrow as rounding slack.
var PrizeDistributionBps = [3]uint64{5000, 3000, 1500}

// HorseNames is the fixed roster of 10 competitors every race uses.
var HorseNames = [MaxHorses]string{
	"Bonk", "Samo", "Orca", "Raydium", "Marinade",
	"Serum", "Mango", "Drift", "Jupiter", "Phantom",
}
