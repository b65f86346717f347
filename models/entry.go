// models/entry.go
package models

import "time"

// Claim status values. unclaimed -> claimed happens at most once and only
// when PrizeAmount > 0.
const (
	ClaimStatusUnclaimed = "unclaimed"
	ClaimStatusClaimed   = "claimed"
)

// PlayerEntry records one player's stake in one race: the horse they backed,
// the fee they paid, and whether their prize and statistics have been
// settled. Exactly one per (race, player).
type PlayerEntry struct {
	Address     string `gorm:"primaryKey;type:varchar(64)" json:"address"`
	RaceAddress string `gorm:"type:varchar(64);not null;index;uniqueIndex:idx_entry_race_player" json:"race_address"`
	Player      string `gorm:"type:varchar(64);not null;index;uniqueIndex:idx_entry_race_player" json:"player"`
	RaceID      uint64 `gorm:"not null;index" json:"race_id"`

	// HorseNumber in [1,10], immutable once set.
	HorseNumber uint8  `gorm:"not null" json:"horse_number"`
	EntryAmount uint64 `gorm:"not null" json:"entry_amount"`

	ClaimStatus string `gorm:"type:varchar(16);not null" json:"claim_status"`

	// PrizeAmount is computed and persisted at race resolution; zero when
	// the backed horse did not place.
	PrizeAmount uint64 `gorm:"not null;default:0" json:"prize_amount"`

	// StatsApplied flips true once the one-time statistics update has run
	// for this entry.
	StatsApplied bool `gorm:"not null;default:false" json:"stats_applied"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
