// models/race.go
package models

import (
	"encoding/json"
	"time"
)

// Race status values. Transitions are forward-only:
// pending -> racing -> completed, or pending -> cancelled.
const (
	RaceStatusPending   = "pending"
	RaceStatusRacing    = "racing"
	RaceStatusCompleted = "completed"
	RaceStatusCancelled = "cancelled"
)

// Race is the central state machine record, one per race, never deleted.
// The escrow holding its entry fees is the LedgerAccount at the derived
// race_vault address.
type Race struct {
	Address      string `gorm:"primaryKey;type:varchar(64)" json:"address"`
	RaceID       uint64 `gorm:"not null;uniqueIndex" json:"race_id"`
	Creator      string `gorm:"type:varchar(64);not null;index" json:"creator"`
	ReferralCode string `gorm:"type:varchar(8);not null;index" json:"referral_code"`
	Status       string `gorm:"type:varchar(16);not null;index" json:"status"`

	// WaitDuration is how long (seconds) players can join before the race
	// can be executed. Bounded to [30, 180].
	WaitDuration int64 `gorm:"not null" json:"wait_duration"`

	// RaceStartTime is set only on the pending -> racing transition;
	// EndTime only on reaching a terminal state.
	RaceStartTime *time.Time `json:"race_start_time,omitempty"`
	EndTime       *time.Time `json:"end_time,omitempty"`

	EntryCount       uint32 `gorm:"not null;default:0" json:"entry_count"`
	TotalPool        uint64 `gorm:"not null;default:0" json:"total_pool"`
	PlatformFeeTaken uint64 `gorm:"not null;default:0" json:"platform_fee_taken"`

	// Winning horse numbers for 1st/2nd/3rd once completed; 0 = unset.
	WinFirst  uint8 `gorm:"not null;default:0" json:"win_first"`
	WinSecond uint8 `gorm:"not null;default:0" json:"win_second"`
	WinThird  uint8 `gorm:"not null;default:0" json:"win_third"`

	// HorseNames is the JSON-encoded roster of 10 display names, set at
	// creation and immutable.
	HorseNames string `gorm:"type:text;not null" json:"-"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// WinningHorses returns the podium in finish order, empty until completed.
func (r *Race) WinningHorses() []uint8 {
	if r.Status != RaceStatusCompleted {
		return nil
	}
	return []uint8{r.WinFirst, r.WinSecond, r.WinThird}
}

// HorseNameList decodes the stored roster.
func (r *Race) HorseNameList() []string {
	var names []string
	_ = json.Unmarshal([]byte(r.HorseNames), &names)
	return names
}

// WaitDeadline is when the joining window closes.
func (r *Race) WaitDeadline() time.Time {
	return r.CreatedAt.Add(time.Duration(r.WaitDuration) * time.Second)
}
