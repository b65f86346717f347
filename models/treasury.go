// models/treasury.go
package models

import "time"

// PlatformTreasury is the singleton platform record. It is created exactly
// once via the initialize operation and lives at the derived platform_vault
// address. Its spendable balance is the LedgerAccount at the same address;
// AccumulatedFees is the historical counter and never decreases.
type PlatformTreasury struct {
	Address         string    `gorm:"primaryKey;type:varchar(64)" json:"address"`
	Authority       string    `gorm:"type:varchar(64);not null" json:"authority"`
	FeeBps          uint16    `gorm:"not null" json:"fee_bps"`
	AccumulatedFees uint64    `gorm:"not null;default:0" json:"accumulated_fees"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
