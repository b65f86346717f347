// models/ledger.go
package models

import "time"

// Ledger account kinds.
const (
	AccountKindPlayerWallet     = "player_wallet"
	AccountKindRaceEscrow       = "race_escrow"
	AccountKindPlatformTreasury = "platform_treasury"
)

// LedgerAccount holds the spendable balance behind a derived address:
// a player's wallet, a race's escrow, or the platform treasury. All money
// movement in the system is balance updates between these rows inside a
// single database transaction.
type LedgerAccount struct {
	Address   string    `gorm:"primaryKey;type:varchar(64)" json:"address"`
	Kind      string    `gorm:"type:varchar(32);not null;index" json:"kind"`
	Balance   uint64    `gorm:"not null;default:0" json:"balance"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
