// models/transaction_log.go
package models

import "time"

// Transaction log kinds, one per mutating operation.
const (
	TxInitializeTreasury = "initialize_treasury"
	TxUpdateFee          = "update_fee"
	TxTransferAuthority  = "transfer_authority"
	TxWithdrawFees       = "withdraw_fees"
	TxDeposit            = "deposit"
	TxCreateProfile      = "create_profile"
	TxCreateRace         = "create_race"
	TxJoinRace           = "join_race"
	TxExecuteRace        = "execute_race"
	TxClaimPrize         = "claim_prize"
	TxUpdateStats        = "update_stats"
)

// TransactionLog is the audit row written inside each mutating operation's
// transaction. Its ID is the transaction identifier returned to the caller.
type TransactionLog struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Kind      string    `gorm:"type:varchar(32);not null;index" json:"kind"`
	RaceID    uint64    `gorm:"index" json:"race_id,omitempty"`
	Player    string    `gorm:"type:varchar(64);index" json:"player,omitempty"`
	Amount    uint64    `json:"amount,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
