// services/ledger.go
package services

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"race-wager-system/models"
)

// creditAccount adds amount to the ledger account at address, creating the
// account if it does not exist yet. Must run inside the operation's
// transaction.
func creditAccount(tx *gorm.DB, address, kind string, amount uint64) error {
	acct := models.LedgerAccount{Address: address, Kind: kind, Balance: amount}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "address"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"balance": gorm.Expr("balance + excluded.balance")}),
	}).Create(&acct).Error
}

// debitAccount subtracts amount from the account at address. The guarded
// UPDATE makes the balance check and the subtraction one atomic statement;
// a missing account and an underfunded one both fail the same way.
func debitAccount(tx *gorm.DB, address string, amount uint64) error {
	res := tx.Model(&models.LedgerAccount{}).
		Where("address = ? AND balance >= ?", address, amount).
		Update("balance", gorm.Expr("balance - ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrInsufficientFunds
	}
	return nil
}

// transferFunds moves amount between two ledger accounts. Debit first, so
// an underfunded source aborts before anything is credited.
func transferFunds(tx *gorm.DB, from, to, toKind string, amount uint64) error {
	if amount == 0 {
		return nil
	}
	if err := debitAccount(tx, from, amount); err != nil {
		return err
	}
	return creditAccount(tx, to, toKind, amount)
}

// logTransaction writes the audit row for a mutating operation and returns
// the transaction id handed back to the caller.
func logTransaction(tx *gorm.DB, kind string, raceID uint64, player string, amount uint64) (string, error) {
	entry := models.TransactionLog{
		ID:     uuid.NewString(),
		Kind:   kind,
		RaceID: raceID,
		Player: player,
		Amount: amount,
	}
	if err := tx.Create(&entry).Error; err != nil {
		return "", err
	}
	return entry.ID, nil
}
