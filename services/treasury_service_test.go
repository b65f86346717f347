package services

import (
	"testing"

	"github.com/stretchr/testify/require"

	"race-wager-system/models"
	"race-wager-system/utils"
)

func TestInitializeTreasuryGuards(t *testing.T) {
	db := newTestDB(t)
	svc := NewTreasuryService(db)

	_, _, err := svc.initializeTreasury("authority", 10001)
	require.ErrorIs(t, err, ErrInvalidPlatformFee)

	treasury, txID, err := svc.initializeTreasury("authority", 500)
	require.NoError(t, err)
	require.NotEmpty(t, txID)
	require.Equal(t, uint16(500), treasury.FeeBps)
	require.Zero(t, treasury.AccumulatedFees)
	require.Equal(t, utils.PlatformVaultAddress(), treasury.Address)

	// Singleton: second initialize refuses.
	_, _, err = svc.initializeTreasury("intruder", 100)
	require.ErrorIs(t, err, ErrTreasuryExists)
}

func TestUpdateFeeAuthorityOnly(t *testing.T) {
	rig := newTestRig(t)

	_, err := rig.treasury.updateFee("intruder", 100)
	require.ErrorIs(t, err, ErrUnauthorized)

	_, err = rig.treasury.updateFee(testAuthority, 10001)
	require.ErrorIs(t, err, ErrInvalidPlatformFee)

	_, err = rig.treasury.updateFee(testAuthority, 250)
	require.NoError(t, err)

	treasury, err := loadTreasury(rig.db)
	require.NoError(t, err)
	require.Equal(t, uint16(250), treasury.FeeBps)
}

func TestTransferAuthority(t *testing.T) {
	rig := newTestRig(t)

	_, err := rig.treasury.transferAuthority("intruder", "intruder")
	require.ErrorIs(t, err, ErrUnauthorized)

	_, err = rig.treasury.transferAuthority(testAuthority, "new-authority")
	require.NoError(t, err)

	// Old authority is locked out, new one works.
	_, err = rig.treasury.updateFee(testAuthority, 100)
	require.ErrorIs(t, err, ErrUnauthorized)
	_, err = rig.treasury.updateFee("new-authority", 100)
	require.NoError(t, err)
}

func TestWithdrawFees(t *testing.T) {
	rig := newTestRig(t)

	// Nothing collected yet.
	_, err := rig.treasury.withdrawFees(testAuthority, 1)
	require.ErrorIs(t, err, ErrInsufficientFunds)

	// Run a race so fees land in the treasury.
	race := rig.startRace(t, 5, map[string]uint8{"alice": 1, "bob": 2})
	rig.finishRace(t, race)

	treasury, err := loadTreasury(rig.db)
	require.NoError(t, err)
	collected := treasury.AccumulatedFees
	require.Equal(t, 2*utils.EntryFee*500/10000, collected)

	_, err = rig.treasury.withdrawFees("intruder", collected)
	require.ErrorIs(t, err, ErrUnauthorized)

	_, err = rig.treasury.withdrawFees(testAuthority, collected+1)
	require.ErrorIs(t, err, ErrInsufficientFunds)

	_, err = rig.treasury.withdrawFees(testAuthority, collected)
	require.NoError(t, err)
	require.Equal(t, collected, rig.walletBalance(t, testAuthority))
	require.Zero(t, rig.balance(t, treasury.Address))

	// The historical counter is untouched by withdrawals.
	treasury, err = loadTreasury(rig.db)
	require.NoError(t, err)
	require.Equal(t, collected, treasury.AccumulatedFees)
}

func TestLedgerTransferAtomicity(t *testing.T) {
	db := newTestDB(t)

	require.NoError(t, creditAccount(db, "acct-a", models.AccountKindPlayerWallet, 100))

	// Underfunded transfer must not credit the destination.
	err := transferFunds(db, "acct-a", "acct-b", models.AccountKindPlayerWallet, 101)
	require.ErrorIs(t, err, ErrInsufficientFunds)

	var from models.LedgerAccount
	require.NoError(t, db.First(&from, "address = ?", "acct-a").Error)
	require.Equal(t, uint64(100), from.Balance)

	var count int64
	db.Model(&models.LedgerAccount{}).Where("address = ?", "acct-b").Count(&count)
	require.Zero(t, count)
}
