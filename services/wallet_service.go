// services/wallet_service.go
package services

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"race-wager-system/models"
	"race-wager-system/utils"
)

// WalletService manages player wallet balances. On-chain, players simply
// hold native tokens; here the service-token-gated deposit endpoint is how
// balances arrive.
type WalletService struct {
	DB *gorm.DB
}

func NewWalletService(db *gorm.DB) *WalletService {
	return &WalletService{DB: db}
}

// Deposit handles POST /wallets/deposit.
func (s *WalletService) Deposit(c *fiber.Ctx) error {
	var body struct {
		Player string `json:"player"`
		Amount uint64 `json:"amount"`
	}
	if err := c.BodyParser(&body); err != nil || body.Player == "" || body.Amount == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "player and a positive amount are required"})
	}

	var txID string
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := creditAccount(tx, utils.PlayerWalletAddress(body.Player), models.AccountKindPlayerWallet, body.Amount); err != nil {
			return err
		}
		var err error
		txID, err = logTransaction(tx, models.TxDeposit, 0, body.Player, body.Amount)
		return err
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "deposit failed"})
	}

	log.Printf("✅ [WALLET] Credited %d to %s", body.Amount, body.Player)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"transaction_id": txID})
}

// GetWallet handles GET /wallets/:player.
func (s *WalletService) GetWallet(c *fiber.Ctx) error {
	player := c.Params("player")
	address := utils.PlayerWalletAddress(player)

	var acct models.LedgerAccount
	if err := s.DB.First(&acct, "address = ?", address).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// An unfunded wallet is a zero balance, not an error.
			return c.JSON(fiber.Map{"player": player, "address": address, "balance": 0})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load wallet"})
	}
	return c.JSON(fiber.Map{"player": player, "address": address, "balance": acct.Balance})
}
