// services/treasury_service.go
package services

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"race-wager-system/models"
	"race-wager-system/utils"
)

// TreasuryService owns the singleton platform treasury record and its
// ledger balance.
type TreasuryService struct {
	DB *gorm.DB
}

func NewTreasuryService(db *gorm.DB) *TreasuryService {
	return &TreasuryService{DB: db}
}

// callerAddress pulls the player wallet address the auth middleware stored.
func callerAddress(c *fiber.Ctx) string {
	addr, _ := c.Locals("player_address").(string)
	return addr
}

// Initialize handles POST /treasury/initialize — creates the treasury
// exactly once; the caller becomes its authority.
func (s *TreasuryService) Initialize(c *fiber.Ctx) error {
	var body struct {
		FeeBps uint16 `json:"fee_bps"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	treasury, txID, err := s.initializeTreasury(callerAddress(c), body.FeeBps)
	if err != nil {
		return ErrorResponse(c, err)
	}

	log.Printf("✅ [TREASURY] Initialized with fee %d bps, authority %s", treasury.FeeBps, treasury.Authority)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"transaction_id": txID,
		"treasury":       treasury,
	})
}

func (s *TreasuryService) initializeTreasury(authority string, feeBps uint16) (*models.PlatformTreasury, string, error) {
	if feeBps > utils.MaxFeeBps {
		return nil, "", ErrInvalidPlatformFee
	}

	treasury := models.PlatformTreasury{
		Address:   utils.PlatformVaultAddress(),
		Authority: authority,
		FeeBps:    feeBps,
	}

	var txID string
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var existing models.PlatformTreasury
		if err := tx.First(&existing, "address = ?", treasury.Address).Error; err == nil {
			return ErrTreasuryExists
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if err := tx.Create(&treasury).Error; err != nil {
			return err
		}
		if err := creditAccount(tx, treasury.Address, models.AccountKindPlatformTreasury, 0); err != nil {
			return err
		}

		var err error
		txID, err = logTransaction(tx, models.TxInitializeTreasury, 0, authority, 0)
		return err
	})
	if err != nil {
		return nil, "", err
	}
	return &treasury, txID, nil
}

// UpdateFee handles PATCH /treasury/fee — authority only.
func (s *TreasuryService) UpdateFee(c *fiber.Ctx) error {
	var body struct {
		NewFeeBps uint16 `json:"new_fee_bps"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	txID, err := s.updateFee(callerAddress(c), body.NewFeeBps)
	if err != nil {
		return ErrorResponse(c, err)
	}

	log.Printf("✅ [TREASURY] Platform fee updated to %d bps", body.NewFeeBps)
	return c.JSON(fiber.Map{"transaction_id": txID})
}

func (s *TreasuryService) updateFee(caller string, newFeeBps uint16) (string, error) {
	if newFeeBps > utils.MaxFeeBps {
		return "", ErrInvalidPlatformFee
	}

	var txID string
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		treasury, err := loadTreasury(tx)
		if err != nil {
			return err
		}
		if treasury.Authority != caller {
			return ErrUnauthorized
		}

		if err := tx.Model(treasury).Update("fee_bps", newFeeBps).Error; err != nil {
			return err
		}
		txID, err = logTransaction(tx, models.TxUpdateFee, 0, caller, uint64(newFeeBps))
		return err
	})
	return txID, err
}

// TransferAuthority handles POST /treasury/transfer-authority — hands the
// treasury to a new authority address.
func (s *TreasuryService) TransferAuthority(c *fiber.Ctx) error {
	var body struct {
		NewAuthority string `json:"new_authority"`
	}
	if err := c.BodyParser(&body); err != nil || body.NewAuthority == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "new_authority is required"})
	}

	txID, err := s.transferAuthority(callerAddress(c), body.NewAuthority)
	if err != nil {
		return ErrorResponse(c, err)
	}

	log.Printf("✅ [TREASURY] Authority transferred to %s", body.NewAuthority)
	return c.JSON(fiber.Map{"transaction_id": txID})
}

func (s *TreasuryService) transferAuthority(caller, newAuthority string) (string, error) {
	var txID string
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		treasury, err := loadTreasury(tx)
		if err != nil {
			return err
		}
		if treasury.Authority != caller {
			return ErrUnauthorized
		}

		if err := tx.Model(treasury).Update("authority", newAuthority).Error; err != nil {
			return err
		}
		txID, err = logTransaction(tx, models.TxTransferAuthority, 0, caller, 0)
		return err
	})
	return txID, err
}

// Withdraw handles POST /treasury/withdraw — moves collected fees to the
// authority's wallet. AccumulatedFees is a historical counter and stays put.
func (s *TreasuryService) Withdraw(c *fiber.Ctx) error {
	var body struct {
		Amount uint64 `json:"amount"`
	}
	if err := c.BodyParser(&body); err != nil || body.Amount == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "amount must be a positive integer"})
	}

	txID, err := s.withdrawFees(callerAddress(c), body.Amount)
	if err != nil {
		return ErrorResponse(c, err)
	}

	log.Printf("✅ [TREASURY] Withdrew %d to authority", body.Amount)
	return c.JSON(fiber.Map{"transaction_id": txID})
}

func (s *TreasuryService) withdrawFees(caller string, amount uint64) (string, error) {
	var txID string
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		treasury, err := loadTreasury(tx)
		if err != nil {
			return err
		}
		if treasury.Authority != caller {
			return ErrUnauthorized
		}

		wallet := utils.PlayerWalletAddress(caller)
		if err := transferFunds(tx, treasury.Address, wallet, models.AccountKindPlayerWallet, amount); err != nil {
			return err
		}
		txID, err = logTransaction(tx, models.TxWithdrawFees, 0, caller, amount)
		return err
	})
	return txID, err
}

// GetTreasury handles GET /treasury.
func (s *TreasuryService) GetTreasury(c *fiber.Ctx) error {
	treasury, err := loadTreasury(s.DB)
	if err != nil {
		return ErrorResponse(c, err)
	}

	var acct models.LedgerAccount
	balance := uint64(0)
	if err := s.DB.First(&acct, "address = ?", treasury.Address).Error; err == nil {
		balance = acct.Balance
	}

	return c.JSON(fiber.Map{
		"treasury": treasury,
		"balance":  balance,
	})
}

func loadTreasury(tx *gorm.DB) (*models.PlatformTreasury, error) {
	var treasury models.PlatformTreasury
	if err := tx.First(&treasury, "address = ?", utils.PlatformVaultAddress()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTreasuryNotFound
		}
		return nil, err
	}
	return &treasury, nil
}
