// services/race_service.go
package services

import (
	"encoding/json"
	"errors"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"race-wager-system/models"
	"race-wager-system/utils"
)

// RaceService is the race engine: it creates races, admits entries, runs the
// two-phase resolution and pays out claims. Every mutation happens inside a
// single database transaction so each operation is all-or-nothing.
type RaceService struct {
	DB *gorm.DB

	// now and entropy are swappable so tests can drive the wall-clock
	// gates and pin the winner draw.
	now     func() time.Time
	entropy func() []byte
}

func NewRaceService(db *gorm.DB) *RaceService {
	return &RaceService{DB: db, now: time.Now, entropy: raceEntropy}
}

// resolveRace loads a race by bare numeric id or referral code, the two
// forms clients exchange out-of-band. An all-digit reference is always a
// race id; codes whose eight base-36 digits happen to be all numeric must
// be referenced by id instead.
func resolveRace(tx *gorm.DB, ref string) (*models.Race, error) {
	var raceID uint64

	if id, err := strconv.ParseUint(ref, 10, 64); err == nil {
		raceID = id
	} else if id, err := utils.DecodeReferralCode(ref); err == nil {
		raceID = id
	} else {
		return nil, ErrRaceNotFound
	}

	var race models.Race
	if err := tx.First(&race, "race_id = ?", raceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRaceNotFound
		}
		return nil, err
	}
	return &race, nil
}

// CreateRace handles POST /races.
func (s *RaceService) CreateRace(c *fiber.Ctx) error {
	var body struct {
		RaceID       uint64 `json:"race_id"`
		WaitDuration *int64 `json:"wait_duration"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	race, txID, err := s.createRace(callerAddress(c), body.RaceID, body.WaitDuration)
	if err != nil {
		return ErrorResponse(c, err)
	}

	log.Printf("✅ [RACE] Created race %d (code %s, wait %ds)", race.RaceID, race.ReferralCode, race.WaitDuration)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"transaction_id": txID,
		"race":           race,
		"horse_names":    race.HorseNameList(),
	})
}

func (s *RaceService) createRace(creator string, raceID uint64, waitDuration *int64) (*models.Race, string, error) {
	if raceID == 0 || raceID > utils.MaxRaceID {
		return nil, "", ErrInvalidRaceID
	}

	wait := utils.DefaultWaitDuration
	if waitDuration != nil {
		wait = *waitDuration
	}
	if wait < utils.MinWaitDuration || wait > utils.MaxWaitDuration {
		return nil, "", ErrInvalidWaitDuration
	}

	roster, err := json.Marshal(utils.HorseNames[:])
	if err != nil {
		return nil, "", err
	}

	race := models.Race{
		Address:      utils.RaceAddress(raceID),
		RaceID:       raceID,
		Creator:      creator,
		ReferralCode: utils.EncodeReferralCode(raceID),
		Status:       models.RaceStatusPending,
		WaitDuration: wait,
		HorseNames:   string(roster),
		CreatedAt:    s.now(),
	}

	var txID string
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		var existing models.Race
		if err := tx.First(&existing, "race_id = ?", raceID).Error; err == nil {
			return ErrRaceIDCollision
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if err := tx.Create(&race).Error; err != nil {
			return err
		}
		// The escrow account exists from creation so joins are pure transfers.
		if err := creditAccount(tx, utils.RaceVaultAddress(race.Address), models.AccountKindRaceEscrow, 0); err != nil {
			return err
		}

		var err error
		txID, err = logTransaction(tx, models.TxCreateRace, raceID, creator, 0)
		return err
	})
	if err != nil {
		return nil, "", err
	}
	return &race, txID, nil
}

// JoinRace handles POST /races/:code/join — stakes the entry fee on one
// horse. The referral code in the body must match the race, which guards
// against joining the wrong race through a mistyped id.
func (s *RaceService) JoinRace(c *fiber.Ctx) error {
	var body struct {
		HorseNumber  uint8  `json:"horse_number"`
		ReferralCode string `json:"referral_code"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	entry, txID, err := s.joinRace(callerAddress(c), c.Params("code"), body.HorseNumber, body.ReferralCode)
	if err != nil {
		return ErrorResponse(c, err)
	}

	log.Printf("✅ [RACE] %s joined race %d on horse %d", entry.Player, entry.RaceID, entry.HorseNumber)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"transaction_id": txID,
		"entry":          entry,
	})
}

func (s *RaceService) joinRace(player, raceRef string, horseNumber uint8, referralCode string) (*models.PlayerEntry, string, error) {
	var (
		entry models.PlayerEntry
		txID  string
	)

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		race, err := resolveRace(tx, raceRef)
		if err != nil {
			return err
		}
		if strings.ToUpper(referralCode) != race.ReferralCode {
			return ErrInvalidReferralCode
		}
		if race.Status != models.RaceStatusPending {
			return ErrRaceNotPending
		}
		if horseNumber < 1 || horseNumber > utils.MaxHorses {
			return ErrInvalidHorseNumber
		}
		if race.EntryCount >= utils.MaxEntriesPerRace {
			return ErrRaceFull
		}

		var existing models.PlayerEntry
		if err := tx.First(&existing, "race_address = ? AND player = ?", race.Address, player).Error; err == nil {
			return ErrAlreadyJoined
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		// Fee moves first; a broke wallet aborts before the entry exists.
		escrow := utils.RaceVaultAddress(race.Address)
		if err := transferFunds(tx, utils.PlayerWalletAddress(player), escrow, models.AccountKindRaceEscrow, utils.EntryFee); err != nil {
			return err
		}

		if _, err := addPool(race.TotalPool, utils.EntryFee); err != nil {
			return err
		}
		if err := tx.Model(race).Updates(map[string]interface{}{
			"total_pool":  gorm.Expr("total_pool + ?", utils.EntryFee),
			"entry_count": gorm.Expr("entry_count + 1"),
		}).Error; err != nil {
			return err
		}

		entry = models.PlayerEntry{
			Address:     utils.PlayerEntryAddress(race.Address, player),
			RaceAddress: race.Address,
			Player:      player,
			RaceID:      race.RaceID,
			HorseNumber: horseNumber,
			EntryAmount: utils.EntryFee,
			ClaimStatus: models.ClaimStatusUnclaimed,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}

		txID, err = logTransaction(tx, models.TxJoinRace, race.RaceID, player, utils.EntryFee)
		return err
	})
	if err != nil {
		return nil, "", err
	}
	return &entry, txID, nil
}

// ExecuteRace handles POST /races/:code/execute. Anyone may call it; the
// wall-clock gates decide whether a transition happens.
func (s *RaceService) ExecuteRace(c *fiber.Ctx) error {
	race, txID, err := s.executeRace(c.Params("code"))
	if err != nil {
		return ErrorResponse(c, err)
	}

	return c.JSON(fiber.Map{
		"transaction_id": txID,
		"race":           race,
	})
}

// executeRace advances the race state machine by one phase.
//
// Phase A (pending): once the wait elapses, cancel if under-subscribed or
// move to racing. Phase B (racing): once the fixed duration elapses, draw
// winners, take the platform fee and persist every entry's prize.
func (s *RaceService) executeRace(raceRef string) (*models.Race, string, error) {
	var (
		out  *models.Race
		txID string
	)

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		race, err := resolveRace(tx, raceRef)
		if err != nil {
			return err
		}
		now := s.now()

		switch race.Status {
		case models.RaceStatusPending:
			if now.Before(race.WaitDeadline()) {
				return ErrWaitPeriodNotElapsed
			}

			if race.EntryCount < utils.MinPlayersToStart {
				race.Status = models.RaceStatusCancelled
				race.EndTime = &now
				if err := tx.Model(race).Updates(map[string]interface{}{
					"status":   race.Status,
					"end_time": race.EndTime,
				}).Error; err != nil {
					return err
				}
				log.Printf("🚫 [RACE] Race %d cancelled — no entries before deadline", race.RaceID)
			} else {
				race.Status = models.RaceStatusRacing
				race.RaceStartTime = &now
				if err := tx.Model(race).Updates(map[string]interface{}{
					"status":          race.Status,
					"race_start_time": race.RaceStartTime,
				}).Error; err != nil {
					return err
				}
				log.Printf("🏁 [RACE] Race %d started with %d players", race.RaceID, race.EntryCount)
			}

		case models.RaceStatusRacing:
			if now.Before(race.RaceStartTime.Add(utils.RaceDuration)) {
				return ErrRaceDurationNotElapsed
			}
			if err := s.settleRace(tx, race, now); err != nil {
				return err
			}
			log.Printf("🏆 [RACE] Race %d completed — podium %d/%d/%d",
				race.RaceID, race.WinFirst, race.WinSecond, race.WinThird)

		default:
			return ErrAlreadyCompleted
		}

		txID, err = logTransaction(tx, models.TxExecuteRace, race.RaceID, "", 0)
		if err != nil {
			return err
		}
		out = race
		return nil
	})
	if err != nil {
		return nil, "", err
	}
	return out, txID, nil
}

// settleRace runs Phase B inside the caller's transaction: fee to treasury,
// winner draw, per-entry prize persistence, terminal state.
func (s *RaceService) settleRace(tx *gorm.DB, race *models.Race, now time.Time) error {
	treasury, err := loadTreasury(tx)
	if err != nil {
		return err
	}

	platformFee, err := mulDivBps(race.TotalPool, uint64(treasury.FeeBps))
	if err != nil {
		return err
	}
	escrow := utils.RaceVaultAddress(race.Address)
	if platformFee > 0 {
		if err := transferFunds(tx, escrow, treasury.Address, models.AccountKindPlatformTreasury, platformFee); err != nil {
			return err
		}
		if _, err := addPool(treasury.AccumulatedFees, platformFee); err != nil {
			return err
		}
		if err := tx.Model(treasury).
			Update("accumulated_fees", gorm.Expr("accumulated_fees + ?", platformFee)).Error; err != nil {
			return err
		}
	}

	winners := drawWinningHorses(s.entropy(), race.RaceID)

	var entries []models.PlayerEntry
	if err := tx.Find(&entries, "race_address = ?", race.Address).Error; err != nil {
		return err
	}
	prizes, err := computePrizes(entries, winners, race.TotalPool-platformFee)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if prize := prizes[e.Address]; prize > 0 {
			if err := tx.Model(&models.PlayerEntry{}).
				Where("address = ?", e.Address).
				Update("prize_amount", prize).Error; err != nil {
				return err
			}
		}
	}

	race.Status = models.RaceStatusCompleted
	race.PlatformFeeTaken = platformFee
	race.WinFirst, race.WinSecond, race.WinThird = winners[0], winners[1], winners[2]
	race.EndTime = &now
	return tx.Model(race).Updates(map[string]interface{}{
		"status":             race.Status,
		"platform_fee_taken": race.PlatformFeeTaken,
		"win_first":          race.WinFirst,
		"win_second":         race.WinSecond,
		"win_third":          race.WinThird,
		"end_time":           race.EndTime,
	}).Error
}

// ClaimPrize handles POST /races/:code/claim.
func (s *RaceService) ClaimPrize(c *fiber.Ctx) error {
	entry, txID, err := s.claimPrize(callerAddress(c), c.Params("code"))
	if err != nil {
		return ErrorResponse(c, err)
	}

	log.Printf("✅ [RACE] %s claimed %d from race %d", entry.Player, entry.PrizeAmount, entry.RaceID)
	return c.JSON(fiber.Map{
		"transaction_id": txID,
		"entry":          entry,
	})
}

func (s *RaceService) claimPrize(player, raceRef string) (*models.PlayerEntry, string, error) {
	var (
		entry models.PlayerEntry
		txID  string
	)

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		race, err := resolveRace(tx, raceRef)
		if err != nil {
			return err
		}
		if race.Status != models.RaceStatusCompleted {
			return ErrRaceNotCompleted
		}

		if err := tx.First(&entry, "race_address = ? AND player = ?", race.Address, player).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrEntryNotFound
			}
			return err
		}

		won := entry.HorseNumber == race.WinFirst ||
			entry.HorseNumber == race.WinSecond ||
			entry.HorseNumber == race.WinThird
		if !won {
			return ErrNotAWinner
		}
		if entry.ClaimStatus == models.ClaimStatusClaimed {
			return ErrAlreadyClaimed
		}
		if entry.PrizeAmount == 0 {
			return ErrNoPrizeOwed
		}

		// Transfer before flagging, so a failed transfer never marks the
		// entry claimed.
		escrow := utils.RaceVaultAddress(race.Address)
		if err := transferFunds(tx, escrow, utils.PlayerWalletAddress(player), models.AccountKindPlayerWallet, entry.PrizeAmount); err != nil {
			return err
		}
		entry.ClaimStatus = models.ClaimStatusClaimed
		if err := tx.Model(&entry).Update("claim_status", entry.ClaimStatus).Error; err != nil {
			return err
		}

		txID, err = logTransaction(tx, models.TxClaimPrize, race.RaceID, player, entry.PrizeAmount)
		return err
	})
	if err != nil {
		return nil, "", err
	}
	return &entry, txID, nil
}

// GetRace handles GET /races/:code.
func (s *RaceService) GetRace(c *fiber.Ctx) error {
	race, err := resolveRace(s.DB, c.Params("code"))
	if err != nil {
		return ErrorResponse(c, err)
	}

	var escrow models.LedgerAccount
	escrowBalance := uint64(0)
	if err := s.DB.First(&escrow, "address = ?", utils.RaceVaultAddress(race.Address)).Error; err == nil {
		escrowBalance = escrow.Balance
	}

	return c.JSON(fiber.Map{
		"race":           race,
		"horse_names":    race.HorseNameList(),
		"winning_horses": race.WinningHorses(),
		"escrow_balance": escrowBalance,
	})
}

// ListEntries handles GET /races/:code/entries.
func (s *RaceService) ListEntries(c *fiber.Ctx) error {
	race, err := resolveRace(s.DB, c.Params("code"))
	if err != nil {
		return ErrorResponse(c, err)
	}

	var entries []models.PlayerEntry
	if err := s.DB.Order("created_at ASC").Find(&entries, "race_address = ?", race.Address).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load entries"})
	}
	return c.JSON(fiber.Map{"entries": entries, "count": len(entries)})
}

// GetPlayerEntry handles GET /races/:code/entries/:player.
func (s *RaceService) GetPlayerEntry(c *fiber.Ctx) error {
	race, err := resolveRace(s.DB, c.Params("code"))
	if err != nil {
		return ErrorResponse(c, err)
	}

	var entry models.PlayerEntry
	if err := s.DB.First(&entry, "race_address = ? AND player = ?", race.Address, c.Params("player")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrorResponse(c, ErrEntryNotFound)
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load entry"})
	}
	return c.JSON(fiber.Map{"entry": entry})
}

// executeDueRaces sweeps races whose wall-clock gates have opened and runs
// the applicable transition. Used by the settlement scheduler; the HTTP
// execute endpoint remains the manual path.
func (s *RaceService) executeDueRaces() {
	now := s.now()

	var races []models.Race
	if err := s.DB.Find(&races, "status IN ?", []string{models.RaceStatusPending, models.RaceStatusRacing}).Error; err != nil {
		log.Printf("❌ [SETTLER] Failed to list open races: %v", err)
		return
	}

	for _, race := range races {
		due := false
		switch race.Status {
		case models.RaceStatusPending:
			due = !now.Before(race.WaitDeadline())
		case models.RaceStatusRacing:
			due = race.RaceStartTime != nil && !now.Before(race.RaceStartTime.Add(utils.RaceDuration))
		}
		if !due {
			continue
		}

		if _, _, err := s.executeRace(strconv.FormatUint(race.RaceID, 10)); err != nil {
			// Another caller may have raced us to the transition.
			log.Printf("⚠️ [SETTLER] Race %d execute skipped: %v", race.RaceID, err)
		}
	}
}
