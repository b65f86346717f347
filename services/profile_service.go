// services/profile_service.go
package services

import (
	"errors"
	"log"
	"strings"
	"unicode/utf8"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"race-wager-system/models"
	"race-wager-system/utils"
)

// ProfileService owns player profiles and the one-time statistics
// application after each race.
type ProfileService struct {
	DB *gorm.DB
}

func NewProfileService(db *gorm.DB) *ProfileService {
	return &ProfileService{DB: db}
}

// CreateProfile handles POST /profiles.
func (s *ProfileService) CreateProfile(c *fiber.Ctx) error {
	var body struct {
		Username string `json:"username"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	profile, txID, err := s.createProfile(callerAddress(c), body.Username)
	if err != nil {
		return ErrorResponse(c, err)
	}

	log.Printf("✅ [PROFILE] Created profile %q for %s", profile.Username, profile.Player)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"transaction_id": txID,
		"profile":        profile,
	})
}

func (s *ProfileService) createProfile(player, username string) (*models.PlayerProfile, string, error) {
	username = strings.TrimSpace(username)
	if err := validateUsername(username); err != nil {
		return nil, "", err
	}

	profile := models.PlayerProfile{
		Address:  utils.PlayerProfileAddress(player),
		Player:   player,
		Username: username,
	}

	var txID string
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var existing models.PlayerProfile
		if err := tx.First(&existing, "player = ?", player).Error; err == nil {
			return ErrProfileAlreadyExists
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if err := tx.Create(&profile).Error; err != nil {
			return err
		}
		var err error
		txID, err = logTransaction(tx, models.TxCreateProfile, 0, player, 0)
		return err
	})
	if err != nil {
		return nil, "", err
	}
	return &profile, txID, nil
}

func validateUsername(username string) error {
	if username == "" {
		return ErrUsernameEmpty
	}
	// Length is counted in characters, not bytes; a short multibyte name
	// fails on charset below, not on length.
	if utf8.RuneCountInString(username) > 32 {
		return ErrUsernameTooLong
	}
	for _, r := range username {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '_' || r == '.' || r == '-':
		default:
			return ErrInvalidUsernameChars
		}
	}
	return nil
}

// UpdateStats handles POST /races/:code/stats — applies a completed race to
// the caller's lifetime counters. Calling it again is a no-op success, so
// clients can poll without tracking state.
func (s *ProfileService) UpdateStats(c *fiber.Ctx) error {
	player := callerAddress(c)

	profile, txID, applied, err := s.updateStatistics(c.Params("code"), player)
	if err != nil {
		return ErrorResponse(c, err)
	}

	if applied {
		log.Printf("✅ [STATS] Applied race stats for %s (races=%d wins=%d podiums=%d)",
			player, profile.TotalRaces, profile.TotalWins, profile.TotalPodiums)
	}
	return c.JSON(fiber.Map{
		"transaction_id": txID,
		"applied":        applied,
		"profile":        profile,
	})
}

// updateStatistics applies one entry's outcome to its player's profile.
// Returns applied=false when the entry was already counted.
func (s *ProfileService) updateStatistics(raceRef, player string) (*models.PlayerProfile, string, bool, error) {
	var (
		profile models.PlayerProfile
		txID    string
		applied bool
	)

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		race, err := resolveRace(tx, raceRef)
		if err != nil {
			return err
		}
		if race.Status != models.RaceStatusCompleted {
			return ErrRaceNotCompleted
		}

		var entry models.PlayerEntry
		if err := tx.First(&entry, "race_address = ? AND player = ?", race.Address, player).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrEntryNotFound
			}
			return err
		}

		if err := tx.First(&profile, "player = ?", player).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProfileNotFound
			}
			return err
		}

		if entry.StatsApplied {
			// Already counted. Still log the call so the caller gets a
			// transaction id like every other successful mutation.
			var err error
			txID, err = logTransaction(tx, models.TxUpdateStats, race.RaceID, player, 0)
			return err
		}

		profile.TotalRaces++
		if entry.HorseNumber == race.WinFirst {
			profile.TotalWins++
			profile.TotalPodiums++
		} else if entry.HorseNumber == race.WinSecond || entry.HorseNumber == race.WinThird {
			profile.TotalPodiums++
		}
		earnings, err := addPool(profile.TotalEarnings, entry.PrizeAmount)
		if err != nil {
			return err
		}
		profile.TotalEarnings = earnings

		if err := tx.Save(&profile).Error; err != nil {
			return err
		}
		if err := tx.Model(&entry).Update("stats_applied", true).Error; err != nil {
			return err
		}

		txID, err = logTransaction(tx, models.TxUpdateStats, race.RaceID, player, entry.PrizeAmount)
		if err != nil {
			return err
		}
		applied = true
		return nil
	})
	if err != nil {
		return nil, "", false, err
	}
	return &profile, txID, applied, nil
}

// ApplyEntryStats is the worker-side variant of the stats operation. A
// player who never created a profile is skipped, not failed — the operation
// stays available to them through the endpoint once they do.
func (s *ProfileService) ApplyEntryStats(raceRef, player string) (bool, error) {
	_, _, applied, err := s.updateStatistics(raceRef, player)
	if errors.Is(err, ErrProfileNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return applied, nil
}

// GetProfile handles GET /profiles/:player.
func (s *ProfileService) GetProfile(c *fiber.Ctx) error {
	var profile models.PlayerProfile
	if err := s.DB.First(&profile, "player = ?", c.Params("player")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrorResponse(c, ErrProfileNotFound)
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load profile"})
	}

	return c.JSON(fiber.Map{
		"profile":     profile,
		"win_rate":    profile.WinRate(),
		"podium_rate": profile.PodiumRate(),
	})
}

// ListProfiles handles GET /profiles — the leaderboard, ordered by lifetime
// earnings then wins.
func (s *ProfileService) ListProfiles(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)
	if limit < 1 || limit > 200 {
		limit = 50
	}

	var profiles []models.PlayerProfile
	if err := s.DB.
		Order("total_earnings DESC").
		Order("total_wins DESC").
		Limit(limit).
		Find(&profiles).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load leaderboard"})
	}

	return c.JSON(fiber.Map{"profiles": profiles, "count": len(profiles)})
}
