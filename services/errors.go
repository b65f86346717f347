// services/errors.go
package services

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// Engine error taxonomy. Every validation or precondition failure aborts the
// whole operation with no partial mutation; handlers map these onto HTTP
// responses with ErrorResponse.
var (
	// Validation
	ErrInvalidWaitDuration  = errors.New("wait duration must be between 30 and 180 seconds")
	ErrInvalidHorseNumber   = errors.New("horse number must be between 1 and 10")
	ErrUsernameEmpty        = errors.New("username cannot be empty")
	ErrUsernameTooLong      = errors.New("username too long (max 32 characters)")
	ErrInvalidUsernameChars = errors.New("username may only contain letters, digits, '_', '.' and '-'")
	ErrInvalidReferralCode  = errors.New("referral code does not match this race")
	ErrInvalidRaceID        = errors.New("race id out of encodable range")
	ErrInvalidPlatformFee   = errors.New("platform fee must not exceed 10000 basis points")

	// Conflict / state
	ErrRaceIDCollision      = errors.New("a race with this id already exists")
	ErrProfileAlreadyExists = errors.New("profile already exists for this player")
	ErrAlreadyJoined        = errors.New("player already joined this race")
	ErrRaceFull             = errors.New("race is full")
	ErrRaceNotPending       = errors.New("race is no longer accepting entries")
	ErrRaceNotCompleted     = errors.New("race is not completed")
	ErrAlreadyCompleted     = errors.New("race already completed")
	ErrAlreadyClaimed       = errors.New("prize already claimed")
	ErrNotAWinner           = errors.New("entry did not back a winning horse")
	ErrNoPrizeOwed          = errors.New("no prize to claim")
	ErrTreasuryExists       = errors.New("platform treasury already initialized")
	ErrTreasuryNotFound     = errors.New("platform treasury not initialized")
	ErrRaceNotFound         = errors.New("race not found")
	ErrEntryNotFound        = errors.New("player entry not found")
	ErrProfileNotFound      = errors.New("player profile not found")

	// Timing
	ErrWaitPeriodNotElapsed   = errors.New("wait period has not elapsed")
	ErrRaceDurationNotElapsed = errors.New("race duration has not elapsed")

	// Authorization / funds
	ErrUnauthorized      = errors.New("unauthorized")
	ErrInsufficientFunds = errors.New("insufficient funds")

	// Arithmetic — pool accounting must never wrap around.
	ErrMathOverflow = errors.New("math overflow")
)

// errorCodes gives each failure a stable machine-readable code for clients.
var errorCodes = map[error]string{
	ErrInvalidWaitDuration:    "InvalidWaitDuration",
	ErrInvalidHorseNumber:     "InvalidCompetitorNumber",
	ErrUsernameEmpty:          "UsernameEmpty",
	ErrUsernameTooLong:        "UsernameTooLong",
	ErrInvalidUsernameChars:   "InvalidUsernameCharacters",
	ErrInvalidReferralCode:    "InvalidReferralCode",
	ErrInvalidRaceID:          "InvalidRaceId",
	ErrInvalidPlatformFee:     "InvalidPlatformFee",
	ErrRaceIDCollision:        "RaceIdCollision",
	ErrProfileAlreadyExists:   "ProfileAlreadyExists",
	ErrAlreadyJoined:          "AlreadyJoined",
	ErrRaceFull:               "RaceFull",
	ErrRaceNotPending:         "RaceNotPending",
	ErrRaceNotCompleted:       "RaceNotCompleted",
	ErrAlreadyCompleted:       "AlreadyCompleted",
	ErrAlreadyClaimed:         "AlreadyClaimed",
	ErrNotAWinner:             "NotAWinner",
	ErrNoPrizeOwed:            "NoPrizeOwed",
	ErrTreasuryExists:         "TreasuryAlreadyInitialized",
	ErrTreasuryNotFound:       "TreasuryNotInitialized",
	ErrRaceNotFound:           "RaceNotFound",
	ErrEntryNotFound:          "EntryNotFound",
	ErrProfileNotFound:        "ProfileNotFound",
	ErrWaitPeriodNotElapsed:   "WaitPeriodNotElapsed",
	ErrRaceDurationNotElapsed: "RaceDurationNotElapsed",
	ErrUnauthorized:           "Unauthorized",
	ErrInsufficientFunds:      "InsufficientFunds",
	ErrMathOverflow:           "MathOverflow",
}

// ErrorStatus picks the HTTP status for an engine error.
func ErrorStatus(err error) int {
	switch {
	case errors.Is(err, ErrUnauthorized):
		return fiber.StatusUnauthorized
	case errors.Is(err, ErrInsufficientFunds):
		return fiber.StatusPaymentRequired
	case errors.Is(err, ErrRaceNotFound), errors.Is(err, ErrEntryNotFound),
		errors.Is(err, ErrProfileNotFound), errors.Is(err, ErrTreasuryNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, ErrRaceIDCollision), errors.Is(err, ErrProfileAlreadyExists),
		errors.Is(err, ErrAlreadyJoined), errors.Is(err, ErrRaceFull),
		errors.Is(err, ErrRaceNotPending), errors.Is(err, ErrRaceNotCompleted),
		errors.Is(err, ErrAlreadyCompleted), errors.Is(err, ErrAlreadyClaimed),
		errors.Is(err, ErrNotAWinner), errors.Is(err, ErrNoPrizeOwed),
		errors.Is(err, ErrTreasuryExists):
		return fiber.StatusConflict
	case errors.Is(err, ErrWaitPeriodNotElapsed), errors.Is(err, ErrRaceDurationNotElapsed):
		return fiber.StatusTooEarly
	case errors.Is(err, ErrMathOverflow):
		return fiber.StatusInternalServerError
	default:
		return fiber.StatusBadRequest
	}
}

// ErrorResponse writes the typed failure JSON for an engine error. Unknown
// errors are treated as internal.
func ErrorResponse(c *fiber.Ctx, err error) error {
	code, known := errorCodes[err]
	if !known {
		for e, name := range errorCodes {
			if errors.Is(err, e) {
				code, known = name, true
				break
			}
		}
	}
	if !known {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}
	return c.Status(ErrorStatus(err)).JSON(fiber.Map{"error": err.Error(), "code": code})
}
