// utils/referral.go
package utils

import (
	"errors"
	"strings"
)

const (
	// ReferralCodeLength — codes are always exactly 8 base-36 digits.
	ReferralCodeLength = 8

	referralAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

// MaxRaceID is the largest race id an 8-digit base-36 code can carry (36^8 - 1).
const MaxRaceID uint64 = 2821109907455

var ErrInvalidReferralFormat = errors.New("referral code must be 8 base-36 characters")

// EncodeReferralCode turns a race id into its shareable 8-char join token.
// Digit i holds raceID / 36^i mod 36, so decoding is positional from the left.
func EncodeReferralCode(raceID uint64) string {
	var code [ReferralCodeLength]byte
	for i := 0; i < ReferralCodeLength; i++ {
		code[i] = referralAlphabet[raceID%36]
		raceID /= 36
	}
	return string(code[:])
}

// DecodeReferralCode is the inverse of EncodeReferralCode. Lowercase input
// is accepted; anything outside the base-36 alphabet or not exactly 8 chars
// is rejected.
func DecodeReferralCode(code string) (uint64, error) {
	if len(code) != ReferralCodeLength {
		return 0, ErrInvalidReferralFormat
	}
	code = strings.ToUpper(code)

	var raceID uint64
	multiplier := uint64(1)
	for i := 0; i < ReferralCodeLength; i++ {
		value := strings.IndexByte(referralAlphabet, code[i])
		if value < 0 {
			return 0, ErrInvalidReferralFormat
		}
		raceID += uint64(value) * multiplier
		multiplier *= 36
	}
	return raceID, nil
}
