// utils/address.go
package utils

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
)

// Purpose tags for derived account addresses. Every record and balance
// account in the system lives at an address derived from one of these tags
// plus its identifying seeds, so any client can locate it without a lookup
// directory.
const (
	SeedPlatformVault = "platform_vault"
	SeedRace          = "race"
	SeedRaceVault     = "race_vault"
	SeedPlayerEntry   = "player_entry"
	SeedPlayerProfile = "player_profile"
	SeedPlayerWallet  = "player_wallet"
)

// DeriveAddress maps a purpose tag plus seed values to a stable 64-char hex
// address. Seeds are separated by a zero byte so ("ab","c") and ("a","bc")
// cannot collide.
func DeriveAddress(tag string, seeds ...[]byte) string {
	h := sha256.New()
	h.Write([]byte(tag))
	for _, seed := range seeds {
		h.Write([]byte{0})
		h.Write(seed)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// RaceIDSeed encodes a race id as its 8-byte little-endian seed form.
func RaceIDSeed(raceID uint64) []byte {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], raceID)
	return b[:]
}

// RaceAddress returns the address of the race record for raceID.
func RaceAddress(raceID uint64) string {
	return DeriveAddress(SeedRace, RaceIDSeed(raceID))
}

// RaceVaultAddress returns the address of the escrow account holding a
// race's collected entry fees.
func RaceVaultAddress(raceAddress string) string {
	return DeriveAddress(SeedRaceVault, []byte(raceAddress))
}

// PlayerEntryAddress returns the address of the (race, player) entry record.
func PlayerEntryAddress(raceAddress, player string) string {
	return DeriveAddress(SeedPlayerEntry, []byte(raceAddress), []byte(player))
}

// PlayerProfileAddress returns the address of a player's profile record.
func PlayerProfileAddress(player string) string {
	return DeriveAddress(SeedPlayerProfile, []byte(player))
}

// PlayerWalletAddress returns the address of a player's spendable balance.
func PlayerWalletAddress(player string) string {
	return DeriveAddress(SeedPlayerWallet, []byte(player))
}

// PlatformVaultAddress returns the singleton treasury address.
func PlatformVaultAddress() string {
	return DeriveAddress(SeedPlatformVault)
}
