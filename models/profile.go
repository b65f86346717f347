// models/profile.go
package models

import "time"

// PlayerProfile holds a player's lifetime statistics. One per wallet
// address, created on demand, never deleted. Counters only move forward:
// the stats worker applies each race at most once per entry.
type PlayerProfile struct {
	Address       string    `gorm:"primaryKey;type:varchar(64)" json:"address"`
	Player        string    `gorm:"type:varchar(64);not null;uniqueIndex" json:"player"`
	Username      string    `gorm:"type:varchar(32);not null" json:"username"`
	TotalRaces    uint32    `gorm:"not null;default:0" json:"total_races"`
	TotalWins     uint32    `gorm:"not null;default:0" json:"total_wins"`
	TotalPodiums  uint32    `gorm:"not null;default:0" json:"total_podiums"`
	TotalEarnings uint64    `gorm:"not null;default:0" json:"total_earnings"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// WinRate is races won / races entered (0 when no races yet).
func (p *PlayerProfile) WinRate() float64 {
	if p.TotalRaces == 0 {
		return 0
	}
	return float64(p.TotalWins) / float64(p.TotalRaces)
}

// PodiumRate is top-3 finishes / races entered.
func (p *PlayerProfile) PodiumRate() float64 {
	if p.TotalRaces == 0 {
		return 0
	}
	return float64(p.TotalPodiums) / float64(p.TotalRaces)
}
