package workers

import (
	"context"
	"log"
	"time"

	"race-wager-system/models"
	"race-wager-system/services"

	"gorm.io/gorm"
)

// StatsApplier sweeps completed races and applies the one-time statistics
// update for entries that have not been counted yet, so profiles stay
// current even when clients never call the stats endpoint themselves.
type StatsApplier struct {
	DB       *gorm.DB
	Profiles *services.ProfileService
}

func NewStatsApplier(db *gorm.DB, profiles *services.ProfileService) *StatsApplier {
	return &StatsApplier{DB: db, Profiles: profiles}
}

// PollStats runs the sweep on an interval until ctx is cancelled.
func PollStats(ctx context.Context, applier *StatsApplier, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Printf("📊 [STATS_WORKER] Polling every %s", interval)
	for {
		select {
		case <-ctx.Done():
			log.Println("📊 [STATS_WORKER] Stopped")
			return
		case <-ticker.C:
			applier.sweep()
		}
	}
}

func (a *StatsApplier) sweep() {
	var entries []models.PlayerEntry
	err := a.DB.
		Joins("JOIN races ON races.address = player_entries.race_address").
		Where("races.status = ? AND player_entries.stats_applied = ?", models.RaceStatusCompleted, false).
		Limit(100).
		Find(&entries).Error
	if err != nil {
		log.Printf("❌ [STATS_WORKER] Failed to list pending entries: %v", err)
		return
	}

	for _, entry := range entries {
		var race models.Race
		if err := a.DB.First(&race, "address = ?", entry.RaceAddress).Error; err != nil {
			continue
		}
		applied, err := a.Profiles.ApplyEntryStats(race.ReferralCode, entry.Player)
		if err != nil {
			log.Printf("⚠️ [STATS_WORKER] Stats for %s in race %d failed: %v", entry.Player, entry.RaceID, err)
			continue
		}
		if applied {
			log.Printf("📊 [STATS_WORKER] Applied stats for %s in race %d", entry.Player, entry.RaceID)
		}
	}
}
