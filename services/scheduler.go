// services/scheduler.go
package services

import (
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// StartSettlementScheduler runs the due-race sweep on an interval. The
// wall-clock gates in executeRace stay the source of truth; this job is just
// one reliable external caller so races resolve even when no client polls.
func (s *RaceService) StartSettlementScheduler() {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DurationJob(15*time.Second),
		gocron.NewTask(func() {
			s.executeDueRaces()
		}),
	)

	log.Println("✅ Settlement scheduler running (every 15s)")
}
