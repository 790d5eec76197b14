// services/scheduler.go
package services

import (
	"errors"
	"log"
	"time"

	"fan-claim-service/models"

	"github.com/go-co-op/gocron/v2"
)

// StartCloseScheduler settles funded distribution events once their claim
// window has lapsed, so residual funds flow back to athletes without manual
// intervention.
func (s *DistributionService) StartCloseScheduler() {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	// Every minute: close funded events past their close time
	_, _ = sched.NewJob(
		gocron.DurationJob(1*time.Minute),
		gocron.NewTask(func() {
			var events []models.DistributionEvent
			now := s.now().Unix()
			err := s.DB.Where("status = ? AND close_time < ?", models.DistributionEventFunded, now).
				Find(&events).Error
			if err != nil {
				log.Printf("[Scheduler] DB error: %v", err)
				return
			}

			for _, e := range events {
				report, err := s.CloseDistribution(e.ID)
				if err != nil {
					// another actor may have closed it between the query and the lock
					if errors.Is(err, ErrAlreadyClosed) {
						continue
					}
					log.Printf("[Scheduler] Failed to close event %d: %v", e.ID, err)
					continue
				}
				log.Printf("✅ Auto-closed distribution event %d, swept %d", e.ID, report.SweptAmount)
			}
		}),
	)
}
