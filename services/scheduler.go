// services/scheduler.go
package services

import (
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// StartAccrualScheduler runs investment profit accrual once an hour. Accrual
// only credits whole elapsed days, so the hourly cadence just bounds how late
// a credit can land.
func (s *InvestmentService) StartAccrualScheduler() {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DurationJob(1*time.Hour),
		gocron.NewTask(func() {
			credited, err := s.AccrueProfits(time.Now())
			if err != nil {
				log.Printf("[Scheduler] accrual error: %v", err)
				return
			}
			if credited > 0 {
				log.Printf("✅ Accrued profit on %d investments", credited)
			}
		}),
	)
}
