package jobs

import (
	"context"
	"log"
	"time"

	"catering-backend/internal/service"

	"github.com/go-co-op/gocron/v2"
)

// notificationRetention is how long read notifications are kept before the
// cleanup job removes them.
const notificationRetention = 30 * 24 * time.Hour

// Scheduler runs the periodic maintenance jobs.
type Scheduler struct {
	scheduler gocron.Scheduler
	notifier  service.NotificationService
}

func NewScheduler(notifier service.NotificationService) (*Scheduler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	s := &Scheduler{
		scheduler: scheduler,
		notifier:  notifier,
	}
	if err := s.registerJobs(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Scheduler) registerJobs() error {
	_, err := s.scheduler.NewJob(
		gocron.DurationJob(24*time.Hour),
		gocron.NewTask(s.cleanupNotifications, context.Background()),
		gocron.WithName("notification-cleanup"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	return err
}

func (s *Scheduler) cleanupNotifications(ctx context.Context) {
	deleted, err := s.notifier.CleanupRead(ctx, notificationRetention)
	if err != nil {
		log.Printf("notification cleanup failed: %v", err)
		return
	}
	if deleted > 0 {
		log.Printf("notification cleanup removed %d read notifications", deleted)
	}
}

func (s *Scheduler) Start() {
	log.Println("Starting background job scheduler")
	s.scheduler.Start()
}

func (s *Scheduler) Stop() error {
	return s.scheduler.Shutdown()
}
