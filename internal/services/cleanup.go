package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"task-tracker/internal/notify"
	"task-tracker/internal/repositories"
)

const DefaultRetention = 7 * 24 * time.Hour

type CleanupService struct {
	tasks       repositories.TaskRepository
	broadcaster notify.Broadcaster
	retention   time.Duration
	now         func() time.Time
	logger      zerolog.Logger
}

func NewCleanupService(tasks repositories.TaskRepository, broadcaster notify.Broadcaster, retention time.Duration, now func() time.Time, logger zerolog.Logger) *CleanupService {
	if retention <= 0 {
		retention = DefaultRetention
	}
	if now == nil {
		now = time.Now
	}
	return &CleanupService{
		tasks:       tasks,
		broadcaster: broadcaster,
		retention:   retention,
		now:         now,
		logger:      logger.With().Str("component", "cleanup").Logger(),
	}
}

// Cutoff is the start of the local day that lies one retention period
// before now.
func (s *CleanupService) Cutoff() time.Time {
	then := s.now().Add(-s.retention)
	y, m, d := then.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, then.Location())
}

// Run deletes tasks created before the cutoff and reports how many went.
func (s *CleanupService) Run(ctx context.Context) (int64, error) {
	cutoff := s.Cutoff()

	deleted, err := s.tasks.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		s.logger.Error().Err(err).Time("cutoff", cutoff).Msg("task cleanup failed")
		return 0, err
	}

	s.logger.Info().Int64("deleted", deleted).Time("cutoff", cutoff).Msg("task cleanup finished")
	if deleted > 0 {
		s.broadcaster.Publish(notify.Event{
			Type:    notify.EventTasksCleaned,
			Payload: notify.TasksCleanedPayload{DeletedCount: deleted},
		})
	}
	return deleted, nil
}
