package services_test

import (
	"time"

	"task-tracker/internal/notify"
	"task-tracker/internal/services"
)

func (s *ServiceSuite) TestCleanupCutoffIsStartOfDay() {
	s.Equal(time.Date(2026, 5, 13, 0, 0, 0, 0, time.UTC), s.cleanup.Cutoff())
}

func (s *ServiceSuite) TestCleanupDeletesOnlyTasksBeforeCutoff() {
	now := s.clock.Now()

	s.clock.Set(time.Date(2026, 5, 12, 23, 59, 0, 0, time.UTC))
	s.newTask("stale")
	s.clock.Set(time.Date(2026, 5, 13, 0, 0, 0, 0, time.UTC))
	boundary := s.newTask("boundary")
	s.clock.Set(time.Date(2026, 5, 19, 12, 0, 0, 0, time.UTC))
	recent := s.newTask("recent")
	s.clock.Set(now)

	deleted, err := s.cleanup.Run(s.ctx)
	s.Require().NoError(err)
	s.Equal(int64(1), deleted)

	left, err := s.taskSvc.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(left, 2)
	s.Equal(recent.ID, left[0].ID)
	s.Equal(boundary.ID, left[1].ID)

	events := s.events.Events()
	last := events[len(events)-1]
	s.Equal(notify.EventTasksCleaned, last.Type)
	s.Equal(notify.TasksCleanedPayload{DeletedCount: 1}, last.Payload)

	before := len(events)
	deleted, err = s.cleanup.Run(s.ctx)
	s.Require().NoError(err)
	s.Zero(deleted)
	s.Len(s.events.Events(), before)
}

func (s *ServiceSuite) TestCleanupReportsStoreFailure() {
	sqlDB, err := s.store.DB().DB()
	s.Require().NoError(err)
	s.Require().NoError(sqlDB.Close())

	_, err = s.cleanup.Run(s.ctx)
	s.ErrorIs(err, services.ErrStoreUnavailable)
	s.Empty(s.events.Events())
}
