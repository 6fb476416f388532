package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"task-tracker/internal/database"
	"task-tracker/internal/models"
	"task-tracker/internal/notify"
	"task-tracker/internal/repositories"
)

type DeveloperAttendance struct {
	Name                 string     `json:"name"`
	Email                string     `json:"email"`
	Attendance           string     `json:"attendance"`
	LastAttendanceUpdate *time.Time `json:"lastAttendanceUpdate"`
}

type AttendanceStatus struct {
	Attendance           string     `json:"attendance"`
	LastAttendanceUpdate *time.Time `json:"lastAttendanceUpdate"`
}

type AttendanceService interface {
	ListDevelopers(ctx context.Context) ([]DeveloperAttendance, error)
	Get(ctx context.Context, actor models.Principal) (*AttendanceStatus, error)
	Mark(ctx context.Context, actor models.Principal, status string) (*AttendanceStatus, error)
}

type AttendanceServiceImpl struct {
	users       repositories.UserRepository
	broadcaster notify.Broadcaster
	now         func() time.Time
	logger      zerolog.Logger
}

func NewAttendanceService(users repositories.UserRepository, broadcaster notify.Broadcaster, now func() time.Time, logger zerolog.Logger) *AttendanceServiceImpl {
	if now == nil {
		now = time.Now
	}
	return &AttendanceServiceImpl{
		users:       users,
		broadcaster: broadcaster,
		now:         now,
		logger:      logger.With().Str("component", "attendance").Logger(),
	}
}

func (s *AttendanceServiceImpl) ListDevelopers(ctx context.Context) ([]DeveloperAttendance, error) {
	developers, err := s.users.List(ctx, repositories.UserFilter{Role: models.RoleDeveloper}, repositories.UserSortNewest)
	if err != nil {
		return nil, err
	}

	result := make([]DeveloperAttendance, 0, len(developers))
	for _, dev := range developers {
		result = append(result, DeveloperAttendance{
			Name:                 dev.Name,
			Email:                dev.Email,
			Attendance:           dev.Attendance,
			LastAttendanceUpdate: dev.LastAttendanceUpdate,
		})
	}
	return result, nil
}

func (s *AttendanceServiceImpl) Get(ctx context.Context, actor models.Principal) (*AttendanceStatus, error) {
	user, err := s.users.FindByEmail(ctx, actor.Email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, notFound("User not found")
	}
	return &AttendanceStatus{Attendance: user.Attendance, LastAttendanceUpdate: user.LastAttendanceUpdate}, nil
}

func (s *AttendanceServiceImpl) Mark(ctx context.Context, actor models.Principal, status string) (*AttendanceStatus, error) {
	status = strings.TrimSpace(status)
	if !models.IsValidAttendance(status) {
		return nil, invalid("Invalid attendance status. Must be 'present' or 'absent'")
	}

	user, err := s.users.FindByEmail(ctx, actor.Email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, notFound("User not found")
	}

	now := s.now().UTC()
	user.Attendance = status
	user.LastAttendanceUpdate = &now
	saved, err := s.users.Save(ctx, user)
	if errors.Is(err, database.ErrNotFound) {
		return nil, notFound("User not found")
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("email", saved.Email).Str("attendance", status).Msg("attendance updated")
	s.broadcaster.Publish(notify.Event{
		Type:    notify.EventAttendanceUpdated,
		Payload: notify.AttendancePayload{Email: saved.Email, Attendance: saved.Attendance},
	})
	return &AttendanceStatus{Attendance: saved.Attendance, LastAttendanceUpdate: saved.LastAttendanceUpdate}, nil
}
