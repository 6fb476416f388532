package services_test

import (
	"task-tracker/internal/models"
	"task-tracker/internal/notify"
	"task-tracker/internal/services"
)

func (s *ServiceSuite) TestMarkAttendance() {
	status, err := s.attendance.Mark(s.ctx, s.dev, models.AttendancePresent)
	s.Require().NoError(err)
	s.Equal(models.AttendancePresent, status.Attendance)
	s.Require().NotNil(status.LastAttendanceUpdate)
	s.True(status.LastAttendanceUpdate.Equal(s.clock.Now()))

	current, err := s.attendance.Get(s.ctx, s.dev)
	s.Require().NoError(err)
	s.Equal(models.AttendancePresent, current.Attendance)

	events := s.events.Events()
	s.Require().Len(events, 1)
	s.Equal(notify.EventAttendanceUpdated, events[0].Type)
	s.Equal(notify.AttendancePayload{Email: "dev@example.com", Attendance: "present"}, events[0].Payload)
}

func (s *ServiceSuite) TestMarkAttendanceValidation() {
	_, err := s.attendance.Mark(s.ctx, s.dev, "late")
	s.ErrorIs(err, services.ErrInvalidArgument)

	ghost := models.Principal{Email: "ghost@example.com", Role: models.RoleDeveloper}
	_, err = s.attendance.Mark(s.ctx, ghost, models.AttendancePresent)
	s.ErrorIs(err, services.ErrNotFound)

	_, err = s.attendance.Get(s.ctx, ghost)
	s.ErrorIs(err, services.ErrNotFound)
	s.Empty(s.events.Events())
}

func (s *ServiceSuite) TestListDevelopersExcludesAdmins() {
	_, err := s.attendance.Mark(s.ctx, s.other, models.AttendancePresent)
	s.Require().NoError(err)

	devs, err := s.attendance.ListDevelopers(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(devs, 2)

	byEmail := map[string]services.DeveloperAttendance{}
	for _, d := range devs {
		byEmail[d.Email] = d
	}
	s.NotContains(byEmail, "admin@example.com")
	s.Equal(models.AttendanceAbsent, byEmail["dev@example.com"].Attendance)
	s.Nil(byEmail["dev@example.com"].LastAttendanceUpdate)
	s.Equal(models.AttendancePresent, byEmail["other@example.com"].Attendance)
}
