package handlers_test

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"task-tracker/internal/notify"
)

func (s *HandlerSuite) TestMarkAndReadAttendance() {
	events, unsubscribe := s.hub.Subscribe()
	defer unsubscribe()

	w := s.request("POST", "/api/attendance", s.devToken, gin.H{"status": "present"})
	s.Require().Equal(http.StatusOK, w.Code)
	body := s.decode(w)
	s.Equal("Attendance marked as present", body["message"])
	s.Equal("present", body["attendance"])

	delivered := drain(events)
	s.Require().Len(delivered, 1)
	s.Equal(notify.EventAttendanceUpdated, delivered[0].Type)

	w = s.request("GET", "/api/my-attendance", s.devToken, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	mine := s.decode(w)
	s.Equal("present", mine["attendance"])
	s.Equal(s.clock.Now().Format(time.RFC3339), mine["lastAttendanceUpdate"])

	w = s.request("GET", "/api/developers", s.adminToken, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var devs []map[string]any
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &devs))
	s.Len(devs, 2)
	for _, d := range devs {
		s.NotEqual("admin@example.com", d["email"])
		s.NotContains(d, "password")
	}
}

func (s *HandlerSuite) TestMarkAttendanceInvalid() {
	w := s.request("POST", "/api/attendance", s.devToken, gin.H{"status": "sleeping"})
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal("Invalid attendance status. Must be 'present' or 'absent'", s.decode(w)["message"])
}
