package handlers_test

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

func (s *HandlerSuite) TestCleanupEndpoint() {
	now := s.clock.Now()
	s.clock.Set(now.Add(-10 * 24 * time.Hour))
	s.createTask(gin.H{"title": "stale", "details": "d"})
	s.clock.Set(now)
	s.createTask(gin.H{"title": "fresh", "details": "d"})

	w := s.request("POST", "/api/cleanup-tasks", s.adminToken, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	body := s.decode(w)
	s.Equal("Cleanup completed", body["message"])
	s.Equal(float64(1), body["deletedCount"])

	w = s.request("POST", "/api/cleanup-tasks", s.adminToken, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Equal(float64(0), s.decode(w)["deletedCount"])
}
