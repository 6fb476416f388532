package handlers_test

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"task-tracker/internal/models"
)

func (s *HandlerSuite) TestLoginIssuesTokenWithStoredRole() {
	w := s.request("POST", "/", "", gin.H{"email": "admin@example.com", "password": "admin-pw"})
	s.Require().Equal(http.StatusOK, w.Code)

	body := s.decode(w)
	s.Equal("Login success!", body["message"])
	s.Equal(float64(3600), body["expiresIn"])

	principal, err := s.tokens.Verify(body["token"].(string))
	s.Require().NoError(err)
	s.Equal(models.RoleAdmin, principal.Role)

	devPrincipal, err := s.tokens.Verify(s.devToken)
	s.Require().NoError(err)
	s.Equal(models.RoleDeveloper, devPrincipal.Role)
}

func (s *HandlerSuite) TestLoginFailures() {
	w := s.request("POST", "/", "", gin.H{"email": "admin@example.com", "password": "nope"})
	s.Equal(http.StatusUnauthorized, w.Code)
	s.Equal("Unauthorized", s.decode(w)["error"])

	w = s.request("POST", "/", "", gin.H{"email": "admin@example.com"})
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal("Email/password required", s.decode(w)["message"])
}

func (s *HandlerSuite) TestRegister() {
	w := s.request("POST", "/register", "", gin.H{"name": "New", "email": "new@example.com", "password": "pw"})
	s.Require().Equal(http.StatusCreated, w.Code)
	user := s.decode(w)["user"].(map[string]any)
	s.Equal(models.RoleDeveloper, user["role"])
	s.NotContains(user, "password")

	w = s.request("POST", "/register", "", gin.H{"name": "New", "email": "new@example.com", "password": "pw"})
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal("Email exists", s.decode(w)["message"])

	w = s.request("POST", "/register", "", gin.H{"email": "x@example.com"})
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *HandlerSuite) TestForgotPassword() {
	w := s.request("POST", "/forgot", "", gin.H{"email": "dev@example.com", "newPassword": "fresh"})
	s.Require().Equal(http.StatusOK, w.Code)

	s.login("dev@example.com", "fresh")

	w = s.request("POST", "/forgot", "", gin.H{"email": "ghost@example.com", "newPassword": "fresh"})
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal("No user found with that email", s.decode(w)["message"])
}

func (s *HandlerSuite) TestProtectedRoutesNeedToken() {
	w := s.request("GET", "/api/tasks", "", nil)
	s.Equal(http.StatusUnauthorized, w.Code)
	s.Equal("Login required!", s.decode(w)["message"])

	w = s.request("GET", "/api/tasks", "garbage", nil)
	s.Equal(http.StatusUnauthorized, w.Code)
	s.Equal("Invalid token!", s.decode(w)["message"])
}

func (s *HandlerSuite) TestExpiredTokenRejected() {
	s.clock.Advance(2 * time.Hour)

	w := s.request("GET", "/api/tasks", s.adminToken, nil)
	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *HandlerSuite) TestDeveloperForbiddenOnAdminEndpoints() {
	task := s.createTask(gin.H{"title": "T", "details": "D"})
	id := task["id"].(string)

	cases := []struct {
		method, path string
		body         any
	}{
		{"POST", "/create", gin.H{"title": "T", "details": "D"}},
		{"PUT", "/api/task/" + id, gin.H{"title": "hacked"}},
		{"PUT", "/api/task/" + id + "/assign", gin.H{"assigneeEmail": "dev@example.com"}},
		{"DELETE", "/api/task/" + id, nil},
		{"GET", "/api/developers", nil},
		{"POST", "/api/cleanup-tasks", nil},
	}
	for _, tc := range cases {
		w := s.request(tc.method, tc.path, s.devToken, tc.body)
		s.Equal(http.StatusForbidden, w.Code, "%s %s", tc.method, tc.path)
	}

	w := s.request("GET", "/api/tasks", s.adminToken, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var tasks []map[string]any
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &tasks))
	s.Require().Len(tasks, 1)
	s.Equal("T", tasks[0]["title"])
	s.Nil(tasks[0]["assigneeEmail"])
}

func (s *HandlerSuite) TestAdminForbiddenOnDeveloperEndpoints() {
	w := s.request("POST", "/api/attendance", s.adminToken, gin.H{"status": "present"})
	s.Equal(http.StatusForbidden, w.Code)
}
