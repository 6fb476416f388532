package handlers_test

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"

	"task-tracker/internal/notify"
)

func (s *HandlerSuite) TestCreateAndFetchTask() {
	task := s.createTask(gin.H{"title": "T1", "details": "D1"})

	s.Equal("todo", task["status"])
	s.Equal("medium", task["priority"])
	s.Equal("admin@example.com", task["ownerEmail"])
	s.Equal([]any{}, task["attachments"])
	s.NotEmpty(task["createdAt"])

	w := s.request("GET", "/api/task/"+task["id"].(string), s.devToken, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	fetched := s.decode(w)
	s.Equal(task["id"], fetched["id"])
	s.Equal("T1", fetched["title"])
	s.Equal("D1", fetched["details"])
	s.Equal("todo", fetched["status"])
	s.Equal("medium", fetched["priority"])
	s.Equal(task["createdAt"], fetched["createdAt"])
}

func (s *HandlerSuite) TestCreateTaskValidation() {
	w := s.request("POST", "/create", s.adminToken, gin.H{"title": "only title"})
	s.Equal(http.StatusBadRequest, w.Code)
	body := s.decode(w)
	s.Equal("InvalidArgument", body["error"])
	s.Equal("Title and details are required", body["message"])

	w = s.request("POST", "/create", s.adminToken, gin.H{"title": "T", "details": "D", "dueDate": "2026-05-19"})
	s.Equal(http.StatusBadRequest, w.Code)

	w = s.request("POST", "/create", s.adminToken, gin.H{"title": "T", "details": "D", "dueDate": "2026-05-20"})
	s.Equal(http.StatusCreated, w.Code)
}

func (s *HandlerSuite) TestListTasksNewestFirst() {
	s.createTask(gin.H{"title": "first", "details": "d"})
	s.clock.Advance(time.Minute)
	s.createTask(gin.H{"title": "second", "details": "d"})
	s.clock.Advance(time.Minute)
	s.createTask(gin.H{"title": "third", "details": "d"})

	w := s.request("GET", "/api/tasks", s.devToken, nil)
	s.Require().Equal(http.StatusOK, w.Code)

	var tasks []map[string]any
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &tasks))
	s.Require().Len(tasks, 3)
	s.Equal("third", tasks[0]["title"])
	s.Equal("second", tasks[1]["title"])
	s.Equal("first", tasks[2]["title"])
}

func (s *HandlerSuite) TestAssignToUnknownDeveloper() {
	task := s.createTask(gin.H{"title": "T", "details": "D"})
	path := "/api/task/" + task["id"].(string)

	w := s.request("PUT", path+"/assign", s.adminToken, gin.H{"assigneeEmail": "dev@x.com"})
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal("Invalid developer email", s.decode(w)["message"])

	w = s.request("GET", path, s.adminToken, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Nil(s.decode(w)["assigneeEmail"])
}

func (s *HandlerSuite) TestStatusChangeOwnership() {
	task := s.createTask(gin.H{"title": "T", "details": "D", "assigneeEmail": "other@example.com"})
	path := "/api/task/" + task["id"].(string)

	w := s.request("PUT", path+"/status", s.devToken, gin.H{"status": "done"})
	s.Equal(http.StatusForbidden, w.Code)
	s.Contains(s.decode(w)["message"], "other@example.com")

	w = s.request("GET", path, s.adminToken, nil)
	s.Equal("todo", s.decode(w)["status"])

	w = s.request("PUT", path+"/assign", s.adminToken, gin.H{"assigneeEmail": "dev@example.com"})
	s.Require().Equal(http.StatusOK, w.Code)

	w = s.request("PUT", path+"/status", s.devToken, gin.H{"status": "in-progress"})
	s.Require().Equal(http.StatusOK, w.Code)
	s.Equal("in-progress", s.decode(w)["task"].(map[string]any)["status"])

	w = s.request("PUT", path+"/status", s.devToken, gin.H{"status": "finished"})
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *HandlerSuite) TestUpdateTaskPartial() {
	task := s.createTask(gin.H{"title": "T", "details": "D", "priority": "high", "assigneeEmail": "dev@example.com"})
	path := "/api/task/" + task["id"].(string)

	w := s.request("PUT", path, s.adminToken, gin.H{"title": "T2", "details": nil})
	s.Require().Equal(http.StatusOK, w.Code)
	updated := s.decode(w)["task"].(map[string]any)
	s.Equal("T2", updated["title"])
	s.Equal("D", updated["details"])
	s.Equal("high", updated["priority"])
	s.Equal("dev@example.com", updated["assigneeEmail"])

	w = s.request("PUT", path, s.adminToken, gin.H{"assigneeEmail": ""})
	s.Require().Equal(http.StatusOK, w.Code)
	s.Nil(s.decode(w)["task"].(map[string]any)["assigneeEmail"])

	w = s.request("PUT", path, s.adminToken, gin.H{"dueDate": "2020-01-01"})
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal("Cannot set deadline to a past date", s.decode(w)["message"])
}

func (s *HandlerSuite) TestDeleteTaskPublishesOnce() {
	task := s.createTask(gin.H{"title": "T", "details": "D"})
	id := task["id"].(string)

	events, unsubscribe := s.hub.Subscribe()
	defer unsubscribe()

	w := s.request("DELETE", "/api/task/"+id, s.adminToken, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Equal("Task deleted!", s.decode(w)["message"])

	delivered := drain(events)
	s.Require().Len(delivered, 1)
	s.Equal(notify.EventTaskDeleted, delivered[0].Type)
	s.Equal(notify.TaskDeletedPayload{ID: uuid.FromStringOrNil(id)}, delivered[0].Payload)

	w = s.request("DELETE", "/api/task/"+id, s.adminToken, nil)
	s.Equal(http.StatusNotFound, w.Code)
	s.Empty(drain(events))
}

func (s *HandlerSuite) TestUnknownAndMalformedTaskIDs() {
	w := s.request("GET", "/api/task/"+uuid.Must(uuid.NewV4()).String(), s.adminToken, nil)
	s.Equal(http.StatusNotFound, w.Code)
	s.Equal("NotFound", s.decode(w)["error"])

	w = s.request("GET", "/api/task/not-a-uuid", s.adminToken, nil)
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *HandlerSuite) TestStoreUnavailable() {
	sqlDB, err := s.store.DB().DB()
	s.Require().NoError(err)
	s.Require().NoError(sqlDB.Close())

	w := s.request("GET", "/api/tasks", s.adminToken, nil)
	s.Equal(http.StatusServiceUnavailable, w.Code)
	body := s.decode(w)
	s.Equal("StoreUnavailable", body["error"])
	s.NotContains(body["message"], "sql")

	w = s.request("GET", "/health", "", nil)
	s.Equal(http.StatusServiceUnavailable, w.Code)
	s.Equal("disconnected", s.decode(w)["database"])
}
