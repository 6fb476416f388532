package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"task-tracker/internal/middleware"
	"task-tracker/internal/services"
)

type TaskHandler struct {
	taskService services.TaskService
}

type CreateTaskRequest struct {
	Title         string `json:"title"`
	Details       string `json:"details"`
	Status        string `json:"status"`
	Priority      string `json:"priority"`
	AssigneeEmail string `json:"assigneeEmail"`
	DueDate       string `json:"dueDate"`
}

// UpdateTaskRequest uses pointers so omitted and null fields are told apart
// from empty strings.
type UpdateTaskRequest struct {
	Title         *string `json:"title"`
	Details       *string `json:"details"`
	Status        *string `json:"status"`
	Priority      *string `json:"priority"`
	AssigneeEmail *string `json:"assigneeEmail"`
	DueDate       *string `json:"dueDate"`
}

type AssignTaskRequest struct {
	AssigneeEmail *string `json:"assigneeEmail"`
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

func NewTaskHandler(taskService services.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

func (h *TaskHandler) ListTasks(c *gin.Context) {
	tasks, err := h.taskService.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

func (h *TaskHandler) GetTask(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}

	task, err := h.taskService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) CreateTask(c *gin.Context) {
	principal, _ := middleware.CurrentPrincipal(c)

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Title and details are required")
		return
	}

	task, err := h.taskService.Create(c.Request.Context(), principal, services.CreateTaskInput{
		Title:         req.Title,
		Details:       req.Details,
		Status:        req.Status,
		Priority:      req.Priority,
		AssigneeEmail: req.AssigneeEmail,
		DueDate:       req.DueDate,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Task created!", "task": task})
}

func (h *TaskHandler) UpdateTask(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}

	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	task, err := h.taskService.Update(c.Request.Context(), id, services.UpdateTaskInput{
		Title:         req.Title,
		Details:       req.Details,
		Status:        req.Status,
		Priority:      req.Priority,
		AssigneeEmail: req.AssigneeEmail,
		DueDate:       req.DueDate,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Task updated!", "task": task})
}

func (h *TaskHandler) AssignTask(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}

	var req AssignTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	assignee := ""
	if req.AssigneeEmail != nil {
		assignee = *req.AssigneeEmail
	}

	task, err := h.taskService.Assign(c.Request.Context(), id, assignee)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Task assigned successfully", "task": task})
}

func (h *TaskHandler) UpdateTaskStatus(c *gin.Context) {
	principal, _ := middleware.CurrentPrincipal(c)

	id, ok := taskID(c)
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid status. Must be 'todo', 'in-progress', or 'done'")
		return
	}

	task, err := h.taskService.UpdateStatus(c.Request.Context(), principal, id, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Task status updated", "task": task})
}

func (h *TaskHandler) DeleteTask(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}

	if err := h.taskService.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Task deleted!"})
}
