package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"task-tracker/internal/middleware"
	"task-tracker/internal/services"
)

type AttendanceHandler struct {
	attendanceService services.AttendanceService
}

type MarkAttendanceRequest struct {
	Status string `json:"status"`
}

func NewAttendanceHandler(attendanceService services.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendanceService: attendanceService}
}

func (h *AttendanceHandler) ListDevelopers(c *gin.Context) {
	developers, err := h.attendanceService.ListDevelopers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, developers)
}

func (h *AttendanceHandler) MyAttendance(c *gin.Context) {
	principal, _ := middleware.CurrentPrincipal(c)

	status, err := h.attendanceService.Get(c.Request.Context(), principal)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

func (h *AttendanceHandler) MarkAttendance(c *gin.Context) {
	principal, _ := middleware.CurrentPrincipal(c)

	var req MarkAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid attendance status. Must be 'present' or 'absent'")
		return
	}

	status, err := h.attendanceService.Mark(c.Request.Context(), principal, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":              fmt.Sprintf("Attendance marked as %s", status.Attendance),
		"attendance":           status.Attendance,
		"lastAttendanceUpdate": status.LastAttendanceUpdate,
	})
}
