// Package notify fans domain events out to connected clients. Delivery is
// best-effort: publishing never blocks or fails the caller and a client that
// cannot keep up loses events.
package notify

import "github.com/gofrs/uuid"

const (
	EventTaskCreated       = "taskCreated"
	EventTaskUpdated       = "taskUpdated"
	EventTaskDeleted       = "taskDeleted"
	EventAttendanceUpdated = "attendanceUpdated"
	EventTasksCleaned      = "tasksCleaned"
)

type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// Broadcaster is the publishing side used by the services.
type Broadcaster interface {
	Publish(event Event)
}

type TaskDeletedPayload struct {
	ID uuid.UUID `json:"id"`
}

type AttendancePayload struct {
	Email      string `json:"email"`
	Attendance string `json:"attendance"`
}

type TasksCleanedPayload struct {
	DeletedCount int64 `json:"deletedCount"`
}
