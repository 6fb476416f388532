package models

import (
	"time"

	"github.com/gofrs/uuid"
)

const (
	RoleAdmin     = "admin"
	RoleDeveloper = "developer"
)

const (
	AttendancePresent = "present"
	AttendanceAbsent  = "absent"
)

type User struct {
	ID                   uuid.UUID  `json:"id" gorm:"primaryKey;type:uuid"`
	Name                 string     `json:"name" gorm:"not null"`
	Email                string     `json:"email" gorm:"uniqueIndex;not null"`
	Password             string     `json:"-" gorm:"not null"`
	Role                 string     `json:"role" gorm:"not null;default:'developer'"`
	Attendance           string     `json:"attendance" gorm:"not null;default:'absent'"`
	LastAttendanceUpdate *time.Time `json:"lastAttendanceUpdate" gorm:"column:last_attendance_update"`
	CreatedAt            time.Time  `json:"createdAt"`
	UpdatedAt            time.Time  `json:"updatedAt"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) RecordID() uuid.UUID {
	return u.ID
}

func (u *User) SetRecordID(id uuid.UUID) {
	u.ID = id
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u *User) IsDeveloper() bool {
	return u.Role == RoleDeveloper
}

func IsValidRole(role string) bool {
	return role == RoleAdmin || role == RoleDeveloper
}

func IsValidAttendance(status string) bool {
	return status == AttendancePresent || status == AttendanceAbsent
}

// Principal is the identity carried by a verified access token.
type Principal struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

func (p Principal) HasRole(roles ...string) bool {
	for _, role := range roles {
		if p.Role == role {
			return true
		}
	}
	return false
}
