package models

import "time"

// Role identifies what a user may do within a class.
type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
)

// User represents a user in the system
type User struct {
	ID           int64     `json:"id"`
	ClassID      int64     `json:"class_id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	Role         Role      `json:"role"`
	PasswordHash string    `json:"-"` // Not serialized
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Actor is the authenticated caller of an engine operation, extracted
// from the request context by the auth middleware.
type Actor struct {
	UserID  int64
	ClassID int64
	Role    Role
}

// IsTeacher reports whether the actor holds the bank-admin capability.
func (a Actor) IsTeacher() bool {
	return a.Role == RoleTeacher
}
