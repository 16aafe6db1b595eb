package models

import "time"

// AuditEvent is an append-only record of a committed transition.
// Emission is best-effort and never blocks the financial transition.
type AuditEvent struct {
	ID           int64     `json:"id"`
	ClassID      int64     `json:"class_id"`
	ActorID      int64     `json:"actor_id"`
	StudentID    int64     `json:"student_id"`
	Action       string    `json:"action"` // e.g. "loan.repay"
	InstanceKind string    `json:"instance_kind"`
	InstanceID   int64     `json:"instance_id"`
	Amount       float64   `json:"amount"`
	Interest     float64   `json:"interest"`
	Detail       string    `json:"detail,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
