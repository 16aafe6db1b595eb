package models

import "time"

// DepositStatus is the state of a deposit instance.
type DepositStatus string

const (
	DepositPending    DepositStatus = "pending"
	DepositActive     DepositStatus = "active"
	DepositCompleted  DepositStatus = "completed"
	DepositTerminated DepositStatus = "terminated"
	DepositCancelled  DepositStatus = "cancelled_request"
	DepositRejected   DepositStatus = "rejected"
)

// Deposit is one concrete deposit application/contract. The quote fields
// (BaseRate, FinalRate, TierApplied, EstimatedInterest) are snapshotted
// at apply time so the quote stays reproducible even if the product or
// tier tables change later. Instances are never hard-deleted.
type Deposit struct {
	ID           int64  `json:"id"`
	StudentID    int64  `json:"student_id"`
	ClassID      int64  `json:"class_id"`
	ProductID    int64  `json:"product_id"`
	ProductLabel string `json:"product_label"`

	Principal         float64 `json:"principal"`
	TermDays          int     `json:"term_days"`
	BaseRate          float64 `json:"base_rate"`
	FinalRate         float64 `json:"final_rate"`
	TierApplied       string  `json:"tier_applied"`
	EstimatedInterest float64 `json:"estimated_interest"`

	Status       DepositStatus `json:"status"`
	RequestedAt  time.Time     `json:"requested_at"`
	StartedAt    *time.Time    `json:"started_at,omitempty"`
	MaturityDate *time.Time    `json:"maturity_date,omitempty"`
	ApprovedBy   *int64        `json:"approved_by,omitempty"`
	ProcessedBy  *int64        `json:"processed_by,omitempty"`
	ClaimedAt    *time.Time    `json:"claimed_at,omitempty"`
	TerminatedAt *time.Time    `json:"terminated_at,omitempty"`
	InterestPaid float64       `json:"interest_paid"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DepositMutator is applied to a locked deposit and its owner's locked
// account inside a single transaction. It mutates the instance in place
// and returns the account deltas to commit alongside the status write.
type DepositMutator func(d *Deposit, acct *Account) (AccountDeltas, error)
