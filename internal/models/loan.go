package models

import "time"

// LoanStatus is the state of a loan instance. Approved and ongoing form
// one "open" superstate; ongoing is entered once at least one partial
// repayment has occurred.
type LoanStatus string

const (
	LoanPending  LoanStatus = "pending"
	LoanApproved LoanStatus = "approved"
	LoanOngoing  LoanStatus = "ongoing"
	LoanRepaid   LoanStatus = "repaid"
	LoanRejected LoanStatus = "rejected"
)

// Loan is one concrete loan application/contract. TotalInterest is the
// canonical full-term interest, written from the quote snapshot; early
// repayment proration reads only this field. InterestLeft is recomputed
// from elapsed time on every repayment, never merely decremented.
type Loan struct {
	ID           int64  `json:"id"`
	StudentID    int64  `json:"student_id"`
	ClassID      int64  `json:"class_id"`
	ProductID    int64  `json:"product_id"`
	ProductLabel string `json:"product_label"`

	Principal   float64 `json:"principal"`
	TermDays    int     `json:"term_days"`
	BaseRate    float64 `json:"base_rate"`
	FinalRate   float64 `json:"final_rate"`
	TierApplied string  `json:"tier_applied"`

	TotalInterest     float64 `json:"total_interest"`
	AmountLeft        float64 `json:"amount_left"`
	InterestLeft      float64 `json:"interest_left"`
	TotalRepaid       float64 `json:"total_repaid"`
	TotalInterestPaid float64 `json:"total_interest_paid"`

	Status                LoanStatus `json:"status"`
	RequestedAt           time.Time  `json:"requested_at"`
	StartedAt             *time.Time `json:"started_at,omitempty"`
	ExpectedRepaymentDate *time.Time `json:"expected_repayment_date,omitempty"`
	ActualRepaymentDate   *time.Time `json:"actual_repayment_date,omitempty"`
	ApprovedBy            *int64     `json:"approved_by,omitempty"`
	ProcessedBy           *int64     `json:"processed_by,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Open reports whether the loan is in the approved/ongoing superstate
// where repayments are accepted.
func (l *Loan) Open() bool {
	return l.Status == LoanApproved || l.Status == LoanOngoing
}

// LoanMutator is applied to a locked loan and its owner's locked account
// inside a single transaction, mirroring DepositMutator.
type LoanMutator func(l *Loan, acct *Account) (AccountDeltas, error)
