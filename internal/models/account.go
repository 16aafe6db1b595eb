package models

import "time"

// Account holds a student's three ledger fields plus the credit score
// the tier resolution reads. The engine only ever mutates Cash, Deposit
// and Loan; everything else on the broader student record is owned by
// the surrounding application.
type Account struct {
	ID          int64     `json:"id"`
	StudentID   int64     `json:"student_id"`
	ClassID     int64     `json:"class_id"`
	Cash        float64   `json:"cash"`
	Deposit     float64   `json:"deposit"` // sum of active deposit principal
	Loan        float64   `json:"loan"`    // sum of outstanding loan principal
	CreditScore float64   `json:"credit_score"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// AccountDeltas is the exact set of balance changes a transition implies.
// Applied atomically with the instance's status write, never standalone.
type AccountDeltas struct {
	Cash    float64 `json:"cash"`
	Deposit float64 `json:"deposit"`
	Loan    float64 `json:"loan"`
}

// IsZero reports whether the deltas carry no balance effect.
func (d AccountDeltas) IsZero() bool {
	return d.Cash == 0 && d.Deposit == 0 && d.Loan == 0
}
