package models

import "time"

// ProductKind distinguishes deposit products from loan products.
type ProductKind string

const (
	ProductDeposit ProductKind = "deposit"
	ProductLoan    ProductKind = "loan"
)

// Product is an immutable-per-version catalog entry. BaseRate is the
// percentage for the whole term, not annualized. Deactivation hides the
// product from new applications but never affects existing instances.
type Product struct {
	ID             int64       `json:"id"`
	ClassID        int64       `json:"class_id"`
	Kind           ProductKind `json:"kind"`
	Label          string      `json:"label"`
	TermDays       int         `json:"term_days"`
	BaseRate       float64     `json:"base_rate"`
	MaxPrincipal   *float64    `json:"max_principal,omitempty"`
	MinCreditScore *float64    `json:"min_credit_score,omitempty"` // loans only
	Active         bool        `json:"active"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}
