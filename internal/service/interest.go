package service

import (
	"time"

	"github.com/classbank/bank-engine/internal/utils"
)

// depositInterest is full-term simple interest, floored so rounding can
// never overpay the issuer.
func depositInterest(principal, rate float64) float64 {
	return utils.FloorAmount(principal * rate / 100)
}

// loanInterest is the full-term interest a borrower owes. Rounded, not
// floored: it establishes a debt and must round symmetrically.
func loanInterest(principal, rate float64) float64 {
	return utils.RoundAmount(principal * rate / 100)
}

// loanInterestToDate prorates the full-term interest by elapsed time.
// Monotonically non-decreasing in elapsed days and equal to the full
// interest at or beyond the term. Zero or negative terms accrue nothing.
func loanInterestToDate(totalInterest, elapsed float64, termDays int) float64 {
	if termDays <= 0 {
		return 0
	}
	if elapsed < 0 {
		elapsed = 0
	}
	term := float64(termDays)
	if elapsed > term {
		elapsed = term
	}
	return utils.RoundAmount(totalInterest * elapsed / term)
}

// elapsedDays measures fractional days since start. Interest does not
// accrue while an application is pending, so callers pass the approval
// instant, not the request instant.
func elapsedDays(start, now time.Time) float64 {
	return now.Sub(start).Hours() / 24
}

// dayOf truncates an instant to its calendar day. Maturity checks
// compare at day granularity.
func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
