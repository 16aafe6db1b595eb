package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDepositInterestFloors(t *testing.T) {
	tests := []struct {
		principal float64
		rate      float64
		want      float64
	}{
		{1000, 1.05, 10}, // 10.5 floors to 10
		{1000, 1.0, 10},
		{999, 1.0, 9}, // 9.99 floors to 9
		{100, 0, 0},
		{1, 1.0, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, depositInterest(tt.principal, tt.rate), "principal %.0f rate %.2f", tt.principal, tt.rate)
	}
}

func TestLoanInterestRounds(t *testing.T) {
	tests := []struct {
		principal float64
		rate      float64
		want      float64
	}{
		{500, 4.0, 20},
		{333, 1.5, 5},  // 4.995 rounds to 5
		{999, 1.0, 10}, // 9.99 rounds to 10
		{100, 0, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, loanInterest(tt.principal, tt.rate), "principal %.0f rate %.2f", tt.principal, tt.rate)
	}
}

func TestLoanInterestToDate(t *testing.T) {
	// Half term owes half the interest: round(20 * 7/14) = 10.
	assert.Equal(t, 10.0, loanInterestToDate(20, 7, 14))
	// At or beyond full term, the full interest is owed.
	assert.Equal(t, 20.0, loanInterestToDate(20, 14, 14))
	assert.Equal(t, 20.0, loanInterestToDate(20, 30, 14))
	// Before the clock starts nothing accrues.
	assert.Equal(t, 0.0, loanInterestToDate(20, 0, 14))
	assert.Equal(t, 0.0, loanInterestToDate(20, -1, 14))
	// Zero or negative terms accrue nothing.
	assert.Equal(t, 0.0, loanInterestToDate(20, 7, 0))
	assert.Equal(t, 0.0, loanInterestToDate(20, 7, -3))
}

func TestLoanInterestToDateMonotonic(t *testing.T) {
	const totalInterest = 137.0
	const termDays = 90

	prev := 0.0
	for elapsed := 0.0; elapsed <= termDays+10; elapsed += 0.25 {
		got := loanInterestToDate(totalInterest, elapsed, termDays)
		assert.GreaterOrEqual(t, got, prev, "elapsed %.2f", elapsed)
		prev = got
	}
	assert.Equal(t, totalInterest, prev)
}

func TestElapsedDaysFractional(t *testing.T) {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	assert.InDelta(t, 0.5, elapsedDays(start, start.Add(12*time.Hour)), 1e-9)
	assert.InDelta(t, 7, elapsedDays(start, start.AddDate(0, 0, 7)), 1e-9)
}

func TestDayOfTruncates(t *testing.T) {
	late := time.Date(2026, 3, 10, 23, 59, 0, 0, time.UTC)
	early := time.Date(2026, 3, 10, 0, 1, 0, 0, time.UTC)
	assert.Equal(t, dayOf(late), dayOf(early))
	assert.True(t, dayOf(late.AddDate(0, 0, 1)).After(dayOf(late)))
}
