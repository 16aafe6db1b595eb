package utils

import "math"

// Round2 rounds to 2 decimal places (display precision for rates).
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Round4 rounds to 4 decimal places (internal precision for rates).
func Round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

// FloorAmount floors an interest amount to whole currency units. Deposit
// interest always floors so rounding never overpays the issuer.
func FloorAmount(v float64) float64 {
	return math.Floor(v)
}

// RoundAmount rounds an interest amount to whole currency units. Loan
// interest rounds symmetrically because it establishes what the borrower
// owes.
func RoundAmount(v float64) float64 {
	return math.Round(v)
}
