package service

import "math"

// settleTolerance is the rounding slack for repayments: overpayment is
// tolerated up to this amount, and a loan is fully settled once both
// remaining balances are within it of zero.
const settleTolerance = 0.01

// allocatePayment splits a loan payment interest-first: the lender
// recovers cost-of-money before principal, matching standard
// amortization. Callers reject payments exceeding the total owed before
// any mutation.
func allocatePayment(payment, interestLeft, amountLeft float64) (interestPaid, principalPaid float64) {
	interestPaid = math.Min(payment, interestLeft)
	principalPaid = math.Min(payment-interestPaid, amountLeft)
	return interestPaid, principalPaid
}

// settled reports whether both remaining balances round to zero.
func settled(amountLeft, interestLeft float64) bool {
	return amountLeft <= settleTolerance && interestLeft <= settleTolerance
}
