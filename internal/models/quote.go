package models

// DepositQuote is what a student sees before applying for a deposit.
type DepositQuote struct {
	FinalRate         float64 `json:"final_rate"`
	EstimatedInterest float64 `json:"estimated_interest"`
	TierApplied       string  `json:"tier_applied"`
}

// LoanQuote is what a student sees before applying for a loan. Eligible
// is false when the product's limits or minimum credit score are not met;
// Reason carries the user-facing explanation.
type LoanQuote struct {
	FinalRate         float64 `json:"final_rate"`
	EstimatedInterest float64 `json:"estimated_interest"`
	TierApplied       string  `json:"tier_applied"`
	Eligible          bool    `json:"eligible"`
	Reason            string  `json:"reason,omitempty"`
}

// RepaymentResult reports how one loan payment was allocated.
type RepaymentResult struct {
	PrincipalPaid float64 `json:"principal_paid"`
	InterestPaid  float64 `json:"interest_paid"`
	FullySettled  bool    `json:"fully_settled"`
	AmountLeft    float64 `json:"amount_left"`
	InterestLeft  float64 `json:"interest_left"`
}

// EarlyRepaymentQuote is the amount owed if the loan were settled now,
// with interest prorated to elapsed time.
type EarlyRepaymentQuote struct {
	PrincipalLeft float64 `json:"principal_left"`
	InterestLeft  float64 `json:"interest_left"`
	TotalOwed     float64 `json:"total_owed"`
}
