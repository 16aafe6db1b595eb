package models

// DefaultTierCategory is the tier used when a student's credit score
// matches no configured threshold. Its modifiers are always zero, so a
// missing tier configuration can never fail a quote or a transition.
const DefaultTierCategory = "default"

// CreditTier is one band of a class's ordered tier table. A student's
// tier is derived from the credit score on every quote, never stored on
// the account.
type CreditTier struct {
	Category string  `json:"category"` // broad band, e.g. "A"
	SubLevel int     `json:"sub_level"`
	Name     string  `json:"name"` // full name, category + sub-level
	MinScore float64 `json:"min_score"`
}

// TierRateAdjustment maps a tier category to its rate modifiers,
// expressed in percentage points per 7-day unit of term. A modifier of
// zero is tier-neutral.
type TierRateAdjustment struct {
	Category        string  `json:"category"`
	DepositModifier float64 `json:"deposit_modifier"`
	LoanModifier    float64 `json:"loan_modifier"`
}
