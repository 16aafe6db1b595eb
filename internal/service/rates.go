package service

import (
	"sort"

	"github.com/classbank/bank-engine/internal/models"
	"github.com/classbank/bank-engine/internal/utils"
)

// finalRate computes the period rate for a product and tier: the base
// rate plus the tier's weekly modifier scaled to the term length,
// clamped at zero. Deterministic: the same inputs always produce the
// same output, since the computation is repeated at quote time and again
// for audit display.
func finalRate(baseRate, weeklyModifier float64, termDays int) float64 {
	weeks := float64(termDays) / 7
	rate := baseRate + weeklyModifier*weeks
	if rate < 0 {
		rate = 0
	}
	return utils.Round4(rate)
}

// resolveTier derives a student's credit tier from the score against the
// ordered thresholds. No matching threshold resolves to the default tier
// so a missing or sparse tier table can never fail a quote.
func resolveTier(score float64, tiers []models.CreditTier) models.CreditTier {
	ordered := make([]models.CreditTier, len(tiers))
	copy(ordered, tiers)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].MinScore > ordered[j].MinScore })
	for _, t := range ordered {
		if score >= t.MinScore {
			return t
		}
	}
	return models.CreditTier{Category: models.DefaultTierCategory, Name: models.DefaultTierCategory}
}

// tierModifier looks up the weekly rate modifier for a tier category.
// An unconfigured category is tier-neutral.
func tierModifier(category string, kind models.ProductKind, adjustments []models.TierRateAdjustment) float64 {
	for _, a := range adjustments {
		if a.Category == category {
			if kind == models.ProductDeposit {
				return a.DepositModifier
			}
			return a.LoanModifier
		}
	}
	return 0
}
