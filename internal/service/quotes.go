package service

import (
	"context"

	"github.com/classbank/bank-engine/internal/models"
)

// rateFor resolves the caller's tier from the live tier tables and
// computes the final period rate for a product. The result is only a
// snapshot: instances record it at apply time and never re-resolve.
func (s *Service) rateFor(ctx context.Context, classID int64, creditScore float64, p *models.Product) (rate float64, tierName string, err error) {
	tiers, err := s.store.GetCreditTiers(ctx, classID)
	if err != nil {
		return 0, "", err
	}
	adjustments, err := s.store.GetTierAdjustments(ctx, classID)
	if err != nil {
		return 0, "", err
	}
	tier := resolveTier(creditScore, tiers)
	modifier := tierModifier(tier.Category, p.Kind, adjustments)
	return finalRate(p.BaseRate, modifier, p.TermDays), tier.Name, nil
}

// loadProduct fetches a product and checks it belongs to the caller's
// class and matches the expected kind.
func (s *Service) loadProduct(ctx context.Context, actor models.Actor, productID int64, kind models.ProductKind) (*models.Product, error) {
	p, err := s.store.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p.ClassID != actor.ClassID {
		return nil, models.NewValidation("product belongs to another class")
	}
	if p.Kind != kind {
		return nil, models.NewValidation("product %q is not a %s product", p.Label, kind)
	}
	return p, nil
}
