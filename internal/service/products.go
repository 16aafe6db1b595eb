package service

import (
	"context"

	"github.com/classbank/bank-engine/internal/models"
)

// ListProducts returns the active products of a kind for the caller's
// class.
func (s *Service) ListProducts(ctx context.Context, actor models.Actor, kind models.ProductKind) ([]models.Product, error) {
	if kind != models.ProductDeposit && kind != models.ProductLoan {
		return nil, models.NewValidation("unknown product kind %q", kind)
	}
	return s.store.GetActiveProducts(ctx, actor.ClassID, kind)
}

func validateProduct(p *models.Product) error {
	if p.Label == "" {
		return models.NewValidation("label is required")
	}
	if p.Kind != models.ProductDeposit && p.Kind != models.ProductLoan {
		return models.NewValidation("unknown product kind %q", p.Kind)
	}
	if p.TermDays <= 0 {
		return models.NewValidation("term must be positive")
	}
	if p.BaseRate < 0 {
		return models.NewValidation("base rate cannot be negative")
	}
	if p.MaxPrincipal != nil && *p.MaxPrincipal <= 0 {
		return models.NewValidation("maximum principal must be positive")
	}
	if p.MinCreditScore != nil && p.Kind != models.ProductLoan {
		return models.NewValidation("minimum credit score applies to loan products only")
	}
	return nil
}

// CreateProduct adds a catalog entry for the teacher's class.
func (s *Service) CreateProduct(ctx context.Context, actor models.Actor, p *models.Product) (*models.Product, error) {
	if !actor.IsTeacher() {
		return nil, models.NewValidation("only teachers can manage products")
	}
	if err := validateProduct(p); err != nil {
		return nil, err
	}
	p.ClassID = actor.ClassID
	p.Active = true
	if err := s.store.CreateProduct(ctx, p); err != nil {
		return nil, err
	}
	s.log.Infof("Product %d (%s %q) created by teacher %d", p.ID, p.Kind, p.Label, actor.UserID)
	return p, nil
}

// UpdateProduct edits a catalog entry. Existing instances keep their
// snapshotted terms; only new applications see the change.
func (s *Service) UpdateProduct(ctx context.Context, actor models.Actor, p *models.Product) (*models.Product, error) {
	if !actor.IsTeacher() {
		return nil, models.NewValidation("only teachers can manage products")
	}
	current, err := s.store.GetProduct(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	if current.ClassID != actor.ClassID {
		return nil, models.NewValidation("product belongs to another class")
	}
	p.ClassID = current.ClassID
	p.Kind = current.Kind
	if err := validateProduct(p); err != nil {
		return nil, err
	}
	if err := s.store.UpdateProduct(ctx, p); err != nil {
		return nil, err
	}
	s.log.Infof("Product %d updated by teacher %d", p.ID, actor.UserID)
	return p, nil
}

// DeactivateProduct hides a product from new applications without
// touching existing instances.
func (s *Service) DeactivateProduct(ctx context.Context, actor models.Actor, productID int64) error {
	if !actor.IsTeacher() {
		return models.NewValidation("only teachers can manage products")
	}
	p, err := s.store.GetProduct(ctx, productID)
	if err != nil {
		return err
	}
	if p.ClassID != actor.ClassID {
		return models.NewValidation("product belongs to another class")
	}
	p.Active = false
	if err := s.store.UpdateProduct(ctx, p); err != nil {
		return err
	}
	s.log.Infof("Product %d deactivated by teacher %d", productID, actor.UserID)
	return nil
}
