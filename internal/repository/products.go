package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/classbank/bank-engine/internal/models"
)

// CreateProduct creates a new catalog entry
func (r *Repository) CreateProduct(ctx context.Context, p *models.Product) error {
	query := `
		INSERT INTO bank.products (class_id, kind, label, term_days, base_rate, max_principal, min_credit_score, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		RETURNING id, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query, p.ClassID, p.Kind, p.Label, p.TermDays, p.BaseRate, p.MaxPrincipal, p.MinCreditScore, p.Active).
		Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// UpdateProduct updates a catalog entry (label, rate, limits, active flag)
func (r *Repository) UpdateProduct(ctx context.Context, p *models.Product) error {
	query := `
		UPDATE bank.products
		SET label = $1, term_days = $2, base_rate = $3, max_principal = $4, min_credit_score = $5, active = $6, updated_at = CURRENT_TIMESTAMP
		WHERE id = $7
		RETURNING updated_at`
	err := r.db.QueryRowContext(ctx, query, p.Label, p.TermDays, p.BaseRate, p.MaxPrincipal, p.MinCreditScore, p.Active, p.ID).
		Scan(&p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.NewValidation("product not found")
	}
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	return nil
}

// GetProduct retrieves a product by id
func (r *Repository) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	p := &models.Product{}
	query := `
		SELECT id, class_id, kind, label, term_days, base_rate, max_principal, min_credit_score, active, created_at, updated_at
		FROM bank.products
		WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&p.ID, &p.ClassID, &p.Kind, &p.Label, &p.TermDays, &p.BaseRate, &p.MaxPrincipal, &p.MinCreditScore, &p.Active, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.NewValidation("product not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return p, nil
}

// GetActiveProducts lists active products of a kind for a class
func (r *Repository) GetActiveProducts(ctx context.Context, classID int64, kind models.ProductKind) ([]models.Product, error) {
	query := `
		SELECT id, class_id, kind, label, term_days, base_rate, max_principal, min_credit_score, active, created_at, updated_at
		FROM bank.products
		WHERE class_id = $1 AND kind = $2 AND active = TRUE
		ORDER BY term_days, id`
	rows, err := r.db.QueryContext(ctx, query, classID, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		var p models.Product
		if err := rows.Scan(&p.ID, &p.ClassID, &p.Kind, &p.Label, &p.TermDays, &p.BaseRate, &p.MaxPrincipal, &p.MinCreditScore, &p.Active, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate products: %w", err)
	}
	return products, nil
}

// GetCreditTiers returns a class's tier thresholds
func (r *Repository) GetCreditTiers(ctx context.Context, classID int64) ([]models.CreditTier, error) {
	query := `
		SELECT category, sub_level, name, min_score
		FROM bank.credit_tiers
		WHERE class_id = $1
		ORDER BY min_score DESC`
	rows, err := r.db.QueryContext(ctx, query, classID)
	if err != nil {
		return nil, fmt.Errorf("failed to list credit tiers: %w", err)
	}
	defer rows.Close()

	var tiers []models.CreditTier
	for rows.Next() {
		var t models.CreditTier
		if err := rows.Scan(&t.Category, &t.SubLevel, &t.Name, &t.MinScore); err != nil {
			return nil, fmt.Errorf("failed to scan credit tier: %w", err)
		}
		tiers = append(tiers, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate credit tiers: %w", err)
	}
	return tiers, nil
}

// GetTierAdjustments returns a class's per-tier rate modifiers
func (r *Repository) GetTierAdjustments(ctx context.Context, classID int64) ([]models.TierRateAdjustment, error) {
	query := `
		SELECT category, deposit_modifier, loan_modifier
		FROM bank.tier_adjustments
		WHERE class_id = $1`
	rows, err := r.db.QueryContext(ctx, query, classID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tier adjustments: %w", err)
	}
	defer rows.Close()

	var adjustments []models.TierRateAdjustment
	for rows.Next() {
		var a models.TierRateAdjustment
		if err := rows.Scan(&a.Category, &a.DepositModifier, &a.LoanModifier); err != nil {
			return nil, fmt.Errorf("failed to scan tier adjustment: %w", err)
		}
		adjustments = append(adjustments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tier adjustments: %w", err)
	}
	return adjustments, nil
}
