package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/classbank/bank-engine/internal/models"
)

const depositColumns = `id, student_id, class_id, product_id, product_label, principal, term_days,
	base_rate, final_rate, tier_applied, estimated_interest, status, requested_at,
	started_at, maturity_date, approved_by, processed_by, claimed_at, terminated_at,
	interest_paid, created_at, updated_at`

func scanDeposit(row *sql.Row) (*models.Deposit, error) {
	d := &models.Deposit{}
	err := row.Scan(
		&d.ID, &d.StudentID, &d.ClassID, &d.ProductID, &d.ProductLabel, &d.Principal, &d.TermDays,
		&d.BaseRate, &d.FinalRate, &d.TierApplied, &d.EstimatedInterest, &d.Status, &d.RequestedAt,
		&d.StartedAt, &d.MaturityDate, &d.ApprovedBy, &d.ProcessedBy, &d.ClaimedAt, &d.TerminatedAt,
		&d.InterestPaid, &d.CreatedAt, &d.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.NewValidation("deposit not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan deposit: %w", err)
	}
	return d, nil
}

// CreateDeposit inserts a pending deposit and debits the escrowed cash in
// the same transaction. The account row is locked first so the cash check
// cannot race a concurrent spend.
func (r *Repository) CreateDeposit(ctx context.Context, d *models.Deposit, escrow models.AccountDeltas) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := lockAccountTx(ctx, tx, d.StudentID); err != nil {
			return err
		}
		query := `
			INSERT INTO bank.deposits (student_id, class_id, product_id, product_label, principal, term_days,
				base_rate, final_rate, tier_applied, estimated_interest, status, requested_at, interest_paid,
				created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, 0, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
			RETURNING id, created_at, updated_at`
		err := tx.QueryRowContext(ctx, query,
			d.StudentID, d.ClassID, d.ProductID, d.ProductLabel, d.Principal, d.TermDays,
			d.BaseRate, d.FinalRate, d.TierApplied, d.EstimatedInterest, d.Status, d.RequestedAt,
		).Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to create deposit: %w", err)
		}
		return applyDeltasTx(ctx, tx, d.StudentID, escrow)
	})
}

// GetDeposit retrieves a deposit by id
func (r *Repository) GetDeposit(ctx context.Context, id int64) (*models.Deposit, error) {
	query := `SELECT ` + depositColumns + ` FROM bank.deposits WHERE id = $1`
	return scanDeposit(r.db.QueryRowContext(ctx, query, id))
}

// ListDepositsByStudent lists a student's deposits, newest first
func (r *Repository) ListDepositsByStudent(ctx context.Context, studentID int64) ([]models.Deposit, error) {
	query := `SELECT ` + depositColumns + ` FROM bank.deposits WHERE student_id = $1 ORDER BY requested_at DESC`
	rows, err := r.db.QueryContext(ctx, query, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list deposits: %w", err)
	}
	defer rows.Close()

	var deposits []models.Deposit
	for rows.Next() {
		var d models.Deposit
		if err := rows.Scan(
			&d.ID, &d.StudentID, &d.ClassID, &d.ProductID, &d.ProductLabel, &d.Principal, &d.TermDays,
			&d.BaseRate, &d.FinalRate, &d.TierApplied, &d.EstimatedInterest, &d.Status, &d.RequestedAt,
			&d.StartedAt, &d.MaturityDate, &d.ApprovedBy, &d.ProcessedBy, &d.ClaimedAt, &d.TerminatedAt,
			&d.InterestPaid, &d.CreatedAt, &d.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan deposit: %w", err)
		}
		deposits = append(deposits, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate deposits: %w", err)
	}
	return deposits, nil
}

// ListMaturedUnclaimedDeposits lists active deposits whose maturity date
// has passed as of the given instant. Used by the reminder job.
func (r *Repository) ListMaturedUnclaimedDeposits(ctx context.Context, asOf time.Time) ([]models.Deposit, error) {
	query := `SELECT ` + depositColumns + ` FROM bank.deposits WHERE status = $1 AND maturity_date <= $2`
	rows, err := r.db.QueryContext(ctx, query, models.DepositActive, asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to list matured deposits: %w", err)
	}
	defer rows.Close()

	var deposits []models.Deposit
	for rows.Next() {
		var d models.Deposit
		if err := rows.Scan(
			&d.ID, &d.StudentID, &d.ClassID, &d.ProductID, &d.ProductLabel, &d.Principal, &d.TermDays,
			&d.BaseRate, &d.FinalRate, &d.TierApplied, &d.EstimatedInterest, &d.Status, &d.RequestedAt,
			&d.StartedAt, &d.MaturityDate, &d.ApprovedBy, &d.ProcessedBy, &d.ClaimedAt, &d.TerminatedAt,
			&d.InterestPaid, &d.CreatedAt, &d.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan deposit: %w", err)
		}
		deposits = append(deposits, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate deposits: %w", err)
	}
	return deposits, nil
}

// MutateDeposit runs a transition against a deposit: the instance row and
// the owner's account row are locked, the mutator inspects the current
// status and mutates the instance, and the resulting field updates plus
// account deltas commit atomically. A concurrent transition that already
// changed the status is seen by the mutator after the lock is acquired,
// so its precondition check fails instead of double-applying effects.
func (r *Repository) MutateDeposit(ctx context.Context, id int64, fn models.DepositMutator) (*models.Deposit, error) {
	var result *models.Deposit
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		query := `SELECT ` + depositColumns + ` FROM bank.deposits WHERE id = $1 FOR UPDATE`
		d, err := scanDeposit(tx.QueryRowContext(ctx, query, id))
		if err != nil {
			return err
		}
		acct, err := lockAccountTx(ctx, tx, d.StudentID)
		if err != nil {
			return err
		}
		deltas, err := fn(d, acct)
		if err != nil {
			return err
		}
		update := `
			UPDATE bank.deposits
			SET status = $1, started_at = $2, maturity_date = $3, approved_by = $4, processed_by = $5,
				claimed_at = $6, terminated_at = $7, interest_paid = $8, updated_at = CURRENT_TIMESTAMP
			WHERE id = $9
			RETURNING updated_at`
		if err := tx.QueryRowContext(ctx, update,
			d.Status, d.StartedAt, d.MaturityDate, d.ApprovedBy, d.ProcessedBy,
			d.ClaimedAt, d.TerminatedAt, d.InterestPaid, d.ID,
		).Scan(&d.UpdatedAt); err != nil {
			return fmt.Errorf("failed to update deposit: %w", err)
		}
		if !deltas.IsZero() {
			if err := applyDeltasTx(ctx, tx, d.StudentID, deltas); err != nil {
				return err
			}
		}
		result = d
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
