package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/classbank/bank-engine/internal/models"
)

const loanColumns = `id, student_id, class_id, product_id, product_label, principal, term_days,
	base_rate, final_rate, tier_applied, total_interest, amount_left, interest_left,
	total_repaid, total_interest_paid, status, requested_at, started_at,
	expected_repayment_date, actual_repayment_date, approved_by, processed_by,
	created_at, updated_at`

func scanLoan(row *sql.Row) (*models.Loan, error) {
	l := &models.Loan{}
	err := row.Scan(
		&l.ID, &l.StudentID, &l.ClassID, &l.ProductID, &l.ProductLabel, &l.Principal, &l.TermDays,
		&l.BaseRate, &l.FinalRate, &l.TierApplied, &l.TotalInterest, &l.AmountLeft, &l.InterestLeft,
		&l.TotalRepaid, &l.TotalInterestPaid, &l.Status, &l.RequestedAt, &l.StartedAt,
		&l.ExpectedRepaymentDate, &l.ActualRepaymentDate, &l.ApprovedBy, &l.ProcessedBy,
		&l.CreatedAt, &l.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.NewValidation("loan not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan loan: %w", err)
	}
	return l, nil
}

// CreateLoan inserts a pending loan. Nothing is disbursed until approval,
// so there is no ledger effect here.
func (r *Repository) CreateLoan(ctx context.Context, l *models.Loan) error {
	query := `
		INSERT INTO bank.loans (student_id, class_id, product_id, product_label, principal, term_days,
			base_rate, final_rate, tier_applied, total_interest, amount_left, interest_left,
			total_repaid, total_interest_paid, status, requested_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, 0, 0, $13, $14, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		RETURNING id, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query,
		l.StudentID, l.ClassID, l.ProductID, l.ProductLabel, l.Principal, l.TermDays,
		l.BaseRate, l.FinalRate, l.TierApplied, l.TotalInterest, l.AmountLeft, l.InterestLeft,
		l.Status, l.RequestedAt,
	).Scan(&l.ID, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create loan: %w", err)
	}
	return nil
}

// GetLoan retrieves a loan by id
func (r *Repository) GetLoan(ctx context.Context, id int64) (*models.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM bank.loans WHERE id = $1`
	return scanLoan(r.db.QueryRowContext(ctx, query, id))
}

// ListLoansByStudent lists a student's loans, newest first
func (r *Repository) ListLoansByStudent(ctx context.Context, studentID int64) ([]models.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM bank.loans WHERE student_id = $1 ORDER BY requested_at DESC`
	rows, err := r.db.QueryContext(ctx, query, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list loans: %w", err)
	}
	defer rows.Close()

	var loans []models.Loan
	for rows.Next() {
		var l models.Loan
		if err := rows.Scan(
			&l.ID, &l.StudentID, &l.ClassID, &l.ProductID, &l.ProductLabel, &l.Principal, &l.TermDays,
			&l.BaseRate, &l.FinalRate, &l.TierApplied, &l.TotalInterest, &l.AmountLeft, &l.InterestLeft,
			&l.TotalRepaid, &l.TotalInterestPaid, &l.Status, &l.RequestedAt, &l.StartedAt,
			&l.ExpectedRepaymentDate, &l.ActualRepaymentDate, &l.ApprovedBy, &l.ProcessedBy,
			&l.CreatedAt, &l.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan loan: %w", err)
		}
		loans = append(loans, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate loans: %w", err)
	}
	return loans, nil
}

// MutateLoan runs a transition against a loan under row locks, mirroring
// MutateDeposit: read-before-write inside the transaction, mutator
// decides, status fields and account deltas commit together.
func (r *Repository) MutateLoan(ctx context.Context, id int64, fn models.LoanMutator) (*models.Loan, error) {
	var result *models.Loan
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		query := `SELECT ` + loanColumns + ` FROM bank.loans WHERE id = $1 FOR UPDATE`
		l, err := scanLoan(tx.QueryRowContext(ctx, query, id))
		if err != nil {
			return err
		}
		acct, err := lockAccountTx(ctx, tx, l.StudentID)
		if err != nil {
			return err
		}
		deltas, err := fn(l, acct)
		if err != nil {
			return err
		}
		update := `
			UPDATE bank.loans
			SET status = $1, started_at = $2, expected_repayment_date = $3, actual_repayment_date = $4,
				approved_by = $5, processed_by = $6, total_interest = $7, amount_left = $8,
				interest_left = $9, total_repaid = $10, total_interest_paid = $11, updated_at = CURRENT_TIMESTAMP
			WHERE id = $12
			RETURNING updated_at`
		if err := tx.QueryRowContext(ctx, update,
			l.Status, l.StartedAt, l.ExpectedRepaymentDate, l.ActualRepaymentDate,
			l.ApprovedBy, l.ProcessedBy, l.TotalInterest, l.AmountLeft,
			l.InterestLeft, l.TotalRepaid, l.TotalInterestPaid, l.ID,
		).Scan(&l.UpdatedAt); err != nil {
			return fmt.Errorf("failed to update loan: %w", err)
		}
		if !deltas.IsZero() {
			if err := applyDeltasTx(ctx, tx, l.StudentID, deltas); err != nil {
				return err
			}
		}
		result = l
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
