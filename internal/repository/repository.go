package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/classbank/bank-engine/internal/models"
)

// balanceEpsilon absorbs float noise when checking that a balance did
// not go negative after applying deltas.
const balanceEpsilon = 1e-9

// Repository provides database operations
type Repository struct {
	db *sql.DB
}

// NewRepository initializes a new repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// withTx runs fn inside a single transaction. Every balance-affecting
// transition goes through here so the status write and the account
// deltas commit or roll back together.
func (r *Repository) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// CreateUser creates a new user in the database
func (r *Repository) CreateUser(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO bank.users (class_id, username, email, role, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		RETURNING id, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query, user.ClassID, user.Username, user.Email, user.Role, user.PasswordHash).
		Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// FindUserByEmail retrieves a user by email
func (r *Repository) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user := &models.User{}
	query := `
		SELECT id, class_id, username, email, role, password_hash, created_at, updated_at
		FROM bank.users
		WHERE email = $1`
	err := r.db.QueryRowContext(ctx, query, email).
		Scan(&user.ID, &user.ClassID, &user.Username, &user.Email, &user.Role, &user.PasswordHash, &user.CreatedAt, &user.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.NewValidation("user not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// FindUserByID retrieves a user by id
func (r *Repository) FindUserByID(ctx context.Context, id int64) (*models.User, error) {
	user := &models.User{}
	query := `
		SELECT id, class_id, username, email, role, password_hash, created_at, updated_at
		FROM bank.users
		WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&user.ID, &user.ClassID, &user.Username, &user.Email, &user.Role, &user.PasswordHash, &user.CreatedAt, &user.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.NewValidation("user not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// CreateAccount creates a new student account in the database
func (r *Repository) CreateAccount(ctx context.Context, account *models.Account) error {
	query := `
		INSERT INTO bank.accounts (student_id, class_id, cash, deposit, loan, credit_score, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		RETURNING id, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query, account.StudentID, account.ClassID, account.Cash, account.Deposit, account.Loan, account.CreditScore).
		Scan(&account.ID, &account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

// GetAccount retrieves a student's account
func (r *Repository) GetAccount(ctx context.Context, studentID int64) (*models.Account, error) {
	account := &models.Account{}
	query := `
		SELECT id, student_id, class_id, cash, deposit, loan, credit_score, created_at, updated_at
		FROM bank.accounts
		WHERE student_id = $1`
	err := r.db.QueryRowContext(ctx, query, studentID).
		Scan(&account.ID, &account.StudentID, &account.ClassID, &account.Cash, &account.Deposit, &account.Loan, &account.CreditScore, &account.CreatedAt, &account.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.NewValidation("account not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return account, nil
}

// lockAccountTx reads a student's account with a row lock held for the
// rest of the transaction.
func lockAccountTx(ctx context.Context, tx *sql.Tx, studentID int64) (*models.Account, error) {
	account := &models.Account{}
	query := `
		SELECT id, student_id, class_id, cash, deposit, loan, credit_score, created_at, updated_at
		FROM bank.accounts
		WHERE student_id = $1
		FOR UPDATE`
	err := tx.QueryRowContext(ctx, query, studentID).
		Scan(&account.ID, &account.StudentID, &account.ClassID, &account.Cash, &account.Deposit, &account.Loan, &account.CreditScore, &account.CreatedAt, &account.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.NewValidation("account not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock account: %w", err)
	}
	return account, nil
}

// applyDeltasTx applies the ledger deltas of a transition to the
// student's account. Cash going negative means the caller cannot afford
// the operation; deposit or loan going negative would mean the books no
// longer balance and aborts the transaction as a ledger error.
func applyDeltasTx(ctx context.Context, tx *sql.Tx, studentID int64, deltas models.AccountDeltas) error {
	var cash, deposit, loan float64
	query := `
		UPDATE bank.accounts
		SET cash = cash + $1, deposit = deposit + $2, loan = loan + $3, updated_at = CURRENT_TIMESTAMP
		WHERE student_id = $4
		RETURNING cash, deposit, loan`
	err := tx.QueryRowContext(ctx, query, deltas.Cash, deltas.Deposit, deltas.Loan, studentID).
		Scan(&cash, &deposit, &loan)
	if errors.Is(err, sql.ErrNoRows) {
		return models.NewValidation("account not found")
	}
	if err != nil {
		return fmt.Errorf("failed to apply account deltas: %w", err)
	}
	if cash < -balanceEpsilon {
		return models.NewValidation("insufficient cash")
	}
	if deposit < -balanceEpsilon || loan < -balanceEpsilon {
		return models.NewLedger("account balance would go negative (deposit=%.2f loan=%.2f)", deposit, loan)
	}
	return nil
}

// AppendAudit appends an audit event. Callers treat failures as
// best-effort; the financial transition has already committed.
func (r *Repository) AppendAudit(ctx context.Context, event *models.AuditEvent) error {
	query := `
		INSERT INTO bank.audit_events (class_id, actor_id, student_id, action, instance_kind, instance_id, amount, interest, detail, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, CURRENT_TIMESTAMP)
		RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, query, event.ClassID, event.ActorID, event.StudentID, event.Action, event.InstanceKind, event.InstanceID, event.Amount, event.Interest, event.Detail).
		Scan(&event.ID, &event.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to append audit event: %w", err)
	}
	return nil
}
