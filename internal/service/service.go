package service

import (
	"context"
	"fmt"
	"time"

	"github.com/classbank/bank-engine/internal/config"
	"github.com/classbank/bank-engine/internal/models"
	"github.com/classbank/bank-engine/internal/repository"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// Store is the persistence surface the engine needs. Mutate* run their
// callback under row locks inside a single transaction, so the status
// write and the ledger deltas commit or roll back as one.
type Store interface {
	CreateUser(ctx context.Context, user *models.User) error
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	FindUserByID(ctx context.Context, id int64) (*models.User, error)
	CreateAccount(ctx context.Context, account *models.Account) error
	GetAccount(ctx context.Context, studentID int64) (*models.Account, error)

	CreateProduct(ctx context.Context, p *models.Product) error
	UpdateProduct(ctx context.Context, p *models.Product) error
	GetProduct(ctx context.Context, id int64) (*models.Product, error)
	GetActiveProducts(ctx context.Context, classID int64, kind models.ProductKind) ([]models.Product, error)
	GetCreditTiers(ctx context.Context, classID int64) ([]models.CreditTier, error)
	GetTierAdjustments(ctx context.Context, classID int64) ([]models.TierRateAdjustment, error)

	CreateDeposit(ctx context.Context, d *models.Deposit, escrow models.AccountDeltas) error
	GetDeposit(ctx context.Context, id int64) (*models.Deposit, error)
	ListDepositsByStudent(ctx context.Context, studentID int64) ([]models.Deposit, error)
	ListMaturedUnclaimedDeposits(ctx context.Context, asOf time.Time) ([]models.Deposit, error)
	MutateDeposit(ctx context.Context, id int64, fn models.DepositMutator) (*models.Deposit, error)

	CreateLoan(ctx context.Context, l *models.Loan) error
	GetLoan(ctx context.Context, id int64) (*models.Loan, error)
	ListLoansByStudent(ctx context.Context, studentID int64) ([]models.Loan, error)
	MutateLoan(ctx context.Context, id int64, fn models.LoanMutator) (*models.Loan, error)

	AppendAudit(ctx context.Context, event *models.AuditEvent) error
}

var _ Store = (*repository.Repository)(nil)

// Notifier sends best-effort notices to students. Failures are logged
// and never block a transition.
type Notifier interface {
	DepositApproved(to, username string, amount float64, maturity time.Time) error
	LoanApproved(to, username string, amount float64, due time.Time) error
	DepositMatured(to, username string, amount float64, maturity time.Time) error
}

// Service handles business logic
type Service struct {
	store    Store
	log      *logrus.Logger
	config   *config.Config
	notifier Notifier
	now      func() time.Time
}

// NewService initializes a new service
func NewService(store Store, log *logrus.Logger, cfg *config.Config) *Service {
	return &Service{store: store, log: log, config: cfg, now: time.Now}
}

// SetNotifier attaches an optional notification sender.
func (s *Service) SetNotifier(n Notifier) {
	s.notifier = n
}

// Register creates a new user with hashed password. Students also get a
// ledger account seeded with the configured starting cash.
func (s *Service) Register(ctx context.Context, classID int64, username, email, password string, role models.Role) (*models.User, error) {
	if role != models.RoleStudent && role != models.RoleTeacher {
		return nil, models.NewValidation("unknown role %q", role)
	}
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		ClassID:      classID,
		Username:     username,
		Email:        email,
		Role:         role,
		PasswordHash: string(hashedPassword),
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	if role == models.RoleStudent {
		account := &models.Account{
			StudentID: user.ID,
			ClassID:   classID,
			Cash:      s.config.StartingCash,
		}
		if err := s.store.CreateAccount(ctx, account); err != nil {
			return nil, err
		}
	}

	s.log.Infof("User registered: %s (%s)", user.Email, user.Role)
	return user, nil
}

// Login authenticates a user and returns a JWT token
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.store.FindUserByEmail(ctx, email)
	if err != nil {
		return "", models.NewValidation("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", models.NewValidation("invalid credentials")
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":      fmt.Sprintf("%d", user.ID),
		"role":     string(user.Role),
		"class_id": user.ClassID,
		"exp":      jwt.NewNumericDate(s.now().Add(24 * time.Hour)),
	})
	tokenString, err := token.SignedString([]byte(s.config.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	s.log.Infof("User logged in: %s", user.Email)
	return tokenString, nil
}

// GetAccount returns the caller's own ledger account.
func (s *Service) GetAccount(ctx context.Context, actor models.Actor) (*models.Account, error) {
	return s.store.GetAccount(ctx, actor.UserID)
}

// ListDeposits returns the caller's deposit instances, newest first.
func (s *Service) ListDeposits(ctx context.Context, actor models.Actor) ([]models.Deposit, error) {
	return s.store.ListDepositsByStudent(ctx, actor.UserID)
}

// ListLoans returns the caller's loan instances, newest first.
func (s *Service) ListLoans(ctx context.Context, actor models.Actor) ([]models.Loan, error) {
	return s.store.ListLoansByStudent(ctx, actor.UserID)
}

// audit appends an event to the audit sink. Best-effort: a failure is
// logged, never propagated, because the financial transition has already
// committed.
func (s *Service) audit(ctx context.Context, event *models.AuditEvent) {
	if err := s.store.AppendAudit(ctx, event); err != nil {
		s.log.Warnf("Failed to append audit event %s: %v", event.Action, err)
	}
}

// notify looks up the student's email and runs send, logging failures.
func (s *Service) notify(ctx context.Context, studentID int64, send func(to, username string) error) {
	if s.notifier == nil {
		return
	}
	user, err := s.store.FindUserByID(ctx, studentID)
	if err != nil {
		s.log.Warnf("Failed to look up student %d for notification: %v", studentID, err)
		return
	}
	if err := send(user.Email, user.Username); err != nil {
		s.log.Warnf("Failed to notify %s: %v", user.Email, err)
	}
}
