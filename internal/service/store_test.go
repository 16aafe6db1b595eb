package service

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/classbank/bank-engine/internal/config"
	"github.com/classbank/bank-engine/internal/models"
	"github.com/sirupsen/logrus"
)

// fakeStore is an in-memory Store mirroring the repository's
// transactional semantics: mutators run under one lock against copies,
// and nothing is written back unless the mutator and the delta checks
// both succeed.
type fakeStore struct {
	mu          sync.Mutex
	users       map[int64]*models.User
	accounts    map[int64]*models.Account
	products    map[int64]*models.Product
	tiers       []models.CreditTier
	adjustments []models.TierRateAdjustment
	deposits    map[int64]*models.Deposit
	loans       map[int64]*models.Loan
	audits      []models.AuditEvent
	nextID      int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:    make(map[int64]*models.User),
		accounts: make(map[int64]*models.Account),
		products: make(map[int64]*models.Product),
		deposits: make(map[int64]*models.Deposit),
		loans:    make(map[int64]*models.Loan),
	}
}

func (f *fakeStore) id() int64 {
	f.nextID++
	return f.nextID
}

func applyFakeDeltas(acct *models.Account, deltas models.AccountDeltas) error {
	acct.Cash += deltas.Cash
	acct.Deposit += deltas.Deposit
	acct.Loan += deltas.Loan
	if acct.Cash < -1e-9 {
		return models.NewValidation("insufficient cash")
	}
	if acct.Deposit < -1e-9 || acct.Loan < -1e-9 {
		return models.NewLedger("account balance would go negative")
	}
	return nil
}

func (f *fakeStore) CreateUser(_ context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user.ID = f.id()
	copied := *user
	f.users[user.ID] = &copied
	return nil
}

func (f *fakeStore) FindUserByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, models.NewValidation("user not found")
}

func (f *fakeStore) FindUserByID(_ context.Context, id int64) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, models.NewValidation("user not found")
	}
	copied := *u
	return &copied, nil
}

func (f *fakeStore) CreateAccount(_ context.Context, account *models.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	account.ID = f.id()
	copied := *account
	f.accounts[account.StudentID] = &copied
	return nil
}

func (f *fakeStore) GetAccount(_ context.Context, studentID int64) (*models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	acct, ok := f.accounts[studentID]
	if !ok {
		return nil, models.NewValidation("account not found")
	}
	copied := *acct
	return &copied, nil
}

func (f *fakeStore) CreateProduct(_ context.Context, p *models.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p.ID = f.id()
	copied := *p
	f.products[p.ID] = &copied
	return nil
}

func (f *fakeStore) UpdateProduct(_ context.Context, p *models.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.products[p.ID]; !ok {
		return models.NewValidation("product not found")
	}
	copied := *p
	f.products[p.ID] = &copied
	return nil
}

func (f *fakeStore) GetProduct(_ context.Context, id int64) (*models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[id]
	if !ok {
		return nil, models.NewValidation("product not found")
	}
	copied := *p
	return &copied, nil
}

func (f *fakeStore) GetActiveProducts(_ context.Context, classID int64, kind models.ProductKind) ([]models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var products []models.Product
	for _, p := range f.products {
		if p.ClassID == classID && p.Kind == kind && p.Active {
			products = append(products, *p)
		}
	}
	return products, nil
}

func (f *fakeStore) GetCreditTiers(_ context.Context, _ int64) ([]models.CreditTier, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.CreditTier(nil), f.tiers...), nil
}

func (f *fakeStore) GetTierAdjustments(_ context.Context, _ int64) ([]models.TierRateAdjustment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.TierRateAdjustment(nil), f.adjustments...), nil
}

func (f *fakeStore) CreateDeposit(_ context.Context, d *models.Deposit, escrow models.AccountDeltas) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	acct, ok := f.accounts[d.StudentID]
	if !ok {
		return models.NewValidation("account not found")
	}
	updated := *acct
	if err := applyFakeDeltas(&updated, escrow); err != nil {
		return err
	}
	d.ID = f.id()
	copied := *d
	f.deposits[d.ID] = &copied
	*acct = updated
	return nil
}

func (f *fakeStore) GetDeposit(_ context.Context, id int64) (*models.Deposit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.deposits[id]
	if !ok {
		return nil, models.NewValidation("deposit not found")
	}
	copied := *d
	return &copied, nil
}

func (f *fakeStore) ListDepositsByStudent(_ context.Context, studentID int64) ([]models.Deposit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var deposits []models.Deposit
	for _, d := range f.deposits {
		if d.StudentID == studentID {
			deposits = append(deposits, *d)
		}
	}
	return deposits, nil
}

func (f *fakeStore) ListMaturedUnclaimedDeposits(_ context.Context, asOf time.Time) ([]models.Deposit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var deposits []models.Deposit
	for _, d := range f.deposits {
		if d.Status == models.DepositActive && d.MaturityDate != nil && !d.MaturityDate.After(asOf) {
			deposits = append(deposits, *d)
		}
	}
	return deposits, nil
}

func (f *fakeStore) MutateDeposit(_ context.Context, id int64, fn models.DepositMutator) (*models.Deposit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.deposits[id]
	if !ok {
		return nil, models.NewValidation("deposit not found")
	}
	acct, ok := f.accounts[d.StudentID]
	if !ok {
		return nil, models.NewValidation("account not found")
	}
	working := *d
	updatedAcct := *acct
	deltas, err := fn(&working, &updatedAcct)
	if err != nil {
		return nil, err
	}
	if err := applyFakeDeltas(&updatedAcct, deltas); err != nil {
		return nil, err
	}
	*d = working
	*acct = updatedAcct
	result := working
	return &result, nil
}

func (f *fakeStore) CreateLoan(_ context.Context, l *models.Loan) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	l.ID = f.id()
	copied := *l
	f.loans[l.ID] = &copied
	return nil
}

func (f *fakeStore) GetLoan(_ context.Context, id int64) (*models.Loan, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.loans[id]
	if !ok {
		return nil, models.NewValidation("loan not found")
	}
	copied := *l
	return &copied, nil
}

func (f *fakeStore) ListLoansByStudent(_ context.Context, studentID int64) ([]models.Loan, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var loans []models.Loan
	for _, l := range f.loans {
		if l.StudentID == studentID {
			loans = append(loans, *l)
		}
	}
	return loans, nil
}

func (f *fakeStore) MutateLoan(_ context.Context, id int64, fn models.LoanMutator) (*models.Loan, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.loans[id]
	if !ok {
		return nil, models.NewValidation("loan not found")
	}
	acct, ok := f.accounts[l.StudentID]
	if !ok {
		return nil, models.NewValidation("account not found")
	}
	working := *l
	updatedAcct := *acct
	deltas, err := fn(&working, &updatedAcct)
	if err != nil {
		return nil, err
	}
	if err := applyFakeDeltas(&updatedAcct, deltas); err != nil {
		return nil, err
	}
	*l = working
	*acct = updatedAcct
	result := working
	return &result, nil
}

func (f *fakeStore) AppendAudit(_ context.Context, event *models.AuditEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	event.ID = f.id()
	f.audits = append(f.audits, *event)
	return nil
}

var _ Store = (*fakeStore)(nil)

// newTestService wires a Service to a fresh fake store with a silent
// logger and a controllable clock.
func newTestService() (*Service, *fakeStore) {
	store := newFakeStore()
	log := logrus.New()
	log.SetOutput(io.Discard)
	cfg := &config.Config{JWTSecret: "test-secret", StartingCash: 1000}
	svc := NewService(store, log, cfg)
	return svc, store
}

// seedStudent adds a student user with an account holding the given
// cash and credit score, returning the actor.
func seedStudent(store *fakeStore, classID int64, cash, creditScore float64) models.Actor {
	user := &models.User{ClassID: classID, Username: "student", Email: "student@classbank.local", Role: models.RoleStudent}
	_ = store.CreateUser(context.Background(), user)
	_ = store.CreateAccount(context.Background(), &models.Account{
		StudentID:   user.ID,
		ClassID:     classID,
		Cash:        cash,
		CreditScore: creditScore,
	})
	return models.Actor{UserID: user.ID, ClassID: classID, Role: models.RoleStudent}
}

func seedTeacher(store *fakeStore, classID int64) models.Actor {
	user := &models.User{ClassID: classID, Username: "teacher", Email: "teacher@classbank.local", Role: models.RoleTeacher}
	_ = store.CreateUser(context.Background(), user)
	return models.Actor{UserID: user.ID, ClassID: classID, Role: models.RoleTeacher}
}

func seedProduct(store *fakeStore, p models.Product) int64 {
	_ = store.CreateProduct(context.Background(), &p)
	return p.ID
}

func floatPtr(v float64) *float64 {
	return &v
}
