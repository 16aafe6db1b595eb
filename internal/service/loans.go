package service

import (
	"context"
	"fmt"
	"math"

	"github.com/classbank/bank-engine/internal/models"
)

// QuoteLoan computes the rate, estimated interest and eligibility a
// student would get for a loan product right now. Ineligibility is part
// of the quote, not an error.
func (s *Service) QuoteLoan(ctx context.Context, actor models.Actor, productID int64, amount float64) (*models.LoanQuote, error) {
	if amount <= 0 {
		return nil, models.NewValidation("amount must be positive")
	}
	p, err := s.loadProduct(ctx, actor, productID, models.ProductLoan)
	if err != nil {
		return nil, err
	}
	if !p.Active {
		return nil, models.NewValidation("product %q is no longer offered", p.Label)
	}
	account, err := s.store.GetAccount(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	rate, tierName, err := s.rateFor(ctx, actor.ClassID, account.CreditScore, p)
	if err != nil {
		return nil, err
	}

	quote := &models.LoanQuote{
		FinalRate:   rate,
		TierApplied: tierName,
		Eligible:    true,
	}
	if p.TermDays > 0 {
		quote.EstimatedInterest = loanInterest(amount, rate)
	}
	if reason := loanEligibility(p, account, amount); reason != "" {
		quote.Eligible = false
		quote.Reason = reason
	}
	return quote, nil
}

// loanEligibility returns an empty string when the student may borrow,
// or the user-facing reason why not.
func loanEligibility(p *models.Product, account *models.Account, amount float64) string {
	if p.MaxPrincipal != nil && amount > *p.MaxPrincipal {
		return fmt.Sprintf("amount exceeds the product maximum of %.0f", *p.MaxPrincipal)
	}
	if p.MinCreditScore != nil && account.CreditScore < *p.MinCreditScore {
		return fmt.Sprintf("credit score %.0f is below the required %.0f", account.CreditScore, *p.MinCreditScore)
	}
	return ""
}

// ApplyLoan creates a pending loan request. Nothing is disbursed until a
// teacher approves it.
func (s *Service) ApplyLoan(ctx context.Context, actor models.Actor, productID int64, amount float64) (*models.Loan, error) {
	if actor.Role != models.RoleStudent {
		return nil, models.NewValidation("only students can apply for loans")
	}
	if amount <= 0 {
		return nil, models.NewValidation("amount must be positive")
	}
	p, err := s.loadProduct(ctx, actor, productID, models.ProductLoan)
	if err != nil {
		return nil, err
	}
	if !p.Active {
		return nil, models.NewValidation("product %q is no longer offered", p.Label)
	}
	account, err := s.store.GetAccount(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	if reason := loanEligibility(p, account, amount); reason != "" {
		return nil, models.NewValidation("%s", reason)
	}
	rate, tierName, err := s.rateFor(ctx, actor.ClassID, account.CreditScore, p)
	if err != nil {
		return nil, err
	}

	totalInterest := 0.0
	if p.TermDays > 0 {
		totalInterest = loanInterest(amount, rate)
	}
	l := &models.Loan{
		StudentID:     actor.UserID,
		ClassID:       actor.ClassID,
		ProductID:     p.ID,
		ProductLabel:  p.Label,
		Principal:     amount,
		TermDays:      p.TermDays,
		BaseRate:      p.BaseRate,
		FinalRate:     rate,
		TierApplied:   tierName,
		TotalInterest: totalInterest,
		AmountLeft:    amount,
		InterestLeft:  totalInterest,
		Status:        models.LoanPending,
		RequestedAt:   s.now(),
	}
	if err := s.store.CreateLoan(ctx, l); err != nil {
		return nil, err
	}

	s.log.Infof("Loan %d requested by student %d: %.0f at %.4f%%", l.ID, actor.UserID, amount, rate)
	s.audit(ctx, &models.AuditEvent{
		ClassID: actor.ClassID, ActorID: actor.UserID, StudentID: actor.UserID,
		Action: "loan.apply", InstanceKind: "loan", InstanceID: l.ID, Amount: amount,
	})
	return l, nil
}

// ApproveLoan disburses a pending loan: cash and outstanding-loan
// balance both increase, and interest starts accruing now.
func (s *Service) ApproveLoan(ctx context.Context, actor models.Actor, loanID int64) (*models.Loan, error) {
	if !actor.IsTeacher() {
		return nil, models.NewValidation("only teachers can approve loans")
	}
	l, err := s.store.MutateLoan(ctx, loanID, func(l *models.Loan, acct *models.Account) (models.AccountDeltas, error) {
		if l.ClassID != actor.ClassID {
			return models.AccountDeltas{}, models.NewValidation("loan belongs to another class")
		}
		if l.Status != models.LoanPending {
			return models.AccountDeltas{}, models.NewPrecondition("loan is %s, expected pending", l.Status)
		}
		now := s.now()
		due := now.AddDate(0, 0, l.TermDays)
		l.Status = models.LoanApproved
		l.StartedAt = &now
		l.ExpectedRepaymentDate = &due
		l.ApprovedBy = &actor.UserID
		l.AmountLeft = l.Principal
		l.InterestLeft = l.TotalInterest
		return models.AccountDeltas{Cash: l.Principal, Loan: l.Principal}, nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Infof("Loan %d approved by teacher %d: %.0f disbursed", l.ID, actor.UserID, l.Principal)
	s.audit(ctx, &models.AuditEvent{
		ClassID: l.ClassID, ActorID: actor.UserID, StudentID: l.StudentID,
		Action: "loan.approve", InstanceKind: "loan", InstanceID: l.ID, Amount: l.Principal,
	})
	if s.notifier != nil && l.ExpectedRepaymentDate != nil {
		due := *l.ExpectedRepaymentDate
		s.notify(ctx, l.StudentID, func(to, username string) error {
			return s.notifier.LoanApproved(to, username, l.Principal, due)
		})
	}
	return l, nil
}

// RejectLoan refuses a pending loan. Nothing was disbursed, so there is
// no ledger effect.
func (s *Service) RejectLoan(ctx context.Context, actor models.Actor, loanID int64) (*models.Loan, error) {
	if !actor.IsTeacher() {
		return nil, models.NewValidation("only teachers can reject loans")
	}
	l, err := s.store.MutateLoan(ctx, loanID, func(l *models.Loan, acct *models.Account) (models.AccountDeltas, error) {
		if l.ClassID != actor.ClassID {
			return models.AccountDeltas{}, models.NewValidation("loan belongs to another class")
		}
		if l.Status != models.LoanPending {
			return models.AccountDeltas{}, models.NewPrecondition("loan is %s, expected pending", l.Status)
		}
		l.Status = models.LoanRejected
		l.ProcessedBy = &actor.UserID
		return models.AccountDeltas{}, nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Infof("Loan %d rejected by teacher %d", l.ID, actor.UserID)
	s.audit(ctx, &models.AuditEvent{
		ClassID: l.ClassID, ActorID: actor.UserID, StudentID: l.StudentID,
		Action: "loan.reject", InstanceKind: "loan", InstanceID: l.ID, Amount: l.Principal,
	})
	return l, nil
}

// RepayLoan applies a payment to an open loan. The interest owed is
// recomputed from elapsed time before allocation, so early settlement is
// strictly proportional to how long the money was out.
func (s *Service) RepayLoan(ctx context.Context, actor models.Actor, loanID int64, amount float64) (*models.RepaymentResult, error) {
	if amount <= 0 {
		return nil, models.NewValidation("amount must be positive")
	}
	var result models.RepaymentResult
	l, err := s.store.MutateLoan(ctx, loanID, func(l *models.Loan, acct *models.Account) (models.AccountDeltas, error) {
		if l.StudentID != actor.UserID && !actor.IsTeacher() {
			return models.AccountDeltas{}, models.NewValidation("loan belongs to another student")
		}
		if l.ClassID != actor.ClassID {
			return models.AccountDeltas{}, models.NewValidation("loan belongs to another class")
		}
		if !l.Open() {
			return models.AccountDeltas{}, models.NewPrecondition("loan is %s, expected approved or ongoing", l.Status)
		}
		now := s.now()
		interestLeft := l.InterestLeft
		if l.StartedAt != nil {
			accrued := loanInterestToDate(l.TotalInterest, elapsedDays(*l.StartedAt, now), l.TermDays)
			interestLeft = math.Max(0, accrued-l.TotalInterestPaid)
		}
		owed := l.AmountLeft + interestLeft
		if amount > owed+settleTolerance {
			return models.AccountDeltas{}, models.NewValidation("payment %.2f exceeds the %.2f owed", amount, owed)
		}
		if acct.Cash < amount {
			return models.AccountDeltas{}, models.NewValidation("insufficient cash")
		}

		interestPaid, principalPaid := allocatePayment(amount, interestLeft, l.AmountLeft)
		previousAmountLeft := l.AmountLeft
		l.AmountLeft -= principalPaid
		l.InterestLeft = interestLeft - interestPaid
		l.TotalRepaid += interestPaid + principalPaid
		l.TotalInterestPaid += interestPaid

		deltas := models.AccountDeltas{Cash: -(interestPaid + principalPaid), Loan: -principalPaid}
		if settled(l.AmountLeft, l.InterestLeft) {
			// Clear any sub-tolerance residue from both the instance and
			// the outstanding-loan asset.
			deltas.Loan = -previousAmountLeft
			l.AmountLeft = 0
			l.InterestLeft = 0
			l.Status = models.LoanRepaid
			l.ActualRepaymentDate = &now
		} else {
			l.Status = models.LoanOngoing
		}

		result = models.RepaymentResult{
			PrincipalPaid: principalPaid,
			InterestPaid:  interestPaid,
			FullySettled:  l.Status == models.LoanRepaid,
			AmountLeft:    l.AmountLeft,
			InterestLeft:  l.InterestLeft,
		}
		return deltas, nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Infof("Loan %d repaid %.2f by user %d: principal %.2f, interest %.2f, settled=%t",
		l.ID, result.PrincipalPaid+result.InterestPaid, actor.UserID, result.PrincipalPaid, result.InterestPaid, result.FullySettled)
	s.audit(ctx, &models.AuditEvent{
		ClassID: l.ClassID, ActorID: actor.UserID, StudentID: l.StudentID,
		Action: "loan.repay", InstanceKind: "loan", InstanceID: l.ID,
		Amount: result.PrincipalPaid, Interest: result.InterestPaid,
		Detail: fmt.Sprintf("settled=%t", result.FullySettled),
	})
	return &result, nil
}

// EarlyRepaymentQuote reports what settling an open loan right now would
// cost, with interest prorated to elapsed time.
func (s *Service) EarlyRepaymentQuote(ctx context.Context, actor models.Actor, loanID int64) (*models.EarlyRepaymentQuote, error) {
	l, err := s.store.GetLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if l.StudentID != actor.UserID && !actor.IsTeacher() {
		return nil, models.NewValidation("loan belongs to another student")
	}
	if !l.Open() {
		return nil, models.NewPrecondition("loan is %s, expected approved or ongoing", l.Status)
	}
	interestLeft := l.InterestLeft
	if l.StartedAt != nil {
		accrued := loanInterestToDate(l.TotalInterest, elapsedDays(*l.StartedAt, s.now()), l.TermDays)
		interestLeft = math.Max(0, accrued-l.TotalInterestPaid)
	}
	return &models.EarlyRepaymentQuote{
		PrincipalLeft: l.AmountLeft,
		InterestLeft:  interestLeft,
		TotalOwed:     l.AmountLeft + interestLeft,
	}, nil
}
