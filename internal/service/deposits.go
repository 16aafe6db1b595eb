package service

import (
	"context"

	"github.com/classbank/bank-engine/internal/models"
)

// QuoteDeposit computes the rate and estimated interest a student would
// get for a deposit product right now.
func (s *Service) QuoteDeposit(ctx context.Context, actor models.Actor, productID int64, amount float64) (*models.DepositQuote, error) {
	if amount <= 0 {
		return nil, models.NewValidation("amount must be positive")
	}
	p, err := s.loadProduct(ctx, actor, productID, models.ProductDeposit)
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
	interest := 0.0
	if p.TermDays > 0 {
		interest = depositInterest(amount, rate)
	}
	return &models.DepositQuote{
		FinalRate:         rate,
		EstimatedInterest: interest,
		TierApplied:       tierName,
	}, nil
}

// ApplyDeposit creates a pending deposit and escrows the cash. The quote
// is snapshotted on the instance so it stays reproducible even if the
// product or tier tables change later.
func (s *Service) ApplyDeposit(ctx context.Context, actor models.Actor, productID int64, amount float64) (*models.Deposit, error) {
	if actor.Role != models.RoleStudent {
		return nil, models.NewValidation("only students can apply for deposits")
	}
	if amount <= 0 {
		return nil, models.NewValidation("amount must be positive")
	}
	p, err := s.loadProduct(ctx, actor, productID, models.ProductDeposit)
	if err != nil {
		return nil, err
	}
	if !p.Active {
		return nil, models.NewValidation("product %q is no longer offered", p.Label)
	}
	if p.MaxPrincipal != nil && amount > *p.MaxPrincipal {
		return nil, models.NewValidation("amount exceeds the product maximum of %.0f", *p.MaxPrincipal)
	}
	account, err := s.store.GetAccount(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	if account.Cash < amount {
		return nil, models.NewValidation("insufficient cash")
	}
	rate, tierName, err := s.rateFor(ctx, actor.ClassID, account.CreditScore, p)
	if err != nil {
		return nil, err
	}

	d := &models.Deposit{
		StudentID:         actor.UserID,
		ClassID:           actor.ClassID,
		ProductID:         p.ID,
		ProductLabel:      p.Label,
		Principal:         amount,
		TermDays:          p.TermDays,
		BaseRate:          p.BaseRate,
		FinalRate:         rate,
		TierApplied:       tierName,
		EstimatedInterest: depositInterest(amount, rate),
		Status:            models.DepositPending,
		RequestedAt:       s.now(),
	}
	// Escrow: cash leaves the account while the application is pending.
	if err := s.store.CreateDeposit(ctx, d, models.AccountDeltas{Cash: -amount}); err != nil {
		return nil, err
	}

	s.log.Infof("Deposit %d requested by student %d: %.0f at %.4f%%", d.ID, actor.UserID, amount, rate)
	s.audit(ctx, &models.AuditEvent{
		ClassID: actor.ClassID, ActorID: actor.UserID, StudentID: actor.UserID,
		Action: "deposit.apply", InstanceKind: "deposit", InstanceID: d.ID, Amount: amount,
	})
	return d, nil
}

// ApproveDeposit activates a pending deposit: the escrowed cash becomes
// deposit principal and the maturity clock starts now.
func (s *Service) ApproveDeposit(ctx context.Context, actor models.Actor, depositID int64) (*models.Deposit, error) {
	if !actor.IsTeacher() {
		return nil, models.NewValidation("only teachers can approve deposits")
	}
	d, err := s.store.MutateDeposit(ctx, depositID, func(d *models.Deposit, acct *models.Account) (models.AccountDeltas, error) {
		if d.ClassID != actor.ClassID {
			return models.AccountDeltas{}, models.NewValidation("deposit belongs to another class")
		}
		if d.Status != models.DepositPending {
			return models.AccountDeltas{}, models.NewPrecondition("deposit is %s, expected pending", d.Status)
		}
		now := s.now()
		maturity := now.AddDate(0, 0, d.TermDays)
		d.Status = models.DepositActive
		d.StartedAt = &now
		d.MaturityDate = &maturity
		d.ApprovedBy = &actor.UserID
		return models.AccountDeltas{Deposit: d.Principal}, nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Infof("Deposit %d approved by teacher %d", d.ID, actor.UserID)
	s.audit(ctx, &models.AuditEvent{
		ClassID: d.ClassID, ActorID: actor.UserID, StudentID: d.StudentID,
		Action: "deposit.approve", InstanceKind: "deposit", InstanceID: d.ID, Amount: d.Principal,
	})
	if s.notifier != nil && d.MaturityDate != nil {
		maturity := *d.MaturityDate
		s.notify(ctx, d.StudentID, func(to, username string) error {
			return s.notifier.DepositApproved(to, username, d.Principal, maturity)
		})
	}
	return d, nil
}

// RejectDeposit refuses a pending deposit and refunds the escrowed cash.
func (s *Service) RejectDeposit(ctx context.Context, actor models.Actor, depositID int64) (*models.Deposit, error) {
	if !actor.IsTeacher() {
		return nil, models.NewValidation("only teachers can reject deposits")
	}
	return s.closePendingDeposit(ctx, actor, depositID, models.DepositRejected, "deposit.reject")
}

// CancelDepositRequest lets the owning student withdraw a pending
// application. Same ledger effect as a rejection, different actor.
func (s *Service) CancelDepositRequest(ctx context.Context, actor models.Actor, depositID int64) (*models.Deposit, error) {
	return s.closePendingDeposit(ctx, actor, depositID, models.DepositCancelled, "deposit.cancel")
}

func (s *Service) closePendingDeposit(ctx context.Context, actor models.Actor, depositID int64, to models.DepositStatus, action string) (*models.Deposit, error) {
	d, err := s.store.MutateDeposit(ctx, depositID, func(d *models.Deposit, acct *models.Account) (models.AccountDeltas, error) {
		if to == models.DepositCancelled && d.StudentID != actor.UserID {
			return models.AccountDeltas{}, models.NewValidation("deposit belongs to another student")
		}
		if d.ClassID != actor.ClassID {
			return models.AccountDeltas{}, models.NewValidation("deposit belongs to another class")
		}
		if d.Status != models.DepositPending {
			return models.AccountDeltas{}, models.NewPrecondition("deposit is %s, expected pending", d.Status)
		}
		d.Status = to
		d.ProcessedBy = &actor.UserID
		// Refund the escrow; nothing was ever added to the deposit asset.
		return models.AccountDeltas{Cash: d.Principal}, nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Infof("Deposit %d %s by user %d", d.ID, d.Status, actor.UserID)
	s.audit(ctx, &models.AuditEvent{
		ClassID: d.ClassID, ActorID: actor.UserID, StudentID: d.StudentID,
		Action: action, InstanceKind: "deposit", InstanceID: d.ID, Amount: d.Principal,
	})
	return d, nil
}

// ClaimDeposit pays out principal plus interest on a matured deposit.
// Interest is recomputed from the snapshotted rate, so the payout equals
// the estimate shown at apply time.
func (s *Service) ClaimDeposit(ctx context.Context, actor models.Actor, depositID int64) (*models.Deposit, error) {
	d, err := s.store.MutateDeposit(ctx, depositID, func(d *models.Deposit, acct *models.Account) (models.AccountDeltas, error) {
		if d.StudentID != actor.UserID {
			return models.AccountDeltas{}, models.NewValidation("deposit belongs to another student")
		}
		if d.Status != models.DepositActive {
			return models.AccountDeltas{}, models.NewPrecondition("deposit is %s, expected active", d.Status)
		}
		now := s.now()
		if d.MaturityDate == nil || dayOf(now).Before(dayOf(*d.MaturityDate)) {
			return models.AccountDeltas{}, models.NewPrecondition("deposit has not matured yet")
		}
		interest := depositInterest(d.Principal, d.FinalRate)
		d.Status = models.DepositCompleted
		d.ClaimedAt = &now
		d.InterestPaid = interest
		return models.AccountDeltas{Cash: d.Principal + interest, Deposit: -d.Principal}, nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Infof("Deposit %d claimed by student %d: principal %.0f, interest %.0f", d.ID, actor.UserID, d.Principal, d.InterestPaid)
	s.audit(ctx, &models.AuditEvent{
		ClassID: d.ClassID, ActorID: actor.UserID, StudentID: d.StudentID,
		Action: "deposit.claim", InstanceKind: "deposit", InstanceID: d.ID,
		Amount: d.Principal, Interest: d.InterestPaid,
	})
	return d, nil
}

// TerminateDepositEarly refunds the principal of an active deposit
// before maturity. No interest is paid, regardless of how close to
// maturity the termination happens. Once the maturity day is reached the
// deposit must be claimed instead.
func (s *Service) TerminateDepositEarly(ctx context.Context, actor models.Actor, depositID int64) (*models.Deposit, error) {
	d, err := s.store.MutateDeposit(ctx, depositID, func(d *models.Deposit, acct *models.Account) (models.AccountDeltas, error) {
		if d.StudentID != actor.UserID {
			return models.AccountDeltas{}, models.NewValidation("deposit belongs to another student")
		}
		if d.Status != models.DepositActive {
			return models.AccountDeltas{}, models.NewPrecondition("deposit is %s, expected active", d.Status)
		}
		now := s.now()
		if d.MaturityDate != nil && !dayOf(now).Before(dayOf(*d.MaturityDate)) {
			return models.AccountDeltas{}, models.NewPrecondition("deposit has matured; claim it instead")
		}
		d.Status = models.DepositTerminated
		d.TerminatedAt = &now
		d.InterestPaid = 0
		return models.AccountDeltas{Cash: d.Principal, Deposit: -d.Principal}, nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Infof("Deposit %d terminated early by student %d", d.ID, actor.UserID)
	s.audit(ctx, &models.AuditEvent{
		ClassID: d.ClassID, ActorID: actor.UserID, StudentID: d.StudentID,
		Action: "deposit.terminate", InstanceKind: "deposit", InstanceID: d.ID, Amount: d.Principal,
	})
	return d, nil
}
