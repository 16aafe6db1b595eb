package email

import (
	"fmt"
	"net/smtp"
	"time"

	"github.com/classbank/bank-engine/internal/config"
	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"
)

// Sender handles sending emails via SMTP
type Sender struct {
	cfg    *config.Config
	logger *logrus.Logger
}

// NewSender creates a new email sender
func NewSender(cfg *config.Config, logger *logrus.Logger) *Sender {
	return &Sender{
		cfg:    cfg,
		logger: logger,
	}
}

func (s *Sender) send(to, subject, body string) error {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{to}
	e.Subject = subject
	e.Text = []byte(body)

	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	auth := smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	if err := e.Send(addr, auth); err != nil {
		s.logger.Errorf("Failed to send email to %s: %v", to, err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Infof("Email sent to %s: %s", to, subject)
	return nil
}

// DepositApproved notifies a student that a deposit is now active
func (s *Sender) DepositApproved(to, username string, amount float64, maturity time.Time) error {
	body := fmt.Sprintf(
		"Dear %s,\n\n"+
			"Your deposit of %.0f has been approved and is now earning interest.\n"+
			"It matures on %s; claim it then to receive your principal plus interest.\n"+
			"\nBest regards,\nClass Bank",
		username, amount, maturity.Format("2006-01-02"),
	)
	return s.send(to, "Deposit Approved", body)
}

// LoanApproved notifies a student that a loan has been disbursed
func (s *Sender) LoanApproved(to, username string, amount float64, due time.Time) error {
	body := fmt.Sprintf(
		"Dear %s,\n\n"+
			"Your loan of %.0f has been approved and credited to your account.\n"+
			"Repayment is expected by %s. Repaying early reduces the interest you owe.\n"+
			"\nBest regards,\nClass Bank",
		username, amount, due.Format("2006-01-02"),
	)
	return s.send(to, "Loan Approved", body)
}

// DepositMatured reminds a student that a matured deposit is claimable
func (s *Sender) DepositMatured(to, username string, amount float64, maturity time.Time) error {
	body := fmt.Sprintf(
		"Dear %s,\n\n"+
			"Your deposit of %.0f matured on %s and is ready to claim.\n"+
			"Claim it to receive your principal plus the interest you earned.\n"+
			"\nBest regards,\nClass Bank",
		username, amount, maturity.Format("2006-01-02"),
	)
	return s.send(to, "Deposit Matured", body)
}
