package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"database/sql"

	"github.com/classbank/bank-engine/internal/config"
	"github.com/classbank/bank-engine/internal/handler"
	"github.com/classbank/bank-engine/internal/integrations/refrate"
	"github.com/classbank/bank-engine/internal/middleware"
	"github.com/classbank/bank-engine/internal/repository"
	"github.com/classbank/bank-engine/internal/service"
	"github.com/classbank/bank-engine/internal/utils/email"
	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logLevel, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	// Initialize database
	db, err := sql.Open("postgres", cfg.DBConn)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Fatalf("Failed to ping database: %v", err)
	}

	// Initialize layers
	repo := repository.NewRepository(db)
	svc := service.NewService(repo, logger, cfg)
	sender := email.NewSender(cfg, logger)
	svc.SetNotifier(sender)
	h := handler.NewHandler(svc, logger)
	rateClient := refrate.NewClient(cfg, logger)

	// Setup router
	r := mux.NewRouter()
	// Public routes
	r.HandleFunc("/register", h.Register).Methods("POST")
	r.HandleFunc("/login", h.Login).Methods("POST")
	// Protected routes
	authRouter := r.PathPrefix("/").Subrouter()
	authRouter.Use(middleware.AuthMiddleware(cfg))
	authRouter.HandleFunc("/account", h.GetAccount).Methods("GET")
	authRouter.HandleFunc("/products", h.ListProducts).Methods("GET")
	authRouter.HandleFunc("/products", h.CreateProduct).Methods("POST")
	authRouter.HandleFunc("/products/{id}", h.UpdateProduct).Methods("PUT")
	authRouter.HandleFunc("/products/{id}", h.DeactivateProduct).Methods("DELETE")
	authRouter.HandleFunc("/deposits/quote", h.QuoteDeposit).Methods("POST")
	authRouter.HandleFunc("/deposits", h.ApplyDeposit).Methods("POST")
	authRouter.HandleFunc("/deposits", h.ListDeposits).Methods("GET")
	authRouter.HandleFunc("/deposits/{id}/approve", h.ApproveDeposit).Methods("POST")
	authRouter.HandleFunc("/deposits/{id}/reject", h.RejectDeposit).Methods("POST")
	authRouter.HandleFunc("/deposits/{id}/cancel", h.CancelDeposit).Methods("POST")
	authRouter.HandleFunc("/deposits/{id}/claim", h.ClaimDeposit).Methods("POST")
	authRouter.HandleFunc("/deposits/{id}/terminate", h.TerminateDeposit).Methods("POST")
	authRouter.HandleFunc("/loans/quote", h.QuoteLoan).Methods("POST")
	authRouter.HandleFunc("/loans", h.ApplyLoan).Methods("POST")
	authRouter.HandleFunc("/loans", h.ListLoans).Methods("GET")
	authRouter.HandleFunc("/loans/{id}/approve", h.ApproveLoan).Methods("POST")
	authRouter.HandleFunc("/loans/{id}/reject", h.RejectLoan).Methods("POST")
	authRouter.HandleFunc("/loans/{id}/repay", h.RepayLoan).Methods("POST")
	authRouter.HandleFunc("/loans/{id}/early-repayment", h.EarlyRepaymentQuote).Methods("GET")
	// Reference rate endpoint
	r.HandleFunc("/market/reference-rate", func(w http.ResponseWriter, r *http.Request) {
		rate, fetchedAt := rateClient.Current()
		if fetchedAt.IsZero() {
			http.Error(w, "reference rate not available yet", http.StatusServiceUnavailable)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"reference_rate": rate,
			"fetched_at":     fetchedAt,
		})
	}).Methods("GET")

	// Scheduled jobs: rate refresh and maturity reminders
	c := cron.New()
	if _, err := c.AddFunc("@every 1h", func() {
		if err := rateClient.Refresh(); err != nil {
			logger.Warnf("Scheduled rate refresh failed: %v", err)
		}
	}); err != nil {
		logger.Fatalf("Failed to schedule rate refresh: %v", err)
	}
	if _, err := c.AddFunc("@daily", func() {
		sendMaturityReminders(repo, sender, logger)
	}); err != nil {
		logger.Fatalf("Failed to schedule maturity reminders: %v", err)
	}
	c.Start()
	defer c.Stop()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	logger.Infof("Starting server on %s", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("Server failed: %v", err)
	}
}

// sendMaturityReminders emails students whose active deposits have
// matured but are still unclaimed. Best-effort: a failed send skips to
// the next deposit.
func sendMaturityReminders(repo *repository.Repository, sender *email.Sender, logger *logrus.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	deposits, err := repo.ListMaturedUnclaimedDeposits(ctx, time.Now())
	if err != nil {
		logger.Errorf("Failed to list matured deposits: %v", err)
		return
	}
	for _, d := range deposits {
		user, err := repo.FindUserByID(ctx, d.StudentID)
		if err != nil {
			logger.Warnf("Failed to look up student %d: %v", d.StudentID, err)
			continue
		}
		if d.MaturityDate == nil {
			continue
		}
		if err := sender.DepositMatured(user.Email, user.Username, d.Principal, *d.MaturityDate); err != nil {
			logger.Warnf("Failed to send maturity reminder for deposit %d: %v", d.ID, err)
		}
	}
	logger.Infof("Maturity reminder run completed: %d deposits checked", len(deposits))
}
