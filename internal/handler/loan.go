package handler

import "net/http"

type loanRequest struct {
	ProductID int64   `json:"product_id"`
	Amount    float64 `json:"amount"`
}

type repayRequest struct {
	Amount float64 `json:"amount"`
}

// QuoteLoan returns the rate, estimated interest and eligibility for a loan
func (h *Handler) QuoteLoan(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	var req loanRequest
	if !h.decode(w, r, &req) {
		return
	}
	quote, err := h.svc.QuoteLoan(r.Context(), actor, req.ProductID, req.Amount)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, quote)
}

// ApplyLoan creates a pending loan request
func (h *Handler) ApplyLoan(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	var req loanRequest
	if !h.decode(w, r, &req) {
		return
	}
	loan, err := h.svc.ApplyLoan(r.Context(), actor, req.ProductID, req.Amount)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, loan)
}

// ListLoans returns the caller's loans
func (h *Handler) ListLoans(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	loans, err := h.svc.ListLoans(r.Context(), actor)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, loans)
}

// ApproveLoan disburses a pending loan
func (h *Handler) ApproveLoan(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	loan, err := h.svc.ApproveLoan(r.Context(), actor, id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, loan)
}

// RejectLoan refuses a pending loan
func (h *Handler) RejectLoan(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	loan, err := h.svc.RejectLoan(r.Context(), actor, id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, loan)
}

// RepayLoan applies a payment to an open loan
func (h *Handler) RepayLoan(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req repayRequest
	if !h.decode(w, r, &req) {
		return
	}
	result, err := h.svc.RepayLoan(r.Context(), actor, id, req.Amount)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, result)
}

// EarlyRepaymentQuote reports what settling the loan now would cost
func (h *Handler) EarlyRepaymentQuote(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	quote, err := h.svc.EarlyRepaymentQuote(r.Context(), actor, id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, quote)
}
