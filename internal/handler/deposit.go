package handler

import "net/http"

type depositRequest struct {
	ProductID int64   `json:"product_id"`
	Amount    float64 `json:"amount"`
}

// QuoteDeposit returns the rate and estimated interest for a deposit
func (h *Handler) QuoteDeposit(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	var req depositRequest
	if !h.decode(w, r, &req) {
		return
	}
	quote, err := h.svc.QuoteDeposit(r.Context(), actor, req.ProductID, req.Amount)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, quote)
}

// ApplyDeposit creates a pending deposit application
func (h *Handler) ApplyDeposit(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	var req depositRequest
	if !h.decode(w, r, &req) {
		return
	}
	deposit, err := h.svc.ApplyDeposit(r.Context(), actor, req.ProductID, req.Amount)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, deposit)
}

// ListDeposits returns the caller's deposits
func (h *Handler) ListDeposits(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	deposits, err := h.svc.ListDeposits(r.Context(), actor)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, deposits)
}

// ApproveDeposit activates a pending deposit
func (h *Handler) ApproveDeposit(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	deposit, err := h.svc.ApproveDeposit(r.Context(), actor, id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, deposit)
}

// RejectDeposit refuses a pending deposit
func (h *Handler) RejectDeposit(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	deposit, err := h.svc.RejectDeposit(r.Context(), actor, id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, deposit)
}

// CancelDeposit withdraws the caller's own pending application
func (h *Handler) CancelDeposit(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	deposit, err := h.svc.CancelDepositRequest(r.Context(), actor, id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, deposit)
}

// ClaimDeposit pays out a matured deposit
func (h *Handler) ClaimDeposit(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	deposit, err := h.svc.ClaimDeposit(r.Context(), actor, id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, deposit)
}

// TerminateDeposit ends a deposit early, forfeiting interest
func (h *Handler) TerminateDeposit(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	deposit, err := h.svc.TerminateDepositEarly(r.Context(), actor, id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, deposit)
}
