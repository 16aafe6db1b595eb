package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/classbank/bank-engine/internal/middleware"
	"github.com/classbank/bank-engine/internal/models"
	"github.com/classbank/bank-engine/internal/service"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

type Handler struct {
	svc *service.Service
	log *logrus.Logger
}

func NewHandler(svc *service.Service, log *logrus.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

type errorResponse struct {
	Kind    models.ErrorKind `json:"kind"`
	Message string           `json:"message"`
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			h.log.Errorf("Failed to encode response: %v", err)
		}
	}
}

// respondError maps the engine's error taxonomy onto HTTP statuses:
// validation 400, precondition 409, ledger 500, transient 503.
func (h *Handler) respondError(w http.ResponseWriter, err error) {
	kind := models.KindOf(err)
	status := http.StatusServiceUnavailable
	switch kind {
	case models.ErrKindValidation:
		status = http.StatusBadRequest
	case models.ErrKindPrecondition:
		status = http.StatusConflict
	case models.ErrKindLedger:
		status = http.StatusInternalServerError
	}
	if status >= http.StatusInternalServerError {
		h.log.Errorf("Request failed (%s): %v", kind, err)
	}
	h.respondJSON(w, status, errorResponse{Kind: kind, Message: err.Error()})
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.respondJSON(w, http.StatusBadRequest, errorResponse{
			Kind:    models.ErrKindValidation,
			Message: "invalid request body",
		})
		return false
	}
	return true
}

func (h *Handler) actor(w http.ResponseWriter, r *http.Request) (models.Actor, bool) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}
	return actor, ok
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		h.respondJSON(w, http.StatusBadRequest, errorResponse{
			Kind:    models.ErrKindValidation,
			Message: "invalid id",
		})
		return 0, false
	}
	return id, true
}

// GetAccount returns the caller's ledger account
func (h *Handler) GetAccount(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	account, err := h.svc.GetAccount(r.Context(), actor)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, account)
}
