package handler

import (
	"net/http"

	"github.com/classbank/bank-engine/internal/models"
)

type registerRequest struct {
	ClassID  int64  `json:"class_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// Register handles user registration
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.Username == "" || req.Email == "" || req.Password == "" {
		h.respondError(w, models.NewValidation("username, email and password are required"))
		return
	}
	role := models.Role(req.Role)
	if role == "" {
		role = models.RoleStudent
	}
	user, err := h.svc.Register(r.Context(), req.ClassID, req.Username, req.Email, req.Password, role)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, user)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// Login handles user authentication
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !h.decode(w, r, &req) {
		return
	}
	token, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, loginResponse{Token: token})
}
