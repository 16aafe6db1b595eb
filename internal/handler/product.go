package handler

import (
	"net/http"

	"github.com/classbank/bank-engine/internal/models"
)

// ListProducts returns the active products of the requested kind
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	kind := models.ProductKind(r.URL.Query().Get("kind"))
	products, err := h.svc.ListProducts(r.Context(), actor, kind)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, products)
}

// CreateProduct adds a catalog entry (teacher only)
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	var p models.Product
	if !h.decode(w, r, &p) {
		return
	}
	created, err := h.svc.CreateProduct(r.Context(), actor, &p)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, created)
}

// UpdateProduct edits a catalog entry (teacher only)
func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var p models.Product
	if !h.decode(w, r, &p) {
		return
	}
	p.ID = id
	updated, err := h.svc.UpdateProduct(r.Context(), actor, &p)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, updated)
}

// DeactivateProduct hides a product from new applications (teacher only)
func (h *Handler) DeactivateProduct(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeactivateProduct(r.Context(), actor, id); err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusNoContent, nil)
}
