package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/amorim-studio/salon-bookings/internal/domain"
	"github.com/amorim-studio/salon-bookings/internal/http/response"
)

// GetProfile returns the caller's profile projection.
// GET /profile
func (h *Handlers) GetProfile(w http.ResponseWriter, r *http.Request) {
	ident, ok := identityFrom(r)
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	profile, err := h.clients.GetProfile(r.Context(), ident)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// UpdateProfile creates or updates the caller's profile projection.
// PUT /profile
func (h *Handlers) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	ident, ok := identityFrom(r)
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	var req domain.ProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	profile, err := h.clients.UpdateProfile(r.Context(), ident, &req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// ListClients is the admin view over client profiles.
// GET /admin/clients
func (h *Handlers) ListClients(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)

	profiles, err := h.clients.ListClients(r.Context(), limit, offset)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if profiles == nil {
		profiles = []domain.Profile{}
	}
	writeJSON(w, http.StatusOK, profiles)
}

// RemoveClient cancels a client's active appointments and removes the
// profile projection.
// DELETE /admin/clients/{id}
func (h *Handlers) RemoveClient(w http.ResponseWriter, r *http.Request) {
	ident, ok := identityFrom(r)
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	if err := h.clients.RemoveClient(r.Context(), ident, chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
