package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/amorim-studio/salon-bookings/internal/domain"
	"github.com/amorim-studio/salon-bookings/internal/http/response"
)

// CreateAppointment books a slot for the authenticated client.
// POST /appointments
func (h *Handlers) CreateAppointment(w http.ResponseWriter, r *http.Request) {
	ident, ok := identityFrom(r)
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	var req domain.BookAppointmentRequest
	if err := decodeJSON(r, &req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if req.ServiceID == "" || req.TimeSlotID == "" {
		response.BadRequest(w, "service_id and time_slot_id are required")
		return
	}

	appt, err := h.booking.Book(r.Context(), ident, &req)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, appt)
}

// ListMyAppointments returns the caller's active appointments. The client is
// expected to re-fetch after booking or cancelling rather than trust a local
// cache, since other actors change the slot set concurrently.
// GET /appointments
func (h *Handlers) ListMyAppointments(w http.ResponseWriter, r *http.Request) {
	ident, ok := identityFrom(r)
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	appts, err := h.booking.ListMine(r.Context(), ident)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if appts == nil {
		appts = []domain.AppointmentDetail{}
	}
	writeJSON(w, http.StatusOK, appts)
}

// CancelAppointment cancels one of the caller's appointments.
// DELETE /appointments/{id}
func (h *Handlers) CancelAppointment(w http.ResponseWriter, r *http.Request) {
	ident, ok := identityFrom(r)
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.booking.Cancel(r.Context(), ident, id); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListAllAppointments is the admin view over every appointment.
// GET /admin/appointments
func (h *Handlers) ListAllAppointments(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)

	appts, err := h.booking.ListAll(r.Context(), limit, offset)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if appts == nil {
		appts = []domain.AppointmentDetail{}
	}
	writeJSON(w, http.StatusOK, appts)
}
