package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/amorim-studio/salon-bookings/internal/domain"
	"github.com/amorim-studio/salon-bookings/internal/http/response"
)

// ListServices is the public service catalog.
// GET /services
func (h *Handlers) ListServices(w http.ResponseWriter, r *http.Request) {
	services, err := h.catalog.ListServices(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if services == nil {
		services = []domain.Service{}
	}
	writeJSON(w, http.StatusOK, services)
}

// ListAvailableSlots lists open slots, optionally filtered by service and a
// lower date bound.
// GET /slots?service_id=&from=
func (h *Handlers) ListAvailableSlots(w http.ResponseWriter, r *http.Request) {
	serviceID := r.URL.Query().Get("service_id")

	var from domain.Date
	if raw := r.URL.Query().Get("from"); raw != "" {
		parsed, err := domain.ParseDate(raw)
		if err != nil {
			response.BadRequest(w, err.Error())
			return
		}
		from = parsed
	}

	slots, err := h.catalog.ListAvailableSlots(r.Context(), serviceID, from)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if slots == nil {
		slots = []domain.TimeSlot{}
	}
	writeJSON(w, http.StatusOK, slots)
}

// ListSettings exposes the public site settings (social links and contact).
// GET /settings
func (h *Handlers) ListSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.catalog.ListSettings(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if settings == nil {
		settings = []domain.SiteSetting{}
	}
	writeJSON(w, http.StatusOK, settings)
}

// Admin catalog management

func (h *Handlers) CreateService(w http.ResponseWriter, r *http.Request) {
	var req domain.ServiceRequest
	if err := decodeJSON(r, &req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	svc, err := h.catalog.CreateService(r.Context(), &req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, svc)
}

func (h *Handlers) UpdateService(w http.ResponseWriter, r *http.Request) {
	var req domain.ServiceRequest
	if err := decodeJSON(r, &req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	svc, err := h.catalog.UpdateService(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, svc)
}

func (h *Handlers) DeleteService(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.DeleteService(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) ListSlots(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)

	slots, err := h.catalog.ListSlots(r.Context(), limit, offset)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if slots == nil {
		slots = []domain.TimeSlot{}
	}
	writeJSON(w, http.StatusOK, slots)
}

func (h *Handlers) CreateSlot(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateSlotRequest
	if err := decodeJSON(r, &req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	slot, err := h.catalog.CreateSlot(r.Context(), &req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, slot)
}

func (h *Handlers) DeleteSlot(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.DeleteSlot(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) UpdateSetting(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Value string `json:"value"`
	}
	if err := decodeJSON(r, &req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	setting, err := h.catalog.UpdateSetting(r.Context(), chi.URLParam(r, "key"), req.Value)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, setting)
}
