package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/amorim-studio/salon-bookings/internal/domain"
	"github.com/amorim-studio/salon-bookings/internal/http/response"
	"github.com/amorim-studio/salon-bookings/internal/service"
	"github.com/amorim-studio/salon-bookings/pkg/auth"
	"github.com/amorim-studio/salon-bookings/pkg/logger"
)

type Handlers struct {
	booking   service.BookingService
	catalog   service.CatalogService
	clients   service.ClientService
	jwtSecret string
}

func New(booking service.BookingService, catalog service.CatalogService, clients service.ClientService, jwtSecret string) *Handlers {
	return &Handlers{
		booking:   booking,
		catalog:   catalog,
		clients:   clients,
		jwtSecret: jwtSecret,
	}
}

type ctxKey string

const identityKey ctxKey = "identity"

// RequireRole verifies the identity provider's bearer token and stamps the
// request-scoped identity into the context. Admins pass every role check.
func (h *Handlers) RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				response.Unauthorized(w, "Missing or invalid authorization header")
				return
			}

			token := strings.TrimPrefix(authHeader, "Bearer ")
			claims, err := auth.Parse(token, h.jwtSecret)
			if err != nil {
				response.Unauthorized(w, "Invalid token")
				return
			}

			if role != "" && claims.Role != role && claims.Role != auth.RoleAdmin {
				response.Forbidden(w, "Insufficient permissions")
				return
			}

			ident := domain.Identity{
				UserID: claims.Sub,
				Email:  claims.Email,
				Role:   domain.Role(claims.Role),
			}
			ctx := context.WithValue(r.Context(), identityKey, ident)
			ctx = context.WithValue(ctx, logger.UserIDKey, claims.Sub)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func identityFrom(r *http.Request) (domain.Identity, bool) {
	ident, ok := r.Context().Value(identityKey).(domain.Identity)
	return ident, ok
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			logger.Error("Failed to encode response", "error", err)
		}
	}
}

func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

// writeDomainError maps workflow errors onto the HTTP error taxonomy.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrSlotUnavailable):
		response.SlotUnavailable(w, "This time slot is no longer available, please pick another one")
	case errors.Is(err, domain.ErrNotFound):
		response.NotFound(w, "Not found")
	case errors.Is(err, domain.ErrForbidden):
		response.Forbidden(w, "You are not allowed to do that")
	case errors.Is(err, domain.ErrSlotBooked):
		response.Conflict(w, "Time slot has an active appointment")
	case errors.Is(err, domain.ErrSlotExists):
		response.Conflict(w, "A slot already exists for this service, date and time")
	case errors.Is(err, domain.ErrValidation):
		response.BadRequest(w, err.Error())
	case errors.Is(err, domain.ErrBookingFailed):
		response.WriteError(w, http.StatusInternalServerError, "Booking could not be completed, please try again", response.CodeInternalError)
	default:
		response.InternalError(w, "Internal error")
	}
}

func queryInt(r *http.Request, key string, fallback int) int {
	if value := r.URL.Query().Get(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}
