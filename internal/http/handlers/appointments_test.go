package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/amorim-studio/salon-bookings/internal/domain"
	"github.com/amorim-studio/salon-bookings/internal/http/handlers"
	"github.com/amorim-studio/salon-bookings/pkg/auth"
)

const testSecret = "test-secret"

// stubBooking lets each test inject the service behavior it needs.
type stubBooking struct {
	book     func(ctx context.Context, ident domain.Identity, req *domain.BookAppointmentRequest) (*domain.Appointment, error)
	cancel   func(ctx context.Context, ident domain.Identity, id string) error
	listMine func(ctx context.Context, ident domain.Identity) ([]domain.AppointmentDetail, error)
	listAll  func(ctx context.Context, limit, offset int) ([]domain.AppointmentDetail, error)
}

func (s *stubBooking) Book(ctx context.Context, ident domain.Identity, req *domain.BookAppointmentRequest) (*domain.Appointment, error) {
	return s.book(ctx, ident, req)
}

func (s *stubBooking) Cancel(ctx context.Context, ident domain.Identity, id string) error {
	return s.cancel(ctx, ident, id)
}

func (s *stubBooking) ListMine(ctx context.Context, ident domain.Identity) ([]domain.AppointmentDetail, error) {
	return s.listMine(ctx, ident)
}

func (s *stubBooking) ListAll(ctx context.Context, limit, offset int) ([]domain.AppointmentDetail, error) {
	return s.listAll(ctx, limit, offset)
}

func newRouter(booking *stubBooking) http.Handler {
	h := handlers.New(booking, nil, nil, testSecret)

	r := chi.NewRouter()
	r.Route("/appointments", func(r chi.Router) {
		r.Use(h.RequireRole(auth.RoleClient))
		r.Post("/", h.CreateAppointment)
		r.Get("/", h.ListMyAppointments)
		r.Delete("/{id}", h.CancelAppointment)
	})
	r.Route("/admin", func(r chi.Router) {
		r.Use(h.RequireRole(auth.RoleAdmin))
		r.Get("/appointments", h.ListAllAppointments)
	})
	return r
}

func token(t *testing.T, sub, role string) string {
	t.Helper()
	tok, err := auth.NewAccessToken(sub, sub+"@example.com", role, testSecret, time.Hour)
	if err != nil {
		t.Fatalf("failed to mint token: %v", err)
	}
	return tok
}

func doRequest(t *testing.T, router http.Handler, method, path, bearer string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func errCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode error body %q: %v", rec.Body.String(), err)
	}
	return body.Code
}

func TestCreateAppointment(t *testing.T) {
	booking := &stubBooking{
		book: func(_ context.Context, ident domain.Identity, req *domain.BookAppointmentRequest) (*domain.Appointment, error) {
			return &domain.Appointment{
				ID:         "appt-1",
				ClientID:   ident.UserID,
				ServiceID:  req.ServiceID,
				TimeSlotID: req.TimeSlotID,
				Status:     domain.AppointmentActive,
			}, nil
		},
	}
	router := newRouter(booking)

	rec := doRequest(t, router, http.MethodPost, "/appointments", token(t, "client-a", auth.RoleClient),
		domain.BookAppointmentRequest{ServiceID: "svc-1", TimeSlotID: "slot-1"})

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201; body %s", rec.Code, rec.Body.String())
	}
	var appt domain.Appointment
	if err := json.Unmarshal(rec.Body.Bytes(), &appt); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if appt.ClientID != "client-a" || appt.TimeSlotID != "slot-1" {
		t.Errorf("unexpected appointment: %+v", appt)
	}
}

func TestCreateAppointmentSlotConflict(t *testing.T) {
	booking := &stubBooking{
		book: func(context.Context, domain.Identity, *domain.BookAppointmentRequest) (*domain.Appointment, error) {
			return nil, domain.ErrSlotUnavailable
		},
	}
	router := newRouter(booking)

	rec := doRequest(t, router, http.MethodPost, "/appointments", token(t, "client-a", auth.RoleClient),
		domain.BookAppointmentRequest{ServiceID: "svc-1", TimeSlotID: "slot-1"})

	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
	if code := errCode(t, rec); code != "SLOT_UNAVAILABLE" {
		t.Errorf("error code = %q, want SLOT_UNAVAILABLE", code)
	}
}

func TestCreateAppointmentValidation(t *testing.T) {
	booking := &stubBooking{
		book: func(context.Context, domain.Identity, *domain.BookAppointmentRequest) (*domain.Appointment, error) {
			t.Fatal("service must not be reached on invalid input")
			return nil, nil
		},
	}
	router := newRouter(booking)

	rec := doRequest(t, router, http.MethodPost, "/appointments", token(t, "client-a", auth.RoleClient),
		domain.BookAppointmentRequest{ServiceID: "svc-1"})

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestCreateAppointmentAuth(t *testing.T) {
	booking := &stubBooking{
		book: func(context.Context, domain.Identity, *domain.BookAppointmentRequest) (*domain.Appointment, error) {
			return &domain.Appointment{ID: "appt-1"}, nil
		},
	}
	router := newRouter(booking)
	body := domain.BookAppointmentRequest{ServiceID: "svc-1", TimeSlotID: "slot-1"}

	if rec := doRequest(t, router, http.MethodPost, "/appointments", "", body); rec.Code != http.StatusUnauthorized {
		t.Errorf("no token: status = %d, want 401", rec.Code)
	}
	if rec := doRequest(t, router, http.MethodPost, "/appointments", "not-a-jwt", body); rec.Code != http.StatusUnauthorized {
		t.Errorf("garbage token: status = %d, want 401", rec.Code)
	}

	expired, err := auth.NewAccessToken("client-a", "a@example.com", auth.RoleClient, testSecret, -time.Minute)
	if err != nil {
		t.Fatalf("failed to mint token: %v", err)
	}
	if rec := doRequest(t, router, http.MethodPost, "/appointments", expired, body); rec.Code != http.StatusUnauthorized {
		t.Errorf("expired token: status = %d, want 401", rec.Code)
	}

	// Admins pass client-scoped routes.
	if rec := doRequest(t, router, http.MethodPost, "/appointments", token(t, "admin-1", auth.RoleAdmin), body); rec.Code != http.StatusCreated {
		t.Errorf("admin on client route: status = %d, want 201", rec.Code)
	}
}

func TestCancelAppointment(t *testing.T) {
	var canceledBy domain.Identity
	booking := &stubBooking{
		cancel: func(_ context.Context, ident domain.Identity, id string) error {
			canceledBy = ident
			if id == "missing" {
				return domain.ErrNotFound
			}
			if id == "someone-elses" {
				return domain.ErrForbidden
			}
			return nil
		},
	}
	router := newRouter(booking)
	bearer := token(t, "client-a", auth.RoleClient)

	if rec := doRequest(t, router, http.MethodDelete, "/appointments/appt-1", bearer, nil); rec.Code != http.StatusNoContent {
		t.Errorf("cancel: status = %d, want 204", rec.Code)
	}
	if canceledBy.UserID != "client-a" {
		t.Errorf("cancel identity = %q, want client-a", canceledBy.UserID)
	}
	if rec := doRequest(t, router, http.MethodDelete, "/appointments/missing", bearer, nil); rec.Code != http.StatusNotFound {
		t.Errorf("missing: status = %d, want 404", rec.Code)
	}
	if rec := doRequest(t, router, http.MethodDelete, "/appointments/someone-elses", bearer, nil); rec.Code != http.StatusForbidden {
		t.Errorf("foreign: status = %d, want 403", rec.Code)
	}
}

func TestListMyAppointmentsEmpty(t *testing.T) {
	booking := &stubBooking{
		listMine: func(context.Context, domain.Identity) ([]domain.AppointmentDetail, error) {
			return nil, nil
		},
	}
	router := newRouter(booking)

	rec := doRequest(t, router, http.MethodGet, "/appointments", token(t, "client-a", auth.RoleClient), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	// Empty list serializes as [], never null.
	if got := rec.Body.String(); got != "[]\n" {
		t.Errorf("body = %q, want empty JSON array", got)
	}
}

func TestAdminRouteRejectsClients(t *testing.T) {
	booking := &stubBooking{
		listAll: func(context.Context, int, int) ([]domain.AppointmentDetail, error) {
			return []domain.AppointmentDetail{{ID: "appt-1"}}, nil
		},
	}
	router := newRouter(booking)

	if rec := doRequest(t, router, http.MethodGet, "/admin/appointments", token(t, "client-a", auth.RoleClient), nil); rec.Code != http.StatusForbidden {
		t.Errorf("client on admin route: status = %d, want 403", rec.Code)
	}
	if rec := doRequest(t, router, http.MethodGet, "/admin/appointments", token(t, "admin-1", auth.RoleAdmin), nil); rec.Code != http.StatusOK {
		t.Errorf("admin: status = %d, want 200", rec.Code)
	}
}
