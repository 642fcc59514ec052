package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/amorim-studio/salon-bookings/internal/domain"
	"github.com/amorim-studio/salon-bookings/internal/repo/postgres"
	"github.com/amorim-studio/salon-bookings/pkg/events"
	"github.com/amorim-studio/salon-bookings/pkg/logger"
)

// BookingService turns a client's slot selection into a durable appointment,
// or fails cleanly. Concurrency correctness rests on the store: the slot
// reservation is a conditional update and the active-appointment-per-slot
// unique index is the backstop if two writers still race.
type BookingService interface {
	Book(ctx context.Context, ident domain.Identity, req *domain.BookAppointmentRequest) (*domain.Appointment, error)
	Cancel(ctx context.Context, ident domain.Identity, appointmentID string) error
	ListMine(ctx context.Context, ident domain.Identity) ([]domain.AppointmentDetail, error)
	ListAll(ctx context.Context, limit, offset int) ([]domain.AppointmentDetail, error)
}

type bookingService struct {
	slots        postgres.SlotRepository
	appointments postgres.AppointmentRepository
	eventBus     events.Publisher
	loc          *time.Location
}

func NewBookingService(
	slots postgres.SlotRepository,
	appointments postgres.AppointmentRepository,
	eventBus events.Publisher,
	loc *time.Location,
) BookingService {
	return &bookingService{
		slots:        slots,
		appointments: appointments,
		eventBus:     eventBus,
		loc:          loc,
	}
}

func (s *bookingService) Book(ctx context.Context, ident domain.Identity, req *domain.BookAppointmentRequest) (*domain.Appointment, error) {
	slot, err := s.slots.GetByID(ctx, req.TimeSlotID)
	if err != nil {
		return nil, fmt.Errorf("failed to load slot: %w", err)
	}
	if slot == nil {
		return nil, domain.ErrNotFound
	}
	if slot.ServiceID != req.ServiceID {
		return nil, fmt.Errorf("%w: slot does not belong to the requested service", domain.ErrValidation)
	}
	if slot.StartsAt(s.loc).Before(time.Now().In(s.loc)) {
		return nil, fmt.Errorf("%w: slot is in the past", domain.ErrValidation)
	}

	// Step 1: conditional reservation. Exactly one of two racing callers
	// gets past this point.
	if err := s.slots.Reserve(ctx, req.TimeSlotID); err != nil {
		return nil, err
	}

	// Step 2: bind the appointment to the reserved slot.
	appt, err := s.appointments.Create(ctx, ident.UserID, req.ServiceID, req.TimeSlotID)
	if err != nil {
		// Step 3: compensate. The slot must not stay booked with no
		// appointment behind it.
		s.compensateReservation(ctx, req.TimeSlotID)
		if errors.Is(err, domain.ErrSlotUnavailable) {
			return nil, domain.ErrSlotUnavailable
		}
		logger.ErrorContext(ctx, "Appointment insert failed after reservation", "error", err, "slot_id", req.TimeSlotID)
		return nil, domain.ErrBookingFailed
	}

	event := events.AppointmentCreatedEvent{
		AppointmentID: appt.ID,
		ClientID:      appt.ClientID,
		ServiceID:     appt.ServiceID,
		TimeSlotID:    appt.TimeSlotID,
		Date:          slot.Date.String(),
		Time:          slot.Time.String(),
		CreatedAt:     appt.CreatedAt,
	}
	if err := s.eventBus.Publish(ctx, events.AppointmentCreated, event); err != nil {
		logger.ErrorContext(ctx, "Failed to publish appointment created event", "error", err, "appointment_id", appt.ID)
	}

	return appt, nil
}

// compensateReservation releases a slot whose booking did not complete. A
// slot stuck in booked with zero appointments is a dead resource, so a failed
// release is retried once and then logged loudly for manual release.
func (s *bookingService) compensateReservation(ctx context.Context, slotID string) {
	err := s.slots.Release(ctx, slotID)
	if err == nil {
		return
	}
	logger.WarnContext(ctx, "Slot release failed, retrying", "error", err, "slot_id", slotID)
	if err := s.slots.Release(ctx, slotID); err != nil {
		logger.ErrorContext(ctx, "Slot release failed twice; slot is stuck booked and needs manual release",
			"error", err, "slot_id", slotID)
	}
}

func (s *bookingService) Cancel(ctx context.Context, ident domain.Identity, appointmentID string) error {
	appt, err := s.appointments.GetByID(ctx, appointmentID)
	if err != nil {
		return fmt.Errorf("failed to load appointment: %w", err)
	}
	if appt == nil {
		return domain.ErrNotFound
	}
	if !ident.IsAdmin() && appt.ClientID != ident.UserID {
		return domain.ErrForbidden
	}

	// The appointment row goes first: no observable window may exist where
	// the slot is available while the old appointment still counts as active.
	slotID, ok, err := s.appointments.DeleteActive(ctx, appointmentID)
	if err != nil {
		return fmt.Errorf("failed to delete appointment: %w", err)
	}
	if !ok {
		return domain.ErrNotFound
	}

	if err := s.slots.Release(ctx, slotID); err != nil {
		logger.ErrorContext(ctx, "Slot release failed after cancellation; slot needs manual release",
			"error", err, "slot_id", slotID, "appointment_id", appointmentID)
	}

	reason := "client_requested"
	if ident.IsAdmin() && appt.ClientID != ident.UserID {
		reason = "admin_canceled"
	}
	event := events.AppointmentCanceledEvent{
		AppointmentID: appointmentID,
		ClientID:      appt.ClientID,
		TimeSlotID:    slotID,
		Reason:        reason,
		CanceledAt:    time.Now(),
	}
	if err := s.eventBus.Publish(ctx, events.AppointmentCanceled, event); err != nil {
		logger.ErrorContext(ctx, "Failed to publish appointment canceled event", "error", err, "appointment_id", appointmentID)
	}

	return nil
}

func (s *bookingService) ListMine(ctx context.Context, ident domain.Identity) ([]domain.AppointmentDetail, error) {
	return s.appointments.ListByClient(ctx, ident.UserID)
}

func (s *bookingService) ListAll(ctx context.Context, limit, offset int) ([]domain.AppointmentDetail, error) {
	return s.appointments.List(ctx, limit, offset)
}
