package sweep_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/amorim-studio/salon-bookings/internal/domain"
	"github.com/amorim-studio/salon-bookings/internal/sweep"
	"github.com/amorim-studio/salon-bookings/pkg/events"
)

func newCleanup(s *store, bus *fakePublisher) *sweep.Cleanup {
	return sweep.NewCleanup(
		&fakeAppointments{s: s},
		&fakeSlots{s: s},
		&fakeNotifications{s: s},
		bus,
		time.UTC,
	)
}

func TestCleanupRemovesPastAppointments(t *testing.T) {
	s := newStore()
	bus := &fakePublisher{}

	past := s.addAppointment("client-a", time.Now().Add(-2*time.Hour), time.UTC)
	future := s.addAppointment("client-b", time.Now().Add(48*time.Hour), time.UTC)

	if err := newCleanup(s, bus).Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if s.hasAppointment(past.ID) {
		t.Error("past appointment still present")
	}
	if got := s.slotStatus(past.TimeSlotID); got != domain.SlotAvailable {
		t.Errorf("past slot status = %s, want available", got)
	}
	if !s.hasAppointment(future.ID) {
		t.Error("future appointment was removed")
	}
	if got := s.slotStatus(future.TimeSlotID); got != domain.SlotBooked {
		t.Errorf("future slot status = %s, want booked", got)
	}
	if n := bus.count(events.AppointmentExpired); n != 1 {
		t.Errorf("expired events = %d, want 1", n)
	}
}

func TestCleanupKeepsFutureSameDayAppointments(t *testing.T) {
	s := newStore()
	bus := &fakePublisher{}

	// Later today is not past; the boundary is the start instant, not the date.
	later := s.addAppointment("client-a", time.Now().Add(30*time.Minute), time.UTC)

	if err := newCleanup(s, bus).Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if !s.hasAppointment(later.ID) {
		t.Error("upcoming same-day appointment was removed")
	}
	if got := s.slotStatus(later.TimeSlotID); got != domain.SlotBooked {
		t.Errorf("slot status = %s, want booked", got)
	}
}

func TestCleanupFailureIsolation(t *testing.T) {
	s := newStore()
	bus := &fakePublisher{}

	broken := s.addAppointment("client-a", time.Now().Add(-3*time.Hour), time.UTC)
	healthy := s.addAppointment("client-b", time.Now().Add(-2*time.Hour), time.UTC)
	s.deleteErrs[broken.ID] = errors.New("connection reset")

	if err := newCleanup(s, bus).Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	// The failed item stays for the next pass; the rest of the pass completes.
	if !s.hasAppointment(broken.ID) {
		t.Error("failed appointment was removed despite the delete error")
	}
	if s.hasAppointment(healthy.ID) {
		t.Error("healthy past appointment survived the pass")
	}
	if got := s.slotStatus(healthy.TimeSlotID); got != domain.SlotAvailable {
		t.Errorf("healthy slot status = %s, want available", got)
	}
}

func TestCleanupIdempotent(t *testing.T) {
	s := newStore()
	bus := &fakePublisher{}

	s.addAppointment("client-a", time.Now().Add(-time.Hour), time.UTC)

	c := newCleanup(s, bus)
	if err := c.Run(context.Background()); err != nil {
		t.Fatalf("first Run failed: %v", err)
	}
	if err := c.Run(context.Background()); err != nil {
		t.Fatalf("second Run failed: %v", err)
	}

	if n := bus.count(events.AppointmentExpired); n != 1 {
		t.Errorf("expired events after two passes = %d, want 1", n)
	}
}
