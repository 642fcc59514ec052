package sweep

import (
	"context"
	"time"

	"github.com/amorim-studio/salon-bookings/internal/repo/postgres"
	"github.com/amorim-studio/salon-bookings/pkg/events"
	"github.com/amorim-studio/salon-bookings/pkg/logger"
)

// Cleanup reclaims slots whose appointment time has elapsed: the appointment
// is hard-deleted and its slot released, one appointment per atomic unit.
type Cleanup struct {
	appointments  postgres.AppointmentRepository
	slots         postgres.SlotRepository
	notifications postgres.NotificationRepository
	eventBus      events.Publisher
	loc           *time.Location
}

func NewCleanup(
	appointments postgres.AppointmentRepository,
	slots postgres.SlotRepository,
	notifications postgres.NotificationRepository,
	eventBus events.Publisher,
	loc *time.Location,
) *Cleanup {
	return &Cleanup{
		appointments:  appointments,
		slots:         slots,
		notifications: notifications,
		eventBus:      eventBus,
		loc:           loc,
	}
}

func (c *Cleanup) Name() string { return "cleanup" }

func (c *Cleanup) Run(ctx context.Context) error {
	// One "now" snapshot for the whole pass so boundary decisions are
	// consistent within a run.
	now := time.Now().In(c.loc)

	appts, err := c.appointments.ListActive(ctx)
	if err != nil {
		return err
	}

	var deleted int
	for _, a := range appts {
		if !a.StartsAt(c.loc).Before(now) {
			continue
		}

		// Per-item unit: a failure here must not abort the rest of the pass.
		slotID, ok, err := c.appointments.DeleteActive(ctx, a.ID)
		if err != nil {
			logger.ErrorContext(ctx, "Failed to delete past appointment", "error", err, "appointment_id", a.ID)
			continue
		}
		if !ok {
			// Someone canceled it between the listing and now.
			continue
		}

		if err := c.slots.Release(ctx, slotID); err != nil {
			logger.ErrorContext(ctx, "Failed to release slot of past appointment",
				"error", err, "appointment_id", a.ID, "slot_id", slotID)
		}
		deleted++

		event := events.AppointmentExpiredEvent{
			AppointmentID: a.ID,
			TimeSlotID:    slotID,
			Date:          a.Date.String(),
			Time:          a.Time.String(),
			ExpiredAt:     now,
		}
		if err := c.eventBus.Publish(ctx, events.AppointmentExpired, event); err != nil {
			logger.ErrorContext(ctx, "Failed to publish appointment expired event", "error", err, "appointment_id", a.ID)
		}
	}

	if deleted > 0 {
		logger.InfoContext(ctx, "Cleanup pass finished", "checked", len(appts), "deleted", deleted)
	}

	if c.notifications != nil {
		if n, err := c.notifications.CleanupOrphaned(ctx); err != nil {
			logger.ErrorContext(ctx, "Failed to prune orphaned notification log rows", "error", err)
		} else if n > 0 {
			logger.InfoContext(ctx, "Pruned orphaned notification log rows", "count", n)
		}
	}

	return nil
}
