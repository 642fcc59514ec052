package sweep

import (
	"context"
	"fmt"
	"time"

	"github.com/amorim-studio/salon-bookings/internal/domain"
	"github.com/amorim-studio/salon-bookings/internal/platform/mailer"
	"github.com/amorim-studio/salon-bookings/internal/repo/postgres"
	"github.com/amorim-studio/salon-bookings/pkg/events"
	"github.com/amorim-studio/salon-bookings/pkg/logger"
)

// Reminder notifies the client and the admin once per appointment when its
// start time enters the lookahead window. The notification log makes each
// (appointment, type) pair at-most-once, so the job can run as often as it
// likes.
type Reminder struct {
	appointments  postgres.AppointmentRepository
	profiles      postgres.ProfileRepository
	notifications postgres.NotificationRepository
	settings      postgres.SettingsRepository
	mail          mailer.Service
	eventBus      events.Publisher
	loc           *time.Location

	salonName     string
	fallbackAdmin string
	leadMin       time.Duration
	leadMax       time.Duration
}

type ReminderConfig struct {
	SalonName          string
	FallbackAdminEmail string
	LeadMin            time.Duration
	LeadMax            time.Duration
}

func NewReminder(
	appointments postgres.AppointmentRepository,
	profiles postgres.ProfileRepository,
	notifications postgres.NotificationRepository,
	settings postgres.SettingsRepository,
	mail mailer.Service,
	eventBus events.Publisher,
	loc *time.Location,
	cfg ReminderConfig,
) *Reminder {
	if cfg.LeadMin <= 0 {
		cfg.LeadMin = time.Hour
	}
	if cfg.LeadMax <= cfg.LeadMin {
		cfg.LeadMax = 2 * time.Hour
	}
	return &Reminder{
		appointments:  appointments,
		profiles:      profiles,
		notifications: notifications,
		settings:      settings,
		mail:          mail,
		eventBus:      eventBus,
		loc:           loc,
		salonName:     cfg.SalonName,
		fallbackAdmin: cfg.FallbackAdminEmail,
		leadMin:       cfg.LeadMin,
		leadMax:       cfg.LeadMax,
	}
}

func (r *Reminder) Name() string { return "reminder" }

func (r *Reminder) Run(ctx context.Context) error {
	now := time.Now().In(r.loc)
	from := now.Add(r.leadMin)
	to := now.Add(r.leadMax)

	appts, err := r.appointments.ListActive(ctx)
	if err != nil {
		return err
	}

	var sent int
	for _, a := range appts {
		start := a.StartsAt(r.loc)
		if start.Before(from) || start.After(to) {
			continue
		}
		if r.remind(ctx, &a) {
			sent++
		}
	}

	if sent > 0 {
		logger.InfoContext(ctx, "Reminder pass finished", "checked", len(appts), "notified", sent)
	}
	return nil
}

// remind handles one appointment inside the window. Each notification type is
// guarded and logged independently; a failure on one appointment never blocks
// the others.
func (r *Reminder) remind(ctx context.Context, a *domain.AppointmentDetail) bool {
	profile, err := r.profiles.GetByUserID(ctx, a.ClientID)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to load client profile", "error", err, "appointment_id", a.ID)
		return false
	}
	if profile == nil || profile.Email == "" {
		logger.WarnContext(ctx, "Skipping reminder: missing client contact info",
			"appointment_id", a.ID, "client_id", a.ClientID)
		return false
	}

	any := false
	if r.send(ctx, a, domain.NotificationClientReminder, profile.Email, profile.Name,
		r.clientSubject(), r.clientBody(profile.Name, a)) {
		any = true
	}
	if r.send(ctx, a, domain.NotificationAdminNotification, r.adminEmail(ctx), "",
		r.adminSubject(profile.Name), r.adminBody(profile, a)) {
		any = true
	}
	return any
}

func (r *Reminder) send(ctx context.Context, a *domain.AppointmentDetail, ntype domain.NotificationType, to, toName, subject, html string) bool {
	already, err := r.notifications.HasSent(ctx, a.ID, ntype)
	if err != nil {
		logger.ErrorContext(ctx, "Notification log check failed", "error", err, "appointment_id", a.ID, "type", ntype)
		return false
	}
	if already {
		return false
	}

	_, sendErr := r.mail.Send(to, toName, subject, "", html)
	if sendErr != nil {
		logger.ErrorContext(ctx, "Reminder email failed", "error", sendErr, "appointment_id", a.ID, "type", ntype)
		if err := r.notifications.Record(ctx, a.ID, ntype, domain.NotificationFailed, sendErr.Error()); err != nil {
			logger.ErrorContext(ctx, "Failed to record notification failure", "error", err, "appointment_id", a.ID)
		}
		r.publish(ctx, events.NotifyFailed, a.ID, ntype, to, sendErr.Error())
		return false
	}

	if err := r.notifications.Record(ctx, a.ID, ntype, domain.NotificationSent, ""); err != nil {
		// The email went out but the guard row did not land; the next pass
		// may send a duplicate. Log it so the gap is visible.
		logger.ErrorContext(ctx, "Failed to record sent notification", "error", err, "appointment_id", a.ID, "type", ntype)
	}
	r.publish(ctx, events.NotifySent, a.ID, ntype, to, "")
	return true
}

func (r *Reminder) publish(ctx context.Context, subject, apptID string, ntype domain.NotificationType, recipient, errDetail string) {
	event := events.NotificationEvent{
		AppointmentID: apptID,
		Type:          string(ntype),
		Recipient:     recipient,
		Error:         errDetail,
	}
	if err := r.eventBus.Publish(ctx, subject, event); err != nil {
		logger.ErrorContext(ctx, "Failed to publish notification event", "error", err, "appointment_id", apptID)
	}
}

// adminEmail prefers the configured site setting and falls back to the
// deploy-time default.
func (r *Reminder) adminEmail(ctx context.Context) string {
	value, ok, err := r.settings.Get(ctx, domain.SettingAdminEmail)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to read admin email setting", "error", err)
		return r.fallbackAdmin
	}
	if !ok || value == "" {
		return r.fallbackAdmin
	}
	return value
}

func (r *Reminder) clientSubject() string {
	return "Reminder: your appointment is coming up!"
}

func (r *Reminder) clientBody(name string, a *domain.AppointmentDetail) string {
	return fmt.Sprintf(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h2>Hello %s,</h2>
  <p>Just a reminder of your appointment at <strong>%s</strong>.</p>
  <div style="background-color: #f9f9f9; padding: 15px; border-radius: 8px;">
    <p><strong>Service:</strong> %s</p>
    <p><strong>Date:</strong> %s</p>
    <p><strong>Time:</strong> %s</p>
  </div>
  <p>See you soon!<br>%s</p>
</div>`, name, r.salonName, a.ServiceName, a.Date, a.Time, r.salonName)
}

func (r *Reminder) adminSubject(clientName string) string {
	return fmt.Sprintf("Upcoming appointment: %s", clientName)
}

func (r *Reminder) adminBody(p *domain.Profile, a *domain.AppointmentDetail) string {
	return fmt.Sprintf(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h2>Upcoming appointment</h2>
  <div style="background-color: #f9f9f9; padding: 15px; border-radius: 8px;">
    <p><strong>Client:</strong> %s</p>
    <p><strong>Phone:</strong> %s</p>
    <p><strong>Service:</strong> %s</p>
    <p><strong>Date:</strong> %s</p>
    <p><strong>Time:</strong> %s</p>
  </div>
</div>`, p.Name, p.Phone, a.ServiceName, a.Date, a.Time)
}
