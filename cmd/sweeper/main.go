package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/amorim-studio/salon-bookings/internal/platform/mailer"
	"github.com/amorim-studio/salon-bookings/internal/repo/postgres"
	"github.com/amorim-studio/salon-bookings/internal/sweep"
	"github.com/amorim-studio/salon-bookings/pkg/config"
	"github.com/amorim-studio/salon-bookings/pkg/database"
	"github.com/amorim-studio/salon-bookings/pkg/events"
	"github.com/amorim-studio/salon-bookings/pkg/logger"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := database.Connect(ctx, cfg.Database.URL)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	eventBus, err := events.NewNATSEventBus(cfg.NATS.URL)
	if err != nil {
		logger.Error("Failed to connect to NATS", "error", err)
		os.Exit(1)
	}
	defer eventBus.Close()

	mail := mailer.New(
		cfg.Email.DevMode,
		cfg.Email.MailerSendKey, cfg.Email.FromName, cfg.Email.FromEmail,
		cfg.Email.SMTPHost, cfg.Email.SMTPPort, cfg.Email.SMTPFrom,
		cfg.Email.SMTPUser, cfg.Email.SMTPPass, cfg.Email.SMTPUseTLS,
	)

	appointmentRepo := postgres.NewAppointmentRepository(pool)
	slotRepo := postgres.NewSlotRepository(pool)
	profileRepo := postgres.NewProfileRepository(pool)
	notificationRepo := postgres.NewNotificationRepository(pool)
	settingsRepo := postgres.NewSettingsRepository(pool)

	loc := cfg.Location()

	cleanup := sweep.NewCleanup(appointmentRepo, slotRepo, notificationRepo, eventBus, loc)
	reminder := sweep.NewReminder(appointmentRepo, profileRepo, notificationRepo, settingsRepo, mail, eventBus, loc, sweep.ReminderConfig{
		SalonName:          cfg.Salon.Name,
		FallbackAdminEmail: cfg.Salon.AdminEmail,
		LeadMin:            cfg.Sweep.ReminderLeadMin,
		LeadMax:            cfg.Sweep.ReminderLeadMax,
	})

	runner := sweep.NewRunner()
	runner.Add(cleanup, cfg.Sweep.CleanupInterval)
	runner.Add(reminder, cfg.Sweep.ReminderInterval)

	logger.Info("Starting sweeper",
		"cleanup_interval", cfg.Sweep.CleanupInterval.String(),
		"reminder_interval", cfg.Sweep.ReminderInterval.String(),
	)
	runner.Run(ctx)
	logger.Info("Sweeper stopped")
}
