package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	"github.com/amorim-studio/salon-bookings/internal/http/handlers"
	"github.com/amorim-studio/salon-bookings/internal/platform/idempotency"
	"github.com/amorim-studio/salon-bookings/internal/repo/postgres"
	"github.com/amorim-studio/salon-bookings/internal/service"
	"github.com/amorim-studio/salon-bookings/pkg/auth"
	"github.com/amorim-studio/salon-bookings/pkg/config"
	"github.com/amorim-studio/salon-bookings/pkg/database"
	"github.com/amorim-studio/salon-bookings/pkg/events"
	"github.com/amorim-studio/salon-bookings/pkg/logger"
	mw "github.com/amorim-studio/salon-bookings/pkg/middleware"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	ctx := context.Background()
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

	idemStore, err := idempotency.NewRedisStore(cfg.Redis.URL, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		logger.Error("Failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer idemStore.Close()

	// Repositories
	serviceRepo := postgres.NewServiceRepository(pool)
	slotRepo := postgres.NewSlotRepository(pool)
	appointmentRepo := postgres.NewAppointmentRepository(pool)
	profileRepo := postgres.NewProfileRepository(pool)
	settingsRepo := postgres.NewSettingsRepository(pool)

	// Services
	bookingService := service.NewBookingService(slotRepo, appointmentRepo, eventBus, cfg.Location())
	catalogService := service.NewCatalogService(serviceRepo, slotRepo, settingsRepo, eventBus)
	clientService := service.NewClientService(profileRepo, bookingService)

	h := handlers.New(bookingService, catalogService, clientService, cfg.Auth.JWTSecret)

	r := chi.NewRouter()

	r.Use(mw.RequestID)
	r.Use(mw.Logging)
	r.Use(mw.Health)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Public
	r.Get("/services", h.ListServices)
	r.Get("/slots", h.ListAvailableSlots)
	r.Get("/settings", h.ListSettings)

	// Client
	r.Route("/appointments", func(r chi.Router) {
		r.Use(h.RequireRole(auth.RoleClient))
		r.With(mw.Idempotency(idemStore, cfg.Salon.IdempotencyTTL)).Post("/", h.CreateAppointment)
		r.Get("/", h.ListMyAppointments)
		r.Delete("/{id}", h.CancelAppointment)
	})
	r.Route("/profile", func(r chi.Router) {
		r.Use(h.RequireRole(auth.RoleClient))
		r.Get("/", h.GetProfile)
		r.Put("/", h.UpdateProfile)
	})

	// Admin
	r.Route("/admin", func(r chi.Router) {
		r.Use(h.RequireRole(auth.RoleAdmin))
		r.Post("/services", h.CreateService)
		r.Put("/services/{id}", h.UpdateService)
		r.Delete("/services/{id}", h.DeleteService)
		r.Get("/slots", h.ListSlots)
		r.Post("/slots", h.CreateSlot)
		r.Delete("/slots/{id}", h.DeleteSlot)
		r.Get("/appointments", h.ListAllAppointments)
		r.Delete("/appointments/{id}", h.CancelAppointment)
		r.Get("/clients", h.ListClients)
		r.Delete("/clients/{id}", h.RemoveClient)
		r.Put("/settings/{key}", h.UpdateSetting)
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down API server...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("API server shutdown error", "error", err)
		}
	}()

	logger.Info("Starting API server", "port", cfg.Server.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("API server error", "error", err)
		os.Exit(1)
	}
}
