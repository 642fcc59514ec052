package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/amorim-studio/salon-bookings/internal/domain"
	"github.com/amorim-studio/salon-bookings/internal/repo/postgres"
	"github.com/amorim-studio/salon-bookings/pkg/events"
	"github.com/amorim-studio/salon-bookings/pkg/logger"
)

// CatalogService covers the admin-authored long-lived entities: services,
// time slots and site settings.
type CatalogService interface {
	ListServices(ctx context.Context) ([]domain.Service, error)
	CreateService(ctx context.Context, req *domain.ServiceRequest) (*domain.Service, error)
	UpdateService(ctx context.Context, id string, req *domain.ServiceRequest) (*domain.Service, error)
	DeleteService(ctx context.Context, id string) error

	ListAvailableSlots(ctx context.Context, serviceID string, from domain.Date) ([]domain.TimeSlot, error)
	ListSlots(ctx context.Context, limit, offset int) ([]domain.TimeSlot, error)
	CreateSlot(ctx context.Context, req *domain.CreateSlotRequest) (*domain.TimeSlot, error)
	DeleteSlot(ctx context.Context, id string) error

	ListSettings(ctx context.Context) ([]domain.SiteSetting, error)
	UpdateSetting(ctx context.Context, key, value string) (*domain.SiteSetting, error)
}

type catalogService struct {
	services postgres.ServiceRepository
	slots    postgres.SlotRepository
	settings postgres.SettingsRepository
	eventBus events.Publisher
}

func NewCatalogService(
	services postgres.ServiceRepository,
	slots postgres.SlotRepository,
	settings postgres.SettingsRepository,
	eventBus events.Publisher,
) CatalogService {
	return &catalogService{
		services: services,
		slots:    slots,
		settings: settings,
		eventBus: eventBus,
	}
}

func (s *catalogService) ListServices(ctx context.Context) ([]domain.Service, error) {
	return s.services.List(ctx)
}

func (s *catalogService) CreateService(ctx context.Context, req *domain.ServiceRequest) (*domain.Service, error) {
	if err := validateService(req); err != nil {
		return nil, err
	}
	return s.services.Create(ctx, req)
}

func (s *catalogService) UpdateService(ctx context.Context, id string, req *domain.ServiceRequest) (*domain.Service, error) {
	if err := validateService(req); err != nil {
		return nil, err
	}
	svc, err := s.services.Update(ctx, id, req)
	if err != nil {
		return nil, err
	}
	if svc == nil {
		return nil, domain.ErrNotFound
	}
	return svc, nil
}

func (s *catalogService) DeleteService(ctx context.Context, id string) error {
	ok, err := s.services.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrNotFound
	}
	return nil
}

func (s *catalogService) ListAvailableSlots(ctx context.Context, serviceID string, from domain.Date) ([]domain.TimeSlot, error) {
	return s.slots.ListAvailable(ctx, serviceID, from)
}

func (s *catalogService) ListSlots(ctx context.Context, limit, offset int) ([]domain.TimeSlot, error) {
	return s.slots.List(ctx, limit, offset)
}

func (s *catalogService) CreateSlot(ctx context.Context, req *domain.CreateSlotRequest) (*domain.TimeSlot, error) {
	date, err := domain.ParseDate(req.Date)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	t, err := domain.ParseTimeOfDay(req.Time)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	svc, err := s.services.GetByID(ctx, req.ServiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to load service: %w", err)
	}
	if svc == nil {
		return nil, domain.ErrNotFound
	}

	slot, err := s.slots.Create(ctx, req.ServiceID, date, t)
	if err != nil {
		return nil, err
	}

	event := events.SlotEvent{
		TimeSlotID: slot.ID,
		ServiceID:  slot.ServiceID,
		Date:       slot.Date.String(),
		Time:       slot.Time.String(),
		Status:     string(slot.Status),
	}
	if err := s.eventBus.Publish(ctx, events.SlotOpened, event); err != nil {
		logger.ErrorContext(ctx, "Failed to publish slot opened event", "error", err, "slot_id", slot.ID)
	}

	return slot, nil
}

func (s *catalogService) DeleteSlot(ctx context.Context, id string) error {
	slot, err := s.slots.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if slot == nil {
		return domain.ErrNotFound
	}

	if err := s.slots.Delete(ctx, id); err != nil {
		return err
	}

	event := events.SlotEvent{
		TimeSlotID: slot.ID,
		ServiceID:  slot.ServiceID,
		Date:       slot.Date.String(),
		Time:       slot.Time.String(),
	}
	if err := s.eventBus.Publish(ctx, events.SlotRemoved, event); err != nil {
		logger.ErrorContext(ctx, "Failed to publish slot removed event", "error", err, "slot_id", id)
	}
	return nil
}

func (s *catalogService) ListSettings(ctx context.Context) ([]domain.SiteSetting, error) {
	return s.settings.List(ctx)
}

func (s *catalogService) UpdateSetting(ctx context.Context, key, value string) (*domain.SiteSetting, error) {
	if strings.TrimSpace(key) == "" {
		return nil, fmt.Errorf("%w: setting key is required", domain.ErrValidation)
	}
	return s.settings.Set(ctx, key, value)
}

func validateService(req *domain.ServiceRequest) error {
	if strings.TrimSpace(req.Name) == "" {
		return fmt.Errorf("%w: service name is required", domain.ErrValidation)
	}
	return nil
}
