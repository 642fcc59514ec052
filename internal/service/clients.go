package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/amorim-studio/salon-bookings/internal/domain"
	"github.com/amorim-studio/salon-bookings/internal/repo/postgres"
	"github.com/amorim-studio/salon-bookings/pkg/logger"
)

// ClientService manages profile projections and admin removal of clients.
type ClientService interface {
	GetProfile(ctx context.Context, ident domain.Identity) (*domain.Profile, error)
	UpdateProfile(ctx context.Context, ident domain.Identity, req *domain.ProfileRequest) (*domain.Profile, error)
	ListClients(ctx context.Context, limit, offset int) ([]domain.Profile, error)
	RemoveClient(ctx context.Context, ident domain.Identity, userID string) error
}

type clientService struct {
	profiles postgres.ProfileRepository
	booking  BookingService
}

func NewClientService(profiles postgres.ProfileRepository, booking BookingService) ClientService {
	return &clientService{profiles: profiles, booking: booking}
}

func (s *clientService) GetProfile(ctx context.Context, ident domain.Identity) (*domain.Profile, error) {
	p, err := s.profiles.GetByUserID(ctx, ident.UserID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

func (s *clientService) UpdateProfile(ctx context.Context, ident domain.Identity, req *domain.ProfileRequest) (*domain.Profile, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	return s.profiles.Upsert(ctx, &domain.Profile{
		UserID: ident.UserID,
		Name:   req.Name,
		Email:  ident.Email,
		Phone:  req.Phone,
	})
}

func (s *clientService) ListClients(ctx context.Context, limit, offset int) ([]domain.Profile, error) {
	return s.profiles.List(ctx, limit, offset)
}

// RemoveClient cancels the client's active appointments (releasing their
// slots) and then drops the profile projection. Revoking the account itself
// is the identity provider's business.
func (s *clientService) RemoveClient(ctx context.Context, ident domain.Identity, userID string) error {
	appts, err := s.booking.ListMine(ctx, domain.Identity{UserID: userID, Role: domain.RoleClient})
	if err != nil {
		return fmt.Errorf("failed to list client appointments: %w", err)
	}
	for _, a := range appts {
		if err := s.booking.Cancel(ctx, ident, a.ID); err != nil {
			logger.ErrorContext(ctx, "Failed to cancel appointment while removing client",
				"error", err, "appointment_id", a.ID, "client_id", userID)
		}
	}

	ok, err := s.profiles.Delete(ctx, userID)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrNotFound
	}
	return nil
}
