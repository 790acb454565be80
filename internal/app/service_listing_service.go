package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/agrolink/agrolink/internal/storage"
)

// ServiceListingService manages agricultural service offers.
type ServiceListingService struct {
	services storage.ServiceRepository
	logger   *slog.Logger
}

func NewServiceListingService(services storage.ServiceRepository, logger *slog.Logger) *ServiceListingService {
	return &ServiceListingService{
		services: services,
		logger:   serviceLogger(logger, "services"),
	}
}

func (s *ServiceListingService) Create(ctx context.Context, req CreateServiceRequest) (int64, error) {
	if strings.TrimSpace(req.ServiceName) == "" {
		return 0, fmt.Errorf("%w: service name is required", ErrValidation)
	}
	if req.OwnerID <= 0 {
		return 0, fmt.Errorf("%w: owner is required", ErrValidation)
	}
	if req.Price < 0 {
		return 0, fmt.Errorf("%w: price must not be negative", ErrValidation)
	}
	unit := req.PriceUnit
	if unit == "" {
		unit = storage.PriceUnitHectare
	}
	if !unit.Valid() {
		return 0, fmt.Errorf("%w: unknown price unit %q", ErrValidation, unit)
	}

	ownerID := req.OwnerID
	service := &storage.Service{
		ServiceName:   req.ServiceName,
		ToolType:      req.ToolType,
		Description:   req.Description,
		Price:         req.Price,
		PriceUnit:     unit,
		ProviderName:  req.ProviderName,
		ProviderPhone: req.ProviderPhone,
		ImageURL:      req.ImageURL,
		OwnerID:       &ownerID,
	}
	if err := s.services.Create(ctx, service); err != nil {
		s.logger.Error("create service failed", "owner_id", ownerID, "error", err)
		return 0, nil
	}
	return service.ID, nil
}

func (s *ServiceListingService) List(ctx context.Context) []storage.Service {
	services, err := s.services.List(ctx)
	if err != nil {
		s.logger.Error("list services failed", "error", err)
		return []storage.Service{}
	}
	return services
}

func (s *ServiceListingService) ListByOwner(ctx context.Context, ownerID int64) []storage.Service {
	services, err := s.services.ListByOwner(ctx, ownerID)
	if err != nil {
		s.logger.Error("list owner services failed", "owner_id", ownerID, "error", err)
		return []storage.Service{}
	}
	return services
}

func (s *ServiceListingService) Get(ctx context.Context, id int64) *storage.Service {
	service, err := s.services.Get(ctx, id)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.logger.Error("get service failed", "service_id", id, "error", err)
		}
		return nil
	}
	return service
}

// Delete removes a service by id regardless of who created it.
func (s *ServiceListingService) Delete(ctx context.Context, id int64) bool {
	removed, err := s.services.Delete(ctx, id)
	if err != nil {
		s.logger.Error("delete service failed", "service_id", id, "error", err)
		return false
	}
	return removed
}
