package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/agrolink/agrolink/internal/storage"
)

type EquipmentService struct {
	equipment storage.EquipmentRepository
	logger    *slog.Logger
}

func NewEquipmentService(equipment storage.EquipmentRepository, logger *slog.Logger) *EquipmentService {
	return &EquipmentService{
		equipment: equipment,
		logger:    serviceLogger(logger, "equipment"),
	}
}

// Create stores a new listing and returns its id. Storage failures are logged
// and reported as id 0.
func (s *EquipmentService) Create(ctx context.Context, req CreateEquipmentRequest) (int64, error) {
	if strings.TrimSpace(req.Title) == "" {
		return 0, fmt.Errorf("%w: title is required", ErrValidation)
	}
	if req.OwnerID <= 0 {
		return 0, fmt.Errorf("%w: owner is required", ErrValidation)
	}
	if req.Price < 0 {
		return 0, fmt.Errorf("%w: price must not be negative", ErrValidation)
	}

	ownerID := req.OwnerID
	var images []string
	if req.Images != nil {
		images = append([]string{}, req.Images...)
	}
	item := &storage.Equipment{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		SellerName:  req.SellerName,
		SellerPhone: req.SellerPhone,
		ImageURL:    req.ImageURL,
		Images:      images,
		OwnerID:     &ownerID,
	}
	if err := s.equipment.Create(ctx, item); err != nil {
		s.logger.Error("create equipment failed", "owner_id", ownerID, "error", err)
		return 0, nil
	}
	return item.ID, nil
}

func (s *EquipmentService) List(ctx context.Context) []storage.Equipment {
	items, err := s.equipment.List(ctx)
	if err != nil {
		s.logger.Error("list equipment failed", "error", err)
		return []storage.Equipment{}
	}
	return items
}

func (s *EquipmentService) ListByOwner(ctx context.Context, ownerID int64) []storage.Equipment {
	items, err := s.equipment.ListByOwner(ctx, ownerID)
	if err != nil {
		s.logger.Error("list owner equipment failed", "owner_id", ownerID, "error", err)
		return []storage.Equipment{}
	}
	return items
}

func (s *EquipmentService) Get(ctx context.Context, id int64) *storage.Equipment {
	item, err := s.equipment.Get(ctx, id)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.logger.Error("get equipment failed", "equipment_id", id, "error", err)
		}
		return nil
	}
	return item
}

// Delete removes the listing only when ownerID owns it. A mismatch is not an
// error; it reports false.
func (s *EquipmentService) Delete(ctx context.Context, id, ownerID int64) bool {
	removed, err := s.equipment.Delete(ctx, id, ownerID)
	if err != nil {
		s.logger.Error("delete equipment failed", "equipment_id", id, "owner_id", ownerID, "error", err)
		return false
	}
	if !removed {
		s.logger.Debug("equipment not deleted", "equipment_id", id, "owner_id", ownerID)
	}
	return removed
}
