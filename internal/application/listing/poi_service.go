package listing

import (
	"context"
	"errors"

	"github.com/estatehub/backend/internal/domain/agency"
	"github.com/estatehub/backend/internal/domain/listing"
	"github.com/estatehub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// POIService manages the global points of interest used for walkability
type POIService struct {
	repo   listing.POIRepository
	logger *zap.Logger
}

// NewPOIService creates a new POI service
func NewPOIService(repo listing.POIRepository, logger *zap.Logger) *POIService {
	return &POIService{repo: repo, logger: logger}
}

// Create adds a point of interest. Agency managers only.
func (s *POIService) Create(ctx context.Context, actor agency.Actor, input CreatePOIInput) (*POIResult, error) {
	if err := actor.RequireManager(); err != nil {
		return nil, err
	}
	category, err := listing.ParsePOICategory(input.Category)
	if err != nil {
		return nil, err
	}
	poi, err := listing.NewPointOfInterest(input.Name, category, input.Latitude, input.Longitude)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, poi); err != nil {
		s.logger.Error("Failed to create point of interest", zap.Error(err))
		return nil, shared.WrapDomainError("INTERNAL_ERROR", "Failed to create point of interest", err)
	}
	s.logger.Info("Point of interest created",
		zap.String("poi_id", poi.ID.String()),
		zap.String("category", string(poi.Category)))
	result := ToPOIResult(poi)
	return &result, nil
}

// List returns POIs, optionally filtered by category
func (s *POIService) List(ctx context.Context, filter shared.Filter) (*shared.Paginated[POIResult], error) {
	if c, ok := filter.Filters["category"].(string); ok && c != "" {
		category, err := listing.ParsePOICategory(c)
		if err != nil {
			return nil, err
		}
		filter = filter.With("category", string(category))
	}
	list, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return nil, shared.WrapDomainError("INTERNAL_ERROR", "Failed to list points of interest", err)
	}
	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return nil, shared.WrapDomainError("INTERNAL_ERROR", "Failed to count points of interest", err)
	}
	items := make([]POIResult, 0, len(list))
	for i := range list {
		items = append(items, ToPOIResult(&list[i]))
	}
	page := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &page, nil
}

// Delete removes a point of interest. Agency managers only.
func (s *POIService) Delete(ctx context.Context, actor agency.Actor, id uuid.UUID) error {
	if err := actor.RequireManager(); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewNotFoundError("Point of interest")
		}
		return shared.WrapDomainError("INTERNAL_ERROR", "Failed to delete point of interest", err)
	}
	s.logger.Info("Point of interest deleted", zap.String("poi_id", id.String()))
	return nil
}
