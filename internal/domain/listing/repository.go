package listing

import (
	"context"

	"github.com/estatehub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SearchCriteria narrows the public marketplace search. Zero values are ignored.
type SearchCriteria struct {
	City          string
	District      string
	DealType      DealType
	PropertyType  PropertyType
	MinPrice      *decimal.Decimal
	MaxPrice      *decimal.Decimal
	MinArea       *float64
	MaxArea       *float64
	MinBedrooms   *int
	Renovation    Renovation
	BuildingClass BuildingClass
}

// ComparableQuery selects valuation candidates
type ComparableQuery struct {
	City         string
	DealType     DealType
	PropertyType PropertyType
	Currency     string
	ExcludeID    *uuid.UUID
	Limit        int
}

// PropertyRepository defines persistence for listings
type PropertyRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Property, error)
	FindAllForAgency(ctx context.Context, agencyID uuid.UUID, filter shared.Filter) ([]Property, error)
	CountForAgency(ctx context.Context, agencyID uuid.UUID, filter shared.Filter) (int64, error)
	// SearchPublic returns ACTIVE listings only
	SearchPublic(ctx context.Context, criteria SearchCriteria, filter shared.Filter) ([]Property, error)
	CountPublic(ctx context.Context, criteria SearchCriteria, filter shared.Filter) (int64, error)
	// FindComparables returns ACTIVE or SOLD listings matching the query
	FindComparables(ctx context.Context, query ComparableQuery) ([]Property, error)
	IncrementViews(ctx context.Context, id uuid.UUID) error
	Save(ctx context.Context, property *Property) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ImageRepository defines persistence for listing images
type ImageRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*PropertyImage, error)
	FindByProperty(ctx context.Context, propertyID uuid.UUID) ([]PropertyImage, error)
	NextPosition(ctx context.Context, propertyID uuid.UUID) (int, error)
	Save(ctx context.Context, image *PropertyImage) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// POIRepository defines persistence for points of interest
type POIRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*PointOfInterest, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]PointOfInterest, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	// FindWithinBox returns POIs inside the latitude/longitude box
	FindWithinBox(ctx context.Context, minLat, maxLat, minLng, maxLng float64) ([]PointOfInterest, error)
	Save(ctx context.Context, poi *PointOfInterest) error
	Delete(ctx context.Context, id uuid.UUID) error
}
