package listing

import (
	"context"
	"errors"
	"strings"

	"github.com/estatehub/backend/internal/domain/listing"
	"github.com/estatehub/backend/internal/domain/shared"
	"github.com/estatehub/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultComparableLimit caps the candidates loaded for one valuation
const DefaultComparableLimit = 200

// MarketplaceService serves the public marketplace. It never exposes non-ACTIVE listings.
type MarketplaceService struct {
	propertyRepo    listing.PropertyRepository
	poiRepo         listing.POIRepository
	comparableLimit int
	logger          *zap.Logger
}

// NewMarketplaceService creates a new marketplace service
func NewMarketplaceService(
	propertyRepo listing.PropertyRepository,
	poiRepo listing.POIRepository,
	comparableLimit int,
	logger *zap.Logger,
) *MarketplaceService {
	if comparableLimit <= 0 {
		comparableLimit = DefaultComparableLimit
	}
	return &MarketplaceService{
		propertyRepo:    propertyRepo,
		poiRepo:         poiRepo,
		comparableLimit: comparableLimit,
		logger:          logger,
	}
}

// Search returns ACTIVE listings matching the criteria
func (s *MarketplaceService) Search(ctx context.Context, criteria listing.SearchCriteria, filter shared.Filter) (*shared.Paginated[PublicPropertyResult], error) {
	if criteria.MinPrice != nil && criteria.MaxPrice != nil && criteria.MinPrice.GreaterThan(*criteria.MaxPrice) {
		return nil, shared.NewValidationError("min_price cannot exceed max_price")
	}
	if criteria.MinArea != nil && criteria.MaxArea != nil && *criteria.MinArea > *criteria.MaxArea {
		return nil, shared.NewValidationError("min_area cannot exceed max_area")
	}

	list, err := s.propertyRepo.SearchPublic(ctx, criteria, filter)
	if err != nil {
		return nil, shared.WrapDomainError("INTERNAL_ERROR", "Failed to search listings", err)
	}
	total, err := s.propertyRepo.CountPublic(ctx, criteria, filter)
	if err != nil {
		return nil, shared.WrapDomainError("INTERNAL_ERROR", "Failed to count listings", err)
	}
	items := make([]PublicPropertyResult, 0, len(list))
	for i := range list {
		items = append(items, ToPublicPropertyResult(&list[i]))
	}
	page := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &page, nil
}

// GetPublic returns an ACTIVE listing and counts the view
func (s *MarketplaceService) GetPublic(ctx context.Context, id uuid.UUID) (*PublicPropertyResult, error) {
	p, err := s.findPublic(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.propertyRepo.IncrementViews(ctx, p.ID); err != nil {
		s.logger.Warn("Failed to count listing view", zap.String("property_id", p.ID.String()), zap.Error(err))
	} else {
		p.Views++
	}
	result := ToPublicPropertyResult(p)
	return &result, nil
}

// Valuation estimates the price of an ad hoc property from comparables
func (s *MarketplaceService) Valuation(ctx context.Context, input ValuationInput) (*listing.Valuation, error) {
	subject := listing.ValuationSubject{
		DealType:      listing.DealType(strings.ToUpper(strings.TrimSpace(input.DealType))),
		PropertyType:  listing.PropertyType(strings.ToUpper(strings.TrimSpace(input.PropertyType))),
		City:          strings.TrimSpace(input.City),
		District:      strings.TrimSpace(input.District),
		Area:          input.Area,
		Bedrooms:      input.Bedrooms,
		Renovation:    parseRenovation(input.Renovation),
		BuildingClass: parseBuildingClass(input.BuildingClass),
		Currency:      strings.ToUpper(strings.TrimSpace(input.Currency)),
	}
	if subject.Currency == "" {
		subject.Currency = "USD"
	}
	if (input.Latitude == nil) != (input.Longitude == nil) {
		return nil, shared.NewValidationError("Latitude and longitude must be set together")
	}
	if input.Latitude != nil {
		pt, err := valueobject.NewGeoPoint(*input.Latitude, *input.Longitude)
		if err != nil {
			return nil, shared.NewValidationError(err.Error())
		}
		subject.Location = &pt
	}
	return s.estimate(ctx, subject)
}

// ValuationForListing values a public listing against other comparables
func (s *MarketplaceService) ValuationForListing(ctx context.Context, id uuid.UUID) (*listing.Valuation, error) {
	p, err := s.findPublic(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.estimate(ctx, listing.SubjectFromProperty(p))
}

// Walkability scores the neighbourhood around a coordinate
func (s *MarketplaceService) Walkability(ctx context.Context, lat, lng float64) (*WalkabilityResult, error) {
	origin, err := valueobject.NewGeoPoint(lat, lng)
	if err != nil {
		return nil, shared.NewValidationError(err.Error())
	}
	return s.walkability(ctx, origin)
}

// WalkabilityForListing scores the neighbourhood of a public listing
func (s *MarketplaceService) WalkabilityForListing(ctx context.Context, id uuid.UUID) (*WalkabilityResult, error) {
	p, err := s.findPublic(ctx, id)
	if err != nil {
		return nil, err
	}
	origin, ok := p.Location()
	if !ok {
		return nil, shared.NewDomainError("INSUFFICIENT_DATA", "Listing has no coordinates")
	}
	return s.walkability(ctx, origin)
}

func (s *MarketplaceService) estimate(ctx context.Context, subject listing.ValuationSubject) (*listing.Valuation, error) {
	if err := subject.Validate(); err != nil {
		return nil, err
	}
	candidates, err := s.propertyRepo.FindComparables(ctx, listing.ComparableQuery{
		City:         subject.City,
		DealType:     subject.DealType,
		PropertyType: subject.PropertyType,
		Currency:     subject.Currency,
		ExcludeID:    subject.PropertyID,
		Limit:        s.comparableLimit,
	})
	if err != nil {
		return nil, shared.WrapDomainError("INTERNAL_ERROR", "Failed to load comparables", err)
	}
	v, err := listing.Estimate(subject, candidates)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("Valuation computed",
		zap.String("city", subject.City),
		zap.Int("candidates", len(candidates)),
		zap.Int("comparables", v.ComparableCount),
		zap.String("confidence", string(v.ConfidenceLevel)))
	return v, nil
}

func (s *MarketplaceService) walkability(ctx context.Context, origin valueobject.GeoPoint) (*WalkabilityResult, error) {
	minLat, maxLat, minLng, maxLng := origin.BoundingBox(listing.ZeroCreditMeters)
	pois, err := s.poiRepo.FindWithinBox(ctx, minLat, maxLat, minLng, maxLng)
	if err != nil {
		return nil, shared.WrapDomainError("INTERNAL_ERROR", "Failed to load points of interest", err)
	}
	return &WalkabilityResult{
		Latitude:    origin.Lat(),
		Longitude:   origin.Lng(),
		Walkability: listing.ScoreWalkability(origin, pois),
	}, nil
}

func (s *MarketplaceService) findPublic(ctx context.Context, id uuid.UUID) (*listing.Property, error) {
	p, err := s.propertyRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewNotFoundError("Property")
		}
		return nil, shared.WrapDomainError("INTERNAL_ERROR", "Failed to load listing", err)
	}
	if !p.IsPublic() {
		return nil, shared.NewNotFoundError("Property")
	}
	return p, nil
}
