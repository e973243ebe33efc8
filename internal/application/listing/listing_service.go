// Package listing manages agency listings, their images, the public
// marketplace with valuation and walkability, and points of interest.
package listing

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/estatehub/backend/internal/domain/agency"
	"github.com/estatehub/backend/internal/domain/listing"
	"github.com/estatehub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultMaxImageSize is used when no upload limit is configured
const DefaultMaxImageSize int64 = 10 << 20

// ImageStorage stores listing images in object storage
type ImageStorage interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	Delete(ctx context.Context, key string) error
	URL(ctx context.Context, key string) (string, error)
}

// ListingService handles agency listings and their images
type ListingService struct {
	propertyRepo listing.PropertyRepository
	imageRepo    listing.ImageRepository
	memberRepo   agency.MemberRepository
	storage      ImageStorage
	maxImageSize int64
	logger       *zap.Logger
}

// NewListingService creates a new listing service
func NewListingService(
	propertyRepo listing.PropertyRepository,
	imageRepo listing.ImageRepository,
	memberRepo agency.MemberRepository,
	storage ImageStorage,
	maxImageSize int64,
	logger *zap.Logger,
) *ListingService {
	if maxImageSize <= 0 {
		maxImageSize = DefaultMaxImageSize
	}
	return &ListingService{
		propertyRepo: propertyRepo,
		imageRepo:    imageRepo,
		memberRepo:   memberRepo,
		storage:      storage,
		maxImageSize: maxImageSize,
		logger:       logger,
	}
}

// Create creates a DRAFT listing. Agents own the listings they create.
func (s *ListingService) Create(ctx context.Context, actor agency.Actor, input PropertyInput) (*PropertyResult, error) {
	if err := actor.RequireAgency(); err != nil {
		return nil, err
	}
	dealType, propertyType, err := parseKind(input.DealType, input.PropertyType)
	if err != nil {
		return nil, err
	}
	p, err := listing.NewProperty(actor.AgencyID, input.Title, dealType, propertyType, input.City)
	if err != nil {
		return nil, err
	}
	p.SetDescription(input.Description)
	if err := p.SetPrice(input.Price, input.Currency); err != nil {
		return nil, err
	}
	if err := p.SetDimensions(input.Area, input.Bedrooms, input.Floor, input.TotalFloors); err != nil {
		return nil, err
	}
	if err := p.SetLocation(input.City, input.District, input.Address); err != nil {
		return nil, err
	}
	if err := p.SetCoordinates(input.Latitude, input.Longitude); err != nil {
		return nil, err
	}
	if err := p.SetCharacteristics(parseRenovation(input.Renovation), parseBuildingClass(input.BuildingClass), input.YearBuilt); err != nil {
		return nil, err
	}

	agentID := actor.MemberID
	if input.AgentID != nil && *input.AgentID != actor.MemberID {
		if err := s.checkAgent(ctx, actor, *input.AgentID); err != nil {
			return nil, err
		}
		agentID = *input.AgentID
	}
	p.AssignAgent(&agentID)

	if err := s.propertyRepo.Save(ctx, p); err != nil {
		s.logger.Error("Failed to create listing", zap.Error(err))
		return nil, shared.WrapDomainError("INTERNAL_ERROR", "Failed to create listing", err)
	}
	s.logger.Info("Listing created",
		zap.String("property_id", p.ID.String()),
		zap.String("agency_id", p.AgencyID.String()))

	result := ToPropertyResult(p)
	return &result, nil
}

// Get returns a listing of the caller's agency in any status
func (s *ListingService) Get(ctx context.Context, actor agency.Actor, id uuid.UUID) (*PropertyResult, error) {
	p, err := s.find(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	result := ToPropertyResult(p)
	return &result, nil
}

// Update changes listing fields
func (s *ListingService) Update(ctx context.Context, actor agency.Actor, id uuid.UUID, input UpdatePropertyInput) (*PropertyResult, error) {
	p, err := s.findModifiable(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		if err := p.SetTitle(*input.Title); err != nil {
			return nil, err
		}
	}
	if input.Description != nil {
		p.SetDescription(*input.Description)
	}
	if input.DealType != nil || input.PropertyType != nil {
		dt, pt := string(p.DealType), string(p.PropertyType)
		if input.DealType != nil {
			dt = *input.DealType
		}
		if input.PropertyType != nil {
			pt = *input.PropertyType
		}
		dealType, propertyType, err := parseKind(dt, pt)
		if err != nil {
			return nil, err
		}
		if err := p.SetKind(dealType, propertyType); err != nil {
			return nil, err
		}
	}
	if input.Price != nil || input.Currency != nil {
		price, currency := p.Price, p.Currency
		if input.Price != nil {
			price = *input.Price
		}
		if input.Currency != nil {
			currency = *input.Currency
		}
		if err := p.SetPrice(price, currency); err != nil {
			return nil, err
		}
	}
	if input.Area != nil || input.Bedrooms != nil || input.Floor != nil || input.TotalFloors != nil {
		area, bedrooms, floor, total := p.Area, p.Bedrooms, p.Floor, p.TotalFloors
		if input.Area != nil {
			area = *input.Area
		}
		if input.Bedrooms != nil {
			bedrooms = *input.Bedrooms
		}
		if input.Floor != nil {
			floor = input.Floor
		}
		if input.TotalFloors != nil {
			total = input.TotalFloors
		}
		if err := p.SetDimensions(area, bedrooms, floor, total); err != nil {
			return nil, err
		}
	}
	if input.City != nil || input.District != nil || input.Address != nil {
		city, district, address := p.City, p.District, p.Address
		if input.City != nil {
			city = *input.City
		}
		if input.District != nil {
			district = *input.District
		}
		if input.Address != nil {
			address = *input.Address
		}
		if err := p.SetLocation(city, district, address); err != nil {
			return nil, err
		}
	}
	switch {
	case input.ClearCoordinates:
		if p.IsPublic() {
			return nil, shared.NewValidationError("A published listing needs coordinates")
		}
		if err := p.SetCoordinates(nil, nil); err != nil {
			return nil, err
		}
	case input.Latitude != nil || input.Longitude != nil:
		if err := p.SetCoordinates(input.Latitude, input.Longitude); err != nil {
			return nil, err
		}
	}
	if input.Renovation != nil || input.BuildingClass != nil || input.YearBuilt != nil {
		renovation, class, year := p.Renovation, p.BuildingClass, p.YearBuilt
		if input.Renovation != nil {
			renovation = parseRenovation(*input.Renovation)
		}
		if input.BuildingClass != nil {
			class = parseBuildingClass(*input.BuildingClass)
		}
		if input.YearBuilt != nil {
			year = input.YearBuilt
		}
		if err := p.SetCharacteristics(renovation, class, year); err != nil {
			return nil, err
		}
	}
	if input.AgentID != nil && (p.AgentID == nil || *p.AgentID != *input.AgentID) {
		if !actor.IsManager() {
			return nil, shared.NewForbiddenError("Only managers can reassign listings")
		}
		if err := s.checkAgent(ctx, actor, *input.AgentID); err != nil {
			return nil, err
		}
		p.AssignAgent(input.AgentID)
	}
	if p.IsPublic() && (!p.Price.IsPositive() || p.Area <= 0) {
		return nil, shared.NewValidationError("A published listing needs a positive price and area")
	}

	if err := s.propertyRepo.Save(ctx, p); err != nil {
		return nil, shared.WrapDomainError("INTERNAL_ERROR", "Failed to update listing", err)
	}
	result := ToPropertyResult(p)
	return &result, nil
}

// Delete removes a listing and its stored images
func (s *ListingService) Delete(ctx context.Context, actor agency.Actor, id uuid.UUID) error {
	p, err := s.findModifiable(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := s.propertyRepo.Delete(ctx, p.ID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewNotFoundError("Property")
		}
		return shared.WrapDomainError("INTERNAL_ERROR", "Failed to delete listing", err)
	}
	for i := range p.Images {
		s.deleteObject(ctx, p.Images[i].ObjectKey)
	}
	s.logger.Info("Listing deleted", zap.String("property_id", p.ID.String()))
	return nil
}

// List lists the agency's listings. Filter keys: status, agent_id, deal_type, property_type, city.
func (s *ListingService) List(ctx context.Context, actor agency.Actor, filter shared.Filter) (*shared.Paginated[PropertyResult], error) {
	if err := actor.RequireAgency(); err != nil {
		return nil, err
	}
	list, err := s.propertyRepo.FindAllForAgency(ctx, actor.AgencyID, filter)
	if err != nil {
		return nil, shared.WrapDomainError("INTERNAL_ERROR", "Failed to list listings", err)
	}
	total, err := s.propertyRepo.CountForAgency(ctx, actor.AgencyID, filter)
	if err != nil {
		return nil, shared.WrapDomainError("INTERNAL_ERROR", "Failed to count listings", err)
	}
	items := make([]PropertyResult, 0, len(list))
	for i := range list {
		items = append(items, ToPropertyResult(&list[i]))
	}
	page := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &page, nil
}

// Publish makes the listing visible on the marketplace
func (s *ListingService) Publish(ctx context.Context, actor agency.Actor, id uuid.UUID) (*PropertyResult, error) {
	return s.transition(ctx, actor, id, (*listing.Property).Publish)
}

// Archive hides the listing
func (s *ListingService) Archive(ctx context.Context, actor agency.Actor, id uuid.UUID) (*PropertyResult, error) {
	return s.transition(ctx, actor, id, (*listing.Property).Archive)
}

// MarkReserved moves an ACTIVE listing to RESERVED
func (s *ListingService) MarkReserved(ctx context.Context, actor agency.Actor, id uuid.UUID) (*PropertyResult, error) {
	return s.transition(ctx, actor, id, (*listing.Property).Reserve)
}

// MarkSold closes the listing
func (s *ListingService) MarkSold(ctx context.Context, actor agency.Actor, id uuid.UUID) (*PropertyResult, error) {
	return s.transition(ctx, actor, id, (*listing.Property).MarkSold)
}

// UploadImage stores an image under properties/{agency}/{property}/{uuid}{ext}
// and appends it to the listing gallery
func (s *ListingService) UploadImage(ctx context.Context, actor agency.Actor, propertyID uuid.UUID, input UploadImageInput) (*ImageResult, error) {
	p, err := s.findModifiable(ctx, actor, propertyID)
	if err != nil {
		return nil, err
	}
	ext, err := listing.ImageExtension(input.ContentType)
	if err != nil {
		return nil, err
	}
	if input.Size <= 0 {
		return nil, shared.NewValidationError("Image is empty")
	}
	if input.Size > s.maxImageSize {
		return nil, shared.NewValidationError("Image exceeds the maximum upload size")
	}

	imageID := uuid.New()
	key := listing.ImageObjectKey(p.AgencyID, p.ID, imageID, ext)
	var contentType string
	for ct, e := range listing.AllowedImageTypes {
		if e == ext {
			contentType = ct
			break
		}
	}

	if err := s.storage.Put(ctx, key, io.LimitReader(input.Body, s.maxImageSize+1), input.Size, contentType); err != nil {
		s.logger.Error("Failed to store image", zap.String("key", key), zap.Error(err))
		return nil, shared.WrapDomainError("STORAGE_ERROR", "Failed to store image", err)
	}
	url, err := s.storage.URL(ctx, key)
	if err != nil {
		s.deleteObject(ctx, key)
		return nil, shared.WrapDomainError("STORAGE_ERROR", "Failed to resolve image URL", err)
	}
	position, err := s.imageRepo.NextPosition(ctx, p.ID)
	if err != nil {
		s.deleteObject(ctx, key)
		return nil, shared.WrapDomainError("INTERNAL_ERROR", "Failed to order image", err)
	}

	img := listing.NewPropertyImage(imageID, p.ID, key, url, contentType, input.Size, position)
	if err := s.imageRepo.Save(ctx, img); err != nil {
		s.deleteObject(ctx, key)
		return nil, shared.WrapDomainError("INTERNAL_ERROR", "Failed to save image", err)
	}

	s.logger.Info("Listing image uploaded",
		zap.String("property_id", p.ID.String()),
		zap.String("key", key),
		zap.Int64("size", input.Size))

	result := ToImageResult(img)
	return &result, nil
}

// DeleteImage removes an image from the gallery and object storage
func (s *ListingService) DeleteImage(ctx context.Context, actor agency.Actor, propertyID, imageID uuid.UUID) error {
	p, err := s.findModifiable(ctx, actor, propertyID)
	if err != nil {
		return err
	}
	img, err := s.imageRepo.FindByID(ctx, imageID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewNotFoundError("Image")
		}
		return shared.WrapDomainError("INTERNAL_ERROR", "Failed to load image", err)
	}
	if img.PropertyID != p.ID {
		return shared.NewNotFoundError("Image")
	}
	if err := s.imageRepo.Delete(ctx, img.ID); err != nil {
		return shared.WrapDomainError("INTERNAL_ERROR", "Failed to delete image", err)
	}
	s.deleteObject(ctx, img.ObjectKey)
	return nil
}

func (s *ListingService) transition(ctx context.Context, actor agency.Actor, id uuid.UUID, apply func(*listing.Property) error) (*PropertyResult, error) {
	p, err := s.findModifiable(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	previous := p.Status
	if err := apply(p); err != nil {
		return nil, err
	}
	if err := s.propertyRepo.Save(ctx, p); err != nil {
		return nil, shared.WrapDomainError("INTERNAL_ERROR", "Failed to update listing", err)
	}
	s.logger.Info("Listing status changed",
		zap.String("property_id", p.ID.String()),
		zap.String("from", string(previous)),
		zap.String("to", string(p.Status)))
	result := ToPropertyResult(p)
	return &result, nil
}

// deleteObject removes a stored object; failures leave an orphan and are only logged
func (s *ListingService) deleteObject(ctx context.Context, key string) {
	if err := s.storage.Delete(ctx, key); err != nil {
		s.logger.Warn("Failed to delete stored image", zap.String("key", key), zap.Error(err))
	}
}

func (s *ListingService) checkAgent(ctx context.Context, actor agency.Actor, memberID uuid.UUID) error {
	if !actor.IsManager() {
		return shared.NewForbiddenError("Agents can only own their listings")
	}
	m, err := s.memberRepo.FindByID(ctx, memberID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewNotFoundError("Member")
		}
		return shared.WrapDomainError("INTERNAL_ERROR", "Failed to load member", err)
	}
	if m.AgencyID != actor.AgencyID {
		return shared.NewForbiddenError("Member belongs to another agency")
	}
	return nil
}

func (s *ListingService) find(ctx context.Context, actor agency.Actor, id uuid.UUID) (*listing.Property, error) {
	p, err := s.propertyRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewNotFoundError("Property")
		}
		return nil, shared.WrapDomainError("INTERNAL_ERROR", "Failed to load listing", err)
	}
	if err := actor.CanAccess(p.AgencyID); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *ListingService) findModifiable(ctx context.Context, actor agency.Actor, id uuid.UUID) (*listing.Property, error) {
	p, err := s.find(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := actor.CanModify(p.AgencyID, p.AgentID); err != nil {
		return nil, err
	}
	return p, nil
}

func parseKind(dealType, propertyType string) (listing.DealType, listing.PropertyType, error) {
	dt := listing.DealType(strings.ToUpper(strings.TrimSpace(dealType)))
	if !dt.IsValid() {
		return "", "", shared.NewValidationError("Invalid deal type: " + dealType)
	}
	pt := listing.PropertyType(strings.ToUpper(strings.TrimSpace(propertyType)))
	if !pt.IsValid() {
		return "", "", shared.NewValidationError("Invalid property type: " + propertyType)
	}
	return dt, pt, nil
}

func parseRenovation(s string) listing.Renovation {
	return listing.Renovation(strings.ToUpper(strings.TrimSpace(s)))
}

func parseBuildingClass(s string) listing.BuildingClass {
	return listing.BuildingClass(strings.ToUpper(strings.TrimSpace(s)))
}
