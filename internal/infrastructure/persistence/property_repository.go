package persistence

import (
	"context"

	"github.com/estatehub/backend/internal/domain/listing"
	"github.com/estatehub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormPropertyRepository implements listing.PropertyRepository using GORM
type GormPropertyRepository struct {
	db *gorm.DB
}

// NewGormPropertyRepository creates a new GormPropertyRepository
func NewGormPropertyRepository(db *gorm.DB) *GormPropertyRepository {
	return &GormPropertyRepository{db: db}
}

func orderedImages(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

// FindByID finds a property by ID with its images in display order
func (r *GormPropertyRepository) FindByID(ctx context.Context, id uuid.UUID) (*listing.Property, error) {
	var p listing.Property
	if err := r.db.WithContext(ctx).Preload("Images", orderedImages).First(&p, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

// FindAllForAgency lists an agency's properties in any status
func (r *GormPropertyRepository) FindAllForAgency(ctx context.Context, agencyID uuid.UUID, filter shared.Filter) ([]listing.Property, error) {
	var list []listing.Property
	query := r.applyFilter(r.db.WithContext(ctx).Model(&listing.Property{}).Where("agency_id = ?", agencyID), filter)
	query = paginate(query.Order(orderClause(filter.OrderBy, filter.OrderDir, PropertySortFields, "created_at")), filter)
	if err := query.Preload("Images", orderedImages).Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// CountForAgency counts an agency's properties matching the filter
func (r *GormPropertyRepository) CountForAgency(ctx context.Context, agencyID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilter(r.db.WithContext(ctx).Model(&listing.Property{}).Where("agency_id = ?", agencyID), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// SearchPublic searches ACTIVE listings across all agencies
func (r *GormPropertyRepository) SearchPublic(ctx context.Context, criteria listing.SearchCriteria, filter shared.Filter) ([]listing.Property, error) {
	var list []listing.Property
	query := r.publicScope(r.db.WithContext(ctx).Model(&listing.Property{}), criteria, filter.Search)
	query = paginate(query.Order(orderClause(filter.OrderBy, filter.OrderDir, MarketplaceSortFields, "published_at")), filter)
	if err := query.Preload("Images", orderedImages).Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// CountPublic counts what SearchPublic would return across all pages
func (r *GormPropertyRepository) CountPublic(ctx context.Context, criteria listing.SearchCriteria, filter shared.Filter) (int64, error) {
	var count int64
	query := r.publicScope(r.db.WithContext(ctx).Model(&listing.Property{}), criteria, filter.Search)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// FindComparables returns valuation candidates, most recently published first
func (r *GormPropertyRepository) FindComparables(ctx context.Context, q listing.ComparableQuery) ([]listing.Property, error) {
	var list []listing.Property
	query := r.db.WithContext(ctx).
		Where("status IN ?", []listing.Status{listing.StatusActive, listing.StatusSold}).
		Where("deal_type = ? AND property_type = ?", q.DealType, q.PropertyType).
		Where("LOWER(city) = LOWER(?)", q.City).
		Where("area > 0 AND price > 0")
	if q.Currency != "" {
		query = query.Where("currency = ?", q.Currency)
	}
	if q.ExcludeID != nil {
		query = query.Where("id <> ?", *q.ExcludeID)
	}
	if q.Limit > 0 {
		query = query.Limit(q.Limit)
	}
	if err := query.Order("updated_at DESC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// IncrementViews bumps the view counter without touching updated_at
func (r *GormPropertyRepository) IncrementViews(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&listing.Property{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + ?", 1)).Error
}

// Save creates or updates a property. Images are saved through the image repository.
func (r *GormPropertyRepository) Save(ctx context.Context, p *listing.Property) error {
	return saved(r.db.WithContext(ctx).Omit("Images").Save(p).Error)
}

// Delete removes a property and its image rows
func (r *GormPropertyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("property_id = ?", id).Delete(&listing.PropertyImage{}).Error; err != nil {
			return err
		}
		return deleted(tx.Delete(&listing.Property{}, "id = ?", id))
	})
}

func (r *GormPropertyRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = searchAny(query, filter.Search, "title", "address", "district")
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "agent_id":
			query = query.Where("agent_id = ?", value)
		case "deal_type":
			query = query.Where("deal_type = ?", value)
		case "property_type":
			query = query.Where("property_type = ?", value)
		case "city":
			query = query.Where("LOWER(city) = LOWER(?)", value)
		}
	}
	return query
}

func (r *GormPropertyRepository) publicScope(query *gorm.DB, c listing.SearchCriteria, search string) *gorm.DB {
	query = query.Where("status = ?", listing.StatusActive)
	query = searchAny(query, search, "title", "address")
	if c.City != "" {
		query = query.Where("LOWER(city) = LOWER(?)", c.City)
	}
	if c.District != "" {
		query = query.Where("LOWER(district) = LOWER(?)", c.District)
	}
	if c.DealType != "" {
		query = query.Where("deal_type = ?", c.DealType)
	}
	if c.PropertyType != "" {
		query = query.Where("property_type = ?", c.PropertyType)
	}
	if c.MinPrice != nil {
		query = query.Where("price >= ?", *c.MinPrice)
	}
	if c.MaxPrice != nil {
		query = query.Where("price <= ?", *c.MaxPrice)
	}
	if c.MinArea != nil {
		query = query.Where("area >= ?", *c.MinArea)
	}
	if c.MaxArea != nil {
		query = query.Where("area <= ?", *c.MaxArea)
	}
	if c.MinBedrooms != nil {
		query = query.Where("bedrooms >= ?", *c.MinBedrooms)
	}
	if c.Renovation != "" {
		query = query.Where("renovation = ?", c.Renovation)
	}
	if c.BuildingClass != "" {
		query = query.Where("building_class = ?", c.BuildingClass)
	}
	return query
}

var _ listing.PropertyRepository = (*GormPropertyRepository)(nil)
