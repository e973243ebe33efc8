package persistence

import (
	"context"

	"github.com/estatehub/backend/internal/domain/listing"
	"github.com/estatehub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormPOIRepository implements listing.POIRepository using GORM
type GormPOIRepository struct {
	db *gorm.DB
}

// NewGormPOIRepository creates a new GormPOIRepository
func NewGormPOIRepository(db *gorm.DB) *GormPOIRepository {
	return &GormPOIRepository{db: db}
}

// FindByID finds a point of interest by ID
func (r *GormPOIRepository) FindByID(ctx context.Context, id uuid.UUID) (*listing.PointOfInterest, error) {
	var poi listing.PointOfInterest
	if err := r.db.WithContext(ctx).First(&poi, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &poi, nil
}

// FindAll lists points of interest
func (r *GormPOIRepository) FindAll(ctx context.Context, filter shared.Filter) ([]listing.PointOfInterest, error) {
	var list []listing.PointOfInterest
	query := r.applyFilter(r.db.WithContext(ctx).Model(&listing.PointOfInterest{}), filter)
	query = paginate(query.Order(orderClause(filter.OrderBy, filter.OrderDir, POISortFields, "name")), filter)
	if err := query.Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// Count counts points of interest matching the filter
func (r *GormPOIRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	if err := r.applyFilter(r.db.WithContext(ctx).Model(&listing.PointOfInterest{}), filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// FindWithinBox returns points inside the bounding box; callers refine by true distance
func (r *GormPOIRepository) FindWithinBox(ctx context.Context, minLat, maxLat, minLng, maxLng float64) ([]listing.PointOfInterest, error) {
	var list []listing.PointOfInterest
	if err := r.db.WithContext(ctx).
		Where("latitude BETWEEN ? AND ?", minLat, maxLat).
		Where("longitude BETWEEN ? AND ?", minLng, maxLng).
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// Save creates or updates a point of interest
func (r *GormPOIRepository) Save(ctx context.Context, poi *listing.PointOfInterest) error {
	return r.db.WithContext(ctx).Save(poi).Error
}

// Delete removes a point of interest
func (r *GormPOIRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return deleted(r.db.WithContext(ctx).Delete(&listing.PointOfInterest{}, "id = ?", id))
}

func (r *GormPOIRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = searchAny(query, filter.Search, "name")
	if category, ok := filter.Filters["category"]; ok {
		query = query.Where("category = ?", category)
	}
	return query
}

var _ listing.POIRepository = (*GormPOIRepository)(nil)
