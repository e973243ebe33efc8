package persistence

import (
	"context"

	"github.com/estatehub/backend/internal/domain/listing"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormImageRepository implements listing.ImageRepository using GORM
type GormImageRepository struct {
	db *gorm.DB
}

// NewGormImageRepository creates a new GormImageRepository
func NewGormImageRepository(db *gorm.DB) *GormImageRepository {
	return &GormImageRepository{db: db}
}

// FindByID finds an image by ID
func (r *GormImageRepository) FindByID(ctx context.Context, id uuid.UUID) (*listing.PropertyImage, error) {
	var img listing.PropertyImage
	if err := r.db.WithContext(ctx).First(&img, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &img, nil
}

// FindByProperty lists a property's images in display order
func (r *GormImageRepository) FindByProperty(ctx context.Context, propertyID uuid.UUID) ([]listing.PropertyImage, error) {
	var images []listing.PropertyImage
	if err := r.db.WithContext(ctx).
		Where("property_id = ?", propertyID).
		Order("position ASC").
		Find(&images).Error; err != nil {
		return nil, err
	}
	return images, nil
}

// NextPosition returns max(position)+1, or 0 for a property with no images
func (r *GormImageRepository) NextPosition(ctx context.Context, propertyID uuid.UUID) (int, error) {
	var next int
	if err := r.db.WithContext(ctx).
		Model(&listing.PropertyImage{}).
		Select("COALESCE(MAX(position) + 1, 0)").
		Where("property_id = ?", propertyID).
		Scan(&next).Error; err != nil {
		return 0, err
	}
	return next, nil
}

// Save creates or updates an image row
func (r *GormImageRepository) Save(ctx context.Context, img *listing.PropertyImage) error {
	return r.db.WithContext(ctx).Save(img).Error
}

// Delete removes an image row
func (r *GormImageRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return deleted(r.db.WithContext(ctx).Delete(&listing.PropertyImage{}, "id = ?", id))
}

var _ listing.ImageRepository = (*GormImageRepository)(nil)
