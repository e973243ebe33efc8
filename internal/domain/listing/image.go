package listing

import (
	"strings"

	"github.com/estatehub/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// AllowedImageTypes maps accepted content types to object key extensions
var AllowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// PropertyImage is a photo stored in object storage
type PropertyImage struct {
	shared.BaseEntity
	PropertyID  uuid.UUID `gorm:"type:uuid;not null;index"`
	ObjectKey   string    `gorm:"type:varchar(500);not null"`
	URL         string    `gorm:"type:varchar(1000);not null"`
	ContentType string    `gorm:"type:varchar(50);not null"`
	Size        int64     `gorm:"not null"`
	Position    int       `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (PropertyImage) TableName() string {
	return "property_images"
}

// ImageExtension returns the object key extension for an allowed content type
func ImageExtension(contentType string) (string, error) {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	ext, ok := AllowedImageTypes[ct]
	if !ok {
		return "", shared.NewValidationError("Only JPEG, PNG and WebP images are allowed")
	}
	return ext, nil
}

// ImageObjectKey builds properties/{agencyID}/{propertyID}/{imageID}{ext}
func ImageObjectKey(agencyID, propertyID, imageID uuid.UUID, ext string) string {
	return "properties/" + agencyID.String() + "/" + propertyID.String() + "/" + imageID.String() + ext
}

// NewPropertyImage records an uploaded image
func NewPropertyImage(id, propertyID uuid.UUID, objectKey, url, contentType string, size int64, position int) *PropertyImage {
	base := shared.NewBaseEntity()
	base.ID = id
	return &PropertyImage{
		BaseEntity:  base,
		PropertyID:  propertyID,
		ObjectKey:   objectKey,
		URL:         url,
		ContentType: contentType,
		Size:        size,
		Position:    position,
	}
}
