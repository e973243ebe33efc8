package listing

import (
	"strings"

	"github.com/estatehub/backend/internal/domain/shared"
	"github.com/estatehub/backend/internal/domain/shared/valueobject"
)

// POICategory groups points of interest for walkability scoring
type POICategory string

const (
	POICategoryGrocery    POICategory = "GROCERY"
	POICategoryTransit    POICategory = "TRANSIT"
	POICategorySchool     POICategory = "SCHOOL"
	POICategoryPark       POICategory = "PARK"
	POICategoryPharmacy   POICategory = "PHARMACY"
	POICategoryRestaurant POICategory = "RESTAURANT"
	POICategoryHospital   POICategory = "HOSPITAL"
)

// IsValid reports whether the category has a walkability weight
func (c POICategory) IsValid() bool {
	_, ok := categoryWeights[c]
	return ok
}

// ParsePOICategory converts user input into a POICategory
func ParsePOICategory(s string) (POICategory, error) {
	c := POICategory(strings.ToUpper(strings.TrimSpace(s)))
	if !c.IsValid() {
		return "", shared.NewValidationError("Invalid POI category: " + s)
	}
	return c, nil
}

// PointOfInterest is a global amenity used for walkability
type PointOfInterest struct {
	shared.BaseEntity
	Name      string      `gorm:"type:varchar(200);not null"`
	Category  POICategory `gorm:"type:varchar(20);not null;index"`
	Latitude  float64     `gorm:"type:double precision;not null;index:idx_poi_lat_lng"`
	Longitude float64     `gorm:"type:double precision;not null;index:idx_poi_lat_lng"`
}

// TableName returns the table name for GORM
func (PointOfInterest) TableName() string {
	return "points_of_interest"
}

// NewPointOfInterest validates and creates a POI
func NewPointOfInterest(name string, category POICategory, lat, lng float64) (*PointOfInterest, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewValidationError("POI name cannot be empty")
	}
	if !category.IsValid() {
		return nil, shared.NewValidationError("Invalid POI category")
	}
	if _, err := valueobject.NewGeoPoint(lat, lng); err != nil {
		return nil, shared.NewValidationError(err.Error())
	}
	return &PointOfInterest{
		BaseEntity: shared.NewBaseEntity(),
		Name:       name,
		Category:   category,
		Latitude:   lat,
		Longitude:  lng,
	}, nil
}

// Point returns the POI coordinates
func (p *PointOfInterest) Point() valueobject.GeoPoint {
	return valueobject.MustGeoPoint(p.Latitude, p.Longitude)
}
