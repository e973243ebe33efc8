package listing

import (
	"io"
	"time"

	"github.com/estatehub/backend/internal/domain/listing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PropertyInput holds the listing attributes shared by create and update
type PropertyInput struct {
	Title         string
	Description   string
	DealType      string
	PropertyType  string
	Price         decimal.Decimal
	Currency      string
	Area          float64
	Bedrooms      int
	Floor         *int
	TotalFloors   *int
	City          string
	District      string
	Address       string
	Latitude      *float64
	Longitude     *float64
	Renovation    string
	BuildingClass string
	YearBuilt     *int
	AgentID       *uuid.UUID
}

// UpdatePropertyInput changes listing fields; nil fields stay untouched
type UpdatePropertyInput struct {
	Title        *string
	Description  *string
	DealType     *string
	PropertyType *string
	Price        *decimal.Decimal
	Currency     *string
	Area         *float64
	Bedrooms     *int
	Floor        *int
	TotalFloors  *int
	City         *string
	District     *string
	Address      *string
	Latitude     *float64
	Longitude    *float64
	// ClearCoordinates removes the map position; Latitude/Longitude are ignored when set
	ClearCoordinates bool
	Renovation       *string
	BuildingClass    *string
	YearBuilt        *int
	AgentID          *uuid.UUID
}

// UploadImageInput is an image upload for a listing
type UploadImageInput struct {
	ContentType string
	Size        int64
	Body        io.Reader
}

// ImageResult is the public view of a listing image
type ImageResult struct {
	ID          uuid.UUID
	URL         string
	ContentType string
	Size        int64
	Position    int
}

// PropertyResult is the agency view of a listing
type PropertyResult struct {
	ID            uuid.UUID
	AgencyID      uuid.UUID
	AgentID       *uuid.UUID
	Title         string
	Slug          string
	Description   string
	DealType      listing.DealType
	PropertyType  listing.PropertyType
	Status        listing.Status
	Price         decimal.Decimal
	Currency      string
	PricePerSqm   decimal.Decimal
	Area          float64
	Bedrooms      int
	Floor         *int
	TotalFloors   *int
	City          string
	District      string
	Address       string
	Latitude      *float64
	Longitude     *float64
	Renovation    listing.Renovation
	BuildingClass listing.BuildingClass
	YearBuilt     *int
	PublishedAt   *time.Time
	Views         int64
	Images        []ImageResult
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// PublicPropertyResult is the marketplace view of a listing
type PublicPropertyResult struct {
	ID            uuid.UUID
	AgencyID      uuid.UUID
	Title         string
	Slug          string
	Description   string
	DealType      listing.DealType
	PropertyType  listing.PropertyType
	Price         decimal.Decimal
	Currency      string
	PricePerSqm   decimal.Decimal
	Area          float64
	Bedrooms      int
	Floor         *int
	TotalFloors   *int
	City          string
	District      string
	Address       string
	Latitude      *float64
	Longitude     *float64
	Renovation    listing.Renovation
	BuildingClass listing.BuildingClass
	YearBuilt     *int
	PublishedAt   *time.Time
	Views         int64
	Images        []ImageResult
}

// ValuationInput describes an ad hoc property to value
type ValuationInput struct {
	DealType      string
	PropertyType  string
	City          string
	District      string
	Area          float64
	Bedrooms      int
	Renovation    string
	BuildingClass string
	Latitude      *float64
	Longitude     *float64
	Currency      string
}

// WalkabilityResult wraps the score with the origin it was computed for
type WalkabilityResult struct {
	Latitude  float64
	Longitude float64
	listing.Walkability
}

// CreatePOIInput contains the input for a point of interest
type CreatePOIInput struct {
	Name      string
	Category  string
	Latitude  float64
	Longitude float64
}

// POIResult is the public view of a point of interest
type POIResult struct {
	ID        uuid.UUID
	Name      string
	Category  listing.POICategory
	Latitude  float64
	Longitude float64
	CreatedAt time.Time
}

// ToImageResult converts an image to its public view
func ToImageResult(img *listing.PropertyImage) ImageResult {
	return ImageResult{
		ID:          img.ID,
		URL:         img.URL,
		ContentType: img.ContentType,
		Size:        img.Size,
		Position:    img.Position,
	}
}

func toImageResults(images []listing.PropertyImage) []ImageResult {
	out := make([]ImageResult, 0, len(images))
	for i := range images {
		out = append(out, ToImageResult(&images[i]))
	}
	return out
}

// ToPropertyResult converts a listing to its agency view
func ToPropertyResult(p *listing.Property) PropertyResult {
	return PropertyResult{
		ID:            p.ID,
		AgencyID:      p.AgencyID,
		AgentID:       p.AgentID,
		Title:         p.Title,
		Slug:          p.Slug,
		Description:   p.Description,
		DealType:      p.DealType,
		PropertyType:  p.PropertyType,
		Status:        p.Status,
		Price:         p.Price,
		Currency:      p.Currency,
		PricePerSqm:   p.PricePerSqm(),
		Area:          p.Area,
		Bedrooms:      p.Bedrooms,
		Floor:         p.Floor,
		TotalFloors:   p.TotalFloors,
		City:          p.City,
		District:      p.District,
		Address:       p.Address,
		Latitude:      p.Latitude,
		Longitude:     p.Longitude,
		Renovation:    p.Renovation,
		BuildingClass: p.BuildingClass,
		YearBuilt:     p.YearBuilt,
		PublishedAt:   p.PublishedAt,
		Views:         p.Views,
		Images:        toImageResults(p.Images),
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

// ToPublicPropertyResult converts a listing to its marketplace view
func ToPublicPropertyResult(p *listing.Property) PublicPropertyResult {
	return PublicPropertyResult{
		ID:            p.ID,
		AgencyID:      p.AgencyID,
		Title:         p.Title,
		Slug:          p.Slug,
		Description:   p.Description,
		DealType:      p.DealType,
		PropertyType:  p.PropertyType,
		Price:         p.Price,
		Currency:      p.Currency,
		PricePerSqm:   p.PricePerSqm(),
		Area:          p.Area,
		Bedrooms:      p.Bedrooms,
		Floor:         p.Floor,
		TotalFloors:   p.TotalFloors,
		City:          p.City,
		District:      p.District,
		Address:       p.Address,
		Latitude:      p.Latitude,
		Longitude:     p.Longitude,
		Renovation:    p.Renovation,
		BuildingClass: p.BuildingClass,
		YearBuilt:     p.YearBuilt,
		PublishedAt:   p.PublishedAt,
		Views:         p.Views,
		Images:        toImageResults(p.Images),
	}
}

// ToPOIResult converts a POI to its public view
func ToPOIResult(p *listing.PointOfInterest) POIResult {
	return POIResult{
		ID:        p.ID,
		Name:      p.Name,
		Category:  p.Category,
		Latitude:  p.Latitude,
		Longitude: p.Longitude,
		CreatedAt: p.CreatedAt,
	}
}
