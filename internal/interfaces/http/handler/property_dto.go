package handler

import (
	"time"

	listingapp "github.com/estatehub/backend/internal/application/listing"
	"github.com/estatehub/backend/internal/domain/listing"
	"github.com/estatehub/backend/internal/domain/shared"
	"github.com/estatehub/backend/internal/interfaces/http/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreatePropertyRequest represents the request body for creating a listing
type CreatePropertyRequest struct {
	Title         string          `json:"title" binding:"required,min=3,max=200"`
	Description   string          `json:"description" binding:"omitempty,max=10000"`
	DealType      string          `json:"deal_type" binding:"required"`
	PropertyType  string          `json:"property_type" binding:"required"`
	Price         decimal.Decimal `json:"price" binding:"gte=0"`
	Currency      string          `json:"currency" binding:"omitempty,len=3"`
	Area          float64         `json:"area" binding:"gte=0"`
	Bedrooms      int             `json:"bedrooms" binding:"gte=0,lte=100"`
	Floor         *int            `json:"floor"`
	TotalFloors   *int            `json:"total_floors" binding:"omitempty,gte=1"`
	City          string          `json:"city" binding:"required,max=100"`
	District      string          `json:"district" binding:"omitempty,max=100"`
	Address       string          `json:"address" binding:"omitempty,max=500"`
	Latitude      *float64        `json:"latitude" binding:"omitempty,latitude"`
	Longitude     *float64        `json:"longitude" binding:"omitempty,longitude"`
	Renovation    string          `json:"renovation"`
	BuildingClass string          `json:"building_class"`
	YearBuilt     *int            `json:"year_built" binding:"omitempty,gte=1800,lte=2100"`
	AgentID       *uuid.UUID      `json:"agent_id"`
}

// UpdatePropertyRequest represents the request body for updating a listing
type UpdatePropertyRequest struct {
	Title            *string          `json:"title" binding:"omitempty,min=3,max=200"`
	Description      *string          `json:"description" binding:"omitempty,max=10000"`
	DealType         *string          `json:"deal_type"`
	PropertyType     *string          `json:"property_type"`
	Price            *decimal.Decimal `json:"price" binding:"omitempty,gte=0"`
	Currency         *string          `json:"currency" binding:"omitempty,len=3"`
	Area             *float64         `json:"area" binding:"omitempty,gte=0"`
	Bedrooms         *int             `json:"bedrooms" binding:"omitempty,gte=0,lte=100"`
	Floor            *int             `json:"floor"`
	TotalFloors      *int             `json:"total_floors" binding:"omitempty,gte=1"`
	City             *string          `json:"city" binding:"omitempty,min=1,max=100"`
	District         *string          `json:"district" binding:"omitempty,max=100"`
	Address          *string          `json:"address" binding:"omitempty,max=500"`
	Latitude         *float64         `json:"latitude" binding:"omitempty,latitude"`
	Longitude        *float64         `json:"longitude" binding:"omitempty,longitude"`
	ClearCoordinates bool             `json:"clear_coordinates"`
	Renovation       *string          `json:"renovation"`
	BuildingClass    *string          `json:"building_class"`
	YearBuilt        *int             `json:"year_built" binding:"omitempty,gte=1800,lte=2100"`
	AgentID          *uuid.UUID       `json:"agent_id"`
}

// ListPropertiesRequest filters the agency's listings
type ListPropertiesRequest struct {
	dto.ListRequest
	Status       string `form:"status"`
	AgentID      string `form:"agent_id" binding:"omitempty,uuid"`
	DealType     string `form:"deal_type"`
	PropertyType string `form:"property_type"`
	City         string `form:"city"`
}

// SearchPropertiesRequest holds the marketplace search parameters
type SearchPropertiesRequest struct {
	dto.ListRequest
	City          string   `form:"city"`
	District      string   `form:"district"`
	DealType      string   `form:"deal_type"`
	PropertyType  string   `form:"property_type"`
	MinPrice      string   `form:"min_price"`
	MaxPrice      string   `form:"max_price"`
	MinArea       *float64 `form:"min_area" binding:"omitempty,gte=0"`
	MaxArea       *float64 `form:"max_area" binding:"omitempty,gte=0"`
	MinBedrooms   *int     `form:"min_bedrooms" binding:"omitempty,gte=0"`
	Renovation    string   `form:"renovation"`
	BuildingClass string   `form:"building_class"`
}

// ValuationRequest describes an ad hoc property to value
type ValuationRequest struct {
	DealType      string   `json:"deal_type" binding:"required"`
	PropertyType  string   `json:"property_type" binding:"required"`
	City          string   `json:"city" binding:"required,max=100"`
	District      string   `json:"district" binding:"omitempty,max=100"`
	Area          float64  `json:"area" binding:"gt=0"`
	Bedrooms      int      `json:"bedrooms" binding:"gte=0,lte=100"`
	Renovation    string   `json:"renovation"`
	BuildingClass string   `json:"building_class"`
	Latitude      *float64 `json:"latitude" binding:"omitempty,latitude"`
	Longitude     *float64 `json:"longitude" binding:"omitempty,longitude"`
	Currency      string   `json:"currency" binding:"omitempty,len=3"`
}

// WalkabilityRequest holds the coordinate to score
type WalkabilityRequest struct {
	Lat *float64 `form:"lat" binding:"required,latitude"`
	Lng *float64 `form:"lng" binding:"required,longitude"`
}

// CreatePOIRequest represents the request body for a point of interest
type CreatePOIRequest struct {
	Name      string   `json:"name" binding:"required,min=1,max=200"`
	Category  string   `json:"category" binding:"required"`
	Latitude  *float64 `json:"latitude" binding:"required,latitude"`
	Longitude *float64 `json:"longitude" binding:"required,longitude"`
}

// ListPOIsRequest filters points of interest
type ListPOIsRequest struct {
	dto.ListRequest
	Category string `form:"category"`
}

// ImageResponse is the API view of a listing image
type ImageResponse struct {
	ID          uuid.UUID `json:"id"`
	URL         string    `json:"url"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	Position    int       `json:"position"`
}

// PropertyResponse is the agency view of a listing
type PropertyResponse struct {
	ID            uuid.UUID       `json:"id"`
	AgencyID      uuid.UUID       `json:"agency_id"`
	AgentID       *uuid.UUID      `json:"agent_id"`
	Title         string          `json:"title"`
	Slug          string          `json:"slug"`
	Description   string          `json:"description,omitempty"`
	DealType      string          `json:"deal_type"`
	PropertyType  string          `json:"property_type"`
	Status        string          `json:"status"`
	Price         decimal.Decimal `json:"price"`
	Currency      string          `json:"currency"`
	PricePerSqm   decimal.Decimal `json:"price_per_sqm"`
	Area          float64         `json:"area"`
	Bedrooms      int             `json:"bedrooms"`
	Floor         *int            `json:"floor,omitempty"`
	TotalFloors   *int            `json:"total_floors,omitempty"`
	City          string          `json:"city"`
	District      string          `json:"district,omitempty"`
	Address       string          `json:"address,omitempty"`
	Latitude      *float64        `json:"latitude"`
	Longitude     *float64        `json:"longitude"`
	Renovation    string          `json:"renovation,omitempty"`
	BuildingClass string          `json:"building_class,omitempty"`
	YearBuilt     *int            `json:"year_built,omitempty"`
	PublishedAt   *time.Time      `json:"published_at,omitempty"`
	Views         int64           `json:"views"`
	Images        []ImageResponse `json:"images"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// PublicPropertyResponse is the marketplace view of a listing
type PublicPropertyResponse struct {
	ID            uuid.UUID       `json:"id"`
	AgencyID      uuid.UUID       `json:"agency_id"`
	Title         string          `json:"title"`
	Slug          string          `json:"slug"`
	Description   string          `json:"description,omitempty"`
	DealType      string          `json:"deal_type"`
	PropertyType  string          `json:"property_type"`
	Price         decimal.Decimal `json:"price"`
	Currency      string          `json:"currency"`
	PricePerSqm   decimal.Decimal `json:"price_per_sqm"`
	Area          float64         `json:"area"`
	Bedrooms      int             `json:"bedrooms"`
	Floor         *int            `json:"floor,omitempty"`
	TotalFloors   *int            `json:"total_floors,omitempty"`
	City          string          `json:"city"`
	District      string          `json:"district,omitempty"`
	Address       string          `json:"address,omitempty"`
	Latitude      *float64        `json:"latitude"`
	Longitude     *float64        `json:"longitude"`
	Renovation    string          `json:"renovation,omitempty"`
	BuildingClass string          `json:"building_class,omitempty"`
	YearBuilt     *int            `json:"year_built,omitempty"`
	PublishedAt   *time.Time      `json:"published_at,omitempty"`
	Views         int64           `json:"views"`
	Images        []ImageResponse `json:"images"`
}

// ComparableResponse is one comparable used by a valuation
type ComparableResponse struct {
	PropertyID     uuid.UUID       `json:"property_id"`
	Title          string          `json:"title"`
	District       string          `json:"district,omitempty"`
	Price          decimal.Decimal `json:"price"`
	Area           float64         `json:"area"`
	Bedrooms       int             `json:"bedrooms"`
	PricePerSqm    decimal.Decimal `json:"price_per_sqm"`
	Similarity     float64         `json:"similarity"`
	DistanceMeters *float64        `json:"distance_meters,omitempty"`
}

// ValuationResponse is a price estimate with its confidence band
type ValuationResponse struct {
	Estimate        decimal.Decimal      `json:"estimate"`
	Low             decimal.Decimal      `json:"low"`
	High            decimal.Decimal      `json:"high"`
	PricePerSqm     decimal.Decimal      `json:"price_per_sqm"`
	Currency        string               `json:"currency"`
	Confidence      float64              `json:"confidence"`
	ConfidenceLevel string               `json:"confidence_level"`
	ComparableCount int                  `json:"comparable_count"`
	Comparables     []ComparableResponse `json:"comparables"`
}

// NearestPOIResponse is the closest point of interest in a category
type NearestPOIResponse struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	DistanceMeters float64   `json:"distance_meters"`
}

// CategoryScoreResponse is one category's contribution to the score
type CategoryScoreResponse struct {
	Category string              `json:"category"`
	Weight   float64             `json:"weight"`
	Decay    float64             `json:"decay"`
	Nearest  *NearestPOIResponse `json:"nearest"`
}

// WalkabilityResponse is the neighbourhood score around a point
type WalkabilityResponse struct {
	Latitude   float64                 `json:"latitude"`
	Longitude  float64                 `json:"longitude"`
	Score      int                     `json:"score"`
	Label      string                  `json:"label"`
	Categories []CategoryScoreResponse `json:"categories"`
}

// POIResponse is the API view of a point of interest
type POIResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	CreatedAt time.Time `json:"created_at"`
}

func (r *CreatePropertyRequest) toInput() listingapp.PropertyInput {
	return listingapp.PropertyInput{
		Title:         r.Title,
		Description:   r.Description,
		DealType:      r.DealType,
		PropertyType:  r.PropertyType,
		Price:         r.Price,
		Currency:      r.Currency,
		Area:          r.Area,
		Bedrooms:      r.Bedrooms,
		Floor:         r.Floor,
		TotalFloors:   r.TotalFloors,
		City:          r.City,
		District:      r.District,
		Address:       r.Address,
		Latitude:      r.Latitude,
		Longitude:     r.Longitude,
		Renovation:    r.Renovation,
		BuildingClass: r.BuildingClass,
		YearBuilt:     r.YearBuilt,
		AgentID:       r.AgentID,
	}
}

func (r *UpdatePropertyRequest) toInput() listingapp.UpdatePropertyInput {
	return listingapp.UpdatePropertyInput{
		Title:            r.Title,
		Description:      r.Description,
		DealType:         r.DealType,
		PropertyType:     r.PropertyType,
		Price:            r.Price,
		Currency:         r.Currency,
		Area:             r.Area,
		Bedrooms:         r.Bedrooms,
		Floor:            r.Floor,
		TotalFloors:      r.TotalFloors,
		City:             r.City,
		District:         r.District,
		Address:          r.Address,
		Latitude:         r.Latitude,
		Longitude:        r.Longitude,
		ClearCoordinates: r.ClearCoordinates,
		Renovation:       r.Renovation,
		BuildingClass:    r.BuildingClass,
		YearBuilt:        r.YearBuilt,
		AgentID:          r.AgentID,
	}
}

func (r *ListPropertiesRequest) filter() (shared.Filter, error) {
	f := r.ToFilter()
	if r.Status != "" {
		f = f.With("status", upper(r.Status))
	}
	if r.DealType != "" {
		f = f.With("deal_type", upper(r.DealType))
	}
	if r.PropertyType != "" {
		f = f.With("property_type", upper(r.PropertyType))
	}
	if r.City != "" {
		f = f.With("city", r.City)
	}
	id, err := parseOptionalUUID(r.AgentID)
	if err != nil {
		return f, err
	}
	if id != nil {
		f = f.With("agent_id", *id)
	}
	return f, nil
}

func (r *SearchPropertiesRequest) criteria() (listing.SearchCriteria, error) {
	minPrice, err := parseOptionalDecimal(r.MinPrice)
	if err != nil {
		return listing.SearchCriteria{}, err
	}
	maxPrice, err := parseOptionalDecimal(r.MaxPrice)
	if err != nil {
		return listing.SearchCriteria{}, err
	}
	return listing.SearchCriteria{
		City:          r.City,
		District:      r.District,
		DealType:      listing.DealType(upper(r.DealType)),
		PropertyType:  listing.PropertyType(upper(r.PropertyType)),
		MinPrice:      minPrice,
		MaxPrice:      maxPrice,
		MinArea:       r.MinArea,
		MaxArea:       r.MaxArea,
		MinBedrooms:   r.MinBedrooms,
		Renovation:    listing.Renovation(upper(r.Renovation)),
		BuildingClass: listing.BuildingClass(upper(r.BuildingClass)),
	}, nil
}

func toImageResponse(img *listingapp.ImageResult) ImageResponse {
	return ImageResponse{
		ID:          img.ID,
		URL:         img.URL,
		ContentType: img.ContentType,
		Size:        img.Size,
		Position:    img.Position,
	}
}

func toPropertyResponse(p *listingapp.PropertyResult) PropertyResponse {
	return PropertyResponse{
		ID:            p.ID,
		AgencyID:      p.AgencyID,
		AgentID:       p.AgentID,
		Title:         p.Title,
		Slug:          p.Slug,
		Description:   p.Description,
		DealType:      string(p.DealType),
		PropertyType:  string(p.PropertyType),
		Status:        string(p.Status),
		Price:         p.Price,
		Currency:      p.Currency,
		PricePerSqm:   p.PricePerSqm,
		Area:          p.Area,
		Bedrooms:      p.Bedrooms,
		Floor:         p.Floor,
		TotalFloors:   p.TotalFloors,
		City:          p.City,
		District:      p.District,
		Address:       p.Address,
		Latitude:      p.Latitude,
		Longitude:     p.Longitude,
		Renovation:    string(p.Renovation),
		BuildingClass: string(p.BuildingClass),
		YearBuilt:     p.YearBuilt,
		PublishedAt:   p.PublishedAt,
		Views:         p.Views,
		Images:        mapItems(p.Images, toImageResponse),
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

func toPublicPropertyResponse(p *listingapp.PublicPropertyResult) PublicPropertyResponse {
	return PublicPropertyResponse{
		ID:            p.ID,
		AgencyID:      p.AgencyID,
		Title:         p.Title,
		Slug:          p.Slug,
		Description:   p.Description,
		DealType:      string(p.DealType),
		PropertyType:  string(p.PropertyType),
		Price:         p.Price,
		Currency:      p.Currency,
		PricePerSqm:   p.PricePerSqm,
		Area:          p.Area,
		Bedrooms:      p.Bedrooms,
		Floor:         p.Floor,
		TotalFloors:   p.TotalFloors,
		City:          p.City,
		District:      p.District,
		Address:       p.Address,
		Latitude:      p.Latitude,
		Longitude:     p.Longitude,
		Renovation:    string(p.Renovation),
		BuildingClass: string(p.BuildingClass),
		YearBuilt:     p.YearBuilt,
		PublishedAt:   p.PublishedAt,
		Views:         p.Views,
		Images:        mapItems(p.Images, toImageResponse),
	}
}

func toValuationResponse(v *listing.Valuation) ValuationResponse {
	comparables := make([]ComparableResponse, 0, len(v.Comparables))
	for _, c := range v.Comparables {
		comparables = append(comparables, ComparableResponse{
			PropertyID:     c.PropertyID,
			Title:          c.Title,
			District:       c.District,
			Price:          c.Price,
			Area:           c.Area,
			Bedrooms:       c.Bedrooms,
			PricePerSqm:    c.PricePerSqm,
			Similarity:     c.Similarity,
			DistanceMeters: c.DistanceMeters,
		})
	}
	return ValuationResponse{
		Estimate:        v.Estimate,
		Low:             v.Low,
		High:            v.High,
		PricePerSqm:     v.PricePerSqm,
		Currency:        v.Currency,
		Confidence:      v.Confidence,
		ConfidenceLevel: string(v.ConfidenceLevel),
		ComparableCount: v.ComparableCount,
		Comparables:     comparables,
	}
}

func toWalkabilityResponse(w *listingapp.WalkabilityResult) WalkabilityResponse {
	categories := make([]CategoryScoreResponse, 0, len(w.Categories))
	for _, cs := range w.Categories {
		item := CategoryScoreResponse{
			Category: string(cs.Category),
			Weight:   cs.Weight,
			Decay:    cs.Decay,
		}
		if cs.Nearest != nil {
			item.Nearest = &NearestPOIResponse{
				ID:             cs.Nearest.ID,
				Name:           cs.Nearest.Name,
				DistanceMeters: cs.Nearest.DistanceMeters,
			}
		}
		categories = append(categories, item)
	}
	return WalkabilityResponse{
		Latitude:   w.Latitude,
		Longitude:  w.Longitude,
		Score:      w.Score,
		Label:      w.Label,
		Categories: categories,
	}
}

func toPOIResponse(p *listingapp.POIResult) POIResponse {
	return POIResponse{
		ID:        p.ID,
		Name:      p.Name,
		Category:  string(p.Category),
		Latitude:  p.Latitude,
		Longitude: p.Longitude,
		CreatedAt: p.CreatedAt,
	}
}
