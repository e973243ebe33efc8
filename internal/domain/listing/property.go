package listing

import (
	"strings"
	"time"
	"unicode"

	"github.com/estatehub/backend/internal/domain/shared"
	"github.com/estatehub/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DealType distinguishes sale listings from rentals
type DealType string

const (
	DealTypeSale DealType = "SALE"
	DealTypeRent DealType = "RENT"
)

// IsValid reports whether the deal type is known
func (t DealType) IsValid() bool {
	return t == DealTypeSale || t == DealTypeRent
}

// PropertyType is the kind of real estate
type PropertyType string

const (
	PropertyTypeApartment  PropertyType = "APARTMENT"
	PropertyTypeHouse      PropertyType = "HOUSE"
	PropertyTypeCommercial PropertyType = "COMMERCIAL"
	PropertyTypeLand       PropertyType = "LAND"
)

// IsValid reports whether the property type is known
func (t PropertyType) IsValid() bool {
	switch t {
	case PropertyTypeApartment, PropertyTypeHouse, PropertyTypeCommercial, PropertyTypeLand:
		return true
	}
	return false
}

// Status is the listing lifecycle state
type Status string

const (
	StatusDraft    Status = "DRAFT"
	StatusActive   Status = "ACTIVE"
	StatusReserved Status = "RESERVED"
	StatusSold     Status = "SOLD"
	StatusArchived Status = "ARCHIVED"
)

// IsValid reports whether the status is known
func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusActive, StatusReserved, StatusSold, StatusArchived:
		return true
	}
	return false
}

// Renovation is the interior condition. Rank orders the levels for similarity scoring.
type Renovation string

const (
	RenovationNone     Renovation = "NONE"
	RenovationCosmetic Renovation = "COSMETIC"
	RenovationEuro     Renovation = "EURO"
	RenovationDesigner Renovation = "DESIGNER"
)

// Rank returns 0..3, or -1 when unset
func (r Renovation) Rank() int {
	switch r {
	case RenovationNone:
		return 0
	case RenovationCosmetic:
		return 1
	case RenovationEuro:
		return 2
	case RenovationDesigner:
		return 3
	}
	return -1
}

// IsValid reports whether the renovation level is known
func (r Renovation) IsValid() bool { return r.Rank() >= 0 }

// BuildingClass is the market segment of the building
type BuildingClass string

const (
	BuildingClassEconomy  BuildingClass = "ECONOMY"
	BuildingClassComfort  BuildingClass = "COMFORT"
	BuildingClassBusiness BuildingClass = "BUSINESS"
	BuildingClassPremium  BuildingClass = "PREMIUM"
)

// Rank returns 0..3, or -1 when unset
func (c BuildingClass) Rank() int {
	switch c {
	case BuildingClassEconomy:
		return 0
	case BuildingClassComfort:
		return 1
	case BuildingClassBusiness:
		return 2
	case BuildingClassPremium:
		return 3
	}
	return -1
}

// IsValid reports whether the building class is known
func (c BuildingClass) IsValid() bool { return c.Rank() >= 0 }

// Property is an agency listing. Only ACTIVE listings are visible on the marketplace.
type Property struct {
	shared.AgencyEntity
	AgentID       *uuid.UUID      `gorm:"type:uuid;index"`
	Title         string          `gorm:"type:varchar(200);not null"`
	Slug          string          `gorm:"type:varchar(240);not null;index"`
	Description   string          `gorm:"type:text"`
	DealType      DealType        `gorm:"type:varchar(10);not null;index"`
	PropertyType  PropertyType    `gorm:"type:varchar(20);not null;index"`
	Status        Status          `gorm:"type:varchar(20);not null;default:'DRAFT';index"`
	Price         decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Currency      string          `gorm:"type:varchar(3);not null;default:'USD'"`
	Area          float64         `gorm:"type:decimal(10,2);not null"`
	Bedrooms      int             `gorm:"not null;default:0"`
	Floor         *int
	TotalFloors   *int
	City          string        `gorm:"type:varchar(100);not null;index"`
	District      string        `gorm:"type:varchar(100);index"`
	Address       string        `gorm:"type:varchar(500)"`
	Latitude      *float64      `gorm:"type:double precision"`
	Longitude     *float64      `gorm:"type:double precision"`
	Renovation    Renovation    `gorm:"type:varchar(20)"`
	BuildingClass BuildingClass `gorm:"type:varchar(20)"`
	YearBuilt     *int
	PublishedAt   *time.Time
	Views         int64           `gorm:"not null;default:0"`
	Images        []PropertyImage `gorm:"foreignKey:PropertyID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (Property) TableName() string {
	return "properties"
}

// NewProperty creates a DRAFT listing
func NewProperty(agencyID uuid.UUID, title string, dealType DealType, propertyType PropertyType, city string) (*Property, error) {
	p := &Property{
		AgencyEntity: shared.NewAgencyEntity(agencyID),
		Status:       StatusDraft,
		Currency:     "USD",
		Price:        decimal.Zero,
	}
	if err := p.SetTitle(title); err != nil {
		return nil, err
	}
	if err := p.SetKind(dealType, propertyType); err != nil {
		return nil, err
	}
	if err := p.SetLocation(city, "", ""); err != nil {
		return nil, err
	}
	return p, nil
}

// SetTitle renames the listing and regenerates its slug
func (p *Property) SetTitle(title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return shared.NewValidationError("Property title cannot be empty")
	}
	if len(title) > 200 {
		return shared.NewValidationError("Property title cannot exceed 200 characters")
	}
	p.Title = title
	p.Slug = Slugify(title) + "-" + p.ID.String()[:8]
	p.Touch()
	return nil
}

// SetDescription replaces the description
func (p *Property) SetDescription(description string) {
	p.Description = strings.TrimSpace(description)
	p.Touch()
}

// SetKind sets the deal and property type
func (p *Property) SetKind(dealType DealType, propertyType PropertyType) error {
	if !dealType.IsValid() {
		return shared.NewValidationError("Invalid deal type")
	}
	if !propertyType.IsValid() {
		return shared.NewValidationError("Invalid property type")
	}
	p.DealType = dealType
	p.PropertyType = propertyType
	p.Touch()
	return nil
}

// SetPrice sets the asking price
func (p *Property) SetPrice(price decimal.Decimal, currency string) error {
	if price.IsNegative() {
		return shared.NewValidationError("Price cannot be negative")
	}
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		currency = "USD"
	}
	if len(currency) != 3 {
		return shared.NewValidationError("Currency must be a 3-letter ISO code")
	}
	p.Price = price.Round(2)
	p.Currency = currency
	p.Touch()
	return nil
}

// SetDimensions sets area, bedrooms and floors
func (p *Property) SetDimensions(area float64, bedrooms int, floor, totalFloors *int) error {
	if area < 0 {
		return shared.NewValidationError("Area cannot be negative")
	}
	if bedrooms < 0 {
		return shared.NewValidationError("Bedrooms cannot be negative")
	}
	if floor != nil && totalFloors != nil && *floor > *totalFloors {
		return shared.NewValidationError("Floor cannot exceed total floors")
	}
	p.Area = area
	p.Bedrooms = bedrooms
	p.Floor = floor
	p.TotalFloors = totalFloors
	p.Touch()
	return nil
}

// SetLocation sets the textual address
func (p *Property) SetLocation(city, district, address string) error {
	city = strings.TrimSpace(city)
	if city == "" {
		return shared.NewValidationError("City cannot be empty")
	}
	p.City = city
	p.District = strings.TrimSpace(district)
	p.Address = strings.TrimSpace(address)
	p.Touch()
	return nil
}

// SetCoordinates sets or clears the map position
func (p *Property) SetCoordinates(lat, lng *float64) error {
	if (lat == nil) != (lng == nil) {
		return shared.NewValidationError("Latitude and longitude must be set together")
	}
	if lat != nil {
		if _, err := valueobject.NewGeoPoint(*lat, *lng); err != nil {
			return shared.NewValidationError(err.Error())
		}
	}
	p.Latitude = lat
	p.Longitude = lng
	p.Touch()
	return nil
}

// SetCharacteristics sets renovation, building class and year built. Empty values clear the field.
func (p *Property) SetCharacteristics(renovation Renovation, class BuildingClass, yearBuilt *int) error {
	if renovation != "" && !renovation.IsValid() {
		return shared.NewValidationError("Invalid renovation")
	}
	if class != "" && !class.IsValid() {
		return shared.NewValidationError("Invalid building class")
	}
	if yearBuilt != nil && (*yearBuilt < 1800 || *yearBuilt > time.Now().Year()+5) {
		return shared.NewValidationError("Year built is out of range")
	}
	p.Renovation = renovation
	p.BuildingClass = class
	p.YearBuilt = yearBuilt
	p.Touch()
	return nil
}

// AssignAgent sets the responsible member
func (p *Property) AssignAgent(memberID *uuid.UUID) {
	p.AgentID = memberID
	p.Touch()
}

// Location returns the coordinates when both are set
func (p *Property) Location() (valueobject.GeoPoint, bool) {
	if p.Latitude == nil || p.Longitude == nil {
		return valueobject.GeoPoint{}, false
	}
	pt, err := valueobject.NewGeoPoint(*p.Latitude, *p.Longitude)
	if err != nil {
		return valueobject.GeoPoint{}, false
	}
	return pt, true
}

// PricePerSqm returns price / area, zero when area is unknown
func (p *Property) PricePerSqm() decimal.Decimal {
	if p.Area <= 0 {
		return decimal.Zero
	}
	return p.Price.Div(decimal.NewFromFloat(p.Area)).Round(2)
}

// Publish moves DRAFT or ARCHIVED to ACTIVE
func (p *Property) Publish() error {
	if p.Status != StatusDraft && p.Status != StatusArchived {
		return shared.NewInvalidStateError("Only draft or archived listings can be published")
	}
	if !p.Price.IsPositive() {
		return shared.NewValidationError("A published listing needs a positive price")
	}
	if p.Area <= 0 {
		return shared.NewValidationError("A published listing needs a positive area")
	}
	if _, ok := p.Location(); !ok {
		return shared.NewValidationError("A published listing needs coordinates")
	}
	now := time.Now().UTC()
	p.Status = StatusActive
	p.PublishedAt = &now
	p.Touch()
	return nil
}

// Archive hides the listing from the marketplace
func (p *Property) Archive() error {
	if p.Status == StatusArchived {
		return shared.NewInvalidStateError("Listing is already archived")
	}
	p.Status = StatusArchived
	p.Touch()
	return nil
}

// Reserve moves ACTIVE to RESERVED
func (p *Property) Reserve() error {
	if p.Status != StatusActive {
		return shared.NewInvalidStateError("Only active listings can be reserved")
	}
	p.Status = StatusReserved
	p.Touch()
	return nil
}

// MarkSold closes the listing. Any status except SOLD may be sold.
func (p *Property) MarkSold() error {
	if p.Status == StatusSold {
		return shared.NewInvalidStateError("Listing is already sold")
	}
	p.Status = StatusSold
	p.Touch()
	return nil
}

// IsPublic reports whether the marketplace may show the listing
func (p *Property) IsPublic() bool {
	return p.Status == StatusActive
}

// Slugify lower-cases text, strips diacritics and joins words with hyphens
func Slugify(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(folded) {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
	}
	out := strings.TrimSuffix(b.String(), "-")
	if len(out) > 200 {
		out = strings.TrimSuffix(out[:200], "-")
	}
	if out == "" {
		out = "listing"
	}
	return out
}
