package listing

import (
	"math"
	"sort"
	"strings"

	"github.com/estatehub/backend/internal/domain/shared"
	"github.com/estatehub/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Similarity weights. They sum to 1.
const (
	WeightArea          = 0.30
	WeightBedrooms      = 0.15
	WeightDistrict      = 0.15
	WeightRenovation    = 0.10
	WeightBuildingClass = 0.10
	WeightDistance      = 0.20

	// MinSimilarity drops comparables scoring below it
	MinSimilarity = 0.35
	// DistanceCutoffMeters is where the distance component reaches zero
	DistanceCutoffMeters = 5000.0
	// FullConfidenceComparables is the sample size that earns full confidence
	FullConfidenceComparables = 8
	// MaxReturnedComparables caps the comparables listed in a result
	MaxReturnedComparables = 20

	districtMismatchScore = 0.4
	unknownRankScore      = 0.5
)

// ConfidenceLevel buckets the numeric confidence
type ConfidenceLevel string

const (
	ConfidenceHigh   ConfidenceLevel = "HIGH"
	ConfidenceMedium ConfidenceLevel = "MEDIUM"
	ConfidenceLow    ConfidenceLevel = "LOW"
)

// ValuationSubject is the property being valued
type ValuationSubject struct {
	PropertyID    *uuid.UUID
	DealType      DealType
	PropertyType  PropertyType
	City          string
	District      string
	Area          float64
	Bedrooms      int
	Renovation    Renovation
	BuildingClass BuildingClass
	Location      *valueobject.GeoPoint
	Currency      string
}

// SubjectFromProperty builds a ValuationSubject from a stored listing
func SubjectFromProperty(p *Property) ValuationSubject {
	id := p.ID
	s := ValuationSubject{
		PropertyID:    &id,
		DealType:      p.DealType,
		PropertyType:  p.PropertyType,
		City:          p.City,
		District:      p.District,
		Area:          p.Area,
		Bedrooms:      p.Bedrooms,
		Renovation:    p.Renovation,
		BuildingClass: p.BuildingClass,
		Currency:      p.Currency,
	}
	if pt, ok := p.Location(); ok {
		s.Location = &pt
	}
	return s
}

// Validate checks the attributes the estimator depends on
func (s ValuationSubject) Validate() error {
	if !s.DealType.IsValid() {
		return shared.NewValidationError("Invalid deal type")
	}
	if !s.PropertyType.IsValid() {
		return shared.NewValidationError("Invalid property type")
	}
	if s.City == "" {
		return shared.NewValidationError("City is required for valuation")
	}
	if s.Area <= 0 {
		return shared.NewValidationError("Area must be positive for valuation")
	}
	if s.Bedrooms < 0 {
		return shared.NewValidationError("Bedrooms cannot be negative")
	}
	return nil
}

// ScoredComparable is one comparable with its similarity to the subject
type ScoredComparable struct {
	PropertyID     uuid.UUID
	Title          string
	District       string
	Price          decimal.Decimal
	Area           float64
	Bedrooms       int
	PricePerSqm    decimal.Decimal
	Similarity     float64
	DistanceMeters *float64
}

// Valuation is the estimator output
type Valuation struct {
	Estimate        decimal.Decimal
	Low             decimal.Decimal
	High            decimal.Decimal
	PricePerSqm     decimal.Decimal
	Currency        string
	Confidence      float64
	ConfidenceLevel ConfidenceLevel
	ComparableCount int
	Comparables     []ScoredComparable
}

// Similarity scores a comparable against the subject in [0, 1].
// When the subject has no coordinates the distance weight is dropped and the rest renormalised.
func Similarity(s ValuationSubject, c *Property) (float64, *float64) {
	score := WeightArea*areaScore(s.Area, c.Area) +
		WeightBedrooms*bedroomScore(s.Bedrooms, c.Bedrooms) +
		WeightDistrict*districtScore(s.District, c.District) +
		WeightRenovation*rankScore(s.Renovation.Rank(), c.Renovation.Rank()) +
		WeightBuildingClass*rankScore(s.BuildingClass.Rank(), c.BuildingClass.Rank())

	if s.Location == nil {
		return clamp01(score / (1 - WeightDistance)), nil
	}
	loc, ok := c.Location()
	if !ok {
		return clamp01(score), nil
	}
	d := s.Location.DistanceMeters(loc)
	score += WeightDistance * math.Max(0, 1-d/DistanceCutoffMeters)
	return clamp01(score), &d
}

// Estimate values the subject from candidate comparables.
// Returns INSUFFICIENT_DATA when no candidate reaches MinSimilarity.
func Estimate(s ValuationSubject, candidates []Property) (*Valuation, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	scored := make([]ScoredComparable, 0, len(candidates))
	for i := range candidates {
		c := &candidates[i]
		if s.PropertyID != nil && c.ID == *s.PropertyID {
			continue
		}
		if c.Area <= 0 || !c.Price.IsPositive() {
			continue
		}
		sim, dist := Similarity(s, c)
		if sim < MinSimilarity {
			continue
		}
		scored = append(scored, ScoredComparable{
			PropertyID:     c.ID,
			Title:          c.Title,
			District:       c.District,
			Price:          c.Price,
			Area:           c.Area,
			Bedrooms:       c.Bedrooms,
			PricePerSqm:    c.PricePerSqm(),
			Similarity:     round(sim, 4),
			DistanceMeters: dist,
		})
	}
	if len(scored) == 0 {
		return nil, shared.NewDomainError(shared.ErrInsufficientData.Code, "Not enough comparable listings to estimate a price")
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Similarity > scored[j].Similarity
	})

	var sumW, sumWX float64
	for _, c := range scored {
		x := c.Price.InexactFloat64() / c.Area
		sumW += c.Similarity
		sumWX += c.Similarity * x
	}
	mean := sumWX / sumW

	var sumWVar float64
	for _, c := range scored {
		x := c.Price.InexactFloat64() / c.Area
		sumWVar += c.Similarity * (x - mean) * (x - mean)
	}
	stddev := math.Sqrt(sumWVar / sumW)

	n := len(scored)
	confidence := math.Min(1, float64(n)/FullConfidenceComparables) * (sumW / float64(n))

	estimate := mean * s.Area
	spread := stddev * s.Area
	low := math.Max(0, estimate-spread)

	currency := s.Currency
	if currency == "" {
		currency = candidates[0].Currency
	}
	if len(scored) > MaxReturnedComparables {
		scored = scored[:MaxReturnedComparables]
	}

	return &Valuation{
		Estimate:        decimal.NewFromFloat(estimate).Round(0),
		Low:             decimal.NewFromFloat(low).Round(0),
		High:            decimal.NewFromFloat(estimate + spread).Round(0),
		PricePerSqm:     decimal.NewFromFloat(mean).Round(2),
		Currency:        currency,
		Confidence:      round(confidence, 4),
		ConfidenceLevel: LevelFor(confidence),
		ComparableCount: n,
		Comparables:     scored,
	}, nil
}

// LevelFor buckets a confidence value
func LevelFor(confidence float64) ConfidenceLevel {
	switch {
	case confidence >= 0.7:
		return ConfidenceHigh
	case confidence >= 0.4:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

func areaScore(target, other float64) float64 {
	if target <= 0 {
		return 0
	}
	return clamp01(1 - math.Abs(target-other)/target)
}

func bedroomScore(target, other int) float64 {
	diff := target - other
	if diff < 0 {
		diff = -diff
	}
	if diff > 3 {
		diff = 3
	}
	return 1 - float64(diff)/3
}

func districtScore(target, other string) float64 {
	if target != "" && strings.EqualFold(strings.TrimSpace(target), strings.TrimSpace(other)) {
		return 1
	}
	return districtMismatchScore
}

func rankScore(a, b int) float64 {
	if a < 0 || b < 0 {
		return unknownRankScore
	}
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	return 1 - float64(diff)/3
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
