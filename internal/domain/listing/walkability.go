package listing

import (
	"math"

	"github.com/estatehub/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

const (
	// FullCreditMeters is the distance within which a POI earns full credit
	FullCreditMeters = 400.0
	// ZeroCreditMeters is where credit falls to zero
	ZeroCreditMeters = 1600.0
)

var categoryWeights = map[POICategory]float64{
	POICategoryGrocery:    3,
	POICategoryTransit:    3,
	POICategorySchool:     2,
	POICategoryPark:       2,
	POICategoryPharmacy:   1,
	POICategoryRestaurant: 1,
	POICategoryHospital:   1,
}

// ScoredCategories is the fixed output order of categories
var ScoredCategories = []POICategory{
	POICategoryGrocery, POICategoryTransit, POICategorySchool, POICategoryPark,
	POICategoryPharmacy, POICategoryRestaurant, POICategoryHospital,
}

// CategoryWeight returns the walkability weight of a category
func CategoryWeight(c POICategory) float64 {
	return categoryWeights[c]
}

// NearestPOI is the closest POI of a category
type NearestPOI struct {
	ID             uuid.UUID
	Name           string
	DistanceMeters float64
}

// CategoryScore is one category's contribution
type CategoryScore struct {
	Category POICategory
	Weight   float64
	Decay    float64
	Nearest  *NearestPOI
}

// Walkability is the scored neighbourhood around a point
type Walkability struct {
	Score      int
	Label      string
	Categories []CategoryScore
}

// DistanceDecay is 1 up to FullCreditMeters, falling linearly to 0 at ZeroCreditMeters
func DistanceDecay(meters float64) float64 {
	switch {
	case meters <= FullCreditMeters:
		return 1
	case meters >= ZeroCreditMeters:
		return 0
	default:
		return 1 - (meters-FullCreditMeters)/(ZeroCreditMeters-FullCreditMeters)
	}
}

// WalkabilityLabel names a score band
func WalkabilityLabel(score int) string {
	switch {
	case score >= 90:
		return "Walker's Paradise"
	case score >= 70:
		return "Very Walkable"
	case score >= 50:
		return "Somewhat Walkable"
	default:
		return "Car-Dependent"
	}
}

// ScoreWalkability scores origin against the nearest POI of every weighted category
func ScoreWalkability(origin valueobject.GeoPoint, pois []PointOfInterest) Walkability {
	nearest := make(map[POICategory]*NearestPOI, len(categoryWeights))
	for i := range pois {
		p := &pois[i]
		if !p.Category.IsValid() {
			continue
		}
		d := origin.DistanceMeters(p.Point())
		if cur, ok := nearest[p.Category]; !ok || d < cur.DistanceMeters {
			nearest[p.Category] = &NearestPOI{ID: p.ID, Name: p.Name, DistanceMeters: d}
		}
	}

	var weighted, total float64
	cats := make([]CategoryScore, 0, len(ScoredCategories))
	for _, c := range ScoredCategories {
		w := categoryWeights[c]
		cs := CategoryScore{Category: c, Weight: w}
		if n, ok := nearest[c]; ok {
			cs.Decay = DistanceDecay(n.DistanceMeters)
			n.DistanceMeters = math.Round(n.DistanceMeters)
			cs.Nearest = n
		}
		weighted += w * cs.Decay
		total += w
		cats = append(cats, cs)
	}

	score := int(math.Round(100 * weighted / total))
	return Walkability{
		Score:      score,
		Label:      WalkabilityLabel(score),
		Categories: cats,
	}
}
