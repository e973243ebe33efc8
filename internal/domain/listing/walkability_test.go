package listing

import (
	"testing"

	"github.com/estatehub/backend/internal/domain/shared/valueobject"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func poiNorth(t *testing.T, name string, c POICategory, meters float64) PointOfInterest {
	t.Helper()
	p, err := NewPointOfInterest(name, c, meters/metersPerDegree, 0)
	require.NoError(t, err)
	return *p
}

func TestDistanceDecay(t *testing.T) {
	assert.Equal(t, 1.0, DistanceDecay(0))
	assert.Equal(t, 1.0, DistanceDecay(400))
	assert.InDelta(t, 0.5, DistanceDecay(1000), 1e-9)
	assert.Equal(t, 0.0, DistanceDecay(1600))
	assert.Equal(t, 0.0, DistanceDecay(5000))
}

func TestWalkabilityLabel(t *testing.T) {
	assert.Equal(t, "Walker's Paradise", WalkabilityLabel(90))
	assert.Equal(t, "Very Walkable", WalkabilityLabel(89))
	assert.Equal(t, "Very Walkable", WalkabilityLabel(70))
	assert.Equal(t, "Somewhat Walkable", WalkabilityLabel(50))
	assert.Equal(t, "Car-Dependent", WalkabilityLabel(49))
}

func TestScoreWalkability(t *testing.T) {
	origin := valueobject.MustGeoPoint(0, 0)

	t.Run("no POIs", func(t *testing.T) {
		w := ScoreWalkability(origin, nil)
		assert.Equal(t, 0, w.Score)
		assert.Equal(t, "Car-Dependent", w.Label)
		assert.Len(t, w.Categories, len(ScoredCategories))
	})

	t.Run("every category on the doorstep", func(t *testing.T) {
		var pois []PointOfInterest
		for _, c := range ScoredCategories {
			pois = append(pois, poiNorth(t, string(c), c, 100))
		}
		w := ScoreWalkability(origin, pois)
		assert.Equal(t, 100, w.Score)
		assert.Equal(t, "Walker's Paradise", w.Label)
	})

	t.Run("nearest POI per category with decay", func(t *testing.T) {
		pois := []PointOfInterest{
			poiNorth(t, "Far market", POICategoryGrocery, 1500),
			poiNorth(t, "Corner shop", POICategoryGrocery, 50),
			poiNorth(t, "Metro", POICategoryTransit, 1000),
		}
		w := ScoreWalkability(origin, pois)

		// 100 * (3*1 + 3*0.5) / 13
		assert.Equal(t, 35, w.Score)

		grocery := w.Categories[0]
		assert.Equal(t, POICategoryGrocery, grocery.Category)
		require.NotNil(t, grocery.Nearest)
		assert.Equal(t, "Corner shop", grocery.Nearest.Name)
		assert.InDelta(t, 50, grocery.Nearest.DistanceMeters, 1)

		transit := w.Categories[1]
		assert.InDelta(t, 0.5, transit.Decay, 1e-3)
		assert.Nil(t, w.Categories[2].Nearest)
	})
}
