package listing

import (
	"math"
	"testing"

	"github.com/estatehub/backend/internal/domain/shared"
	"github.com/estatehub/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// metersPerDegree converts a north offset in meters to degrees of latitude
const metersPerDegree = valueobject.EarthRadiusMeters * math.Pi / 180

func testSubject() ValuationSubject {
	origin := valueobject.MustGeoPoint(0, 0)
	return ValuationSubject{
		DealType:      DealTypeSale,
		PropertyType:  PropertyTypeApartment,
		City:          "Lisbon",
		District:      "Center",
		Area:          100,
		Bedrooms:      2,
		Renovation:    RenovationEuro,
		BuildingClass: BuildingClassComfort,
		Location:      &origin,
	}
}

type comp struct {
	price      int64
	area       float64
	bedrooms   int
	district   string
	renovation Renovation
	class      BuildingClass
	northM     float64
}

func (c comp) build(t *testing.T) Property {
	t.Helper()
	p, err := NewProperty(uuid.New(), "Comparable", DealTypeSale, PropertyTypeApartment, "Lisbon")
	require.NoError(t, err)
	require.NoError(t, p.SetPrice(decimal.NewFromInt(c.price), "EUR"))
	require.NoError(t, p.SetDimensions(c.area, c.bedrooms, nil, nil))
	require.NoError(t, p.SetLocation("Lisbon", c.district, ""))
	require.NoError(t, p.SetCoordinates(ptr(c.northM/metersPerDegree), ptr(0.0)))
	require.NoError(t, p.SetCharacteristics(c.renovation, c.class, nil))
	return *p
}

func twin(price int64) comp {
	return comp{price: price, area: 100, bedrooms: 2, district: "Center", renovation: RenovationEuro, class: BuildingClassComfort}
}

func TestSimilarity(t *testing.T) {
	s := testSubject()

	t.Run("identical listing scores one", func(t *testing.T) {
		c := twin(100000).build(t)
		sim, dist := Similarity(s, &c)
		assert.InDelta(t, 1.0, sim, 1e-9)
		require.NotNil(t, dist)
		assert.InDelta(t, 0, *dist, 1e-6)
	})

	t.Run("weighted components", func(t *testing.T) {
		c := comp{
			price: 100000, area: 150, bedrooms: 3, district: "Suburb",
			renovation: RenovationEuro, class: BuildingClassBusiness, northM: 2500,
		}.build(t)
		sim, dist := Similarity(s, &c)

		want := 0.30*0.5 + 0.15*(2.0/3) + 0.15*0.4 + 0.10*1 + 0.10*(2.0/3) + 0.20*0.5
		assert.InDelta(t, want, sim, 1e-3)
		require.NotNil(t, dist)
		assert.InDelta(t, 2500, *dist, 1)
	})

	t.Run("no subject location renormalises", func(t *testing.T) {
		noLoc := s
		noLoc.Location = nil
		c := twin(100000).build(t)
		sim, dist := Similarity(noLoc, &c)
		assert.InDelta(t, 1.0, sim, 1e-9)
		assert.Nil(t, dist)
	})
}

func TestEstimate(t *testing.T) {
	t.Run("weighted mean and spread", func(t *testing.T) {
		comps := []Property{twin(100000).build(t), twin(120000).build(t)}

		v, err := Estimate(testSubject(), comps)
		require.NoError(t, err)

		assert.True(t, decimal.NewFromInt(110000).Equal(v.Estimate), v.Estimate.String())
		assert.True(t, decimal.NewFromInt(100000).Equal(v.Low), v.Low.String())
		assert.True(t, decimal.NewFromInt(120000).Equal(v.High), v.High.String())
		assert.True(t, decimal.NewFromInt(1100).Equal(v.PricePerSqm))
		assert.Equal(t, 2, v.ComparableCount)
		assert.InDelta(t, 0.25, v.Confidence, 1e-9)
		assert.Equal(t, ConfidenceLow, v.ConfidenceLevel)
		assert.Equal(t, "EUR", v.Currency)
	})

	t.Run("dissimilar comparables are discarded", func(t *testing.T) {
		far := comp{
			price: 900000, area: 400, bedrooms: 6, district: "Elsewhere",
			renovation: RenovationNone, class: BuildingClassPremium, northM: 10000,
		}.build(t)

		_, err := Estimate(testSubject(), []Property{far})
		assert.ErrorIs(t, err, shared.ErrInsufficientData)
	})

	t.Run("subject is excluded from its own comparables", func(t *testing.T) {
		self := twin(100000).build(t)
		s := testSubject()
		s.PropertyID = &self.ID

		_, err := Estimate(s, []Property{self})
		assert.ErrorIs(t, err, shared.ErrInsufficientData)
	})

	t.Run("confidence saturates at eight comparables", func(t *testing.T) {
		comps := make([]Property, 0, 10)
		for i := 0; i < 10; i++ {
			comps = append(comps, twin(100000).build(t))
		}
		v, err := Estimate(testSubject(), comps)
		require.NoError(t, err)
		assert.InDelta(t, 1.0, v.Confidence, 1e-9)
		assert.Equal(t, ConfidenceHigh, v.ConfidenceLevel)
		assert.True(t, v.Low.Equal(v.High))
	})

	t.Run("returns at most twenty comparables", func(t *testing.T) {
		comps := make([]Property, 0, 25)
		for i := 0; i < 25; i++ {
			comps = append(comps, twin(100000+int64(i)*1000).build(t))
		}
		v, err := Estimate(testSubject(), comps)
		require.NoError(t, err)
		assert.Equal(t, 25, v.ComparableCount)
		assert.Len(t, v.Comparables, MaxReturnedComparables)
	})

	t.Run("invalid subject", func(t *testing.T) {
		s := testSubject()
		s.Area = 0
		_, err := Estimate(s, nil)
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})
}

func TestLevelFor(t *testing.T) {
	assert.Equal(t, ConfidenceHigh, LevelFor(0.7))
	assert.Equal(t, ConfidenceMedium, LevelFor(0.4))
	assert.Equal(t, ConfidenceMedium, LevelFor(0.69))
	assert.Equal(t, ConfidenceLow, LevelFor(0.39))
}
