package handler_test

import (
	"net/http"
	"testing"

	"github.com/estatehub/backend/internal/interfaces/http/dto"
	"github.com/estatehub/backend/internal/interfaces/http/handler"
	"github.com/estatehub/backend/internal/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarketplaceHandler_Search(t *testing.T) {
	env := newAPIEnv(t)
	owner := env.newAgency("Casa Azul")

	active := createProperty(t, env, owner, apartment("Sunny T2 Alfama", "Alfama", 300000, 38.7115, -9.1300))
	requireStatus(t, env.do(http.MethodPost, "/properties/"+active.ID.String()+"/publish", &owner, nil), http.StatusOK)
	other := createProperty(t, env, owner, apartment("Garden T2 Belém", "Belém", 340000, 38.6970, -9.2060))
	requireStatus(t, env.do(http.MethodPost, "/properties/"+other.ID.String()+"/publish", &owner, nil), http.StatusOK)
	draft := createProperty(t, env, owner, apartment("Unfinished draft", "Alfama", 100000, 38.7110, -9.1310))

	w := env.do(http.MethodGet, "/marketplace/properties?city=lisbon", nil, nil)
	requireStatus(t, w, http.StatusOK)
	page := decodePage[handler.PublicPropertyResponse](t, w)
	assert.Len(t, page.Data, 2)
	require.NotNil(t, page.Meta)
	assert.Equal(t, int64(2), page.Meta.Total)
	for _, p := range page.Data {
		assert.NotEqual(t, draft.ID, p.ID)
	}

	t.Run("district filter", func(t *testing.T) {
		w := env.do(http.MethodGet, "/marketplace/properties?district=alfama", nil, nil)
		requireStatus(t, w, http.StatusOK)
		page := decodePage[handler.PublicPropertyResponse](t, w)
		require.Len(t, page.Data, 1)
		assert.Equal(t, active.ID, page.Data[0].ID)
	})

	t.Run("bad price filter", func(t *testing.T) {
		w := env.do(http.MethodGet, "/marketplace/properties?min_price=cheap", nil, nil)
		testutil.AssertErrorResponse(t, w, http.StatusBadRequest, dto.ErrCodeInvalidInput)
	})

	t.Run("public detail", func(t *testing.T) {
		w := env.do(http.MethodGet, "/marketplace/properties/"+active.ID.String(), nil, nil)
		requireStatus(t, w, http.StatusOK)
		assert.Equal(t, "Sunny T2 Alfama", decodeItem[handler.PublicPropertyResponse](t, w).Title)

		w = env.do(http.MethodGet, "/marketplace/properties/"+draft.ID.String(), nil, nil)
		testutil.AssertErrorResponse(t, w, http.StatusNotFound, dto.ErrCodeNotFound)

		w = env.do(http.MethodGet, "/marketplace/properties/"+uuid.NewString(), nil, nil)
		testutil.AssertErrorResponse(t, w, http.StatusNotFound, dto.ErrCodeNotFound)
	})
}

func TestMarketplaceHandler_Valuation(t *testing.T) {
	env := newAPIEnv(t)
	owner := env.newAgency("Casa Azul")

	request := map[string]any{
		"deal_type":      "sale",
		"property_type":  "apartment",
		"city":           "Lisbon",
		"district":       "Alfama",
		"area":           100,
		"bedrooms":       2,
		"renovation":     "EURO",
		"building_class": "COMFORT",
		"currency":       "EUR",
	}

	t.Run("no comparables", func(t *testing.T) {
		w := env.do(http.MethodPost, "/marketplace/valuation", nil, request)
		testutil.AssertErrorResponse(t, w, http.StatusBadRequest, dto.ErrCodeInsufficientData)
	})

	first := createProperty(t, env, owner, apartment("Comparable one", "Alfama", 300000, 38.7115, -9.1300))
	requireStatus(t, env.do(http.MethodPost, "/properties/"+first.ID.String()+"/publish", &owner, nil), http.StatusOK)
	second := createProperty(t, env, owner, apartment("Comparable two", "Alfama", 340000, 38.7120, -9.1305))
	requireStatus(t, env.do(http.MethodPost, "/properties/"+second.ID.String()+"/publish", &owner, nil), http.StatusOK)
	// drafts never count as comparables
	createProperty(t, env, owner, apartment("Overpriced draft", "Alfama", 9000000, 38.7118, -9.1302))

	w := env.do(http.MethodPost, "/marketplace/valuation", nil, request)
	requireStatus(t, w, http.StatusOK)
	v := decodeItem[handler.ValuationResponse](t, w)
	assert.Equal(t, 2, v.ComparableCount)
	assert.Equal(t, "EUR", v.Currency)
	assert.True(t, decimal.NewFromInt(320000).Equal(v.Estimate), v.Estimate.String())
	assert.True(t, v.Low.LessThan(v.Estimate))
	assert.True(t, v.High.GreaterThan(v.Estimate))
	assert.InDelta(t, 0.25, v.Confidence, 0.0001)
	assert.Equal(t, "LOW", v.ConfidenceLevel)

	t.Run("listing valuation excludes itself", func(t *testing.T) {
		w := env.do(http.MethodGet, "/marketplace/properties/"+first.ID.String()+"/valuation", nil, nil)
		requireStatus(t, w, http.StatusOK)
		v := decodeItem[handler.ValuationResponse](t, w)
		require.Equal(t, 1, v.ComparableCount)
		assert.Equal(t, second.ID, v.Comparables[0].PropertyID)
		require.NotNil(t, v.Comparables[0].DistanceMeters)
		assert.True(t, decimal.NewFromInt(340000).Equal(v.Estimate), v.Estimate.String())
	})

	t.Run("half coordinates", func(t *testing.T) {
		body := map[string]any{}
		for k, val := range request {
			body[k] = val
		}
		body["latitude"] = 38.71
		w := env.do(http.MethodPost, "/marketplace/valuation", nil, body)
		testutil.AssertErrorResponse(t, w, http.StatusBadRequest, dto.ErrCodeInvalidInput)
	})
}

func TestMarketplaceHandler_Walkability(t *testing.T) {
	env := newAPIEnv(t)
	owner := env.newAgency("Casa Azul")

	const lat, lng = 38.7115, -9.1300
	for _, poi := range []map[string]any{
		{"name": "Mercado de Alfama", "category": "GROCERY", "latitude": lat, "longitude": lng},
		{"name": "Tram 28 stop", "category": "TRANSIT", "latitude": lat, "longitude": lng},
		{"name": "Escola Básica", "category": "school", "latitude": lat, "longitude": lng},
		{"name": "Miradouro garden", "category": "PARK", "latitude": lat, "longitude": lng},
		// roughly 5km north, outside the scoring radius
		{"name": "Far pharmacy", "category": "PHARMACY", "latitude": lat + 0.045, "longitude": lng},
	} {
		requireStatus(t, env.do(http.MethodPost, "/pois", &owner, poi), http.StatusCreated)
	}

	w := env.do(http.MethodGet, "/marketplace/walkability?lat=38.7115&lng=-9.13", nil, nil)
	requireStatus(t, w, http.StatusOK)
	score := decodeItem[handler.WalkabilityResponse](t, w)
	// (3 + 3 + 2 + 2) / 13
	assert.Equal(t, 77, score.Score)
	assert.Equal(t, "Very Walkable", score.Label)
	for _, c := range score.Categories {
		if c.Category == "PHARMACY" {
			assert.Zero(t, c.Decay)
		}
		if c.Category == "GROCERY" {
			require.NotNil(t, c.Nearest)
			assert.Equal(t, "Mercado de Alfama", c.Nearest.Name)
		}
	}

	t.Run("missing coordinate", func(t *testing.T) {
		w := env.do(http.MethodGet, "/marketplace/walkability?lng=-9.13", nil, nil)
		testutil.AssertErrorResponse(t, w, http.StatusBadRequest, dto.ErrCodeValidation)
	})

	t.Run("listing walkability", func(t *testing.T) {
		p := createProperty(t, env, owner, apartment("Walkable T1", "Alfama", 250000, lat, lng))
		w := env.do(http.MethodGet, "/marketplace/properties/"+p.ID.String()+"/walkability", nil, nil)
		testutil.AssertErrorResponse(t, w, http.StatusNotFound, dto.ErrCodeNotFound)

		requireStatus(t, env.do(http.MethodPost, "/properties/"+p.ID.String()+"/publish", &owner, nil), http.StatusOK)
		w = env.do(http.MethodGet, "/marketplace/properties/"+p.ID.String()+"/walkability", nil, nil)
		requireStatus(t, w, http.StatusOK)
		assert.Equal(t, 77, decodeItem[handler.WalkabilityResponse](t, w).Score)
	})
}
