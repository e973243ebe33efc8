package listing

import (
	"context"
	"errors"
	"testing"

	"github.com/estatehub/backend/internal/domain/listing"
	"github.com/estatehub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestMarketplaceService_Search(t *testing.T) {
	ctx := context.Background()

	t.Run("returns public listings", func(t *testing.T) {
		f := newListingFixture()
		criteria := listing.SearchCriteria{City: "Lisbon", DealType: listing.DealTypeSale}
		filter := shared.NewFilter(1, 20, "price", "asc", "")
		f.properties.On("SearchPublic", ctx, criteria, filter).Return([]listing.Property{*activeListing(t, agent)}, nil)
		f.properties.On("CountPublic", ctx, criteria, filter).Return(int64(1), nil)

		page, err := f.marketplaceService().Search(ctx, criteria, filter)
		require.NoError(t, err)
		require.Len(t, page.Items, 1)
		assert.Equal(t, "Lisbon", page.Items[0].City)
		assert.Equal(t, 1, page.TotalPages)
	})

	t.Run("inverted price range", func(t *testing.T) {
		f := newListingFixture()
		criteria := listing.SearchCriteria{
			MinPrice: ptr(decimal.NewFromInt(500)),
			MaxPrice: ptr(decimal.NewFromInt(100)),
		}
		_, err := f.marketplaceService().Search(ctx, criteria, shared.DefaultFilter())
		assert.Equal(t, "INVALID_INPUT", errCode(t, err))
	})
}

func TestMarketplaceService_GetPublic(t *testing.T) {
	ctx := context.Background()

	t.Run("counts the view", func(t *testing.T) {
		f := newListingFixture()
		p := activeListing(t, agent)
		p.Views = 4
		f.expectProperty(p)
		f.properties.On("IncrementViews", ctx, p.ID).Return(nil)

		result, err := f.marketplaceService().GetPublic(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(5), result.Views)
		f.properties.AssertCalled(t, "IncrementViews", ctx, p.ID)
	})

	t.Run("view counter failure still serves the listing", func(t *testing.T) {
		f := newListingFixture()
		p := activeListing(t, agent)
		f.expectProperty(p)
		f.properties.On("IncrementViews", ctx, p.ID).Return(errors.New("timeout"))

		result, err := f.marketplaceService().GetPublic(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(0), result.Views)
	})

	for _, status := range []listing.Status{listing.StatusDraft, listing.StatusReserved, listing.StatusSold, listing.StatusArchived} {
		t.Run("hides "+string(status), func(t *testing.T) {
			f := newListingFixture()
			p := newListing(t, agent)
			p.Status = status
			f.expectProperty(p)

			_, err := f.marketplaceService().GetPublic(ctx, p.ID)
			assert.Equal(t, "NOT_FOUND", errCode(t, err))
			f.properties.AssertNotCalled(t, "IncrementViews", mock.Anything, mock.Anything)
		})
	}
}

func comparable(t *testing.T, price int64, area float64) listing.Property {
	t.Helper()
	p := activeListing(t, agent)
	require.NoError(t, p.SetPrice(decimal.NewFromInt(price), "EUR"))
	require.NoError(t, p.SetDimensions(area, 2, nil, nil))
	return *p
}

func TestMarketplaceService_Valuation(t *testing.T) {
	ctx := context.Background()

	t.Run("ad hoc subject", func(t *testing.T) {
		f := newListingFixture()
		candidates := []listing.Property{comparable(t, 300000, 75), comparable(t, 300000, 75)}
		f.properties.On("FindComparables", ctx, listing.ComparableQuery{
			City:         "Lisbon",
			DealType:     listing.DealTypeSale,
			PropertyType: listing.PropertyTypeApartment,
			Currency:     "EUR",
			Limit:        50,
		}).Return(candidates, nil)

		v, err := f.marketplaceService().Valuation(ctx, ValuationInput{
			DealType:     "sale",
			PropertyType: "apartment",
			City:         " Lisbon ",
			District:     "Alfama",
			Area:         75,
			Bedrooms:     2,
			Latitude:     ptr(38.7139),
			Longitude:    ptr(-9.1334),
			Currency:     "eur",
		})
		require.NoError(t, err)
		assert.True(t, v.Estimate.Equal(decimal.NewFromInt(300000)), v.Estimate.String())
		assert.True(t, v.Low.Equal(v.High))
		assert.Equal(t, 2, v.ComparableCount)
		assert.Equal(t, "EUR", v.Currency)
	})

	t.Run("missing area", func(t *testing.T) {
		f := newListingFixture()
		_, err := f.marketplaceService().Valuation(ctx, ValuationInput{
			DealType: "SALE", PropertyType: "HOUSE", City: "Lisbon",
		})
		assert.Equal(t, "INVALID_INPUT", errCode(t, err))
		f.properties.AssertNotCalled(t, "FindComparables", mock.Anything, mock.Anything)
	})

	t.Run("half a coordinate", func(t *testing.T) {
		f := newListingFixture()
		_, err := f.marketplaceService().Valuation(ctx, ValuationInput{
			DealType: "SALE", PropertyType: "HOUSE", City: "Lisbon", Area: 100, Latitude: ptr(1.0),
		})
		assert.Equal(t, "INVALID_INPUT", errCode(t, err))
	})

	t.Run("no comparables", func(t *testing.T) {
		f := newListingFixture()
		f.properties.On("FindComparables", ctx, mock.Anything).Return([]listing.Property{}, nil)

		_, err := f.marketplaceService().Valuation(ctx, ValuationInput{
			DealType: "RENT", PropertyType: "HOUSE", City: "Lisbon", Area: 100,
		})
		assert.Equal(t, "INSUFFICIENT_DATA", errCode(t, err))
	})

	t.Run("for a listing excludes itself", func(t *testing.T) {
		f := newListingFixture()
		p := activeListing(t, agent)
		f.expectProperty(p)
		f.properties.On("FindComparables", ctx, mock.MatchedBy(func(q listing.ComparableQuery) bool {
			return q.ExcludeID != nil && *q.ExcludeID == p.ID && q.Currency == "EUR"
		})).Return([]listing.Property{*p, comparable(t, 320000, 80)}, nil)

		v, err := f.marketplaceService().ValuationForListing(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, v.ComparableCount)
		assert.True(t, v.PricePerSqm.Equal(decimal.NewFromInt(4000)))
	})
}

func TestMarketplaceService_Walkability(t *testing.T) {
	ctx := context.Background()
	grocery, err := listing.NewPointOfInterest("Mercado", listing.POICategoryGrocery, 38.7139, -9.1334)
	require.NoError(t, err)
	transit, err := listing.NewPointOfInterest("Metro", listing.POICategoryTransit, 38.7139, -9.1334)
	require.NoError(t, err)

	t.Run("coordinates", func(t *testing.T) {
		f := newListingFixture()
		f.pois.On("FindWithinBox", ctx, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return([]listing.PointOfInterest{*grocery, *transit}, nil)

		result, err := f.marketplaceService().Walkability(ctx, 38.7139, -9.1334)
		require.NoError(t, err)
		assert.Equal(t, 46, result.Score)
		assert.Equal(t, "Car-Dependent", result.Label)
		assert.Len(t, result.Categories, len(listing.ScoredCategories))
		require.NotNil(t, result.Categories[0].Nearest)
		assert.Equal(t, "Mercado", result.Categories[0].Nearest.Name)
	})

	t.Run("bounding box surrounds the origin", func(t *testing.T) {
		f := newListingFixture()
		f.pois.On("FindWithinBox", ctx, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) {
				assert.Less(t, args.Get(1).(float64), 38.7139)
				assert.Greater(t, args.Get(2).(float64), 38.7139)
				assert.Less(t, args.Get(3).(float64), -9.1334)
				assert.Greater(t, args.Get(4).(float64), -9.1334)
			}).
			Return([]listing.PointOfInterest{}, nil)

		result, err := f.marketplaceService().Walkability(ctx, 38.7139, -9.1334)
		require.NoError(t, err)
		assert.Equal(t, 0, result.Score)
	})

	t.Run("invalid coordinates", func(t *testing.T) {
		f := newListingFixture()
		_, err := f.marketplaceService().Walkability(ctx, 91, 0)
		assert.Equal(t, "INVALID_INPUT", errCode(t, err))
	})

	t.Run("for a listing", func(t *testing.T) {
		f := newListingFixture()
		p := activeListing(t, agent)
		f.expectProperty(p)
		f.pois.On("FindWithinBox", ctx, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return([]listing.PointOfInterest{*grocery}, nil)

		result, err := f.marketplaceService().WalkabilityForListing(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, 23, result.Score)
		assert.InDelta(t, 38.7139, result.Latitude, 1e-9)
	})

	t.Run("unknown listing", func(t *testing.T) {
		f := newListingFixture()
		id := uuid.New()
		f.properties.On("FindByID", ctx, id).Return(nil, shared.ErrNotFound)

		_, err := f.marketplaceService().WalkabilityForListing(ctx, id)
		assert.Equal(t, "NOT_FOUND", errCode(t, err))
	})
}
