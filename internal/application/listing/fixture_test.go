package listing

import (
	"context"
	"errors"
	"testing"

	"github.com/estatehub/backend/internal/domain/agency"
	"github.com/estatehub/backend/internal/domain/listing"
	"github.com/estatehub/backend/internal/domain/shared"
	"github.com/estatehub/backend/internal/infrastructure/storage"
	"github.com/estatehub/backend/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var (
	manager = testutil.Actor(agency.RoleAdmin)
	agent   = testutil.Actor(agency.RoleAgent)
)

type listingFixture struct {
	properties *testutil.MockPropertyRepository
	images     *testutil.MockImageRepository
	members    *testutil.MockMemberRepository
	pois       *testutil.MockPOIRepository
	storage    *storage.MemoryObjectStorage
	logger     *zap.Logger
}

func newListingFixture() *listingFixture {
	return &listingFixture{
		properties: new(testutil.MockPropertyRepository),
		images:     new(testutil.MockImageRepository),
		members:    new(testutil.MockMemberRepository),
		pois:       new(testutil.MockPOIRepository),
		storage:    storage.NewMemoryObjectStorage("https://cdn.test"),
		logger:     zap.NewNop(),
	}
}

func (f *listingFixture) listingService() *ListingService {
	return NewListingService(f.properties, f.images, f.members, f.storage, 1024, f.logger)
}

func (f *listingFixture) marketplaceService() *MarketplaceService {
	return NewMarketplaceService(f.properties, f.pois, 50, f.logger)
}

func (f *listingFixture) poiService() *POIService {
	return NewPOIService(f.pois, f.logger)
}

// expectProperty registers a listing lookup
func (f *listingFixture) expectProperty(p *listing.Property) {
	f.properties.On("FindByID", context.Background(), p.ID).Return(p, nil)
}

// newListing builds a publishable DRAFT listing owned by the member
func newListing(t *testing.T, owner agency.Actor) *listing.Property {
	t.Helper()
	p, err := listing.NewProperty(owner.AgencyID, "Bright flat near the park", listing.DealTypeSale, listing.PropertyTypeApartment, "Lisbon")
	require.NoError(t, err)
	require.NoError(t, p.SetPrice(decimal.NewFromInt(300000), "EUR"))
	require.NoError(t, p.SetDimensions(75, 2, nil, nil))
	require.NoError(t, p.SetLocation("Lisbon", "Alfama", "Rua 1"))
	require.NoError(t, p.SetCoordinates(ptr(38.7139), ptr(-9.1334)))
	p.AssignAgent(&owner.MemberID)
	return p
}

func activeListing(t *testing.T, owner agency.Actor) *listing.Property {
	t.Helper()
	p := newListing(t, owner)
	require.NoError(t, p.Publish())
	return p
}

func errCode(t *testing.T, err error) string {
	t.Helper()
	var de *shared.DomainError
	require.True(t, errors.As(err, &de), "expected DomainError, got %v", err)
	return de.Code
}

func ptr[T any](v T) *T { return &v }
