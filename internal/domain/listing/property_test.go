package listing

import (
	"testing"

	"github.com/estatehub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func newPublishable(t *testing.T) *Property {
	t.Helper()
	p, err := NewProperty(uuid.New(), "Sunny flat near the park", DealTypeSale, PropertyTypeApartment, "Lisbon")
	require.NoError(t, err)
	require.NoError(t, p.SetPrice(decimal.NewFromInt(300000), "eur"))
	require.NoError(t, p.SetDimensions(80, 2, ptr(3), ptr(5)))
	require.NoError(t, p.SetCoordinates(ptr(38.72), ptr(-9.14)))
	return p
}

func TestNewProperty(t *testing.T) {
	p, err := NewProperty(uuid.New(), "Loft", DealTypeRent, PropertyTypeApartment, "Porto")
	require.NoError(t, err)
	assert.Equal(t, StatusDraft, p.Status)
	assert.Contains(t, p.Slug, "loft-")

	_, err = NewProperty(uuid.New(), "Loft", "LEASE", PropertyTypeApartment, "Porto")
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	_, err = NewProperty(uuid.New(), "Loft", DealTypeRent, PropertyTypeApartment, "")
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestProperty_Publish(t *testing.T) {
	t.Run("requires price, area and coordinates", func(t *testing.T) {
		p, err := NewProperty(uuid.New(), "Empty", DealTypeSale, PropertyTypeHouse, "Lisbon")
		require.NoError(t, err)
		assert.ErrorIs(t, p.Publish(), shared.ErrInvalidInput)

		require.NoError(t, p.SetPrice(decimal.NewFromInt(1), ""))
		require.NoError(t, p.SetDimensions(10, 0, nil, nil))
		assert.ErrorIs(t, p.Publish(), shared.ErrInvalidInput)
		assert.Equal(t, StatusDraft, p.Status)
	})

	t.Run("draft to active stamps publishedAt", func(t *testing.T) {
		p := newPublishable(t)
		require.NoError(t, p.Publish())
		assert.Equal(t, StatusActive, p.Status)
		assert.NotNil(t, p.PublishedAt)
		assert.True(t, p.IsPublic())

		assert.ErrorIs(t, p.Publish(), shared.ErrInvalidState)
	})
}

func TestProperty_Lifecycle(t *testing.T) {
	p := newPublishable(t)
	assert.ErrorIs(t, p.Reserve(), shared.ErrInvalidState)

	require.NoError(t, p.Publish())
	require.NoError(t, p.Reserve())
	assert.False(t, p.IsPublic())

	require.NoError(t, p.MarkSold())
	assert.ErrorIs(t, p.MarkSold(), shared.ErrInvalidState)

	require.NoError(t, p.Archive())
	assert.ErrorIs(t, p.Archive(), shared.ErrInvalidState)
}

func TestProperty_Setters(t *testing.T) {
	p := newPublishable(t)
	assert.Equal(t, "EUR", p.Currency)

	assert.ErrorIs(t, p.SetDimensions(50, 1, ptr(6), ptr(5)), shared.ErrInvalidInput)
	assert.ErrorIs(t, p.SetCoordinates(ptr(10.0), nil), shared.ErrInvalidInput)
	assert.ErrorIs(t, p.SetCoordinates(ptr(95.0), ptr(0.0)), shared.ErrInvalidInput)
	assert.ErrorIs(t, p.SetCharacteristics("GOLD", "", nil), shared.ErrInvalidInput)
	require.NoError(t, p.SetCharacteristics(RenovationEuro, BuildingClassBusiness, ptr(2015)))

	assert.True(t, decimal.NewFromInt(3750).Equal(p.PricePerSqm()))
}

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"Sunny Flat near the Park":    "sunny-flat-near-the-park",
		"Café  Résidence – São Paulo": "cafe-residence-sao-paulo",
		"  --  ":                      "listing",
		"2BR / 80m²":                  "2br-80m",
	}
	for in, want := range tests {
		assert.Equal(t, want, Slugify(in), in)
	}
}

func TestImageExtension(t *testing.T) {
	ext, err := ImageExtension("image/JPEG")
	require.NoError(t, err)
	assert.Equal(t, ".jpg", ext)

	ext, err = ImageExtension("image/webp; charset=binary")
	require.NoError(t, err)
	assert.Equal(t, ".webp", ext)

	_, err = ImageExtension("image/gif")
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	agencyID, propertyID, imageID := uuid.New(), uuid.New(), uuid.New()
	key := ImageObjectKey(agencyID, propertyID, imageID, ".png")
	assert.Equal(t, "properties/"+agencyID.String()+"/"+propertyID.String()+"/"+imageID.String()+".png", key)
}
