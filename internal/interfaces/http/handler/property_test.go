package handler_test

import (
	"bytes"
	"net/http"
	"strings"
	"testing"

	"github.com/estatehub/backend/internal/domain/agency"
	"github.com/estatehub/backend/internal/interfaces/http/dto"
	"github.com/estatehub/backend/internal/interfaces/http/handler"
	"github.com/estatehub/backend/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pngBytes is enough of a PNG for content sniffing
var pngBytes = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), bytes.Repeat([]byte{0}, 64)...)

func createProperty(t *testing.T, env *apiEnv, actor agency.Actor, body map[string]any) handler.PropertyResponse {
	t.Helper()
	w := env.do(http.MethodPost, "/properties", &actor, body)
	requireStatus(t, w, http.StatusCreated)
	return decodeItem[handler.PropertyResponse](t, w)
}

func apartment(title, district string, price int64, lat, lng float64) map[string]any {
	return map[string]any{
		"title":          title,
		"deal_type":      "SALE",
		"property_type":  "APARTMENT",
		"price":          decimal.NewFromInt(price).String(),
		"currency":       "EUR",
		"area":           100,
		"bedrooms":       2,
		"city":           "Lisbon",
		"district":       district,
		"latitude":       lat,
		"longitude":      lng,
		"renovation":     "EURO",
		"building_class": "COMFORT",
	}
}

func TestPropertyHandler_Lifecycle(t *testing.T) {
	env := newAPIEnv(t)
	owner := env.newAgency("Casa Azul")

	created := createProperty(t, env, owner, apartment("Bright T2 in Alfama", "Alfama", 300000, 38.7115, -9.1300))
	assert.Equal(t, "DRAFT", created.Status)
	assert.Equal(t, "EUR", created.Currency)
	assert.NotEmpty(t, created.Slug)
	assert.True(t, decimal.NewFromInt(3000).Equal(created.PricePerSqm), created.PricePerSqm.String())
	path := "/properties/" + created.ID.String()

	t.Run("publish needs coordinates", func(t *testing.T) {
		body := apartment("No coordinates", "Alfama", 200000, 0, 0)
		delete(body, "latitude")
		delete(body, "longitude")
		p := createProperty(t, env, owner, body)

		w := env.do(http.MethodPost, "/properties/"+p.ID.String()+"/publish", &owner, nil)
		testutil.AssertErrorResponse(t, w, http.StatusBadRequest, dto.ErrCodeInvalidInput)
	})

	t.Run("reserve requires active", func(t *testing.T) {
		w := env.do(http.MethodPost, path+"/reserve", &owner, nil)
		testutil.AssertErrorResponse(t, w, http.StatusUnprocessableEntity, dto.ErrCodeInvalidState)
	})

	w := env.do(http.MethodPost, path+"/publish", &owner, nil)
	requireStatus(t, w, http.StatusOK)
	published := decodeItem[handler.PropertyResponse](t, w)
	assert.Equal(t, "ACTIVE", published.Status)
	require.NotNil(t, published.PublishedAt)

	t.Run("update", func(t *testing.T) {
		w := env.do(http.MethodPut, path, &owner, map[string]any{"price": "320000", "district": "Graça"})
		requireStatus(t, w, http.StatusOK)
		updated := decodeItem[handler.PropertyResponse](t, w)
		assert.True(t, decimal.NewFromInt(320000).Equal(updated.Price))
		assert.Equal(t, "Graça", updated.District)
	})

	t.Run("list by status", func(t *testing.T) {
		w := env.do(http.MethodGet, "/properties?status=active", &owner, nil)
		requireStatus(t, w, http.StatusOK)
		page := decodePage[handler.PropertyResponse](t, w)
		require.Len(t, page.Data, 1)
		assert.Equal(t, created.ID, page.Data[0].ID)
	})

	w = env.do(http.MethodPost, path+"/reserve", &owner, nil)
	requireStatus(t, w, http.StatusOK)
	assert.Equal(t, "RESERVED", decodeItem[handler.PropertyResponse](t, w).Status)

	w = env.do(http.MethodPost, path+"/sold", &owner, nil)
	requireStatus(t, w, http.StatusOK)
	assert.Equal(t, "SOLD", decodeItem[handler.PropertyResponse](t, w).Status)

	t.Run("sold twice", func(t *testing.T) {
		w := env.do(http.MethodPost, path+"/sold", &owner, nil)
		testutil.AssertErrorResponse(t, w, http.StatusUnprocessableEntity, dto.ErrCodeInvalidState)
	})

	w = env.do(http.MethodPost, path+"/archive", &owner, nil)
	requireStatus(t, w, http.StatusOK)
	assert.Equal(t, "ARCHIVED", decodeItem[handler.PropertyResponse](t, w).Status)

	t.Run("delete", func(t *testing.T) {
		w := env.do(http.MethodDelete, path, &owner, nil)
		requireStatus(t, w, http.StatusNoContent)

		w = env.do(http.MethodGet, path, &owner, nil)
		testutil.AssertErrorResponse(t, w, http.StatusNotFound, dto.ErrCodeNotFound)
	})
}

func TestPropertyHandler_Validation(t *testing.T) {
	env := newAPIEnv(t)
	owner := env.newAgency("Casa Azul")

	body := apartment("Castle view", "Castelo", 250000, 38.71, -9.13)
	body["deal_type"] = "LEASEHOLD"
	w := env.do(http.MethodPost, "/properties", &owner, body)
	testutil.AssertErrorResponse(t, w, http.StatusBadRequest, dto.ErrCodeInvalidInput)

	body = apartment("Castle view", "Castelo", 250000, 38.71, -9.13)
	delete(body, "city")
	w = env.do(http.MethodPost, "/properties", &owner, body)
	testutil.AssertErrorResponse(t, w, http.StatusBadRequest, dto.ErrCodeValidation)
}

func TestPropertyHandler_Images(t *testing.T) {
	env := newAPIEnv(t)
	owner := env.newAgency("Casa Azul")
	stranger := env.newAgency("Casa Verde")
	p := createProperty(t, env, owner, apartment("Loft in Bairro Alto", "Bairro Alto", 410000, 38.7130, -9.1450))
	path := "/properties/" + p.ID.String() + "/images"

	w := env.upload(path, &owner, "image", "front.png", "application/octet-stream", pngBytes)
	requireStatus(t, w, http.StatusCreated)
	first := decodeItem[handler.ImageResponse](t, w)
	assert.Equal(t, "image/png", first.ContentType)
	assert.Equal(t, int64(len(pngBytes)), first.Size)
	require.True(t, strings.HasPrefix(first.URL, "https://cdn.test/uploads/properties/"), first.URL)
	assert.True(t, strings.HasSuffix(first.URL, ".png"), first.URL)

	key := strings.TrimPrefix(first.URL, "https://cdn.test/uploads/")
	obj, ok := env.images.Get(key)
	require.True(t, ok)
	assert.Equal(t, pngBytes, obj.Data)
	assert.Equal(t, "image/png", obj.ContentType)

	w = env.upload(path, &owner, "image", "back.png", "image/png", pngBytes)
	requireStatus(t, w, http.StatusCreated)
	second := decodeItem[handler.ImageResponse](t, w)
	assert.Greater(t, second.Position, first.Position)

	t.Run("gallery is returned with the listing", func(t *testing.T) {
		w := env.do(http.MethodGet, "/properties/"+p.ID.String(), &owner, nil)
		requireStatus(t, w, http.StatusOK)
		assert.Len(t, decodeItem[handler.PropertyResponse](t, w).Images, 2)
	})

	t.Run("rejects non images", func(t *testing.T) {
		w := env.upload(path, &owner, "image", "notes.png", "image/png", []byte("just some text pretending"))
		testutil.AssertErrorResponse(t, w, http.StatusBadRequest, dto.ErrCodeInvalidInput)
	})

	t.Run("requires the image field", func(t *testing.T) {
		w := env.upload(path, &owner, "photo", "front.png", "image/png", pngBytes)
		testutil.AssertErrorResponse(t, w, http.StatusBadRequest, dto.ErrCodeInvalidInput)
	})

	t.Run("other agencies cannot upload", func(t *testing.T) {
		w := env.upload(path, &stranger, "image", "front.png", "image/png", pngBytes)
		testutil.AssertErrorResponse(t, w, http.StatusForbidden, dto.ErrCodeForbidden)
	})

	w = env.do(http.MethodDelete, path+"/"+first.ID.String(), &owner, nil)
	requireStatus(t, w, http.StatusNoContent)
	_, ok = env.images.Get(key)
	assert.False(t, ok)

	w = env.do(http.MethodDelete, path+"/"+first.ID.String(), &owner, nil)
	testutil.AssertErrorResponse(t, w, http.StatusNotFound, dto.ErrCodeNotFound)
}

func TestPropertyHandler_AgencyIsolation(t *testing.T) {
	env := newAPIEnv(t)
	owner := env.newAgency("Casa Azul")
	stranger := env.newAgency("Casa Verde")
	p := createProperty(t, env, owner, apartment("Quiet T1", "Campo de Ourique", 280000, 38.7180, -9.1650))

	w := env.do(http.MethodGet, "/properties/"+p.ID.String(), &stranger, nil)
	testutil.AssertErrorResponse(t, w, http.StatusForbidden, dto.ErrCodeForbidden)

	w = env.do(http.MethodPost, "/properties/"+p.ID.String()+"/publish", &stranger, nil)
	testutil.AssertErrorResponse(t, w, http.StatusForbidden, dto.ErrCodeForbidden)

	w = env.do(http.MethodGet, "/properties", &stranger, nil)
	requireStatus(t, w, http.StatusOK)
	assert.Empty(t, decodePage[handler.PropertyResponse](t, w).Data)
}
