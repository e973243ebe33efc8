package valueobject

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGeoPoint(t *testing.T) {
	tests := []struct {
		name    string
		lat     float64
		lng     float64
		wantErr bool
	}{
		{name: "valid point", lat: 43.238949, lng: 76.889709},
		{name: "poles and antimeridian", lat: -90, lng: 180},
		{name: "latitude too large", lat: 90.1, lng: 0, wantErr: true},
		{name: "longitude too small", lat: 0, lng: -180.5, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewGeoPoint(tt.lat, tt.lng)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.lat, p.Lat())
			assert.Equal(t, tt.lng, p.Lng())
		})
	}
}

func TestHaversineMeters(t *testing.T) {
	t.Run("same point is zero", func(t *testing.T) {
		assert.InDelta(t, 0, HaversineMeters(51.5, -0.12, 51.5, -0.12), 1e-9)
	})

	t.Run("one degree of latitude is about 111km", func(t *testing.T) {
		assert.InDelta(t, 111195, HaversineMeters(0, 0, 1, 0), 50)
	})

	t.Run("london to paris", func(t *testing.T) {
		london := MustGeoPoint(51.5074, -0.1278)
		paris := MustGeoPoint(48.8566, 2.3522)
		assert.InDelta(t, 343.5, london.DistanceKm(paris), 1.0)
	})

	t.Run("symmetric", func(t *testing.T) {
		a := MustGeoPoint(43.2389, 76.8897)
		b := MustGeoPoint(43.2567, 76.9286)
		assert.InDelta(t, a.DistanceMeters(b), b.DistanceMeters(a), 1e-6)
	})
}

func TestGeoPoint_BoundingBox(t *testing.T) {
	center := MustGeoPoint(43.2389, 76.8897)
	minLat, maxLat, minLng, maxLng := center.BoundingBox(1600)

	assert.Less(t, minLat, center.Lat())
	assert.Greater(t, maxLat, center.Lat())
	assert.Less(t, minLng, center.Lng())
	assert.Greater(t, maxLng, center.Lng())

	// A point on the box edge along the meridian is about radius away
	north := MustGeoPoint(maxLat, center.Lng())
	assert.InDelta(t, 1600, center.DistanceMeters(north), 1)
}
