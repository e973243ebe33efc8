package valueobject

import (
	"fmt"
	"math"
)

// EarthRadiusMeters is the mean Earth radius used by Haversine distance
const EarthRadiusMeters = 6371008.8

// GeoPoint is an immutable WGS84 coordinate
type GeoPoint struct {
	lat float64
	lng float64
}

// NewGeoPoint validates and creates a coordinate
func NewGeoPoint(lat, lng float64) (GeoPoint, error) {
	if math.IsNaN(lat) || lat < -90 || lat > 90 {
		return GeoPoint{}, fmt.Errorf("latitude must be between -90 and 90, got %v", lat)
	}
	if math.IsNaN(lng) || lng < -180 || lng > 180 {
		return GeoPoint{}, fmt.Errorf("longitude must be between -180 and 180, got %v", lng)
	}
	return GeoPoint{lat: lat, lng: lng}, nil
}

// MustGeoPoint is NewGeoPoint for constants and tests
func MustGeoPoint(lat, lng float64) GeoPoint {
	p, err := NewGeoPoint(lat, lng)
	if err != nil {
		panic(err)
	}
	return p
}

// Lat returns the latitude in degrees
func (p GeoPoint) Lat() float64 { return p.lat }

// Lng returns the longitude in degrees
func (p GeoPoint) Lng() float64 { return p.lng }

// String renders the point as "lat,lng"
func (p GeoPoint) String() string {
	return fmt.Sprintf("%.6f,%.6f", p.lat, p.lng)
}

// DistanceMeters returns the great-circle distance to other using the Haversine formula
func (p GeoPoint) DistanceMeters(other GeoPoint) float64 {
	return HaversineMeters(p.lat, p.lng, other.lat, other.lng)
}

// DistanceKm returns the great-circle distance in kilometers
func (p GeoPoint) DistanceKm(other GeoPoint) float64 {
	return p.DistanceMeters(other) / 1000
}

// BoundingBox returns the lat/lng box that contains every point within radiusMeters.
// Used to prefilter rows in SQL before the exact Haversine check.
func (p GeoPoint) BoundingBox(radiusMeters float64) (minLat, maxLat, minLng, maxLng float64) {
	latDelta := radiusMeters / EarthRadiusMeters * 180 / math.Pi
	cosLat := math.Cos(p.lat * math.Pi / 180)
	lngDelta := 180.0
	if cosLat > 1e-9 {
		lngDelta = math.Min(180, latDelta/cosLat)
	}
	return math.Max(-90, p.lat-latDelta), math.Min(90, p.lat+latDelta),
		math.Max(-180, p.lng-lngDelta), math.Min(180, p.lng+lngDelta)
}

// HaversineMeters computes the great-circle distance between two coordinates in meters
func HaversineMeters(lat1, lng1, lat2, lng2 float64) float64 {
	const rad = math.Pi / 180
	dLat := (lat2 - lat1) * rad
	dLng := (lng2 - lng1) * rad
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*rad)*math.Cos(lat2*rad)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusMeters * c
}
