// Package geo provides great-circle distance helpers for store coordinates.
package geo

import (
	"errors"
	"math"
	"strconv"

	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
)

// EarthRadiusKm is the mean Earth radius used by every distance in the service.
const EarthRadiusKm = 6371.0

// ErrInvalidCoordinate is returned in strict mode for out-of-range latitude or longitude.
var ErrInvalidCoordinate = errors.New("invalid coordinate")

// CoordinateError describes which coordinate was out of range.
type CoordinateError struct {
	Field string
	Value float64
}

func (e *CoordinateError) Error() string {
	return "invalid coordinate: " + e.Field + " " + strconv.FormatFloat(e.Value, 'f', -1, 64) + " out of range"
}

// Is lets errors.Is match ErrInvalidCoordinate.
func (e *CoordinateError) Is(target error) bool {
	return target == ErrInvalidCoordinate
}

// HaversineKm calculates the great-circle distance between two points in kilometers.
// Inputs are not validated; use DistanceKmStrict when coordinates come from callers.
func HaversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusKm * c
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}

// ValidateCoordinate checks latitude is in [-90, 90] and longitude in [-180, 180].
func ValidateCoordinate(lat, lon float64) error {
	if math.IsNaN(lat) || lat < -90 || lat > 90 {
		return &CoordinateError{Field: "latitude", Value: lat}
	}
	if math.IsNaN(lon) || lon < -180 || lon > 180 {
		return &CoordinateError{Field: "longitude", Value: lon}
	}
	return nil
}

// DistanceKmStrict validates both points before computing the Haversine distance.
func DistanceKmStrict(lat1, lon1, lat2, lon2 float64) (float64, error) {
	if err := ValidateCoordinate(lat1, lon1); err != nil {
		return 0, err
	}
	if err := ValidateCoordinate(lat2, lon2); err != nil {
		return 0, err
	}
	return HaversineKm(lat1, lon1, lat2, lon2), nil
}

// RoundKm rounds a distance for display. Comparisons must use the unrounded value.
func RoundKm(km float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(km*p) / p
}

// BoundingRect returns a lat/lng rectangle containing every point within radiusKm
// of the center. The cap is padded slightly so the rectangle never excludes a point
// the Haversine check would accept.
func BoundingRect(lat, lon, radiusKm float64) s2.Rect {
	center := s2.PointFromLatLng(s2.LatLngFromDegrees(lat, lon))
	padded := radiusKm*1.01 + 0.01
	angle := s1.Angle(padded / EarthRadiusKm)
	if angle > s1.Angle(math.Pi) {
		return s2.FullRect()
	}
	return s2.CapFromCenterAngle(center, angle).RectBound()
}

// InRect reports whether the point lies inside the rectangle.
func InRect(r s2.Rect, lat, lon float64) bool {
	return r.ContainsLatLng(s2.LatLngFromDegrees(lat, lon))
}
