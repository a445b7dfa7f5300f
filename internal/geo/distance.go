// Package geo resolves the reference coordinate used for distance sorting
// and provides the great-circle math shared by the store and map layers.
package geo

import "math"

// EarthRadiusKm is the mean Earth radius used by Distance.
const EarthRadiusKm = 6371.0

// LatLng is a WGS84 coordinate pair.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Valid reports whether both components are finite numbers.
func (p LatLng) Valid() bool {
	return isFinite(p.Lat) && isFinite(p.Lng)
}

// Distance returns the haversine distance in kilometers between two points.
// ok is false when any input is not a finite number.
func Distance(lat1, lon1, lat2, lon2 float64) (km float64, ok bool) {
	if !isFinite(lat1) || !isFinite(lon1) || !isFinite(lat2) || !isFinite(lon2) {
		return 0, false
	}

	dLat := toRadians(lat2 - lat1)
	dLon := toRadians(lon2 - lon1)
	rLat1 := toRadians(lat1)
	rLat2 := toRadians(lat2)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Sin(dLon/2)*math.Sin(dLon/2)*math.Cos(rLat1)*math.Cos(rLat2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusKm * c, true
}

// DistancePtr is Distance for optional store coordinates; it yields nil
// whenever a distance cannot be computed.
func DistancePtr(refLat, refLon float64, lat, lng *float64) *float64 {
	if lat == nil || lng == nil {
		return nil
	}
	km, ok := Distance(refLat, refLon, *lat, *lng)
	if !ok {
		return nil
	}
	return &km
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
