package geo

import "errors"

var (
	ErrEmptyBounds  = errors.New("geo: bounds of empty point set")
	ErrInvalidPoint = errors.New("geo: invalid point in bounds")
)

// Bounds is a south-west / north-east rectangle.
type Bounds struct {
	SouthWest LatLng `json:"southWest"`
	NorthEast LatLng `json:"northEast"`
}

// BoundsOf returns the smallest rectangle containing every point.
func BoundsOf(points []LatLng) (Bounds, error) {
	if len(points) == 0 {
		return Bounds{}, ErrEmptyBounds
	}
	b := Bounds{SouthWest: points[0], NorthEast: points[0]}
	for _, p := range points {
		if !p.Valid() {
			return Bounds{}, ErrInvalidPoint
		}
		b.SouthWest.Lat = min(b.SouthWest.Lat, p.Lat)
		b.SouthWest.Lng = min(b.SouthWest.Lng, p.Lng)
		b.NorthEast.Lat = max(b.NorthEast.Lat, p.Lat)
		b.NorthEast.Lng = max(b.NorthEast.Lng, p.Lng)
	}
	return b, nil
}

// Pad grows the rectangle by ratio of its height and width on every side.
func (b Bounds) Pad(ratio float64) Bounds {
	latBuf := (b.NorthEast.Lat - b.SouthWest.Lat) * ratio
	lngBuf := (b.NorthEast.Lng - b.SouthWest.Lng) * ratio
	return Bounds{
		SouthWest: LatLng{Lat: b.SouthWest.Lat - latBuf, Lng: b.SouthWest.Lng - lngBuf},
		NorthEast: LatLng{Lat: b.NorthEast.Lat + latBuf, Lng: b.NorthEast.Lng + lngBuf},
	}
}

// Center returns the midpoint of the rectangle.
func (b Bounds) Center() LatLng {
	return LatLng{
		Lat: (b.SouthWest.Lat + b.NorthEast.Lat) / 2,
		Lng: (b.SouthWest.Lng + b.NorthEast.Lng) / 2,
	}
}
