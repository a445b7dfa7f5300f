// Package locator keeps the store list, the map and the page URL in sync.
//
// A Session owns one explicit state object (loaded stores, search term,
// selection, load status). Filtered stores and markers are pure derivations
// of that state; every change is pushed to three ports: a ListView, a
// MapView and a History.
package locator

import (
	"context"
	"net/url"
	"time"

	"storelocator/internal/geo"
	"storelocator/internal/stores"
)

// ListEntry is one rendered row of the list panel.
type ListEntry struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	AddressLine   string `json:"addressLine"`
	Phone         string `json:"phone"`
	PhoneHref     string `json:"phoneHref,omitempty"`
	Hours         string `json:"hours"`
	Distance      string `json:"distance,omitempty"`
	DetailsURL    string `json:"detailsUrl"`
	DirectionsURL string `json:"directionsUrl,omitempty"`
	Selected      bool   `json:"selected"`
}

// ListView is the list panel. ShowFatal replaces the whole widget root.
type ListView interface {
	ShowLoading()
	ShowError(reason string)
	Render(entries []ListEntry)
	SetHighlighted(id string, on bool)
	ScrollIntoView(id string)
	SetFooter(text string)
	SetSearchEnabled(enabled bool)
	ShowFatal(message string)
}

// Marker is one map pin.
type Marker struct {
	ID       string     `json:"id"`
	Position geo.LatLng `json:"position"`
	Popup    string     `json:"popup"`
}

// MapView is the interactive map.
type MapView interface {
	ReplaceMarkers(markers []Marker)
	FitBounds(bounds geo.Bounds)
	SetView(center geo.LatLng, zoom int)
	FlyTo(center geo.LatLng, zoom int, duration time.Duration)
	OpenPopupAfter(id string, delay time.Duration)
	ClosePopup()
}

// MapLoader yields the map once its library dependency is available.
type MapLoader func(ctx context.Context) (MapView, error)

// History is the page URL. Push records a new entry without navigating.
type History interface {
	Current() *url.URL
	Push(u *url.URL)
}

// LocationResolver resolves the reference coordinate; it never fails.
type LocationResolver interface {
	Resolve(ctx context.Context) geo.Reference
}

// StoreLoader loads the sorted store collection.
type StoreLoader interface {
	Load(ctx context.Context, refLat, refLon float64) ([]stores.Store, error)
}
