package locator

import (
	"fmt"
	"html"
	"strings"

	"storelocator/internal/stores"
	"storelocator/platform/phone"
)

// AddressLine joins street address, city and zip for the list panel,
// skipping placeholders.
func AddressLine(s stores.Store) string {
	parts := make([]string, 0, 3)
	if s.Address != "" && !isAddressPlaceholder(s.Address) {
		parts = append(parts, s.Address)
	}
	if s.City != "" {
		parts = append(parts, s.City)
	}
	if s.Zip != "" {
		parts = append(parts, s.Zip)
	}
	if len(parts) == 0 {
		return stores.AddressNotAvailable
	}
	return strings.Join(parts, ", ")
}

func isAddressPlaceholder(v string) bool {
	switch v {
	case stores.AddressUnavailable, stores.AddressDetailsMissing, stores.AddressNotAvailable:
		return true
	}
	return false
}

// FormatDistance renders a distance with one decimal, or "" when unknown.
func FormatDistance(km *float64) string {
	if km == nil {
		return ""
	}
	return fmt.Sprintf("%.1f km", *km)
}

// PopupHTML is the marker popup body. Store text is escaped.
func PopupHTML(s stores.Store) string {
	return "<b>" + html.EscapeString(s.Name) + "</b><br>" + html.EscapeString(s.Address)
}

func buildEntry(s stores.Store, selected string, links Links) ListEntry {
	e := ListEntry{
		ID:          s.ID,
		Name:        s.Name,
		AddressLine: AddressLine(s),
		Phone:       s.Phone,
		Hours:       s.Hours,
		Distance:    FormatDistance(s.Distance),
		DetailsURL:  links.DetailsURL(s.ID),
		Selected:    s.ID == selected,
	}
	if s.Phone != "" && s.Phone != stores.PhonePlaceholder {
		e.PhoneHref = phone.TelHref(s.Phone)
	} else {
		e.Phone = stores.PhonePlaceholder
	}
	if pos, ok := s.Position(); ok {
		e.DirectionsURL = DirectionsURL(pos.Lat, pos.Lng)
	}
	return e
}

func buildMarkers(list []stores.Store) (markers []Marker, skipped int) {
	markers = make([]Marker, 0, len(list))
	for _, s := range list {
		pos, ok := s.Position()
		if !ok {
			skipped++
			continue
		}
		markers = append(markers, Marker{ID: s.ID, Position: pos, Popup: PopupHTML(s)})
	}
	return markers, skipped
}
