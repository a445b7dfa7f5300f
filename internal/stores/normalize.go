package stores

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"storelocator/internal/geo"
)

// normalize maps one directory record to a Store. Aliased fields are taken
// first-match-wins in the order the directory has used them over time.
func normalize(raw rawStore, index int, ref geo.LatLng, today time.Time) Store {
	lat := firstNumber(raw.Latitude, raw.Lat, locationLat(raw.Location))
	lng := firstNumber(raw.Longitude, raw.Lng, locationLng(raw.Location))

	store := Store{
		ID:      firstNonEmpty(raw.StoreCode, raw.StoreID, raw.ID),
		Name:    firstNonEmpty(raw.Name),
		Address: formatAddress(raw.Address),
		City:    raw.City.String(),
		Phone:   firstNonEmpty(raw.PhoneNumber, raw.Phone, addressPhone(raw.Address), raw.Telephone),
		Hours:   formatOpeningHours(raw.OpeningHours, today),
		Lat:     lat,
		Lng:     lng,
	}
	if store.ID == "" {
		store.ID = fmt.Sprintf("gen-%d", index)
	}
	if store.Name == "" {
		store.Name = NamePlaceholder
	}
	if store.Phone == "" {
		store.Phone = PhonePlaceholder
	}
	if raw.Address != nil {
		store.Zip = raw.Address.PostalCode.String()
	}
	store.Distance = geo.DistancePtr(ref.Lat, ref.Lng, lat, lng)

	return store
}

// formatAddress joins street name and number.
func formatAddress(addr *rawAddress) string {
	if addr == nil {
		return AddressNotAvailable
	}
	parts := make([]string, 0, 2)
	for _, p := range []flexString{addr.StreetName1, addr.StreetNumber} {
		if strings.TrimSpace(p.String()) != "" {
			parts = append(parts, p.String())
		}
	}
	joined := strings.TrimSpace(strings.Join(parts, " "))
	if joined == "" {
		return AddressDetailsMissing
	}
	return joined
}

// formatOpeningHours describes today's hours only. Days are numbered
// Monday=1 through Sunday=7.
func formatOpeningHours(entries []rawOpeningHour, today time.Time) string {
	if len(entries) == 0 {
		return HoursNotAvailable
	}

	day := int(today.Weekday())
	if day == 0 {
		day = 7
	}

	for _, entry := range entries {
		n, err := strconv.Atoi(strings.TrimSpace(entry.Day.String()))
		if err != nil || n != day {
			continue
		}
		if entry.Opens != "" && entry.Closes != "" {
			return fmt.Sprintf("%s - %s", entry.Opens, entry.Closes)
		}
		return HoursClosedToday
	}
	return HoursUnavailableToday
}

func firstNonEmpty(values ...flexString) string {
	for _, v := range values {
		if v != "" {
			return v.String()
		}
	}
	return ""
}

// firstNumber picks the first present alias. A present alias that is not
// numeric still wins and yields no coordinate.
func firstNumber(values ...*flexNumber) *float64 {
	for _, v := range values {
		if v == nil {
			continue
		}
		if !v.valid {
			return nil
		}
		out := v.value
		return &out
	}
	return nil
}

func locationLat(loc *rawLocation) *flexNumber {
	if loc == nil {
		return nil
	}
	return loc.Latitude
}

func locationLng(loc *rawLocation) *flexNumber {
	if loc == nil {
		return nil
	}
	return loc.Longitude
}

func addressPhone(addr *rawAddress) flexString {
	if addr == nil {
		return ""
	}
	return addr.PhoneNumber
}
