// Package stores fetches the remote store directory and normalizes it into
// canonical Store records sorted by distance from a reference coordinate.
package stores

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"storelocator/internal/geo"
)

// Display placeholders used when the directory lacks a value.
const (
	NamePlaceholder       = "N/A"
	PhonePlaceholder      = "N/A"
	AddressNotAvailable   = "Address not available"
	AddressDetailsMissing = "Address details missing"
	AddressUnavailable    = "Address unavailable"
	HoursNotAvailable     = "Not available"
	HoursClosedToday      = "Closed today"
	HoursUnavailableToday = "Hours unavailable for today"
)

// Store is the canonical, immutable store record. The collection is rebuilt
// wholesale on every load.
type Store struct {
	ID       string   `json:"id" yaml:"id"`
	Name     string   `json:"name" yaml:"name"`
	Address  string   `json:"address" yaml:"address"`
	City     string   `json:"city" yaml:"city"`
	Zip      string   `json:"zip" yaml:"zip"`
	Phone    string   `json:"phone" yaml:"phone"`
	Hours    string   `json:"hours" yaml:"hours"`
	Lat      *float64 `json:"lat,omitempty" yaml:"lat,omitempty"`
	Lng      *float64 `json:"lng,omitempty" yaml:"lng,omitempty"`
	Distance *float64 `json:"distance,omitempty" yaml:"distance,omitempty"`
}

// Position returns the store coordinate when both components are valid.
func (s Store) Position() (geo.LatLng, bool) {
	if s.Lat == nil || s.Lng == nil {
		return geo.LatLng{}, false
	}
	p := geo.LatLng{Lat: *s.Lat, Lng: *s.Lng}
	return p, p.Valid()
}

// Find returns the store with the given id.
func Find(stores []Store, id string) (Store, bool) {
	for _, s := range stores {
		if s.ID == id {
			return s, true
		}
	}
	return Store{}, false
}

// flexString accepts JSON strings and numbers; anything else decodes empty.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*f = flexString(str)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err == nil {
		*f = flexString(num.String())
		return nil
	}
	*f = ""
	return nil
}

func (f flexString) String() string {
	return string(f)
}

// flexNumber accepts numbers and numeric strings. A present but unusable
// value decodes with valid=false instead of failing the whole payload.
type flexNumber struct {
	value float64
	valid bool
}

func (f *flexNumber) UnmarshalJSON(data []byte) error {
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		*f = flexNumber{value: num, valid: true}
		return nil
	}
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		parsed, err := strconv.ParseFloat(strings.TrimSpace(str), 64)
		*f = flexNumber{value: parsed, valid: err == nil}
		return nil
	}
	*f = flexNumber{}
	return nil
}

type rawAddress struct {
	StreetName1  flexString `json:"streetName1"`
	StreetNumber flexString `json:"streetNumber"`
	PostalCode   flexString `json:"postalCode"`
	PhoneNumber  flexString `json:"phoneNumber"`
}

type rawLocation struct {
	Latitude  *flexNumber `json:"latitude"`
	Longitude *flexNumber `json:"longitude"`
}

type rawOpeningHour struct {
	Day    flexString `json:"day"`
	Opens  flexString `json:"opens"`
	Closes flexString `json:"closes"`
}

// rawStore mirrors the fields of the directory payload the mapper reads.
type rawStore struct {
	StoreCode    flexString       `json:"storeCode"`
	StoreID      flexString       `json:"storeId"`
	ID           flexString       `json:"id"`
	Name         flexString       `json:"name"`
	Address      *rawAddress      `json:"address"`
	City         flexString       `json:"city"`
	PhoneNumber  flexString       `json:"phoneNumber"`
	Phone        flexString       `json:"phone"`
	Telephone    flexString       `json:"telephone"`
	Latitude     *flexNumber      `json:"latitude"`
	Lat          *flexNumber      `json:"lat"`
	Longitude    *flexNumber      `json:"longitude"`
	Lng          *flexNumber      `json:"lng"`
	Location     *rawLocation     `json:"location"`
	OpeningHours []rawOpeningHour `json:"openingHours"`
}

type rawDirectory struct {
	Stores json.RawMessage `json:"stores"`
}

// parseDirectory decodes the payload; a missing or non-array stores field
// is a format error.
func parseDirectory(payload []byte) ([]rawStore, error) {
	var dir rawDirectory
	if err := json.Unmarshal(payload, &dir); err != nil {
		return nil, &FetchError{Reason: "API Format", Err: err}
	}
	trimmed := bytes.TrimSpace(dir.Stores)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, &FetchError{Reason: "API Format"}
	}

	var records []rawStore
	if err := json.Unmarshal(trimmed, &records); err != nil {
		return nil, &FetchError{Reason: "API Format", Err: err}
	}
	return records, nil
}
