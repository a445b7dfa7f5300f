package locatorapi

import (
	"storelocator/internal/geo"
	"storelocator/internal/listview"
	"storelocator/internal/mapview"
	"storelocator/internal/stores"
)

// PositionQuery carries the device position the browser obtained, or the
// location error it observed instead. Lat and Lon come as a pair.
type PositionQuery struct {
	Lat           *float64 `form:"lat" validate:"omitempty,latitude"`
	Lon           *float64 `form:"lon" validate:"omitempty,longitude"`
	LocationError string   `form:"locationError" validate:"omitempty,oneof=permission_denied position_unavailable timeout unsupported"`
}

type positioned interface {
	position() PositionQuery
}

func (p *PositionQuery) position() PositionQuery { return *p }

// Where a selection click came from.
const (
	ViaList   = "list"
	ViaMarker = "marker"
)

// LocatorRequest drives one locator session. Select is a click on a list
// item, or on a map marker when Via is "marker".
type LocatorRequest struct {
	PositionQuery
	Query     string `form:"q" validate:"max=200"`
	StoreCode string `form:"storeCode" validate:"max=100"`
	Select    string `form:"select" validate:"max=100"`
	Via       string `form:"via" validate:"omitempty,oneof=list marker"`
}

// StoresRequest lists stores sorted by distance and optionally filtered.
type StoresRequest struct {
	PositionQuery
	Query string `form:"q" validate:"max=200"`
}

// QRRequest sizes the deep-link QR code.
type QRRequest struct {
	Size int `form:"size" validate:"omitempty,min=64,max=1024"`
}

// SessionSnapshot is the full outcome of one locator session.
type SessionSnapshot struct {
	Location  geo.Reference  `json:"location"`
	Term      string         `json:"term"`
	Selected  string         `json:"selected,omitempty"`
	URL       string         `json:"url"`
	Footer    string         `json:"footer"`
	Total     int            `json:"total"`
	Error     string         `json:"error,omitempty"`
	Fatal     string         `json:"fatal,omitempty"`
	Stores    []stores.Store `json:"stores"`
	List      listview.View  `json:"list"`
	Map       mapview.View   `json:"map"`
}

// StoresResponse is the store list payload.
type StoresResponse struct {
	Location geo.Reference  `json:"location"`
	Count    int            `json:"count"`
	Stores   []stores.Store `json:"stores"`
}
