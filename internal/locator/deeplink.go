package locator

import (
	"fmt"
	"net/url"
	"strconv"

	"storelocator/platform/config"
)

const directionsBase = "https://www.google.com/maps/dir/"

// Links builds deep links and reads the selection parameter from page URLs.
type Links struct {
	Param       string
	LandingPage string
}

// NewLinks reads the deep-link settings from cfg.
func NewLinks(cfg config.LinkConfig) Links {
	return Links{Param: cfg.GetDeepLinkParam(), LandingPage: cfg.GetLandingPagePath()}
}

// Read returns the store id carried by u, or "".
func (l Links) Read(u *url.URL) string {
	if u == nil {
		return ""
	}
	return u.Query().Get(l.Param)
}

// Apply returns a copy of u whose selection parameter is set to id, or
// removed when id is empty. Other parameters are kept.
func (l Links) Apply(u *url.URL, id string) *url.URL {
	next := *u
	q := next.Query()
	if id == "" {
		q.Del(l.Param)
	} else {
		q.Set(l.Param, id)
	}
	next.RawQuery = q.Encode()
	return &next
}

// DetailsURL is the landing page link for one store.
func (l Links) DetailsURL(id string) string {
	return l.LandingPage + "?" + l.Param + "=" + url.QueryEscape(id)
}

// DirectionsURL is the external directions link to a coordinate.
func DirectionsURL(lat, lng float64) string {
	return fmt.Sprintf("%s?api=1&destination=%s,%s", directionsBase,
		strconv.FormatFloat(lat, 'f', -1, 64),
		strconv.FormatFloat(lng, 'f', -1, 64))
}

// relative renders the path and query the way the address bar shows them.
func relative(u *url.URL) string {
	if u == nil {
		return ""
	}
	if u.RawQuery == "" {
		return u.EscapedPath()
	}
	return u.EscapedPath() + "?" + u.RawQuery
}
