package mapview

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"storelocator/internal/geo"
	"storelocator/internal/locator"
	"storelocator/platform/deps"
	"storelocator/platform/logger"
)

type testMapConfig struct {
	js, css string
	check   bool
}

func (c testMapConfig) GetMapLibraryJS() string     { return c.js }
func (c testMapConfig) GetMapLibraryCSS() string    { return c.css }
func (testMapConfig) GetMapTileURL() string         { return "https://tiles.test/{z}/{x}/{y}.png" }
func (testMapConfig) GetMapTileAttribution() string { return "© OSM" }
func (c testMapConfig) GetMapLibraryCheck() bool    { return c.check }

func markers() []locator.Marker {
	return []locator.Marker{
		{ID: "A1", Position: geo.LatLng{Lat: 55.6, Lng: 13.0}, Popup: "<b>A</b><br>a"},
		{ID: "B2", Position: geo.LatLng{Lat: 55.7, Lng: 13.2}, Popup: "<b>B</b><br>b"},
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestPopupOpensAfterDelay(t *testing.T) {
	s := NewScene()
	defer s.Close()
	s.ReplaceMarkers(markers())
	s.FlyTo(geo.LatLng{Lat: 55.6, Lng: 13.0}, 14, 800*time.Millisecond)
	s.OpenPopupAfter("A1", 20*time.Millisecond)

	if v := s.Snapshot(); v.OpenPopup != "" || v.PendingPopup != "A1" {
		t.Fatalf("popup opened too early: %+v", v)
	}
	waitFor(t, func() bool { return s.Snapshot().OpenPopup == "A1" })

	v := s.Snapshot()
	if v.Viewport.Mode != ModeFlyTo || v.Viewport.Zoom != 14 || v.PendingPopup != "" {
		t.Fatalf("viewport = %+v", v.Viewport)
	}
}

func TestClosePopupCancelsPending(t *testing.T) {
	s := NewScene()
	defer s.Close()
	s.ReplaceMarkers(markers())
	s.OpenPopupAfter("A1", 20*time.Millisecond)
	s.ClosePopup()
	time.Sleep(60 * time.Millisecond)
	if v := s.Snapshot(); v.OpenPopup != "" || v.PendingPopup != "" {
		t.Fatalf("popup should stay closed: %+v", v)
	}
}

func TestNewerPopupReplacesPending(t *testing.T) {
	s := NewScene()
	defer s.Close()
	s.ReplaceMarkers(markers())
	s.OpenPopupAfter("A1", 10*time.Millisecond)
	s.OpenPopupAfter("B2", 10*time.Millisecond)
	waitFor(t, func() bool { return s.Snapshot().OpenPopup == "B2" })
}

func TestReplaceMarkersClosesStalePopup(t *testing.T) {
	s := NewScene()
	s.ReplaceMarkers(markers())
	s.OpenPopupAfter("B2", time.Millisecond)
	waitFor(t, func() bool { return s.Snapshot().OpenPopup == "B2" })
	s.ReplaceMarkers(markers()[:1])
	if v := s.Snapshot(); v.OpenPopup != "" || len(v.Markers) != 1 {
		t.Fatalf("view = %+v", v)
	}
}

func TestViewportModes(t *testing.T) {
	s := NewScene()
	s.SetView(locator.DefaultCenter, locator.DefaultZoom)
	if v := s.Snapshot().Viewport; v.Mode != ModeCenter || v.Zoom != 5 {
		t.Fatalf("viewport = %+v", v)
	}
	b, err := geo.BoundsOf([]geo.LatLng{{Lat: 55, Lng: 13}, {Lat: 59, Lng: 18}})
	if err != nil {
		t.Fatalf("BoundsOf: %v", err)
	}
	s.FitBounds(b.Pad(0.3))
	v := s.Snapshot().Viewport
	if v.Mode != ModeBounds || v.Bounds == nil || v.Bounds.SouthWest.Lat >= 55 {
		t.Fatalf("viewport = %+v", v)
	}
}

func TestMarkerClick(t *testing.T) {
	s := NewScene()
	s.ReplaceMarkers(markers())
	var clicked string
	s.OnMarkerClick(func(id string) { clicked = id })
	if !s.Click("B2") || clicked != "B2" {
		t.Fatalf("clicked = %q", clicked)
	}
	if s.Click("missing") {
		t.Fatal("click on a missing marker should be ignored")
	}
}

func TestLibraryHandleWithoutCheck(t *testing.T) {
	h := NewLibraryHandle(testMapConfig{js: "a.js", css: "a.css"}, nil, logger.Nop())
	scene := NewScene()
	view, err := Loader(h, scene)(context.Background())
	if err != nil {
		t.Fatalf("Loader: %v", err)
	}
	if view != scene || scene.Snapshot().Library.ScriptURL != "a.js" {
		t.Fatalf("scene library = %+v", scene.Snapshot().Library)
	}
}

func TestLibraryHandleChecksAssets(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/leaflet.css" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	ok := NewLibraryHandle(testMapConfig{js: srv.URL + "/leaflet.js", css: srv.URL + "/leaflet.js", check: true}, srv.Client(), logger.Nop())
	if _, err := ok.Get(context.Background()); err != nil {
		t.Fatalf("Get: %v", err)
	}

	broken := NewLibraryHandle(testMapConfig{js: srv.URL + "/leaflet.js", css: srv.URL + "/leaflet.css", check: true}, srv.Client(), logger.Nop())
	_, err := Loader(broken, NewScene())(context.Background())
	var loadErr *deps.LoadError
	if !errors.As(err, &loadErr) || loadErr.Name != LibraryName {
		t.Fatalf("Loader error = %v", err)
	}
}
