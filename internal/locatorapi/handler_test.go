package locatorapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	apphttp "storelocator/internal/http"
	"storelocator/internal/http/router"
	"storelocator/internal/mapview"
	"storelocator/internal/stores"
	"storelocator/platform/deps"
	"storelocator/platform/logger"
	"storelocator/platform/metrics"
	"storelocator/platform/validator"

	"github.com/gin-gonic/gin"
)

type testConfig struct{}

func (testConfig) GetHTTPAddr() string               { return ":0" }
func (testConfig) GetCORSAllowAll() bool             { return true }
func (testConfig) GetCORSOrigins() []string          { return nil }
func (testConfig) GetRateLimitRPS() float64          { return 0 }
func (testConfig) GetRateLimitBurst() int            { return 0 }
func (testConfig) GetFallbackLat() float64           { return 55.60498 }
func (testConfig) GetFallbackLon() float64           { return 13.00382 }
func (testConfig) GetFallbackLabel() string          { return "Distance from Malmö." }
func (testConfig) GetLocationTimeout() time.Duration { return time.Second }
func (testConfig) GetLocationMaxAge() time.Duration  { return time.Minute }
func (testConfig) GetAppBaseURL() string             { return "https://stores.example.com" }
func (testConfig) GetLandingPagePath() string        { return "landingpage.html" }
func (testConfig) GetDeepLinkParam() string          { return "storeCode" }

type fakeLoader struct {
	list []stores.Store
	err  error
}

func (f fakeLoader) Load(_ context.Context, refLat, refLon float64) ([]stores.Store, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]stores.Store, len(f.list))
	copy(out, f.list)
	return out, nil
}

func ptr(v float64) *float64 { return &v }

func sampleStores() []stores.Store {
	return []stores.Store{
		{ID: "A1", Name: "H&M Triangeln", Address: "Södra Förstadsgatan 41", City: "Malmö", Zip: "21143", Phone: "040-123 45", Hours: "10:00 - 20:00", Lat: ptr(55.594), Lng: ptr(13.0), Distance: ptr(1.2)},
		{ID: "B2", Name: "H&M Lund", Address: "Stortorget 1", City: "Lund", Zip: "22223", Phone: "N/A", Hours: "Closed today", Lat: ptr(55.7), Lng: ptr(13.19), Distance: ptr(16.2)},
	}
}

func newTestEngine(t *testing.T, loader fakeLoader, lib *deps.Handle[mapview.Library]) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	if lib == nil {
		lib = deps.Resolved(mapview.LibraryName, mapview.Library{ScriptURL: "leaflet.js"})
	}
	log := logger.Nop()
	m := metrics.New()
	module := NewModule(loader, lib, testConfig{}, validator.New(), log, m)
	return router.New(&apphttp.App{
		Config:  testConfig{},
		Logger:  log,
		Metrics: m,
		Modules: []apphttp.Module{module},
	})
}

func get(engine *gin.Engine, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %s: %v", rec.Body.String(), err)
	}
	return v
}

func TestHealthAndMetrics(t *testing.T) {
	engine := newTestEngine(t, fakeLoader{list: sampleStores()}, nil)
	if rec := get(engine, "/api/health"); rec.Code != http.StatusOK {
		t.Fatalf("health = %d", rec.Code)
	}
	if rec := get(engine, "/api/v1/locator"); rec.Code != http.StatusOK {
		t.Fatalf("locator = %d", rec.Code)
	}
	rec := get(engine, "/metrics")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "sessions_total") {
		t.Fatalf("metrics = %d %s", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Fatal("missing request id header")
	}
}

func TestLocatorSession(t *testing.T) {
	engine := newTestEngine(t, fakeLoader{list: sampleStores()}, nil)

	rec := get(engine, "/api/v1/locator?lat=55.6&lon=13.0&storeCode=B2")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d %s", rec.Code, rec.Body.String())
	}
	snap := decode[SessionSnapshot](t, rec)
	if !snap.Location.FromDevice || snap.Location.Label != "Distance from your location." {
		t.Fatalf("location = %+v", snap.Location)
	}
	if snap.Selected != "B2" || snap.URL != "/?storeCode=B2" {
		t.Fatalf("selected=%q url=%q", snap.Selected, snap.URL)
	}
	if snap.Footer != "2 store(s) found. Distance from your location." {
		t.Fatalf("footer = %q", snap.Footer)
	}
	if snap.Map.Viewport.Mode != mapview.ModeFlyTo || snap.Map.PendingPopup != "B2" {
		t.Fatalf("map = %+v", snap.Map)
	}
	if snap.List.Highlighted != "B2" || !strings.Contains(snap.List.HTML, "store-item-B2") {
		t.Fatalf("list = %+v", snap.List)
	}
}

func TestLocatorSearchAndSelect(t *testing.T) {
	engine := newTestEngine(t, fakeLoader{list: sampleStores()}, nil)

	snap := decode[SessionSnapshot](t, get(engine, "/api/v1/locator?storeCode=A1&q=lund"))
	if snap.Selected != "" || snap.URL != "/" || len(snap.Stores) != 1 {
		t.Fatalf("search should drop excluded selection: %+v", snap)
	}
	if snap.Location.FromDevice || snap.Footer != "1 store(s) found. Distance from Malmö." {
		t.Fatalf("footer = %q", snap.Footer)
	}

	snap = decode[SessionSnapshot](t, get(engine, "/api/v1/locator?select=A1"))
	if snap.Selected != "A1" || snap.URL != "/?storeCode=A1" {
		t.Fatalf("selected=%q url=%q", snap.Selected, snap.URL)
	}

	snap = decode[SessionSnapshot](t, get(engine, "/api/v1/locator?storeCode=A1&select=A1"))
	if snap.Selected != "" || snap.URL != "/" {
		t.Fatalf("toggle: selected=%q url=%q", snap.Selected, snap.URL)
	}

	if rec := get(engine, "/api/v1/locator?select=ZZ"); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown select = %d", rec.Code)
	}
}

func TestLocatorSelectVia(t *testing.T) {
	list := append(sampleStores(), stores.Store{ID: "C3", Name: "H&M Online", City: "Stockholm"})
	engine := newTestEngine(t, fakeLoader{list: list}, nil)

	snap := decode[SessionSnapshot](t, get(engine, "/api/v1/locator?select=B2&via=marker"))
	if snap.Selected != "B2" || snap.Map.PendingPopup != "B2" {
		t.Fatalf("marker click: selected=%q popup=%q", snap.Selected, snap.Map.PendingPopup)
	}

	snap = decode[SessionSnapshot](t, get(engine, "/api/v1/locator?select=C3&via=list"))
	if snap.Selected != "C3" || snap.URL != "/?storeCode=C3" {
		t.Fatalf("list click: selected=%q url=%q", snap.Selected, snap.URL)
	}

	if rec := get(engine, "/api/v1/locator?select=C3&via=marker"); rec.Code != http.StatusNotFound {
		t.Fatalf("marker click without marker = %d", rec.Code)
	}
}

func TestLocatorFetchErrorIsPartOfSnapshot(t *testing.T) {
	engine := newTestEngine(t, fakeLoader{err: &stores.FetchError{Reason: "HTTP 500", Status: 500}}, nil)
	rec := get(engine, "/api/v1/locator?locationError=permission_denied")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	snap := decode[SessionSnapshot](t, rec)
	if snap.Error != "HTTP 500" || snap.Footer != " Distance from Malmö." {
		t.Fatalf("snapshot = %+v", snap)
	}
	if !strings.Contains(snap.List.HTML, "Error loading stores: HTTP 500") {
		t.Fatalf("html = %q", snap.List.HTML)
	}
}

func TestLocatorMapFailure(t *testing.T) {
	lib := deps.New(mapview.LibraryName, func(context.Context) (mapview.Library, error) {
		return mapview.Library{}, errors.New("HTTP 404")
	}, logger.Nop())
	engine := newTestEngine(t, fakeLoader{list: sampleStores()}, lib)

	rec := get(engine, "/api/v1/locator")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decode[map[string]any](t, rec)
	details, _ := body["details"].(string)
	if !strings.HasPrefix(details, "Error: Store locator could not be loaded.") {
		t.Fatalf("details = %q", details)
	}
}

func TestLocatorValidation(t *testing.T) {
	engine := newTestEngine(t, fakeLoader{list: sampleStores()}, nil)
	for _, target := range []string{
		"/api/v1/locator?lat=95&lon=13",
		"/api/v1/locator?lat=55.6",
		"/api/v1/locator?lat=abc&lon=13",
		"/api/v1/locator?locationError=nope",
		"/api/v1/locator?select=A1&via=drone",
		"/api/v1/stores/A1/qr.png?size=10",
	} {
		if rec := get(engine, target); rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: status = %d", target, rec.Code)
		}
	}

	body := decode[map[string]any](t, get(engine, "/api/v1/stores?lon=13"))
	if body["error"] != "validation failed" || body["details"] != "lat and lon must be given together" {
		t.Fatalf("body = %v", body)
	}
}

func TestStoresEndpoints(t *testing.T) {
	engine := newTestEngine(t, fakeLoader{list: sampleStores()}, nil)

	list := decode[StoresResponse](t, get(engine, "/api/v1/stores?q=MALM%C3%96"))
	if list.Count != 1 || list.Stores[0].ID != "A1" {
		t.Fatalf("list = %+v", list)
	}

	rec := get(engine, "/api/v1/stores/B2")
	if rec.Code != http.StatusOK || decode[stores.Store](t, rec).Name != "H&M Lund" {
		t.Fatalf("store = %d %s", rec.Code, rec.Body.String())
	}
	if rec := get(engine, "/api/v1/stores/ZZ"); rec.Code != http.StatusNotFound {
		t.Fatalf("missing store = %d", rec.Code)
	}

	rec = get(engine, "/api/v1/stores/A1/qr.png?size=128")
	if rec.Code != http.StatusOK || rec.Header().Get("Content-Type") != "image/png" {
		t.Fatalf("qr = %d %s", rec.Code, rec.Header().Get("Content-Type"))
	}
	if _, err := png.Decode(bytes.NewReader(rec.Body.Bytes())); err != nil {
		t.Fatalf("qr is not a png: %v", err)
	}
}

func TestStoreQRCodeSkipsLocation(t *testing.T) {
	engine := newTestEngine(t, fakeLoader{list: sampleStores()}, nil)
	if rec := get(engine, "/api/v1/stores/B2/qr.png"); rec.Code != http.StatusOK {
		t.Fatalf("qr = %d", rec.Code)
	}
	if rec := get(engine, "/api/v1/stores/ZZ/qr.png"); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown qr = %d", rec.Code)
	}
	if body := get(engine, "/metrics").Body.String(); strings.Contains(body, "location_resolutions_total{") {
		t.Fatalf("qr lookups should not resolve a location:\n%s", body)
	}
}

func TestStoresUpstreamError(t *testing.T) {
	engine := newTestEngine(t, fakeLoader{err: &stores.FetchError{Reason: "API Format"}}, nil)
	rec := get(engine, "/api/v1/stores")
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d", rec.Code)
	}
	if body := decode[map[string]any](t, rec); body["details"] != "API Format" {
		t.Fatalf("body = %v", body)
	}
}
