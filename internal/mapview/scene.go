// Package mapview is an in-memory map: markers, viewport and popup state.
package mapview

import (
	"context"
	"sync"
	"time"

	"storelocator/internal/geo"
	"storelocator/internal/locator"
	"storelocator/platform/deps"
)

// ViewportMode says how the current viewport was set.
type ViewportMode string

const (
	ModeNone   ViewportMode = ""
	ModeCenter ViewportMode = "center"
	ModeBounds ViewportMode = "bounds"
	ModeFlyTo  ViewportMode = "flyTo"
)

// Viewport is the visible map region.
type Viewport struct {
	Mode     ViewportMode  `json:"mode"`
	Center   geo.LatLng    `json:"center"`
	Zoom     int           `json:"zoom,omitempty"`
	Bounds   *geo.Bounds   `json:"bounds,omitempty"`
	Duration time.Duration `json:"durationNs,omitempty"`
}

// View is a point-in-time copy of the scene.
type View struct {
	Library      Library          `json:"library"`
	Markers      []locator.Marker `json:"markers"`
	Viewport     Viewport         `json:"viewport"`
	OpenPopup    string           `json:"openPopup,omitempty"`
	PendingPopup string           `json:"pendingPopup,omitempty"`
}

// Scene implements locator.MapView.
type Scene struct {
	mu       sync.Mutex
	lib      Library
	markers  []locator.Marker
	viewport Viewport
	popup    string
	pending  string
	timer    *time.Timer
	onClick  func(id string)
}

var _ locator.MapView = (*Scene)(nil)

// NewScene returns an empty scene.
func NewScene() *Scene {
	return &Scene{}
}

// Loader attaches the scene once the library handle resolves.
func Loader(lib *deps.Handle[Library], scene *Scene) locator.MapLoader {
	return func(ctx context.Context) (locator.MapView, error) {
		l, err := lib.Get(ctx)
		if err != nil {
			return nil, err
		}
		scene.mu.Lock()
		scene.lib = l
		scene.mu.Unlock()
		return scene, nil
	}
}

// OnMarkerClick registers the handler for marker clicks.
func (s *Scene) OnMarkerClick(fn func(id string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onClick = fn
}

// Click simulates a click on the marker with the given id.
func (s *Scene) Click(id string) bool {
	s.mu.Lock()
	_, ok := s.marker(id)
	fn := s.onClick
	s.mu.Unlock()
	if !ok || fn == nil {
		return false
	}
	fn(id)
	return true
}

// ReplaceMarkers swaps the marker layer. An open popup whose marker is
// gone is closed.
func (s *Scene) ReplaceMarkers(markers []locator.Marker) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.markers = append([]locator.Marker(nil), markers...)
	if _, ok := s.marker(s.popup); !ok {
		s.popup = ""
	}
}

func (s *Scene) FitBounds(bounds geo.Bounds) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := bounds
	s.viewport = Viewport{Mode: ModeBounds, Center: b.Center(), Bounds: &b}
}

func (s *Scene) SetView(center geo.LatLng, zoom int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.viewport = Viewport{Mode: ModeCenter, Center: center, Zoom: zoom}
}

func (s *Scene) FlyTo(center geo.LatLng, zoom int, duration time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.viewport = Viewport{Mode: ModeFlyTo, Center: center, Zoom: zoom, Duration: duration}
}

// OpenPopupAfter opens the popup of id once delay has passed. A newer
// request or ClosePopup cancels a pending one.
func (s *Scene) OpenPopupAfter(id string, delay time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopTimer()
	s.pending = id
	s.timer = time.AfterFunc(delay, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.pending != id {
			return
		}
		s.pending = ""
		s.timer = nil
		if _, ok := s.marker(id); ok {
			s.popup = id
		}
	})
}

func (s *Scene) ClosePopup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopTimer()
	s.popup = ""
}

// Close stops any pending popup timer.
func (s *Scene) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopTimer()
}

// Snapshot returns a copy of the scene.
func (s *Scene) Snapshot() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := View{
		Library:      s.lib,
		Markers:      append([]locator.Marker{}, s.markers...),
		Viewport:     s.viewport,
		OpenPopup:    s.popup,
		PendingPopup: s.pending,
	}
	if s.viewport.Bounds != nil {
		b := *s.viewport.Bounds
		v.Viewport.Bounds = &b
	}
	return v
}

func (s *Scene) stopTimer() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.pending = ""
}

func (s *Scene) marker(id string) (locator.Marker, bool) {
	if id == "" {
		return locator.Marker{}, false
	}
	for _, m := range s.markers {
		if m.ID == id {
			return m, true
		}
	}
	return locator.Marker{}, false
}
