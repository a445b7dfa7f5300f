package locator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"storelocator/internal/geo"
	"storelocator/internal/stores"
	"storelocator/platform/logger"
	"storelocator/platform/metrics"
)

// Viewport and popup constants.
const (
	DefaultZoom     = 5
	FocusZoom       = 14
	FlyDuration     = 800 * time.Millisecond
	PopupDelay      = 850 * time.Millisecond
	BoundsPadding   = 0.3
	loadingText     = "Loading..."
	fatalTextFormat = "Error: Store locator could not be loaded. %s. Check console for details."
)

// DefaultCenter is the map center used when no bounds can be fitted.
var DefaultCenter = geo.LatLng{Lat: 62.0, Lng: 15.0}

var (
	// ErrSuperseded is returned by a load whose results were discarded
	// because a newer load started.
	ErrSuperseded = errors.New("load superseded by a newer request")
	// ErrUnknownStore is returned when selecting an id that is not in the
	// filtered list.
	ErrUnknownStore = errors.New("store not in the current list")
	// ErrNotStarted is returned by operations that need a started session.
	ErrNotStarted = errors.New("session not started")
)

// State is the single source of truth of a session. Filtered is always
// derived from All and Term, and Selected is empty or an id in Filtered.
type State struct {
	All       []stores.Store
	Filtered  []stores.Store
	Term      string
	Selected  string
	InitialID string
	Loading   bool
	Err       error
	Reference geo.Reference
	Fatal     string
}

// Options wires a session to its collaborators.
type Options struct {
	Location LocationResolver
	Stores   StoreLoader
	Map      MapLoader
	List     ListView
	History  History
	Links    Links
	Log      *logger.Logger
	Metrics  *metrics.Metrics
}

// Session runs one locator widget instance.
type Session struct {
	location LocationResolver
	stores   StoreLoader
	loadMap  MapLoader
	list     ListView
	history  History
	links    Links
	log      *logger.Logger
	metrics  *metrics.Metrics

	mu         sync.Mutex
	state      State
	selection  Selection
	mapView    MapView
	started    bool
	gen        uint64
	cancelLoad context.CancelFunc

	// initialPending is set until a load has validated the deep link.
	initialPending bool
}

// NewSession creates an idle session.
func NewSession(opts Options) *Session {
	log := opts.Log
	if log == nil {
		log = logger.Nop()
	}
	return &Session{
		location: opts.Location,
		stores:   opts.Stores,
		loadMap:  opts.Map,
		list:     opts.List,
		history:  opts.History,
		links:    opts.Links,
		log:      log,
		metrics:  opts.Metrics,
	}
}

// Start runs the initialization pipeline: resolve location, load the map
// dependency, load stores, validate the deep-link selection and render.
// A map dependency failure is fatal and replaces the widget. A store load
// failure is not: the list shows the error and Start returns it.
func (s *Session) Start(ctx context.Context) error {
	ref := s.location.Resolve(ctx)

	s.mu.Lock()
	s.state.Reference = ref
	if initial := s.links.Read(s.history.Current()); initial != "" {
		s.state.InitialID = initial
		s.initialPending = true
		s.selection.set(initial)
		s.state.Selected = initial
	}
	s.mu.Unlock()

	if s.loadMap != nil {
		view, err := s.loadMap(ctx)
		if err != nil {
			s.fail(err)
			return err
		}
		s.mu.Lock()
		s.mapView = view
		s.mu.Unlock()
	}

	s.mu.Lock()
	s.started = true
	s.mu.Unlock()

	prev, err := s.load(ctx)
	if errors.Is(err, ErrSuperseded) {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.settle(prev)
	if err != nil {
		s.metrics.ObserveSession("error")
	} else {
		s.metrics.ObserveSession("ready")
	}
	return err
}

// Reload fetches the store collection again and re-renders. A newer call
// cancels an older one still in flight. A selection the new collection
// no longer holds is cleared.
func (s *Session) Reload(ctx context.Context) error {
	if !s.isStarted() {
		return ErrNotStarted
	}
	prev, err := s.load(ctx)
	if errors.Is(err, ErrSuperseded) {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settle(prev)
	return err
}

// SetSearchTerm filters the list. A selection no longer in the filtered
// list is cleared.
func (s *Session) SetSearchTerm(term string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Term = term
	prev := s.state.Selected
	s.applyFilter()
	s.refresh()
	if prev != "" && s.state.Selected == "" {
		s.focusSelection()
		s.pushURL()
	}
}

// Select toggles the selection of id and returns the new selection.
func (s *Session) Select(id string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id != s.state.Selected && !contains(s.state.Filtered, id) {
		return s.state.Selected, ErrUnknownStore
	}
	prev, next := s.selection.Select(id)
	s.state.Selected = next
	s.selectionChanged(prev, next)
	return next, nil
}

// ClearSelection deselects the current store, if any.
func (s *Session) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.selection.Clear()
	s.state.Selected = ""
	if prev != "" {
		s.selectionChanged(prev, "")
	}
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state
	st.All = append([]stores.Store(nil), s.state.All...)
	st.Filtered = append([]stores.Store(nil), s.state.Filtered...)
	return st
}

// Footer returns the footer text for the current state.
func (s *Session) Footer() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.footer()
}

func (s *Session) isStarted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.started
}

func (s *Session) fail(err error) {
	msg := FatalMessage(err)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Fatal = msg
	s.log.Error("locator initialization failed", slog.String("error", err.Error()))
	s.list.ShowFatal(msg)
	s.metrics.ObserveSession("fatal")
}

// FatalMessage is the text that replaces the widget when it cannot start.
func FatalMessage(err error) string {
	return fmt.Sprintf(fatalTextFormat, strings.TrimSuffix(err.Error(), "."))
}

// load fetches stores into state and returns the selection held before
// the results were applied. It does not render the list; callers settle
// once their own state changes are applied.
func (s *Session) load(ctx context.Context) (string, error) {
	s.mu.Lock()
	if s.cancelLoad != nil {
		s.cancelLoad()
	}
	s.gen++
	gen := s.gen
	loadCtx, cancel := context.WithCancel(ctx)
	s.cancelLoad = cancel
	s.state.Loading = true
	s.state.Err = nil
	ref := s.state.Reference
	s.list.SetSearchEnabled(false)
	s.list.ShowLoading()
	s.list.SetFooter(s.footer())
	s.mu.Unlock()

	list, err := s.stores.Load(loadCtx, ref.Lat, ref.Lon)
	cancel()

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return "", ErrSuperseded
	}
	prev := s.state.Selected
	s.cancelLoad = nil
	s.state.Loading = false
	if err != nil {
		s.log.Error("failed to load stores", slog.String("error", err.Error()))
		s.state.Err = err
		s.state.All = nil
		s.state.Filtered = nil
		s.selection.Clear()
		s.state.Selected = ""
	} else {
		s.state.All = list
		s.applyFilter()
	}
	s.list.SetSearchEnabled(true)
	return prev, err
}

// settle renders a finished load. The first load that completes validates
// the deep link and focuses it; any later change of selection gets the
// same effects as a user deselect.
func (s *Session) settle(prev string) {
	deepLink := s.initialPending
	if deepLink {
		s.initialPending = false
		s.applyInitialSelection()
	}
	s.refresh()
	switch {
	case deepLink && s.state.Selected != "" && s.state.Selected == s.state.InitialID:
		s.focusSelection()
		s.list.ScrollIntoView(s.state.Selected)
	case prev != s.state.Selected:
		s.focusSelection()
		s.pushURL()
	}
}

// applyInitialSelection drops a deep-linked id that matches no store and
// scrubs it from the URL.
func (s *Session) applyInitialSelection() {
	initial := s.state.InitialID
	if initial == "" || contains(s.state.All, initial) {
		return
	}
	s.log.Warn("deep-linked store not found", slog.String("store_id", initial))
	s.state.InitialID = ""
	if s.state.Selected == initial {
		s.selection.Clear()
		s.state.Selected = ""
	}
	s.pushURL()
}

func (s *Session) applyFilter() {
	s.state.Filtered = Filter(s.state.All, s.state.Term)
	if s.state.Selected != "" && !contains(s.state.Filtered, s.state.Selected) {
		s.selection.Clear()
		s.state.Selected = ""
	}
}

func (s *Session) selectionChanged(prev, next string) {
	if prev != "" {
		s.list.SetHighlighted(prev, false)
	}
	if next != "" {
		s.list.SetHighlighted(next, true)
		s.list.ScrollIntoView(next)
	}
	s.focusSelection()
	s.pushURL()
}

// refresh re-renders the list, footer and markers from state.
func (s *Session) refresh() {
	switch {
	case s.state.Loading:
		s.list.ShowLoading()
	case s.state.Err != nil:
		s.list.ShowError(errorReason(s.state.Err))
	default:
		entries := make([]ListEntry, 0, len(s.state.Filtered))
		for _, st := range s.state.Filtered {
			entries = append(entries, buildEntry(st, s.state.Selected, s.links))
		}
		s.list.Render(entries)
	}
	s.list.SetFooter(s.footer())
	s.updateMarkers()
}

func (s *Session) updateMarkers() {
	if s.mapView == nil {
		return
	}
	markers, skipped := buildMarkers(s.state.Filtered)
	if skipped > 0 {
		s.log.Warn("stores skipped on map: invalid coordinates", slog.Int("count", skipped))
	}
	s.mapView.ReplaceMarkers(markers)

	if s.state.Selected != "" && len(markers) > 0 {
		return
	}
	if len(markers) == 0 {
		s.mapView.SetView(DefaultCenter, DefaultZoom)
		return
	}
	points := make([]geo.LatLng, 0, len(markers))
	for _, m := range markers {
		points = append(points, m.Position)
	}
	bounds, err := geo.BoundsOf(points)
	if err != nil {
		s.log.Warn("could not fit map bounds", slog.String("error", err.Error()))
		s.mapView.SetView(DefaultCenter, DefaultZoom)
		return
	}
	s.mapView.FitBounds(bounds.Pad(BoundsPadding))
}

// focusSelection flies to the selected marker and opens its popup after
// the flight, or closes the popup when nothing is selected.
func (s *Session) focusSelection() {
	if s.mapView == nil {
		return
	}
	if s.state.Selected == "" {
		s.mapView.ClosePopup()
		return
	}
	st, ok := stores.Find(s.state.Filtered, s.state.Selected)
	if !ok {
		return
	}
	pos, ok := st.Position()
	if !ok {
		s.log.Warn("selected store has no marker", slog.String("store_id", st.ID))
		return
	}
	s.mapView.FlyTo(pos, FocusZoom, FlyDuration)
	s.mapView.OpenPopupAfter(st.ID, PopupDelay)
}

// pushURL reflects the selection in the page URL, pushing only when the
// relative URL changes.
func (s *Session) pushURL() {
	current := s.history.Current()
	if current == nil {
		return
	}
	next := s.links.Apply(current, s.state.Selected)
	if s.links.Read(current) == s.state.Selected || relative(next) == relative(current) {
		return
	}
	s.history.Push(next)
}

func (s *Session) footer() string {
	var base string
	switch {
	case s.state.Loading:
		base = loadingText
	case s.state.Err != nil:
		base = " "
	default:
		base = fmt.Sprintf("%d store(s) found.", len(s.state.Filtered))
	}
	label := s.state.Reference.Label
	if base == " " {
		return base + label
	}
	return base + " " + label
}

func errorReason(err error) string {
	var fe *stores.FetchError
	if errors.As(err, &fe) && fe.Reason != "" {
		return fe.Reason
	}
	return err.Error()
}
