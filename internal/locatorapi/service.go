package locatorapi

import (
	"context"
	"errors"
	"net/url"

	"storelocator/internal/geo"
	"storelocator/internal/listview"
	"storelocator/internal/locator"
	"storelocator/internal/mapview"
	"storelocator/internal/stores"
	"storelocator/platform/apperr"
	"storelocator/platform/config"
	"storelocator/platform/deps"
	"storelocator/platform/logger"
	"storelocator/platform/metrics"
	"storelocator/platform/sanitize"

	"github.com/google/uuid"
	"github.com/skip2/go-qrcode"
)

const defaultQRSize = 256

// ServiceConfig combines the config interfaces the service reads.
type ServiceConfig interface {
	config.GeoConfig
	config.LinkConfig
}

// Service runs locator sessions and store lookups for HTTP callers.
type Service struct {
	stores  locator.StoreLoader
	mapLib  *deps.Handle[mapview.Library]
	cfg     ServiceConfig
	links   locator.Links
	home    geo.Reference
	log     *logger.Logger
	metrics *metrics.Metrics
}

// NewService creates the service.
func NewService(repo locator.StoreLoader, mapLib *deps.Handle[mapview.Library], cfg ServiceConfig, log *logger.Logger, m *metrics.Metrics) *Service {
	return &Service{
		stores:  repo,
		mapLib:  mapLib,
		cfg:     cfg,
		links:   locator.NewLinks(cfg),
		home:    geo.NewProvider(cfg, nil, log, m).Fallback(),
		log:     log,
		metrics: m,
	}
}

// RunSession starts one locator session, applies the search term and the
// user selection, and returns everything the widget would display.
// A store load failure is part of the snapshot; a map library failure
// is returned as an Unavailable error.
func (s *Service) RunSession(ctx context.Context, req LocatorRequest) (SessionSnapshot, error) {
	ctx = context.WithValue(ctx, logger.SessionIDKey, uuid.NewString())
	log := s.log.WithContext(ctx)

	page := s.links.Apply(&url.URL{Path: "/"}, req.StoreCode)
	history := newPageHistory(page)
	panel := listview.New()
	scene := mapview.NewScene()
	defer scene.Close()

	session := locator.NewSession(locator.Options{
		Location: s.provider(req.PositionQuery),
		Stores:   s.stores,
		Map:      mapview.Loader(s.mapLib, scene),
		List:     panel,
		History:  history,
		Links:    s.links,
		Log:      log,
		Metrics:  s.metrics,
	})
	var selectErr error
	choose := func(id string) { _, selectErr = session.Select(id) }
	panel.OnSelect(choose)
	scene.OnMarkerClick(choose)

	if err := session.Start(ctx); err != nil {
		var loadErr *deps.LoadError
		if errors.As(err, &loadErr) {
			return SessionSnapshot{}, apperr.Unavailable("map library unavailable", err).
				WithDetails(session.Snapshot().Fatal)
		}
		var fetchErr *stores.FetchError
		if !errors.As(err, &fetchErr) {
			return SessionSnapshot{}, err
		}
	}

	if term := sanitize.SearchTerm(req.Query); term != "" {
		session.SetSearchTerm(term)
	}
	if req.Select != "" {
		if !click(panel, scene, req.Select, req.Via) || selectErr != nil {
			return SessionSnapshot{}, apperr.NotFound("store not in the current list").WithDetails(req.Select)
		}
	}

	return s.snapshot(session, panel, scene, history)
}

// click replays the user's click on a list item or a map marker. It
// reports false when the marker does not exist.
func click(panel *listview.Panel, scene *mapview.Scene, id, via string) bool {
	if via == ViaMarker {
		return scene.Click(id)
	}
	panel.Click(id, false)
	return true
}

func (s *Service) snapshot(session *locator.Session, panel *listview.Panel, scene *mapview.Scene, history *pageHistory) (SessionSnapshot, error) {
	state := session.Snapshot()
	list, err := panel.Snapshot()
	if err != nil {
		s.log.Error("failed to render store list", "error", err)
		return SessionSnapshot{}, apperr.Internal("failed to render store list")
	}

	snap := SessionSnapshot{
		Location: state.Reference,
		Term:     state.Term,
		Selected: state.Selected,
		URL:      history.String(),
		Footer:   session.Footer(),
		Total:    len(state.All),
		Fatal:    state.Fatal,
		Stores:   state.Filtered,
		List:     list,
		Map:      scene.Snapshot(),
	}
	if state.Err != nil {
		snap.Error = list.Error
	}
	return snap, nil
}

// ListStores returns stores sorted by distance from the resolved
// reference and filtered by term.
func (s *Service) ListStores(ctx context.Context, req StoresRequest) (StoresResponse, error) {
	ref := s.provider(req.PositionQuery).Resolve(ctx)
	all, err := s.load(ctx, ref)
	if err != nil {
		return StoresResponse{}, err
	}
	filtered := locator.Filter(all, sanitize.SearchTerm(req.Query))
	return StoresResponse{Location: ref, Count: len(filtered), Stores: filtered}, nil
}

// GetStore returns one store with its distance from the resolved reference.
func (s *Service) GetStore(ctx context.Context, id string, pos PositionQuery) (stores.Store, error) {
	return s.findStore(ctx, id, s.provider(pos).Resolve(ctx))
}

func (s *Service) findStore(ctx context.Context, id string, ref geo.Reference) (stores.Store, error) {
	all, err := s.load(ctx, ref)
	if err != nil {
		return stores.Store{}, err
	}
	st, ok := stores.Find(all, id)
	if !ok {
		return stores.Store{}, apperr.NotFound("store not found")
	}
	return st, nil
}

// DetailsURL is the absolute landing page link of a store.
func (s *Service) DetailsURL(id string) string {
	return s.cfg.GetAppBaseURL() + "/" + s.links.DetailsURL(id)
}

// StoreQRCode renders a PNG QR code of the store's landing page link.
func (s *Service) StoreQRCode(ctx context.Context, id string, size int) ([]byte, error) {
	if _, err := s.findStore(ctx, id, s.home); err != nil {
		return nil, err
	}
	if size == 0 {
		size = defaultQRSize
	}
	png, err := qrcode.Encode(s.DetailsURL(id), qrcode.Medium, size)
	if err != nil {
		s.log.Error("failed to encode qr code", "store_id", id, "error", err)
		return nil, apperr.Internal("failed to encode qr code")
	}
	return png, nil
}

func (s *Service) load(ctx context.Context, ref geo.Reference) ([]stores.Store, error) {
	all, err := s.stores.Load(ctx, ref.Lat, ref.Lon)
	if err != nil {
		var fetchErr *stores.FetchError
		if errors.As(err, &fetchErr) {
			return nil, apperr.Upstream("store directory unavailable", err).WithOp("load stores").WithDetails(fetchErr.Reason)
		}
		return nil, err
	}
	return all, nil
}

// provider builds a per-request location provider from what the browser
// reported. No position and no error means the capability is absent.
// The browser applies the maximum fix age itself, so nothing is cached
// across requests here.
func (s *Service) provider(pos PositionQuery) *geo.Provider {
	var source geo.PositionSource
	switch {
	case pos.Lat != nil && pos.Lon != nil:
		source = geo.StaticSource{Lat: *pos.Lat, Lon: *pos.Lon}
	case pos.LocationError != "":
		source = geo.FailingSource{Code: geo.ParseLocationErrorCode(pos.LocationError)}
	}
	return geo.NewProvider(s.cfg, source, s.log, s.metrics)
}
