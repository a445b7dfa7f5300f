package geo

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"storelocator/platform/config"
	"storelocator/platform/logger"
	"storelocator/platform/metrics"
	"storelocator/platform/validator"
)

// DeviceLabel is the footer status shown when the device location is used.
const DeviceLabel = "Distance from your location."

// Position is one device location fix.
type Position struct {
	Lat       float64
	Lon       float64
	Timestamp time.Time
}

// PositionOptions mirrors the knobs of a one-shot location request.
type PositionOptions struct {
	HighAccuracy bool
	Timeout      time.Duration
	MaximumAge   time.Duration
}

// PositionSource is the device location capability. Implementations should
// honour ctx; the provider stops waiting at the timeout either way.
type PositionSource interface {
	CurrentPosition(ctx context.Context, opts PositionOptions) (Position, error)
}

// LocationErrorCode classifies why a device location was not obtained.
type LocationErrorCode int

const (
	CodeUnknown LocationErrorCode = iota
	CodePermissionDenied
	CodeUnavailable
	CodeTimeout
	CodeUnsupported
)

func (c LocationErrorCode) String() string {
	switch c {
	case CodePermissionDenied:
		return "Permission denied."
	case CodeUnavailable:
		return "Location unavailable."
	case CodeTimeout:
		return "Request timed out."
	case CodeUnsupported:
		return "Geolocation is not supported."
	default:
		return "Unknown error."
	}
}

// ParseLocationErrorCode maps the client-side error names to codes.
func ParseLocationErrorCode(s string) LocationErrorCode {
	switch s {
	case "permission_denied", "denied":
		return CodePermissionDenied
	case "unavailable", "position_unavailable":
		return CodeUnavailable
	case "timeout":
		return CodeTimeout
	case "unsupported":
		return CodeUnsupported
	default:
		return CodeUnknown
	}
}

// LocationError is always recovered by the Provider.
type LocationError struct {
	Code LocationErrorCode
	Err  error
}

func (e *LocationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("Geolocation failed: %s (%v)", e.Code, e.Err)
	}
	return "Geolocation failed: " + e.Code.String()
}

func (e *LocationError) Unwrap() error {
	return e.Err
}

// Reference is the distance-sorting origin and its footer label.
type Reference struct {
	Lat        float64 `json:"lat"`
	Lon        float64 `json:"lon"`
	Label      string  `json:"label"`
	FromDevice bool    `json:"fromDevice"`
}

// Provider resolves the reference coordinate once per call, falling back
// to a fixed coordinate on any failure.
type Provider struct {
	source   PositionSource
	fallback Reference
	opts     PositionOptions
	val      *validator.Validator
	log      *logger.Logger
	metrics  *metrics.Metrics
	now      func() time.Time

	mu   sync.Mutex
	last *Position
}

// NewProvider creates a provider. source may be nil, meaning the
// capability is absent.
func NewProvider(cfg config.GeoConfig, source PositionSource, log *logger.Logger, m *metrics.Metrics) *Provider {
	return &Provider{
		source: source,
		fallback: Reference{
			Lat:   cfg.GetFallbackLat(),
			Lon:   cfg.GetFallbackLon(),
			Label: cfg.GetFallbackLabel(),
		},
		opts: PositionOptions{
			HighAccuracy: false,
			Timeout:      cfg.GetLocationTimeout(),
			MaximumAge:   cfg.GetLocationMaxAge(),
		},
		val:     validator.New(),
		log:     log,
		metrics: m,
		now:     time.Now,
	}
}

// Fallback returns the fixed reference used when no device fix is available.
func (p *Provider) Fallback() Reference {
	return p.fallback
}

// Resolve returns the device coordinate or the fallback. It never fails
// and never waits longer than the configured timeout.
func (p *Provider) Resolve(ctx context.Context) Reference {
	pos, err := p.devicePosition(ctx)
	if err != nil {
		if p.log != nil {
			p.log.WithContext(ctx).LocationFallback(err.Error(), p.fallback.Label)
		}
		p.metrics.ObserveLocation("fallback")
		return p.fallback
	}

	p.metrics.ObserveLocation("device")
	return Reference{Lat: pos.Lat, Lon: pos.Lon, Label: DeviceLabel, FromDevice: true}
}

func (p *Provider) devicePosition(ctx context.Context) (Position, error) {
	if p.source == nil {
		return Position{}, &LocationError{Code: CodeUnsupported}
	}

	if cached, ok := p.cached(); ok {
		return cached, nil
	}

	reqCtx, cancel := context.WithTimeout(ctx, p.opts.Timeout)
	defer cancel()

	type result struct {
		pos Position
		err error
	}
	ch := make(chan result, 1)
	go func() {
		pos, err := p.source.CurrentPosition(reqCtx, p.opts)
		ch <- result{pos: pos, err: err}
	}()

	var res result
	select {
	case res = <-ch:
	case <-reqCtx.Done():
		return Position{}, &LocationError{Code: CodeTimeout, Err: reqCtx.Err()}
	}

	if res.err != nil {
		var locErr *LocationError
		if errors.As(res.err, &locErr) {
			return Position{}, locErr
		}
		if errors.Is(res.err, context.DeadlineExceeded) {
			return Position{}, &LocationError{Code: CodeTimeout, Err: res.err}
		}
		return Position{}, &LocationError{Code: CodeUnknown, Err: res.err}
	}
	if !p.val.Coordinate(res.pos.Lat, res.pos.Lon) {
		return Position{}, &LocationError{Code: CodeUnavailable, Err: errors.New("invalid coordinate")}
	}

	if res.pos.Timestamp.IsZero() {
		res.pos.Timestamp = p.now()
	}
	p.mu.Lock()
	p.last = &res.pos
	p.mu.Unlock()

	return res.pos, nil
}

func (p *Provider) cached() (Position, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.last == nil || p.opts.MaximumAge <= 0 {
		return Position{}, false
	}
	if p.now().Sub(p.last.Timestamp) > p.opts.MaximumAge {
		return Position{}, false
	}
	return *p.last, true
}
