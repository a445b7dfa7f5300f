package geo

import "context"

// StaticSource reports a fixed position, e.g. coordinates the browser
// already obtained and forwarded with the request.
type StaticSource struct {
	Lat float64
	Lon float64
}

func (s StaticSource) CurrentPosition(ctx context.Context, _ PositionOptions) (Position, error) {
	if err := ctx.Err(); err != nil {
		return Position{}, err
	}
	return Position{Lat: s.Lat, Lon: s.Lon}, nil
}

// FailingSource reports a location failure the client already observed.
type FailingSource struct {
	Code LocationErrorCode
}

func (s FailingSource) CurrentPosition(context.Context, PositionOptions) (Position, error) {
	return Position{}, &LocationError{Code: s.Code}
}
