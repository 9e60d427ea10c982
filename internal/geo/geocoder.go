package geo

import (
	"context"

	"github.com/rs/zerolog/log"
)

// Geocoder is the external address-geocoding collaborator. A production
// implementation calls out to a mapping provider; it is injected so the
// engine never depends on one concretely.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (Point, error)
}

// FallbackGeocoder wraps a Geocoder and, on any failure (or when none is
// configured), returns a pinned default location rather than propagating
// the error — geocoding is best-effort throughout the driving HTTP surface.
type FallbackGeocoder struct {
	client   Geocoder
	fallback Point
}

// NewFallbackGeocoder creates a FallbackGeocoder. client may be nil, in
// which case every call returns defaultPoint.
func NewFallbackGeocoder(client Geocoder, defaultPoint Point) *FallbackGeocoder {
	return &FallbackGeocoder{client: client, fallback: defaultPoint}
}

// Geocode resolves address, falling back to the pinned default point and
// logging a warning on any failure.
func (g *FallbackGeocoder) Geocode(ctx context.Context, address string) Point {
	if g.client == nil {
		return g.fallback
	}
	point, err := g.client.Geocode(ctx, address)
	if err != nil {
		log.Warn().Err(err).Str("address", address).Msg("geocoding failed, falling back to pinned default location")
		return g.fallback
	}
	return point
}
