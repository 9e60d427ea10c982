package geo

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// fallbackSpeedKmh is the assumed average driving speed used when no
// external routing service is configured or the call fails.
const fallbackSpeedKmh = 30.0

// RoutingClient is the external driving-directions collaborator. A
// production implementation calls out to a mapping provider; it is
// injected so the engine never depends on one concretely.
type RoutingClient interface {
	DrivingDuration(ctx context.Context, from, to Point) (time.Duration, error)
}

// Estimator computes travel time between two points, preferring a
// RoutingClient and falling back to a haversine-distance estimate on any
// failure or when no client is configured.
type Estimator struct {
	client RoutingClient
}

// NewEstimator creates an Estimator. client may be nil, in which case every
// call uses the haversine fallback.
func NewEstimator(client RoutingClient) *Estimator {
	return &Estimator{client: client}
}

// TravelTimeMinutes returns the estimated driving time between a and b in
// whole minutes, consulting cache first so repeated lookups for the same
// pair within one assignment run cost a single external call.
func (e *Estimator) TravelTimeMinutes(ctx context.Context, a, b Point, cache *TravelCache) int {
	if cache != nil {
		if minutes, ok := cache.get(a, b); ok {
			return minutes
		}
	}

	minutes := e.fallback(a, b)
	if e.client != nil {
		d, err := e.client.DrivingDuration(ctx, a, b)
		if err != nil {
			log.Warn().Err(err).Msg("routing service failed, falling back to haversine travel-time estimate")
		} else {
			minutes = int(math.Ceil(d.Minutes()))
		}
	}

	if cache != nil {
		cache.put(a, b, minutes)
	}
	return minutes
}

func (e *Estimator) fallback(a, b Point) int {
	km := Haversine(a, b)
	return int(math.Ceil(km / fallbackSpeedKmh * 60))
}

type travelKey struct {
	a, b Point
}

// TravelCache is a short-lived, per-assignment-run memoization of
// travel-time lookups keyed by the exact (from, to) pair. It carries no
// state across requests and must be created fresh per run.
type TravelCache struct {
	mu sync.Mutex
	m  map[travelKey]int
}

// NewTravelCache creates an empty cache.
func NewTravelCache() *TravelCache {
	return &TravelCache{m: make(map[travelKey]int)}
}

func (c *TravelCache) get(a, b Point) (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	minutes, ok := c.m[travelKey{a, b}]
	return minutes, ok
}

func (c *TravelCache) put(a, b Point, minutes int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[travelKey{a, b}] = minutes
}
