package geo_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sanjshine99/carepath/internal/geo"
)

type fakeRoutingClient struct {
	duration time.Duration
	err      error
	calls    int
}

func (f *fakeRoutingClient) DrivingDuration(_ context.Context, _, _ geo.Point) (time.Duration, error) {
	f.calls++
	return f.duration, f.err
}

func TestTravelTimeMinutesNoClientFallsBackToHaversine(t *testing.T) {
	estimator := geo.NewEstimator(nil)
	a := geo.Point{Lon: 0, Lat: 0}
	b := geo.Point{Lon: 0, Lat: 1} // ~111km apart

	minutes := estimator.TravelTimeMinutes(context.Background(), a, b, nil)
	assert.Greater(t, minutes, 0)
	// 111km at 30km/h is 222 minutes
	assert.InDelta(t, 222, minutes, 5)
}

func TestTravelTimeMinutesUsesRoutingClient(t *testing.T) {
	client := &fakeRoutingClient{duration: 12 * time.Minute}
	estimator := geo.NewEstimator(client)
	a := geo.Point{Lon: 0, Lat: 0}
	b := geo.Point{Lon: 0, Lat: 1}

	minutes := estimator.TravelTimeMinutes(context.Background(), a, b, nil)
	assert.Equal(t, 12, minutes)
	assert.Equal(t, 1, client.calls)
}

func TestTravelTimeMinutesFallsBackOnClientError(t *testing.T) {
	client := &fakeRoutingClient{err: errors.New("routing service unavailable")}
	estimator := geo.NewEstimator(client)
	a := geo.Point{Lon: 0, Lat: 0}
	b := geo.Point{Lon: 0, Lat: 1}

	minutes := estimator.TravelTimeMinutes(context.Background(), a, b, nil)
	assert.InDelta(t, 222, minutes, 5)
}

func TestTravelTimeMinutesMemoizesPerCache(t *testing.T) {
	client := &fakeRoutingClient{duration: 9 * time.Minute}
	estimator := geo.NewEstimator(client)
	cache := geo.NewTravelCache()
	a := geo.Point{Lon: 0, Lat: 0}
	b := geo.Point{Lon: 0, Lat: 1}

	first := estimator.TravelTimeMinutes(context.Background(), a, b, cache)
	second := estimator.TravelTimeMinutes(context.Background(), a, b, cache)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, client.calls)
}

func TestTravelTimeMinutesCacheIsPerPairNotGlobal(t *testing.T) {
	client := &fakeRoutingClient{duration: 9 * time.Minute}
	estimator := geo.NewEstimator(client)
	cache := geo.NewTravelCache()
	a := geo.Point{Lon: 0, Lat: 0}
	b := geo.Point{Lon: 0, Lat: 1}
	c := geo.Point{Lon: 0, Lat: 2}

	estimator.TravelTimeMinutes(context.Background(), a, b, cache)
	estimator.TravelTimeMinutes(context.Background(), a, c, cache)

	assert.Equal(t, 2, client.calls)
}
