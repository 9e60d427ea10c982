package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// HTTPRoutingClient calls a driving-directions HTTP service that accepts
// origin/destination coordinates and returns a duration in seconds. The
// Estimator wraps it with the haversine fallback, so any failure here
// degrades the estimate rather than the scheduling run.
type HTTPRoutingClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewHTTPRoutingClient creates an HTTPRoutingClient against baseURL,
// authenticating with apiKey.
func NewHTTPRoutingClient(baseURL, apiKey string) *HTTPRoutingClient {
	return &HTTPRoutingClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 5 * time.Second},
	}
}

type routingResponse struct {
	DurationSeconds float64 `json:"duration_seconds"`
}

// DrivingDuration implements RoutingClient.
func (c *HTTPRoutingClient) DrivingDuration(ctx context.Context, from, to Point) (time.Duration, error) {
	q := url.Values{}
	q.Set("from_lon", fmt.Sprintf("%f", from.Lon))
	q.Set("from_lat", fmt.Sprintf("%f", from.Lat))
	q.Set("to_lon", fmt.Sprintf("%f", to.Lon))
	q.Set("to_lat", fmt.Sprintf("%f", to.Lat))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/route?"+q.Encode(), nil)
	if err != nil {
		return 0, fmt.Errorf("building routing request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("calling routing service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("routing service returned status %d", resp.StatusCode)
	}

	var body routingResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, fmt.Errorf("decoding routing response: %w", err)
	}
	return time.Duration(body.DurationSeconds * float64(time.Second)), nil
}
