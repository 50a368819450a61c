// Package brouter talks to the external routing engine.
package brouter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/twpayne/go-geom"
	gjson "github.com/twpayne/go-geom/encoding/geojson"

	"cycle_planner/internal/geo"
)

// Profile selects the routing engine's ruleset.
type Profile string

const (
	// ProfileTrekking computes rideable cycling routes.
	ProfileTrekking Profile = "trekking"
	// ProfileAll finds the most permissive path; used to trace the exact
	// geometry of a nogo between two clicked points.
	ProfileAll Profile = "all"
)

var (
	// ErrNoRoute means the engine answered but returned no usable geometry.
	ErrNoRoute = errors.New("routing engine returned no route")
	// ErrTooFewWaypoints means fewer than two waypoints were given.
	ErrTooFewWaypoints = errors.New("a route needs at least 2 waypoints")
)

// Client requests routes from a BRouter-compatible HTTP endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// RequestURL builds the engine query for the given waypoints.
func (c *Client) RequestURL(points []geo.Point, profile Profile) string {
	params := url.Values{}
	params.Set("lonlats", geo.LonLats(points))
	params.Set("profile", string(profile))
	params.Set("alternativeidx", "0")
	params.Set("format", "geojson")
	return fmt.Sprintf("%s/brouter?%s", c.baseURL, params.Encode())
}

// Route asks the engine for a path through points and returns the geometry
// of the first feature.
func (c *Client) Route(ctx context.Context, points []geo.Point, profile Profile) (*geom.LineString, error) {
	if len(points) < 2 {
		return nil, ErrTooFewWaypoints
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.RequestURL(points, profile), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/geo+json, application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		// The engine reports routing failures as plain text.
		return nil, fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, truncate(body, 200))
	}

	return firstLineString(body)
}

func firstLineString(body []byte) (*geom.LineString, error) {
	var fc gjson.FeatureCollection
	if err := json.Unmarshal(body, &fc); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	if len(fc.Features) == 0 || fc.Features[0].Geometry == nil {
		return nil, ErrNoRoute
	}
	ls, err := geo.AsLineString(fc.Features[0].Geometry)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoRoute, err)
	}
	return ls, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
