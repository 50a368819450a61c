// Package nogoclient calls the nogo store service over HTTP.
package nogoclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/twpayne/go-geom"

	"cycle_planner/internal/geo"
	"cycle_planner/internal/hub"
	"cycle_planner/internal/models"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// List fetches every persisted nogo.
func (c *Client) List(ctx context.Context) ([]models.Nogo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/nogos", nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	var docs []models.NogoDocument
	if err := json.NewDecoder(resp.Body).Decode(&docs); err != nil {
		return nil, fmt.Errorf("decoding nogos: %w", err)
	}

	nogos := make([]models.Nogo, 0, len(docs))
	for _, d := range docs {
		ls, err := geo.NewLineString(d.Coordinates)
		if err != nil {
			return nil, fmt.Errorf("nogo %s: %w", d.ID, err)
		}
		nogos = append(nogos, models.Nogo{ID: d.ID, Geometry: ls})
	}
	return nogos, nil
}

// CreateMany submits new nogo geometries.
func (c *Client) CreateMany(ctx context.Context, lines []*geom.LineString) error {
	body := make([]models.NogoInput, len(lines))
	for i, ls := range lines {
		body[i] = models.NogoInput{Type: models.NogoType, Coordinates: geo.Coordinates(ls)}
	}
	return c.postJSON(ctx, "/api/nogos", body)
}

// DeleteMany removes nogos by id.
func (c *Client) DeleteMany(ctx context.Context, ids []string) error {
	return c.postJSON(ctx, "/api/nogos/delete", ids)
}

func (c *Client) postJSON(ctx context.Context, path string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()
	return checkStatus(resp)
}

// Watch subscribes to the change feed and calls fn for every event until
// ctx is cancelled or the connection drops.
func (c *Client) Watch(ctx context.Context, fn func(hub.ChangeEvent)) error {
	wsURL := "ws" + strings.TrimPrefix(c.baseURL, "http") + "/ws/nogos"
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("dialing change feed: %w", err)
	}
	defer conn.Close()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			conn.Close()
		case <-done:
		}
	}()

	for {
		var ev hub.ChangeEvent
		if err := conn.ReadJSON(&ev); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("reading change feed: %w", err)
		}
		fn(ev)
	}
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode == http.StatusOK {
		return nil
	}
	msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	var apiErr struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(msg, &apiErr) == nil && apiErr.Error != "" {
		return fmt.Errorf("nogo api: status %d: %s", resp.StatusCode, apiErr.Error)
	}
	return fmt.Errorf("nogo api: unexpected status code %d", resp.StatusCode)
}
