package nogoclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/twpayne/go-geom"

	"cycle_planner/internal/controllers"
	"cycle_planner/internal/geo"
	"cycle_planner/internal/hub"
	"cycle_planner/internal/metrics"
	"cycle_planner/internal/routes"
	"cycle_planner/internal/store"
)

func newAPI(t *testing.T) (*httptest.Server, *hub.NogoHub) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	m, err := metrics.NewCollector(prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("NewCollector: %v", err)
	}
	feed := hub.NewNogoHub()
	nc := controllers.NewNogoController(store.NewService(store.NewMemoryRepository()), feed, m)
	srv := httptest.NewServer(routes.SetupRouter(routes.Dependencies{Nogos: nc, Metrics: m}))
	t.Cleanup(srv.Close)
	return srv, feed
}

func TestCreateListDeleteRoundTrip(t *testing.T) {
	srv, _ := newAPI(t)
	c := New(srv.URL, 5*time.Second)
	ctx := context.Background()

	a, _ := geo.NewLineString([][]float64{{0, 0, 0}, {1, 1, 0}})
	b, _ := geo.NewLineString([][]float64{{2, 2}, {3, 3}, {4, 4}})
	if err := c.CreateMany(ctx, []*geom.LineString{a, b}); err != nil {
		t.Fatalf("CreateMany: %v", err)
	}

	nogos, err := c.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(nogos) != 2 {
		t.Fatalf("len(List) = %d, want 2", len(nogos))
	}
	if n := nogos[0].Geometry.NumCoords(); n != 3 {
		t.Fatalf("first nogo has %d points, want 3", n)
	}

	if err := c.DeleteMany(ctx, []string{nogos[0].ID, "unknown"}); err != nil {
		t.Fatalf("DeleteMany: %v", err)
	}
	left, _ := c.List(ctx)
	if len(left) != 1 || left[0].ID != nogos[1].ID {
		t.Fatalf("remaining = %+v", left)
	}
}

func TestBadRequestSurfacesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"Invalid geometry"}`))
	}))
	defer srv.Close()

	err := New(srv.URL, time.Second).DeleteMany(context.Background(), []string{"x"})
	if err == nil {
		t.Fatalf("DeleteMany succeeded against a 400")
	}
}

func TestWatchReceivesChangeEvents(t *testing.T) {
	srv, feed := newAPI(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go feed.Run(ctx)

	events := make(chan hub.ChangeEvent, 1)
	c := New(srv.URL, 5*time.Second)
	go c.Watch(ctx, func(ev hub.ChangeEvent) { events <- ev })

	deadline := time.Now().Add(2 * time.Second)
	for feed.ClientCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("watcher never subscribed")
		}
		time.Sleep(5 * time.Millisecond)
	}

	ls, _ := geo.NewLineString([][]float64{{2, 2}, {3, 3}, {4, 4}})
	if err := c.CreateMany(ctx, []*geom.LineString{ls}); err != nil {
		t.Fatalf("CreateMany: %v", err)
	}

	select {
	case ev := <-events:
		if ev.Type != hub.EventNogosChanged || ev.Created != 1 {
			t.Fatalf("event = %+v", ev)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("no change event received")
	}
}
