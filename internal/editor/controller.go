package editor

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/twpayne/go-geom"

	"cycle_planner/internal/brouter"
	"cycle_planner/internal/geo"
	"cycle_planner/internal/models"
)

// Map is the drawing surface the controller renders onto.
type Map interface {
	ClearLayer(l Layer)
	DrawMarker(l Layer, p geo.Point)
	DrawLine(l Layer, ls *geom.LineString, color string)
	DrawNogo(n models.Nogo, color string)
	SetNogoColor(id, color string)
	UpdateControl(id string, v ControlView)
	ShowError(msg string)
}

// Router computes routes. *brouter.Client satisfies it.
type Router interface {
	Route(ctx context.Context, points []geo.Point, profile brouter.Profile) (*geom.LineString, error)
}

// NogoStore persists nogos. *nogoclient.Client satisfies it.
type NogoStore interface {
	List(ctx context.Context) ([]models.Nogo, error)
	CreateMany(ctx context.Context, lines []*geom.LineString) error
	DeleteMany(ctx context.Context, ids []string) error
}

// Controller owns a session's State. Events are applied one at a time on
// the goroutine running Run; calls to the router and store run on their own
// goroutines and report back through Dispatch.
type Controller struct {
	m        Map
	router   Router
	store    NogoStore
	controls []Control

	events  chan Event
	pending *counter

	mu    sync.RWMutex
	state State
}

func NewController(m Map, router Router, store NogoStore, controls ...Control) *Controller {
	return &Controller{
		m:        m,
		router:   router,
		store:    store,
		controls: controls,
		events:   make(chan Event, 64),
		pending:  newCounter(),
		state:    NewState(),
	}
}

// State returns a snapshot of the session state.
func (c *Controller) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.clone()
}

// Dispatch queues ev for the event loop.
func (c *Controller) Dispatch(ev Event) {
	c.pending.add()
	c.events <- ev
}

// Settle blocks until every dispatched event, and every call it started,
// has been handled.
func (c *Controller) Settle() {
	c.pending.wait()
}

// Run processes events until ctx is cancelled.
func (c *Controller) Run(ctx context.Context) error {
	c.refreshControls(c.State())
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-c.events:
			c.handle(ctx, ev)
			c.pending.done()
		}
	}
}

func (c *Controller) handle(ctx context.Context, ev Event) {
	c.mu.Lock()
	prev := c.state
	next, effects := Transition(prev, ev)
	c.state = next
	c.mu.Unlock()

	if epoch, ok := resultEpoch(ev); ok && epoch != prev.Epoch {
		logrus.WithFields(logrus.Fields{
			"event": eventName(ev),
			"epoch": epoch,
		}).Debug("Dropping stale result")
	} else if next.Mode != prev.Mode {
		logrus.WithField("mode", next.Mode.String()).Info("Mode changed")
	}

	for _, eff := range effects {
		c.execute(ctx, next, eff)
	}
}

func (c *Controller) execute(ctx context.Context, s State, eff Effect) {
	switch e := eff.(type) {
	case ClearLayer:
		c.m.ClearLayer(e.Layer)
	case DrawMarker:
		c.m.DrawMarker(e.Layer, e.Point)
	case DrawCursorLine:
		line, err := geo.NewLineString([][]float64{{e.From.Lon, e.From.Lat}, {e.To.Lon, e.To.Lat}})
		if err != nil {
			return
		}
		c.m.DrawLine(LayerCursor, line, NogoColor)
	case DrawRoute:
		c.m.DrawLine(LayerRoutes, e.Geometry, RouteColor)
	case DrawNogos:
		for _, n := range e.Nogos {
			color := NogoColor
			if indexOf(e.Selected, n.ID) >= 0 {
				color = NogoSelectedColor
			}
			c.m.DrawNogo(n, color)
		}
	case StyleNogo:
		color := NogoColor
		if e.Selected {
			color = NogoSelectedColor
		}
		c.m.SetNogoColor(e.ID, color)
	case RefreshControls:
		c.refreshControls(s)
	case ShowError:
		logrus.Warn(e.Message)
		c.m.ShowError(e.Message)
	case RequestRoute:
		c.async(ctx, func(ctx context.Context) Event {
			ls, err := c.router.Route(ctx, e.Points, e.Profile)
			if err != nil {
				logrus.WithError(err).WithFields(logrus.Fields{
					"profile": e.Profile,
					"count":   len(e.Points),
				}).Error("Route request failed")
			}
			return RouteComputed{Epoch: e.Epoch, Profile: e.Profile, Geometry: ls, Err: err}
		})
	case SubmitNogos:
		c.async(ctx, func(ctx context.Context) Event {
			err := c.store.CreateMany(ctx, e.Lines)
			if err != nil {
				logrus.WithError(err).WithField("count", len(e.Lines)).Error("Submitting nogos failed")
			} else {
				logrus.WithField("count", len(e.Lines)).Info("Nogos submitted")
			}
			return NogosSubmitted{Epoch: e.Epoch, Err: err}
		})
	case DeleteNogos:
		c.async(ctx, func(ctx context.Context) Event {
			err := c.store.DeleteMany(ctx, e.IDs)
			if err != nil {
				logrus.WithError(err).WithField("count", len(e.IDs)).Error("Deleting nogos failed")
			} else {
				logrus.WithField("count", len(e.IDs)).Info("Nogos deleted")
			}
			return NogosDeleted{Epoch: e.Epoch, Err: err}
		})
	case FetchNogos:
		c.async(ctx, func(ctx context.Context) Event {
			nogos, err := c.store.List(ctx)
			if err != nil {
				logrus.WithError(err).Error("Fetching nogos failed")
			}
			return NogosLoaded{Epoch: e.Epoch, Nogos: nogos, Err: err}
		})
	}
}

// async runs call on its own goroutine and dispatches the event it returns.
func (c *Controller) async(ctx context.Context, call func(context.Context) Event) {
	c.pending.add()
	go func() {
		defer c.pending.done()
		ev := call(ctx)
		c.pending.add()
		select {
		case c.events <- ev:
		case <-ctx.Done():
			c.pending.done()
		}
	}()
}

func (c *Controller) refreshControls(s State) {
	for _, ctrl := range c.controls {
		c.m.UpdateControl(ctrl.ID(), ctrl.Render(s))
	}
}

// counter tracks queued events and running calls. Unlike a WaitGroup it may
// be incremented while someone is waiting on it.
type counter struct {
	mu   sync.Mutex
	zero *sync.Cond
	n    int
}

func newCounter() *counter {
	c := &counter{}
	c.zero = sync.NewCond(&c.mu)
	return c
}

func (c *counter) add() {
	c.mu.Lock()
	c.n++
	c.mu.Unlock()
}

func (c *counter) done() {
	c.mu.Lock()
	c.n--
	if c.n == 0 {
		c.zero.Broadcast()
	}
	c.mu.Unlock()
}

func (c *counter) wait() {
	c.mu.Lock()
	for c.n > 0 {
		c.zero.Wait()
	}
	c.mu.Unlock()
}

func eventName(ev Event) string {
	switch ev.(type) {
	case RouteComputed:
		return "route_computed"
	case NogosSubmitted:
		return "nogos_submitted"
	case NogosDeleted:
		return "nogos_deleted"
	case NogosLoaded:
		return "nogos_loaded"
	default:
		return "input"
	}
}
