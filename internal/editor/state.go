// Package editor implements the route and nogo editing controller that sits
// between the map widget, the routing engine and the nogo store service.
//
// All state changes go through Transition, a pure function from the current
// State and an Event to the next State and a list of Effects. The Controller
// runs Transition on a single event loop and executes the effects: drawing
// on the Map, or calling the routing engine and store service and feeding
// their results back in as events.
package editor

import (
	"github.com/twpayne/go-geom"

	"cycle_planner/internal/geo"
)

// Mode is the editing mode of a session.
type Mode int

const (
	ModeRouting Mode = iota
	ModeEditingNogos
)

func (m Mode) String() string {
	switch m {
	case ModeRouting:
		return "routing"
	case ModeEditingNogos:
		return "editing_nogos"
	default:
		return "unknown"
	}
}

// Layer names a group of map features that is cleared as a unit.
type Layer int

const (
	// LayerWaypoints holds markers of the operation being drawn.
	LayerWaypoints Layer = iota
	// LayerMarkers holds markers of routes already computed.
	LayerMarkers
	// LayerCursor holds the preview line from the first waypoint to the cursor.
	LayerCursor
	// LayerRoutes holds computed routes.
	LayerRoutes
	// LayerNogos holds persisted nogos.
	LayerNogos
)

func (l Layer) String() string {
	switch l {
	case LayerWaypoints:
		return "waypoints"
	case LayerMarkers:
		return "markers"
	case LayerCursor:
		return "cursor"
	case LayerRoutes:
		return "routes"
	case LayerNogos:
		return "nogos"
	default:
		return "unknown"
	}
}

const (
	RouteColor        = "#2aa38d"
	NogoColor         = "#b35a54"
	NogoSelectedColor = "#abb357"
)

// State is the client-local session state. It is never persisted.
type State struct {
	Mode Mode

	// PendingPoints are the waypoints of the route or nogo being drawn.
	PendingPoints []geo.Point
	// PendingNogos are traced nogo geometries not yet accepted by the store.
	PendingNogos []*geom.LineString
	// SelectedNogoIDs are nogos marked for deletion, in selection order.
	SelectedNogoIDs []string
	ShowAllNogos    bool

	// Cursor is the end of the preview line, nil when none is drawn.
	Cursor *geo.Point

	// Epoch advances whenever outstanding requests become irrelevant (mode
	// switch, Escape, clearing routes). Results carry the epoch they were
	// requested in and are dropped when it no longer matches.
	Epoch uint64
	// InFlight is set while a route request or the nogo submission that
	// follows it is outstanding. No second request is issued meanwhile.
	InFlight bool

	// Err is the last failure shown to the user, cleared by the next action
	// that starts over.
	Err string
}

// NewState returns the initial state: routing mode, nothing pending.
func NewState() State {
	return State{Mode: ModeRouting}
}

// IsSelected reports whether id is marked for deletion.
func (s State) IsSelected(id string) bool {
	return indexOf(s.SelectedNogoIDs, id) >= 0
}

// Editing reports whether the session is in nogo editing mode.
func (s State) Editing() bool {
	return s.Mode == ModeEditingNogos
}

// clone copies the slices so the returned state shares nothing with s.
func (s State) clone() State {
	out := s
	out.PendingPoints = append([]geo.Point(nil), s.PendingPoints...)
	out.PendingNogos = append([]*geom.LineString(nil), s.PendingNogos...)
	out.SelectedNogoIDs = append([]string(nil), s.SelectedNogoIDs...)
	if s.Cursor != nil {
		c := *s.Cursor
		out.Cursor = &c
	}
	return out
}

func indexOf(ids []string, id string) int {
	for i, existing := range ids {
		if existing == id {
			return i
		}
	}
	return -1
}
