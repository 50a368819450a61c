package editor

import (
	"github.com/twpayne/go-geom"

	"cycle_planner/internal/brouter"
	"cycle_planner/internal/geo"
	"cycle_planner/internal/models"
)

// Keys the controller reacts to.
const (
	KeyEnter  = "Enter"
	KeyEscape = "Escape"
)

// Event is an input to Transition: user input or the result of a call.
type Event interface {
	isEvent()
}

// MapClicked is a click on empty map space.
type MapClicked struct{ Point geo.Point }

// CursorMoved is a pointer move over the map.
type CursorMoved struct{ Point geo.Point }

// KeyPressed is a key released over the map.
type KeyPressed struct{ Key string }

// ModeToggled switches between routing and nogo editing.
type ModeToggled struct{}

// ShowAllToggled shows or hides persisted nogos.
type ShowAllToggled struct{}

// NogoClicked is a click on a rendered nogo.
type NogoClicked struct{ ID string }

// DeleteRequested is the delete button being pressed.
type DeleteRequested struct{}

// DirectionsRequested is the "Get directions" button being pressed.
type DirectionsRequested struct{}

// ClearRequested is the "Clear routes" button being pressed.
type ClearRequested struct{}

// NogosChanged arrives from the store's change feed.
type NogosChanged struct{}

// RouteComputed carries the routing engine's answer.
type RouteComputed struct {
	Epoch    uint64
	Profile  brouter.Profile
	Geometry *geom.LineString
	Err      error
}

// NogosSubmitted carries the outcome of a CreateMany call.
type NogosSubmitted struct {
	Epoch uint64
	Err   error
}

// NogosDeleted carries the outcome of a DeleteMany call.
type NogosDeleted struct {
	Epoch uint64
	Err   error
}

// NogosLoaded carries the outcome of a List call.
type NogosLoaded struct {
	Epoch uint64
	Nogos []models.Nogo
	Err   error
}

func (MapClicked) isEvent()          {}
func (CursorMoved) isEvent()         {}
func (KeyPressed) isEvent()          {}
func (ModeToggled) isEvent()         {}
func (ShowAllToggled) isEvent()      {}
func (NogoClicked) isEvent()         {}
func (DeleteRequested) isEvent()     {}
func (DirectionsRequested) isEvent() {}
func (ClearRequested) isEvent()      {}
func (NogosChanged) isEvent()        {}
func (RouteComputed) isEvent()       {}
func (NogosSubmitted) isEvent()      {}
func (NogosDeleted) isEvent()        {}
func (NogosLoaded) isEvent()         {}

// resultEpoch returns the epoch a result event was requested in.
func resultEpoch(ev Event) (uint64, bool) {
	switch e := ev.(type) {
	case RouteComputed:
		return e.Epoch, true
	case NogosSubmitted:
		return e.Epoch, true
	case NogosDeleted:
		return e.Epoch, true
	case NogosLoaded:
		return e.Epoch, true
	default:
		return 0, false
	}
}
