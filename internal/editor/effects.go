package editor

import (
	"github.com/twpayne/go-geom"

	"cycle_planner/internal/brouter"
	"cycle_planner/internal/geo"
	"cycle_planner/internal/models"
)

// Effect is a side effect requested by Transition.
type Effect interface {
	isEffect()
}

// ClearLayer removes every feature from a layer.
type ClearLayer struct{ Layer Layer }

// DrawMarker places a waypoint marker.
type DrawMarker struct {
	Layer Layer
	Point geo.Point
}

// DrawCursorLine draws the preview line while tracing a nogo.
type DrawCursorLine struct{ From, To geo.Point }

// DrawRoute renders a computed route.
type DrawRoute struct{ Geometry *geom.LineString }

// DrawNogos renders persisted nogos, highlighting the selected ones.
type DrawNogos struct {
	Nogos    []models.Nogo
	Selected []string
}

// StyleNogo recolors one rendered nogo.
type StyleNogo struct {
	ID       string
	Selected bool
}

// RefreshControls re-renders every control from the new state.
type RefreshControls struct{}

// ShowError surfaces a failure to the user.
type ShowError struct{ Message string }

// RequestRoute asks the routing engine for a path through Points.
type RequestRoute struct {
	Points  []geo.Point
	Profile brouter.Profile
	Epoch   uint64
}

// SubmitNogos sends traced geometries to the store.
type SubmitNogos struct {
	Lines []*geom.LineString
	Epoch uint64
}

// DeleteNogos asks the store to delete ids.
type DeleteNogos struct {
	IDs   []string
	Epoch uint64
}

// FetchNogos reloads every persisted nogo.
type FetchNogos struct{ Epoch uint64 }

func (ClearLayer) isEffect()      {}
func (DrawMarker) isEffect()      {}
func (DrawCursorLine) isEffect()  {}
func (DrawRoute) isEffect()       {}
func (DrawNogos) isEffect()       {}
func (StyleNogo) isEffect()       {}
func (RefreshControls) isEffect() {}
func (ShowError) isEffect()       {}
func (RequestRoute) isEffect()    {}
func (SubmitNogos) isEffect()     {}
func (DeleteNogos) isEffect()     {}
func (FetchNogos) isEffect()      {}
