package editor

import (
	"github.com/twpayne/go-geom"

	"cycle_planner/internal/brouter"
	"cycle_planner/internal/geo"
)

// Transition returns the state following ev and the effects to run. It does
// not modify s.
func Transition(s State, ev Event) (State, []Effect) {
	next := s.clone()

	if epoch, ok := resultEpoch(ev); ok && epoch != s.Epoch {
		return onStaleResult(next, ev)
	}

	switch e := ev.(type) {
	case MapClicked:
		return onMapClicked(next, e.Point)
	case CursorMoved:
		return onCursorMoved(next, e.Point)
	case KeyPressed:
		switch e.Key {
		case KeyEnter:
			return requestRoute(next)
		case KeyEscape:
			return onEscape(next)
		}
		return next, nil
	case ModeToggled:
		return onModeToggled(next)
	case ShowAllToggled:
		return onShowAllToggled(next)
	case NogoClicked:
		return onNogoClicked(next, e.ID)
	case DeleteRequested:
		if !next.Editing() || len(next.SelectedNogoIDs) == 0 {
			return next, nil
		}
		return next, []Effect{DeleteNogos{IDs: append([]string(nil), next.SelectedNogoIDs...), Epoch: next.Epoch}}
	case DirectionsRequested:
		if next.Editing() {
			return next, nil
		}
		return requestRoute(next)
	case ClearRequested:
		return onClear(next)
	case NogosChanged:
		if !next.ShowAllNogos {
			return next, nil
		}
		return next, []Effect{FetchNogos{Epoch: next.Epoch}}
	case RouteComputed:
		return onRouteComputed(next, e)
	case NogosSubmitted:
		return onNogosSubmitted(next, e)
	case NogosDeleted:
		return onNogosDeleted(next, e)
	case NogosLoaded:
		return onNogosLoaded(next, e)
	}
	return next, nil
}

func onMapClicked(s State, p geo.Point) (State, []Effect) {
	if s.InFlight {
		return s, nil
	}
	// Clicking the map while nogos are selected must not start a new trace.
	if s.Editing() && len(s.SelectedNogoIDs) > 0 {
		return s, nil
	}
	// A trace whose routing failed keeps its two waypoints for a retry with
	// Enter; a third click would trace a different nogo.
	if s.Editing() && len(s.PendingPoints) >= 2 {
		return s, nil
	}

	s.PendingPoints = append(s.PendingPoints, p)
	effects := []Effect{DrawMarker{Layer: LayerWaypoints, Point: p}}
	if s.Editing() && len(s.PendingPoints) >= 2 {
		next, more := requestRoute(s)
		return next, append(effects, more...)
	}
	return s, effects
}

func onCursorMoved(s State, p geo.Point) (State, []Effect) {
	if !s.Editing() || len(s.PendingPoints) != 1 || s.InFlight {
		return s, nil
	}
	s.Cursor = &p
	return s, []Effect{
		ClearLayer{Layer: LayerCursor},
		DrawCursorLine{From: s.PendingPoints[0], To: p},
	}
}

// requestRoute issues a routing request for the pending waypoints.
func requestRoute(s State) (State, []Effect) {
	if s.InFlight || len(s.PendingPoints) < 2 {
		return s, nil
	}
	profile := brouter.ProfileTrekking
	if s.Editing() {
		profile = brouter.ProfileAll
	}
	s.InFlight = true
	s.Err = ""
	s.Cursor = nil
	return s, []Effect{
		ClearLayer{Layer: LayerCursor},
		RequestRoute{Points: append([]geo.Point(nil), s.PendingPoints...), Profile: profile, Epoch: s.Epoch},
		RefreshControls{},
	}
}

func onEscape(s State) (State, []Effect) {
	s.PendingPoints = nil
	s.PendingNogos = nil
	s.Cursor = nil
	s.InFlight = false
	s.Err = ""
	s.Epoch++
	effects := []Effect{
		ClearLayer{Layer: LayerWaypoints},
		ClearLayer{Layer: LayerCursor},
	}
	if s.Editing() && len(s.SelectedNogoIDs) > 0 {
		s.SelectedNogoIDs = nil
		effects = append(effects, FetchNogos{Epoch: s.Epoch})
	}
	return s, append(effects, RefreshControls{})
}

// onStaleResult drops a result from an earlier epoch. A create or delete
// that succeeded still changed the store, so the nogo layer is reloaded.
func onStaleResult(s State, ev Event) (State, []Effect) {
	var err error
	switch e := ev.(type) {
	case NogosSubmitted:
		err = e.Err
	case NogosDeleted:
		err = e.Err
	default:
		return s, nil
	}
	if err != nil || !s.ShowAllNogos {
		return s, nil
	}
	return s, []Effect{FetchNogos{Epoch: s.Epoch}}
}

func onModeToggled(s State) (State, []Effect) {
	if s.Editing() {
		s.Mode = ModeRouting
	} else {
		s.Mode = ModeEditingNogos
		s.ShowAllNogos = true
	}
	s.PendingPoints = nil
	s.PendingNogos = nil
	s.SelectedNogoIDs = nil
	s.Cursor = nil
	s.InFlight = false
	s.Err = ""
	s.Epoch++

	effects := []Effect{
		ClearLayer{Layer: LayerWaypoints},
		ClearLayer{Layer: LayerCursor},
		ClearLayer{Layer: LayerMarkers},
		ClearLayer{Layer: LayerRoutes},
		ClearLayer{Layer: LayerNogos},
	}
	if s.ShowAllNogos {
		effects = append(effects, FetchNogos{Epoch: s.Epoch})
	}
	return s, append(effects, RefreshControls{})
}

func onShowAllToggled(s State) (State, []Effect) {
	// Nogos stay visible for as long as they are being edited.
	if s.Editing() && s.ShowAllNogos {
		return s, nil
	}
	s.ShowAllNogos = !s.ShowAllNogos
	if s.ShowAllNogos {
		return s, []Effect{FetchNogos{Epoch: s.Epoch}, RefreshControls{}}
	}
	return s, []Effect{ClearLayer{Layer: LayerNogos}, RefreshControls{}}
}

func onNogoClicked(s State, id string) (State, []Effect) {
	if !s.Editing() || id == "" {
		return s, nil
	}
	selected := true
	if i := indexOf(s.SelectedNogoIDs, id); i >= 0 {
		s.SelectedNogoIDs = append(s.SelectedNogoIDs[:i], s.SelectedNogoIDs[i+1:]...)
		selected = false
	} else {
		s.SelectedNogoIDs = append(s.SelectedNogoIDs, id)
	}
	return s, []Effect{StyleNogo{ID: id, Selected: selected}, RefreshControls{}}
}

func onClear(s State) (State, []Effect) {
	if s.Editing() {
		return s, nil
	}
	s.PendingPoints = nil
	s.InFlight = false
	s.Err = ""
	s.Epoch++
	return s, []Effect{
		ClearLayer{Layer: LayerWaypoints},
		ClearLayer{Layer: LayerMarkers},
		ClearLayer{Layer: LayerRoutes},
		RefreshControls{},
	}
}

func onRouteComputed(s State, e RouteComputed) (State, []Effect) {
	if !s.InFlight {
		return s, nil
	}
	if e.Err != nil || e.Geometry == nil {
		return failed(s, "Could not compute route", e.Err)
	}

	if !s.Editing() {
		effects := []Effect{ClearLayer{Layer: LayerWaypoints}}
		for _, p := range s.PendingPoints {
			effects = append(effects, DrawMarker{Layer: LayerMarkers, Point: p})
		}
		s.PendingPoints = nil
		s.InFlight = false
		return s, append(effects, DrawRoute{Geometry: e.Geometry}, RefreshControls{})
	}

	// The traced path becomes a nogo. It stays pending until the store
	// accepts it, and InFlight stays set until then.
	s.PendingNogos = append(s.PendingNogos, geo.Normalize(e.Geometry))
	s.PendingPoints = nil
	return s, []Effect{
		SubmitNogos{Lines: append([]*geom.LineString(nil), s.PendingNogos...), Epoch: s.Epoch},
	}
}

func onNogosSubmitted(s State, e NogosSubmitted) (State, []Effect) {
	if !s.InFlight {
		return s, nil
	}
	s.InFlight = false
	if e.Err != nil {
		next, effects := failed(s, "Could not save no-go route", e.Err)
		return next, append([]Effect{ClearLayer{Layer: LayerWaypoints}}, effects...)
	}
	s.PendingNogos = nil
	return s, []Effect{
		ClearLayer{Layer: LayerWaypoints},
		ClearLayer{Layer: LayerCursor},
		FetchNogos{Epoch: s.Epoch},
		RefreshControls{},
	}
}

func onNogosDeleted(s State, e NogosDeleted) (State, []Effect) {
	if e.Err != nil {
		return failed(s, "Could not delete no-go routes", e.Err)
	}
	s.SelectedNogoIDs = nil
	s.Err = ""
	return s, []Effect{FetchNogos{Epoch: s.Epoch}, RefreshControls{}}
}

func onNogosLoaded(s State, e NogosLoaded) (State, []Effect) {
	if e.Err != nil {
		return failed(s, "Could not load no-go routes", e.Err)
	}
	if !s.ShowAllNogos {
		return s, nil
	}

	// Drop selections of nogos that no longer exist.
	present := make(map[string]bool, len(e.Nogos))
	for _, n := range e.Nogos {
		present[n.ID] = true
	}
	kept := s.SelectedNogoIDs[:0]
	for _, id := range s.SelectedNogoIDs {
		if present[id] {
			kept = append(kept, id)
		}
	}
	s.SelectedNogoIDs = kept

	return s, []Effect{
		ClearLayer{Layer: LayerNogos},
		DrawNogos{Nogos: e.Nogos, Selected: append([]string(nil), s.SelectedNogoIDs...)},
		RefreshControls{},
	}
}

// failed clears the in-flight flag and surfaces err. Pending edits are kept
// so the user can retry.
func failed(s State, what string, err error) (State, []Effect) {
	s.InFlight = false
	msg := what
	if err != nil {
		msg += ": " + err.Error()
	}
	s.Err = msg
	return s, []Effect{ShowError{Message: msg}, RefreshControls{}}
}
