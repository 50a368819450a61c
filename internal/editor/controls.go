package editor

import "fmt"

// ControlView is what a control displays.
type ControlView struct {
	Text    string
	Visible bool
	Enabled bool
	// Active marks toggles that are switched on.
	Active bool
	// Action is dispatched when the control is pressed, nil for passive
	// controls.
	Action Event
}

// Control is an on-map widget whose content is derived from State.
// Refreshing a control re-renders it with the current state.
type Control interface {
	ID() string
	Render(s State) ControlView
}

// DeleteButton deletes the selected nogos. It is shown while editing.
type DeleteButton struct{}

func (DeleteButton) ID() string { return "delete" }

func (DeleteButton) Render(s State) ControlView {
	n := len(s.SelectedNogoIDs)
	v := ControlView{Visible: s.Editing(), Enabled: n > 0, Action: DeleteRequested{}}
	switch {
	case n == 0:
		v.Text = "Select nogos to delete"
	case n == 1:
		v.Text = "Delete 1 nogo"
	default:
		v.Text = fmt.Sprintf("Delete %d nogos", n)
	}
	return v
}

// SubmitButton computes a route through the pending waypoints. It is shown
// while routing.
type SubmitButton struct{}

func (SubmitButton) ID() string { return "submit" }

func (SubmitButton) Render(s State) ControlView {
	return ControlView{
		Text:    "Get directions",
		Visible: !s.Editing(),
		Enabled: len(s.PendingPoints) >= 2 && !s.InFlight,
		Action:  DirectionsRequested{},
	}
}

// ClearButton removes computed routes. It is shown while routing.
type ClearButton struct{}

func (ClearButton) ID() string { return "clear" }

func (ClearButton) Render(s State) ControlView {
	return ControlView{
		Text:    "Clear routes",
		Visible: !s.Editing(),
		Enabled: true,
		Action:  ClearRequested{},
	}
}

// ModeButton switches between routing and nogo editing.
type ModeButton struct{}

func (ModeButton) ID() string { return "mode" }

func (ModeButton) Render(s State) ControlView {
	text := "Edit no-go routes"
	if s.Editing() {
		text = "Done editing"
	}
	return ControlView{Text: text, Visible: true, Enabled: true, Active: s.Editing(), Action: ModeToggled{}}
}

// NogosButton shows or hides persisted nogos. It cannot hide them while
// they are being edited.
type NogosButton struct{}

func (NogosButton) ID() string { return "nogos" }

func (NogosButton) Render(s State) ControlView {
	text := "Show no-go routes"
	if s.ShowAllNogos {
		text = "Hide no-go routes"
	}
	return ControlView{
		Text:    text,
		Visible: true,
		Enabled: !(s.Editing() && s.ShowAllNogos),
		Active:  s.ShowAllNogos,
		Action:  ShowAllToggled{},
	}
}

// StatusBanner tells the user what is going on: the last error, or that
// nogos are being edited.
type StatusBanner struct{}

func (StatusBanner) ID() string { return "status" }

func (StatusBanner) Render(s State) ControlView {
	switch {
	case s.Err != "":
		return ControlView{Text: s.Err, Visible: true}
	case s.Editing():
		return ControlView{Text: "You are editing no-go routes", Visible: true}
	default:
		return ControlView{}
	}
}

// DefaultControls is the full control set of the planner.
func DefaultControls() []Control {
	return []Control{
		ModeButton{},
		NogosButton{},
		SubmitButton{},
		ClearButton{},
		DeleteButton{},
		StatusBanner{},
	}
}
