package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"cycle_planner/internal/editor"
	"cycle_planner/internal/geo"
)

// step is one parsed script line.
type step struct {
	line  int
	event editor.Event
	// settle waits for outstanding calls instead of dispatching.
	settle bool
	// pick selects the n-th drawn nogo (1-based) when event is nil.
	pick int
}

// parseScript reads one command per line. Blank lines and lines starting
// with '#' are skipped.
func parseScript(r io.Reader) ([]step, error) {
	var steps []step
	sc := bufio.NewScanner(r)
	n := 0
	for sc.Scan() {
		n++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		s, err := parseLine(text)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", n, err)
		}
		s.line = n
		steps = append(steps, s)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading script: %w", err)
	}
	return steps, nil
}

func parseLine(text string) (step, error) {
	fields := strings.Fields(text)
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "click", "move":
		p, err := parsePoint(args)
		if err != nil {
			return step{}, fmt.Errorf("%s: %w", cmd, err)
		}
		if cmd == "click" {
			return step{event: editor.MapClicked{Point: p}}, nil
		}
		return step{event: editor.CursorMoved{Point: p}}, nil
	case "key":
		if len(args) != 1 || (args[0] != editor.KeyEnter && args[0] != editor.KeyEscape) {
			return step{}, fmt.Errorf("key: want Enter or Escape")
		}
		return step{event: editor.KeyPressed{Key: args[0]}}, nil
	case "select":
		if len(args) != 1 {
			return step{}, fmt.Errorf("select: want one id")
		}
		if strings.HasPrefix(args[0], "#") {
			i, err := strconv.Atoi(args[0][1:])
			if err != nil || i < 1 {
				return step{}, fmt.Errorf("select: bad index %q", args[0])
			}
			return step{pick: i}, nil
		}
		return step{event: editor.NogoClicked{ID: args[0]}}, nil
	}

	if len(args) != 0 {
		return step{}, fmt.Errorf("%s takes no arguments", cmd)
	}
	switch cmd {
	case "toggle-mode":
		return step{event: editor.ModeToggled{}}, nil
	case "toggle-nogos":
		return step{event: editor.ShowAllToggled{}}, nil
	case "delete":
		return step{event: editor.DeleteRequested{}}, nil
	case "directions":
		return step{event: editor.DirectionsRequested{}}, nil
	case "clear":
		return step{event: editor.ClearRequested{}}, nil
	case "wait":
		return step{settle: true}, nil
	}
	return step{}, fmt.Errorf("unknown command %q", cmd)
}

func parsePoint(args []string) (geo.Point, error) {
	if len(args) != 2 {
		return geo.Point{}, fmt.Errorf("want lon lat")
	}
	lon, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return geo.Point{}, fmt.Errorf("bad longitude %q", args[0])
	}
	lat, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return geo.Point{}, fmt.Errorf("bad latitude %q", args[1])
	}
	return geo.Point{Lon: lon, Lat: lat}, nil
}

// runScript feeds steps to the controller and waits for the last one to
// settle.
func runScript(ctrl *editor.Controller, m *editor.LogMap, steps []step) error {
	for _, s := range steps {
		switch {
		case s.settle:
			ctrl.Settle()
		case s.event != nil:
			ctrl.Dispatch(s.event)
		default:
			ctrl.Settle()
			drawn := m.Nogos()
			if s.pick > len(drawn) {
				return fmt.Errorf("line %d: select #%d: only %d nogos shown", s.line, s.pick, len(drawn))
			}
			ctrl.Dispatch(editor.NogoClicked{ID: drawn[s.pick-1]})
		}
	}
	ctrl.Settle()
	return nil
}
