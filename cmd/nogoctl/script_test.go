package main

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/twpayne/go-geom"

	"cycle_planner/internal/brouter"
	"cycle_planner/internal/editor"
	"cycle_planner/internal/geo"
	"cycle_planner/internal/models"
)

func TestParseScript(t *testing.T) {
	script := `
# trace a nogo
toggle-mode
click -82.9 42.3
move -82.85 42.35
click -82.8 42.4
wait
select #1
select 6650a1
key Escape
delete
toggle-nogos
directions
clear
key Enter
`
	steps, err := parseScript(strings.NewReader(script))
	if err != nil {
		t.Fatalf("parseScript: %v", err)
	}

	want := []step{
		{line: 3, event: editor.ModeToggled{}},
		{line: 4, event: editor.MapClicked{Point: geo.Point{Lon: -82.9, Lat: 42.3}}},
		{line: 5, event: editor.CursorMoved{Point: geo.Point{Lon: -82.85, Lat: 42.35}}},
		{line: 6, event: editor.MapClicked{Point: geo.Point{Lon: -82.8, Lat: 42.4}}},
		{line: 7, settle: true},
		{line: 8, pick: 1},
		{line: 9, event: editor.NogoClicked{ID: "6650a1"}},
		{line: 10, event: editor.KeyPressed{Key: editor.KeyEscape}},
		{line: 11, event: editor.DeleteRequested{}},
		{line: 12, event: editor.ShowAllToggled{}},
		{line: 13, event: editor.DirectionsRequested{}},
		{line: 14, event: editor.ClearRequested{}},
		{line: 15, event: editor.KeyPressed{Key: editor.KeyEnter}},
	}
	if !reflect.DeepEqual(steps, want) {
		t.Fatalf("steps = %+v\nwant %+v", steps, want)
	}
}

func TestParseScriptErrors(t *testing.T) {
	tests := []struct {
		name   string
		script string
	}{
		{"unknown command", "fly 1 2"},
		{"click without lat", "click 1"},
		{"bad longitude", "click east 2"},
		{"bad key", "key Tab"},
		{"bad index", "select #0"},
		{"extra argument", "delete now"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := parseScript(strings.NewReader(tt.script)); err == nil {
				t.Fatalf("parseScript(%q) succeeded", tt.script)
			}
		})
	}
}

type memStore struct {
	mu      sync.Mutex
	nogos   []models.Nogo
	next    int
	deleted []string
}

func (s *memStore) List(ctx context.Context) ([]models.Nogo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Nogo(nil), s.nogos...), nil
}

func (s *memStore) CreateMany(ctx context.Context, lines []*geom.LineString) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ls := range lines {
		s.next++
		s.nogos = append(s.nogos, models.Nogo{ID: fmt.Sprintf("new%d", s.next), Geometry: ls})
	}
	return nil
}

func (s *memStore) DeleteMany(ctx context.Context, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, ids...)
	kept := s.nogos[:0]
	for _, n := range s.nogos {
		if !contains(ids, n.ID) {
			kept = append(kept, n)
		}
	}
	s.nogos = kept
	return nil
}

func contains(ids []string, id string) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}

type stubRouter struct{}

func (stubRouter) Route(ctx context.Context, points []geo.Point, profile brouter.Profile) (*geom.LineString, error) {
	coords := make([][]float64, len(points))
	for i, p := range points {
		coords[i] = []float64{p.Lon, p.Lat}
	}
	return geo.NewLineString(coords)
}

func TestRunScriptSelectsByIndex(t *testing.T) {
	line, _ := geo.NewLineString([][]float64{{0, 0}, {1, 1}, {2, 2}})
	st := &memStore{nogos: []models.Nogo{{ID: "a", Geometry: line}, {ID: "b", Geometry: line}}}

	m := editor.NewLogMap(logrus.NewEntry(logrus.New()))
	ctrl := editor.NewController(m, stubRouter{}, st, editor.DefaultControls()...)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go ctrl.Run(ctx)

	steps, err := parseScript(strings.NewReader("toggle-mode\nselect #2\ndelete\n"))
	if err != nil {
		t.Fatalf("parseScript: %v", err)
	}
	if err := runScript(ctrl, m, steps); err != nil {
		t.Fatalf("runScript: %v", err)
	}
	if !reflect.DeepEqual(st.deleted, []string{"b"}) {
		t.Fatalf("deleted = %v, want [b]", st.deleted)
	}
	if got := m.Nogos(); !reflect.DeepEqual(got, []string{"a"}) {
		t.Fatalf("drawn = %v, want [a]", got)
	}
}

func TestRunScriptTracesNogo(t *testing.T) {
	st := &memStore{}
	m := editor.NewLogMap(logrus.NewEntry(logrus.New()))
	ctrl := editor.NewController(m, stubRouter{}, st, editor.DefaultControls()...)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go ctrl.Run(ctx)

	steps, _ := parseScript(strings.NewReader("toggle-mode\nclick 0 0\nclick 1 1\n"))
	if err := runScript(ctrl, m, steps); err != nil {
		t.Fatalf("runScript: %v", err)
	}
	if len(st.nogos) != 1 || st.nogos[0].Geometry.NumCoords() != 3 {
		t.Fatalf("stored = %+v, want one 3-point nogo", st.nogos)
	}
	if s := ctrl.State(); len(s.PendingPoints) != 0 || s.Err != "" {
		t.Fatalf("state = %+v", s)
	}
}

func TestRunScriptRejectsMissingIndex(t *testing.T) {
	m := editor.NewLogMap(logrus.NewEntry(logrus.New()))
	ctrl := editor.NewController(m, stubRouter{}, &memStore{}, editor.DefaultControls()...)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go ctrl.Run(ctx)

	steps, _ := parseScript(strings.NewReader("toggle-mode\nselect #1\n"))
	if err := runScript(ctrl, m, steps); err == nil {
		t.Fatalf("runScript selected a nogo that is not shown")
	}
}

func TestFixNogosNormalizesTwoPointLines(t *testing.T) {
	short, _ := geo.NewLineString([][]float64{{0, 0, 4}, {2, 2, 8}})
	long, _ := geo.NewLineString([][]float64{{0, 0}, {1, 1}, {2, 2}})
	st := &memStore{nogos: []models.Nogo{{ID: "short", Geometry: short}, {ID: "long", Geometry: long}}}

	fixed, err := fixNogos(context.Background(), st)
	if err != nil {
		t.Fatalf("fixNogos: %v", err)
	}
	if fixed != 1 {
		t.Fatalf("fixed = %d, want 1", fixed)
	}
	if !reflect.DeepEqual(st.deleted, []string{"short"}) {
		t.Fatalf("deleted = %v, want [short]", st.deleted)
	}
	for _, n := range st.nogos {
		if n.Geometry.NumCoords() != 3 {
			t.Fatalf("nogo %s has %d points", n.ID, n.Geometry.NumCoords())
		}
	}
	if got := st.nogos[1].Geometry.Coord(1)[2]; got != 6 {
		t.Fatalf("midpoint elevation = %v, want 6", got)
	}
}
