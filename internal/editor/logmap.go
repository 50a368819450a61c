package editor

import (
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/twpayne/go-geom"

	"cycle_planner/internal/geo"
	"cycle_planner/internal/models"
)

// LogMap is a headless Map that logs every rendering call and keeps track
// of the nogos it has drawn, so scripts can refer to them.
type LogMap struct {
	log *logrus.Entry

	mu    sync.Mutex
	nogos []string
}

func NewLogMap(log *logrus.Entry) *LogMap {
	return &LogMap{log: log}
}

func (m *LogMap) ClearLayer(l Layer) {
	if l == LayerNogos {
		m.mu.Lock()
		m.nogos = nil
		m.mu.Unlock()
	}
	m.log.WithField("layer", l.String()).Debug("clear layer")
}

func (m *LogMap) DrawMarker(l Layer, p geo.Point) {
	m.log.WithFields(logrus.Fields{"layer": l.String(), "point": p.String()}).Info("marker")
}

func (m *LogMap) DrawLine(l Layer, ls *geom.LineString, color string) {
	entry := m.log.WithFields(logrus.Fields{
		"layer":  l.String(),
		"points": ls.NumCoords(),
		"color":  color,
	})
	if raw, err := geo.ToGeoJSON(ls); err == nil {
		entry = entry.WithField("geometry", string(raw))
	}
	entry.Info("line")
}

func (m *LogMap) DrawNogo(n models.Nogo, color string) {
	m.mu.Lock()
	m.nogos = append(m.nogos, n.ID)
	m.mu.Unlock()
	m.log.WithFields(logrus.Fields{
		"nogo_id": n.ID,
		"points":  n.Geometry.NumCoords(),
		"color":   color,
	}).Info("nogo")
}

func (m *LogMap) SetNogoColor(id, color string) {
	m.log.WithFields(logrus.Fields{"nogo_id": id, "color": color}).Info("restyle nogo")
}

func (m *LogMap) UpdateControl(id string, v ControlView) {
	if !v.Visible {
		return
	}
	m.log.WithFields(logrus.Fields{
		"control": id,
		"enabled": v.Enabled,
		"active":  v.Active,
	}).Debug(v.Text)
}

func (m *LogMap) ShowError(msg string) {
	m.log.Error(msg)
}

// Nogos returns the ids of the drawn nogos in drawing order.
func (m *LogMap) Nogos() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.nogos...)
}
