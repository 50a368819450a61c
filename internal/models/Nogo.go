package models

import (
	"time"

	"github.com/twpayne/go-geom"

	"cycle_planner/internal/geo"
)

// NogoType is the only geometry type nogos are stored with.
const NogoType = "LineString"

// Nogo is a persisted line that computed routes must not cross.
// Nogos are created and deleted, never updated.
type Nogo struct {
	ID       string
	Geometry *geom.LineString
}

// Document converts the nogo to its wire shape.
func (n Nogo) Document() NogoDocument {
	return NogoDocument{
		ID:          n.ID,
		Type:        NogoType,
		Coordinates: geo.Coordinates(n.Geometry),
	}
}

// NogoRecord is the relational row for a nogo.
// Geometry holds the LineString as WKB, like any other geometry column in
// the schema.
type NogoRecord struct {
	ID        string    `gorm:"type:uuid;primaryKey"`
	Type      string    `gorm:"type:varchar(32);not null;default:'LineString'"`
	Geometry  []byte    `gorm:"type:bytea;not null"`
	CreatedAt time.Time `gorm:"index"`
}

func (NogoRecord) TableName() string {
	return "nogos"
}

// NogoDocument is what GET /api/nogos returns for each nogo.
type NogoDocument struct {
	ID          string      `json:"_id"`
	Type        string      `json:"type"`
	Coordinates [][]float64 `json:"coordinates"`
}

// NogoInput is one element of the POST /api/nogos body.
// Type is optional; when present it must be "LineString".
type NogoInput struct {
	Type        string      `json:"type"`
	Coordinates [][]float64 `json:"coordinates"`
}
