package geo

import (
	"encoding/binary"

	"github.com/twpayne/go-geom"
	gjson "github.com/twpayne/go-geom/encoding/geojson"
	"github.com/twpayne/go-geom/encoding/wkb"
)

// ToWKB encodes ls as little-endian WKB for storage in a bytea column.
func ToWKB(ls *geom.LineString) ([]byte, error) {
	if ls == nil {
		return nil, nil
	}
	return wkb.Marshal(ls, binary.LittleEndian)
}

// FromWKB decodes a stored WKB LineString.
func FromWKB(b []byte) (*geom.LineString, error) {
	if len(b) == 0 {
		return nil, ErrEmptyCoordinates
	}
	g, err := wkb.Unmarshal(b)
	if err != nil {
		return nil, err
	}
	return AsLineString(g)
}

// ToGeoJSON renders ls as a GeoJSON geometry object.
func ToGeoJSON(ls *geom.LineString) ([]byte, error) {
	return gjson.Marshal(ls)
}
