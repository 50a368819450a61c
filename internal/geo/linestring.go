// Package geo holds the LineString handling shared by the nogo store service
// and the editing controller.
package geo

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/twpayne/go-geom"
)

// MidpointEpsilon is added to the longitude and latitude of the midpoint
// inserted into straight two-point nogos. The routing engine lets a route
// slip through a perfectly straight obstacle that it meets at a tangent, so
// two-point lines get a slight bend.
const MidpointEpsilon = 1e-6

var (
	ErrTooFewPoints     = errors.New("a line string needs at least 2 points")
	ErrMixedDimensions  = errors.New("all coordinates must have the same number of values")
	ErrBadDimension     = errors.New("coordinates must have 2, 3 or 4 values")
	ErrNotALineString   = errors.New("geometry is not a LineString")
	ErrEmptyCoordinates = errors.New("coordinates are required")
)

// Point is a map coordinate picked by the user.
type Point struct {
	Lon float64
	Lat float64
}

func (p Point) String() string {
	return strconv.FormatFloat(p.Lon, 'f', -1, 64) + "," + strconv.FormatFloat(p.Lat, 'f', -1, 64)
}

// LonLats renders points the way the routing engine expects them:
// "lon,lat|lon,lat|...".
func LonLats(points []Point) string {
	parts := make([]string, len(points))
	for i, p := range points {
		parts[i] = p.String()
	}
	return strings.Join(parts, "|")
}

func layoutForStride(stride int) (geom.Layout, error) {
	switch stride {
	case 2:
		return geom.XY, nil
	case 3:
		return geom.XYZ, nil
	case 4:
		return geom.XYZM, nil
	default:
		return geom.NoLayout, ErrBadDimension
	}
}

// NewLineString builds a LineString from raw coordinate tuples. The layout is
// taken from the first tuple; every tuple must match it.
func NewLineString(coords [][]float64) (*geom.LineString, error) {
	if coords == nil {
		return nil, ErrEmptyCoordinates
	}
	if len(coords) < 2 {
		return nil, ErrTooFewPoints
	}
	stride := len(coords[0])
	layout, err := layoutForStride(stride)
	if err != nil {
		return nil, err
	}
	flat := make([]float64, 0, stride*len(coords))
	for i, c := range coords {
		if len(c) != stride {
			return nil, fmt.Errorf("coordinate %d: %w", i, ErrMixedDimensions)
		}
		flat = append(flat, c...)
	}
	return geom.NewLineStringFlat(layout, flat), nil
}

// Coordinates returns the tuples of ls, one slice per vertex.
func Coordinates(ls *geom.LineString) [][]float64 {
	if ls == nil {
		return nil
	}
	n := ls.NumCoords()
	out := make([][]float64, n)
	for i := 0; i < n; i++ {
		c := ls.Coord(i)
		out[i] = append([]float64(nil), c...)
	}
	return out
}

// IsDegenerate reports whether ls is a straight two-point line.
func IsDegenerate(ls *geom.LineString) bool {
	return ls != nil && ls.NumCoords() == 2
}

// Normalize returns ls with a midpoint inserted when it has exactly two
// vertices. The midpoint is the arithmetic mean of the endpoints with
// MidpointEpsilon added to longitude and latitude; any further ordinates
// (elevation, measure) are the plain mean. Lines with three or more vertices
// are returned unchanged.
func Normalize(ls *geom.LineString) *geom.LineString {
	if !IsDegenerate(ls) {
		return ls
	}
	a, b := ls.Coord(0), ls.Coord(1)
	mid := make(geom.Coord, len(a))
	for i := range a {
		mid[i] = (a[i] + b[i]) / 2
		if i < 2 {
			mid[i] += MidpointEpsilon
		}
	}
	flat := make([]float64, 0, 3*len(a))
	flat = append(flat, a...)
	flat = append(flat, mid...)
	flat = append(flat, b...)
	return geom.NewLineStringFlat(ls.Layout(), flat)
}

// AsLineString narrows a decoded geometry to a LineString.
func AsLineString(g geom.T) (*geom.LineString, error) {
	ls, ok := g.(*geom.LineString)
	if !ok {
		return nil, fmt.Errorf("%w: got %T", ErrNotALineString, g)
	}
	if ls.NumCoords() < 2 {
		return nil, ErrTooFewPoints
	}
	return ls, nil
}
