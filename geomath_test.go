package scenegen

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
)

func TestDistanceToSegment(t *testing.T) {
	a := orb.Point{0, 0}
	b := orb.Point{10, 0}
	res := 5.0
	d := distanceToSegment(orb.Point{5, 5}, a, b)
	if d != res {
		t.Errorf("Distance must be %f, but got %f", res, d)
	}
	// beyond segment end the closest point is the endpoint itself
	res = math.Sqrt(2)
	d = distanceToSegment(orb.Point{11, 1}, a, b)
	if Round(d, 0.00005) != Round(res, 0.00005) {
		t.Errorf("Distance must be %f, but got %f", res, d)
	}
}

func TestDistanceToLine(t *testing.T) {
	line := orb.LineString{{0, 0}, {10, 0}, {10, 10}}
	res := 2.0
	d := distanceToLine(orb.Point{12, 5}, line)
	if d != res {
		t.Errorf("Distance must be %f, but got %f", res, d)
	}
}

func TestLineLength(t *testing.T) {
	line := orb.LineString{{0, 0}, {10, 0}, {10, 10}}
	res := 20.0
	l := lineLength(line)
	if l != res {
		t.Errorf("Length must be %f, but got %f", res, l)
	}
}

func TestLineCentroid(t *testing.T) {
	line := orb.LineString{{0, 0}, {10, 0}}
	res := orb.Point{5, 0}
	c := lineCentroid(line)
	if c != res {
		t.Errorf("Centroid must be %v, but got %v", res, c)
	}
}

func TestPointOnLine(t *testing.T) {
	line := orb.LineString{{0, 0}, {10, 0}, {10, 10}}
	res := orb.Point{10, 5}
	pt := pointOnLine(line, 15)
	if pt != res {
		t.Errorf("Point must be %v, but got %v", res, pt)
	}
}

func TestProjectionRoundTrip(t *testing.T) {
	lon, lat := 37.6417350769043, 55.751849391735284
	x, y := epsg4326To3857(lon, lat)
	backLon, backLat := epsg3857To4326(x, y)
	if Round(backLon, 0.000005) != Round(lon, 0.000005) {
		t.Errorf("Longitude must be %f, but got %f", lon, backLon)
	}
	if Round(backLat, 0.000005) != Round(lat, 0.000005) {
		t.Errorf("Latitude must be %f, but got %f", lat, backLat)
	}
}

func TestValidGeometry(t *testing.T) {
	if validPoint(orb.Point{math.NaN(), 0}) {
		t.Error("NaN point must be invalid")
	}
	if validLine(orb.LineString{{0, 0}}) {
		t.Error("Single-point line must be invalid")
	}
	if validPolygon(orb.Polygon{}) {
		t.Error("Empty polygon must be invalid")
	}
	if !validPolygon(orb.Polygon{{{0, 0}, {1, 0}, {1, 1}, {0, 0}}}) {
		t.Error("Proper polygon must be valid")
	}
}

func Round(x, unit float64) float64 {
	if x > 0 {
		return float64(int64(x/unit+0.5)) * unit
	}
	return float64(int64(x/unit-0.5)) * unit
}
