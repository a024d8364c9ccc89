package scenegen

import (
	"math"

	"github.com/paulmach/orb"
)

// euclideanDistance returns distance between two points (assuming they are Euclidean: X == easting, Y == northing)
func euclideanDistance(p, q orb.Point) float64 {
	xdistance := p[0] - q[0]
	ydistance := p[1] - q[1]
	return math.Sqrt(xdistance*xdistance + ydistance*ydistance)
}

// distanceToSegment returns distance from point to segment [a, b]
func distanceToSegment(pt, a, b orb.Point) float64 {
	abX := b[0] - a[0]
	abY := b[1] - a[1]
	segLenSq := abX*abX + abY*abY
	if segLenSq == 0 {
		return euclideanDistance(pt, a)
	}
	t := ((pt[0]-a[0])*abX + (pt[1]-a[1])*abY) / segLenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	proj := orb.Point{a[0] + t*abX, a[1] + t*abY}
	return euclideanDistance(pt, proj)
}

// distanceToLine returns minimum distance from point to polyline
func distanceToLine(pt orb.Point, line orb.LineString) float64 {
	best := math.Inf(1)
	for i := 1; i < len(line); i++ {
		d := distanceToSegment(pt, line[i-1], line[i])
		if d < best {
			best = d
		}
	}
	if len(line) == 1 {
		best = euclideanDistance(pt, line[0])
	}
	return best
}

// lineLength returns length for given line
func lineLength(line orb.LineString) float64 {
	totalLength := 0.0
	for i := 1; i < len(line); i++ {
		totalLength += euclideanDistance(line[i-1], line[i])
	}
	return totalLength
}

// lineCentroid returns length-weighted center point for given line
func lineCentroid(line orb.LineString) orb.Point {
	if len(line) == 0 {
		return orb.Point{}
	}
	if len(line) == 1 {
		return line[0]
	}
	totalLength := lineLength(line)
	if totalLength == 0 {
		return line[0]
	}
	x, y := 0.0, 0.0
	for i := 1; i < len(line); i++ {
		w := euclideanDistance(line[i-1], line[i]) / totalLength
		x += w * (line[i-1][0] + line[i][0]) / 2
		y += w * (line[i-1][1] + line[i][1]) / 2
	}
	return orb.Point{x, y}
}

// pointOnLine returns a point on given line at given distance from its start
func pointOnLine(line orb.LineString, distance float64) orb.Point {
	if len(line) == 0 {
		return orb.Point{}
	}
	remaining := distance
	for i := 1; i < len(line); i++ {
		segLen := euclideanDistance(line[i-1], line[i])
		if remaining <= segLen && segLen > 0 {
			fraction := remaining / segLen
			return orb.Point{
				(1-fraction)*line[i-1][0] + fraction*line[i][0],
				(1-fraction)*line[i-1][1] + fraction*line[i][1],
			}
		}
		remaining -= segLen
	}
	return line[len(line)-1]
}

// validPoint reports whether both coordinates are finite
func validPoint(pt orb.Point) bool {
	return !math.IsNaN(pt[0]) && !math.IsInf(pt[0], 0) && !math.IsNaN(pt[1]) && !math.IsInf(pt[1], 0)
}

// validLine reports whether polyline has at least 2 finite points
func validLine(line orb.LineString) bool {
	if len(line) < 2 {
		return false
	}
	for i := range line {
		if !validPoint(line[i]) {
			return false
		}
	}
	return true
}

// validPolygon reports whether polygon has a non-empty finite outer ring
func validPolygon(poly orb.Polygon) bool {
	if len(poly) == 0 || len(poly[0]) < 3 {
		return false
	}
	for i := range poly {
		for j := range poly[i] {
			if !validPoint(poly[i][j]) {
				return false
			}
		}
	}
	return true
}
