package scenegen

import (
	"math"

	"github.com/paulmach/orb"
)

const (
	earthR = 20037508.34
)

func epsg3857To4326(x, y float64) (float64, float64) {
	lon := x * 180 / earthR
	lat := math.Atan(math.Exp(y*math.Pi/earthR))*360/math.Pi - 90
	return lon, lat
}

func epsg4326To3857(lon, lat float64) (float64, float64) {
	x := lon * earthR / 180
	y := math.Log(math.Tan((90+lat)*math.Pi/360)) / (math.Pi / 180)
	y = y * earthR / 180
	return x, y
}

func pointToEuclidean(pt orb.Point) orb.Point {
	euclideanX, euclideanY := epsg4326To3857(pt.Lon(), pt.Lat())
	return orb.Point{euclideanX, euclideanY}
}

func lineToEuclidean(line orb.LineString) orb.LineString {
	newLine := make(orb.LineString, len(line))
	for i, pt := range line {
		newLine[i] = pointToEuclidean(pt)
	}
	return newLine
}

func ringToEuclidean(ring orb.Ring) orb.Ring {
	newRing := make(orb.Ring, len(ring))
	for i, pt := range ring {
		newRing[i] = pointToEuclidean(pt)
	}
	return newRing
}

func polygonToEuclidean(poly orb.Polygon) orb.Polygon {
	newPoly := make(orb.Polygon, len(poly))
	for i, ring := range poly {
		newPoly[i] = ringToEuclidean(ring)
	}
	return newPoly
}
