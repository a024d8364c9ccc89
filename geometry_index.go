package scenegen

import (
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/paulmach/orb/quadtree"
	"github.com/pkg/errors"
)

const (
	// indexResolution is the densification step (meters) for polyline
	// geometries before insertion. A coarser step risks missing an edge
	// whose segment passes close to a query point while its vertices do not.
	indexResolution = 10.0

	boundPadding = 1.0
)

// indexPoint is a single quadtree entry: one vertex of an element geometry.
type indexPoint struct {
	pt        orb.Point
	elementID ElementID
}

func (ip indexPoint) Point() orb.Point {
	return ip.pt
}

// GeometryIndex Spatial index over graph elements supporting nearest-neighbor
// and containment queries. Read-only after build, safe for concurrent use.
type GeometryIndex struct {
	graph *Graph
	tree  *quadtree.Quadtree
}

// BuildGeometryIndex indexes every element of the graph. Edge polylines are
// densified at indexResolution so vertex distance approximates true segment
// distance; exact distances are recomputed during query refinement.
func BuildGeometryIndex(graph *Graph) (*GeometryIndex, error) {
	if graph.Len() == 0 {
		return nil, errors.Wrap(ErrInvalidGeometry, "empty graph")
	}
	entries := []indexPoint{}
	bound := orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{0, 0}}
	first := true
	extend := func(pt orb.Point, id ElementID) {
		if first {
			bound = orb.Bound{Min: pt, Max: pt}
			first = false
		} else {
			bound = bound.Extend(pt)
		}
		entries = append(entries, indexPoint{pt: pt, elementID: id})
	}
	for _, id := range graph.IDs() {
		element := graph.Element(id)
		switch element.Kind {
		case ELEMENT_NODE:
			extend(element.Point, id)
		case ELEMENT_EDGE:
			for _, pt := range densifyLine(element.Geom, indexResolution) {
				extend(pt, id)
			}
		}
	}
	bound = bound.Pad(boundPadding)
	tree := quadtree.New(bound)
	for i := range entries {
		if err := tree.Add(entries[i]); err != nil {
			return nil, errors.Wrapf(err, "Can't index element '%d'", entries[i].elementID)
		}
	}
	return &GeometryIndex{graph: graph, tree: tree}, nil
}

// densifyLine inserts intermediate points so that no two consecutive points
// are further apart than the given resolution.
func densifyLine(line orb.LineString, resolution float64) []orb.Point {
	pts := []orb.Point{line[0]}
	for i := 1; i < len(line); i++ {
		segLen := euclideanDistance(line[i-1], line[i])
		steps := int(segLen / resolution)
		for s := 1; s <= steps; s++ {
			fraction := float64(s) * resolution / segLen
			if fraction >= 1 {
				break
			}
			pts = append(pts, orb.Point{
				(1-fraction)*line[i-1][0] + fraction*line[i][0],
				(1-fraction)*line[i-1][1] + fraction*line[i][1],
			})
		}
		pts = append(pts, line[i])
	}
	return pts
}

// ElementDistance is a refined candidate produced by a nearest query.
type ElementDistance struct {
	Element  *GraphElement
	Distance float64
}

// Nearest returns the k closest elements to the given point in ascending
// order of exact geometry distance, ties broken by ascending element id.
func (index *GeometryIndex) Nearest(pt orb.Point, k int) ([]ElementDistance, error) {
	return index.NearestWithin(pt, k, -1)
}

// NearestWithin returns up to k closest elements not further than radius
// (radius < 0 disables the limit). Order as in Nearest.
func (index *GeometryIndex) NearestWithin(pt orb.Point, k int, radius float64) ([]ElementDistance, error) {
	return index.nearestRefined(pt, k, radius, nil)
}

// NearestMatchingWithin is NearestWithin restricted to elements accepted by
// the filter.
func (index *GeometryIndex) NearestMatchingWithin(pt orb.Point, k int, radius float64, accept func(*GraphElement) bool) ([]ElementDistance, error) {
	return index.nearestRefined(pt, k, radius, accept)
}

// nearestRefined over-queries the quadtree and refines against exact geometry
// distance. The tree holds densified vertices, so one long polyline can
// swallow a fixed vertex budget; the query grows until k distinct elements
// are refined or the tree has no more entries to give.
func (index *GeometryIndex) nearestRefined(pt orb.Point, k int, radius float64, accept func(*GraphElement) bool) ([]ElementDistance, error) {
	if !validPoint(pt) {
		return nil, errors.Wrap(ErrInvalidGeometry, "nearest query")
	}
	if k <= 0 {
		return nil, nil
	}
	var filter quadtree.FilterFunc
	if accept != nil {
		filter = func(p orb.Pointer) bool {
			return accept(index.graph.Element(p.(indexPoint).elementID))
		}
	}
	overK := k * 8
	if overK < 32 {
		overK = 32
	}
	candidates := []ElementDistance{}
	for {
		var pointers []orb.Pointer
		switch {
		case filter == nil && radius < 0:
			pointers = index.tree.KNearest(nil, pt, overK)
		case filter == nil:
			pointers = index.tree.KNearest(nil, pt, overK, radius+indexResolution)
		case radius < 0:
			pointers = index.tree.KNearestMatching(nil, pt, overK, filter)
		default:
			pointers = index.tree.KNearestMatching(nil, pt, overK, filter, radius+indexResolution)
		}
		seen := make(map[ElementID]struct{})
		candidates = candidates[:0]
		for _, p := range pointers {
			ip := p.(indexPoint)
			if _, ok := seen[ip.elementID]; ok {
				continue
			}
			seen[ip.elementID] = struct{}{}
			element := index.graph.Element(ip.elementID)
			d := element.DistanceTo(pt)
			if radius >= 0 && d > radius {
				continue
			}
			candidates = append(candidates, ElementDistance{Element: element, Distance: d})
		}
		// fewer pointers than asked for means the tree (or radius) is drained
		if len(candidates) >= k || len(pointers) < overK {
			break
		}
		overK *= 2
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Distance != candidates[j].Distance {
			return candidates[i].Distance < candidates[j].Distance
		}
		return candidates[i].Element.ID < candidates[j].Element.ID
	})
	if len(candidates) > k {
		candidates = candidates[:k]
	}
	return candidates, nil
}

// Within returns all elements whose geometry intersects the polygon.
//
// The order of the returned slice is unspecified and callers must not depend
// on it; downstream consumers sort by element id before use.
func (index *GeometryIndex) Within(poly orb.Polygon) ([]*GraphElement, error) {
	if !validPolygon(poly) {
		return nil, errors.Wrap(ErrInvalidGeometry, "within query")
	}
	pointers := index.tree.InBound(nil, poly.Bound())
	seen := make(map[ElementID]struct{})
	result := []*GraphElement{}
	for _, p := range pointers {
		ip := p.(indexPoint)
		if _, ok := seen[ip.elementID]; ok {
			continue
		}
		seen[ip.elementID] = struct{}{}
		element := index.graph.Element(ip.elementID)
		contained := false
		switch element.Kind {
		case ELEMENT_NODE:
			contained = planar.PolygonContains(poly, element.Point)
		case ELEMENT_EDGE:
			contained = lineIntersectsPolygon(element.Geom, poly)
		}
		if contained {
			result = append(result, element)
		}
	}
	return result, nil
}

// lineIntersectsPolygon reports whether the polyline has a vertex inside the
// polygon or a segment crossing its outer ring.
func lineIntersectsPolygon(line orb.LineString, poly orb.Polygon) bool {
	for i := range line {
		if planar.PolygonContains(poly, line[i]) {
			return true
		}
	}
	ring := poly[0]
	for i := 1; i < len(line); i++ {
		for j := 1; j < len(ring); j++ {
			if segmentsCross(line[i-1], line[i], ring[j-1], ring[j]) {
				return true
			}
		}
	}
	return false
}

// segmentsCross reports proper intersection of segments [p1,p2] and [p3,p4].
func segmentsCross(p1, p2, p3, p4 orb.Point) bool {
	d1 := cross(p3, p4, p1)
	d2 := cross(p3, p4, p2)
	d3 := cross(p1, p2, p3)
	d4 := cross(p1, p2, p4)
	return ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0))
}

func cross(a, b, c orb.Point) float64 {
	return (b[0]-a[0])*(c[1]-a[1]) - (b[1]-a[1])*(c[0]-a[0])
}
