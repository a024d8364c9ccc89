package scenegen

import (
	"github.com/paulmach/orb"
)

type ElementID int64

type ElementKind uint16

const (
	ELEMENT_NODE = ElementKind(iota + 1)
	ELEMENT_EDGE
)

func (iotaIdx ElementKind) String() string {
	return [...]string{"undefined", "node", "edge"}[iotaIdx]
}

// AnnotationRef Weak reference from a graph element back to a conflated
// external record. Holds ids only, never the record itself.
type AnnotationRef struct {
	Kind     RecordKind
	RecordID int64
}

// GraphElement Node (intersection) or edge (road segment) of the base street
// network. Geometry is stored in planar EPSG:3857 meters.
type GraphElement struct {
	ID   ElementID
	Kind ElementKind

	// Point geometry for nodes. Empty for edges.
	Point orb.Point
	// Polyline geometry for edges. Empty for nodes.
	Geom orb.LineString

	// Edge endpoints. Zero for nodes.
	SourceNodeID ElementID
	TargetNodeID ElementID

	roadClass    RoadClass
	activity     ActivityType
	wasOneWay    bool
	lengthMeters float64
	name         string

	annotations []AnnotationRef
}

// Centroid returns a representative point for the element geometry.
func (element *GraphElement) Centroid() orb.Point {
	if element.Kind == ELEMENT_NODE {
		return element.Point
	}
	return lineCentroid(element.Geom)
}

// DistanceTo returns the exact planar distance from the given point to the
// element geometry (point-to-segment projection for edges).
func (element *GraphElement) DistanceTo(pt orb.Point) float64 {
	if element.Kind == ELEMENT_NODE {
		return euclideanDistance(element.Point, pt)
	}
	return distanceToLine(pt, element.Geom)
}

// RoadClass returns functional road class for edge elements (ROAD_UNDEFINED
// for nodes without an incident classified edge).
func (element *GraphElement) RoadClass() RoadClass {
	return element.roadClass
}

// Activity returns the activity classification assigned during conflation.
func (element *GraphElement) Activity() ActivityType {
	return element.activity
}

// Annotations returns the attached annotation references.
func (element *GraphElement) Annotations() []AnnotationRef {
	return element.annotations
}
