package scenegen

import (
	"fmt"
	"sort"

	"github.com/paulmach/orb"
	"github.com/pkg/errors"
)

// Graph Arena of street network elements indexed by stable integer id.
// Annotations and downstream artifacts reference elements by id only.
type Graph struct {
	elements map[ElementID]*GraphElement
	ids      []ElementID
	sorted   bool
}

func NewGraph() *Graph {
	return &Graph{
		elements: make(map[ElementID]*GraphElement),
	}
}

// AddNode inserts an intersection element. Geometry must be a finite point.
func (graph *Graph) AddNode(id ElementID, pt orb.Point) error {
	if !validPoint(pt) {
		return errors.Wrapf(ErrInvalidGeometry, "node '%d'", id)
	}
	if _, ok := graph.elements[id]; ok {
		return fmt.Errorf("Element with ID '%d' already exists", id)
	}
	graph.put(&GraphElement{
		ID:    id,
		Kind:  ELEMENT_NODE,
		Point: pt,
	})
	return nil
}

// AddEdge inserts a road segment element between two existing nodes.
func (graph *Graph) AddEdge(id ElementID, source, target ElementID, geom orb.LineString, class RoadClass, oneWay bool) error {
	if !validLine(geom) {
		return errors.Wrapf(ErrInvalidGeometry, "edge '%d'", id)
	}
	if _, ok := graph.elements[id]; ok {
		return fmt.Errorf("Element with ID '%d' already exists", id)
	}
	if _, ok := graph.elements[source]; !ok {
		return fmt.Errorf("No source node with ID '%d'. Edge ID: '%d'", source, id)
	}
	if _, ok := graph.elements[target]; !ok {
		return fmt.Errorf("No target node with ID '%d'. Edge ID: '%d'", target, id)
	}
	graph.put(&GraphElement{
		ID:           id,
		Kind:         ELEMENT_EDGE,
		Geom:         geom,
		SourceNodeID: source,
		TargetNodeID: target,
		roadClass:    class,
		wasOneWay:    oneWay,
		lengthMeters: lineLength(geom),
	})
	return nil
}

func (graph *Graph) put(element *GraphElement) {
	graph.elements[element.ID] = element
	graph.ids = append(graph.ids, element.ID)
	graph.sorted = false
}

// Element returns the element with given id (nil if absent).
func (graph *Graph) Element(id ElementID) *GraphElement {
	return graph.elements[id]
}

// Has reports whether an element with given id exists.
func (graph *Graph) Has(id ElementID) bool {
	_, ok := graph.elements[id]
	return ok
}

// Len returns number of elements.
func (graph *Graph) Len() int {
	return len(graph.elements)
}

// IDs returns element ids in ascending order. Callers iterating the graph
// must use this order to keep runs reproducible.
func (graph *Graph) IDs() []ElementID {
	if !graph.sorted {
		sort.Slice(graph.ids, func(i, j int) bool { return graph.ids[i] < graph.ids[j] })
		graph.sorted = true
	}
	return graph.ids
}

// Attach appends an annotation reference to the element with given id.
func (graph *Graph) Attach(id ElementID, ref AnnotationRef) error {
	element, ok := graph.elements[id]
	if !ok {
		return fmt.Errorf("No element with ID '%d'", id)
	}
	element.annotations = append(element.annotations, ref)
	return nil
}

// Validate checks structural consistency of the arena: every edge endpoint
// must reference an existing node element. A violation is fatal for the run.
func (graph *Graph) Validate() error {
	for _, id := range graph.IDs() {
		element := graph.elements[id]
		if element.Kind != ELEMENT_EDGE {
			continue
		}
		source, ok := graph.elements[element.SourceNodeID]
		if !ok {
			return errors.Wrapf(ErrInvalidGeometry, "edge '%d' references missing source node '%d'", id, element.SourceNodeID)
		}
		if source.Kind != ELEMENT_NODE {
			return errors.Wrapf(ErrInvalidGeometry, "edge '%d' source '%d' is not a node", id, element.SourceNodeID)
		}
		target, ok := graph.elements[element.TargetNodeID]
		if !ok {
			return errors.Wrapf(ErrInvalidGeometry, "edge '%d' references missing target node '%d'", id, element.TargetNodeID)
		}
		if target.Kind != ELEMENT_NODE {
			return errors.Wrapf(ErrInvalidGeometry, "edge '%d' target '%d' is not a node", id, element.TargetNodeID)
		}
	}
	return nil
}
