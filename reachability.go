package scenegen

import (
	"github.com/LdDl/ch"
	"github.com/pkg/errors"
)

// reachabilityChecker answers whether a destination can be reached from an
// origin over the edge graph. Built once per run on top of contraction
// hierarchies; queries are read-only and safe for concurrent use.
type reachabilityChecker struct {
	routing ch.Graph
}

func newReachabilityChecker(graph *Graph) (*reachabilityChecker, error) {
	checker := &reachabilityChecker{}
	for _, id := range graph.IDs() {
		element := graph.Element(id)
		if element.Kind != ELEMENT_EDGE {
			continue
		}
		source := int64(element.SourceNodeID)
		target := int64(element.TargetNodeID)
		if err := checker.routing.CreateVertex(source); err != nil {
			return nil, errors.Wrap(err, "Can't create source vertex")
		}
		if err := checker.routing.CreateVertex(target); err != nil {
			return nil, errors.Wrap(err, "Can't create target vertex")
		}
		if err := checker.routing.AddEdge(source, target, element.lengthMeters); err != nil {
			return nil, errors.Wrap(err, "Can't add edge")
		}
		if !element.wasOneWay {
			if err := checker.routing.AddEdge(target, source, element.lengthMeters); err != nil {
				return nil, errors.Wrap(err, "Can't add reverse edge")
			}
		}
	}
	checker.routing.PrepareContractionHierarchies()
	return checker, nil
}

// anchorVertex maps an element onto a routing vertex: nodes route from
// themselves, edges from their source node.
func anchorVertex(element *GraphElement) int64 {
	if element.Kind == ELEMENT_NODE {
		return int64(element.ID)
	}
	return int64(element.SourceNodeID)
}

func (checker *reachabilityChecker) Reachable(origin, destination *GraphElement) bool {
	source := anchorVertex(origin)
	target := anchorVertex(destination)
	if source == target {
		return true
	}
	cost, _ := checker.routing.ShortestPath(source, target)
	return cost >= 0
}
