package scenegen

import (
	"testing"

	"github.com/paulmach/orb"
)

// buildTestGraph builds a small planar network of three horizontal streets:
//
//	edge 17 (residential): (0,0)   -> (100,0)
//	edge 20 (residential): (0,50)  -> (100,50)
//	edge 30 (service):     (0,100) -> (100,100)
//
// Coordinates are raw planar meters, so test distances are exact.
func buildTestGraph(t *testing.T) *Graph {
	t.Helper()
	graph := NewGraph()
	nodes := []struct {
		id ElementID
		pt orb.Point
	}{
		{1, orb.Point{0, 0}},
		{2, orb.Point{100, 0}},
		{3, orb.Point{0, 50}},
		{4, orb.Point{100, 50}},
		{5, orb.Point{0, 100}},
		{6, orb.Point{100, 100}},
	}
	for _, node := range nodes {
		if err := graph.AddNode(node.id, node.pt); err != nil {
			t.Fatal(err)
		}
	}
	edges := []struct {
		id             ElementID
		source, target ElementID
		geom           orb.LineString
		class          RoadClass
	}{
		{17, 1, 2, orb.LineString{{0, 0}, {100, 0}}, ROAD_RESIDENTIAL},
		{20, 3, 4, orb.LineString{{0, 50}, {100, 50}}, ROAD_RESIDENTIAL},
		{30, 5, 6, orb.LineString{{0, 100}, {100, 100}}, ROAD_SERVICE},
	}
	for _, edge := range edges {
		if err := graph.AddEdge(edge.id, edge.source, edge.target, edge.geom, edge.class, false); err != nil {
			t.Fatal(err)
		}
	}
	return graph
}

func buildTestIndex(t *testing.T, graph *Graph) *GeometryIndex {
	t.Helper()
	index, err := BuildGeometryIndex(graph)
	if err != nil {
		t.Fatal(err)
	}
	return index
}

func testConfig() *Config {
	cfg := DefaultConfig()
	cfg.Seed = 42
	cfg.Workers = 2
	return cfg
}
