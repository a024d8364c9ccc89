package scenegen

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
	"github.com/pkg/errors"
)

// Element ids carved out of OSM identifiers: nodes take even ids, edges odd,
// so the two spaces never collide inside one arena.
func nodeElementID(id osm.NodeID) ElementID {
	return ElementID(int64(id) * 2)
}

func edgeElementID(sequence int64) ElementID {
	return ElementID(sequence*2 + 1)
}

// ImportGraphFromOSM builds a base graph from a PBF extract. Ways carrying a
// recognized highway tag become edges; their endpoint nodes become graph
// nodes. Geometry is converted to planar meters.
func ImportGraphFromOSM(fileName string, verbose bool) (*Graph, error) {
	f, err := os.Open(fileName)
	if err != nil {
		return nil, errors.Wrap(err, "File open")
	}
	defer f.Close()

	type pendingWay struct {
		nodes  []osm.NodeID
		class  RoadClass
		oneWay bool
	}

	scannerWays := osmpbf.New(context.Background(), f, 4)
	ways := []pendingWay{}
	nodesNeeded := make(map[osm.NodeID]struct{})

	if verbose {
		fmt.Printf("Scanning ways...")
	}
	st := time.Now()
	for scannerWays.Scan() {
		way, ok := scannerWays.Object().(*osm.Way)
		if !ok {
			continue
		}
		class := ParseRoadClass(way.Tags.Find("highway"))
		if class == ROAD_UNDEFINED || len(way.Nodes) < 2 {
			continue
		}
		nodeIDs := make([]osm.NodeID, len(way.Nodes))
		for i := range way.Nodes {
			nodeIDs[i] = way.Nodes[i].ID
			nodesNeeded[way.Nodes[i].ID] = struct{}{}
		}
		ways = append(ways, pendingWay{
			nodes:  nodeIDs,
			class:  class,
			oneWay: way.Tags.Find("oneway") == "yes",
		})
	}
	if err := scannerWays.Err(); err != nil {
		scannerWays.Close()
		return nil, errors.Wrap(err, "Ways scanner")
	}
	scannerWays.Close()
	if verbose {
		fmt.Printf("Done in %v. Ways: %d\n", time.Since(st), len(ways))
	}

	if _, err := f.Seek(0, 0); err != nil {
		return nil, errors.Wrap(err, "File seek")
	}
	scannerNodes := osmpbf.New(context.Background(), f, 4)
	defer scannerNodes.Close()

	if verbose {
		fmt.Printf("Scanning nodes...")
	}
	st = time.Now()
	coords := make(map[osm.NodeID]orb.Point)
	for scannerNodes.Scan() {
		node, ok := scannerNodes.Object().(*osm.Node)
		if !ok {
			continue
		}
		if _, needed := nodesNeeded[node.ID]; !needed {
			continue
		}
		coords[node.ID] = pointToEuclidean(orb.Point{node.Lon, node.Lat})
	}
	if err := scannerNodes.Err(); err != nil {
		return nil, errors.Wrap(err, "Nodes scanner")
	}
	if verbose {
		fmt.Printf("Done in %v. Nodes: %d\n", time.Since(st), len(coords))
	}

	graph := NewGraph()
	for _, way := range ways {
		first := way.nodes[0]
		last := way.nodes[len(way.nodes)-1]
		for _, endpoint := range []osm.NodeID{first, last} {
			if graph.Has(nodeElementID(endpoint)) {
				continue
			}
			pt, ok := coords[endpoint]
			if !ok {
				continue
			}
			if err := graph.AddNode(nodeElementID(endpoint), pt); err != nil {
				return nil, errors.Wrap(err, "Can't add node")
			}
		}
	}
	edgeSequence := int64(0)
	for _, way := range ways {
		first := way.nodes[0]
		last := way.nodes[len(way.nodes)-1]
		if !graph.Has(nodeElementID(first)) || !graph.Has(nodeElementID(last)) {
			// endpoint coordinates missing from the extract
			continue
		}
		geom := make(orb.LineString, 0, len(way.nodes))
		complete := true
		for _, nodeID := range way.nodes {
			pt, ok := coords[nodeID]
			if !ok {
				complete = false
				break
			}
			geom = append(geom, pt)
		}
		if !complete {
			continue
		}
		err := graph.AddEdge(edgeElementID(edgeSequence), nodeElementID(first), nodeElementID(last), geom, way.class, way.oneWay)
		if err != nil {
			return nil, errors.Wrap(err, "Can't add edge")
		}
		edgeSequence++
	}
	return graph, nil
}
