package scenegen

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
	"github.com/pkg/errors"
)

// LoadGraphFromCSV reads a street network from a pair of ';'-separated CSV
// files: nodes (id;longitude;latitude) and links
// (id;source_node;target_node;road_class;oneway;geom with WKT linestrings in
// WGS84). Geometry is converted to planar meters on load.
func LoadGraphFromCSV(nodesFname, linksFname string) (*Graph, error) {
	graph := NewGraph()

	nodesFile, err := os.Open(nodesFname)
	if err != nil {
		return nil, errors.Wrap(err, "Can't open nodes file")
	}
	defer nodesFile.Close()

	nodesReader := csv.NewReader(nodesFile)
	nodesReader.Comma = ';'
	rows, err := nodesReader.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "Can't read nodes")
	}
	for i, row := range rows {
		if i == 0 {
			continue
		}
		if len(row) < 3 {
			return nil, fmt.Errorf("Node row %d is too short", i)
		}
		id, err := strconv.ParseInt(row[0], 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "Bad node id in row %d", i)
		}
		lon, err := strconv.ParseFloat(row[1], 64)
		if err != nil {
			return nil, errors.Wrapf(err, "Bad longitude in row %d", i)
		}
		lat, err := strconv.ParseFloat(row[2], 64)
		if err != nil {
			return nil, errors.Wrapf(err, "Bad latitude in row %d", i)
		}
		if err := graph.AddNode(ElementID(id), pointToEuclidean(orb.Point{lon, lat})); err != nil {
			return nil, errors.Wrapf(err, "Can't add node from row %d", i)
		}
	}

	linksFile, err := os.Open(linksFname)
	if err != nil {
		return nil, errors.Wrap(err, "Can't open links file")
	}
	defer linksFile.Close()

	linksReader := csv.NewReader(linksFile)
	linksReader.Comma = ';'
	rows, err = linksReader.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "Can't read links")
	}
	for i, row := range rows {
		if i == 0 {
			continue
		}
		if len(row) < 6 {
			return nil, fmt.Errorf("Link row %d is too short", i)
		}
		id, err := strconv.ParseInt(row[0], 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "Bad link id in row %d", i)
		}
		source, err := strconv.ParseInt(row[1], 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "Bad source node in row %d", i)
		}
		target, err := strconv.ParseInt(row[2], 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "Bad target node in row %d", i)
		}
		class := ParseRoadClass(row[3])
		oneway, err := strconv.ParseBool(row[4])
		if err != nil {
			return nil, errors.Wrapf(err, "Bad oneway flag in row %d", i)
		}
		geom, err := wkt.UnmarshalLineString(row[5])
		if err != nil {
			return nil, errors.Wrapf(err, "Bad geometry in row %d", i)
		}
		err = graph.AddEdge(ElementID(id), ElementID(source), ElementID(target), lineToEuclidean(geom), class, oneway)
		if err != nil {
			return nil, errors.Wrapf(err, "Can't add link from row %d", i)
		}
	}
	return graph, nil
}

// ExportAnnotatedCSV writes the conflated graph for inspection: one row per
// element with its activity classification and attached annotation count.
func (graph *Graph) ExportAnnotatedCSV(fname string) error {
	file, err := os.Create(fname)
	if err != nil {
		return errors.Wrap(err, "Can't create file")
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()
	writer.Comma = ';'

	err = writer.Write([]string{"id", "kind", "road_class", "activity", "annotations", "geom"})
	if err != nil {
		return errors.Wrap(err, "Can't write header")
	}
	for _, id := range graph.IDs() {
		element := graph.Element(id)
		geomStr := ""
		switch element.Kind {
		case ELEMENT_NODE:
			lon, lat := epsg3857To4326(element.Point[0], element.Point[1])
			geomStr = wkt.MarshalString(orb.Point{lon, lat})
		case ELEMENT_EDGE:
			line := make(orb.LineString, len(element.Geom))
			for i := range element.Geom {
				lon, lat := epsg3857To4326(element.Geom[i][0], element.Geom[i][1])
				line[i] = orb.Point{lon, lat}
			}
			geomStr = wkt.MarshalString(line)
		}
		err = writer.Write([]string{
			fmt.Sprintf("%d", element.ID),
			fmt.Sprintf("%s", element.Kind),
			fmt.Sprintf("%s", element.roadClass),
			fmt.Sprintf("%s", element.activity),
			fmt.Sprintf("%d", len(element.annotations)),
			geomStr,
		})
		if err != nil {
			return errors.Wrap(err, "Can't write element")
		}
	}
	return nil
}
