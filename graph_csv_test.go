package scenegen

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadGraphFromCSV(t *testing.T) {
	dir := t.TempDir()
	nodesFname := filepath.Join(dir, "nodes.csv")
	linksFname := filepath.Join(dir, "links.csv")

	nodes := "id;longitude;latitude\n" +
		"1;0.0;0.0\n" +
		"2;0.000899;0.0\n"
	links := "id;source_node;target_node;road_class;oneway;geom\n" +
		"10;1;2;residential;false;LINESTRING(0.0 0.0,0.000899 0.0)\n"
	if err := os.WriteFile(nodesFname, []byte(nodes), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(linksFname, []byte(links), 0644); err != nil {
		t.Fatal(err)
	}

	graph, err := LoadGraphFromCSV(nodesFname, linksFname)
	if err != nil {
		t.Fatal(err)
	}
	if graph.Len() != 3 {
		t.Errorf("Got %d elements; want 3", graph.Len())
	}
	edge := graph.Element(10)
	if edge == nil || edge.Kind != ELEMENT_EDGE {
		t.Fatal("Edge 10 missing")
	}
	if edge.roadClass != ROAD_RESIDENTIAL {
		t.Errorf("Got road class %s; want residential", edge.roadClass)
	}
	// 0.000899 degrees of longitude is very close to 100 meters
	if Round(edge.lengthMeters, 0.5) != 100.0 {
		t.Errorf("Got edge length %f; want ~100", edge.lengthMeters)
	}
}

func TestLoadGraphFromCSVBadGeometry(t *testing.T) {
	dir := t.TempDir()
	nodesFname := filepath.Join(dir, "nodes.csv")
	linksFname := filepath.Join(dir, "links.csv")

	nodes := "id;longitude;latitude\n1;0.0;0.0\n2;0.001;0.0\n"
	links := "id;source_node;target_node;road_class;oneway;geom\n" +
		"10;1;2;residential;false;not-wkt\n"
	if err := os.WriteFile(nodesFname, []byte(nodes), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(linksFname, []byte(links), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadGraphFromCSV(nodesFname, linksFname); err == nil {
		t.Error("Malformed WKT geometry should be rejected")
	}
}

func TestExportAnnotatedCSV(t *testing.T) {
	graph := buildTestGraph(t)
	graph.assignActivities(nil)
	if err := graph.Attach(17, AnnotationRef{Kind: RECORD_COLLISION, RecordID: 3}); err != nil {
		t.Fatal(err)
	}

	fname := filepath.Join(t.TempDir(), "annotated.csv")
	if err := graph.ExportAnnotatedCSV(fname); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(fname)
	if err != nil {
		t.Fatal(err)
	}
	content := string(data)
	if !strings.Contains(content, "id;kind;road_class;activity;annotations;geom") {
		t.Error("Header row missing")
	}
	if !strings.Contains(content, "17;edge;residential;residential;1;") {
		t.Error("Annotated edge row missing")
	}
	lines := strings.Split(strings.TrimSpace(content), "\n")
	if len(lines) != graph.Len()+1 {
		t.Errorf("Got %d rows; want %d", len(lines), graph.Len()+1)
	}
}
