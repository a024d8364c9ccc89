package scenegen

import (
	"github.com/paulmach/orb"
)

type RecordKind uint16

const (
	RECORD_COLLISION = RecordKind(iota + 1)
	RECORD_TRANSIT_STOP
	RECORD_POI
	RECORD_CENSUS_TRACT
)

func (iotaIdx RecordKind) String() string {
	return [...]string{"undefined", "collision", "transit_stop", "poi", "census_tract"}[iotaIdx]
}

// recordKindByTag maps adapter-facing kind tags onto record kinds.
var recordKindByTag = map[string]RecordKind{
	"collision":    RECORD_COLLISION,
	"transit_stop": RECORD_TRANSIT_STOP,
	"transit-stop": RECORD_TRANSIT_STOP,
	"poi":          RECORD_POI,
	"census_tract": RECORD_CENSUS_TRACT,
}

// NormalizedRecord Geotagged external-data item produced by a source adapter.
// Immutable once emitted; the conflation engine only reads it.
type NormalizedRecord struct {
	ID   int64
	Kind RecordKind

	// Point geometry (collisions, stops, POIs). Zero when Polygon is set.
	Point orb.Point
	// Polygon geometry (census tracts). Nil when Point is set.
	Polygon orb.Polygon

	Attributes map[string]string
}

// Attr returns the named attribute value ("" if absent).
func (record *NormalizedRecord) Attr(name string) string {
	return record.Attributes[name]
}
