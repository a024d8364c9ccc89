package scenegen

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/paulmach/orb"
	"github.com/pkg/errors"
)

// CensusAdapter Normalizes tabular per-zone aggregate statistics
// (';'-separated CSV: zone_id, households, size_* and age_* marginal
// columns). Rows are geotagged by joining zone_id against the already
// normalized tract polygons; rows referencing unknown zones are skipped.
type CensusAdapter struct {
	skipThreshold float64
	zonePolygons  map[string]orb.Polygon
}

func NewCensusAdapter(skipThreshold float64, zoneRecords []NormalizedRecord) *CensusAdapter {
	polygons := make(map[string]orb.Polygon)
	for i := range zoneRecords {
		if zoneRecords[i].Kind != RECORD_CENSUS_TRACT {
			continue
		}
		if zoneID := zoneRecords[i].Attr("zone_id"); zoneID != "" {
			polygons[zoneID] = zoneRecords[i].Polygon
		}
	}
	return &CensusAdapter{skipThreshold: skipThreshold, zonePolygons: polygons}
}

func (adapter *CensusAdapter) Name() string {
	return "census"
}

func (adapter *CensusAdapter) Normalize(r io.Reader) (*RecordStream, error) {
	reader := csv.NewReader(r)
	reader.Comma = ';'
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, errors.Wrap(err, "Can't read census header")
	}
	zoneIdx := -1
	for i, name := range header {
		if name == "zone_id" {
			zoneIdx = i
		}
	}
	if zoneIdx < 0 {
		return nil, errors.New("census header misses zone_id column")
	}

	next := func() (NormalizedRecord, error) {
		row, err := reader.Read()
		if err == io.EOF {
			return NormalizedRecord{}, io.EOF
		}
		if err != nil {
			return NormalizedRecord{}, &skipError{reason: "malformed row"}
		}
		if len(row) <= zoneIdx || row[zoneIdx] == "" {
			return NormalizedRecord{}, &skipError{reason: "missing zone_id"}
		}
		zoneID := row[zoneIdx]
		poly, ok := adapter.zonePolygons[zoneID]
		if !ok {
			return NormalizedRecord{}, &skipError{reason: "unknown zone"}
		}
		attrs := map[string]string{"zone_id": zoneID}
		for i, name := range header {
			if i == zoneIdx || i >= len(row) {
				continue
			}
			// marginal columns must be integral counts
			if _, err := strconv.Atoi(row[i]); err != nil {
				return NormalizedRecord{}, &skipError{reason: "non-integer marginal"}
			}
			attrs[name] = row[i]
		}
		return NormalizedRecord{
			Kind:       RECORD_CENSUS_TRACT,
			Polygon:    poly,
			Attributes: attrs,
		}, nil
	}
	return newRecordStream(adapter.Name(), adapter.skipThreshold, next), nil
}
