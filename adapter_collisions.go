package scenegen

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/paulmach/orb"
	"github.com/pkg/errors"
)

// CollisionsAdapter Normalizes tabular collision records. Expects a
// ';'-separated CSV with a header row containing at least 'longitude' and
// 'latitude' columns; every other column becomes a record attribute.
type CollisionsAdapter struct {
	skipThreshold float64
}

func NewCollisionsAdapter(skipThreshold float64) *CollisionsAdapter {
	return &CollisionsAdapter{skipThreshold: skipThreshold}
}

func (adapter *CollisionsAdapter) Name() string {
	return "collisions"
}

func (adapter *CollisionsAdapter) Normalize(r io.Reader) (*RecordStream, error) {
	reader := csv.NewReader(r)
	reader.Comma = ';'
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, errors.Wrap(err, "Can't read collisions header")
	}
	lonIdx, latIdx := -1, -1
	for i, name := range header {
		switch name {
		case "longitude", "lon":
			lonIdx = i
		case "latitude", "lat":
			latIdx = i
		}
	}
	if lonIdx < 0 || latIdx < 0 {
		return nil, errors.New("collisions header misses longitude/latitude columns")
	}

	next := func() (NormalizedRecord, error) {
		row, err := reader.Read()
		if err == io.EOF {
			return NormalizedRecord{}, io.EOF
		}
		if err != nil {
			return NormalizedRecord{}, &skipError{reason: "malformed row"}
		}
		if len(row) <= lonIdx || len(row) <= latIdx {
			return NormalizedRecord{}, &skipError{reason: "short row"}
		}
		lon, err := strconv.ParseFloat(row[lonIdx], 64)
		if err != nil {
			return NormalizedRecord{}, &skipError{reason: "bad longitude"}
		}
		lat, err := strconv.ParseFloat(row[latIdx], 64)
		if err != nil {
			return NormalizedRecord{}, &skipError{reason: "bad latitude"}
		}
		pt := pointToEuclidean(orb.Point{lon, lat})
		if !validPoint(pt) {
			return NormalizedRecord{}, &skipError{reason: "non-finite coordinates"}
		}
		attrs := make(map[string]string)
		for i, name := range header {
			if i == lonIdx || i == latIdx || i >= len(row) {
				continue
			}
			attrs[name] = row[i]
		}
		return NormalizedRecord{
			Kind:       RECORD_COLLISION,
			Point:      pt,
			Attributes: attrs,
		}, nil
	}
	return newRecordStream(adapter.Name(), adapter.skipThreshold, next), nil
}
