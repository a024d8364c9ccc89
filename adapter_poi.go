package scenegen

import (
	"io"

	geojson "github.com/paulmach/go.geojson"
	"github.com/paulmach/orb"
	"github.com/pkg/errors"
)

// POIAdapter Normalizes point features (points of interest and transit
// stops) from a GeoJSON feature collection. The 'kind' property selects the
// record kind (poi / transit_stop), the 'category' property feeds activity
// classification.
type POIAdapter struct {
	skipThreshold float64
}

func NewPOIAdapter(skipThreshold float64) *POIAdapter {
	return &POIAdapter{skipThreshold: skipThreshold}
}

func (adapter *POIAdapter) Name() string {
	return "poi"
}

func (adapter *POIAdapter) Normalize(r io.Reader) (*RecordStream, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "Can't read POI source")
	}
	collection, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, errors.Wrap(err, "Can't decode POI GeoJSON")
	}

	idx := 0
	next := func() (NormalizedRecord, error) {
		for idx < len(collection.Features) {
			feature := collection.Features[idx]
			idx++
			if feature.Geometry == nil || !feature.Geometry.IsPoint() || len(feature.Geometry.Point) < 2 {
				return NormalizedRecord{}, &skipError{reason: "not a point"}
			}
			pt := pointToEuclidean(orb.Point{feature.Geometry.Point[0], feature.Geometry.Point[1]})
			if !validPoint(pt) {
				return NormalizedRecord{}, &skipError{reason: "non-finite coordinates"}
			}
			kind := RECORD_POI
			if kindTag, ok := propertyAsString(feature.Properties["kind"]); ok {
				mapped, ok := recordKindByTag[kindTag]
				if !ok {
					return NormalizedRecord{}, &skipError{reason: "unknown kind"}
				}
				kind = mapped
			}
			attrs := make(map[string]string)
			for name, value := range feature.Properties {
				if v, ok := propertyAsString(value); ok {
					attrs[name] = v
				}
			}
			return NormalizedRecord{
				Kind:       kind,
				Point:      pt,
				Attributes: attrs,
			}, nil
		}
		return NormalizedRecord{}, io.EOF
	}
	return newRecordStream(adapter.Name(), adapter.skipThreshold, next), nil
}
