package scenegen

import (
	"io"

	geojson "github.com/paulmach/go.geojson"
	"github.com/paulmach/orb"
	"github.com/pkg/errors"
)

// ZonesAdapter Normalizes census tract polygons from a GeoJSON feature
// collection. Each feature needs a polygon geometry and a 'zone_id'
// property; remaining properties become record attributes.
type ZonesAdapter struct {
	skipThreshold float64
}

func NewZonesAdapter(skipThreshold float64) *ZonesAdapter {
	return &ZonesAdapter{skipThreshold: skipThreshold}
}

func (adapter *ZonesAdapter) Name() string {
	return "zones"
}

func (adapter *ZonesAdapter) Normalize(r io.Reader) (*RecordStream, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "Can't read zones source")
	}
	collection, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, errors.Wrap(err, "Can't decode zones GeoJSON")
	}

	idx := 0
	next := func() (NormalizedRecord, error) {
		for idx < len(collection.Features) {
			feature := collection.Features[idx]
			idx++
			if feature.Geometry == nil || !feature.Geometry.IsPolygon() {
				return NormalizedRecord{}, &skipError{reason: "not a polygon"}
			}
			poly := polygonFromGeoJSON(feature.Geometry.Polygon)
			if !validPolygon(poly) {
				return NormalizedRecord{}, &skipError{reason: "degenerate polygon"}
			}
			zoneID, ok := propertyAsString(feature.Properties["zone_id"])
			if !ok || zoneID == "" {
				return NormalizedRecord{}, &skipError{reason: "missing zone_id"}
			}
			attrs := map[string]string{"zone_id": zoneID}
			for name, value := range feature.Properties {
				if name == "zone_id" {
					continue
				}
				if v, ok := propertyAsString(value); ok {
					attrs[name] = v
				}
			}
			return NormalizedRecord{
				Kind:       RECORD_CENSUS_TRACT,
				Polygon:    polygonToEuclidean(poly),
				Attributes: attrs,
			}, nil
		}
		return NormalizedRecord{}, io.EOF
	}
	return newRecordStream(adapter.Name(), adapter.skipThreshold, next), nil
}

func polygonFromGeoJSON(rings [][][]float64) orb.Polygon {
	poly := make(orb.Polygon, 0, len(rings))
	for _, ring := range rings {
		orbRing := make(orb.Ring, 0, len(ring))
		for _, pt := range ring {
			if len(pt) < 2 {
				continue
			}
			orbRing = append(orbRing, orb.Point{pt[0], pt[1]})
		}
		poly = append(poly, orbRing)
	}
	return poly
}
