package scenegen

import (
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testZonesGeoJSON = `{
	"type": "FeatureCollection",
	"features": [
		{
			"type": "Feature",
			"properties": {"zone_id": "A"},
			"geometry": {"type": "Polygon", "coordinates": [[[37.60, 55.75], [37.62, 55.75], [37.62, 55.76], [37.60, 55.76], [37.60, 55.75]]]}
		},
		{
			"type": "Feature",
			"properties": {"zone_id": "B"},
			"geometry": {"type": "Polygon", "coordinates": [[[37.62, 55.75], [37.64, 55.75], [37.64, 55.76], [37.62, 55.76], [37.62, 55.75]]]}
		},
		{
			"type": "Feature",
			"properties": {},
			"geometry": {"type": "Polygon", "coordinates": [[[37.64, 55.75], [37.66, 55.75], [37.66, 55.76], [37.64, 55.76], [37.64, 55.75]]]}
		}
	]
}`

func TestCollisionsAdapter(t *testing.T) {
	raw := "longitude;latitude;severity\n" +
		"37.61;55.75;2\n" +
		"not-a-number;55.75;1\n" +
		"37.62;55.76;3\n"
	stream, err := NewCollisionsAdapter(0.5).Normalize(strings.NewReader(raw))
	require.NoError(t, err)
	records, skipped, err := drainStream(stream)
	require.NoError(t, err)

	assert.Equal(t, 1, skipped)
	require.Len(t, records, 2)
	assert.Equal(t, RECORD_COLLISION, records[0].Kind)
	assert.Equal(t, "2", records[0].Attr("severity"))
	assert.Equal(t, "3", records[1].Attr("severity"))
	assert.True(t, validPoint(records[0].Point))
}

func TestCollisionsAdapterMissingHeader(t *testing.T) {
	_, err := NewCollisionsAdapter(0.1).Normalize(strings.NewReader("x;y\n1;2\n"))
	assert.Error(t, err)
}

func TestSkipThresholdExceeded(t *testing.T) {
	raw := "longitude;latitude\n" +
		"37.61;55.75\n" +
		"bad;55.75\n" +
		"bad;55.75\n"
	stream, err := NewCollisionsAdapter(0.1).Normalize(strings.NewReader(raw))
	require.NoError(t, err)
	_, skipped, err := drainStream(stream)

	assert.Equal(t, 2, skipped)
	var qualityErr *SourceQualityError
	require.True(t, errors.As(err, &qualityErr))
	assert.Equal(t, "collisions", qualityErr.Source)
	assert.Equal(t, 2, qualityErr.Skipped)
	assert.Equal(t, 3, qualityErr.Total)
}

func TestZonesAdapter(t *testing.T) {
	stream, err := NewZonesAdapter(0.5).Normalize(strings.NewReader(testZonesGeoJSON))
	require.NoError(t, err)
	records, skipped, err := drainStream(stream)
	require.NoError(t, err)

	assert.Equal(t, 1, skipped) // feature without zone_id
	require.Len(t, records, 2)
	assert.Equal(t, RECORD_CENSUS_TRACT, records[0].Kind)
	assert.Equal(t, "A", records[0].Attr("zone_id"))
	assert.Equal(t, "B", records[1].Attr("zone_id"))
	assert.True(t, validPolygon(records[0].Polygon))
}

func TestZonesAdapterNumericProperties(t *testing.T) {
	// census marginals naturally arrive as JSON numbers, not strings
	raw := `{
		"type": "FeatureCollection",
		"features": [
			{
				"type": "Feature",
				"properties": {"zone_id": "A", "households": 100, "size_1": 60, "size_2": 40, "age_adult": 120.0, "waterfront": true},
				"geometry": {"type": "Polygon", "coordinates": [[[37.60, 55.75], [37.62, 55.75], [37.62, 55.76], [37.60, 55.76], [37.60, 55.75]]]}
			}
		]
	}`
	stream, err := NewZonesAdapter(0.5).Normalize(strings.NewReader(raw))
	require.NoError(t, err)
	records, skipped, err := drainStream(stream)
	require.NoError(t, err)

	assert.Equal(t, 0, skipped)
	require.Len(t, records, 1)
	assert.Equal(t, "100", records[0].Attr("households"))
	assert.Equal(t, "60", records[0].Attr("size_1"))
	assert.Equal(t, "40", records[0].Attr("size_2"))
	assert.Equal(t, "120", records[0].Attr("age_adult"))
	assert.Equal(t, "true", records[0].Attr("waterfront"))
}

func TestPOIAdapter(t *testing.T) {
	raw := `{
		"type": "FeatureCollection",
		"features": [
			{"type": "Feature", "properties": {"kind": "poi", "category": "shop"}, "geometry": {"type": "Point", "coordinates": [37.61, 55.75]}},
			{"type": "Feature", "properties": {"kind": "transit_stop"}, "geometry": {"type": "Point", "coordinates": [37.62, 55.75]}},
			{"type": "Feature", "properties": {"kind": "volcano"}, "geometry": {"type": "Point", "coordinates": [37.63, 55.75]}}
		]
	}`
	stream, err := NewPOIAdapter(0.5).Normalize(strings.NewReader(raw))
	require.NoError(t, err)
	records, skipped, err := drainStream(stream)
	require.NoError(t, err)

	assert.Equal(t, 1, skipped) // unknown kind
	require.Len(t, records, 2)
	assert.Equal(t, RECORD_POI, records[0].Kind)
	assert.Equal(t, "shop", records[0].Attr("category"))
	assert.Equal(t, RECORD_TRANSIT_STOP, records[1].Kind)
}

func TestCensusAdapterJoinsZoneGeometry(t *testing.T) {
	zoneStream, err := NewZonesAdapter(0.5).Normalize(strings.NewReader(testZonesGeoJSON))
	require.NoError(t, err)
	zoneRecords, _, err := drainStream(zoneStream)
	require.NoError(t, err)

	raw := "zone_id;households;size_1;size_2;age_child;age_adult;age_retired\n" +
		"A;10;4;6;5;12;3\n" +
		"Z;5;2;3;1;8;1\n"
	stream, err := NewCensusAdapter(0.5, zoneRecords).Normalize(strings.NewReader(raw))
	require.NoError(t, err)
	records, skipped, err := drainStream(stream)
	require.NoError(t, err)

	assert.Equal(t, 1, skipped) // zone Z has no polygon
	require.Len(t, records, 1)
	assert.Equal(t, RECORD_CENSUS_TRACT, records[0].Kind)
	assert.Equal(t, "A", records[0].Attr("zone_id"))
	assert.Equal(t, "10", records[0].Attr("households"))
	assert.Equal(t, zoneRecords[0].Polygon, records[0].Polygon)
}

func TestCensusAdapterRejectsNonIntegerMarginal(t *testing.T) {
	zoneStream, err := NewZonesAdapter(0.5).Normalize(strings.NewReader(testZonesGeoJSON))
	require.NoError(t, err)
	zoneRecords, _, err := drainStream(zoneStream)
	require.NoError(t, err)

	raw := "zone_id;households\nA;many\n"
	stream, err := NewCensusAdapter(0.0, zoneRecords).Normalize(strings.NewReader(raw))
	require.NoError(t, err)
	records, skipped, err := drainStream(stream)

	assert.Empty(t, records)
	assert.Equal(t, 1, skipped)
	var qualityErr *SourceQualityError
	assert.True(t, errors.As(err, &qualityErr))
}
