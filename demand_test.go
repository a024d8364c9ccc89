package scenegen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testHousehold(id HouseholdID, anchor ElementID, purposes ...TripPurpose) Household {
	templates := make([]TripTemplate, 0, len(purposes))
	for _, purpose := range purposes {
		templates = append(templates, TripTemplate{Purpose: purpose, Agent: defaultAgentByPurpose[purpose]})
	}
	return Household{
		ID:      id,
		ZoneID:  "A",
		Anchor:  anchor,
		Size:    1,
		Persons: []Person{{Age: 35, Role: ROLE_ADULT, Templates: templates}},
	}
}

func TestUnresolvedTemplatesAreDroppedAndCounted(t *testing.T) {
	graph := buildTestGraph(t)
	graph.assignActivities(nil)
	index := buildTestIndex(t, graph)

	assembler, err := NewDemandAssembler(graph, index, testConfig())
	require.NoError(t, err)

	// no workplace element exists anywhere, so the work template cannot
	// resolve; the run still completes
	households := []Household{testHousehold(1, 17, PURPOSE_WORK)}
	trips, counters, err := assembler.Assemble(households)
	require.NoError(t, err)
	assert.Empty(t, trips)
	assert.Equal(t, 0, counters.resolved)
	assert.Equal(t, 1, counters.unresolved)
}

func TestResolvedTripReferencesGraphElements(t *testing.T) {
	graph := buildTestGraph(t)
	graph.assignActivities(nil)
	graph.Element(30).activity = ACTIVITY_SHOP
	index := buildTestIndex(t, graph)

	assembler, err := NewDemandAssembler(graph, index, testConfig())
	require.NoError(t, err)

	households := []Household{testHousehold(1, 17, PURPOSE_SHOP)}
	trips, counters, err := assembler.Assemble(households)
	require.NoError(t, err)
	require.Len(t, trips, 1)
	assert.Equal(t, 1, counters.resolved)

	trip := trips[0]
	assert.Equal(t, HouseholdID(1), trip.HouseholdID)
	assert.Equal(t, PURPOSE_SHOP, trip.Purpose)
	assert.Equal(t, ElementID(17), trip.Origin)
	assert.Equal(t, ElementID(30), trip.Destination)
	assert.True(t, graph.Has(trip.Origin))
	assert.True(t, graph.Has(trip.Destination))
	assert.GreaterOrEqual(t, trip.DepartSec, 0)
	assert.Less(t, trip.DepartSec, 86400)
}

func TestDestinationNeverEqualsAnchor(t *testing.T) {
	graph := buildTestGraph(t)
	graph.assignActivities(nil)
	graph.Element(30).activity = ACTIVITY_SHOP
	index := buildTestIndex(t, graph)

	assembler, err := NewDemandAssembler(graph, index, testConfig())
	require.NoError(t, err)

	// the anchor is the only shop, so the template stays unresolved rather
	// than producing a self-loop
	households := []Household{testHousehold(1, 30, PURPOSE_SHOP)}
	trips, counters, err := assembler.Assemble(households)
	require.NoError(t, err)
	assert.Empty(t, trips)
	assert.Equal(t, 1, counters.unresolved)
}

func TestAssembleWorkerCountIndependence(t *testing.T) {
	graph := buildTestGraph(t)
	graph.assignActivities(nil)
	graph.Element(30).activity = ACTIVITY_SHOP
	index := buildTestIndex(t, graph)

	households := []Household{
		testHousehold(1, 17, PURPOSE_SHOP, PURPOSE_WORK),
		testHousehold(2, 20, PURPOSE_SHOP),
		testHousehold(3, 17, PURPOSE_SHOP),
		testHousehold(4, 20, PURPOSE_SHOP, PURPOSE_LEISURE),
	}
	sequentialCfg := testConfig()
	sequentialCfg.Workers = 1
	parallelCfg := testConfig()
	parallelCfg.Workers = 4

	sequentialAssembler, err := NewDemandAssembler(graph, index, sequentialCfg)
	require.NoError(t, err)
	sequential, sequentialCounters, err := sequentialAssembler.Assemble(households)
	require.NoError(t, err)

	parallelAssembler, err := NewDemandAssembler(graph, index, parallelCfg)
	require.NoError(t, err)
	parallel, parallelCounters, err := parallelAssembler.Assemble(households)
	require.NoError(t, err)

	assert.Equal(t, sequential, parallel)
	assert.Equal(t, sequentialCounters, parallelCounters)
}

func TestReachabilityGateDropsDisconnectedTrips(t *testing.T) {
	graph := buildTestGraph(t)
	graph.assignActivities(nil)
	graph.Element(30).activity = ACTIVITY_SHOP
	index := buildTestIndex(t, graph)

	cfg := testConfig()
	cfg.ReachabilityCheck = true
	assembler, err := NewDemandAssembler(graph, index, cfg)
	require.NoError(t, err)

	// edges 17 and 30 belong to disjoint components, so the shop trip fails
	// the routing check
	households := []Household{testHousehold(1, 17, PURPOSE_SHOP)}
	trips, counters, err := assembler.Assemble(households)
	require.NoError(t, err)
	assert.Empty(t, trips)
	assert.Equal(t, 1, counters.unresolved)
	assert.Equal(t, 1, counters.unreachable)
}
