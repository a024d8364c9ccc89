package scenegen

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testScenario() *Scenario {
	sources := []SourceVersion{
		{Name: "collisions", Version: "2026-01", Digest: "aa11"},
		{Name: "zones", Version: "2026-01", Digest: "bb22"},
	}
	return &Scenario{
		ID:        newScenarioID(42, sources),
		Name:      "scenario",
		Seed:      42,
		CreatedAt: "2026-08-30T00:00:00Z",
		Sources:   sources,
		Households: []Household{
			{
				ID:     1,
				ZoneID: "A",
				Anchor: 17,
				Size:   1,
				Income: 2,
				Persons: []Person{{
					Age:  35,
					Role: ROLE_ADULT,
					Templates: []TripTemplate{
						{Purpose: PURPOSE_WORK, Agent: AGENT_AUTO},
					},
				}},
			},
		},
		Trips: []Trip{
			{HouseholdID: 1, PersonIdx: 0, Purpose: PURPOSE_WORK, Agent: AGENT_AUTO, Origin: 17, Destination: 30, DepartSec: 30600},
		},
	}
}

func TestScenarioEncodeDecodeRoundTrip(t *testing.T) {
	scenario := testScenario()

	first := bytes.Buffer{}
	require.NoError(t, scenario.Encode(&first))

	decoded, err := DecodeScenario(bytes.NewReader(first.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, scenario, decoded)

	second := bytes.Buffer{}
	require.NoError(t, decoded.Encode(&second))
	assert.Equal(t, first.Bytes(), second.Bytes())
}

func TestScenarioDigestStable(t *testing.T) {
	first, err := testScenario().Digest()
	require.NoError(t, err)
	second, err := testScenario().Digest()
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestScenarioIDDeterministic(t *testing.T) {
	sources := []SourceVersion{{Name: "zones", Digest: "bb22"}}
	assert.Equal(t, newScenarioID(42, sources), newScenarioID(42, sources))
	assert.NotEqual(t, newScenarioID(42, sources), newScenarioID(43, sources))
	assert.NotEqual(t, newScenarioID(42, sources), newScenarioID(42, []SourceVersion{{Name: "zones", Digest: "cc33"}}))
}

func TestDecodeScenarioRejectsCorruptArtifacts(t *testing.T) {
	_, err := DecodeScenario(bytes.NewReader([]byte{'S', 'C'}))
	assert.Error(t, err)

	_, err = DecodeScenario(bytes.NewReader([]byte("NOPE\x01garbage")))
	assert.Error(t, err)

	// right magic, unsupported version
	_, err = DecodeScenario(bytes.NewReader([]byte("SCEN\xff\x00")))
	assert.Error(t, err)
}
