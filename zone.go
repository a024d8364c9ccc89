package scenegen

import (
	"fmt"
	"sort"
	"strconv"
)

const maxHouseholdSize = 8

var ageBracketColumns = []string{"age_child", "age_adult", "age_retired"}

// Zone Aggregate demographic statistics for one census tract together with
// the residential graph elements conflation matched inside it.
type Zone struct {
	ID       string
	RecordID int64

	// Households is the exact target count for synthesis.
	Households int
	// SizeMarginal[i] is the count of households of size i+1.
	SizeMarginal []int
	// AgeMarginal holds person counts per bracket (child, adult, retired).
	AgeMarginal []int

	// ResidentialElements are the zone's home anchor candidates, ascending.
	ResidentialElements []ElementID
	// ResidentialWeights are anchor draw weights (edge length), parallel to
	// ResidentialElements.
	ResidentialWeights []float64
}

// buildZones joins per-zone aggregates with their containment matches.
// Records and matches are parallel slices (match[i] resolves records[i]).
func buildZones(graph *Graph, records []NormalizedRecord, matches []Match) ([]Zone, error) {
	if len(records) != len(matches) {
		return nil, fmt.Errorf("records/matches length mismatch: %d != %d", len(records), len(matches))
	}
	zones := []Zone{}
	seen := make(map[string]struct{})
	for i := range records {
		record := &records[i]
		if record.Kind != RECORD_CENSUS_TRACT {
			continue
		}
		if record.Attr("households") == "" && record.Attr("size_1") == "" {
			// tract polygon without aggregates; only census rows carry them
			continue
		}
		zone, err := zoneFromRecord(record)
		if err != nil {
			return nil, err
		}
		if _, ok := seen[zone.ID]; ok {
			return nil, fmt.Errorf("duplicate census aggregates for zone '%s'", zone.ID)
		}
		seen[zone.ID] = struct{}{}

		if matches[i].Status == MATCH_MATCHED {
			for _, id := range matches[i].Candidates {
				element := graph.Element(id)
				if element == nil || element.activity != ACTIVITY_RESIDENTIAL {
					continue
				}
				zone.ResidentialElements = append(zone.ResidentialElements, id)
				weight := element.lengthMeters
				if weight <= 0 {
					weight = 1.0
				}
				zone.ResidentialWeights = append(zone.ResidentialWeights, weight)
			}
		}
		zones = append(zones, zone)
	}
	sort.Slice(zones, func(i, j int) bool { return zones[i].ID < zones[j].ID })
	return zones, nil
}

func zoneFromRecord(record *NormalizedRecord) (Zone, error) {
	zone := Zone{
		ID:       record.Attr("zone_id"),
		RecordID: record.ID,
	}
	sizeMarginal := make([]int, 0, maxHouseholdSize)
	sizeSum := 0
	for size := 1; size <= maxHouseholdSize; size++ {
		raw := record.Attr(fmt.Sprintf("size_%d", size))
		if raw == "" {
			break
		}
		count, err := strconv.Atoi(raw)
		if err != nil || count < 0 {
			return zone, fmt.Errorf("zone '%s': bad size_%d value '%s'", zone.ID, size, raw)
		}
		sizeMarginal = append(sizeMarginal, count)
		sizeSum += count
	}
	zone.SizeMarginal = sizeMarginal

	if raw := record.Attr("households"); raw != "" {
		count, err := strconv.Atoi(raw)
		if err != nil || count < 0 {
			return zone, fmt.Errorf("zone '%s': bad households value '%s'", zone.ID, raw)
		}
		zone.Households = count
	} else {
		zone.Households = sizeSum
	}

	for _, column := range ageBracketColumns {
		count := 0
		if raw := record.Attr(column); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed < 0 {
				return zone, fmt.Errorf("zone '%s': bad %s value '%s'", zone.ID, column, raw)
			}
			count = parsed
		}
		zone.AgeMarginal = append(zone.AgeMarginal, count)
	}
	return zone, nil
}
