package scenegen

import (
	"math/rand"
	"strconv"
	"sync"

	"github.com/pkg/errors"
)

const destinationCandidates = 16

// DemandAssembler Resolves synthesized trip templates into concrete
// origin-destination pairs. Unresolvable templates are dropped and counted,
// never defaulted to an arbitrary location.
type DemandAssembler struct {
	graph *Graph
	index *GeometryIndex

	seed              uint64
	workers           int
	destinationRadius float64
	timeOfDay         map[TripPurpose]TimeOfDayDistribution
	reachability      *reachabilityChecker
}

func NewDemandAssembler(graph *Graph, index *GeometryIndex, cfg *Config) (*DemandAssembler, error) {
	assembler := &DemandAssembler{
		graph:             graph,
		index:             index,
		seed:              cfg.Seed,
		workers:           cfg.Workers,
		destinationRadius: cfg.DestinationRadius,
		timeOfDay:         cfg.timeOfDay(),
	}
	if cfg.ReachabilityCheck {
		checker, err := newReachabilityChecker(graph)
		if err != nil {
			return nil, errors.Wrap(err, "reachability preparation")
		}
		assembler.reachability = checker
	}
	return assembler, nil
}

type demandCounters struct {
	resolved    int
	unresolved  int
	unreachable int
}

func (counters *demandCounters) add(other demandCounters) {
	counters.resolved += other.resolved
	counters.unresolved += other.unresolved
	counters.unreachable += other.unreachable
}

// Assemble produces trips for every household. Households shard across
// workers; every household consumes its own random sub-stream, so results do
// not depend on worker count. Per-worker counters are summed after the pool
// drains.
func (assembler *DemandAssembler) Assemble(households []Household) ([]Trip, demandCounters, error) {
	perHousehold := make([][]Trip, len(households))
	workers := assembler.workers
	if workers < 1 {
		workers = 1
	}
	var wg sync.WaitGroup
	workerCounters := make([]demandCounters, workers)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for i := worker; i < len(households); i += workers {
				perHousehold[i] = assembler.assembleHousehold(&households[i], &workerCounters[worker])
			}
		}(w)
	}
	wg.Wait()

	counters := demandCounters{}
	for w := range workerCounters {
		counters.add(workerCounters[w])
	}
	trips := []Trip{}
	for i := range perHousehold {
		trips = append(trips, perHousehold[i]...)
	}
	return trips, counters, nil
}

func (assembler *DemandAssembler) assembleHousehold(household *Household, counters *demandCounters) []Trip {
	r := newRand(subSeed(assembler.seed, "demand", strconv.FormatInt(int64(household.ID), 10)))
	trips := []Trip{}
	for personIdx := range household.Persons {
		person := &household.Persons[personIdx]
		for _, template := range person.Templates {
			trip, ok := assembler.resolveTrip(r, household, personIdx, template, counters)
			if ok {
				trips = append(trips, trip)
			}
		}
	}
	return trips
}

func (assembler *DemandAssembler) resolveTrip(r *rand.Rand, household *Household, personIdx int, template TripTemplate, counters *demandCounters) (Trip, bool) {
	origin := assembler.graph.Element(household.Anchor)
	wantActivity := destinationActivity[template.Purpose]

	candidates, err := assembler.index.NearestMatchingWithin(
		origin.Centroid(),
		destinationCandidates,
		assembler.destinationRadius,
		func(element *GraphElement) bool {
			return element.activity == wantActivity && element.ID != household.Anchor
		},
	)
	if err != nil || len(candidates) == 0 {
		counters.unresolved++
		// the random draws below must not happen for a dropped trip, so a
		// template resolves identically whether or not its siblings do
		return Trip{}, false
	}

	weights := make([]float64, len(candidates))
	for i := range candidates {
		weights[i] = 1.0 / (1.0 + candidates[i].Distance)
	}
	destination := candidates[weightedIndex(r, weights)].Element

	if assembler.reachability != nil && !assembler.reachability.Reachable(origin, destination) {
		counters.unresolved++
		counters.unreachable++
		return Trip{}, false
	}

	distribution, ok := assembler.timeOfDay[template.Purpose]
	if !ok {
		distribution = defaultTimeOfDay[template.Purpose]
	}
	counters.resolved++
	return Trip{
		HouseholdID: household.ID,
		PersonIdx:   personIdx,
		Purpose:     template.Purpose,
		Agent:       template.Agent,
		Origin:      household.Anchor,
		Destination: destination.ID,
		DepartSec:   distribution.DrawSeconds(r),
	}, true
}
