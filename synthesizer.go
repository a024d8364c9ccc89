package scenegen

import (
	"math/rand"
	"sync"

	"github.com/pkg/errors"
)

var (
	// defaultSizeShares kick in when a zone carries no household-size
	// marginal of its own.
	defaultSizeShares = []float64{0.30, 0.32, 0.16, 0.12, 0.06, 0.04}

	// defaultHeadShares give the age bracket of the household head when the
	// zone age marginal is empty (child, adult, retired).
	defaultHeadShares = []float64{0, 0.8, 0.2}

	ageBracketMin  = []int{5, 18, 65}
	ageBracketSpan = []int{13, 47, 26}

	incomeBracketShares = []float64{0.20, 0.30, 0.25, 0.15, 0.10}
)

// PopulationSynthesizer Expands per-zone aggregate statistics into concrete
// household and person records via iterative proportional fitting plus
// seeded sampling. One sub-stream of randomness per zone keeps parallel
// execution bit-identical to sequential.
type PopulationSynthesizer struct {
	graph   *Graph
	seed    uint64
	workers int
}

func NewPopulationSynthesizer(graph *Graph, cfg *Config) *PopulationSynthesizer {
	return &PopulationSynthesizer{
		graph:   graph,
		seed:    cfg.Seed,
		workers: cfg.Workers,
	}
}

type zoneSynthesis struct {
	households []Household
	gap        *ZoneCoverageGap
}

// Synthesize draws households for every zone. The per-zone household count
// equals the zone aggregate exactly; zones without matched residential
// elements are skipped and reported as coverage gaps.
func (synthesizer *PopulationSynthesizer) Synthesize(zones []Zone) ([]Household, []ZoneCoverageGap, error) {
	results := make([]zoneSynthesis, len(zones))
	workers := synthesizer.workers
	if workers < 1 {
		workers = 1
	}
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for i := worker; i < len(zones); i += workers {
				result, err := synthesizer.synthesizeZone(&zones[i])
				if err != nil {
					errs[worker] = errors.Wrapf(err, "zone '%s'", zones[i].ID)
					return
				}
				results[i] = result
			}
		}(w)
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return nil, nil, errors.Wrap(err, "population synthesis")
		}
	}

	// merge in zone order and assign stable ids
	households := []Household{}
	gaps := []ZoneCoverageGap{}
	nextID := HouseholdID(1)
	for i := range results {
		if results[i].gap != nil {
			gaps = append(gaps, *results[i].gap)
			continue
		}
		for j := range results[i].households {
			results[i].households[j].ID = nextID
			nextID++
			households = append(households, results[i].households[j])
		}
	}
	return households, gaps, nil
}

func (synthesizer *PopulationSynthesizer) synthesizeZone(zone *Zone) (zoneSynthesis, error) {
	if zone.Households == 0 {
		return zoneSynthesis{}, nil
	}
	if len(zone.ResidentialElements) == 0 {
		return zoneSynthesis{gap: &ZoneCoverageGap{ZoneID: zone.ID}}, nil
	}
	r := newRand(subSeed(synthesizer.seed, "synth", zone.ID))

	// Row marginal: households by size. Column marginal: head age bracket.
	sizeWeights := make([]float64, 0, maxHouseholdSize)
	if len(zone.SizeMarginal) > 0 {
		for _, count := range zone.SizeMarginal {
			sizeWeights = append(sizeWeights, float64(count))
		}
	} else {
		sizeWeights = append(sizeWeights, defaultSizeShares...)
	}
	headWeights := make([]float64, len(defaultHeadShares))
	copy(headWeights, defaultHeadShares)
	if len(zone.AgeMarginal) == len(headWeights) {
		adults := float64(zone.AgeMarginal[1])
		retired := float64(zone.AgeMarginal[2])
		if adults+retired > 0 {
			headWeights = []float64{0, adults, retired}
		}
	}

	joint := ipfFit(sizeWeights, headWeights)
	cellCounts := apportion(flatten(joint), zone.Households)

	households := make([]Household, 0, zone.Households)
	brackets := len(headWeights)
	for cell, count := range cellCounts {
		size := cell/brackets + 1
		headBracket := cell % brackets
		for k := 0; k < count; k++ {
			households = append(households, synthesizer.drawHousehold(r, zone, size, headBracket))
		}
	}
	return zoneSynthesis{households: households}, nil
}

func (synthesizer *PopulationSynthesizer) drawHousehold(r *rand.Rand, zone *Zone, size, headBracket int) Household {
	anchorIdx := weightedIndex(r, zone.ResidentialWeights)
	household := Household{
		ZoneID:   zone.ID,
		Anchor:   zone.ResidentialElements[anchorIdx],
		Size:     size,
		Income:   1 + weightedIndex(r, incomeBracketShares),
		Vehicles: r.Intn(size/2 + 2),
		Persons:  make([]Person, 0, size),
	}
	household.Persons = append(household.Persons, drawPerson(r, headBracket))
	for member := 1; member < size; member++ {
		bracket := 1
		if len(zone.AgeMarginal) == 3 {
			bracket = weightedIndexInts(r, zone.AgeMarginal)
		}
		household.Persons = append(household.Persons, drawPerson(r, bracket))
	}
	return household
}

func drawPerson(r *rand.Rand, bracket int) Person {
	age := ageBracketMin[bracket] + r.Intn(ageBracketSpan[bracket])
	person := Person{Age: age}
	switch bracket {
	case 0:
		person.Role = ROLE_CHILD
	case 2:
		person.Role = ROLE_RETIRED
	default:
		person.Role = ROLE_ADULT
	}
	person.Templates = drawTemplates(r, person.Role)
	return person
}

// drawTemplates assigns trip purposes by role. Draw order is fixed so the
// consumed random sequence is stable.
func drawTemplates(r *rand.Rand, role PersonRole) []TripTemplate {
	templates := []TripTemplate{}
	add := func(probability float64, purpose TripPurpose) {
		if r.Float64() < probability {
			templates = append(templates, TripTemplate{
				Purpose: purpose,
				Agent:   defaultAgentByPurpose[purpose],
			})
		}
	}
	switch role {
	case ROLE_CHILD:
		add(0.90, PURPOSE_SCHOOL)
		add(0.15, PURPOSE_LEISURE)
	case ROLE_ADULT:
		add(0.70, PURPOSE_WORK)
		add(0.35, PURPOSE_SHOP)
		add(0.20, PURPOSE_LEISURE)
	case ROLE_RETIRED:
		add(0.45, PURPOSE_SHOP)
		add(0.35, PURPOSE_LEISURE)
	}
	return templates
}
