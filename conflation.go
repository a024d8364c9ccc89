package scenegen

import (
	"sort"
	"sync"

	"github.com/pkg/errors"
)

const (
	candidatesPerQuery = 8
)

// ConflationEngine Matches normalized external records onto graph elements
// using geometric proximity weighted by attribute compatibility. Idempotent:
// conflating the same (graph, records) pair twice yields identical matches.
type ConflationEngine struct {
	graph *Graph
	index *GeometryIndex

	radiusByKind  map[RecordKind]float64
	tieBand       float64
	minConfidence float64
	workers       int
}

func NewConflationEngine(graph *Graph, index *GeometryIndex, cfg *Config) *ConflationEngine {
	return &ConflationEngine{
		graph:         graph,
		index:         index,
		radiusByKind:  cfg.radiusByKind(),
		tieBand:       cfg.AmbiguityTieBand,
		minConfidence: cfg.MinConfidence,
		workers:       cfg.Workers,
	}
}

// Conflate matches every record. Records are sharded across workers; each
// worker writes results by record index, so output is independent of worker
// count and scheduling.
func (engine *ConflationEngine) Conflate(records []NormalizedRecord) ([]Match, error) {
	matches := make([]Match, len(records))
	workers := engine.workers
	if workers < 1 {
		workers = 1
	}

	var wg sync.WaitGroup
	errs := make([]error, workers)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for i := worker; i < len(records); i += workers {
				match, err := engine.conflateOne(&records[i])
				if err != nil {
					errs[worker] = errors.Wrapf(err, "record '%d'", records[i].ID)
					return
				}
				matches[i] = match
			}
		}(w)
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return nil, errors.Wrap(err, "conflation")
		}
	}
	return matches, nil
}

func (engine *ConflationEngine) conflateOne(record *NormalizedRecord) (Match, error) {
	if record.Kind == RECORD_CENSUS_TRACT {
		return engine.conflateContainment(record)
	}
	return engine.conflateProximity(record)
}

// conflateProximity scores the k nearest elements within the kind-specific
// radius by inverse distance times attribute compatibility.
func (engine *ConflationEngine) conflateProximity(record *NormalizedRecord) (Match, error) {
	match := Match{
		RecordID: record.ID,
		Kind:     record.Kind,
		Category: record.Attr("category"),
		Status:   MATCH_UNMATCHED,
	}
	radius, ok := engine.radiusByKind[record.Kind]
	if !ok {
		return match, errors.Errorf("no search radius configured for kind '%s'", record.Kind)
	}
	candidates, err := engine.index.NearestWithin(record.Point, candidatesPerQuery, radius)
	if err != nil {
		return match, err
	}

	type scored struct {
		id    ElementID
		score float64
	}
	best := 0.0
	scores := []scored{}
	for _, candidate := range candidates {
		weight := compatibilityWeight(record.Kind, candidate.Element)
		if weight == 0 {
			continue
		}
		score := weight / (1.0 + candidate.Distance)
		if score < engine.minConfidence {
			continue
		}
		scores = append(scores, scored{id: candidate.Element.ID, score: score})
		if score > best {
			best = score
		}
	}
	if len(scores) == 0 {
		return match, nil
	}

	// Candidates within the tie band of the best score are ties.
	ties := []ElementID{}
	for _, s := range scores {
		if s.score >= best*(1.0-engine.tieBand) {
			ties = append(ties, s.id)
		}
	}
	sort.Slice(ties, func(i, j int) bool { return ties[i] < ties[j] })

	match.Confidence = best
	match.Candidates = ties
	match.ElementID = ties[0]
	if len(ties) > 1 {
		match.Status = MATCH_AMBIGUOUS
	} else {
		match.Status = MATCH_MATCHED
	}
	return match, nil
}

// conflateContainment matches a tract polygon to every intersecting element.
func (engine *ConflationEngine) conflateContainment(record *NormalizedRecord) (Match, error) {
	match := Match{
		RecordID: record.ID,
		Kind:     record.Kind,
		Status:   MATCH_UNMATCHED,
	}
	contained, err := engine.index.Within(record.Polygon)
	if err != nil {
		return match, err
	}
	if len(contained) == 0 {
		return match, nil
	}
	ids := make([]ElementID, len(contained))
	for i := range contained {
		ids[i] = contained[i].ID
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	match.Status = MATCH_MATCHED
	match.Candidates = ids
	match.ElementID = ids[0]
	match.Confidence = 1.0
	return match, nil
}

// compatibilityWeight encodes per-kind attribute heuristics. Zero excludes
// the candidate entirely.
func compatibilityWeight(kind RecordKind, element *GraphElement) float64 {
	switch kind {
	case RECORD_COLLISION:
		// collisions happen on road segments
		if element.Kind != ELEMENT_EDGE {
			return 0
		}
		return 1.0
	case RECORD_TRANSIT_STOP:
		if element.Kind != ELEMENT_EDGE {
			return 0
		}
		if _, ok := transitCompatibleRoadClasses[element.roadClass]; !ok {
			return 0
		}
		return 1.0
	case RECORD_POI:
		return 1.0
	}
	return 0
}

// attachAnnotations writes weak back-references from matched elements to
// their records. Annotations are rebuilt from scratch, so repeated runs over
// the same graph do not accumulate duplicate refs.
func attachAnnotations(graph *Graph, matches []Match) error {
	for _, id := range graph.IDs() {
		graph.Element(id).annotations = nil
	}
	for i := range matches {
		match := &matches[i]
		if match.Status == MATCH_UNMATCHED {
			continue
		}
		ref := AnnotationRef{Kind: match.Kind, RecordID: match.RecordID}
		if match.Kind == RECORD_CENSUS_TRACT {
			for _, id := range match.Candidates {
				if err := graph.Attach(id, ref); err != nil {
					return err
				}
			}
			continue
		}
		if err := graph.Attach(match.ElementID, ref); err != nil {
			return err
		}
	}
	return nil
}
