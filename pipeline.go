package scenegen

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/pkg/errors"
)

// Inputs Raw source readers for one run. Nil readers are skipped; Census
// requires Zones (aggregates are geotagged by joining tract polygons).
type Inputs struct {
	Collisions io.Reader
	Zones      io.Reader
	Census     io.Reader
	POI        io.Reader

	// Versions labels dataset versions for provenance, keyed by source name
	// (collisions, zones, census, poi).
	Versions map[string]string
}

// Pipeline Batch conflation and demand-synthesis run over one base graph.
type Pipeline struct {
	graph     *Graph
	cfg       *Config
	metrics   *Metrics
	timestamp string
	verbose   bool
}

func NewPipeline(graph *Graph, options ...func(*Pipeline)) *Pipeline {
	pipeline := &Pipeline{
		graph: graph,
		cfg:   DefaultConfig(),
	}
	for _, option := range options {
		option(pipeline)
	}
	return pipeline
}

func WithConfig(cfg *Config) func(*Pipeline) {
	return func(pipeline *Pipeline) {
		pipeline.cfg = cfg
	}
}

func WithSeed(seed uint64) func(*Pipeline) {
	return func(pipeline *Pipeline) {
		pipeline.cfg.Seed = seed
	}
}

func WithWorkers(workers int) func(*Pipeline) {
	return func(pipeline *Pipeline) {
		pipeline.cfg.Workers = workers
	}
}

func WithMetrics(metrics *Metrics) func(*Pipeline) {
	return func(pipeline *Pipeline) {
		pipeline.metrics = metrics
	}
}

// WithTimestamp sets the provenance run timestamp. Injected rather than read
// from the clock, so identical inputs can reproduce identical artifacts.
func WithTimestamp(timestamp string) func(*Pipeline) {
	return func(pipeline *Pipeline) {
		pipeline.timestamp = timestamp
	}
}

func WithVerbose(verbose bool) func(*Pipeline) {
	return func(pipeline *Pipeline) {
		pipeline.verbose = verbose
	}
}

func (pipeline *Pipeline) String() string {
	return fmt.Sprintf(`
Pipeline parameters:
	seed: %d
	workers: %d
	ambiguity_tie_band: %f
	quality_skip_threshold: %f
	destination_search_radius: %f
	reachability_check: %t
	scenario_name: '%s'
	`,
		pipeline.cfg.Seed,
		pipeline.cfg.Workers,
		pipeline.cfg.AmbiguityTieBand,
		pipeline.cfg.QualitySkipThreshold,
		pipeline.cfg.DestinationRadius,
		pipeline.cfg.ReachabilityCheck,
		pipeline.cfg.ScenarioName,
	)
}

// Run executes the whole pipeline. Either a complete, internally consistent
// scenario is returned, or an error identifying the failed stage; a partial
// scenario is never emitted. Cancellation is coarse-grained: the context is
// checked at stage boundaries only.
func (pipeline *Pipeline) Run(ctx context.Context, inputs Inputs) (*Scenario, *QualityReport, error) {
	report := newQualityReport()

	if err := pipeline.graph.Validate(); err != nil {
		return nil, report, errors.Wrap(err, "graph validation")
	}
	if err := ctx.Err(); err != nil {
		return nil, report, errors.Wrap(err, "aborted before indexing")
	}

	st := time.Now()
	index, err := BuildGeometryIndex(pipeline.graph)
	if err != nil {
		return nil, report, errors.Wrap(err, "geometry index")
	}
	pipeline.progress("Indexed %d elements in %v\n", pipeline.graph.Len(), time.Since(st))
	if err := ctx.Err(); err != nil {
		return nil, report, errors.Wrap(err, "aborted before normalization")
	}

	records, sources, err := pipeline.normalize(inputs, report)
	if err != nil {
		return nil, report, errors.Wrap(err, "normalization")
	}
	pipeline.progress("Normalized %d records from %d sources\n", len(records), len(sources))
	if err := ctx.Err(); err != nil {
		return nil, report, errors.Wrap(err, "aborted before conflation")
	}

	engine := NewConflationEngine(pipeline.graph, index, pipeline.cfg)
	matches, err := engine.Conflate(records)
	if err != nil {
		return nil, report, err
	}
	report.tallyMatches(matches)
	if err := attachAnnotations(pipeline.graph, matches); err != nil {
		return nil, report, errors.Wrap(err, "conflation")
	}
	pipeline.graph.assignActivities(matches)
	pipeline.progress("Conflated %d records\n", len(matches))
	if err := ctx.Err(); err != nil {
		return nil, report, errors.Wrap(err, "aborted before synthesis")
	}

	zones, err := buildZones(pipeline.graph, records, matches)
	if err != nil {
		return nil, report, errors.Wrap(err, "zone assembly")
	}
	synthesizer := NewPopulationSynthesizer(pipeline.graph, pipeline.cfg)
	households, gaps, err := synthesizer.Synthesize(zones)
	if err != nil {
		return nil, report, err
	}
	for _, gap := range gaps {
		report.ZoneGaps = append(report.ZoneGaps, gap.ZoneID)
	}
	sort.Strings(report.ZoneGaps)
	report.SynthesizedHouseholds = len(households)
	for i := range households {
		report.SynthesizedPersons += len(households[i].Persons)
	}
	pipeline.progress("Synthesized %d households (%d zone gaps)\n", len(households), len(gaps))
	if err := ctx.Err(); err != nil {
		return nil, report, errors.Wrap(err, "aborted before demand assembly")
	}

	assembler, err := NewDemandAssembler(pipeline.graph, index, pipeline.cfg)
	if err != nil {
		return nil, report, err
	}
	trips, counters, err := assembler.Assemble(households)
	if err != nil {
		return nil, report, errors.Wrap(err, "demand assembly")
	}
	report.ResolvedTrips = counters.resolved
	report.UnresolvedTrips = counters.unresolved
	report.UnreachableTrips = counters.unreachable
	pipeline.progress("Assembled %d trips (%d unresolved)\n", len(trips), counters.unresolved)
	if err := ctx.Err(); err != nil {
		return nil, report, errors.Wrap(err, "aborted before emission")
	}

	scenario := &Scenario{
		Name:       pipeline.cfg.ScenarioName,
		Seed:       pipeline.cfg.Seed,
		CreatedAt:  pipeline.timestamp,
		Sources:    sources,
		Households: households,
		Trips:      trips,
	}
	scenario.ID = newScenarioID(scenario.Seed, scenario.Sources)
	report.Publish(pipeline.metrics)
	return scenario, report, nil
}

// normalize drains every configured source adapter in a fixed order,
// assigning run-wide record ids and collecting provenance digests.
func (pipeline *Pipeline) normalize(inputs Inputs, report *QualityReport) ([]NormalizedRecord, []SourceVersion, error) {
	records := []NormalizedRecord{}
	sources := []SourceVersion{}
	threshold := pipeline.cfg.QualitySkipThreshold

	drain := func(name string, adapter SourceAdapter, r io.Reader) ([]NormalizedRecord, error) {
		hasher := sha256.New()
		stream, err := adapter.Normalize(io.TeeReader(r, hasher))
		if err != nil {
			return nil, errors.Wrapf(err, "source '%s'", name)
		}
		drained, skipped, err := drainStream(stream)
		if err != nil {
			return nil, err
		}
		report.SkippedBySource[name] = skipped
		sources = append(sources, SourceVersion{
			Name:    name,
			Version: inputs.Versions[name],
			Digest:  hex.EncodeToString(hasher.Sum(nil)),
		})
		return drained, nil
	}

	var zoneRecords []NormalizedRecord
	if inputs.Zones != nil {
		drained, err := drain("zones", NewZonesAdapter(threshold), inputs.Zones)
		if err != nil {
			return nil, nil, err
		}
		zoneRecords = drained
		records = append(records, drained...)
	}
	if inputs.Collisions != nil {
		drained, err := drain("collisions", NewCollisionsAdapter(threshold), inputs.Collisions)
		if err != nil {
			return nil, nil, err
		}
		records = append(records, drained...)
	}
	if inputs.POI != nil {
		drained, err := drain("poi", NewPOIAdapter(threshold), inputs.POI)
		if err != nil {
			return nil, nil, err
		}
		records = append(records, drained...)
	}
	if inputs.Census != nil {
		if zoneRecords == nil {
			return nil, nil, errors.New("census input requires zones input")
		}
		drained, err := drain("census", NewCensusAdapter(threshold, zoneRecords), inputs.Census)
		if err != nil {
			return nil, nil, err
		}
		records = append(records, drained...)
	}

	// run-wide id assignment; per-stream ids are only unique per source
	for i := range records {
		records[i].ID = int64(i)
	}
	sort.Slice(sources, func(i, j int) bool { return sources[i].Name < sources[j].Name })
	return records, sources, nil
}

// VerifyDeterminism is a debug-only invariant check: it runs the pipeline
// with the configured worker count and once more sequentially, comparing
// scenario digests. A mismatch indicates a bug in the pipeline, never a
// user-facing condition. makeInputs must return fresh readers per call.
func (pipeline *Pipeline) VerifyDeterminism(ctx context.Context, makeInputs func() (Inputs, error)) error {
	inputs, err := makeInputs()
	if err != nil {
		return err
	}
	parallel, _, err := pipeline.Run(ctx, inputs)
	if err != nil {
		return err
	}
	inputs, err = makeInputs()
	if err != nil {
		return err
	}
	sequentialCfg := *pipeline.cfg
	sequentialCfg.Workers = 1
	sequential := NewPipeline(pipeline.graph,
		WithConfig(&sequentialCfg),
		WithTimestamp(pipeline.timestamp),
	)
	reference, _, err := sequential.Run(ctx, inputs)
	if err != nil {
		return err
	}
	parallelDigest, err := parallel.Digest()
	if err != nil {
		return err
	}
	referenceDigest, err := reference.Digest()
	if err != nil {
		return err
	}
	if parallelDigest != referenceDigest {
		return errors.Wrapf(ErrDeterminismViolation, "digest %s != %s", parallelDigest, referenceDigest)
	}
	return nil
}

func (pipeline *Pipeline) progress(format string, args ...interface{}) {
	if pipeline.verbose {
		fmt.Printf(format, args...)
	}
}
