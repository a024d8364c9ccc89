package scenegen

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

// QualityReport Per-stage counters for operational monitoring. It is never
// consumed by the simulation and never part of the scenario artifact.
type QualityReport struct {
	SkippedBySource map[string]int

	MatchedByKind   map[RecordKind]int
	AmbiguousByKind map[RecordKind]int
	UnmatchedByKind map[RecordKind]int

	ZoneGaps []string

	SynthesizedHouseholds int
	SynthesizedPersons    int

	ResolvedTrips    int
	UnresolvedTrips  int
	UnreachableTrips int
}

func newQualityReport() *QualityReport {
	return &QualityReport{
		SkippedBySource: make(map[string]int),
		MatchedByKind:   make(map[RecordKind]int),
		AmbiguousByKind: make(map[RecordKind]int),
		UnmatchedByKind: make(map[RecordKind]int),
	}
}

func (report *QualityReport) tallyMatches(matches []Match) {
	for i := range matches {
		switch matches[i].Status {
		case MATCH_MATCHED:
			report.MatchedByKind[matches[i].Kind]++
		case MATCH_AMBIGUOUS:
			report.AmbiguousByKind[matches[i].Kind]++
		case MATCH_UNMATCHED:
			report.UnmatchedByKind[matches[i].Kind]++
		}
	}
}

type qualityRow struct {
	Stage  string
	Metric string
	Value  int
}

// rows returns all counters as (stage, metric, value) triples in a stable
// order.
func (report *QualityReport) rows() []qualityRow {
	rows := []qualityRow{}
	sources := make([]string, 0, len(report.SkippedBySource))
	for source := range report.SkippedBySource {
		sources = append(sources, source)
	}
	sort.Strings(sources)
	for _, source := range sources {
		rows = append(rows, qualityRow{Stage: "normalize", Metric: "skipped_" + source, Value: report.SkippedBySource[source]})
	}
	appendKinds := func(metric string, byKind map[RecordKind]int) {
		kinds := make([]int, 0, len(byKind))
		for kind := range byKind {
			kinds = append(kinds, int(kind))
		}
		sort.Ints(kinds)
		for _, kind := range kinds {
			rows = append(rows, qualityRow{Stage: "conflation", Metric: fmt.Sprintf("%s_%s", metric, RecordKind(kind)), Value: byKind[RecordKind(kind)]})
		}
	}
	appendKinds("matched", report.MatchedByKind)
	appendKinds("ambiguous", report.AmbiguousByKind)
	appendKinds("unmatched", report.UnmatchedByKind)
	rows = append(rows, qualityRow{Stage: "synthesis", Metric: "zone_gaps", Value: len(report.ZoneGaps)})
	rows = append(rows, qualityRow{Stage: "synthesis", Metric: "households", Value: report.SynthesizedHouseholds})
	rows = append(rows, qualityRow{Stage: "synthesis", Metric: "persons", Value: report.SynthesizedPersons})
	rows = append(rows, qualityRow{Stage: "demand", Metric: "resolved_trips", Value: report.ResolvedTrips})
	rows = append(rows, qualityRow{Stage: "demand", Metric: "unresolved_trips", Value: report.UnresolvedTrips})
	rows = append(rows, qualityRow{Stage: "demand", Metric: "unreachable_trips", Value: report.UnreachableTrips})
	return rows
}

// ExportToCSV writes the report for offline inspection.
func (report *QualityReport) ExportToCSV(fname string) error {
	file, err := os.Create(fname)
	if err != nil {
		return errors.Wrap(err, "Can't create file")
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()
	writer.Comma = ';'

	err = writer.Write([]string{"stage", "metric", "value"})
	if err != nil {
		return errors.Wrap(err, "Can't write header")
	}
	for _, row := range report.rows() {
		err = writer.Write([]string{row.Stage, row.Metric, fmt.Sprintf("%d", row.Value)})
		if err != nil {
			return errors.Wrap(err, "Can't write row")
		}
	}
	for _, zoneID := range report.ZoneGaps {
		err = writer.Write([]string{"synthesis", "zone_gap_" + zoneID, "1"})
		if err != nil {
			return errors.Wrap(err, "Can't write row")
		}
	}
	return nil
}

// Metrics Prometheus mirror of the quality report for batch schedulers that
// scrape pipeline runs.
type Metrics struct {
	skippedRecords *prometheus.CounterVec
	matchOutcomes  *prometheus.CounterVec
	zoneGaps       prometheus.Counter
	households     prometheus.Gauge
	persons        prometheus.Gauge
	trips          *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	metrics := &Metrics{
		skippedRecords: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scenegen",
			Name:      "skipped_records_total",
			Help:      "Records skipped by source adapters.",
		}, []string{"source"}),
		matchOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scenegen",
			Name:      "match_outcomes_total",
			Help:      "Conflation outcomes by record kind and status.",
		}, []string{"kind", "status"}),
		zoneGaps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "scenegen",
			Name:      "zone_coverage_gaps_total",
			Help:      "Zones skipped for lack of residential elements.",
		}),
		households: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "scenegen",
			Name:      "synthesized_households",
			Help:      "Household count of the last emitted scenario.",
		}),
		persons: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "scenegen",
			Name:      "synthesized_persons",
			Help:      "Person count of the last emitted scenario.",
		}),
		trips: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scenegen",
			Name:      "trips_total",
			Help:      "Assembled trips by resolution outcome.",
		}, []string{"outcome"}),
	}
	reg.MustRegister(
		metrics.skippedRecords,
		metrics.matchOutcomes,
		metrics.zoneGaps,
		metrics.households,
		metrics.persons,
		metrics.trips,
	)
	return metrics
}

// Publish pushes the report counters into the registered metrics.
func (report *QualityReport) Publish(metrics *Metrics) {
	if metrics == nil {
		return
	}
	for source, count := range report.SkippedBySource {
		metrics.skippedRecords.WithLabelValues(source).Add(float64(count))
	}
	push := func(status string, byKind map[RecordKind]int) {
		for kind, count := range byKind {
			metrics.matchOutcomes.WithLabelValues(kind.String(), status).Add(float64(count))
		}
	}
	push("matched", report.MatchedByKind)
	push("ambiguous", report.AmbiguousByKind)
	push("unmatched", report.UnmatchedByKind)
	metrics.zoneGaps.Add(float64(len(report.ZoneGaps)))
	metrics.households.Set(float64(report.SynthesizedHouseholds))
	metrics.persons.Set(float64(report.SynthesizedPersons))
	metrics.trips.WithLabelValues("resolved").Add(float64(report.ResolvedTrips))
	metrics.trips.WithLabelValues("unresolved").Add(float64(report.UnresolvedTrips))
	metrics.trips.WithLabelValues("unreachable").Add(float64(report.UnreachableTrips))
}
