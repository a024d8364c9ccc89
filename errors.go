package scenegen

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrInvalidGeometry is returned for degenerate input geometry: NaN or
// infinite coordinates, empty polygons, linestrings with less than 2 points.
var ErrInvalidGeometry = errors.New("invalid geometry")

// ErrNoScenario is returned when the pipeline aborts before the demand
// assembly stage could emit a complete scenario.
var ErrNoScenario = errors.New("no scenario emitted")

// ErrDeterminismViolation marks diverging parallel and sequential runs.
// Debug-only invariant check; indicates a bug, not a user-facing condition.
var ErrDeterminismViolation = errors.New("determinism violation")

// SourceQualityError reports an adapter whose skip rate exceeded the
// configured threshold. It is fatal for the run: bad input must not silently
// produce a degraded scenario.
type SourceQualityError struct {
	Source    string
	Skipped   int
	Total     int
	Threshold float64
}

func (e *SourceQualityError) Error() string {
	rate := 0.0
	if e.Total > 0 {
		rate = float64(e.Skipped) / float64(e.Total)
	}
	return fmt.Sprintf("source '%s' skipped %d of %d records (rate %.3f exceeds threshold %.3f)", e.Source, e.Skipped, e.Total, rate, e.Threshold)
}

// ZoneCoverageGap marks a zone which has no matched residential elements and
// therefore can not host synthesized households. Gaps are collected into the
// quality report and skipped, never fatal.
type ZoneCoverageGap struct {
	ZoneID string
}

func (e *ZoneCoverageGap) Error() string {
	return fmt.Sprintf("zone '%s' has no matched residential elements", e.ZoneID)
}
