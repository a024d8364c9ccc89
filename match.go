package scenegen

type MatchStatus uint16

const (
	MATCH_UNMATCHED = MatchStatus(iota + 1)
	MATCH_MATCHED
	MATCH_AMBIGUOUS
)

func (iotaIdx MatchStatus) String() string {
	return [...]string{"undefined", "unmatched", "matched", "ambiguous"}[iotaIdx]
}

// Match Result of conflating one normalized record onto the base graph.
//
// An ambiguous match keeps all tied candidates (ascending id) and is resolved
// to the lowest candidate id so that reruns are reproducible; the ambiguity
// itself is surfaced as a quality metric, not an error.
type Match struct {
	RecordID int64
	Kind     RecordKind

	// Category carries the source 'category' attribute for activity
	// classification of the matched element.
	Category string

	Status     MatchStatus
	ElementID  ElementID
	Candidates []ElementID
	Confidence float64
}
