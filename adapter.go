package scenegen

import (
	"io"
	"strconv"
)

// SourceAdapter Normalizes one external dataset into a stream of geotagged
// records. Underlying files may be larger than memory, so adapters read
// lazily; invalid records are skipped and counted, not fatal.
type SourceAdapter interface {
	// Name identifies the source in errors and the quality report.
	Name() string
	// Normalize returns a lazy record stream over the raw source.
	Normalize(r io.Reader) (*RecordStream, error)
}

// nextFunc pulls the next record from the underlying source. It returns
// io.EOF at end of stream and errSkipRecord for a skippable bad record.
type nextFunc func() (NormalizedRecord, error)

type skipError struct {
	reason string
}

func (e *skipError) Error() string {
	return e.reason
}

// RecordStream Lazy, finite sequence of normalized records plus a trailing
// count of records the adapter had to skip.
type RecordStream struct {
	source    string
	threshold float64
	next      nextFunc

	nextID  int64
	emitted int
	skipped int
	done    bool
}

func newRecordStream(source string, threshold float64, next nextFunc) *RecordStream {
	return &RecordStream{
		source:    source,
		threshold: threshold,
		next:      next,
	}
}

// Next returns the next normalized record. io.EOF marks a clean end of the
// stream; any other error is structural and fatal for the stage.
func (stream *RecordStream) Next() (NormalizedRecord, error) {
	for {
		record, err := stream.next()
		if err == io.EOF {
			stream.done = true
			return NormalizedRecord{}, io.EOF
		}
		if err != nil {
			if _, ok := err.(*skipError); ok {
				stream.skipped++
				continue
			}
			return NormalizedRecord{}, err
		}
		record.ID = stream.nextID
		stream.nextID++
		stream.emitted++
		return record, nil
	}
}

// Skipped returns the number of records skipped so far.
func (stream *RecordStream) Skipped() int {
	return stream.skipped
}

// Close checks the final skip rate against the adapter threshold. It must be
// called after the stream is drained; an exceeded threshold yields a
// SourceQualityError so bad input never silently degrades the pipeline.
func (stream *RecordStream) Close() error {
	total := stream.emitted + stream.skipped
	if total == 0 {
		return nil
	}
	rate := float64(stream.skipped) / float64(total)
	if rate > stream.threshold {
		return &SourceQualityError{
			Source:    stream.source,
			Skipped:   stream.skipped,
			Total:     total,
			Threshold: stream.threshold,
		}
	}
	return nil
}

// propertyAsString renders a scalar GeoJSON property as an attribute value.
// JSON numbers decode as float64; integral census marginals must survive as
// their plain decimal form, not be dropped.
func propertyAsString(value interface{}) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(v), true
	}
	return "", false
}

// drainStream collects the whole stream into memory and enforces the skip
// threshold. Stages operate on fully loaded inputs (see pipeline).
func drainStream(stream *RecordStream) ([]NormalizedRecord, int, error) {
	records := []NormalizedRecord{}
	for {
		record, err := stream.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, stream.Skipped(), err
		}
		records = append(records, record)
	}
	if err := stream.Close(); err != nil {
		return nil, stream.Skipped(), err
	}
	return records, stream.Skipped(), nil
}
