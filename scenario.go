package scenegen

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"io"

	"github.com/golang/snappy"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const scenarioFormatVersion = byte(1)

var scenarioMagic = [4]byte{'S', 'C', 'E', 'N'}

// SourceVersion Provenance of one input dataset.
type SourceVersion struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Digest  string `json:"digest"`
}

// Scenario Final synthesized population plus trip demand, consumed wholesale
// by the downstream simulation. Immutable once emitted.
//
// Every collection is sorted at assembly time, so the canonical JSON
// encoding of the same (seed, inputs) pair is bit-identical across runs and
// worker counts.
type Scenario struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Seed      uint64          `json:"seed"`
	CreatedAt string          `json:"created_at"`
	Sources   []SourceVersion `json:"sources"`

	Households []Household `json:"households"`
	Trips      []Trip      `json:"trips"`
}

// newScenarioID derives a stable UUID (v5) from the seed and input digests.
// A random id would break scenario determinism.
func newScenarioID(seed uint64, sources []SourceVersion) string {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], seed)
	payload := append([]byte{}, buf[:]...)
	for _, source := range sources {
		payload = append(payload, []byte(source.Name)...)
		payload = append(payload, 0)
		payload = append(payload, []byte(source.Digest)...)
		payload = append(payload, 0)
	}
	return uuid.NewSHA1(uuid.NameSpaceOID, payload).String()
}

// canonicalJSON encodes a scenario with fixed field order.
func (scenario *Scenario) canonicalJSON() ([]byte, error) {
	return json.Marshal(scenario)
}

// Digest returns the SHA-256 of the canonical encoding, used by the
// determinism self-check and by provenance of downstream artifacts.
func (scenario *Scenario) Digest() (string, error) {
	data, err := scenario.canonicalJSON()
	if err != nil {
		return "", errors.Wrap(err, "Can't encode scenario")
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// Encode writes the persisted artifact: magic, format version, snappy-packed
// canonical JSON. Re-encoding a decoded scenario is byte-for-byte identical.
func (scenario *Scenario) Encode(w io.Writer) error {
	data, err := scenario.canonicalJSON()
	if err != nil {
		return errors.Wrap(err, "Can't encode scenario")
	}
	packed := snappy.Encode(nil, data)
	if _, err := w.Write(scenarioMagic[:]); err != nil {
		return errors.Wrap(err, "Can't write magic")
	}
	if _, err := w.Write([]byte{scenarioFormatVersion}); err != nil {
		return errors.Wrap(err, "Can't write version")
	}
	if _, err := w.Write(packed); err != nil {
		return errors.Wrap(err, "Can't write payload")
	}
	return nil
}

// DecodeScenario reads an artifact produced by Encode.
func DecodeScenario(r io.Reader) (*Scenario, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "Can't read scenario")
	}
	if len(raw) < 5 {
		return nil, errors.New("scenario artifact too short")
	}
	if raw[0] != scenarioMagic[0] || raw[1] != scenarioMagic[1] || raw[2] != scenarioMagic[2] || raw[3] != scenarioMagic[3] {
		return nil, errors.New("bad scenario magic")
	}
	if raw[4] != scenarioFormatVersion {
		return nil, errors.Errorf("unsupported scenario format version %d", raw[4])
	}
	data, err := snappy.Decode(nil, raw[5:])
	if err != nil {
		return nil, errors.Wrap(err, "Can't unpack scenario")
	}
	scenario := &Scenario{}
	if err := json.Unmarshal(data, scenario); err != nil {
		return nil, errors.Wrap(err, "Can't decode scenario")
	}
	return scenario, nil
}
