package telemetry

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/pthm-cable/xnoise/noisemap"
)

// SnapshotVersion is incremented when the format changes.
const SnapshotVersion = 1

// ErrSnapshotData is returned when a snapshot's data does not match its size.
var ErrSnapshotData = errors.New("snapshot data does not match its size")

// Snapshot holds the raw values of one generated map together with the
// settings that produced it.
type Snapshot struct {
	Version int    `json:"version"`
	RunID   string `json:"run_id"`
	Pass    int    `json:"pass"`

	Projection noisemap.Projection `json:"projection"`
	Bounds     noisemap.Bounds     `json:"bounds"`
	Seamless   bool                `json:"seamless"`
	Normalized bool                `json:"normalized"` // values mapped to [0,1]

	Width  int `json:"width"`
	Height int `json:"height"`

	// Row-major little-endian float32 values of the cropped map.
	// NaN survives here where a JSON number could not hold it.
	Data []byte `json:"data"`
}

// NewSnapshot captures the cropped contents of m, optionally normalized.
func NewSnapshot(m *noisemap.Map, p noisemap.Projection, b noisemap.Bounds, seamless, normalize bool) (*Snapshot, error) {
	data := m.Data
	if normalize {
		data = m.NormalizedData
	}
	values, w, h, err := data(true, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	raw := make([]byte, 4*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint32(raw[4*i:], math.Float32bits(v))
	}
	return &Snapshot{
		Version:    SnapshotVersion,
		Projection: p,
		Bounds:     b,
		Seamless:   seamless,
		Normalized: normalize,
		Width:      w,
		Height:     h,
		Data:       raw,
	}, nil
}

// Values decodes the map values.
func (s *Snapshot) Values() ([]float32, error) {
	if s.Width < 0 || s.Height < 0 || len(s.Data) != 4*s.Width*s.Height {
		return nil, fmt.Errorf("%w: %dx%d with %d bytes", ErrSnapshotData, s.Width, s.Height, len(s.Data))
	}
	values := make([]float32, s.Width*s.Height)
	for i := range values {
		values[i] = math.Float32frombits(binary.LittleEndian.Uint32(s.Data[4*i:]))
	}
	return values, nil
}

// SaveSnapshot writes a snapshot to disk.
// Returns the filepath where it was saved.
func SaveSnapshot(snapshot *Snapshot, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	name := fmt.Sprintf("snapshot_%d_%s.json", snapshot.Pass, snapshot.Projection)
	path := filepath.Join(dir, name)

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}

	return path, nil
}

// LoadSnapshot reads a snapshot from disk.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}

	return &snapshot, nil
}
