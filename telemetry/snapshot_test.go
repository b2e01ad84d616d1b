package telemetry

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/pthm-cable/xnoise/noisemap"
)

func testMap(t *testing.T, w, h int) *noisemap.Map {
	t.Helper()
	m, err := noisemap.New(w, h, nil)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(m.Dispose)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if err := m.Set(x, y, float32(x)-float32(y)/4); err != nil {
				t.Fatal(err)
			}
		}
	}
	return m
}

func TestSnapshotSaveLoad(t *testing.T) {
	tmpDir := t.TempDir()

	m := testMap(t, 4, 3)
	if err := m.Set(2, 1, float32(math.NaN())); err != nil {
		t.Fatal(err)
	}
	b := noisemap.SphericalBounds(-45, 45, -90, 90)
	snapshot, err := NewSnapshot(m, noisemap.Spherical, b, false, false)
	if err != nil {
		t.Fatalf("NewSnapshot failed: %v", err)
	}
	snapshot.RunID = "abc"
	snapshot.Pass = 3

	path, err := SaveSnapshot(snapshot, tmpDir)
	if err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("Snapshot file not created at %s", path)
	}

	loaded, err := LoadSnapshot(path)
	if err != nil {
		t.Fatalf("LoadSnapshot failed: %v", err)
	}

	if loaded.Version != SnapshotVersion {
		t.Errorf("Version mismatch: got %d, want %d", loaded.Version, SnapshotVersion)
	}
	if loaded.RunID != "abc" || loaded.Pass != 3 {
		t.Errorf("identity mismatch: got %q/%d", loaded.RunID, loaded.Pass)
	}
	if loaded.Projection != noisemap.Spherical || loaded.Bounds != b {
		t.Errorf("projection/bounds mismatch: got %v %+v", loaded.Projection, loaded.Bounds)
	}

	values, err := loaded.Values()
	if err != nil {
		t.Fatalf("Values failed: %v", err)
	}
	want, _, _, _ := m.Data(true, 0, 0)
	for i := range want {
		if math.IsNaN(float64(want[i])) {
			if !math.IsNaN(float64(values[i])) {
				t.Errorf("value %d = %v, want NaN", i, values[i])
			}
			continue
		}
		if values[i] != want[i] {
			t.Errorf("value %d = %v, want %v", i, values[i], want[i])
		}
	}
}

func TestSnapshotFilename(t *testing.T) {
	tmpDir := t.TempDir()

	snapshot := &Snapshot{Version: SnapshotVersion, Pass: 12, Projection: noisemap.Cylindrical}
	path, err := SaveSnapshot(snapshot, tmpDir)
	if err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}

	expected := filepath.Join(tmpDir, "snapshot_12_cylindrical.json")
	if path != expected {
		t.Errorf("Path mismatch: got %s, want %s", path, expected)
	}
}

func TestSnapshotValuesSizeMismatch(t *testing.T) {
	s := &Snapshot{Width: 2, Height: 2, Data: make([]byte, 12)}
	if _, err := s.Values(); !errors.Is(err, ErrSnapshotData) {
		t.Errorf("Values() err = %v, want ErrSnapshotData", err)
	}
}

func TestSnapshotDisposedMap(t *testing.T) {
	m := testMap(t, 2, 2)
	m.Dispose()
	if _, err := NewSnapshot(m, noisemap.Planar, noisemap.StandardBounds(noisemap.Planar), false, false); !errors.Is(err, noisemap.ErrDisposed) {
		t.Errorf("NewSnapshot on disposed map err = %v, want ErrDisposed", err)
	}
}

func TestSnapshotNormalized(t *testing.T) {
	m := testMap(t, 3, 1)
	s, err := NewSnapshot(m, noisemap.Planar, noisemap.StandardBounds(noisemap.Planar), true, true)
	if err != nil {
		t.Fatal(err)
	}
	if !s.Normalized || !s.Seamless {
		t.Errorf("flags = normalized %v seamless %v", s.Normalized, s.Seamless)
	}
	values, err := s.Values()
	if err != nil {
		t.Fatal(err)
	}
	for x, v := range values {
		if want := (float32(x) + 1) / 2; v != want {
			t.Errorf("value %d = %v, want %v", x, v, want)
		}
	}
}
