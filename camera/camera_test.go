package camera

import (
	"math"
	"testing"

	"github.com/pthm-cable/xnoise/noisemap"
)

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestNew(t *testing.T) {
	cam := ForProjection(720, 360, noisemap.Spherical)

	// Should be centered on the region
	if cam.X != 0 || cam.Y != 0 {
		t.Errorf("expected camera at (0, 0), got (%f, %f)", cam.X, cam.Y)
	}
	if cam.Zoom != 1.0 {
		t.Errorf("expected zoom 1.0, got %f", cam.Zoom)
	}
	if !cam.WrapX {
		t.Error("spherical camera should wrap horizontally")
	}
	if ForProjection(100, 100, noisemap.Planar).WrapX {
		t.Error("planar camera should not wrap")
	}
}

func TestScreenToRegionCorners(t *testing.T) {
	cam := ForProjection(720, 360, noisemap.Spherical)

	tests := []struct {
		name   string
		sx, sy float64
		u, v   float64
	}{
		{"centre", 360, 180, 0, 0},
		{"top left", 0, 0, -180, 90},
		{"bottom", 360, 360, 0, -90},
		{"right quarter", 540, 180, 90, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, v := cam.ScreenToRegion(tt.sx, tt.sy)
			if !near(u, tt.u) || !near(v, tt.v) {
				t.Errorf("got (%f, %f), want (%f, %f)", u, v, tt.u, tt.v)
			}
		})
	}
}

func TestScreenToRegionRoundtrip(t *testing.T) {
	cam := ForProjection(800, 600, noisemap.Planar)
	cam.SetZoom(3)
	cam.Pan(50, -20)

	testCases := []struct{ sx, sy float64 }{
		{400, 300}, // center
		{100, 100}, // top-left
		{750, 550}, // near bottom-right
	}

	for _, tc := range testCases {
		u, v := cam.ScreenToRegion(tc.sx, tc.sy)
		sx, sy := cam.RegionToScreen(u, v)
		if math.Abs(sx-tc.sx) > 1e-6 || math.Abs(sy-tc.sy) > 1e-6 {
			t.Errorf("roundtrip failed: (%f,%f) -> (%f,%f) -> (%f,%f)",
				tc.sx, tc.sy, u, v, sx, sy)
		}
	}
}

func TestRegionToScreenWraps(t *testing.T) {
	cam := ForProjection(720, 360, noisemap.Spherical)
	cam.SetZoom(4)
	cam.X = 170

	// -175 is 15 degrees east of 170 across the seam
	sx, _ := cam.RegionToScreen(-175, 0)
	if !near(sx, 480) {
		t.Errorf("expected x=480, got %f", sx)
	}
}

func TestPanWraps(t *testing.T) {
	cam := ForProjection(720, 360, noisemap.Spherical)
	cam.SetZoom(2)

	// Dragging right moves the centre west and across the seam
	cam.Pan(400, 0)
	cam.Pan(400, 0)

	if !near(cam.X, 160) {
		t.Errorf("expected X to wrap to 160, got %f", cam.X)
	}
}

func TestPanClamps(t *testing.T) {
	cam := ForProjection(720, 360, noisemap.Spherical)

	// At zoom 1 the full latitude range is visible, so Y cannot move
	cam.Pan(0, 100)
	if cam.Y != 0 {
		t.Errorf("expected Y pinned at 0, got %f", cam.Y)
	}

	cam.SetZoom(2)
	cam.Pan(0, 1000)
	if !near(cam.Y, 45) {
		t.Errorf("expected Y clamped to 45, got %f", cam.Y)
	}

	planar := ForProjection(400, 400, noisemap.Planar)
	planar.SetZoom(2)
	planar.Pan(-10000, 0)
	if !near(planar.X, 0.5) {
		t.Errorf("expected planar X clamped to 0.5, got %f", planar.X)
	}
}

func TestZoomClamp(t *testing.T) {
	cam := ForProjection(720, 360, noisemap.Cylindrical)

	cam.SetZoom(0.1) // Below min
	if cam.Zoom != MinZoom {
		t.Errorf("expected zoom clamped to %f, got %f", MinZoom, cam.Zoom)
	}

	cam.SetZoom(1000) // Above max
	if cam.Zoom != MaxZoom {
		t.Errorf("expected zoom clamped to %f, got %f", MaxZoom, cam.Zoom)
	}
}

func TestZoomByKeepsCursorFixed(t *testing.T) {
	cam := ForProjection(720, 360, noisemap.Spherical)

	u0, v0 := cam.ScreenToRegion(540, 180)
	cam.ZoomBy(2, 540, 180)
	u1, v1 := cam.ScreenToRegion(540, 180)

	if !near(u0, u1) || !near(v0, v1) {
		t.Errorf("cursor point moved: (%f,%f) -> (%f,%f)", u0, v0, u1, v1)
	}
	if !near(cam.X, 45) {
		t.Errorf("expected centre X 45, got %f", cam.X)
	}
}

func TestVisible(t *testing.T) {
	cam := ForProjection(720, 360, noisemap.Spherical)

	// At zoom 1 the visible area is the whole region
	if got, want := cam.Visible(), noisemap.StandardBounds(noisemap.Spherical); got != want {
		t.Errorf("visible = %+v, want %+v", got, want)
	}

	cam.SetZoom(4)
	cam.Pan(0, -200)
	b := cam.Visible()
	if err := b.Validate(); err != nil {
		t.Fatal(err)
	}
	if !near(b.XMax-b.XMin, 90) || !near(b.YMax-b.YMin, 45) {
		t.Errorf("unexpected extent %+v", b)
	}
	if b.YMin < -90 || b.YMax > 90 {
		t.Errorf("visible latitude out of range: %+v", b)
	}
}

func TestContains(t *testing.T) {
	cam := ForProjection(200, 100, noisemap.Planar)
	if !cam.Contains(0, 0) || !cam.Contains(199, 99) {
		t.Error("corners should be inside")
	}
	if cam.Contains(200, 50) || cam.Contains(-1, 50) {
		t.Error("outside points reported inside")
	}
}

func TestReset(t *testing.T) {
	cam := ForProjection(720, 360, noisemap.Spherical)
	cam.SetZoom(2.5)
	cam.Pan(120, 40)

	cam.Reset()

	if cam.X != 0 || cam.Y != 0 {
		t.Errorf("expected position (0, 0), got (%f, %f)", cam.X, cam.Y)
	}
	if cam.Zoom != 1.0 {
		t.Errorf("expected zoom 1.0, got %f", cam.Zoom)
	}
}
