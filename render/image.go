package render

import (
	"image"
	"image/color"
	"math"

	"github.com/pthm-cable/xnoise/noisemap"
)

// grid is a row-major copy of a map's samples.
type grid struct {
	data []float32
	w, h int
}

func (g grid) at(x, y int) float32 { return g.data[y*g.w+x] }

func cropped(m *noisemap.Map) (grid, error) {
	data, w, h, err := m.Data(true, 0, 0)
	return grid{data: data, w: w, h: h}, err
}

// ColorImage colours every sample of m through grad. When m.Border is not
// NaN, the outermost pixels use it instead of the sample.
func ColorImage(m *noisemap.Map, grad *Gradient) (*image.NRGBA, error) {
	g, err := cropped(m)
	if err != nil {
		return nil, err
	}
	useBorder := !math.IsNaN(float64(m.Border))
	img := image.NewNRGBA(image.Rect(0, 0, g.w, g.h))
	for y := 0; y < g.h; y++ {
		for x := 0; x < g.w; x++ {
			v := g.at(x, y)
			if useBorder && (x == 0 || y == 0 || x == g.w-1 || y == g.h-1) {
				v = m.Border
			}
			img.SetNRGBA(x, g.h-1-y, grad.Color(float64(v)))
		}
	}
	return img, nil
}

// GrayImage maps samples from [-1,1] to 16-bit gray, clamping outside values.
func GrayImage(m *noisemap.Map) (*image.Gray16, error) {
	g, err := cropped(m)
	if err != nil {
		return nil, err
	}
	img := image.NewGray16(image.Rect(0, 0, g.w, g.h))
	for y := 0; y < g.h; y++ {
		for x := 0; x < g.w; x++ {
			n := (float64(g.at(x, y)) + 1) / 2
			n = math.Max(0, math.Min(1, n))
			img.SetGray16(x, g.h-1-y, color.Gray16{Y: uint16(math.Round(n * 0xffff))})
		}
	}
	return img, nil
}

// Normal returns the unit surface normal at cropped pixel (x,y), computed
// from central differences over the uncropped buffer and scaled by
// intensity before normalising.
func Normal(m *noisemap.Map, x, y int, intensity float64) (nx, ny, nz float64, err error) {
	l, err := m.HaloAt(x-1, y)
	if err != nil {
		return 0, 0, 0, err
	}
	r, err := m.HaloAt(x+1, y)
	if err != nil {
		return 0, 0, 0, err
	}
	b, err := m.HaloAt(x, y-1)
	if err != nil {
		return 0, 0, 0, err
	}
	t, err := m.HaloAt(x, y+1)
	if err != nil {
		return 0, 0, 0, err
	}
	nx, ny, nz = normal(l, r, b, t, intensity)
	return nx, ny, nz, nil
}

// normal sums the tangent-derived vectors (dx*i, 0, 1) and (0, dy*i, 1).
func normal(l, r, b, t float32, intensity float64) (float64, float64, float64) {
	dx := float64(l-r) / 2 * intensity
	dy := float64(b-t) / 2 * intensity
	length := math.Sqrt(dx*dx + dy*dy + 4)
	return dx / length, dy / length, 2 / length
}

// NormalMap encodes the normal of every cropped pixel as a colour, each
// component mapped from [-1,1] to [0,255].
func NormalMap(m *noisemap.Map, intensity float64) (*image.NRGBA, error) {
	data, hw, _, err := m.Data(false, 0, 0)
	if err != nil {
		return nil, err
	}
	w, h := m.Width(), m.Height()
	halo := grid{data: data, w: hw}
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			// Halo coordinates are shifted by one.
			nx, ny, nz := normal(
				halo.at(x, y+1), halo.at(x+2, y+1),
				halo.at(x+1, y), halo.at(x+1, y+2),
				intensity,
			)
			img.SetNRGBA(x, h-1-y, color.NRGBA{
				R: unit(nx),
				G: unit(ny),
				B: unit(nz),
				A: 255,
			})
		}
	}
	return img, nil
}

func unit(v float64) uint8 {
	return uint8(math.Round((v + 1) / 2 * 255))
}
