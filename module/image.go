package module

import (
	"image"
	"math"
)

// Sampler is an external 2D data source addressed by u,v in [0,1].
type Sampler interface {
	Sample(u, v float64) float64
}

// Image projects the input direction onto a longitude/latitude texture.
// The coordinate is treated as a direction from the origin; its length does
// not matter.
type Image struct {
	Sampler Sampler
}

func (*Image) Kind() Kind { return KindImage }
func (*Image) Sources() int { return 0 }

// Value samples the texture at the direction of (x,y,z). The origin maps to the texture centre.
func (m *Image) Value(x, y, z float64) float64 {
	u, v := DirectionUV(x, y, z)
	return m.Sampler.Sample(u, v)
}

// DirectionUV converts a direction into equirectangular texture coordinates:
// u=(lon+180)/360 and v=(lat+90)/180, with latitude measured from the xz plane
// and longitude from +x towards +z.
func DirectionUV(x, y, z float64) (u, v float64) {
	r := math.Sqrt(x*x + y*y + z*z)
	if r == 0 {
		return 0.5, 0.5
	}
	lat := math.Asin(y/r) * 180 / math.Pi
	lon := math.Atan2(z, x) * 180 / math.Pi
	return (lon + 180) / 360, (lat + 90) / 180
}

// ImageSampler reads the red channel of an image, shifted to [-0.5,0.5].
// Sampling uses nearest-neighbour lookup with edge clamping.
type ImageSampler struct {
	Img image.Image
}

// Sample implements Sampler.
func (s ImageSampler) Sample(u, v float64) float64 {
	b := s.Img.Bounds()
	px := b.Min.X + clampIndex(int(float64(b.Dx())*u), b.Dx())
	py := b.Min.Y + clampIndex(int(float64(b.Dy())*v), b.Dy())
	r, _, _, _ := s.Img.At(px, py).RGBA()
	return float64(r)/0xffff - 0.5
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
