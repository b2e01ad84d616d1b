// Package noise provides the deterministic lattice noise primitives that the
// module graph is built on: gradient and value noise over integer lattices,
// coherent (interpolated) versions of both, and the interpolation kernels.
//
// Every function here is a pure function of its arguments. Nothing depends on
// process-seeded random state, so outputs are stable across runs.
package noise

import "math"

// Hash constants. These are odd and mutually prime so that neighbouring
// lattice points and seeds decorrelate.
const (
	xNoiseGen     = 1619
	yNoiseGen     = 31337
	zNoiseGen     = 6971
	seedNoiseGen  = 1013
	shiftNoiseGen = 8
)

// OctavesMaximum is the largest octave count a fractal generator accepts.
const OctavesMaximum = 30

// Sqrt3 is used to normalize Voronoi distances.
const Sqrt3 = 1.7320508075688772935

// int32Range bounds the coordinate domain fed to the lattice hashes.
const int32Range = 1073741824.0

// gradientScale stretches dot products of unit gradients into roughly [-1,1].
const gradientScale = 2.12

// gradients holds 256 unit vectors spread evenly over the sphere (Fibonacci
// lattice). The table is derived from constants only.
var gradients = buildGradients()

func buildGradients() [256][3]float64 {
	var g [256][3]float64
	golden := math.Pi * (3 - math.Sqrt(5))
	for i := range g {
		y := 1 - 2*(float64(i)+0.5)/256
		r := math.Sqrt(1 - y*y)
		// Scramble the azimuth order so adjacent indices point far apart.
		k := float64((i * 167) & 255)
		phi := k * golden
		g[i] = [3]float64{r * math.Cos(phi), y, r * math.Sin(phi)}
	}
	return g
}

// MakeInt32Range folds a coordinate into (-2^30, 2^30) so that later integer
// conversion neither overflows nor loses the fractional part of huge values.
func MakeInt32Range(n float64) float64 {
	if n >= int32Range {
		return 2*math.Mod(n, int32Range) - int32Range
	}
	if n <= -int32Range {
		return 2*math.Mod(n, int32Range) + int32Range
	}
	return n
}

// latticeHash mixes integer coordinates and a seed with wrapping 32-bit math.
func latticeHash(ix, iy, iz, seed int32) uint32 {
	return uint32(xNoiseGen*ix + yNoiseGen*iy + zNoiseGen*iz + seedNoiseGen*seed)
}

// GradientNoise3D returns the contribution of the gradient at lattice point
// (ix,iy,iz) to the point (fx,fy,fz). The point must lie within one unit of
// the lattice point on each axis; the result is then in [-1,1].
func GradientNoise3D(fx, fy, fz float64, ix, iy, iz, seed int32) float64 {
	h := latticeHash(ix, iy, iz, seed)
	h ^= h >> shiftNoiseGen
	g := &gradients[h&0xff]

	xvp := fx - float64(ix)
	yvp := fy - float64(iy)
	zvp := fz - float64(iz)
	return (g[0]*xvp + g[1]*yvp + g[2]*zvp) * gradientScale
}

// GradientCoherentNoise3D interpolates the eight surrounding lattice gradients
// at (x,y,z). Integer coordinates always yield 0.
func GradientCoherentNoise3D(x, y, z float64, seed int32, q Quality) float64 {
	x0, y0, z0 := lattice(x), lattice(y), lattice(z)
	x1, y1, z1 := x0+1, y0+1, z0+1

	xs := q.smooth(x - float64(x0))
	ys := q.smooth(y - float64(y0))
	zs := q.smooth(z - float64(z0))

	n0 := GradientNoise3D(x, y, z, x0, y0, z0, seed)
	n1 := GradientNoise3D(x, y, z, x1, y0, z0, seed)
	ix0 := InterpolateLinear(n0, n1, xs)
	n0 = GradientNoise3D(x, y, z, x0, y1, z0, seed)
	n1 = GradientNoise3D(x, y, z, x1, y1, z0, seed)
	ix1 := InterpolateLinear(n0, n1, xs)
	iy0 := InterpolateLinear(ix0, ix1, ys)

	n0 = GradientNoise3D(x, y, z, x0, y0, z1, seed)
	n1 = GradientNoise3D(x, y, z, x1, y0, z1, seed)
	ix0 = InterpolateLinear(n0, n1, xs)
	n0 = GradientNoise3D(x, y, z, x0, y1, z1, seed)
	n1 = GradientNoise3D(x, y, z, x1, y1, z1, seed)
	ix1 = InterpolateLinear(n0, n1, xs)
	iy1 := InterpolateLinear(ix0, ix1, ys)

	return InterpolateLinear(iy0, iy1, zs)
}

// ValueNoise3DInt returns a pseudo-random integer in [0, 2^31) for a lattice point.
func ValueNoise3DInt(ix, iy, iz, seed int32) int32 {
	n := int32(latticeHash(ix, iy, iz, seed) & 0x7fffffff)
	n = (n >> 13) ^ n
	return (n*(n*n*60493+19990303) + 1376312589) & 0x7fffffff
}

// ValueNoise3D returns a pseudo-random value in [-1,1] for a lattice point.
func ValueNoise3D(ix, iy, iz, seed int32) float64 {
	return 1 - float64(ValueNoise3DInt(ix, iy, iz, seed))/int32Range
}

// ValueCoherentNoise3D interpolates the eight surrounding lattice values at (x,y,z).
func ValueCoherentNoise3D(x, y, z float64, seed int32, q Quality) float64 {
	x0, y0, z0 := lattice(x), lattice(y), lattice(z)
	x1, y1, z1 := x0+1, y0+1, z0+1

	xs := q.smooth(x - float64(x0))
	ys := q.smooth(y - float64(y0))
	zs := q.smooth(z - float64(z0))

	ix0 := InterpolateLinear(ValueNoise3D(x0, y0, z0, seed), ValueNoise3D(x1, y0, z0, seed), xs)
	ix1 := InterpolateLinear(ValueNoise3D(x0, y1, z0, seed), ValueNoise3D(x1, y1, z0, seed), xs)
	iy0 := InterpolateLinear(ix0, ix1, ys)
	ix0 = InterpolateLinear(ValueNoise3D(x0, y0, z1, seed), ValueNoise3D(x1, y0, z1, seed), xs)
	ix1 = InterpolateLinear(ValueNoise3D(x0, y1, z1, seed), ValueNoise3D(x1, y1, z1, seed), xs)
	iy1 := InterpolateLinear(ix0, ix1, ys)
	return InterpolateLinear(iy0, iy1, zs)
}

// lattice returns the lattice cell at or below v. Callers fold v with
// MakeInt32Range first so the conversion cannot overflow.
func lattice(v float64) int32 {
	return int32(math.Floor(v))
}

// OctaveSeed derives the seed of octave i from a base seed. Wrapping 32-bit
// addition keeps the sequence reproducible for every base seed.
func OctaveSeed(seed int32, i int) int32 {
	return int32(uint32(seed) + uint32(i))
}
