package noise

// InterpolateLinear blends a and b by t, returning a at t=0 and b at t=1.
func InterpolateLinear(a, b, t float64) float64 {
	return (1-t)*a + t*b
}

// InterpolateCubic performs cubic interpolation between b and c, using a and d
// as the outer control values. t=0 yields b and t=1 yields c.
func InterpolateCubic(a, b, c, d, t float64) float64 {
	p := (d - c) - (a - b)
	q := (a - b) - p
	r := c - a
	s := b
	return p*t*t*t + q*t*t + r*t + s
}

// SCurve3 maps t through 3t²-2t³. First derivative is zero at 0 and 1.
func SCurve3(t float64) float64 {
	return t * t * (3 - 2*t)
}

// SCurve5 maps t through 6t⁵-15t⁴+10t³. First and second derivatives are zero at 0 and 1.
func SCurve5(t float64) float64 {
	t3 := t * t * t
	return t3 * (t*(t*6-15) + 10)
}

// Clamp01 limits v to [0,1].
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
