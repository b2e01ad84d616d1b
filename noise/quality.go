package noise

import "fmt"

// Quality selects the smoothing curve applied to lattice offsets inside
// coherent noise. It changes output values, so it is part of a generator's
// identity and is serialized with it.
type Quality uint8

const (
	QualityFast     Quality = iota // linear weights
	QualityStandard                // cubic S-curve
	QualityBest                    // quintic S-curve
)

var qualityNames = [...]string{"fast", "standard", "best"}

func (q Quality) String() string {
	if int(q) < len(qualityNames) {
		return qualityNames[q]
	}
	return fmt.Sprintf("quality(%d)", q)
}

// MarshalText implements encoding.TextMarshaler.
func (q Quality) MarshalText() ([]byte, error) {
	if int(q) >= len(qualityNames) {
		return nil, fmt.Errorf("invalid quality %d", q)
	}
	return []byte(qualityNames[q]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (q *Quality) UnmarshalText(b []byte) error {
	parsed, err := ParseQuality(string(b))
	if err != nil {
		return err
	}
	*q = parsed
	return nil
}

// ParseQuality converts a quality name ("fast", "standard", "best") to a Quality.
// The libnoise names "low", "medium" and "high" are accepted as aliases.
func ParseQuality(s string) (Quality, error) {
	switch s {
	case "fast", "low":
		return QualityFast, nil
	case "standard", "medium", "":
		return QualityStandard, nil
	case "best", "high":
		return QualityBest, nil
	}
	return QualityStandard, fmt.Errorf("unknown quality %q", s)
}

// smooth warps a lattice offset in [0,1] according to the quality level.
func (q Quality) smooth(t float64) float64 {
	switch q {
	case QualityFast:
		return t
	case QualityBest:
		return SCurve5(t)
	default:
		return SCurve3(t)
	}
}
