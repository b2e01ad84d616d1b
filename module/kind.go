package module

import "fmt"

// Kind identifies a module variant.
type Kind uint8

const (
	KindInvalid Kind = iota

	// Generators
	KindConst
	KindChecker
	KindCylinders
	KindPerlin
	KindBillow
	KindRidgedMultifractal
	KindVoronoi
	KindSimplex
	KindClassicPerlin
	KindImage

	// Operators
	KindAbs
	KindInvert
	KindMin
	KindMax
	KindAdd
	KindMultiply
	KindPower
	KindExponent
	KindScaleBias
	KindClamp
	KindBlend
	KindSelect
	KindCurve
	KindTerrace
	KindDisplace
	KindTurbulence
	KindTranslate
	KindScale
)

var kindNames = map[Kind]string{
	KindConst:              "const",
	KindChecker:            "checker",
	KindCylinders:          "cylinders",
	KindPerlin:             "perlin",
	KindBillow:             "billow",
	KindRidgedMultifractal: "ridged_multifractal",
	KindVoronoi:            "voronoi",
	KindSimplex:            "simplex",
	KindClassicPerlin:      "classic_perlin",
	KindImage:              "image",
	KindAbs:                "abs",
	KindInvert:             "invert",
	KindMin:                "min",
	KindMax:                "max",
	KindAdd:                "add",
	KindMultiply:           "multiply",
	KindPower:              "power",
	KindExponent:           "exponent",
	KindScaleBias:          "scale_bias",
	KindClamp:              "clamp",
	KindBlend:              "blend",
	KindSelect:             "select",
	KindCurve:              "curve",
	KindTerrace:            "terrace",
	KindDisplace:           "displace",
	KindTurbulence:         "turbulence",
	KindTranslate:          "translate",
	KindScale:              "scale",
}

var kindByName = func() map[string]Kind {
	m := make(map[string]Kind, len(kindNames))
	for k, name := range kindNames {
		m[name] = k
	}
	return m
}()

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", k)
}

// ParseKind looks up a kind by its snake_case name.
func ParseKind(name string) (Kind, error) {
	if k, ok := kindByName[name]; ok {
		return k, nil
	}
	return KindInvalid, fmt.Errorf("unknown module type %q", name)
}

// IsGenerator reports whether modules of this kind have no sources.
func (k Kind) IsGenerator() bool {
	return k >= KindConst && k <= KindImage
}
