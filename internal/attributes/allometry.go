package attributes

import "strings"

// Region keys the allometric height to DBH relationship. The set is closed:
// unknown strings resolve to RegionGeneric and the substitution is surfaced
// on the tree record rather than silently applied.
type Region string

const (
	RegionBoreal   Region = "BOREAL"
	RegionCoastal  Region = "COASTAL"
	RegionInterior Region = "INTERIOR"
	RegionGeneric  Region = "GENERIC"
)

// AllometricCoefficients parameterize DBH_cm = A * height_m ^ B.
type AllometricCoefficients struct {
	A float64
	B float64
}

// Height to DBH coefficient pairs per ecological region, from regional
// allometric literature. The generic pair is the documented fallback.
var regionCoefficients = map[Region]AllometricCoefficients{
	RegionBoreal:   {A: 0.91, B: 1.13},
	RegionCoastal:  {A: 1.22, B: 1.15},
	RegionInterior: {A: 1.04, B: 1.10},
	RegionGeneric:  {A: 1.06, B: 1.08},
}

// ParseRegion normalizes a region flag value. The boolean reports whether
// the input named a known region; false means the generic fallback applies.
func ParseRegion(value string) (Region, bool) {
	switch Region(strings.Trim(strings.ToUpper(value), " ")) {
	case RegionBoreal:
		return RegionBoreal, true
	case RegionCoastal:
		return RegionCoastal, true
	case RegionInterior:
		return RegionInterior, true
	case RegionGeneric:
		return RegionGeneric, true
	}
	return RegionGeneric, false
}

// CoefficientsFor returns the coefficient pair for the region and whether
// the generic fallback was substituted.
func CoefficientsFor(region Region) (AllometricCoefficients, bool) {
	if c, ok := regionCoefficients[region]; ok {
		return c, region == RegionGeneric
	}
	return regionCoefficients[RegionGeneric], true
}
