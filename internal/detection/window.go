package detection

import (
	"fmt"
	"strconv"
	"strings"
)

// WindowFunc maps a candidate height to the local maxima search radius in
// meters. Radius growing with height keeps tall broad crowns from splitting
// into several detections.
type WindowFunc func(height float64) float64

// FixedWindow returns a constant radius window.
func FixedWindow(radius float64) WindowFunc {
	return func(float64) float64 { return radius }
}

// LinearWindow returns radius = intercept + slope*height, never below min.
func LinearWindow(intercept, slope, min float64) WindowFunc {
	return func(height float64) float64 {
		r := intercept + slope*height
		if r < min {
			r = min
		}
		return r
	}
}

// ParseWindowSpec parses the command line window specification.
// Accepted forms: a bare number or "const:R" for a fixed radius,
// "linear:a,b" for radius = a + b*height.
func ParseWindowSpec(spec string) (WindowFunc, error) {
	spec = strings.TrimSpace(strings.ToLower(spec))
	if r, err := strconv.ParseFloat(spec, 64); err == nil {
		if r <= 0 {
			return nil, fmt.Errorf("detection: window radius must be positive, got %f", r)
		}
		return FixedWindow(r), nil
	}
	name, arg, found := strings.Cut(spec, ":")
	if !found {
		return nil, fmt.Errorf("detection: cannot parse window spec %q", spec)
	}
	switch name {
	case "const":
		r, err := strconv.ParseFloat(arg, 64)
		if err != nil || r <= 0 {
			return nil, fmt.Errorf("detection: bad fixed window %q", spec)
		}
		return FixedWindow(r), nil
	case "linear":
		parts := strings.Split(arg, ",")
		if len(parts) != 2 {
			return nil, fmt.Errorf("detection: linear window needs two coefficients, got %q", spec)
		}
		a, errA := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
		b, errB := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if errA != nil || errB != nil {
			return nil, fmt.Errorf("detection: bad linear window %q", spec)
		}
		return LinearWindow(a, b, 0.5), nil
	}
	return nil, fmt.Errorf("detection: unknown window function %q", name)
}
