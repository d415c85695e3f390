package physics

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidPhysicalInput is matched by every input validation failure.
var ErrInvalidPhysicalInput = errors.New("invalid physical input")

// InputError describes which input was rejected and the band it had to fall in.
type InputError struct {
	Field string
	Value float64
	Min   float64
	Max   float64
	// MinExclusive marks bands whose lower bound is not itself valid.
	MinExclusive bool
}

func (e *InputError) Error() string {
	lo := "["
	if e.MinExclusive {
		lo = "("
	}
	return fmt.Sprintf("invalid physical input: %s=%g outside %s%g, %g]", e.Field, e.Value, lo, e.Min, e.Max)
}

// Is lets errors.Is(err, ErrInvalidPhysicalInput) succeed for any InputError.
func (e *InputError) Is(target error) bool {
	return target == ErrInvalidPhysicalInput
}

type band struct {
	field        string
	min, max     float64
	minExclusive bool
}

var (
	temperatureBand   = band{field: "temperature_c", min: -20, max: 60}
	rainfallBand      = band{field: "rainfall_mm", min: 0, max: 10000}
	waveHeightBand    = band{field: "wave_height_m", min: 0, max: 30}
	slopeBand         = band{field: "slope_pct", min: 0, max: 100, minExclusive: true}
	mangroveWidthBand = band{field: "mangrove_width_m", min: 0, max: 10000}
	rainIntensityBand = band{field: "rain_intensity_mm_hr", min: 0, max: 500, minExclusive: true}
	imperviousBand    = band{field: "imperviousness", min: 0, max: 1}
)

func (b band) check(v float64) error {
	ok := !math.IsNaN(v) && v <= b.max
	if b.minExclusive {
		ok = ok && v > b.min
	} else {
		ok = ok && v >= b.min
	}
	if ok {
		return nil
	}
	return &InputError{Field: b.field, Value: v, Min: b.min, Max: b.max, MinExclusive: b.minExclusive}
}
