package physics

import (
	"fmt"
	"math"
	"slices"
	"strings"
)

// Crop identifies a crop with a calibrated yield response.
type Crop int

const (
	Maize Crop = iota
	Cocoa
)

func (c Crop) String() string {
	switch c {
	case Maize:
		return "maize"
	case Cocoa:
		return "cocoa"
	default:
		return fmt.Sprintf("crop(%d)", int(c))
	}
}

// CropParams are the thresholds driving the yield response of one crop.
type CropParams struct {
	CriticalTempC     float64
	HeatLossRate      float64 // yield points lost per degree above critical
	DroughtHeatRate   float64 // loss rate when rainfall is below OptMinRainMM
	MinRainMM         float64
	OptMinRainMM      float64
	OptMaxRainMM      float64
	MaxWaterlogLoss   float64
	ResilienceDeltaC  float64
	DroughtResilience float64 // multiplier on drought penalty for resilient seed
	WaterlogResilient float64 // multiplier on waterlogging penalty for resilient seed
}

var cropTable = map[Crop]CropParams{
	Maize: {
		CriticalTempC:     28,
		HeatLossRate:      2.5,
		DroughtHeatRate:   4.0,
		MinRainMM:         300,
		OptMinRainMM:      500,
		OptMaxRainMM:      900,
		MaxWaterlogLoss:   30,
		ResilienceDeltaC:  3,
		DroughtResilience: 0.7,
		WaterlogResilient: 0.6,
	},
	Cocoa: {
		CriticalTempC:     33,
		HeatLossRate:      2.5,
		DroughtHeatRate:   4.0,
		MinRainMM:         1200,
		OptMinRainMM:      1500,
		OptMaxRainMM:      2500,
		MaxWaterlogLoss:   30,
		ResilienceDeltaC:  3,
		DroughtResilience: 0.7,
		WaterlogResilient: 0.6,
	},
}

// Crops lists the supported crops in code order.
func Crops() []Crop {
	out := make([]Crop, 0, len(cropTable))
	for c := range cropTable {
		out = append(out, c)
	}
	slices.Sort(out)
	return out
}

// Lookup returns the yield parameters for a crop.
func Lookup(c Crop) (CropParams, bool) {
	p, ok := cropTable[c]
	return p, ok
}

// ParseCrop resolves a crop name, case-insensitively. "corn" is accepted for maize.
func ParseCrop(name string) (Crop, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "maize", "corn":
		return Maize, nil
	case "cocoa", "cacao":
		return Cocoa, nil
	}
	return 0, fmt.Errorf("%w: unknown crop %q", ErrInvalidPhysicalInput, name)
}

// CropYieldPct returns the expected yield as a percentage of potential.
func CropYieldPct(temperatureC, rainfallMM float64, resilientSeed bool, crop Crop) (float64, error) {
	p, ok := cropTable[crop]
	if !ok {
		return 0, fmt.Errorf("%w: unknown crop %s", ErrInvalidPhysicalInput, crop)
	}
	if err := temperatureBand.check(temperatureC); err != nil {
		return 0, err
	}
	if err := rainfallBand.check(rainfallMM); err != nil {
		return 0, err
	}

	yield := 100.0

	critical := p.CriticalTempC
	if resilientSeed {
		critical += p.ResilienceDeltaC
	}
	if temperatureC > critical {
		rate := p.HeatLossRate
		if rainfallMM < p.OptMinRainMM {
			rate = p.DroughtHeatRate
		}
		yield -= (temperatureC - critical) * rate
	}

	switch {
	case rainfallMM < p.MinRainMM:
		// Severe drought scales the remaining yield rather than subtracting.
		factor := rainfallMM / p.MinRainMM * 0.5
		if resilientSeed {
			factor = math.Min(factor*1.3, p.DroughtResilience)
		}
		yield *= factor
	case rainfallMM < p.OptMinRainMM:
		factor := 0.5 + 0.5*(rainfallMM-p.MinRainMM)/(p.OptMinRainMM-p.MinRainMM)
		penalty := yield * (1 - factor)
		if resilientSeed {
			penalty *= p.DroughtResilience
		}
		yield -= penalty
	case rainfallMM > p.OptMaxRainMM:
		loss := math.Min((rainfallMM-p.OptMaxRainMM)/1000*20, p.MaxWaterlogLoss)
		if resilientSeed {
			loss *= p.WaterlogResilient
		}
		yield -= loss
	}

	return clamp(yield, 0, 100), nil
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
