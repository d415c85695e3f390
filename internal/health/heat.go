// Package health converts heat and malaria exposure into worker productivity
// loss and population disease burden (DALYs).
package health

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalidInput is returned for out-of-range or non-finite inputs.
	ErrInvalidInput = errors.New("invalid health input")

	// ErrUnsupportedIntervention is returned by the workplace calculator for
	// intervention types it does not model.
	ErrUnsupportedIntervention = errors.New("unsupported intervention")
)

const (
	// Productivity is unaffected below safeWBGT and loss saturates at maxLossWBGT.
	safeWBGT    = 26.0
	maxLossWBGT = 32.0
	maxLossPct  = 50.0
)

// WBGT approximates wet bulb globe temperature as 0.7*T + RH/10. It is a
// screening proxy, not a substitute for measured WBGT.
func WBGT(tempC, humidityPct float64) (float64, error) {
	if !finite(tempC) || tempC < -50 || tempC > 60 {
		return 0, fmt.Errorf("%w: temperature %g C", ErrInvalidInput, tempC)
	}
	if !finite(humidityPct) || humidityPct < 0 || humidityPct > 100 {
		return 0, fmt.Errorf("%w: relative humidity %g%%", ErrInvalidInput, humidityPct)
	}
	return 0.7*tempC + humidityPct/10, nil
}

// ProductivityLossPct is zero below 26 C WBGT, rises linearly to 50% at
// 32 C and stays there. Non-finite WBGT is rejected.
func ProductivityLossPct(wbgt float64) (float64, error) {
	if !finite(wbgt) {
		return 0, fmt.Errorf("%w: WBGT %g", ErrInvalidInput, wbgt)
	}
	switch {
	case wbgt < safeWBGT:
		return 0, nil
	case wbgt > maxLossWBGT:
		return maxLossPct, nil
	default:
		return (wbgt - safeWBGT) / (maxLossWBGT - safeWBGT) * maxLossPct, nil
	}
}

// HeatCategory grades heat stress for outdoor and industrial work.
type HeatCategory string

const (
	HeatLow      HeatCategory = "Low"
	HeatModerate HeatCategory = "Moderate"
	HeatHigh     HeatCategory = "High"
	HeatVeryHigh HeatCategory = "Very High"
	HeatExtreme  HeatCategory = "Extreme"
)

// HeatStressCategory classifies a WBGT value.
func HeatStressCategory(wbgt float64) HeatCategory {
	switch {
	case wbgt < 26:
		return HeatLow
	case wbgt < 28:
		return HeatModerate
	case wbgt < 30:
		return HeatHigh
	case wbgt < 32:
		return HeatVeryHigh
	default:
		return HeatExtreme
	}
}

// Recommendation is the work-practice guidance for the category.
func (c HeatCategory) Recommendation() string {
	switch c {
	case HeatLow:
		return "Normal work possible"
	case HeatModerate:
		return "Light work affected, breaks recommended"
	case HeatHigh:
		return "Heavy work significantly affected"
	case HeatVeryHigh:
		return "All work affected, frequent breaks required"
	default:
		return "Work should be limited or stopped"
	}
}

// HeatAssessment is the productivity view of one weather reading.
type HeatAssessment struct {
	WBGT                float64      `json:"wbgt"`
	ProductivityLossPct float64      `json:"productivity_loss_pct"`
	Category            HeatCategory `json:"heat_stress_category"`
	Recommendation      string       `json:"recommendation"`
}

// AssessHeat derives WBGT, productivity loss and category from weather.
func AssessHeat(tempC, humidityPct float64) (HeatAssessment, error) {
	wbgt, err := WBGT(tempC, humidityPct)
	if err != nil {
		return HeatAssessment{}, err
	}
	loss, err := ProductivityLossPct(wbgt)
	if err != nil {
		return HeatAssessment{}, err
	}
	cat := HeatStressCategory(wbgt)
	return HeatAssessment{
		WBGT:                wbgt,
		ProductivityLossPct: loss,
		Category:            cat,
		Recommendation:      cat.Recommendation(),
	}, nil
}

const (
	malariaMinTempC     = 16.0
	malariaMaxTempC     = 34.0
	malariaMinPrecipMM  = 80.0
	malariaBothSuitable = 100
	malariaOneSuitable  = 50
)

// MalariaRiskScore scores climate suitability for transmission: 100 when
// temperature is within 16-34 C and precipitation exceeds 80 mm, 50 when
// only one holds, otherwise 0.
func MalariaRiskScore(tempC, precipMM float64) int {
	tempOK := tempC >= malariaMinTempC && tempC <= malariaMaxTempC
	rainOK := precipMM > malariaMinPrecipMM
	switch {
	case tempOK && rainOK:
		return malariaBothSuitable
	case tempOK || rainOK:
		return malariaOneSuitable
	default:
		return 0
	}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
