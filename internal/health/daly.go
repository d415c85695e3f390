package health

import (
	"fmt"
	"math"
	"strings"
)

// Burden rates per 1000 people. Heat burden grows linearly from zero at
// 26 C WBGT and reaches heatDALYsPer1000At32 at 32 C; it keeps the same
// slope above that. Malaria burden is proportional to the risk score and
// reaches malariaDALYsPer1000AtMax at a score of 100.
const (
	heatDALYsPer1000At32      = 1.82
	heatDALYsPer1000PerDegree = heatDALYsPer1000At32 / (maxLossWBGT - safeWBGT)
	malariaDALYsPer1000AtMax  = 105.0

	// WHO-CHOICE: one DALY is valued at twice GDP per capita.
	valuePerDALYGDPMultiple = 2.0
)

// PopulationIntervention is a public-health measure applied to a population.
type PopulationIntervention string

const (
	NoIntervention      PopulationIntervention = "none"
	UrbanCoolingCenter  PopulationIntervention = "urban_cooling_center"
	MosquitoEradication PopulationIntervention = "mosquito_eradication"
)

type efficacy struct {
	heatReductionPct    float64
	malariaReductionPct float64
	description         string
}

var populationEfficacy = map[PopulationIntervention]efficacy{
	NoIntervention:      {description: "No intervention (baseline scenario)"},
	UrbanCoolingCenter:  {heatReductionPct: 40, description: "Urban cooling centers reduce heat-related illness by 40%"},
	MosquitoEradication: {malariaReductionPct: 70, description: "Vector control reduces malaria transmission by 70%"},
}

// ResolvePopulationIntervention maps a requested type onto the closed set.
// Anything unrecognized, including workplace interventions such as
// hvac_retrofit, resolves to NoIntervention with ok == false.
func ResolvePopulationIntervention(requested string) (PopulationIntervention, bool) {
	p := PopulationIntervention(strings.ToLower(strings.TrimSpace(requested)))
	if _, ok := populationEfficacy[p]; ok {
		return p, true
	}
	return NoIntervention, false
}

// DALYInput describes a population exposure.
type DALYInput struct {
	Population       int
	GDPPerCapitaUSD  float64
	WBGT             float64
	MalariaRiskScore float64 // 0-100
	Intervention     string
}

// DALYBreakdown shows the per-1000 rates behind the totals.
type DALYBreakdown struct {
	HeatPer1000Baseline    float64 `json:"heat_dalys_per_1000_baseline"`
	MalariaPer1000Baseline float64 `json:"malaria_dalys_per_1000_baseline"`
	TotalPer1000Baseline   float64 `json:"total_dalys_per_1000_baseline"`
	HeatPer1000After       float64 `json:"heat_dalys_per_1000_post"`
	MalariaPer1000After    float64 `json:"malaria_dalys_per_1000_post"`
	HeatReductionPct       float64 `json:"heat_reduction_pct"`
	MalariaReductionPct    float64 `json:"malaria_reduction_pct"`
}

// DALYResult is the burden before and after the resolved intervention.
type DALYResult struct {
	BaselineDALYs          float64                `json:"baseline_dalys_lost"`
	PostInterventionDALYs  float64                `json:"post_intervention_dalys_lost"`
	DALYsAverted           float64                `json:"dalys_averted"`
	EconomicValueUSD       float64                `json:"economic_value_preserved_usd"`
	ValuePerDALYUSD        float64                `json:"value_per_daly_usd"`
	Intervention           PopulationIntervention `json:"intervention_type"`
	InterventionRecognized bool                   `json:"intervention_recognized"`
	Description            string                 `json:"intervention_description"`
	Breakdown              DALYBreakdown          `json:"breakdown"`
}

// DALYImpact estimates disability-adjusted life years lost to heat and
// malaria and the share averted by a population intervention. Unrecognized
// intervention types are treated as no intervention, never as an error.
func DALYImpact(in DALYInput) (DALYResult, error) {
	if in.Population < 0 {
		return DALYResult{}, fmt.Errorf("%w: population %d", ErrInvalidInput, in.Population)
	}
	if !finite(in.GDPPerCapitaUSD) || in.GDPPerCapitaUSD < 0 {
		return DALYResult{}, fmt.Errorf("%w: GDP per capita %g", ErrInvalidInput, in.GDPPerCapitaUSD)
	}
	if !finite(in.WBGT) {
		return DALYResult{}, fmt.Errorf("%w: WBGT %g", ErrInvalidInput, in.WBGT)
	}
	if !finite(in.MalariaRiskScore) || in.MalariaRiskScore < 0 || in.MalariaRiskScore > 100 {
		return DALYResult{}, fmt.Errorf("%w: malaria risk score %g outside [0, 100]", ErrInvalidInput, in.MalariaRiskScore)
	}

	intervention, recognized := ResolvePopulationIntervention(in.Intervention)
	eff := populationEfficacy[intervention]

	heat := heatDALYsPer1000PerDegree * math.Max(0, in.WBGT-safeWBGT)
	malaria := malariaDALYsPer1000AtMax * in.MalariaRiskScore / 100

	heatAfter := heat * (1 - eff.heatReductionPct/100)
	malariaAfter := malaria * (1 - eff.malariaReductionPct/100)

	thousands := float64(in.Population) / 1000
	baseline := (heat + malaria) * thousands
	after := (heatAfter + malariaAfter) * thousands
	averted := baseline - after
	valuePerDALY := valuePerDALYGDPMultiple * in.GDPPerCapitaUSD

	return DALYResult{
		BaselineDALYs:          baseline,
		PostInterventionDALYs:  after,
		DALYsAverted:           averted,
		EconomicValueUSD:       averted * valuePerDALY,
		ValuePerDALYUSD:        valuePerDALY,
		Intervention:           intervention,
		InterventionRecognized: recognized,
		Description:            eff.description,
		Breakdown: DALYBreakdown{
			HeatPer1000Baseline:    heat,
			MalariaPer1000Baseline: malaria,
			TotalPer1000Baseline:   heat + malaria,
			HeatPer1000After:       heatAfter,
			MalariaPer1000After:    malariaAfter,
			HeatReductionPct:       eff.heatReductionPct,
			MalariaReductionPct:    eff.malariaReductionPct,
		},
	}, nil
}
