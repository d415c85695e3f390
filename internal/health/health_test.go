package health

import (
	"math"
	"testing"

	"github.com/couchcryptid/climate-surrogate/internal/finance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWBGT(t *testing.T) {
	w, err := WBGT(30, 70)
	require.NoError(t, err)
	assert.InDelta(t, 28.0, w, 1e-9)

	_, err = WBGT(math.NaN(), 50)
	require.ErrorIs(t, err, ErrInvalidInput)
	_, err = WBGT(30, 120)
	require.ErrorIs(t, err, ErrInvalidInput)
	_, err = WBGT(30, -1)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestProductivityLossPct(t *testing.T) {
	tests := []struct {
		wbgt float64
		want float64
	}{
		{wbgt: 20, want: 0},
		{wbgt: 26, want: 0},
		{wbgt: 29, want: 25},
		{wbgt: 32, want: 50},
		{wbgt: 40, want: 50},
	}
	for _, tt := range tests {
		got, err := ProductivityLossPct(tt.wbgt)
		require.NoError(t, err)
		assert.InDelta(t, tt.want, got, 1e-9, "wbgt=%g", tt.wbgt)
	}
}

func TestProductivityLossPct_RejectsNonFinite(t *testing.T) {
	for _, wbgt := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := ProductivityLossPct(wbgt)
		assert.ErrorIs(t, err, ErrInvalidInput, "wbgt=%g", wbgt)
	}
}

func TestHeatStressCategory(t *testing.T) {
	assert.Equal(t, HeatLow, HeatStressCategory(25.9))
	assert.Equal(t, HeatModerate, HeatStressCategory(26))
	assert.Equal(t, HeatHigh, HeatStressCategory(28))
	assert.Equal(t, HeatVeryHigh, HeatStressCategory(31.99))
	assert.Equal(t, HeatExtreme, HeatStressCategory(32))
	assert.Equal(t, "Work should be limited or stopped", HeatExtreme.Recommendation())
}

func TestAssessHeat(t *testing.T) {
	a, err := AssessHeat(35, 80)
	require.NoError(t, err)
	assert.InDelta(t, 32.5, a.WBGT, 1e-9)
	assert.InDelta(t, 50.0, a.ProductivityLossPct, 1e-9)
	assert.Equal(t, HeatExtreme, a.Category)
	assert.NotEmpty(t, a.Recommendation)
}

func TestMalariaRiskScore(t *testing.T) {
	assert.Equal(t, 100, MalariaRiskScore(25, 100))
	assert.Equal(t, 50, MalariaRiskScore(25, 50))
	assert.Equal(t, 50, MalariaRiskScore(40, 100))
	assert.Equal(t, 0, MalariaRiskScore(40, 10))
	assert.Equal(t, 50, MalariaRiskScore(34, 80), "34 C is suitable, 80 mm is not")
	assert.Equal(t, 100, MalariaRiskScore(16, 80.1))
}

func bangkok(intervention string) DALYInput {
	return DALYInput{
		Population:       250_000,
		GDPPerCapitaUSD:  12_000,
		WBGT:             30.8,
		MalariaRiskScore: 100,
		Intervention:     intervention,
	}
}

func TestDALYImpact_Baseline(t *testing.T) {
	r, err := DALYImpact(bangkok("none"))
	require.NoError(t, err)

	assert.InDelta(t, 26_614, r.BaselineDALYs, 1e-6)
	assert.InDelta(t, r.BaselineDALYs, r.PostInterventionDALYs, 1e-9)
	assert.Zero(t, r.DALYsAverted)
	assert.Zero(t, r.EconomicValueUSD)
	assert.Equal(t, NoIntervention, r.Intervention)
	assert.True(t, r.InterventionRecognized)
	assert.InDelta(t, 1.456, r.Breakdown.HeatPer1000Baseline, 1e-9)
	assert.InDelta(t, 105, r.Breakdown.MalariaPer1000Baseline, 1e-9)
	assert.InDelta(t, 106.456, r.Breakdown.TotalPer1000Baseline, 1e-9)
	assert.InDelta(t, 24_000, r.ValuePerDALYUSD, 1e-9)
}

func TestDALYImpact_InterventionIsolation(t *testing.T) {
	cooling, err := DALYImpact(bangkok("urban_cooling_center"))
	require.NoError(t, err)
	assert.InDelta(t, 145.6, cooling.DALYsAverted, 1e-6)
	assert.InDelta(t, 3_494_400, cooling.EconomicValueUSD, 1e-3)
	assert.InDelta(t, cooling.Breakdown.MalariaPer1000Baseline, cooling.Breakdown.MalariaPer1000After, 1e-12,
		"cooling centers leave malaria burden untouched")

	vector, err := DALYImpact(bangkok("mosquito_eradication"))
	require.NoError(t, err)
	assert.InDelta(t, 18_375, vector.DALYsAverted, 1e-6)
	assert.InDelta(t, vector.Breakdown.HeatPer1000Baseline, vector.Breakdown.HeatPer1000After, 1e-12,
		"vector control leaves heat burden untouched")
}

func TestDALYImpact_WorkplaceInterventionsResolveToNone(t *testing.T) {
	baseline, err := DALYImpact(bangkok("none"))
	require.NoError(t, err)

	for _, kind := range []string{"hvac_retrofit", "passive_cooling", "sea_wall", ""} {
		r, err := DALYImpact(bangkok(kind))
		require.NoError(t, err, kind)
		assert.Equal(t, NoIntervention, r.Intervention, kind)
		assert.False(t, r.InterventionRecognized, kind)
		assert.Zero(t, r.DALYsAverted, kind)
		assert.InDelta(t, baseline.BaselineDALYs, r.BaselineDALYs, 1e-9, kind)
	}
}

func TestDALYImpact_LargePopulation(t *testing.T) {
	r, err := DALYImpact(DALYInput{
		Population:       10_000_000,
		GDPPerCapitaUSD:  7_000,
		WBGT:             29.5,
		MalariaRiskScore: 80,
		Intervention:     "URBAN_COOLING_CENTER",
	})
	require.NoError(t, err)
	assert.Equal(t, UrbanCoolingCenter, r.Intervention)
	assert.InDelta(t, 850_616.67, r.BaselineDALYs, 0.01)
	assert.InDelta(t, 4_246.67, r.DALYsAverted, 0.01)
	assert.InDelta(t, 59_453_333.33, r.EconomicValueUSD, 1)
}

func TestDALYImpact_MosquitoEradicationHighBurden(t *testing.T) {
	r, err := DALYImpact(DALYInput{
		Population:       500_000,
		GDPPerCapitaUSD:  2_000,
		WBGT:             28,
		MalariaRiskScore: 100,
		Intervention:     "mosquito_eradication",
	})
	require.NoError(t, err)
	assert.InDelta(t, 52_803.33, r.BaselineDALYs, 0.01)
	assert.InDelta(t, 16_053.33, r.PostInterventionDALYs, 0.01)
	assert.InDelta(t, 36_750, r.DALYsAverted, 1e-6)
	assert.InDelta(t, 147_000_000, r.EconomicValueUSD, 1e-3)
}

func TestDALYImpact_NoBurdenInCoolDryClimate(t *testing.T) {
	r, err := DALYImpact(DALYInput{Population: 1_000_000, GDPPerCapitaUSD: 40_000, WBGT: 24, Intervention: "urban_cooling_center"})
	require.NoError(t, err)
	assert.Zero(t, r.BaselineDALYs)
	assert.Zero(t, r.DALYsAverted)
}

func TestDALYImpact_InvalidInput(t *testing.T) {
	bad := []DALYInput{
		{Population: -1},
		{Population: 10, GDPPerCapitaUSD: -5},
		{Population: 10, WBGT: math.Inf(1)},
		{Population: 10, MalariaRiskScore: 101},
		{Population: 10, MalariaRiskScore: math.NaN()},
	}
	for _, in := range bad {
		_, err := DALYImpact(in)
		assert.ErrorIs(t, err, ErrInvalidInput, "%+v", in)
	}
}

func TestWorkforceEconomicImpact(t *testing.T) {
	r, err := WorkforceEconomicImpact(100, 20, 10, 100)
	require.NoError(t, err)
	assert.InDelta(t, 200, r.DailyProductivityLossUSD, 1e-9)
	assert.InDelta(t, 50_000, r.AnnualProductivityLossUSD, 1e-9)
	assert.Equal(t, 10, r.MalariaDaysLostPerWorker)
	assert.InDelta(t, 20_000, r.MalariaProductivityUSD, 1e-9)
	assert.InDelta(t, 1_000, r.HealthcareCostUSD, 1e-9)
	assert.InDelta(t, 71_000, r.TotalAnnualCostUSD, 1e-9)

	r, err = WorkforceEconomicImpact(100, 20, 0, 50)
	require.NoError(t, err)
	assert.Equal(t, 5, r.MalariaDaysLostPerWorker)
	assert.InDelta(t, 500, r.HealthcareCostUSD, 1e-9)

	r, err = WorkforceEconomicImpact(100, 20, 0, 30)
	require.NoError(t, err)
	assert.Equal(t, 5, r.MalariaDaysLostPerWorker)
	assert.Zero(t, r.HealthcareCostUSD)

	_, err = WorkforceEconomicImpact(100, 20, 150, 0)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestWorkplaceCooling_HVACRetrofit(t *testing.T) {
	r, err := WorkplaceCooling(WorkplaceInput{
		WBGT:         30.8,
		Workforce:    500,
		DailyWage:    25,
		Intervention: "hvac_retrofit",
		CapEx:        250_000,
		AnnualOpEx:   30_000,
	})
	require.NoError(t, err)

	assert.Equal(t, HVACRetrofit, r.Intervention)
	assert.InDelta(t, 22, r.AdaptedWBGT, 1e-9)
	assert.InDelta(t, 40, r.BaselineLossPct, 1e-9)
	assert.Zero(t, r.AdaptedLossPct)
	assert.InDelta(t, 1_250_000, r.AvoidedAnnualLossUSD, 1e-6)
	assert.InDelta(t, 1_220_000, r.NetAnnualBenefitUSD, 1e-6)

	require.NotNil(t, r.ROI)
	assert.Equal(t, finance.Invest, r.ROI.Recommendation)
	assert.Greater(t, r.ROI.NPV, 0.0)
	require.NotNil(t, r.ROI.PaybackYears)
	assert.InDelta(t, 250_000.0/1_220_000.0, *r.ROI.PaybackYears, 1e-9)
	assert.InDelta(t, 0.10, r.ROI.DiscountRate, 1e-12)
}

func TestWorkplaceCooling_PassiveCooling(t *testing.T) {
	r, err := WorkplaceCooling(WorkplaceInput{
		WBGT:         30.8,
		Workforce:    200,
		DailyWage:    15,
		Intervention: "passive_cooling",
		CapEx:        50_000,
		AnnualOpEx:   5_000,
	})
	require.NoError(t, err)
	assert.InDelta(t, 27.8, r.AdaptedWBGT, 1e-9)
	assert.InDelta(t, 15, r.AdaptedLossPct, 1e-9)
	assert.Greater(t, r.AvoidedAnnualLossUSD, 0.0)
	require.NotNil(t, r.ROI)
}

func TestWorkplaceCooling_ZeroCapexSkipsAppraisal(t *testing.T) {
	r, err := WorkplaceCooling(WorkplaceInput{
		WBGT:         31,
		Workforce:    100,
		DailyWage:    40,
		Intervention: "passive_cooling",
	})
	require.NoError(t, err)
	assert.Nil(t, r.ROI)
	assert.Greater(t, r.AvoidedAnnualLossUSD, 0.0)
}

func TestWorkplaceCooling_Unprofitable(t *testing.T) {
	r, err := WorkplaceCooling(WorkplaceInput{
		WBGT:         30.8,
		Workforce:    100,
		DailyWage:    15,
		Intervention: "hvac_retrofit",
		CapEx:        200_000,
		AnnualOpEx:   200_000,
	})
	require.NoError(t, err)
	require.NotNil(t, r.ROI)
	assert.Less(t, r.NetAnnualBenefitUSD, 0.0)
	assert.Less(t, r.ROI.NPV, 0.0)
	assert.Equal(t, finance.DoNotInvest, r.ROI.Recommendation)
	assert.Nil(t, r.ROI.PaybackYears)
}

func TestWorkplaceCooling_CoolClimate(t *testing.T) {
	r, err := WorkplaceCooling(WorkplaceInput{
		WBGT:         24,
		Workforce:    200,
		DailyWage:    50,
		Intervention: "hvac_retrofit",
		CapEx:        100_000,
		AnnualOpEx:   15_000,
	})
	require.NoError(t, err)
	assert.Zero(t, r.AvoidedAnnualLossUSD)
	require.NotNil(t, r.ROI)
	assert.Equal(t, finance.DoNotInvest, r.ROI.Recommendation)
}

func TestWorkplaceCooling_ZeroDiscountRate(t *testing.T) {
	rate := 0.0
	r, err := WorkplaceCooling(WorkplaceInput{
		WBGT:         30.8,
		Workforce:    500,
		DailyWage:    25,
		Intervention: "hvac_retrofit",
		CapEx:        250_000,
		AnnualOpEx:   30_000,
		Years:        5,
		DiscountRate: &rate,
	})
	require.NoError(t, err)
	require.NotNil(t, r.ROI)
	assert.Zero(t, r.ROI.DiscountRate)
	assert.InDelta(t, -250_000+5*1_220_000, r.ROI.NPV, 1e-6)
}

func TestWorkplaceCooling_InvalidInput(t *testing.T) {
	tests := []struct {
		name string
		in   WorkplaceInput
	}{
		{name: "negative years", in: WorkplaceInput{WBGT: 30, Workforce: 10, DailyWage: 10, Intervention: "hvac_retrofit", CapEx: 1000, Years: -5}},
		{name: "NaN WBGT", in: WorkplaceInput{WBGT: math.NaN(), Workforce: 10, DailyWage: 10, Intervention: "hvac_retrofit"}},
		{name: "negative capex", in: WorkplaceInput{WBGT: 30, Workforce: 10, DailyWage: 10, Intervention: "hvac_retrofit", CapEx: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := WorkplaceCooling(tt.in)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestWorkplaceCooling_RejectsPopulationInterventions(t *testing.T) {
	for _, kind := range []string{"urban_cooling_center", "mosquito_eradication", "sea_wall"} {
		_, err := WorkplaceCooling(WorkplaceInput{WBGT: 30, Workforce: 10, DailyWage: 10, Intervention: kind, CapEx: 1000})
		assert.ErrorIs(t, err, ErrUnsupportedIntervention, kind)
	}
}

func TestWorkplaceIntervention_Apply(t *testing.T) {
	assert.InDelta(t, 20, HVACRetrofit.Apply(20), 1e-12, "hvac never warms a space")
	assert.InDelta(t, 22, HVACRetrofit.Apply(35), 1e-12)
	assert.InDelta(t, 27, PassiveCooling.Apply(30), 1e-12)
	assert.InDelta(t, 30, NoCooling.Apply(30), 1e-12)
}
