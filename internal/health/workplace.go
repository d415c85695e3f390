package health

import (
	"fmt"
	"math"
	"strings"

	"github.com/couchcryptid/climate-surrogate/internal/finance"
)

const (
	WorkingDaysPerYear = 250

	hvacTargetWBGT        = 22.0
	passiveCoolingDeltaC  = 3.0
	defaultCoolingYears   = 10
	defaultCoolingRate    = 0.10
	malariaHighRiskScore  = 75
	malariaModerateScore  = 25
	malariaHealthcareCost = 50.0 // USD per case
)

// WorkplaceIntervention is a facility-level cooling measure.
type WorkplaceIntervention string

const (
	NoCooling      WorkplaceIntervention = "none"
	HVACRetrofit   WorkplaceIntervention = "hvac_retrofit"
	PassiveCooling WorkplaceIntervention = "passive_cooling"
)

// ParseWorkplaceIntervention accepts only the workplace set. Population
// measures such as urban_cooling_center are rejected.
func ParseWorkplaceIntervention(s string) (WorkplaceIntervention, error) {
	switch w := WorkplaceIntervention(strings.ToLower(strings.TrimSpace(s))); w {
	case "", NoCooling:
		return NoCooling, nil
	case HVACRetrofit, PassiveCooling:
		return w, nil
	default:
		return "", fmt.Errorf("%w: %q is not a workplace cooling measure", ErrUnsupportedIntervention, s)
	}
}

// Apply returns the WBGT workers experience after the intervention.
func (w WorkplaceIntervention) Apply(wbgt float64) float64 {
	switch w {
	case HVACRetrofit:
		return math.Min(wbgt, hvacTargetWBGT)
	case PassiveCooling:
		return wbgt - passiveCoolingDeltaC
	default:
		return wbgt
	}
}

// WorkforceImpact is the economic cost of heat and malaria to a workforce.
type WorkforceImpact struct {
	DailyProductivityLossUSD  float64 `json:"daily_productivity_loss_usd"`
	AnnualProductivityLossUSD float64 `json:"annual_productivity_loss_usd"`
	MalariaDaysLostPerWorker  int     `json:"malaria_days_lost_per_worker"`
	MalariaProductivityUSD    float64 `json:"malaria_productivity_loss_usd"`
	HealthcareCostUSD         float64 `json:"healthcare_cost_usd"`
	TotalAnnualCostUSD        float64 `json:"total_annual_cost_usd"`
}

// WorkforceEconomicImpact prices heat productivity loss over a working year
// and malaria absence plus treatment for the workforce.
func WorkforceEconomicImpact(workforce int, dailyWage, lossPct float64, malariaScore int) (WorkforceImpact, error) {
	if workforce < 0 {
		return WorkforceImpact{}, fmt.Errorf("%w: workforce %d", ErrInvalidInput, workforce)
	}
	if !finite(dailyWage) || dailyWage < 0 {
		return WorkforceImpact{}, fmt.Errorf("%w: daily wage %g", ErrInvalidInput, dailyWage)
	}
	if !finite(lossPct) || lossPct < 0 || lossPct > 100 {
		return WorkforceImpact{}, fmt.Errorf("%w: productivity loss %g%%", ErrInvalidInput, lossPct)
	}

	payroll := float64(workforce) * dailyWage
	daily := payroll * lossPct / 100
	annual := daily * WorkingDaysPerYear

	var daysLost int
	switch {
	case malariaScore >= malariaHighRiskScore:
		daysLost = 10
	case malariaScore >= malariaModerateScore:
		daysLost = 5
	}
	malariaLoss := payroll * float64(daysLost)

	var healthcare float64
	if malariaScore >= 50 {
		prevalence := 0.10
		if malariaScore >= malariaHighRiskScore {
			prevalence = 0.20
		}
		healthcare = float64(workforce) * prevalence * malariaHealthcareCost
	}

	return WorkforceImpact{
		DailyProductivityLossUSD:  daily,
		AnnualProductivityLossUSD: annual,
		MalariaDaysLostPerWorker:  daysLost,
		MalariaProductivityUSD:    malariaLoss,
		HealthcareCostUSD:         healthcare,
		TotalAnnualCostUSD:        annual + malariaLoss + healthcare,
	}, nil
}

// WorkplaceInput describes a facility considering a cooling investment.
// Years defaults to 10 when zero and DiscountRate to 0.10 when nil.
type WorkplaceInput struct {
	WBGT         float64
	Workforce    int
	DailyWage    float64
	Intervention string
	CapEx        float64
	AnnualOpEx   float64
	Years        int
	DiscountRate *float64
}

// WorkplaceResult compares productivity loss with and without cooling.
// ROI is nil when there is no capital outlay to appraise.
type WorkplaceResult struct {
	Intervention          WorkplaceIntervention `json:"intervention_type"`
	BaselineWBGT          float64               `json:"baseline_wbgt"`
	AdaptedWBGT           float64               `json:"adapted_wbgt"`
	BaselineLossPct       float64               `json:"baseline_productivity_loss_pct"`
	AdaptedLossPct        float64               `json:"adapted_productivity_loss_pct"`
	BaselineAnnualLossUSD float64               `json:"baseline_annual_loss_usd"`
	AdaptedAnnualLossUSD  float64               `json:"adapted_annual_loss_usd"`
	AvoidedAnnualLossUSD  float64               `json:"avoided_annual_loss_usd"`
	NetAnnualBenefitUSD   float64               `json:"net_annual_benefit_usd"`
	ROI                   *finance.ROIMetrics   `json:"roi,omitempty"`
}

// WorkplaceCooling appraises a cooling retrofit as capex against avoided
// productivity loss net of opex.
func WorkplaceCooling(in WorkplaceInput) (WorkplaceResult, error) {
	kind, err := ParseWorkplaceIntervention(in.Intervention)
	if err != nil {
		return WorkplaceResult{}, err
	}
	if !finite(in.WBGT) {
		return WorkplaceResult{}, fmt.Errorf("%w: WBGT %g", ErrInvalidInput, in.WBGT)
	}
	if !finite(in.CapEx) || in.CapEx < 0 || !finite(in.AnnualOpEx) || in.AnnualOpEx < 0 {
		return WorkplaceResult{}, fmt.Errorf("%w: capex and opex must be non-negative", ErrInvalidInput)
	}
	if in.Years < 0 {
		return WorkplaceResult{}, fmt.Errorf("%w: horizon of %d years", ErrInvalidInput, in.Years)
	}
	years, rate := in.Years, defaultCoolingRate
	if years == 0 {
		years = defaultCoolingYears
	}
	if in.DiscountRate != nil {
		rate = *in.DiscountRate
	}

	adaptedWBGT := kind.Apply(in.WBGT)
	baseLoss, err := ProductivityLossPct(in.WBGT)
	if err != nil {
		return WorkplaceResult{}, err
	}
	adaptedLoss, err := ProductivityLossPct(adaptedWBGT)
	if err != nil {
		return WorkplaceResult{}, err
	}

	base, err := WorkforceEconomicImpact(in.Workforce, in.DailyWage, baseLoss, 0)
	if err != nil {
		return WorkplaceResult{}, err
	}
	adapted, err := WorkforceEconomicImpact(in.Workforce, in.DailyWage, adaptedLoss, 0)
	if err != nil {
		return WorkplaceResult{}, err
	}

	avoided := base.AnnualProductivityLossUSD - adapted.AnnualProductivityLossUSD
	res := WorkplaceResult{
		Intervention:          kind,
		BaselineWBGT:          in.WBGT,
		AdaptedWBGT:           adaptedWBGT,
		BaselineLossPct:       baseLoss,
		AdaptedLossPct:        adaptedLoss,
		BaselineAnnualLossUSD: base.AnnualProductivityLossUSD,
		AdaptedAnnualLossUSD:  adapted.AnnualProductivityLossUSD,
		AvoidedAnnualLossUSD:  avoided,
		NetAnnualBenefitUSD:   avoided - in.AnnualOpEx,
	}
	if kind == NoCooling || in.CapEx == 0 {
		return res, nil
	}

	roi, err := finance.Analyze(finance.UniformSeries(in.CapEx, res.NetAnnualBenefitUSD, years), rate)
	if err != nil {
		return WorkplaceResult{}, fmt.Errorf("appraise %s: %w", kind, err)
	}
	res.ROI = &roi
	return res, nil
}
