package finance

// Recommendation is the investment verdict derived from NPV and BCR.
type Recommendation string

const (
	Invest      Recommendation = "INVEST"
	Marginal    Recommendation = "MARGINAL"
	DoNotInvest Recommendation = "DO_NOT_INVEST"
)

// Recommend applies the decision rule: INVEST when npv > 0 and bcr > 1,
// MARGINAL when npv > 0 but bcr <= 1, otherwise DO_NOT_INVEST. A BCR of
// exactly 1.0 is MARGINAL.
func Recommend(npv, bcr float64) Recommendation {
	switch {
	case npv > 0 && bcr > 1:
		return Invest
	case npv > 0:
		return Marginal
	default:
		return DoNotInvest
	}
}

// RecommendOptional treats an undefined BCR as not exceeding 1.
func RecommendOptional(npv float64, bcr *float64) Recommendation {
	if bcr == nil {
		return Recommend(npv, 0)
	}
	return Recommend(npv, *bcr)
}

// Reason is a short human-readable justification for a recommendation.
func (r Recommendation) Reason() string {
	switch r {
	case Invest:
		return "Positive NPV and benefits exceed costs"
	case Marginal:
		return "Positive NPV but benefit-cost ratio is at or below 1"
	default:
		return "Negative or zero NPV"
	}
}

// ROIMetrics bundles a full cash-flow appraisal. Payback and BCR are nil
// when undefined.
type ROIMetrics struct {
	NPV            float64        `json:"npv"`
	PVBenefits     float64        `json:"pv_benefits"`
	PVCosts        float64        `json:"pv_costs"`
	BCR            *float64       `json:"bcr"`
	PaybackYears   *float64       `json:"payback_years"`
	Recommendation Recommendation `json:"recommendation"`
	DiscountRate   float64        `json:"discount_rate"`
}

// Analyze computes NPV, BCR, payback and the recommendation for a series.
func Analyze(series CashFlowSeries, rate float64) (ROIMetrics, error) {
	npv, err := NPV(series, rate)
	if err != nil {
		return ROIMetrics{}, err
	}
	benefits, costs, err := PresentValues(series, rate)
	if err != nil {
		return ROIMetrics{}, err
	}

	m := ROIMetrics{
		NPV:          npv,
		PVBenefits:   benefits,
		PVCosts:      costs,
		DiscountRate: rate,
	}
	if bcr, ok := BenefitCostRatio(benefits, costs); ok {
		m.BCR = &bcr
	}
	if years, ok := PaybackFromCashFlows(series); ok {
		m.PaybackYears = &years
	}
	m.Recommendation = RecommendOptional(npv, m.BCR)
	return m, nil
}
