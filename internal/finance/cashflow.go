// Package finance evaluates adaptation investments with discounted cash flow.
//
// Undefined quantities are never errors: functions that can be undefined
// return (value, ok) and result records carry them as nil pointers.
package finance

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"slices"
)

var (
	// ErrInvalidDiscountRate is returned for rates at or below -100%.
	ErrInvalidDiscountRate = errors.New("discount rate must be greater than -1")

	// ErrInvalidCashFlow is returned for negative periods or non-finite amounts.
	ErrInvalidCashFlow = errors.New("invalid cash flow")
)

// CashFlow is a signed amount at an integer period. Period 0 is the upfront,
// undiscounted capital cost.
type CashFlow struct {
	Period int
	Amount float64
}

// CashFlowSeries is an ordered set of cash flows.
type CashFlowSeries []CashFlow

// UniformSeries builds the common project shape: -capex at period 0 followed
// by the same net benefit in periods 1..years. A negative horizon yields the
// capex alone.
func UniformSeries(capex, annualBenefit float64, years int) CashFlowSeries {
	years = max(years, 0)
	s := make(CashFlowSeries, 0, years+1)
	s = append(s, CashFlow{Period: 0, Amount: -capex})
	for t := 1; t <= years; t++ {
		s = append(s, CashFlow{Period: t, Amount: annualBenefit})
	}
	return s
}

// SeriesOf assigns consecutive periods starting at 0 to the amounts.
func SeriesOf(amounts ...float64) CashFlowSeries {
	s := make(CashFlowSeries, len(amounts))
	for i, a := range amounts {
		s[i] = CashFlow{Period: i, Amount: a}
	}
	return s
}

func (s CashFlowSeries) validate() error {
	for _, cf := range s {
		if cf.Period < 0 {
			return fmt.Errorf("%w: period %d is negative", ErrInvalidCashFlow, cf.Period)
		}
		if math.IsNaN(cf.Amount) || math.IsInf(cf.Amount, 0) {
			return fmt.Errorf("%w: period %d amount is not finite", ErrInvalidCashFlow, cf.Period)
		}
	}
	return nil
}

func checkRate(rate float64) error {
	if math.IsNaN(rate) || rate <= -1 {
		return fmt.Errorf("%w: got %g", ErrInvalidDiscountRate, rate)
	}
	return nil
}

func discount(amount, rate float64, period int) float64 {
	return amount / math.Pow(1+rate, float64(period))
}

// NPV is the sum of amount/(1+rate)^period over the series, period 0 included.
func NPV(series CashFlowSeries, rate float64) (float64, error) {
	if err := checkRate(rate); err != nil {
		return 0, err
	}
	if err := series.validate(); err != nil {
		return 0, err
	}
	var npv float64
	for _, cf := range series {
		npv += discount(cf.Amount, rate, cf.Period)
	}
	return npv, nil
}

// PresentValues splits the discounted series into benefits (positive flows)
// and costs (the magnitude of negative flows).
func PresentValues(series CashFlowSeries, rate float64) (benefits, costs float64, err error) {
	if err := checkRate(rate); err != nil {
		return 0, 0, err
	}
	if err := series.validate(); err != nil {
		return 0, 0, err
	}
	for _, cf := range series {
		pv := discount(cf.Amount, rate, cf.Period)
		if pv > 0 {
			benefits += pv
		} else {
			costs -= pv
		}
	}
	return benefits, costs, nil
}

// PaybackPeriodYears is capex divided by the net annual benefit. It is
// undefined (ok == false) when the benefit is zero or negative.
func PaybackPeriodYears(capex, netAnnualBenefit float64) (years float64, ok bool) {
	if netAnnualBenefit <= 0 {
		return 0, false
	}
	return capex / netAnnualBenefit, true
}

// PaybackFromCashFlows returns the fractional period at which cumulative
// undiscounted cash flow turns non-negative, interpolating within the period
// where it crosses zero. Series are read in period order. It is undefined
// when the series never recovers.
func PaybackFromCashFlows(series CashFlowSeries) (years float64, ok bool) {
	totals := periodTotals(series)
	if len(totals) == 0 {
		return 0, false
	}
	// Nothing owed at period 0.
	if totals[0].Period > 0 || totals[0].Amount >= 0 {
		return 0, true
	}
	cumulative := totals[0].Amount
	for _, cf := range totals[1:] {
		prev := cumulative
		cumulative += cf.Amount
		if cumulative >= 0 {
			return float64(cf.Period-1) + -prev/cf.Amount, true
		}
	}
	return 0, false
}

// periodTotals merges flows sharing a period and returns them in period
// order. Negative periods are dropped.
func periodTotals(series CashFlowSeries) []CashFlow {
	sorted := make([]CashFlow, 0, len(series))
	for _, cf := range series {
		if cf.Period >= 0 {
			sorted = append(sorted, cf)
		}
	}
	slices.SortStableFunc(sorted, func(a, b CashFlow) int {
		return cmp.Compare(a.Period, b.Period)
	})

	merged := sorted[:0]
	for _, cf := range sorted {
		if n := len(merged); n > 0 && merged[n-1].Period == cf.Period {
			merged[n-1].Amount += cf.Amount
			continue
		}
		merged = append(merged, cf)
	}
	return merged
}

// BenefitCostRatio is pvBenefits/pvCosts, undefined when pvCosts is zero.
func BenefitCostRatio(pvBenefits, pvCosts float64) (ratio float64, ok bool) {
	if pvCosts == 0 {
		return 0, false
	}
	return pvBenefits / pvCosts, true
}
