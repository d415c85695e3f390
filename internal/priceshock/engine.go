// Package priceshock estimates local commodity price spikes from
// climate-driven yield loss using short-run supply elasticities.
//
// All arithmetic is exact decimal so published reference values (a 30% maize
// loss giving a 120% price rise to $396/t) reproduce digit for digit.
package priceshock

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	// ErrUnrecognizedCrop is returned for crop names outside the table.
	ErrUnrecognizedCrop = errors.New("unrecognized crop")

	// ErrInvalidYield is returned for a non-positive baseline or negative stressed yield.
	ErrInvalidYield = errors.New("invalid yield")
)

var hundred = decimal.NewFromInt(100)

// Tier grades hedging urgency by yield loss.
type Tier int

const (
	Low Tier = iota
	Moderate
	High
	Urgent
)

var (
	moderateAbove = decimal.NewFromInt(5)
	highAbove     = decimal.NewFromInt(15)
	urgentAbove   = decimal.NewFromInt(30)
)

// TierFor classifies a yield-loss percentage. Thresholds are strict, so a
// loss of exactly 30% is High and exactly 5% is Low.
func TierFor(yieldLossPct decimal.Decimal) Tier {
	switch {
	case yieldLossPct.GreaterThan(urgentAbove):
		return Urgent
	case yieldLossPct.GreaterThan(highAbove):
		return High
	case yieldLossPct.GreaterThan(moderateAbove):
		return Moderate
	default:
		return Low
	}
}

func (t Tier) String() string {
	switch t {
	case Urgent:
		return "URGENT"
	case High:
		return "HIGH"
	case Moderate:
		return "MODERATE"
	default:
		return "LOW"
	}
}

// MarshalText renders the tier by name.
func (t Tier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// HedgeRange is the suggested share of expected production to sell forward.
func (t Tier) HedgeRange() (lowPct, highPct int) {
	switch t {
	case Urgent:
		return 70, 80
	case High:
		return 50, 60
	case Moderate:
		return 30, 40
	default:
		return 0, 0
	}
}

// Advice is the forward-contract recommendation for the tier.
func (t Tier) Advice(yieldLossPct, priceIncreasePct decimal.Decimal) string {
	loss, rise := yieldLossPct.StringFixed(1), priceIncreasePct.StringFixed(1)
	switch t {
	case Urgent:
		return fmt.Sprintf("URGENT: lock in forward contracts immediately. A %s%% yield loss will cause severe price volatility. "+
			"Hedge 70-80%% of expected production at current prices.", loss)
	case High:
		return fmt.Sprintf("HIGH RISK: consider forward contracts now. A %s%% yield loss will drive prices %s%% higher. "+
			"Hedge 50-60%% of expected production.", loss, rise)
	case Moderate:
		return fmt.Sprintf("MODERATE RISK: monitor markets closely. A %s%% yield loss may push prices %s%% higher. "+
			"Consider hedging 30-40%% of production if prices keep rising.", loss, rise)
	default:
		return fmt.Sprintf("LOW RISK: no immediate hedging needed. A %s%% yield loss has minimal price impact.", loss)
	}
}

// RevenueImpact compares farm revenue before and after the shock.
type RevenueImpact struct {
	BaselineRevenue decimal.Decimal `json:"baseline_revenue_usd"`
	StressedRevenue decimal.Decimal `json:"stressed_revenue_usd"`
	NetChange       decimal.Decimal `json:"net_revenue_change_usd"`
	NetChangePct    decimal.Decimal `json:"net_revenue_change_pct"`
}

// Result is the full price-shock appraisal for one crop.
type Result struct {
	Crop             string          `json:"crop"`
	BaselinePrice    decimal.Decimal `json:"baseline_price"`
	ShockedPrice     decimal.Decimal `json:"shocked_price"`
	PriceIncreasePct decimal.Decimal `json:"price_increase_pct"`
	PriceIncreaseUSD decimal.Decimal `json:"price_increase_usd"`
	YieldLossPct     decimal.Decimal `json:"yield_loss_pct"`
	YieldLossTons    decimal.Decimal `json:"yield_loss_tons"`
	Elasticity       decimal.Decimal `json:"elasticity"`
	Tier             Tier            `json:"tier"`
	Advice           string          `json:"advice"`
	Revenue          RevenueImpact   `json:"revenue_impact"`
}

// Shock computes the price response to a drop from baseline to stressed
// yield. Yield gains are allowed and produce a price fall, floored at zero.
func Shock(crop string, baselineYieldTons, stressedYieldTons float64) (Result, error) {
	t, err := loadTable()
	if err != nil {
		return Result{}, err
	}
	name, params, ok := t.resolve(crop)
	if !ok {
		return Result{}, fmt.Errorf("%w: %q (available: %s)", ErrUnrecognizedCrop, crop, strings.Join(t.names(), ", "))
	}
	if !finite(baselineYieldTons) || baselineYieldTons <= 0 {
		return Result{}, fmt.Errorf("%w: baseline yield must be positive, got %g", ErrInvalidYield, baselineYieldTons)
	}
	if !finite(stressedYieldTons) || stressedYieldTons < 0 {
		return Result{}, fmt.Errorf("%w: stressed yield cannot be negative, got %g", ErrInvalidYield, stressedYieldTons)
	}

	baseline := decimal.NewFromFloat(baselineYieldTons)
	stressed := decimal.NewFromFloat(stressedYieldTons)
	price := params.BaselinePricePerTon

	lossTons := baseline.Sub(stressed)
	lossPct := lossTons.Div(baseline).Mul(hundred)
	risePct := lossPct.Div(params.SupplyElasticity)

	shocked := price.Mul(decimal.NewFromInt(1).Add(risePct.Div(hundred)))
	if shocked.IsNegative() {
		shocked = decimal.Zero
	}

	baseRevenue := baseline.Mul(price)
	stressRevenue := stressed.Mul(shocked)
	net := stressRevenue.Sub(baseRevenue)

	tier := TierFor(lossPct)
	return Result{
		Crop:             name,
		BaselinePrice:    price,
		ShockedPrice:     shocked,
		PriceIncreasePct: risePct,
		PriceIncreaseUSD: shocked.Sub(price),
		YieldLossPct:     lossPct,
		YieldLossTons:    lossTons,
		Elasticity:       params.SupplyElasticity,
		Tier:             tier,
		Advice:           tier.Advice(lossPct, risePct),
		Revenue: RevenueImpact{
			BaselineRevenue: baseRevenue,
			StressedRevenue: stressRevenue,
			NetChange:       net,
			NetChangePct:    net.Div(baseRevenue).Mul(hundred),
		},
	}, nil
}

// CropInfo describes one crop's market parameters.
type CropInfo struct {
	Crop string `json:"crop"`
	Parameters
	// PricePctPerSupplyPct is the price rise caused by a 1% supply drop.
	PricePctPerSupplyPct decimal.Decimal `json:"price_pct_per_supply_pct"`
}

// Info returns the parameters for a crop name or alias.
func Info(crop string) (CropInfo, error) {
	t, err := loadTable()
	if err != nil {
		return CropInfo{}, err
	}
	name, params, ok := t.resolve(crop)
	if !ok {
		return CropInfo{}, fmt.Errorf("%w: %q", ErrUnrecognizedCrop, crop)
	}
	return CropInfo{
		Crop:                 name,
		Parameters:           params,
		PricePctPerSupplyPct: decimal.NewFromInt(1).Div(params.SupplyElasticity),
	}, nil
}

// AllCrops returns every canonical crop, sorted by name.
func AllCrops() ([]CropInfo, error) {
	t, err := loadTable()
	if err != nil {
		return nil, err
	}
	out := make([]CropInfo, 0, len(t.crops))
	for _, name := range t.names() {
		if _, alias := t.aliases[name]; alias {
			continue
		}
		info, err := Info(name)
		if err != nil {
			return nil, err
		}
		out = append(out, info)
	}
	return out, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
