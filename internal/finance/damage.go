package finance

import (
	"errors"
	"fmt"
	"math"
)

// depthDamageCurve maps flood depth in metres to percent of asset value lost.
var depthDamageCurve = []struct{ depthM, pct float64 }{
	{0.0, 0},
	{0.5, 18},
	{1.0, 29},
	{2.0, 49},
	{3.0, 60},
}

const (
	interruptionDepthM = 0.3
	interruptionDays   = 5
	metresPerFoot      = 0.3048
)

// DepthDamagePct interpolates the depth-damage curve linearly between anchor
// points. Depths at or below zero cause no damage; depths past the last
// anchor are capped at its value.
func DepthDamagePct(depthM float64) float64 {
	if depthM <= 0 {
		return 0
	}
	last := depthDamageCurve[len(depthDamageCurve)-1]
	if depthM >= last.depthM {
		return last.pct
	}
	for i := 1; i < len(depthDamageCurve); i++ {
		lo, hi := depthDamageCurve[i-1], depthDamageCurve[i]
		if depthM <= hi.depthM {
			return lo.pct + (depthM-lo.depthM)/(hi.depthM-lo.depthM)*(hi.pct-lo.pct)
		}
	}
	return last.pct
}

// HAZUSDamagePct is the FEMA HAZUS one-story commercial curve,
// 0.72 * (1 - e^(-0.1332 * depth_ft)), expressed as a percentage.
func HAZUSDamagePct(depthCM float64) float64 {
	if depthCM <= 0 {
		return 0
	}
	depthFt := depthCM / 100 / metresPerFoot
	return 0.72 * (1 - math.Exp(-0.1332*depthFt)) * 100
}

// DamageCost is the asset loss at the given depth.
func DamageCost(depthM, assetValue float64) float64 {
	return DepthDamagePct(depthM) / 100 * assetValue
}

// BusinessInterruption assumes a fixed downtime once water exceeds the
// interruption threshold.
func BusinessInterruption(depthM, dailyRevenue float64) float64 {
	if depthM > interruptionDepthM {
		return interruptionDays * dailyRevenue
	}
	return 0
}

// InfraIntervention is a structural flood defence.
type InfraIntervention string

const (
	NoInfraIntervention InfraIntervention = "none"
	SeaWall             InfraIntervention = "sea_wall"
	Drainage            InfraIntervention = "drainage"
)

// ErrUnknownIntervention is returned for defences outside the closed set.
var ErrUnknownIntervention = errors.New("unknown infrastructure intervention")

// InterventionDepth returns the flood depth after the defence. A sea wall
// removes wallHeightM of water; drainage removes drainageReductionM.
func InterventionDepth(depthM float64, kind InfraIntervention, wallHeightM, drainageReductionM float64) (float64, error) {
	switch kind {
	case SeaWall:
		return math.Max(0, depthM-wallHeightM), nil
	case Drainage:
		return math.Max(0, depthM-drainageReductionM), nil
	case NoInfraIntervention, "":
		return depthM, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownIntervention, kind)
}

// InfrastructureInput describes one asset and a proposed defence.
type InfrastructureInput struct {
	FloodDepthM        float64
	AssetValue         float64
	DailyRevenue       float64
	CapEx              float64
	AnnualOpEx         float64
	Intervention       InfraIntervention
	WallHeightM        float64 // defaults to 2.0 for a sea wall
	DrainageReductionM float64 // defaults to 0.3 for drainage
	Years              int     // defaults to 20
	DiscountRate       float64
}

// LossScenario is the annual loss at one effective depth.
type LossScenario struct {
	FloodDepthM          float64 `json:"flood_depth_m"`
	AssetDamage          float64 `json:"asset_damage"`
	BusinessInterruption float64 `json:"business_interruption"`
	TotalAnnualLoss      float64 `json:"total_annual_loss"`
}

// InfrastructureResult compares the unprotected and protected asset.
type InfrastructureResult struct {
	Baseline          LossScenario `json:"baseline"`
	WithIntervention  LossScenario `json:"with_intervention"`
	AnnualAvoidedLoss float64      `json:"annual_avoided_loss"`
	ROI               ROIMetrics   `json:"roi"`
}

func lossAt(depthM, assetValue, dailyRevenue float64) LossScenario {
	damage := DamageCost(depthM, assetValue)
	interruption := BusinessInterruption(depthM, dailyRevenue)
	return LossScenario{
		FloodDepthM:          depthM,
		AssetDamage:          damage,
		BusinessInterruption: interruption,
		TotalAnnualLoss:      damage + interruption,
	}
}

// InfrastructureROI values a defence as avoided annual loss net of OpEx,
// over the analysis horizon, against the upfront CapEx.
func InfrastructureROI(in InfrastructureInput) (InfrastructureResult, error) {
	if in.FloodDepthM < 0 || in.AssetValue < 0 || in.DailyRevenue < 0 || in.CapEx < 0 || in.AnnualOpEx < 0 {
		return InfrastructureResult{}, fmt.Errorf("%w: depth, values and costs must be non-negative", ErrInvalidCashFlow)
	}
	if in.Years < 0 {
		return InfrastructureResult{}, fmt.Errorf("%w: horizon of %d years", ErrInvalidCashFlow, in.Years)
	}
	if in.Years == 0 {
		in.Years = 20
	}
	if in.WallHeightM == 0 {
		in.WallHeightM = 2.0
	}
	if in.DrainageReductionM == 0 {
		in.DrainageReductionM = 0.3
	}

	effective, err := InterventionDepth(in.FloodDepthM, in.Intervention, in.WallHeightM, in.DrainageReductionM)
	if err != nil {
		return InfrastructureResult{}, err
	}

	baseline := lossAt(in.FloodDepthM, in.AssetValue, in.DailyRevenue)
	protected := lossAt(effective, in.AssetValue, in.DailyRevenue)
	avoided := baseline.TotalAnnualLoss - protected.TotalAnnualLoss

	roi, err := Analyze(UniformSeries(in.CapEx, avoided-in.AnnualOpEx, in.Years), in.DiscountRate)
	if err != nil {
		return InfrastructureResult{}, err
	}
	return InfrastructureResult{
		Baseline:          baseline,
		WithIntervention:  protected,
		AnnualAvoidedLoss: avoided,
		ROI:               roi,
	}, nil
}
