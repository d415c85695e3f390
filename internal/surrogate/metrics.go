package surrogate

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Metrics summarises held-out accuracy. FeatureImportance follows the
// model's FeatureNames and sums to 1 unless no split was ever made.
type Metrics struct {
	MAE               float64
	RMSE              float64
	R2                float64
	TargetRange       float64
	FeatureImportance []float64
}

// MAERatio is MAE as a fraction of the target range, the quantity the
// fit-quality gate compares against.
func (m Metrics) MAERatio() float64 {
	if m.TargetRange == 0 {
		return 0
	}
	return m.MAE / m.TargetRange
}

func evaluate(pred, actual []float64, targetRange float64) Metrics {
	n := float64(len(actual))
	return Metrics{
		MAE:         floats.Distance(pred, actual, 1) / n,
		RMSE:        floats.Distance(pred, actual, 2) / math.Sqrt(n),
		R2:          stat.RSquaredFrom(pred, actual, nil),
		TargetRange: targetRange,
	}
}

func normalizeImportance(raw []float64) []float64 {
	out := append([]float64(nil), raw...)
	total := floats.Sum(out)
	if total <= 0 {
		return make([]float64, len(raw))
	}
	floats.Scale(1/total, out)
	return out
}

// Evaluate scores a model against an independent dataset with the same
// schema. Rows must be in FeatureNames order.
func Evaluate(m *Model, xs [][]float64, ys []float64) (Metrics, error) {
	if len(xs) == 0 {
		return Metrics{}, fmt.Errorf("%w: no rows", ErrInvalidEvaluationSet)
	}
	if len(xs) != len(ys) {
		return Metrics{}, fmt.Errorf("%w: %d rows but %d targets", ErrInvalidEvaluationSet, len(xs), len(ys))
	}
	pred := make([]float64, len(xs))
	for i, x := range xs {
		v, err := m.PredictVector(x)
		if err != nil {
			return Metrics{}, fmt.Errorf("row %d: %w", i, err)
		}
		pred[i] = v
	}
	return evaluate(pred, ys, floats.Max(ys)-floats.Min(ys)), nil
}
