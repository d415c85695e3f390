package surrogate

import (
	"fmt"
	"slices"
	"time"

	"github.com/couchcryptid/climate-surrogate/internal/scenario"
)

// Predictor serves point estimates for one domain.
type Predictor interface {
	Predict(features map[string]float64) (float64, error)
	FeatureNames() []string
}

// Model is a loaded, read-only surrogate. Its methods are safe for
// concurrent use without locking.
type Model struct {
	meta  *TrainedModel
	index map[string]int
}

// NewModel wraps a trained model for inference.
func NewModel(m *TrainedModel) *Model {
	index := make(map[string]int, len(m.FeatureNames))
	for i, n := range m.FeatureNames {
		index[n] = i
	}
	return &Model{meta: m, index: index}
}

// Predict validates the key set against the training features, reorders the
// values into training order and returns the ensemble estimate.
func (m *Model) Predict(features map[string]float64) (float64, error) {
	x, err := m.vector(features)
	if err != nil {
		return 0, err
	}
	return m.meta.Forest.Predict(x), nil
}

// PredictVector predicts from values already in FeatureNames order.
func (m *Model) PredictVector(x []float64) (float64, error) {
	if len(x) != len(m.meta.FeatureNames) {
		return 0, fmt.Errorf("%w: got %d values, model takes %d", ErrFeatureMismatch, len(x), len(m.meta.FeatureNames))
	}
	return m.meta.Forest.Predict(x), nil
}

func (m *Model) vector(features map[string]float64) ([]float64, error) {
	x := make([]float64, len(m.meta.FeatureNames))
	var mismatch FeatureMismatchError
	for name, v := range features {
		i, ok := m.index[name]
		if !ok {
			mismatch.Unexpected = append(mismatch.Unexpected, name)
			continue
		}
		x[i] = v
	}
	for _, name := range m.meta.FeatureNames {
		if _, ok := features[name]; !ok {
			mismatch.Missing = append(mismatch.Missing, name)
		}
	}
	if len(mismatch.Missing) > 0 || len(mismatch.Unexpected) > 0 {
		slices.Sort(mismatch.Unexpected)
		return nil, &mismatch
	}
	return x, nil
}

// FeatureNames returns a copy of the training feature order.
func (m *Model) FeatureNames() []string {
	return slices.Clone(m.meta.FeatureNames)
}

// ID returns the artifact's content address.
func (m *Model) ID() string { return m.meta.ID }

// Domain returns the hazard domain the model was trained for.
func (m *Model) Domain() scenario.Domain { return m.meta.Domain }

// Metrics returns the held-out accuracy recorded at training time.
func (m *Model) Metrics() Metrics {
	out := m.meta.Metrics
	out.FeatureImportance = slices.Clone(out.FeatureImportance)
	return out
}

// TrainedAt returns when the model was fitted.
func (m *Model) TrainedAt() time.Time { return m.meta.TrainedAt }
