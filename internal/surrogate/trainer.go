// Package surrogate trains random-forest regressors on physics-generated
// scenarios, persists them as versioned artifacts and serves predictions.
package surrogate

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/jonboulle/clockwork"
	"gonum.org/v1/gonum/floats"

	"github.com/couchcryptid/climate-surrogate/internal/scenario"
)

// MinTrainingSamples is the smallest dataset Train accepts.
const MinTrainingSamples = 100

const splitStream = 0x5851f42d4c957f2d

// TrainParams configures the forest and the held-out split.
type TrainParams struct {
	Trees              int
	MaxDepth           int
	MinSamplesSplit    int
	MinSamplesLeaf     int
	MaxFeatures        int // 0 considers every feature at each split
	ValidationFraction float64
	Seed               uint64
}

// DefaultTrainParams matches the production training configuration.
func DefaultTrainParams() TrainParams {
	return TrainParams{
		Trees:              100,
		MaxDepth:           20,
		MinSamplesSplit:    5,
		MinSamplesLeaf:     2,
		ValidationFraction: 0.2,
		Seed:               42,
	}
}

func (p TrainParams) validate() error {
	switch {
	case p.Trees < 1:
		return fmt.Errorf("trees must be at least 1, got %d", p.Trees)
	case p.MaxDepth < 1:
		return fmt.Errorf("max depth must be at least 1, got %d", p.MaxDepth)
	case p.MinSamplesLeaf < 1:
		return fmt.Errorf("min samples per leaf must be at least 1, got %d", p.MinSamplesLeaf)
	case p.ValidationFraction <= 0 || p.ValidationFraction >= 1:
		return fmt.Errorf("validation fraction must be in (0, 1), got %g", p.ValidationFraction)
	}
	return nil
}

// TrainedModel is the persisted artifact payload.
type TrainedModel struct {
	FormatVersion         int
	ID                    string
	Domain                scenario.Domain
	FeatureNames          []string
	TargetName            string
	DatasetDigest         string
	SamplingPolicyVersion int
	TrainingSamples       int
	ValidationSamples     int
	Metrics               Metrics
	Params                TrainParams
	TrainedAt             time.Time
	Forest                Forest
}

// Trainer fits surrogates and stamps them with Clock. A zero Trainer uses
// wall-clock time.
type Trainer struct {
	Clock clockwork.Clock
}

// Train fits with a zero Trainer.
func Train(ds *scenario.Dataset, params TrainParams) (*TrainedModel, error) {
	return Trainer{}.Train(ds, params)
}

func (t Trainer) now() time.Time {
	if t.Clock == nil {
		return time.Now().UTC()
	}
	return t.Clock.Now().UTC()
}

// Train fits a forest on a shuffled split of ds and scores it on the
// held-out part. The same dataset and params always produce the same model
// content; only TrainedAt follows the clock.
func (t Trainer) Train(ds *scenario.Dataset, params TrainParams) (*TrainedModel, error) {
	if ds == nil || ds.Len() < MinTrainingSamples {
		n := 0
		if ds != nil {
			n = ds.Len()
		}
		return nil, fmt.Errorf("train: %w: %d samples, need %d", ErrDatasetTooSmall, n, MinTrainingSamples)
	}
	if err := params.validate(); err != nil {
		return nil, fmt.Errorf("train %s: %w", ds.Domain, err)
	}
	if params.MinSamplesSplit < 2*params.MinSamplesLeaf {
		params.MinSamplesSplit = 2 * params.MinSamplesLeaf
	}

	order := rand.New(rand.NewPCG(params.Seed, splitStream)).Perm(ds.Len())
	nVal := int(float64(ds.Len()) * params.ValidationFraction)
	if nVal < 1 {
		nVal = 1
	}
	valIdx, trainIdx := order[:nVal], order[nVal:]

	xTrain, yTrain := columns(ds, trainIdx)
	xVal, yVal := columns(ds, valIdx)

	forest, importance := fitForest(xTrain, yTrain, forestParams{
		trees:       params.Trees,
		maxDepth:    params.MaxDepth,
		minSplit:    params.MinSamplesSplit,
		minLeaf:     params.MinSamplesLeaf,
		maxFeatures: params.MaxFeatures,
		seed:        params.Seed,
	})

	preds := make([]float64, len(xVal))
	for i, x := range xVal {
		preds[i] = forest.Predict(x)
	}

	allTargets := make([]float64, ds.Len())
	for i, s := range ds.Samples {
		allTargets[i] = s.Target
	}

	metrics := evaluate(preds, yVal, floats.Max(allTargets)-floats.Min(allTargets))
	metrics.FeatureImportance = normalizeImportance(importance)

	m := &TrainedModel{
		FormatVersion:         ArtifactFormatVersion,
		Domain:                ds.Domain,
		FeatureNames:          append([]string(nil), ds.FeatureNames...),
		TargetName:            ds.TargetName,
		DatasetDigest:         ds.Digest(),
		SamplingPolicyVersion: ds.PolicyVersion,
		TrainingSamples:       len(trainIdx),
		ValidationSamples:     nVal,
		Metrics:               metrics,
		Params:                params,
		TrainedAt:             t.now(),
		Forest:                forest,
	}
	id, err := contentID(m)
	if err != nil {
		return nil, fmt.Errorf("train %s: %w", ds.Domain, err)
	}
	m.ID = id
	return m, nil
}

// Importance returns the feature importances keyed by feature name.
func (m *TrainedModel) Importance() map[string]float64 {
	out := make(map[string]float64, len(m.FeatureNames))
	for i, name := range m.FeatureNames {
		if i < len(m.Metrics.FeatureImportance) {
			out[name] = m.Metrics.FeatureImportance[i]
		}
	}
	return out
}

func columns(ds *scenario.Dataset, idx []int) ([][]float64, []float64) {
	x := make([][]float64, len(idx))
	y := make([]float64, len(idx))
	for i, j := range idx {
		x[i] = ds.Samples[j].Features
		y[i] = ds.Samples[j].Target
	}
	return x, y
}
