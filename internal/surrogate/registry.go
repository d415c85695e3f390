package surrogate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/couchcryptid/climate-surrogate/internal/observability"
	"github.com/couchcryptid/climate-surrogate/internal/scenario"
)

// ArtifactLoader fetches the persisted model for a domain.
type ArtifactLoader interface {
	Load(ctx context.Context, d scenario.Domain) (*TrainedModel, error)
}

// Registry holds one lazily loaded surrogate per configured domain. Each
// domain is loaded at most once per process; a failed load is remembered
// and reported as ErrModelUnavailable until the process restarts.
type Registry struct {
	loader    ArtifactLoader
	cacheSize int
	logger    *slog.Logger
	metrics   *observability.Metrics
	slots     map[scenario.Domain]*slot
	domains   []scenario.Domain
}

type slot struct {
	once  sync.Once
	model Predictor
	meta  *TrainedModel
	err   error
}

// NewRegistry creates a registry for the given domains. cacheSize > 0 wraps
// each model in a prediction cache of that size.
func NewRegistry(loader ArtifactLoader, domains []scenario.Domain, cacheSize int, logger *slog.Logger, metrics *observability.Metrics) *Registry {
	slots := make(map[scenario.Domain]*slot, len(domains))
	for _, d := range domains {
		slots[d] = &slot{}
	}
	return &Registry{
		loader:    loader,
		cacheSize: cacheSize,
		logger:    logger,
		metrics:   metrics,
		slots:     slots,
		domains:   append([]scenario.Domain(nil), domains...),
	}
}

// Get returns the domain's predictor, loading it on first use.
func (r *Registry) Get(ctx context.Context, d scenario.Domain) (Predictor, error) {
	s, ok := r.slots[d]
	if !ok {
		return nil, fmt.Errorf("%w: domain %q not configured", ErrModelUnavailable, d)
	}
	// The load result is shared by every later caller, so it must not
	// inherit this caller's cancellation.
	s.once.Do(func() { s.model, s.meta, s.err = r.load(context.WithoutCancel(ctx), d) })
	if s.err != nil {
		return nil, s.err
	}
	return s.model, nil
}

func (r *Registry) load(ctx context.Context, d scenario.Domain) (Predictor, *TrainedModel, error) {
	tm, err := r.loader.Load(ctx, d)
	if err != nil {
		r.metrics.ModelLoadErrors.WithLabelValues(string(d)).Inc()
		r.logger.Error("model load failed", "domain", d, "error", err)
		return nil, nil, fmt.Errorf("%w: %s: %w", ErrModelUnavailable, d, err)
	}

	var p Predictor = NewModel(tm)
	if r.cacheSize > 0 {
		cached, err := NewCachedModel(p, r.cacheSize, string(d), r.metrics)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %s: prediction cache: %w", ErrModelUnavailable, d, err)
		}
		p = cached
	}

	r.metrics.ModelsLoaded.Inc()
	r.logger.Info("model loaded",
		"domain", d,
		"model_id", tm.ID,
		"trained_at", tm.TrainedAt,
		"validation_mae", tm.Metrics.MAE,
		"validation_r2", tm.Metrics.R2,
	)
	return p, tm, nil
}

// Preload loads every configured domain and joins the failures.
func (r *Registry) Preload(ctx context.Context) error {
	var errs []error
	for _, d := range r.domains {
		if _, err := r.Get(ctx, d); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Predict runs one prediction against the domain's model and records metrics.
func (r *Registry) Predict(ctx context.Context, d scenario.Domain, features map[string]float64) (float64, error) {
	start := time.Now()
	p, err := r.Get(ctx, d)
	if err != nil {
		r.metrics.Predictions.WithLabelValues(string(d), "error").Inc()
		return 0, err
	}
	v, err := p.Predict(features)
	if err != nil {
		r.metrics.Predictions.WithLabelValues(string(d), "error").Inc()
		return 0, fmt.Errorf("predict %s: %w", d, err)
	}
	r.metrics.Predictions.WithLabelValues(string(d), "success").Inc()
	r.metrics.PredictionDuration.WithLabelValues(string(d)).Observe(time.Since(start).Seconds())
	return v, nil
}

// CheckReadiness reports an error until every configured model is loaded.
func (r *Registry) CheckReadiness(ctx context.Context) error {
	for _, d := range r.domains {
		if _, err := r.Get(ctx, d); err != nil {
			return err
		}
	}
	return nil
}

// Domains returns the configured domains.
func (r *Registry) Domains() []scenario.Domain {
	return append([]scenario.Domain(nil), r.domains...)
}

// ModelInfo describes the model serving one domain.
type ModelInfo struct {
	Domain       scenario.Domain `json:"domain"`
	Loaded       bool            `json:"loaded"`
	ModelID      string          `json:"model_id,omitempty"`
	TrainedAt    time.Time       `json:"trained_at,omitzero"`
	FeatureNames []string        `json:"feature_names,omitempty"`
	TargetName   string          `json:"target,omitempty"`
	MAE          float64         `json:"validation_mae,omitempty"`
	R2           float64         `json:"validation_r2,omitempty"`
	Error        string          `json:"error,omitempty"`
}

// Models reports every configured domain, loading any not yet loaded.
func (r *Registry) Models(ctx context.Context) []ModelInfo {
	out := make([]ModelInfo, 0, len(r.domains))
	for _, d := range r.domains {
		info := ModelInfo{Domain: d}
		if _, err := r.Get(ctx, d); err != nil {
			info.Error = err.Error()
		} else {
			tm := r.slots[d].meta
			info.Loaded = true
			info.ModelID = tm.ID
			info.TrainedAt = tm.TrainedAt
			info.FeatureNames = append([]string(nil), tm.FeatureNames...)
			info.TargetName = tm.TargetName
			info.MAE = tm.Metrics.MAE
			info.R2 = tm.Metrics.R2
		}
		out = append(out, info)
	}
	return out
}
