// Package pipeline runs the offline generate, train, gate, save and publish
// sequence for each surrogate domain.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/storm-data-shared/retry"
	"github.com/google/uuid"

	"github.com/couchcryptid/climate-surrogate/internal/observability"
	"github.com/couchcryptid/climate-surrogate/internal/scenario"
	"github.com/couchcryptid/climate-surrogate/internal/surrogate"
)

// ErrQualityGate is returned when a trained model's held-out error exceeds
// the configured fraction of the target range. Such models are never saved.
var ErrQualityGate = errors.New("model failed quality gate")

// ScenarioSource produces a labelled training dataset for a domain.
type ScenarioSource interface {
	Generate(d scenario.Domain, n int, seed uint64) (*scenario.Dataset, error)
}

// ModelTrainer fits a surrogate to a dataset.
type ModelTrainer interface {
	Train(ds *scenario.Dataset, params surrogate.TrainParams) (*surrogate.TrainedModel, error)
}

// ArtifactSink persists an accepted model.
type ArtifactSink interface {
	Save(ctx context.Context, m *surrogate.TrainedModel) error
}

// EventPublisher announces a newly saved model.
type EventPublisher interface {
	PublishModel(ctx context.Context, m *surrogate.TrainedModel) error
}

// GenerateFunc adapts a plain function to ScenarioSource.
type GenerateFunc func(d scenario.Domain, n int, seed uint64) (*scenario.Dataset, error)

func (f GenerateFunc) Generate(d scenario.Domain, n int, seed uint64) (*scenario.Dataset, error) {
	return f(d, n, seed)
}

// TrainFunc adapts a plain function to ModelTrainer.
type TrainFunc func(ds *scenario.Dataset, params surrogate.TrainParams) (*surrogate.TrainedModel, error)

func (f TrainFunc) Train(ds *scenario.Dataset, params surrogate.TrainParams) (*surrogate.TrainedModel, error) {
	return f(ds, params)
}

// Options configures one training run.
type Options struct {
	Samples        int
	Seed           uint64
	Params         surrogate.TrainParams
	MaxMAERatio    float64
	PublishRetries int
}

// Outcome labels how a domain's run ended.
type Outcome string

const (
	OutcomeSuccess  Outcome = "success"
	OutcomeRejected Outcome = "rejected"
	OutcomeError    Outcome = "error"
)

// RunReport summarises one domain's run.
type RunReport struct {
	RunID      string
	Domain     scenario.Domain
	Outcome    Outcome
	ModelID    string
	Samples    int
	Metrics    surrogate.Metrics
	Duration   time.Duration
	Published  bool
	Err        error
	PublishErr error
}

// Pipeline orchestrates surrogate training across domains.
type Pipeline struct {
	source    ScenarioSource
	trainer   ModelTrainer
	sink      ArtifactSink
	publisher EventPublisher
	opts      Options
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// New creates a Pipeline. A nil publisher disables model events.
func New(src ScenarioSource, tr ModelTrainer, sink ArtifactSink, pub EventPublisher, opts Options, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	if opts.PublishRetries < 1 {
		opts.PublishRetries = 3
	}
	return &Pipeline{
		source:    src,
		trainer:   tr,
		sink:      sink,
		publisher: pub,
		opts:      opts,
		logger:    logger,
		metrics:   metrics,
	}
}

// Run trains each domain in order. A failing domain does not stop the
// others; their errors are joined in the returned error. Cancellation stops
// the run before the next domain starts.
func (p *Pipeline) Run(ctx context.Context, domains []scenario.Domain) ([]RunReport, error) {
	p.logger.Info("training run started", "domains", len(domains), "samples", p.opts.Samples, "seed", p.opts.Seed)

	reports := make([]RunReport, 0, len(domains))
	var errs []error
	for _, d := range domains {
		if err := ctx.Err(); err != nil {
			p.logger.Info("training run stopping", "reason", err)
			errs = append(errs, err)
			break
		}
		r := p.runDomain(ctx, d)
		reports = append(reports, r)
		if r.Err != nil {
			errs = append(errs, r.Err)
		}
	}
	return reports, errors.Join(errs...)
}

func (p *Pipeline) runDomain(ctx context.Context, d scenario.Domain) RunReport {
	start := time.Now()
	r := RunReport{RunID: uuid.NewString(), Domain: d}
	logger := p.logger.With("domain", string(d), "run_id", r.RunID)

	finish := func(outcome Outcome, err error) RunReport {
		r.Outcome, r.Err = outcome, err
		r.Duration = time.Since(start)
		p.metrics.TrainingRuns.WithLabelValues(string(d), string(outcome)).Inc()
		p.metrics.TrainingDuration.WithLabelValues(string(d)).Observe(r.Duration.Seconds())
		return r
	}

	ds, err := p.source.Generate(d, p.opts.Samples, p.opts.Seed)
	if err != nil {
		logger.Error("generate scenarios failed", "error", err)
		return finish(OutcomeError, fmt.Errorf("%s: generate: %w", d, err))
	}
	r.Samples = ds.Len()
	p.metrics.ScenariosGenerated.WithLabelValues(string(d)).Add(float64(ds.Len()))
	logger.Debug("scenarios generated", "samples", ds.Len(), "digest", ds.Digest())

	m, err := p.trainer.Train(ds, p.opts.Params)
	if err != nil {
		logger.Error("train failed", "error", err)
		return finish(OutcomeError, fmt.Errorf("%s: %w", d, err))
	}
	r.ModelID, r.Metrics = m.ID, m.Metrics
	p.metrics.ValidationMAE.WithLabelValues(string(d)).Set(m.Metrics.MAE)
	p.metrics.ValidationR2.WithLabelValues(string(d)).Set(m.Metrics.R2)

	if ratio := m.Metrics.MAERatio(); ratio > p.opts.MaxMAERatio {
		logger.Warn("model rejected", "model_id", m.ID, "mae", m.Metrics.MAE, "mae_ratio", ratio, "max_mae_ratio", p.opts.MaxMAERatio)
		return finish(OutcomeRejected, fmt.Errorf("%s: %w: MAE %.4g is %.4g of target range, limit %.4g",
			d, ErrQualityGate, m.Metrics.MAE, ratio, p.opts.MaxMAERatio))
	}

	if err := p.sink.Save(ctx, m); err != nil {
		logger.Error("save artifact failed", "model_id", m.ID, "error", err)
		return finish(OutcomeError, fmt.Errorf("%s: save: %w", d, err))
	}

	if p.publisher != nil {
		if err := p.publish(ctx, m); err != nil {
			logger.Warn("publish model event failed", "model_id", m.ID, "error", err)
			r.PublishErr = err
		} else {
			r.Published = true
		}
	}

	logger.Info("model trained",
		"model_id", m.ID,
		"mae", m.Metrics.MAE,
		"rmse", m.Metrics.RMSE,
		"r2", m.Metrics.R2,
		"published", r.Published,
	)
	return finish(OutcomeSuccess, nil)
}

// publish retries with exponential backoff. The artifact is already saved,
// so a failure here does not fail the domain.
func (p *Pipeline) publish(ctx context.Context, m *surrogate.TrainedModel) error {
	backoff := 200 * time.Millisecond
	maxBackoff := 5 * time.Second

	var err error
	for attempt := 1; attempt <= p.opts.PublishRetries; attempt++ {
		if err = p.publisher.PublishModel(ctx, m); err == nil {
			p.metrics.EventsPublished.WithLabelValues("success").Inc()
			return nil
		}
		p.metrics.EventsPublished.WithLabelValues("error").Inc()
		if attempt == p.opts.PublishRetries || !retry.SleepWithContext(ctx, backoff) {
			break
		}
		backoff = retry.NextBackoff(backoff, maxBackoff)
	}
	return err
}
