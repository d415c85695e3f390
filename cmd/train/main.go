// Command train generates physics scenarios, fits one surrogate per domain,
// writes the accepted models to the artifact directory and, when Kafka is
// configured, announces each one on the model topic.
//
// Settings come from the environment (see internal/config); flags override
// the most common ones.
//
// Usage:
//
//	go run ./cmd/train -domains flood,coastal -out ./models -samples 20000
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/jonboulle/clockwork"

	kafkaadapter "github.com/couchcryptid/climate-surrogate/internal/adapter/kafka"
	"github.com/couchcryptid/climate-surrogate/internal/config"
	"github.com/couchcryptid/climate-surrogate/internal/observability"
	"github.com/couchcryptid/climate-surrogate/internal/pipeline"
	"github.com/couchcryptid/climate-surrogate/internal/scenario"
	"github.com/couchcryptid/climate-surrogate/internal/surrogate"
)

func main() {
	if err := run(); err != nil {
		slog.Error("training failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	domainsFlag := flag.String("domains", "", "comma-separated domains to train (default MODEL_DOMAINS)")
	outDir := flag.String("out", "", "artifact directory (default MODEL_DIR)")
	samples := flag.Int("samples", 0, "scenarios per domain (default SCENARIO_SAMPLES)")
	noPublish := flag.Bool("no-publish", false, "skip model events even if KAFKA_BROKERS is set")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if *domainsFlag != "" {
		if cfg.ModelDomains, err = scenario.ParseDomains(*domainsFlag); err != nil {
			return err
		}
	}
	if *outDir != "" {
		cfg.ModelDir = *outDir
	}
	if *samples > 0 {
		cfg.ScenarioSamples = *samples
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	params := surrogate.DefaultTrainParams()
	params.Trees = cfg.TrainTrees
	params.MaxDepth = cfg.TrainMaxDepth
	params.MinSamplesLeaf = cfg.TrainMinLeaf
	params.ValidationFraction = cfg.TrainValidationFraction
	params.Seed = cfg.ScenarioSeed

	var publisher pipeline.EventPublisher
	if cfg.EventsEnabled() && !*noPublish {
		w := kafkaadapter.NewWriter(cfg, logger)
		defer func() {
			if err := w.Close(); err != nil {
				logger.Error("kafka writer close error", "error", err)
			}
		}()
		publisher = w
		logger.Info("model events enabled", "topic", cfg.KafkaModelTopic)
	}

	p := pipeline.New(
		pipeline.GenerateFunc(scenario.Generate),
		surrogate.Trainer{Clock: clockwork.NewRealClock()},
		surrogate.NewFileStore(cfg.ModelDir),
		publisher,
		pipeline.Options{
			Samples:     cfg.ScenarioSamples,
			Seed:        cfg.ScenarioSeed,
			Params:      params,
			MaxMAERatio: cfg.TrainMaxMAERatio,
		},
		logger,
		metrics,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reports, runErr := p.Run(ctx, cfg.ModelDomains)
	printReports(reports)
	if runErr != nil && errors.Is(runErr, pipeline.ErrQualityGate) {
		return fmt.Errorf("%w (raise TRAIN_MAX_MAE_RATIO or SCENARIO_SAMPLES)", runErr)
	}
	return runErr
}

func printReports(reports []pipeline.RunReport) {
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DOMAIN\tOUTCOME\tMODEL\tSAMPLES\tMAE\tR2\tPUBLISHED\tDURATION")
	for _, r := range reports {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%.4g\t%.4f\t%t\t%s\n",
			r.Domain, r.Outcome, r.ModelID, r.Samples, r.Metrics.MAE, r.Metrics.R2, r.Published, r.Duration.Round(time.Millisecond))
	}
	tw.Flush()
}
