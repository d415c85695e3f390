// Command validate checks stored surrogate artifacts before they are
// deployed: each one must decode, match the current feature schema, and hold
// its accuracy on a freshly generated held-out dataset drawn with a seed the
// model never saw.
//
// Usage:
//
//	go run ./cmd/validate -model-dir ./models -samples 2000 -seed 1337
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"slices"

	"github.com/couchcryptid/climate-surrogate/internal/scenario"
	"github.com/couchcryptid/climate-surrogate/internal/surrogate"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

type options struct {
	modelDir    string
	domains     []scenario.Domain
	samples     int
	seed        uint64
	maxMAERatio float64
	minR2       float64
}

func main() {
	modelDir := flag.String("model-dir", "./models", "directory containing .srgt artifacts")
	domains := flag.String("domains", "agriculture,coastal,flood", "comma-separated domains to validate")
	samples := flag.Int("samples", 2000, "fresh held-out scenarios per domain")
	seed := flag.Uint64("seed", 1337, "seed for the held-out scenarios")
	maxMAERatio := flag.Float64("max-mae-ratio", 0.01, "maximum MAE as a fraction of the target range")
	minR2 := flag.Float64("min-r2", 0.95, "minimum coefficient of determination")
	flag.Parse()

	ds, err := scenario.ParseDomains(*domains)
	if err != nil || len(ds) == 0 || *samples < 1 {
		flag.Usage()
		os.Exit(1)
	}

	os.Exit(run(options{
		modelDir:    *modelDir,
		domains:     ds,
		samples:     *samples,
		seed:        *seed,
		maxMAERatio: *maxMAERatio,
		minR2:       *minR2,
	}))
}

func run(opts options) int {
	fmt.Println("=== Surrogate Artifact Validation ===")
	fmt.Println()

	store := surrogate.NewFileStore(opts.modelDir)
	ctx := context.Background()

	integrity := &phase{name: "Artifact integrity"}
	models := make(map[scenario.Domain]*surrogate.TrainedModel, len(opts.domains))
	for _, d := range opts.domains {
		tm, err := store.Load(ctx, d)
		if err != nil {
			integrity.errorf("%s: %v", d, err)
			continue
		}
		models[d] = tm
		fmt.Printf("  loaded %-12s id=%s trained=%s samples=%d\n", d, tm.ID, tm.TrainedAt.Format("2006-01-02T15:04:05Z"), tm.TrainingSamples)
	}

	phases := []*phase{
		integrity,
		validateSchema(opts.domains, models),
		validateAccuracy(opts, models),
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// validateSchema checks that each artifact was trained on the features,
// target and sampling policy the current generator produces.
func validateSchema(domains []scenario.Domain, models map[scenario.Domain]*surrogate.TrainedModel) *phase {
	p := &phase{name: "Feature schema"}
	for _, d := range domains {
		tm, ok := models[d]
		if !ok {
			continue
		}
		spec, ok := scenario.Lookup(d)
		if !ok {
			p.errorf("%s: no scenario definition", d)
			continue
		}
		if want := spec.FeatureNames(); !slices.Equal(want, tm.FeatureNames) {
			p.errorf("%s: features %v, generator produces %v", d, tm.FeatureNames, want)
		}
		if tm.TargetName != spec.Target {
			p.errorf("%s: target %q, generator produces %q", d, tm.TargetName, spec.Target)
		}
		if tm.SamplingPolicyVersion != scenario.SamplingPolicyVersion {
			p.errorf("%s: sampling policy v%d, generator is v%d", d, tm.SamplingPolicyVersion, scenario.SamplingPolicyVersion)
		}
		if tm.Domain != d {
			p.errorf("%s: artifact records domain %q", d, tm.Domain)
		}
	}
	return p
}

// validateAccuracy scores each model on fresh scenarios.
func validateAccuracy(opts options, models map[scenario.Domain]*surrogate.TrainedModel) *phase {
	p := &phase{name: "Held-out accuracy"}
	for _, d := range opts.domains {
		tm, ok := models[d]
		if !ok {
			continue
		}
		if opts.seed == tm.Params.Seed {
			p.errorf("%s: validation seed %d equals the training seed", d, opts.seed)
			continue
		}
		ds, err := scenario.Generate(d, opts.samples, opts.seed)
		if err != nil {
			p.errorf("%s: generate: %v", d, err)
			continue
		}
		xs := make([][]float64, ds.Len())
		ys := make([]float64, ds.Len())
		for i, s := range ds.Samples {
			xs[i], ys[i] = s.Features, s.Target
		}

		m, err := surrogate.Evaluate(surrogate.NewModel(tm), xs, ys)
		if err != nil {
			p.errorf("%s: evaluate: %v", d, err)
			continue
		}
		fmt.Printf("  %-12s MAE=%.4g (%.3f%% of range) RMSE=%.4g R2=%.4f\n", d, m.MAE, 100*m.MAERatio(), m.RMSE, m.R2)
		if m.MAERatio() > opts.maxMAERatio {
			p.errorf("%s: MAE %.4g is %.4f of target range, limit %.4f", d, m.MAE, m.MAERatio(), opts.maxMAERatio)
		}
		if m.R2 < opts.minR2 {
			p.errorf("%s: R2 %.4f below %.4f", d, m.R2, opts.minR2)
		}
	}
	return p
}
