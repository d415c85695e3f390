package scenario

import (
	"fmt"
	"strings"

	"github.com/couchcryptid/climate-surrogate/internal/physics"
)

// Domain names a hazard with its own physics model and surrogate.
type Domain string

const (
	Agriculture Domain = "agriculture"
	Coastal     Domain = "coastal"
	Flood       Domain = "flood"
)

// Domains returns every supported domain in a stable order.
func Domains() []Domain {
	return []Domain{Agriculture, Coastal, Flood}
}

// ParseDomain resolves a domain name, case-insensitively.
func ParseDomain(s string) (Domain, error) {
	d := Domain(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := specs[d]; !ok {
		return "", fmt.Errorf("unknown domain %q", s)
	}
	return d, nil
}

// ParseDomains parses a comma-separated domain list, skipping blanks.
func ParseDomains(s string) ([]Domain, error) {
	var out []Domain
	for _, part := range strings.Split(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		d, err := ParseDomain(part)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

// Feature is one sampled model input with its declared uniform range.
// Categorical features draw an integer code uniformly from [0, Levels).
type Feature struct {
	Name   string
	Min    float64
	Max    float64
	Levels int
}

// Spec declares a domain's ordered features, its target and the physics
// function that labels each sample.
type Spec struct {
	Domain   Domain
	Features []Feature
	Target   string
	evaluate func(x []float64) (float64, error)
}

// FeatureNames returns the ordered feature names.
func (s Spec) FeatureNames() []string {
	names := make([]string, len(s.Features))
	for i, f := range s.Features {
		names[i] = f.Name
	}
	return names
}

// Evaluate labels one feature vector with the domain's physics model.
func (s Spec) Evaluate(x []float64) (float64, error) {
	if len(x) != len(s.Features) {
		return 0, fmt.Errorf("%s: expected %d features, got %d", s.Domain, len(s.Features), len(x))
	}
	return s.evaluate(x)
}

// Lookup returns the declared spec for a domain.
func Lookup(d Domain) (Spec, bool) {
	s, ok := specs[d]
	return s, ok
}

var specs = map[Domain]Spec{
	Agriculture: {
		Domain: Agriculture,
		Features: []Feature{
			{Name: "temperature_c", Min: 15, Max: 45},
			{Name: "rainfall_mm", Min: 0, Max: 3000},
			{Name: "seed_resilience_flag", Levels: 2},
			{Name: "crop_type", Levels: len(physics.Crops())},
		},
		Target: "yield_pct",
		evaluate: func(x []float64) (float64, error) {
			return physics.CropYieldPct(x[0], x[1], x[2] >= 0.5, physics.Crop(int(x[3])))
		},
	},
	Coastal: {
		Domain: Coastal,
		Features: []Feature{
			{Name: "wave_height_m", Min: 1, Max: 10},
			{Name: "slope_pct", Min: 1, Max: 10},
			{Name: "mangrove_width_m", Min: 0, Max: 500},
		},
		Target: "runup_m",
		evaluate: func(x []float64) (float64, error) {
			return physics.CoastalRunupM(x[0], x[1], x[2])
		},
	},
	Flood: {
		Domain: Flood,
		Features: []Feature{
			{Name: "rain_intensity_mm_hr", Min: 10, Max: 150},
			{Name: "imperviousness", Min: 0, Max: 1},
			{Name: "slope_pct", Min: 0.1, Max: 10},
		},
		Target: "flood_depth_cm",
		evaluate: func(x []float64) (float64, error) {
			return physics.FloodDepthCM(x[0], x[1], x[2])
		},
	},
}
