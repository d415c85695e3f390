package priceshock

import (
	_ "embed"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

//go:embed crops.yaml
var cropsYAML []byte

// Parameters are the market constants for one crop.
type Parameters struct {
	BaselinePricePerTon decimal.Decimal `json:"baseline_price_usd_per_ton"`
	SupplyElasticity    decimal.Decimal `json:"supply_elasticity"`
}

type tableFile struct {
	Crops map[string]struct {
		Price      string `yaml:"price_usd_per_ton"`
		Elasticity string `yaml:"supply_elasticity"`
	} `yaml:"crops"`
	Aliases map[string]string `yaml:"aliases"`
}

type table struct {
	crops   map[string]Parameters
	aliases map[string]string
}

var loadTable = sync.OnceValues(func() (*table, error) {
	return parseTable(cropsYAML)
})

func parseTable(data []byte) (*table, error) {
	var f tableFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse crop table: %w", err)
	}
	t := &table{
		crops:   make(map[string]Parameters, len(f.Crops)),
		aliases: make(map[string]string, len(f.Aliases)),
	}
	for name, c := range f.Crops {
		price, err := decimal.NewFromString(c.Price)
		if err != nil {
			return nil, fmt.Errorf("crop %s price: %w", name, err)
		}
		elasticity, err := decimal.NewFromString(c.Elasticity)
		if err != nil {
			return nil, fmt.Errorf("crop %s elasticity: %w", name, err)
		}
		if !price.IsPositive() || !elasticity.IsPositive() {
			return nil, fmt.Errorf("crop %s: price and elasticity must be positive", name)
		}
		t.crops[name] = Parameters{BaselinePricePerTon: price, SupplyElasticity: elasticity}
	}
	for alias, target := range f.Aliases {
		if _, ok := t.crops[target]; !ok {
			return nil, fmt.Errorf("alias %s points at unknown crop %s", alias, target)
		}
		t.aliases[alias] = target
	}
	return t, nil
}

// resolve normalizes a crop name and follows aliases.
func (t *table) resolve(crop string) (string, Parameters, bool) {
	name := strings.ToLower(strings.TrimSpace(crop))
	if target, ok := t.aliases[name]; ok {
		name = target
	}
	p, ok := t.crops[name]
	return name, p, ok
}

func (t *table) names() []string {
	out := make([]string, 0, len(t.crops)+len(t.aliases))
	for n := range t.crops {
		out = append(out, n)
	}
	for n := range t.aliases {
		out = append(out, n)
	}
	slices.Sort(out)
	return out
}
