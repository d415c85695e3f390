package surrogate

import (
	"strconv"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/couchcryptid/climate-surrogate/internal/observability"
)

// CachedModel wraps a Predictor with an LRU cache keyed by the exact input
// values in feature order. Only successful predictions are cached.
type CachedModel struct {
	inner   Predictor
	names   []string
	cache   *lru.Cache[string, float64]
	domain  string
	metrics *observability.Metrics
}

// NewCachedModel creates a cache decorator holding up to size predictions.
func NewCachedModel(inner Predictor, size int, domain string, metrics *observability.Metrics) (*CachedModel, error) {
	cache, err := lru.New[string, float64](size)
	if err != nil {
		return nil, err
	}
	return &CachedModel{
		inner:   inner,
		names:   inner.FeatureNames(),
		cache:   cache,
		domain:  domain,
		metrics: metrics,
	}, nil
}

func (c *CachedModel) Predict(features map[string]float64) (float64, error) {
	key, ok := c.key(features)
	if ok {
		if v, hit := c.cache.Get(key); hit {
			c.metrics.PredictionCache.WithLabelValues(c.domain, "hit").Inc()
			return v, nil
		}
		c.metrics.PredictionCache.WithLabelValues(c.domain, "miss").Inc()
	}

	v, err := c.inner.Predict(features)
	if err != nil {
		return 0, err
	}
	if ok {
		c.cache.Add(key, v)
	}
	return v, nil
}

func (c *CachedModel) FeatureNames() []string {
	return c.inner.FeatureNames()
}

// key renders values in training order. A request with the wrong key set gets
// no key so the inner model reports the mismatch.
func (c *CachedModel) key(features map[string]float64) (string, bool) {
	if len(features) != len(c.names) {
		return "", false
	}
	var b strings.Builder
	for i, name := range c.names {
		v, ok := features[name]
		if !ok {
			return "", false
		}
		if i > 0 {
			b.WriteByte('|')
		}
		b.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
	}
	return b.String(), true
}
