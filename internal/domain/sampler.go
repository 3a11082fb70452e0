package domain

import (
	"math/rand"

	"github.com/pkg/errors"

	"domgen/internal/dataset"
	"domgen/internal/util"
)

// Sampler draws random alternative values for a cell whose domain could
// not be grown from correlated evidence.
type Sampler struct {
	rng       *rand.Rand
	prob      float64
	maxSample int
	single    map[string]map[string]int
}

// NewSampler builds a sampler over the single-value universe. The rng is
// the engine's run-seeded generator; prob is the chance of sampling at
// all, maxSample the cap on drawn values.
func NewSampler(rng *rand.Rand, prob float64, maxSample int, single map[string]map[string]int) *Sampler {
	return &Sampler{rng: rng, prob: prob, maxSample: maxSample, single: single}
}

// Sample returns up to maxSample values observed for attr, excluding
// current, drawn uniformly without replacement. With probability 1-prob
// the sampler declines and returns nil; that is not an error. A non-null
// current value missing from the universe is an invariant violation: it
// must have been counted at least once.
func (s *Sampler) Sample(attr, current string) ([]string, error) {
	if !util.ChanceF(s.rng, s.prob) {
		return nil, nil
	}
	universe, ok := s.single[attr]
	if !ok {
		return nil, errors.Errorf("attribute %q has no single-value statistics", attr)
	}
	if _, ok := universe[current]; !ok && current != dataset.NullValue {
		return nil, errors.Errorf("value %q of attribute %q missing from its value universe", current, attr)
	}
	pool := make([]string, 0, len(universe))
	for v := range universe {
		if v != current {
			pool = append(pool, v)
		}
	}
	return util.SampleStrings(s.rng, pool, s.maxSample), nil
}
