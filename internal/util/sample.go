// Package util provides shared helper utilities.
package util

import (
	"math/rand"
	"sort"
)

// ChanceF returns true with probability p in [0,1].
func ChanceF(r *rand.Rand, p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	return r.Float64() < p
}

// SampleStrings draws up to k elements from pool uniformly without
// replacement. The pool is sorted before permuting so that equal seeds
// produce equal samples regardless of the caller's map iteration order.
func SampleStrings(r *rand.Rand, pool []string, k int) []string {
	if k <= 0 || len(pool) == 0 {
		return nil
	}
	sorted := make([]string, len(pool))
	copy(sorted, pool)
	sort.Strings(sorted)
	if k > len(sorted) {
		k = len(sorted)
	}
	out := make([]string, 0, k)
	for _, idx := range r.Perm(len(sorted))[:k] {
		out = append(out, sorted[idx])
	}
	return out
}
