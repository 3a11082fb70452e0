// Package domain computes candidate-value domains for dataset cells from
// attribute correlation and value co-occurrence statistics.
package domain

import (
	"math"
	"sort"

	"domgen/internal/dataset"
)

// Matrix is a symmetric attribute correlation matrix. Attributes dropped
// during analysis (constant columns) carry no entry at all.
type Matrix map[string]map[string]float64

// AnalyzeCorrelations encodes every attribute's values as dense integer
// category codes and computes pairwise Pearson correlation over the coded
// columns. Codes are assigned in sorted value order so a given dataset
// always encodes the same way; the null sentinel is a category of its own.
// Correlation over category codes is a cheap categorical-association
// proxy: for binary attributes it is exact, for higher cardinality the
// magnitude depends on code order and is an accepted approximation.
func AnalyzeCorrelations(rows []dataset.Row, attrs []string) Matrix {
	coded := make(map[string][]float64, len(attrs))
	for _, attr := range attrs {
		col, ok := encodeColumn(rows, attr)
		if ok {
			coded[attr] = col
		}
	}
	names := make([]string, 0, len(coded))
	for attr := range coded {
		names = append(names, attr)
	}
	sort.Strings(names)

	m := make(Matrix, len(names))
	for _, attr := range names {
		m[attr] = make(map[string]float64, len(names))
	}
	for i, a := range names {
		for _, b := range names[i:] {
			r := pearson(coded[a], coded[b])
			m[a][b] = r
			m[b][a] = r
		}
	}
	return m
}

// Correlated returns the attributes whose absolute correlation with attr
// exceeds threshold, excluding attr itself, sorted by name. An attribute
// absent from the matrix yields an empty result.
func (m Matrix) Correlated(attr string, threshold float64) []string {
	row, ok := m[attr]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(row))
	for other, r := range row {
		if other == attr {
			continue
		}
		if math.Abs(r) > threshold {
			out = append(out, other)
		}
	}
	sort.Strings(out)
	return out
}

// encodeColumn maps the attribute's values to dense category codes in
// sorted value order. Columns with a single distinct value are dropped.
func encodeColumn(rows []dataset.Row, attr string) ([]float64, bool) {
	distinct := make(map[string]struct{})
	for _, row := range rows {
		distinct[row.Value(attr)] = struct{}{}
	}
	if len(distinct) < 2 {
		return nil, false
	}
	values := make([]string, 0, len(distinct))
	for v := range distinct {
		values = append(values, v)
	}
	sort.Strings(values)
	code := make(map[string]float64, len(values))
	for i, v := range values {
		code[v] = float64(i)
	}
	col := make([]float64, len(rows))
	for i, row := range rows {
		col[i] = code[row.Value(attr)]
	}
	return col, true
}

func pearson(x, y []float64) float64 {
	n := float64(len(x))
	if n == 0 {
		return 0
	}
	var sumX, sumY float64
	for i := range x {
		sumX += x[i]
		sumY += y[i]
	}
	meanX := sumX / n
	meanY := sumY / n
	var cov, varX, varY float64
	for i := range x {
		dx := x[i] - meanX
		dy := y[i] - meanY
		cov += dx * dy
		varX += dx * dx
		varY += dy * dy
	}
	if varX == 0 || varY == 0 {
		return 0
	}
	return cov / math.Sqrt(varX*varY)
}
