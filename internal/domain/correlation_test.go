package domain

import (
	"math"
	"reflect"
	"testing"

	"domgen/internal/dataset"
)

func corrRows() []dataset.Row {
	return []dataset.Row{
		{TID: 0, Values: map[string]string{"color": "red", "shape": "circle", "site": "a"}},
		{TID: 1, Values: map[string]string{"color": "red", "shape": "circle", "site": "a"}},
		{TID: 2, Values: map[string]string{"color": "blue", "shape": "square", "site": "a"}},
	}
}

func TestAnalyzeCorrelationsPerfectAssociation(t *testing.T) {
	m := AnalyzeCorrelations(corrRows(), []string{"color", "shape", "site"})
	r, ok := m["color"]["shape"]
	if !ok {
		t.Fatalf("expected color/shape entry")
	}
	if math.Abs(math.Abs(r)-1) > 1e-9 {
		t.Fatalf("expected |r|=1 for perfectly associated columns, got %f", r)
	}
	if m["color"]["shape"] != m["shape"]["color"] {
		t.Fatalf("matrix not symmetric")
	}
	if m["color"]["color"] != 1 {
		t.Fatalf("expected self-correlation of 1, got %f", m["color"]["color"])
	}
}

func TestAnalyzeCorrelationsDropsConstantColumns(t *testing.T) {
	m := AnalyzeCorrelations(corrRows(), []string{"color", "shape", "site"})
	if _, ok := m["site"]; ok {
		t.Fatalf("constant column must be dropped from the matrix")
	}
}

func TestCorrelatedExcludesSelfAndSortsResult(t *testing.T) {
	m := Matrix{
		"a": {"a": 1, "c": 0.8, "b": -0.5, "d": 0.05},
		"b": {"b": 1, "a": -0.5},
	}
	got := m.Correlated("a", 0.1)
	if !reflect.DeepEqual(got, []string{"b", "c"}) {
		t.Fatalf("unexpected correlated set: %v", got)
	}
}

func TestCorrelatedAbsentAttribute(t *testing.T) {
	m := AnalyzeCorrelations(corrRows(), []string{"color", "shape", "site"})
	if got := m.Correlated("site", 0.1); len(got) != 0 {
		t.Fatalf("expected empty result for dropped attribute, got %v", got)
	}
	if got := m.Correlated("unknown", 0.1); len(got) != 0 {
		t.Fatalf("expected empty result for unknown attribute, got %v", got)
	}
}

func TestPearsonZeroVariance(t *testing.T) {
	if r := pearson([]float64{1, 1, 1}, []float64{0, 1, 2}); r != 0 {
		t.Fatalf("expected 0 for zero-variance column, got %f", r)
	}
	if r := pearson(nil, nil); r != 0 {
		t.Fatalf("expected 0 for empty columns, got %f", r)
	}
}
