package domain

import (
	"reflect"
	"testing"

	"domgen/internal/dataset"
)

func indexStats() dataset.Statistics {
	return dataset.Statistics{
		Total: 10,
		Single: map[string]map[string]int{
			"city": {"nyc": 8, "sf": 2},
			"zip":  {"10001": 6, "10002": 2, "94103": 2},
		},
		Pair: map[dataset.AttrPair]map[string]map[string]int{
			{Cond: "city", Target: "zip"}: {
				"nyc": {"10001": 6, "10002": 2},
				"sf":  {"94103": 2},
			},
		},
	}
}

func TestBuildIndexPrunesStrictly(t *testing.T) {
	// tau for nyc = 0.3 * 8 = 2.4: 10001 (6) survives, 10002 (2) does not.
	ix := BuildIndex(indexStats(), 0.3)
	table, observed := ix.Lookup("city", "zip")
	if !observed {
		t.Fatalf("expected observed pair")
	}
	if !reflect.DeepEqual(table["nyc"], []string{"10001"}) {
		t.Fatalf("unexpected nyc candidates: %v", table["nyc"])
	}
	if !reflect.DeepEqual(table["sf"], []string{"94103"}) {
		t.Fatalf("unexpected sf candidates: %v", table["sf"])
	}
}

func TestBuildIndexThresholdIsStrict(t *testing.T) {
	// tau for sf = 1.0 * 2 = 2: a count of exactly 2 must not survive.
	ix := BuildIndex(indexStats(), 1.0)
	table, observed := ix.Lookup("city", "zip")
	if !observed {
		t.Fatalf("expected observed pair")
	}
	if len(table["sf"]) != 0 {
		t.Fatalf("count equal to threshold must be pruned, got %v", table["sf"])
	}
	if _, ok := table["sf"]; !ok {
		t.Fatalf("conditioning value must keep its key after pruning")
	}
}

func TestBuildIndexRetainsEmptyPrunedPair(t *testing.T) {
	ix := BuildIndex(indexStats(), 10)
	table, observed := ix.Lookup("city", "zip")
	if !observed {
		t.Fatalf("a fully pruned pair must stay observed")
	}
	for cond, candidates := range table {
		if len(candidates) != 0 {
			t.Fatalf("expected all candidates pruned for %s, got %v", cond, candidates)
		}
	}
}

func TestLookupNeverObservedPair(t *testing.T) {
	ix := BuildIndex(indexStats(), 0.3)
	if _, observed := ix.Lookup("zip", "city"); observed {
		t.Fatalf("reverse pair was never observed")
	}
	if ix.Pairs() != 1 {
		t.Fatalf("unexpected pair count: %d", ix.Pairs())
	}
}

func TestBuildIndexCandidateOrder(t *testing.T) {
	stats := dataset.Statistics{
		Total:  9,
		Single: map[string]map[string]int{"a": {"v": 9}},
		Pair: map[dataset.AttrPair]map[string]map[string]int{
			{Cond: "a", Target: "b"}: {
				"v": {"low": 2, "high": 5, "mid": 2},
			},
		},
	}
	ix := BuildIndex(stats, 0.1)
	table, _ := ix.Lookup("a", "b")
	// Descending count, ties broken by value.
	if !reflect.DeepEqual(table["v"], []string{"high", "low", "mid"}) {
		t.Fatalf("unexpected candidate order: %v", table["v"])
	}
}
