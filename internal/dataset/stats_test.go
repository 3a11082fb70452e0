package dataset

import (
	"context"
	"reflect"
	"testing"
)

func sampleRows() []Row {
	return []Row{
		{TID: 0, Values: map[string]string{"color": "red", "shape": "circle"}},
		{TID: 1, Values: map[string]string{"color": "red", "shape": "circle"}},
		{TID: 2, Values: map[string]string{"color": "blue", "shape": "square"}},
	}
}

func TestBuildStatisticsSingle(t *testing.T) {
	stats := BuildStatistics(sampleRows(), []string{"color", "shape"})
	if stats.Total != 3 {
		t.Fatalf("unexpected total: %d", stats.Total)
	}
	want := map[string]int{"red": 2, "blue": 1}
	if !reflect.DeepEqual(stats.Single["color"], want) {
		t.Fatalf("unexpected color counts: %v", stats.Single["color"])
	}
}

func TestBuildStatisticsPair(t *testing.T) {
	stats := BuildStatistics(sampleRows(), []string{"color", "shape"})
	byCond, ok := stats.Pair[AttrPair{Cond: "color", Target: "shape"}]
	if !ok {
		t.Fatalf("expected color->shape pair")
	}
	if byCond["red"]["circle"] != 2 {
		t.Fatalf("unexpected red/circle count: %d", byCond["red"]["circle"])
	}
	if byCond["blue"]["square"] != 1 {
		t.Fatalf("unexpected blue/square count: %d", byCond["blue"]["square"])
	}
	// Reverse direction is counted independently.
	if stats.Pair[AttrPair{Cond: "shape", Target: "color"}]["circle"]["red"] != 2 {
		t.Fatalf("expected reverse pair counts")
	}
}

func TestBuildStatisticsSkipsNulls(t *testing.T) {
	rows := []Row{
		{TID: 0, Values: map[string]string{"a": "x", "b": NullValue}},
		{TID: 1, Values: map[string]string{"a": NullValue, "b": "y"}},
	}
	stats := BuildStatistics(rows, []string{"a", "b"})
	if _, ok := stats.Single["a"][NullValue]; ok {
		t.Fatalf("null sentinel leaked into single stats")
	}
	if _, ok := stats.Pair[AttrPair{Cond: "a", Target: "b"}]; ok {
		t.Fatalf("pair with no joint non-null observation must stay absent")
	}
}

func TestMemoryProviderCellID(t *testing.T) {
	p := NewMemory(sampleRows(), []string{"shape"})
	// Sorted attrs: color=0, shape=1.
	cid, err := p.CellID(2, "shape")
	if err != nil {
		t.Fatalf("cell id: %v", err)
	}
	if cid != 2*2+1 {
		t.Fatalf("unexpected cell id: %d", cid)
	}
	if _, err := p.CellID(0, "missing"); err == nil {
		t.Fatalf("expected error for unknown attribute")
	}
}

func TestMemoryProviderActiveAttributes(t *testing.T) {
	p := NewMemory(sampleRows(), nil)
	if _, err := p.ActiveAttributes(context.Background()); err == nil {
		t.Fatalf("expected error for empty active set")
	}
	p = NewMemory(sampleRows(), []string{"shape", "color"})
	active, err := p.ActiveAttributes(context.Background())
	if err != nil {
		t.Fatalf("active attributes: %v", err)
	}
	if !reflect.DeepEqual(active, []string{"color", "shape"}) {
		t.Fatalf("active set not sorted: %v", active)
	}
}

func TestQuoteIdent(t *testing.T) {
	if got := QuoteIdent("mysql", "cell_domain"); got != "`cell_domain`" {
		t.Fatalf("unexpected mysql quoting: %s", got)
	}
	if got := QuoteIdent("postgres", "cell_domain"); got != `"cell_domain"` {
		t.Fatalf("unexpected postgres quoting: %s", got)
	}
	if got := QuoteIdent("postgres", `we"ird`); got != `"we""ird"` {
		t.Fatalf("unexpected escape: %s", got)
	}
}
