package sink

import (
	"context"
	"reflect"
	"strings"
	"testing"

	"domgen/internal/domain"
)

func testCells() []domain.Cell {
	return []domain.Cell{
		{TID: 0, CID: 1, VID: 0, Attribute: "shape", Domain: []string{"circle", "square"}, InitValue: "circle"},
		{TID: 1, CID: 3, VID: domain.NoVID, Attribute: "shape", Domain: []string{"circle"}, InitValue: "circle"},
		{TID: 2, CID: 5, VID: 1, Attribute: "shape", Domain: []string{"square", "circle"}, InitValue: "square", Fixed: true},
	}
}

func TestSerializeDomain(t *testing.T) {
	if got := SerializeDomain([]string{"a", "b", "c"}); got != "a|||b|||c" {
		t.Fatalf("unexpected serialization: %s", got)
	}
	if got := SerializeDomain([]string{"only"}); got != "only" {
		t.Fatalf("unexpected singleton serialization: %s", got)
	}
}

func TestExpandPosValues(t *testing.T) {
	got := ExpandPosValues(testCells())
	want := []PosValue{
		{VID: 0, CID: 1, TID: 0, Attribute: "shape", Value: "circle", Rank: 1},
		{VID: 0, CID: 1, TID: 0, Attribute: "shape", Value: "square", Rank: 2},
		{VID: 1, CID: 5, TID: 2, Attribute: "shape", Value: "square", Rank: 1},
		{VID: 1, CID: 5, TID: 2, Attribute: "shape", Value: "circle", Rank: 2},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected expansion:\ngot  %v\nwant %v", got, want)
	}
}

func TestExpandPosValuesSkipsUnmodeledCells(t *testing.T) {
	for _, pv := range ExpandPosValues(testCells()) {
		if pv.TID == 1 {
			t.Fatalf("cell without variable id leaked into pos values: %+v", pv)
		}
	}
}

func TestMemorySinkRejectsEmptyDomain(t *testing.T) {
	var s MemorySink
	if err := s.Store(context.Background(), nil); err == nil {
		t.Fatalf("expected error for empty domain")
	}
}

func TestInsertStmtPlaceholders(t *testing.T) {
	mysql := insertStmt("mysql", "cell_domain", []string{"a", "b"}, 2)
	if !strings.Contains(mysql, "(?, ?), (?, ?)") {
		t.Fatalf("unexpected mysql statement: %s", mysql)
	}
	pg := insertStmt("postgres", "cell_domain", []string{"a", "b"}, 2)
	if !strings.Contains(pg, "($1, $2), ($3, $4)") {
		t.Fatalf("unexpected postgres statement: %s", pg)
	}
	if !strings.HasPrefix(pg, `INSERT INTO "cell_domain" ("a", "b") VALUES `) {
		t.Fatalf("unexpected postgres prefix: %s", pg)
	}
}
