// Package dataset defines the dataset collaborator contract: raw rows,
// frequency statistics, cell identity, and the active-attribute set.
package dataset

import "context"

// NullValue is the sentinel stored for SQL NULL and absent values. It is
// treated as a category of its own everywhere downstream.
const NullValue = "_nan_"

// Row is one dataset record: an entity id plus named attribute values.
// Absent values carry NullValue.
type Row struct {
	TID    int64
	Values map[string]string
}

// Value returns the row's value for attr, or NullValue when unset.
func (r Row) Value(attr string) string {
	if v, ok := r.Values[attr]; ok && v != "" {
		return v
	}
	return NullValue
}

// AttrPair is an ordered attribute pair: co-occurrence of Target values
// conditioned on a value of Cond.
type AttrPair struct {
	Cond   string
	Target string
}

// Statistics holds the frequency statistics computed over one dataset.
// Single maps attribute -> value -> occurrence count. Pair maps an ordered
// attribute pair -> cond value -> target value -> joint count. A pair with
// no joint non-null observation is absent from Pair entirely; that absence
// is meaningful and must be preserved by consumers.
type Statistics struct {
	Total  int
	Single map[string]map[string]int
	Pair   map[AttrPair]map[string]map[string]int
}

// Provider supplies the raw dataset and its derived statistics.
type Provider interface {
	// Attributes returns the data attributes in sorted order, excluding
	// the entity id column.
	Attributes() []string
	// Rows returns all records in original dataset order.
	Rows(ctx context.Context) ([]Row, error)
	// Statistics returns total row count plus single and pairwise
	// frequency statistics.
	Statistics(ctx context.Context) (Statistics, error)
	// CellID returns the stable unique identifier of the (entity,
	// attribute) cell.
	CellID(tid int64, attr string) (int64, error)
	// ActiveAttributes returns the attributes containing at least one
	// flagged cell. It fails when the set is empty.
	ActiveAttributes(ctx context.Context) ([]string, error)
}
