package dataset

import (
	"context"
	"sort"

	"github.com/pkg/errors"
)

// MemoryProvider serves a dataset held in memory. It backs tests and
// embedded use where no database is involved.
type MemoryProvider struct {
	attrs  []string
	rows   []Row
	active []string
}

// NewMemory builds a provider over rows. Attributes are collected from the
// rows and sorted; active names the attributes to generate domains for.
func NewMemory(rows []Row, active []string) *MemoryProvider {
	seen := map[string]bool{}
	for _, row := range rows {
		for attr := range row.Values {
			seen[attr] = true
		}
	}
	attrs := make([]string, 0, len(seen))
	for attr := range seen {
		attrs = append(attrs, attr)
	}
	sort.Strings(attrs)
	return &MemoryProvider{attrs: attrs, rows: rows, active: active}
}

// Attributes returns the sorted data attributes.
func (p *MemoryProvider) Attributes() []string {
	return p.attrs
}

// Rows returns all records in insertion order.
func (p *MemoryProvider) Rows(context.Context) ([]Row, error) {
	return p.rows, nil
}

// Statistics computes frequency statistics over the held rows.
func (p *MemoryProvider) Statistics(context.Context) (Statistics, error) {
	return BuildStatistics(p.rows, p.attrs), nil
}

// CellID derives a stable cell id from the entity id and the attribute's
// position in the sorted attribute list.
func (p *MemoryProvider) CellID(tid int64, attr string) (int64, error) {
	idx := sort.SearchStrings(p.attrs, attr)
	if idx >= len(p.attrs) || p.attrs[idx] != attr {
		return 0, errors.Errorf("unknown attribute %q", attr)
	}
	return tid*int64(len(p.attrs)) + int64(idx), nil
}

// ActiveAttributes returns the configured active set.
func (p *MemoryProvider) ActiveAttributes(context.Context) ([]string, error) {
	if len(p.active) == 0 {
		return nil, errors.New("no attribute contains flagged cells")
	}
	out := make([]string, len(p.active))
	copy(out, p.active)
	sort.Strings(out)
	return out, nil
}
