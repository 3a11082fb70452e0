// Package sink persists generated domains: a wide cell_domain table and
// its long-format pos_values expansion.
package sink

import (
	"strings"

	"domgen/internal/domain"
)

// Separator joins domain values for storage. It is reserved: legitimate
// data values must not contain it, and a sink adopting this format
// verbatim has to guard against collisions.
const Separator = "|||"

// PosValue is one row of the long-format expansion: a single candidate
// value of a random variable.
type PosValue struct {
	VID       int64
	CID       int64
	TID       int64
	Attribute string
	Value     string
	Rank      int
}

// SerializeDomain joins a cell's candidate values with the reserved
// separator.
func SerializeDomain(values []string) string {
	return strings.Join(values, Separator)
}

// ExpandPosValues derives the long format from generated cells: one row
// per candidate value per variable, ranked 1-based in domain order. Cells
// without a variable id are skipped; they are not modeled.
func ExpandPosValues(cells []domain.Cell) []PosValue {
	var out []PosValue
	for _, cell := range cells {
		if cell.VID == domain.NoVID {
			continue
		}
		for i, value := range cell.Domain {
			out = append(out, PosValue{
				VID:       cell.VID,
				CID:       cell.CID,
				TID:       cell.TID,
				Attribute: cell.Attribute,
				Value:     value,
				Rank:      i + 1,
			})
		}
	}
	return out
}
