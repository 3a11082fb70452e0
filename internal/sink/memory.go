package sink

import (
	"context"

	"github.com/pkg/errors"

	"domgen/internal/domain"
)

// MemorySink keeps stored cells in memory for tests and embedding.
type MemorySink struct {
	Cells []domain.Cell
	Pos   []PosValue
}

// Store retains the cells and their long-format expansion.
func (s *MemorySink) Store(_ context.Context, cells []domain.Cell) error {
	if len(cells) == 0 {
		return errors.New("generated domain is empty")
	}
	s.Cells = cells
	s.Pos = ExpandPosValues(cells)
	return nil
}
