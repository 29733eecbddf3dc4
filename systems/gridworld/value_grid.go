package gridworld

import (
	"fmt"
	"strings"

	"cyberxp/atomic_float"
)

// ValueGrid is a lock-free cache of each cell's best known action value, one
// AtomicFloat64 per cell. The training loop updates the cell an episode
// ended on after every completed episode, and renders the whole grid into
// the dashboard's snapshot text. Neither side takes a lock, matching the value
// matrix the grid-world's original console trainer kept for exactly this
// reason: many cheap reads against one writer dominating the per-step cost.
type ValueGrid struct {
	columns, rows int
	cells         []*atomic_float.AtomicFloat64
}

// NewValueGrid allocates a columns x rows grid with every cell at 0.
func NewValueGrid(columns, rows int) *ValueGrid {
	cells := make([]*atomic_float.AtomicFloat64, columns*rows)
	for i := range cells {
		cells[i] = atomic_float.NewAtomicFloat64(0)
	}
	return &ValueGrid{columns: columns, rows: rows, cells: cells}
}

func (g *ValueGrid) index(col, row int) int { return row*g.columns + col }

// Update records value as the latest known estimate for (col, row).
func (g *ValueGrid) Update(col, row int, value float64) {
	if col < 0 || row < 0 || col >= g.columns || row >= g.rows {
		return
	}
	g.cells[g.index(col, row)].AtomicSet(value)
}

// At returns the latest value recorded for (col, row), or 0 if never set.
func (g *ValueGrid) At(col, row int) float64 {
	if col < 0 || row < 0 || col >= g.columns || row >= g.rows {
		return 0
	}
	return g.cells[g.index(col, row)].AtomicRead()
}

// String renders the grid as a plain table of fixed-width values, for the
// dashboard's text panel.
func (g *ValueGrid) String() string {
	var b strings.Builder
	for r := 0; r < g.rows; r++ {
		for c := 0; c < g.columns; c++ {
			fmt.Fprintf(&b, "%7.2f", g.At(c, r))
		}
		b.WriteByte('\n')
	}
	return b.String()
}
