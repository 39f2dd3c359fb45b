package tetris

import "fmt"

// Cell records which piece owns a board cell and which local row of that
// piece it comes from. A zero Owner means the cell is empty.
type Cell struct {
	Owner PieceID
	Row   int
}

func (c Cell) Empty() bool {
	return c.Owner == 0
}

// Grid is derived from the piece list. It is rebuilt after every change
// and never edited directly.
type Grid [Rows][Cols]Cell

func (g *Grid) Reset() {
	*g = Grid{}
}

func (g *Grid) Recompute(ps Pieces) error {
	g.Reset()
	for _, p := range ps {
		for r, row := range p.cells {
			for c, filled := range row {
				if !filled {
					continue
				}
				y, x := p.y+r, p.x+c
				if y < 0 || y >= Rows || x < 0 || x >= Cols {
					return fmt.Errorf("piece %d out of the board at (%d,%d)", p.id, x, y)
				}
				if prev := g[y][x]; !prev.Empty() {
					return fmt.Errorf("%w: pieces %d and %d at (%d,%d)", ErrOverlap, prev.Owner, p.id, x, y)
				}
				g[y][x] = Cell{Owner: p.id, Row: r}
			}
		}
	}
	return nil
}

func (g *Grid) RowFull(row int) bool {
	for _, c := range g[row] {
		if c.Empty() {
			return false
		}
	}
	return true
}

func (g *Grid) RowEmpty(row int) bool {
	for _, c := range g[row] {
		if !c.Empty() {
			return false
		}
	}
	return true
}

// FullRow returns the lowest completely filled row, or -1.
func (g *Grid) FullRow() int {
	for y := Rows - 1; y >= 0; y-- {
		if g.RowFull(y) {
			return y
		}
	}
	return -1
}

// Owners lists the distinct owner/row pairs on a board row, left to right.
func (g *Grid) Owners(row int) []Cell {
	owners := make([]Cell, 0, Cols)
	for _, c := range g[row] {
		if c.Empty() {
			continue
		}
		seen := false
		for _, o := range owners {
			if o == c {
				seen = true
				break
			}
		}
		if !seen {
			owners = append(owners, c)
		}
	}
	return owners
}
