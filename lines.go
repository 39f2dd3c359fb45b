package tetris

import "fmt"

// clearLines removes every full row. Each row slices the pieces crossing
// it, after which the non-current pieces fall as far as they can. Rows
// shift as pieces fall, so the board is scanned again from the bottom
// after every clear. It returns how many rows were removed.
func (s *Session) clearLines() (int, error) {
	lines := 0
	for {
		row := s.grid.FullRow()
		if row < 0 {
			return lines, nil
		}
		lines++

		for _, owner := range s.grid.Owners(row) {
			p, ok := s.byID.Get(owner.Owner)
			if !ok {
				return lines, fmt.Errorf("row %d is owned by unknown piece %d", row, owner.Owner)
			}
			p.removeRow(owner.Row)
			if p.Empty() {
				s.removePiece(p.id)
			}
		}

		s.fall()
		if err := s.grid.Recompute(s.pieces); err != nil {
			return lines, err
		}
	}
}

// fall drops every settled piece until none of them can move. Pieces are
// visited in board order, so passes repeat until a pass moves nothing:
// a piece resting on one that falls later gets another chance.
func (s *Session) fall() {
	for moved := true; moved; {
		moved = false
		for _, p := range s.pieces {
			if p.id == s.current {
				continue
			}
			for p.MoveDown(s.pieces) == nil {
				moved = true
			}
		}
	}
}
