// Package tetris simulates a falling-block puzzle in which pieces stay
// whole on the board. Clearing a line slices through the pieces that
// cross it, and the leftover fragments fall as units until they rest.
package tetris

import (
	"fmt"

	"github.com/google/uuid"
)

const (
	Rows = 20
	Cols = 10
)

type Direction int

const (
	DirectionNone Direction = iota
	DirectionLeft
	DirectionRight
	DirectionSoftDrop
	DirectionHardDrop
)

func (d Direction) Valid() bool {
	return d >= DirectionLeft && d <= DirectionHardDrop
}

func (d Direction) String() string {
	switch d {
	case DirectionNone:
		return "none"
	case DirectionLeft:
		return "left"
	case DirectionRight:
		return "right"
	case DirectionSoftDrop:
		return "soft-drop"
	case DirectionHardDrop:
		return "hard-drop"
	}
	return fmt.Sprintf("Direction(%d)", int(d))
}

type TileType int

const (
	TileEmpty TileType = iota
	TileSettled
	TileCurrent
	TileGhost
)

type Tile struct {
	Type  TileType
	Color Color
}

// PieceState describes the falling piece for rendering.
type PieceState struct {
	Kind   Kind
	Color  Color
	Cells  [][]bool
	X, Y   int
	GhostY int
}

type State struct {
	ID      uuid.UUID
	Current *PieceState
	Next    [lookahead]Kind
	Held    Kind
	HasHeld bool

	HoldUsed         bool
	Score            int
	Level            int
	Lines            int
	LinesToNextLevel int
	Combo            int
	IsOver           bool
}

func (s *Session) State() State {
	state := State{
		ID:               s.id,
		Next:             s.next,
		Held:             s.held,
		HasHeld:          s.hasHeld,
		HoldUsed:         s.holdUsed,
		Score:            s.score,
		Level:            s.level,
		Lines:            s.totalLines,
		LinesToNextLevel: linesPerLevel - s.lines,
		Combo:            s.combo,
		IsOver:           s.isOver,
	}
	if p := s.Current(); p != nil {
		state.Current = &PieceState{
			Kind:   p.kind,
			Color:  p.kind.Color(),
			Cells:  p.Cells(),
			X:      p.x,
			Y:      p.y,
			GhostY: p.Ghost(s.pieces),
		}
	}
	return state
}

// Render returns the board as it should be drawn: settled cells, the
// falling piece, and its ghost where that does not cover anything.
func (s *Session) Render() [Rows][Cols]Tile {
	var frame [Rows][Cols]Tile
	for y := 0; y < Rows; y++ {
		for x := 0; x < Cols; x++ {
			c := s.grid[y][x]
			if c.Empty() || c.Owner == s.current {
				continue
			}
			p, ok := s.byID.Get(c.Owner)
			if !ok {
				continue
			}
			frame[y][x] = Tile{Type: TileSettled, Color: p.kind.Color()}
		}
	}

	p := s.Current()
	if p == nil {
		return frame
	}
	color := p.kind.Color()
	ghostY := p.Ghost(s.pieces)
	for r, row := range p.cells {
		for c, filled := range row {
			if !filled {
				continue
			}
			if gy := ghostY + r; gy < Rows && frame[gy][p.x+c].Type == TileEmpty {
				frame[gy][p.x+c] = Tile{Type: TileGhost, Color: color}
			}
		}
	}
	for r, row := range p.cells {
		for c, filled := range row {
			if filled {
				frame[p.y+r][p.x+c] = Tile{Type: TileCurrent, Color: color}
			}
		}
	}
	return frame
}
