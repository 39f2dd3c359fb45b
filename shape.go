package tetris

import (
	"fmt"
	"strings"
)

type Kind int

const (
	KindO Kind = iota
	KindT
	KindI
	KindL
	KindJ
	KindZ
	KindS
)

// Kinds lists every piece kind in catalog order.
var Kinds = [...]Kind{KindO, KindT, KindI, KindL, KindJ, KindZ, KindS}

type Color int

const (
	ColorNone Color = iota
	ColorYellow
	ColorMagenta
	ColorCyan
	ColorOrange
	ColorBlue
	ColorRed
	ColorGreen
)

// Shape is the spawn form of a piece kind.
type Shape struct {
	Kind  Kind
	Cells [][]bool
	Color Color
}

type shapeTemplate struct {
	name  string
	cells [][]int
	color Color
}

var catalog = [...]shapeTemplate{
	KindO: {name: "O", color: ColorYellow, cells: [][]int{
		{1, 1},
		{1, 1},
	}},
	KindT: {name: "T", color: ColorMagenta, cells: [][]int{
		{1, 1, 1},
		{0, 1, 0},
	}},
	KindI: {name: "I", color: ColorCyan, cells: [][]int{
		{1},
		{1},
		{1},
		{1},
	}},
	KindL: {name: "L", color: ColorOrange, cells: [][]int{
		{1, 1},
		{1, 0},
		{1, 0},
	}},
	KindJ: {name: "J", color: ColorBlue, cells: [][]int{
		{1, 1},
		{0, 1},
		{0, 1},
	}},
	KindZ: {name: "Z", color: ColorRed, cells: [][]int{
		{0, 1},
		{1, 1},
		{1, 0},
	}},
	KindS: {name: "S", color: ColorGreen, cells: [][]int{
		{1, 0},
		{1, 1},
		{0, 1},
	}},
}

func (k Kind) Valid() bool {
	return k >= KindO && k <= KindS
}

func (k Kind) String() string {
	if !k.Valid() {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return catalog[k].name
}

func (k Kind) Color() Color {
	if !k.Valid() {
		return ColorNone
	}
	return catalog[k].color
}

// Shape returns a fresh copy of the kind's spawn matrix. It panics on an
// invalid kind.
func (k Kind) Shape() Shape {
	if !k.Valid() {
		panic(fmt.Errorf("%w: %d", ErrInvalidKind, int(k)))
	}
	t := catalog[k]
	cells := make([][]bool, len(t.cells))
	for y, row := range t.cells {
		cells[y] = make([]bool, len(row))
		for x, v := range row {
			cells[y][x] = v == 1
		}
	}
	return Shape{Kind: k, Cells: cells, Color: t.color}
}

// ParseKind maps a one letter name (case insensitive) to its kind.
func ParseKind(name string) (Kind, error) {
	for _, k := range Kinds {
		if strings.EqualFold(catalog[k].name, name) {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidKind, name)
}

func (c Color) String() string {
	switch c {
	case ColorYellow:
		return "yellow"
	case ColorMagenta:
		return "magenta"
	case ColorCyan:
		return "cyan"
	case ColorOrange:
		return "orange"
	case ColorBlue:
		return "blue"
	case ColorRed:
		return "red"
	case ColorGreen:
		return "green"
	}
	return "none"
}
