package tetris

// PieceID identifies a piece within a session. Zero is never assigned.
type PieceID uint32

const (
	spawnX = 4
	spawnY = 0
)

type Piece struct {
	id      PieceID
	kind    Kind
	cells   [][]bool
	x, y    int
	current bool
}

func newPiece(id PieceID, kind Kind) *Piece {
	return &Piece{
		id:      id,
		kind:    kind,
		cells:   kind.Shape().Cells,
		x:       spawnX,
		y:       spawnY,
		current: true,
	}
}

func (p *Piece) ID() PieceID   { return p.id }
func (p *Piece) Kind() Kind    { return p.kind }
func (p *Piece) X() int        { return p.x }
func (p *Piece) Y() int        { return p.y }
func (p *Piece) Current() bool { return p.current }

func (p *Piece) Width() int {
	if len(p.cells) == 0 {
		return 0
	}
	return len(p.cells[0])
}

func (p *Piece) Height() int {
	return len(p.cells)
}

// Cells returns a copy of the piece's occupancy matrix.
func (p *Piece) Cells() [][]bool {
	return copyCells(p.cells)
}

// Empty reports whether line clears have consumed every cell.
func (p *Piece) Empty() bool {
	for _, row := range p.cells {
		for _, c := range row {
			if c {
				return false
			}
		}
	}
	return true
}

func (p *Piece) inBounds() bool {
	return p.x >= 0 && p.y >= 0 && p.x+p.Width() <= Cols && p.y+p.Height() <= Rows
}

func (p *Piece) occupies(row, col int) bool {
	r, c := row-p.y, col-p.x
	if r < 0 || r >= p.Height() || c < 0 || c >= p.Width() {
		return false
	}
	return p.cells[r][c]
}

func (p *Piece) overlaps(other *Piece) bool {
	if p.x >= other.x+other.Width() || other.x >= p.x+p.Width() ||
		p.y >= other.y+other.Height() || other.y >= p.y+p.Height() {
		return false
	}
	for r, row := range p.cells {
		for c, filled := range row {
			if filled && other.occupies(p.y+r, p.x+c) {
				return true
			}
		}
	}
	return false
}

// Pieces is the collision context pieces move within.
type Pieces []*Piece

// Collides reports whether any occupied cell of p overlaps an occupied
// cell of another piece in ps.
func (ps Pieces) Collides(p *Piece) bool {
	for _, other := range ps {
		if other == p || other.id == p.id {
			continue
		}
		if p.overlaps(other) {
			return true
		}
	}
	return false
}

func (p *Piece) blocked(ps Pieces) bool {
	return !p.inBounds() || ps.Collides(p)
}

func (p *Piece) MoveLeft(ps Pieces) bool {
	p.x--
	if p.blocked(ps) {
		p.x++
		return false
	}
	return true
}

func (p *Piece) MoveRight(ps Pieces) bool {
	p.x++
	if p.blocked(ps) {
		p.x--
		return false
	}
	return true
}

// MoveDown descends one row. When the row below is taken the piece stays
// where it is, stops being current and ErrBottomReached is returned.
func (p *Piece) MoveDown(ps Pieces) error {
	p.y++
	if p.blocked(ps) {
		p.y--
		p.current = false
		return ErrBottomReached
	}
	return nil
}

// SoftDrop is MoveDown that earns a point for the row descended.
func (p *Piece) SoftDrop(ps Pieces) (int, error) {
	if err := p.MoveDown(ps); err != nil {
		return 0, err
	}
	return 1, nil
}

// HardDrop drops the piece as far as it goes, two points per row, and
// always locks it, even when it was already resting.
func (p *Piece) HardDrop(ps Pieces) (int, error) {
	points := 0
	for {
		p.y++
		if p.blocked(ps) {
			p.y--
			break
		}
		points += 2
	}
	p.current = false
	return points, ErrBottomReached
}

// Ghost returns the row the piece would rest on after a hard drop.
// It works on a copy and never writes to p.
func (p *Piece) Ghost(ps Pieces) int {
	g := *p
	for {
		g.y++
		if g.blocked(ps) {
			return g.y - 1
		}
	}
}

// RotateLeft turns the piece a quarter counter-clockwise.
func (p *Piece) RotateLeft(ps Pieces) bool {
	return p.rotate(ps, rotateLeft)
}

// RotateRight turns the piece a quarter clockwise.
func (p *Piece) RotateRight(ps Pieces) bool {
	return p.rotate(ps, rotateRight)
}

// rotate pushes the rotated piece back inside the right, left and bottom
// edges, in that order, then lifts it until it no longer collides. A
// rotation that would have to lift the piece past the top is undone.
func (p *Piece) rotate(ps Pieces, turn func([][]bool) [][]bool) bool {
	cells, x, y := p.cells, p.x, p.y
	p.cells = turn(p.cells)

	for p.x+p.Width() > Cols {
		p.x--
	}
	for p.x < 0 {
		p.x++
	}
	for p.y+p.Height() > Rows {
		p.y--
	}
	for p.y >= 0 && ps.Collides(p) {
		p.y--
	}
	if p.y < 0 {
		p.cells, p.x, p.y = cells, x, y
		return false
	}
	return true
}

func rotateLeft(cells [][]bool) [][]bool {
	h := len(cells)
	if h == 0 {
		return cells
	}
	w := len(cells[0])
	out := make([][]bool, w)
	for i := range out {
		out[i] = make([]bool, h)
		for j := 0; j < h; j++ {
			out[i][j] = cells[j][w-1-i]
		}
	}
	return out
}

func rotateRight(cells [][]bool) [][]bool {
	h := len(cells)
	if h == 0 {
		return cells
	}
	w := len(cells[0])
	out := make([][]bool, w)
	for i := range out {
		out[i] = make([]bool, h)
		for j := 0; j < h; j++ {
			out[i][j] = cells[h-1-j][i]
		}
	}
	return out
}

// removeRow deletes a local row and trims the columns it left empty on
// either side. x moves right by the number of leading columns trimmed so
// the remaining cells keep their board position.
func (p *Piece) removeRow(row int) {
	p.cells = append(p.cells[:row:row], p.cells[row+1:]...)
	if p.Empty() {
		p.cells = nil
		return
	}

	lead := 0
	for lead < p.Width() && columnEmpty(p.cells, lead) {
		lead++
	}
	trail := p.Width()
	for trail > lead && columnEmpty(p.cells, trail-1) {
		trail--
	}
	if lead == 0 && trail == p.Width() {
		return
	}
	for i, r := range p.cells {
		p.cells[i] = r[lead:trail:trail]
	}
	p.x += lead
}

func columnEmpty(cells [][]bool, col int) bool {
	for _, row := range cells {
		if row[col] {
			return false
		}
	}
	return true
}

func copyCells(cells [][]bool) [][]bool {
	out := make([][]bool, len(cells))
	for i, row := range cells {
		out[i] = append([]bool(nil), row...)
	}
	return out
}
