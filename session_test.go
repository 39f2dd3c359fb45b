package tetris

import (
	"bytes"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func repeat(k Kind, n int) []Kind {
	kinds := make([]Kind, n)
	for i := range kinds {
		kinds[i] = k
	}
	return kinds
}

func newTestSession(t *testing.T, kinds ...Kind) *Session {
	t.Helper()
	return NewSession(WithGetter(NewQueueGetter(kinds...)))
}

// boardWith replaces the session's board with the given settled pieces and
// no falling piece.
func boardWith(t *testing.T, s *Session, pieces ...*Piece) {
	t.Helper()
	s.pieces = nil
	s.byID.Clear()
	s.current = 0
	for _, p := range pieces {
		p.current = false
		s.pieces = append(s.pieces, p)
		s.byID.Put(p.id, p)
		if p.id > s.lastID {
			s.lastID = p.id
		}
	}
	require.NoError(t, s.grid.Recompute(s.pieces))
}

// moveTo slides the current piece to column x.
func moveTo(t *testing.T, s *Session, x int) {
	t.Helper()
	for s.Current().X() > x {
		require.NoError(t, s.Move(DirectionLeft))
	}
	for s.Current().X() < x {
		require.NoError(t, s.Move(DirectionRight))
	}
	require.Equal(t, x, s.Current().X())
}

func TestNewSessionFillsLookahead(t *testing.T) {
	s := newTestSession(t, KindT, KindI, KindO, KindS, KindZ)

	require.NotNil(t, s.Current())
	assert.Equal(t, KindT, s.Current().Kind())
	assert.Equal(t, [3]Kind{KindI, KindO, KindS}, s.Next())
	assert.Equal(t, 1, s.Level())
	assert.Zero(t, s.Score())
	assert.Zero(t, s.Combo())
	assert.False(t, s.IsOver())
	assert.Len(t, s.Pieces(), 1)

	_, held := s.Held()
	assert.False(t, held)
}

func TestMoveRejectsUnknownDirection(t *testing.T) {
	s := newTestSession(t, repeat(KindT, 4)...)
	assert.ErrorIs(t, s.Move(DirectionNone), ErrInvalidDirection)
	assert.ErrorIs(t, s.Move(Direction(99)), ErrInvalidDirection)
}

func TestMovesKeepPiecesApart(t *testing.T) {
	s := newTestSession(t, repeat(KindT, 4)...)
	boardWith(t, s, pieceAt(1, KindI, 2, 0), pieceAt(2, KindI, 7, 0))
	require.NoError(t, s.place(KindT))

	for i := 0; i < 5; i++ {
		require.NoError(t, s.Move(DirectionLeft))
		require.NoError(t, s.Move(DirectionRight))
		require.NoError(t, s.Move(DirectionRight))
	}
	p := s.Current()
	assert.Equal(t, 4, p.X())
	assert.False(t, s.pieces.Collides(p))
	assert.NoError(t, s.grid.Recompute(s.pieces))
}

func TestRotateOIsNoop(t *testing.T) {
	s := newTestSession(t, repeat(KindO, 4)...)
	before := s.Current().Cells()
	require.NoError(t, s.RotateLeft())
	require.NoError(t, s.RotateRight())
	assert.Equal(t, before, s.Current().Cells())
	assert.Equal(t, 4, s.Current().X())
}

func TestTickDescendsAndLocks(t *testing.T) {
	s := newTestSession(t, repeat(KindI, 6)...)
	for i := 0; i < Rows-4; i++ {
		require.NoError(t, s.Tick())
	}
	first := s.Current()
	assert.Equal(t, Rows-4, first.Y())

	require.ErrorIs(t, s.Tick(), ErrBottomReached)
	assert.False(t, first.Current())
	assert.NotSame(t, first, s.Current())
	assert.Equal(t, 0, s.Current().Y())
	assert.Len(t, s.Pieces(), 2)
	assert.Zero(t, s.Score())
}

func TestSoftDropScoresPerRow(t *testing.T) {
	s := newTestSession(t, repeat(KindO, 6)...)
	for i := 0; i < 3; i++ {
		require.NoError(t, s.Move(DirectionSoftDrop))
	}
	assert.Equal(t, 3, s.Score())
	assert.Equal(t, 3, s.Current().Y())
}

func TestSingleLineClear(t *testing.T) {
	s := newTestSession(t, append([]Kind{KindI, KindI, KindO}, repeat(KindT, 6)...)...)

	require.NoError(t, s.RotateLeft())
	moveTo(t, s, 0)
	require.ErrorIs(t, s.Move(DirectionHardDrop), ErrBottomReached)
	assert.Equal(t, 38, s.Score())

	require.NoError(t, s.RotateLeft())
	require.ErrorIs(t, s.Move(DirectionHardDrop), ErrBottomReached)
	assert.Equal(t, 76, s.Score())
	assert.Zero(t, s.Combo())

	require.Equal(t, KindO, s.Current().Kind())
	moveTo(t, s, 8)
	require.ErrorIs(t, s.Move(DirectionHardDrop), ErrBottomReached)

	// 36 for the drop, 100 for the line: the O fragment keeps the bottom
	// row from being empty.
	assert.Equal(t, 76+36+100, s.Score())
	assert.Equal(t, 1, s.Combo())
	assert.Equal(t, 1, s.Level())
	assert.Equal(t, 1, s.State().Lines)
	assert.Equal(t, 9, s.State().LinesToNextLevel)

	pieces := s.Pieces()
	require.Len(t, pieces, 2)
	fragment := pieces[0]
	assert.Equal(t, KindO, fragment.Kind())
	assert.Equal(t, [][]bool{{true, true}}, fragment.Cells())
	assert.Equal(t, 8, fragment.X())
	assert.Equal(t, Rows-1, fragment.Y())
	assert.Equal(t, KindT, s.Current().Kind())
}

func TestTetrisOnEmptyBoardAndCombo(t *testing.T) {
	s := newTestSession(t, repeat(KindI, 40)...)

	dropColumns := func() {
		for x := 0; x < Cols; x++ {
			moveTo(t, s, x)
			require.ErrorIs(t, s.Move(DirectionHardDrop), ErrBottomReached)
		}
	}

	dropColumns()
	assert.Equal(t, Cols*32+2000, s.Score())
	assert.Equal(t, 1, s.Combo())
	assert.Equal(t, 4, s.State().Lines)
	assert.Len(t, s.Pieces(), 1)
	assert.True(t, s.grid.RowEmpty(Rows-1))

	dropColumns()
	assert.Equal(t, 2*(Cols*32+2000)+50, s.Score())
	assert.Equal(t, 2, s.Combo())
	assert.Equal(t, 8, s.State().Lines)
	assert.Equal(t, 1, s.Level())

	score := s.Score()
	require.ErrorIs(t, s.Move(DirectionHardDrop), ErrBottomReached)
	assert.Equal(t, score+32, s.Score())
	assert.Zero(t, s.Combo())
}

func TestLineClearFragmentsAndResettles(t *testing.T) {
	s := newTestSession(t, repeat(KindT, 4)...)
	jay := pieceAt(1, KindJ, 0, Rows-3)
	boardWith(t, s,
		jay,
		horizontalI(2, 2, Rows-3),
		horizontalI(3, 6, Rows-3),
	)

	lines, err := s.clearLines()
	require.NoError(t, err)
	assert.Equal(t, 1, lines)

	require.Len(t, s.pieces, 1)
	assert.Same(t, jay, s.pieces[0])
	assert.Equal(t, [][]bool{{true}, {true}}, jay.Cells())
	assert.Equal(t, 1, jay.X())
	assert.Equal(t, Rows-2, jay.Y())

	_, ok := s.byID.Get(2)
	assert.False(t, ok)
	assert.Equal(t, Cell{Owner: 1, Row: 1}, s.grid[Rows-1][1])
}

func TestLineClearCascades(t *testing.T) {
	s := newTestSession(t, repeat(KindT, 4)...)
	// Row 19 is full. Once it is gone everything above falls a row and
	// fills row 19 again.
	boardWith(t, s,
		horizontalI(1, 0, Rows-1),
		horizontalI(2, 4, Rows-1),
		pieceAt(3, KindO, 8, Rows-2),
		horizontalI(4, 0, Rows-3),
		horizontalI(5, 4, Rows-3),
	)

	lines, err := s.clearLines()
	require.NoError(t, err)
	assert.Equal(t, 2, lines)
	assert.Empty(t, s.pieces)
	assert.Equal(t, -1, s.grid.FullRow())
}

func TestFallRepeatsUntilNothingMoves(t *testing.T) {
	s := newTestSession(t, repeat(KindT, 4)...)
	upper := dot(1, 0, 5)
	lower := dot(2, 0, 10)
	boardWith(t, s, upper, lower)

	s.fall()
	assert.Equal(t, Rows-2, upper.Y())
	assert.Equal(t, Rows-1, lower.Y())
}

func TestSpawnTopOut(t *testing.T) {
	s := newTestSession(t, repeat(KindT, 8)...)
	boardWith(t, s, pieceAt(1, KindI, 4, 0))
	before := s.Pieces()

	require.ErrorIs(t, s.spawn(), ErrTopReached)
	assert.True(t, s.IsOver())
	assert.Equal(t, before, s.Pieces())
	assert.Nil(t, s.Current())

	assert.ErrorIs(t, s.Move(DirectionLeft), ErrGameOver)
	assert.ErrorIs(t, s.Tick(), ErrGameOver)
	assert.ErrorIs(t, s.Hold(), ErrGameOver)
	assert.ErrorIs(t, s.RotateLeft(), ErrGameOver)
}

func TestLockReportsTopOut(t *testing.T) {
	s := newTestSession(t, repeat(KindI, 10)...)
	for i := 0; i < 4; i++ {
		err := s.Move(DirectionHardDrop)
		require.ErrorIs(t, err, ErrBottomReached)
	}
	assert.ErrorIs(t, s.Move(DirectionHardDrop), ErrTopReached)
	assert.True(t, s.IsOver())
	assert.True(t, s.State().IsOver)
}

func TestHold(t *testing.T) {
	s := newTestSession(t, KindT, KindI, KindO, KindS, KindZ, KindL, KindJ)

	require.NoError(t, s.RotateRight())
	require.NoError(t, s.Hold())
	held, ok := s.Held()
	require.True(t, ok)
	assert.Equal(t, KindT, held)
	assert.True(t, s.HoldUsed())
	assert.Equal(t, KindI, s.Current().Kind())
	assert.Equal(t, [3]Kind{KindO, KindS, KindZ}, s.Next())
	assert.Len(t, s.Pieces(), 1)

	// A second hold before the next lock does nothing.
	cur := s.Current()
	require.NoError(t, s.Hold())
	assert.Same(t, cur, s.Current())
	held, _ = s.Held()
	assert.Equal(t, KindT, held)

	require.ErrorIs(t, s.Move(DirectionHardDrop), ErrBottomReached)
	assert.False(t, s.HoldUsed())
	assert.Equal(t, KindO, s.Current().Kind())

	require.NoError(t, s.Hold())
	held, _ = s.Held()
	assert.Equal(t, KindO, held)
	p := s.Current()
	assert.Equal(t, KindT, p.Kind())
	assert.Equal(t, KindT.Shape().Cells, p.Cells())
	assert.Equal(t, 4, p.X())
	assert.Equal(t, 0, p.Y())
	assert.Equal(t, [3]Kind{KindS, KindZ, KindL}, s.Next())
}

func TestHoldKeepsScoreAndCombo(t *testing.T) {
	s := newTestSession(t, repeat(KindT, 8)...)
	s.score, s.combo = 500, 2
	require.NoError(t, s.Hold())
	assert.Equal(t, 500, s.Score())
	assert.Equal(t, 2, s.Combo())
}

func TestHoldIntoTopOut(t *testing.T) {
	s := newTestSession(t, repeat(KindT, 8)...)
	s.held, s.hasHeld = KindI, true
	boardWith(t, s, dot(1, 4, 3))
	require.NoError(t, s.place(KindT))

	require.ErrorIs(t, s.Hold(), ErrTopReached)
	assert.True(t, s.IsOver())
}

func TestCompleteHandlerSeesEveryLock(t *testing.T) {
	var got []int
	s := NewSession(
		WithGetter(NewQueueGetter(repeat(KindI, 20)...)),
		WithCompleteHandler(CompleteHandlerFunc(func(rows int) {
			got = append(got, rows)
		})),
	)
	for x := 0; x < Cols; x++ {
		moveTo(t, s, x)
		require.ErrorIs(t, s.Move(DirectionHardDrop), ErrBottomReached)
	}
	assert.Equal(t, []int{0, 0, 0, 0, 0, 0, 0, 0, 0, 4}, got)
}

func TestLoggerReceivesEvents(t *testing.T) {
	buf := &bytes.Buffer{}
	s := NewSession(
		WithGetter(NewQueueGetter(repeat(KindI, 20)...)),
		WithLogger(log.New(buf, "", 0)),
	)
	for x := 0; x < Cols; x++ {
		moveTo(t, s, x)
		require.ErrorIs(t, s.Move(DirectionHardDrop), ErrBottomReached)
	}
	assert.Contains(t, buf.String(), s.ID().String())
	assert.Contains(t, buf.String(), "cleared 4 lines")
}

func TestRenderShowsPieceAndGhost(t *testing.T) {
	s := newTestSession(t, repeat(KindI, 6)...)
	frame := s.Render()

	for y := 0; y < 4; y++ {
		assert.Equal(t, Tile{Type: TileCurrent, Color: ColorCyan}, frame[y][4])
	}
	for y := Rows - 4; y < Rows; y++ {
		assert.Equal(t, Tile{Type: TileGhost, Color: ColorCyan}, frame[y][4])
	}
	assert.Equal(t, TileEmpty, frame[10][4].Type)

	require.ErrorIs(t, s.Move(DirectionHardDrop), ErrBottomReached)
	frame = s.Render()
	assert.Equal(t, TileSettled, frame[Rows-1][4].Type)
	assert.Equal(t, TileCurrent, frame[0][4].Type)
	assert.Equal(t, TileGhost, frame[Rows-5][4].Type)
}

func TestStateSnapshot(t *testing.T) {
	s := newTestSession(t, KindL, KindJ, KindZ, KindS, KindO)
	state := s.State()

	assert.Equal(t, s.ID(), state.ID)
	require.NotNil(t, state.Current)
	assert.Equal(t, KindL, state.Current.Kind)
	assert.Equal(t, ColorOrange, state.Current.Color)
	assert.Equal(t, Rows-3, state.Current.GhostY)
	assert.Equal(t, [3]Kind{KindJ, KindZ, KindS}, state.Next)
	assert.Equal(t, 10, state.LinesToNextLevel)
	assert.Equal(t, 1, state.Level)

	state.Current.Cells[0][0] = false
	assert.True(t, s.Current().Cells()[0][0])
}
