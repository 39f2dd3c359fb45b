package tetris

import (
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/kamstrup/intmap"
)

const lookahead = 3

type CompleteHandler interface {
	OnCompleted(rows int)
}

type CompleteHandlerFunc func(rows int)

func (f CompleteHandlerFunc) OnCompleted(rows int) {
	f(rows)
}

// Session is one game: the falling piece, the settled pieces, the
// lookahead queue, the hold slot and the score. It is not safe for
// concurrent use.
type Session struct {
	id              uuid.UUID
	getter          KindGetter
	completeHandler CompleteHandler
	logger          *log.Logger

	pieces  Pieces
	byID    *intmap.Map[PieceID, *Piece]
	current PieceID
	lastID  PieceID
	grid    Grid

	next     [lookahead]Kind
	held     Kind
	hasHeld  bool
	holdUsed bool

	score      int
	level      int
	lines      int
	totalLines int
	combo      int
	isOver     bool
}

type SessionOption func(*Session)

func WithGetter(getter KindGetter) SessionOption {
	if getter == nil {
		panic(fmt.Errorf("kind getter cannot be nil"))
	}
	return func(s *Session) {
		s.getter = getter
	}
}

func WithSeed(seed int64) SessionOption {
	return WithGetter(NewBagGetter(seed))
}

func WithCompleteHandler(handler CompleteHandler) SessionOption {
	return func(s *Session) {
		s.completeHandler = handler
	}
}

func WithLogger(logger *log.Logger) SessionOption {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func NewSession(options ...SessionOption) *Session {
	s := &Session{
		id:     uuid.New(),
		getter: NewBagGetter(time.Now().UnixNano()),
		logger: log.New(io.Discard, "", 0),
		byID:   intmap.New[PieceID, *Piece](Rows * Cols),
		level:  1,
	}
	for _, opt := range options {
		opt(s)
	}

	first := s.getter.Next()
	for i := range s.next {
		s.next[i] = s.getter.Next()
	}
	if err := s.place(first); err != nil {
		panic(fmt.Errorf("cannot place the first piece: %w", err))
	}
	s.logger.Printf("session %s: started with %v, next %v\n", s.id, first, s.next)
	return s
}

func (s *Session) ID() uuid.UUID { return s.id }
func (s *Session) Score() int    { return s.score }
func (s *Session) Level() int    { return s.level }
func (s *Session) Combo() int    { return s.combo }
func (s *Session) IsOver() bool  { return s.isOver }

// Next returns the upcoming kinds, soonest first.
func (s *Session) Next() [lookahead]Kind { return s.next }

// Held returns the kind in the hold slot, if any.
func (s *Session) Held() (Kind, bool) { return s.held, s.hasHeld }

func (s *Session) HoldUsed() bool { return s.holdUsed }

// Current returns the falling piece, or nil once the session is over.
func (s *Session) Current() *Piece {
	if s.current == 0 {
		return nil
	}
	p, ok := s.byID.Get(s.current)
	if !ok {
		return nil
	}
	return p
}

// Pieces returns every piece on the board, the current one included.
func (s *Session) Pieces() Pieces {
	return append(Pieces(nil), s.pieces...)
}

// Move applies one movement step to the current piece. Soft and hard
// drops add their points to the score. When the piece cannot descend it
// is locked, lines are cleared, the next piece spawns and
// ErrBottomReached is returned; ErrTopReached is returned instead when
// that spawn fails.
func (s *Session) Move(d Direction) error {
	if !d.Valid() {
		return fmt.Errorf("%w: %v", ErrInvalidDirection, d)
	}
	p, err := s.active()
	if err != nil {
		return err
	}

	var points int
	switch d {
	case DirectionLeft:
		p.MoveLeft(s.pieces)
	case DirectionRight:
		p.MoveRight(s.pieces)
	case DirectionSoftDrop:
		points, err = p.SoftDrop(s.pieces)
	case DirectionHardDrop:
		points, err = p.HardDrop(s.pieces)
	}
	s.score += points
	return s.afterMove(err)
}

// Tick is one step of gravity.
func (s *Session) Tick() error {
	p, err := s.active()
	if err != nil {
		return err
	}
	return s.afterMove(p.MoveDown(s.pieces))
}

// RotateLeft turns the current piece counter-clockwise. O pieces do not
// rotate.
func (s *Session) RotateLeft() error {
	return s.rotate((*Piece).RotateLeft)
}

// RotateRight turns the current piece clockwise.
func (s *Session) RotateRight() error {
	return s.rotate((*Piece).RotateRight)
}

func (s *Session) rotate(turn func(*Piece, Pieces) bool) error {
	p, err := s.active()
	if err != nil {
		return err
	}
	if p.kind == KindO {
		return nil
	}
	if turn(p, s.pieces) {
		return s.grid.Recompute(s.pieces)
	}
	return nil
}

// Hold parks the current piece's kind in the hold slot. A previously held
// kind comes back as a fresh piece at the spawn origin, otherwise the
// next piece spawns. Only one hold is allowed per spawned piece; extra
// calls do nothing.
func (s *Session) Hold() error {
	p, err := s.active()
	if err != nil {
		return err
	}
	if s.holdUsed {
		return nil
	}

	s.removePiece(p.id)
	s.current = 0
	if s.hasHeld {
		k := s.held
		s.held = p.kind
		err = s.place(k)
	} else {
		s.held, s.hasHeld = p.kind, true
		err = s.spawn()
	}
	s.holdUsed = true
	s.logger.Printf("session %s: held %v\n", s.id, s.held)
	return err
}

func (s *Session) active() (*Piece, error) {
	if s.isOver {
		return nil, ErrGameOver
	}
	p := s.Current()
	if p == nil {
		return nil, ErrGameOver
	}
	return p, nil
}

func (s *Session) afterMove(err error) error {
	if errors.Is(err, ErrBottomReached) {
		if err := s.lock(); err != nil {
			return err
		}
		return ErrBottomReached
	}
	if err != nil {
		return err
	}
	return s.grid.Recompute(s.pieces)
}

// lock settles the piece that just stopped, clears lines, scores them and
// spawns the next piece.
func (s *Session) lock() error {
	s.current = 0
	if err := s.grid.Recompute(s.pieces); err != nil {
		return err
	}
	lines, err := s.clearLines()
	if err != nil {
		return err
	}
	s.award(lines)
	if lines > 0 {
		s.logger.Printf("session %s: cleared %d lines, score=%d level=%d combo=%d\n", s.id, lines, s.score, s.level, s.combo)
	}
	if s.completeHandler != nil {
		s.completeHandler.OnCompleted(lines)
	}
	return s.spawn()
}

func (s *Session) spawn() error {
	k := s.next[0]
	copy(s.next[:], s.next[1:])
	s.next[lookahead-1] = s.getter.Next()
	return s.place(k)
}

// place puts a fresh piece of kind k at the spawn origin. When that spot
// is taken nothing is added and the session ends.
func (s *Session) place(k Kind) error {
	s.lastID++
	p := newPiece(s.lastID, k)
	if s.pieces.Collides(p) {
		s.isOver = true
		s.logger.Printf("session %s: top reached by %v, final score %d\n", s.id, k, s.score)
		if err := s.grid.Recompute(s.pieces); err != nil {
			return err
		}
		return ErrTopReached
	}

	s.pieces = append(s.pieces, p)
	s.byID.Put(p.id, p)
	s.current = p.id
	s.holdUsed = false
	return s.grid.Recompute(s.pieces)
}

func (s *Session) removePiece(id PieceID) {
	for i, p := range s.pieces {
		if p.id == id {
			s.pieces = append(s.pieces[:i], s.pieces[i+1:]...)
			break
		}
	}
	s.byID.Del(id)
}
