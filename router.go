package tetris

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"time"
)

type Action int

const (
	ActionStartMove Action = iota
	ActionStopMove
	ActionStep
	ActionRotateCW
	ActionRotateCCW
	ActionHold
	ActionPause
	ActionResume
	ActionTogglePause
	ActionRestart
)

func (a Action) String() string {
	switch a {
	case ActionStartMove:
		return "start-move"
	case ActionStopMove:
		return "stop-move"
	case ActionStep:
		return "step"
	case ActionRotateCW:
		return "rotate-cw"
	case ActionRotateCCW:
		return "rotate-ccw"
	case ActionHold:
		return "hold"
	case ActionPause:
		return "pause"
	case ActionResume:
		return "resume"
	case ActionTogglePause:
		return "toggle-pause"
	case ActionRestart:
		return "restart"
	}
	return fmt.Sprintf("Action(%d)", int(a))
}

// Input is one intent from the presentation layer. Direction is only read
// by ActionStartMove and ActionStep.
type Input struct {
	Action    Action
	Direction Direction
}

const DefaultMoveInterval = 100 * time.Millisecond

// Router turns key presses, key releases and timer ticks into session
// calls. A held movement key repeats on every movement tick until it is
// released or the piece locks.
//
// Frontends that report key releases use StartMove and StopMove and let
// Run repeat the movement. Frontends that only see presses, such as a
// terminal, send Step once per press and rely on key repeat; the movement
// ticker then has nothing to do.
//
// Read methods may be called from any goroutine while Run is going.
type Router struct {
	m *sync.RWMutex

	session        *Session
	sessionOptions []SessionOption
	moveInterval   time.Duration
	logger         *log.Logger

	heading        Direction
	ignoreNextStop bool
	isPaused       bool

	// wake tells Run to look at the pause state again.
	wake chan struct{}
}

type RouterOption func(*Router)

func WithMoveInterval(d time.Duration) RouterOption {
	if d <= 0 {
		panic(fmt.Errorf("move interval must be positive, got %v", d))
	}
	return func(r *Router) {
		r.moveInterval = d
	}
}

func WithSessionOptions(options ...SessionOption) RouterOption {
	return func(r *Router) {
		r.sessionOptions = append(r.sessionOptions, options...)
	}
}

func WithRouterLogger(logger *log.Logger) RouterOption {
	return func(r *Router) {
		if logger != nil {
			r.logger = logger
		}
	}
}

func NewRouter(options ...RouterOption) *Router {
	r := &Router{
		m:            &sync.RWMutex{},
		moveInterval: DefaultMoveInterval,
		logger:       log.New(io.Discard, "", 0),
		wake:         make(chan struct{}, 1),
	}
	for _, opt := range options {
		opt(r)
	}
	r.session = NewSession(r.sessionOptions...)
	return r
}

// State snapshots the running session.
func (r *Router) State() State {
	r.m.RLock()
	defer r.m.RUnlock()
	return r.session.State()
}

func (r *Router) Render() [Rows][Cols]Tile {
	r.m.RLock()
	defer r.m.RUnlock()
	return r.session.Render()
}

func (r *Router) Heading() Direction {
	r.m.RLock()
	defer r.m.RUnlock()
	return r.heading
}

func (r *Router) IsPaused() bool {
	r.m.RLock()
	defer r.m.RUnlock()
	return r.isPaused
}

func (r *Router) GravityInterval() time.Duration {
	r.m.RLock()
	defer r.m.RUnlock()
	return GravityInterval(r.session.Level())
}

func (r *Router) Apply(in Input) error {
	switch in.Action {
	case ActionStartMove:
		return r.StartMove(in.Direction)
	case ActionStopMove:
		r.StopMove()
		return nil
	case ActionStep:
		return r.Step(in.Direction)
	case ActionRotateCW:
		return r.RotateCW()
	case ActionRotateCCW:
		return r.RotateCCW()
	case ActionHold:
		return r.Hold()
	case ActionPause:
		r.Pause()
		return nil
	case ActionResume:
		r.Resume()
		return nil
	case ActionTogglePause:
		r.TogglePause()
		return nil
	case ActionRestart:
		r.Restart()
		return nil
	}
	return fmt.Errorf("%w: %v", ErrInvalidAction, in.Action)
}

// StartMove makes d the held movement. Replacing a movement that is still
// held means the release of the old key is on its way and must not cancel
// the new one.
func (r *Router) StartMove(d Direction) error {
	if !d.Valid() {
		return fmt.Errorf("%w: %v", ErrInvalidDirection, d)
	}
	r.m.Lock()
	defer r.m.Unlock()

	if r.isPaused || r.session.IsOver() {
		return nil
	}
	if r.heading != DirectionNone {
		r.ignoreNextStop = true
	}
	r.heading = d
	return nil
}

func (r *Router) StopMove() {
	r.m.Lock()
	defer r.m.Unlock()
	r.stopMove()
}

func (r *Router) stopMove() {
	if r.ignoreNextStop {
		r.ignoreNextStop = false
		return
	}
	r.heading = DirectionNone
}

// Step performs a single movement right away without touching the held
// movement. It serves terminals that report key presses but no releases.
func (r *Router) Step(d Direction) error {
	if !d.Valid() {
		return fmt.Errorf("%w: %v", ErrInvalidDirection, d)
	}
	r.m.Lock()
	defer r.m.Unlock()

	if r.isPaused || r.session.IsOver() {
		return nil
	}
	return r.signal(r.session.Move(d))
}

// MovementTick repeats the held movement.
func (r *Router) MovementTick() error {
	r.m.Lock()
	defer r.m.Unlock()

	if r.isPaused || r.session.IsOver() || r.heading == DirectionNone {
		return nil
	}
	return r.signal(r.session.Move(r.heading))
}

func (r *Router) GravityTick() error {
	r.m.Lock()
	defer r.m.Unlock()

	if r.isPaused || r.session.IsOver() {
		return nil
	}
	return r.signal(r.session.Tick())
}

func (r *Router) RotateCW() error {
	r.m.Lock()
	defer r.m.Unlock()

	if r.isPaused || r.session.IsOver() {
		return nil
	}
	return r.session.RotateRight()
}

func (r *Router) RotateCCW() error {
	r.m.Lock()
	defer r.m.Unlock()

	if r.isPaused || r.session.IsOver() {
		return nil
	}
	return r.session.RotateLeft()
}

func (r *Router) Hold() error {
	r.m.Lock()
	defer r.m.Unlock()

	if r.isPaused || r.session.IsOver() {
		return nil
	}
	return r.signal(r.session.Hold())
}

func (r *Router) Pause() {
	r.setPaused(func(bool) bool { return true })
}

func (r *Router) Resume() {
	r.setPaused(func(bool) bool { return false })
}

func (r *Router) TogglePause() {
	r.setPaused(func(paused bool) bool { return !paused })
}

func (r *Router) setPaused(next func(bool) bool) {
	r.m.Lock()
	r.isPaused = next(r.isPaused)
	r.m.Unlock()
	r.notify()
}

func (r *Router) notify() {
	select {
	case r.wake <- struct{}{}:
	default:
	}
}

// Restart throws the current session away and starts a fresh one.
func (r *Router) Restart() {
	r.m.Lock()
	defer r.m.Unlock()

	r.session = NewSession(r.sessionOptions...)
	r.heading = DirectionNone
	r.ignoreNextStop = false
	r.isPaused = false
	r.logger.Printf("session %s: restarted\n", r.session.ID())
	r.notify()
}

// signal reacts to a lock by dropping the held movement, and to a top out
// by logging the end of the game.
func (r *Router) signal(err error) error {
	switch {
	case errors.Is(err, ErrBottomReached):
		r.stopMove()
	case errors.Is(err, ErrTopReached):
		r.heading = DirectionNone
		r.ignoreNextStop = false
		r.logger.Printf("session %s: game over, score %d\n", r.session.ID(), r.session.Score())
	}
	return err
}

// Run is the dispatch loop. Inputs, gravity and movement repeat are
// handled one at a time in arrival order. Both timers stop while paused
// and restart from a full interval on resume, whether the pause came
// through inputs or a direct call. Run returns when ctx is
// done, when inputs is closed, or when an input is rejected.
func (r *Router) Run(ctx context.Context, inputs <-chan Input) error {
	gravity := time.NewTimer(r.GravityInterval())
	defer gravity.Stop()
	movement := time.NewTicker(r.moveInterval)
	defer movement.Stop()

	paused := r.IsPaused()
	if paused {
		gravity.Stop()
		movement.Stop()
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case in, ok := <-inputs:
			if !ok {
				return nil
			}
			if err := r.Apply(in); err != nil && !isSignal(err) {
				return fmt.Errorf("apply %v: %w", in.Action, err)
			}

		case <-gravity.C:
			if err := r.GravityTick(); err != nil && !isSignal(err) {
				return fmt.Errorf("gravity tick: %w", err)
			}
			gravity.Reset(r.GravityInterval())

		case <-movement.C:
			if err := r.MovementTick(); err != nil && !isSignal(err) {
				return fmt.Errorf("movement tick: %w", err)
			}

		case <-r.wake:
		}

		if now := r.IsPaused(); now != paused {
			paused = now
			if paused {
				gravity.Stop()
				movement.Stop()
			} else {
				gravity.Reset(r.GravityInterval())
				movement.Reset(r.moveInterval)
			}
		}
	}
}

func isSignal(err error) bool {
	return errors.Is(err, ErrBottomReached) || errors.Is(err, ErrTopReached) || errors.Is(err, ErrGameOver)
}
