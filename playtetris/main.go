package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/JoelOtter/termloop"
	tetris "github.com/jauhararifin/fragtris"
)

func main() {
	cfg, err := loadConfig(os.Args[1:])
	if err != nil {
		log.Fatalf("cannot load config: %v\n", err)
	}
	logger, closeLog, err := openLog(cfg.LogFile)
	if err != nil {
		log.Fatalf("cannot open log: %v\n", err)
	}
	defer closeLog()

	router := tetris.NewRouter(
		tetris.WithMoveInterval(cfg.MoveInterval),
		tetris.WithRouterLogger(logger),
		tetris.WithSessionOptions(cfg.sessionOptions()...),
		tetris.WithSessionOptions(tetris.WithLogger(logger)),
	)
	logger.Printf("starting with seed %d\n", cfg.Seed)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	inputs := make(chan tetris.Input, 16)
	go func() {
		if err := router.Run(ctx, inputs); err != nil && !errors.Is(err, context.Canceled) {
			logger.Printf("router stopped: %v\n", err)
		}
	}()

	game := termloop.NewGame()
	level := termloop.NewBaseLevel(termloop.Cell{})
	level.AddEntity(NewBoardPlayer(0, 0, router, inputs, logger))
	game.Screen().SetLevel(level)
	game.Start()
}

type boardPlayer struct {
	router *tetris.Router
	inputs chan<- tetris.Input
	logger *log.Logger
	x, y   int
	best   int

	texts []*termloop.Text
}

func NewBoardPlayer(x, y int, router *tetris.Router, inputs chan<- tetris.Input, logger *log.Logger) *boardPlayer {
	b := &boardPlayer{
		router: router,
		inputs: inputs,
		logger: logger,
		x:      x,
		y:      y,
	}
	for i := 0; i < 9; i++ {
		b.texts = append(b.texts, termloop.NewText(x+sidebarX(), y+sidebarTextY+i, "", termloop.ColorWhite, termloop.ColorDefault))
	}
	return b
}

const (
	previewSize  = 4
	sidebarTextY = 3*(previewSize+2) + 1
)

func sidebarX() int {
	return tetris.Cols + 3
}

// keyInput maps a key press to an intent. Terminals report presses but no
// releases, so movement keys step once per press and rely on the
// terminal's key repeat.
func keyInput(ev termloop.Event, isOver bool) (tetris.Input, bool) {
	if ev.Type != termloop.EventKey {
		return tetris.Input{}, false
	}
	switch ev.Key {
	case termloop.KeyArrowLeft:
		return tetris.Input{Action: tetris.ActionStep, Direction: tetris.DirectionLeft}, true
	case termloop.KeyArrowRight:
		return tetris.Input{Action: tetris.ActionStep, Direction: tetris.DirectionRight}, true
	case termloop.KeyArrowDown:
		return tetris.Input{Action: tetris.ActionStep, Direction: tetris.DirectionSoftDrop}, true
	case termloop.KeySpace:
		return tetris.Input{Action: tetris.ActionStep, Direction: tetris.DirectionHardDrop}, true
	case termloop.KeyArrowUp:
		return tetris.Input{Action: tetris.ActionRotateCCW}, true
	}
	switch ev.Ch {
	case 'z', 'Z':
		return tetris.Input{Action: tetris.ActionRotateCW}, true
	case 'c', 'C':
		return tetris.Input{Action: tetris.ActionHold}, true
	case 'p', 'P':
		return tetris.Input{Action: tetris.ActionTogglePause}, true
	case 'r', 'R':
		if isOver {
			return tetris.Input{Action: tetris.ActionRestart}, true
		}
	}
	return tetris.Input{}, false
}

func (b *boardPlayer) Tick(ev termloop.Event) {
	in, ok := keyInput(ev, b.router.State().IsOver)
	if !ok {
		return
	}
	// The screen loop must not block on a busy router.
	select {
	case b.inputs <- in:
	default:
		b.logger.Printf("input queue full, dropped %v\n", in.Action)
	}
}

func tileColor(c tetris.Color) termloop.Attr {
	switch c {
	case tetris.ColorYellow:
		return termloop.ColorYellow
	case tetris.ColorMagenta:
		return termloop.ColorMagenta
	case tetris.ColorCyan:
		return termloop.ColorCyan
	case tetris.ColorOrange:
		return termloop.ColorWhite
	case tetris.ColorBlue:
		return termloop.ColorBlue
	case tetris.ColorRed:
		return termloop.ColorRed
	case tetris.ColorGreen:
		return termloop.ColorGreen
	}
	return termloop.ColorDefault
}

func (b *boardPlayer) border(s *termloop.Screen, x, y, width, height int) {
	cell := &termloop.Cell{Fg: termloop.ColorWhite, Bg: termloop.ColorBlack, Ch: '+'}
	for i := 0; i < width+2; i++ {
		s.RenderCell(x+i, y, cell)
		s.RenderCell(x+i, y+height+1, cell)
	}
	for i := 0; i < height+2; i++ {
		s.RenderCell(x, y+i, cell)
		s.RenderCell(x+width+1, y+i, cell)
	}
}

func (b *boardPlayer) preview(s *termloop.Screen, x, y int, kind tetris.Kind, show bool) {
	b.border(s, x, y, previewSize, previewSize)
	var cells [][]bool
	if show {
		cells = kind.Shape().Cells
	}
	for r := 0; r < previewSize; r++ {
		for c := 0; c < previewSize; c++ {
			cell := &termloop.Cell{Fg: termloop.ColorWhite, Bg: termloop.ColorBlack}
			if r < len(cells) && c < len(cells[r]) && cells[r][c] {
				cell.Fg = tileColor(kind.Color())
				cell.Ch = '@'
			}
			s.RenderCell(x+1+c, y+1+r, cell)
		}
	}
}

func (b *boardPlayer) Draw(s *termloop.Screen) {
	state := b.router.State()
	if state.Score > b.best {
		b.best = state.Score
	}

	b.border(s, b.x, b.y, tetris.Cols, tetris.Rows)
	frame := b.router.Render()
	for y := 0; y < tetris.Rows; y++ {
		for x := 0; x < tetris.Cols; x++ {
			tile := frame[y][x]
			cell := &termloop.Cell{Fg: tileColor(tile.Color), Bg: termloop.ColorBlack}
			switch tile.Type {
			case tetris.TileCurrent:
				cell.Ch = '@'
			case tetris.TileSettled:
				cell.Ch = '#'
			case tetris.TileGhost:
				cell.Ch = '.'
			}
			s.RenderCell(b.x+1+x, b.y+1+y, cell)
		}
	}

	px := b.x + sidebarX()
	for i, k := range state.Next {
		b.preview(s, px, b.y+i*(previewSize+2), k, true)
	}
	b.preview(s, px+previewSize+3, b.y, state.Held, state.HasHeld)

	lines := []string{
		fmt.Sprintf("Score: %d", state.Score),
		fmt.Sprintf("Best:  %d", b.best),
		fmt.Sprintf("Level: %d", state.Level),
		fmt.Sprintf("Lines: %d (%d to go)", state.Lines, state.LinesToNextLevel),
		fmt.Sprintf("Combo: %d", state.Combo),
		"",
		"",
		"",
		"",
	}
	switch {
	case state.IsOver:
		lines[6] = "GAME OVER"
		lines[7] = "R: play again"
		lines[8] = "Ctrl+C: quit"
	case b.router.IsPaused():
		lines[6] = "PAUSED (P)"
	}
	for i, text := range b.texts {
		text.SetText(lines[i])
		text.Draw(s)
	}
}
