package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	tetris "github.com/jauhararifin/fragtris"
)

type config struct {
	Seed         int64         `env:"TETRIS_SEED"`
	MoveInterval time.Duration `env:"TETRIS_MOVE_INTERVAL" envDefault:"100ms"`
	LogFile      string        `env:"TETRIS_LOG_FILE"`
	// Pieces is a fixed piece order such as "IOTSZJL", repeated forever.
	// Empty means the shuffled bag.
	Pieces string `env:"TETRIS_PIECES"`
}

// loadConfig reads the environment first and lets flags override it.
func loadConfig(args []string) (config, error) {
	var cfg config
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}

	fs := flag.NewFlagSet("playtetris", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Int64Var(&cfg.Seed, "seed", cfg.Seed, "piece order seed, 0 picks one from the clock")
	fs.DurationVar(&cfg.MoveInterval, "move-interval", cfg.MoveInterval, "repeat interval of a held movement")
	fs.StringVar(&cfg.LogFile, "log", cfg.LogFile, "file to write the game log to")
	fs.StringVar(&cfg.Pieces, "pieces", cfg.Pieces, "fixed piece order to repeat, e.g. IOTSZJL")
	if err := fs.Parse(args); err != nil {
		return cfg, fmt.Errorf("parse flags: %w", err)
	}

	if cfg.MoveInterval <= 0 {
		return cfg, fmt.Errorf("move interval must be positive, got %v", cfg.MoveInterval)
	}
	if _, err := parsePieces(cfg.Pieces); err != nil {
		return cfg, err
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	return cfg, nil
}

func parsePieces(seq string) ([]tetris.Kind, error) {
	kinds := make([]tetris.Kind, 0, len(seq))
	for _, r := range seq {
		k, err := tetris.ParseKind(string(r))
		if err != nil {
			return nil, fmt.Errorf("parse pieces: %w", err)
		}
		kinds = append(kinds, k)
	}
	return kinds, nil
}

// sessionOptions picks the piece source: the fixed order when one is set,
// the seeded bag otherwise.
func (c config) sessionOptions() []tetris.SessionOption {
	kinds, err := parsePieces(c.Pieces)
	if err != nil || len(kinds) == 0 {
		return []tetris.SessionOption{tetris.WithSeed(c.Seed)}
	}
	i := 0
	return []tetris.SessionOption{tetris.WithGetter(tetris.KindGetterFunc(func() tetris.Kind {
		k := kinds[i%len(kinds)]
		i++
		return k
	}))}
}

// openLog returns a logger writing to path, or one that discards
// everything when path is empty. The terminal belongs to the game.
func openLog(path string) (*log.Logger, func() error, error) {
	if path == "" {
		return log.New(io.Discard, "", 0), func() error { return nil }, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return log.New(f, "playtetris ", log.LstdFlags), f.Close, nil
}
