// Command chess50 plays chess against a fixed-depth alpha-beta engine.
//
//	chess50 [flags] [shell|uci|selfplay]
//
// With no mode it starts the interactive shell.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime/pprof"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hailam/chess50/internal/board"
	"github.com/hailam/chess50/internal/config"
	"github.com/hailam/chess50/internal/engine"
	"github.com/hailam/chess50/internal/logging"
	"github.com/hailam/chess50/internal/notnilchess"
	"github.com/hailam/chess50/internal/selfplay"
	"github.com/hailam/chess50/internal/shell"
	"github.com/hailam/chess50/internal/storage"
	"github.com/hailam/chess50/internal/uci"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	logger, err := logging.Setup(cfg.LogLevel, cfg.LogPretty)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if cfg.File != "" {
		logger.Debug().Str("file", cfg.File).Msg("loaded-config")
	}

	// CPU profiling is enabled through the environment only.
	if path := os.Getenv("CPUPROFILE"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			log.Fatal().Err(err).Msg("could-not-create-cpu-profile")
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal().Err(err).Msg("could-not-start-cpu-profile")
		}
		defer pprof.StopCPUProfile()
		logger.Info().Str("path", path).Msg("cpu-profiling")
	}

	mode := "shell"
	if len(cfg.Args) > 0 {
		mode = cfg.Args[0]
	}
	if err := run(mode, cfg, logger); err != nil {
		logger.Error().Err(err).Str("mode", mode).Msg("exiting")
		pprof.StopCPUProfile()
		os.Exit(1)
	}
}

func run(mode string, cfg *config.Config, logger zerolog.Logger) error {
	seed, err := cfg.SeedBytes()
	if err != nil {
		return err
	}

	switch mode {
	case "uci":
		games := 0
		u, err := uci.New(func() (*engine.Engine, error) {
			e, err := newEngine(seed, games)
			if err != nil {
				return nil, err
			}
			e.SetDepth(cfg.Depth)
			games++
			return e, nil
		}, os.Stdout, logger)
		if err != nil {
			return err
		}
		return u.Run(os.Stdin)

	case "shell":
		store, err := storage.Open(cfg.DataDir, logger)
		if err != nil {
			return err
		}
		defer store.Close()
		color, err := cfg.Color()
		if err != nil {
			return err
		}
		games := 0
		sc := shell.New(shell.Options{
			NewEngine: func() (*engine.Engine, error) {
				games++
				return newEngine(seed, games)
			},
			Store: store,
			Color: color,
			Depth: cfg.Depth,
			Log:   logger,
		})
		return sc.Loop()

	case "selfplay":
		store, err := storage.Open(cfg.DataDir, logger)
		if err != nil {
			return err
		}
		defer store.Close()
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		opts := selfplay.Options{
			Games:    cfg.SelfPlay.Games,
			Workers:  cfg.SelfPlay.Workers,
			MaxPlies: cfg.SelfPlay.MaxPlies,
			Depth:    cfg.Depth,
			NewEngine: func(game int, side board.Color) (*engine.Engine, error) {
				return newEngine(seed, 2*game+int(side))
			},
			Store: store,
			Log:   logger,
		}
		if cfg.Rules == config.RulesNotnil {
			opts.SearchBoard = notnilchess.SearchBoard
		}
		logger.Info().Str("rules", cfg.Rules).Int("games", opts.Games).Msg("selfplay-start")

		sum, _, err := selfplay.Run(ctx, opts)
		if err != nil {
			return err
		}
		logger.Info().Stringer("summary", sum).Msg("selfplay-done")
		fmt.Println(sum)
		return nil
	}
	return fmt.Errorf("unknown mode %q (want shell, uci or selfplay)", mode)
}

// newEngine builds an engine. With a seed, each distinct n gets its own
// reproducible stream; without one the engine is crypto-seeded.
func newEngine(seed []byte, n int) (*engine.Engine, error) {
	if seed == nil {
		return engine.NewEngine(nil), nil
	}
	derived := make([]byte, len(seed))
	copy(derived, seed)
	derived[0] ^= byte(n)
	derived[1] ^= byte(n >> 8)
	return engine.NewSeededEngine(derived)
}
