// Package selfplay pits the engine against itself, several games at once.
package selfplay

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/hailam/chess50/internal/board"
	"github.com/hailam/chess50/internal/engine"
	"github.com/hailam/chess50/internal/storage"
)

// BoardFactory returns the board the engine searches for the game
// position pos. The engine's decision is still played on pos.
type BoardFactory func(pos *board.Position) (engine.Board, error)

// EngineFactory builds the engine for one side of one game. Every call
// must return a new engine: engines are not safe for concurrent use.
type EngineFactory func(game int, side board.Color) (*engine.Engine, error)

type Options struct {
	Games    int
	Workers  int
	MaxPlies int
	Depth    int

	NewEngine EngineFactory
	// SearchBoard, if set, gives the engine a different rules engine to
	// search on. By default it searches the game position itself.
	SearchBoard BoardFactory
	// Store, if set, receives a record of every finished game.
	Store *storage.Storage
	Log   zerolog.Logger
}

// GameResult is one finished (or capped) game.
type GameResult struct {
	Game     int
	Outcome  board.Outcome
	Moves    []board.Move
	SAN      []string
	Capped   bool
	Nodes    uint64
	Started  time.Time
	Duration time.Duration
}

// Summary totals a batch of games.
type Summary struct {
	Games     int
	WhiteWins int
	BlackWins int
	Draws     int
	Capped    int
	Plies     int
	Nodes     uint64
	Duration  time.Duration
}

func (s Summary) String() string {
	return fmt.Sprintf("%d games: +%d =%d -%d (%d capped), %d plies, %d nodes in %s",
		s.Games, s.WhiteWins, s.Draws, s.BlackWins, s.Capped, s.Plies, s.Nodes, s.Duration.Round(time.Millisecond))
}

// Run plays opts.Games games, at most opts.Workers at a time, and returns
// them in game order.
func Run(ctx context.Context, opts Options) (Summary, []GameResult, error) {
	if opts.NewEngine == nil {
		return Summary{}, nil, errors.New("selfplay: no engine factory")
	}
	start := time.Now()
	results := make([]GameResult, opts.Games)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(opts.Workers, 1))
	for i := 0; i < opts.Games; i++ {
		i := i
		g.Go(func() error {
			res, err := playGame(ctx, i, opts)
			if err != nil {
				return fmt.Errorf("game %d: %w", i, err)
			}
			results[i] = res
			opts.Log.Info().
				Int("game", i).
				Str("result", res.Outcome.Result()).
				Str("termination", res.Outcome.Termination.String()).
				Int("plies", len(res.Moves)).
				Bool("capped", res.Capped).
				Dur("elapsed", res.Duration).
				Msg("selfplay-game-done")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Summary{}, nil, err
	}

	if opts.Store != nil {
		for _, res := range results {
			if err := opts.Store.SaveGame(record(res, opts.Depth)); err != nil {
				return Summary{}, nil, err
			}
		}
	}

	sum := summarize(results)
	sum.Duration = time.Since(start)
	return sum, results, nil
}

func playGame(ctx context.Context, game int, opts Options) (GameResult, error) {
	var engines [2]*engine.Engine
	for _, side := range []board.Color{board.White, board.Black} {
		e, err := opts.NewEngine(game, side)
		if err != nil {
			return GameResult{}, err
		}
		if opts.Depth > 0 {
			e.SetDepth(opts.Depth)
		}
		engines[side] = e
	}

	res := GameResult{Game: game, Started: time.Now()}
	pos := board.NewPosition()
	for {
		if err := ctx.Err(); err != nil {
			return GameResult{}, err
		}
		res.Outcome = pos.Outcome()
		if res.Outcome.Over {
			break
		}
		if len(res.Moves) >= opts.MaxPlies {
			res.Capped = true
			break
		}

		eng := engines[pos.Turn()]
		var nodes uint64
		eng.OnInfo = func(info engine.SearchInfo) { nodes = info.Nodes }
		var searchOn engine.Board = pos
		if opts.SearchBoard != nil {
			b, err := opts.SearchBoard(pos)
			if err != nil {
				return GameResult{}, err
			}
			searchOn = b
		}
		m := eng.ChooseMove(searchOn, 0).Decision
		if legal := pos.LegalMoves(); !slices.Contains(legal, m) {
			opts.Log.Warn().Int("game", game).Str("decision", m.String()).Msg("engine-decision-not-legal")
			m = legal[0]
		}
		res.Nodes += nodes
		res.SAN = append(res.SAN, pos.SAN(m))
		res.Moves = append(res.Moves, m)
		pos.MakeMove(m)
	}
	res.Duration = time.Since(res.Started)
	return res, nil
}

func summarize(results []GameResult) Summary {
	return Summary{
		Games: len(results),
		WhiteWins: lo.CountBy(results, func(r GameResult) bool {
			return r.Outcome.Winner == board.White
		}),
		BlackWins: lo.CountBy(results, func(r GameResult) bool {
			return r.Outcome.Winner == board.Black
		}),
		Draws: lo.CountBy(results, func(r GameResult) bool {
			return r.Outcome.Over && r.Outcome.Winner == board.NoColor
		}),
		Capped: lo.CountBy(results, func(r GameResult) bool { return r.Capped }),
		Plies:  lo.SumBy(results, func(r GameResult) int { return len(r.Moves) }),
		Nodes:  lo.SumBy(results, func(r GameResult) uint64 { return r.Nodes }),
	}
}

func record(res GameResult, depth int) *storage.GameRecord {
	return &storage.GameRecord{
		White:       "engine",
		Black:       "engine",
		StartFEN:    board.StartFEN,
		Moves:       lo.Map(res.Moves, func(m board.Move, _ int) string { return m.String() }),
		SAN:         res.SAN,
		Result:      res.Outcome.Result(),
		Termination: res.Outcome.Termination.String(),
		Depth:       depth,
		Started:     res.Started,
		Duration:    res.Duration,
	}
}
