package uci

import (
	"bufio"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/hailam/chess50/internal/board"
	"github.com/hailam/chess50/internal/engine"
)

// UCI implements the Universal Chess Interface protocol.
type UCI struct {
	newEngine func() (*engine.Engine, error)
	engine    *engine.Engine
	position  *board.Position
	depth     int

	out    io.Writer
	logger zerolog.Logger
}

// New creates a UCI protocol handler writing to out. newEngine is called
// once now and again on every ucinewgame, so each game gets a fresh cache.
func New(newEngine func() (*engine.Engine, error), out io.Writer, logger zerolog.Logger) (*UCI, error) {
	u := &UCI{
		newEngine: newEngine,
		position:  board.NewPosition(),
		out:       out,
		logger:    logger,
	}
	if err := u.handleNewGame(); err != nil {
		return nil, err
	}
	return u, nil
}

// Run reads commands from in until quit or end of input.
func (u *UCI) Run(in io.Reader) error {
	scanner := bufio.NewScanner(in)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		parts := strings.Fields(line)
		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "uci":
			u.handleUCI()
		case "isready":
			u.println("readyok")
		case "ucinewgame":
			if err := u.handleNewGame(); err != nil {
				u.logger.Error().Err(err).Msg("new-engine")
				u.printf("info string %v\n", err)
			}
		case "position":
			u.handlePosition(args)
		case "go":
			u.handleGo(args)
		case "setoption":
			u.handleSetOption(args)
		case "quit":
			return nil
		// Debug commands
		case "d":
			u.handleDisplay()
		case "eval":
			u.handleEval()
		case "perft":
			u.handlePerft(args)
		default:
			u.logger.Debug().Str("cmd", cmd).Msg("unknown-command")
		}
	}
	return scanner.Err()
}

func (u *UCI) println(a ...any) {
	fmt.Fprintln(u.out, a...)
}

func (u *UCI) printf(format string, a ...any) {
	fmt.Fprintf(u.out, format, a...)
}

// handleUCI responds to the "uci" command.
func (u *UCI) handleUCI() {
	u.println("id name chess50")
	u.println("id author chess50 authors")
	u.println()
	u.printf("option name Depth type spin default %d min 1 max 8\n", engine.DefaultDepth)
	u.println("uciok")
}

// handleNewGame drops the engine, and with it the transposition cache.
// On error the previous engine and position are kept.
func (u *UCI) handleNewGame() error {
	e, err := u.newEngine()
	if err != nil {
		return fmt.Errorf("new engine: %w", err)
	}
	e.SetLogger(u.logger)
	if u.depth > 0 {
		e.SetDepth(u.depth)
	}
	u.engine = e
	u.position = board.NewPosition()
	return nil
}

// handlePosition parses and sets up a position.
// Formats:
//   - position startpos
//   - position startpos moves e2e4 e7e5
//   - position fen <fen>
//   - position fen <fen> moves e2e4
func (u *UCI) handlePosition(args []string) {
	if len(args) == 0 {
		return
	}

	movesAt := slices.Index(args, "moves")
	if movesAt < 0 {
		movesAt = len(args)
	}

	var pos *board.Position
	switch args[0] {
	case "startpos":
		pos = board.NewPosition()
	case "fen":
		var err error
		pos, err = board.ParseFEN(strings.Join(args[1:movesAt], " "))
		if err != nil {
			u.printf("info string invalid fen: %v\n", err)
			u.logger.Warn().Err(err).Msg("invalid-fen")
			return
		}
	default:
		return
	}

	if movesAt < len(args) {
		for _, s := range args[movesAt+1:] {
			m, err := pos.ParseMove(s)
			if err != nil {
				u.printf("info string invalid move: %s\n", s)
				u.logger.Warn().Err(err).Str("move", s).Msg("invalid-move")
				return
			}
			pos.MakeMove(m)
		}
	}
	u.position = pos
}

// parseDepth reads "go [depth N]". Other limits are accepted and ignored:
// the search always runs to a fixed depth.
func parseDepth(args []string) int {
	for i := 0; i+1 < len(args); i++ {
		if args[i] == "depth" {
			d, err := strconv.Atoi(args[i+1])
			if err == nil && d > 0 {
				return d
			}
		}
	}
	return 0
}

// handleGo searches the current position and answers with bestmove.
func (u *UCI) handleGo(args []string) {
	u.engine.OnInfo = u.sendInfo
	res := u.engine.ChooseMove(u.position, parseDepth(args))

	legal := u.position.LegalMoves()
	switch {
	case len(legal) == 0:
		u.println("bestmove 0000")
	case slices.Contains(legal, res.Decision):
		u.printf("bestmove %s\n", res.Decision)
	default:
		// A cached decision can belong to the other side on the same
		// placement. Fall back to the first legal move.
		u.printf("info string search returned %s, not legal here\n", res.Decision)
		u.printf("bestmove %s\n", legal[0])
	}
}

// sendInfo outputs search info in UCI format. Scores are reported from the
// side to move's point of view.
func (u *UCI) sendInfo(info engine.SearchInfo) {
	score := info.Value
	if u.position.Turn() == board.Black {
		score = -score
	}

	parts := []string{
		fmt.Sprintf("depth %d", info.Depth),
		u.scoreField(info, score),
		fmt.Sprintf("nodes %d", info.Nodes),
		fmt.Sprintf("time %d", info.Time.Milliseconds()),
	}
	if info.Time > 0 {
		parts = append(parts, fmt.Sprintf("nps %d", uint64(float64(info.Nodes)/info.Time.Seconds())))
	}
	if info.Decision != board.NoMove {
		parts = append(parts, "pv "+info.Decision.String())
	}
	u.printf("info %s\n", strings.Join(parts, " "))
}

// scoreField formats score, already from the side to move's view, as
// "score cp N" or, past the mate threshold, "score mate N" in moves. The
// search does not track mate distance, so N is exact for a mate on the
// next move and otherwise the bound given by the search depth.
func (u *UCI) scoreField(info engine.SearchInfo, score int) string {
	switch {
	case score >= engine.CheckmateValue/2:
		moves := (info.Depth + 1) / 2
		if info.Decision != board.NoMove && u.matesNow(info.Decision) {
			moves = 1
		}
		return fmt.Sprintf("score mate %d", max(moves, 1))
	case score <= -engine.CheckmateValue/2:
		return fmt.Sprintf("score mate %d", -max(info.Depth/2, 1))
	}
	return fmt.Sprintf("score cp %d", score)
}

// matesNow reports whether m checkmates in the current position.
func (u *UCI) matesNow(m board.Move) bool {
	if !slices.Contains(u.position.LegalMoves(), m) {
		return false
	}
	retract := u.position.Apply(m)
	defer retract()
	return u.position.Outcome().Termination == board.Checkmate
}

// handleSetOption processes "setoption name <name> value <value>".
func (u *UCI) handleSetOption(args []string) {
	nameAt, valueAt := slices.Index(args, "name"), slices.Index(args, "value")
	if nameAt < 0 || valueAt < nameAt {
		return
	}
	name := strings.Join(args[nameAt+1:valueAt], " ")
	value := strings.Join(args[valueAt+1:], " ")

	switch strings.ToLower(name) {
	case "depth":
		d, err := strconv.Atoi(value)
		if err != nil || d < 1 {
			u.printf("info string bad depth %q\n", value)
			return
		}
		u.depth = d
		u.engine.SetDepth(d)
	default:
		u.logger.Debug().Str("name", name).Msg("unknown-option")
	}
}

// handleDisplay prints the board, its FEN and the legal moves.
func (u *UCI) handleDisplay() {
	u.println(u.position.String())
	u.printf("Fen: %s\n", u.position.FEN())
	moves := lo.Map(u.position.LegalMoves(), func(m board.Move, _ int) string {
		return m.String()
	})
	u.printf("Legal: %s\n", strings.Join(moves, " "))
}

func (u *UCI) handleEval() {
	v := u.engine.Evaluate(u.position)
	u.printf("Eval: %d (%s)\n", v, engine.ScoreToString(v))
}

// handlePerft runs a perft test, split by root move.
func (u *UCI) handlePerft(args []string) {
	depth := 3
	if len(args) > 0 {
		if d, err := strconv.Atoi(args[0]); err == nil && d > 0 {
			depth = d
		}
	}

	start := time.Now()
	div := u.position.Divide(depth)
	elapsed := time.Since(start)

	moves := lo.Keys(div)
	slices.SortFunc(moves, func(a, b board.Move) int {
		return strings.Compare(a.String(), b.String())
	})
	for _, m := range moves {
		u.printf("%s: %d\n", m, div[m])
	}
	nodes := lo.Sum(lo.Values(div))

	u.printf("Nodes: %d\n", nodes)
	u.printf("Time: %v\n", elapsed)
	if elapsed > 0 {
		u.printf("NPS: %.0f\n", float64(nodes)/elapsed.Seconds())
	}
}
