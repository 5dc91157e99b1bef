// Package shell is an interactive terminal front end: the human plays one
// side, the engine answers.
package shell

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"github.com/kballard/go-shellquote"
	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/hailam/chess50/internal/board"
	"github.com/hailam/chess50/internal/engine"
	"github.com/hailam/chess50/internal/storage"
)

// errQuit ends the read loop.
var errQuit = errors.New("quit")

const (
	playerHuman  = "human"
	playerEngine = "engine"
)

// Options configure a Shell.
type Options struct {
	// NewEngine builds the engine for each game.
	NewEngine func() (*engine.Engine, error)
	// Store persists games and stats. It may be nil.
	Store *storage.Storage
	Color board.Color
	Depth int
	Out   io.Writer
	Log   zerolog.Logger
}

// ply is one played move and the function that takes it back.
type ply struct {
	move    board.Move
	san     string
	retract func()
}

type Shell struct {
	opts Options
	out  io.Writer
	log  zerolog.Logger

	eng     *engine.Engine
	pos     *board.Position
	human   board.Color
	plies   []ply
	started time.Time
	over    bool
}

func New(opts Options) *Shell {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Color == board.NoColor {
		opts.Color = board.White
	}
	return &Shell{opts: opts, out: opts.Out, log: opts.Log}
}

func (sc *Shell) showMessage(format string, a ...any) {
	fmt.Fprintf(sc.out, format, a...)
	io.WriteString(sc.out, "\n")
}

func filterInput(r rune) (rune, bool) {
	switch r {
	// block CtrlZ feature
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}

// Loop reads commands from the terminal until quit or end of input.
func (sc *Shell) Loop() error {
	l, err := readline.NewEx(&readline.Config{
		Prompt:          "\033[32mchess50>\033[0m ",
		HistoryFile:     filepath.Join(os.TempDir(), "chess50_history"),
		EOFPrompt:       "exit",
		InterruptPrompt: "^C",

		HistorySearchFold:   true,
		FuncFilterInputRune: filterInput,
	})
	if err != nil {
		return err
	}
	defer l.Close()
	sc.out = l.Stdout()

	if err := sc.Start(); err != nil {
		return err
	}
	for {
		line, err := l.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			if len(line) == 0 {
				break
			}
			continue
		} else if errors.Is(err, io.EOF) {
			break
		}
		if err := sc.Execute(line); err != nil {
			if errors.Is(err, errQuit) {
				break
			}
			sc.showMessage("Error: %v", err)
		}
	}
	sc.log.Debug().Msg("exiting-readline-loop")
	return nil
}

// Start greets the user and begins the first game.
func (sc *Shell) Start() error {
	color := sc.opts.Color
	if st := sc.opts.Store; st != nil {
		first, err := st.IsFirstLaunch()
		if err != nil {
			return err
		}
		prefs, err := st.LoadPreferences()
		if err != nil {
			return err
		}
		if first {
			sc.showMessage("Welcome to chess50. Type help for the list of commands.")
			prefs.PlayerColor = strings.ToLower(color.String())
			if err := st.SavePreferences(prefs); err != nil {
				return err
			}
			if err := st.MarkFirstLaunchComplete(); err != nil {
				return err
			}
		} else if c, ok := parseColor(prefs.PlayerColor); ok {
			color = c
		}
	}
	return sc.newGame(color)
}

// Execute runs one command line.
func (sc *Shell) Execute(line string) error {
	fields, err := shellquote.Split(line)
	if err != nil {
		return err
	}
	if len(fields) == 0 {
		return nil
	}
	cmd, args := strings.ToLower(fields[0]), fields[1:]

	switch cmd {
	case "new":
		return sc.cmdNew(args)
	case "move":
		if len(args) != 1 {
			return errors.New("usage: move <move>")
		}
		return sc.playHuman(args[0])
	case "moves":
		sc.cmdMoves()
	case "board":
		sc.showMessage("%s", sc.pos)
	case "eval":
		v := sc.eng.Evaluate(sc.pos)
		sc.showMessage("Static evaluation: %s (positive favours White)", engine.ScoreToString(v))
	case "undo":
		return sc.cmdUndo()
	case "resign":
		return sc.cmdResign()
	case "history":
		sc.cmdHistory()
	case "stats":
		return sc.cmdStats()
	case "games":
		return sc.cmdGames()
	case "export":
		return sc.cmdExport(args)
	case "help":
		sc.showMessage(usage)
	case "quit", "exit", "bye":
		return errQuit
	default:
		if len(args) == 0 {
			return sc.playHuman(fields[0])
		}
		return fmt.Errorf("unknown command %q", cmd)
	}
	return nil
}

const usage = `Commands:
  new [white|black]      start a new game
  <move> | move <move>   play a move in SAN (Nf3) or UCI (g1f3)
  moves                  list legal moves
  board                  show the board
  eval                   static evaluation of the position
  undo                   take back your last move and the reply
  resign                 give up the current game
  history                moves played so far
  stats                  your results against the engine
  games                  stored games
  export <id> <file>     write a stored game as YAML
  help                   this text
  quit                   leave`

func parseColor(s string) (board.Color, bool) {
	switch strings.ToLower(s) {
	case "white", "w":
		return board.White, true
	case "black", "b":
		return board.Black, true
	}
	return board.NoColor, false
}

func (sc *Shell) cmdNew(args []string) error {
	color := sc.human
	if len(args) > 0 {
		c, ok := parseColor(args[0])
		if !ok {
			return fmt.Errorf("unknown color %q", args[0])
		}
		color = c
	}
	if st := sc.opts.Store; st != nil {
		prefs, err := st.LoadPreferences()
		if err != nil {
			return err
		}
		prefs.PlayerColor = strings.ToLower(color.String())
		prefs.Depth = sc.eng.Depth()
		if err := st.SavePreferences(prefs); err != nil {
			return err
		}
	}
	return sc.newGame(color)
}

// newGame starts over with a fresh engine, so nothing cached in the last
// game carries over.
func (sc *Shell) newGame(human board.Color) error {
	eng, err := sc.opts.NewEngine()
	if err != nil {
		return fmt.Errorf("new engine: %w", err)
	}
	sc.eng = eng
	sc.eng.SetLogger(sc.log)
	if sc.opts.Depth > 0 {
		sc.eng.SetDepth(sc.opts.Depth)
	}
	sc.pos = board.NewPosition()
	sc.human = human
	sc.plies = nil
	sc.started = time.Now()
	sc.over = false

	sc.showMessage("New game: you play %s, engine searches %d plies.", human, sc.eng.Depth())
	if sc.pos.Turn() != human {
		return sc.playEngine()
	}
	sc.showMessage("%s", sc.pos)
	return nil
}

func (sc *Shell) play(m board.Move) string {
	san := sc.pos.SAN(m)
	retract := sc.pos.Apply(m)
	sc.plies = append(sc.plies, ply{move: m, san: san, retract: retract})
	return san
}

func (sc *Shell) playHuman(s string) error {
	if sc.over {
		return errors.New("the game is over, type new to play again")
	}
	if sc.pos.Turn() != sc.human {
		return errors.New("not your turn")
	}
	m, err := sc.pos.ParseMove(s)
	if err != nil {
		return err
	}
	sc.play(m)
	if sc.checkOver() {
		return nil
	}
	return sc.playEngine()
}

func (sc *Shell) playEngine() error {
	res := sc.eng.ChooseMove(sc.pos, 0)
	m := res.Decision
	legal := sc.pos.LegalMoves()
	if !slices.Contains(legal, m) {
		if len(legal) == 0 {
			return nil
		}
		sc.log.Warn().Str("decision", m.String()).Msg("engine-decision-not-legal")
		m = legal[0]
	}
	san := sc.play(m)
	sc.showMessage("Engine plays %s (%s)", san, engine.ScoreToString(res.Value))
	if !sc.checkOver() {
		sc.showMessage("%s", sc.pos)
	}
	return nil
}

// checkOver ends the game if the position is terminal.
func (sc *Shell) checkOver() bool {
	out := sc.pos.Outcome()
	if !out.Over {
		return false
	}
	sc.showMessage("%s", sc.pos)
	switch {
	case out.Winner == sc.human:
		sc.showMessage("Checkmate. You win!")
	case out.Winner != board.NoColor:
		sc.showMessage("Checkmate. The engine wins.")
	default:
		sc.showMessage("Draw by %s.", out.Termination)
	}
	sc.finish(out, false)
	return true
}

// finish records the game and updates stats.
func (sc *Shell) finish(out board.Outcome, resigned bool) {
	sc.over = true
	sc.showMessage("Type new to play again.")

	st := sc.opts.Store
	if st == nil {
		return
	}
	rec := sc.record(out)
	if resigned {
		rec.Termination = "resignation"
	}
	if err := st.SaveGame(rec); err != nil {
		sc.log.Error().Err(err).Msg("saving-game")
		return
	}
	result := storage.GameResult{
		Won:      out.Winner == sc.human,
		Draw:     out.Winner == board.NoColor,
		Resigned: resigned,
		Depth:    sc.eng.Depth(),
		Color:    strings.ToLower(sc.human.String()),
		Duration: rec.Duration,
	}
	if err := st.RecordResult(result); err != nil {
		sc.log.Error().Err(err).Msg("recording-result")
		return
	}
	sc.log.Info().Str("id", rec.ID).Str("result", rec.Result).Msg("game-saved")
}

func (sc *Shell) record(out board.Outcome) *storage.GameRecord {
	rec := &storage.GameRecord{
		White:       playerHuman,
		Black:       playerEngine,
		StartFEN:    board.StartFEN,
		Moves:       lo.Map(sc.plies, func(p ply, _ int) string { return p.move.String() }),
		SAN:         lo.Map(sc.plies, func(p ply, _ int) string { return p.san }),
		Result:      out.Result(),
		Termination: out.Termination.String(),
		Depth:       sc.eng.Depth(),
		Started:     sc.started,
		Duration:    time.Since(sc.started),
	}
	if sc.human == board.Black {
		rec.White, rec.Black = playerEngine, playerHuman
	}
	return rec
}

func (sc *Shell) cmdResign() error {
	if sc.over {
		return errors.New("the game is already over")
	}
	sc.showMessage("You resign. The engine wins.")
	sc.finish(board.Outcome{Over: true, Termination: board.NotOver, Winner: sc.human.Other()}, true)
	return nil
}

// cmdUndo takes back plies until it is the human's turn again with at
// least one human move removed.
func (sc *Shell) cmdUndo() error {
	if sc.over {
		return errors.New("the game is over, type new to play again")
	}
	humanMoves := lo.CountBy(lo.Range(len(sc.plies)), func(i int) bool {
		return sc.moverOf(i) == sc.human
	})
	if humanMoves == 0 {
		return errors.New("nothing to undo")
	}
	for {
		last := sc.plies[len(sc.plies)-1]
		last.retract()
		sc.plies = sc.plies[:len(sc.plies)-1]
		if sc.moverOf(len(sc.plies)) == sc.human {
			break
		}
	}
	sc.showMessage("%s", sc.pos)
	return nil
}

// moverOf is the side that played ply i of the game.
func (sc *Shell) moverOf(i int) board.Color {
	if i%2 == 0 {
		return board.White
	}
	return board.Black
}

func (sc *Shell) cmdMoves() {
	legal := sc.pos.LegalMoves()
	sans := lo.Map(legal, func(m board.Move, _ int) string { return sc.pos.SAN(m) })
	slices.Sort(sans)
	sc.showMessage("%d legal moves: %s", len(sans), strings.Join(sans, " "))
}

func (sc *Shell) cmdHistory() {
	if len(sc.plies) == 0 {
		sc.showMessage("No moves yet.")
		return
	}
	var sb strings.Builder
	for i, pair := range lo.Chunk(sc.plies, 2) {
		fmt.Fprintf(&sb, "%d. %s", i+1, pair[0].san)
		if len(pair) == 2 {
			fmt.Fprintf(&sb, " %s", pair[1].san)
		}
		sb.WriteByte('\n')
	}
	sc.showMessage("%s", strings.TrimRight(sb.String(), "\n"))
}

func (sc *Shell) cmdStats() error {
	st := sc.opts.Store
	if st == nil {
		return errors.New("no storage configured")
	}
	stats, err := st.LoadStats()
	if err != nil {
		return err
	}
	sc.showMessage("Games: %d  Wins: %d  Losses: %d  Draws: %d  Resigned: %d",
		stats.GamesPlayed, stats.Wins, stats.Losses, stats.Draws, stats.Resignations)
	sc.showMessage("Win rate: %.1f%%  Longest streak: %d  Current streak: %d  Time played: %s",
		stats.GetWinRate(), stats.LongestWinStrk, stats.CurrentStreak, stats.TotalPlayTime.Round(time.Second))
	return nil
}

func (sc *Shell) cmdGames() error {
	st := sc.opts.Store
	if st == nil {
		return errors.New("no storage configured")
	}
	games, err := st.ListGames(0)
	if err != nil {
		return err
	}
	if len(games) == 0 {
		sc.showMessage("No stored games.")
		return nil
	}
	lines := lo.Map(games, func(g *storage.GameRecord, _ int) string {
		return fmt.Sprintf("%s  %s  %-7s %3d plies  %s vs %s",
			g.ID, g.Started.Format(time.DateTime), g.Result, len(g.Moves), g.White, g.Black)
	})
	sc.showMessage("%s", strings.Join(lines, "\n"))
	return nil
}

func (sc *Shell) cmdExport(args []string) error {
	if len(args) != 2 {
		return errors.New("usage: export <id> <file.yaml>")
	}
	st := sc.opts.Store
	if st == nil {
		return errors.New("no storage configured")
	}
	rec, err := st.LoadGame(args[0])
	if err != nil {
		return err
	}
	f, err := os.Create(args[1])
	if err != nil {
		return err
	}
	if err := rec.WriteYAML(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	sc.showMessage("Wrote %s", args[1])
	return nil
}
