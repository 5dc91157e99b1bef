package engine

import (
	"bytes"
	"slices"
	"testing"

	"github.com/matryer/is"
	"github.com/rs/zerolog"

	"github.com/hailam/chess50/internal/board"
)

func newTestEngine(t *testing.T, seed byte) *Engine {
	t.Helper()
	e, err := NewSeededEngine(testSeed(seed))
	if err != nil {
		t.Fatal(err)
	}
	return e
}

// bestReply is the one-ply reference: the best static score over all moves.
func bestReply(p *board.Position) int {
	best, maximizing := Infinity, p.Turn() == MaximizingSide
	if maximizing {
		best = -Infinity
	}
	for _, m := range p.LegalMoves() {
		retract := p.Apply(m)
		v := Classical{}.Evaluate(p)
		retract()
		if maximizing {
			best = max(best, v)
		} else {
			best = min(best, v)
		}
	}
	return best
}

func TestChooseMoveDepthOne(t *testing.T) {
	is := is.New(t)

	for _, fen := range []string{
		board.StartFEN,
		"rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq - 0 1",
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
	} {
		p := mustFEN(t, fen)
		before := p.FEN()
		e := newTestEngine(t, 7)

		res := e.ChooseMove(p, 1)
		is.True(slices.Contains(p.LegalMoves(), res.Decision))
		is.Equal(res.Value, bestReply(p))
		is.Equal(p.FEN(), before)

		retract := p.Apply(res.Decision)
		is.Equal(Classical{}.Evaluate(p), res.Value)
		retract()
	}
}

func TestChooseMoveFindsMateInOne(t *testing.T) {
	is := is.New(t)

	p := mustFEN(t, "6k1/5ppp/8/8/8/8/8/R5K1 w - - 0 1")
	for depth := 1; depth <= 3; depth++ {
		res := newTestEngine(t, byte(depth)).ChooseMove(p, depth)
		is.Equal(res.Decision.String(), "a1a8")
		is.True(res.Value > CheckmateValue/2)
	}

	p = mustFEN(t, "r5k1/8/8/8/8/8/5PPP/6K1 b - - 0 1")
	for depth := 1; depth <= 3; depth++ {
		res := newTestEngine(t, byte(depth)).ChooseMove(p, depth)
		is.Equal(res.Decision.String(), "a8a1")
		is.True(res.Value < -CheckmateValue/2)
	}
}

func TestChooseMoveAvoidsHangingQueen(t *testing.T) {
	is := is.New(t)
	// The white queen on d5 is attacked by the e6 pawn.
	p := mustFEN(t, "4k3/8/4p3/3Q4/8/8/8/4K3 w - - 0 1")
	res := newTestEngine(t, 9).ChooseMove(p, 2)
	is.Equal(res.Decision.From(), board.D5)
	is.True(res.Value > Material[board.Queen]/2)
}

func TestChooseMoveUsesConfiguredDepth(t *testing.T) {
	is := is.New(t)
	e := newTestEngine(t, 10)
	e.SetDepth(2)
	is.Equal(e.Depth(), 2)
	e.SetDepth(0)
	is.Equal(e.Depth(), 2)

	var info SearchInfo
	e.OnInfo = func(i SearchInfo) { info = i }
	e.ChooseMove(board.NewPosition(), 0)
	is.Equal(info.Depth, 2)
	is.True(info.Nodes > 20)
	is.True(info.CacheSize > 0)
}

func TestChooseMoveGameOver(t *testing.T) {
	is := is.New(t)
	p := mustFEN(t, "rnb1kbnr/pppp1ppp/8/4p3/6Pq/5P2/PPPPP2P/RNBQKBNR w KQkq - 1 3")
	res := newTestEngine(t, 11).ChooseMove(p, 3)
	is.True(!res.HasDecision())
	is.Equal(res.Value, Classical{}.Evaluate(p))
}

func TestSeededEnginesAgree(t *testing.T) {
	is := is.New(t)
	a := newTestEngine(t, 12)
	b := newTestEngine(t, 12)

	p := board.NewPosition()
	is.Equal(a.Fingerprint(p), b.Fingerprint(p))
	is.Equal(a.ChooseMove(p, 3), b.ChooseMove(p, 3))
}

func TestNewSeededEngineRejectsShortSeed(t *testing.T) {
	is := is.New(t)
	_, err := NewSeededEngine([]byte("short"))
	is.True(err != nil)
}

func TestSearchLogsDecision(t *testing.T) {
	is := is.New(t)
	var buf bytes.Buffer
	e := newTestEngine(t, 13)
	e.SetLogger(zerolog.New(&buf).Level(zerolog.DebugLevel))

	e.ChooseMove(board.NewPosition(), 1)
	is.True(bytes.Contains(buf.Bytes(), []byte(`"message":"search-done"`)))
	is.True(!bytes.Contains(buf.Bytes(), []byte("decision-not-legal-at-root")))
}

func TestSearchWarnsOnForeignRootDecision(t *testing.T) {
	is := is.New(t)
	var buf bytes.Buffer
	e := newTestEngine(t, 14)
	e.SetLogger(zerolog.New(&buf))

	// Seed the cache with a White move, then ask for Black on the same
	// placement.
	w := mustFEN(t, "4k3/8/8/8/8/8/4P3/4K3 w - - 0 1")
	first := e.ChooseMove(w, 2)
	is.True(first.HasDecision())

	b := mustFEN(t, "4k3/8/8/8/8/8/4P3/4K3 b - - 0 1")
	second := e.Search(b, 2, board.Black)
	is.Equal(second, first)
	is.True(bytes.Contains(buf.Bytes(), []byte("decision-not-legal-at-root")))
}

func TestScoreToString(t *testing.T) {
	is := is.New(t)
	is.Equal(ScoreToString(0), "+0.00")
	is.Equal(ScoreToString(125), "+1.25")
	is.Equal(ScoreToString(-5), "-0.05")
	is.Equal(ScoreToString(-1340), "-13.40")
	is.Equal(ScoreToString(CheckmateValue+35), "White mates")
	is.Equal(ScoreToString(-CheckmateValue), "Black mates")
}
