package notnilchess

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hailam/chess50/internal/board"
	"github.com/hailam/chess50/internal/engine"
)

var crossCheckFENs = []string{
	board.StartFEN,
	"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
	"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
	"r3k2r/Pppp1ppp/1b3nbN/nP6/BBP1P3/q4N2/Pp1P2PP/R2Q1RK1 w kq - 0 1",
	"rnbqkbnr/ppp1p1pp/8/3pPp2/8/8/PPPP1PPP/RNBQKBNR w KQkq f6 0 3",
}

func perft(b engine.Board, depth int) int {
	if depth == 0 {
		return 1
	}
	n := 0
	for _, m := range b.LegalMoves() {
		retract := b.Apply(m)
		n += perft(b, depth-1)
		retract()
	}
	return n
}

func moveStrings(moves []board.Move) []string {
	out := make([]string, len(moves))
	for i, m := range moves {
		out[i] = m.String()
	}
	return out
}

func TestLegalMovesAgree(t *testing.T) {
	for _, fen := range crossCheckFENs {
		g, err := FromFEN(fen)
		require.NoError(t, err)
		p, err := board.ParseFEN(fen)
		require.NoError(t, err)

		assert.ElementsMatch(t, p.LegalMoves(), g.LegalMoves(), fen)
		assert.Equal(t, p.Turn(), g.Turn(), fen)

		// Same moves lead to the same placements.
		for _, m := range p.LegalMoves() {
			undoP := p.Apply(m)
			undoG := g.Apply(m)
			for _, sq := range board.Squares {
				require.Equal(t, p.PieceAt(sq), g.PieceAt(sq), "%s after %s at %s", fen, m, sq)
			}
			assert.ElementsMatch(t, moveStrings(p.LegalMoves()), moveStrings(g.LegalMoves()), "%s after %s", fen, m)
			undoG()
			undoP()
		}
		assert.Equal(t, fen, p.FEN())
	}
}

func TestPerft(t *testing.T) {
	tests := []struct {
		fen   string
		depth int
		nodes int
	}{
		{board.StartFEN, 3, 8902},
		{"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1", 2, 2039},
		{"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1", 3, 2812},
	}
	for _, tt := range tests {
		g, err := FromFEN(tt.fen)
		require.NoError(t, err)
		assert.Equal(t, tt.nodes, perft(g, tt.depth), tt.fen)
	}
}

func TestOutcome(t *testing.T) {
	tests := []struct {
		name string
		fen  string
		want board.Outcome
	}{
		{"fools mate", "rnb1kbnr/pppp1ppp/8/4p3/6Pq/5P2/PPPPP2P/RNBQKBNR w KQkq - 1 3",
			board.Outcome{Over: true, Termination: board.Checkmate, Winner: board.Black}},
		{"back rank", "R5k1/5ppp/8/8/8/8/8/6K1 b - - 0 1",
			board.Outcome{Over: true, Termination: board.Checkmate, Winner: board.White}},
		{"stalemate", "7k/5Q2/6K1/8/8/8/8/8 b - - 0 1",
			board.Outcome{Over: true, Termination: board.Stalemate, Winner: board.NoColor}},
		{"bare kings", "8/8/4k3/8/8/3K4/8/8 w - - 0 1",
			board.Outcome{Over: true, Termination: board.InsufficientMaterial, Winner: board.NoColor}},
		{"in progress", board.StartFEN, board.Outcome{Winner: board.NoColor}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := FromFEN(tt.fen)
			require.NoError(t, err)
			assert.Equal(t, tt.want, g.Outcome())

			p, err := board.ParseFEN(tt.fen)
			require.NoError(t, err)
			assert.Equal(t, p.Outcome(), g.Outcome())
		})
	}
}

func TestSearchValuesAgree(t *testing.T) {
	seed := make([]byte, 32)
	for _, fen := range crossCheckFENs {
		g, err := FromFEN(fen)
		require.NoError(t, err)
		p, err := board.ParseFEN(fen)
		require.NoError(t, err)

		eg, err := engine.NewSeededEngine(seed)
		require.NoError(t, err)
		ep, err := engine.NewSeededEngine(seed)
		require.NoError(t, err)

		assert.Equal(t, ep.Evaluate(p), eg.Evaluate(g), fen)
		rg := eg.ChooseMove(g, 2)
		rp := ep.ChooseMove(p, 2)
		assert.Equal(t, rp.Value, rg.Value, fen)
		assert.Contains(t, g.LegalMoves(), rg.Decision, fen)
	}
}

func TestFromFENError(t *testing.T) {
	_, err := FromFEN("not a fen")
	require.ErrorIs(t, err, board.ErrInvalidFEN)
}

func TestApplyIllegalPanics(t *testing.T) {
	g := NewGame()
	assert.Panics(t, func() { g.Apply(board.NewMove(board.E2, board.E5)) })
}

func TestSearchBoardCopiesPosition(t *testing.T) {
	pos := board.NewPosition()
	for _, s := range []string{"e2e4", "c7c5", "g1f3"} {
		m, err := pos.ParseMove(s)
		require.NoError(t, err)
		pos.MakeMove(m)
	}

	b, err := SearchBoard(pos)
	require.NoError(t, err)
	assert.Equal(t, pos.Turn(), b.Turn())
	assert.ElementsMatch(t, pos.LegalMoves(), b.LegalMoves())
	for _, sq := range board.Squares {
		assert.Equal(t, pos.PieceAt(sq), b.PieceAt(sq), sq.String())
	}
}
