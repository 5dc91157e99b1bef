package board

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPerft(t *testing.T) {
	tests := []struct {
		name  string
		fen   string
		depth int
		nodes int64
	}{
		{"startpos-1", StartFEN, 1, 20},
		{"startpos-2", StartFEN, 2, 400},
		{"startpos-3", StartFEN, 3, 8902},
		{"kiwipete-1", "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1", 1, 48},
		{"kiwipete-2", "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1", 2, 2039},
		{"endgame-ep-3", "8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1", 3, 2812},
		{"promotions-2", "r3k2r/Pppp1ppp/1b3nbN/nP6/BBP1P3/q4N2/Pp1P2PP/R2Q1RK1 w kq - 0 1", 2, 264},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pos, err := ParseFEN(tc.fen)
			require.NoError(t, err)
			assert.Equal(t, tc.nodes, pos.Perft(tc.depth))
			assert.Equal(t, tc.fen, pos.FEN(), "perft must leave the position untouched")
		})
	}
}

func TestDivide(t *testing.T) {
	pos := NewPosition()
	div := pos.Divide(2)
	require.Len(t, div, 20)
	var total int64
	for _, n := range div {
		assert.Equal(t, int64(20), n)
		total += n
	}
	assert.Equal(t, int64(400), total)
}

func TestApplyRetractRestoresState(t *testing.T) {
	pos, err := ParseFEN("r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1")
	require.NoError(t, err)
	fen, key := pos.FEN(), pos.Key

	for _, m := range pos.LegalMoves() {
		retract := pos.Apply(m)
		assert.NotEqual(t, key, pos.Key, "move %s", m)
		retract()
		assert.Equal(t, fen, pos.FEN(), "move %s", m)
		assert.Equal(t, key, pos.Key, "move %s", m)
	}
}

func TestFENRoundTrip(t *testing.T) {
	for _, fen := range []string{
		StartFEN,
		"rnbqkbnr/pp1ppppp/8/2p5/4P3/8/PPPP1PPP/RNBQKBNR w KQkq c6 0 2",
		"8/8/8/8/8/8/6k1/4K2R w K - 12 40",
	} {
		pos, err := ParseFEN(fen)
		require.NoError(t, err)
		assert.Equal(t, fen, pos.FEN())
	}
}

func TestParseFENErrors(t *testing.T) {
	for _, fen := range []string{
		"",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP w KQkq -",
		"rnbqkbnr/pppppppp/9/8/8/8/PPPPPPPP/RNBQKBNR w KQkq -",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR x KQkq -",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQ1BNR w KQkq -",
	} {
		_, err := ParseFEN(fen)
		assert.True(t, errors.Is(err, ErrInvalidFEN), "fen %q: %v", fen, err)
	}
}

func TestOutcome(t *testing.T) {
	tests := []struct {
		name        string
		fen         string
		termination Termination
		winner      Color
	}{
		{"back-rank-mate", "R6k/6pp/8/8/8/8/8/K7 b - - 0 1", Checkmate, White},
		{"fools-mate", "rnb1kbnr/pppp1ppp/8/4p3/6Pq/5P2/PPPPP2P/RNBQKBNR w KQkq - 1 3", Checkmate, Black},
		{"stalemate", "7k/5Q2/6K1/8/8/8/8/8 b - - 0 1", Stalemate, NoColor},
		{"bare-kings", "8/8/4k3/8/8/3K4/8/8 w - - 0 1", InsufficientMaterial, NoColor},
		{"king-knight", "8/8/4k3/8/8/3KN3/8/8 w - - 0 1", InsufficientMaterial, NoColor},
		{"seventy-five", "8/8/4k3/8/8/3K4/8/R7 w - - 150 120", SeventyFiveMoves, NoColor},
		{"in-progress", StartFEN, NotOver, NoColor},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pos, err := ParseFEN(tc.fen)
			require.NoError(t, err)
			out := pos.Outcome()
			assert.Equal(t, tc.termination != NotOver, out.Over)
			assert.Equal(t, tc.termination, out.Termination)
			assert.Equal(t, tc.winner, out.Winner)
		})
	}
}

func TestFivefoldRepetition(t *testing.T) {
	pos := NewPosition()
	shuffle := []string{"Nf3", "Nf6", "Ng1", "Ng8"}
	for i := 0; i < 4; i++ {
		for _, s := range shuffle {
			m, err := pos.ParseMove(s)
			require.NoError(t, err)
			pos.MakeMove(m)
		}
	}
	assert.Equal(t, 5, pos.Repetitions())
	assert.Equal(t, FivefoldRepetition, pos.Outcome().Termination)
}

func TestSAN(t *testing.T) {
	pos, err := ParseFEN("r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1")
	require.NoError(t, err)

	sans := map[string]string{
		"e1g1": "O-O",
		"e1c1": "O-O-O",
		"d5e6": "dxe6",
		"e5f7": "Nxf7",
		"f3h3": "Qxh3",
		"c3b1": "Nb1",
		"e2a6": "Bxa6",
	}
	for uci, want := range sans {
		m, err := pos.ParseMove(uci)
		require.NoError(t, err, uci)
		assert.Equal(t, want, pos.SAN(m), uci)

		back, err := pos.ParseMove(want)
		require.NoError(t, err, want)
		assert.Equal(t, m, back, want)
	}
}

func TestSANDisambiguationAndPromotion(t *testing.T) {
	pos, err := ParseFEN("4k3/1P6/8/8/8/8/4K3/R6R w - - 0 1")
	require.NoError(t, err)

	m, err := pos.ParseMove("a1d1")
	require.NoError(t, err)
	assert.Equal(t, "Rad1", pos.SAN(m))

	m, err = pos.ParseMove("b7b8")
	require.NoError(t, err)
	assert.True(t, m.IsPromotion())
	assert.Equal(t, Queen, m.Promotion())
	assert.Equal(t, "b8=Q+", pos.SAN(m))

	m, err = pos.ParseMove("b8=N")
	require.NoError(t, err)
	assert.Equal(t, "b7b8n", m.String())
}

func TestParseMoveIllegal(t *testing.T) {
	pos := NewPosition()
	for _, s := range []string{"e2e5", "Ke2", "O-O", "zz", "a7a6"} {
		_, err := pos.ParseMove(s)
		assert.True(t, errors.Is(err, ErrIllegalMove), s)
	}
}
