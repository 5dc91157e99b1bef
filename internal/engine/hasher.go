package engine

import (
	"encoding/binary"

	"lukechampine.com/frand"

	"github.com/hailam/chess50/internal/board"
)

// pieceIndices is the number of (type, color) combinations.
const pieceIndices = 12

// Hasher fingerprints piece placement with a Zobrist table drawn once per
// engine. Side to move, castling rights, en passant and clocks are not part
// of the fingerprint, so positions differing only there share cache entries.
type Hasher struct {
	table [64][pieceIndices]uint64
}

// NewHasher draws the 64x12 table from rng.
func NewHasher(rng *frand.RNG) *Hasher {
	h := &Hasher{}
	for sq := range h.table {
		for i := range h.table[sq] {
			h.table[sq][i] = binary.LittleEndian.Uint64(rng.Bytes(8))
		}
	}
	return h
}

// Hash returns the fingerprint of b's piece placement.
func (h *Hasher) Hash(b Board) uint64 {
	return h.hashSquares(b, board.Squares[:])
}

func (h *Hasher) hashSquares(b Board, order []board.Square) uint64 {
	var key uint64
	for _, sq := range order {
		p := b.PieceAt(sq)
		if p == board.NoPiece {
			continue
		}
		key ^= h.table[sq][pieceIndex(p)]
	}
	return key
}

// pieceIndex is type + 6*color, in [0, 12).
func pieceIndex(p board.Piece) int {
	return int(p.Type()) + 6*int(p.Color())
}
