package board

// Keys for Position.Key. They come from a fixed seed so the same position
// always has the same key across runs.
var (
	zobristPiece      [2][6][64]uint64
	zobristEnPassant  [8]uint64
	zobristCastling   [16]uint64
	zobristSideToMove uint64
)

type prng struct {
	state uint64
}

// next is xorshift64*.
func (p *prng) next() uint64 {
	p.state ^= p.state >> 12
	p.state ^= p.state << 25
	p.state ^= p.state >> 27
	return p.state * 0x2545F4914F6CDD1D
}

func init() {
	rng := &prng{state: 0x98F107A2BEEF1234}
	for c := White; c <= Black; c++ {
		for pt := Pawn; pt <= King; pt++ {
			for sq := range zobristPiece[c][pt] {
				zobristPiece[c][pt][sq] = rng.next()
			}
		}
	}
	for i := range zobristEnPassant {
		zobristEnPassant[i] = rng.next()
	}
	for i := range zobristCastling {
		zobristCastling[i] = rng.next()
	}
	zobristSideToMove = rng.next()
}

// stateKey is the part of Key that does not depend on piece placement.
func (p *Position) stateKey() uint64 {
	k := zobristCastling[p.CastlingRights]
	if p.EnPassant != NoSquare {
		k ^= zobristEnPassant[p.EnPassant.File()]
	}
	if p.SideToMove == Black {
		k ^= zobristSideToMove
	}
	return k
}
