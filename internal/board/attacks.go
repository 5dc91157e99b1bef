package board

var (
	knightAttacks [64]Bitboard
	kingAttacks   [64]Bitboard
	pawnAttacks   [2][64]Bitboard
)

var (
	knightSteps = [8][2]int{{1, 2}, {2, 1}, {2, -1}, {1, -2}, {-1, -2}, {-2, -1}, {-2, 1}, {-1, 2}}
	kingSteps   = [8][2]int{{1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0}, {-1, -1}, {0, -1}, {1, -1}}
	rookRays    = [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	bishopRays  = [4][2]int{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
)

func init() {
	for _, sq := range Squares {
		knightAttacks[sq] = stepAttacks(sq, knightSteps[:])
		kingAttacks[sq] = stepAttacks(sq, kingSteps[:])

		bb := SquareBB(sq)
		pawnAttacks[White][sq] = bb.NorthEast() | bb.NorthWest()
		pawnAttacks[Black][sq] = bb.SouthEast() | bb.SouthWest()
	}
}

func onBoard(file, rank int) bool {
	return file >= 0 && file < 8 && rank >= 0 && rank < 8
}

func stepAttacks(sq Square, steps [][2]int) Bitboard {
	var bb Bitboard
	for _, d := range steps {
		f, r := sq.File()+d[0], sq.Rank()+d[1]
		if onBoard(f, r) {
			bb |= SquareBB(NewSquare(f, r))
		}
	}
	return bb
}

// rayAttacks walks each ray until it leaves the board or hits a blocker,
// including the blocker square.
func rayAttacks(sq Square, occupied Bitboard, rays *[4][2]int) Bitboard {
	var bb Bitboard
	for _, d := range rays {
		f, r := sq.File()+d[0], sq.Rank()+d[1]
		for onBoard(f, r) {
			to := NewSquare(f, r)
			bb |= SquareBB(to)
			if occupied.Has(to) {
				break
			}
			f, r = f+d[0], r+d[1]
		}
	}
	return bb
}

func KnightAttacks(sq Square) Bitboard { return knightAttacks[sq] }
func KingAttacks(sq Square) Bitboard   { return kingAttacks[sq] }

// PawnAttacks returns the squares a pawn of color c on sq captures on.
func PawnAttacks(sq Square, c Color) Bitboard { return pawnAttacks[c][sq] }

func BishopAttacks(sq Square, occupied Bitboard) Bitboard {
	return rayAttacks(sq, occupied, &bishopRays)
}

func RookAttacks(sq Square, occupied Bitboard) Bitboard {
	return rayAttacks(sq, occupied, &rookRays)
}

func QueenAttacks(sq Square, occupied Bitboard) Bitboard {
	return BishopAttacks(sq, occupied) | RookAttacks(sq, occupied)
}

// AttackersByColor returns the pieces of color c that attack sq.
func (p *Position) AttackersByColor(sq Square, c Color) Bitboard {
	occupied := p.AllOccupied
	return (pawnAttacks[c.Other()][sq] & p.Pieces[c][Pawn]) |
		(knightAttacks[sq] & p.Pieces[c][Knight]) |
		(kingAttacks[sq] & p.Pieces[c][King]) |
		(BishopAttacks(sq, occupied) & (p.Pieces[c][Bishop] | p.Pieces[c][Queen])) |
		(RookAttacks(sq, occupied) & (p.Pieces[c][Rook] | p.Pieces[c][Queen]))
}

// IsSquareAttacked reports whether any piece of byColor attacks sq.
func (p *Position) IsSquareAttacked(sq Square, byColor Color) bool {
	return p.AttackersByColor(sq, byColor) != 0
}

// InCheck reports whether the side to move is in check.
func (p *Position) InCheck() bool {
	ksq := p.Pieces[p.SideToMove][King].LSB()
	if ksq == NoSquare {
		return false
	}
	return p.IsSquareAttacked(ksq, p.SideToMove.Other())
}
