package board

import "fmt"

// LegalMoves returns every legal move in generation order: pawns, knights,
// bishops, rooks, queens, king, castling. The order is deterministic.
func (p *Position) LegalMoves() []Move {
	pseudo := p.pseudoLegalMoves()
	legal := pseudo[:0]
	us := p.SideToMove
	for _, m := range pseudo {
		undo := p.MakeMove(m)
		if !p.IsSquareAttacked(p.Pieces[us][King].LSB(), us.Other()) {
			legal = append(legal, m)
		}
		p.UnmakeMove(m, undo)
	}
	return legal
}

// HasLegalMoves stops at the first legal move.
func (p *Position) HasLegalMoves() bool {
	us := p.SideToMove
	for _, m := range p.pseudoLegalMoves() {
		undo := p.MakeMove(m)
		ok := !p.IsSquareAttacked(p.Pieces[us][King].LSB(), us.Other())
		p.UnmakeMove(m, undo)
		if ok {
			return true
		}
	}
	return false
}

func (p *Position) pseudoLegalMoves() []Move {
	ml := make([]Move, 0, 64)
	us := p.SideToMove
	own := p.Occupied[us]
	occupied := p.AllOccupied

	ml = p.appendPawnMoves(ml)

	for pt := Knight; pt <= King; pt++ {
		pieces := p.Pieces[us][pt]
		for pieces != 0 {
			from := pieces.PopLSB()
			var targets Bitboard
			switch pt {
			case Knight:
				targets = KnightAttacks(from)
			case Bishop:
				targets = BishopAttacks(from, occupied)
			case Rook:
				targets = RookAttacks(from, occupied)
			case Queen:
				targets = QueenAttacks(from, occupied)
			case King:
				targets = KingAttacks(from)
			}
			targets &^= own
			for targets != 0 {
				ml = append(ml, NewMove(from, targets.PopLSB()))
			}
		}
	}

	return p.appendCastling(ml)
}

func (p *Position) appendPawnMoves(ml []Move) []Move {
	us := p.SideToMove
	pawns := p.Pieces[us][Pawn]
	enemies := p.Occupied[us.Other()]
	empty := ^p.AllOccupied

	var push1, push2, capL, capR, promoRank Bitboard
	var dir int
	if us == White {
		push1 = pawns.North() & empty
		push2 = (push1 & Rank3).North() & empty
		capL = pawns.NorthWest() & enemies
		capR = pawns.NorthEast() & enemies
		promoRank, dir = Rank8, 8
	} else {
		push1 = pawns.South() & empty
		push2 = (push1 & Rank6).South() & empty
		capL = pawns.SouthWest() & enemies
		capR = pawns.SouthEast() & enemies
		promoRank, dir = Rank1, -8
	}

	add := func(targets Bitboard, back int) {
		for targets != 0 {
			to := targets.PopLSB()
			from := Square(int(to) - back)
			if promoRank.Has(to) {
				for _, promo := range [...]PieceType{Queen, Rook, Bishop, Knight} {
					ml = append(ml, NewPromotion(from, to, promo))
				}
				continue
			}
			ml = append(ml, NewMove(from, to))
		}
	}
	add(push1, dir)
	add(push2, 2*dir)
	add(capL, dir-1)
	add(capR, dir+1)

	if p.EnPassant != NoSquare {
		attackers := PawnAttacks(p.EnPassant, us.Other()) & pawns
		for attackers != 0 {
			ml = append(ml, NewEnPassant(attackers.PopLSB(), p.EnPassant))
		}
	}
	return ml
}

type castle struct {
	right          CastlingRights
	king, to       Square
	empty          Bitboard
	safe1, safe2   Square
	rookFrom, rook Square
}

var castles = [2][2]castle{
	White: {
		{WhiteKingSide, E1, G1, SquareBB(F1) | SquareBB(G1), F1, G1, H1, F1},
		{WhiteQueenSide, E1, C1, SquareBB(B1) | SquareBB(C1) | SquareBB(D1), D1, C1, A1, D1},
	},
	Black: {
		{BlackKingSide, E8, G8, SquareBB(F8) | SquareBB(G8), F8, G8, H8, F8},
		{BlackQueenSide, E8, C8, SquareBB(B8) | SquareBB(C8) | SquareBB(D8), D8, C8, A8, D8},
	},
}

func (p *Position) appendCastling(ml []Move) []Move {
	us := p.SideToMove
	them := us.Other()
	for _, c := range castles[us] {
		if p.CastlingRights&c.right == 0 || p.AllOccupied&c.empty != 0 {
			continue
		}
		if p.IsSquareAttacked(c.king, them) || p.IsSquareAttacked(c.safe1, them) || p.IsSquareAttacked(c.safe2, them) {
			continue
		}
		ml = append(ml, NewCastling(c.king, c.to))
	}
	return ml
}

// castlingMask[sq] is cleared from the rights whenever a move touches sq.
var castlingMask = func() [64]CastlingRights {
	var m [64]CastlingRights
	for i := range m {
		m[i] = AllCastling
	}
	m[E1] &^= WhiteKingSide | WhiteQueenSide
	m[H1] &^= WhiteKingSide
	m[A1] &^= WhiteQueenSide
	m[E8] &^= BlackKingSide | BlackQueenSide
	m[H8] &^= BlackKingSide
	m[A8] &^= BlackQueenSide
	return m
}()

// MakeMove plays m, which must come from LegalMoves (or at least be
// pseudo-legal), and returns what UnmakeMove needs to take it back.
// Moving from an empty square is a caller bug and panics.
func (p *Position) MakeMove(m Move) UndoInfo {
	undo := UndoInfo{
		Pieces:         p.Pieces,
		Occupied:       p.Occupied,
		AllOccupied:    p.AllOccupied,
		CastlingRights: p.CastlingRights,
		EnPassant:      p.EnPassant,
		HalfMoveClock:  p.HalfMoveClock,
		Key:            p.Key,
		Captured:       NoPiece,
	}

	us := p.SideToMove
	from, to := m.From(), m.To()
	piece := p.removePiece(from)
	if piece == NoPiece || piece.Color() != us {
		panic(fmt.Sprintf("board: move %s does not move a %s piece", m, us))
	}
	pt := piece.Type()

	p.Key ^= p.stateKey()

	if m.IsEnPassant() {
		capSq := to - 8
		if us == Black {
			capSq = to + 8
		}
		undo.Captured = p.removePiece(capSq)
	} else {
		undo.Captured = p.removePiece(to)
	}

	if m.IsPromotion() {
		p.setPiece(NewPiece(m.Promotion(), us), to)
	} else {
		p.setPiece(piece, to)
	}

	if m.IsCastling() {
		for _, c := range castles[us] {
			if c.to == to {
				p.setPiece(p.removePiece(c.rookFrom), c.rook)
			}
		}
	}

	p.CastlingRights &= castlingMask[from] & castlingMask[to]

	p.EnPassant = NoSquare
	if pt == Pawn && (int(to)-int(from) == 16 || int(from)-int(to) == 16) {
		p.EnPassant = Square((int(from) + int(to)) / 2)
	}

	if pt == Pawn || undo.Captured != NoPiece {
		p.HalfMoveClock = 0
	} else {
		p.HalfMoveClock++
	}
	if us == Black {
		p.FullMoveNumber++
	}
	p.SideToMove = us.Other()

	p.Key ^= p.stateKey()
	p.history = append(p.history, p.Key)
	return undo
}

// UnmakeMove restores the position to what it was before MakeMove(m).
// Calls must nest: the last move made is the first unmade.
func (p *Position) UnmakeMove(m Move, undo UndoInfo) {
	p.Pieces = undo.Pieces
	p.Occupied = undo.Occupied
	p.AllOccupied = undo.AllOccupied
	p.CastlingRights = undo.CastlingRights
	p.EnPassant = undo.EnPassant
	p.HalfMoveClock = undo.HalfMoveClock
	p.Key = undo.Key
	p.SideToMove = p.SideToMove.Other()
	if p.SideToMove == Black {
		p.FullMoveNumber--
	}
	p.history = p.history[:len(p.history)-1]
}

// Apply plays m and returns the function that takes it back.
func (p *Position) Apply(m Move) (retract func()) {
	undo := p.MakeMove(m)
	return func() { p.UnmakeMove(m, undo) }
}
