package board

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidFEN wraps every FEN parse failure.
	ErrInvalidFEN = errors.New("invalid FEN")
	// ErrIllegalMove is returned when a move string names no legal move.
	ErrIllegalMove = errors.New("illegal move")
)

// CastlingRights is a bit set of the four castling options.
type CastlingRights uint8

const (
	WhiteKingSide CastlingRights = 1 << iota
	WhiteQueenSide
	BlackKingSide
	BlackQueenSide

	NoCastling  CastlingRights = 0
	AllCastling                = WhiteKingSide | WhiteQueenSide | BlackKingSide | BlackQueenSide
)

func (cr CastlingRights) String() string {
	if cr == NoCastling {
		return "-"
	}
	var sb strings.Builder
	for i, c := range "KQkq" {
		if cr&(1<<i) != 0 {
			sb.WriteRune(c)
		}
	}
	return sb.String()
}

// Position is the live game state. The search mutates it in place through
// MakeMove/UnmakeMove (or Apply) and never copies it.
type Position struct {
	Pieces      [2][6]Bitboard
	Occupied    [2]Bitboard
	AllOccupied Bitboard

	SideToMove     Color
	CastlingRights CastlingRights
	EnPassant      Square
	HalfMoveClock  int
	FullMoveNumber int

	// Key is a Zobrist key over the full state, used for repetition
	// detection. It is not the search engine's cache fingerprint.
	Key uint64

	// history holds Key for every position since the root, current last.
	history []uint64
}

// NewPosition returns the standard starting position.
func NewPosition() *Position {
	pos, err := ParseFEN(StartFEN)
	if err != nil {
		panic(err)
	}
	return pos
}

// Copy returns an independent deep copy.
func (p *Position) Copy() *Position {
	cp := *p
	cp.history = append([]uint64(nil), p.history...)
	return &cp
}

// PieceAt returns the piece on sq, or NoPiece.
func (p *Position) PieceAt(sq Square) Piece {
	bb := SquareBB(sq)
	if p.AllOccupied&bb == 0 {
		return NoPiece
	}
	c := White
	if p.Occupied[Black]&bb != 0 {
		c = Black
	}
	for pt := Pawn; pt <= King; pt++ {
		if p.Pieces[c][pt]&bb != 0 {
			return NewPiece(pt, c)
		}
	}
	return NoPiece
}

// Turn returns the side to move.
func (p *Position) Turn() Color {
	return p.SideToMove
}

// Ply returns the number of half moves played since the root position.
func (p *Position) Ply() int {
	return len(p.history) - 1
}

func (p *Position) setPiece(piece Piece, sq Square) {
	c, pt, bb := piece.Color(), piece.Type(), SquareBB(sq)
	p.Pieces[c][pt] |= bb
	p.Occupied[c] |= bb
	p.AllOccupied |= bb
	p.Key ^= zobristPiece[c][pt][sq]
}

func (p *Position) removePiece(sq Square) Piece {
	piece := p.PieceAt(sq)
	if piece == NoPiece {
		return NoPiece
	}
	c, pt, bb := piece.Color(), piece.Type(), SquareBB(sq)
	p.Pieces[c][pt] &^= bb
	p.Occupied[c] &^= bb
	p.AllOccupied &^= bb
	p.Key ^= zobristPiece[c][pt][sq]
	return piece
}

// String draws the board from White's side, rank 8 on top.
func (p *Position) String() string {
	var sb strings.Builder
	for rank := 7; rank >= 0; rank-- {
		fmt.Fprintf(&sb, "%d  ", rank+1)
		for file := 0; file < 8; file++ {
			sb.WriteString(p.PieceAt(NewSquare(file, rank)).String())
			sb.WriteByte(' ')
		}
		sb.WriteByte('\n')
	}
	sb.WriteString("\n   a b c d e f g h\n")
	fmt.Fprintf(&sb, "%s to move, castling %s, en passant %s\n", p.SideToMove, p.CastlingRights, p.EnPassant)
	return sb.String()
}
