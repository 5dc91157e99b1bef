// Package notnilchess runs the engine on top of github.com/notnil/chess
// instead of the built-in board package.
package notnilchess

import (
	"fmt"

	"github.com/notnil/chess"

	"github.com/hailam/chess50/internal/board"
	"github.com/hailam/chess50/internal/engine"
)

var _ engine.Board = (*Game)(nil)

// Game is a stack of immutable notnil positions. Apply pushes, the
// returned retract pops.
type Game struct {
	positions []*chess.Position
}

// NewGame starts from the standard initial position.
func NewGame() *Game {
	return &Game{positions: []*chess.Position{chess.NewGame().Position()}}
}

// FromFEN starts from the position described by fen.
func FromFEN(fen string) (*Game, error) {
	opt, err := chess.FEN(fen)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", board.ErrInvalidFEN, err)
	}
	return &Game{positions: []*chess.Position{chess.NewGame(opt).Position()}}, nil
}

// SearchBoard returns a notnil copy of pos for the engine to search on.
// Only the placement, side to move, castling and en passant carry over;
// the repetition history does not.
func SearchBoard(pos *board.Position) (engine.Board, error) {
	g, err := FromFEN(pos.FEN())
	if err != nil {
		return nil, err
	}
	return g, nil
}

// Position returns the live notnil position.
func (g *Game) Position() *chess.Position {
	return g.positions[len(g.positions)-1]
}

func (g *Game) FEN() string {
	return g.Position().String()
}

func (g *Game) LegalMoves() []board.Move {
	valid := g.Position().ValidMoves()
	moves := make([]board.Move, 0, len(valid))
	for _, m := range valid {
		moves = append(moves, FromNotnil(m))
	}
	return moves
}

// Apply plays m, which must be legal here, and returns the function that
// takes it back. Retracts must run in reverse order of application.
func (g *Game) Apply(m board.Move) (retract func()) {
	pos := g.Position()
	var played *chess.Move
	for _, v := range pos.ValidMoves() {
		if FromNotnil(v) == m {
			played = v
			break
		}
	}
	if played == nil {
		panic(fmt.Sprintf("notnilchess: %s is not legal in %s", m, pos))
	}
	depth := len(g.positions)
	g.positions = append(g.positions, pos.Update(played))
	return func() {
		g.positions = g.positions[:depth]
	}
}

func (g *Game) Turn() board.Color {
	return fromColor(g.Position().Turn())
}

func (g *Game) PieceAt(sq board.Square) board.Piece {
	p := g.Position().Board().Piece(chess.Square(sq))
	if p == chess.NoPiece {
		return board.NoPiece
	}
	return board.NewPiece(fromPieceType(p.Type()), fromColor(p.Color()))
}

// Outcome covers checkmate, stalemate and bare-minor insufficient
// material. Move-count and repetition draws need game history, which the
// position stack does not keep.
func (g *Game) Outcome() board.Outcome {
	pos := g.Position()
	switch pos.Status() {
	case chess.Checkmate:
		return board.Outcome{Over: true, Termination: board.Checkmate, Winner: g.Turn().Other()}
	case chess.Stalemate:
		return board.Outcome{Over: true, Termination: board.Stalemate, Winner: board.NoColor}
	}
	if insufficientMaterial(pos.Board()) {
		return board.Outcome{Over: true, Termination: board.InsufficientMaterial, Winner: board.NoColor}
	}
	return board.Outcome{Winner: board.NoColor}
}

// insufficientMaterial is true for bare kings plus at most one minor piece.
func insufficientMaterial(b *chess.Board) bool {
	minors := 0
	for _, p := range b.SquareMap() {
		switch p.Type() {
		case chess.King, chess.NoPieceType:
		case chess.Knight, chess.Bishop:
			minors++
		default:
			return false
		}
	}
	return minors <= 1
}

// FromNotnil converts a notnil move to the board encoding.
func FromNotnil(m *chess.Move) board.Move {
	from, to := board.Square(m.S1()), board.Square(m.S2())
	switch {
	case m.Promo() != chess.NoPieceType:
		return board.NewPromotion(from, to, fromPieceType(m.Promo()))
	case m.HasTag(chess.KingSideCastle), m.HasTag(chess.QueenSideCastle):
		return board.NewCastling(from, to)
	case m.HasTag(chess.EnPassant):
		return board.NewEnPassant(from, to)
	}
	return board.NewMove(from, to)
}

func fromColor(c chess.Color) board.Color {
	switch c {
	case chess.White:
		return board.White
	case chess.Black:
		return board.Black
	}
	return board.NoColor
}

func fromPieceType(pt chess.PieceType) board.PieceType {
	switch pt {
	case chess.Pawn:
		return board.Pawn
	case chess.Knight:
		return board.Knight
	case chess.Bishop:
		return board.Bishop
	case chess.Rook:
		return board.Rook
	case chess.Queen:
		return board.Queen
	case chess.King:
		return board.King
	}
	return board.NoPieceType
}
