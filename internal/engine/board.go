// Package engine chooses moves with a fixed-depth minimax search with
// alpha-beta pruning, a piece-square evaluator and a transposition cache.
package engine

import "github.com/hailam/chess50/internal/board"

// Board is what the search needs from a rules engine. Implementations own
// the single live position; the search mutates it through Apply and relies
// on every retract being called in reverse order of Apply.
type Board interface {
	// LegalMoves lists the moves for the side to move, in a stable order.
	LegalMoves() []board.Move
	// Apply plays m and returns the function that restores the exact
	// previous position.
	Apply(m board.Move) (retract func())
	Turn() board.Color
	Outcome() board.Outcome
	PieceAt(sq board.Square) board.Piece
}

// MaximizingSide is the side whose gains raise the score.
const MaximizingSide = board.White

var _ Board = (*board.Position)(nil)
