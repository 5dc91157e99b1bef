package engine

import "github.com/hailam/chess50/internal/board"

// CheckmateValue is added for a White mate and subtracted for a Black mate.
// It dwarfs any reachable material sum.
const CheckmateValue = 1_000_000

// Material values indexed by board.PieceType.
var Material = [6]int{
	board.Pawn:   100,
	board.Knight: 300,
	board.Bishop: 350,
	board.Rook:   550,
	board.Queen:  950,
	board.King:   400,
}

// PieceSquare holds the positional bonus per piece type, indexed by square
// with a1 = 0, written from White's point of view. Black pieces read the
// table at 63-sq.
var PieceSquare = [6][64]int{
	board.Pawn: {
		0, 0, 0, 0, 0, 0, 0, 0,
		5, 10, 10, -20, -20, 10, 10, 5,
		5, -5, -10, 0, 0, -10, -5, 5,
		0, 0, 0, 20, 20, 0, 0, 0,
		5, 5, 10, 25, 25, 10, 5, 5,
		10, 10, 20, 30, 30, 20, 10, 10,
		50, 50, 50, 50, 50, 50, 50, 50,
		0, 0, 0, 0, 0, 0, 0, 0,
	},
	board.Knight: {
		-50, -40, -30, -30, -30, -30, -40, -50,
		-40, -20, 0, 5, 5, 0, -20, -40,
		-30, 5, 10, 15, 15, 10, 5, -30,
		-30, 0, 15, 20, 20, 15, 0, -30,
		-30, 5, 15, 20, 20, 15, 5, -30,
		-30, 0, 10, 15, 15, 10, 0, -30,
		-40, -20, 0, 0, 0, 0, -20, -40,
		-50, -40, -30, -30, -30, -30, -40, -50,
	},
	board.Bishop: {
		-20, -10, -10, -10, -10, -10, -10, -20,
		-10, 5, 0, 0, 0, 0, 5, -10,
		-10, 10, 10, 10, 10, 10, 10, -10,
		-10, 0, 10, 10, 10, 10, 0, -10,
		-10, 5, 5, 10, 10, 5, 5, -10,
		-10, 0, 5, 10, 10, 5, 0, -10,
		-10, 0, 0, 0, 0, 0, 0, -10,
		-20, -10, -10, -10, -10, -10, -10, -20,
	},
	board.Rook: {
		0, 0, 0, 5, 5, 0, 0, 0,
		-5, 0, 0, 0, 0, 0, 0, -5,
		-5, 0, 0, 0, 0, 0, 0, -5,
		-5, 0, 0, 0, 0, 0, 0, -5,
		-5, 0, 0, 0, 0, 0, 0, -5,
		-5, 0, 0, 0, 0, 0, 0, -5,
		5, 10, 10, 10, 10, 10, 10, 5,
		0, 0, 0, 0, 0, 0, 0, 0,
	},
	board.Queen: {
		-20, -10, -10, -5, -5, -10, -10, -20,
		-10, 0, 5, 0, 0, 0, 0, -10,
		-10, 5, 5, 5, 5, 5, 0, -10,
		0, 0, 5, 5, 5, 5, 0, -5,
		-5, 0, 5, 5, 5, 5, 0, -5,
		-10, 0, 5, 5, 5, 5, 0, -10,
		-10, 0, 0, 0, 0, 0, 0, -10,
		-20, -10, -10, -5, -5, -10, -10, -20,
	},
	board.King: {
		20, 30, 10, 0, 0, 10, 30, 20,
		20, 20, 0, 0, 0, 0, 20, 20,
		-10, -20, -20, -20, -20, -20, -20, -10,
		-20, -30, -30, -40, -40, -30, -30, -20,
		-30, -40, -40, -50, -50, -40, -40, -30,
		-30, -40, -40, -50, -50, -40, -40, -30,
		-30, -40, -40, -50, -50, -40, -40, -30,
		-30, -40, -40, -50, -50, -40, -40, -30,
	},
}

// Evaluator scores a position on one shared scale: positive favours White.
// Evaluate must not change the position.
type Evaluator interface {
	Evaluate(b Board) int
}

// Classical is the material plus piece-square evaluator.
type Classical struct{}

func (Classical) Evaluate(b Board) int {
	score := PlacementScore(b)
	if out := b.Outcome(); out.Over && out.Termination == board.Checkmate {
		if out.Winner == MaximizingSide {
			score += CheckmateValue
		} else {
			score -= CheckmateValue
		}
	}
	return score
}

// PlacementScore is the material and piece-square part of the evaluation,
// without the checkmate term.
func PlacementScore(b Board) int {
	score := 0
	for _, sq := range board.Squares {
		p := b.PieceAt(sq)
		if p == board.NoPiece {
			continue
		}
		pt := p.Type()
		if p.Color() == MaximizingSide {
			score += Material[pt] + PieceSquare[pt][sq]
		} else {
			score -= Material[pt] + PieceSquare[pt][sq.Reflect()]
		}
	}
	return score
}
