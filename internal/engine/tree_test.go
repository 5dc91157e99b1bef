package engine

import (
	"lukechampine.com/frand"

	"github.com/hailam/chess50/internal/board"
)

// treeNode is a node of a synthetic game tree. Every node carries a value
// so the tree can be searched shallower than it is deep.
type treeNode struct {
	id       int
	value    int
	children []*treeNode
}

// treeBoard walks a treeNode tree through the Board interface. Each node
// shows a distinct piece placement (white pawns on the bits of its id) so
// fingerprints never collide between nodes.
type treeBoard struct {
	path     []*treeNode
	rootTurn board.Color

	applied   int
	retracted int
}

func newTreeBoard(root *treeNode, turn board.Color) *treeBoard {
	return &treeBoard{path: []*treeNode{root}, rootTurn: turn}
}

func (t *treeBoard) current() *treeNode {
	return t.path[len(t.path)-1]
}

// Moves are numbered from 1 so none of them equals board.NoMove.
func (t *treeBoard) LegalMoves() []board.Move {
	moves := make([]board.Move, len(t.current().children))
	for i := range moves {
		moves[i] = board.Move(i + 1)
	}
	return moves
}

func (t *treeBoard) Apply(m board.Move) func() {
	t.applied++
	t.path = append(t.path, t.current().children[int(m)-1])
	depth := len(t.path)
	return func() {
		if len(t.path) != depth {
			panic("retract out of order")
		}
		t.retracted++
		t.path = t.path[:len(t.path)-1]
	}
}

func (t *treeBoard) Turn() board.Color {
	if (len(t.path)-1)%2 == 0 {
		return t.rootTurn
	}
	return t.rootTurn.Other()
}

func (t *treeBoard) Outcome() board.Outcome {
	if len(t.current().children) == 0 {
		return board.Outcome{Over: true, Termination: board.Stalemate, Winner: board.NoColor}
	}
	return board.Outcome{Winner: board.NoColor}
}

func (t *treeBoard) PieceAt(sq board.Square) board.Piece {
	if t.current().id&(1<<sq) != 0 {
		return board.NewPiece(board.Pawn, board.White)
	}
	return board.NoPiece
}

// treeEval scores the current tree node with its own value.
type treeEval struct{}

func (treeEval) Evaluate(b Board) int {
	return b.(*treeBoard).current().value
}

// fixedCoin always lands the same way.
type fixedCoin int

func (c fixedCoin) Intn(int) int { return int(c) }

// leaves builds a two-level tree: one child per group, one leaf per value.
func leaves(groups ...[]int) *treeNode {
	next := 1
	root := &treeNode{id: next}
	for _, g := range groups {
		next++
		child := &treeNode{id: next}
		for _, v := range g {
			next++
			child.children = append(child.children, &treeNode{id: next, value: v})
		}
		root.children = append(root.children, child)
	}
	return root
}

// randomTree builds a tree of the given depth with 1..maxBranch children
// per node and small values so that ties are common.
func randomTree(rng *frand.RNG, depth, maxBranch int) *treeNode {
	next := 0
	var build func(d int) *treeNode
	build = func(d int) *treeNode {
		next++
		n := &treeNode{id: next, value: rng.Intn(11) - 5}
		if d == 0 {
			return n
		}
		for i := 0; i < 1+rng.Intn(maxBranch); i++ {
			n.children = append(n.children, build(d-1))
		}
		return n
	}
	return build(depth)
}

// minimax is the unpruned reference search.
func minimax(n *treeNode, depth int, maximizing bool) int {
	if depth == 0 || len(n.children) == 0 {
		return n.value
	}
	best := Infinity
	if maximizing {
		best = -Infinity
	}
	for _, c := range n.children {
		v := minimax(c, depth-1, !maximizing)
		if maximizing {
			best = max(best, v)
		} else {
			best = min(best, v)
		}
	}
	return best
}

func testSeed(b byte) []byte {
	seed := make([]byte, 32)
	seed[0] = b
	return seed
}

func newTreeEngine(seed byte, coin Coin) *Engine {
	e := NewEngine(frand.NewCustom(testSeed(seed), 1024, 12))
	e.SetEvaluator(treeEval{})
	if coin != nil {
		e.SetCoin(coin)
	}
	return e
}
