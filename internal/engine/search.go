package engine

import (
	"github.com/hailam/chess50/internal/board"
)

// Infinity bounds every score the evaluator can produce.
const Infinity = 1 << 30

// SearchResult is a score and the move that achieves it. Decision is
// board.NoMove at a leaf: depth exhausted or game over.
type SearchResult struct {
	Value    int
	Decision board.Move
}

// HasDecision reports whether the search produced a move.
func (r SearchResult) HasDecision() bool {
	return r.Decision != board.NoMove
}

// Coin breaks exact-bound ties. *frand.RNG satisfies it; tests pass a
// seeded generator or a fixed coin.
type Coin interface {
	Intn(n int) int
}

// Searcher runs the two-role minimax recursion. White nodes maximize, Black
// nodes minimize, and both share one cache for the lifetime of the Searcher.
type Searcher struct {
	hasher *Hasher
	cache  *TranspositionCache
	eval   Evaluator
	coin   Coin

	nodes     uint64
	cacheHits uint64
	cutoffs   uint64
}

func NewSearcher(hasher *Hasher, cache *TranspositionCache, eval Evaluator, coin Coin) *Searcher {
	return &Searcher{hasher: hasher, cache: cache, eval: eval, coin: coin}
}

// Search scores b to the given depth with side to play and returns the
// chosen move.
func (s *Searcher) Search(b Board, depth int, side board.Color) SearchResult {
	var value int
	var decision board.Move
	if side == MaximizingSide {
		value, decision = s.maxValue(b, depth, -Infinity, Infinity)
	} else {
		value, decision = s.minValue(b, depth, -Infinity, Infinity)
	}
	return SearchResult{Value: value, Decision: decision}
}

// ResetCounters zeroes the node, hit and cutoff counters.
func (s *Searcher) ResetCounters() {
	s.nodes, s.cacheHits, s.cutoffs = 0, 0, 0
}

func (s *Searcher) Nodes() uint64     { return s.nodes }
func (s *Searcher) CacheHits() uint64 { return s.cacheHits }
func (s *Searcher) Cutoffs() uint64   { return s.cutoffs }

// A cached entry is returned as is, even though it may have been computed
// under a different alpha-beta window and so only be a bound.
func (s *Searcher) maxValue(b Board, depth, alpha, beta int) (int, board.Move) {
	s.nodes++
	key := s.hasher.Hash(b)
	if entry, ok := s.cache.Probe(key, depth); ok {
		s.cacheHits++
		return entry.Value, entry.Decision
	}
	if depth == 0 || b.Outcome().Over {
		return s.eval.Evaluate(b), board.NoMove
	}

	value, decision := -Infinity, board.NoMove
	for _, m := range b.LegalMoves() {
		score := descend(b, m, func() int {
			v, _ := s.minValue(b, depth-1, alpha, beta)
			return v
		})
		if score > value {
			value, decision = score, m
			alpha = max(alpha, value)
		}
		if value > beta || (value == beta && s.heads()) {
			s.cutoffs++
			break
		}
	}

	s.cache.Record(key, value, decision, depth)
	return value, decision
}

func (s *Searcher) minValue(b Board, depth, alpha, beta int) (int, board.Move) {
	s.nodes++
	key := s.hasher.Hash(b)
	if entry, ok := s.cache.Probe(key, depth); ok {
		s.cacheHits++
		return entry.Value, entry.Decision
	}
	if depth == 0 || b.Outcome().Over {
		return s.eval.Evaluate(b), board.NoMove
	}

	value, decision := Infinity, board.NoMove
	for _, m := range b.LegalMoves() {
		score := descend(b, m, func() int {
			v, _ := s.maxValue(b, depth-1, alpha, beta)
			return v
		})
		if score < value {
			value, decision = score, m
			beta = min(beta, value)
		}
		if value < alpha || (value == alpha && s.heads()) {
			s.cutoffs++
			break
		}
	}

	s.cache.Record(key, value, decision, depth)
	return value, decision
}

// heads flips the tie-break coin. On an exact bound the node stops early
// half the time, which varies the choice among equally good lines.
func (s *Searcher) heads() bool {
	return s.coin.Intn(2) == 1
}

// descend plays m, scores the child and takes m back on every exit path.
func descend(b Board, m board.Move, score func() int) int {
	retract := b.Apply(m)
	defer retract()
	return score()
}
