package engine

import (
	"fmt"
	"slices"
	"time"

	"github.com/rs/zerolog"
	"lukechampine.com/frand"

	"github.com/hailam/chess50/internal/board"
)

// DefaultDepth is the search depth in plies when none is configured.
const DefaultDepth = 3

// SearchInfo summarizes one completed search.
type SearchInfo struct {
	Depth     int
	Value     int
	Decision  board.Move
	Nodes     uint64
	CacheHits uint64
	Cutoffs   uint64
	CacheSize int
	Time      time.Duration
}

// Engine is the move chooser handed to front ends. Its fingerprint table
// and cache are created once and live as long as the Engine; start a new
// game with a new Engine.
type Engine struct {
	hasher   *Hasher
	cache    *TranspositionCache
	searcher *Searcher
	depth    int
	logger   zerolog.Logger

	// OnInfo, if set, is called after every search.
	OnInfo func(SearchInfo)
}

// NewEngine builds an engine whose fingerprint table and tie-break coin
// come from rng. A nil rng uses a fresh crypto-seeded generator.
func NewEngine(rng *frand.RNG) *Engine {
	if rng == nil {
		rng = frand.New()
	}
	hasher := NewHasher(rng)
	cache := NewTranspositionCache()
	return &Engine{
		hasher:   hasher,
		cache:    cache,
		searcher: NewSearcher(hasher, cache, Classical{}, rng),
		depth:    DefaultDepth,
		logger:   zerolog.Nop(),
	}
}

// NewSeededEngine is NewEngine with a deterministic generator built from a
// 32-byte seed.
func NewSeededEngine(seed []byte) (*Engine, error) {
	if len(seed) != 32 {
		return nil, fmt.Errorf("engine seed must be 32 bytes, got %d", len(seed))
	}
	return NewEngine(frand.NewCustom(seed, 1024, 12)), nil
}

// SetEvaluator replaces the leaf evaluator.
func (e *Engine) SetEvaluator(ev Evaluator) {
	e.searcher.eval = ev
}

// SetCoin replaces the tie-break source.
func (e *Engine) SetCoin(c Coin) {
	e.searcher.coin = c
}

func (e *Engine) SetLogger(l zerolog.Logger) {
	e.logger = l
}

// SetDepth sets the depth ChooseMove uses when called with depth <= 0.
func (e *Engine) SetDepth(depth int) {
	if depth > 0 {
		e.depth = depth
	}
}

func (e *Engine) Depth() int {
	return e.depth
}

// Cache exposes the engine's transposition cache.
func (e *Engine) Cache() *TranspositionCache {
	return e.cache
}

// Fingerprint returns the cache key of b's piece placement.
func (e *Engine) Fingerprint(b Board) uint64 {
	return e.hasher.Hash(b)
}

// Evaluate returns the static score of b.
func (e *Engine) Evaluate(b Board) int {
	return e.searcher.eval.Evaluate(b)
}

// ChooseMove searches b for the side to move. A depth <= 0 means the
// configured depth.
func (e *Engine) ChooseMove(b Board, depth int) SearchResult {
	if depth <= 0 {
		depth = e.depth
	}
	return e.Search(b, depth, b.Turn())
}

// Search runs a full-window search from b with side to play.
func (e *Engine) Search(b Board, depth int, side board.Color) SearchResult {
	e.searcher.ResetCounters()
	start := time.Now()

	res := e.searcher.Search(b, depth, side)

	info := SearchInfo{
		Depth:     depth,
		Value:     res.Value,
		Decision:  res.Decision,
		Nodes:     e.searcher.Nodes(),
		CacheHits: e.searcher.CacheHits(),
		Cutoffs:   e.searcher.Cutoffs(),
		CacheSize: e.cache.Len(),
		Time:      time.Since(start),
	}
	e.logger.Debug().
		Int("depth", depth).
		Int("value", res.Value).
		Str("decision", res.Decision.String()).
		Uint64("nodes", info.Nodes).
		Uint64("cache-hits", info.CacheHits).
		Uint64("cutoffs", info.Cutoffs).
		Int("cache-size", info.CacheSize).
		Float64("hit-rate", e.cache.HitRate()).
		Dur("elapsed", info.Time).
		Msg("search-done")

	// The fingerprint ignores side to move, so a root cache hit can carry a
	// decision recorded for the other side. It is returned unchanged.
	if res.HasDecision() && !slices.Contains(b.LegalMoves(), res.Decision) {
		e.logger.Warn().
			Str("decision", res.Decision.String()).
			Msg("decision-not-legal-at-root")
	}

	if e.OnInfo != nil {
		e.OnInfo(info)
	}
	return res
}

// ScoreToString formats a score in pawns from White's point of view, or
// names the mating side once the checkmate term dominates.
func ScoreToString(score int) string {
	switch {
	case score >= CheckmateValue/2:
		return "White mates"
	case score <= -CheckmateValue/2:
		return "Black mates"
	}
	sign := "+"
	if score < 0 {
		sign = "-"
		score = -score
	}
	return fmt.Sprintf("%s%d.%02d", sign, score/100, score%100)
}
