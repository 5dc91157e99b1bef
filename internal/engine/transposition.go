package engine

import "github.com/hailam/chess50/internal/board"

// CacheEntry is the best known result for one fingerprint.
type CacheEntry struct {
	Value    int
	Decision board.Move
	Depth    int
}

// TranspositionCache memoizes search results by fingerprint. It has no size
// bound and no replacement policy: the last Record for a key wins. It lives
// as long as the Engine that owns it and is not safe for concurrent use.
type TranspositionCache struct {
	entries map[uint64]CacheEntry

	probes uint64
	hits   uint64
}

func NewTranspositionCache() *TranspositionCache {
	return &TranspositionCache{entries: make(map[uint64]CacheEntry)}
}

// Probe returns the entry for key if one exists that was searched at least
// requiredDepth plies deep.
func (tc *TranspositionCache) Probe(key uint64, requiredDepth int) (CacheEntry, bool) {
	tc.probes++
	entry, ok := tc.entries[key]
	if !ok || entry.Depth < requiredDepth {
		return CacheEntry{}, false
	}
	tc.hits++
	return entry, true
}

// Record stores the result for key, overwriting whatever was there.
func (tc *TranspositionCache) Record(key uint64, value int, decision board.Move, depth int) {
	tc.entries[key] = CacheEntry{Value: value, Decision: decision, Depth: depth}
}

// Len returns the number of stored fingerprints.
func (tc *TranspositionCache) Len() int {
	return len(tc.entries)
}

// HitRate is the percentage of probes that were answered.
func (tc *TranspositionCache) HitRate() float64 {
	if tc.probes == 0 {
		return 0
	}
	return float64(tc.hits) / float64(tc.probes) * 100
}
