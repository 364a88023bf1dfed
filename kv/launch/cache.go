package launch

import (
	lru "github.com/hashicorp/golang-lru"
	"github.com/mitchellh/hashstructure"
)

// defaultCacheSize bounds the number of compiled queries a Registry keeps
// around at once. The lifecycle section (§5) calls for weak references
// keyed by spec text so a cache entry persists only while something else
// keeps the spec tree reachable; an LRU of bounded size approximates that
// without requiring a real weak-reference primitive, evicting the query
// least recently requested through Registry.Compile instead of waiting on
// a GC-visible reachability signal.
const defaultCacheSize = 256

// cacheKey is the (rowType, spec-text, query-text) triple §3's Lifecycle
// section specifies planned specs are keyed by. queryText is expected to
// already be canonicalized (round-tripped through the filter parser) by
// the caller, so that two requests differing only in filter-text
// formatting collide onto the same entry.
type cacheKey struct {
	RowType   string
	SpecText  string
	QueryText string
}

func hashKey(k cacheKey) (uint64, error) {
	return hashstructure.Hash(k, nil)
}

func newCache(size int) (*lru.Cache, error) {
	if size <= 0 {
		size = defaultCacheSize
	}
	return lru.New(size)
}
