package searcher

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/dshills/codelibrarian/pkg/types"
)

// queryCacheTTL bounds how long a cached search response stays valid.
// Short enough that a re-index (which calls Invalidate explicitly
// anyway) is rarely the only thing that would make a cached answer
// stale, long enough to absorb an agent re-asking the same question a
// few times in one conversation turn.
const queryCacheTTL = 30 * time.Second

const queryCacheSize = 1000

type cacheEntry struct {
	results []types.SearchResult
	expires time.Time
}

// queryCache memoizes Search results by request shape, mirroring the
// teacher's LRU query cache but with a working store (the teacher's
// storeInCache was a stub that never actually cached anything).
type queryCache struct {
	mu    sync.RWMutex
	cache *lru.Cache[[32]byte, cacheEntry]
}

func newQueryCache() *queryCache {
	c, err := lru.New[[32]byte, cacheEntry](queryCacheSize)
	if err != nil {
		// Only fails for a non-positive size, which queryCacheSize never is.
		panic(fmt.Sprintf("searcher: build query cache: %v", err))
	}
	return &queryCache{cache: c}
}

func cacheKey(req Request) [32]byte {
	s := fmt.Sprintf("%s\x00%d\x00%t\x00%t\x00%t", req.Query, req.Limit, req.SemanticOnly, req.TextOnly, req.ForceRewrite)
	return sha256.Sum256([]byte(s))
}

func (c *queryCache) get(req Request) ([]types.SearchResult, bool) {
	key := cacheKey(req)
	c.mu.RLock()
	entry, ok := c.cache.Get(key)
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if time.Now().After(entry.expires) {
		c.mu.Lock()
		c.cache.Remove(key)
		c.mu.Unlock()
		return nil, false
	}
	return entry.results, true
}

func (c *queryCache) set(req Request, results []types.SearchResult) {
	key := cacheKey(req)
	c.mu.Lock()
	c.cache.Add(key, cacheEntry{results: results, expires: time.Now().Add(queryCacheTTL)})
	c.mu.Unlock()
}

// invalidate drops every cached response. Callers invalidate after an
// index pass writes new symbols or edges, since those can change which
// results a previously-cached query should return.
func (c *queryCache) invalidate() {
	c.mu.Lock()
	c.cache.Purge()
	c.mu.Unlock()
}
