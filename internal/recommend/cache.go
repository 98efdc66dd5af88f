package recommend

import (
	"container/list"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/jonathan/family-activities/internal/types"
)

// resultCache is an LRU of engine results with a time-to-live
type resultCache struct {
	capacity int
	ttl      time.Duration
	now      func() time.Time
	entries  map[string]*list.Element
	lru      *list.List
	mu       sync.Mutex
}

type resultEntry struct {
	key     string
	result  types.LightweightRecommendationResult
	expires time.Time
}

func newResultCache(capacity int, ttl time.Duration, now func() time.Time) *resultCache {
	if capacity < 1 {
		capacity = 1
	}
	return &resultCache{
		capacity: capacity,
		ttl:      ttl,
		now:      now,
		entries:  make(map[string]*list.Element),
		lru:      list.New(),
	}
}

func (c *resultCache) get(key string) (types.LightweightRecommendationResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[key]
	if !ok {
		return types.LightweightRecommendationResult{}, false
	}
	entry := elem.Value.(*resultEntry)
	if c.ttl > 0 && c.now().After(entry.expires) {
		c.lru.Remove(elem)
		delete(c.entries, key)
		return types.LightweightRecommendationResult{}, false
	}
	c.lru.MoveToFront(elem)
	return entry.result, true
}

func (c *resultCache) set(key string, result types.LightweightRecommendationResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	expires := c.now().Add(c.ttl)
	if elem, ok := c.entries[key]; ok {
		entry := elem.Value.(*resultEntry)
		entry.result = result
		entry.expires = expires
		c.lru.MoveToFront(elem)
		return
	}

	c.entries[key] = c.lru.PushFront(&resultEntry{key: key, result: result, expires: expires})
	if c.lru.Len() > c.capacity {
		oldest := c.lru.Back()
		c.lru.Remove(oldest)
		delete(c.entries, oldest.Value.(*resultEntry).key)
	}
}

func (c *resultCache) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// fingerprint identifies a request by everything that changes its result; useCache itself is excluded
func fingerprint(req *types.RecommendationRequest) string {
	key := struct {
		Profile          *types.FamilyProfile         `json:"p,omitempty"`
		Query            string                       `json:"q,omitempty"`
		Filters          *types.RecommendationFilters `json:"f,omitempty"`
		Limit            int                          `json:"l"`
		Diversity        float64                      `json:"d"`
		IncludeEmbedding bool                         `json:"e"`
	}{
		Profile:          req.FamilyProfile,
		Query:            strings.TrimSpace(req.Query),
		Filters:          req.Filters,
		Limit:            req.Options.ResultLimit(),
		Diversity:        req.Options.Diversity(),
		IncludeEmbedding: req.Options.IncludeEmbedding,
	}
	data, _ := json.Marshal(key)
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// cloneResult copies the slices of a result so cached values are never shared with callers
func cloneResult(r types.LightweightRecommendationResult) types.LightweightRecommendationResult {
	out := r
	out.Recommendations = make([]types.LightweightRecommendation, len(r.Recommendations))
	for i, rec := range r.Recommendations {
		rec.MatchReasons = append([]string{}, rec.MatchReasons...)
		rec.Concerns = append([]string{}, rec.Concerns...)
		out.Recommendations[i] = rec
	}
	out.SearchMetadata.FiltersApplied = append([]string{}, r.SearchMetadata.FiltersApplied...)
	if r.SearchMetadata.Embedding != nil {
		out.SearchMetadata.Embedding = append([]float32(nil), r.SearchMetadata.Embedding...)
	}
	return out
}
