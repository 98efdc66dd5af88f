package recommend

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/jonathan/family-activities/internal/embedding"
	"github.com/jonathan/family-activities/internal/types"
)

// minVectorHit is the similarity above which an activity counts as a vector-search hit
const minVectorHit = 0.05

// Catalog supplies the activities the engine ranks
type Catalog interface {
	ListActivities(ctx context.Context) ([]types.ActivityMetadata, error)
}

// EngineConfig tunes the result cache
type EngineConfig struct {
	CacheSize int
	CacheTTL  time.Duration
}

// DefaultEngineConfig returns the default cache settings
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		CacheSize: 128,
		CacheTTL:  10 * time.Minute,
	}
}

// Engine produces LightweightRecommendationResults from a catalog
type Engine struct {
	catalog  Catalog
	embedder embedding.Embedder
	results  *resultCache
}

// NewEngine creates an engine. A nil embedder falls back to the hash embedder.
func NewEngine(catalog Catalog, embedder embedding.Embedder, config EngineConfig) *Engine {
	if embedder == nil {
		embedder = embedding.NewHashEmbedder(embedding.DefaultHashDimensions)
	}
	if config.CacheSize <= 0 {
		config.CacheSize = DefaultEngineConfig().CacheSize
	}
	return &Engine{
		catalog:  catalog,
		embedder: embedder,
		results:  newResultCache(config.CacheSize, config.CacheTTL, time.Now),
	}
}

// Recommend ranks the catalog for a request. Results may contain the same activity
// once per matching child; callers deduplicate with Dedupe.
func (e *Engine) Recommend(ctx context.Context, req *types.RecommendationRequest) (*types.LightweightRecommendationResult, error) {
	start := time.Now()

	query := QueryText(req)
	if query == "" {
		return nil, fmt.Errorf("recommendation request has neither a query nor a family profile")
	}

	key := fingerprint(req)
	if req.Options.CacheEnabled() {
		if cached, ok := e.results.get(key); ok {
			result := cloneResult(cached)
			result.Performance = types.PerformanceMetrics{
				TotalMs:  millis(time.Since(start)),
				CacheHit: true,
			}
			return &result, nil
		}
	}

	activities, err := e.catalog.ListActivities(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load activities: %w", err)
	}
	activities = ApplyFilters(activities, req.Filters)

	// Vector stage
	vectorStart := time.Now()
	queryVec, err := e.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	texts := make([]string, len(activities))
	for i := range activities {
		texts[i] = activityText(&activities[i])
	}
	activityVecs, err := e.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to embed activities: %w", err)
	}
	similarities := make([]float64, len(activities))
	hits := 0
	for i := range activities {
		similarities[i] = embedding.Similarity(queryVec, activityVecs[i])
		if similarities[i] >= minVectorHit {
			hits++
		}
	}
	vectorMs := millis(time.Since(vectorStart))

	// Practical scoring
	scoringStart := time.Now()
	cands := e.score(req, activities, similarities, query)
	sort.SliceStable(cands, func(i, j int) bool {
		return cands[i].rec.MatchScore > cands[j].rec.MatchScore
	})
	ranked := diversify(cands, req.Options.Diversity(), req.Options.ResultLimit())
	scoringMs := millis(time.Since(scoringStart))

	result := types.LightweightRecommendationResult{
		Recommendations: ranked,
		SearchMetadata: types.SearchMetadata{
			TotalMatches:     len(cands),
			VectorSearchHits: hits,
			FiltersApplied:   req.Filters.Names(),
			Query:            query,
		},
		Performance: types.PerformanceMetrics{
			VectorSearchMs: vectorMs,
			ScoringMs:      scoringMs,
		},
	}
	if req.Options.IncludeEmbedding {
		result.SearchMetadata.Embedding = queryVec
	}
	// Not wrapped: invalid output must not map to a 400
	if err := types.Validate(&result); err != nil {
		return nil, fmt.Errorf("failed to validate recommendation result: %v", err)
	}

	if req.Options.CacheEnabled() {
		e.results.set(key, cloneResult(result))
	}
	result.Performance.TotalMs = millis(time.Since(start))

	log.Printf("[recommend] %d candidates, %d vector hits, %d returned in %.1fms",
		len(cands), hits, len(ranked), result.Performance.TotalMs)
	return &result, nil
}

// score emits one candidate per (activity, child) pair whose age fits, or one per activity for bare queries
func (e *Engine) score(req *types.RecommendationRequest, activities []types.ActivityMetadata, similarities []float64, query string) []candidate {
	profile := req.FamilyProfile
	var queryTokens []string
	if profile == nil {
		queryTokens = embedding.Tokenize(query)
	}

	var cands []candidate
	for i := range activities {
		a := &activities[i]
		sim := similarities[i]

		if profile == nil {
			cands = append(cands, newCandidate(a, sim, scoreActivity(a, nil, nil, queryTokens), ""))
			continue
		}
		for ci := range profile.Children {
			child := &profile.Children[ci]
			card := scoreActivity(a, profile, child, nil)
			if card.ranking.Age == 0 {
				continue
			}
			cands = append(cands, newCandidate(a, sim, card, child.Name))
		}
	}
	return cands
}

func newCandidate(a *types.ActivityMetadata, sim float64, card scoreCard, child string) candidate {
	rec := types.LightweightRecommendation{
		ProviderID:       a.ProviderID,
		ProgramID:        a.ProgramID,
		VectorSimilarity: clamp01(sim),
		PracticalScore:   card.practical,
		MatchReasons:     nonNil(card.reasons),
		Concerns:         nonNil(card.concerns),
		Ranking:          card.ranking,
		TargetChild:      child,
	}
	if sim >= 0.3 {
		rec.MatchReasons = append([]string{"Closely matches what you are looking for"}, rec.MatchReasons...)
	}
	rec.MatchScore = composite(rec.VectorSimilarity, rec.PracticalScore)
	rec.Ranking.Overall = rec.MatchScore
	return candidate{rec: rec, category: fold(a.Category)}
}

// Close releases the embedder
func (e *Engine) Close() error {
	return e.embedder.Close()
}

func millis(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
