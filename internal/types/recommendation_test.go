package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func int64Ptr(v int64) *int64 { return &v }

func validLightweight() LightweightRecommendation {
	return LightweightRecommendation{
		ProviderID:       7,
		ProgramID:        int64Ptr(3),
		VectorSimilarity: 0.72,
		PracticalScore:   0.81,
		MatchScore:       0.77,
		MatchReasons:     []string{"Great age fit for Leo"},
		Concerns:         []string{},
		Ranking: RankingVector{
			Overall: 0.77, Age: 1, Interests: 0.5, Location: 0.8, Schedule: 0.6, Budget: 1, Quality: 0.9,
		},
	}
}

func TestRecommendationTypeForScore(t *testing.T) {
	tests := []struct {
		score float64
		want  RecommendationType
	}{
		{1, PerfectMatch},
		{0.8, PerfectMatch},
		{0.79, GoodFit},
		{0.65, GoodFit},
		{0.5, WorthExploring},
		{0.45, WorthExploring},
		{0.44, BackupOption},
		{0, BackupOption},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RecommendationTypeForScore(tt.score), "score %v", tt.score)
	}
}

func TestLightweightRecommendation_ScoresInUnitInterval(t *testing.T) {
	require.NoError(t, Validate(validLightweight()))

	mutations := map[string]func(*LightweightRecommendation){
		"vectorSimilarity":  func(l *LightweightRecommendation) { l.VectorSimilarity = 1.01 },
		"practicalScore":    func(l *LightweightRecommendation) { l.PracticalScore = -0.01 },
		"matchScore":        func(l *LightweightRecommendation) { l.MatchScore = 2 },
		"ranking.overall":   func(l *LightweightRecommendation) { l.Ranking.Overall = 1.5 },
		"ranking.age":       func(l *LightweightRecommendation) { l.Ranking.Age = -1 },
		"ranking.interests": func(l *LightweightRecommendation) { l.Ranking.Interests = 1.1 },
		"ranking.location":  func(l *LightweightRecommendation) { l.Ranking.Location = -0.5 },
		"ranking.schedule":  func(l *LightweightRecommendation) { l.Ranking.Schedule = 3 },
		"ranking.budget":    func(l *LightweightRecommendation) { l.Ranking.Budget = -2 },
		"ranking.quality":   func(l *LightweightRecommendation) { l.Ranking.Quality = 1.0001 },
	}

	for field, mutate := range mutations {
		t.Run(field, func(t *testing.T) {
			rec := validLightweight()
			mutate(&rec)
			err := Validate(rec)
			ce := requireContractError(t, err)
			assert.Equal(t, []string{field}, fieldNames(ce))
			// rejected, never clamped
			assert.NotEqual(t, validLightweight(), rec)
		})
	}
}

func TestLightweightRecommendation_DedupeKey(t *testing.T) {
	a := validLightweight()
	b := validLightweight()
	b.TargetChild = "Ana"
	assert.Equal(t, a.DedupeKey(), b.DedupeKey())
	assert.Equal(t, "7:3", a.DedupeKey())

	b.EventID = int64Ptr(11)
	assert.Equal(t, "7:3#11", b.DedupeKey())

	c := validLightweight()
	c.ProgramID = nil
	assert.Equal(t, "7", c.DedupeKey())
}

func TestRecommendation_Validate(t *testing.T) {
	rec := Recommendation{
		ProviderID:         "7",
		MatchScore:         0.5,
		RecommendationType: WorthExploring,
		MatchReasons:       []string{},
		Interests:          []string{},
	}
	require.NoError(t, Validate(rec))

	rec.MatchScore = 1.2
	rec.RecommendationType = "great"
	ce := requireContractError(t, Validate(rec))
	assert.ElementsMatch(t, []string{"matchScore", "recommendationType"}, fieldNames(ce))
}

func TestLightweightRecommendationResult_JSON(t *testing.T) {
	result := LightweightRecommendationResult{
		Recommendations: []LightweightRecommendation{validLightweight()},
		SearchMetadata: SearchMetadata{
			TotalMatches:     1,
			VectorSearchHits: 4,
			FiltersApplied:   []string{"freeOnly"},
			Query:            "swimming",
		},
		Performance: PerformanceMetrics{VectorSearchMs: 1.5, ScoringMs: 0.5, TotalMs: 2.25, CacheHit: true},
	}
	require.NoError(t, Validate(result))

	data, err := json.Marshal(result)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"vectorSearchHits":4`)
	assert.Contains(t, string(data), `"cacheHit":true`)
	assert.NotContains(t, string(data), `"embedding"`)
	assert.NotContains(t, string(data), `"eventId"`)
}
