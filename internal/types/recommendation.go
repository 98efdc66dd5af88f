package types

// RecommendationType is a coarse bucket for a recommendation's quality
type RecommendationType string

// Recommendation types
const (
	PerfectMatch   RecommendationType = "perfect_match"
	GoodFit        RecommendationType = "good_fit"
	WorthExploring RecommendationType = "worth_exploring"
	BackupOption   RecommendationType = "backup_option"
)

// Score thresholds for recommendation buckets
const (
	perfectMatchThreshold   = 0.8
	goodFitThreshold        = 0.65
	worthExploringThreshold = 0.45
)

// RecommendationTypeForScore buckets a match score
func RecommendationTypeForScore(score float64) RecommendationType {
	switch {
	case score >= perfectMatchThreshold:
		return PerfectMatch
	case score >= goodFitThreshold:
		return GoodFit
	case score >= worthExploringThreshold:
		return WorthExploring
	default:
		return BackupOption
	}
}

// Recommendation is a scored match between a FamilyProfile and a provider or program
type Recommendation struct {
	ProviderID         string             `json:"providerId" validate:"min=1"`
	ProgramID          string             `json:"programId,omitempty"`
	MatchScore         float64            `json:"matchScore" validate:"gte=0,lte=1"`
	MatchReasons       []string           `json:"matchReasons"`
	RecommendationType RecommendationType `json:"recommendationType" validate:"oneof=perfect_match good_fit worth_exploring backup_option"`
	AgeAppropriate     bool               `json:"ageAppropriate"`
	Interests          []string           `json:"interests"`
	LogisticalFit      LogisticalFit      `json:"logisticalFit"`
	Metadata           map[string]any     `json:"metadata,omitempty"`
}

// LogisticalFit flags whether practical constraints are met
type LogisticalFit struct {
	Location       bool `json:"location"`
	Schedule       bool `json:"schedule"`
	Budget         bool `json:"budget"`
	Transportation bool `json:"transportation"`
}

// RankingVector holds the sub-scores behind a lightweight recommendation
type RankingVector struct {
	Overall   float64 `json:"overall" validate:"gte=0,lte=1"`
	Age       float64 `json:"age" validate:"gte=0,lte=1"`
	Interests float64 `json:"interests" validate:"gte=0,lte=1"`
	Location  float64 `json:"location" validate:"gte=0,lte=1"`
	Schedule  float64 `json:"schedule" validate:"gte=0,lte=1"`
	Budget    float64 `json:"budget" validate:"gte=0,lte=1"`
	Quality   float64 `json:"quality" validate:"gte=0,lte=1"`
}

// LightweightRecommendation is an engine result that carries IDs and scores only.
// Results may repeat IDs; callers deduplicate before resolving ActivityMetadata.
type LightweightRecommendation struct {
	ProviderID       int64         `json:"providerId" validate:"gt=0"`
	ProgramID        *int64        `json:"programId,omitempty" validate:"omitempty,gt=0"`
	EventID          *int64        `json:"eventId,omitempty" validate:"omitempty,gt=0"`
	VectorSimilarity float64       `json:"vectorSimilarity" validate:"gte=0,lte=1"`
	PracticalScore   float64       `json:"practicalScore" validate:"gte=0,lte=1"`
	MatchScore       float64       `json:"matchScore" validate:"gte=0,lte=1"`
	MatchReasons     []string      `json:"matchReasons"`
	Concerns         []string      `json:"concerns"`
	Ranking          RankingVector `json:"ranking"`
	TargetChild      string        `json:"targetChild,omitempty"`
}

// Ref returns the catalog reference of the result
func (l *LightweightRecommendation) Ref() ActivityRef {
	return ActivityRef{ProviderID: l.ProviderID, ProgramID: l.ProgramID}
}

// DedupeKey identifies a result across provider, program and event IDs
func (l *LightweightRecommendation) DedupeKey() string {
	key := l.Ref().Key()
	if l.EventID != nil {
		key += "#" + formatInt(*l.EventID)
	}
	return key
}

// LightweightRecommendationResult is the ordered output of the recommendation engine
type LightweightRecommendationResult struct {
	Recommendations []LightweightRecommendation `json:"recommendations" validate:"dive"`
	SearchMetadata  SearchMetadata              `json:"searchMetadata"`
	Performance     PerformanceMetrics          `json:"performance"`
}

// SearchMetadata describes how a result set was produced
type SearchMetadata struct {
	TotalMatches     int       `json:"totalMatches" validate:"gte=0"`
	VectorSearchHits int       `json:"vectorSearchHits" validate:"gte=0"`
	FiltersApplied   []string  `json:"filtersApplied"`
	Query            string    `json:"query"`
	Embedding        []float32 `json:"embedding,omitempty"`
}

// PerformanceMetrics are stage timings in milliseconds
type PerformanceMetrics struct {
	VectorSearchMs float64 `json:"vectorSearchMs" validate:"gte=0"`
	ScoringMs      float64 `json:"scoringMs" validate:"gte=0"`
	TotalMs        float64 `json:"totalMs" validate:"gte=0"`
	CacheHit       bool    `json:"cacheHit"`
}
