package recommend

import (
	"strconv"

	"github.com/jonathan/family-activities/internal/types"
)

// Dedupe drops repeated (providerId, programId, eventId) entries, keeping the first
// and therefore best-ranked occurrence. Order is preserved.
func Dedupe(recs []types.LightweightRecommendation) []types.LightweightRecommendation {
	seen := make(map[string]bool, len(recs))
	out := make([]types.LightweightRecommendation, 0, len(recs))
	for _, r := range recs {
		key := r.DedupeKey()
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, r)
	}
	return out
}

// Refs returns the distinct catalog references of a result list
func Refs(recs []types.LightweightRecommendation) []types.ActivityRef {
	seen := make(map[string]bool, len(recs))
	refs := make([]types.ActivityRef, 0, len(recs))
	for i := range recs {
		ref := recs[i].Ref()
		if seen[ref.Key()] {
			continue
		}
		seen[ref.Key()] = true
		refs = append(refs, ref)
	}
	return refs
}

// ToRecommendation resolves a lightweight result against its catalog record.
// profile may be nil for query-only requests.
func ToRecommendation(l *types.LightweightRecommendation, a *types.ActivityMetadata, profile *types.FamilyProfile) types.Recommendation {
	rec := types.Recommendation{
		ProviderID:         strconv.FormatInt(l.ProviderID, 10),
		MatchScore:         l.MatchScore,
		MatchReasons:       nonNil(append([]string(nil), l.MatchReasons...)),
		RecommendationType: types.RecommendationTypeForScore(l.MatchScore),
		AgeAppropriate:     l.Ranking.Age == 1,
		Interests:          recommendationInterests(a, profile),
		LogisticalFit:      Logistics(a, profile),
		Metadata: map[string]any{
			"name":             a.Name,
			"category":         a.Category,
			"vectorSimilarity": l.VectorSimilarity,
			"practicalScore":   l.PracticalScore,
			"concerns":         nonNil(l.Concerns),
			"ranking":          l.Ranking,
		},
	}
	if l.ProgramID != nil {
		rec.ProgramID = strconv.FormatInt(*l.ProgramID, 10)
	}
	if l.EventID != nil {
		rec.Metadata["eventId"] = *l.EventID
	}
	if l.TargetChild != "" {
		rec.Metadata["targetChild"] = l.TargetChild
	}
	if a.HasCoordinates() {
		rec.Metadata["latitude"] = *a.Location.Latitude
		rec.Metadata["longitude"] = *a.Location.Longitude
	}
	return rec
}

// Logistics reports which practical constraints of the family an activity satisfies
func Logistics(a *types.ActivityMetadata, profile *types.FamilyProfile) types.LogisticalFit {
	if profile == nil {
		return types.LogisticalFit{Location: true, Schedule: true, Budget: true, Transportation: true}
	}
	var card scoreCard
	card.scoreLogistics(a, profile)
	return card.fit
}

// recommendationInterests lists the activity interests shared with the family, or all of them if none are shared
func recommendationInterests(a *types.ActivityMetadata, profile *types.FamilyProfile) []string {
	if profile == nil {
		return nonNil(append([]string(nil), a.Interests...))
	}
	_, matched := interestScore(a, profile.AllInterests())
	if len(matched) > 0 {
		return matched
	}
	return nonNil(append([]string(nil), a.Interests...))
}
