package recommend

import "github.com/jonathan/family-activities/internal/types"

// candidate is a scored recommendation plus the category used for diversity
type candidate struct {
	rec      types.LightweightRecommendation
	category string
}

// diversify greedily orders candidates, penalizing categories already picked.
// limit bounds the number of distinct activities (by DedupeKey); further entries
// for an activity already picked are kept so every matching child stays listed.
// Candidates must be sorted by match score. A weight of 0 keeps score order.
func diversify(cands []candidate, weight float64, limit int) []types.LightweightRecommendation {
	out := make([]types.LightweightRecommendation, 0, len(cands))
	if limit <= 0 {
		return out
	}

	used := make([]bool, len(cands))
	picked := make(map[string]bool)
	perCategory := make(map[string]int)

	for {
		best := -1
		bestScore := 0.0
		for i, c := range cands {
			if used[i] {
				continue
			}
			key := c.rec.DedupeKey()
			if !picked[key] && len(picked) >= limit {
				used[i] = true
				continue
			}
			adjusted := c.rec.MatchScore
			if len(out) > 0 {
				adjusted -= weight * float64(perCategory[c.category]) / float64(len(out))
			}
			if best == -1 || adjusted > bestScore {
				best, bestScore = i, adjusted
			}
		}
		if best == -1 {
			return out
		}
		used[best] = true
		picked[cands[best].rec.DedupeKey()] = true
		perCategory[cands[best].category]++
		out = append(out, cands[best].rec)
	}
}
