package recommend

import (
	"strings"

	"github.com/jonathan/family-activities/internal/types"
)

// ApplyFilters returns the activities that pass every set filter, preserving order.
// Activities without a known price never pass a maxPrice filter.
func ApplyFilters(activities []types.ActivityMetadata, f *types.RecommendationFilters) []types.ActivityMetadata {
	if f == nil {
		return activities
	}

	categories := foldSet(f.Categories)
	neighborhoods := foldSet(f.Neighborhoods)

	out := make([]types.ActivityMetadata, 0, len(activities))
	for i := range activities {
		a := &activities[i]

		if len(categories) > 0 && !categories[fold(a.Category)] {
			continue
		}
		if len(neighborhoods) > 0 && !neighborhoods[fold(a.Location.Neighborhood)] {
			continue
		}
		if f.FreeOnly && !a.IsFree() {
			continue
		}
		if f.VerifiedOnly && !a.Provider.Verified {
			continue
		}
		if f.MaxPrice != nil {
			price, ok := a.LowestPrice()
			if !ok || price > *f.MaxPrice {
				continue
			}
		}
		if f.AgeMin != nil && a.AgeRange.Max < *f.AgeMin {
			continue
		}
		if f.AgeMax != nil && a.AgeRange.Min > *f.AgeMax {
			continue
		}
		out = append(out, *a)
	}
	return out
}

func fold(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func foldSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		if v = fold(v); v != "" {
			set[v] = true
		}
	}
	return set
}
