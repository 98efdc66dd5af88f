package parsing

import (
	"strings"

	"github.com/jonathan/family-activities/internal/types"
)

// interestNormalizations maps common interest variants to canonical names
var interestNormalizations = map[string]string{
	"swim":          "swimming",
	"swim lessons":  "swimming",
	"pool":          "swimming",
	"football":      "soccer",
	"futbol":        "soccer",
	"fútbol":        "soccer",
	"legos":         "lego",
	"robots":        "robotics",
	"coding":        "programming",
	"computers":     "programming",
	"ballet":        "dance",
	"hip hop":       "dance",
	"drawing":       "art",
	"painting":      "art",
	"arts & crafts": "crafts",
	"piano":         "music",
	"guitar":        "music",
	"violin":        "music",
	"martial arts":  "martial_arts",
	"karate":        "martial_arts",
	"taekwondo":     "martial_arts",
	"judo":          "martial_arts",
	"hoops":         "basketball",
}

// NormalizeInterest lowercases an interest and maps it to its canonical form
func NormalizeInterest(interest string) string {
	normalized := strings.ToLower(strings.TrimSpace(interest))
	if normalized == "" {
		return ""
	}
	if canonical, ok := interestNormalizations[normalized]; ok {
		return canonical
	}
	return normalized
}

// NormalizeInterests normalizes and deduplicates interests, preserving first-seen order
func NormalizeInterests(interests []string) []string {
	normalized := make([]string, 0, len(interests))
	seen := make(map[string]bool)
	for _, interest := range interests {
		n := NormalizeInterest(interest)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		normalized = append(normalized, n)
	}
	return normalized
}

// normalizeProfile trims names and canonicalizes interests and activity types in place
func normalizeProfile(profile *types.FamilyProfile) {
	for i := range profile.Adults {
		profile.Adults[i].Name = strings.TrimSpace(profile.Adults[i].Name)
		profile.Adults[i].Email = strings.TrimSpace(profile.Adults[i].Email)
	}
	for i := range profile.Children {
		child := &profile.Children[i]
		child.Name = strings.TrimSpace(child.Name)
		child.Interests = NormalizeInterests(child.Interests)
		child.Allergies = dedupeFold(child.Allergies)
	}
	profile.Preferences.ActivityTypes = NormalizeInterests(profile.Preferences.ActivityTypes)
	profile.Preferences.Languages = dedupeFold(profile.Preferences.Languages)
}

// dedupeFold drops blank and case-insensitive duplicate entries
func dedupeFold(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]bool)
	for _, v := range values {
		v = strings.TrimSpace(v)
		key := strings.ToLower(v)
		if v == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, v)
	}
	return out
}
