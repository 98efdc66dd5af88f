// Package recommend matches family profiles and free-text queries against the activity catalog.
package recommend

import (
	"strconv"
	"strings"

	"github.com/jonathan/family-activities/internal/types"
)

// QueryText builds the text that is embedded for the vector stage.
// An explicit query wins; otherwise the profile's interests, activity types and neighborhood are used.
func QueryText(req *types.RecommendationRequest) string {
	if q := strings.TrimSpace(req.Query); q != "" {
		return q
	}
	if req.FamilyProfile == nil {
		return ""
	}
	return ProfileQuery(req.FamilyProfile)
}

// ProfileQuery summarizes a family profile as a search phrase
func ProfileQuery(p *types.FamilyProfile) string {
	var parts []string
	if interests := p.AllInterests(); len(interests) > 0 {
		parts = append(parts, "activities for "+strings.Join(interests, ", "))
	}

	ages := p.Ages()
	if len(ages) > 0 {
		strs := make([]string, len(ages))
		for i, a := range ages {
			strs[i] = strconv.Itoa(a)
		}
		parts = append(parts, "ages "+strings.Join(strs, ", "))
	}

	if n := p.Location.Neighborhood; n != "" {
		parts = append(parts, "near "+n)
	} else if c := p.Location.City; c != "" {
		parts = append(parts, "in "+c)
	}
	return strings.Join(parts, "; ")
}

// activityText is the text embedded for a catalog entry
func activityText(a *types.ActivityMetadata) string {
	var b strings.Builder
	b.WriteString(a.Name)
	b.WriteString(". ")
	b.WriteString(a.Category)
	if a.Subcategory != "" {
		b.WriteString(" ")
		b.WriteString(a.Subcategory)
	}
	if len(a.Interests) > 0 {
		b.WriteString(". ")
		b.WriteString(strings.Join(a.Interests, ", "))
	}
	if len(a.Tags) > 0 {
		b.WriteString(". ")
		b.WriteString(strings.Join(a.Tags, ", "))
	}
	if a.Description != "" {
		b.WriteString(". ")
		b.WriteString(a.Description)
	}
	return b.String()
}
