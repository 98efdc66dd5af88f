package recommend

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/jonathan/family-activities/internal/embedding"
	"github.com/jonathan/family-activities/internal/types"
)

// Composite weights
const (
	vectorWeight    = 0.4
	practicalWeight = 0.6
)

// Practical sub-score weights (sum to 1)
const (
	ageWeight       = 0.25
	interestsWeight = 0.3
	locationWeight  = 0.15
	scheduleWeight  = 0.1
	budgetWeight    = 0.1
	qualityWeight   = 0.1
)

// neutralScore is used when the family gave no information for a dimension
const neutralScore = 0.5

// nearAgeScore is the age score of a child one year outside the activity's range
const nearAgeScore = 0.4

// scoreCard is the practical evaluation of one activity for one child (or for a bare query)
type scoreCard struct {
	ranking   types.RankingVector
	practical float64
	reasons   []string
	concerns  []string
	matched   []string
	fit       types.LogisticalFit
}

// scoreActivity evaluates an activity. child is nil for query-only requests,
// in which case queryTokens stand in for interests.
func scoreActivity(a *types.ActivityMetadata, profile *types.FamilyProfile, child *types.Child, queryTokens []string) scoreCard {
	var card scoreCard
	card.fit = types.LogisticalFit{Location: true, Schedule: true, Budget: true, Transportation: true}

	// Age
	if child != nil {
		score, dist := ageScore(a.AgeRange, child.Age)
		card.ranking.Age = score
		switch {
		case dist == 0:
			card.reasons = append(card.reasons, fmt.Sprintf("Great for %s's age (%d-%d)", child.Name, a.AgeRange.Min, a.AgeRange.Max))
		case score > 0:
			card.concerns = append(card.concerns, fmt.Sprintf("%s is just outside the %d-%d age range", child.Name, a.AgeRange.Min, a.AgeRange.Max))
		}
	} else {
		card.ranking.Age = neutralScore
	}

	// Interests
	var interests []string
	if child != nil {
		interests = append(interests, child.Interests...)
		interests = append(interests, profile.Preferences.ActivityTypes...)
	} else {
		interests = queryTokens
	}
	card.ranking.Interests, card.matched = interestScore(a, interests)
	if len(card.matched) > 0 {
		if child != nil {
			card.reasons = append(card.reasons, fmt.Sprintf("Matches %s's interest in %s", child.Name, strings.Join(card.matched, ", ")))
		} else {
			card.reasons = append(card.reasons, "Matches your search for "+strings.Join(card.matched, ", "))
		}
	}

	if profile != nil {
		card.scoreLogistics(a, profile)
	} else {
		card.ranking.Location = neutralScore
		card.ranking.Schedule = neutralScore
		card.ranking.Budget = budgetOnlyFree(a, &card)
	}

	// Quality
	card.ranking.Quality = qualityScore(a.Provider)
	if a.Provider.Rating >= 4.5 && a.Provider.ReviewCount >= 10 {
		card.reasons = append(card.reasons, fmt.Sprintf("Highly rated (%.1f from %d reviews)", a.Provider.Rating, a.Provider.ReviewCount))
	}
	if a.Provider.Verified {
		card.reasons = append(card.reasons, "Verified provider")
	}

	// Capacity
	if c := a.Capacity; c.MaxParticipants > 0 && c.CurrentEnrollment >= c.MaxParticipants {
		if c.WaitlistAvailable {
			card.concerns = append(card.concerns, "Currently full, waitlist available")
		} else {
			card.concerns = append(card.concerns, "Currently full")
		}
	}
	if r := a.Requirements; r != nil && r.ParentParticipation {
		card.concerns = append(card.concerns, "Requires a participating parent")
	}

	card.practical = clamp01(ageWeight*card.ranking.Age +
		interestsWeight*card.ranking.Interests +
		locationWeight*card.ranking.Location +
		scheduleWeight*card.ranking.Schedule +
		budgetWeight*card.ranking.Budget +
		qualityWeight*card.ranking.Quality)
	return card
}

// scoreLogistics fills the location, schedule and budget sub-scores for a profile
func (card *scoreCard) scoreLogistics(a *types.ActivityMetadata, profile *types.FamilyProfile) {
	loc := locationFit(a, profile.Location)
	card.ranking.Location = loc.score
	card.fit.Location = loc.score >= neutralScore
	card.fit.Transportation = loc.reachable
	if loc.reason != "" {
		card.reasons = append(card.reasons, loc.reason)
	}
	if loc.concern != "" {
		card.concerns = append(card.concerns, loc.concern)
	}

	sched := scheduleFit(a, profile.Preferences)
	card.ranking.Schedule = sched.score
	card.fit.Schedule = sched.score >= neutralScore
	if sched.reason != "" {
		card.reasons = append(card.reasons, sched.reason)
	}
	if sched.concern != "" {
		card.concerns = append(card.concerns, sched.concern)
	}

	budget := budgetFit(a, profile.Preferences.Budget)
	card.ranking.Budget = budget.score
	card.fit.Budget = budget.ok
	if budget.reason != "" {
		card.reasons = append(card.reasons, budget.reason)
	}
	if budget.concern != "" {
		card.concerns = append(card.concerns, budget.concern)
	}
}

func budgetOnlyFree(a *types.ActivityMetadata, card *scoreCard) float64 {
	if a.IsFree() {
		card.reasons = append(card.reasons, "Free")
		return 1
	}
	return neutralScore
}

// ageScore returns 1 inside the range, nearAgeScore one year outside and 0 beyond, plus the distance in years
func ageScore(r types.AgeRange, age int) (float64, int) {
	dist := 0
	switch {
	case age < r.Min:
		dist = r.Min - age
	case age > r.Max:
		dist = age - r.Max
	}
	switch dist {
	case 0:
		return 1, 0
	case 1:
		return nearAgeScore, 1
	default:
		return 0, dist
	}
}

// interestScore reports the share of interests the activity covers and which ones matched
func interestScore(a *types.ActivityMetadata, interests []string) (float64, []string) {
	terms := make([]string, 0, len(interests))
	seen := make(map[string]bool)
	for _, i := range interests {
		t := term(i)
		if t != "" && !seen[t] {
			seen[t] = true
			terms = append(terms, t)
		}
	}
	if len(terms) == 0 {
		return neutralScore, nil
	}

	keywords := activityKeywords(a)
	var matched []string
	for _, t := range terms {
		if matchesAny(t, keywords) {
			matched = append(matched, t)
		}
	}
	if len(matched) == 0 {
		return 0.1, nil
	}
	return clamp01(0.6 + 0.4*float64(len(matched))/float64(len(terms))), matched
}

func activityKeywords(a *types.ActivityMetadata) []string {
	keywords := []string{term(a.Category), term(a.Subcategory)}
	for _, i := range a.Interests {
		keywords = append(keywords, term(i))
	}
	for _, t := range a.Tags {
		keywords = append(keywords, term(t))
	}
	keywords = append(keywords, embedding.Tokenize(a.Name)...)
	return keywords
}

func matchesAny(t string, keywords []string) bool {
	for _, k := range keywords {
		if k == "" {
			continue
		}
		if k == t {
			return true
		}
		if len(k) >= 4 && strings.Contains(t, k) {
			return true
		}
		if len(t) >= 4 && strings.Contains(k, t) {
			return true
		}
	}
	return false
}

// term folds case and treats underscores as spaces ("martial_arts" == "Martial Arts")
func term(s string) string {
	return strings.ReplaceAll(fold(s), "_", " ")
}

type locationResult struct {
	score     float64
	reachable bool
	reason    string
	concern   string
}

func locationFit(a *types.ActivityMetadata, loc types.Location) locationResult {
	res := locationResult{score: neutralScore, reachable: true}
	sameNeighborhood := loc.Neighborhood != "" && fold(loc.Neighborhood) == fold(a.Location.Neighborhood)

	switch {
	case sameNeighborhood:
		res.score = 1
		res.reason = "In your neighborhood (" + a.Location.Neighborhood + ")"
	case loc.City != "" && fold(loc.City) == fold(a.Location.City):
		res.score = 0.7
	case loc.Neighborhood == "" && loc.City == "":
		return res
	case a.Location.Neighborhood != "" || a.Location.City != "":
		res.score = 0.3
		res.concern = "Located in " + placeName(a.Location)
	}

	if loc.TransportationNeeds && !sameNeighborhood {
		res.score *= 0.7
		res.reachable = false
		res.concern = "Transportation may be needed to reach " + placeName(a.Location)
	}
	return res
}

func placeName(l types.ActivityLocation) string {
	switch {
	case l.Neighborhood != "":
		return l.Neighborhood
	case l.City != "":
		return l.City
	default:
		return "this location"
	}
}

type scheduleResult struct {
	score   float64
	reason  string
	concern string
}

func scheduleFit(a *types.ActivityMetadata, prefs types.Preferences) scheduleResult {
	if a.Schedule.Flexibility == types.ScheduleVeryFlexible {
		return scheduleResult{score: 1, reason: "Flexible scheduling"}
	}

	wanted := familySlots(prefs)
	offered := activitySlots(a.Schedule)
	if len(wanted) == 0 || len(offered) == 0 {
		return scheduleResult{score: neutralScore}
	}

	res := scheduleResult{}
	overlap := false
	for s := range offered {
		if wanted[s] {
			overlap = true
			break
		}
	}

	flexibility := types.FlexibilitySomewhatFlexible
	if sc := prefs.ScheduleConstraint; sc != nil && sc.Flexibility != "" {
		flexibility = sc.Flexibility
	}

	switch {
	case overlap:
		res.score = 1
		res.reason = "Fits your schedule"
	case flexibility == types.FlexibilityStrict:
		res.score = 0
		res.concern = "Does not fit your schedule"
	case flexibility == types.FlexibilityVeryFlexible || a.Schedule.Flexibility == types.ScheduleFlexible:
		res.score = 0.6
	default:
		res.score = 0.2
		res.concern = "Schedule may not fit your availability"
	}

	if sc := prefs.ScheduleConstraint; sc != nil && outsideHours(a.Schedule.Times, sc.EarliestStart, sc.LatestEnd) {
		res.score = math.Min(res.score, 0.3)
		res.reason = ""
		res.concern = "Meets outside your preferred hours"
	}
	return res
}

var weekdays = map[string]bool{"monday": true, "tuesday": true, "wednesday": true, "thursday": true, "friday": true}

func dayPart(day string) (weekday, weekend bool) {
	d := fold(day)
	switch {
	case weekdays[d] || strings.HasPrefix(d, "weekday"):
		return true, false
	case d == "saturday" || d == "sunday" || strings.HasPrefix(d, "weekend"):
		return false, true
	case d == "daily" || d == "everyday" || d == "every day":
		return true, true
	}
	return false, false
}

// timePeriod buckets "16:30", "16:30-17:30", "morning" and friends into morning/afternoon/evening
func timePeriod(s string) string {
	t := fold(s)
	for _, p := range []string{"morning", "afternoon", "evening"} {
		if strings.Contains(t, p) {
			return p
		}
	}
	clock, ok := parseClock(t)
	if !ok {
		return ""
	}
	switch h := clock.Hour(); {
	case h < 12:
		return "morning"
	case h < 17:
		return "afternoon"
	default:
		return "evening"
	}
}

func parseClock(s string) (time.Time, bool) {
	if len(s) < 5 {
		return time.Time{}, false
	}
	t, err := time.Parse("15:04", s[:5])
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func activitySlots(s types.ActivitySchedule) map[types.ScheduleSlot]bool {
	var weekday, weekend bool
	for _, d := range s.Days {
		wd, we := dayPart(d)
		weekday = weekday || wd
		weekend = weekend || we
	}
	if len(s.Days) == 0 {
		weekday, weekend = true, true
	}

	periods := make(map[string]bool)
	for _, t := range s.Times {
		if p := timePeriod(t); p != "" {
			periods[p] = true
		}
	}
	if len(s.Days) == 0 && len(periods) == 0 {
		return nil
	}
	if len(periods) == 0 {
		periods = map[string]bool{"morning": true, "afternoon": true, "evening": true}
	}

	slots := make(map[types.ScheduleSlot]bool)
	for p := range periods {
		if weekday {
			slots[types.ScheduleSlot("weekday_"+p)] = true
		}
		if weekend {
			slots[types.ScheduleSlot("weekend_"+p)] = true
		}
	}
	return slots
}

func familySlots(prefs types.Preferences) map[types.ScheduleSlot]bool {
	slots := make(map[types.ScheduleSlot]bool)
	for _, s := range prefs.Schedule {
		slots[s] = true
	}
	if sc := prefs.ScheduleConstraint; sc != nil {
		for _, ts := range sc.TimeSlots {
			wd, we := dayPart(ts.Day)
			p := timePeriod(ts.Start)
			if p == "" {
				continue
			}
			if wd {
				slots[types.ScheduleSlot("weekday_"+p)] = true
			}
			if we {
				slots[types.ScheduleSlot("weekend_"+p)] = true
			}
		}
	}
	return slots
}

// outsideHours reports whether every parseable start time falls outside [earliest, latest)
func outsideHours(times []string, earliest, latest string) bool {
	if earliest == "" && latest == "" {
		return false
	}
	parsed := 0
	for _, t := range times {
		clock, ok := parseClock(strings.TrimSpace(t))
		if !ok {
			continue
		}
		parsed++
		hhmm := clock.Format("15:04")
		if (earliest == "" || hhmm >= earliest) && (latest == "" || hhmm < latest) {
			return false
		}
	}
	return parsed > 0
}

type budgetResult struct {
	score   float64
	ok      bool
	reason  string
	concern string
}

func budgetFit(a *types.ActivityMetadata, budget *types.BudgetRange) budgetResult {
	if a.IsFree() {
		return budgetResult{score: 1, ok: true, reason: "Free"}
	}
	price, known := a.LowestPrice()
	if budget == nil || !known {
		return budgetResult{score: neutralScore, ok: true}
	}

	switch {
	case price <= budget.Max:
		return budgetResult{score: 1, ok: true, reason: "Within your budget"}
	case price <= budget.Max*1.25:
		return budgetResult{score: neutralScore, concern: fmt.Sprintf("Slightly above your budget (%.0f vs %.0f %s)", price, budget.Max, budget.Currency)}
	default:
		return budgetResult{score: 0.1, concern: fmt.Sprintf("Above your budget (%.0f vs %.0f %s)", price, budget.Max, budget.Currency)}
	}
}

func qualityScore(p types.ProviderInfo) float64 {
	score := 0.6 * (p.Rating / 5)
	if p.Verified {
		score += 0.2
	}
	score += 0.1 * math.Min(float64(p.ReviewCount)/50, 1)
	score += 0.1 * math.Min(float64(p.ExperienceYears)/10, 1)
	return clamp01(score)
}

// composite blends vector similarity with the practical score
func composite(vector, practical float64) float64 {
	return clamp01(vectorWeight*vector + practicalWeight*practical)
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v) || v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
