// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/family-activities/internal/db"
	"github.com/jonathan/family-activities/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// truncate shortens s to at most n runes, marking the cut with "..."
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// PrintFamilyProfile outputs a human-readable summary of a parsed family profile.
func (p *Printer) PrintFamilyProfile(profile *types.FamilyProfile) {
	if profile == nil {
		return
	}

	var sb strings.Builder

	adults := make([]string, 0, len(profile.Adults))
	for _, a := range profile.Adults {
		adults = append(adults, fmt.Sprintf("%s (%s)", a.Name, a.Role))
	}
	sb.WriteString(fmt.Sprintf("Adults:   %s\n", strings.Join(adults, ", ")))
	if where := joinNonEmpty(profile.Location.Neighborhood, profile.Location.City, profile.Location.ZipCode); where != "" {
		sb.WriteString(fmt.Sprintf("Location: %s\n", where))
	}
	sb.WriteString("\n")

	sb.WriteString("Children:\n")
	for _, c := range profile.Children {
		sb.WriteString(fmt.Sprintf("  • %s, %d", c.Name, c.Age))
		if len(c.Interests) > 0 {
			sb.WriteString(fmt.Sprintf(" [%s]", strings.Join(c.Interests, ", ")))
		}
		sb.WriteString("\n")
	}

	if b := profile.Preferences.Budget; b != nil {
		sb.WriteString(fmt.Sprintf("\nBudget:   %.0f-%.0f %s\n", b.Min, b.Max, b.Currency))
	}

	p.printBox("PARSED FAMILY PROFILE", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintRecommendations outputs the top N recommendations with scores and reasons.
func (p *Printer) PrintRecommendations(recs []types.Recommendation) {
	if len(recs) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Total recommendations: %d\n\n", len(recs)))

	count := min(len(recs), maxItemsToShow)
	for i := 0; i < count; i++ {
		r := recs[i]
		name, _ := r.Metadata["name"].(string)
		if name == "" {
			name = "provider " + r.ProviderID
		}
		sb.WriteString(fmt.Sprintf("#%d  %s\n", i+1, name))
		sb.WriteString(fmt.Sprintf("    Score: %.2f (%s)", r.MatchScore, r.RecommendationType))
		if child, ok := r.Metadata["targetChild"].(string); ok {
			sb.WriteString(fmt.Sprintf(" for %s", child))
		}
		sb.WriteString("\n")
		if len(r.MatchReasons) > 0 {
			sb.WriteString(fmt.Sprintf("    Why: %s\n", r.MatchReasons[0]))
		}
		if i < count-1 {
			sb.WriteString("\n")
		}
	}

	if len(recs) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more recommendations", len(recs)-maxItemsToShow))
	}

	p.printBox("TOP RECOMMENDATIONS", sb.String())
}

// PrintSearchSummary outputs how a recommendation result was produced.
func (p *Printer) PrintSearchSummary(meta types.SearchMetadata, perf types.PerformanceMetrics) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Query:    %s\n", meta.Query))
	sb.WriteString(fmt.Sprintf("Matches:  %d (%d vector hits)\n", meta.TotalMatches, meta.VectorSearchHits))
	if len(meta.FiltersApplied) > 0 {
		sb.WriteString(fmt.Sprintf("Filters:  %s\n", strings.Join(meta.FiltersApplied, ", ")))
	}
	if perf.CacheHit {
		sb.WriteString(fmt.Sprintf("Timing:   %.1fms (cached)", perf.TotalMs))
	} else {
		sb.WriteString(fmt.Sprintf("Timing:   %.1fms total, %.1fms vector, %.1fms scoring", perf.TotalMs, perf.VectorSearchMs, perf.ScoringMs))
	}

	p.printBox("SEARCH SUMMARY", sb.String())
}

// PrintEvents outputs events found by a search.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintEvents(term string, events []db.Event) {
	if len(events) == 0 {
		fmt.Fprintf(p.out, "┌%s┐\n", strings.Repeat("─", boxWidth-2))
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(fmt.Sprintf("NO EVENTS MATCHING %q", term), boxWidth-4))
		fmt.Fprintf(p.out, "└%s┘\n", strings.Repeat("─", boxWidth-2))
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d events:\n\n", len(events)))
	for i, e := range events {
		when := "unscheduled"
		if e.StartsAt != nil {
			when = e.StartsAt.UTC().Format("2006-01-02 15:04")
		}
		sb.WriteString(fmt.Sprintf("#%d %s\n", e.ID, e.Title))
		sb.WriteString(fmt.Sprintf("  %s", when))
		if e.Location != "" {
			sb.WriteString(fmt.Sprintf(" @ %s", e.Location))
		}
		if i < len(events)-1 {
			sb.WriteString("\n\n")
		}
	}

	p.printBox(fmt.Sprintf("EVENTS MATCHING %q", term), sb.String())
}

func joinNonEmpty(parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, s := range parts {
		if s != "" {
			out = append(out, s)
		}
	}
	return strings.Join(out, ", ")
}
