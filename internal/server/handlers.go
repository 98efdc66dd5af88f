package server

import (
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/jonathan/family-activities/internal/db"
	"github.com/jonathan/family-activities/internal/recommend"
	"github.com/jonathan/family-activities/internal/types"
	"golang.org/x/sync/errgroup"
)

// SchemaSampleRows is how many rows /api/schema samples per table
const SchemaSampleRows = 3

// eventPresets are the fixed searches behind /api/debug/events/{preset}
var eventPresets = map[string]string{
	"swim":   "swim",
	"soccer": "soccer",
}

// HealthResponse reports which integrations are configured
type HealthResponse struct {
	Status               string `json:"status"`
	Environment          string `json:"environment"`
	DatabaseConfigured   bool   `json:"databaseConfigured"`
	DatabaseReachable    bool   `json:"databaseReachable"`
	OpenRouterConfigured bool   `json:"openrouterConfigured"`
	GeminiConfigured     bool   `json:"geminiConfigured"`
	EmbeddingsConfigured bool   `json:"embeddingsConfigured"`
	SiteURL              string `json:"siteUrl,omitempty"`
	Timestamp            string `json:"timestamp"`
}

// TableSample is one table of the schema introspection response
type TableSample struct {
	Name string           `json:"name"`
	Rows []map[string]any `json:"rows"`
}

// EventSearchResponse is the body of the debug event presets
type EventSearchResponse struct {
	Preset string     `json:"preset"`
	Term   string     `json:"term"`
	Count  int        `json:"count"`
	Events []db.Event `json:"events"`
}

// RecommendationsResponse is the data of POST /api/recommendations
type RecommendationsResponse struct {
	Recommendations []types.Recommendation `json:"recommendations"`
	SearchMetadata  types.SearchMetadata   `json:"searchMetadata"`
}

// MapActivity is a catalog entry placed on the map view
type MapActivity struct {
	ProviderID   int64          `json:"providerId"`
	ProgramID    *int64         `json:"programId,omitempty"`
	Name         string         `json:"name"`
	Category     string         `json:"category"`
	Neighborhood string         `json:"neighborhood,omitempty"`
	Latitude     float64        `json:"latitude"`
	Longitude    float64        `json:"longitude"`
	AgeRange     types.AgeRange `json:"ageRange"`
	Free         bool           `json:"free"`
	Verified     bool           `json:"verified"`
}

// ActivitiesResponse is the data of GET /api/activities
type ActivitiesResponse struct {
	Activities []MapActivity `json:"activities"`
	Total      int           `json:"total"`
}

// EmailsResponse is the data of POST /api/emails
type EmailsResponse struct {
	Emails []types.GeneratedEmail `json:"emails"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:               "ok",
		Environment:          s.env.Environment,
		DatabaseConfigured:   s.env.Database != nil && s.env.Database.Explicit(),
		OpenRouterConfigured: s.env.OpenRouterAPIKey != "",
		GeminiConfigured:     s.env.GeminiAPIKey != "",
		EmbeddingsConfigured: s.env.OpenAIAPIKey != "",
		SiteURL:              s.env.SiteURL,
		Timestamp:            time.Now().UTC().Format(time.RFC3339),
	}
	if s.services.Store != nil {
		resp.DatabaseReachable = s.services.Store.Ping(r.Context()) == nil
	}
	s.success(w, types.NewSuccess(resp))
}

// handleSchema lists the public tables with a few sample rows each
func (s *Server) handleSchema(w http.ResponseWriter, r *http.Request) {
	store := s.services.Store
	if store == nil {
		s.errorResponse(w, r, &ErrNotConfigured{Service: "database"})
		return
	}

	tables, err := store.ListTables(r.Context())
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}

	samples := make([]TableSample, len(tables))
	g, ctx := errgroup.WithContext(r.Context())
	g.SetLimit(4)
	for i, table := range tables {
		g.Go(func() error {
			rows, err := store.SampleRows(ctx, table, SchemaSampleRows)
			if err != nil {
				return err
			}
			samples[i] = TableSample{Name: table, Rows: rows}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.errorResponse(w, r, err)
		return
	}

	s.success(w, types.NewSuccess(map[string]any{"tables": samples}))
}

// handleDebugEvents runs one of the fixed event searches
func (s *Server) handleDebugEvents(w http.ResponseWriter, r *http.Request) {
	preset := r.PathValue("preset")
	term, ok := eventPresets[preset]
	if !ok {
		s.errorResponse(w, r, &ErrNotFound{Resource: "event preset", ID: preset})
		return
	}
	if s.services.Store == nil {
		s.errorResponse(w, r, &ErrNotConfigured{Service: "database"})
		return
	}

	events, err := s.services.Store.SearchEvents(r.Context(), term, db.DefaultEventLimit)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}

	s.success(w, types.NewSuccess(EventSearchResponse{
		Preset: preset,
		Term:   term,
		Count:  len(events),
		Events: events,
	}))
}

func (s *Server) handleParseFamily(w http.ResponseWriter, r *http.Request) {
	if s.services.Parser == nil {
		s.errorResponse(w, r, &ErrNotConfigured{Service: "family parser"})
		return
	}
	body, err := readBody(w, r)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	req, err := types.ParseFamilyParsingRequest(body)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	req.ApplyDefaults()

	result, err := s.services.Parser.Parse(r.Context(), req)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}

	resp := types.NewSuccess(result.Profile)
	resp.Usage = result.Usage
	s.success(w, resp)
}

// handleRecommendations ranks the catalog, drops repeated activities and resolves
// the survivors into full recommendations
func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	if s.services.Recommender == nil || s.services.Store == nil {
		s.errorResponse(w, r, &ErrNotConfigured{Service: "recommendation engine"})
		return
	}
	body, err := readBody(w, r)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	req, err := types.ParseRecommendationRequest(body)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	req.ApplyDefaults()

	result, err := s.services.Recommender.Recommend(r.Context(), req)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}

	unique := recommend.Dedupe(result.Recommendations)
	activities, err := s.services.Store.GetActivitiesByRefs(r.Context(), recommend.Refs(unique))
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}

	recs := make([]types.Recommendation, 0, len(unique))
	for i := range unique {
		l := &unique[i]
		a, ok := activities[l.Ref().Key()]
		if !ok {
			log.Printf("[api] recommendation %s no longer in catalog, skipping", l.Ref().Key())
			continue
		}
		recs = append(recs, recommend.ToRecommendation(l, &a, req.FamilyProfile))
	}

	performance := result.Performance
	resp := types.NewSuccess(RecommendationsResponse{
		Recommendations: recs,
		SearchMetadata:  result.SearchMetadata,
	})
	resp.Performance = &performance
	s.success(w, resp)
}

// handleActivities returns the catalog entries that can be placed on a map
func (s *Server) handleActivities(w http.ResponseWriter, r *http.Request) {
	if s.services.Store == nil {
		s.errorResponse(w, r, &ErrNotConfigured{Service: "database"})
		return
	}

	activities, err := s.services.Store.ListActivities(r.Context())
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}

	mapped := make([]MapActivity, 0, len(activities))
	for i := range activities {
		a := &activities[i]
		if !a.HasCoordinates() {
			continue
		}
		mapped = append(mapped, MapActivity{
			ProviderID:   a.ProviderID,
			ProgramID:    a.ProgramID,
			Name:         a.Name,
			Category:     a.Category,
			Neighborhood: a.Location.Neighborhood,
			Latitude:     *a.Location.Latitude,
			Longitude:    *a.Location.Longitude,
			AgeRange:     a.AgeRange,
			Free:         a.IsFree(),
			Verified:     a.Provider.Verified,
		})
	}

	s.success(w, types.NewSuccess(ActivitiesResponse{Activities: mapped, Total: len(activities)}))
}

func (s *Server) handleEmails(w http.ResponseWriter, r *http.Request) {
	if s.services.Emailer == nil {
		s.errorResponse(w, r, &ErrNotConfigured{Service: "email generator"})
		return
	}
	body, err := readBody(w, r)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	req, err := types.ParseEmailGenerationRequest(body)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	req.ApplyDefaults()

	result, err := s.services.Emailer.Generate(r.Context(), req)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}

	resp := types.NewSuccess(EmailsResponse{Emails: result.Emails})
	resp.Usage = result.Usage
	s.success(w, resp)
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, &ErrValidation{Field: "(body)", Message: "request body too large"}
		}
		return nil, &ErrValidation{Field: "(body)", Message: "failed to read request body"}
	}
	return body, nil
}
