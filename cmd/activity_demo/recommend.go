package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/jonathan/family-activities/internal/config"
	"github.com/jonathan/family-activities/internal/db"
	"github.com/jonathan/family-activities/internal/observability"
	"github.com/jonathan/family-activities/internal/recommend"
	"github.com/jonathan/family-activities/internal/server"
	"github.com/jonathan/family-activities/internal/types"
	"github.com/spf13/cobra"
)

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Rank catalog activities for a family profile or a free-text query",
	Long: `Rank catalog activities for a family profile or a free-text query.

The catalog comes from --catalog (a JSON array of activities) or, when no file is
given, from the activities table at DATABASE_URL.`,
	RunE: runRecommend,
}

var (
	recommendFamilyFile  string
	recommendQuery       string
	recommendCatalogFile string
	recommendOutputFile  string
	recommendLimit       int
	recommendDiversity   float64
	recommendFreeOnly    bool
	recommendConfigPath  string
	recommendVerbose     bool
)

// recommendOutput is what the recommend command prints
type recommendOutput struct {
	Recommendations []types.Recommendation   `json:"recommendations"`
	SearchMetadata  types.SearchMetadata     `json:"searchMetadata"`
	Performance     types.PerformanceMetrics `json:"performance"`
}

func init() {
	recommendCmd.Flags().StringVarP(&recommendFamilyFile, "family", "f", "", "Path to FamilyProfile JSON file")
	recommendCmd.Flags().StringVarP(&recommendQuery, "query", "q", "", "Free-text search query")
	recommendCmd.Flags().StringVarP(&recommendCatalogFile, "catalog", "c", "", "Path to catalog JSON file (defaults to the database)")
	recommendCmd.Flags().StringVarP(&recommendOutputFile, "out", "o", "", "Path to output JSON file (defaults to stdout)")
	recommendCmd.Flags().IntVarP(&recommendLimit, "limit", "n", 0, "Maximum recommendations (1-50)")
	recommendCmd.Flags().Float64Var(&recommendDiversity, "diversity", 0, "Category diversity weight (0.0-1.0)")
	recommendCmd.Flags().BoolVar(&recommendFreeOnly, "free-only", false, "Only recommend free activities")
	recommendCmd.Flags().StringVar(&recommendConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	recommendCmd.Flags().BoolVarP(&recommendVerbose, "verbose", "v", false, "Print each recommendation to stderr")

	rootCmd.AddCommand(recommendCmd)
}

func runRecommend(cmd *cobra.Command, _ []string) error {
	cfg, err := loadCLIConfig(recommendConfigPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("family") {
		cfg.FamilyFile = recommendFamilyFile
	}
	if cmd.Flags().Changed("catalog") {
		cfg.CatalogFile = recommendCatalogFile
	}
	if cmd.Flags().Changed("limit") {
		cfg.Limit = recommendLimit
	}
	if cmd.Flags().Changed("diversity") {
		weight := recommendDiversity
		cfg.DiversityWeight = &weight
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = recommendVerbose
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	req, err := buildRecommendationRequest(cfg, recommendQuery, recommendFreeOnly)
	if err != nil {
		return err
	}

	ctx := context.Background()
	catalog, err := loadRecommendCatalog(ctx, cfg)
	if err != nil {
		return err
	}

	env := &config.EnvConfig{OpenAIAPIKey: cfg.OpenAIAPIKey}
	embedder, err := server.NewEmbedder(env)
	if err != nil {
		return err
	}
	engine := recommend.NewEngine(staticCatalog(catalog), embedder, recommend.DefaultEngineConfig())
	defer func() { _ = engine.Close() }()

	result, err := engine.Recommend(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to recommend: %w", err)
	}

	out := recommendOutput{
		Recommendations: resolveRecommendations(result.Recommendations, catalog, req.FamilyProfile),
		SearchMetadata:  result.SearchMetadata,
		Performance:     result.Performance,
	}
	if cfg.Verbose {
		printer := observability.NewPrinter(os.Stderr)
		printer.PrintSearchSummary(out.SearchMetadata, out.Performance)
		printer.PrintRecommendations(out.Recommendations)
	}
	return writeJSON(recommendOutputFile, out)
}

// buildRecommendationRequest assembles and validates a request from CLI inputs
func buildRecommendationRequest(cfg config.Config, query string, freeOnly bool) (*types.RecommendationRequest, error) {
	req := &types.RecommendationRequest{Query: strings.TrimSpace(query)}

	if cfg.FamilyFile != "" {
		data, err := os.ReadFile(cfg.FamilyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read family file: %w", err)
		}
		profile, err := types.ParseFamilyProfile(data)
		if err != nil {
			return nil, err
		}
		req.FamilyProfile = profile
	}
	if freeOnly {
		req.Filters = &types.RecommendationFilters{FreeOnly: true}
	}
	if cfg.Limit > 0 {
		req.Options.Limit = intPtr(cfg.Limit)
	}
	if cfg.DiversityWeight != nil {
		weight := *cfg.DiversityWeight
		req.Options.DiversityWeight = &weight
	}

	req.ApplyDefaults()
	if err := types.Validate(req); err != nil {
		return nil, err
	}
	return req, nil
}

func loadRecommendCatalog(ctx context.Context, cfg config.Config) ([]types.ActivityMetadata, error) {
	if cfg.CatalogFile != "" {
		return loadCatalog(cfg.CatalogFile)
	}

	databaseURL, err := resolveDatabaseURL(cfg)
	if err != nil {
		return nil, err
	}
	database, err := db.Connect(ctx, databaseURL)
	if err != nil {
		return nil, err
	}
	defer database.Close()
	return database.ListActivities(ctx)
}

// resolveRecommendations drops repeated activities and joins the rest with their catalog entries
func resolveRecommendations(results []types.LightweightRecommendation, catalog []types.ActivityMetadata, profile *types.FamilyProfile) []types.Recommendation {
	byKey := make(map[string]*types.ActivityMetadata, len(catalog))
	for i := range catalog {
		byKey[catalog[i].Ref().Key()] = &catalog[i]
	}

	unique := recommend.Dedupe(results)
	recs := make([]types.Recommendation, 0, len(unique))
	for i := range unique {
		a, ok := byKey[unique[i].Ref().Key()]
		if !ok {
			_, _ = fmt.Fprintf(os.Stderr, "Warning: %s not in catalog, skipping\n", formatRef(unique[i].Ref()))
			continue
		}
		recs = append(recs, recommend.ToRecommendation(&unique[i], a, profile))
	}
	return recs
}

// resolveDatabaseURL prefers the config file value, then the environment defaults
func resolveDatabaseURL(cfg config.Config) (string, error) {
	if cfg.DatabaseURL != "" {
		return cfg.DatabaseURL, nil
	}
	dbCfg, err := config.NewDatabaseConfig()
	if err != nil {
		return "", err
	}
	return dbCfg.ConnectionString(), nil
}
