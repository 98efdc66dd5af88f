package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/jonathan/family-activities/internal/config"
	"github.com/jonathan/family-activities/internal/observability"
	"github.com/jonathan/family-activities/internal/parsing"
	"github.com/jonathan/family-activities/internal/server"
	"github.com/jonathan/family-activities/internal/types"
	"github.com/spf13/cobra"
)

var parseFamilyCmd = &cobra.Command{
	Use:   "parse-family",
	Short: "Parse a free-text family description into FamilyProfile JSON",
	Long:  "Parse a free-text family description into a structured FamilyProfile JSON that validates against the family_profile contract.",
	RunE:  runParseFamily,
}

var (
	parseInputFile  string
	parseOutputFile string
	parseModel      string
	parseConfigPath string
	parseVerbose    bool
)

func init() {
	parseFamilyCmd.Flags().StringVarP(&parseInputFile, "in", "i", "", "Path to text file with the family description (defaults to family_file from --config)")
	parseFamilyCmd.Flags().StringVarP(&parseOutputFile, "out", "o", "", "Path to output JSON file (defaults to stdout)")
	parseFamilyCmd.Flags().StringVar(&parseModel, "model", string(types.ModelStandard), "Model tier (standard or advanced)")
	parseFamilyCmd.Flags().StringVar(&parseConfigPath, "config", "", "Path to config.json file")
	parseFamilyCmd.Flags().BoolVarP(&parseVerbose, "verbose", "v", false, "Print a summary of the parsed profile to stderr")

	rootCmd.AddCommand(parseFamilyCmd)
}

func runParseFamily(_ *cobra.Command, _ []string) error {
	cfg, err := loadCLIConfig(parseConfigPath)
	if err != nil {
		return err
	}
	input := parseInputFile
	if input == "" {
		input = cfg.FamilyFile
	}
	if input == "" {
		return fmt.Errorf("an input file is required (use --in or family_file in --config)")
	}

	content, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("failed to read input file: %w", err)
	}

	req := &types.FamilyParsingRequest{
		Description: strings.TrimSpace(string(content)),
		Options:     types.RequestOptions{Model: types.ModelChoice(parseModel)},
	}
	req.ApplyDefaults()
	if err := types.Validate(req); err != nil {
		return err
	}

	ctx := context.Background()
	client, err := server.NewLLMClient(ctx, &config.EnvConfig{
		SiteURL:          cfg.SiteURL,
		OpenRouterAPIKey: cfg.OpenRouterAPIKey,
		GeminiAPIKey:     cfg.GeminiAPIKey,
	})
	if err != nil {
		return fmt.Errorf("failed to create LLM client: %w", err)
	}
	if client == nil {
		return fmt.Errorf("an API key is required (set OPENROUTER_API_KEY or GEMINI_API_KEY)")
	}
	defer func() { _ = client.Close() }()

	result, err := parsing.NewFamilyParser(client).Parse(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to parse family description: %w", err)
	}

	if parseVerbose || cfg.Verbose {
		observability.NewPrinter(os.Stderr).PrintFamilyProfile(result.Profile)
	}
	if err := writeJSON(parseOutputFile, result.Profile); err != nil {
		return err
	}
	if parseOutputFile != "" {
		_, _ = fmt.Fprintf(os.Stdout, "Successfully parsed family profile\n")
		_, _ = fmt.Fprintf(os.Stdout, "Output: %s\n", parseOutputFile)
	}
	if result.Usage != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Model: %s (%d tokens)\n", result.Usage.Model, result.Usage.TotalTokens)
	}
	return nil
}
