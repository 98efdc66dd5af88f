package main

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/jonathan/family-activities/internal/db"
	"github.com/jonathan/family-activities/internal/types"
	"github.com/spf13/cobra"
)

//go:embed seed/catalog.json
var seedCatalog []byte

//go:embed seed/events.json
var seedEvents []byte

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load catalog activities and sample events into the database",
	Long:  "Migrate the database and upsert catalog activities from --file (or the built-in demo catalog), plus the demo events used by the debug presets.",
	RunE:  runSeed,
}

var (
	seedFile       string
	seedWithEvents bool
	seedDryRun     bool
	seedConfigPath string
)

func init() {
	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "", "Path to catalog JSON file (defaults to the built-in demo catalog)")
	seedCmd.Flags().BoolVar(&seedWithEvents, "events", true, "Also insert the demo events")
	seedCmd.Flags().BoolVar(&seedDryRun, "dry-run", false, "Validate the catalog without writing to the database")
	seedCmd.Flags().StringVar(&seedConfigPath, "config", "", "Path to config.json file")

	rootCmd.AddCommand(seedCmd)
}

func runSeed(_ *cobra.Command, _ []string) error {
	cfg, err := loadCLIConfig(seedConfigPath)
	if err != nil {
		return err
	}
	if seedFile == "" {
		seedFile = cfg.CatalogFile
	}

	activities, err := seedActivities(seedFile)
	if err != nil {
		return err
	}
	events, err := demoEvents()
	if err != nil {
		return err
	}

	if seedDryRun {
		_, _ = fmt.Fprintf(os.Stdout, "Catalog valid: %d activities\n", len(activities))
		return nil
	}

	databaseURL, err := resolveDatabaseURL(cfg)
	if err != nil {
		return err
	}

	ctx := context.Background()
	database, err := db.Connect(ctx, databaseURL)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := database.Migrate(ctx); err != nil {
		return err
	}

	for i := range activities {
		if err := database.UpsertActivity(ctx, &activities[i]); err != nil {
			return err
		}
	}
	_, _ = fmt.Fprintf(os.Stdout, "Upserted %d activities\n", len(activities))

	if !seedWithEvents {
		return nil
	}
	for i := range events {
		if _, err := database.InsertEvent(ctx, &events[i]); err != nil {
			return err
		}
	}
	_, _ = fmt.Fprintf(os.Stdout, "Inserted %d events\n", len(events))
	return nil
}

// seedActivities loads the catalog from path, or the built-in one when path is empty
func seedActivities(path string) ([]types.ActivityMetadata, error) {
	if path != "" {
		return loadCatalog(path)
	}
	return decodeCatalog(seedCatalog)
}

func demoEvents() ([]db.Event, error) {
	var events []db.Event
	if err := json.Unmarshal(seedEvents, &events); err != nil {
		return nil, fmt.Errorf("failed to parse demo events: %w", err)
	}
	return events, nil
}
