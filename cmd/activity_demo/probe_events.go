package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/jonathan/family-activities/internal/db"
	"github.com/jonathan/family-activities/internal/observability"
	"github.com/spf13/cobra"
)

var probeEventsCmd = &cobra.Command{
	Use:   "probe-events <term>",
	Short: "Search the events table for a term",
	Long:  "Search event titles and descriptions for a term, case-insensitively. The term is matched literally.",
	Args:  cobra.ExactArgs(1),
	RunE:  runProbeEvents,
}

var (
	probeLimit      int
	probeJSON       bool
	probeConfigPath string
)

func init() {
	probeEventsCmd.Flags().IntVarP(&probeLimit, "limit", "n", db.DefaultEventLimit, "Maximum events to return")
	probeEventsCmd.Flags().BoolVar(&probeJSON, "json", false, "Print events as JSON")
	probeEventsCmd.Flags().StringVar(&probeConfigPath, "config", "", "Path to config.json file")

	rootCmd.AddCommand(probeEventsCmd)
}

func runProbeEvents(_ *cobra.Command, args []string) error {
	term := strings.TrimSpace(args[0])
	if term == "" {
		return fmt.Errorf("search term cannot be empty")
	}

	cfg, err := loadCLIConfig(probeConfigPath)
	if err != nil {
		return err
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

	events, err := database.SearchEvents(ctx, term, probeLimit)
	if err != nil {
		return err
	}

	if probeJSON {
		return writeJSON("", events)
	}
	observability.NewPrinter(os.Stdout).PrintEvents(term, events)
	return nil
}
