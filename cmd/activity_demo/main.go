// Package main provides the entry point for the family activity finder demo.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "activity_demo",
	Short: "Family Activity Finder demo",
	Long:  "Family Activity Finder turns a family description into ranked local activity recommendations and drafts outreach emails to providers.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
