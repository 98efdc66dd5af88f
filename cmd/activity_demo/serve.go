package main

import (
	"context"
	"fmt"

	"github.com/jonathan/family-activities/internal/server"
	"github.com/spf13/cobra"
)

var (
	servePort       int
	serveConfigPath string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start an HTTP server that exposes the demo gate, recommendation, parsing and email endpoints.

Collaborators are configured from the environment (DATABASE_URL, OPENROUTER_API_KEY,
GEMINI_API_KEY, OPENAI_API_KEY, POC_PASSWORD, SESSION_SECRET).`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "Port to listen on")
	serveCmd.Flags().StringVar(&serveConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadCLIConfig(serveConfigPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("port") || cfg.Port == 0 {
		cfg.Port = servePort
	}
	if err := exportConfig(cfg); err != nil {
		return err
	}

	srv, err := server.FromEnv(context.Background(), cfg.Port)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}
