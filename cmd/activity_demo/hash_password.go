package main

import (
	"fmt"
	"os"

	"github.com/jonathan/family-activities/internal/config"
	"github.com/spf13/cobra"
)

var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password <password>",
	Short: "Print a bcrypt hash for POC_PASSWORD_HASH",
	Args:  cobra.ExactArgs(1),
	RunE:  runHashPassword,
}

func init() {
	rootCmd.AddCommand(hashPasswordCmd)
}

func runHashPassword(_ *cobra.Command, args []string) error {
	gate, err := config.NewGateConfig()
	if err != nil {
		return fmt.Errorf("failed to create gate config: %w", err)
	}
	hash, err := gate.HashPassword(args[0])
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(os.Stdout, hash)
	return nil
}
