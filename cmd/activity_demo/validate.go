package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/jonathan/family-activities/internal/schemas"
	"github.com/jonathan/family-activities/internal/types"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a JSON document against a data contract",
	Long:  "Validate a JSON document against one of the embedded contracts, checking both its JSON shape and its value bounds.",
	RunE:  runValidate,
}

var (
	validateContract string
	validateJSONFile string
)

// contractParsers decode and check each contract's value bounds
var contractParsers = map[schemas.Contract]func([]byte) error{
	schemas.FamilyProfile: func(data []byte) error {
		_, err := types.ParseFamilyProfile(data)
		return err
	},
	schemas.FamilyParsingRequest: func(data []byte) error {
		_, err := types.ParseFamilyParsingRequest(data)
		return err
	},
	schemas.RecommendationRequest: func(data []byte) error {
		_, err := types.ParseRecommendationRequest(data)
		return err
	},
	schemas.EmailGenerationRequest: func(data []byte) error {
		_, err := types.ParseEmailGenerationRequest(data)
		return err
	},
	schemas.GeneratedEmail: func(data []byte) error {
		_, err := types.ParseGeneratedEmail(data)
		return err
	},
	schemas.ActivityMetadata: func(data []byte) error {
		_, err := types.ParseActivityMetadata(data)
		return err
	},
}

func init() {
	validateCmd.Flags().StringVarP(&validateContract, "contract", "c", "", "Contract name ("+strings.Join(contractNames(), ", ")+")")
	validateCmd.Flags().StringVarP(&validateJSONFile, "json", "j", "", "Path to JSON file to validate")

	if err := validateCmd.MarkFlagRequired("contract"); err != nil {
		panic(fmt.Sprintf("failed to mark contract flag as required: %v", err))
	}
	if err := validateCmd.MarkFlagRequired("json"); err != nil {
		panic(fmt.Sprintf("failed to mark json flag as required: %v", err))
	}

	rootCmd.AddCommand(validateCmd)
}

func runValidate(_ *cobra.Command, _ []string) error {
	data, err := os.ReadFile(validateJSONFile)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}

	if err := validateDocument(schemas.Contract(validateContract), data); err != nil {
		return err
	}

	_, _ = fmt.Fprintf(os.Stdout, "Validation passed: %s is a valid %s\n", validateJSONFile, validateContract)
	return nil
}

// validateDocument checks data against a contract's parser, or only its schema
// when the contract has no standalone parser
func validateDocument(contract schemas.Contract, data []byte) error {
	if parse, ok := contractParsers[contract]; ok {
		return parse(data)
	}
	if contract == schemas.RequestOptions {
		return schemas.Validate(contract, data)
	}
	return fmt.Errorf("unknown contract %q (expected one of: %s)", contract, strings.Join(contractNames(), ", "))
}

func contractNames() []string {
	names := []string{string(schemas.RequestOptions)}
	for c := range contractParsers {
		names = append(names, string(c))
	}
	sort.Strings(names)
	return names
}
