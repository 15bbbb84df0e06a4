package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/appmanifest/ambuild/internal/schema"
)

// ErrValidationFailed reports that a manifest did not satisfy the schema.
var ErrValidationFailed = errors.New("manifest failed schema validation")

var validateCmd = &cobra.Command{
	Use:     "validate",
	Aliases: []string{"v"},
	Short:   "Validate a manifest against the application manifest schema",
	RunE:    runValidate,
}

var validateInput string

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVarP(&validateInput, "input", "i", "", "manifest JSON file (required)")
	_ = validateCmd.MarkFlagRequired("input")
}

func runValidate(_ *cobra.Command, _ []string) error {
	data, err := os.ReadFile(validateInput)
	if err != nil {
		return fmt.Errorf("reading manifest: %w", err)
	}

	problems, err := schema.Validate(data)
	if err != nil {
		return fmt.Errorf("validating manifest: %w", err)
	}
	if len(problems) > 0 {
		for _, p := range problems {
			fmt.Fprintln(os.Stderr, p)
		}
		return ErrValidationFailed
	}

	fmt.Printf("%s is valid\n", validateInput)
	return nil
}
