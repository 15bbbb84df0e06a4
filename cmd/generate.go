package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/appmanifest/ambuild/internal/assemble"
	"github.com/appmanifest/ambuild/internal/bom"
	"github.com/appmanifest/ambuild/internal/declaration"
	"github.com/appmanifest/ambuild/internal/descriptor"
	"github.com/appmanifest/ambuild/internal/log"
	"github.com/appmanifest/ambuild/internal/schema"
)

// ErrInvalidManifest reports a requested post-assembly validation failure.
// The document has already been written when this is returned.
var ErrInvalidManifest = errors.New("generated manifest failed schema validation")

var generateCmd = &cobra.Command{
	Use:     "generate [mini-manifests...]",
	Aliases: []string{"gen"},
	Short:   "Assemble the application manifest",
	Long: `Assemble the final application manifest from a component declaration and
a set of mini-manifests. Positional arguments are mini-manifest files or
directories; directories are expanded to their *.json files in name order,
and a later file overrides an earlier description of the same component.

Example:
  ambuild generate -c declaration.yaml -o manifest.json manifests/
  ambuild generate -c declaration.yaml manifests/ override.json --validate`,
	RunE: runGenerate,
}

var (
	generateDecl     string
	generateOutput   string
	generateName     string
	generateVersion  string
	generateValidate bool
)

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().StringVarP(&generateDecl, "declaration", "c", "", "component declaration YAML (required)")
	generateCmd.Flags().StringVarP(&generateOutput, "output", "o", "", "output file (default: stdout)")
	generateCmd.Flags().StringVarP(&generateName, "name", "n", "", "override the application name")
	generateCmd.Flags().StringVarP(&generateVersion, "app-version", "v", "", "override the application version")
	generateCmd.Flags().BoolVar(&generateValidate, "validate", false, "validate the result against the manifest schema")
	_ = generateCmd.MarkFlagRequired("declaration")
}

func runGenerate(_ *cobra.Command, args []string) error {
	decl, err := declaration.Load(generateDecl)
	if err != nil {
		return fmt.Errorf("loading declaration: %w", err)
	}
	log.Debug(log.CatDecl, "Declaration loaded", "application", decl.ApplicationName, "components", len(decl.Components))

	idx, err := descriptor.LoadAll(args)
	if err != nil {
		return fmt.Errorf("loading mini-manifests: %w", err)
	}
	log.Debug(log.CatDescriptor, "Mini-manifests indexed", "described", idx.Len())

	result, err := assemble.Assemble(decl, idx, assemble.Options{
		NameOverride:    generateName,
		VersionOverride: generateVersion,
		Tool:            bom.Tool{Type: "application", Name: "ambuild", Version: version},
	})
	if err != nil {
		return fmt.Errorf("assembling manifest: %w", err)
	}
	for _, w := range result.Warnings {
		fmt.Fprintln(os.Stderr, w)
	}

	data, err := json.MarshalIndent(result.Document, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding manifest: %w", err)
	}
	data = append(data, '\n')

	if err := writeOutput(generateOutput, data); err != nil {
		return err
	}

	if generateValidate {
		problems, err := schema.Validate(data)
		if err != nil {
			return fmt.Errorf("validating manifest: %w", err)
		}
		if len(problems) > 0 {
			for _, p := range problems {
				fmt.Fprintln(os.Stderr, p)
			}
			return ErrInvalidManifest
		}
	}
	return nil
}

func writeOutput(path string, data []byte) error {
	if path == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil { //nolint:gosec // G306: manifests are world-readable artifacts
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}
