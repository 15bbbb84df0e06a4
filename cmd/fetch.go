package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/appmanifest/ambuild/internal/bom"
	"github.com/appmanifest/ambuild/internal/declaration"
	"github.com/appmanifest/ambuild/internal/fetch"
	"github.com/appmanifest/ambuild/internal/log"
)

var fetchCmd = &cobra.Command{
	Use:     "fetch",
	Aliases: []string{"f"},
	Short:   "Produce mini-manifests from declared artifact locators",
	Long: `Produce a mini-manifest for every declared component that carries an
artifact locator. Charts are pulled with the helm CLI and inspected;
container images are described from their locator alone.

Example:
  ambuild fetch -c declaration.yaml -r registry.yaml -o manifests/`,
	RunE: runFetch,
}

var (
	fetchDecl     string
	fetchOutDir   string
	fetchRegistry string
)

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().StringVarP(&fetchDecl, "declaration", "c", "", "component declaration YAML (required)")
	fetchCmd.Flags().StringVarP(&fetchOutDir, "output-dir", "o", "", "output directory (default: config output_dir)")
	fetchCmd.Flags().StringVarP(&fetchRegistry, "registry-def", "r", "", "registry definition YAML")
	_ = fetchCmd.MarkFlagRequired("declaration")
}

func runFetch(cmd *cobra.Command, _ []string) error {
	decl, err := declaration.Load(fetchDecl)
	if err != nil {
		return fmt.Errorf("loading declaration: %w", err)
	}

	registry, err := loadRegistry(fetchRegistry)
	if err != nil {
		return err
	}

	outDir := fetchOutDir
	if outDir == "" {
		outDir = cfg.OutputDir
	}
	if outDir == "" {
		outDir = "."
	}
	if err := os.MkdirAll(outDir, 0o750); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	results, err := fetch.FromDeclaration(cmd.Context(), decl, fetch.Options{
		Registry: registry,
		Tool:     bom.Tool{Type: "application", Name: "ambuild", Version: version},
	})
	if err != nil {
		return fmt.Errorf("fetching artifacts: %w", err)
	}

	names := make(map[string]int)
	for _, r := range results {
		names[r.Name]++
	}

	for _, r := range results {
		for _, w := range r.Warnings {
			fmt.Fprintln(os.Stderr, w)
		}

		filename := r.Name + ".json"
		if names[r.Name] > 1 {
			// Components of different kinds may share a name; disambiguate
			// with the vendor token of the mime subtype.
			filename = fmt.Sprintf("%s_%s.json", r.Name, vendorToken(r.MimeType))
			fmt.Fprintf(os.Stderr, "WARNING: duplicate component name '%s', writing %s\n", r.Name, filename)
		}

		data, err := json.MarshalIndent(r.Document, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding mini-manifest for %s: %w", r.Name, err)
		}
		data = append(data, '\n')

		path := filepath.Join(outDir, filename)
		if err := os.WriteFile(path, data, 0o644); err != nil { //nolint:gosec // G306: manifests are world-readable artifacts
			return fmt.Errorf("writing %s: %w", path, err)
		}
		log.Info(log.CatFetch, "Mini-manifest written", "name", r.Name, "path", path)
	}
	return nil
}

// vendorToken extracts the vendor token of a mime subtype:
// "application/vnd.nc.helm.chart" yields "nc".
func vendorToken(mimeType string) string {
	_, subtype, ok := strings.Cut(mimeType, "/")
	if !ok {
		return "unknown"
	}
	parts := strings.Split(subtype, ".")
	if len(parts) < 2 {
		return subtype
	}
	return parts[1]
}
