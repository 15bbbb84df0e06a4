package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/appmanifest/ambuild/internal/bom"
	"github.com/appmanifest/ambuild/internal/component"
	"github.com/appmanifest/ambuild/internal/log"
	"github.com/appmanifest/ambuild/internal/regdef"
)

var componentCmd = &cobra.Command{
	Use:     "component",
	Aliases: []string{"c"},
	Short:   "Build a mini-manifest from CI metadata",
	Long: `Build a single-component mini-manifest from the metadata JSON a CI job
emits for one built artifact (an image, a chart, or any other deliverable).

Example:
  ambuild component -i metadata.json -r registry.yaml -o backend.json`,
	RunE: runComponent,
}

var (
	componentInput    string
	componentOutput   string
	componentRegistry string
)

func init() {
	rootCmd.AddCommand(componentCmd)

	componentCmd.Flags().StringVarP(&componentInput, "input", "i", "", "CI metadata JSON file (required)")
	componentCmd.Flags().StringVarP(&componentOutput, "output", "o", "", "output file (default: stdout)")
	componentCmd.Flags().StringVarP(&componentRegistry, "registry-def", "r", "", "registry definition YAML")
	_ = componentCmd.MarkFlagRequired("input")
}

func runComponent(_ *cobra.Command, _ []string) error {
	meta, err := component.Load(componentInput)
	if err != nil {
		return fmt.Errorf("loading metadata: %w", err)
	}

	registry, err := loadRegistry(componentRegistry)
	if err != nil {
		return err
	}

	doc, err := component.Build(meta, component.Options{
		Registry: registry,
		Tool:     bom.Tool{Type: "application", Name: "ambuild", Version: version},
	})
	if err != nil {
		return fmt.Errorf("building mini-manifest: %w", err)
	}
	log.Debug(log.CatDescriptor, "Mini-manifest built", "name", meta.Name, "mime", meta.MimeType)

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding mini-manifest: %w", err)
	}
	data = append(data, '\n')
	return writeOutput(componentOutput, data)
}

// loadRegistry resolves the registry definition from the flag or the config
// file. A missing definition is fine: package URLs then carry no registry
// qualifier resolution.
func loadRegistry(flagPath string) (*regdef.Definition, error) {
	path := flagPath
	if path == "" {
		path = cfg.RegistryDef
	}
	if path == "" {
		return nil, nil
	}
	def, err := regdef.Load(path)
	if err != nil {
		return nil, fmt.Errorf("loading registry definition: %w", err)
	}
	log.Debug(log.CatConfig, "Registry definition loaded", "path", path, "name", def.Name)
	return def, nil
}
