// Package fetch produces mini-manifests directly from the locators in a
// declaration: charts are pulled and inspected, container images are
// described from their locator alone (pulling an image only to learn its
// digest is not worth the transfer, so image manifests carry no hashes).
package fetch

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/appmanifest/ambuild/internal/bom"
	"github.com/appmanifest/ambuild/internal/chart"
	"github.com/appmanifest/ambuild/internal/declaration"
	"github.com/appmanifest/ambuild/internal/purl"
	"github.com/appmanifest/ambuild/internal/regdef"
)

// Mime types of the nested data components synthesized from chart archives.
const (
	mimeValuesSchema    = "application/vnd.nc.helm.values.schema"
	mimeResourceProfile = "application/vnd.nc.resource-profile-baseline"
)

// Options tune mini-manifest production.
type Options struct {
	// Registry resolves symbolic registry names in package identifiers.
	Registry *regdef.Definition

	// Executor pulls chart archives. Defaults to the helm CLI.
	Executor chart.Executor

	// Tool identifies the producing tool.
	Tool bom.Tool

	// Refs defaults to bom.DefaultSource.
	Refs bom.RefSource

	// Now defaults to time.Now.
	Now func() time.Time
}

// Result is one produced mini-manifest, keyed by the declared component it
// was produced for.
type Result struct {
	Name     string
	MimeType string
	Document bom.Document
	Warnings []string
}

// FromDeclaration produces a mini-manifest for every declared chart or image
// that carries a locator. Components without a locator are skipped: their
// descriptions come from CI metadata instead.
func FromDeclaration(ctx context.Context, decl *declaration.Declaration, opts Options) ([]Result, error) {
	if opts.Executor == nil {
		opts.Executor = chart.NewHelmExecutor()
	}
	if opts.Refs == nil {
		opts.Refs = bom.DefaultSource
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Tool.Name == "" {
		opts.Tool = bom.Tool{Type: "application", Name: "ambuild", Version: "dev"}
	}

	var results []Result
	for _, c := range decl.Components {
		if c.Locator == "" {
			continue
		}
		switch c.Kind {
		case declaration.KindHelmChart:
			r, err := chartResult(ctx, c, opts)
			if err != nil {
				return nil, err
			}
			results = append(results, r)
		case declaration.KindDockerImage:
			r, err := imageResult(c, opts)
			if err != nil {
				return nil, err
			}
			results = append(results, r)
		}
	}
	return results, nil
}

func chartResult(ctx context.Context, c declaration.Component, opts Options) (Result, error) {
	pulled, err := chart.Fetch(ctx, opts.Executor, c.Locator)
	if err != nil {
		return Result{}, fmt.Errorf("fetch chart %s: %w", c.Name, err)
	}

	pkgID, err := purl.ForChart(c.Locator, opts.Registry)
	if err != nil {
		return Result{}, err
	}

	version := pulled.AppVersion
	if version == "" {
		version = pulled.Version
	}

	body := bom.Component{
		BOMRef:     bom.NewRef(opts.Refs, pulled.Name),
		Type:       "application",
		MimeType:   c.MimeType,
		Name:       pulled.Name,
		Version:    version,
		PURL:       pkgID,
		Hashes:     []bom.Hash{{Alg: "SHA-256", Content: pulled.SHA256}},
		Components: nestedComponents(pulled, opts.Refs),
	}

	return Result{
		Name:     c.Name,
		MimeType: c.MimeType,
		Document: bom.NewMini(body, opts.Tool, opts.Refs, opts.Now()),
		Warnings: pulled.Warnings,
	}, nil
}

func imageResult(c declaration.Component, opts Options) (Result, error) {
	ref := purl.ParseImageLocator(c.Locator)

	pkgID, err := purl.ForImage(c.Locator, opts.Registry)
	if err != nil {
		return Result{}, err
	}

	var warnings []string
	if ref.Namespace == "" {
		warnings = append(warnings, fmt.Sprintf(
			"WARNING: no group for component '%s' (locator '%s' has no namespace/org)",
			c.Name, c.Locator))
	}

	// The declared name wins over the locator's image name so the assembly
	// lookup matches.
	body := bom.Component{
		BOMRef:   bom.NewRef(opts.Refs, c.Name),
		Type:     "container",
		MimeType: c.MimeType,
		Name:     c.Name,
		Version:  ref.Version,
		Group:    ref.Namespace,
		PURL:     pkgID,
	}

	return Result{
		Name:     c.Name,
		MimeType: c.MimeType,
		Document: bom.NewMini(body, opts.Tool, opts.Refs, opts.Now()),
		Warnings: warnings,
	}, nil
}

// nestedComponents converts harvested chart data files into nested data
// components.
func nestedComponents(pulled *chart.Chart, src bom.RefSource) []bom.Component {
	var nested []bom.Component

	if pulled.ValuesSchema != nil {
		nested = append(nested, bom.Component{
			BOMRef:   bom.NewRef(src, "values.schema.json"),
			Type:     "data",
			MimeType: mimeValuesSchema,
			Name:     "values.schema.json",
			Data: []bom.DataEntry{{
				Type: "configuration",
				Name: "values.schema.json",
				Contents: bom.DataContents{Attachment: bom.Attachment{
					ContentType: "application/json",
					Encoding:    "base64",
					Content:     base64.StdEncoding.EncodeToString(pulled.ValuesSchema),
				}},
			}},
		})
	}

	if len(pulled.Profiles) > 0 {
		var data []bom.DataEntry
		for _, p := range pulled.Profiles {
			data = append(data, bom.DataEntry{
				Type: "configuration",
				Name: p.Name,
				Contents: bom.DataContents{Attachment: bom.Attachment{
					ContentType: p.ContentType,
					Encoding:    "base64",
					Content:     base64.StdEncoding.EncodeToString(p.Content),
				}},
			})
		}
		nested = append(nested, bom.Component{
			BOMRef:   bom.NewRef(src, "resource-profile-baselines"),
			Type:     "data",
			MimeType: mimeResourceProfile,
			Name:     "resource-profile-baselines",
			Data:     data,
		})
	}

	return nested
}
