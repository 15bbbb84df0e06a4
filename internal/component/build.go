package component

import (
	"strings"
	"time"

	"github.com/appmanifest/ambuild/internal/bom"
	"github.com/appmanifest/ambuild/internal/purl"
	"github.com/appmanifest/ambuild/internal/regdef"
)

// Options tune mini-manifest production.
type Options struct {
	// Registry resolves symbolic registry names in package identifiers.
	Registry *regdef.Definition

	// Tool identifies the producing tool.
	Tool bom.Tool

	// Refs defaults to bom.DefaultSource.
	Refs bom.RefSource

	// Now defaults to time.Now.
	Now func() time.Time
}

// Build converts CI metadata into a single-component mini-manifest.
func Build(meta *Metadata, opts Options) (bom.Document, error) {
	src := opts.Refs
	if src == nil {
		src = bom.DefaultSource
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	tool := opts.Tool
	if tool.Name == "" {
		tool = bom.Tool{Type: "application", Name: "ambuild", Version: "dev"}
	}

	var (
		c   bom.Component
		err error
	)
	switch {
	case isImage(meta.MimeType):
		c, err = buildImage(meta, opts.Registry, src)
	case isChart(meta.MimeType):
		c, err = buildChart(meta, opts.Registry, src)
	default:
		c = buildBasic(meta, src)
	}
	if err != nil {
		return bom.Document{}, err
	}

	return bom.NewMini(c, tool, src, now()), nil
}

func isImage(mimeType string) bool {
	return strings.Contains(mimeType, "docker.image")
}

func isChart(mimeType string) bool {
	return strings.Contains(mimeType, "helm.chart")
}

func buildImage(meta *Metadata, def *regdef.Definition, src bom.RefSource) (bom.Component, error) {
	var pkgID string
	if meta.Reference != "" {
		var err error
		pkgID, err = purl.ForImage(meta.Reference, def)
		if err != nil {
			return bom.Component{}, err
		}
	}

	return bom.Component{
		BOMRef:   bom.NewRef(src, meta.Name),
		Type:     "container",
		MimeType: meta.MimeType,
		Name:     meta.Name,
		Group:    meta.Group,
		Version:  meta.Version,
		PURL:     pkgID,
		Hashes:   meta.Hashes,
	}, nil
}

func buildChart(meta *Metadata, def *regdef.Definition, src bom.RefSource) (bom.Component, error) {
	var pkgID string
	if meta.Reference != "" {
		var err error
		pkgID, err = purl.ForChart(meta.Reference, def)
		if err != nil {
			return bom.Component{}, err
		}
	}

	// Charts prefer the embedded application version over the chart's own.
	version := meta.AppVersion
	if version == "" {
		version = meta.Version
	}

	return bom.Component{
		BOMRef:     bom.NewRef(src, meta.Name),
		Type:       "application",
		MimeType:   meta.MimeType,
		Name:       meta.Name,
		Version:    version,
		PURL:       pkgID,
		Hashes:     meta.Hashes,
		Components: convertNested(meta.Components, src),
	}, nil
}

func buildBasic(meta *Metadata, src bom.RefSource) bom.Component {
	return bom.Component{
		BOMRef:   bom.NewRef(src, meta.Name),
		Type:     meta.Type,
		MimeType: meta.MimeType,
		Name:     meta.Name,
		Version:  meta.Version,
	}
}

// convertNested carries CI-prepared data components into the mini-manifest
// with fresh references, defaulting the attachment encoding.
func convertNested(nested []NestedComponent, src bom.RefSource) []bom.Component {
	if len(nested) == 0 {
		return nil
	}

	result := make([]bom.Component, 0, len(nested))
	for _, n := range nested {
		var data []bom.DataEntry
		for _, entry := range n.Data {
			if entry.Type == "" {
				entry.Type = "configuration"
			}
			if entry.Contents.Attachment.Encoding == "" {
				entry.Contents.Attachment.Encoding = "base64"
			}
			data = append(data, entry)
		}
		result = append(result, bom.Component{
			BOMRef:   bom.NewRef(src, n.Name),
			Type:     n.Type,
			MimeType: n.MimeType,
			Name:     n.Name,
			Data:     data,
		})
	}
	return result
}
