package descriptor

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/appmanifest/ambuild/internal/bom"
	"github.com/appmanifest/ambuild/internal/declaration"
)

// ErrNoComponents is returned when a mini-manifest carries no components.
var ErrNoComponents = errors.New("mini-manifest has no components")

// miniFile is the subset of a mini-manifest the loader cares about.
type miniFile struct {
	Components []bom.Component `json:"components"`
}

// Load parses a single mini-manifest file. The first (and only) component is
// taken as the described component; its mime type must belong to the kind
// vocabulary.
func Load(path string) (*Component, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read mini-manifest: %w", err)
	}

	var file miniFile
	if err := json.Unmarshal(content, &file); err != nil {
		return nil, fmt.Errorf("parse mini-manifest %s: %w", path, err)
	}
	if len(file.Components) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoComponents, path)
	}

	body := file.Components[0]
	kind, err := declaration.ParseMimeType(body.MimeType)
	if err != nil {
		return nil, fmt.Errorf("mini-manifest %s: %w", path, err)
	}

	return &Component{Body: body, Kind: kind}, nil
}

// LoadAll loads mini-manifests from files and directories into an index.
// Directories are expanded to their *.json entries in lexicographic order;
// the paths themselves are processed in the order given. Together that makes
// the last-write-wins collision rule reproducible.
func LoadAll(paths []string) (*Index, error) {
	expanded, err := expandPaths(paths)
	if err != nil {
		return nil, err
	}

	ix := NewIndex()
	for _, p := range expanded {
		c, err := Load(p)
		if err != nil {
			return nil, err
		}
		ix.Add(c)
	}
	return ix, nil
}

func expandPaths(paths []string) ([]string, error) {
	var result []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", p, err)
		}
		if !info.IsDir() {
			result = append(result, p)
			continue
		}

		// os.ReadDir already sorts entries by name.
		entries, err := os.ReadDir(p)
		if err != nil {
			return nil, fmt.Errorf("read dir %s: %w", p, err)
		}
		for _, e := range entries {
			if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
				continue
			}
			result = append(result, filepath.Join(p, e.Name()))
		}
	}
	return result, nil
}
