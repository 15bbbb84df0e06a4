package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/appmanifest/ambuild/internal/bom"
)

// WriteMini writes a mini-manifest JSON file describing a single component
// and returns its path.
func WriteMini(t *testing.T, dir, filename, name, mimeType string, opts ...BodyOption) string {
	t.Helper()

	body := bom.Component{
		BOMRef:   name + ":descriptor-ref",
		Type:     "application",
		MimeType: mimeType,
		Name:     name,
	}
	for _, opt := range opts {
		opt(&body)
	}

	tool := bom.Tool{Type: "application", Name: "ambuild", Version: "test"}
	doc := bom.NewMini(body, tool, SeqRefs(), time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))

	data, err := json.MarshalIndent(doc, "", "  ")
	require.NoError(t, err)

	path := filepath.Join(dir, filename)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

// WriteFile writes content to dir/filename and returns the path.
func WriteFile(t *testing.T, dir, filename, content string) string {
	t.Helper()
	path := filepath.Join(dir, filename)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}
