package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	require.Equal(t, ".", cfg.OutputDir)
	require.False(t, cfg.Debug)
	require.Empty(t, cfg.RegistryDef)
	require.Empty(t, cfg.LogFile)
}

func TestDefaultConfigTemplateIsValidYAML(t *testing.T) {
	var parsed map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(DefaultConfigTemplate()), &parsed))
	require.Equal(t, ".", parsed["output_dir"])
	require.Equal(t, false, parsed["debug"])
}

func TestWriteDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	require.NoError(t, WriteDefaultConfig(path))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(content), "output_dir")
}
