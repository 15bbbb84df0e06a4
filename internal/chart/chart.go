package chart

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Inspection errors.
var (
	ErrNoArchive   = errors.New("no .tgz archive found after pull")
	ErrNoChartFile = errors.New("Chart.yaml not found in extracted archive")
	ErrMissingName = errors.New("chart name missing from Chart.yaml")
)

// DataFile is one embedded file harvested from the archive.
type DataFile struct {
	Name        string
	ContentType string
	Content     []byte
}

// Chart is the result of pulling and inspecting one packaged chart.
type Chart struct {
	Name       string
	Version    string
	AppVersion string
	SHA256     string

	// ValuesSchema is the chart's values.schema.json, nil when absent.
	ValuesSchema []byte

	// Profiles holds the resource-profiles/*.yaml files in name order.
	Profiles []DataFile

	// Warnings collects non-fatal oddities observed while inspecting.
	Warnings []string
}

// chartFile is the subset of Chart.yaml the inspector reads.
type chartFile struct {
	Name       string `yaml:"name"`
	Version    string `yaml:"version"`
	AppVersion string `yaml:"appVersion"`
}

// Fetch pulls a chart archive into a temporary directory and inspects it.
func Fetch(ctx context.Context, exec Executor, reference string) (*Chart, error) {
	tmpDir, err := os.MkdirTemp("", "ambuild-chart-*")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	if err := exec.Pull(ctx, reference, tmpDir); err != nil {
		return nil, err
	}

	c := &Chart{}

	archive, err := findArchive(tmpDir, c)
	if err != nil {
		return nil, err
	}

	c.SHA256, err = fileSHA256(archive)
	if err != nil {
		return nil, err
	}

	extractDir := filepath.Join(tmpDir, "extracted")
	if err := extract(archive, extractDir); err != nil {
		return nil, err
	}

	chartDir, err := findChartDir(extractDir)
	if err != nil {
		return nil, err
	}

	if err := c.readChartFile(chartDir); err != nil {
		return nil, err
	}
	if err := c.harvest(chartDir); err != nil {
		return nil, err
	}
	return c, nil
}

// findArchive locates the pulled .tgz. More than one archive is unexpected
// but tolerated: the lexicographically first wins, with a warning.
func findArchive(dir string, c *Chart) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.tgz"))
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("%w in %s", ErrNoArchive, dir)
	}
	sort.Strings(matches)
	if len(matches) > 1 {
		names := make([]string, len(matches))
		for i, m := range matches {
			names[i] = filepath.Base(m)
		}
		c.Warnings = append(c.Warnings,
			fmt.Sprintf("multiple .tgz files found after pull, using first: %s", strings.Join(names, ", ")))
	}
	return matches[0], nil
}

func fileSHA256(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// findChartDir returns the directory containing Chart.yaml: either a single
// chart-named subdirectory or the extraction root itself.
func findChartDir(extractDir string) (string, error) {
	entries, err := os.ReadDir(extractDir)
	if err != nil {
		return "", err
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		candidate := filepath.Join(extractDir, e.Name())
		if _, err := os.Stat(filepath.Join(candidate, "Chart.yaml")); err == nil {
			return candidate, nil
		}
	}
	if _, err := os.Stat(filepath.Join(extractDir, "Chart.yaml")); err == nil {
		return extractDir, nil
	}
	return "", fmt.Errorf("%w at %s", ErrNoChartFile, extractDir)
}

func (c *Chart) readChartFile(chartDir string) error {
	content, err := os.ReadFile(filepath.Join(chartDir, "Chart.yaml"))
	if err != nil {
		return fmt.Errorf("read Chart.yaml: %w", err)
	}
	var cf chartFile
	if err := yaml.Unmarshal(content, &cf); err != nil {
		return fmt.Errorf("parse Chart.yaml: %w", err)
	}
	if cf.Name == "" {
		return ErrMissingName
	}
	c.Name = cf.Name
	c.Version = cf.Version
	c.AppVersion = cf.AppVersion
	return nil
}

// harvest collects values.schema.json and resource-profiles/*.yaml.
func (c *Chart) harvest(chartDir string) error {
	schemaPath := filepath.Join(chartDir, "values.schema.json")
	if content, err := os.ReadFile(schemaPath); err == nil {
		c.ValuesSchema = content
	} else if !os.IsNotExist(err) {
		return err
	}

	profilesDir := filepath.Join(chartDir, "resource-profiles")
	matches, err := filepath.Glob(filepath.Join(profilesDir, "*.yaml"))
	if err != nil {
		return err
	}
	sort.Strings(matches)
	for _, m := range matches {
		content, err := os.ReadFile(m)
		if err != nil {
			return err
		}
		c.Profiles = append(c.Profiles, DataFile{
			Name:        filepath.Base(m),
			ContentType: "application/yaml",
			Content:     content,
		})
	}
	return nil
}
