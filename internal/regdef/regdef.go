// Package regdef models the Registry Definition document: the description of
// the artifact registries an organization publishes to. It is consulted only
// when computing package identifiers, to map a registry host back to the
// registry's symbolic name.
package regdef

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DockerConfig describes a container image registry.
type DockerConfig struct {
	GroupURI    string `yaml:"groupUri"`
	GroupName   string `yaml:"groupName"`
	SnapshotURI string `yaml:"snapshotUri"`
	StagingURI  string `yaml:"stagingUri"`
	ReleaseURI  string `yaml:"releaseUri"`
}

// URIs returns the candidate registry URIs, empty entries included.
func (c *DockerConfig) URIs() []string {
	return []string{c.GroupURI, c.SnapshotURI, c.StagingURI, c.ReleaseURI}
}

// HelmAppConfig describes a chart registry.
type HelmAppConfig struct {
	RepositoryDomainName string `yaml:"repositoryDomainName"`
	HelmGroupRepoName    string `yaml:"helmGroupRepoName"`
}

// GitHubReleaseConfig describes a GitHub Releases source.
type GitHubReleaseConfig struct {
	RepositoryDomainName string `yaml:"repositoryDomainName"`
	GroupName            string `yaml:"groupName"`
	Owner                string `yaml:"owner"`
	Repository           string `yaml:"repository"`
}

// Definition is the root of a Registry Definition v2.0 document. Name is the
// symbolic registry name used in package identifier qualifiers.
type Definition struct {
	Version             string               `yaml:"version"`
	Name                string               `yaml:"name"`
	DockerConfig        *DockerConfig        `yaml:"dockerConfig"`
	HelmAppConfig       *HelmAppConfig       `yaml:"helmAppConfig"`
	GitHubReleaseConfig *GitHubReleaseConfig `yaml:"githubReleaseConfig"`
}

// Load reads a Registry Definition YAML file.
func Load(path string) (*Definition, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read registry definition: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(content))
	dec.KnownFields(true)

	var def Definition
	if err := dec.Decode(&def); err != nil {
		return nil, fmt.Errorf("parse registry definition %s: %w", path, err)
	}
	if def.Name == "" {
		return nil, fmt.Errorf("registry definition %s: name is required", path)
	}
	return &def, nil
}
