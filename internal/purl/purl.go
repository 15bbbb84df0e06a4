// Package purl computes package identifiers for container images and charts
// from their locators, using the Registry Definition to resolve the symbolic
// registry name carried in the registry_name qualifier.
//
// Examples:
//
//	image "ghcr.io/netcracker/jaeger:1.0" with registry "qubership"
//	    -> pkg:docker/netcracker/jaeger@1.0?registry_name=qubership
//	chart "oci://registry.qubership.org/charts/my-chart:1.0"
//	    -> pkg:helm/charts/my-chart@1.0?registry_name=qubership
//	image "docker.io/envoyproxy/envoy:v1.32.6" without a definition
//	    -> pkg:docker/envoyproxy/envoy@v1.32.6?registry_name=docker.io
package purl

import (
	"errors"
	"fmt"
	"strings"

	"github.com/package-url/packageurl-go"

	"github.com/appmanifest/ambuild/internal/regdef"
)

// TypeHelm is the purl type for charts; packageurl-go does not define it.
const TypeHelm = "helm"

// Locator parsing errors.
var (
	ErrBadImageLocator = errors.New("invalid image locator")
	ErrBadChartLocator = errors.New("invalid chart locator")
)

// ImageRef is a container image locator split into its parts.
type ImageRef struct {
	Registry  string
	Namespace string
	Name      string
	Version   string
}

// ParseImageLocator splits an image locator.
//
//	docker.io/envoyproxy/envoy:v1.32.6 -> (docker.io, envoyproxy, envoy, v1.32.6)
//	sandbox.example.com/core/svc:2.0   -> (sandbox.example.com, core, svc, 2.0)
//	ubuntu:22.04                       -> (docker.io, library, ubuntu, 22.04)
func ParseImageLocator(locator string) ImageRef {
	ref := strings.TrimPrefix(locator, "docker://")

	// Format: REGISTRY_HOST[:PORT]/NAMESPACE/IMAGE:TAG
	parts := strings.Split(ref, "/")

	var registry, namespace, nameTag string
	switch {
	case len(parts) >= 3:
		registry = parts[0]
		namespace = strings.Join(parts[1:len(parts)-1], "/")
		nameTag = parts[len(parts)-1]
	case len(parts) == 2:
		if strings.ContainsAny(parts[0], ".:") {
			registry = parts[0]
			nameTag = parts[1]
		} else {
			registry = "docker.io"
			namespace = parts[0]
			nameTag = parts[1]
		}
	default:
		registry = "docker.io"
		namespace = "library"
		nameTag = parts[0]
	}

	name, version := splitNameVersion(nameTag)
	return ImageRef{Registry: registry, Namespace: namespace, Name: name, Version: version}
}

func splitNameVersion(nameTag string) (string, string) {
	if i := strings.LastIndex(nameTag, ":"); i >= 0 {
		return nameTag[:i], nameTag[i+1:]
	}
	if i := strings.LastIndex(nameTag, "@"); i >= 0 {
		return nameTag[:i], nameTag[i+1:]
	}
	return nameTag, "latest"
}

// ForImage builds the package identifier for a container image locator.
func ForImage(locator string, def *regdef.Definition) (string, error) {
	ref := ParseImageLocator(locator)
	if ref.Name == "" {
		return "", fmt.Errorf("%w: cannot parse image name from %q", ErrBadImageLocator, locator)
	}
	if ref.Registry == "" {
		return "", fmt.Errorf("%w: cannot determine registry from %q", ErrBadImageLocator, locator)
	}

	registryName := resolveRegistryName(ref.Registry, ref.Namespace, def, dockerMatch)
	return build(packageurl.TypeDocker, ref.Namespace, ref.Name, ref.Version, registryName), nil
}

// ForChart builds the package identifier for a chart locator.
func ForChart(locator string, def *regdef.Definition) (string, error) {
	ref := locator
	for _, prefix := range []string{"oci://", "https://", "http://"} {
		if strings.HasPrefix(ref, prefix) {
			ref = strings.TrimPrefix(ref, prefix)
			break
		}
	}

	parts := strings.Split(ref, "/")
	var registry, namespace, nameTag string
	switch {
	case len(parts) >= 3:
		registry = parts[0]
		namespace = strings.Join(parts[1:len(parts)-1], "/")
		nameTag = parts[len(parts)-1]
	case len(parts) == 2:
		registry = parts[0]
		nameTag = parts[1]
	default:
		nameTag = parts[0]
	}

	var name, version string
	if i := strings.LastIndex(nameTag, ":"); i >= 0 {
		name, version = nameTag[:i], nameTag[i+1:]
	} else {
		name = nameTag
	}

	if name == "" {
		return "", fmt.Errorf("%w: cannot parse chart name from %q", ErrBadChartLocator, locator)
	}
	if version == "" {
		return "", fmt.Errorf("%w: version is required in %q", ErrBadChartLocator, locator)
	}
	if registry == "" {
		return "", fmt.Errorf("%w: cannot determine registry from %q", ErrBadChartLocator, locator)
	}

	registryName := resolveRegistryName(registry, namespace, def, helmMatch)
	return build(TypeHelm, namespace, name, version, registryName), nil
}

func build(purlType, namespace, name, version, registryName string) string {
	qualifiers := packageurl.QualifiersFromMap(map[string]string{
		"registry_name": registryName,
	})
	return packageurl.NewPackageURL(purlType, namespace, name, version, qualifiers, "").ToString()
}

// matchFunc reports whether a registry host plus namespace belongs to the
// definition.
type matchFunc func(host, namespace string, def *regdef.Definition) bool

// resolveRegistryName maps a registry host to the definition's symbolic name
// and falls back to the host itself when nothing matches.
func resolveRegistryName(host, namespace string, def *regdef.Definition, match matchFunc) string {
	if def != nil && match(host, namespace, def) {
		return def.Name
	}
	return host
}

func dockerMatch(host, namespace string, def *regdef.Definition) bool {
	cfg := def.DockerConfig
	if cfg == nil {
		return false
	}
	for _, uri := range cfg.URIs() {
		if uri == "" || !hostsMatch(host, uri) {
			continue
		}
		if cfg.GroupName == "" || namespaceMatches(namespace, cfg.GroupName) {
			return true
		}
	}
	return false
}

func helmMatch(host, _ string, def *regdef.Definition) bool {
	cfg := def.HelmAppConfig
	if cfg == nil || cfg.RepositoryDomainName == "" {
		return false
	}
	return hostsMatch(host, cfg.RepositoryDomainName)
}

// namespaceMatches accepts an exact group match or any nested path below the
// group, so "netcracker/team/sub" matches group "netcracker" while
// "netcracker-fork" does not.
func namespaceMatches(namespace, groupName string) bool {
	return namespace == groupName || strings.HasPrefix(namespace, groupName+"/")
}

// hostsMatch compares a registry host against a configured URI ignoring the
// protocol prefix and trailing slashes.
func hostsMatch(host, uri string) bool {
	for _, prefix := range []string{"oci://", "https://", "http://", "docker://"} {
		if strings.HasPrefix(uri, prefix) {
			uri = strings.TrimPrefix(uri, prefix)
			break
		}
	}
	return strings.TrimRight(host, "/") == strings.TrimRight(uri, "/")
}
