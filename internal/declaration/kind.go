package declaration

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownKind is returned when a mime type is not part of the component
// vocabulary.
var ErrUnknownKind = errors.New("unknown component mime type")

// Kind is the canonical component kind. The declaration and the
// mini-manifests spell kinds as mime types with one of two equivalent vendor
// prefixes (vnd.nc, vnd.qubership); both fold to the same Kind at parse time
// so that matching and classification never compare raw spellings.
type Kind string

const (
	KindStandaloneRunnable Kind = "standalone-runnable"
	KindDockerImage        Kind = "docker-image"
	KindHelmChart          Kind = "helm-chart"
	KindSmartplug          Kind = "smartplug"
	KindSamplerepo         Kind = "samplerepo"
	KindCDN                Kind = "cdn"
	KindCRD                Kind = "crd"
	KindJob                Kind = "job"
)

// vendor prefixes accepted in mime types, folded to the same kinds
const (
	prefixNC        = "application/vnd.nc."
	prefixQubership = "application/vnd.qubership."
)

const mimeDockerImage = "application/vnd.docker.image"

var suffixKinds = map[string]Kind{
	"standalone-runnable": KindStandaloneRunnable,
	"helm.chart":          KindHelmChart,
	"smartplug":           KindSmartplug,
	"samplerepo":          KindSamplerepo,
	"cdn":                 KindCDN,
	"crd":                 KindCRD,
	"job":                 KindJob,
}

// ParseMimeType folds a declared mime type to its canonical Kind.
func ParseMimeType(mimeType string) (Kind, error) {
	if mimeType == mimeDockerImage {
		return KindDockerImage, nil
	}

	var suffix string
	switch {
	case strings.HasPrefix(mimeType, prefixNC):
		suffix = strings.TrimPrefix(mimeType, prefixNC)
	case strings.HasPrefix(mimeType, prefixQubership):
		suffix = strings.TrimPrefix(mimeType, prefixQubership)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, mimeType)
	}

	kind, ok := suffixKinds[suffix]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, mimeType)
	}
	return kind, nil
}

// Identity is the structural identity of a component within one declaration:
// two entries may share a name as long as their kinds differ. Identity is
// used as the map key for description lookup and reference allocation.
type Identity struct {
	Name string
	Kind Kind
}

func (id Identity) String() string {
	return id.Name + "/" + string(id.Kind)
}
