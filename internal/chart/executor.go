// Package chart pulls packaged charts and inspects their archives: top-level
// metadata, the archive hash, and the embedded data files (values schema,
// resource profiles) that become nested components of a mini-manifest.
package chart

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"
)

// pullTimeout bounds a single registry pull.
const pullTimeout = 120 * time.Second

// ErrHelmNotFound is returned when the helm binary is not installed.
var ErrHelmNotFound = errors.New("helm CLI not found, install helm: https://helm.sh/docs/intro/install/")

// Executor downloads a chart archive into a destination directory. The
// production implementation shells out to helm; tests substitute a fake that
// drops a prepared archive in place.
type Executor interface {
	Pull(ctx context.Context, reference, destDir string) error
}

// HelmExecutor pulls charts via the helm CLI.
type HelmExecutor struct{}

// NewHelmExecutor returns the production executor.
func NewHelmExecutor() *HelmExecutor {
	return &HelmExecutor{}
}

// Pull runs `helm pull <reference> --destination <destDir>`.
func (e *HelmExecutor) Pull(ctx context.Context, reference, destDir string) error {
	ctx, cancel := context.WithTimeout(ctx, pullTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "helm", "pull", reference, "--destination", destDir)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return ErrHelmNotFound
		}
		if stderr.Len() > 0 {
			return fmt.Errorf("helm pull failed: %s", bytes.TrimSpace(stderr.Bytes()))
		}
		return fmt.Errorf("helm pull failed: %w", err)
	}
	return nil
}
