package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"aamigrate/internal/logger"
)

// Git reads files from pinned revisions with `git show`.
type Git struct {
	Root   string // working directory for git, default "."
	Binary string // default "git"
}

// Lines returns the content of path at rev, read relative to Root.
func (g Git) Lines(ctx context.Context, path string, rev Revision) ([]string, error) {
	if rev.IsLive() {
		return nil, fmt.Errorf("git source needs a pinned revision for %s", path)
	}
	bin := g.Binary
	if bin == "" {
		bin = "git"
	}
	root := g.Root
	if root == "" {
		root = "."
	}

	rel := path
	if filepath.IsAbs(rel) {
		absRoot, err := filepath.Abs(root)
		if err != nil {
			return nil, err
		}
		if rel, err = filepath.Rel(absRoot, path); err != nil {
			return nil, fmt.Errorf("%s is outside %s: %w", path, root, err)
		}
	}
	// "./" makes git resolve the path against root instead of the top level
	object := rev.ID() + ":./" + filepath.ToSlash(filepath.Clean(rel))

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, "-C", root, "--no-pager", "show", object)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	logger.Debug("git show %s", object)
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, &NotFoundError{
				Path:     path,
				Revision: rev,
				Err:      errors.New(strings.TrimSpace(stderr.String())),
			}
		}
		return nil, fmt.Errorf("git show %s: %w", object, err)
	}
	return splitLines(stdout.String()), nil
}

// Repository serves the working copy and pinned revisions of one checkout.
type Repository struct {
	live   WorkingCopy
	pinned Git
}

// NewRepository returns a Source for the checkout at root.
func NewRepository(root, gitBinary string) *Repository {
	return &Repository{
		live:   WorkingCopy{Root: root},
		pinned: Git{Root: root, Binary: gitBinary},
	}
}

// Lines reads the working copy for the live revision and git otherwise.
func (r *Repository) Lines(ctx context.Context, path string, rev Revision) ([]string, error) {
	if rev.IsLive() {
		return r.live.Lines(ctx, path, rev)
	}
	return r.pinned.Lines(ctx, path, rev)
}
