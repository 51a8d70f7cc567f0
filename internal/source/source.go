// Package source reads model files either from the working copy or from a
// pinned git revision.
package source

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is wrapped by NotFoundError.
var ErrNotFound = errors.New("source not found")

// NotFoundError reports a file that does not exist at the requested revision.
type NotFoundError struct {
	Path     string
	Revision Revision
	Err      error // underlying error, if any
}

func (e *NotFoundError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s not found at %s: %v", e.Path, e.Revision, e.Err)
	}
	return fmt.Sprintf("%s not found at %s", e.Path, e.Revision)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// Revision selects a snapshot: the live working copy (the zero value) or a
// git revision.
type Revision struct {
	id string
}

// Live is the working copy.
var Live = Revision{}

// At returns the pinned revision id (a commit, a branch, "HEAD", "abc123~1").
func At(id string) Revision {
	return Revision{id: strings.TrimSpace(id)}
}

// IsLive reports whether r is the working copy.
func (r Revision) IsLive() bool {
	return r.id == ""
}

// ID returns the git revision id, empty for the working copy.
func (r Revision) ID() string {
	return r.id
}

// Parent returns the first parent of a pinned revision.
func (r Revision) Parent() Revision {
	if r.IsLive() {
		return At("HEAD")
	}
	return At(r.id + "~1")
}

func (r Revision) String() string {
	if r.IsLive() {
		return "working copy"
	}
	return r.id
}

// Source returns the lines of a file at a revision.
type Source interface {
	// Lines fails with a *NotFoundError when path does not exist at rev.
	Lines(ctx context.Context, path string, rev Revision) ([]string, error)
}

// splitLines splits file content into lines without their terminators.
func splitLines(content string) []string {
	content = strings.TrimSuffix(content, "\n")
	if content == "" {
		return nil
	}
	lines := strings.Split(content, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}
