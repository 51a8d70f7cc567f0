package source

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// WorkingCopy reads live files below Root.
type WorkingCopy struct {
	Root string
}

// Lines returns the current content of path below Root.
func (w WorkingCopy) Lines(ctx context.Context, path string, rev Revision) ([]string, error) {
	if !rev.IsLive() {
		return nil, fmt.Errorf("working copy cannot read revision %s", rev)
	}
	full := path
	if !filepath.IsAbs(full) {
		full = filepath.Join(w.Root, path)
	}
	data, err := os.ReadFile(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &NotFoundError{Path: path, Revision: rev}
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return splitLines(string(data)), nil
}
