package source

import (
	"context"
	"path"
)

type memoryKey struct {
	rev  Revision
	path string
}

// Memory is a Source backed by a map, for tests and embedding.
type Memory struct {
	files map[memoryKey]string
}

// NewMemory returns an empty Memory.
func NewMemory() *Memory {
	return &Memory{files: map[memoryKey]string{}}
}

// Put stores content for path at rev, replacing any previous content.
func (m *Memory) Put(rev Revision, p, content string) *Memory {
	m.files[memoryKey{rev, path.Clean(p)}] = content
	return m
}

func (m *Memory) Lines(ctx context.Context, p string, rev Revision) ([]string, error) {
	content, ok := m.files[memoryKey{rev, path.Clean(p)}]
	if !ok {
		return nil, &NotFoundError{Path: p, Revision: rev}
	}
	return splitLines(content), nil
}
