package model

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"aamigrate/internal/logger"
	"aamigrate/internal/source"
)

// ErrCycle is wrapped by CycleError.
var ErrCycle = errors.New("model cycle")

// CycleError reports a class that inherits from itself, directly or not.
type CycleError struct {
	Revision source.Revision
	Chain    []string // paths, first and last are the same file
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("inheritance cycle at %s: %s", e.Revision, strings.Join(e.Chain, " -> "))
}

func (e *CycleError) Unwrap() error {
	return ErrCycle
}

// Framework base classes that end the inheritance chain without being read.
var rootClasses = []string{
	"com/activeandroid/Model.java",
	"java/util/Calendar.java",
}

func isRoot(p string) bool {
	for _, r := range rootClasses {
		if p == r || strings.HasSuffix(p, "/"+r) {
			return true
		}
	}
	return false
}

type key struct {
	rev  source.Revision
	path string
}

// Extractor builds Models from the snapshots of a Source. Results are kept
// per (revision, path) for the lifetime of the Extractor. It is not safe for
// concurrent use.
type Extractor struct {
	src    source.Source
	models map[key]*Model
	tables map[key]string
	active []key
}

// NewExtractor returns an Extractor reading snapshots from src.
func NewExtractor(src source.Source) *Extractor {
	return &Extractor{
		src:    src,
		models: map[key]*Model{},
		tables: map[key]string{},
	}
}

// Extract parses the model class at p as of rev, following its ancestors.
func (e *Extractor) Extract(ctx context.Context, p string, rev source.Revision) (*Model, error) {
	m, err := e.extract(ctx, path.Clean(p), rev)
	if err != nil {
		return nil, err
	}
	return &Model{
		TableName: m.TableName,
		Fields:    append([]Column(nil), m.Fields...),
	}, nil
}

func (e *Extractor) extract(ctx context.Context, p string, rev source.Revision) (*Model, error) {
	k := key{rev, p}
	if m, ok := e.models[k]; ok {
		return m, nil
	}
	for i, a := range e.active {
		if a == k {
			chain := []string{}
			for _, c := range e.active[i:] {
				chain = append(chain, c.path)
			}
			return nil, &CycleError{Revision: rev, Chain: append(chain, p)}
		}
	}

	if isRoot(p) {
		m := &Model{TableName: normalizeTable("", p)}
		e.models[k] = m
		return m, nil
	}

	logger.Debug("extracting %s at %s", p, rev)
	lines, err := e.src.Lines(ctx, p, rev)
	if err != nil {
		return nil, err
	}

	e.active = append(e.active, k)
	defer func() { e.active = e.active[:len(e.active)-1] }()

	m, err := e.parse(ctx, p, rev, scan(lines))
	if err != nil {
		return nil, err
	}
	e.models[k] = m
	e.tables[k] = m.TableName
	return m, nil
}

// scanState is what the lines seen so far say about the file.
type scanState struct {
	file    string
	base    string            // source root derived from the package declaration
	imports map[string]string // short class name -> path below base, no extension
}

func (e *Extractor) parse(ctx context.Context, p string, rev source.Revision, decls []declaration) (*Model, error) {
	st := &scanState{file: p, imports: map[string]string{}}
	m := &Model{}
	var inherited []Column

	for i := 0; i < len(decls); i++ {
		d := decls[i]

		if d.pkg != "" {
			if base, ok := packageBase(p, d.pkg); ok {
				st.base = base
			} else {
				logger.Debug("%s: package %s does not match the file location", p, d.pkg)
			}
		}

		if d.imp != "" {
			st.imports[d.imp[strings.LastIndex(d.imp, ".")+1:]] = strings.ReplaceAll(d.imp, ".", "/")
		}

		if d.extends != "" {
			rel, ok := st.imports[d.extends]
			if !ok && strings.Contains(d.extends, ".") {
				rel, ok = strings.ReplaceAll(d.extends, ".", "/"), true
			}
			if ok {
				parent, err := e.extract(ctx, st.base+rel+".java", rev)
				if err != nil {
					return nil, fmt.Errorf("parent %s of %s: %w", d.extends, p, err)
				}
				inherited = append(inherited, parent.Fields...)
			}
		}

		if m.TableName == "" && d.table != "" {
			m.TableName = d.table
		}

		if !d.marker {
			continue
		}
		j := nextField(decls, i)
		if j < 0 {
			logger.Warn("%s:%d: %s without a field declaration", p, d.line, columnMarker)
			break
		}
		f := decls[j].field
		col := NewColumn(f.typ, f.name)
		if d.onDelete != "" {
			col.OnDelete = d.onDelete
		}
		if d.onUpdate != "" {
			col.OnUpdate = d.onUpdate
		}
		if _, ok := StorageType(col.Type); !ok {
			fk, err := e.foreignTable(ctx, st, col.Type, rev)
			if err != nil {
				return nil, fmt.Errorf("column %s of %s: %w", col.Name, p, err)
			}
			col.FKTable = fk
		}
		m.Fields = append(m.Fields, col)
		i = j
	}

	m.TableName = normalizeTable(m.TableName, p)
	m.Fields = append(inherited, m.Fields...)
	return m, nil
}

// foreignTable returns the table of the model class typ refers to, or ""
// when no such class file exists.
func (e *Extractor) foreignTable(ctx context.Context, st *scanState, typ string, rev source.Revision) (string, error) {
	var target string
	if rel, ok := st.imports[typ]; ok {
		target = st.base + rel + ".java"
	} else if strings.Contains(typ, ".") {
		target = st.base + strings.ReplaceAll(typ, ".", "/") + ".java"
	} else {
		target = path.Join(path.Dir(st.file), typ+".java")
	}

	name, err := e.tableName(ctx, path.Clean(target), rev)
	if errors.Is(err, source.ErrNotFound) {
		logger.Debug("%s: no model class for %s at %s", st.file, typ, target)
		return "", nil
	}
	return name, err
}

// tableName reads only as much of p as needed to name its table, which does
// not depend on ancestors or columns.
func (e *Extractor) tableName(ctx context.Context, p string, rev source.Revision) (string, error) {
	k := key{rev, p}
	if name, ok := e.tables[k]; ok {
		return name, nil
	}
	if isRoot(p) {
		return normalizeTable("", p), nil
	}
	lines, err := e.src.Lines(ctx, p, rev)
	if err != nil {
		return "", err
	}
	name := normalizeTable(findTable(scan(lines)), p)
	e.tables[k] = name
	return name, nil
}

// findTable returns the first table annotation outside column declarations.
func findTable(decls []declaration) string {
	for i := 0; i < len(decls); i++ {
		if decls[i].table != "" {
			return decls[i].table
		}
		if decls[i].marker {
			j := nextField(decls, i)
			if j < 0 {
				break
			}
			i = j
		}
	}
	return ""
}

// normalizeTable lower-cases the annotated name, falling back to the file name.
func normalizeTable(annotated, file string) string {
	name := annotated
	if name == "" {
		name = path.Base(file)
		if i := strings.Index(name, "."); i >= 0 {
			name = name[:i]
		}
	}
	return strings.ReplaceAll(strings.ToLower(name), `"`, "")
}

// packageBase returns the source root of file given its package name, with a
// trailing slash unless the root is the current directory.
func packageBase(file, pkg string) (string, bool) {
	dir := "/" + path.Dir(file) + "/"
	want := "/" + strings.ReplaceAll(pkg, ".", "/") + "/"
	i := strings.LastIndex(dir, want)
	if i < 0 {
		return "", false
	}
	return dir[1 : i+1], true
}
