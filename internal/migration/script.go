package migration

import (
	"fmt"
	"io"
	"strings"

	"aamigrate/internal/catalog"
	"aamigrate/internal/logger"
	"aamigrate/internal/model"
)

// Mode is the kind of script a Diff needs.
type Mode int

const (
	// NoOp: nothing was added or removed.
	NoOp Mode = iota
	// Additive: columns were only added, each gets an ALTER TABLE.
	Additive
	// Destructive: a column was removed, the table is rebuilt from a backup copy.
	Destructive
)

func (m Mode) String() string {
	switch m {
	case NoOp:
		return "no-op"
	case Additive:
		return "additive"
	case Destructive:
		return "destructive"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

const (
	noMigration = "No migration needed!"
	idColumn    = "Id INTEGER PRIMARY KEY AUTOINCREMENT"
	beginTx     = "BEGIN TRANSACTION;"
	commitTx    = "COMMIT;"
)

// Script is the migration for one table.
type Script struct {
	Mode       Mode
	Table      string
	Statements []string
	// Warnings holds the columns whose type could not be resolved; their
	// statements are incomplete.
	Warnings []error
}

// Generate writes the statements for d, resolving column types through cat.
func Generate(d *Diff, cat catalog.Catalog) *Script {
	s := &Script{Mode: d.Mode(), Table: d.To.TableName}
	switch s.Mode {
	case Additive:
		for _, col := range d.Added {
			s.Statements = append(s.Statements,
				fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s;", s.Table, col.Name, s.columnType(col, cat)))
		}
	case Destructive:
		s.rebuild(d, cat)
	}
	return s
}

// rebuild copies the surviving columns into a new table that replaces the old one.
func (s *Script) rebuild(d *Diff, cat catalog.Catalog) {
	backup := s.Table + "_backup"

	kept := []string{"Id"}
	for _, col := range d.Common {
		kept = append(kept, col.Name)
	}
	names := strings.Join(kept, ", ")

	s.Statements = append(s.Statements,
		s.createTable(backup, d.To.Fields, cat),
		fmt.Sprintf("INSERT INTO %s (%s) SELECT %s FROM %s;", backup, names, names, d.From.TableName),
		fmt.Sprintf("DROP TABLE %s;", d.From.TableName),
		fmt.Sprintf("ALTER TABLE %s RENAME TO %s;", backup, s.Table),
	)
}

func (s *Script) createTable(name string, fields []model.Column, cat catalog.Catalog) string {
	defs := []string{idColumn}
	for _, col := range fields {
		defs = append(defs, col.Name+" "+s.columnType(col, cat))
	}
	return fmt.Sprintf("CREATE TABLE %s (%s);", name, strings.Join(defs, ", "))
}

// CreateTable returns the statement creating the table of m from scratch,
// with the columns whose type could not be resolved.
func CreateTable(m *model.Model, cat catalog.Catalog) (string, []error) {
	s := &Script{Table: m.TableName}
	stmt := s.createTable(m.TableName, m.Fields, cat)
	return stmt, s.Warnings
}

func (s *Script) columnType(col model.Column, cat catalog.Catalog) string {
	t, err := cat.Resolve(col)
	if err != nil {
		logger.Warn("%s: %v", s.Table, err)
		s.Warnings = append(s.Warnings, err)
	}
	return t
}

func (s *Script) String() string {
	if s.Mode == NoOp {
		return noMigration + "\n"
	}
	var b strings.Builder
	b.WriteString(beginTx + "\n\n")
	for _, stmt := range s.Statements {
		b.WriteString(stmt + "\n")
	}
	b.WriteString("\n" + commitTx + "\n")
	return b.String()
}

// WriteTo writes the script text to w.
func (s *Script) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, s.String())
	return int64(n), err
}
