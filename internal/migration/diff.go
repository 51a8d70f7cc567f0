// Package migration compares two models of the same class and writes the
// SQLite script that turns the old table into the new one.
package migration

import (
	"errors"
	"fmt"

	"aamigrate/internal/logger"
	"aamigrate/internal/model"
)

// ErrUnsupportedChange is wrapped by UnsupportedChangeError.
var ErrUnsupportedChange = errors.New("unsupported change")

// UnsupportedChangeError reports a column that kept its name but changed its
// type or its foreign key.
type UnsupportedChangeError struct {
	Column string
	Was    string
	Now    string
}

func (e *UnsupportedChangeError) Error() string {
	return fmt.Sprintf("changing column %s is not supported: %s (was: %s)", e.Column, e.Now, e.Was)
}

func (e *UnsupportedChangeError) Unwrap() error {
	return ErrUnsupportedChange
}

// Diff splits the columns of two models. Every column of To is in Added or
// Common; every column of From is in Removed or Common.
type Diff struct {
	From    *model.Model
	To      *model.Model
	Added   []model.Column
	Removed []model.Column
	Common  []model.Column
}

// Compare matches the columns of to against from by name.
func Compare(from, to *model.Model) (*Diff, error) {
	if from.TableName != to.TableName {
		logger.Warn("table name changed from %s to %s, the table is rebuilt", from.TableName, to.TableName)
	}

	d := &Diff{
		From:    from,
		To:      to,
		Removed: append([]model.Column(nil), from.Fields...),
	}
	for _, col := range to.Fields {
		old, ok := from.Search(col.Name)
		switch {
		case !ok:
			d.Added = append(d.Added, col)
		case !old.Equal(col), old.Reference() != col.Reference():
			return nil, &UnsupportedChangeError{Column: col.Name, Was: definition(old), Now: definition(col)}
		default:
			d.Common = append(d.Common, col)
			d.Removed = without(d.Removed, old)
		}
	}
	return d, nil
}

// Renamed reports whether the table name differs between the two models.
func (d *Diff) Renamed() bool {
	return d.From.TableName != d.To.TableName
}

// Mode picks how the script migrates the table. A renamed table is always
// rebuilt, since its rows have to be copied out of the old name.
func (d *Diff) Mode() Mode {
	switch {
	case len(d.Removed) > 0, d.Renamed():
		return Destructive
	case len(d.Added) > 0:
		return Additive
	default:
		return NoOp
	}
}

// without removes the first column equal to c.
func without(cols []model.Column, c model.Column) []model.Column {
	for i := range cols {
		if cols[i].Equal(c) {
			return append(cols[:i], cols[i+1:]...)
		}
	}
	return cols
}

func definition(c model.Column) string {
	if c.FKTable == "" {
		return c.Type
	}
	return c.Type + " REFERENCES " + c.Reference()
}
