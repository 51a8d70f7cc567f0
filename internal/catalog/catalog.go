// Package catalog maps custom value types to the types their serializers
// store, and resolves columns to SQLite column types.
package catalog

import (
	"errors"
	"fmt"
	"sort"

	"aamigrate/internal/model"
)

// ErrUnknownType is wrapped by UnknownTypeError.
var ErrUnknownType = errors.New("unknown column type")

// UnknownTypeError reports a column that is neither a value type nor a
// foreign key.
type UnknownTypeError struct {
	Column   string
	Type     string // declared type
	Resolved string // type after catalog lookup
}

func (e *UnknownTypeError) Error() string {
	if e.Resolved != e.Type {
		return fmt.Sprintf("unable to detect type of column %s: %s (stored as %s)", e.Column, e.Type, e.Resolved)
	}
	return fmt.Sprintf("unable to detect type of column %s: %s", e.Column, e.Type)
}

func (e *UnknownTypeError) Unwrap() error {
	return ErrUnknownType
}

// Catalog maps a declared type name to the type name it is persisted as.
type Catalog map[string]string

// Builtins returns the serializers shipped with ActiveAndroid.
func Builtins() Catalog {
	return Catalog{
		"BigDecimal": "String",
		"Calendar":   "Long",
		"File":       "String",
		"Date":       "long",
		"UUID":       "String",
	}
}

// Merge copies the entries of other into c, replacing existing ones.
func (c Catalog) Merge(other Catalog) Catalog {
	for k, v := range other {
		c[k] = v
	}
	return c
}

// Types returns the mapped type names, sorted.
func (c Catalog) Types() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

const referenceType = "INTEGER REFERENCES "

// Resolve returns the SQLite type of col. An *UnknownTypeError comes with an
// empty type; callers may carry on and report it.
func (c Catalog) Resolve(col model.Column) (string, error) {
	typ := col.Type
	if stored, ok := c[typ]; ok {
		typ = stored
	}
	if st, ok := model.StorageType(typ); ok {
		return st, nil
	}
	if col.FKTable != "" {
		return referenceType + col.Reference(), nil
	}
	return "", &UnknownTypeError{Column: col.Name, Type: col.Type, Resolved: typ}
}
