// Package model extracts the persisted columns of an annotated model class
// from the source text of one snapshot.
package model

import "fmt"

// NoAction is the default foreign key action.
const NoAction = "NO ACTION"

// Column is one persisted field of a model class.
type Column struct {
	Type     string `yaml:"type" json:"type"`
	Name     string `yaml:"name" json:"name"`
	FKTable  string `yaml:"references,omitempty" json:"references,omitempty"` // referenced table, empty if not a foreign key
	OnDelete string `yaml:"on_delete" json:"on_delete"`
	OnUpdate string `yaml:"on_update" json:"on_update"`
}

// NewColumn returns a column with both foreign key actions set to NO ACTION.
func NewColumn(typ, name string) Column {
	return Column{Type: typ, Name: name, OnDelete: NoAction, OnUpdate: NoAction}
}

// Equal compares type and name only.
func (c Column) Equal(o Column) bool {
	return c.Type == o.Type && c.Name == o.Name
}

// Reference describes the foreign key part of the column, empty when there is none.
func (c Column) Reference() string {
	if c.FKTable == "" {
		return ""
	}
	return fmt.Sprintf("%s(Id) ON DELETE %s ON UPDATE %s", c.FKTable, c.OnDelete, c.OnUpdate)
}

func (c Column) String() string {
	return fmt.Sprintf("%s %s", c.Type, c.Name)
}

// Model is one table: its name and its columns in declaration order,
// inherited columns first. The Id primary key is implicit.
type Model struct {
	TableName string   `yaml:"table" json:"table"`
	Fields    []Column `yaml:"fields" json:"fields"`
}

// Search returns the column with the given name.
func (m *Model) Search(name string) (Column, bool) {
	for _, c := range m.Fields {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// Names returns the column names in declaration order.
func (m *Model) Names() []string {
	names := make([]string, len(m.Fields))
	for i, c := range m.Fields {
		names[i] = c.Name
	}
	return names
}

// storage classes of the language value types; anything else may be a foreign key
var storageTypes = map[string]string{
	"Double": "REAL", "double": "REAL",
	"Float": "REAL", "float": "REAL",

	"Long": "INTEGER", "long": "INTEGER",
	"Integer": "INTEGER", "int": "INTEGER",
	"Short": "INTEGER", "short": "INTEGER",
	"Byte": "INTEGER", "byte": "INTEGER",
	"Boolean": "INTEGER", "boolean": "INTEGER",
	"Calendar": "INTEGER",

	"String": "TEXT", "CharSequence": "TEXT", "char": "TEXT",
}

// StorageType returns the SQLite storage class of a value type name.
func StorageType(typ string) (string, bool) {
	t, ok := storageTypes[typ]
	return t, ok
}
