package introspect

// Column is a table column as SQLite reports it.
type Column struct {
	Name    string `yaml:"name" json:"name"`
	Type    string `yaml:"type" json:"type"`
	NotNull bool   `yaml:"not_null,omitempty" json:"not_null,omitempty"`
	PK      bool   `yaml:"pk,omitempty" json:"pk,omitempty"`
}

// ForeignKey is one column reference to another table.
type ForeignKey struct {
	FromColumn string `yaml:"from_column" json:"from_column"`
	ToTable    string `yaml:"to_table" json:"to_table"`
	ToColumn   string `yaml:"to_column" json:"to_column"`
	OnUpdate   string `yaml:"on_update" json:"on_update"`
	OnDelete   string `yaml:"on_delete" json:"on_delete"`
}

// Table is a live table and its columns in storage order.
type Table struct {
	Name        string       `yaml:"name" json:"name"`
	Columns     []Column     `yaml:"columns" json:"columns"`
	ForeignKeys []ForeignKey `yaml:"foreign_keys,omitempty" json:"foreign_keys,omitempty"`
}

// ColumnNames returns the column names in storage order.
func (t Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}
