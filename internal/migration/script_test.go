package migration

import (
	"bytes"
	"errors"
	"reflect"
	"strings"
	"testing"

	"aamigrate/internal/catalog"
	"aamigrate/internal/model"
)

func generate(t *testing.T, table string, from, to []model.Column, cat catalog.Catalog) *Script {
	t.Helper()
	d, err := Compare(&model.Model{TableName: table, Fields: from}, &model.Model{TableName: table, Fields: to})
	if err != nil {
		t.Fatalf("\ngot unexpected error: %v", err)
	}
	return Generate(d, cat)
}

func TestGenerate(t *testing.T) {
	cat := catalog.Builtins().Merge(catalog.Catalog{"Color": "Integer"})

	var tests = []struct {
		name  string
		table string
		from  []model.Column
		to    []model.Column
		mode  Mode
		text  string
	}{
		{"no migration", "items",
			[]model.Column{col("String", "name")},
			[]model.Column{col("String", "name")},
			NoOp,
			"No migration needed!\n"},
		{"add price", "items",
			[]model.Column{col("String", "name")},
			[]model.Column{col("String", "name"), col("Double", "price")},
			Additive,
			"BEGIN TRANSACTION;\n\n" +
				"ALTER TABLE items ADD COLUMN price REAL;\n" +
				"\nCOMMIT;\n"},
		{"add in declaration order", "items",
			nil,
			[]model.Column{col("Calendar", "due"), ref("Category", "cat", "category", "SET NULL"), col("UUID", "uid")},
			Additive,
			"BEGIN TRANSACTION;\n\n" +
				"ALTER TABLE items ADD COLUMN due INTEGER;\n" +
				"ALTER TABLE items ADD COLUMN cat INTEGER REFERENCES category(Id) ON DELETE SET NULL ON UPDATE NO ACTION;\n" +
				"ALTER TABLE items ADD COLUMN uid TEXT;\n" +
				"\nCOMMIT;\n"},
		{"drop name add color and description", "category",
			[]model.Column{col("String", "name")},
			[]model.Column{col("int", "color"), col("String", "description")},
			Destructive,
			"BEGIN TRANSACTION;\n\n" +
				"CREATE TABLE category_backup (Id INTEGER PRIMARY KEY AUTOINCREMENT, color INTEGER, description TEXT);\n" +
				"INSERT INTO category_backup (Id) SELECT Id FROM category;\n" +
				"DROP TABLE category;\n" +
				"ALTER TABLE category_backup RENAME TO category;\n" +
				"\nCOMMIT;\n"},
		{"replace color with rgb", "category",
			[]model.Column{col("int", "color"), col("String", "description")},
			[]model.Column{col("Color", "rgb"), col("String", "description")},
			Destructive,
			"BEGIN TRANSACTION;\n\n" +
				"CREATE TABLE category_backup (Id INTEGER PRIMARY KEY AUTOINCREMENT, rgb INTEGER, description TEXT);\n" +
				"INSERT INTO category_backup (Id, description) SELECT Id, description FROM category;\n" +
				"DROP TABLE category;\n" +
				"ALTER TABLE category_backup RENAME TO category;\n" +
				"\nCOMMIT;\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := generate(t, tt.table, tt.from, tt.to, cat)
			if s.Mode != tt.mode {
				t.Errorf("\ngot mode %v, wanted %v", s.Mode, tt.mode)
			}
			if s.String() != tt.text {
				t.Errorf("\ngot script\n%s\nwanted\n%s", s, tt.text)
			}
			if len(s.Warnings) != 0 {
				t.Errorf("\ngot warnings %v", s.Warnings)
			}
		})
	}
}

func TestGenerateNeverMixesAlterWithRebuild(t *testing.T) {
	s := generate(t, "t",
		[]model.Column{col("String", "a"), col("String", "b"), col("int", "c")},
		[]model.Column{col("int", "c"), col("Double", "d"), col("String", "a")},
		catalog.Builtins())

	want := []string{
		"CREATE TABLE t_backup (Id INTEGER PRIMARY KEY AUTOINCREMENT, c INTEGER, d REAL, a TEXT);",
		"INSERT INTO t_backup (Id, c, a) SELECT Id, c, a FROM t;",
		"DROP TABLE t;",
		"ALTER TABLE t_backup RENAME TO t;",
	}
	if !reflect.DeepEqual(s.Statements, want) {
		t.Errorf("\ngot statements\n%s\nwanted\n%s", strings.Join(s.Statements, "\n"), strings.Join(want, "\n"))
	}
	if strings.Contains(s.String(), "ADD COLUMN") {
		t.Errorf("\ndestructive script contains an ALTER ... ADD COLUMN")
	}
}

func TestGenerateUnknownType(t *testing.T) {
	s := generate(t, "items",
		nil,
		[]model.Column{col("List<Tag>", "tags"), col("String", "name")},
		catalog.Builtins())

	want := []string{
		"ALTER TABLE items ADD COLUMN tags ;",
		"ALTER TABLE items ADD COLUMN name TEXT;",
	}
	if !reflect.DeepEqual(s.Statements, want) {
		t.Errorf("\ngot statements %q, wanted %q", s.Statements, want)
	}
	if len(s.Warnings) != 1 || !errors.Is(s.Warnings[0], catalog.ErrUnknownType) {
		t.Errorf("\ngot warnings %v", s.Warnings)
	}
}

func TestGenerateRenamedTable(t *testing.T) {
	from := &model.Model{TableName: "items", Fields: []model.Column{col("String", "name")}}
	to := &model.Model{TableName: "products", Fields: []model.Column{col("String", "name"), col("Double", "price")}}
	d, err := Compare(from, to)
	if err != nil {
		t.Fatalf("\ngot unexpected error: %v", err)
	}
	s := Generate(d, catalog.Builtins())
	if s.Mode != Destructive {
		t.Errorf("\ngot mode %s, wanted %s", s.Mode, Destructive)
	}
	want := []string{
		"CREATE TABLE products_backup (Id INTEGER PRIMARY KEY AUTOINCREMENT, name TEXT, price REAL);",
		"INSERT INTO products_backup (Id, name) SELECT Id, name FROM items;",
		"DROP TABLE items;",
		"ALTER TABLE products_backup RENAME TO products;",
	}
	if !reflect.DeepEqual(s.Statements, want) {
		t.Errorf("\ngot %q\nwanted %q", s.Statements, want)
	}
}

func TestScriptWriteTo(t *testing.T) {
	s := &Script{Mode: Additive, Table: "t", Statements: []string{"ALTER TABLE t ADD COLUMN a TEXT;"}}
	var buf bytes.Buffer
	n, err := s.WriteTo(&buf)
	if err != nil {
		t.Fatalf("\ngot unexpected error: %v", err)
	}
	if int(n) != buf.Len() || buf.String() != s.String() {
		t.Errorf("\ngot %d bytes %q", n, buf.String())
	}
}

func TestModeString(t *testing.T) {
	var tests = []struct {
		mode Mode
		want string
	}{
		{NoOp, "no-op"},
		{Additive, "additive"},
		{Destructive, "destructive"},
		{Mode(9), "Mode(9)"},
	}
	for _, tt := range tests {
		if got := tt.mode.String(); got != tt.want {
			t.Errorf("\ngot %q, wanted %q", got, tt.want)
		}
	}
}
