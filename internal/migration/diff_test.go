package migration

import (
	"errors"
	"reflect"
	"testing"

	"aamigrate/internal/model"
)

func col(typ, name string) model.Column {
	return model.NewColumn(typ, name)
}

func ref(typ, name, table, onDelete string) model.Column {
	c := model.NewColumn(typ, name)
	c.FKTable = table
	c.OnDelete = onDelete
	return c
}

func TestCompare(t *testing.T) {
	var tests = []struct {
		name    string
		from    []model.Column
		to      []model.Column
		added   []model.Column
		removed []model.Column
		common  []model.Column
		mode    Mode
	}{
		{"unchanged",
			[]model.Column{col("String", "name"), ref("Category", "cat", "category", "CASCADE")},
			[]model.Column{col("String", "name"), ref("Category", "cat", "category", "CASCADE")},
			nil, []model.Column{},
			[]model.Column{col("String", "name"), ref("Category", "cat", "category", "CASCADE")},
			NoOp},
		{"added",
			[]model.Column{col("String", "name")},
			[]model.Column{col("Double", "price"), col("String", "name"), col("int", "count")},
			[]model.Column{col("Double", "price"), col("int", "count")},
			[]model.Column{},
			[]model.Column{col("String", "name")},
			Additive},
		{"removed and added",
			[]model.Column{col("String", "name")},
			[]model.Column{col("int", "color"), col("String", "description")},
			[]model.Column{col("int", "color"), col("String", "description")},
			[]model.Column{col("String", "name")},
			nil,
			Destructive},
		{"removed only",
			[]model.Column{col("String", "name"), col("int", "age")},
			[]model.Column{col("int", "age")},
			nil,
			[]model.Column{col("String", "name")},
			[]model.Column{col("int", "age")},
			Destructive},
		{"empty", nil, nil, nil, []model.Column{}, nil, NoOp},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			from := &model.Model{TableName: "t", Fields: tt.from}
			to := &model.Model{TableName: "t", Fields: tt.to}
			d, err := Compare(from, to)
			if err != nil {
				t.Fatalf("\ngot unexpected error: %v", err)
			}
			if !reflect.DeepEqual(d.Added, tt.added) {
				t.Errorf("\ngot added %v, wanted %v", d.Added, tt.added)
			}
			if len(d.Removed) != len(tt.removed) || len(d.Removed) > 0 && !reflect.DeepEqual(d.Removed, tt.removed) {
				t.Errorf("\ngot removed %v, wanted %v", d.Removed, tt.removed)
			}
			if !reflect.DeepEqual(d.Common, tt.common) {
				t.Errorf("\ngot common %v, wanted %v", d.Common, tt.common)
			}
			if d.Mode() != tt.mode {
				t.Errorf("\ngot mode %v, wanted %v", d.Mode(), tt.mode)
			}
			if len(d.Added)+len(d.Common) != len(to.Fields) || len(d.Removed)+len(d.Common) != len(from.Fields) {
				t.Errorf("\ncolumns are not partitioned: %+v", d)
			}
		})
	}
}

func TestCompareDoesNotModifyFrom(t *testing.T) {
	from := &model.Model{TableName: "t", Fields: []model.Column{col("String", "a"), col("String", "b")}}
	to := &model.Model{TableName: "t", Fields: []model.Column{col("String", "a")}}
	if _, err := Compare(from, to); err != nil {
		t.Fatal(err)
	}
	if want := []string{"a", "b"}; !reflect.DeepEqual(from.Names(), want) {
		t.Errorf("\ngot from columns %v, wanted %v", from.Names(), want)
	}
}

func TestCompareUnsupported(t *testing.T) {
	var tests = []struct {
		name string
		from model.Column
		to   model.Column
		was  string
		now  string
	}{
		{"type", col("int", "color"), col("String", "color"), "int", "String"},
		{"case sensitive type", col("Double", "price"), col("double", "price"), "Double", "double"},
		{"cascade action",
			ref("Category", "cat", "category", "NO ACTION"),
			ref("Category", "cat", "category", "CASCADE"),
			"Category REFERENCES category(Id) ON DELETE NO ACTION ON UPDATE NO ACTION",
			"Category REFERENCES category(Id) ON DELETE CASCADE ON UPDATE NO ACTION"},
		{"target table",
			ref("Category", "cat", "category", "NO ACTION"),
			ref("Category", "cat", "categories", "NO ACTION"),
			"Category REFERENCES category(Id) ON DELETE NO ACTION ON UPDATE NO ACTION",
			"Category REFERENCES categories(Id) ON DELETE NO ACTION ON UPDATE NO ACTION"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			from := &model.Model{TableName: "t", Fields: []model.Column{col("String", "name"), tt.from}}
			to := &model.Model{TableName: "t", Fields: []model.Column{col("int", "added"), tt.to}}
			d, err := Compare(from, to)
			if d != nil {
				t.Errorf("\ngot a diff alongside the error: %+v", d)
			}
			var uc *UnsupportedChangeError
			if !errors.As(err, &uc) {
				t.Fatalf("\nexpected an UnsupportedChangeError, got %v", err)
			}
			if uc.Column != tt.to.Name || uc.Was != tt.was || uc.Now != tt.now {
				t.Errorf("\ngot %+v", uc)
			}
			if !errors.Is(err, ErrUnsupportedChange) {
				t.Errorf("\nerror does not unwrap to ErrUnsupportedChange")
			}
		})
	}
}

func TestCompareNameIsCaseSensitive(t *testing.T) {
	from := &model.Model{TableName: "t", Fields: []model.Column{col("String", "Name")}}
	to := &model.Model{TableName: "t", Fields: []model.Column{col("int", "name")}}
	d, err := Compare(from, to)
	if err != nil {
		t.Fatalf("\ngot unexpected error: %v", err)
	}
	if len(d.Added) != 1 || len(d.Removed) != 1 {
		t.Errorf("\ngot added %v, removed %v", d.Added, d.Removed)
	}
}
