// Package db reads the schema of a live SQLite database. It never writes.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"aamigrate/internal/introspect"
	"aamigrate/internal/logger"
)

// Driver is the database/sql driver name registered by modernc.org/sqlite.
const Driver = "sqlite"

// Open opens the database file read-only and checks the connection.
func Open(ctx context.Context, path string, timeout time.Duration) (*sql.DB, error) {
	conn, err := sql.Open(Driver, fmt.Sprintf("file:%s?mode=ro", path))
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return conn, nil
}

// Tables lists the user tables, sorted by name.
func Tables(ctx context.Context, conn *sql.DB) ([]string, error) {
	rows, err := conn.QueryContext(ctx, `
		SELECT name
		FROM sqlite_master
		WHERE type = 'table'
		AND name NOT LIKE 'sqlite_%'
		ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query tables: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan table row: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// InspectTable reads the columns and foreign keys of one table.
func InspectTable(ctx context.Context, conn *sql.DB, name string) (introspect.Table, error) {
	t := introspect.Table{Name: name}

	cr, err := conn.QueryContext(ctx, `SELECT name, type, "notnull", pk FROM pragma_table_info(?) ORDER BY cid`, name)
	if err != nil {
		return t, fmt.Errorf("query columns for %s: %w", name, err)
	}
	defer cr.Close()
	for cr.Next() {
		var col introspect.Column
		var notnull, pk int
		if err := cr.Scan(&col.Name, &col.Type, &notnull, &pk); err != nil {
			return t, fmt.Errorf("scan column for %s: %w", name, err)
		}
		col.NotNull = notnull != 0
		col.PK = pk != 0
		t.Columns = append(t.Columns, col)
	}
	if err := cr.Err(); err != nil {
		return t, err
	}
	if len(t.Columns) == 0 {
		return t, fmt.Errorf("table %s not found", name)
	}

	fr, err := conn.QueryContext(ctx, `SELECT "from", "table", "to", on_update, on_delete FROM pragma_foreign_key_list(?) ORDER BY id, seq`, name)
	if err != nil {
		logger.Error("query foreign keys for %s: %v", name, err)
		return t, nil
	}
	defer fr.Close()
	for fr.Next() {
		var from, table, to, onUpdate, onDelete sql.NullString
		if err := fr.Scan(&from, &table, &to, &onUpdate, &onDelete); err != nil {
			logger.Error("scan foreign key for %s: %v", name, err)
			continue
		}
		t.ForeignKeys = append(t.ForeignKeys, introspect.ForeignKey{
			FromColumn: from.String,
			ToTable:    table.String,
			ToColumn:   to.String,
			OnUpdate:   onUpdate.String,
			OnDelete:   onDelete.String,
		})
	}
	return t, nil
}
