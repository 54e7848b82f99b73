package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// dialect captures the few places where SQLite and Postgres disagree
type dialect struct {
	name     string
	idColumn string
	types    map[ColumnType]string

	placeholder func(n int) string
	liveColumns func(ctx context.Context, q querier, table string) ([]string, error)
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func dialectFor(driver string) (dialect, error) {
	switch driver {
	case "sqlite3":
		return dialect{
			name:        "sqlite3",
			idColumn:    "id INTEGER PRIMARY KEY AUTOINCREMENT",
			types:       map[ColumnType]string{ColumnText: "TEXT", ColumnReal: "REAL"},
			placeholder: func(int) string { return "?" },
			liveColumns: sqliteColumns,
		}, nil
	case "pgx":
		return dialect{
			name:        "pgx",
			idColumn:    "id BIGSERIAL PRIMARY KEY",
			types:       map[ColumnType]string{ColumnText: "TEXT", ColumnReal: "DOUBLE PRECISION"},
			placeholder: func(n int) string { return fmt.Sprintf("$%d", n) },
			liveColumns: postgresColumns,
		}, nil
	default:
		return dialect{}, fmt.Errorf("unsupported database driver %q", driver)
	}
}

func (d dialect) sqlType(t ColumnType) string {
	if s, ok := d.types[t]; ok {
		return s
	}
	return "TEXT"
}

func (d dialect) placeholders(n int) string {
	ps := make([]string, n)
	for i := range ps {
		ps[i] = d.placeholder(i + 1)
	}
	return strings.Join(ps, ", ")
}

func sqliteColumns(ctx context.Context, q querier, table string) ([]string, error) {
	rows, err := q.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return nil, fmt.Errorf("failed to read table info: %w", err)
	}
	defer rows.Close()

	var cols []string
	for rows.Next() {
		var (
			cid     int
			name    string
			colType string
			notNull int
			dflt    sql.NullString
			pk      int
		)
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dflt, &pk); err != nil {
			return nil, fmt.Errorf("failed to scan table info: %w", err)
		}
		cols = append(cols, name)
	}

	return cols, rows.Err()
}

func postgresColumns(ctx context.Context, q querier, table string) ([]string, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT column_name
		FROM information_schema.columns
		WHERE table_schema = current_schema() AND table_name = $1
		ORDER BY ordinal_position
	`, table)
	if err != nil {
		return nil, fmt.Errorf("failed to read information schema: %w", err)
	}
	defer rows.Close()

	var cols []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan column name: %w", err)
		}
		cols = append(cols, name)
	}

	return cols, rows.Err()
}
