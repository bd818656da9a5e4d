// Package migrations applies the embedded schema files. Migrations are
// idempotent CREATE IF NOT EXISTS statements applied in lexical order.
package migrations

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// PgExecutor is the slice of pgxpool.Pool the Postgres runner needs.
type PgExecutor interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// ChExecutor is the slice of clickhouse driver.Conn the ClickHouse runner needs.
type ChExecutor interface {
	Exec(ctx context.Context, query string, args ...any) error
}

// RunPostgres applies all embedded PostgreSQL migrations.
func RunPostgres(ctx context.Context, exec PgExecutor) error {
	return apply(PostgresFS, "postgres", func(sql string) error {
		_, err := exec.Exec(ctx, sql)
		return err
	})
}

// RunClickhouse applies all embedded ClickHouse migrations. ClickHouse
// rejects multi-statement scripts, so each file holds one statement.
func RunClickhouse(ctx context.Context, exec ChExecutor) error {
	return apply(ClickhouseFS, "clickhouse", func(sql string) error {
		return exec.Exec(ctx, sql)
	})
}

func apply(fsys embed.FS, dir string, exec func(sql string) error) error {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return fmt.Errorf("read embedded %s migrations: %w", dir, err)
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)

	for _, file := range files {
		data, err := fs.ReadFile(fsys, dir+"/"+file)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", file, err)
		}
		if strings.TrimSpace(string(data)) == "" {
			continue
		}
		if err := exec(string(data)); err != nil {
			return fmt.Errorf("apply migration %s: %w", file, err)
		}
	}

	return nil
}
