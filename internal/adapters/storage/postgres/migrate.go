package postgres

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"

	migrate "github.com/rubenv/sql-migrate"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const (
	dialect         = "postgres"
	migrationsTable = "schema_migrations"
)

var migrations = migrate.MigrationSet{TableName: migrationsTable}

func source() migrate.MigrationSource {
	return migrate.EmbedFileSystemMigrationSource{FileSystem: migrationsFS, Root: "migrations"}
}

// MigrateUp aplica las migraciones pendientes y devuelve cuántas corrió.
func MigrateUp(ctx context.Context, db *sql.DB) (int, error) {
	n, err := migrations.ExecContext(ctx, db, dialect, source(), migrate.Up)
	if err != nil {
		return n, fmt.Errorf("migrate up: %w", err)
	}
	return n, nil
}

// MigrationStatus es una fila de `migrate status`.
type MigrationStatus struct {
	ID        string
	Applied   bool
	AppliedAt *time.Time
}

func Status(db *sql.DB) ([]MigrationStatus, error) {
	found, err := source().FindMigrations()
	if err != nil {
		return nil, fmt.Errorf("find migrations: %w", err)
	}
	records, err := migrations.GetMigrationRecords(db, dialect)
	if err != nil {
		return nil, fmt.Errorf("migration records: %w", err)
	}

	applied := make(map[string]time.Time, len(records))
	for _, r := range records {
		applied[r.Id] = r.AppliedAt
	}

	out := make([]MigrationStatus, 0, len(found))
	for _, m := range found {
		st := MigrationStatus{ID: m.Id}
		if at, ok := applied[m.Id]; ok {
			st.Applied = true
			st.AppliedAt = &at
		}
		out = append(out, st)
	}
	return out, nil
}
