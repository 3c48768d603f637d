package migrations

import (
	"context"
	"embed"
	"fmt"
	"io/fs"

	"github.com/jmoiron/sqlx"
)

// Files holds the SQL schema embedded into the binary.
//
//go:embed *.sql
var Files embed.FS

// Apply executes every embedded SQL file against the database.
// All statements use IF NOT EXISTS, so Apply is idempotent and
// safe to run on every startup.
func Apply(ctx context.Context, db *sqlx.DB) error {
	entries, err := fs.ReadDir(Files, ".")
	if err != nil {
		return fmt.Errorf("read embedded schema: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		rawSQL, err := fs.ReadFile(Files, entry.Name())
		if err != nil {
			return fmt.Errorf("read %s: %w", entry.Name(), err)
		}

		if _, err := db.ExecContext(ctx, string(rawSQL)); err != nil {
			return fmt.Errorf("apply %s: %w", entry.Name(), err)
		}
	}

	return nil
}
