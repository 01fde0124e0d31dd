package postgres

import (
	"errors"
	"fmt"
	"io/fs"
	"log"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// Migrate applies all pending goose migrations found at the root of fsys.
func (p *Postgres) Migrate(fsys fs.FS) error {
	db := stdlib.OpenDBFromPool(p.Pool)
	defer db.Close()

	goose.SetBaseFS(fsys)
	defer goose.SetBaseFS(nil)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("Postgres - Migrate - goose.SetDialect: %w", err)
	}

	err := goose.Up(db, ".")
	if err != nil {
		if errors.Is(err, goose.ErrNoNextVersion) {
			log.Println("No migrations to apply.")

			return nil
		}

		return fmt.Errorf("Postgres - Migrate - goose.Up: %w", err)
	}

	log.Println("Database migrations applied successfully.")

	return nil
}
