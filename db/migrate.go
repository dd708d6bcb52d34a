package db

import (
	"errors"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres" // postgres migration driver
	_ "github.com/golang-migrate/migrate/v4/source/file"       // file:// migration source
	_ "github.com/lib/pq"                                      // database/sql driver used by migrate
)

// RunMigrations applies all pending schema migrations from migrationsPath
// against the database at uri. A database already at the newest version is
// not an error.
func RunMigrations(uri, migrationsPath string) error {
	m, err := migrate.New("file://"+migrationsPath, uri)
	if err != nil {
		return &MigrationError{Err: err}
	}
	defer func() {
		// Close returns separate source and database errors; neither can
		// affect the migration outcome at this point.
		_, _ = m.Close()
	}()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return &MigrationError{Err: err}
	}
	return nil
}
