package store

import (
	"context"
	"embed"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// Migration System Overview:
//
// SQL drivers keep blobs in a single kv table. A fresh database gets
// migration/{driver}/LATEST.sql; an initialized one is left alone.
// Non-SQL drivers create their buckets when they open.

//go:embed migration
var migrationFS embed.FS

// LatestSchemaFileName is the name of the latest schema file.
const LatestSchemaFileName = "LATEST.sql"

// Migrate applies the latest schema to an uninitialized database.
func (s *Store) Migrate(ctx context.Context) error {
	initialized, err := s.driver.IsInitialized(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to check if database is initialized")
	}
	if initialized {
		s.logger.Debug("database already initialized", "driver", s.profile.Driver)
		return nil
	}

	sqlDriver, ok := s.driver.(SQLDriver)
	if !ok {
		return nil
	}

	schema, err := latestSchema(s.profile.Driver)
	if err != nil {
		return err
	}
	for _, stmt := range splitStatements(schema) {
		if _, err := sqlDriver.GetDB().ExecContext(ctx, stmt); err != nil {
			return errors.Wrapf(err, "failed to apply schema statement: %s", stmt)
		}
	}
	s.logger.Info("database schema applied", "driver", s.profile.Driver)
	return nil
}

func latestSchema(driver string) (string, error) {
	path := filepath.ToSlash(filepath.Join("migration", driver, LatestSchemaFileName))
	data, err := fs.ReadFile(migrationFS, path)
	if err != nil {
		return "", errors.Wrapf(err, "failed to read schema file %s", path)
	}
	return string(data), nil
}

// splitStatements splits a schema file on semicolons, dropping empty statements.
func splitStatements(schema string) []string {
	var stmts []string
	for _, stmt := range strings.Split(schema, ";") {
		if stmt = strings.TrimSpace(stmt); stmt != "" {
			stmts = append(stmts, stmt)
		}
	}
	return stmts
}
