// Package schema contains the embedded migration files for both stores.
package schema

import (
	"crypto/sha256"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
)

// PostgresMigrations contains all SQL migration files from the pgmigrations directory.
//
//go:embed pgmigrations/*.sql
var PostgresMigrations embed.FS

// SQLiteMigrations contains all SQL migration files from the sqlitemigrations directory.
//
//go:embed sqlitemigrations/*.sql
var SQLiteMigrations embed.FS

// ErrChecksumMismatch means an applied migration file was edited afterwards.
var ErrChecksumMismatch = errors.New("migration modified after being applied")

// MigrationFiles returns the .sql file names under dir in apply order.
// Numeric prefixes (001_xxx.sql, 002_xxx.sql) define the order.
func MigrationFiles(fsys fs.FS, dir string) ([]string, error) {
	var files []string

	err := fs.WalkDir(fsys, dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(p, ".sql") {
			files = append(files, path.Base(p))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

// Checksum fingerprints migration content.
func Checksum(content []byte) string {
	return fmt.Sprintf("%x", sha256.Sum256(content))
}
