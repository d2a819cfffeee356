// Package schemamigrationsrepo reports which embedded migrations a database
// has applied.
package schemamigrationsrepo

import (
	"context"
	"fmt"
	"io/fs"
	"path"

	"github.com/jrazmi/yata/schema"
	"github.com/jrazmi/yata/sdk/logger"
)

type Storer interface {
	ListApplied(ctx context.Context) ([]Migration, error)
}

type Repository struct {
	log    *logger.Logger
	storer Storer
}

func NewRepository(log *logger.Logger, storer Storer) *Repository {
	return &Repository{
		log:    log,
		storer: storer,
	}
}

func (r *Repository) ListApplied(ctx context.Context) ([]Migration, error) {
	applied, err := r.storer.ListApplied(ctx)
	if err != nil {
		return nil, fmt.Errorf("schema migrations list: %w", err)
	}
	return applied, nil
}

// Status lines up the migration files under dir with the applied rows. A file
// whose checksum no longer matches its row is reported as Modified.
func (r *Repository) Status(ctx context.Context, fsys fs.FS, dir string) ([]Status, error) {
	files, err := schema.MigrationFiles(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("schema migrations files: %w", err)
	}

	applied, err := r.ListApplied(ctx)
	if err != nil {
		return nil, err
	}
	byVersion := make(map[string]Migration, len(applied))
	for _, m := range applied {
		byVersion[m.Version] = m
	}

	out := make([]Status, 0, len(files))
	for _, file := range files {
		st := Status{Version: file}
		if m, ok := byVersion[file]; ok {
			content, err := fs.ReadFile(fsys, path.Join(dir, file))
			if err != nil {
				return nil, fmt.Errorf("schema migrations read %s: %w", file, err)
			}
			at := m.AppliedAt
			st.Applied = true
			st.AppliedAt = &at
			st.Modified = schema.Checksum(content) != m.Checksum
		}
		out = append(out, st)
	}
	return out, nil
}
