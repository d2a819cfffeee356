package schemamigrationsrepo

import "time"

// Migration is a row of schema_migrations.
type Migration struct {
	Version   string    `db:"version"`
	Checksum  string    `db:"checksum"`
	AppliedAt time.Time `db:"applied_at"`
}

// Status describes one embedded migration file against the database.
type Status struct {
	Version   string
	Applied   bool
	Modified  bool
	AppliedAt *time.Time
}
