package auth

import (
	"embed"
)

//go:embed data/sql/migrations
var migrationsFS embed.FS

// GetMigrationsFS returns the schema migrations for the users table so hosts
// can run them with their own migration tooling.
func GetMigrationsFS() embed.FS {
	return migrationsFS
}
