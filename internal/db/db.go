// Package db embeds the SQL migrations applied by pg.MigrateFS.
package db

import "embed"

// MigrationsDir is the directory inside Migrations holding goose files.
const MigrationsDir = "migrations"

//go:embed migrations/*.sql
var Migrations embed.FS
