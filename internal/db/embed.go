// Package db embebe las migraciones SQL del almacén.
package db

import "embed"

const MigrationsDir = "migrations"

//go:embed migrations/*.sql
var Migrations embed.FS
