// Package db carries the SQL schema migrations.
package db

import "embed"

// Migrations holds the golang-migrate up/down files under migrations/.
//
//go:embed migrations/*.sql
var Migrations embed.FS
