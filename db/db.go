// Package db embeds the PostgreSQL migrations so cmd/migrate and the store
// tests apply the same files.
package db

import "embed"

// Migrations holds the YYYY-MM-DD-NNN-description.sql files, applied in name order.
//
//go:embed *.sql
var Migrations embed.FS
