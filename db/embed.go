// Package db provides the embedded database schema and the default catalog
// seed data.
package db

import _ "embed"

// Schema contains the DDL statements for all application tables.
//
//go:embed migrations/001_schema.sql
var Schema string

// CatalogSeed is the default catalog feed, used when no external catalog
// source (database or feed file) is configured.
//
//go:embed seed/catalog.json
var CatalogSeed []byte
