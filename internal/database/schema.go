package database

import _ "embed"

// Schema is the DDL for all tables. cmd/db applies it to the configured
// database; tests apply it to a throwaway sqlite file.
//
//go:embed schema.sql
var Schema string
