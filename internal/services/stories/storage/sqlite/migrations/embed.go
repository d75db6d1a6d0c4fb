package migrations

import "embed"

// FS contains embedded SQLite migrations for stories storage.
//
//go:embed *.sql
var FS embed.FS
