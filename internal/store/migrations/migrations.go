// Package migrations embeds the goose SQL migrations for the local store.
package migrations

import "embed"

// FS contains the SQL migration files, applied in lexical order by goose.
//
//go:embed *.sql
var FS embed.FS
