// Package migrations embeds the PostgreSQL schema migrations for the item
// store.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
