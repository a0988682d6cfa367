// Package migrations embeds the SQL schema for the local user store.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
