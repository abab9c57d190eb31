// Package migrations embeds the SQL schema applied at start-up.
package migrations

import "embed"

// FS holds every *.sql file in this directory.
//
//go:embed *.sql
var FS embed.FS
