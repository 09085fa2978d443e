// Package migrations embeds the SQL schema migrations for the sqlite driver.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
