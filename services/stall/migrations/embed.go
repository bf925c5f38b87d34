// Package migrations embeds the stall service schema migrations.
package migrations

import "embed"

//go:embed *.up.sql
var Files embed.FS
