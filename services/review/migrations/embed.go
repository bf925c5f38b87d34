package migrations

import "embed"

// Files holds the SQL migrations applied at service startup.
//
//go:embed *.up.sql
var Files embed.FS
