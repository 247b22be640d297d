// Package migrations embeds the SQL schema migrations for the client's
// local database.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
