// Package migrations embeds the goose SQL migrations of the postgres
// metadata backend.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
