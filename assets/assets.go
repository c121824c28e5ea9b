// Package assets embeds the static files shipped with the binary.
package assets

import "embed"

// MigrationsDir is the goose migrations directory within FS.
const MigrationsDir = "migrations"

//go:embed all:templates migrations
var FS embed.FS
