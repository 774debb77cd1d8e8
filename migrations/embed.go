// Package migrations embeds the SQLite schema for the embedded sample store.
//
// The files are compiled into the executable so the sqlite backend needs
// nothing on disk besides the database file itself.
package migrations

import "embed"

// FS holds every migration file in this directory.
//
//go:embed *.sql
var FS embed.FS
