// Package migrations embeds the schema so binaries do not depend on the
// working directory.
package migrations

import "embed"

// FS holds the versioned up/down SQL files.
//
//go:embed *.sql
var FS embed.FS
