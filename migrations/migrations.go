// Package migrations embeds the SQL schema so the migrate CLI and the e2e
// suite do not depend on the working directory.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
