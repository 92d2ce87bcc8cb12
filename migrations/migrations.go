// Package migrations embeds the SQL schema migrations so the binary and the
// integration tests do not depend on the working directory.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
