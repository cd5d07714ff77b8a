package migrations

import "embed"

// Files contains the SQL migrations bundled into WanderWise binaries.
//
//go:embed *.sql
var Files embed.FS
