// Package migrations carries the versioned PostgreSQL schema. The files are
// compiled into the migrate binary so deployments need no source checkout.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
