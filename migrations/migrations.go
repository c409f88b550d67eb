// Package migrations embeds the warehouse schema used for local development
// and tests. Production warehouses are provisioned by the ETL pipeline.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
