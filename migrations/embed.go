// Package migrations embeds SQL migration files. They are applied by golang-migrate
// at server start and by the integration-test containers.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
