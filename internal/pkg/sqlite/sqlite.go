// Package sqlite registers the pure-Go sqlite driver under the name
// "sqlite3" so database/sql call sites stay driver-agnostic.
package sqlite

import (
	"database/sql"

	"modernc.org/sqlite"
)

func init() {
	sql.Register("sqlite3", &sqlite.Driver{})
}
