package utils

import (
	"database/sql"
	"fmt"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"github.com/uptrace/bun/extra/bundebug"
)

// OpenDatabase opens the sqlite database at dsn. Query logging is enabled
// with BUNDEBUG=1 (failed queries) or BUNDEBUG=2 (all queries).
func OpenDatabase(dsn string) (*bun.DB, error) {
	rawDB, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		return nil, fmt.Errorf("OpenDatabase: %w", err)
	}
	// sqlite serializes writers anyway; one connection avoids SQLITE_BUSY
	rawDB.SetMaxOpenConns(1)

	db := bun.NewDB(rawDB, sqlitedialect.New())
	db.AddQueryHook(bundebug.NewQueryHook(
		bundebug.WithVerbose(true),
		bundebug.FromEnv("BUNDEBUG"),
	))
	return db, nil
}
