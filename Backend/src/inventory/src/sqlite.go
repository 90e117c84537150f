package main

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3" // cgo, registra "sqlite3"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"modernc.org/sqlite" // driver 100% Go, registra "sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const (
	driverModernc = "sqlite"
	driverMattn   = "sqlite3"
)

func sqliteDSN(drv, path string) (string, error) {
	switch drv {
	case driverModernc:
		return path + "?_pragma=busy_timeout(5000)", nil
	case driverMattn:
		return path + "?_busy_timeout=5000", nil
	}
	return "", fmt.Errorf("unsupported sqlite driver %q", drv)
}

// mattnDriverName is the database/sql name used for the cgo driver. Cgo
// builds replace it with a registration that also installs ulower.
var mattnDriverName = driverMattn

// ulowerFunc is the SQL function both drivers expose as ulower(text). SQLite's
// own lower() only folds A-Z.
const ulowerFunc = "ulower"

func foldCase(s string) string { return cases.Lower(language.Und).String(s) }

func init() {
	sqlite.MustRegisterDeterministicScalarFunction(ulowerFunc, 1,
		func(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
			switch v := args[0].(type) {
			case nil:
				return nil, nil
			case string:
				return foldCase(v), nil
			case []byte:
				return foldCase(string(v)), nil
			}
			return args[0], nil
		})
}

func openSQLite(drv, path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	dsn, err := sqliteDSN(drv, path)
	if err != nil {
		return nil, err
	}
	name := drv
	if drv == driverMattn {
		name = mattnDriverName
	}
	db, err := sql.Open(name, dsn)
	if err != nil {
		return nil, err
	}
	// una sola conexión: la shell es secuencial
	db.SetMaxOpenConns(1)
	db.SetConnMaxIdleTime(2 * time.Minute)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return db, nil
}

// isUniqueViolation reports whether err comes from the UNIQUE(title, author)
// constraint. The cgo driver is matched on its message.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var se *sqlite.Error
	if errors.As(err, &se) && se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
