//go:build cgo

package main

import (
	"database/sql"

	sqlite3cgo "github.com/mattn/go-sqlite3"
)

const mattnULowerDriver = "sqlite3_ulower"

func init() {
	sql.Register(mattnULowerDriver, &sqlite3cgo.SQLiteDriver{
		ConnectHook: func(c *sqlite3cgo.SQLiteConn) error {
			return c.RegisterFunc(ulowerFunc, foldCase, true)
		},
	})
	mattnDriverName = mattnULowerDriver
}
