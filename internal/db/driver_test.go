package db

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"sync/atomic"
)

// brokenSchemaDriver accepts connections but fails every statement.
type brokenSchemaDriver struct {
	closed atomic.Int32
}

var brokenSchema = &brokenSchemaDriver{}

func init() {
	sql.Register("broken-schema", brokenSchema)
}

func (d *brokenSchemaDriver) Open(string) (driver.Conn, error) {
	return &brokenSchemaConn{d: d}, nil
}

type brokenSchemaConn struct {
	d *brokenSchemaDriver
}

var errPermissionDenied = errors.New("permission denied for schema public")

func (c *brokenSchemaConn) Prepare(string) (driver.Stmt, error) { return nil, errPermissionDenied }
func (c *brokenSchemaConn) Begin() (driver.Tx, error)           { return nil, errPermissionDenied }

func (c *brokenSchemaConn) Close() error {
	c.d.closed.Add(1)
	return nil
}
