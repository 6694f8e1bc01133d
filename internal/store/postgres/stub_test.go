package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"strings"
	"sync"
)

// stubConn is a database/sql connection that understands the statements the
// store issues, backed by a map.
type stubConn struct {
	mu        sync.Mutex
	slots     map[string]string
	execs     []string
	failExec  bool
	failQuery bool
}

func newStubDB() (*sql.DB, *stubConn) {
	conn := &stubConn{slots: make(map[string]string)}
	return sql.OpenDB(stubConnector{conn: conn}), conn
}

type stubConnector struct{ conn *stubConn }

func (c stubConnector) Connect(context.Context) (driver.Conn, error) { return c.conn, nil }
func (c stubConnector) Driver() driver.Driver                        { return stubDriver{c.conn} }

type stubDriver struct{ conn *stubConn }

func (d stubDriver) Open(string) (driver.Conn, error) { return d.conn, nil }

func (c *stubConn) Prepare(string) (driver.Stmt, error) {
	return nil, errors.New("stub: prepare not supported")
}
func (c *stubConn) Close() error              { return nil }
func (c *stubConn) Begin() (driver.Tx, error) { return nil, errors.New("stub: tx not supported") }

func (c *stubConn) ExecContext(_ context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.execs = append(c.execs, query)
	if c.failExec {
		return nil, errors.New("stub: exec failed")
	}
	if strings.HasPrefix(strings.TrimSpace(query), "INSERT INTO slots") {
		c.slots[args[0].Value.(string)] = args[1].Value.(string)
	}
	return driver.RowsAffected(1), nil
}

func (c *stubConn) QueryContext(_ context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failQuery {
		return nil, errors.New("stub: query failed")
	}
	rows := &stubRows{}
	if payload, ok := c.slots[args[0].Value.(string)]; ok {
		rows.values = [][]driver.Value{{[]byte(payload)}}
	}
	return rows, nil
}

type stubRows struct {
	values [][]driver.Value
	pos    int
}

func (r *stubRows) Columns() []string { return []string{"payload"} }
func (r *stubRows) Close() error      { return nil }

func (r *stubRows) Next(dest []driver.Value) error {
	if r.pos >= len(r.values) {
		return io.EOF
	}
	copy(dest, r.values[r.pos])
	r.pos++
	return nil
}
