// Package testutil provides a stub database/sql driver for postgres block
// store tests. It understands the handful of statement shapes the store issues.
package testutil

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"io"
	"strings"
	"sync/atomic"
)

// StubConn records statements and keeps table rows in memory.
type StubConn struct {
	Execs      []string
	Queries    []string
	Tables     map[string][]map[string]any
	FailExec   bool
	FailPing   bool
	FailBegin  bool
	FailCommit bool
	FailQuery  bool
	Commits    int
	Rollbacks  int
}

var stubSeq atomic.Uint64

// NewStubDB registers a sql.DB backed by an in-memory stub connection.
func NewStubDB() (*sql.DB, *StubConn) {
	conn := &StubConn{Tables: make(map[string][]map[string]any)}
	name := fmt.Sprintf("stubpg%d", stubSeq.Add(1))
	sql.Register(name, &stubDriver{conn: conn})
	db, err := sql.Open(name, "stub")
	if err != nil {
		panic(err)
	}
	db.SetMaxOpenConns(1)
	return db, conn
}

type stubDriver struct {
	conn *StubConn
}

func (d *stubDriver) Open(string) (driver.Conn, error) {
	return d.conn, nil
}

// Prepare implements driver.Conn.
func (c *StubConn) Prepare(string) (driver.Stmt, error) { return nil, fmt.Errorf("not implemented") }

// Close implements driver.Conn.
func (c *StubConn) Close() error { return nil }

// Begin implements driver.Conn.
func (c *StubConn) Begin() (driver.Tx, error) {
	return c.BeginTx(context.Background(), driver.TxOptions{})
}

// Ping implements driver.Pinger.
func (c *StubConn) Ping(_ context.Context) error {
	if c.FailPing {
		return fmt.Errorf("ping fail")
	}
	return nil
}

// BeginTx implements driver.ConnBeginTx.
func (c *StubConn) BeginTx(_ context.Context, _ driver.TxOptions) (driver.Tx, error) {
	if c.FailBegin {
		return nil, fmt.Errorf("begin fail")
	}
	return &stubTx{conn: c}, nil
}

// ExecContext implements driver.ExecerContext.
func (c *StubConn) ExecContext(_ context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	c.Execs = append(c.Execs, query)
	if c.FailExec {
		return nil, fmt.Errorf("exec fail")
	}
	if !strings.HasPrefix(strings.ToUpper(strings.TrimSpace(query)), "INSERT INTO") {
		return driver.RowsAffected(0), nil
	}
	table, cols, err := parseInsert(query)
	if err != nil {
		return nil, err
	}
	if len(cols) != len(args) {
		return nil, fmt.Errorf("column/arg mismatch for %s", table)
	}
	row := make(map[string]any, len(cols))
	for i, col := range cols {
		row[col] = args[i].Value
	}
	if strings.Contains(strings.ToUpper(query), "ON CONFLICT") {
		primary := cols[0]
		var filtered []map[string]any
		for _, existing := range c.Tables[table] {
			if existing[primary] == row[primary] {
				continue
			}
			filtered = append(filtered, existing)
		}
		c.Tables[table] = filtered
	}
	c.Tables[table] = append(c.Tables[table], row)
	return driver.RowsAffected(1), nil
}

// QueryContext implements driver.QueryerContext. A trailing `WHERE col = $1`
// filters rows on the first argument.
func (c *StubConn) QueryContext(_ context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	c.Queries = append(c.Queries, query)
	if c.FailQuery {
		return nil, fmt.Errorf("query fail")
	}
	table, cols, where, err := parseSelect(query)
	if err != nil {
		return nil, err
	}
	values := make([][]driver.Value, 0, len(c.Tables[table]))
	for _, row := range c.Tables[table] {
		if where != "" && (len(args) == 0 || row[where] != args[0].Value) {
			continue
		}
		vals := make([]driver.Value, len(cols))
		for i, col := range cols {
			vals[i] = row[col]
		}
		values = append(values, vals)
	}
	return &stubRows{cols: cols, rows: values}, nil
}

type stubTx struct {
	conn *StubConn
}

func (t *stubTx) Commit() error {
	if t.conn.FailCommit {
		return fmt.Errorf("commit fail")
	}
	t.conn.Commits++
	return nil
}

func (t *stubTx) Rollback() error {
	t.conn.Rollbacks++
	return nil
}

type stubRows struct {
	cols []string
	rows [][]driver.Value
	idx  int
}

func (r *stubRows) Columns() []string { return r.cols }
func (r *stubRows) Close() error      { return nil }

func (r *stubRows) Next(dest []driver.Value) error {
	if r.idx >= len(r.rows) {
		return io.EOF
	}
	copy(dest, r.rows[r.idx])
	r.idx++
	return nil
}

func parseInsert(query string) (string, []string, error) {
	up := strings.ToUpper(query)
	intoIdx := strings.Index(up, "INTO ")
	if intoIdx == -1 {
		return "", nil, fmt.Errorf("cannot parse insert: %s", query)
	}
	rest := strings.TrimSpace(query[intoIdx+len("INTO "):])
	open := strings.Index(rest, "(")
	closeIdx := strings.Index(rest, ")")
	if open == -1 || closeIdx == -1 || closeIdx <= open {
		return "", nil, fmt.Errorf("cannot parse insert: %s", query)
	}
	table := strings.ToLower(strings.TrimSpace(rest[:open]))
	return table, splitColumns(rest[open+1 : closeIdx]), nil
}

func parseSelect(query string) (table string, cols []string, where string, err error) {
	lower := strings.ToLower(strings.TrimSpace(query))
	if !strings.HasPrefix(lower, "select ") {
		return "", nil, "", fmt.Errorf("cannot parse select: %s", query)
	}
	fromIdx := strings.Index(lower, " from ")
	if fromIdx == -1 {
		return "", nil, "", fmt.Errorf("cannot parse select: %s", query)
	}
	cols = splitColumns(lower[len("select "):fromIdx])
	fields := strings.Fields(lower[fromIdx+len(" from "):])
	if len(fields) == 0 {
		return "", nil, "", fmt.Errorf("cannot parse select: %s", query)
	}
	table = fields[0]
	if len(fields) >= 4 && fields[1] == "where" && fields[3] == "=" {
		where = fields[2]
	}
	return table, cols, where, nil
}

func splitColumns(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		out = append(out, strings.ToLower(strings.TrimSpace(part)))
	}
	return out
}
