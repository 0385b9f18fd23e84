package migrate

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"
)

// memStore backs the in-memory sql driver the runner tests execute
// against. It understands just enough SQL to stand in for the version
// table and records every statement it sees, tagged with whether it
// arrived inside a transaction.
type memStore struct {
	mu          sync.Mutex
	tableExists bool
	rows        []appliedRow
	log         []string
	failOn      string
}

type appliedRow struct {
	version int64
	name    string
	at      time.Time
}

func (s *memStore) statements() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.log...)
}

func openMemDB(store *memStore) *sql.DB {
	return sql.OpenDB(memConnector{store: store})
}

type memConnector struct{ store *memStore }

func (c memConnector) Connect(context.Context) (driver.Conn, error) {
	return &memConn{store: c.store}, nil
}

func (c memConnector) Driver() driver.Driver { return memDriver{} }

type memDriver struct{}

func (memDriver) Open(string) (driver.Conn, error) {
	return nil, fmt.Errorf("open via sql.OpenDB only")
}

type memConn struct {
	store *memStore
	tx    *memTx
}

var (
	_ driver.Conn           = (*memConn)(nil)
	_ driver.ConnBeginTx    = (*memConn)(nil)
	_ driver.ExecerContext  = (*memConn)(nil)
	_ driver.QueryerContext = (*memConn)(nil)
)

func (c *memConn) Prepare(string) (driver.Stmt, error) {
	return nil, fmt.Errorf("prepared statements not supported")
}

func (c *memConn) Close() error { return nil }

func (c *memConn) Begin() (driver.Tx, error) {
	return c.BeginTx(context.Background(), driver.TxOptions{})
}

func (c *memConn) BeginTx(context.Context, driver.TxOptions) (driver.Tx, error) {
	c.tx = &memTx{conn: c}
	return c.tx, nil
}

func (c *memConn) ExecContext(_ context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	s := c.store
	s.mu.Lock()
	defer s.mu.Unlock()

	q := strings.Join(strings.Fields(query), " ")
	mode := "auto"
	if c.tx != nil {
		mode = "tx"
	}
	s.log = append(s.log, mode+": "+q)

	if s.failOn != "" && strings.Contains(q, s.failOn) {
		return nil, fmt.Errorf("forced failure on %q", s.failOn)
	}

	apply := func() {}
	switch {
	case strings.HasPrefix(q, "CREATE TABLE IF NOT EXISTS schema_migrations"):
		apply = func() { s.tableExists = true }
	case strings.HasPrefix(q, "INSERT INTO schema_migrations"):
		row := appliedRow{
			version: args[0].Value.(int64),
			name:    args[1].Value.(string),
			at:      args[2].Value.(time.Time),
		}
		apply = func() { s.rows = append(s.rows, row) }
	case strings.HasPrefix(q, "DELETE FROM schema_migrations"):
		version := args[0].Value.(int64)
		apply = func() {
			kept := s.rows[:0]
			for _, r := range s.rows {
				if r.version != version {
					kept = append(kept, r)
				}
			}
			s.rows = kept
		}
	}

	// Statements inside a transaction only take effect on commit.
	if c.tx != nil {
		c.tx.ops = append(c.tx.ops, apply)
	} else {
		apply()
	}

	return driver.ResultNoRows, nil
}

func (c *memConn) QueryContext(_ context.Context, query string, _ []driver.NamedValue) (driver.Rows, error) {
	s := c.store
	s.mu.Lock()
	defer s.mu.Unlock()

	q := strings.Join(strings.Fields(query), " ")
	switch {
	case strings.Contains(q, "to_regclass"):
		return &memRows{
			cols: []string{"exists"},
			data: [][]driver.Value{{s.tableExists}},
		}, nil
	case strings.Contains(q, "COALESCE(MAX(version)"):
		var max int64
		for _, r := range s.rows {
			if r.version > max {
				max = r.version
			}
		}
		return &memRows{
			cols: []string{"version"},
			data: [][]driver.Value{{max}},
		}, nil
	case strings.Contains(q, "SELECT version, name, applied_at"):
		sorted := append([]appliedRow(nil), s.rows...)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i].version < sorted[j].version })
		data := make([][]driver.Value, 0, len(sorted))
		for _, r := range sorted {
			data = append(data, []driver.Value{r.version, r.name, r.at})
		}
		return &memRows{cols: []string{"version", "name", "applied_at"}, data: data}, nil
	}

	return nil, fmt.Errorf("unexpected query: %s", q)
}

type memRows struct {
	cols []string
	data [][]driver.Value
	i    int
}

func (r *memRows) Columns() []string { return r.cols }
func (r *memRows) Close() error      { return nil }

func (r *memRows) Next(dest []driver.Value) error {
	if r.i >= len(r.data) {
		return io.EOF
	}
	copy(dest, r.data[r.i])
	r.i++
	return nil
}

type memTx struct {
	conn *memConn
	ops  []func()
}

func (t *memTx) Commit() error {
	s := t.conn.store
	s.mu.Lock()
	for _, op := range t.ops {
		op()
	}
	s.mu.Unlock()
	t.conn.tx = nil
	return nil
}

func (t *memTx) Rollback() error {
	t.conn.tx = nil
	return nil
}
