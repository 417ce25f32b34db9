// Package database manages named SQL connections for Nova scripts.
package database

import (
	"database/sql"
	"sync"
	"time"

	pkgerrors "github.com/pkg/errors"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Manager holds open connections keyed by the id a script chose in
// db_connect. Safe for concurrent use.
type Manager struct {
	mu    sync.RWMutex
	conns map[string]*Conn
}

// Conn is one open connection.
type Conn struct {
	ID       string
	Driver   string
	DB       *sql.DB
	Opened   time.Time
	LastUsed time.Time
}

func NewManager() *Manager {
	return &Manager{conns: make(map[string]*Conn)}
}

// driverFor maps the script-facing database type to a registered
// driver name.
func driverFor(dbType string) (string, error) {
	switch dbType {
	case "sqlite", "sqlite3":
		return "sqlite", nil
	case "postgres", "postgresql":
		return "postgres", nil
	case "mysql":
		return "mysql", nil
	}
	return "", pkgerrors.Errorf("unsupported database type: %s", dbType)
}

// Connect opens a connection and verifies it with a ping.
func (m *Manager) Connect(id, dbType, dsn string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.conns[id]; exists {
		return pkgerrors.Errorf("connection '%s' already exists", id)
	}

	driver, err := driverFor(dbType)
	if err != nil {
		return err
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return pkgerrors.Wrap(err, "open failed")
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return pkgerrors.Wrap(err, "ping failed")
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	now := time.Now()
	m.conns[id] = &Conn{ID: id, Driver: driver, DB: db, Opened: now, LastUsed: now}
	return nil
}

// Execute runs a statement that returns no rows and reports the
// affected row count.
func (m *Manager) Execute(id, query string, args ...interface{}) (int64, error) {
	conn, err := m.get(id)
	if err != nil {
		return 0, err
	}
	result, err := conn.DB.Exec(query, args...)
	if err != nil {
		return 0, pkgerrors.Wrap(err, "execute failed")
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return affected, nil
}

// Query runs a query and returns each row as a column-name map.
// Byte columns come back as strings.
func (m *Manager) Query(id, query string, args ...interface{}) ([]map[string]interface{}, error) {
	conn, err := m.get(id)
	if err != nil {
		return nil, err
	}
	rows, err := conn.DB.Query(query, args...)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "query failed")
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	values := make([]interface{}, len(columns))
	ptrs := make([]interface{}, len(columns))
	for i := range values {
		ptrs[i] = &values[i]
	}

	var results []map[string]interface{}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		row := make(map[string]interface{}, len(columns))
		for i, col := range columns {
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
			} else {
				row[col] = values[i]
			}
		}
		results = append(results, row)
	}
	return results, rows.Err()
}

// QueryOne runs a query expecting at least one row and returns the
// first.
func (m *Manager) QueryOne(id, query string, args ...interface{}) (map[string]interface{}, error) {
	results, err := m.Query(id, query, args...)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, pkgerrors.New("no rows returned")
	}
	return results[0], nil
}

// Close shuts down one connection.
func (m *Manager) Close(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	conn, exists := m.conns[id]
	if !exists {
		return pkgerrors.Errorf("connection '%s' not found", id)
	}
	if err := conn.DB.Close(); err != nil {
		return err
	}
	delete(m.conns, id)
	return nil
}

// CloseAll shuts down every connection.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, conn := range m.conns {
		conn.DB.Close()
	}
	m.conns = make(map[string]*Conn)
}

// List describes the open connections.
func (m *Manager) List() []map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	list := make([]map[string]interface{}, 0, len(m.conns))
	for _, conn := range m.conns {
		list = append(list, map[string]interface{}{
			"id":     conn.ID,
			"driver": conn.Driver,
			"opened": conn.Opened.Format(time.RFC3339),
		})
	}
	return list
}

func (m *Manager) get(id string) (*Conn, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	conn, exists := m.conns[id]
	if !exists {
		return nil, pkgerrors.Errorf("connection '%s' not found", id)
	}
	conn.LastUsed = time.Now()
	return conn, nil
}
