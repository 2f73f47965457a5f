// Package mock contains utilities for tests.
package mock

import (
	"context"
	"database/sql"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

const queryTimeout = 5 * time.Second

// Connection is the mock version for database.Connection, exposing the
// underlying sqlmock so tests can program expectations.
type Connection struct {
	db      *sql.DB
	SQLMock sqlmock.Sqlmock
}

func (m Connection) CreateContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, queryTimeout)
}

func (m Connection) DB() *sql.DB {
	return m.db
}

func (m Connection) Close() {
	_ = m.DB().Close()
}

// MustCreateConnectionMock creates a new mocked connection, panicking when
// sqlmock cannot be initialized.
func MustCreateConnectionMock() Connection {
	db, sqlMock, err := sqlmock.New()
	if err != nil {
		panic(err)
	}
	return Connection{
		db:      db,
		SQLMock: sqlMock,
	}
}

// DBResultOption programs one expectation against the mocked connection.
type DBResultOption func(dbConn Connection)

// MockDBResults applies the given expectations in order.
func MockDBResults(dbConn Connection, opts ...DBResultOption) {
	for _, opt := range opts {
		opt(dbConn)
	}
}
