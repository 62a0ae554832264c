// Copyright 2026 go-simple-tasks contributors
// SPDX-License-Identifier: MIT

package db

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	_ "github.com/lib/pq"
)

// TableDef is implemented by every table definition struct in tables.go.
type TableDef interface {
	Name() string
	Schema() string
}

// DB is the root database manager and table registry for the task store.
type DB struct {
	conn   *sql.DB
	mu     sync.Mutex
	tables map[string]TableDef
}

// New opens a PostgreSQL connection from a DATABASE_URL-style connection
// string and verifies it with a ping.
func New(databaseURL string) (*DB, error) {
	conn, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// A poll-driven queue needs few connections: one per worker plus
	// headroom for the drain and status queries.
	conn.SetMaxOpenConns(10)
	conn.SetMaxIdleConns(2)

	return &DB{
		conn:   conn,
		tables: make(map[string]TableDef),
	}, nil
}

// RegisterTable registers a schema object (e.g. TasksTable{}) and creates
// the table if needed.
func (db *DB) RegisterTable(ctx context.Context, def TableDef) error {
	if _, err := db.conn.ExecContext(ctx, def.Schema()); err != nil {
		return fmt.Errorf("failed to create table %s: %w", def.Name(), err)
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	db.tables[def.Name()] = def
	return nil
}

// Setup creates every table the task store needs.
func (db *DB) Setup(ctx context.Context) error {
	return db.RegisterTable(ctx, TasksTable{})
}

// Conn exposes the underlying connection pool for callers with needs
// beyond the task queries (integration tests, embedding applications).
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// Close gracefully closes the connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}
