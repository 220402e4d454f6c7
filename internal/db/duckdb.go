// Package db opens the DuckDB database that backs the raster store.
package db

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/marcboeker/go-duckdb"
)

var (
	instance *sql.DB
	once     sync.Once
	initErr  error
)

// Config holds database configuration. An empty DataDir opens an in-memory
// database.
type Config struct {
	DataDir    string
	DBName     string
	Extensions []string
}

// Path returns the database file path, or "" for in-memory.
func (c Config) Path() string {
	if c.DataDir == "" {
		return ""
	}
	name := c.DBName
	if name == "" {
		name = "dtw"
	}
	return filepath.Join(c.DataDir, "duckdb", name+".duckdb")
}

// Open opens a new DuckDB connection pool.
func Open(cfg Config) (*sql.DB, error) {
	path := cfg.Path()
	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create duckdb directory: %w", err)
		}
	}

	conn, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb %q: %w", path, err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping duckdb %q: %w", path, err)
	}

	for _, ext := range cfg.Extensions {
		if _, err := conn.Exec(fmt.Sprintf("INSTALL %s; LOAD %s;", ext, ext)); err != nil {
			// Extensions are optional; the raster store only needs core SQL.
			slog.Warn("duckdb extension unavailable", "extension", ext, "error", err)
		}
	}
	return conn, nil
}

// Get returns the process-wide DuckDB connection, opening it on first use.
func Get(cfg Config) (*sql.DB, error) {
	once.Do(func() {
		instance, initErr = Open(cfg)
	})
	return instance, initErr
}

// Close closes the process-wide connection.
func Close() error {
	if instance != nil {
		return instance.Close()
	}
	return nil
}
