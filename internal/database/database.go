package database

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/letieu/ideaflow/config"
	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

type DB struct {
	conn *sql.DB
}

// NewDB opens the configured database: a local sqlite file or a hosted
// libsql (Turso) instance.
func NewDB(cfg *config.Config) (*DB, error) {
	var conn *sql.DB
	var err error

	switch cfg.Database.Type {
	case "libsql":
		connStr := cfg.Database.URL
		if cfg.Database.Token != "" {
			connStr = fmt.Sprintf("%s?authToken=%s", cfg.Database.URL, cfg.Database.Token)
		}
		conn, err = sql.Open("libsql", connStr)
	case "sqlite":
		conn, err = sql.Open("sqlite", sqliteDSN(cfg.Database.Path))
	default:
		return nil, fmt.Errorf("unknown database type: %s", cfg.Database.Type)
	}
	if err != nil {
		return nil, err
	}

	if err := conn.Ping(); err != nil {
		return nil, err
	}

	return &DB{conn: conn}, nil
}

// NewSqliteDB opens a local sqlite file directly and applies the schema.
// Used by tests.
func NewSqliteDB(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", sqliteDSN(path))
	if err != nil {
		return nil, err
	}
	if err := conn.Ping(); err != nil {
		return nil, err
	}
	db := &DB{conn: conn}
	if err := db.ApplySchema(); err != nil {
		return nil, err
	}
	return db, nil
}

// busy_timeout keeps concurrent writers waiting instead of failing with
// SQLITE_BUSY; the uniqueness constraint does the rest.
func sqliteDSN(path string) string {
	return fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
}

// ApplySchema runs the embedded DDL statement by statement inside one
// transaction.
func (db *DB) ApplySchema() error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stmt := range strings.Split(Schema, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("schema statement failed: %w", err)
		}
	}

	return tx.Commit()
}

func (db *DB) Close() error {
	return db.conn.Close()
}
