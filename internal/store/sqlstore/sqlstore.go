// Package sqlstore keeps the client's durable items in a single key-value table,
// either in a local SQLite file or in Postgres.
package sqlstore

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/0xrinegade/4ochan/shared/logger"
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"

	table = "kv"
)

type Storage struct {
	db     *sql.DB
	driver string

	getQuery    string
	setQuery    string
	removeQuery string
}

func New(driver, dsn string) (*Storage, error) {
	logger.Log.Info("connecting to store", "component", "sqlstore", "driver", driver)

	db, err := Connect(driver, dsn)
	if err != nil {
		return nil, err
	}

	s := &Storage{db: db, driver: driver}
	s.prepareQueries()
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	logger.Log.Info("store ready", "component", "sqlstore", "driver", driver)
	return s, nil
}

func Connect(driver, dsn string) (*sql.DB, error) {
	if driver != DriverSQLite && driver != DriverPostgres {
		return nil, fmt.Errorf("unsupported store driver %q", driver)
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	if driver == DriverSQLite {
		// a single writer avoids "database is locked" under concurrent requests
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func (s *Storage) prepareQueries() {
	name := table
	placeholder := func(n int) string { return "?" }
	if s.driver == DriverPostgres {
		name = pq.QuoteIdentifier(table)
		placeholder = func(n int) string { return fmt.Sprintf("$%d", n) }
	}
	s.getQuery = fmt.Sprintf("SELECT value FROM %s WHERE key = %s", name, placeholder(1))
	s.setQuery = fmt.Sprintf(
		"INSERT INTO %s (key, value) VALUES (%s, %s) ON CONFLICT (key) DO UPDATE SET value = excluded.value",
		name, placeholder(1), placeholder(2))
	s.removeQuery = fmt.Sprintf("DELETE FROM %s WHERE key = %s", name, placeholder(1))
}

func (s *Storage) migrate() error {
	name := table
	if s.driver == DriverPostgres {
		name = pq.QuoteIdentifier(table)
	}
	_, err := s.db.Exec(fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (key TEXT PRIMARY KEY, value TEXT NOT NULL)", name))
	if err != nil {
		return fmt.Errorf("failed to create %s table: %w", table, err)
	}
	return nil
}

func (s *Storage) GetItem(key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow(s.getQuery, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %q: %w", key, err)
	}
	return value, true, nil
}

func (s *Storage) SetItem(key, value string) error {
	if _, err := s.db.Exec(s.setQuery, key, value); err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}
	return nil
}

func (s *Storage) RemoveItem(key string) error {
	if _, err := s.db.Exec(s.removeQuery, key); err != nil {
		return fmt.Errorf("remove %q: %w", key, err)
	}
	return nil
}

func (s *Storage) Cleanup() error {
	return s.db.Close()
}
