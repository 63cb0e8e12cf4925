package database

import (
	"database/sql"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Store is the manifest database. Queries are written with ? placeholders
// and rebound for PostgreSQL.
type Store struct {
	DB     *sql.DB
	Driver string
}

// Driver returns the database/sql driver name for dsn.
func Driver(dsn string) string {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return "postgres"
	}
	return "sqlite"
}

// NewConnection opens and pings the store named by dsn and creates the schema.
func NewConnection(dsn string) (*Store, error) {
	driver := Driver(dsn)
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}

	if driver == "sqlite" {
		// One connection keeps :memory: databases alive and serializes writers.
		db.SetMaxOpenConns(1)
	}

	s := &Store{DB: db, Driver: driver}
	if err := s.InitSchema(); err != nil {
		db.Close()
		return nil, err
	}

	slog.Debug("manifest store connection established", "driver", driver)
	return s, nil
}

func (s *Store) Close() error {
	return s.DB.Close()
}

func (s *Store) rebind(query string) string {
	if s.Driver != "postgres" {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
