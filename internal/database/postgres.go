package database

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

type PgConfRoomRepository struct {
	conn *sql.DB
}

func NewPgConfRoomRepository(dsn string) (*PgConfRoomRepository, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	return &PgConfRoomRepository{conn: db}, nil
}

func (db *PgConfRoomRepository) Ping() error {
	return db.conn.Ping()
}

func (db *PgConfRoomRepository) Close() error {
	if db.conn != nil {
		return db.conn.Close()
	}
	return nil
}

// Migrate applies any pending schema migrations from sourceURL, e.g.
// "file://migrations". The dsn must be in URL form (postgres://...):
// migrate cannot parse lib/pq key=value strings.
func Migrate(sourceURL, dsn string) error {
	if !strings.Contains(dsn, "://") {
		return fmt.Errorf("open migrations: dsn %q is not a URL, use postgres://...", dsn)
	}

	m, err := migrate.New(sourceURL, dsn)
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}

	return nil
}
