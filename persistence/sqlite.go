// Package persistence is the concrete SQLite-backed collaborator behind
// extension.EventJournal and extension.DurableState. Schema is managed
// with golang-migrate against an embedded migration source, so the
// schema ships inside the binary rather than as a deploy-time asset.
package persistence

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/hashicorp/go-multierror"
	_ "github.com/mattn/go-sqlite3"

	"github.com/lguibr/bollywood/extension"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// Open opens (creating if absent) a SQLite database at path and brings
// its schema up to the latest migration.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("persistence: open %s: %w", path, err)
	}
	if err := migrateUp(db); err != nil {
		var result *multierror.Error
		result = multierror.Append(result, err)
		if closeErr := db.Close(); closeErr != nil {
			result = multierror.Append(result, fmt.Errorf("persistence: close after failed migration: %w", closeErr))
		}
		return nil, result.ErrorOrNil()
	}
	return db, nil
}

func migrateUp(db *sql.DB) error {
	src, err := iofs.New(migrationFS, "migrations")
	if err != nil {
		return fmt.Errorf("persistence: migration source: %w", err)
	}
	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("persistence: migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("persistence: migrate instance: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("persistence: migrate up: %w", err)
	}
	return nil
}

// SQLiteJournal is an extension.EventJournal backed by the
// journal_events table; seq is per-actor-key and monotonically
// increasing starting at 1.
type SQLiteJournal struct {
	db *sql.DB
}

// NewSQLiteJournal builds a journal against an already-migrated db.
func NewSQLiteJournal(db *sql.DB) *SQLiteJournal { return &SQLiteJournal{db: db} }

// JournalID is the extension.ID consumers reach a *SQLiteJournal
// through; its ctor panics if no journal was registered into the
// Store before first use, since there's no sane default database path
// to fall back to from inside extension construction.
var JournalID = extension.NewID[*SQLiteJournal]("persistence.journal", func(*extension.Store) *SQLiteJournal {
	panic("persistence: no SQLiteJournal registered; call RegisterJournal before Get")
})

// RegisterJournal pre-seeds s with j so extension.Get(s, JournalID)
// returns it without invoking JournalID's panicking default ctor.
func RegisterJournal(s *extension.Store, j *SQLiteJournal) {
	extension.Get(s, extension.NewID("persistence.journal", func(*extension.Store) *SQLiteJournal { return j }))
}

func (j *SQLiteJournal) Append(key extension.ActorKey, payload []byte) (uint64, error) {
	tx, err := j.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var next uint64
	row := tx.QueryRow(`SELECT COALESCE(MAX(seq), 0) + 1 FROM journal_events WHERE actor_key = ?`, int32(key))
	if err := row.Scan(&next); err != nil {
		return 0, err
	}
	if _, err := tx.Exec(`INSERT INTO journal_events (actor_key, seq, payload) VALUES (?, ?, ?)`,
		int32(key), next, payload); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return next, nil
}

func (j *SQLiteJournal) Read(key extension.ActorKey) ([][]byte, error) {
	rows, err := j.db.Query(`SELECT payload FROM journal_events WHERE actor_key = ? ORDER BY seq ASC`, int32(key))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out [][]byte
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		out = append(out, payload)
	}
	return out, rows.Err()
}

// SQLiteStateStore is an extension.DurableState backed by the
// durable_state table, one row per actor key holding its latest
// snapshot.
type SQLiteStateStore struct {
	db *sql.DB
}

// NewSQLiteStateStore builds a state store against an already-migrated db.
func NewSQLiteStateStore(db *sql.DB) *SQLiteStateStore { return &SQLiteStateStore{db: db} }

// StateStoreID mirrors JournalID's registration convention.
var StateStoreID = extension.NewID[*SQLiteStateStore]("persistence.state_store", func(*extension.Store) *SQLiteStateStore {
	panic("persistence: no SQLiteStateStore registered; call RegisterStateStore before Get")
})

// RegisterStateStore pre-seeds s with store.
func RegisterStateStore(s *extension.Store, store *SQLiteStateStore) {
	extension.Get(s, extension.NewID("persistence.state_store", func(*extension.Store) *SQLiteStateStore { return store }))
}

func (s *SQLiteStateStore) Save(key extension.ActorKey, data []byte) error {
	_, err := s.db.Exec(`
		INSERT INTO durable_state (actor_key, payload) VALUES (?, ?)
		ON CONFLICT(actor_key) DO UPDATE SET payload = excluded.payload`,
		int32(key), data)
	return err
}

func (s *SQLiteStateStore) Load(key extension.ActorKey) ([]byte, bool, error) {
	var payload []byte
	err := s.db.QueryRow(`SELECT payload FROM durable_state WHERE actor_key = ?`, int32(key)).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return payload, true, nil
}

func (s *SQLiteStateStore) Delete(key extension.ActorKey) error {
	_, err := s.db.Exec(`DELETE FROM durable_state WHERE actor_key = ?`, int32(key))
	return err
}
