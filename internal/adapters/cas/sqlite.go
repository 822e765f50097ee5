package cas

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strconv"

	"go.trai.ch/pack/internal/core/domain"
	"go.trai.ch/pack/internal/core/ports"
	"go.trai.ch/zerr"
	_ "modernc.org/sqlite" // SQLite driver
)

var _ ports.CacheStore = (*SQLiteStore)(nil)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS entries (
	digest       TEXT PRIMARY KEY,
	module       TEXT NOT NULL,
	content_hash TEXT NOT NULL,
	config_hash  TEXT NOT NULL,
	output       BLOB NOT NULL,
	output_hash  TEXT NOT NULL,
	last_used    INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS entries_last_used ON entries (last_used);
CREATE TABLE IF NOT EXISTS meta (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`

// SQLiteStore implements ports.CacheStore on an SQLite database.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// NewSQLiteStore opens (or creates) the cache database inside dir.
func NewSQLiteStore(dir string) (*SQLiteStore, error) {
	if err := os.MkdirAll(dir, domain.DirPerm); err != nil {
		return nil, zerr.Wrap(err, domain.ErrStoreCreateFailed.Error())
	}

	dbPath := filepath.Join(dir, domain.CacheDBName)

	// WAL keeps readers from blocking the single writer.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, zerr.Wrap(err, domain.ErrStoreCreateFailed.Error())
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, zerr.Wrap(err, domain.ErrStoreCreateFailed.Error())
	}

	return &SQLiteStore{db: db, path: dbPath}, nil
}

// Path returns the database file path.
func (s *SQLiteStore) Path() string {
	return s.path
}

// Load reads every entry and the current generation.
func (s *SQLiteStore) Load(ctx context.Context) (domain.CacheSnapshot, error) {
	var snap domain.CacheSnapshot

	var gen string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = 'generation'`).Scan(&gen)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return snap, zerr.Wrap(err, domain.ErrStoreReadFailed.Error())
	default:
		if snap.Generation, err = strconv.ParseInt(gen, 10, 64); err != nil {
			return snap, zerr.Wrap(err, domain.ErrStoreUnmarshalFailed.Error())
		}
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT module, content_hash, config_hash, output, output_hash, last_used
		FROM entries ORDER BY digest`)
	if err != nil {
		return snap, zerr.Wrap(err, domain.ErrStoreReadFailed.Error())
	}
	defer func() {
		_ = rows.Close()
	}()

	for rows.Next() {
		var (
			e      domain.CacheEntry
			module string
		)
		if err := rows.Scan(&module, &e.Key.ContentHash, &e.Key.ConfigHash, &e.Output, &e.OutputHash, &e.LastUsed); err != nil {
			return snap, zerr.Wrap(err, domain.ErrStoreReadFailed.Error())
		}
		e.Key.Module = domain.NewModuleID(module)
		snap.Entries = append(snap.Entries, e)
	}
	if err := rows.Err(); err != nil {
		return snap, zerr.Wrap(err, domain.ErrStoreReadFailed.Error())
	}

	return snap, nil
}

// Save replaces the stored entries with snap in a single transaction.
func (s *SQLiteStore) Save(ctx context.Context, snap domain.CacheSnapshot) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return zerr.Wrap(err, domain.ErrStoreWriteFailed.Error())
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM entries`); err != nil {
		return zerr.Wrap(err, domain.ErrStoreWriteFailed.Error())
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO entries (digest, module, content_hash, config_hash, output, output_hash, last_used)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return zerr.Wrap(err, domain.ErrStoreWriteFailed.Error())
	}
	defer func() {
		_ = stmt.Close()
	}()

	for _, e := range snap.Entries {
		if _, err = stmt.ExecContext(ctx,
			e.Key.Digest(), e.Key.Module.String(), e.Key.ContentHash, e.Key.ConfigHash,
			e.Output, e.OutputHash, e.LastUsed,
		); err != nil {
			return zerr.With(zerr.Wrap(err, domain.ErrStoreWriteFailed.Error()), "module", e.Key.Module.String())
		}
	}

	if _, err = tx.ExecContext(ctx,
		`INSERT INTO meta (key, value) VALUES ('generation', ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		strconv.FormatInt(snap.Generation, 10),
	); err != nil {
		return zerr.Wrap(err, domain.ErrStoreWriteFailed.Error())
	}

	if err = tx.Commit(); err != nil {
		return zerr.Wrap(err, domain.ErrStoreWriteFailed.Error())
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
