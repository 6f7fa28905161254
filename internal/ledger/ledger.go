// Package ledger records which chapters a fetch run has saved, so a later
// run can skip chapters whose files are still intact.
package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/chech0x/parsedBible/core/sqlite"
	"github.com/chech0x/parsedBible/internal/logging"
)

// FileName is the default ledger file name inside a version directory.
const FileName = "ledger.db"

const schema = `
CREATE TABLE IF NOT EXISTS chapters (
	version    TEXT    NOT NULL,
	book       TEXT    NOT NULL,
	chapter    INTEGER NOT NULL,
	verses     INTEGER NOT NULL,
	digest     TEXT    NOT NULL,
	run_id     TEXT    NOT NULL,
	fetched_at TEXT    NOT NULL,
	PRIMARY KEY (version, book, chapter)
)`

// Entry is one saved chapter.
type Entry struct {
	Version   string
	Book      string
	Chapter   int
	Verses    int
	Digest    string // BLAKE3 of the chapter file
	RunID     string
	FetchedAt time.Time
}

// Ledger is a SQLite-backed record of saved chapters.
// It is safe for concurrent use.
type Ledger struct {
	db   *sql.DB
	path string
}

// Open opens or creates the ledger at path.
func Open(path string) (*Ledger, error) {
	db, err := sqlite.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open ledger %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create ledger schema: %w", err)
	}
	info := sqlite.GetInfo()
	logging.Debug("ledger opened", "path", path, "driver", info.DriverName, "driver_type", info.DriverType)
	return &Ledger{db: db, path: path}, nil
}

// OpenReadOnly opens an existing ledger without creating or changing it.
func OpenReadOnly(path string) (*Ledger, error) {
	db, err := sqlite.OpenReadOnly(path)
	if err != nil {
		return nil, fmt.Errorf("open ledger %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("open ledger %s: %w", path, err)
	}
	return &Ledger{db: db, path: path}, nil
}

// Path returns the ledger file path.
func (l *Ledger) Path() string { return l.path }

// Close closes the underlying database.
func (l *Ledger) Close() error {
	return l.db.Close()
}

// Record inserts or replaces the entry for (Version, Book, Chapter).
func (l *Ledger) Record(ctx context.Context, e Entry) error {
	if e.FetchedAt.IsZero() {
		e.FetchedAt = time.Now()
	}
	_, err := l.db.ExecContext(ctx, `
		INSERT INTO chapters (version, book, chapter, verses, digest, run_id, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (version, book, chapter) DO UPDATE SET
			verses = excluded.verses,
			digest = excluded.digest,
			run_id = excluded.run_id,
			fetched_at = excluded.fetched_at`,
		e.Version, e.Book, e.Chapter, e.Verses, e.Digest, e.RunID,
		e.FetchedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("record %s %s %d: %w", e.Version, e.Book, e.Chapter, err)
	}
	return nil
}

// Lookup returns the entry for a chapter. ok is false when none exists.
func (l *Ledger) Lookup(ctx context.Context, version, book string, chapter int) (e Entry, ok bool, err error) {
	var fetchedAt string
	row := l.db.QueryRowContext(ctx, `
		SELECT version, book, chapter, verses, digest, run_id, fetched_at
		FROM chapters WHERE version = ? AND book = ? AND chapter = ?`,
		version, book, chapter)
	err = row.Scan(&e.Version, &e.Book, &e.Chapter, &e.Verses, &e.Digest, &e.RunID, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("lookup %s %s %d: %w", version, book, chapter, err)
	}
	e.FetchedAt, err = time.Parse(time.RFC3339Nano, fetchedAt)
	if err != nil {
		return Entry{}, false, fmt.Errorf("lookup %s %s %d: bad timestamp %q: %w", version, book, chapter, fetchedAt, err)
	}
	return e, true, nil
}

// Count returns the number of chapters recorded for a version.
func (l *Ledger) Count(ctx context.Context, version string) (int, error) {
	var n int
	err := l.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM chapters WHERE version = ?`, version).Scan(&n)
	return n, err
}

// Remove deletes the entry for a chapter, if any.
func (l *Ledger) Remove(ctx context.Context, version, book string, chapter int) error {
	_, err := l.db.ExecContext(ctx,
		`DELETE FROM chapters WHERE version = ? AND book = ? AND chapter = ?`,
		version, book, chapter)
	return err
}
