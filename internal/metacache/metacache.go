// Package metacache implements a derived, rebuildable cache of parsed
// frontmatter, keyed by path+mtime+size. It is never the system of
// record (§6/§9's persisted-state invariant is about the vault's
// frontmatter itself, not this cache): losing the cache file costs
// nothing more than re-parsing every managed file on the next run, so it
// lives outside the "no sidecar database" rule that governs task/project
// state.
package metacache

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	_ "modernc.org/sqlite" // Pure Go SQLite driver, registers as "sqlite".
)

// walJournalSizeLimit bounds the WAL file before SQLite checkpoints it.
const walJournalSizeLimit = 67108864 // 64 MiB

// Cache is a SQLite-backed vaultmodel.MetadataCache.
type Cache struct {
	db     *sql.DB
	logger *slog.Logger

	getStmt *sql.Stmt
	putStmt *sql.Stmt
	delStmt *sql.Stmt
}

// Open opens (or creates) the cache database at dbPath, applies pending
// migrations, and prepares statements. Use ":memory:" for tests and for
// a --no-cache run that still wants the interface satisfied.
func Open(ctx context.Context, dbPath string, logger *slog.Logger) (*Cache, error) {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("metacache: opening cache database", "path", dbPath)

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("metacache: open: %w", err)
	}

	if err := setPragmas(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	if err := runMigrations(ctx, db, logger); err != nil {
		db.Close()
		return nil, err
	}

	c := &Cache{db: db, logger: logger}

	if err := c.prepare(); err != nil {
		db.Close()
		return nil, err
	}

	return c, nil
}

func setPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		fmt.Sprintf("PRAGMA journal_size_limit = %d", walJournalSizeLimit),
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
	}

	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return fmt.Errorf("metacache: set pragma %q: %w", p, err)
		}
	}

	return nil
}

func (c *Cache) prepare() error {
	var err error

	if c.getStmt, err = c.db.Prepare(
		`SELECT fields_json FROM frontmatter_cache WHERE path = ? AND mtime_nano = ? AND size_bytes = ?`,
	); err != nil {
		return fmt.Errorf("metacache: prepare get: %w", err)
	}

	if c.putStmt, err = c.db.Prepare(
		`INSERT INTO frontmatter_cache (path, mtime_nano, size_bytes, fields_json)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(path) DO UPDATE SET mtime_nano = excluded.mtime_nano,
		   size_bytes = excluded.size_bytes, fields_json = excluded.fields_json`,
	); err != nil {
		return fmt.Errorf("metacache: prepare put: %w", err)
	}

	if c.delStmt, err = c.db.Prepare(
		`DELETE FROM frontmatter_cache WHERE path = ?`,
	); err != nil {
		return fmt.Errorf("metacache: prepare delete: %w", err)
	}

	return nil
}

// Get returns the cached frontmatter fields for path if a row exists
// whose mtime and size match exactly, implementing vaultmodel.MetadataCache.
func (c *Cache) Get(path string, mtime int64, size int64) (map[string]any, bool) {
	row := c.getStmt.QueryRow(path, mtime, size)

	var raw string
	if err := row.Scan(&raw); err != nil {
		return nil, false
	}

	var fields map[string]any
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		c.logger.Warn("metacache: corrupt cache entry, treating as miss", "path", path, "error", err)
		return nil, false
	}

	return fields, true
}

// Put stores fields for path keyed by mtime/size, overwriting any prior
// entry for that path regardless of its mtime/size.
func (c *Cache) Put(path string, mtime int64, size int64, fields map[string]any) {
	raw, err := json.Marshal(fields)
	if err != nil {
		c.logger.Warn("metacache: failed to marshal fields, skipping cache write", "path", path, "error", err)
		return
	}

	if _, err := c.putStmt.Exec(path, mtime, size, string(raw)); err != nil {
		c.logger.Warn("metacache: failed to write cache entry", "path", path, "error", err)
	}
}

// Invalidate removes any cached entry for path, for a caller that has
// independent reason to believe a file changed out from under a stale
// mtime/size pair (e.g. a write that lands within the same filesystem-
// timestamp granularity as the previous write).
func (c *Cache) Invalidate(path string) {
	if _, err := c.delStmt.Exec(path); err != nil {
		c.logger.Warn("metacache: failed to invalidate cache entry", "path", path, "error", err)
	}
}

// Close releases the prepared statements and underlying database handle.
func (c *Cache) Close() error {
	for _, stmt := range []*sql.Stmt{c.getStmt, c.putStmt, c.delStmt} {
		if stmt != nil {
			stmt.Close()
		}
	}

	return c.db.Close()
}
