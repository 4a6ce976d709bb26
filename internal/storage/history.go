/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */


package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"annotcanvas/internal/scene"

	applog "annotcanvas/internal/log"
	"annotcanvas/internal/version"

	// Pure-Go SQLite driver (CGO-free)
	_ "modernc.org/sqlite"
)

const (
	// HistoryDirName holds derived per-directory data next to the documents.
	HistoryDirName  = ".acv"
	HistoryFileName = "history.sqlite"

	// schemaVersion tracks the local SQLite schema.
	// Bump this when you perform breaking schema changes and add migrations.
	schemaVersion = 2

	// tsLayout keeps a fixed width so timestamps sort as text.
	tsLayout = "2006-01-02T15:04:05.000000000Z07:00"
)

// language=SQL
const insertSnapshotSQL = `INSERT INTO snapshots(doc, ts, shapes, records) VALUES (?, ?, ?, ?)`

// language=SQL
const listSnapshotsSQL = `SELECT ts, records FROM snapshots WHERE doc = ? ORDER BY ts DESC, id DESC LIMIT ?`

// language=SQL
const pruneSnapshotsSQL = `DELETE FROM snapshots WHERE doc = ? AND id NOT IN (
	SELECT id FROM snapshots WHERE doc = ? ORDER BY ts DESC, id DESC LIMIT ?
)`

// language=SQL
const upsertPreviewSQL = `INSERT INTO previews(doc, thumb_blob, updated_at) VALUES (?, ?, ?)
	ON CONFLICT(doc) DO UPDATE SET thumb_blob = excluded.thumb_blob, updated_at = excluded.updated_at`

// History is the snapshot and preview store for the documents of one directory.
type History struct {
	db   *sql.DB
	path string
	log  *slog.Logger
}

// Snapshot is one saved state of a document's shapes.
type Snapshot struct {
	TS      time.Time
	Records []scene.Record
}

// HistoryPath returns the database path for documents stored in dir.
func HistoryPath(dir string) string { return filepath.Join(dir, HistoryDirName, HistoryFileName) }

// OpenHistory opens (creating if needed) the history database for dir.
// A database that fails its integrity check is backed up and recreated.
func OpenHistory(ctx context.Context, dir string) (*History, error) {
	l := applog.WithOperation(applog.WithComponent("storage"), "history_open").With(slog.String("dir", dir))
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("history dir is required")
	}
	h, err := openHistory(ctx, dir, l)
	if err == nil {
		if ok := h.healthy(ctx); ok {
			return h, nil
		}
		_ = h.db.Close()
		err = errors.New("integrity check failed")
	}
	l.Warn("history unusable, recreating", slog.Any("err", err))
	path := HistoryPath(dir)
	backupHistoryFile(path)
	for _, p := range []string{path, path + "-wal", path + "-shm"} {
		_ = os.Remove(p)
	}
	return openHistory(ctx, dir, l)
}

func openHistory(ctx context.Context, dir string, l *slog.Logger) (*History, error) {
	if err := os.MkdirAll(filepath.Join(dir, HistoryDirName), 0o755); err != nil {
		return nil, fmt.Errorf("create %s dir: %w", HistoryDirName, err)
	}
	path := HistoryPath(dir)
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", filepath.ToSlash(path))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if err := ensureMetaAndVersion(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := ensureHistorySchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := runMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	l.Debug("history ready", slog.String("path", path))
	return &History{db: db, path: path, log: l}, nil
}

func (h *History) healthy(ctx context.Context) bool {
	var chk string
	if err := h.db.QueryRowContext(ctx, `PRAGMA quick_check;`).Scan(&chk); err != nil {
		return false
	}
	if !strings.EqualFold(strings.TrimSpace(chk), "ok") {
		return false
	}
	_, err := h.db.ExecContext(ctx, `SELECT 1 FROM snapshots LIMIT 1;`)
	return err == nil
}

// Path is the database file location.
func (h *History) Path() string { return h.path }

func (h *History) Close() error { return h.db.Close() }

func ensureMetaAndVersion(ctx context.Context, db *sql.DB) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS version (
			id          INTEGER PRIMARY KEY CHECK(id=1),
			schema      INTEGER NOT NULL,
			app         TEXT,
			created_at  TEXT NOT NULL,
			updated_at  TEXT NOT NULL
		);`,
	}
	for _, q := range ddl {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	now := time.Now().UTC().Format(time.RFC3339)
	appv := version.String()
	var cur int
	err := db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&cur)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		// fresh databases start at 1 and migrate forward like old ones
		if _, err := db.ExecContext(ctx, `INSERT INTO version (id, schema, app, created_at, updated_at) VALUES(1, 1, ?, ?, ?)`, appv, now, now); err != nil {
			return fmt.Errorf("insert version: %w", err)
		}
	case err != nil:
		return fmt.Errorf("read version: %w", err)
	default:
		// keep the stored schema for migrations
		if _, err := db.ExecContext(ctx, `UPDATE version SET app=?, updated_at=? WHERE id=1`, appv, now); err != nil {
			return fmt.Errorf("update version: %w", err)
		}
	}
	return nil
}

// ensureHistorySchema creates the version 1 tables.
func ensureHistorySchema(ctx context.Context, db *sql.DB) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS snapshots (
			id      INTEGER PRIMARY KEY,
			doc     TEXT    NOT NULL,
			ts      TEXT    NOT NULL,
			shapes  INTEGER NOT NULL,
			records BLOB    NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_doc_ts ON snapshots(doc, ts);`,
	}
	for _, q := range ddl {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("create history schema: %w", err)
		}
	}
	return nil
}

// runMigrations applies incremental schema migrations up to schemaVersion.
func runMigrations(ctx context.Context, db *sql.DB) error {
	var cur int
	if err := db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&cur); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	for cur < schemaVersion {
		next := cur + 1
		var stmts []string
		switch next {
		case 2:
			// rendered previews per document
			stmts = []string{
				`CREATE TABLE IF NOT EXISTS previews (
					doc        TEXT PRIMARY KEY,
					thumb_blob BLOB NOT NULL,
					updated_at TEXT NOT NULL
				);`,
			}
		}
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", next, err)
		}
		for _, q := range stmts {
			if _, err := tx.ExecContext(ctx, q); err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("migration %d stmt failed: %w", next, err)
			}
		}
		if _, err := tx.ExecContext(ctx, `UPDATE version SET schema=?, updated_at=? WHERE id=1`, next, time.Now().UTC().Format(time.RFC3339)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d update version: %w", next, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("migration %d commit: %w", next, err)
		}
		cur = next
	}
	return nil
}

// backupHistoryFile copies the database into a timestamped backup in .acv/backups.
func backupHistoryFile(path string) {
	bdir := filepath.Join(filepath.Dir(path), BackupsDirName)
	_ = os.MkdirAll(bdir, 0o755)
	stamp := time.Now().Format("20060102-150405")
	bak := filepath.Join(bdir, fmt.Sprintf("%s.%s.bak", filepath.Base(path), stamp))
	if data, err := os.ReadFile(path); err == nil {
		_ = os.WriteFile(bak, data, 0o644)
	}
}

// SaveSnapshot records the shapes of doc at ts.
func (h *History) SaveSnapshot(ctx context.Context, doc string, records []scene.Record, ts time.Time) error {
	if records == nil {
		records = []scene.Record{}
	}
	blob, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if _, err := h.db.ExecContext(ctx, insertSnapshotSQL, doc, ts.UTC().Format(tsLayout), len(records), blob); err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}
	h.log.Debug("snapshot saved", slog.String("doc", doc), slog.Int("shapes", len(records)))
	return nil
}

// LatestSnapshot returns the newest snapshot of doc, or nil when there is none.
func (h *History) LatestSnapshot(ctx context.Context, doc string) (*Snapshot, error) {
	out, err := h.ListSnapshots(ctx, doc, 1)
	if err != nil || len(out) == 0 {
		return nil, err
	}
	return &out[0], nil
}

// ListSnapshots returns up to limit snapshots of doc, newest first.
func (h *History) ListSnapshots(ctx context.Context, doc string, limit int) ([]Snapshot, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := h.db.QueryContext(ctx, listSnapshotsSQL, doc, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []Snapshot
	for rows.Next() {
		var tsStr string
		var blob []byte
		if err := rows.Scan(&tsStr, &blob); err != nil {
			return nil, err
		}
		var s Snapshot
		s.TS, _ = time.Parse(tsLayout, tsStr)
		if err := json.Unmarshal(blob, &s.Records); err != nil {
			return nil, fmt.Errorf("decode snapshot: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// PruneSnapshots keeps at most keepLast snapshots of doc and deletes older ones.
func (h *History) PruneSnapshots(ctx context.Context, doc string, keepLast int) (int64, error) {
	if keepLast <= 0 {
		return 0, nil
	}
	res, err := h.db.ExecContext(ctx, pruneSnapshotsSQL, doc, doc, keepLast)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// PutPreview stores the rendered image of doc, replacing any previous one.
func (h *History) PutPreview(ctx context.Context, doc string, img []byte) error {
	if len(img) == 0 {
		return errors.New("empty preview")
	}
	_, err := h.db.ExecContext(ctx, upsertPreviewSQL, doc, img, time.Now().UTC().Format(tsLayout))
	return err
}

// Preview returns the stored image of doc, or nil when there is none.
func (h *History) Preview(ctx context.Context, doc string) ([]byte, error) {
	var blob []byte
	err := h.db.QueryRowContext(ctx, `SELECT thumb_blob FROM previews WHERE doc = ?`, doc).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return blob, err
}
