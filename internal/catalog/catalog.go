// Package catalog provides a SQLite ledger of emitted artifacts.
package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/nishad/tcgaimport/internal/errors"
	"github.com/nishad/tcgaimport/internal/models"
)

// ErrNotFound is returned by Get for an unknown artifact name.
var ErrNotFound = fmt.Errorf("artifact not found")

// Catalog wraps the SQL database connection
type Catalog struct {
	db   *sql.DB
	path string
}

// Open creates and configures the catalog database
func Open(path string) (*Catalog, error) {
	const op errors.Op = "catalog.Open"

	db, err := sql.Open("sqlite3", path+"?_journal=WAL&_timeout=5000&_sync=NORMAL")
	if err != nil {
		return nil, errors.E(op, errors.KindDatabase, err, "failed to open database")
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 10000", // batch workers write concurrently
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, errors.E(op, errors.KindDatabase, err, fmt.Sprintf("failed to set pragma %s", pragma))
		}
	}

	if err := createTables(db); err != nil {
		db.Close()
		return nil, errors.E(op, errors.KindDatabase, err, "failed to create tables")
	}

	db.SetMaxOpenConns(1)

	return &Catalog{db: db, path: path}, nil
}

func createTables(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS artifacts (
		name TEXT PRIMARY KEY,
		run_id TEXT,
		basename TEXT NOT NULL,
		platform TEXT NOT NULL,
		data_sub_type TEXT NOT NULL,
		data_path TEXT NOT NULL,
		meta_path TEXT NOT NULL,
		error_path TEXT,
		md5 TEXT NOT NULL,
		warnings INTEGER DEFAULT 0,
		metadata JSON,
		created_at TIMESTAMP NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_artifact_basename ON artifacts(basename);
	CREATE INDEX IF NOT EXISTS idx_artifact_platform ON artifacts(platform);
	`
	_, err := db.Exec(schema)
	return err
}

// Close closes the database
func (c *Catalog) Close() error {
	return c.db.Close()
}

// Ping checks the connection
func (c *Catalog) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

// Record inserts or replaces an artifact. A rebuilt artifact keeps its
// name and replaces the earlier row.
func (c *Catalog) Record(ctx context.Context, a *models.Artifact) error {
	const op errors.Op = "catalog.Record"

	var meta []byte
	if a.Metadata != nil {
		var err error
		if meta, err = json.Marshal(a.Metadata); err != nil {
			return errors.E(op, errors.KindDatabase, err, "failed to encode metadata")
		}
	}

	query := `INSERT OR REPLACE INTO artifacts
		(name, run_id, basename, platform, data_sub_type, data_path, meta_path,
		 error_path, md5, warnings, metadata, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := c.db.ExecContext(ctx, query,
		a.Name, a.RunID, a.Basename, a.Platform, a.DataSubType, a.DataPath, a.MetaPath,
		nullString(a.ErrorPath), a.MD5, a.Warnings, nullBytes(meta), a.CreatedAt.UTC())
	if err != nil {
		return errors.E(op, errors.KindDatabase, err, fmt.Sprintf("failed to record %s", a.Name))
	}
	return nil
}

// Filter narrows List. Empty fields match everything.
type Filter struct {
	Basename    string
	Platform    string
	DataSubType string
	Limit       int
}

const selectColumns = `SELECT name, run_id, basename, platform, data_sub_type, data_path, meta_path,
	error_path, md5, warnings, metadata, created_at FROM artifacts`

// List returns artifacts matching f, newest first.
func (c *Catalog) List(ctx context.Context, f Filter) ([]models.Artifact, error) {
	const op errors.Op = "catalog.List"

	var where []string
	var args []any
	for _, cond := range []struct {
		column, value string
	}{
		{"basename", f.Basename},
		{"platform", f.Platform},
		{"data_sub_type", f.DataSubType},
	} {
		if cond.value != "" {
			where = append(where, cond.column+" = ?")
			args = append(args, cond.value)
		}
	}

	query := selectColumns
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, name"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.E(op, errors.KindDatabase, err)
	}
	defer rows.Close()

	var out []models.Artifact
	for rows.Next() {
		a, err := scanArtifact(rows)
		if err != nil {
			return nil, errors.E(op, errors.KindDatabase, err)
		}
		out = append(out, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.E(op, errors.KindDatabase, err)
	}
	return out, nil
}

// Get returns the artifact recorded under name.
func (c *Catalog) Get(ctx context.Context, name string) (*models.Artifact, error) {
	const op errors.Op = "catalog.Get"

	row := c.db.QueryRowContext(ctx, selectColumns+" WHERE name = ?", name)
	a, err := scanArtifact(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.E(op, errors.KindDatabase, err)
	}
	return a, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanArtifact(s scanner) (*models.Artifact, error) {
	var a models.Artifact
	var runID, errorPath sql.NullString
	var meta []byte
	var created time.Time
	err := s.Scan(&a.Name, &runID, &a.Basename, &a.Platform, &a.DataSubType, &a.DataPath,
		&a.MetaPath, &errorPath, &a.MD5, &a.Warnings, &meta, &created)
	if err != nil {
		return nil, err
	}
	a.RunID = runID.String
	a.ErrorPath = errorPath.String
	a.CreatedAt = created.UTC()
	if len(meta) > 0 {
		if err := json.Unmarshal(meta, &a.Metadata); err != nil {
			return nil, fmt.Errorf("failed to decode metadata of %s: %w", a.Name, err)
		}
	}
	return &a, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullBytes(b []byte) any {
	if b == nil {
		return nil
	}
	return string(b)
}
