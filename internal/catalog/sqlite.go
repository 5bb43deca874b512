// Package catalog keeps a sqlite index of generated maps: the settings
// each was made with, headline stats & where its outputs were written.
package catalog

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"
)

// ErrNotFound implies no entry has the requested id.
var ErrNotFound = errors.New("catalog entry not found")

// Entry is one generated map.
type Entry struct {
	ID        int64
	Seed      int64
	CreatedAt time.Time

	// Settings is the settings document (json) the map was made with &
	// Digest its sha256, so identical runs can be found.
	Settings []byte
	Digest   string

	Points       int
	Sites        int
	Rivers       int
	LandFraction float64
	SeaLevel     float64

	// output files, empty if not written
	MeshPath  string
	ImagePath string
	JSONPath  string
}

// Catalog is a sqlite backed map index. It's safe for concurrent use.
type Catalog struct {
	db   *sql.DB
	once sync.Once
}

// Open creates (if needed) & opens the catalog at path.
func Open(path string) (*Catalog, error) {
	if path == "" {
		return nil, errors.New("empty catalog path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Catalog{db: db}, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return errors.Wrap(err, p)
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS maps (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			seed INTEGER NOT NULL,
			created_at TEXT NOT NULL,
			settings_json TEXT NOT NULL,
			digest TEXT NOT NULL,
			points INTEGER NOT NULL,
			sites INTEGER NOT NULL,
			rivers INTEGER NOT NULL,
			land_fraction REAL NOT NULL,
			sea_level REAL NOT NULL,
			mesh_path TEXT NOT NULL DEFAULT '',
			image_path TEXT NOT NULL DEFAULT '',
			json_path TEXT NOT NULL DEFAULT ''
		);`,
		`CREATE INDEX IF NOT EXISTS idx_maps_seed ON maps(seed);`,
		`CREATE INDEX IF NOT EXISTS idx_maps_digest ON maps(digest);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

// Close the catalog. Safe to call more than once.
func (c *Catalog) Close() error {
	var err error
	c.once.Do(func() {
		err = c.db.Close()
	})
	return err
}

// Digest returns the hex sha256 of a settings document.
func Digest(settings []byte) string {
	sum := sha256.Sum256(settings)
	return hex.EncodeToString(sum[:])
}

// Record inserts e & returns its new id. CreatedAt defaults to now and
// Digest to the digest of e.Settings.
func (c *Catalog) Record(ctx context.Context, e *Entry) (int64, error) {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	if e.Digest == "" {
		e.Digest = Digest(e.Settings)
	}

	res, err := c.db.ExecContext(ctx,
		`INSERT INTO maps(seed, created_at, settings_json, digest, points, sites, rivers, land_fraction, sea_level, mesh_path, image_path, json_path)
		 VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.Seed, e.CreatedAt.Format(time.RFC3339Nano), string(e.Settings), e.Digest,
		e.Points, e.Sites, e.Rivers, e.LandFraction, e.SeaLevel,
		e.MeshPath, e.ImagePath, e.JSONPath,
	)
	if err != nil {
		return 0, errors.Wrap(err, "insert map")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	e.ID = id
	return id, nil
}

const selectEntry = `SELECT id, seed, created_at, settings_json, digest, points, sites, rivers, land_fraction, sea_level, mesh_path, image_path, json_path FROM maps`

// Get returns the entry with the given id.
func (c *Catalog) Get(ctx context.Context, id int64) (*Entry, error) {
	row := c.db.QueryRowContext(ctx, selectEntry+` WHERE id=?`, id)
	e, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return nil, errors.Wrapf(ErrNotFound, "id %d", id)
	}
	return e, err
}

// List returns up to limit entries, newest first. limit <= 0 means all.
func (c *Catalog) List(ctx context.Context, limit int) ([]*Entry, error) {
	q := selectEntry + ` ORDER BY id DESC`
	args := []interface{}{}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	return c.query(ctx, q, args...)
}

// BySettings returns every entry made with an identical settings document,
// oldest first.
func (c *Catalog) BySettings(ctx context.Context, settings []byte) ([]*Entry, error) {
	return c.query(ctx, selectEntry+` WHERE digest=? ORDER BY id ASC`, Digest(settings))
}

func (c *Catalog) query(ctx context.Context, q string, args ...interface{}) ([]*Entry, error) {
	rows, err := c.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// scanner is satisfied by both *sql.Row & *sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanEntry(s scanner) (*Entry, error) {
	var (
		e        Entry
		created  string
		settings string
	)
	err := s.Scan(
		&e.ID, &e.Seed, &created, &settings, &e.Digest,
		&e.Points, &e.Sites, &e.Rivers, &e.LandFraction, &e.SeaLevel,
		&e.MeshPath, &e.ImagePath, &e.JSONPath,
	)
	if err != nil {
		return nil, err
	}
	e.Settings = []byte(settings)
	e.CreatedAt, err = time.Parse(time.RFC3339Nano, created)
	if err != nil {
		return nil, errors.Wrapf(err, "entry %d created_at", e.ID)
	}
	return &e, nil
}
