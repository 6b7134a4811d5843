package library

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"overture/internal/catalog"
)

// Index is the SQLite catalog of the scanned collection. All reads go
// through it so searches never touch the filesystem.
type Index struct {
	db   *sql.DB
	path string
}

type albumRow struct {
	dir        string
	name       string
	searchText string
	trackCount int
}

type trackRow struct {
	path     string
	name     string
	position int
	length   time.Duration
}

func openIndex(path string) (*Index, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create index directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open library index: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	for _, stmt := range schemaStatements {
		if _, err := db.Exec(stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply index schema: %w", err)
		}
	}

	return &Index{db: db, path: path}, nil
}

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS albums (
		dir TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		search_text TEXT NOT NULL,
		track_count INTEGER NOT NULL DEFAULT 0,
		scanned_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS tracks (
		path TEXT PRIMARY KEY,
		album_dir TEXT NOT NULL REFERENCES albums(dir) ON DELETE CASCADE,
		name TEXT NOT NULL,
		position INTEGER NOT NULL DEFAULT 0,
		length_ms INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS idx_tracks_album ON tracks(album_dir)`,
}

func (ix *Index) Close() error {
	return ix.db.Close()
}

// SearchAlbums matches the flattened query against indexed album text.
func (ix *Index) SearchAlbums(ctx context.Context, query string) ([]catalog.Album, error) {
	needle := searchText(query)
	if needle == "" {
		return nil, nil
	}

	rows, err := ix.db.QueryContext(ctx,
		`SELECT dir, name, track_count FROM albums WHERE search_text LIKE ? ORDER BY name`,
		"%"+needle+"%")
	if err != nil {
		return nil, fmt.Errorf("query albums: %w", err)
	}
	defer rows.Close()

	var albums []catalog.Album
	for rows.Next() {
		var (
			dir, name  string
			trackCount int
		)
		if err := rows.Scan(&dir, &name, &trackCount); err != nil {
			return nil, fmt.Errorf("scan album row: %w", err)
		}
		albums = append(albums, catalog.Album{
			ID:         dir,
			Name:       name,
			Source:     catalog.SourceLibrary,
			TrackCount: trackCount,
		})
	}
	return albums, rows.Err()
}

// TracksForAlbum lists an indexed album's tracks in scan order.
func (ix *Index) TracksForAlbum(ctx context.Context, dir string) ([]catalog.Track, error) {
	rows, err := ix.db.QueryContext(ctx,
		`SELECT path, name, length_ms FROM tracks WHERE album_dir = ? ORDER BY position`,
		dir)
	if err != nil {
		return nil, fmt.Errorf("query tracks: %w", err)
	}
	defer rows.Close()

	var tracks []catalog.Track
	for rows.Next() {
		var (
			path, name string
			lengthMS   int64
		)
		if err := rows.Scan(&path, &name, &lengthMS); err != nil {
			return nil, fmt.Errorf("scan track row: %w", err)
		}
		tracks = append(tracks, catalog.Track{
			ID:     path,
			Name:   name,
			Length: time.Duration(lengthMS) * time.Millisecond,
			Source: catalog.SourceLibrary,
		})
	}
	return tracks, rows.Err()
}

func (ix *Index) AlbumCount(ctx context.Context) (int, error) {
	var count int
	if err := ix.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM albums`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count albums: %w", err)
	}
	return count, nil
}

// replaceAlbum upserts one album and swaps its track list in a single
// transaction.
func (ix *Index) replaceAlbum(ctx context.Context, album albumRow, tracks []trackRow) error {
	tx, err := ix.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin index update: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO albums (dir, name, search_text, track_count, scanned_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(dir) DO UPDATE SET
			name = excluded.name,
			search_text = excluded.search_text,
			track_count = excluded.track_count,
			scanned_at = excluded.scanned_at`,
		album.dir, album.name, album.searchText, album.trackCount,
		time.Now().UTC().Format(time.RFC3339Nano)); err != nil {
		return fmt.Errorf("upsert album: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM tracks WHERE album_dir = ?`, album.dir); err != nil {
		return fmt.Errorf("clear album tracks: %w", err)
	}
	for _, track := range tracks {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO tracks (path, album_dir, name, position, length_ms) VALUES (?, ?, ?, ?, ?)`,
			track.path, album.dir, track.name, track.position, track.length.Milliseconds()); err != nil {
			return fmt.Errorf("insert track: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit index update: %w", err)
	}
	return nil
}

// pruneMissing drops albums whose directories were not seen by the latest
// scan. Track rows follow via the foreign key cascade.
func (ix *Index) pruneMissing(ctx context.Context, keep []string) (int64, error) {
	var (
		res sql.Result
		err error
	)
	if len(keep) == 0 {
		res, err = ix.db.ExecContext(ctx, `DELETE FROM albums`)
	} else {
		args := make([]any, len(keep))
		for i, dir := range keep {
			args[i] = dir
		}
		res, err = ix.db.ExecContext(ctx,
			`DELETE FROM albums WHERE dir NOT IN (`+makePlaceholders(len(keep))+`)`,
			args...)
	}
	if err != nil {
		return 0, fmt.Errorf("prune albums: %w", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("count pruned albums: %w", err)
	}
	return removed, nil
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	return strings.Repeat("?, ", count-1) + "?"
}
