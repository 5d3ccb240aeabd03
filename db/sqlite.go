package db

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jeffreytso/contourdex/index"
	"github.com/jeffreytso/contourdex/model"
	_ "github.com/mattn/go-sqlite3"
	"github.com/mdobak/go-xerrors"
)

//go:embed schema.sql
var schemaSQL string

const schemaVersion = 1

// SQLite stores entries in a single table. Natural order is the
// autoincrement seq column.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite creates or opens the database at path, creating parent
// directories as needed. Pragmas and schema are applied every time.
func OpenSQLite(path string) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "." && path != ":memory:" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, xerrors.New("create database directory", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, xerrors.New("open database", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, xerrors.New("connect to database", err)
	}

	// one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, err
	}
	if err := applySchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLite{db: db}, nil
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return xerrors.New(fmt.Sprintf("execute %q", pragma), err)
		}
	}
	return nil
}

func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return xerrors.New("execute schema", err)
	}
	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)); err != nil {
		return xerrors.New("set user_version", err)
	}
	return nil
}

func (s *SQLite) Insert(ctx context.Context, e model.CorpusEntry) error {
	var m model.Metadata
	hasMetadata := e.Metadata != nil
	if hasMetadata {
		m = *e.Metadata
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO entries (id, contour, metadata_ref, has_metadata, title, composer, opus, piece, year, lilypond_path)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Contour, e.MetadataRef, hasMetadata,
		m.Title, m.Composer.Name, m.Opus, m.Piece, m.Year, m.LilypondPath,
	)
	if err != nil {
		return xerrors.New(fmt.Sprintf("insert entry %s", e.ID), err)
	}
	return nil
}

func (s *SQLite) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM entries"); err != nil {
		return xerrors.New("clear entries", err)
	}
	return nil
}

func (s *SQLite) Query(ctx context.Context, pattern string, limit int) ([]model.CorpusEntry, error) {
	res := []model.CorpusEntry{}
	if index.Empty(pattern, limit) {
		return res, nil
	}

	// instr matches the needle literally; LIKE would treat % and _ as wildcards
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, contour, metadata_ref, has_metadata, title, composer, opus, piece, year, lilypond_path
		FROM entries
		WHERE instr(upper(contour), ?) > 0
		ORDER BY seq
		LIMIT ?`,
		index.Sanitize(pattern), limit,
	)
	if err != nil {
		return nil, xerrors.New("query entries", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			e           model.CorpusEntry
			m           model.Metadata
			hasMetadata bool
		)
		if err := rows.Scan(&e.ID, &e.Contour, &e.MetadataRef, &hasMetadata,
			&m.Title, &m.Composer.Name, &m.Opus, &m.Piece, &m.Year, &m.LilypondPath); err != nil {
			return nil, xerrors.New("scan entry", err)
		}
		if hasMetadata {
			e.Metadata = &m
		}
		res = append(res, e)
	}
	if err := rows.Err(); err != nil {
		return nil, xerrors.New("iterate entries", err)
	}
	return res, nil
}

func (s *SQLite) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM entries").Scan(&n); err != nil {
		return 0, xerrors.New("count entries", err)
	}
	return n, nil
}

func (s *SQLite) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
