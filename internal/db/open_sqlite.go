package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/mithrel/homepage/pkg/api"
)

type sqliteStore struct{ db *sql.DB }

func openSQLite(ctx context.Context, dsn string) (*sqliteStore, error) {
	path := strings.TrimPrefix(dsn, "sqlite://")
	if path == "" {
		return nil, fmt.Errorf("sqlite: empty path")
	}
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[2:])
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}
	dbh, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := dbh.ExecContext(ctx, `PRAGMA journal_mode=WAL;`); err != nil {
		_ = dbh.Close()
		return nil, err
	}
	if err := migrate(ctx, dbh); err != nil {
		_ = dbh.Close()
		return nil, err
	}
	return &sqliteStore{db: dbh}, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS posts (
  slug TEXT PRIMARY KEY,
  position INTEGER NOT NULL,
  date TEXT NOT NULL,
  title TEXT NOT NULL,
  description TEXT NOT NULL,
  content TEXT NOT NULL,
  tags TEXT NOT NULL,
  hash TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_posts_position ON posts(position);
`)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

func (s *sqliteStore) ListPosts(ctx context.Context) ([]api.Post, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT slug, date, title, description, content, tags FROM posts ORDER BY position ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []api.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *sqliteStore) GetPost(ctx context.Context, slug string) (api.Post, error) {
	row := s.db.QueryRowContext(ctx, `SELECT slug, date, title, description, content, tags FROM posts WHERE slug=?`, slug)
	p, err := scanPost(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return api.Post{}, ErrNotFound
		}
		return api.Post{}, err
	}
	return p, nil
}

type scanner interface{ Scan(dest ...any) error }

func scanPost(sc scanner) (api.Post, error) {
	var p api.Post
	var tagsJSON string
	if err := sc.Scan(&p.Slug, &p.Date, &p.Title, &p.Description, &p.Content, &tagsJSON); err != nil {
		return api.Post{}, err
	}
	if err := json.Unmarshal([]byte(tagsJSON), &p.Tags); err != nil {
		return api.Post{}, fmt.Errorf("post %s: decode tags: %w", p.Slug, err)
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	return p, nil
}

func (s *sqliteStore) ReplacePosts(ctx context.Context, posts []api.Post) error {
	if err := checkUnique(posts); err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx, `DELETE FROM posts`); err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO posts(slug, position, date, title, description, content, tags, hash) VALUES(?,?,?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for i, p := range posts {
		tags := p.Tags
		if tags == nil {
			tags = []string{}
		}
		tagsJSON, err := json.Marshal(tags)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, p.Slug, i, p.Date, p.Title, p.Description, p.Content, string(tagsJSON), p.Hash()); err != nil {
			return fmt.Errorf("insert %s: %w", p.Slug, err)
		}
	}
	return tx.Commit()
}

func (s *sqliteStore) Close() error { return s.db.Close() }
