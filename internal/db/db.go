package db

import (
	"context"
	"errors"
	"strings"

	"github.com/mithrel/homepage/pkg/api"
)

// PostStore persists the ordered post list used as a content source.
type PostStore interface {
	// ListPosts returns every post in stored position order.
	ListPosts(ctx context.Context) ([]api.Post, error)
	GetPost(ctx context.Context, slug string) (api.Post, error)
	// ReplacePosts atomically replaces the stored set; positions follow slice order.
	ReplacePosts(ctx context.Context, posts []api.Post) error
	Close() error
}

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
)

// Open returns a PostStore for dsn: "mem://" or ":memory:" for an in-memory
// store, "sqlite://<path>" or a bare path for sqlite.
func Open(ctx context.Context, dsn string) (PostStore, error) {
	dsn = strings.TrimSpace(dsn)
	switch {
	case dsn == ":memory:" || strings.HasPrefix(dsn, "mem://"):
		return newMemStore(), nil
	default:
		return openSQLite(ctx, dsn)
	}
}

func checkUnique(posts []api.Post) error {
	seen := make(map[string]struct{}, len(posts))
	for _, p := range posts {
		if strings.TrimSpace(p.Slug) == "" {
			return errors.Join(ErrConflict, errors.New("empty slug"))
		}
		if _, ok := seen[p.Slug]; ok {
			return errors.Join(ErrConflict, errors.New("duplicate slug "+p.Slug))
		}
		seen[p.Slug] = struct{}{}
	}
	return nil
}
