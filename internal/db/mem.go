package db

import (
	"context"
	"sync"

	"github.com/mithrel/homepage/pkg/api"
)

type memStore struct {
	mu    sync.RWMutex
	posts []api.Post
}

func newMemStore() *memStore { return &memStore{} }

func (m *memStore) ListPosts(ctx context.Context) ([]api.Post, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]api.Post, len(m.posts))
	for i, p := range m.posts {
		out[i] = p.Clone()
	}
	return out, nil
}

func (m *memStore) GetPost(ctx context.Context, slug string) (api.Post, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.posts {
		if p.Slug == slug {
			return p.Clone(), nil
		}
	}
	return api.Post{}, ErrNotFound
}

func (m *memStore) ReplacePosts(ctx context.Context, posts []api.Post) error {
	if err := checkUnique(posts); err != nil {
		return err
	}
	next := make([]api.Post, len(posts))
	for i, p := range posts {
		next[i] = p.Clone()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.posts = next
	return nil
}

func (m *memStore) Close() error { return nil }
