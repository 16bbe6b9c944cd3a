package content

import (
	"context"
	"fmt"

	"github.com/mithrel/homepage/internal/blog"
	"github.com/mithrel/homepage/internal/db"
)

// StoreSource loads posts from a PostStore. The home page comes from the
// given markdown since the store only holds posts.
type StoreSource struct {
	store db.PostStore
	home  string
}

func NewStoreSource(store db.PostStore, home string) *StoreSource {
	if home == "" {
		home = DefaultHome
	}
	return &StoreSource{store: store, home: home}
}

func (s *StoreSource) Load(ctx context.Context) (*Site, error) {
	posts, err := s.store.ListPosts(ctx)
	if err != nil {
		return nil, fmt.Errorf("content: list posts: %w", err)
	}
	reg, err := blog.NewRegistry(posts)
	if err != nil {
		return nil, fmt.Errorf("content: %w", err)
	}
	return &Site{Home: s.home, Posts: reg}, nil
}
