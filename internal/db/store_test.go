package db

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mithrel/homepage/pkg/api"
)

func samplePosts() []api.Post {
	return []api.Post{
		{Date: "March 11th, 2024", Title: "My journey with bevy", Slug: "building-tetris-in-bevy", Content: "# Bevy\n", Tags: []string{"fun", "programming"}},
		{Date: "March 10th, 2024", Title: "Top Reasons of why Femboy is the Best", Description: "thesis", Slug: "going-femboy", Content: "# Femboy\n", Tags: []string{}},
	}
}

func openStores(t *testing.T) map[string]PostStore {
	t.Helper()
	ctx := context.Background()
	sq, err := Open(ctx, "sqlite://"+filepath.Join(t.TempDir(), "nested", "homepage.db"))
	require.NoError(t, err)
	mem, err := Open(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = sq.Close()
		_ = mem.Close()
	})
	return map[string]PostStore{"sqlite": sq, "mem": mem}
}

func TestPostStore(t *testing.T) {
	for name, store := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			t.Run("empty store lists nothing", func(t *testing.T) {
				posts, err := store.ListPosts(ctx)
				require.NoError(t, err)
				assert.Empty(t, posts)
			})

			t.Run("replace keeps order and fields", func(t *testing.T) {
				require.NoError(t, store.ReplacePosts(ctx, samplePosts()))
				posts, err := store.ListPosts(ctx)
				require.NoError(t, err)
				assert.Equal(t, samplePosts(), posts)
			})

			t.Run("get by slug", func(t *testing.T) {
				p, err := store.GetPost(ctx, "going-femboy")
				require.NoError(t, err)
				assert.Equal(t, "Top Reasons of why Femboy is the Best", p.Title)

				_, err = store.GetPost(ctx, "missing")
				assert.ErrorIs(t, err, ErrNotFound)
			})

			t.Run("replace reorders", func(t *testing.T) {
				in := samplePosts()
				in[0], in[1] = in[1], in[0]
				require.NoError(t, store.ReplacePosts(ctx, in))
				posts, err := store.ListPosts(ctx)
				require.NoError(t, err)
				require.Len(t, posts, 2)
				assert.Equal(t, "going-femboy", posts[0].Slug)
			})

			t.Run("duplicate slugs are rejected and nothing changes", func(t *testing.T) {
				in := samplePosts()
				in[1].Slug = in[0].Slug
				err := store.ReplacePosts(ctx, in)
				assert.ErrorIs(t, err, ErrConflict)

				posts, err := store.ListPosts(ctx)
				require.NoError(t, err)
				require.Len(t, posts, 2)
				assert.Equal(t, "going-femboy", posts[0].Slug)
			})
		})
	}
}

func TestOpenReopensExistingDB(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "homepage.db")

	s1, err := Open(ctx, path)
	require.NoError(t, err)
	require.NoError(t, s1.ReplacePosts(ctx, samplePosts()))
	require.NoError(t, s1.Close())

	s2, err := Open(ctx, "sqlite://"+path)
	require.NoError(t, err)
	defer s2.Close()
	posts, err := s2.ListPosts(ctx)
	require.NoError(t, err)
	assert.Len(t, posts, 2)
}
