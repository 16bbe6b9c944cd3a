package content

import (
	"context"
	"errors"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/gkampitakis/go-snaps/snaps"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mithrel/homepage/internal/blog"
	"github.com/mithrel/homepage/internal/db"
	"github.com/mithrel/homepage/pkg/api"
)

func TestEmbeddedContent(t *testing.T) {
	site, err := NewFSSource(Embedded()).Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"building-tetris-in-bevy", "going-femboy"}, site.Posts.Slugs())
	assert.True(t, strings.HasPrefix(site.Home, "# Welcome to my Personal Page!"))

	p, err := site.Posts.Resolve("going-femboy")
	require.NoError(t, err)
	assert.Equal(t, "Top Reasons of why Femboy is the Best", p.Title)
	assert.Equal(t, "March 10th, 2024", p.Date)
	assert.Equal(t, []string{"humerous", "rant", "very funny"}, p.Tags)

	bevy, err := site.Posts.Resolve("building-tetris-in-bevy")
	require.NoError(t, err)
	assert.Equal(t, "Building a simple game using bevy 0.12", bevy.Description)
	assert.True(t, strings.HasPrefix(bevy.Content, "## Why Tetris"), "front matter must be stripped")

	_, err = site.Posts.Resolve("nonexistent-slug")
	assert.ErrorIs(t, err, blog.ErrPostNotFound)
}

func TestEmbeddedOrderSnapshot(t *testing.T) {
	site, err := NewFSSource(Embedded()).Load(context.Background())
	require.NoError(t, err)
	snaps.MatchSnapshot(t, strings.Join(site.Posts.Slugs(), "\n"))
}

func TestManifestFrontMatterFallback(t *testing.T) {
	fsys := fstest.MapFS{
		"posts.yaml": {Data: []byte(`posts:
  - slug: second
    title: From manifest
  - slug: first
    file: notes/first.md
`)},
		"posts/second.md": {Data: []byte("---\ntitle: ignored\ndate: May 1st, 2024\ntags: [a, b]\n---\nBody two\n")},
		"notes/first.md":  {Data: []byte("---\ntitle: From front matter\ndescription: desc\n---\n\nBody one\n")},
	}
	site, err := NewFSSource(fsys).Load(context.Background())
	require.NoError(t, err)

	posts := site.Posts.Posts()
	require.Len(t, posts, 2)
	assert.Equal(t, api.Post{
		Slug:    "second",
		Title:   "From manifest",
		Date:    "May 1st, 2024",
		Content: "Body two\n",
		Tags:    []string{"a", "b"},
	}, posts[0])
	assert.Equal(t, api.Post{
		Slug:        "first",
		Title:       "From front matter",
		Description: "desc",
		Content:     "Body one\n",
		Tags:        []string{},
	}, posts[1])
	assert.Equal(t, DefaultHome, site.Home)
}

func TestManifestErrors(t *testing.T) {
	cases := map[string]fstest.MapFS{
		"duplicate slug": {
			"posts.yaml": {Data: []byte("posts:\n  - slug: a\n  - slug: a\n")},
			"posts/a.md": {Data: []byte("x")},
		},
		"missing file": {
			"posts.yaml": {Data: []byte("posts:\n  - slug: a\n")},
		},
		"empty slug": {
			"posts.yaml": {Data: []byte("posts:\n  - title: nothing\n")},
		},
		"bad yaml": {
			"posts.yaml": {Data: []byte("posts: [\n")},
		},
	}
	for name, fsys := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := NewFSSource(fsys).Load(context.Background())
			require.Error(t, err)
			assert.Contains(t, err.Error(), "content:")
		})
	}
}

func TestDirectoryWithoutManifest(t *testing.T) {
	fsys := fstest.MapFS{
		"home.md":          {Data: []byte("# Home\n")},
		"posts/b-post.md":  {Data: []byte("---\nweight: 1\n---\nB\n")},
		"posts/a-post.md":  {Data: []byte("---\nweight: 2\nslug: custom\ntags: x, y\n---\nA\n")},
		"posts/c-post.md":  {Data: []byte("C\n")},
		"posts/readme.txt": {Data: []byte("not a post")},
	}
	site, err := NewFSSource(fsys).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"c-post", "b-post", "custom"}, site.Posts.Slugs())
	assert.Equal(t, "# Home\n", site.Home)

	p, err := site.Posts.Resolve("custom")
	require.NoError(t, err)
	assert.Equal(t, "a-post", p.Title)
	assert.Equal(t, []string{"x", "y"}, p.Tags)
}

func TestEmptyTree(t *testing.T) {
	site, err := NewFSSource(fstest.MapFS{}).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, site.Posts.Len())
	assert.Equal(t, DefaultHome, site.Home)
}

func TestStripFrontMatter(t *testing.T) {
	body, ok := stripFrontMatter([]byte("---\na: 1\n---\n\ntext"))
	assert.True(t, ok)
	assert.Equal(t, "text", string(body))

	body, ok = stripFrontMatter([]byte("no front matter\n---\n"))
	assert.False(t, ok)
	assert.Equal(t, "no front matter\n---\n", string(body))

	_, ok = stripFrontMatter([]byte("---\nunterminated"))
	assert.False(t, ok)
}

func TestStoreSource(t *testing.T) {
	ctx := context.Background()
	store, err := db.Open(ctx, ":memory:")
	require.NoError(t, err)
	posts, err := NewFSSource(Embedded()).LoadPosts(ctx)
	require.NoError(t, err)
	require.NoError(t, store.ReplacePosts(ctx, posts))

	site, err := NewStoreSource(store, "").Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, DefaultHome, site.Home)
	assert.Equal(t, posts, site.Posts.Posts())
}

type flakySource struct {
	sites []*Site
	err   error
	calls int
}

func (f *flakySource) Load(context.Context) (*Site, error) {
	f.calls++
	if f.calls > len(f.sites) {
		return nil, f.err
	}
	return f.sites[f.calls-1], nil
}

func TestLiveReloadKeepsPreviousOnFailure(t *testing.T) {
	ctx := context.Background()
	first := &Site{Home: "one", Posts: blog.MustRegistry()}
	src := &flakySource{sites: []*Site{first}, err: assert.AnError}

	live, err := NewLive(ctx, src)
	require.NoError(t, err)
	assert.Same(t, first, live.Site())

	assert.ErrorIs(t, live.Reload(ctx), assert.AnError)
	assert.Same(t, first, live.Site())

	_, err = NewLive(ctx, &flakySource{err: assert.AnError})
	assert.Error(t, err)

	static := Static(first)
	assert.Same(t, first, static.Site())
	assert.Error(t, static.Reload(ctx))
}

func TestWatchReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, PostsDir), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, PostsDir, "one.md"), []byte("one"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	live, err := NewLive(ctx, NewFSSource(os.DirFS(dir)))
	require.NoError(t, err)
	require.Equal(t, 1, live.Site().Posts.Len())

	done := make(chan error, 1)
	go func() { done <- Watch(ctx, dir, live, log.New(io.Discard, "", 0)) }()
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(dir, PostsDir, "two.md"), []byte("two"), 0o644))
	require.Eventually(t, func() bool {
		return live.Site().Posts.Len() == 2
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

type failingAdder struct{ added []string }

func (f *failingAdder) Add(name string) error {
	f.added = append(f.added, name)
	return errors.New("too many watches")
}

func TestWatchNewDirLogsAddFailure(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "post.md")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	var logs strings.Builder
	logger := log.New(&logs, "", 0)
	a := &failingAdder{}

	watchNewDir(a, file, logger)
	assert.Empty(t, a.added)

	watchNewDir(a, dir, logger)
	assert.Equal(t, []string{dir}, a.added)
	assert.Contains(t, logs.String(), "watch dir failed dir="+dir)
	assert.Contains(t, logs.String(), "too many watches")
}
