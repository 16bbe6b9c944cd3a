package server

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mithrel/homepage/internal/blog"
	"github.com/mithrel/homepage/internal/content"
	"github.com/mithrel/homepage/internal/render"
	"github.com/mithrel/homepage/pkg/api"
)

var fixtures = []api.Post{
	{
		Slug:        "building-tetris-in-bevy",
		Title:       "My journey with bevy",
		Date:        "March 11th, 2024",
		Description: "Building a simple game using bevy 0.12",
		Content:     "## Why Tetris\n\nBecause.\n",
		Tags:        []string{"fun", "programming"},
	},
	{
		Slug:        "going-femboy",
		Title:       "Top Reasons of why Femboy is the Best",
		Date:        "March 10th, 2024",
		Description: "The femboy thesis we've all wished for",
		Content:     "# Thesis\n\n1. Comfort\n",
		Tags:        []string{"rant"},
	},
}

func newTestServer(t *testing.T, opts Options) *Server {
	t.Helper()
	site := &content.Site{Home: "# Hi\n", Posts: blog.MustRegistry(fixtures...)}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard, "", 0)
	}
	srv, err := New(content.Static(site), render.NewMarkdown(render.DefaultOptions()), opts)
	require.NoError(t, err)
	return srv
}

func get(t *testing.T, h http.Handler, target string, hdr ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for i := 0; i+1 < len(hdr); i += 2 {
		req.Header.Set(hdr[i], hdr[i+1])
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestNotFoundPath(t *testing.T) {
	assert.Equal(t, "/nonexistent-slug", NotFoundPath([]string{"nonexistent-slug"}))
	assert.Equal(t, "/blog/a/b", NotFoundPath([]string{"blog", "a", "b"}))
	assert.Equal(t, "/", NotFoundPath(nil))
}

func TestSplitPath(t *testing.T) {
	assert.Equal(t, []string{"blog", "x y"}, splitPath("/blog//x%20y/"))
	assert.Nil(t, splitPath("/"))
}

func TestRoutes(t *testing.T) {
	srv := newTestServer(t, Options{Title: "Mithrel"})
	h := srv.Router()

	t.Run("home", func(t *testing.T) {
		rec := get(t, h, "/")
		require.Equal(t, http.StatusOK, rec.Code)
		body := rec.Body.String()
		assert.Contains(t, body, `<h1 id="hi">Hi</h1>`)
		assert.Contains(t, body, "<title>Mithrel</title>")
		assert.Contains(t, body, `href="/blog/"`)
	})

	t.Run("blog list keeps declared order", func(t *testing.T) {
		for _, target := range []string{"/blog", "/blog/"} {
			rec := get(t, h, target)
			require.Equal(t, http.StatusOK, rec.Code, target)
			body := rec.Body.String()
			first := strings.Index(body, "/blog/building-tetris-in-bevy/")
			second := strings.Index(body, "/blog/going-femboy/")
			require.True(t, first >= 0 && second >= 0, target)
			assert.Less(t, first, second)
		}
	})

	t.Run("blog list by tag", func(t *testing.T) {
		body := get(t, h, "/blog?tag=rant").Body.String()
		assert.Contains(t, body, "Top Reasons of why Femboy is the Best")
		assert.NotContains(t, body, "<h3>My journey with bevy</h3>")
	})

	t.Run("post", func(t *testing.T) {
		rec := get(t, h, "/blog/going-femboy")
		require.Equal(t, http.StatusOK, rec.Code)
		body := rec.Body.String()
		assert.Contains(t, body, "Top Reasons of why Femboy is the Best")
		assert.Contains(t, body, "March 10th, 2024")
		assert.Contains(t, body, `<h1 id="thesis">Thesis</h1>`)
		assert.Equal(t, fixtures[1].ETagWith(srv.pageSeed), rec.Header().Get("ETag"))
	})

	t.Run("healthz", func(t *testing.T) {
		rec := get(t, h, "/healthz")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "ok", rec.Body.String())
	})

	t.Run("static", func(t *testing.T) {
		rec := get(t, h, "/static/site.css")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), ".navbar")
	})
}

func TestUnknownSlugRendersNotFound(t *testing.T) {
	h := newTestServer(t, Options{}).Router()

	rec := get(t, h, "/blog/nonexistent-slug")
	require.Equal(t, http.StatusNotFound, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Page not found")
	assert.Contains(t, body, "terribly sorry")
	assert.Contains(t, body, "attempted to navigate to: /blog/nonexistent-slug")
	assert.Contains(t, body, "/nonexistent-slug")

	rec = get(t, h, "/blog/gong-femboy")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `href="/blog/going-femboy/"`)

	rec = get(t, h, "/some/deep/path")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "attempted to navigate to: /some/deep/path")
	assert.NotContains(t, rec.Body.String(), "Maybe you were looking for")
}

func TestETagNotModified(t *testing.T) {
	h := newTestServer(t, Options{}).Router()
	etag := get(t, h, "/blog/going-femboy").Header().Get("ETag")
	require.NotEmpty(t, etag)

	rec := get(t, h, "/blog/going-femboy", "If-None-Match", etag)
	assert.Equal(t, http.StatusNotModified, rec.Code)
	assert.Empty(t, rec.Body.String())

	rec = get(t, h, "/blog/going-femboy", "If-None-Match", `"stale"`)
	assert.Equal(t, http.StatusOK, rec.Code)

	assert.True(t, etagMatches(`"a", W/`+etag, etag))
	assert.True(t, etagMatches("*", etag))
	assert.False(t, etagMatches(`"a"`, etag))
}

func TestETagFollowsSiteSettings(t *testing.T) {
	etag := func(srv *Server) string {
		return get(t, srv.Router(), "/blog/going-femboy").Header().Get("ETag")
	}
	base := etag(newTestServer(t, Options{}))
	assert.Equal(t, base, etag(newTestServer(t, Options{})))

	assert.NotEqual(t, base, etag(newTestServer(t, Options{Title: "Renamed"})))
	assert.NotEqual(t, base, etag(newTestServer(t, Options{BaseURL: "/x/"})))

	site := &content.Site{Home: "# Hi\n", Posts: blog.MustRegistry(fixtures...)}
	opts := render.DefaultOptions()
	opts.HighlightStyle = "monokai"
	srv, err := New(content.Static(site), render.NewMarkdown(opts), Options{Logger: log.New(io.Discard, "", 0)})
	require.NoError(t, err)
	stale := get(t, srv.Router(), "/blog/going-femboy", "If-None-Match", base)
	assert.Equal(t, http.StatusOK, stale.Code)
	assert.NotEqual(t, base, stale.Header().Get("ETag"))
}

func TestAPI(t *testing.T) {
	h := newTestServer(t, Options{}).Router()

	rec := get(t, h, "/api/posts")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var list []api.PostSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 2)
	assert.Equal(t, "building-tetris-in-bevy", list[0].Slug)
	assert.Equal(t, "going-femboy", list[1].Slug)

	rec = get(t, h, "/api/posts?tag=fun")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)

	rec = get(t, h, "/api/posts/going-femboy")
	require.Equal(t, http.StatusOK, rec.Code)
	var p api.Post
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.Equal(t, fixtures[1], p)

	rec = get(t, h, "/api/posts/nope")
	require.Equal(t, http.StatusNotFound, rec.Code)
	var miss map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &miss))
	assert.Equal(t, map[string]string{"error": "post not found", "slug": "nope"}, miss)
}

func TestBaseURLPrefixesLinks(t *testing.T) {
	h := newTestServer(t, Options{BaseURL: "https://example.com/site"}).Router()
	body := get(t, h, "/blog").Body.String()
	assert.Contains(t, body, `href="/site/blog/going-femboy/"`)
	assert.Contains(t, body, `href="/site/static/site.css"`)

	assert.Equal(t, "/", rootPath(""))
	assert.Equal(t, "/", rootPath("https://example.com"))
	assert.Equal(t, "/docs/", rootPath("/docs/"))
}

func TestExport(t *testing.T) {
	srv := newTestServer(t, Options{})
	out := t.TempDir()
	require.NoError(t, srv.Export(context.Background(), out))

	for _, rel := range []string{
		"index.html",
		"blog/index.html",
		"blog/building-tetris-in-bevy/index.html",
		"blog/going-femboy/index.html",
		"404.html",
		"static/site.css",
	} {
		_, err := os.Stat(filepath.Join(out, filepath.FromSlash(rel)))
		assert.NoError(t, err, rel)
	}
	b, err := os.ReadFile(filepath.Join(out, "blog", "going-femboy", "index.html"))
	require.NoError(t, err)
	assert.Contains(t, string(b), "Top Reasons of why Femboy is the Best")

	b, err = os.ReadFile(filepath.Join(out, "404.html"))
	require.NoError(t, err)
	assert.Contains(t, string(b), "Page not found")
}

func TestExportCancelled(t *testing.T) {
	srv := newTestServer(t, Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, srv.Export(ctx, t.TempDir()), context.Canceled)
}

func TestServeShutsDownOnCancel(t *testing.T) {
	srv := newTestServer(t, Options{})
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.ServeListener(ctx, ln) }()

	url := "http://" + ln.Addr().String() + "/healthz"
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
