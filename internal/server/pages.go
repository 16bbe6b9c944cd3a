package server

import (
	"bytes"
	"embed"
	"encoding/hex"
	"fmt"
	"html/template"
	"io"
	"io/fs"

	"github.com/zeebo/blake3"

	"github.com/mithrel/homepage/internal/content"
	"github.com/mithrel/homepage/internal/render"
	"github.com/mithrel/homepage/pkg/api"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Page template names.
const (
	pageHome     = "home"
	pageBlog     = "blog"
	pagePost     = "post"
	pageNotFound = "notfound"
)

// pages holds one parsed template set per page, each combined with the layout.
type pages map[string]*template.Template

func parsePages() (pages, error) {
	out := make(pages)
	for _, name := range []string{pageHome, pageBlog, pagePost, pageNotFound} {
		t, err := template.New(name).ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", name, err)
		}
		out[name] = t
	}
	return out, nil
}

func (p pages) execute(w io.Writer, name string, data pageData) error {
	t, ok := p[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}
	// Render into a buffer so a template error never leaves a half-written page.
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	_, err := buf.WriteTo(w)
	return err
}

func staticFiles() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

// SiteInfo is the per-site chrome shared by every page.
type SiteInfo struct {
	Title string
	// Root is the URL path prefix the site is mounted under, ending in "/".
	Root string
}

type pageData struct {
	Site        SiteInfo
	Root        string
	Nav         string
	Title       string
	Description string
	Body        template.HTML

	Post  api.Post
	Posts []api.PostSummary
	Tags  []string
	Tag   string

	Path        string
	Suggestions []string
}

func (s *Server) base(nav, title string) pageData {
	return pageData{Site: s.info, Root: s.info.Root, Nav: nav, Title: title}
}

func (s *Server) homePage(site *content.Site) pageData {
	d := s.base("home", "")
	d.Body = s.md.Render(site.Home)
	return d
}

func (s *Server) blogPage(site *content.Site, tag string) pageData {
	d := s.base("blog", "Blog")
	posts := site.Posts.Posts()
	if tag != "" {
		posts = site.Posts.WithTag(tag)
	}
	d.Posts = make([]api.PostSummary, len(posts))
	for i, p := range posts {
		d.Posts[i] = p.Summary()
	}
	d.Tags = site.Posts.Tags()
	d.Tag = tag
	return d
}

func (s *Server) postPage(p api.Post) pageData {
	d := s.base("blog", p.Title)
	d.Description = p.Description
	d.Post = p
	d.Body = s.md.Render(p.Content)
	return d
}

func (s *Server) notFoundPage(site *content.Site, route []string) pageData {
	d := s.base("", "Page not found")
	d.Path = NotFoundPath(route)
	if slug, ok := blogSlug(route); ok {
		d.Suggestions = site.Posts.Suggest(slug, maxSuggestions)
	}
	return d
}

// fingerprinter is implemented by renderers whose output depends on settings.
type fingerprinter interface {
	Fingerprint() string
}

// pageSeed hashes the site settings, the renderer settings and the embedded
// templates.
func pageSeed(info SiteInfo, md render.HTML) (string, error) {
	h := blake3.New()
	_, _ = fmt.Fprintf(h, "title=%q root=%q\n", info.Title, info.Root)
	if fp, ok := md.(fingerprinter); ok {
		_, _ = fmt.Fprintf(h, "render=%q\n", fp.Fingerprint())
	}
	err := fs.WalkDir(templateFS, "templates", func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		b, err := templateFS.ReadFile(path)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(h, "%s %d\n", path, len(b))
		_, _ = h.Write(b)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("hash templates: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
