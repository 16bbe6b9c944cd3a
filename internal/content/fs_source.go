package content

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	meta "github.com/yuin/goldmark-meta"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"gopkg.in/yaml.v3"

	"github.com/mithrel/homepage/internal/blog"
	"github.com/mithrel/homepage/pkg/api"
)

const (
	ManifestFile = "posts.yaml"
	HomeFile     = "home.md"
	PostsDir     = "posts"
)

// Manifest lists posts in display order.
type Manifest struct {
	Posts []ManifestPost `yaml:"posts"`
}

type ManifestPost struct {
	Slug        string   `yaml:"slug"`
	Title       string   `yaml:"title"`
	Date        string   `yaml:"date"`
	Description string   `yaml:"description"`
	File        string   `yaml:"file"`
	Tags        []string `yaml:"tags"`
}

// FSSource loads content from a file tree. With a posts.yaml manifest the
// manifest fixes order and metadata; without one every posts/*.md file is a
// post, ordered by front matter "weight" then file name.
type FSSource struct {
	fsys fs.FS
	md   goldmark.Markdown
}

func NewFSSource(fsys fs.FS) *FSSource {
	return &FSSource{
		fsys: fsys,
		md:   goldmark.New(goldmark.WithExtensions(meta.Meta)),
	}
}

func (s *FSSource) Load(ctx context.Context) (*Site, error) {
	posts, err := s.LoadPosts(ctx)
	if err != nil {
		return nil, err
	}
	reg, err := blog.NewRegistry(posts)
	if err != nil {
		return nil, fmt.Errorf("content: %w", err)
	}
	home, err := s.Home()
	if err != nil {
		return nil, err
	}
	return &Site{Home: home, Posts: reg}, nil
}

// LoadPosts returns the posts in display order without building a registry.
func (s *FSSource) LoadPosts(ctx context.Context) ([]api.Post, error) {
	raw, err := fs.ReadFile(s.fsys, ManifestFile)
	switch {
	case err == nil:
		var m Manifest
		if err := yaml.Unmarshal(raw, &m); err != nil {
			return nil, fmt.Errorf("content: parse %s: %w", ManifestFile, err)
		}
		return s.fromManifest(ctx, m)
	case errors.Is(err, fs.ErrNotExist):
		return s.fromDir(ctx)
	default:
		return nil, fmt.Errorf("content: read %s: %w", ManifestFile, err)
	}
}

// Home returns the home page markdown, or DefaultHome when there is none.
func (s *FSSource) Home() (string, error) {
	raw, err := fs.ReadFile(s.fsys, HomeFile)
	if errors.Is(err, fs.ErrNotExist) {
		return DefaultHome, nil
	}
	if err != nil {
		return "", fmt.Errorf("content: read %s: %w", HomeFile, err)
	}
	_, body, err := s.frontMatter(raw)
	if err != nil {
		return "", fmt.Errorf("content: %s: %w", HomeFile, err)
	}
	return body, nil
}

func (s *FSSource) fromManifest(ctx context.Context, m Manifest) ([]api.Post, error) {
	out := make([]api.Post, 0, len(m.Posts))
	for i, mp := range m.Posts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if strings.TrimSpace(mp.Slug) == "" {
			return nil, fmt.Errorf("content: %s entry %d: %w", ManifestFile, i, blog.ErrEmptySlug)
		}
		file := mp.File
		if file == "" {
			file = path.Join(PostsDir, mp.Slug+".md")
		}
		raw, err := fs.ReadFile(s.fsys, file)
		if err != nil {
			return nil, fmt.Errorf("content: post %s: %w", mp.Slug, err)
		}
		fm, body, err := s.frontMatter(raw)
		if err != nil {
			return nil, fmt.Errorf("content: post %s: %w", mp.Slug, err)
		}
		p := api.Post{
			Slug:        mp.Slug,
			Title:       firstNonEmpty(mp.Title, fm.Title),
			Date:        firstNonEmpty(mp.Date, fm.Date),
			Description: firstNonEmpty(mp.Description, fm.Description),
			Content:     body,
			Tags:        mp.Tags,
		}
		if p.Tags == nil {
			p.Tags = fm.Tags
		}
		out = append(out, finish(p))
	}
	return out, nil
}

func (s *FSSource) fromDir(ctx context.Context) ([]api.Post, error) {
	entries, err := fs.ReadDir(s.fsys, PostsDir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("content: read %s: %w", PostsDir, err)
	}
	type weighted struct {
		post   api.Post
		weight int
		name   string
	}
	var found []weighted
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if e.IsDir() || !strings.HasSuffix(strings.ToLower(e.Name()), ".md") {
			continue
		}
		raw, err := fs.ReadFile(s.fsys, path.Join(PostsDir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("content: %s: %w", e.Name(), err)
		}
		fm, body, err := s.frontMatter(raw)
		if err != nil {
			return nil, fmt.Errorf("content: %s: %w", e.Name(), err)
		}
		stem := strings.TrimSuffix(e.Name(), path.Ext(e.Name()))
		p := api.Post{
			Slug:        firstNonEmpty(fm.Slug, stem),
			Title:       firstNonEmpty(fm.Title, stem),
			Date:        fm.Date,
			Description: fm.Description,
			Content:     body,
			Tags:        fm.Tags,
		}
		found = append(found, weighted{post: finish(p), weight: fm.Weight, name: e.Name()})
	}
	sort.SliceStable(found, func(i, j int) bool {
		if found[i].weight != found[j].weight {
			return found[i].weight < found[j].weight
		}
		return found[i].name < found[j].name
	})
	out := make([]api.Post, len(found))
	for i, w := range found {
		out[i] = w.post
	}
	return out, nil
}

type frontMatter struct {
	Slug        string
	Title       string
	Date        string
	Description string
	Tags        []string
	Weight      int
}

// frontMatter extracts YAML front matter with goldmark-meta and returns the
// markdown body with the front matter block removed.
func (s *FSSource) frontMatter(raw []byte) (frontMatter, string, error) {
	var fm frontMatter
	body, hasBlock := stripFrontMatter(raw)
	if !hasBlock {
		return fm, string(raw), nil
	}
	pc := parser.NewContext()
	s.md.Parser().Parse(text.NewReader(raw), parser.WithContext(pc))
	values, err := meta.TryGet(pc)
	if err != nil {
		return fm, "", fmt.Errorf("front matter: %w", err)
	}
	fm.Slug = stringValue(values["slug"])
	fm.Title = stringValue(values["title"])
	fm.Date = stringValue(values["date"])
	fm.Description = firstNonEmpty(stringValue(values["description"]), stringValue(values["summary"]))
	fm.Tags = stringsValue(values["tags"])
	if w, err := strconv.Atoi(stringValue(values["weight"])); err == nil {
		fm.Weight = w
	}
	return fm, string(body), nil
}

var fmDelim = []byte("---")

// stripFrontMatter removes a leading "---" delimited block.
func stripFrontMatter(raw []byte) ([]byte, bool) {
	src := bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))
	lines := bytes.SplitAfter(src, []byte("\n"))
	if len(lines) == 0 || !bytes.Equal(bytes.TrimSpace(lines[0]), fmDelim) {
		return raw, false
	}
	offset := len(lines[0])
	for _, l := range lines[1:] {
		offset += len(l)
		if bytes.Equal(bytes.TrimSpace(l), fmDelim) {
			return bytes.TrimLeft(src[offset:], "\r\n"), true
		}
	}
	return raw, false
}

func stringValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case time.Time:
		return t.Format("January 2, 2006")
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}

func stringsValue(v any) []string {
	switch t := v.(type) {
	case []any:
		out := make([]string, 0, len(t))
		for _, x := range t {
			if s := stringValue(x); s != "" {
				out = append(out, s)
			}
		}
		return out
	case string:
		var out []string
		for _, part := range strings.Split(t, ",") {
			if s := strings.TrimSpace(part); s != "" {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func finish(p api.Post) api.Post {
	if p.Tags == nil {
		p.Tags = []string{}
	}
	return p
}
