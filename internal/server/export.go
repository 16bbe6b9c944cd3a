package server

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Export writes every page of the current site under outDir, laid out so a
// plain file server reproduces the HTTP routes.
func (s *Server) Export(ctx context.Context, outDir string) error {
	site := s.live.Site()
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("export: %w", err)
	}

	write := func(rel, name string, data pageData) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		path := filepath.Join(outDir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("export %s: %w", rel, err)
		}
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("export %s: %w", rel, err)
		}
		if err := s.pages.execute(f, name, data); err != nil {
			_ = f.Close()
			return fmt.Errorf("export %s: %w", rel, err)
		}
		return f.Close()
	}

	if err := write("index.html", pageHome, s.homePage(site)); err != nil {
		return err
	}
	if err := write("blog/index.html", pageBlog, s.blogPage(site, "")); err != nil {
		return err
	}
	for _, p := range site.Posts.Posts() {
		if strings.ContainsAny(p.Slug, `/\`) || p.Slug == "." || p.Slug == ".." {
			return fmt.Errorf("export: slug %q is not a valid path segment", p.Slug)
		}
		if err := write("blog/"+p.Slug+"/index.html", pagePost, s.postPage(p)); err != nil {
			return err
		}
	}
	if err := write("404.html", pageNotFound, s.notFoundPage(site, nil)); err != nil {
		return err
	}
	if err := copyStatic(filepath.Join(outDir, "static")); err != nil {
		return err
	}
	s.logger.Printf("exported site dir=%s posts=%d", outDir, site.Posts.Len())
	return nil
}

func copyStatic(dst string) error {
	return fs.WalkDir(staticFiles(), ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		target := filepath.Join(dst, filepath.FromSlash(p))
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		b, err := fs.ReadFile(staticFiles(), p)
		if err != nil {
			return err
		}
		if err := os.WriteFile(target, b, 0o644); err != nil {
			return fmt.Errorf("export static %s: %w", p, err)
		}
		return nil
	})
}
