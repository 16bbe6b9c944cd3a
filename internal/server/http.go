// Package server renders the site over HTTP and exports it as static files.
package server

import (
	"encoding/json"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mithrel/homepage/internal/blog"
	"github.com/mithrel/homepage/internal/content"
	"github.com/mithrel/homepage/internal/render"
	"github.com/mithrel/homepage/pkg/api"
)

// Server serves the pages of the site currently held by a content.Live.
type Server struct {
	live   *content.Live
	md     render.HTML
	info   SiteInfo
	tls    TLSOptions
	pages  pages
	logger *log.Logger
	// pageSeed covers everything besides the post that shapes a post page.
	pageSeed string
}

// Options configures a Server.
type Options struct {
	Title string
	// BaseURL may be a full URL or a path; only its path is used for links.
	BaseURL string
	TLS     TLSOptions
	Logger  *log.Logger
}

func New(live *content.Live, md render.HTML, opts Options) (*Server, error) {
	p, err := parsePages()
	if err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	title := strings.TrimSpace(opts.Title)
	if title == "" {
		title = "Home"
	}
	info := SiteInfo{Title: title, Root: rootPath(opts.BaseURL)}
	seed, err := pageSeed(info, md)
	if err != nil {
		return nil, err
	}
	return &Server{
		live:     live,
		md:       md,
		info:     info,
		tls:      opts.TLS,
		pages:    p,
		logger:   logger,
		pageSeed: seed,
	}, nil
}

// Router returns an http.Handler with registered routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{Logger: s.logger, NoColor: true}))
	r.Use(middleware.Recoverer)
	r.Use(middleware.StripSlashes)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/", s.handleHome)
	r.Get("/blog", s.handleBlog)
	r.Get("/blog/{slug}", s.handlePost)
	r.Route("/api", func(r chi.Router) {
		r.Get("/posts", s.handleAPIPosts)
		r.Get("/posts/{slug}", s.handleAPIPost)
	})
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFiles()))))
	r.NotFound(s.handleNotFound)
	return r
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	s.writePage(w, http.StatusOK, pageHome, s.homePage(s.live.Site()))
}

func (s *Server) handleBlog(w http.ResponseWriter, r *http.Request) {
	tag := strings.TrimSpace(r.URL.Query().Get("tag"))
	s.writePage(w, http.StatusOK, pageBlog, s.blogPage(s.live.Site(), tag))
}

func (s *Server) handlePost(w http.ResponseWriter, r *http.Request) {
	site := s.live.Site()
	p, err := site.Posts.Resolve(slugParam(chi.URLParam(r, "slug")))
	if err != nil {
		// a miss keeps the full original path on the not-found page
		s.notFound(w, r, site)
		return
	}
	etag := p.ETagWith(s.pageSeed)
	w.Header().Set("ETag", etag)
	if match := r.Header.Get("If-None-Match"); match != "" && etagMatches(match, etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	s.writePage(w, http.StatusOK, pagePost, s.postPage(p))
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.notFound(w, r, s.live.Site())
}

func (s *Server) notFound(w http.ResponseWriter, r *http.Request, site *content.Site) {
	s.writePage(w, http.StatusNotFound, pageNotFound, s.notFoundPage(site, splitPath(r.URL.Path)))
}

func (s *Server) writePage(w http.ResponseWriter, status int, name string, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.pages.execute(w, name, data); err != nil {
		s.logger.Printf("render page failed page=%s err=%v", name, err)
	}
}

func (s *Server) handleAPIPosts(w http.ResponseWriter, r *http.Request) {
	site := s.live.Site()
	posts := site.Posts.Posts()
	if tag := strings.TrimSpace(r.URL.Query().Get("tag")); tag != "" {
		posts = site.Posts.WithTag(tag)
	}
	out := make([]api.PostSummary, len(posts))
	for i, p := range posts {
		out[i] = p.Summary()
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleAPIPost(w http.ResponseWriter, r *http.Request) {
	slug := slugParam(chi.URLParam(r, "slug"))
	p, err := s.live.Site().Posts.Resolve(slug)
	if blog.IsNotFound(err) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": blog.ErrPostNotFound.Error(), "slug": slug})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	w.Header().Set("ETag", p.ETag())
	writeJSON(w, http.StatusOK, p)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

// etagMatches reports whether an If-None-Match header value covers etag.
func etagMatches(header, etag string) bool {
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" || strings.TrimPrefix(candidate, "W/") == etag {
			return true
		}
	}
	return false
}

func rootPath(baseURL string) string {
	p := strings.TrimSpace(baseURL)
	if u, err := url.Parse(p); err == nil && u.Host != "" {
		p = u.Path
	}
	p = strings.Trim(p, "/")
	if p == "" {
		return "/"
	}
	return "/" + p + "/"
}
