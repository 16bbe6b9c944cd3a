package server

import (
	"github.com/mithrel/homepage/internal/blog"
	"github.com/mithrel/homepage/pkg/api"
)

// PageKind names the page a URL path maps to.
type PageKind string

const (
	PageHome     PageKind = "home"
	PageBlog     PageKind = "blog"
	PagePost     PageKind = "post"
	PageNotFound PageKind = "not-found"
)

// Match is the outcome of routing a path against the registry.
type Match struct {
	Kind PageKind
	// Post is set for PagePost.
	Post api.Post
	// Path is the reconstructed attempted path for PageNotFound.
	Path        string
	Suggestions []string
}

// Resolve maps a URL path to the page the server would render for it,
// using the same rules as Router. A slug miss is a PageNotFound match.
func Resolve(posts *blog.Registry, urlPath string) Match {
	raw := rawSegments(urlPath)
	route := splitPath(urlPath)
	switch {
	case len(raw) == 0:
		return Match{Kind: PageHome}
	case len(raw) == 1 && raw[0] == "blog":
		return Match{Kind: PageBlog}
	}
	if len(raw) == 2 && raw[0] == "blog" {
		slug := slugParam(raw[1])
		if p, err := posts.Resolve(slug); err == nil {
			return Match{Kind: PagePost, Post: p}
		}
		return Match{Kind: PageNotFound, Path: NotFoundPath(route), Suggestions: posts.Suggest(slug, maxSuggestions)}
	}
	return Match{Kind: PageNotFound, Path: NotFoundPath(route)}
}
