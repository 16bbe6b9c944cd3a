package server

import (
	"net/url"
	"strings"
)

const maxSuggestions = 3

// NotFoundPath rebuilds the attempted path from its segments.
func NotFoundPath(route []string) string {
	return "/" + strings.Join(route, "/")
}

// splitPath breaks a URL path into its non-empty, unescaped segments.
func splitPath(p string) []string {
	var out []string
	for _, seg := range strings.Split(p, "/") {
		if seg == "" {
			continue
		}
		if u, err := url.PathUnescape(seg); err == nil {
			seg = u
		}
		out = append(out, seg)
	}
	return out
}

// rawSegments breaks a URL path into its non-empty segments as the router
// matches them, still escaped.
func rawSegments(p string) []string {
	var out []string
	for _, seg := range strings.Split(p, "/") {
		if seg != "" {
			out = append(out, seg)
		}
	}
	return out
}

// slugParam unescapes a slug taken from a raw path segment.
func slugParam(raw string) string {
	if s, err := url.PathUnescape(raw); err == nil {
		return s
	}
	return raw
}

func blogSlug(route []string) (string, bool) {
	if len(route) == 2 && route[0] == "blog" {
		return route[1], true
	}
	return "", false
}
