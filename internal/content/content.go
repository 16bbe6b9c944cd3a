// Package content loads the site's posts and home page once from a content
// source and hands out the resulting immutable Site.
package content

import (
	"context"

	"github.com/mithrel/homepage/internal/blog"
)

// DefaultHome is used when a content source has no home page.
const DefaultHome = "# Welcome to my Personal Page!\n"

// Site is everything a request needs: the home page markdown and the post
// registry. A Site is never mutated after Load returns it.
type Site struct {
	Home  string
	Posts *blog.Registry
}

// Source produces a Site. Load is called once at startup, or again on a
// development reload.
type Source interface {
	Load(ctx context.Context) (*Site, error)
}
