// Package blog holds the immutable post registry and the slug resolver.
package blog

import (
	"fmt"
	"strings"

	"github.com/mithrel/homepage/internal/util"
	"github.com/mithrel/homepage/pkg/api"
)

// Registry is the ordered, read-only set of posts known to the site.
// It is built once by NewRegistry and never mutated; it is safe for
// concurrent readers.
type Registry struct {
	posts  []api.Post
	bySlug map[string]int
}

// NewRegistry copies posts in declared order and checks that every slug is
// present and unique.
func NewRegistry(posts []api.Post) (*Registry, error) {
	r := &Registry{
		posts:  make([]api.Post, 0, len(posts)),
		bySlug: make(map[string]int, len(posts)),
	}
	for i, p := range posts {
		if strings.TrimSpace(p.Slug) == "" {
			return nil, fmt.Errorf("post %d (%q): %w", i, p.Title, ErrEmptySlug)
		}
		if _, ok := r.bySlug[p.Slug]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateSlug, p.Slug)
		}
		r.bySlug[p.Slug] = len(r.posts)
		r.posts = append(r.posts, p.Clone())
	}
	return r, nil
}

// MustRegistry is NewRegistry for fixed fixtures; it panics on invalid input.
func MustRegistry(posts ...api.Post) *Registry {
	r, err := NewRegistry(posts)
	if err != nil {
		panic(err)
	}
	return r
}

// Len returns the number of posts.
func (r *Registry) Len() int { return len(r.posts) }

// Posts returns every post in declared order.
func (r *Registry) Posts() []api.Post {
	out := make([]api.Post, len(r.posts))
	for i, p := range r.posts {
		out[i] = p.Clone()
	}
	return out
}

// Slugs returns the slugs in declared order.
func (r *Registry) Slugs() []string {
	out := make([]string, len(r.posts))
	for i, p := range r.posts {
		out[i] = p.Slug
	}
	return out
}

// Resolve returns the post whose slug equals slug. A miss is reported as a
// *PostNotFoundError, never a panic.
func (r *Registry) Resolve(slug string) (api.Post, error) {
	i, ok := r.bySlug[slug]
	if !ok {
		return api.Post{}, &PostNotFoundError{Slug: slug}
	}
	return r.posts[i].Clone(), nil
}

// Tags returns the distinct tags of all posts in first-seen order.
func (r *Registry) Tags() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, p := range r.posts {
		for _, t := range p.Tags {
			k := strings.ToLower(t)
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			out = append(out, t)
		}
	}
	return out
}

// WithTag returns the posts carrying tag, in declared order.
func (r *Registry) WithTag(tag string) []api.Post {
	var out []api.Post
	for _, p := range r.posts {
		if p.HasTag(tag) {
			out = append(out, p.Clone())
		}
	}
	return out
}

// Suggest returns up to n slugs that fuzzy-match slug, best first.
func (r *Registry) Suggest(slug string, n int) []string {
	slug = strings.TrimSpace(slug)
	if slug == "" || n <= 0 {
		return nil
	}
	return util.ScoreCompletions(slug, r.Slugs(), n)
}
