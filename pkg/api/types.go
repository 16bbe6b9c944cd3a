package api

import "strings"

// Post is one blog entry: display metadata plus the raw markdown source.
// Values are treated as immutable once built by a content source.
type Post struct {
	Date        string   `json:"date" yaml:"date"`
	Title       string   `json:"title" yaml:"title"`
	Description string   `json:"description,omitempty" yaml:"description"`
	Slug        string   `json:"slug" yaml:"slug"`
	Content     string   `json:"content" yaml:"-"`
	Tags        []string `json:"tags" yaml:"tags"`
}

// Clone returns a copy that shares no slices with p.
func (p Post) Clone() Post {
	p.Tags = append([]string{}, p.Tags...)
	return p
}

// HasTag reports whether p carries tag (case-insensitive).
func (p Post) HasTag(tag string) bool {
	tag = strings.TrimSpace(tag)
	for _, t := range p.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// PostSummary is the listing view of a Post, without the markdown body.
type PostSummary struct {
	Date        string   `json:"date"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Slug        string   `json:"slug"`
	Tags        []string `json:"tags"`
}

func (p Post) Summary() PostSummary {
	return PostSummary{
		Date:        p.Date,
		Title:       p.Title,
		Description: p.Description,
		Slug:        p.Slug,
		Tags:        append([]string{}, p.Tags...),
	}
}
