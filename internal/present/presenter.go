// Package present writes posts to a terminal or pipe in the format the user
// asked for.
package present

import (
	"context"
	"errors"
	"io"

	"github.com/mithrel/homepage/internal/present/format"
	"github.com/mithrel/homepage/internal/render"
	"github.com/mithrel/homepage/internal/ui"
	"github.com/mithrel/homepage/pkg/api"
)

type Mode int

const (
	ModePlain Mode = iota
	ModePretty
	ModeJSON
	ModeNDJSON
	ModeTUI
	ModeHTML
)

type Options struct {
	Mode       Mode
	JSONIndent bool
	Headers    bool
	// Style and Width apply to pretty output.
	Style string
	Width int
	// Renderer produces ModeHTML output.
	Renderer render.HTML
}

// ParseMode parses "plain", "pretty", "json", "ndjson", "tui" or "html".
func ParseMode(s string) (Mode, bool) {
	switch s {
	case "plain":
		return ModePlain, true
	case "pretty":
		return ModePretty, true
	case "json":
		return ModeJSON, true
	case "ndjson":
		return ModeNDJSON, true
	case "tui":
		return ModeTUI, true
	case "html":
		return ModeHTML, true
	default:
		return ModePlain, false
	}
}

// RenderPosts renders a post listing according to options.
func RenderPosts(ctx context.Context, w io.Writer, posts []api.Post, opts Options) error {
	switch opts.Mode {
	case ModeJSON:
		return format.WriteJSONPosts(w, posts, opts.JSONIndent)
	case ModeNDJSON:
		return format.WriteNDJSONPosts(w, posts)
	case ModeTUI:
		// the post picked in the table is shown pretty once the table closes
		slug, err := ui.RenderPostsTable(ctx, posts, opts.Headers)
		if err != nil || slug == "" {
			return err
		}
		for _, p := range posts {
			if p.Slug == slug {
				return format.WritePrettyPost(w, p, opts.Style, opts.Width)
			}
		}
		return nil
	case ModeHTML:
		return errors.New("html output is only available for a single post")
	default:
		return format.WritePlainPosts(w, posts, opts.Headers)
	}
}

// RenderPost renders a single post according to options.
func RenderPost(ctx context.Context, w io.Writer, p api.Post, opts Options) error {
	switch opts.Mode {
	case ModeJSON:
		return format.WriteJSONPost(w, p, opts.JSONIndent)
	case ModeNDJSON:
		return format.WriteNDJSONPost(w, p)
	case ModePretty:
		return format.WritePrettyPost(w, p, opts.Style, opts.Width)
	case ModeHTML:
		if opts.Renderer == nil {
			return errors.New("html output needs a renderer")
		}
		return format.WriteHTMLPost(w, p, opts.Renderer)
	case ModeTUI:
		return errors.New("tui output is only available for post listings")
	default:
		return format.WritePlainPost(w, p, opts.Headers)
	}
}
