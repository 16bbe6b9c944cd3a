package format

import (
	"fmt"
	"io"
	"strings"

	"github.com/mithrel/homepage/internal/render"
	"github.com/mithrel/homepage/pkg/api"
)

// WritePrettyPost renders a post for the terminal with glamour.
func WritePrettyPost(w io.Writer, p api.Post, style string, width int) error {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", p.Title)
	if p.Date != "" || len(p.Tags) > 0 {
		fmt.Fprintf(&b, "> **Date:** %s | **Tags:** %s\n\n---\n\n", p.Date, strings.Join(p.Tags, ", "))
	}
	b.WriteString(strings.TrimSpace(p.Content))
	b.WriteString("\n")

	out, err := render.Terminal(b.String(), style, width)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}

// WriteHTMLPost writes the post body as the HTML fragment the site serves.
func WriteHTMLPost(w io.Writer, p api.Post, r render.HTML) error {
	_, err := io.WriteString(w, string(r.Render(p.Content)))
	return err
}
