package format

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/mithrel/homepage/pkg/api"
)

// TSV columns: slug, title, date, tags
const headerLine = "slug\ttitle\tdate\ttags\n"

func esc(field string) string {
	field = strings.ReplaceAll(field, "\t", "\\t")
	field = strings.ReplaceAll(field, "\n", "\\n")
	return field
}

func joinTags(tags []string) string {
	return strings.Join(tags, ",")
}

func WritePlainPosts(w io.Writer, posts []api.Post, headers bool) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if headers {
		_, _ = io.WriteString(tw, headerLine)
	}
	for _, p := range posts {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", esc(p.Slug), esc(p.Title), esc(p.Date), esc(joinTags(p.Tags)))
	}
	return tw.Flush()
}

// WritePlainPost prints the post metadata followed by the raw markdown.
func WritePlainPost(w io.Writer, p api.Post, headers bool) error {
	if headers {
		_, err := fmt.Fprintf(w, "Slug: %s\nTitle: %s\nDate: %s\nTags: %s\n---\n", p.Slug, p.Title, p.Date, strings.Join(p.Tags, ", "))
		if err != nil {
			return err
		}
	}
	body := p.Content
	if !strings.HasSuffix(body, "\n") {
		body += "\n"
	}
	_, err := io.WriteString(w, body)
	return err
}
