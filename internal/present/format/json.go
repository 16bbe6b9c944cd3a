package format

import (
	"encoding/json"
	"io"

	"github.com/mithrel/homepage/pkg/api"
)

func newEncoder(w io.Writer, indent bool) *json.Encoder {
	enc := json.NewEncoder(w)
	if indent {
		enc.SetIndent("", "  ")
	}
	return enc
}

// WriteJSONPosts writes the listing view of posts as one JSON array.
func WriteJSONPosts(w io.Writer, posts []api.Post, indent bool) error {
	out := make([]api.PostSummary, len(posts))
	for i, p := range posts {
		out[i] = p.Summary()
	}
	return newEncoder(w, indent).Encode(out)
}

func WriteJSONPost(w io.Writer, p api.Post, indent bool) error {
	return newEncoder(w, indent).Encode(p)
}
