package format

import (
	"encoding/json"
	"io"

	"github.com/mithrel/homepage/pkg/api"
)

// WriteNDJSONPosts writes one post summary per line.
func WriteNDJSONPosts(w io.Writer, posts []api.Post) error {
	enc := json.NewEncoder(w)
	for _, p := range posts {
		if err := enc.Encode(p.Summary()); err != nil {
			return err
		}
	}
	return nil
}

// WriteNDJSONPost writes a single post, content included, as one JSON line.
func WriteNDJSONPost(w io.Writer, p api.Post) error {
	return json.NewEncoder(w).Encode(p)
}
