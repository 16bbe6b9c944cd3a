package api

import (
	"encoding/binary"
	"encoding/hex"
	"io"

	"github.com/zeebo/blake3"
)

// writeField writes s with a big-endian uint64 length prefix, so distinct
// field splits never share an encoding.
func writeField(w io.Writer, s string) {
	_ = binary.Write(w, binary.BigEndian, uint64(len(s)))
	_, _ = io.WriteString(w, s)
}

// Hash returns a deterministic BLAKE3 hash of every field of the post.
// Tag order is significant since it is display order.
func (p Post) Hash() string {
	h := blake3.New()
	for _, field := range []string{p.Slug, p.Date, p.Title, p.Description, p.Content} {
		writeField(h, field)
	}
	_ = binary.Write(h, binary.BigEndian, uint64(len(p.Tags)))
	for _, t := range p.Tags {
		writeField(h, t)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// ETag is Hash shortened and quoted for use in an HTTP ETag header.
func (p Post) ETag() string {
	return `"` + p.Hash()[:32] + `"`
}

// ETagWith is ETag for a rendering of the post that also depends on seed,
// for example the page layout and renderer settings.
func (p Post) ETagWith(seed string) string {
	h := blake3.New()
	writeField(h, p.Hash())
	writeField(h, seed)
	return `"` + hex.EncodeToString(h.Sum(nil))[:32] + `"`
}
