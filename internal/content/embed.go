package content

import (
	"embed"
	"io/fs"
)

//go:embed site
var embedded embed.FS

// Embedded returns the built-in content tree (posts.yaml, home.md, posts/).
func Embedded() fs.FS {
	sub, err := fs.Sub(embedded, "site")
	if err != nil {
		panic(err)
	}
	return sub
}
