// Package web holds the feed page and its assets, embedded into the binary.
package web

import (
	"embed"
	"io/fs"
)

//go:embed templates static
var assets embed.FS

// Templates returns the page templates, rooted so index.html is at the top
func Templates() fs.FS {
	return sub("templates")
}

// Static returns the files served under /static/
func Static() fs.FS {
	return sub("static")
}

func sub(dir string) fs.FS {
	f, err := fs.Sub(assets, dir)
	if err != nil {
		// dir is one of the embedded directories above
		panic(err)
	}
	return f
}
