package site

import (
	"embed"
	"io/fs"
)

//go:embed static/* templates/*.html content/*.md
var assets embed.FS

// FS returns the static asset tree served under /static/.
func FS() fs.FS {
	sub, err := fs.Sub(assets, "static")
	if err != nil {
		return assets
	}
	return sub
}
