package fetchforms

import (
	"embed"
	"io/fs"
)

//go:embed assets/*.html
var embeddedAssets embed.FS

// AssetsFS exposes the bundled demo pages so applications and the CLI can
// serve them next to the echo backend.
//
// Typical mount:
//
//	mux.Handle("/", http.FileServerFS(fetchforms.AssetsFS()))
func AssetsFS() fs.FS {
	sub, err := fs.Sub(embeddedAssets, "assets")
	if err != nil {
		return embeddedAssets
	}
	return sub
}

// DemoPage returns the markup of the demo page.
func DemoPage() ([]byte, error) {
	return fs.ReadFile(AssetsFS(), "demo.html")
}
