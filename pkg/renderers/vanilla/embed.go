package vanilla

import (
	"embed"
	"io/fs"
	"sync"
)

// StylesheetName is the file inlined into document pages and served by the
// HTTP server under its assets path.
const StylesheetName = "formset.css"

//go:embed templates/*.tmpl assets/*
var bundle embed.FS

// TemplatesFS returns the built-in templates rooted so that names read
// "templates/<name>.tmpl". Directory overrides use the same layout.
func TemplatesFS() fs.FS { return bundle }

// AssetsFS returns the static files with the assets/ prefix stripped.
func AssetsFS() fs.FS {
	assets, _ := fs.Sub(bundle, "assets")
	return assets
}

var defaultStylesheet = sync.OnceValue(func() string {
	css, err := fs.ReadFile(bundle, "assets/"+StylesheetName)
	if err != nil {
		return ""
	}
	return string(css)
})
