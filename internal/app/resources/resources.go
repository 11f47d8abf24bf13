// Package resources embeds the console layout templates and its static
// stylesheet and script.
package resources

import (
	"embed"
	"io/fs"
	"net/http"
	"sync"

	"github.com/dalemusser/waffle/pantry/templates"
)

//go:embed templates/*.gohtml
var layoutFS embed.FS

//go:embed assets/css/*.css assets/js/*.js
var embedded embed.FS

var assets = func() fs.FS {
	sub, err := fs.Sub(embedded, "assets")
	if err != nil {
		panic("resources: " + err.Error())
	}
	return sub
}()

var sharedOnce sync.Once

// pagePatterns is where every feature package keeps its page templates.
var pagePatterns = []string{"templates/*.gohtml"}

// RegisterPages adds a feature's embedded page templates under name. Feature
// packages call it from init.
func RegisterPages(name string, pages embed.FS) {
	templates.Register(templates.Set{Name: name, FS: pages, Patterns: pagePatterns})
}

// LoadSharedTemplates registers the layout and menu. Call before the engine
// boots; repeat calls are ignored.
func LoadSharedTemplates() {
	sharedOnce.Do(func() {
		RegisterPages("shared", layoutFS)
	})
}

// AssetsHandler serves css/ and js/ under prefix, e.g. /assets/css/console.css.
// Assets change only with a deploy, so browsers may keep them for a day.
func AssetsHandler(prefix string) http.Handler {
	files := http.StripPrefix(prefix, http.FileServer(http.FS(assets)))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=86400")
		files.ServeHTTP(w, r)
	})
}
