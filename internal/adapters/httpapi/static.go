package httpapi

import (
	_ "embed"
	"io/fs"
	"net/http"
	"path"
	"strings"
)

//go:embed public/index.html
var defaultIndex []byte

// staticHandler serves files from dir and falls back to index.html for any other GET.
// Non-GET requests that reach it get a JSON 404.
type staticHandler struct {
	dir fs.FS
}

func newStaticHandler(dir fs.FS) http.Handler {
	return staticHandler{dir: dir}
}

func (h staticHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		writeError(w, r, http.StatusNotFound, "Not found", "No route for "+r.Method+" "+r.URL.Path)
		return
	}

	if h.dir != nil {
		name := strings.TrimPrefix(path.Clean("/"+r.URL.Path), "/")
		if name != "" && name != "index.html" {
			if st, err := fs.Stat(h.dir, name); err == nil && !st.IsDir() {
				http.ServeFileFS(w, r, h.dir, name)
				return
			}
		}
		if b, err := fs.ReadFile(h.dir, "index.html"); err == nil {
			writeIndex(w, r, b)
			return
		}
	}
	writeIndex(w, r, defaultIndex)
}

func writeIndex(w http.ResponseWriter, r *http.Request, b []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if r.Method != http.MethodHead {
		_, _ = w.Write(b)
	}
}
