package httpserver

import (
	"io/fs"
	"net/http"
	"path"
	"strings"
)

// indexOnlyFS hides directories that have no index.html, so the file server
// never renders a directory listing
type indexOnlyFS struct {
	fs http.FileSystem
}

func (s indexOnlyFS) Open(name string) (http.File, error) {
	f, err := s.fs.Open(name)
	if err != nil {
		return nil, err
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if !info.IsDir() {
		return f, nil
	}

	index, err := s.fs.Open(path.Join(name, "index.html"))
	if err != nil {
		f.Close()
		return nil, fs.ErrNotExist
	}
	index.Close()
	return f, nil
}

// staticHandler serves dir. Requests for .../index.html are answered in
// place instead of being redirected to the directory.
func staticHandler(dir string) http.Handler {
	files := http.FileServer(indexOnlyFS{fs: http.Dir(dir)})

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/index.html") {
			r = r.Clone(r.Context())
			r.URL.Path = strings.TrimSuffix(r.URL.Path, "index.html")
			r.URL.RawPath = ""
		}
		files.ServeHTTP(w, r)
	})
}
