package controllers

import (
	"io/fs"
	"net/http"
	"strings"
)

// StaticAssets serves uploaded files from dir under prefix. Directories are
// reported as missing, so no listing is ever rendered.
func StaticAssets(prefix, dir string) http.Handler {
	files := http.FileServer(filesOnly{root: http.Dir(dir)})
	return http.StripPrefix(strings.TrimSuffix(prefix, "/"), http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		files.ServeHTTP(w, r)
	}))
}

type filesOnly struct {
	root http.FileSystem
}

func (f filesOnly) Open(name string) (http.File, error) {
	file, err := f.root.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, err
	}
	if info.IsDir() {
		file.Close()
		return nil, fs.ErrNotExist
	}
	return file, nil
}
