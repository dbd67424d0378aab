package server

import (
	"net/http"
	"strings"

	"KaraFM/storage"

	"github.com/gorilla/mux"
	"github.com/minio/minio-go/v7"
)

// registerMediaRoutes mounts the media-serving routes for the selected
// backend. Local mode serves upload directories straight from disk under
// their fixed prefixes; cloud mode proxies object reads so clients behind a
// firewall can still stream without reaching the object store directly.
func (h *APIHandler) registerMediaRoutes(router *mux.Router) {
	kinds := []storage.FileKind{
		storage.KindSongAudio,
		storage.KindRecording,
		storage.KindImage,
		storage.KindPodcast,
	}

	switch store := h.store.(type) {
	case *storage.LocalStore:
		for _, kind := range kinds {
			prefix := kind.URLPrefix() + "/"
			router.PathPrefix(prefix).Handler(
				http.StripPrefix(prefix, localMediaHandler(store.Dir(kind))),
			)
		}
	case *storage.MinioStore:
		for _, kind := range kinds {
			router.PathPrefix(kind.URLPrefix() + "/").HandlerFunc(h.proxyObjectHandler(store, kind))
		}
	}
}

// localMediaHandler serves single files out of one upload directory. Stored
// names never contain separators, so anything else is refused: no directory
// listings, no subpaths, and no in-flight .part staging files.
func localMediaHandler(dir string) http.Handler {
	fs := http.FileServer(http.Dir(dir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(r.URL.Path, "/")
		if name == "" || strings.Contains(name, "/") || strings.HasSuffix(name, ".part") {
			http.NotFound(w, r)
			return
		}
		fs.ServeHTTP(w, r)
	})
}

// proxyObjectHandler streams one object out of the bucket. minio.Object is a
// ReadSeeker, so ServeContent gets range requests for free.
func (h *APIHandler) proxyObjectHandler(store *storage.MinioStore, kind storage.FileKind) http.HandlerFunc {
	prefix := kind.URLPrefix() + "/"
	return func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(r.URL.Path, prefix)
		if name == "" || strings.Contains(name, "/") {
			http.NotFound(w, r)
			return
		}
		key := kind.String() + "/" + name

		obj, err := store.Client().GetObject(r.Context(), store.Bucket(), key, minio.GetObjectOptions{})
		if err != nil {
			http.NotFound(w, r)
			return
		}
		defer obj.Close()

		stat, err := obj.Stat()
		if err != nil {
			http.NotFound(w, r)
			return
		}

		if stat.ContentType != "" {
			w.Header().Set("Content-Type", stat.ContentType)
		}
		http.ServeContent(w, r, name, stat.LastModified, obj)
	}
}
