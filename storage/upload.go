package storage

import (
	"net/http"
	"strings"

	"KaraFM/apperr"
	"KaraFM/logger"
)

// maxConcurrentUploads bounds how many uploads stream to the backend at
// once, so one slow upload cannot exhaust the process.
const maxConcurrentUploads = 5

var uploadSemaphore = make(chan struct{}, maxConcurrentUploads)

// Uploader turns an inbound multipart request into a stored file plus a
// caller-facing URL, without leaking the backend choice to callers.
type Uploader struct {
	store Store
}

func NewUploader(store Store) *Uploader {
	return &Uploader{store: store}
}

// Store returns the backend the uploader writes to.
func (u *Uploader) Store() Store { return u.store }

// CheckRequestSize rejects an oversized request before any of its body has
// been read. Form parsing spools file parts to temp files, so this must run
// ahead of the handler's first FormValue/FormFile call. The body is also
// capped, covering chunked requests that carry no Content-Length.
func (u *Uploader) CheckRequestSize(w http.ResponseWriter, r *http.Request, kind FileKind) error {
	limit := kind.MaxSize() + (1 << 20) // multipart framing overhead gets 1MB of slack
	if r.ContentLength > limit {
		return apperr.Validation("request too large: limit is %d MB", kind.MaxSize()>>20)
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	return nil
}

// FromRequest validates and persists the named multipart file field.
// Validation failures are reported before any backend write; exactly one
// physical file exists on success, zero on failure. The whole-request size
// guard is CheckRequestSize, which the handler runs before parsing the form.
func (u *Uploader) FromRequest(r *http.Request, field string, kind FileKind) (*StoredFile, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return nil, apperr.Validation("missing %q file field", field)
	}
	defer file.Close()

	if header.Size > kind.MaxSize() {
		return nil, apperr.Validation("file too large: %d bytes, limit is %d MB", header.Size, kind.MaxSize()>>20)
	}

	contentType := normalizeContentType(header.Header.Get("Content-Type"))
	if !typeAllowed(contentType, kind.AllowedTypes()) {
		return nil, apperr.Validation("unsupported content type %q for %s upload", contentType, kind)
	}

	select {
	case uploadSemaphore <- struct{}{}:
		defer func() { <-uploadSemaphore }()
	case <-r.Context().Done():
		return nil, apperr.Storage(r.Context().Err(), "upload canceled while waiting for a slot")
	}

	stored, err := u.store.Upload(r.Context(), kind, header.Filename, contentType, file, header.Size)
	if err != nil {
		return nil, apperr.Storage(err, "failed to store uploaded file")
	}

	logger.Info("stored uploaded file",
		logger.String("kind", kind.String()),
		logger.String("name", stored.Name),
		logger.Int64("size", header.Size),
		logger.String("mode", u.store.Mode()),
	)
	return stored, nil
}

func normalizeContentType(ct string) string {
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = ct[:i]
	}
	return strings.ToLower(strings.TrimSpace(ct))
}

func typeAllowed(ct string, allowed []string) bool {
	for _, a := range allowed {
		if ct == a {
			return true
		}
	}
	return false
}
