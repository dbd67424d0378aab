// Package storage hides whether uploaded media lives on local disk or in the
// object store. The backend is selected once at startup from configuration
// and is immutable for the process lifetime.
package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"KaraFM/config"

	"github.com/google/uuid"
)

// FileKind names the category of an uploaded file. The kind fixes the URL
// prefix, the size limit and the accepted content types.
type FileKind int

const (
	KindSongAudio FileKind = iota
	KindRecording
	KindImage
	KindPodcast
)

// URLPrefix is the fixed public prefix files of this kind are served under.
func (k FileKind) URLPrefix() string {
	switch k {
	case KindSongAudio:
		return "/audio"
	case KindRecording:
		return "/recordings"
	case KindImage:
		return "/images"
	case KindPodcast:
		return "/podcasts"
	default:
		return "/files"
	}
}

// MaxSize is the upload size limit in bytes for this kind.
func (k FileKind) MaxSize() int64 {
	switch k {
	case KindSongAudio:
		return 100 << 20
	case KindRecording:
		return 50 << 20
	case KindImage:
		return 10 << 20
	case KindPodcast:
		return 200 << 20
	default:
		return 10 << 20
	}
}

// AllowedTypes is the MIME allow-list for this kind.
func (k FileKind) AllowedTypes() []string {
	switch k {
	case KindImage:
		return []string{"image/jpeg", "image/png", "image/webp"}
	default:
		return []string{
			"audio/mp3", "audio/mpeg",
			"audio/wav", "audio/x-wav",
			"audio/ogg", "audio/webm",
		}
	}
}

func (k FileKind) String() string {
	return strings.TrimPrefix(k.URLPrefix(), "/")
}

// StoredFile pairs a stored object's generated name with the public URL
// recorded at upload time. ResolveURL is a pure function of this value; no
// backend call happens at resolution time.
type StoredFile struct {
	Kind FileKind
	Name string
	URL  string
}

// Store is the single capability interface both backends implement.
type Store interface {
	// Upload persists the content and returns the stored file descriptor.
	// Exactly one physical file exists on success, zero on failure.
	Upload(ctx context.Context, kind FileKind, originalName, contentType string, r io.Reader, size int64) (*StoredFile, error)
	// ResolveURL returns the caller-facing URL for a stored file.
	ResolveURL(f *StoredFile) string
	// Delete removes the file a URL points at. A missing file is treated
	// as success so cleanup stays idempotent.
	Delete(ctx context.Context, url string) error
	// Mode reports "local" or "cloud".
	Mode() string
}

// NewStore selects the backend from configuration. Called once at startup;
// the choice never changes afterwards.
func NewStore(cfg *config.Config) (Store, error) {
	switch cfg.StorageMode {
	case config.StorageModeLocal:
		return NewLocalStore(cfg)
	case config.StorageModeCloud:
		return NewMinioStore(cfg)
	default:
		return nil, fmt.Errorf("unknown storage mode %q", cfg.StorageMode)
	}
}

var safeExt = regexp.MustCompile(`^\.[a-zA-Z0-9]{1,8}$`)

// GenerateFileName builds a collision-resistant stored name from the upload's
// original name: nanosecond timestamp plus a uuid fragment, preserving a
// recognizable extension.
func GenerateFileName(originalName string) string {
	ext := strings.ToLower(filepath.Ext(originalName))
	if !safeExt.MatchString(ext) {
		ext = ".bin"
	}
	suffix := strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
	return fmt.Sprintf("%d-%s%s", time.Now().UnixNano(), suffix, ext)
}
