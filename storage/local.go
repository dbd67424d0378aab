package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"KaraFM/config"
	"KaraFM/logger"
)

// LocalStore keeps uploads on the local filesystem under the configured
// upload directories and serves them root-relative (/audio/<name>, ...).
type LocalStore struct {
	dirs map[FileKind]string
}

// NewLocalStore creates the upload directories if needed.
func NewLocalStore(cfg *config.Config) (*LocalStore, error) {
	dirs := map[FileKind]string{
		KindSongAudio: cfg.AudioUploadDir,
		KindRecording: cfg.RecordingUploadDir,
		KindImage:     cfg.ImageUploadDir,
		KindPodcast:   cfg.PodcastUploadDir,
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create upload directory %s: %w", dir, err)
		}
	}
	return &LocalStore{dirs: dirs}, nil
}

func (s *LocalStore) Mode() string { return config.StorageModeLocal }

// Dir returns the on-disk directory for a kind. Used by the static file
// server and the orphan sweeper.
func (s *LocalStore) Dir(kind FileKind) string { return s.dirs[kind] }

// Upload writes to a staging file first and renames into place, so a failed
// write never leaves a half-written file at a discoverable path.
func (s *LocalStore) Upload(ctx context.Context, kind FileKind, originalName, contentType string, r io.Reader, size int64) (*StoredFile, error) {
	name := GenerateFileName(originalName)
	finalPath := filepath.Join(s.dirs[kind], name)
	stagingPath := finalPath + ".part"

	dest, err := os.Create(stagingPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create staging file %s: %w", stagingPath, err)
	}

	if _, err = io.Copy(dest, r); err != nil {
		dest.Close()
		os.Remove(stagingPath)
		return nil, fmt.Errorf("failed to write uploaded file %s: %w", stagingPath, err)
	}
	if err = dest.Close(); err != nil {
		os.Remove(stagingPath)
		return nil, fmt.Errorf("failed to close staging file %s: %w", stagingPath, err)
	}

	if err = os.Rename(stagingPath, finalPath); err != nil {
		os.Remove(stagingPath)
		return nil, fmt.Errorf("failed to finalize uploaded file %s: %w", finalPath, err)
	}

	return &StoredFile{
		Kind: kind,
		Name: name,
		URL:  kind.URLPrefix() + "/" + name,
	}, nil
}

// ResolveURL is a pure function of the stored result.
func (s *LocalStore) ResolveURL(f *StoredFile) string { return f.URL }

// Delete maps the URL back to a filesystem path and unlinks it. Missing
// files count as success.
func (s *LocalStore) Delete(ctx context.Context, url string) error {
	p, err := s.pathForURL(url)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to delete %s: %w", p, err)
	}
	logger.Debug("deleted local file", logger.String("path", p))
	return nil
}

func (s *LocalStore) pathForURL(url string) (string, error) {
	for kind, dir := range s.dirs {
		prefix := kind.URLPrefix() + "/"
		if !strings.HasPrefix(url, prefix) {
			continue
		}
		name := strings.TrimPrefix(url, prefix)
		// stored names never contain separators; reject traversal
		if name == "" || name != path.Base(name) {
			return "", fmt.Errorf("invalid stored file url %q", url)
		}
		return filepath.Join(dir, name), nil
	}
	return "", fmt.Errorf("url %q does not map to a storage directory", url)
}
