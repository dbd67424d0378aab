package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"KaraFM/logger"

	"github.com/fsnotify/fsnotify"
	"github.com/minio/minio-go/v7"
)

// RefCollector returns the set of file URLs currently referenced by any
// domain entity (songs, recordings, podcast episodes, covers, avatars).
type RefCollector func(ctx context.Context) (map[string]struct{}, error)

// Sweeper reclaims stored files no longer referenced by any document.
// Cascading deletes treat file removal as best-effort, so orphans accumulate
// over time; the sweep is the explicit reconciliation pass for them.
type Sweeper struct {
	store   Store
	collect RefCollector
	grace   time.Duration

	watcher *fsnotify.Watcher
	fresh   chan string
	recent  map[string]time.Time
}

// NewSweeper builds a sweeper over the selected store. Files younger than
// grace are never reclaimed, whatever the reference set says.
func NewSweeper(store Store, collect RefCollector, grace time.Duration) *Sweeper {
	return &Sweeper{
		store:   store,
		collect: collect,
		grace:   grace,
		fresh:   make(chan string, 256),
		recent:  make(map[string]time.Time),
	}
}

// Watch starts an fsnotify watcher over the local upload directories so
// files observed mid-write are always inside the grace window when a sweep
// runs concurrently. Only meaningful in local mode; cloud objects carry a
// server-side LastModified instead.
func (s *Sweeper) Watch(ctx context.Context) error {
	ls, ok := s.store.(*LocalStore)
	if !ok {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	s.watcher = watcher

	for _, kind := range []FileKind{KindSongAudio, KindRecording, KindImage, KindPodcast} {
		if err := watcher.Add(ls.Dir(kind)); err != nil {
			watcher.Close()
			return err
		}
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Create|fsnotify.Write) != 0 {
					select {
					case s.fresh <- event.Name:
					default:
					}
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("sweeper watcher error", logger.ErrorField(err))
			}
		}
	}()
	return nil
}

func (s *Sweeper) drainFresh(now time.Time) {
	for {
		select {
		case p := <-s.fresh:
			s.recent[p] = now
		default:
			for p, seen := range s.recent {
				if now.Sub(seen) > s.grace {
					delete(s.recent, p)
				}
			}
			return
		}
	}
}

// Sweep runs one reconciliation pass and returns how many files were
// reclaimed.
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	refs, err := s.collect(ctx)
	if err != nil {
		return 0, err
	}

	switch store := s.store.(type) {
	case *LocalStore:
		return s.sweepLocal(ctx, store, refs)
	case *MinioStore:
		return s.sweepCloud(ctx, store, refs)
	default:
		return 0, nil
	}
}

func (s *Sweeper) sweepLocal(ctx context.Context, store *LocalStore, refs map[string]struct{}) (int, error) {
	now := time.Now()
	s.drainFresh(now)

	removed := 0
	for _, kind := range []FileKind{KindSongAudio, KindRecording, KindImage, KindPodcast} {
		dir := store.Dir(kind)
		entries, err := os.ReadDir(dir)
		if err != nil {
			logger.Warn("sweep: cannot read directory", logger.String("dir", dir), logger.ErrorField(err))
			continue
		}
		for _, entry := range entries {
			if entry.IsDir() || strings.HasSuffix(entry.Name(), ".part") {
				continue
			}
			fullPath := filepath.Join(dir, entry.Name())
			if _, isFresh := s.recent[fullPath]; isFresh {
				continue
			}
			info, err := entry.Info()
			if err != nil || now.Sub(info.ModTime()) < s.grace {
				continue
			}
			url := kind.URLPrefix() + "/" + entry.Name()
			if _, referenced := refs[url]; referenced {
				continue
			}
			if err := os.Remove(fullPath); err != nil {
				logger.Warn("sweep: failed to remove orphan", logger.String("path", fullPath), logger.ErrorField(err))
				continue
			}
			logger.Info("sweep: removed orphan file", logger.String("url", url))
			removed++
		}
	}
	return removed, nil
}

func (s *Sweeper) sweepCloud(ctx context.Context, store *MinioStore, refs map[string]struct{}) (int, error) {
	now := time.Now()
	removed := 0
	for _, kind := range []FileKind{KindSongAudio, KindRecording, KindImage, KindPodcast} {
		prefix := kind.String() + "/"
		objects := store.Client().ListObjects(ctx, store.Bucket(), minio.ListObjectsOptions{Prefix: prefix, Recursive: true})
		for object := range objects {
			if object.Err != nil {
				logger.Warn("sweep: list error", logger.String("prefix", prefix), logger.ErrorField(object.Err))
				continue
			}
			if now.Sub(object.LastModified) < s.grace {
				continue
			}
			url := store.publicURL + "/" + object.Key
			if _, referenced := refs[url]; referenced {
				continue
			}
			if err := store.Client().RemoveObject(ctx, store.Bucket(), object.Key, minio.RemoveObjectOptions{}); err != nil {
				logger.Warn("sweep: failed to remove orphan object", logger.String("key", object.Key), logger.ErrorField(err))
				continue
			}
			logger.Info("sweep: removed orphan object", logger.String("key", object.Key))
			removed++
		}
	}
	return removed, nil
}
