package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeAged(t *testing.T, dir, name string, age time.Duration) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte("x"), 0644))
	old := time.Now().Add(-age)
	require.NoError(t, os.Chtimes(p, old, old))
	return p
}

func staticRefs(urls ...string) RefCollector {
	return func(ctx context.Context) (map[string]struct{}, error) {
		refs := make(map[string]struct{}, len(urls))
		for _, u := range urls {
			refs[u] = struct{}{}
		}
		return refs, nil
	}
}

func TestSweepReclaimsOnlyOldOrphans(t *testing.T) {
	store, err := NewLocalStore(testConfig(t))
	require.NoError(t, err)
	dir := store.Dir(KindRecording)

	orphanOld := writeAged(t, dir, "orphan-old.webm", 2*time.Hour)
	referenced := writeAged(t, dir, "kept.webm", 2*time.Hour)
	orphanYoung := writeAged(t, dir, "orphan-young.webm", time.Minute)
	staging := writeAged(t, dir, "incoming.webm.part", 2*time.Hour)

	sweeper := NewSweeper(store, staticRefs("/recordings/kept.webm"), time.Hour)
	removed, err := sweeper.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = os.Stat(orphanOld)
	assert.True(t, os.IsNotExist(err), "old orphan must be reclaimed")
	assert.FileExists(t, referenced)
	assert.FileExists(t, orphanYoung, "files inside the grace window stay")
	assert.FileExists(t, staging, "staging files are never swept")
}

func TestWatchKeepsFilesSeenMidWrite(t *testing.T) {
	store, err := NewLocalStore(testConfig(t))
	require.NoError(t, err)

	sweeper := NewSweeper(store, staticRefs(), time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, sweeper.Watch(ctx))

	// written while the watcher runs, then backdated past the grace window:
	// without the fresh-file set the ModTime check alone would reclaim it
	p := writeAged(t, store.Dir(KindRecording), "inflight.webm", 2*time.Hour)

	require.Eventually(t, func() bool {
		return len(sweeper.fresh) > 0
	}, 2*time.Second, 10*time.Millisecond, "watcher must report the new file")

	removed, err := sweeper.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, removed)
	assert.FileExists(t, p)
}

func TestSweepSecondPassIsQuiet(t *testing.T) {
	store, err := NewLocalStore(testConfig(t))
	require.NoError(t, err)
	writeAged(t, store.Dir(KindSongAudio), "stale.mp3", 3*time.Hour)

	sweeper := NewSweeper(store, staticRefs(), time.Hour)

	removed, err := sweeper.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	removed, err = sweeper.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, removed)
}
