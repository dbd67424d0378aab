package server

import (
	"context"

	"KaraFM/repository"
	"KaraFM/storage"
)

// CollectFileRefs builds the referenced-file set for the orphan sweep: every
// URL any song, recording, podcast or avatar currently points at. A file not
// in this set and older than the grace window has no owner left.
func CollectFileRefs(
	songRepo repository.SongRepository,
	recordingRepo repository.RecordingRepository,
	podcastRepo *repository.PodcastRepository,
	userRepo repository.UserRepository,
) storage.RefCollector {
	return func(ctx context.Context) (map[string]struct{}, error) {
		refs := make(map[string]struct{})

		collectors := []func() ([]string, error){
			songRepo.AllFileURLs,
			recordingRepo.AllFileURLs,
			podcastRepo.AllFileURLs,
			userRepo.AllAvatarURLs,
		}
		for _, collect := range collectors {
			urls, err := collect()
			if err != nil {
				return nil, err
			}
			for _, u := range urls {
				refs[u] = struct{}{}
			}
		}
		return refs, nil
	}
}
