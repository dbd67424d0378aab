// Package lyrics resolves what a client should see for a song's lyrics.
// Precedence is fixed: stored text first, then an external reference
// descriptor, finally a generated placeholder. Nothing here is cached; the
// stored text is the source of truth and is rechecked on every call.
package lyrics

import (
	"context"
	"strings"

	"KaraFM/logger"
	"KaraFM/model"
)

// ExternalLookup searches an external lyrics service by artist and title.
// (nil, nil) means no match.
type ExternalLookup interface {
	Search(ctx context.Context, artist, title string) (*model.LyricsReference, error)
}

type Resolver struct {
	external ExternalLookup
}

func NewResolver(external ExternalLookup) *Resolver {
	return &Resolver{external: external}
}

// Resolve never fails: an upstream error is absorbed into the next
// precedence tier rather than propagated.
func (r *Resolver) Resolve(ctx context.Context, song *model.Song) *model.LyricsInfo {
	if strings.TrimSpace(song.Lyrics) != "" {
		return &model.LyricsInfo{
			Source: model.LyricsSourceDatabase,
			Text:   song.Lyrics,
		}
	}

	if r.external != nil {
		ref, err := r.external.Search(ctx, song.Artist, song.Title)
		if err != nil {
			logger.Warn("external lyrics lookup failed, falling back to sample",
				logger.Int64("songId", song.ID),
				logger.ErrorField(err),
			)
		} else if ref != nil {
			return &model.LyricsInfo{
				Source:    model.LyricsSourceExternal,
				Reference: ref,
			}
		}
	}

	return &model.LyricsInfo{
		Source:    model.LyricsSourceSample,
		Structure: SampleStructure(song.Title),
	}
}
