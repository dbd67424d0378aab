package lyrics

import (
	"context"
	"errors"
	"testing"

	"KaraFM/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubLookup struct {
	ref   *model.LyricsReference
	err   error
	calls int
}

func (s *stubLookup) Search(ctx context.Context, artist, title string) (*model.LyricsReference, error) {
	s.calls++
	return s.ref, s.err
}

func TestResolveStoredTextWinsVerbatim(t *testing.T) {
	lookup := &stubLookup{ref: &model.LyricsReference{URL: "https://example.com"}}
	r := NewResolver(lookup)

	song := &model.Song{ID: 1, Title: "Song", Artist: "Artist", Lyrics: "line one\nline two"}
	info := r.Resolve(context.Background(), song)

	assert.Equal(t, model.LyricsSourceDatabase, info.Source)
	assert.Equal(t, "line one\nline two", info.Text)
	assert.Zero(t, lookup.calls, "stored text must short-circuit the external lookup")
}

func TestResolveWhitespaceLyricsCountAsAbsent(t *testing.T) {
	r := NewResolver(nil)
	song := &model.Song{ID: 2, Title: "Blank", Lyrics: "  \n\t "}
	info := r.Resolve(context.Background(), song)
	assert.Equal(t, model.LyricsSourceSample, info.Source)
}

func TestResolveExternalMatch(t *testing.T) {
	ref := &model.LyricsReference{ID: "42", URL: "https://genius.test/song", Title: "Song"}
	r := NewResolver(&stubLookup{ref: ref})

	info := r.Resolve(context.Background(), &model.Song{ID: 3, Title: "Song", Artist: "Artist"})
	require.Equal(t, model.LyricsSourceExternal, info.Source)
	assert.Equal(t, ref, info.Reference)
	assert.Empty(t, info.Text)
}

func TestResolveExternalFailureFallsBackToSample(t *testing.T) {
	r := NewResolver(&stubLookup{err: errors.New("upstream down")})

	info := r.Resolve(context.Background(), &model.Song{ID: 4, Title: "My Song"})
	require.Equal(t, model.LyricsSourceSample, info.Source)
	require.Len(t, info.Structure, 6)
}

func TestSampleStructureShape(t *testing.T) {
	sections := SampleStructure("My Song")
	require.Len(t, sections, 6)

	wantKinds := []string{"verse", "chorus", "verse", "chorus", "bridge", "outro"}
	for i, section := range sections {
		assert.Equal(t, wantKinds[i], section.Kind)
		require.Len(t, section.Lines, 4)
	}
	assert.Equal(t, "La la la, sing along to My Song (verse 1, line 1)", sections[0].Lines[0])
	assert.Equal(t, "La la la, sing along to My Song (outro 6, line 4)", sections[5].Lines[3])
}
