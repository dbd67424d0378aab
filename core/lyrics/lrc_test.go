package lyrics

import (
	"testing"

	"KaraFM/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLRC(t *testing.T) {
	text := "[00:12.50]first line\n[00:17]second line\nmetadata without tag\n[01:02.5]third line"
	lines := ParseLRC(text)
	require.Len(t, lines, 3)

	assert.Equal(t, int64(12_500), lines[0].AtMs)
	assert.Equal(t, "first line", lines[0].Text)
	assert.Equal(t, int64(17_000), lines[1].AtMs)
	// ".5" pads to 500ms
	assert.Equal(t, int64(62_500), lines[2].AtMs)
}

func TestParseLRCMultipleTagsPerLine(t *testing.T) {
	lines := ParseLRC("[00:10][00:40]repeated chorus")
	require.Len(t, lines, 2)
	assert.Equal(t, int64(10_000), lines[0].AtMs)
	assert.Equal(t, int64(40_000), lines[1].AtMs)
	assert.Equal(t, "repeated chorus", lines[1].Text)
}

func TestParseLRCNoTimestamps(t *testing.T) {
	assert.Nil(t, ParseLRC("just\nplain\ntext"))
}

func TestTimedLinesPrefersLRCTimestamps(t *testing.T) {
	info := &model.LyricsInfo{
		Source: model.LyricsSourceDatabase,
		Text:   "[00:05]hello\n[00:09]world",
	}
	lines := TimedLines(info, 200)
	require.Len(t, lines, 2)
	assert.Equal(t, int64(5_000), lines[0].AtMs)
	assert.Equal(t, int64(9_000), lines[1].AtMs)
}

func TestTimedLinesSpreadsPlainTextEvenly(t *testing.T) {
	info := &model.LyricsInfo{
		Source: model.LyricsSourceDatabase,
		Text:   "one\ntwo\nthree\nfour",
	}
	lines := TimedLines(info, 40)
	require.Len(t, lines, 4)
	assert.Equal(t, int64(0), lines[0].AtMs)
	assert.Equal(t, int64(10_000), lines[1].AtMs)
	assert.Equal(t, int64(30_000), lines[3].AtMs)
}

func TestTimedLinesSampleFallbackDuration(t *testing.T) {
	info := &model.LyricsInfo{
		Source:    model.LyricsSourceSample,
		Structure: SampleStructure("Song"),
	}
	// zero duration falls back to four seconds a line
	lines := TimedLines(info, 0)
	require.Len(t, lines, 24)
	assert.Equal(t, int64(0), lines[0].AtMs)
	assert.Equal(t, int64(4_000), lines[1].AtMs)
}

func TestTimedLinesExternalHasNothingToPace(t *testing.T) {
	info := &model.LyricsInfo{
		Source:    model.LyricsSourceExternal,
		Reference: &model.LyricsReference{URL: "https://example.com"},
	}
	assert.Nil(t, TimedLines(info, 180))
}
