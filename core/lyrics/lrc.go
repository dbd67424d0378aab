package lyrics

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"KaraFM/model"
)

var lrcTag = regexp.MustCompile(`\[(\d{1,2}):(\d{2})(?:[.:](\d{1,3}))?\]`)

// ParseLRC extracts timestamped lines from LRC-formatted text. A line may
// carry several tags; each becomes its own entry. Returns nil when the text
// has no timestamps at all.
func ParseLRC(text string) []model.LyricLine {
	var lines []model.LyricLine
	for _, raw := range strings.Split(text, "\n") {
		tags := lrcTag.FindAllStringSubmatch(raw, -1)
		if len(tags) == 0 {
			continue
		}
		content := strings.TrimSpace(lrcTag.ReplaceAllString(raw, ""))
		if content == "" {
			continue
		}
		for _, tag := range tags {
			minutes, _ := strconv.ParseInt(tag[1], 10, 64)
			seconds, _ := strconv.ParseInt(tag[2], 10, 64)
			var millis int64
			if tag[3] != "" {
				frac := tag[3]
				for len(frac) < 3 {
					frac += "0"
				}
				millis, _ = strconv.ParseInt(frac[:3], 10, 64)
			}
			lines = append(lines, model.LyricLine{
				AtMs: minutes*60_000 + seconds*1_000 + millis,
				Text: content,
			})
		}
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].AtMs < lines[j].AtMs })
	return lines
}

// TimedLines converts a resolved lyrics payload into a timed line sequence
// for synchronized delivery. LRC timestamps win when present; otherwise
// plain lines are spread evenly across the song duration.
func TimedLines(info *model.LyricsInfo, durationSec float64) []model.LyricLine {
	var plain []string
	switch info.Source {
	case model.LyricsSourceDatabase:
		if timed := ParseLRC(info.Text); len(timed) > 0 {
			return timed
		}
		for _, l := range strings.Split(info.Text, "\n") {
			if s := strings.TrimSpace(l); s != "" {
				plain = append(plain, s)
			}
		}
	case model.LyricsSourceSample:
		for _, section := range info.Structure {
			plain = append(plain, section.Lines...)
		}
	default:
		// external references carry no text to pace
		return nil
	}

	if len(plain) == 0 {
		return nil
	}
	if durationSec <= 0 {
		durationSec = float64(len(plain)) * 4 // four seconds a line
	}

	step := durationSec * 1000 / float64(len(plain))
	lines := make([]model.LyricLine, len(plain))
	for i, text := range plain {
		lines[i] = model.LyricLine{AtMs: int64(float64(i) * step), Text: text}
	}
	return lines
}
