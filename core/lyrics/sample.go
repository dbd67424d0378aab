package lyrics

import (
	"fmt"

	"KaraFM/model"
)

// sampleSectionKinds is the fixed template shape of a generated placeholder.
var sampleSectionKinds = []string{"verse", "chorus", "verse", "chorus", "bridge", "outro"}

const sampleLinesPerSection = 4

// SampleStructure synthesizes a placeholder lyric for songs with no stored
// text and no external match, so the karaoke view always has something to
// render.
func SampleStructure(title string) []model.LyricsSection {
	sections := make([]model.LyricsSection, 0, len(sampleSectionKinds))
	for i, kind := range sampleSectionKinds {
		lines := make([]string, 0, sampleLinesPerSection)
		for j := 0; j < sampleLinesPerSection; j++ {
			lines = append(lines, fmt.Sprintf("La la la, sing along to %s (%s %d, line %d)", title, kind, i+1, j+1))
		}
		sections = append(sections, model.LyricsSection{Kind: kind, Lines: lines})
	}
	return sections
}
