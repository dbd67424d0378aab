package model

// Lyrics sources, in resolution precedence order.
const (
	LyricsSourceDatabase = "database"
	LyricsSourceExternal = "external"
	LyricsSourceSample   = "sample"
)

// LyricsInfo is a resolved lyrics payload. Exactly one of Text, Reference or
// Structure is set depending on Source. Computed per request, never persisted.
type LyricsInfo struct {
	Source    string           `json:"source"`
	Text      string           `json:"lyrics,omitempty"`
	Reference *LyricsReference `json:"lyricsInfo,omitempty"`
	Structure []LyricsSection  `json:"structure,omitempty"`
}

// LyricsReference points at an external lyrics page. Full text is not
// redistributed; clients follow URL to view it.
type LyricsReference struct {
	ID        string `json:"id"`
	URL       string `json:"url"`
	Title     string `json:"title"`
	Artist    string `json:"artist"`
	Thumbnail string `json:"thumbnail,omitempty"`
	Notice    string `json:"notice"`
}

// LyricsSection is one block of a generated placeholder lyric.
type LyricsSection struct {
	Kind  string   `json:"kind"` // verse, chorus, bridge, outro
	Lines []string `json:"lines"`
}

// LyricLine is a timestamped line used for synchronized delivery.
type LyricLine struct {
	AtMs int64  `json:"atMs"`
	Text string `json:"text"`
}
