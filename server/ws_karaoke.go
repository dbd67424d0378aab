package server

import (
	"net/http"
	"strconv"
	"time"

	"KaraFM/core/auth"
	"KaraFM/core/lyrics"
	"KaraFM/logger"

	"github.com/gorilla/websocket"
)

var karaokeUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// karaokeMessage is one frame of the synchronized lyrics stream.
type karaokeMessage struct {
	Type   string      `json:"type"` // start | line | end | error
	Index  int         `json:"index,omitempty"`
	AtMs   int64       `json:"atMs,omitempty"`
	Text   string      `json:"text,omitempty"`
	Song   interface{} `json:"song,omitempty"`
	Lines  int         `json:"lines,omitempty"`
	Reason string      `json:"reason,omitempty"`
}

// KaraokeSyncHandler streams a song's lyric lines over a websocket at their
// timestamps, so every connected client highlights the same line at the same
// moment. Browsers cannot set an Authorization header on a websocket dial, so
// the token rides in the query string.
func (h *APIHandler) KaraokeSyncHandler(w http.ResponseWriter, r *http.Request) {
	claims, err := auth.ParseToken(r.URL.Query().Get("token"))
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	songID, err := strconv.ParseInt(r.URL.Query().Get("songId"), 10, 64)
	if err != nil || songID <= 0 {
		http.Error(w, "valid songId is required", http.StatusBadRequest)
		return
	}

	song, err := h.songRepo.GetSongByID(songID)
	if err != nil {
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	if song == nil {
		http.Error(w, "song not found", http.StatusNotFound)
		return
	}

	conn, err := karaokeUpgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("karaoke: upgrade failed", logger.ErrorField(err))
		return
	}
	defer conn.Close()

	logger.Info("karaoke session started",
		logger.Int64("userId", claims.UserID),
		logger.Int64("songId", songID),
	)

	info := h.lyricsResolver.Resolve(r.Context(), song)
	lines := lyrics.TimedLines(info, song.Duration)
	if len(lines) == 0 {
		conn.WriteJSON(karaokeMessage{Type: "error", Reason: "no synchronized lyrics available"})
		return
	}

	// read pump: the client never sends data frames, but reading is what
	// surfaces close frames and dead peers
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := conn.WriteJSON(karaokeMessage{Type: "start", Song: song.Summary(), Lines: len(lines)}); err != nil {
		return
	}

	start := time.Now()
	for i, line := range lines {
		wait := time.Duration(line.AtMs)*time.Millisecond - time.Since(start)
		if wait > 0 {
			select {
			case <-time.After(wait):
			case <-done:
				return
			case <-r.Context().Done():
				return
			}
		}
		msg := karaokeMessage{Type: "line", Index: i, AtMs: line.AtMs, Text: line.Text}
		if err := conn.WriteJSON(msg); err != nil {
			return
		}
	}

	conn.WriteJSON(karaokeMessage{Type: "end"})
}
