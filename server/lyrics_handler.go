package server

import (
	"encoding/json"
	"net/http"

	"KaraFM/apperr"
	"KaraFM/core/lyrics"
	"KaraFM/model"
)

// GetLyricsHandler resolves lyrics for a song. The payload shape depends on
// the source tier: stored text comes back verbatim, an external match comes
// back as a reference descriptor, and a generated placeholder carries its
// section structure.
func (h *APIHandler) GetLyricsHandler(w http.ResponseWriter, r *http.Request) {
	songID, err := parseIDVar(r, "songId")
	if err != nil {
		writeError(w, err)
		return
	}

	song, err := h.songRepo.GetSongByID(songID)
	if err != nil {
		writeError(w, err)
		return
	}
	if song == nil {
		writeError(w, apperr.NotFound("song not found"))
		return
	}

	info := h.lyricsResolver.Resolve(r.Context(), song)

	resp := map[string]interface{}{
		"success": true,
		"source":  info.Source,
	}
	switch info.Source {
	case model.LyricsSourceDatabase:
		resp["lyrics"] = info.Text
	case model.LyricsSourceExternal:
		resp["lyricsInfo"] = info.Reference
	case model.LyricsSourceSample:
		resp["lyrics"] = map[string]interface{}{"structure": info.Structure}
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetTimedLyricsHandler returns the timestamped line sequence used for
// synchronized display. External references carry no text, so they resolve to
// an empty sequence here.
func (h *APIHandler) GetTimedLyricsHandler(w http.ResponseWriter, r *http.Request) {
	songID, err := parseIDVar(r, "songId")
	if err != nil {
		writeError(w, err)
		return
	}

	song, err := h.songRepo.GetSongByID(songID)
	if err != nil {
		writeError(w, err)
		return
	}
	if song == nil {
		writeError(w, apperr.NotFound("song not found"))
		return
	}

	info := h.lyricsResolver.Resolve(r.Context(), song)
	lines := lyrics.TimedLines(info, song.Duration)
	if lines == nil {
		lines = []model.LyricLine{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"source":  info.Source,
		"lines":   lines,
	})
}

// UpdateLyricsHandler stores lyrics text for a song. Stored text wins all
// later resolutions until it is replaced.
func (h *APIHandler) UpdateLyricsHandler(w http.ResponseWriter, r *http.Request) {
	if _, ok := mustUserID(w, r); !ok {
		return
	}
	songID, err := parseIDVar(r, "songId")
	if err != nil {
		writeError(w, err)
		return
	}

	song, err := h.songRepo.GetSongByID(songID)
	if err != nil {
		writeError(w, err)
		return
	}
	if song == nil {
		writeError(w, apperr.NotFound("song not found"))
		return
	}

	var req struct {
		Lyrics string `json:"lyrics"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperr.Validation("invalid request body"))
		return
	}
	if req.Lyrics == "" {
		writeError(w, apperr.Validation("lyrics text is required"))
		return
	}

	if err := h.songRepo.UpdateLyrics(songID, req.Lyrics); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": "lyrics updated"})
}
