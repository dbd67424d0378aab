package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"KaraFM/apperr"
	"KaraFM/logger"
	"KaraFM/model"
	"KaraFM/storage"

	"github.com/gorilla/mux"
)

func parseIDVar(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Validation("invalid %s", name)
	}
	return id, nil
}

// CreateSongHandler adds a catalog song from a multipart form: an "audio"
// file, an optional "cover" image, and title/artist/duration/lyrics fields.
func (h *APIHandler) CreateSongHandler(w http.ResponseWriter, r *http.Request) {
	if _, ok := mustUserID(w, r); !ok {
		return
	}

	// before the first form access; the audio kind carries the largest limit
	if err := h.uploader.CheckRequestSize(w, r, storage.KindSongAudio); err != nil {
		writeError(w, err)
		return
	}

	title := strings.TrimSpace(r.FormValue("title"))
	artist := strings.TrimSpace(r.FormValue("artist"))
	if title == "" || artist == "" {
		writeError(w, apperr.Validation("title and artist are required"))
		return
	}

	duration, _ := strconv.ParseFloat(r.FormValue("duration"), 64)
	if duration < 0 {
		duration = 0
	}

	audio, err := h.uploader.FromRequest(r, "audio", storage.KindSongAudio)
	if err != nil {
		writeError(w, err)
		return
	}

	coverURL := ""
	if r.MultipartForm != nil && len(r.MultipartForm.File["cover"]) > 0 {
		cover, err := h.uploader.FromRequest(r, "cover", storage.KindImage)
		if err != nil {
			h.cleanupFile(r, h.store.ResolveURL(audio))
			writeError(w, err)
			return
		}
		coverURL = h.store.ResolveURL(cover)
	}

	song := &model.Song{
		Title:      title,
		Artist:     artist,
		Duration:   duration,
		AudioURL:   h.store.ResolveURL(audio),
		Lyrics:     r.FormValue("lyrics"),
		CoverImage: coverURL,
	}

	id, err := h.songRepo.CreateSong(song)
	if err != nil {
		h.cleanupFile(r, song.AudioURL)
		if coverURL != "" {
			h.cleanupFile(r, coverURL)
		}
		writeError(w, err)
		return
	}
	song.ID = id

	logger.Info("song created",
		logger.Int64("songId", id),
		logger.String("title", title),
		logger.String("artist", artist),
	)
	writeJSON(w, http.StatusCreated, map[string]interface{}{"success": true, "song": song})
}

// cleanupFile best-effort deletes a stored file after a failed create. The
// document is the source of truth; a leaked file is reclaimed by the sweep.
func (h *APIHandler) cleanupFile(r *http.Request, url string) {
	if err := h.store.Delete(r.Context(), url); err != nil {
		logger.Warn("failed to clean up stored file", logger.String("url", url), logger.ErrorField(err))
	}
}

// GetSongHandler returns one song by ID.
func (h *APIHandler) GetSongHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDVar(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	song, err := h.songRepo.GetSongByID(id)
	if err != nil {
		writeError(w, err)
		return
	}
	if song == nil {
		writeError(w, apperr.NotFound("song not found"))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "song": song})
}

// ListSongsHandler lists catalog songs, newest first.
func (h *APIHandler) ListSongsHandler(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	if offset < 0 {
		offset = 0
	}

	songs, err := h.songRepo.ListSongs(limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "songs": songs})
}

// SearchSongsHandler searches the local catalog by title or artist substring.
func (h *APIHandler) SearchSongsHandler(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeError(w, apperr.Validation("query parameter q is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	songs, err := h.songRepo.SearchSongs(query, limit)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "songs": songs})
}

// UpdateSongHandler updates the song's metadata fields from a JSON body.
func (h *APIHandler) UpdateSongHandler(w http.ResponseWriter, r *http.Request) {
	if _, ok := mustUserID(w, r); !ok {
		return
	}
	id, err := parseIDVar(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	song, err := h.songRepo.GetSongByID(id)
	if err != nil {
		writeError(w, err)
		return
	}
	if song == nil {
		writeError(w, apperr.NotFound("song not found"))
		return
	}

	var req struct {
		Title      *string  `json:"title"`
		Artist     *string  `json:"artist"`
		Duration   *float64 `json:"duration"`
		CoverImage *string  `json:"coverImage"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperr.Validation("invalid request body"))
		return
	}

	if req.Title != nil && strings.TrimSpace(*req.Title) != "" {
		song.Title = strings.TrimSpace(*req.Title)
	}
	if req.Artist != nil && strings.TrimSpace(*req.Artist) != "" {
		song.Artist = strings.TrimSpace(*req.Artist)
	}
	if req.Duration != nil && *req.Duration >= 0 {
		song.Duration = *req.Duration
	}
	if req.CoverImage != nil {
		song.CoverImage = *req.CoverImage
	}

	if err := h.songRepo.UpdateSong(song); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "song": song})
}

// DeleteSongHandler removes the song document, then reclaims its files
// best-effort. Recordings over the song keep their audio; the joined feeds
// simply stop listing them.
func (h *APIHandler) DeleteSongHandler(w http.ResponseWriter, r *http.Request) {
	if _, ok := mustUserID(w, r); !ok {
		return
	}
	id, err := parseIDVar(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	song, err := h.songRepo.GetSongByID(id)
	if err != nil {
		writeError(w, err)
		return
	}
	if song == nil {
		writeError(w, apperr.NotFound("song not found"))
		return
	}

	if err := h.songRepo.DeleteSong(id); err != nil {
		writeError(w, err)
		return
	}

	if song.AudioURL != "" {
		h.cleanupFile(r, song.AudioURL)
	}
	if song.CoverImage != "" {
		h.cleanupFile(r, song.CoverImage)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": "song deleted"})
}

// SearchTracksHandler proxies a metadata search to Spotify.
func (h *APIHandler) SearchTracksHandler(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeError(w, apperr.Validation("query parameter q is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	tracks, err := h.spotifyClient.SearchTracks(r.Context(), query, limit)
	if err != nil {
		writeError(w, apperr.Upstream(err, "track search is temporarily unavailable"))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "tracks": tracks})
}
