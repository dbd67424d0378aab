package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"KaraFM/apperr"
	"KaraFM/cache"
	"KaraFM/model"
)

// CreatePlaylistHandler creates a playlist owned by the caller.
func (h *APIHandler) CreatePlaylistHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := mustUserID(w, r)
	if !ok {
		return
	}

	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		IsPublic    bool   `json:"isPublic"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperr.Validation("invalid request body"))
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, apperr.Validation("playlist name is required"))
		return
	}

	p := &model.Playlist{
		UserID:      userID,
		Name:        req.Name,
		Description: req.Description,
		IsPublic:    req.IsPublic,
	}
	id, err := h.playlistRepo.CreatePlaylist(p)
	if err != nil {
		writeError(w, err)
		return
	}
	p.ID = id

	writeJSON(w, http.StatusCreated, map[string]interface{}{"success": true, "playlist": p})
}

// MyPlaylistsHandler lists the caller's playlists.
func (h *APIHandler) MyPlaylistsHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := mustUserID(w, r)
	if !ok {
		return
	}

	playlists, err := h.playlistRepo.ListByUser(userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "playlists": playlists})
}

// loadPlaylist fetches a playlist and checks visibility: private playlists
// exist only for their owner.
func (h *APIHandler) loadPlaylist(r *http.Request, userID int64, mutating bool) (*model.Playlist, error) {
	id, err := parseIDVar(r, "id")
	if err != nil {
		return nil, err
	}

	p, err := h.playlistRepo.GetPlaylistByID(id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperr.NotFound("playlist not found")
	}
	if p.UserID != userID {
		if mutating {
			return nil, apperr.Forbidden("only the owner can modify a playlist")
		}
		if !p.IsPublic {
			return nil, apperr.Forbidden("playlist is private")
		}
	}
	return p, nil
}

// GetPlaylistHandler returns a playlist with its songs in order.
func (h *APIHandler) GetPlaylistHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := mustUserID(w, r)
	if !ok {
		return
	}

	p, err := h.loadPlaylist(r, userID, false)
	if err != nil {
		writeError(w, err)
		return
	}

	songs, err := h.playlistRepo.ListSongs(p.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	p.Songs = songs

	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "playlist": p})
}

// UpdatePlaylistHandler updates name, description and visibility.
func (h *APIHandler) UpdatePlaylistHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := mustUserID(w, r)
	if !ok {
		return
	}

	p, err := h.loadPlaylist(r, userID, true)
	if err != nil {
		writeError(w, err)
		return
	}

	var req struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
		IsPublic    *bool   `json:"isPublic"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperr.Validation("invalid request body"))
		return
	}

	if req.Name != nil && strings.TrimSpace(*req.Name) != "" {
		p.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.IsPublic != nil {
		p.IsPublic = *req.IsPublic
	}

	if err := h.playlistRepo.UpdatePlaylist(p); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "playlist": p})
}

// DeletePlaylistHandler removes an owned playlist and its memberships.
func (h *APIHandler) DeletePlaylistHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := mustUserID(w, r)
	if !ok {
		return
	}

	p, err := h.loadPlaylist(r, userID, true)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.playlistRepo.DeletePlaylist(p.ID); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": "playlist deleted"})
}

// AddPlaylistSongHandler appends a song to an owned playlist. Re-adding a
// song already present is a no-op.
func (h *APIHandler) AddPlaylistSongHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := mustUserID(w, r)
	if !ok {
		return
	}

	p, err := h.loadPlaylist(r, userID, true)
	if err != nil {
		writeError(w, err)
		return
	}

	var req struct {
		SongID int64 `json:"songId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.SongID <= 0 {
		writeError(w, apperr.Validation("valid songId is required"))
		return
	}

	song, err := h.songRepo.GetSongByID(req.SongID)
	if err != nil {
		writeError(w, err)
		return
	}
	if song == nil {
		writeError(w, apperr.NotFound("song not found"))
		return
	}

	if err := h.playlistRepo.AddSong(p.ID, req.SongID); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": "song added"})
}

// RemovePlaylistSongHandler drops a song from an owned playlist.
func (h *APIHandler) RemovePlaylistSongHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := mustUserID(w, r)
	if !ok {
		return
	}

	p, err := h.loadPlaylist(r, userID, true)
	if err != nil {
		writeError(w, err)
		return
	}
	songID, err := parseIDVar(r, "songId")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.playlistRepo.RemoveSong(p.ID, songID); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": "song removed"})
}

// GetQueueHandler returns the caller's play queue from the cache.
func (h *APIHandler) GetQueueHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := mustUserID(w, r)
	if !ok {
		return
	}

	items, err := cache.GetQueue(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "queue": items})
}

// AddToQueueHandler appends a catalog song to the caller's play queue.
func (h *APIHandler) AddToQueueHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := mustUserID(w, r)
	if !ok {
		return
	}

	var req struct {
		SongID int64 `json:"songId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.SongID <= 0 {
		writeError(w, apperr.Validation("valid songId is required"))
		return
	}

	song, err := h.songRepo.GetSongByID(req.SongID)
	if err != nil {
		writeError(w, err)
		return
	}
	if song == nil {
		writeError(w, apperr.NotFound("song not found"))
		return
	}

	item := cache.QueueItem{
		SongID:   song.ID,
		Title:    song.Title,
		Artist:   song.Artist,
		Cover:    song.CoverImage,
		Duration: song.Duration,
	}
	if err := cache.AddToQueue(r.Context(), userID, item); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": "song queued"})
}

// RemoveFromQueueHandler drops one song from the caller's play queue.
func (h *APIHandler) RemoveFromQueueHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := mustUserID(w, r)
	if !ok {
		return
	}
	songID, err := parseIDVar(r, "songId")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := cache.RemoveFromQueue(r.Context(), userID, songID); err != nil {
		writeError(w, apperr.NotFound("song not found in queue"))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": "song removed from queue"})
}

// ClearQueueHandler empties the caller's play queue.
func (h *APIHandler) ClearQueueHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := mustUserID(w, r)
	if !ok {
		return
	}

	if err := cache.ClearQueue(r.Context(), userID); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": "queue cleared"})
}
