package server

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"KaraFM/apperr"
	"KaraFM/logger"
	"KaraFM/model"
	"KaraFM/storage"
)

// CreateShowHandler creates a podcast show from a multipart form with
// title/author/description fields and an optional "cover" image.
func (h *APIHandler) CreateShowHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := mustUserID(w, r)
	if !ok {
		return
	}

	if err := h.uploader.CheckRequestSize(w, r, storage.KindImage); err != nil {
		writeError(w, err)
		return
	}

	title := strings.TrimSpace(r.FormValue("title"))
	if title == "" {
		writeError(w, apperr.Validation("show title is required"))
		return
	}

	coverURL := ""
	if r.MultipartForm != nil && len(r.MultipartForm.File["cover"]) > 0 {
		cover, err := h.uploader.FromRequest(r, "cover", storage.KindImage)
		if err != nil {
			writeError(w, err)
			return
		}
		coverURL = h.store.ResolveURL(cover)
	}

	show := &model.PodcastShow{
		OwnerID:     userID,
		Title:       title,
		Author:      r.FormValue("author"),
		Description: r.FormValue("description"),
		CoverURL:    coverURL,
	}
	if err := h.podcastRepo.CreateShow(show); err != nil {
		if coverURL != "" {
			h.cleanupFile(r, coverURL)
		}
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{"success": true, "show": show})
}

// ListShowsHandler lists podcast shows, newest first.
func (h *APIHandler) ListShowsHandler(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	shows, err := h.podcastRepo.ListShows(limit)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "shows": shows})
}

// GetShowHandler returns one show with its episodes.
func (h *APIHandler) GetShowHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDVar(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	show, err := h.podcastRepo.GetShowByID(id)
	if err != nil {
		writeError(w, err)
		return
	}
	if show == nil {
		writeError(w, apperr.NotFound("show not found"))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "show": show})
}

// loadOwnedShow fetches a show and enforces owner-only mutation.
func (h *APIHandler) loadOwnedShow(r *http.Request, userID int64) (*model.PodcastShow, error) {
	id, err := parseIDVar(r, "id")
	if err != nil {
		return nil, err
	}

	show, err := h.podcastRepo.GetShowByID(id)
	if err != nil {
		return nil, err
	}
	if show == nil {
		return nil, apperr.NotFound("show not found")
	}
	if show.OwnerID != userID {
		return nil, apperr.Forbidden("only the owner can modify a show")
	}
	return show, nil
}

// DeleteShowHandler removes a show and its episodes, then reclaims their
// files best-effort.
func (h *APIHandler) DeleteShowHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := mustUserID(w, r)
	if !ok {
		return
	}

	show, err := h.loadOwnedShow(r, userID)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.podcastRepo.DeleteShow(show.ID); err != nil {
		writeError(w, err)
		return
	}

	for _, ep := range show.Episodes {
		if ep.AudioURL != "" {
			h.cleanupFile(r, ep.AudioURL)
		}
	}
	if show.CoverURL != "" {
		h.cleanupFile(r, show.CoverURL)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": "show deleted"})
}

// CreateEpisodeHandler uploads an episode to an owned show: an "audio" file
// plus title/description/duration fields.
func (h *APIHandler) CreateEpisodeHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := mustUserID(w, r)
	if !ok {
		return
	}

	if err := h.uploader.CheckRequestSize(w, r, storage.KindPodcast); err != nil {
		writeError(w, err)
		return
	}

	title := strings.TrimSpace(r.FormValue("title"))
	if title == "" {
		writeError(w, apperr.Validation("episode title is required"))
		return
	}

	show, err := h.loadOwnedShow(r, userID)
	if err != nil {
		writeError(w, err)
		return
	}

	duration, _ := strconv.ParseFloat(r.FormValue("duration"), 64)
	if duration < 0 {
		duration = 0
	}

	stored, err := h.uploader.FromRequest(r, "audio", storage.KindPodcast)
	if err != nil {
		writeError(w, err)
		return
	}

	episode := &model.PodcastEpisode{
		ShowID:      show.ID,
		Title:       title,
		Description: r.FormValue("description"),
		AudioURL:    h.store.ResolveURL(stored),
		Duration:    duration,
		PublishedAt: time.Now(),
	}
	if err := h.podcastRepo.CreateEpisode(episode); err != nil {
		h.cleanupFile(r, episode.AudioURL)
		writeError(w, err)
		return
	}

	logger.Info("podcast episode published",
		logger.Int64("showId", show.ID),
		logger.Int64("episodeId", episode.ID),
	)
	writeJSON(w, http.StatusCreated, map[string]interface{}{"success": true, "episode": episode})
}

// DeleteEpisodeHandler removes one episode from an owned show.
func (h *APIHandler) DeleteEpisodeHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := mustUserID(w, r)
	if !ok {
		return
	}

	show, err := h.loadOwnedShow(r, userID)
	if err != nil {
		writeError(w, err)
		return
	}
	episodeID, err := parseIDVar(r, "episodeId")
	if err != nil {
		writeError(w, err)
		return
	}

	episode, err := h.podcastRepo.GetEpisodeByID(episodeID)
	if err != nil {
		writeError(w, err)
		return
	}
	if episode == nil || episode.ShowID != show.ID {
		writeError(w, apperr.NotFound("episode not found"))
		return
	}

	if err := h.podcastRepo.DeleteEpisode(episodeID); err != nil {
		writeError(w, err)
		return
	}
	if episode.AudioURL != "" {
		h.cleanupFile(r, episode.AudioURL)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": "episode deleted"})
}
