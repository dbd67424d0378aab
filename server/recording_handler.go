package server

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"KaraFM/apperr"
	"KaraFM/logger"
	"KaraFM/model"
	"KaraFM/storage"

	"github.com/gorilla/mux"
)

// CreateRecordingHandler accepts a karaoke take as a multipart form: an
// "audio" file plus songId, and optional title/duration/isPublic fields.
// The song is validated before any storage write; the document is inserted
// only after the file write succeeded, so there is never a document pointing
// at a missing file.
func (h *APIHandler) CreateRecordingHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := mustUserID(w, r)
	if !ok {
		return
	}
	username, err := GetUsernameFromContext(r.Context())
	if err != nil {
		writeError(w, apperr.Unauthenticated("unauthorized"))
		return
	}

	// size gate runs before the first form access; FormValue would spool the
	// whole body to disk otherwise
	if err := h.uploader.CheckRequestSize(w, r, storage.KindRecording); err != nil {
		writeError(w, err)
		return
	}

	songID, err := strconv.ParseInt(r.FormValue("songId"), 10, 64)
	if err != nil || songID <= 0 {
		writeError(w, apperr.Validation("valid songId is required"))
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

	title := r.FormValue("title")
	if title == "" {
		title = fmt.Sprintf("%s - %s's Cover", song.Title, username)
	}

	// visibility defaults to public; only an explicit opt-out hides the take
	isPublic := r.FormValue("isPublic") != "false"

	duration, _ := strconv.ParseFloat(r.FormValue("duration"), 64)
	if duration < 0 {
		duration = 0
	}

	stored, err := h.uploader.FromRequest(r, "audio", storage.KindRecording)
	if err != nil {
		writeError(w, err)
		return
	}

	rec := model.NewRecording(userID, songID, title, h.store.ResolveURL(stored), duration, isPublic)
	if err := h.recordingRepo.CreateRecording(rec); err != nil {
		h.cleanupFile(r, rec.AudioURL)
		writeError(w, err)
		return
	}

	rec.Song = &model.SongSummary{ID: song.ID, Title: song.Title, Artist: song.Artist, CoverImage: song.CoverImage}
	rec.User = &model.UserSummary{ID: userID, Username: username}

	logger.Info("recording created",
		logger.String("recordingId", rec.ID),
		logger.Int64("userId", userID),
		logger.Int64("songId", songID),
		logger.Bool("isPublic", isPublic),
	)
	writeJSON(w, http.StatusCreated, map[string]interface{}{"success": true, "recording": rec})
}

// MyRecordingsHandler lists all of the caller's recordings, private included.
func (h *APIHandler) MyRecordingsHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := mustUserID(w, r)
	if !ok {
		return
	}

	recs, err := h.recordingRepo.ListByUser(userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "recordings": recs})
}

// PublicRecordingsHandler returns the public feed across all users.
func (h *APIHandler) PublicRecordingsHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := mustUserID(w, r)
	if !ok {
		return
	}

	recs, err := h.recordingRepo.ListPublic(userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "recordings": recs})
}

// RecordingsBySongHandler returns the public recordings over one song.
func (h *APIHandler) RecordingsBySongHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := mustUserID(w, r)
	if !ok {
		return
	}
	songID, err := parseIDVar(r, "songId")
	if err != nil {
		writeError(w, err)
		return
	}

	recs, err := h.recordingRepo.ListPublicBySong(songID, userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "recordings": recs})
}

// loadVisibleRecording fetches a recording and enforces the visibility rule:
// private recordings exist only for their owner.
func (h *APIHandler) loadVisibleRecording(r *http.Request, userID int64) (*model.Recording, error) {
	id := mux.Vars(r)["id"]
	if id == "" {
		return nil, apperr.Validation("invalid recording id")
	}

	rec, err := h.recordingRepo.GetRecordingByID(id, userID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, apperr.NotFound("recording not found")
	}
	if !rec.IsPublic && rec.UserID != userID {
		return nil, apperr.Forbidden("recording is private")
	}
	return rec, nil
}

// LikeRecordingHandler toggles the caller's like on a recording.
func (h *APIHandler) LikeRecordingHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := mustUserID(w, r)
	if !ok {
		return
	}

	rec, err := h.loadVisibleRecording(r, userID)
	if err != nil {
		writeError(w, err)
		return
	}

	likes, isLiked, err := h.recordingRepo.ToggleLike(rec.ID, userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"likes":   likes,
		"isLiked": isLiked,
	})
}

// PlayRecordingHandler bumps the play counter and returns the new value.
func (h *APIHandler) PlayRecordingHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := mustUserID(w, r)
	if !ok {
		return
	}

	rec, err := h.loadVisibleRecording(r, userID)
	if err != nil {
		writeError(w, err)
		return
	}

	playCount, err := h.recordingRepo.IncrementPlayCount(rec.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, apperr.NotFound("recording not found"))
			return
		}
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "playCount": playCount})
}

// DeleteRecordingHandler removes an owned recording. The audio file is
// reclaimed best-effort first, then the document is deleted; a file delete
// failure never blocks the document delete.
func (h *APIHandler) DeleteRecordingHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := mustUserID(w, r)
	if !ok {
		return
	}

	id := mux.Vars(r)["id"]
	rec, err := h.recordingRepo.GetRecordingByID(id, userID)
	if err != nil {
		writeError(w, err)
		return
	}
	if rec == nil {
		writeError(w, apperr.NotFound("recording not found"))
		return
	}
	if rec.UserID != userID {
		writeError(w, apperr.Forbidden("only the owner can delete a recording"))
		return
	}

	// 文件删除失败只记录日志，不阻塞删除
	h.cleanupFile(r, rec.AudioURL)
	if err := h.recordingRepo.DeleteRecording(rec.ID); err != nil {
		writeError(w, err)
		return
	}

	logger.Info("recording deleted", logger.String("recordingId", rec.ID), logger.Int64("userId", userID))
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": "recording deleted"})
}
