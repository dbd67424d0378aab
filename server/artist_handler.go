package server

import (
	"net/http"
	"strings"

	"KaraFM/apperr"

	"github.com/gorilla/mux"
)

func artistVar(r *http.Request) (string, error) {
	artist := strings.TrimSpace(mux.Vars(r)["artist"])
	if artist == "" {
		return "", apperr.Validation("artist name is required")
	}
	return artist, nil
}

// FollowArtistHandler records a follow. Following twice is a no-op.
func (h *APIHandler) FollowArtistHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := mustUserID(w, r)
	if !ok {
		return
	}
	artist, err := artistVar(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.followRepo.Follow(userID, artist); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"artist":      artist,
		"isFollowing": true,
	})
}

// UnfollowArtistHandler removes a follow if present.
func (h *APIHandler) UnfollowArtistHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := mustUserID(w, r)
	if !ok {
		return
	}
	artist, err := artistVar(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.followRepo.Unfollow(userID, artist); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"artist":      artist,
		"isFollowing": false,
	})
}

// FollowingHandler lists the artists the caller follows.
func (h *APIHandler) FollowingHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := mustUserID(w, r)
	if !ok {
		return
	}

	follows, err := h.followRepo.ListByUser(userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "following": follows})
}

// FollowStatusHandler reports whether the caller follows one artist.
func (h *APIHandler) FollowStatusHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := mustUserID(w, r)
	if !ok {
		return
	}
	artist, err := artistVar(r)
	if err != nil {
		writeError(w, err)
		return
	}

	isFollowing, err := h.followRepo.IsFollowing(userID, artist)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"artist":      artist,
		"isFollowing": isFollowing,
	})
}
