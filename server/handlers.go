package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"KaraFM/apperr"
	"KaraFM/config"
	"KaraFM/core/auth"
	"KaraFM/core/lyrics"
	"KaraFM/core/spotify"
	"KaraFM/logger"
	"KaraFM/repository"
	"KaraFM/storage"
)

// APIHandler 处理所有API请求
type APIHandler struct {
	cfg      *config.Config
	store    storage.Store
	uploader *storage.Uploader

	userRepo      repository.UserRepository
	songRepo      repository.SongRepository
	recordingRepo repository.RecordingRepository
	playlistRepo  repository.PlaylistRepository
	eventRepo     *repository.EventRepository
	followRepo    *repository.ArtistFollowRepository
	podcastRepo   *repository.PodcastRepository

	lyricsResolver *lyrics.Resolver
	spotifyClient  *spotify.Client
}

// NewAPIHandler 创建新的API处理器
func NewAPIHandler(
	cfg *config.Config,
	store storage.Store,
	userRepo repository.UserRepository,
	songRepo repository.SongRepository,
	recordingRepo repository.RecordingRepository,
	playlistRepo repository.PlaylistRepository,
	eventRepo *repository.EventRepository,
	followRepo *repository.ArtistFollowRepository,
	podcastRepo *repository.PodcastRepository,
	lyricsResolver *lyrics.Resolver,
	spotifyClient *spotify.Client,
) *APIHandler {
	return &APIHandler{
		cfg:            cfg,
		store:          store,
		uploader:       storage.NewUploader(store),
		userRepo:       userRepo,
		songRepo:       songRepo,
		recordingRepo:  recordingRepo,
		playlistRepo:   playlistRepo,
		eventRepo:      eventRepo,
		followRepo:     followRepo,
		podcastRepo:    podcastRepo,
		lyricsResolver: lyricsResolver,
		spotifyClient:  spotifyClient,
	}
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("failed to encode response", logger.ErrorField(err))
	}
}

// writeError maps an error onto the taxonomy and replies with a structured
// JSON body. Internal errors are logged with their cause but never leaked.
func writeError(w http.ResponseWriter, err error) {
	status := apperr.Status(err)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", logger.ErrorField(err))
	}
	writeJSON(w, status, map[string]interface{}{
		"success": false,
		"error":   apperr.Message(err),
	})
}

// AuthMiddleware checks for a valid JWT bearer token and stashes the caller
// identity in the request context.
func (h *APIHandler) AuthMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			writeError(w, apperr.Unauthenticated("authorization header is required"))
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			writeError(w, apperr.Unauthenticated("invalid authorization header format"))
			return
		}

		claims, err := auth.ParseToken(parts[1])
		if err != nil {
			writeError(w, apperr.Unauthenticated("invalid token"))
			return
		}

		ctx := context.WithValue(r.Context(), "userID", claims.UserID)
		ctx = context.WithValue(ctx, "username", claims.Username)

		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

// GetUserIDFromContext extracts the caller's user ID from the request context.
func GetUserIDFromContext(ctx context.Context) (int64, error) {
	userID, ok := ctx.Value("userID").(int64)
	if !ok {
		return 0, fmt.Errorf("user ID not found in context")
	}
	return userID, nil
}

// GetUsernameFromContext extracts the caller's username from the request context.
func GetUsernameFromContext(ctx context.Context) (string, error) {
	username, ok := ctx.Value("username").(string)
	if !ok {
		return "", fmt.Errorf("username not found in context")
	}
	return username, nil
}

// mustUserID is the handler-side shortcut: middleware already validated the
// token, so a missing ID is an internal inconsistency, not a client error.
func mustUserID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, apperr.Unauthenticated("unauthorized"))
		return 0, false
	}
	return userID, true
}
