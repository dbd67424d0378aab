package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"KaraFM/config"
	"KaraFM/core/auth"
	"KaraFM/core/genius"
	"KaraFM/core/lyrics"
	"KaraFM/core/spotify"
	"KaraFM/db"
	"KaraFM/logger"
	"KaraFM/model"
	"KaraFM/repository"
	"KaraFM/storage"

	"github.com/gorilla/mux"
)

// corsMiddleware 添加CORS头
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Start wires every subsystem and runs the HTTP server until a shutdown
// signal arrives.
func Start(cfg *config.Config) error {
	logger.InitLogger(logger.Config{
		Level:      logger.LogLevel(cfg.LogLevel),
		OutputPath: cfg.LogPath,
		MaxSize:    100,
		MaxBackups: 5,
		MaxAge:     30,
		Compress:   true,
	})
	defer logger.Sync()

	if err := cfg.Validate(); err != nil {
		return err
	}

	auth.InitJWT(cfg.JWTSecret)

	if err := db.ConnectDB(cfg); err != nil {
		return err
	}
	if err := db.InitDB(); err != nil {
		return err
	}
	if err := db.ConnectGormDB(cfg); err != nil {
		return err
	}
	defer db.CloseGormDB()
	if err := db.AutoMigrateModels(
		&model.Event{},
		&model.ArtistFollow{},
		&model.PodcastShow{},
		&model.PodcastEpisode{},
	); err != nil {
		return err
	}
	if err := db.ConnectRedis(cfg); err != nil {
		return err
	}
	defer db.CloseRedis()

	store, err := storage.NewStore(cfg)
	if err != nil {
		return err
	}
	logger.Info("storage backend selected", logger.String("mode", store.Mode()))

	userRepo := repository.NewMySQLUserRepository(nil)
	songRepo := repository.NewMySQLSongRepository(nil)
	recordingRepo := repository.NewMySQLRecordingRepository(nil)
	playlistRepo := repository.NewMySQLPlaylistRepository(nil)
	eventRepo := repository.NewEventRepository()
	followRepo := repository.NewArtistFollowRepository()
	podcastRepo := repository.NewPodcastRepository()

	geniusClient := genius.NewClient(cfg.GeniusAPIKey)
	lyricsResolver := lyrics.NewResolver(geniusClient)
	spotifyClient := spotify.NewClient(spotify.NewTokenProvider(cfg.SpotifyClientID, cfg.SpotifyClientSecret))

	handler := NewAPIHandler(
		cfg, store,
		userRepo, songRepo, recordingRepo, playlistRepo,
		eventRepo, followRepo, podcastRepo,
		lyricsResolver, spotifyClient,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// keep the grace window honest for files observed mid-write
	sweeper := storage.NewSweeper(store,
		CollectFileRefs(songRepo, recordingRepo, podcastRepo, userRepo),
		time.Duration(cfg.SweepGraceMinutes)*time.Minute,
	)
	if err := sweeper.Watch(ctx); err != nil {
		logger.Warn("sweeper watcher unavailable", logger.ErrorField(err))
	}
	go runSweepLoop(ctx, sweeper, time.Duration(cfg.SweepIntervalMinutes)*time.Minute)

	router := mux.NewRouter()
	handler.registerRoutes(router)
	handler.registerMediaRoutes(router)

	srv := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      corsMiddleware(router),
		ReadTimeout:  5 * time.Minute, // large media uploads
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", logger.String("addr", cfg.ServerAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Info("shutting down", logger.String("signal", sig.String()))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Info("server stopped")
	return nil
}

// runSweepLoop reclaims orphaned media on a fixed cadence until the context
// is canceled. Each pass drains the watcher's fresh-file set, so files
// observed mid-write stay inside the grace window.
func runSweepLoop(ctx context.Context, sweeper *storage.Sweeper, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := sweeper.Sweep(ctx)
			if err != nil {
				logger.Warn("orphan sweep failed", logger.ErrorField(err))
				continue
			}
			if removed > 0 {
				logger.Info("orphan sweep reclaimed files", logger.Int("count", removed))
			}
		}
	}
}

// registerRoutes mounts the JSON API under /api and the websocket endpoint
// at /ws/karaoke.
func (h *APIHandler) registerRoutes(router *mux.Router) {
	api := router.PathPrefix("/api").Subrouter()

	// accounts
	api.HandleFunc("/auth/register", h.RegisterHandler).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", h.LoginHandler).Methods(http.MethodPost)
	api.HandleFunc("/users/me", h.AuthMiddleware(h.ProfileHandler)).Methods(http.MethodGet)
	api.HandleFunc("/users/me", h.AuthMiddleware(h.UpdateProfileHandler)).Methods(http.MethodPut)

	// catalog
	api.HandleFunc("/songs", h.ListSongsHandler).Methods(http.MethodGet)
	api.HandleFunc("/songs", h.AuthMiddleware(h.CreateSongHandler)).Methods(http.MethodPost)
	api.HandleFunc("/songs/search", h.SearchSongsHandler).Methods(http.MethodGet)
	api.HandleFunc("/songs/{id:[0-9]+}", h.GetSongHandler).Methods(http.MethodGet)
	api.HandleFunc("/songs/{id:[0-9]+}", h.AuthMiddleware(h.UpdateSongHandler)).Methods(http.MethodPut)
	api.HandleFunc("/songs/{id:[0-9]+}", h.AuthMiddleware(h.DeleteSongHandler)).Methods(http.MethodDelete)
	api.HandleFunc("/spotify/search", h.SearchTracksHandler).Methods(http.MethodGet)

	// lyrics
	api.HandleFunc("/lyrics/song/{songId:[0-9]+}", h.AuthMiddleware(h.GetLyricsHandler)).Methods(http.MethodGet)
	api.HandleFunc("/lyrics/song/{songId:[0-9]+}", h.AuthMiddleware(h.UpdateLyricsHandler)).Methods(http.MethodPut)
	api.HandleFunc("/lyrics/song/{songId:[0-9]+}/timed", h.AuthMiddleware(h.GetTimedLyricsHandler)).Methods(http.MethodGet)

	// karaoke recordings
	api.HandleFunc("/karaoke/recordings", h.AuthMiddleware(h.CreateRecordingHandler)).Methods(http.MethodPost)
	api.HandleFunc("/karaoke/my-recordings", h.AuthMiddleware(h.MyRecordingsHandler)).Methods(http.MethodGet)
	api.HandleFunc("/karaoke/recordings/public", h.AuthMiddleware(h.PublicRecordingsHandler)).Methods(http.MethodGet)
	api.HandleFunc("/karaoke/recordings/song/{songId:[0-9]+}", h.AuthMiddleware(h.RecordingsBySongHandler)).Methods(http.MethodGet)
	api.HandleFunc("/karaoke/recordings/{id}/like", h.AuthMiddleware(h.LikeRecordingHandler)).Methods(http.MethodPost)
	api.HandleFunc("/karaoke/recordings/{id}/play", h.AuthMiddleware(h.PlayRecordingHandler)).Methods(http.MethodPost)
	api.HandleFunc("/karaoke/recordings/{id}", h.AuthMiddleware(h.DeleteRecordingHandler)).Methods(http.MethodDelete)

	// playlists and the play queue
	api.HandleFunc("/playlists", h.AuthMiddleware(h.CreatePlaylistHandler)).Methods(http.MethodPost)
	api.HandleFunc("/playlists", h.AuthMiddleware(h.MyPlaylistsHandler)).Methods(http.MethodGet)
	api.HandleFunc("/playlists/{id:[0-9]+}", h.AuthMiddleware(h.GetPlaylistHandler)).Methods(http.MethodGet)
	api.HandleFunc("/playlists/{id:[0-9]+}", h.AuthMiddleware(h.UpdatePlaylistHandler)).Methods(http.MethodPut)
	api.HandleFunc("/playlists/{id:[0-9]+}", h.AuthMiddleware(h.DeletePlaylistHandler)).Methods(http.MethodDelete)
	api.HandleFunc("/playlists/{id:[0-9]+}/songs", h.AuthMiddleware(h.AddPlaylistSongHandler)).Methods(http.MethodPost)
	api.HandleFunc("/playlists/{id:[0-9]+}/songs/{songId:[0-9]+}", h.AuthMiddleware(h.RemovePlaylistSongHandler)).Methods(http.MethodDelete)
	api.HandleFunc("/queue", h.AuthMiddleware(h.GetQueueHandler)).Methods(http.MethodGet)
	api.HandleFunc("/queue", h.AuthMiddleware(h.AddToQueueHandler)).Methods(http.MethodPost)
	api.HandleFunc("/queue", h.AuthMiddleware(h.ClearQueueHandler)).Methods(http.MethodDelete)
	api.HandleFunc("/queue/{songId:[0-9]+}", h.AuthMiddleware(h.RemoveFromQueueHandler)).Methods(http.MethodDelete)

	// events
	api.HandleFunc("/events", h.ListEventsHandler).Methods(http.MethodGet)
	api.HandleFunc("/events", h.AuthMiddleware(h.CreateEventHandler)).Methods(http.MethodPost)
	api.HandleFunc("/events/{id:[0-9]+}", h.GetEventHandler).Methods(http.MethodGet)
	api.HandleFunc("/events/{id:[0-9]+}", h.AuthMiddleware(h.UpdateEventHandler)).Methods(http.MethodPut)
	api.HandleFunc("/events/{id:[0-9]+}", h.AuthMiddleware(h.DeleteEventHandler)).Methods(http.MethodDelete)

	// artist follows
	api.HandleFunc("/artists/{artist}/follow", h.AuthMiddleware(h.FollowArtistHandler)).Methods(http.MethodPost)
	api.HandleFunc("/artists/{artist}/follow", h.AuthMiddleware(h.UnfollowArtistHandler)).Methods(http.MethodDelete)
	api.HandleFunc("/artists/{artist}/follow", h.AuthMiddleware(h.FollowStatusHandler)).Methods(http.MethodGet)
	api.HandleFunc("/me/following", h.AuthMiddleware(h.FollowingHandler)).Methods(http.MethodGet)

	// podcasts
	api.HandleFunc("/podcasts", h.ListShowsHandler).Methods(http.MethodGet)
	api.HandleFunc("/podcasts", h.AuthMiddleware(h.CreateShowHandler)).Methods(http.MethodPost)
	api.HandleFunc("/podcasts/{id:[0-9]+}", h.GetShowHandler).Methods(http.MethodGet)
	api.HandleFunc("/podcasts/{id:[0-9]+}", h.AuthMiddleware(h.DeleteShowHandler)).Methods(http.MethodDelete)
	api.HandleFunc("/podcasts/{id:[0-9]+}/episodes", h.AuthMiddleware(h.CreateEpisodeHandler)).Methods(http.MethodPost)
	api.HandleFunc("/podcasts/{id:[0-9]+}/episodes/{episodeId:[0-9]+}", h.AuthMiddleware(h.DeleteEpisodeHandler)).Methods(http.MethodDelete)

	router.HandleFunc("/ws/karaoke", h.KaraokeSyncHandler)
}
