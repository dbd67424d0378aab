package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// StorageMode values accepted by STORAGE_MODE.
const (
	StorageModeLocal = "local"
	StorageModeCloud = "cloud"
)

// Config stores the application configuration.
type Config struct {
	ServerAddr string

	// Storage selection. "local" serves uploads from disk, "cloud" pushes
	// everything to the object store.
	StorageMode string

	UploadDir          string // Base directory for all uploads
	AudioUploadDir     string // Song audio: UploadDir/audio
	RecordingUploadDir string // Karaoke recordings: UploadDir/recordings
	ImageUploadDir     string // Cover images: UploadDir/images
	PodcastUploadDir   string // Podcast episodes: UploadDir/podcasts

	// MinIO (cloud mode)
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioRegion    string
	MinioUseSSL    bool
	MinioPublicURL string // Base URL clients use to reach stored objects

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	JWTSecret string

	// External APIs
	GeniusAPIKey        string
	SpotifyClientID     string
	SpotifyClientSecret string

	// Orphan sweep grace window in minutes. Files younger than this are
	// never reclaimed even when unreferenced.
	SweepGraceMinutes int
	// How often the server runs a reconciliation sweep.
	SweepIntervalMinutes int

	LogPath  string
	LogLevel string
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt gets an environment variable as int or returns a default value.
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// getEnvBool gets an environment variable as bool or returns a default value.
func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

// Load loads configuration from environment variables (via .env file) or defaults.
func Load() *Config {
	// godotenv.Load() will not override existing env vars.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found or error loading .env, relying on existing environment variables and defaults.")
	}

	uploadBase := getEnv("UPLOAD_DIR", "uploads")

	return &Config{
		ServerAddr: getEnv("SERVER_ADDR", ":8080"),

		StorageMode: getEnv("STORAGE_MODE", StorageModeLocal),

		UploadDir:          uploadBase,
		AudioUploadDir:     filepath.Join(uploadBase, "audio"),
		RecordingUploadDir: filepath.Join(uploadBase, "recordings"),
		ImageUploadDir:     filepath.Join(uploadBase, "images"),
		PodcastUploadDir:   filepath.Join(uploadBase, "podcasts"),

		MinioEndpoint:  getEnv("MINIO_ENDPOINT", ""),
		MinioAccessKey: os.Getenv("MINIO_ACCESS_KEY"),
		MinioSecretKey: os.Getenv("MINIO_SECRET_KEY"),
		MinioBucket:    getEnv("MINIO_BUCKET", "karafm"),
		MinioRegion:    getEnv("MINIO_REGION", "us-east-1"),
		MinioUseSSL:    getEnvBool("MINIO_USE_SSL", true),
		MinioPublicURL: getEnv("MINIO_PUBLIC_URL", ""),

		DBHost:     getEnv("DB_HOST", "127.0.0.1"),
		DBPort:     getEnv("DB_PORT", "3306"),
		DBUser:     getEnv("DB_USER", "root"),
		DBPassword: os.Getenv("DB_PASSWORD"), // no hardcoded default for secrets
		DBName:     getEnv("DB_NAME", "karafm"),

		RedisHost:     getEnv("REDIS_HOST", "127.0.0.1"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		JWTSecret: getEnv("JWT_SECRET", "karafm-dev-secret"),

		GeniusAPIKey:        os.Getenv("GENIUS_API_KEY"),
		SpotifyClientID:     os.Getenv("SPOTIFY_CLIENT_ID"),
		SpotifyClientSecret: os.Getenv("SPOTIFY_CLIENT_SECRET"),

		SweepGraceMinutes:    getEnvInt("SWEEP_GRACE_MINUTES", 60),
		SweepIntervalMinutes: getEnvInt("SWEEP_INTERVAL_MINUTES", 360),

		LogPath:  getEnv("LOG_PATH", filepath.Join("logs", "karafm.log")),
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

// Validate checks configuration combinations that must fail at startup.
// Cloud mode without credentials must never silently fall back to local
// storage.
func (c *Config) Validate() error {
	switch c.StorageMode {
	case StorageModeLocal:
		// nothing extra required
	case StorageModeCloud:
		if c.MinioEndpoint == "" {
			return fmt.Errorf("STORAGE_MODE=cloud requires MINIO_ENDPOINT")
		}
		if c.MinioAccessKey == "" || c.MinioSecretKey == "" {
			return fmt.Errorf("STORAGE_MODE=cloud requires MINIO_ACCESS_KEY and MINIO_SECRET_KEY")
		}
		if c.MinioBucket == "" {
			return fmt.Errorf("STORAGE_MODE=cloud requires MINIO_BUCKET")
		}
	default:
		return fmt.Errorf("invalid STORAGE_MODE %q (expected %q or %q)", c.StorageMode, StorageModeLocal, StorageModeCloud)
	}
	return nil
}
