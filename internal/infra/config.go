package infra

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv         string
	Port           string
	DatabaseURL    string
	JWTSecret      string
	GoogleClientID string
	GoogleIssuer   string
	GeoIPDBPath    string

	// Generation provider endpoints. Each endpoint accepts a submission and
	// is polled with ?requestId= for status.
	VideoAPIURL  string
	MusicAPIURL  string
	ImageAPIURL  string
	ImagenAPIURL string
	TTSAPIURL    string

	PollInterval    time.Duration
	PollMaxWait     time.Duration
	PollMaxAttempts int
	ImageVariants   int

	StoragePath    string
	StorageBaseURL string
	MediaTTL       time.Duration

	S3Endpoint      string
	S3Region        string
	S3AccessKey     string
	S3SecretKey     string
	S3Bucket        string
	S3PublicBaseURL string
	S3UsePathStyle  bool

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	RateLimitPerMin  int
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:         getEnv("APP_ENV", "development"),
		Port:           getEnv("PORT", "8080"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		GoogleClientID: os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleIssuer:   getEnv("GOOGLE_ISSUER", "https://accounts.google.com"),
		GeoIPDBPath:    os.Getenv("GEOIP_DB_PATH"),

		VideoAPIURL:  getEnv("VIDEO_API_URL", "https://viinapi.netlify.app/api/video"),
		MusicAPIURL:  os.Getenv("MUSIC_API_URL"),
		ImageAPIURL:  os.Getenv("IMAGE_API_URL"),
		ImagenAPIURL: os.Getenv("IMAGEN_API_URL"),
		TTSAPIURL:    os.Getenv("TTS_API_URL"),

		PollInterval:    time.Millisecond * time.Duration(getEnvInt("POLL_INTERVAL_MS", 8000)),
		PollMaxWait:     time.Second * time.Duration(getEnvInt("POLL_MAX_WAIT_SECONDS", 600)),
		PollMaxAttempts: getEnvInt("POLL_MAX_ATTEMPTS", 75),
		ImageVariants:   getEnvInt("IMAGE_VARIANTS", 2),

		StoragePath:    getEnv("STORAGE_PATH", "./storage"),
		StorageBaseURL: getEnv("STORAGE_BASE_URL", "http://localhost:8080/static"),
		MediaTTL:       time.Hour * time.Duration(getEnvInt("MEDIA_TTL_HOURS", 72)),

		S3Endpoint:      os.Getenv("S3_ENDPOINT"),
		S3Region:        os.Getenv("S3_REGION"),
		S3AccessKey:     os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey:     os.Getenv("S3_SECRET_KEY"),
		S3Bucket:        os.Getenv("S3_BUCKET"),
		S3PublicBaseURL: os.Getenv("S3_PUBLIC_BASE_URL"),
		S3UsePathStyle:  getEnv("S3_USE_PATH_STYLE", "") == "true",

		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		// Generate handlers block through the whole poll budget, so the
		// write timeout must outlive PollMaxWait.
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 660)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:  getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return cfg, nil
}

// S3Enabled reports whether enough S3 settings are present to re-host media
// in a bucket instead of the local file store.
func (c *Config) S3Enabled() bool {
	return c.S3Bucket != "" && c.S3Region != "" && c.S3AccessKey != "" && c.S3SecretKey != "" && c.S3PublicBaseURL != ""
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
