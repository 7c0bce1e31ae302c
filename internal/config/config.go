package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv          string
	Port            string
	AllowedOrigins  string
	DefaultLanguage string

	LogLevel  string
	LogFormat string

	DB    DatabaseConfig
	Media MediaConfig
	Geo   GeoConfig

	RedisURL string

	MeiliSearchHost string
	MeiliMasterKey  string

	JWTSecret string
	JWTTTL    time.Duration

	RateLimitSubmission time.Duration
	RateLimitRegister   time.Duration
}

type DatabaseConfig struct {
	Driver      string // sqlite or postgres
	SQLitePath  string
	URL         string
	Host        string
	User        string
	Password    string
	Name        string
	Port        string
	LockTimeout time.Duration
}

type MediaConfig struct {
	Backend        string // local, cloudinary or s3
	UploadsDir     string
	MaxUploadBytes int64

	CloudinaryFolder string

	S3Endpoint     string
	S3Region       string
	S3Bucket       string
	S3AccessKey    string
	S3SecretKey    string
	S3UsePathStyle bool
	S3PresignTTL   time.Duration
}

type GeoConfig struct {
	BaseURL   string
	IPBaseURL string
	Timeout   time.Duration
	UserAgent string
}

func Load() (*Config, error) {
	// Don't fail if .env doesn't exist (might be prod env vars)
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:          getEnv("APP_ENV", "development"),
		Port:            getEnv("PORT", "8080"),
		AllowedOrigins:  getEnv("ALLOWED_ORIGINS", "http://localhost:3000"),
		DefaultLanguage: getEnv("DEFAULT_LANGUAGE", "en"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: os.Getenv("LOG_FORMAT"),

		DB: DatabaseConfig{
			Driver:     getEnv("DB_DRIVER", "sqlite"),
			SQLitePath: getEnv("SQLITE_PATH", "plantspeak.db"),
			URL:        os.Getenv("DATABASE_URL"),
			Host:       getEnv("DB_HOST", "localhost"),
			User:       getEnv("DB_USER", "postgres"),
			Password:   os.Getenv("DB_PASS"),
			Name:       getEnv("DB_NAME", "plantspeak"),
			Port:       getEnv("DB_PORT", "5432"),
		},

		Media: MediaConfig{
			Backend:          getEnv("MEDIA_BACKEND", "local"),
			UploadsDir:       getEnv("UPLOADS_DIR", "uploads"),
			CloudinaryFolder: getEnv("CLOUDINARY_UPLOAD_FOLDER", "plantspeak"),
			S3Endpoint:       os.Getenv("S3_ENDPOINT"),
			S3Region:         getEnv("S3_REGION", "us-east-1"),
			S3Bucket:         os.Getenv("S3_BUCKET"),
			S3AccessKey:      os.Getenv("S3_ACCESS_KEY"),
			S3SecretKey:      os.Getenv("S3_SECRET_KEY"),
			S3UsePathStyle:   getEnv("S3_USE_PATH_STYLE", "true") == "true",
		},

		Geo: GeoConfig{
			BaseURL:   getEnv("GEOCODER_BASE_URL", "https://nominatim.openstreetmap.org"),
			IPBaseURL: getEnv("IP_GEOLOCATION_URL", "https://ipapi.co"),
			UserAgent: getEnv("GEOCODER_USER_AGENT", "PlantSpeakApp/1.0"),
		},

		RedisURL: os.Getenv("REDIS_URL"),

		MeiliSearchHost: os.Getenv("MEILISEARCH_HOST"),
		MeiliMasterKey:  os.Getenv("MEILI_MASTER_KEY"),

		JWTSecret: getEnv("JWT_SECRET", "change-me"),
	}

	maxMB, err := strconv.Atoi(getEnv("MAX_UPLOAD_MB", "20"))
	if err != nil || maxMB <= 0 {
		return nil, fmt.Errorf("invalid MAX_UPLOAD_MB: %q", os.Getenv("MAX_UPLOAD_MB"))
	}
	cfg.Media.MaxUploadBytes = int64(maxMB) << 20

	durations := []struct {
		key      string
		fallback string
		dst      *time.Duration
	}{
		{"DB_LOCK_TIMEOUT", "5s", &cfg.DB.LockTimeout},
		{"GEOCODER_TIMEOUT", "5s", &cfg.Geo.Timeout},
		{"S3_PRESIGN_TTL", "15m", &cfg.Media.S3PresignTTL},
		{"JWT_TTL", "24h", &cfg.JWTTTL},
		{"RATE_LIMIT_SUBMISSION", "10s", &cfg.RateLimitSubmission},
		{"RATE_LIMIT_REGISTER", "30s", &cfg.RateLimitRegister},
	}
	for _, d := range durations {
		v, err := time.ParseDuration(getEnv(d.key, d.fallback))
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", d.key, err)
		}
		*d.dst = v
	}

	if cfg.LogFormat == "" {
		cfg.LogFormat = "json"
		if cfg.AppEnv == "development" {
			cfg.LogFormat = "console"
		}
	}

	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}
