package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds every runtime setting of the API.
type Config struct {
	Port            string
	Environment     string
	LogLevel        string
	CORSOrigins     []string
	RateLimitPerMin int

	// Database
	DatabaseDriver    string
	DatabaseURL       string
	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime string
	DBConnMaxIdleTime string

	// Redis
	RedisURL string

	// Auth
	JWTSecret          string
	FrontendURL        string
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string

	// Blob storage
	StorageBackend string
	StoragePath    string
	PublicBaseURL  string
	S3Endpoint     string
	S3AccessKey    string
	S3SecretKey    string
	S3Bucket       string
	S3UseSSL       bool
	BlobURLTTL     time.Duration

	// Quota and hierarchy
	MaxFileSize        int64
	MaxTotalStorage    int64
	FolderDeletePolicy string
	MaxFolderDepth     int
	UploadConcurrency  int
	ReservationTTL     time.Duration
	MaxArchiveEntries  int

	// Email
	ResendAPIKey string
	EmailFrom    string

	// Background jobs
	ReconcileSchedule string
}

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"

	BackendLocal = "local"
	BackendS3    = "s3"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("environment", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("cors_origins", "http://localhost:3000")
	v.SetDefault("rate_limit_per_min", 100)

	v.SetDefault("database_driver", DriverPostgres)
	v.SetDefault("database_url", "")
	v.SetDefault("db_max_open_conns", 25)
	v.SetDefault("db_max_idle_conns", 5)
	v.SetDefault("db_conn_max_lifetime", "5m")
	v.SetDefault("db_conn_max_idle_time", "10m")

	v.SetDefault("redis_url", "redis://localhost:6379/0")

	v.SetDefault("jwt_secret", "")
	v.SetDefault("jwt_secret_file", "")
	v.SetDefault("frontend_url", "http://localhost:3000")
	v.SetDefault("google_client_id", "")
	v.SetDefault("google_client_secret", "")
	v.SetDefault("google_redirect_url", "")

	v.SetDefault("storage_backend", BackendLocal)
	v.SetDefault("storage_path", "./data/blobs")
	v.SetDefault("public_base_url", "http://localhost:8080")
	v.SetDefault("s3_endpoint", "")
	v.SetDefault("s3_access_key", "")
	v.SetDefault("s3_secret_key", "")
	v.SetDefault("s3_bucket", "drive-clone")
	v.SetDefault("s3_use_ssl", true)
	v.SetDefault("blob_url_ttl", "15m")

	v.SetDefault("max_file_size", 50*1024*1024)
	v.SetDefault("max_total_storage", 500*1024*1024)
	v.SetDefault("folder_delete_policy", "reject")
	v.SetDefault("max_folder_depth", 64)
	v.SetDefault("upload_concurrency", 4)
	v.SetDefault("reservation_ttl", "15m")
	v.SetDefault("max_archive_entries", 1000)

	v.SetDefault("resend_api_key", "")
	v.SetDefault("email_from", "Drive Clone <noreply@localhost>")

	v.SetDefault("reconcile_schedule", "*/30 * * * *")
}

// LoadConfig reads configuration from the environment and, when path is not
// empty, from a YAML file. It fails fast on missing or weak secrets.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file '%s': %w", path, err)
		}
	}

	cfg := &Config{
		Port:            v.GetString("port"),
		Environment:     v.GetString("environment"),
		LogLevel:        v.GetString("log_level"),
		CORSOrigins:     splitList(v.GetString("cors_origins")),
		RateLimitPerMin: v.GetInt("rate_limit_per_min"),

		DatabaseDriver:    strings.ToLower(v.GetString("database_driver")),
		DatabaseURL:       v.GetString("database_url"),
		DBMaxOpenConns:    v.GetInt("db_max_open_conns"),
		DBMaxIdleConns:    v.GetInt("db_max_idle_conns"),
		DBConnMaxLifetime: v.GetString("db_conn_max_lifetime"),
		DBConnMaxIdleTime: v.GetString("db_conn_max_idle_time"),

		RedisURL: v.GetString("redis_url"),

		JWTSecret:          v.GetString("jwt_secret"),
		FrontendURL:        strings.TrimSuffix(v.GetString("frontend_url"), "/"),
		GoogleClientID:     v.GetString("google_client_id"),
		GoogleClientSecret: v.GetString("google_client_secret"),
		GoogleRedirectURL:  v.GetString("google_redirect_url"),

		StorageBackend: strings.ToLower(v.GetString("storage_backend")),
		StoragePath:    v.GetString("storage_path"),
		PublicBaseURL:  strings.TrimSuffix(v.GetString("public_base_url"), "/"),
		S3Endpoint:     v.GetString("s3_endpoint"),
		S3AccessKey:    v.GetString("s3_access_key"),
		S3SecretKey:    v.GetString("s3_secret_key"),
		S3Bucket:       v.GetString("s3_bucket"),
		S3UseSSL:       v.GetBool("s3_use_ssl"),
		BlobURLTTL:     v.GetDuration("blob_url_ttl"),

		MaxFileSize:        v.GetInt64("max_file_size"),
		MaxTotalStorage:    v.GetInt64("max_total_storage"),
		FolderDeletePolicy: strings.ToLower(v.GetString("folder_delete_policy")),
		MaxFolderDepth:     v.GetInt("max_folder_depth"),
		UploadConcurrency:  v.GetInt("upload_concurrency"),
		ReservationTTL:     v.GetDuration("reservation_ttl"),
		MaxArchiveEntries:  v.GetInt("max_archive_entries"),

		ResendAPIKey: v.GetString("resend_api_key"),
		EmailFrom:    v.GetString("email_from"),

		ReconcileSchedule: v.GetString("reconcile_schedule"),
	}

	if secretFile := v.GetString("jwt_secret_file"); secretFile != "" {
		secret, err := readSecretFromFile(secretFile)
		if err != nil {
			return nil, err
		}
		cfg.JWTSecret = secret
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate enforces the fail-fast rules on a loaded config
func (c *Config) Validate() error {
	if err := ValidateJWTSecret(c.JWTSecret); err != nil {
		return err
	}

	switch c.DatabaseDriver {
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("CRITICAL: DATABASE_URL is required for the postgres driver")
		}
	case DriverSQLite:
		if c.DatabaseURL == "" {
			c.DatabaseURL = "file:drive-clone.db?_busy_timeout=5000"
		}
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER '%s' (want postgres or sqlite3)", c.DatabaseDriver)
	}

	switch c.StorageBackend {
	case BackendLocal:
		if c.StoragePath == "" {
			return fmt.Errorf("STORAGE_PATH is required for the local blob backend")
		}
	case BackendS3:
		if c.S3Endpoint == "" || c.S3AccessKey == "" || c.S3SecretKey == "" || c.S3Bucket == "" {
			return fmt.Errorf("CRITICAL: S3_ENDPOINT, S3_ACCESS_KEY, S3_SECRET_KEY and S3_BUCKET are required for the s3 blob backend")
		}
	default:
		return fmt.Errorf("unsupported STORAGE_BACKEND '%s' (want local or s3)", c.StorageBackend)
	}

	if c.MaxFileSize <= 0 || c.MaxTotalStorage <= 0 {
		return fmt.Errorf("MAX_FILE_SIZE and MAX_TOTAL_STORAGE must be positive")
	}
	if c.MaxFileSize > c.MaxTotalStorage {
		return fmt.Errorf("MAX_FILE_SIZE (%d) cannot exceed MAX_TOTAL_STORAGE (%d)", c.MaxFileSize, c.MaxTotalStorage)
	}

	switch c.FolderDeletePolicy {
	case "reject", "cascade":
	default:
		return fmt.Errorf("unsupported FOLDER_DELETE_POLICY '%s' (want reject or cascade)", c.FolderDeletePolicy)
	}

	if c.MaxFolderDepth <= 0 {
		c.MaxFolderDepth = 64
	}
	if c.UploadConcurrency <= 0 {
		c.UploadConcurrency = 4
	}
	if c.ReservationTTL <= 0 {
		c.ReservationTTL = 15 * time.Minute
	}
	if c.BlobURLTTL <= 0 {
		c.BlobURLTTL = 15 * time.Minute
	}

	return nil
}

// GoogleOAuthEnabled reports whether Google sign-in is configured
func (c *Config) GoogleOAuthEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != "" && c.GoogleRedirectURL != ""
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
