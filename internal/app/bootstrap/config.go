// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/listinghub/internal/app/system/auth"
	"github.com/dalemusser/listinghub/internal/app/system/inputval"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/urlutil"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for ListingHub.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, jwt_secret, etc.
//   - Environment variables: LISTINGHUB_MONGO_URI, LISTINGHUB_JWT_SECRET, etc.
//   - Command-line flags: --mongo_uri, --jwt_secret, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "listinghub", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},

	// Search index
	{Name: "search_urls", Default: "http://localhost:9200", Desc: "Comma-separated Elasticsearch node URLs"},
	{Name: "search_username", Default: "", Desc: "Elasticsearch basic auth username"},
	{Name: "search_password", Default: "", Desc: "Elasticsearch basic auth password"},
	{Name: "search_index", Default: "properties", Desc: "Elasticsearch index for property entries"},
	{Name: "search_size", Default: 10, Desc: "Maximum search hits per query"},
	{Name: "search_max_retries", Default: 0, Desc: "Elasticsearch client retries (0 disables)"},

	// Bearer credentials
	{Name: "jwt_secret", Default: "", Desc: "HMAC secret for bearer credentials (at least 32 bytes)"},
	{Name: "jwt_expiry", Default: "1h", Desc: "Bearer credential lifetime (e.g., 1h, 30m)"},

	// S3 image storage
	{Name: "storage_s3_region", Default: "us-east-1", Desc: "AWS region for S3"},
	{Name: "storage_s3_bucket", Default: "", Desc: "S3 bucket name (blank disables image uploads)"},
	{Name: "storage_s3_prefix", Default: "properties/", Desc: "S3 key prefix"},
	{Name: "storage_s3_endpoint", Default: "", Desc: "Custom S3 endpoint (MinIO, LocalStack)"},
	{Name: "storage_s3_access_key", Default: "", Desc: "S3 access key (blank uses the default credential chain)"},
	{Name: "storage_s3_secret_key", Default: "", Desc: "S3 secret key"},
	{Name: "storage_s3_public_url", Default: "", Desc: "Base URL for image links (CDN or bucket URL)"},

	// Redis dead-letter set
	{Name: "redis_addr", Default: "", Desc: "Redis address for the index dead-letter set (blank disables)"},
	{Name: "redis_password", Default: "", Desc: "Redis password"},
	{Name: "redis_db", Default: 0, Desc: "Redis database number"},
	{Name: "deadletter_key", Default: "listinghub:index:deadletter", Desc: "Redis set holding unsynced property IDs"},
	{Name: "index_retry_interval", Default: "1m", Desc: "How often unsynced property IDs are retried (0 disables)"},

	// HTTP
	{Name: "cors_origins", Default: "*", Desc: "Comma-separated allowed CORS origins"},
	{Name: "rate_limit_requests", Default: 100, Desc: "Requests allowed per client IP per window"},
	{Name: "rate_limit_window", Default: "10m", Desc: "Rate limit window"},

	// Timeouts
	{Name: "timeout_ping", Default: "2s", Desc: "Health check timeout"},
	{Name: "timeout_short", Default: "5s", Desc: "Single-document operation timeout"},
	{Name: "timeout_medium", Default: "10s", Desc: "List, search and write timeout"},
	{Name: "timeout_long", Default: "60s", Desc: "Upload, cascade and reindex step timeout"},

	// Admin bootstrap
	{Name: "admin_email", Default: "", Desc: "Email of the admin account (promotes/creates on startup)"},
	{Name: "admin_password", Default: "", Desc: "Password used when the admin account is created"},
	{Name: "admin_name", Default: "Administrator", Desc: "Display name used when the admin account is created"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles .env files, config files,
// environment variables (WAFFLE_* for core, LISTINGHUB_* for app) and
// command-line flags, merged with precedence flags > env > files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "LISTINGHUB", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		SearchURLs:       splitList(appValues.String("search_urls")),
		SearchUsername:   appValues.String("search_username"),
		SearchPassword:   appValues.String("search_password"),
		SearchIndex:      appValues.String("search_index"),
		SearchSize:       appValues.Int("search_size"),
		SearchMaxRetries: appValues.Int("search_max_retries"),

		JWTSecret: appValues.String("jwt_secret"),
		JWTExpiry: appValues.Duration("jwt_expiry", time.Hour),

		StorageS3Region:    appValues.String("storage_s3_region"),
		StorageS3Bucket:    appValues.String("storage_s3_bucket"),
		StorageS3Prefix:    appValues.String("storage_s3_prefix"),
		StorageS3Endpoint:  appValues.String("storage_s3_endpoint"),
		StorageS3AccessKey: appValues.String("storage_s3_access_key"),
		StorageS3SecretKey: appValues.String("storage_s3_secret_key"),
		StorageS3PublicURL: appValues.String("storage_s3_public_url"),

		RedisAddr:     appValues.String("redis_addr"),
		RedisPassword: appValues.String("redis_password"),
		RedisDB:       appValues.Int("redis_db"),
		DeadLetterKey: appValues.String("deadletter_key"),

		IndexRetryInterval: appValues.Duration("index_retry_interval", time.Minute),

		CORSOrigins:       splitList(appValues.String("cors_origins")),
		RateLimitRequests: appValues.Int("rate_limit_requests"),
		RateLimitWindow:   appValues.Duration("rate_limit_window", 10*time.Minute),

		TimeoutPing:   appValues.Duration("timeout_ping", 0),
		TimeoutShort:  appValues.Duration("timeout_short", 0),
		TimeoutMedium: appValues.Duration("timeout_medium", 0),
		TimeoutLong:   appValues.Duration("timeout_long", 0),

		AdminEmail:    strings.TrimSpace(appValues.String("admin_email")),
		AdminPassword: appValues.String("admin_password"),
		AdminName:     appValues.String("admin_name"),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	if len(appCfg.JWTSecret) < auth.MinSecretLength {
		return fmt.Errorf("jwt_secret must be at least %d bytes", auth.MinSecretLength)
	}
	if appCfg.JWTExpiry <= 0 {
		return fmt.Errorf("jwt_expiry must be positive")
	}

	if len(appCfg.SearchURLs) == 0 {
		return fmt.Errorf("search_urls is required")
	}
	for _, u := range appCfg.SearchURLs {
		if !urlutil.IsValidAbsHTTPURL(u) {
			return fmt.Errorf("invalid search URL %q", u)
		}
	}
	if appCfg.SearchIndex == "" {
		return fmt.Errorf("search_index is required")
	}
	if appCfg.SearchSize <= 0 {
		return fmt.Errorf("search_size must be positive")
	}

	if appCfg.StorageS3Bucket != "" && appCfg.StorageS3Region == "" {
		return fmt.Errorf("storage_s3_region is required when storage_s3_bucket is set")
	}
	if (appCfg.StorageS3AccessKey == "") != (appCfg.StorageS3SecretKey == "") {
		return fmt.Errorf("storage_s3_access_key and storage_s3_secret_key must be set together")
	}

	if appCfg.RateLimitRequests <= 0 || appCfg.RateLimitWindow <= 0 {
		return fmt.Errorf("rate_limit_requests and rate_limit_window must be positive")
	}

	if appCfg.AdminEmail != "" && !inputval.IsValidEmail(appCfg.AdminEmail) {
		return fmt.Errorf("admin_email %q is not a valid email", appCfg.AdminEmail)
	}

	if coreCfg != nil && coreCfg.Env == "prod" {
		for _, o := range appCfg.CORSOrigins {
			if o == "*" {
				logger.Warn("cors_origins allows any origin in production")
			}
		}
	}

	return nil
}

// splitList splits a comma-separated value, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
