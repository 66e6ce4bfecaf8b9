// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration.
//
// WAFFLE's CoreConfig handles framework-level settings like HTTP ports,
// TLS, and logging. Everything specific to the listing service lives here.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Search index (Elasticsearch)
	SearchURLs       []string // One or more node URLs
	SearchUsername   string
	SearchPassword   string
	SearchIndex      string // Index holding property entries (default: properties)
	SearchSize       int    // Max hits returned by POST /api/properties/search
	SearchMaxRetries int

	// Bearer credentials
	JWTSecret string        // HMAC signing secret, at least 32 bytes
	JWTExpiry time.Duration // Credential lifetime (default: 1h)

	// Image storage (S3 or S3-compatible). Blank bucket disables image routes.
	StorageS3Region    string
	StorageS3Bucket    string
	StorageS3Prefix    string // Key prefix (e.g., "properties/")
	StorageS3Endpoint  string // Custom endpoint for MinIO and friends
	StorageS3AccessKey string // Blank uses the default AWS credential chain
	StorageS3SecretKey string
	StorageS3PublicURL string // Base URL for returned image links

	// Redis holds the index dead-letter set. Blank address disables it.
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	DeadLetterKey string
	// IndexRetryInterval is how often dead-lettered IDs are re-synced; zero disables.
	IndexRetryInterval time.Duration

	// HTTP surface
	CORSOrigins       []string
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// Handler timeouts
	TimeoutPing   time.Duration
	TimeoutShort  time.Duration
	TimeoutMedium time.Duration
	TimeoutLong   time.Duration

	// Admin bootstrap (promotes/creates on startup)
	AdminEmail    string
	AdminPassword string
	AdminName     string
}
