// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/dalemusser/listinghub/internal/app/system/assets"
	"github.com/dalemusser/listinghub/internal/app/system/deadletter"
	"github.com/dalemusser/listinghub/internal/app/system/indexsync"
	"github.com/dalemusser/listinghub/internal/app/system/searchindex"
	"github.com/dalemusser/listinghub/internal/app/system/workers"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database/back-end dependencies for the app.
type DBDeps struct {
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database

	Search *searchindex.Client

	// Redis and DeadLetter are nil when redis_addr is blank.
	Redis      *redis.Client
	DeadLetter *deadletter.Set

	// Assets is nil when no S3 bucket is configured.
	Assets assets.Store

	// Sync keeps the search index in line with property writes.
	Sync *indexsync.Syncer
	// IndexRetry drains DeadLetter in the background; nil when disabled.
	IndexRetry *workers.IndexRetry
}
