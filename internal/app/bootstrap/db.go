// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"

	propertystore "github.com/dalemusser/listinghub/internal/app/store/properties"
	"github.com/dalemusser/listinghub/internal/app/system/assets"
	"github.com/dalemusser/listinghub/internal/app/system/deadletter"
	"github.com/dalemusser/listinghub/internal/app/system/indexes"
	"github.com/dalemusser/listinghub/internal/app/system/indexsync"
	"github.com/dalemusser/listinghub/internal/app/system/searchindex"
	"github.com/dalemusser/listinghub/internal/app/system/timeouts"
	"github.com/dalemusser/listinghub/internal/app/system/validators"
	"github.com/dalemusser/listinghub/internal/app/system/workers"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// ConnectDB connects MongoDB and builds the search, Redis and S3 clients.
//
// Mongo is required and must answer a ping. The search client is built
// without a request; reachability is checked in EnsureSchema and /health.
// Redis and S3 are optional and only set up when configured.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	var deps DBDeps

	client, err := connectMongo(ctx, appCfg)
	if err != nil {
		logger.Error("MongoDB connect failed", zap.Error(err))
		return deps, err
	}
	deps.MongoClient = client
	deps.MongoDatabase = client.Database(appCfg.MongoDatabase)
	logger.Info("connected to MongoDB", zap.String("database", appCfg.MongoDatabase))

	deps.Search, err = searchindex.New(searchindex.Config{
		Addresses:  appCfg.SearchURLs,
		Username:   appCfg.SearchUsername,
		Password:   appCfg.SearchPassword,
		Index:      appCfg.SearchIndex,
		MaxRetries: appCfg.SearchMaxRetries,
	}, logger)
	if err != nil {
		_ = closeDeps(ctx, deps, logger)
		return DBDeps{}, err
	}

	if appCfg.RedisAddr != "" {
		rdb, err := deadletter.Connect(ctx, appCfg.RedisAddr, appCfg.RedisPassword, appCfg.RedisDB)
		if err != nil {
			logger.Error("Redis connect failed", zap.String("addr", appCfg.RedisAddr), zap.Error(err))
			_ = closeDeps(ctx, deps, logger)
			return DBDeps{}, err
		}
		deps.Redis = rdb
		deps.DeadLetter = deadletter.New(rdb, appCfg.DeadLetterKey)
		logger.Info("index dead-letter set enabled", zap.String("addr", appCfg.RedisAddr))
	} else {
		logger.Warn("redis_addr not set; failed index writes are only logged")
	}

	deps.Sync = newSyncer(deps, logger)
	if deps.DeadLetter != nil && appCfg.IndexRetryInterval > 0 {
		runTimeout := appCfg.TimeoutLong
		if runTimeout <= 0 {
			runTimeout = timeouts.DefaultLong
		}
		deps.IndexRetry = workers.NewIndexRetry(deps.Sync, propertystore.New(deps.MongoDatabase), logger,
			appCfg.IndexRetryInterval, runTimeout)
	}

	if appCfg.StorageS3Bucket != "" {
		store, err := assets.NewS3Store(ctx, assets.S3Config{
			Region:        appCfg.StorageS3Region,
			Bucket:        appCfg.StorageS3Bucket,
			Prefix:        appCfg.StorageS3Prefix,
			Endpoint:      appCfg.StorageS3Endpoint,
			AccessKey:     appCfg.StorageS3AccessKey,
			SecretKey:     appCfg.StorageS3SecretKey,
			PublicBaseURL: appCfg.StorageS3PublicURL,
		}, logger)
		if err != nil {
			logger.Error("S3 store init failed", zap.Error(err))
			_ = closeDeps(ctx, deps, logger)
			return DBDeps{}, err
		}
		deps.Assets = store
	} else {
		logger.Warn("storage_s3_bucket not set; image routes will answer 503")
	}

	return deps, nil
}

// newSyncer builds the index syncer. A nil *deadletter.Set must not become
// a non-nil interface.
func newSyncer(deps DBDeps, logger *zap.Logger) *indexsync.Syncer {
	var dead indexsync.DeadLetter
	if deps.DeadLetter != nil {
		dead = deps.DeadLetter
	}
	return indexsync.New(deps.Search, dead, logger)
}

func connectMongo(ctx context.Context, appCfg AppConfig) (*mongo.Client, error) {
	opts := options.Client().ApplyURI(appCfg.MongoURI)
	if appCfg.MongoMaxPoolSize > 0 {
		opts.SetMaxPoolSize(appCfg.MongoMaxPoolSize)
	}
	if appCfg.MongoMinPoolSize > 0 {
		opts.SetMinPoolSize(appCfg.MongoMinPoolSize)
	}

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return client, nil
}

// EnsureSchema sets up Mongo indexes and validators, then the search index
// and its mapping. Search failures are logged and do not stop startup, so
// the service can come up before the index does; POST /api/admin/reindex
// fills it afterwards.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if err := indexes.EnsureAll(ctx, deps.MongoDatabase, logger); err != nil {
		return err
	}
	if err := validators.EnsureAll(ctx, deps.MongoDatabase, logger); err != nil {
		return err
	}

	if err := deps.Search.EnsureIndex(ctx); err != nil {
		logger.Error("search index setup failed", zap.String("index", deps.Search.Index()), zap.Error(err))
		return nil
	}
	if err := deps.Search.PutMapping(ctx); err != nil {
		logger.Error("search mapping setup failed", zap.String("index", deps.Search.Index()), zap.Error(err))
	}
	return nil
}
