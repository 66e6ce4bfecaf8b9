// internal/app/features/admin/handler.go
package admin

import (
	"context"

	propertystore "github.com/dalemusser/listinghub/internal/app/store/properties"
	userstore "github.com/dalemusser/listinghub/internal/app/store/users"
	"github.com/dalemusser/listinghub/internal/app/system/assets"
	"github.com/dalemusser/listinghub/internal/app/system/indexsync"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Reindexer rebuilds the search index from a property source.
type Reindexer interface {
	Reindex(ctx context.Context, src indexsync.Source) (indexsync.ReindexResult, error)
}

type Handler struct {
	DB      *mongo.Database
	Users   *userstore.Store
	Props   *propertystore.Store
	Sync    *indexsync.Syncer
	Reindex Reindexer
	Assets  assets.Store // may be nil
	Log     *zap.Logger
}

// NewHandler constructs the admin feature handler.
func NewHandler(db *mongo.Database, sync *indexsync.Syncer, store assets.Store, logger *zap.Logger) *Handler {
	return &Handler{
		DB:      db,
		Users:   userstore.New(db),
		Props:   propertystore.New(db),
		Sync:    sync,
		Reindex: sync,
		Assets:  store,
		Log:     logger,
	}
}
