// internal/app/features/properties/handler.go
package properties

import (
	"context"

	propertystore "github.com/dalemusser/listinghub/internal/app/store/properties"
	userstore "github.com/dalemusser/listinghub/internal/app/store/users"
	"github.com/dalemusser/listinghub/internal/app/system/assets"
	"github.com/dalemusser/listinghub/internal/app/system/indexsync"
	"github.com/dalemusser/listinghub/internal/app/system/searchindex"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Searcher runs a listing query against the search index and returns
// matching property IDs.
type Searcher interface {
	Search(ctx context.Context, q searchindex.Query, size int) ([]string, error)
}

type Handler struct {
	Props      *propertystore.Store
	Users      *userstore.Store
	Search     Searcher
	Sync       *indexsync.Syncer
	Assets     assets.Store // nil when image storage is not configured
	SearchSize int
	Log        *zap.Logger
}

// NewHandler constructs the properties feature handler. store may be nil,
// in which case image endpoints answer 503.
func NewHandler(db *mongo.Database, search Searcher, sync *indexsync.Syncer, store assets.Store, searchSize int, logger *zap.Logger) *Handler {
	if searchSize <= 0 {
		searchSize = 10
	}
	return &Handler{
		Props:      propertystore.New(db),
		Users:      userstore.New(db),
		Search:     search,
		Sync:       sync,
		Assets:     store,
		SearchSize: searchSize,
		Log:        logger,
	}
}
