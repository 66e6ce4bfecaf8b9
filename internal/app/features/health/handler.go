package health

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/dalemusser/listinghub/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// Pinger is anything that can report its own reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// MongoPinger pings the primary of a Mongo deployment.
type MongoPinger struct {
	Client *mongo.Client
}

func (p MongoPinger) Ping(ctx context.Context) error {
	return p.Client.Ping(ctx, readpref.Primary())
}

// Handler holds dependencies needed for health checks.
type Handler struct {
	DB     Pinger
	Search Pinger
	Log    *zap.Logger
}

// NewHandler constructs a health Handler. search may be nil.
func NewHandler(db Pinger, search Pinger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:     db,
		Search: search,
		Log:    logger,
	}
}

// healthResponse is the JSON structure for the health check response.
type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Search   string `json:"search"`
	Message  string `json:"message,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Serve handles GET /health.
//
// On success: 200 and
//
//	{ "status":"ok", "database":"connected", "search":"connected" }
//
// Search down: 200 and status "degraded". DB down: 503 and
//
//	{ "status":"error", "database":"disconnected", "message":"Database unavailable", "error":"…"}
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Ping())
	defer cancel()

	w.Header().Set("Content-Type", "application/json")

	resp := healthResponse{
		Status:   "ok",
		Database: "connected",
		Search:   "disabled",
	}

	if err := h.DB.Ping(ctx); err != nil {
		h.Log.Error("health-check: mongo ping failed", zap.Error(err))
		w.WriteHeader(http.StatusServiceUnavailable)
		resp.Status = "error"
		resp.Database = "disconnected"
		resp.Search = ""
		resp.Message = "Database unavailable"
		resp.Error = err.Error()
		_ = json.NewEncoder(w).Encode(resp)
		return
	}

	if h.Search != nil {
		if err := h.Search.Ping(ctx); err != nil {
			h.Log.Warn("health-check: search ping failed", zap.Error(err))
			resp.Status = "degraded"
			resp.Search = "unavailable"
			resp.Message = "Search unavailable"
		} else {
			resp.Search = "connected"
		}
	}

	_ = json.NewEncoder(w).Encode(resp)
}
