// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	adminfeature "github.com/dalemusser/listinghub/internal/app/features/admin"
	healthfeature "github.com/dalemusser/listinghub/internal/app/features/health"
	loginfeature "github.com/dalemusser/listinghub/internal/app/features/login"
	propertiesfeature "github.com/dalemusser/listinghub/internal/app/features/properties"
	userstore "github.com/dalemusser/listinghub/internal/app/store/users"
	"github.com/dalemusser/listinghub/internal/app/system/apierr"
	"github.com/dalemusser/listinghub/internal/app/system/auth"
	"github.com/dalemusser/listinghub/internal/app/system/limits"
	"github.com/dalemusser/listinghub/internal/app/system/ratelimit"
	"github.com/dalemusser/listinghub/internal/app/system/reqlog"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed.
//
// ListingHub mounts a JSON API: /api/auth for accounts, /api/properties for
// listings and search, /api/admin for the admin console, and /health.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	authMgr, err := auth.NewManager(appCfg.JWTSecret, appCfg.JWTExpiry, userstore.NewFetcher(deps.MongoDatabase), logger)
	if err != nil {
		logger.Error("auth manager init failed", zap.Error(err))
		return nil, err
	}

	syncer := deps.Sync
	if syncer == nil {
		syncer = newSyncer(deps, logger)
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(reqlog.WithRequestLogging(logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: appCfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id", "X-RateLimit-Remaining"},
		MaxAge:         300,
	}))
	r.Use(reqlog.SecureHeaders)
	r.Use(ratelimit.New(appCfg.RateLimitRequests, appCfg.RateLimitWindow).Middleware)
	// Multipart image uploads are the largest bodies; JSON bodies are capped
	// again in formutil.DecodeJSON.
	r.Use(middleware.RequestSize(limits.MaxImageUpload))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		apierr.Msg(w, http.StatusNotFound, "Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		apierr.Msg(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(healthfeature.MongoPinger{Client: deps.MongoClient}, deps.Search, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	r.Route("/api", func(api chi.Router) {
		loginHandler := loginfeature.NewHandler(deps.MongoDatabase, authMgr, ratelimit.NewLoginLimiter(), logger)
		api.Mount("/auth", loginfeature.Routes(loginHandler))

		propertiesHandler := propertiesfeature.NewHandler(deps.MongoDatabase, deps.Search, syncer, deps.Assets, appCfg.SearchSize, logger)
		api.Mount("/properties", propertiesfeature.Routes(propertiesHandler, authMgr))

		adminHandler := adminfeature.NewHandler(deps.MongoDatabase, syncer, deps.Assets, logger)
		api.Mount("/admin", adminfeature.Routes(adminHandler, authMgr))
	})

	return r, nil
}
