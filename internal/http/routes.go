package http

import (
	"time"

	"bananas_server/internal/config"
	"bananas_server/internal/http/handlers"
	"bananas_server/internal/http/middleware"
	"bananas_server/internal/ws"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deps are the pieces the router wires together. Limiter, Results and the
// entries of Checks may be nil or empty when the backend is not configured.
type Deps struct {
	Config  *config.Config
	Hub     *ws.Hub
	Limiter *middleware.RedisLimiter
	Results handlers.ResultSource
	Checks  map[string]handlers.Pinger
	Version string
}

func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(corsMiddleware(d.Config.AllowedOrigins))
	RegisterRoutes(r, d)
	return r
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowOriginFunc = func(string) bool { return true }
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	h := handlers.NewHandler(d.Hub, d.Results)
	healthHandler := handlers.NewHealthHandler(d.Version, d.Hub, d.Checks)

	limit := d.Config.WSRateLimit
	window := time.Duration(d.Config.WSRateWindow) * time.Second

	// Health checks (no rate limiting)
	r.GET("/health", healthHandler.Liveness)
	r.GET("/readyz", healthHandler.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	api.Use(d.Limiter.Limit(limit, window))
	api.GET("/rooms/:id", h.GetRoom)
	api.GET("/results", h.RecentResults)

	r.GET("/ws", d.Limiter.Limit(limit, window), ws.HandleWS(d.Hub, d.Config.AllowedOrigins))
}
