package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"resume-seo-web/internal/services/health"
	"resume-seo-web/internal/shared/config"
	"resume-seo-web/internal/shared/metrics"
	"resume-seo-web/internal/shared/server/middleware"
	"resume-seo-web/internal/web"
)

// RouterDeps holds what NewRouter mounts.
type RouterDeps struct {
	Config  config.Config
	Web     *web.Handler
	Metrics *metrics.Registry
	Health  *health.Service
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		otelgin.Middleware(serviceName(deps.Config)),
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
	)

	r.GET("/health", func(c *gin.Context) {
		if deps.Health == nil {
			c.JSON(http.StatusOK, gin.H{"ok": true})
			return
		}
		rep := deps.Health.Status(c.Request.Context())
		status := http.StatusOK
		if !rep.OK {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, rep)
	})
	if deps.Metrics != nil {
		r.GET("/metrics", deps.Metrics.Handler())
	}

	if deps.Web != nil {
		deps.Web.RegisterRoutes(r)
		api := r.Group("/api/v1", middleware.CORS(deps.Config.CORSAllowOrigin))
		deps.Web.RegisterAPI(api)
	}

	return r
}

func serviceName(cfg config.Config) string {
	if cfg.ServiceName != "" {
		return cfg.ServiceName
	}
	return "resume-seo-web"
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
