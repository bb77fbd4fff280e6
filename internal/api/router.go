package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"rollcall/internal/attendance"
	"rollcall/internal/auth"
	"rollcall/internal/dashboard"
	"rollcall/internal/httpmiddleware"
)

// HealthCheck reports whether one backend is reachable.
type HealthCheck func(ctx context.Context) bool

// Deps are the collaborators the HTTP layer needs.
type Deps struct {
	Service     *attendance.Service
	Accounts    *auth.Accounts
	Dashboards  *dashboard.Registry
	Verifier    auth.Verifier
	Limiter     httpmiddleware.Limiter
	CORSOrigins []string
	Checks      map[string]HealthCheck
}

type handler struct {
	svc        *attendance.Service
	accounts   *auth.Accounts
	dashboards *dashboard.Registry
	checks     map[string]HealthCheck
}

// NewRouter builds the gin engine with middleware and every route mounted.
func NewRouter(d Deps) *gin.Engine {
	h := &handler{
		svc:        d.Service,
		accounts:   d.Accounts,
		dashboards: d.Dashboards,
		checks:     d.Checks,
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))
	r.Use(corsMiddleware(d.CORSOrigins))
	r.Use(httpmiddleware.SecurityHeaders())
	r.Use(httpmiddleware.Metrics())
	if d.Limiter != nil {
		r.Use(httpmiddleware.RateLimit(d.Limiter))
	}

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/healthz", h.health)

	api := r.Group("/api")
	api.POST("/auth/register", h.register)
	api.POST("/auth/login", h.login)

	secured := api.Group("", auth.Authenticate(d.Verifier))
	secured.GET("/dashboard", h.dashboard)
	secured.GET("/teacher/classes", h.teacherClasses)
	secured.GET("/classes/:classId/students", h.roster)
	secured.POST("/attendance/take", h.takeAttendance)
	secured.GET("/attendance/record/:classId", h.latestRecord)

	return r
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		MaxAge:       24 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cors.New(cfg)
		}
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		return cors.New(cfg)
	}
	cfg.AllowOrigins = origins
	return cors.New(cfg)
}

func (h *handler) health(c *gin.Context) {
	body := gin.H{"status": "ok"}
	status := http.StatusOK
	for name, check := range h.checks {
		ok := check(c.Request.Context())
		body[name] = ok
		if !ok {
			status = http.StatusServiceUnavailable
			body["status"] = "degraded"
		}
	}
	c.JSON(status, body)
}
