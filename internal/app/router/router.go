// Package router wires HTTP handlers onto a gin engine.
package router

import (
	"github.com/gin-gonic/gin"

	impacthandler "competitor_backend/internal/feature/impact/transport/handler"
	orghandler "competitor_backend/internal/feature/organizations/transport/handler"
	updhandler "competitor_backend/internal/feature/updates/transport/handler"
	platformhandler "competitor_backend/internal/platform/http/handler"
	jwtmw "competitor_backend/internal/platform/jwt"
	"competitor_backend/internal/platform/metrics"
)

// Handlers groups every HTTP handler the router mounts.
type Handlers struct {
	Health        *platformhandler.HealthHandler
	Organizations *orghandler.OrganizationHandler
	Updates       *updhandler.UpdatesHandler
	Impact        *impacthandler.ImpactHandler
}

// NewRouter builds the engine. Everything under /v1 requires an operator JWT signed with jwtSecret.
func NewRouter(h Handlers, rec *metrics.Recorder, jwtSecret string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), rec.Middleware())

	// 認証不要
	r.GET("/healthz", h.Health.Health)
	r.HEAD("/healthz", h.Health.Health)
	r.OPTIONS("/healthz", h.Health.Health)
	r.GET("/readyz", h.Health.Ready)
	r.GET("/metrics", gin.WrapH(rec.Handler()))

	// 認証必須のルート
	v1 := r.Group("/v1")
	v1.Use(jwtmw.AuthRequired(jwtSecret))
	{
		v1.GET("/organizations", h.Organizations.List)
		v1.POST("/organizations", h.Organizations.Create)
		v1.GET("/organizations/:id", h.Organizations.Get)
		v1.PUT("/organizations/:id", h.Organizations.Update)
		v1.DELETE("/organizations/:id", h.Organizations.Delete)

		v1.GET("/organizations/:id/updates", h.Updates.List)
		v1.GET("/organizations/:id/runs", h.Updates.Runs)
		v1.POST("/organizations/:id/impact", h.Impact.Analyze)

		v1.POST("/fetch", h.Updates.Fetch)
		v1.POST("/briefing", h.Impact.Briefing)
		v1.GET("/stats", h.Updates.Stats)
	}

	return r
}
