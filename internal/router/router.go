package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/study-ui/internal/handler"
	"github.com/iliyamo/study-ui/internal/middleware"
	"github.com/iliyamo/study-ui/internal/utils"
)

// RegisterRoutes registers routes that need no authentication and sit
// outside the /v1 rate limit.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterSeating registers the seating counter under /v1/seating.  The
// cache middleware applies to the GET endpoints only; POST results are
// computed every time.
func RegisterSeating(g *echo.Group, h *handler.SeatingHandler, cache echo.MiddlewareFunc) {
	s := g.Group("/seating")
	s.GET("", h.Get, cache)
	s.GET("/steps", h.Steps, cache)
	s.GET("/sample", h.Sample, cache)
	s.POST("/compute", h.Compute)
}

// RegisterTracker registers the study schedule under /v1/topics/:topic.
// Reads are public; every write requires an EDITOR token signed with
// jwtSecret and then passes writeLimit, which sees the editor id.
func RegisterTracker(g *echo.Group, h *handler.TrackerHandler, jwtSecret string, writeLimit echo.MiddlewareFunc) {
	t := g.Group("/topics/:topic")
	t.GET("/rows", h.List)
	t.GET("/rows.csv", h.Export)

	w := t.Group("", middleware.JWTAuth(jwtSecret), middleware.RequireRole(utils.RoleEditor), writeLimit)
	w.POST("/rows", h.Create)
	w.PATCH("/rows/:id", h.Update)
	w.DELETE("/rows/:id", h.Delete)
	w.POST("/rows/:id/reviews", h.ToggleReview)
	w.PUT("/rows/:id/date", h.SetDate)
	w.POST("/reset", h.Reset)
	w.POST("/import", h.Import)
}
