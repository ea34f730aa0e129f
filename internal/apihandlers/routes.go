package apihandlers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"admatch/internal/metrics"
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-ID"

// RegisterRoutes mounts every endpoint on router.
func RegisterRoutes(router *gin.Engine, h *APIHandler) {
	router.Use(RequestID(), Metrics())

	router.GET("/health", h.HealthHandler)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/categories", h.ListCategoriesHandler)

		v1.GET("/score", h.ScoreInterestHandler)
		v1.POST("/score", h.ScoreAdHandler)
		v1.POST("/rank", h.RankHandler)
		v1.POST("/coverage", h.CoverageHandler)

		v1.GET("/ads/:id/score", h.ScoreStoredAdHandler)
		v1.GET("/content/:id/ads", h.ContentAdsHandler)

		admin := v1.Group("/admin")
		{
			admin.POST("/taxonomy/reload", h.ReloadTaxonomyHandler)
			admin.POST("/coverage-audits", h.EnqueueAuditHandler)
			admin.GET("/coverage-audits/:id", h.GetAuditHandler)
		}
	}
}

// RequestID echoes the caller's X-Request-ID or assigns a new one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// Metrics records request counts and latency per route template.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		metrics.RecordAPIRequest(c.Request.Method, endpoint, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}
