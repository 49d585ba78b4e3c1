package observability

import (
	"net/http"
	"time"

	"github.com/danmuck/conventus/internal/logging"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter serves /health and /metrics for a running node.
func NewRouter(node string) *gin.Engine {
	RegisterMetrics()
	gin.SetMode(gin.ReleaseMode)
	started := time.Now()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(logging.Logger("http")))
	r.Use(RequestMetricsMiddleware(node))
	_ = r.SetTrustedProxies([]string{"127.0.0.1", "::1"})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"uptime":  time.Since(started).String(),
			"service": node,
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return r
}
