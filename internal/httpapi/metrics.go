package httpapi

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// requestTotal counts requests by route and status
	requestTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cadyn_http_requests_total",
		Help: "Total HTTP requests by route and status code",
	}, []string{"route", "status"})

	// requestDuration tracks handler latency
	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cadyn_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14),
	}, []string{"route"})

	// classifiedTotal counts classifications served, by class
	classifiedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cadyn_classified_total",
		Help: "Classifications served over HTTP by Wolfram class",
	}, []string{"endpoint", "class"})
)

// instrument records request count and latency per matched route.
func instrument() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		requestTotal.WithLabelValues(route, strconv.Itoa(c.Writer.Status())).Inc()
		requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}
