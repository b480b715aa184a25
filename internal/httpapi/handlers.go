// Package httpapi serves the analyzer over HTTP with gin.
package httpapi

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/danielpatrickdp/cadynamics/internal/analysis"
	"github.com/danielpatrickdp/cadynamics/internal/history"
	"github.com/danielpatrickdp/cadynamics/internal/logging"
	"github.com/danielpatrickdp/cadynamics/internal/orchestrator"
	"github.com/danielpatrickdp/cadynamics/internal/rulehint"
	"github.com/danielpatrickdp/cadynamics/internal/store"
)

// #region handlers

// Handlers holds the dependencies of the HTTP handlers.
type Handlers struct {
	orch         *orchestrator.Orchestrator
	logger       *slog.Logger
	maxBodyBytes int64
}

// NewHandlers creates the handler set. A nil logger discards output.
func NewHandlers(orch *orchestrator.Orchestrator, logger *slog.Logger, maxBodyBytes int64) *Handlers {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handlers{orch: orch, logger: logger, maxBodyBytes: maxBodyBytes}
}

// #endregion handlers

// #region routes

// NewRouter builds the gin engine with every route registered.
//
//	POST /v1/analyze               - analyze one run
//	POST /v1/analyze/batch         - analyze several runs
//	POST /v1/classify              - classify a feature map
//	GET  /v1/rules/:rule           - structural hint for an elementary rule
//	POST /v1/wiring                - structural hint for a wiring diagram
//	GET  /v1/reports               - list stored reports
//	GET  /v1/reports/:id           - fetch a stored report
//	GET  /v1/reports/:id/provenance
//	GET  /v1/stats                 - stored reports per class
//	GET  /healthz
//	GET  /metrics
func NewRouter(h *Handlers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), instrument(), h.limitBody())

	v1 := r.Group("/v1")
	v1.POST("/analyze", h.HandleAnalyze)
	v1.POST("/analyze/batch", h.HandleAnalyzeBatch)
	v1.POST("/classify", h.HandleClassify)
	v1.GET("/rules/:rule", h.HandleRule)
	v1.POST("/wiring", h.HandleWiring)
	v1.GET("/reports", h.HandleListReports)
	v1.GET("/reports/:id", h.HandleGetReport)
	v1.GET("/reports/:id/provenance", h.HandleProvenance)
	v1.GET("/stats", h.HandleStats)

	r.GET("/healthz", h.HandleHealth)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return r
}

func (h *Handlers) limitBody() gin.HandlerFunc {
	return func(c *gin.Context) {
		if h.maxBodyBytes > 0 && c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBodyBytes)
		}
		c.Next()
	}
}

// #endregion routes

// #region analyze

// HandleAnalyze handles POST /v1/analyze.
func (h *Handlers) HandleAnalyze(c *gin.Context) {
	var in analysis.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		h.badRequest(c, err)
		return
	}
	if err := in.Validate(); err != nil {
		h.badRequest(c, err)
		return
	}
	rep, err := h.orch.Analyze(c.Request.Context(), in, logging.TriggerHTTP)
	if err != nil {
		h.fail(c, err)
		return
	}
	classifiedTotal.WithLabelValues("analyze", rep.Classification.Class.String()).Inc()
	c.JSON(http.StatusOK, rep)
}

// HandleAnalyzeBatch handles POST /v1/analyze/batch.
func (h *Handlers) HandleAnalyzeBatch(c *gin.Context) {
	var req BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	for _, in := range req.Inputs {
		if err := in.Validate(); err != nil {
			h.badRequest(c, err)
			return
		}
	}
	reps, err := h.orch.AnalyzeBatch(c.Request.Context(), req.Inputs, logging.TriggerHTTP)
	if err != nil {
		h.fail(c, err)
		return
	}
	for _, rep := range reps {
		classifiedTotal.WithLabelValues("batch", rep.Classification.Class.String()).Inc()
	}
	c.JSON(http.StatusOK, BatchResponse{Reports: reps})
}

// HandleClassify handles POST /v1/classify.
func (h *Handlers) HandleClassify(c *gin.Context) {
	var req ClassifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	res := h.orch.Classify(req.Features)
	classifiedTotal.WithLabelValues("classify", res.Class.String()).Inc()
	c.JSON(http.StatusOK, res)
}

// #endregion analyze

// #region rules

// HandleRule handles GET /v1/rules/:rule.
func (h *Handlers) HandleRule(c *gin.Context) {
	rule, err := strconv.Atoi(c.Param("rule"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "rule must be an integer", Code: "INVALID_RULE"})
		return
	}
	rep, err := h.orch.RuleHint(rule)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, rep)
}

// HandleWiring handles POST /v1/wiring.
func (h *Handlers) HandleWiring(c *gin.Context) {
	data, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.badRequest(c, err)
		return
	}
	rep, err := h.orch.WiringHint(data)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "INVALID_WIRING"})
		return
	}
	c.JSON(http.StatusOK, rep)
}

// #endregion rules

// #region reports

// HandleListReports handles GET /v1/reports?limit=N.
func (h *Handlers) HandleListReports(c *gin.Context) {
	limit := 50
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "limit must be a non-negative integer", Code: "INVALID_LIMIT"})
			return
		}
		limit = n
	}
	recs, err := h.orch.Reports(c.Request.Context(), limit)
	if err != nil {
		h.fail(c, err)
		return
	}
	if recs == nil {
		recs = []store.Record{}
	}
	c.JSON(http.StatusOK, gin.H{"reports": recs})
}

// HandleGetReport handles GET /v1/reports/:id.
func (h *Handlers) HandleGetReport(c *gin.Context) {
	rec, err := h.orch.Report(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// HandleProvenance handles GET /v1/reports/:id/provenance.
func (h *Handlers) HandleProvenance(c *gin.Context) {
	entries, err := h.orch.Provenance(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	if entries == nil {
		entries = []logging.ProvenanceEntry{}
	}
	c.JSON(http.StatusOK, gin.H{"provenance": entries})
}

// HandleStats handles GET /v1/stats.
func (h *Handlers) HandleStats(c *gin.Context) {
	counts, err := h.orch.ClassCounts(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	total := 0
	for _, n := range counts {
		total += n
	}
	c.JSON(http.StatusOK, StatsResponse{ByClass: counts, Total: total})
}

// HandleHealth handles GET /healthz.
func (h *Handlers) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok", Persistent: h.orch.Persistent()})
}

// #endregion reports

// #region errors

func (h *Handlers) badRequest(c *gin.Context, err error) {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{Error: err.Error(), Code: "BODY_TOO_LARGE"})
		return
	}
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "INVALID_REQUEST"})
}

// fail maps domain errors to HTTP status codes.
func (h *Handlers) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, history.ErrEmptyHistory), errors.Is(err, history.ErrRaggedHistory),
		errors.Is(err, history.ErrSeriesMismatch),
		errors.Is(err, rulehint.ErrRuleRange), errors.Is(err, analysis.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "INVALID_INPUT"})
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error(), Code: "NOT_FOUND"})
	case errors.Is(err, orchestrator.ErrNoStore):
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: err.Error(), Code: "NO_STORE"})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: err.Error(), Code: "CANCELED"})
	default:
		h.logger.Error("request failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error", Code: "INTERNAL"})
	}
}

// #endregion errors
