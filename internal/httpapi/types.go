package httpapi

import "github.com/danielpatrickdp/cadynamics/internal/analysis"

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// ClassifyRequest carries a precomputed feature map.
type ClassifyRequest struct {
	Features map[string]float64 `json:"features" binding:"required"`
}

// BatchRequest carries several runs analyzed concurrently.
type BatchRequest struct {
	Inputs []analysis.Input `json:"inputs" binding:"required,min=1,max=256"`
}

// BatchResponse holds batch reports in input order.
type BatchResponse struct {
	Reports []*analysis.Report `json:"reports"`
}

// HealthResponse reports liveness and whether reports are persisted.
type HealthResponse struct {
	Status     string `json:"status"`
	Persistent bool   `json:"persistent"`
}

// StatsResponse counts stored reports per class.
type StatsResponse struct {
	ByClass map[string]int `json:"by_class"`
	Total   int            `json:"total"`
}
