package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/danielpatrickdp/cadynamics/internal/analysis"
	"github.com/danielpatrickdp/cadynamics/internal/history"
	"github.com/danielpatrickdp/cadynamics/internal/logging"
	"github.com/danielpatrickdp/cadynamics/internal/orchestrator"
	"github.com/danielpatrickdp/cadynamics/internal/rulehint"
	"github.com/danielpatrickdp/cadynamics/internal/store"
)

// #region request-types

// ClassifyRequest carries a precomputed feature map.
type ClassifyRequest struct {
	Features map[string]float64 `json:"features"`
}

// RuleHintRequest names either a rule number or a wiring diagram.
type RuleHintRequest struct {
	Rule   *int            `json:"rule,omitempty"`
	Wiring json.RawMessage `json:"wiring,omitempty"`
}

// GetReportRequest selects a stored report.
type GetReportRequest struct {
	ID string `json:"id"`
}

// #endregion request-types

// #region server

// Server implements AnalyzerServiceServer on top of an orchestrator.
type Server struct {
	orch   *orchestrator.Orchestrator
	logger *slog.Logger
}

// NewServer creates a Server. A nil logger discards output.
func NewServer(orch *orchestrator.Orchestrator, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Server{orch: orch, logger: logger}
}

var _ AnalyzerServiceServer = (*Server)(nil)

// Analyze runs the full pipeline on an analysis.Input document.
func (s *Server) Analyze(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in analysis.Input
	if err := fromStruct(req, &in); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "decode input: %v", err)
	}
	if err := in.Validate(); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	rep, err := s.orch.Analyze(ctx, in, logging.TriggerGRPC)
	if err != nil {
		return nil, s.toStatus("analyze", err)
	}
	return toStruct(rep)
}

// Classify scores a feature map.
func (s *Server) Classify(_ context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var cr ClassifyRequest
	if err := fromStruct(req, &cr); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "decode classify request: %v", err)
	}
	if len(cr.Features) == 0 {
		return nil, status.Error(codes.InvalidArgument, "features required")
	}
	return toStruct(s.orch.Classify(cr.Features))
}

// RuleHint analyzes a rule number or wiring diagram.
func (s *Server) RuleHint(_ context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var rr RuleHintRequest
	if err := fromStruct(req, &rr); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "decode rule hint request: %v", err)
	}
	var (
		rep rulehint.Report
		err error
	)
	switch {
	case rr.Rule != nil:
		rep, err = s.orch.RuleHint(*rr.Rule)
	case len(rr.Wiring) > 0:
		rep, err = s.orch.WiringHint(rr.Wiring)
	default:
		return nil, status.Error(codes.InvalidArgument, "rule or wiring required")
	}
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	return toStruct(rep)
}

// GetReport returns a stored report with its summary columns.
func (s *Server) GetReport(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var gr GetReportRequest
	if err := fromStruct(req, &gr); err != nil || gr.ID == "" {
		return nil, status.Error(codes.InvalidArgument, "id required")
	}
	rec, err := s.orch.Report(ctx, gr.ID)
	if err != nil {
		return nil, s.toStatus("get report", err)
	}
	return toStruct(rec)
}

// toStatus maps domain errors to gRPC codes.
func (s *Server) toStatus(op string, err error) error {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return status.FromContextError(err).Err()
	case errors.Is(err, history.ErrEmptyHistory), errors.Is(err, history.ErrRaggedHistory),
		errors.Is(err, history.ErrSeriesMismatch),
		errors.Is(err, rulehint.ErrRuleRange), errors.Is(err, analysis.ErrInvalidInput):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, store.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, orchestrator.ErrNoStore):
		return status.Error(codes.FailedPrecondition, err.Error())
	}
	s.logger.Error("rpc failed", "op", op, "error", err)
	return status.Errorf(codes.Internal, "%s: %v", op, err)
}

// #endregion server

// #region convert

// toStruct converts v to a Struct through its JSON encoding.
func toStruct(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	out, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	return out, nil
}

// fromStruct decodes a Struct into v through its JSON encoding.
func fromStruct(s *structpb.Struct, v any) error {
	if s == nil {
		return errors.New("empty message")
	}
	data, err := protojson.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal struct: %w", err)
	}
	return json.Unmarshal(data, v)
}

// #endregion convert
