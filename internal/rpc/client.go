package rpc

import (
	"context"
	"encoding/json"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/danielpatrickdp/cadynamics/internal/analysis"
	"github.com/danielpatrickdp/cadynamics/internal/rulehint"
	"github.com/danielpatrickdp/cadynamics/internal/wolfram"
)

// #region types

// AnalyzeResult is the client view of a remote report: the headline fields
// plus the full document.
type AnalyzeResult struct {
	ID            string
	Class         wolfram.Class
	Confidence    float64
	CollapseScore float64
	Generations   int
	Width         int
	Raw           json.RawMessage
}

// ClassifyResult is the client view of a remote classification.
type ClassifyResult struct {
	Class      wolfram.Class      `json:"class"`
	Confidence float64            `json:"confidence"`
	Scores     map[string]float64 `json:"scores"`
	Reasoning  string             `json:"reasoning"`
}

// #endregion types

// #region client-struct

// Client wraps the gRPC connection to a cadyn server.
type Client struct {
	conn   *grpc.ClientConn
	client AnalyzerServiceClient
}

// NewClient connects to a cadyn gRPC server.
func NewClient(addr string, opts ...grpc.DialOption) (*Client, error) {
	if len(opts) == 0 {
		opts = []grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}
	}
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("grpc dial %s: %w", addr, err)
	}
	return &Client{conn: conn, client: NewAnalyzerServiceClient(conn)}, nil
}

// NewClientWithService creates a Client with an injected service
// implementation.
func NewClientWithService(svc AnalyzerServiceClient) *Client {
	return &Client{client: svc}
}

// Close shuts down the gRPC connection.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

// #endregion client-struct

// #region calls

// Analyze runs the remote pipeline on in.
func (c *Client) Analyze(ctx context.Context, in analysis.Input) (AnalyzeResult, error) {
	req, err := toStruct(in)
	if err != nil {
		return AnalyzeResult{}, fmt.Errorf("analyze rpc: %w", err)
	}
	resp, err := c.client.Analyze(ctx, req)
	if err != nil {
		return AnalyzeResult{}, fmt.Errorf("analyze rpc: %w", err)
	}
	return decodeAnalyzeResult(resp)
}

func decodeAnalyzeResult(resp *structpb.Struct) (AnalyzeResult, error) {
	var head struct {
		ID             string `json:"id"`
		Generations    int    `json:"generations"`
		Width          int    `json:"width"`
		Classification struct {
			Class      wolfram.Class `json:"class"`
			Confidence float64       `json:"confidence"`
		} `json:"classification"`
		Collapse struct {
			Score float64 `json:"score"`
		} `json:"collapse"`
	}
	raw, err := rawJSON(resp)
	if err != nil {
		return AnalyzeResult{}, err
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return AnalyzeResult{}, fmt.Errorf("decode report: %w", err)
	}
	return AnalyzeResult{
		ID:            head.ID,
		Class:         head.Classification.Class,
		Confidence:    head.Classification.Confidence,
		CollapseScore: head.Collapse.Score,
		Generations:   head.Generations,
		Width:         head.Width,
		Raw:           raw,
	}, nil
}

// Classify scores a feature map remotely.
func (c *Client) Classify(ctx context.Context, features map[string]float64) (ClassifyResult, error) {
	req, err := toStruct(ClassifyRequest{Features: features})
	if err != nil {
		return ClassifyResult{}, fmt.Errorf("classify rpc: %w", err)
	}
	resp, err := c.client.Classify(ctx, req)
	if err != nil {
		return ClassifyResult{}, fmt.Errorf("classify rpc: %w", err)
	}
	var out ClassifyResult
	if err := fromStruct(resp, &out); err != nil {
		return ClassifyResult{}, fmt.Errorf("decode classification: %w", err)
	}
	return out, nil
}

// RuleHint analyzes an elementary rule remotely.
func (c *Client) RuleHint(ctx context.Context, rule int) (rulehint.Report, error) {
	req, err := toStruct(RuleHintRequest{Rule: &rule})
	if err != nil {
		return rulehint.Report{}, fmt.Errorf("rule hint rpc: %w", err)
	}
	resp, err := c.client.RuleHint(ctx, req)
	if err != nil {
		return rulehint.Report{}, fmt.Errorf("rule hint rpc: %w", err)
	}
	var out rulehint.Report
	if err := fromStruct(resp, &out); err != nil {
		return rulehint.Report{}, fmt.Errorf("decode rule hint: %w", err)
	}
	return out, nil
}

// GetReport fetches a stored report as raw JSON.
func (c *Client) GetReport(ctx context.Context, id string) (json.RawMessage, error) {
	req, err := toStruct(GetReportRequest{ID: id})
	if err != nil {
		return nil, fmt.Errorf("get report rpc: %w", err)
	}
	resp, err := c.client.GetReport(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("get report rpc: %w", err)
	}
	return rawJSON(resp)
}

// rawJSON renders a response document as JSON.
func rawJSON(s *structpb.Struct) (json.RawMessage, error) {
	data, err := protojson.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshal response: %w", err)
	}
	return json.RawMessage(data), nil
}

// #endregion calls
