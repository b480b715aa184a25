// Package rpc exposes the analyzer over gRPC. Messages are
// google.protobuf.Struct documents carrying the same JSON shapes as the HTTP
// API, so no generated code is needed.
package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// #region descriptor

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "cadynamics.v1.AnalyzerService"

// Full method names.
const (
	AnalyzeMethod   = "/" + ServiceName + "/Analyze"
	ClassifyMethod  = "/" + ServiceName + "/Classify"
	RuleHintMethod  = "/" + ServiceName + "/RuleHint"
	GetReportMethod = "/" + ServiceName + "/GetReport"
)

// AnalyzerServiceServer is the server side of the service.
type AnalyzerServiceServer interface {
	Analyze(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Classify(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RuleHint(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetReport(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryCall func(AnalyzerServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(fullMethod string, call unaryCall) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(AnalyzerServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(AnalyzerServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// ServiceDesc describes the service for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AnalyzerServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Analyze", Handler: unaryHandler(AnalyzeMethod, AnalyzerServiceServer.Analyze)},
		{MethodName: "Classify", Handler: unaryHandler(ClassifyMethod, AnalyzerServiceServer.Classify)},
		{MethodName: "RuleHint", Handler: unaryHandler(RuleHintMethod, AnalyzerServiceServer.RuleHint)},
		{MethodName: "GetReport", Handler: unaryHandler(GetReportMethod, AnalyzerServiceServer.GetReport)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "cadynamics/v1/analyzer.proto",
}

// RegisterAnalyzerServiceServer registers srv on s.
func RegisterAnalyzerServiceServer(s grpc.ServiceRegistrar, srv AnalyzerServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// #endregion descriptor

// #region client-stub

// AnalyzerServiceClient is the client side of the service.
type AnalyzerServiceClient interface {
	Analyze(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	Classify(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	RuleHint(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	GetReport(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type analyzerServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewAnalyzerServiceClient wraps a connection.
func NewAnalyzerServiceClient(cc grpc.ClientConnInterface) AnalyzerServiceClient {
	return &analyzerServiceClient{cc: cc}
}

func (c *analyzerServiceClient) invoke(ctx context.Context, method string, in *structpb.Struct, opts []grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *analyzerServiceClient) Analyze(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, AnalyzeMethod, in, opts)
}

func (c *analyzerServiceClient) Classify(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, ClassifyMethod, in, opts)
}

func (c *analyzerServiceClient) RuleHint(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, RuleHintMethod, in, opts)
}

func (c *analyzerServiceClient) GetReport(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, GetReportMethod, in, opts)
}

// #endregion client-stub
