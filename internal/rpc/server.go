// Package rpc serves the analysis service over gRPC as valuesnet.v1.AnalysisService.
package rpc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/danielpatrickdp/valuesnet/internal/metrics"
	"github.com/danielpatrickdp/valuesnet/internal/network"
	"github.com/danielpatrickdp/valuesnet/internal/service"
	"github.com/danielpatrickdp/valuesnet/internal/snapshot"
	"github.com/danielpatrickdp/valuesnet/internal/validation"
	"github.com/danielpatrickdp/valuesnet/internal/warnstate"
)

// ServiceName is the fully-qualified gRPC service name.
const ServiceName = "valuesnet.v1.AnalysisService"

// #region service-desc

// AnalysisServer is the server-side contract of valuesnet.v1.AnalysisService.
type AnalysisServer interface {
	Analyze(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Validate(context.Context, *structpb.Struct) (*structpb.Struct, error)
	AnalyzeCurrent(context.Context, *emptypb.Empty) (*structpb.Struct, error)
}

func unaryHandler[Req any](method string, call func(AnalysisServer, context.Context, *Req) (*structpb.Struct, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(AnalysisServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/" + method}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return call(srv.(AnalysisServer), ctx, req.(*Req))
			})
		},
	}
}

// ServiceDesc describes valuesnet.v1.AnalysisService for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AnalysisServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryHandler("Analyze", AnalysisServer.Analyze),
		unaryHandler("Validate", AnalysisServer.Validate),
		unaryHandler("AnalyzeCurrent", AnalysisServer.AnalyzeCurrent),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "valuesnet/v1/analysis.proto",
}

// #endregion service-desc

// #region server

// ValidateRequest is the Validate message body.
type ValidateRequest struct {
	Network      network.Network         `json:"network"`
	WarningState validation.WarningState `json:"warningState"`
}

// Server implements AnalysisServer on top of a service.Service.
type Server struct {
	svc    *service.Service
	logger *slog.Logger
	grpc   *grpc.Server
	health *health.Server
}

// NewServer builds a grpc.Server with the analysis and health services registered.
func NewServer(svc *service.Service, logger *slog.Logger, opts ...grpc.ServerOption) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	opts = append([]grpc.ServerOption{grpc.StatsHandler(otelgrpc.NewServerHandler())}, opts...)
	s := &Server{
		svc:    svc,
		logger: logger,
		grpc:   grpc.NewServer(opts...),
		health: health.NewServer(),
	}
	s.grpc.RegisterService(&ServiceDesc, s)
	healthpb.RegisterHealthServer(s.grpc, s.health)
	s.health.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	return s
}

// Serve accepts on lis until ctx is cancelled, then stops gracefully.
func (s *Server) Serve(ctx context.Context, lis net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("grpc listening", "addr", lis.Addr().String())
		errCh <- s.grpc.Serve(lis)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("grpc serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	s.health.Shutdown()
	s.grpc.GracefulStop()
	s.logger.Info("grpc stopped")
	return <-errCh
}

// Stop halts the server immediately.
func (s *Server) Stop() { s.grpc.Stop() }

func (s *Server) Analyze(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var n network.Network
	if err := fromStruct(in, &n); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	r, err := s.svc.AnalyzeNetwork(ctx, n)
	if err != nil {
		return nil, s.toStatus(err)
	}
	return s.reply(r)
}

func (s *Server) Validate(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req ValidateRequest
	if err := fromStruct(in, &req); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	r, err := s.svc.ValidateNetwork(ctx, req.Network, req.WarningState)
	if err != nil {
		return nil, s.toStatus(err)
	}
	return s.reply(r)
}

func (s *Server) AnalyzeCurrent(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	run, err := s.svc.Analyze(ctx)
	if err != nil {
		return nil, s.toStatus(err)
	}
	return s.reply(run)
}

func (s *Server) reply(v any) (*structpb.Struct, error) {
	out, err := toStruct(v)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

func (s *Server) toStatus(err error) error {
	var inconsistent *metrics.InconsistencyError
	switch {
	case errors.Is(err, network.ErrInvalidNetwork), errors.Is(err, warnstate.ErrEmptyNodeID):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, snapshot.ErrNoCurrent), errors.Is(err, snapshot.ErrVersionNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.As(err, &inconsistent):
		s.logger.Error("inconsistent analysis", "error", err)
		return status.Error(codes.Internal, err.Error())
	default:
		s.logger.Error("rpc failed", "error", err)
		return status.Error(codes.Internal, err.Error())
	}
}

// #endregion server
