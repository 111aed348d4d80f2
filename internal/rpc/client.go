package rpc

import (
	"context"
	"fmt"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/danielpatrickdp/valuesnet/internal/metrics"
	"github.com/danielpatrickdp/valuesnet/internal/network"
	"github.com/danielpatrickdp/valuesnet/internal/service"
	"github.com/danielpatrickdp/valuesnet/internal/validation"
)

// #region client-struct
// Client wraps a connection to valuesnet.v1.AnalysisService.
type Client struct {
	conn *grpc.ClientConn
}

// #endregion client-struct

// #region constructor
// NewClient connects to addr without transport security. Extra options are applied last.
func NewClient(addr string, opts ...grpc.DialOption) (*Client, error) {
	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithStatsHandler(otelgrpc.NewClientHandler()),
	}, opts...)
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("grpc dial %s: %w", addr, err)
	}
	return &Client{conn: conn}, nil
}

// Close shuts down the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// #endregion constructor

// #region calls

// Analyze runs analysis on n without storing it.
func (c *Client) Analyze(ctx context.Context, n network.Network) (metrics.Report, error) {
	var out metrics.Report
	err := c.call(ctx, "Analyze", n, &out)
	return out, err
}

// Validate validates n against ws.
func (c *Client) Validate(ctx context.Context, n network.Network, ws validation.WarningState) (validation.Result, error) {
	var out validation.Result
	err := c.call(ctx, "Validate", ValidateRequest{Network: n, WarningState: ws}, &out)
	return out, err
}

// AnalyzeCurrent analyzes the server's current snapshot.
func (c *Client) AnalyzeCurrent(ctx context.Context) (service.Run, error) {
	resp := &structpb.Struct{}
	if err := c.conn.Invoke(ctx, "/"+ServiceName+"/AnalyzeCurrent", &emptypb.Empty{}, resp); err != nil {
		return service.Run{}, fmt.Errorf("analyze current: %w", err)
	}
	var out service.Run
	if err := fromStruct(resp, &out); err != nil {
		return service.Run{}, err
	}
	return out, nil
}

// Healthy reports whether the analysis service is serving.
func (c *Client) Healthy(ctx context.Context) (bool, error) {
	resp, err := healthpb.NewHealthClient(c.conn).Check(ctx, &healthpb.HealthCheckRequest{Service: ServiceName})
	if err != nil {
		return false, fmt.Errorf("health check: %w", err)
	}
	return resp.GetStatus() == healthpb.HealthCheckResponse_SERVING, nil
}

func (c *Client) call(ctx context.Context, method string, in, out any) error {
	req, err := toStruct(in)
	if err != nil {
		return err
	}
	resp := &structpb.Struct{}
	if err := c.conn.Invoke(ctx, "/"+ServiceName+"/"+method, req, resp); err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	return fromStruct(resp, out)
}

// #endregion calls
