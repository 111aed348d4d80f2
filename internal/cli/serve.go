package cli

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/danielpatrickdp/valuesnet/internal/rpc"
	"github.com/danielpatrickdp/valuesnet/internal/server"
	"github.com/danielpatrickdp/valuesnet/internal/telemetry"
)

func (a *app) serveCmd() *cobra.Command {
	var httpAddr, grpcAddr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP and gRPC APIs",
		Long: `Serve exposes the analysis service over HTTP (JSON, with /metrics) and gRPC
(valuesnet.v1.AnalysisService plus the standard health service) until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if httpAddr != "" {
				a.cfg.Server.HTTPAddr = httpAddr
			}
			if grpcAddr != "" {
				a.cfg.Server.GRPCAddr = grpcAddr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx)
		},
	}
	cmd.Flags().StringVar(&httpAddr, "http", "", "HTTP listen address (default from config)")
	cmd.Flags().StringVar(&grpcAddr, "grpc", "", "gRPC listen address (default from config)")
	return cmd
}

func (a *app) serve(ctx context.Context) error {
	shutdownTracing, err := telemetry.Init(ctx, a.cfg.Tracing, a.version, os.Stdout)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			a.logger.Warn("tracing shutdown failed", "error", err)
		}
	}()

	rt, err := a.runtime()
	if err != nil {
		return err
	}
	lis, err := net.Listen("tcp", a.cfg.Server.GRPCAddr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", a.cfg.Server.GRPCAddr, err)
	}

	httpSrv := server.New(rt.svc, rt.registry, a.logger, a.cfg.Tracing.ServiceName)
	grpcSrv := rpc.NewServer(rt.svc, a.logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return httpSrv.Run(gctx, a.cfg.Server.HTTPAddr, a.cfg.Server.ShutdownTimeout)
	})
	g.Go(func() error {
		return grpcSrv.Serve(gctx, lis)
	})
	a.logger.Info("valuesnet serving", "http", a.cfg.Server.HTTPAddr, "grpc", a.cfg.Server.GRPCAddr, "db", a.cfg.Database.Path)
	return g.Wait()
}
