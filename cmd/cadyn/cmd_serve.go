package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"github.com/danielpatrickdp/cadynamics/internal/httpapi"
	"github.com/danielpatrickdp/cadynamics/internal/rpc"
)

// #region serve-cmd

func newServeCmd(a *app) *cobra.Command {
	var noStore bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the analyzer over HTTP and gRPC",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			orch, closeStore, err := a.openOrchestrator(!noStore)
			if err != nil {
				return err
			}
			defer closeStore()

			srv := a.cfg.Server
			gin.SetMode(gin.ReleaseMode)
			httpSrv := &http.Server{
				Addr:    srv.HTTPAddr,
				Handler: httpapi.NewRouter(httpapi.NewHandlers(orch, a.logger, srv.MaxBodyBytes)),
			}
			grpcSrv := grpc.NewServer()
			rpc.RegisterAnalyzerServiceServer(grpcSrv, rpc.NewServer(orch, a.logger))

			lis, err := net.Listen("tcp", srv.GRPCAddr)
			if err != nil {
				return fmt.Errorf("listen grpc %s: %w", srv.GRPCAddr, err)
			}

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				a.logger.Info("http listening", "addr", srv.HTTPAddr)
				if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("http server: %w", err)
				}
				return nil
			})
			g.Go(func() error {
				a.logger.Info("grpc listening", "addr", lis.Addr().String())
				if err := grpcSrv.Serve(lis); err != nil {
					return fmt.Errorf("grpc server: %w", err)
				}
				return nil
			})
			g.Go(func() error {
				<-gctx.Done()
				a.logger.Info("shutting down")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), srv.ShutdownTimeout)
				defer cancel()
				grpcSrv.GracefulStop()
				return httpSrv.Shutdown(shutdownCtx)
			})
			return g.Wait()
		},
	}
	cmd.Flags().BoolVar(&noStore, "no-store", false, "serve without persisting reports")
	return cmd
}

// #endregion serve-cmd
