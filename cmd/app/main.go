package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/Rogue-Bear-Innovations/secondbrain-back/internal/config"
	"github.com/Rogue-Bear-Innovations/secondbrain-back/internal/db"
	"github.com/Rogue-Bear-Innovations/secondbrain-back/internal/logging"
	"github.com/Rogue-Bear-Innovations/secondbrain-back/internal/rpc"
	"github.com/Rogue-Bear-Innovations/secondbrain-back/internal/service"
	"github.com/Rogue-Bear-Innovations/secondbrain-back/internal/transport"
)

func main() {
	root := &cobra.Command{
		Use:   "secondbrain",
		Short: "Second brain API server",
	}
	root.AddCommand(serveCmd(), healthcheckCmd())

	// no subcommand runs the server
	if len(os.Args) == 1 {
		root.SetArgs([]string{"serve"})
	}
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and GRPC servers",
		Run: func(cmd *cobra.Command, args []string) {
			fx.New(
				fx.Provide(
					config.NewConfig,
					logging.NewLogger,
				),
				fx.WithLogger(func(l *zap.SugaredLogger) fxevent.Logger {
					return &fxevent.ZapLogger{Logger: l.Desugar()}
				}),
				db.Module,
				service.Module,
				transport.Module,
				rpc.Module,
				fx.Invoke(func(*transport.HTTPServer, *rpc.HealthServer) {}),
			).Run()
		},
	}
}

func healthcheckCmd() *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "healthcheck",
		Short: "Query the GRPC health service of a running server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.NewConfig()
			if err != nil {
				return err
			}

			conn, err := grpc.NewClient(cfg.Host+":"+cfg.GRPCPort,
				grpc.WithTransportCredentials(insecure.NewCredentials()))
			if err != nil {
				return err
			}
			defer conn.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			resp, err := healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{Service: rpc.ServiceName})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), resp.GetStatus())
			if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
				return fmt.Errorf("service is %s", resp.GetStatus())
			}
			return nil
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 3*time.Second, "deadline for the health check")
	return cmd
}
