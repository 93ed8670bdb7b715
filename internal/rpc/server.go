package rpc

import (
	"context"
	"net"

	grpc_middleware "github.com/grpc-ecosystem/go-grpc-middleware"
	grpc_zap "github.com/grpc-ecosystem/go-grpc-middleware/logging/zap"
	grpc_recovery "github.com/grpc-ecosystem/go-grpc-middleware/recovery"
	grpc_prometheus "github.com/grpc-ecosystem/go-grpc-prometheus"
	"github.com/pkg/errors"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"

	"github.com/Rogue-Bear-Innovations/secondbrain-back/internal/config"
	"github.com/Rogue-Bear-Innovations/secondbrain-back/internal/db"
)

// ServiceName is the health service name reported alongside the overall "" one.
const ServiceName = "secondbrain"

// HealthServer answers grpc.health.v1 checks by pinging the store.
type HealthServer struct {
	healthpb.UnimplementedHealthServer

	store  db.Store
	logger *zap.SugaredLogger
}

func NewHealthServer(store db.Store, l *zap.SugaredLogger) *HealthServer {
	return &HealthServer{
		store:  store,
		logger: l,
	}
}

func NewGRPCServer(lc fx.Lifecycle, cfg *config.Config, store db.Store, logger *zap.SugaredLogger) *HealthServer {
	instance := NewHealthServer(store, logger)
	if cfg.GRPCPort == "0" {
		logger.Info("GRPC server disabled.")
		return instance
	}

	grpcServer := NewServer(logger)
	instance.Register(grpcServer)

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			listen := cfg.Host + ":" + cfg.GRPCPort
			lis, err := net.Listen("tcp", listen)
			if err != nil {
				return errors.Wrapf(err, "listen %s", listen)
			}
			logger.Infow("Starting GRPC server.", "listen", listen)
			go func() {
				if err := grpcServer.Serve(lis); err != nil {
					logger.Errorw("GRPC server stopped", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("Stopping GRPC server.")
			grpcServer.GracefulStop()
			return nil
		},
	})

	return instance
}

// NewServer returns a grpc.Server with panic recovery, zap request logging
// and prometheus metrics on every unary call.
func NewServer(l *zap.SugaredLogger) *grpc.Server {
	return grpc.NewServer(
		grpc.UnaryInterceptor(grpc_middleware.ChainUnaryServer(
			grpc_recovery.UnaryServerInterceptor(),
			grpc_zap.UnaryServerInterceptor(l.Desugar()),
			grpc_prometheus.UnaryServerInterceptor,
		)),
	)
}

// Register attaches the health service and server reflection to g.
func (s *HealthServer) Register(g *grpc.Server) {
	healthpb.RegisterHealthServer(g, s)
	reflection.Register(g)
	grpc_prometheus.Register(g)
}

func (s *HealthServer) Check(ctx context.Context, req *healthpb.HealthCheckRequest) (*healthpb.HealthCheckResponse, error) {
	switch req.GetService() {
	case "", ServiceName:
	default:
		return nil, status.Errorf(codes.NotFound, "unknown service %q", req.GetService())
	}

	if err := s.store.Ping(ctx); err != nil {
		s.logger.Warnw("store ping failed", "error", err)
		return &healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_NOT_SERVING}, nil
	}
	return &healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_SERVING}, nil
}
