package grpc

import (
	"net"
	"strconv"

	"github.com/1002527441/workflow-runtime/internal/config"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// NewServer builds a gRPC server exposing only the standard health-check
// service. The teacher's domain RPCs (OrchestratorServiceServer) were
// generated from a private protobuf package that is not part of this
// repository's dependency surface; the health server is the part of the
// teacher's gRPC wiring that has no such dependency, so it is kept as-is.
func NewServer(log *zap.Logger, cfg config.Config) *grpc.Server {
	opts := []grpc.ServerOption{
		grpc.ChainUnaryInterceptor(otelgrpc.UnaryServerInterceptor()),
		grpc.ChainStreamInterceptor(otelgrpc.StreamServerInterceptor()),
	}
	srv := grpc.NewServer(opts...)
	healthpb.RegisterHealthServer(srv, health.NewServer())
	log.Info("grpc health enabled")
	return srv
}

func NewListener(cfg config.Config) (net.Listener, error) {
	addr := net.JoinHostPort(cfg.GRPC.Host, strconv.Itoa(cfg.GRPC.Port))
	return net.Listen("tcp", addr)
}
