package grpc

import (
	"context"
	"net"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"google.golang.org/grpc"
)

// Module wires the health-only gRPC server. The teacher's Module also
// registered a generated OrchestratorServiceServer; that service depended
// on a private protobuf package this repository cannot fetch, so only the
// health-check lifecycle survives here (see DESIGN.md).
var Module = fx.Options(
	fx.Provide(
		NewServer,
		NewListener,
	),
	fx.Invoke(
		lifecycleHook,
	),
)

func lifecycleHook(lc fx.Lifecycle, log *zap.Logger, srv *grpc.Server, lis net.Listener) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("grpc server starting", zap.String("addr", lis.Addr().String()))
			go func() {
				if err := srv.Serve(lis); err != nil {
					log.Error("grpc server error", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("grpc server stopping")
			srv.GracefulStop()
			return nil
		},
	})
}
