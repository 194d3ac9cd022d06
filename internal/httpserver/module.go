package httpserver

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/1002527441/workflow-runtime/internal/config"
	"github.com/1002527441/workflow-runtime/internal/store"
	"github.com/1002527441/workflow-runtime/internal/workflow"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Server is the REST surface over the runtime, grounded on the teacher's
// Server struct: a config + logger pair plus whatever collaborators the
// routes need, wrapped around a single *http.Server.
type Server struct {
	cfg       config.Config
	logger    *zap.Logger
	store     store.Store
	runner    *workflow.Runner
	registry  workflow.WorkflowRegistry
	validator *workflow.SchemaValidator
	srv       *http.Server
}

func Module() fx.Option {
	return fx.Options(
		fx.Provide(NewServer),
		fx.Invoke(RegisterHooks),
	)
}

// NewServer wires every route, mirroring the teacher's NewServer shape
// (build a mux, register handlers, wrap in an *http.Server with a fixed
// read-header timeout) but routed against the new store/runner/registry
// collaborators instead of a single in-memory workflow service.
func NewServer(cfg config.Config, logger *zap.Logger, st store.Store, runner *workflow.Runner, registry workflow.WorkflowRegistry, validator *workflow.SchemaValidator) *Server {
	s := &Server{
		cfg:       cfg,
		logger:    logger,
		store:     st,
		runner:    runner,
		registry:  registry,
		validator: validator,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/metrics", s.handleMetrics)
	mux.HandleFunc("/docs", s.handleDocs)
	mux.HandleFunc("/v1/definitions", s.handleDefinitions)
	mux.HandleFunc("/v1/definitions/", s.handleDefinitionSubroutes)
	mux.HandleFunc("/v1/templates", s.handleTemplates)
	mux.HandleFunc("/v1/runs", s.handleRuns)
	mux.HandleFunc("/v1/instances/", s.handleInstanceSubroutes)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	s.srv = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

func RegisterHooks(lc fx.Lifecycle, server *Server) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			server.logger.Info("http server starting", zap.String("addr", server.srv.Addr))
			go func() {
				if err := server.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					server.logger.Error("http server error", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			server.logger.Info("http server stopping")
			return server.srv.Shutdown(shutdownCtx)
		},
	})
}
