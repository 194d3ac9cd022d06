// Command workflow-runtime is the service entry point, grounded on the
// teacher's cmd/orchestrator/main.go: cobra selects a subcommand, fx wires
// the process for "serve". The domain wiring (internal/engine,
// internal/discoveryannounce, internal/investigationworker, and the
// generated-protobuf gRPC service) depended on private sibling modules and
// generated packages this repository cannot fetch, so this entry point
// wires the graph-workflow stack (store, registry, runner, event bus,
// context manager, HTTP/gRPC-health servers) in their place.
package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/1002527441/workflow-runtime/internal/activation"
	"github.com/1002527441/workflow-runtime/internal/activities"
	"github.com/1002527441/workflow-runtime/internal/cli"
	"github.com/1002527441/workflow-runtime/internal/config"
	"github.com/1002527441/workflow-runtime/internal/contextmgr"
	"github.com/1002527441/workflow-runtime/internal/eventbus"
	grpcserver "github.com/1002527441/workflow-runtime/internal/grpc"
	"github.com/1002527441/workflow-runtime/internal/httpserver"
	"github.com/1002527441/workflow-runtime/internal/logging"
	"github.com/1002527441/workflow-runtime/internal/otel"
	"github.com/1002527441/workflow-runtime/internal/store"
	"github.com/1002527441/workflow-runtime/internal/workflow"
)

const serviceName = "workflow-runtime"

func main() {
	root := cli.NewRootCommand(serve)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serve(configPath string) error {
	app := fx.New(
		config.Module(configPath),
		logging.Module(serviceName),
		fx.Provide(
			newOtelShutdown,
			newStore,
			newActivationProvider,
			newSchemaValidator,
			newWorkflowProviders,
			newRegistry,
			newWorkflowFactory,
			newEventBus,
			newContextManager,
			newRunner,
		),
		fx.Provide(func(r *workflow.DefaultRegistry) workflow.WorkflowRegistry { return r }),
		httpserver.Module(),
		grpcserver.Module,
		fx.Invoke(registerOtelShutdown),
	)
	app.Run()
	if err := app.Err(); err != nil {
		return err
	}
	return nil
}

func newOtelShutdown() (func(context.Context) error, error) {
	return otel.Init(serviceName)
}

func registerOtelShutdown(lc fx.Lifecycle, log *zap.Logger, shutdown func(context.Context) error) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			if err := shutdown(ctx); err != nil {
				log.Warn("otel shutdown failed", zap.Error(err))
			}
			return nil
		},
	})
}

func newStore(cfg config.Config, log *zap.Logger) (store.Store, error) {
	switch cfg.Store.Kind {
	case "postgres":
		return store.NewPGStore(context.Background(), cfg.Store.DSN)
	default:
		log.Info("using in-memory store", zap.String("kind", cfg.Store.Kind))
		return store.NewMemoryStore(), nil
	}
}

func newActivationProvider() *activation.Provider {
	provider := activation.NewProvider()
	activities.RegisterAll(provider)
	return provider
}

func newSchemaValidator(cfg config.Config) (*workflow.SchemaValidator, error) {
	return workflow.NewSchemaValidatorFromFile(cfg.Runtime.SchemaPath, os.ReadFile)
}

func newWorkflowProviders(st store.Store) []workflow.WorkflowProvider {
	return []workflow.WorkflowProvider{
		activities.NewBuiltinProvider(),
		store.NewProvider(st),
	}
}

func newRegistry(st store.Store, providers []workflow.WorkflowProvider, mediator workflow.Mediator) *workflow.DefaultRegistry {
	registry := workflow.NewDefaultRegistry(st, providers...)
	registry.SetMediator(mediator)
	return registry
}

func newWorkflowFactory() workflow.WorkflowFactory {
	return workflow.NewDefaultFactory()
}

func newEventBus(cfg config.Config, log *zap.Logger) (workflow.Mediator, error) {
	var buses []eventbus.Bus
	if len(cfg.EventBus.HTTPSinks) > 0 {
		buses = append(buses, eventbus.NewHTTPBus(cfg.EventBus.HTTPSinks))
	}
	if cfg.EventBus.NATSURL != "" {
		nb, err := eventbus.NewNATSBus(cfg.EventBus.NATSURL)
		if err != nil {
			return nil, fmt.Errorf("connecting event bus: %w", err)
		}
		buses = append(buses, nb)
	}
	return eventbus.NewMultiBus(log, buses...), nil
}

func newContextManager(cfg config.Config) workflow.WorkflowContextManager {
	return contextmgr.NewHTTPContextManager(cfg.Context.BaseURL, cfg.Context.Timeout)
}

func newRunner(cfg config.Config, registry *workflow.DefaultRegistry, factory workflow.WorkflowFactory, provider *activation.Provider, contextMgr workflow.WorkflowContextManager, mediator workflow.Mediator, log *zap.Logger) *workflow.Runner {
	return workflow.NewRunner(registry, factory, provider, contextMgr, mediator, log, workflow.Fidelity(cfg.Runtime.DefaultFidelity))
}
