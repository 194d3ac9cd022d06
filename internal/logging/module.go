package logging

import (
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Module provides a *zap.Logger to the rest of the app. The teacher
// delegates this to a private sibling package
// (github.com/ronappleton/ai-eco-system/pkg/logging) that is not part of
// the retrieved corpus and cannot be fetched; this repository builds the
// zap.Logger directly and keeps the teacher's metricsink.go tee attached on
// top of it, so the shape of "fx.Provide a configured *zap.Logger" is
// preserved even though the construction moved in-repo.
func Module(serviceName string) fx.Option {
	return fx.Provide(func() (*zap.Logger, error) {
		return New(serviceName)
	})
}

// New builds a production zap.Logger with the metrics-sink tee attached.
func New(serviceName string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.InitialFields = map[string]any{"service": serviceName}
	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return attachMetricSink(logger), nil
}
