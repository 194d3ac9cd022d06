package config

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"go.uber.org/fx"
	"gopkg.in/yaml.v3"
)

// Config is the process-level configuration, grounded directly on the
// teacher's Config/ServerConfig/EndpointConfig shape and extended with the
// fields a graph-structured workflow runtime needs: the instance/
// definition store, the context-fidelity default, the event bus sinks, and
// the schema path.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	GRPC     GRPCConfig     `yaml:"grpc"`
	Store    StoreConfig    `yaml:"store"`
	Runtime  RuntimeConfig  `yaml:"runtime"`
	EventBus EventBusConfig `yaml:"eventBus"`
	Context  EndpointConfig `yaml:"contextManager"`
}

// ServerConfig is the HTTP REST surface's listen address.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// GRPCConfig is the gRPC health server's listen address.
type GRPCConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// StoreConfig selects and configures the WorkflowInstanceStore backing.
type StoreConfig struct {
	Kind string `yaml:"kind"` // "memory" or "postgres"
	DSN  string `yaml:"dsn"`
}

// RuntimeConfig holds runner-wide defaults.
type RuntimeConfig struct {
	DefaultFidelity string `yaml:"defaultFidelity"` // "Burst", "Activity" or "None"
	SchemaPath      string `yaml:"schemaPath"`
}

// EventBusConfig configures the lifecycle-notification fan-out.
type EventBusConfig struct {
	HTTPSinks []string `yaml:"httpSinks"`
	NATSURL   string   `yaml:"natsUrl"`
}

// EndpointConfig matches the teacher's EndpointConfig shape: a base URL (or
// gRPC address, in the teacher's case) plus a parseable timeout string.
type EndpointConfig struct {
	BaseURL string `yaml:"baseUrl"`
	Timeout string `yaml:"timeout"`
}

// Default mirrors the teacher's Default(): every field has a safe,
// local-development value.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8100,
		},
		GRPC: GRPCConfig{
			Host: "0.0.0.0",
			Port: 9114,
		},
		Store: StoreConfig{
			Kind: "memory",
		},
		Runtime: RuntimeConfig{
			DefaultFidelity: "Burst",
		},
		Context: EndpointConfig{
			Timeout: "5s",
		},
	}
}

// Load mirrors the teacher's Load(path): start from Default(), overlay a
// YAML file if present, then overlay APP_* environment variables.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return cfg, err
			}
		} else if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}

	if v := strings.TrimSpace(os.Getenv("APP_GRPC_HOST")); v != "" {
		cfg.GRPC.Host = v
	}
	if v := strings.TrimSpace(os.Getenv("APP_GRPC_PORT")); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.GRPC.Port = parsed
		}
	}
	if v := strings.TrimSpace(os.Getenv("APP_HTTP_HOST")); v != "" {
		cfg.Server.Host = v
	}
	if v := strings.TrimSpace(os.Getenv("APP_HTTP_PORT")); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = parsed
		}
	}
	if v := strings.TrimSpace(os.Getenv("APP_STORE_KIND")); v != "" {
		cfg.Store.Kind = v
	}
	if v := strings.TrimSpace(os.Getenv("APP_STORE_DSN")); v != "" {
		cfg.Store.DSN = v
	}
	if v := strings.TrimSpace(os.Getenv("APP_DEFAULT_FIDELITY")); v != "" {
		cfg.Runtime.DefaultFidelity = v
	}
	if v := strings.TrimSpace(os.Getenv("APP_SCHEMA_PATH")); v != "" {
		cfg.Runtime.SchemaPath = v
	}
	if v := strings.TrimSpace(os.Getenv("APP_EVENTBUS_NATS_URL")); v != "" {
		cfg.EventBus.NATSURL = v
	}
	if v := strings.TrimSpace(os.Getenv("APP_EVENTBUS_HTTP_SINKS")); v != "" {
		cfg.EventBus.HTTPSinks = strings.Split(v, ",")
	}
	if v := strings.TrimSpace(os.Getenv("APP_CONTEXT_MANAGER_URL")); v != "" {
		cfg.Context.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv("APP_CONTEXT_MANAGER_TIMEOUT")); v != "" {
		cfg.Context.Timeout = v
	}

	return cfg, nil
}

// Module mirrors the teacher's Module(path): fx.Provide wraps Load so the
// rest of the app receives a ready Config.
func Module(path string) fx.Option {
	return fx.Provide(func() (Config, error) {
		return Load(path)
	})
}
