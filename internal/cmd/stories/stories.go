// Package stories parses stories server flags and launches the service.
package stories

import (
	"context"
	"flag"
	"fmt"
	"strings"
	"time"

	entrypoint "github.com/louisbranch/stories/internal/platform/cmd"
	platformgrpc "github.com/louisbranch/stories/internal/platform/grpc"
	"github.com/louisbranch/stories/internal/platform/logging"
	"github.com/louisbranch/stories/internal/services/stories/app"
	"go.uber.org/zap"
)

// Config holds stories command configuration.
type Config struct {
	HTTPAddr     string `env:"HTTP_ADDR"    envDefault:":8080"`
	GRPCAddr     string `env:"GRPC_ADDR"    envDefault:":8081"`
	DBPath       string `env:"DB_PATH"      envDefault:"data/stories.db"`
	NATSURL      string `env:"NATS_URL"`
	Installation string `env:"INSTALLATION" envDefault:"stories"`
	LogLevel     string `env:"LOG_LEVEL"    envDefault:"info"`
	Development  bool   `env:"LOG_DEV"`
	// Check probes a running server's health endpoint instead of serving.
	Check bool
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP API listen address")
	fs.StringVar(&cfg.GRPCAddr, "grpc-addr", cfg.GRPCAddr, "gRPC health listen address")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "SQLite database path (empty keeps games in memory)")
	fs.StringVar(&cfg.NATSURL, "nats-url", cfg.NATSURL, "NATS server URL for game events")
	fs.StringVar(&cfg.Installation, "installation", cfg.Installation, "installation name used in game ids")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug, info, warn, error")
	fs.BoolVar(&cfg.Development, "dev", cfg.Development, "human-readable development logs")
	fs.BoolVar(&cfg.Check, "check", false, "probe the gRPC health endpoint and exit")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	if strings.TrimSpace(cfg.Installation) == "" {
		return Config{}, fmt.Errorf("installation is required")
	}
	return cfg, nil
}

// Run starts the stories server, or probes one when cfg.Check is set.
func Run(ctx context.Context, cfg Config) error {
	if cfg.Check {
		return probe(ctx, cfg.GRPCAddr)
	}
	logger, err := logging.New(cfg.LogLevel, cfg.Development)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceStories, func(ctx context.Context) error {
		srv, err := app.NewServer(ctx, app.ServerConfig{
			HTTPAddr:     cfg.HTTPAddr,
			GRPCAddr:     cfg.GRPCAddr,
			DBPath:       cfg.DBPath,
			NATSURL:      cfg.NATSURL,
			Installation: cfg.Installation,
			Logger:       logger,
		})
		if err != nil {
			logger.Error("start server", zap.Error(err))
			return err
		}
		return srv.Serve(ctx)
	})
}

func probe(ctx context.Context, addr string) error {
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return platformgrpc.Probe(ctx, addr, app.HealthService)
}
