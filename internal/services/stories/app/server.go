package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"

	"github.com/louisbranch/stories/internal/platform/logging"
	"github.com/louisbranch/stories/internal/platform/timeouts"
	httpapi "github.com/louisbranch/stories/internal/services/stories/api/http"
	"github.com/louisbranch/stories/internal/services/stories/content"
	"github.com/louisbranch/stories/internal/services/stories/notify"
	storysqlite "github.com/louisbranch/stories/internal/services/stories/storage/sqlite"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"
)

// HealthService is the gRPC health service name reported by the server.
const HealthService = "stories.v1.Games"

// ServerConfig configures a Server.
type ServerConfig struct {
	HTTPAddr     string
	GRPCAddr     string
	DBPath       string
	NATSURL      string
	Installation string
	Logger       *zap.Logger
}

// Server hosts the stories HTTP API and a gRPC health endpoint.
type Server struct {
	httpListener net.Listener
	grpcListener net.Listener
	httpServer   *http.Server
	grpcServer   *grpc.Server
	health       *health.Server
	service      *Service
	store        *storysqlite.Store
	publisher    notify.Publisher
	logger       *zap.Logger
}

// NewServer opens storage, connects the publisher and binds both listeners.
func NewServer(ctx context.Context, cfg ServerConfig) (*Server, error) {
	logger := logging.OrNop(cfg.Logger)
	loader, err := content.Default()
	if err != nil {
		return nil, fmt.Errorf("load content: %w", err)
	}

	s := &Server{logger: logger, publisher: notify.Nop{}}
	if cfg.DBPath != "" {
		if s.store, err = openStore(ctx, cfg.DBPath); err != nil {
			return nil, err
		}
	}
	if cfg.NATSURL != "" {
		publisher, err := notify.Connect(cfg.NATSURL, "stories-"+cfg.Installation, logger)
		if err != nil {
			s.Close()
			return nil, err
		}
		s.publisher = publisher
	}

	opts := Options{
		Installation: cfg.Installation,
		Content:      loader,
		Publisher:    s.publisher,
		Logger:       logger,
	}
	if s.store != nil {
		opts.Store = s.store
	}
	if s.service, err = NewService(opts); err != nil {
		s.Close()
		return nil, err
	}

	if s.httpListener, err = net.Listen("tcp", cfg.HTTPAddr); err != nil {
		s.Close()
		return nil, fmt.Errorf("listen on %s: %w", cfg.HTTPAddr, err)
	}
	if s.grpcListener, err = net.Listen("tcp", cfg.GRPCAddr); err != nil {
		s.Close()
		return nil, fmt.Errorf("listen on %s: %w", cfg.GRPCAddr, err)
	}

	s.httpServer = &http.Server{
		Handler:           httpapi.NewHandler(s.service, logger),
		ReadHeaderTimeout: timeouts.ReadHeader,
	}
	s.grpcServer = grpc.NewServer(grpc.StatsHandler(otelgrpc.NewServerHandler()))
	s.health = health.NewServer()
	grpc_health_v1.RegisterHealthServer(s.grpcServer, s.health)
	s.health.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	s.health.SetServingStatus(HealthService, grpc_health_v1.HealthCheckResponse_SERVING)
	return s, nil
}

// Service returns the game service the server exposes.
func (s *Server) Service() *Service {
	if s == nil {
		return nil
	}
	return s.service
}

// HTTPAddr returns the HTTP listener address.
func (s *Server) HTTPAddr() string {
	if s == nil || s.httpListener == nil {
		return ""
	}
	return s.httpListener.Addr().String()
}

// GRPCAddr returns the gRPC listener address.
func (s *Server) GRPCAddr() string {
	if s == nil || s.grpcListener == nil {
		return ""
	}
	return s.grpcListener.Addr().String()
}

// Serve runs both servers until ctx ends or one of them fails.
func (s *Server) Serve(ctx context.Context) error {
	if s == nil {
		return errors.New("server is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	defer s.Close()

	s.logger.Info("stories server listening",
		zap.String("http", s.HTTPAddr()),
		zap.String("grpc", s.GRPCAddr()))

	serveErr := make(chan error, 2)
	go func() {
		if err := s.httpServer.Serve(s.httpListener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- fmt.Errorf("serve HTTP: %w", err)
			return
		}
		serveErr <- nil
	}()
	go func() {
		if err := s.grpcServer.Serve(s.grpcListener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			serveErr <- fmt.Errorf("serve gRPC: %w", err)
			return
		}
		serveErr <- nil
	}()

	var err error
	select {
	case <-ctx.Done():
	case err = <-serveErr:
	}

	s.health.Shutdown()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
	defer cancel()
	if shutdownErr := s.httpServer.Shutdown(shutdownCtx); shutdownErr != nil && err == nil {
		err = fmt.Errorf("shutdown HTTP: %w", shutdownErr)
	}
	s.grpcServer.GracefulStop()
	return err
}

// Close releases server resources.
func (s *Server) Close() {
	if s == nil {
		return
	}
	if s.health != nil {
		s.health.Shutdown()
	}
	if s.grpcServer != nil {
		s.grpcServer.Stop()
	}
	if s.httpServer != nil {
		_ = s.httpServer.Close()
	}
	for _, l := range []net.Listener{s.httpListener, s.grpcListener} {
		if l != nil {
			_ = l.Close()
		}
	}
	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			s.logger.Warn("close publisher", zap.Error(err))
		}
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			s.logger.Warn("close stories store", zap.Error(err))
		}
	}
}

func openStore(ctx context.Context, path string) (*storysqlite.Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage dir: %w", err)
		}
	}
	store, err := storysqlite.Open(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("open stories sqlite store: %w", err)
	}
	return store, nil
}
