package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/sefroberg/jenkins-scm-koji-plugin/pkg/log"
	"github.com/sefroberg/jenkins-scm-koji-plugin/pkg/manager"
	"github.com/sefroberg/jenkins-scm-koji-plugin/pkg/metrics"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the name the gRPC health service reports for otool
const ServiceName = "otool"

// Server serves the otool HTTP API and the gRPC health service
type Server struct {
	manager *manager.Manager
	mux     *http.ServeMux
	logger  zerolog.Logger

	http   *http.Server
	grpc   *grpc.Server
	health *health.Server
}

// NewServer creates a new API server
func NewServer(mgr *manager.Manager) *Server {
	s := &Server{
		manager: mgr,
		mux:     http.NewServeMux(),
		logger:  log.WithComponent("api"),
		grpc:    grpc.NewServer(),
		health:  health.NewServer(),
	}
	s.routes()
	healthpb.RegisterHealthServer(s.grpc, s.health)
	s.health.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /get/jobs", s.handleJobs)
	s.mux.HandleFunc("GET /get/jdkVersion", s.handleJDKVersion)
	s.mux.HandleFunc("GET /get/jdkVersions", s.handleJDKVersions)
	s.mux.HandleFunc("GET /get/products", s.handleProducts)
	s.mux.HandleFunc("GET /get/projects", s.handleProjects)
	s.mux.HandleFunc("GET /get/platforms", s.handlePlatforms)
	s.mux.HandleFunc("GET /get/kojiArches", s.handleKojiArches)
	s.mux.HandleFunc("GET /get/path", s.handlePath)
	s.mux.HandleFunc("GET /get/job", s.handleJob)
	s.mux.HandleFunc("GET /get/nvr", s.handleNVR)
	s.mux.HandleFunc("GET /get/help", s.handleHelp)

	s.mux.HandleFunc("GET /misc/re/build", s.handleRedeployBuild)
	s.mux.HandleFunc("GET /misc/re/test", s.handleRedeployTest)
	s.mux.HandleFunc("GET /misc/re/archesExpected", s.handleArchesExpected)

	s.mux.HandleFunc("GET /config/{collection}", s.handleConfigList)
	s.mux.HandleFunc("GET /config/{collection}/{id}", s.handleConfigGet)
	s.mux.HandleFunc("PUT /config/{collection}/{id}", s.handleConfigPut)
	s.mux.HandleFunc("DELETE /config/{collection}/{id}", s.handleConfigDelete)

	s.mux.Handle("GET /health", metrics.HealthHandler())
	s.mux.Handle("GET /ready", metrics.ReadyHandler())
	s.mux.Handle("GET /metrics", metrics.Handler())
}

// Handler returns the HTTP handler with request middleware applied
func (s *Server) Handler() http.Handler {
	return s.instrument(s.mux)
}

// Start serves HTTP on addr until Stop is called
func (s *Server) Start(addr string) error {
	s.http = &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	metrics.UpdateComponent(metrics.ComponentAPI, true, "")
	s.health.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	s.logger.Info().Str("addr", addr).Msg("HTTP API listening")

	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		metrics.UpdateComponent(metrics.ComponentAPI, false, err.Error())
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// StartGRPC serves the gRPC health service on addr until Stop is called
func (s *Server) StartGRPC(addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen: %v", err)
	}
	s.logger.Info().Str("addr", addr).Msg("gRPC health service listening")
	return s.grpc.Serve(lis)
}

// Stop gracefully stops both servers
func (s *Server) Stop(ctx context.Context) error {
	s.health.Shutdown()
	metrics.UpdateComponent(metrics.ComponentAPI, false, "shutting down")
	s.grpc.GracefulStop()
	if s.http != nil {
		return s.http.Shutdown(ctx)
	}
	return nil
}
