package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sefroberg/jenkins-scm-koji-plugin/pkg/api"
	"github.com/sefroberg/jenkins-scm-koji-plugin/pkg/config"
	"github.com/sefroberg/jenkins-scm-koji-plugin/pkg/health"
	"github.com/sefroberg/jenkins-scm-koji-plugin/pkg/log"
	"github.com/sefroberg/jenkins-scm-koji-plugin/pkg/metrics"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the otool HTTP API",
	Long: `Serve the otool query API over HTTP, the gRPC health service and
Prometheus metrics until interrupted.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String(config.KeyHTTPAddr, "", "Address for the HTTP API")
	serveCmd.Flags().String(config.KeyGRPCAddr, "", "Address for the gRPC health service")
	_ = v.BindPFlag(config.KeyHTTPAddr, serveCmd.Flags().Lookup(config.KeyHTTPAddr))
	_ = v.BindPFlag(config.KeyGRPCAddr, serveCmd.Flags().Lookup(config.KeyGRPCAddr))
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	logger := log.WithComponent("serve")
	metrics.SetVersion(Version)

	collector := metrics.NewCollector(a.store, metrics.DefaultCollectInterval, log.WithComponent("metrics"))
	collector.Start()
	defer collector.Stop()

	checkers := []health.Checker{&health.ListerChecker{Lister: a.lister}}
	if a.cfg.DBRoot != "" {
		checkers = append(checkers, &health.DirChecker{Component: "db-root", Path: a.cfg.DBRoot})
	}
	if a.cfg.JobsRoot != "" {
		checkers = append(checkers, &health.DirChecker{Component: "jobs-root", Path: a.cfg.JobsRoot})
	}
	monitor := health.NewMonitor(health.DefaultConfig(), metrics.UpdateComponent, log.WithComponent("health"), checkers...)
	monitor.Start()
	defer monitor.Stop()

	server := api.NewServer(a.manager)
	errCh := make(chan error, 2)
	go func() {
		if err := server.Start(a.cfg.HTTPAddr); err != nil {
			errCh <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()
	if a.cfg.GRPCAddr != "" {
		go func() {
			if err := server.StartGRPC(a.cfg.GRPCAddr); err != nil {
				errCh <- fmt.Errorf("gRPC server error: %w", err)
			}
		}()
	}

	logger.Info().
		Str("data_dir", a.cfg.DataDir).
		Str("db_root", a.cfg.DBRoot).
		Str("jobs_root", a.cfg.JobsRoot).
		Msg("otool is running, press Ctrl+C to stop")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	var runErr error
	select {
	case <-sigCh:
		logger.Info().Msg("Shutting down")
	case runErr = <-errCh:
		logger.Error().Err(runErr).Msg("Server failed")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Stop(ctx); err != nil {
		logger.Warn().Err(err).Msg("Unclean HTTP shutdown")
	}
	return runErr
}
