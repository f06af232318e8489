package cmd

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/gyapaarachchi-ifs/pr-summarizer/pkg/server"
	"github.com/gyapaarachchi-ifs/pr-summarizer/pkg/store"
)

var (
	serveHost string
	servePort int
)

func init() {
	rootCmd.AddCommand(newServeCmd())
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the PR summary HTTP service",
		Long: `Run the PR summary HTTP service in the foreground.

Endpoints:
  POST   /summary                     Generate a summary synchronously
  GET    /healthz                     Liveness probe
  GET    /api/v1/health               Dependency health
  GET    /api/v1/metrics              Request metrics
  POST   /api/v1/summaries            Generate and store a summary
  POST   /api/v1/summaries/async      Queue a summary job
  GET    /api/v1/summaries            List stored summaries
  GET    /api/v1/summaries/{id}       Fetch a stored summary
  DELETE /api/v1/summaries/{id}       Cancel a queued or running job

When server.grpc_port is set, a gRPC health service is served on that port.
SIGINT and SIGTERM trigger a graceful shutdown bounded by
server.shutdown_timeout.

Examples:
  pr-summarizer serve
  pr-summarizer serve --port 9000
  pr-summarizer serve status
  pr-summarizer serve stop`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd)
		},
	}

	cmd.Flags().StringVar(&serveHost, "host", "", "listen host (overrides server.host)")
	cmd.Flags().IntVar(&servePort, "port", 0, "listen port (overrides server.port)")

	cmd.AddCommand(newServeStatusCmd())
	cmd.AddCommand(newServeStopCmd())

	return cmd
}

func runServe(cmd *cobra.Command) error {
	if pid, running := server.IsRunning(); running {
		fmt.Fprintf(cmd.OutOrStdout(), "Server is already running (PID %d).\n", pid)
		return nil
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	srvCfg := cfg.Server
	if serveHost != "" {
		srvCfg.Host = serveHost
	}
	if servePort != 0 {
		srvCfg.Port = servePort
	}

	logger := newLogger(cfg)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(ctx, cfg.Store.Path)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	orch, err := newOrchestrator(cfg, logger, storeCheck(st.Ping))
	if err != nil {
		return err
	}

	srv := server.New(srvCfg, orch, st, logger)

	if err := server.WritePIDFile(); err != nil {
		return err
	}
	defer func() { _ = server.RemovePIDFile() }()

	var grpcHealth *server.GRPCHealth
	if srvCfg.GRPCPort != 0 {
		lis, err := net.Listen("tcp", srvCfg.GRPCAddr())
		if err != nil {
			return errors.Wrapf(err, "failed to listen on %s", srvCfg.GRPCAddr())
		}
		grpcHealth = server.NewGRPCHealth(orch, logger)
		go func() {
			if err := grpcHealth.Serve(ctx, lis); err != nil {
				logger.Error("gRPC health service stopped", "error", err)
			}
		}()
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Listen(srvCfg.Addr()) }()

	fmt.Fprintf(cmd.OutOrStdout(), "Server started on %s (PID %d)\n", srvCfg.Addr(), os.Getpid())

	select {
	case err := <-errCh:
		if grpcHealth != nil {
			grpcHealth.Stop()
		}
		if err != nil {
			return errors.Wrap(err, "HTTP server failed")
		}
		return nil
	case <-ctx.Done():
	}

	fmt.Fprintln(cmd.OutOrStdout(), "\nShutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), srvCfg.ShutdownTimeout)
	defer cancel()

	if grpcHealth != nil {
		grpcHealth.Stop()
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("shutdown incomplete", "error", err)
		return err
	}
	logger.Info("server stopped")
	return nil
}

func newServeStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether the server is running",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pid, running := server.IsRunning()
			if !running {
				fmt.Fprintln(cmd.OutOrStdout(), "Server is not running.")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Server is running (PID %d).\n", pid)
			return nil
		},
	}
}

func newServeStopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop a running server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, running := server.IsRunning(); !running {
				fmt.Fprintln(cmd.OutOrStdout(), "Server is not running.")
				return nil
			}
			pid, err := server.Stop()
			if err != nil {
				return errors.Wrap(err, "failed to stop server")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Sent SIGTERM to server (PID %d).\n", pid)
			return nil
		},
	}
}
