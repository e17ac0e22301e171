package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/SankareshwaranS/FileManagementSystem/internal/logger"
	"github.com/SankareshwaranS/FileManagementSystem/internal/telemetry"
	"github.com/SankareshwaranS/FileManagementSystem/pkg/api"
	"github.com/SankareshwaranS/FileManagementSystem/pkg/api/handlers"
	"github.com/SankareshwaranS/FileManagementSystem/pkg/config"
	"github.com/SankareshwaranS/FileManagementSystem/pkg/metrics"

	// Import prometheus metrics to register init() functions
	_ "github.com/SankareshwaranS/FileManagementSystem/pkg/metrics/prometheus"
)

var (
	pidFile       string
	verifyOnStart bool
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the fms server",
	Long: `Start the fms server with the specified configuration.

The server opens the item store and the storage backend, then serves the
REST API until interrupted. With metrics enabled, Prometheus metrics are
served on a separate port.

Use --config to specify a custom configuration file, or it will use the
default location at $XDG_CONFIG_HOME/fms/config.yaml.

Examples:
  # Start with the default config
  fms start

  # Start with custom config file
  fms start --config /etc/fms/config.yaml

  # Check the tree against the backend before serving
  fms start --verify

  # Start with environment variable overrides
  FMS_LOGGING_LEVEL=DEBUG fms start`,
	RunE: runStart,
}

func init() {
	startCmd.Flags().StringVar(&pidFile, "pid-file", "", "Path to PID file")
	startCmd.Flags().BoolVar(&verifyOnStart, "verify", false, "Report store/backend drift before serving (no repair)")
}

// runner is a long-running server stopped by cancelling its context.
type runner interface {
	Start(ctx context.Context) error
}

func runStart(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Create cancellable context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownObservability, err := initObservability(ctx, cfg)
	if err != nil {
		return err
	}
	defer shutdownObservability()

	fmt.Println("fms - folder and file tree server")
	logger.Info("Log level", "level", cfg.Logging.Level, "format", cfg.Logging.Format)
	logger.Info("Configuration loaded", "source", getConfigSource(GetConfigFile()))
	if telemetry.IsEnabled() {
		logger.Info("Telemetry enabled", "endpoint", cfg.Telemetry.Endpoint, "sample_rate", cfg.Telemetry.SampleRate)
	} else {
		logger.Info("Telemetry disabled")
	}
	if telemetry.IsProfilingEnabled() {
		logger.Info("Profiling enabled", "endpoint", cfg.Telemetry.Profiling.Endpoint, "profile_types", cfg.Telemetry.Profiling.ProfileTypes)
	} else {
		logger.Info("Profiling disabled")
	}

	// The registry must exist before the coordinator is built so the
	// tree and storage collectors are created.
	var servers []runner
	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
		servers = append(servers, metrics.NewServer(cfg.Metrics.Port))
		logger.Info("Metrics enabled", "port", cfg.Metrics.Port)
	} else {
		logger.Info("Metrics collection disabled")
	}

	coord, store, backend, err := config.CreateCoordinator(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := backend.Close(); err != nil {
			logger.Error("Storage backend close error", logger.KeyError, err)
		}
		if err := store.Close(); err != nil {
			logger.Error("Item store close error", logger.KeyError, err)
		}
	}()
	logger.Info("Tree initialized",
		"database", string(store.Type()),
		logger.KeyBackend, backend.Type(),
		"max_upload_size", cfg.Tree.MaxUploadSize.String())

	if verifyOnStart {
		report, err := coord.Verify(ctx, false)
		if err != nil {
			return fmt.Errorf("startup verification failed: %w", err)
		}
		if report.Consistent() {
			logger.Info("Tree verified", "checked", report.Checked)
		} else {
			logger.Warn("Tree has drifted from the storage backend, run 'fms fsck'",
				"checked", report.Checked, "findings", len(report.Findings))
		}
	}

	apiServer := api.NewServer(cfg.Server, api.Dependencies{
		Items:         coord,
		MaxUploadSize: coord.Config().MaxUploadSize,
		Health: []handlers.Component{
			{Name: string(store.Type()), Kind: "store", Checker: store},
			{Name: backend.Type(), Kind: "backend", Checker: backend},
		},
	})
	servers = append(servers, apiServer)
	logger.Info("API server configured", "port", cfg.Server.Port)

	if pidFile != "" {
		if err := os.WriteFile(pidFile, []byte(fmt.Sprintf("%d", os.Getpid())), 0644); err != nil {
			return fmt.Errorf("failed to write PID file: %w", err)
		}
		defer func() { _ = os.Remove(pidFile) }()
	}

	serverDone := make(chan error, len(servers))
	for _, s := range servers {
		go func(s runner) {
			serverDone <- s.Start(ctx)
		}(s)
	}

	// Wait for interrupt signal or server error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	logger.Info("Server is running. Press Ctrl+C to stop.")

	remaining := len(servers)
	var runErr error
	select {
	case <-sigChan:
		logger.Info("Shutdown signal received, initiating graceful shutdown")
	case runErr = <-serverDone:
		if runErr != nil {
			logger.Error("Server error", logger.KeyError, runErr)
		}
		remaining--
	}
	cancel()

	if err := waitForServers(serverDone, remaining, cfg.ShutdownTimeout); err != nil {
		logger.Error("Server shutdown error", logger.KeyError, err)
		if runErr == nil {
			runErr = err
		}
	}

	if runErr == nil {
		logger.Info("Server stopped gracefully")
	}
	return runErr
}

// waitForServers collects n results from done, giving up after timeout.
func waitForServers(done <-chan error, n int, timeout time.Duration) error {
	deadline := time.After(timeout)
	var firstErr error
	for i := 0; i < n; i++ {
		select {
		case err := <-done:
			if err != nil && firstErr == nil {
				firstErr = err
			}
		case <-deadline:
			return fmt.Errorf("graceful shutdown timed out after %s", timeout)
		}
	}
	return firstErr
}
