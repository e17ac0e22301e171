package config

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/SankareshwaranS/FileManagementSystem/internal/bytesize"
	"github.com/SankareshwaranS/FileManagementSystem/pkg/tree"
	"github.com/SankareshwaranS/FileManagementSystem/pkg/tree/store/database"
)

// ApplyDefaults sets default values for any unspecified configuration fields.
//
// Zero values (0, "", false, nil) are replaced with defaults; explicit values
// are preserved.
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	applyTelemetryDefaults(&cfg.Telemetry)
	applyShutdownTimeoutDefaults(cfg)
	applyDatabaseDefaults(&cfg.Database)
	applyStorageDefaults(&cfg.Storage)
	applyTreeDefaults(&cfg.Tree)
	cfg.Server.ApplyDefaults()
	applyMetricsDefaults(&cfg.Metrics)
}

// applyLoggingDefaults sets logging defaults and normalizes values.
func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	cfg.Level = strings.ToUpper(cfg.Level)

	if cfg.Format == "" {
		cfg.Format = "text"
	}
	if cfg.Output == "" {
		cfg.Output = "stdout"
	}
}

// applyTelemetryDefaults sets OpenTelemetry defaults.
func applyTelemetryDefaults(cfg *TelemetryConfig) {
	if cfg.Endpoint == "" {
		cfg.Endpoint = "localhost:4317"
	}
	if cfg.SampleRate == 0 {
		cfg.SampleRate = 1.0
	}

	applyProfilingDefaults(&cfg.Profiling)
}

// applyProfilingDefaults sets Pyroscope profiling defaults.
func applyProfilingDefaults(cfg *ProfilingConfig) {
	if cfg.Endpoint == "" {
		cfg.Endpoint = "http://localhost:4040"
	}
	if len(cfg.ProfileTypes) == 0 {
		cfg.ProfileTypes = []string{
			"cpu",
			"alloc_objects",
			"alloc_space",
			"inuse_objects",
			"inuse_space",
			"goroutines",
		}
	}
}

func applyShutdownTimeoutDefaults(cfg *Config) {
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 30 * time.Second
	}
}

func applyDatabaseDefaults(cfg *database.Config) {
	cfg.ApplyDefaults()
}

// applyStorageDefaults defaults to a filesystem backend rooted next to the
// configuration file.
func applyStorageDefaults(cfg *StorageConfig) {
	if cfg.Type == "" {
		cfg.Type = StorageTypeFS
	}

	if cfg.FS.Root == "" {
		cfg.FS.Root = filepath.Join(getConfigDir(), "root")
		cfg.FS.CreateRoot = true
	}
	if cfg.FS.DirMode == 0 {
		cfg.FS.DirMode = 0o755
	}
	if cfg.FS.FileMode == 0 {
		cfg.FS.FileMode = 0o644
	}

	if cfg.S3.MaxRetries == 0 {
		cfg.S3.MaxRetries = 3
	}
}

func applyTreeDefaults(cfg *TreeConfig) {
	d := tree.DefaultConfig()

	if cfg.StorageTimeout == 0 {
		cfg.StorageTimeout = d.StorageTimeout
	}
	if cfg.LockTimeout == 0 {
		cfg.LockTimeout = d.LockTimeout
	}
	if cfg.DefaultPageSize == 0 {
		cfg.DefaultPageSize = d.DefaultPageSize
	}
	if cfg.MaxPageSize == 0 {
		cfg.MaxPageSize = d.MaxPageSize
	}
	if cfg.MaxUploadSize == 0 {
		cfg.MaxUploadSize = bytesize.ByteSize(d.MaxUploadSize)
	}
	if cfg.MaxDepth == 0 {
		cfg.MaxDepth = d.MaxDepth
	}
}

// applyMetricsDefaults sets metrics defaults.
func applyMetricsDefaults(cfg *MetricsConfig) {
	// Port defaults to 9090 if metrics are enabled
	if cfg.Enabled && cfg.Port == 0 {
		cfg.Port = 9090
	}
}

// GetDefaultConfig returns a Config struct with all default values applied.
func GetDefaultConfig() *Config {
	cfg := &Config{
		Database: database.Config{
			Type: database.DatabaseTypeSQLite,
		},
		Storage: StorageConfig{
			Type: StorageTypeFS,
		},
	}

	ApplyDefaults(cfg)
	return cfg
}
