package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/SankareshwaranS/FileManagementSystem/internal/telemetry"
)

var validate = newValidator()

// newValidator reports fields by their configuration key instead of their
// Go name.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.Split(field.Tag.Get("mapstructure"), ",")[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks cfg. Struct tags cover field ranges; the remaining rules
// depend on which backends and features are selected.
func Validate(cfg *Config) error {
	if err := validateStruct(cfg, ""); err != nil {
		return err
	}

	if err := cfg.Database.Validate(); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	if err := validateStorage(&cfg.Storage); err != nil {
		return err
	}

	if err := validateTelemetry(&cfg.Telemetry); err != nil {
		return err
	}

	if cfg.Metrics.Enabled && cfg.Metrics.Port == cfg.Server.Port {
		return fmt.Errorf("metrics.port: %d is already used by server.port", cfg.Metrics.Port)
	}

	return nil
}

func validateStorage(cfg *StorageConfig) error {
	switch cfg.Type {
	case StorageTypeFS:
		return validateStruct(&cfg.FS, "storage.fs")
	case StorageTypeS3:
		return validateStruct(&cfg.S3, "storage.s3")
	default:
		return fmt.Errorf("storage.type: unsupported storage type %q", cfg.Type)
	}
}

func validateTelemetry(cfg *TelemetryConfig) error {
	if cfg.Enabled && cfg.Endpoint == "" {
		return errors.New("telemetry.endpoint: required when telemetry is enabled")
	}

	if cfg.Profiling.Enabled {
		if cfg.Profiling.Endpoint == "" {
			return errors.New("telemetry.profiling.endpoint: required when profiling is enabled")
		}
		for _, name := range cfg.Profiling.ProfileTypes {
			if !telemetry.ValidProfileType(name) {
				return fmt.Errorf("telemetry.profiling.profile_types: unknown profile type %q", name)
			}
		}
	}

	return nil
}

// validateStruct runs the tag validator on s and flattens the first failure
// into a "key: failed 'tag' validation" message.
func validateStruct(s any, prefix string) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: failed '%s' validation (value: %v)",
			fieldKey(fe.Namespace(), prefix), fe.Tag(), fe.Value()))
	}
	return errors.New(strings.Join(msgs, "; "))
}

// fieldKey turns a validator namespace such as "Config.logging.level" into
// the dotted configuration key.
func fieldKey(namespace, prefix string) string {
	key := namespace
	if i := strings.Index(key, "."); i >= 0 {
		key = key[i+1:]
	}
	if prefix != "" {
		key = prefix + "." + key
	}
	return key
}
