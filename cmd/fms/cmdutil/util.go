// Package cmdutil provides shared utilities for fms commands.
package cmdutil

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/SankareshwaranS/FileManagementSystem/internal/cli/output"
	"github.com/SankareshwaranS/FileManagementSystem/internal/cli/prompt"
	"github.com/SankareshwaranS/FileManagementSystem/pkg/apiclient"
)

// EnvServerURL overrides the default server URL of client commands.
const EnvServerURL = "FMS_SERVER"

// DefaultServerURL is used when neither --server nor FMS_SERVER is set.
const DefaultServerURL = "http://localhost:8080"

// Flags stores global flag values accessible by subcommands.
var Flags = &GlobalFlags{}

// GlobalFlags holds the global flag values.
type GlobalFlags struct {
	ServerURL string
	Timeout   time.Duration
	Output    string
	NoColor   bool
}

// ServerURL returns the server URL from --server, FMS_SERVER or the default.
func ServerURL() string {
	if Flags.ServerURL != "" {
		return Flags.ServerURL
	}
	if v := strings.TrimSpace(os.Getenv(EnvServerURL)); v != "" {
		return v
	}
	return DefaultServerURL
}

// GetClient returns an API client for the configured server.
func GetClient() *apiclient.Client {
	c := apiclient.New(ServerURL())
	if Flags.Timeout > 0 {
		c = c.WithTimeout(Flags.Timeout)
	}
	return c
}

// Context returns the context for one client command.
func Context() context.Context {
	return context.Background()
}

// GetPrinter returns a stdout printer for the --output format.
func GetPrinter() (*output.Printer, error) {
	format, err := output.ParseFormat(Flags.Output)
	if err != nil {
		return nil, err
	}
	return output.StdoutPrinter(format, !Flags.NoColor), nil
}

// RunDeleteWithConfirmation prompts for confirmation (unless force is true) and runs deleteFn.
func RunDeleteWithConfirmation(resourceType, name string, force bool, deleteFn func() error) error {
	confirmed, err := prompt.ConfirmWithForce(fmt.Sprintf("Delete %s '%s'?", resourceType, name), force)
	if err != nil {
		return HandleAbort(err)
	}
	if !confirmed {
		fmt.Println("Aborted.")
		return nil
	}

	if err := deleteFn(); err != nil {
		return err
	}

	p, err := GetPrinter()
	if err != nil {
		return err
	}
	if p.Format() == output.FormatTable {
		p.Success(fmt.Sprintf("%s '%s' deleted successfully", resourceType, name))
	}
	return nil
}

// Warn prints a warning for table output. Structured output stays clean.
func Warn(msg string) {
	p, err := GetPrinter()
	if err != nil || p.Format() != output.FormatTable {
		return
	}
	p.Warning(msg)
}

// HandleAbort checks if error is an abort (Ctrl+C) and prints a message.
// Returns nil for abort (user cancelled), otherwise returns the original error.
func HandleAbort(err error) error {
	if prompt.IsAborted(err) {
		fmt.Println("\nAborted.")
		return nil
	}
	return err
}

// EmptyOr returns the value if not empty, otherwise returns the fallback.
// Useful for table display where empty fields should show "-".
func EmptyOr(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

// DescribeError adds a hint for API errors an operator can act on.
func DescribeError(action string, err error) error {
	apiErr, ok := apiclient.AsAPIError(err)
	if !ok {
		return fmt.Errorf("failed to %s: %w", action, err)
	}
	if apiErr.IsInconsistency() {
		return fmt.Errorf("failed to %s: %w\n\nThe server could not undo a partial change. Run 'fms fsck' to inspect the tree", action, err)
	}
	return fmt.Errorf("failed to %s: %w", action, err)
}
