package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/SankareshwaranS/FileManagementSystem/cmd/fms/cmdutil"
	"github.com/SankareshwaranS/FileManagementSystem/internal/cli/output"
	"github.com/SankareshwaranS/FileManagementSystem/pkg/apiclient"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show server status",
	Long: `Display the status of a running fms server.

This command calls the liveness and readiness endpoints and shows the
uptime and the health of the item store and the storage backend.

Examples:
  # Check the default server
  fms status

  # Check another server
  fms status --server http://files.internal:8080

  # Output as JSON
  fms status -o json`,
	RunE: runStatus,
}

// ServerStatus represents the server status information.
type ServerStatus struct {
	Server     string                      `json:"server" yaml:"server"`
	Running    bool                        `json:"running" yaml:"running"`
	Ready      bool                        `json:"ready" yaml:"ready"`
	Message    string                      `json:"message" yaml:"message"`
	StartedAt  *time.Time                  `json:"started_at,omitempty" yaml:"started_at,omitempty"`
	UptimeSec  int64                       `json:"uptime_sec,omitempty" yaml:"uptime_sec,omitempty"`
	Components []apiclient.ComponentHealth `json:"components,omitempty" yaml:"components,omitempty"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	p, err := cmdutil.GetPrinter()
	if err != nil {
		return err
	}

	client := cmdutil.GetClient()
	ctx := cmdutil.Context()

	status := ServerStatus{
		Server:  client.BaseURL(),
		Message: "Server is not running",
	}

	live, err := client.Health(ctx)
	if err == nil {
		status.Running = true
		startedAt := live.StartedAt
		status.StartedAt = &startedAt
		status.UptimeSec = live.UptimeSec

		ready, err := client.Ready(ctx)
		switch {
		case err != nil:
			status.Message = fmt.Sprintf("Server is running but readiness check failed: %v", err)
		case ready.Ready:
			status.Ready = true
			status.Components = ready.Components
			status.Message = "Server is running and ready"
		default:
			status.Components = ready.Components
			status.Message = "Server is running but not ready"
			if ready.Error != "" {
				status.Message += ": " + ready.Error
			}
		}
	}

	if p.Format() != output.FormatTable {
		return p.Encode(status)
	}

	printStatusTable(p, status)
	return nil
}

func printStatusTable(p *output.Printer, status ServerStatus) {
	p.Println()
	p.Println("fms Server Status")
	p.Println("=================")
	p.Println()

	p.Printf("  Server:     %s\n", status.Server)
	switch {
	case status.Ready:
		p.Printf("  Status:     \033[32m● Ready\033[0m\n")
	case status.Running:
		p.Printf("  Status:     \033[33m● Running (not ready)\033[0m\n")
	default:
		p.Printf("  Status:     \033[31m○ Stopped\033[0m\n")
	}
	if status.StartedAt != nil {
		p.Printf("  Started:    %s\n", output.Time(*status.StartedAt))
		p.Printf("  Uptime:     %s\n", output.Uptime(time.Duration(status.UptimeSec)*time.Second))
	}

	p.Println()
	p.Printf("  %s\n", status.Message)
	p.Println()

	if len(status.Components) > 0 {
		_ = output.WriteTable(p.Writer(), output.ComponentTable(status.Components))
		p.Println()
	}
}
