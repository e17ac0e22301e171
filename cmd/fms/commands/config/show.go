package config

import (
	"github.com/spf13/cobra"

	"github.com/SankareshwaranS/FileManagementSystem/internal/cli/output"
	"github.com/SankareshwaranS/FileManagementSystem/pkg/config"
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Display current configuration",
	Long: `Display the effective fms configuration: file values merged with
environment overrides and defaults.

Outputs YAML unless --output json is given.

Examples:
  # Show default config as YAML
  fms config show

  # Show as JSON
  fms config show -o json

  # Show specific config file
  fms config show --config /etc/fms/config.yaml`,
	RunE: runConfigShow,
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.MustLoad(configPath(cmd))
	if err != nil {
		return err
	}

	raw, _ := cmd.Flags().GetString("output")
	format, err := output.ParseFormat(raw)
	if err != nil {
		return err
	}

	if format != output.FormatJSON {
		format = output.FormatYAML
	}
	return output.Encode(cmd.OutOrStdout(), format, cfg)
}
