// Package commands implements the fms command line.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/SankareshwaranS/FileManagementSystem/cmd/fms/cmdutil"
	"github.com/SankareshwaranS/FileManagementSystem/cmd/fms/commands/config"
	"github.com/SankareshwaranS/FileManagementSystem/cmd/fms/commands/items"
)

var (
	// Version information injected at build time.
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"

	// Global flags.
	cfgFile string
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "fms",
	Short: "fms - folder and file tree server",
	Long: `fms keeps a tree of folders and files whose metadata lives in a database
(SQLite or PostgreSQL) and whose content lives in a storage backend (a local
directory or an S3 bucket), and keeps the two consistent.

Server commands (init, start, migrate, fsck, logs, config) read the configuration
file. Client commands (items, status) talk to a running server.

Use "fms [command] --help" for more information about a command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

// GetRootCmd returns the root command for testing purposes.
func GetRootCmd() *cobra.Command {
	return rootCmd
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $XDG_CONFIG_HOME/fms/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&cmdutil.Flags.ServerURL, "server", "", "server URL for client commands (default: $FMS_SERVER or "+cmdutil.DefaultServerURL+")")
	rootCmd.PersistentFlags().DurationVar(&cmdutil.Flags.Timeout, "timeout", 0, "request timeout for client commands (default: 30s)")
	rootCmd.PersistentFlags().StringVarP(&cmdutil.Flags.Output, "output", "o", "table", "output format for client commands (table|json|yaml)")
	rootCmd.PersistentFlags().BoolVar(&cmdutil.Flags.NoColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(fsckCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(logsCmd)
	rootCmd.AddCommand(config.Cmd)
	rootCmd.AddCommand(items.Cmd)
	rootCmd.AddCommand(completionCmd)

	// Hide the default completion command (we provide our own)
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// GetConfigFile returns the config file path from the global flag.
func GetConfigFile() string {
	return cfgFile
}
