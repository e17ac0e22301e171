package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/SankareshwaranS/FileManagementSystem/pkg/config"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a sample configuration file",
	Long: `Initialize a sample fms configuration file.

By default, the configuration file is created at $XDG_CONFIG_HOME/fms/config.yaml.
Use --config to specify a custom path.

Examples:
  # Initialize with default location
  fms init

  # Initialize with custom path
  fms init --config /etc/fms/config.yaml

  # Force overwrite existing config
  fms init --force`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Force overwrite existing config file")
}

func runInit(cmd *cobra.Command, args []string) error {
	configFile := GetConfigFile()

	var configPath string
	var err error

	if configFile != "" {
		err = config.InitConfigToPath(configFile, initForce)
		configPath = configFile
	} else {
		configPath, err = config.InitConfig(initForce)
	}

	if err != nil {
		return fmt.Errorf("failed to initialize config: %w", err)
	}

	fmt.Printf("Configuration file created at: %s\n", configPath)
	fmt.Println("\nNext steps:")
	fmt.Println("  1. Choose the database (sqlite or postgres) and the storage backend (fs or s3)")
	fmt.Println("  2. Start the server with: fms start")
	fmt.Printf("  3. Or specify custom config: fms start --config %s\n", configPath)
	fmt.Println("\nEnvironment overrides use the FMS_ prefix, for example:")
	fmt.Println("    export FMS_STORAGE_TYPE=s3 FMS_STORAGE_S3_BUCKET=items")

	return nil
}
