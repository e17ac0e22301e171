package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/SankareshwaranS/FileManagementSystem/cmd/fms/cmdutil"
	"github.com/SankareshwaranS/FileManagementSystem/internal/cli/output"
	"github.com/SankareshwaranS/FileManagementSystem/internal/cli/prompt"
	"github.com/SankareshwaranS/FileManagementSystem/pkg/config"
)

// errInconsistent makes fsck exit non-zero when findings remain.
var errInconsistent = errors.New("tree is inconsistent with the storage backend")

var (
	fsckRepair bool
	fsckForce  bool
)

var fsckCmd = &cobra.Command{
	Use:   "fsck",
	Short: "Check the tree against the storage backend",
	Long: `Walk every item from the root and compare it with the storage backend.

Reported findings:
  missing_object  nothing exists at the item's path
  kind_mismatch   a file where a directory belongs, or the reverse
  stale_path      a file's cached path differs from its derived path
  unreachable     the item cannot be reached from the root

With --repair, stale cached paths are rewritten. Missing and mismatched
objects are only reported.

fsck opens the database and the backend directly using the configuration
file; run it while the server is stopped or idle.

Examples:
  # Report drift
  fms fsck

  # Repair stale paths without prompting
  fms fsck --repair --force

  # Machine-readable report
  fms fsck -o json`,
	RunE: runFsck,
}

func init() {
	fsckCmd.Flags().BoolVar(&fsckRepair, "repair", false, "Rewrite stale cached paths")
	fsckCmd.Flags().BoolVarP(&fsckForce, "force", "f", false, "Skip the repair confirmation")
}

func runFsck(cmd *cobra.Command, args []string) error {
	p, err := cmdutil.GetPrinter()
	if err != nil {
		return err
	}

	if fsckRepair && !fsckForce {
		confirmed, err := prompt.ConfirmDanger("This rewrites item records in the database.", "repair")
		if err != nil {
			return cmdutil.HandleAbort(err)
		}
		if !confirmed {
			fmt.Println("Aborted.")
			return nil
		}
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx := context.Background()
	coord, store, backend, err := config.CreateCoordinator(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		_ = backend.Close()
		_ = store.Close()
	}()

	report, err := coord.Verify(ctx, fsckRepair)
	if err != nil {
		return fmt.Errorf("verification failed: %w", err)
	}

	if p.Format() == output.FormatTable {
		p.Printf("Checked %d items\n", report.Checked)
	}
	if err := p.Render(report, output.FindingTable(report.Findings), "No findings"); err != nil {
		return err
	}
	if p.Format() == output.FormatTable && report.Consistent() {
		p.Success("Tree and storage backend agree")
	}

	if !report.Consistent() {
		return errInconsistent
	}
	return nil
}
