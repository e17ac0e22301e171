package items

import (
	"github.com/spf13/cobra"

	"github.com/SankareshwaranS/FileManagementSystem/cmd/fms/cmdutil"
)

var removeForce bool

var removeCmd = &cobra.Command{
	Use:     "rm <id>",
	Aliases: []string{"delete"},
	Short:   "Delete an item",
	Long: `Delete a file, or a folder with everything beneath it.

Examples:
  # Delete with confirmation
  fms items rm <id>

  # Delete without confirmation
  fms items rm <id> --force`,
	Args: cobra.ExactArgs(1),
	RunE: runRemove,
}

func init() {
	removeCmd.Flags().BoolVarP(&removeForce, "force", "f", false, "Skip confirmation prompt")
}

func runRemove(cmd *cobra.Command, args []string) error {
	client := cmdutil.GetClient()
	ctx := cmdutil.Context()
	id := args[0]

	item, err := client.GetItem(ctx, id)
	if err != nil {
		return cmdutil.DescribeError("delete item", err)
	}

	if item.IsFolder() {
		cmdutil.Warn("Deleting a folder deletes everything beneath it.")
	}

	return cmdutil.RunDeleteWithConfirmation(string(item.Type), item.Name, removeForce, func() error {
		if err := client.DeleteItem(ctx, id); err != nil {
			return cmdutil.DescribeError("delete item", err)
		}
		return nil
	})
}
