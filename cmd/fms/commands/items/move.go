package items

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/SankareshwaranS/FileManagementSystem/cmd/fms/cmdutil"
)

var moveCmd = &cobra.Command{
	Use:     "mv <id> <new-parent-id>",
	Aliases: []string{"move"},
	Short:   "Move an item into another folder",
	Long: `Move a folder or file into another folder. A folder cannot be moved
into itself or one of its descendants.

Examples:
  fms items mv <id> <folder-id>`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := cmdutil.GetPrinter()
		if err != nil {
			return err
		}

		item, err := cmdutil.GetClient().MoveItem(cmdutil.Context(), args[0], args[1])
		if err != nil {
			return cmdutil.DescribeError("move item", err)
		}
		return p.Item(item, fmt.Sprintf("%s '%s' moved", item.Type, item.Name))
	},
}
