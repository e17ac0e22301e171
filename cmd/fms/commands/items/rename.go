package items

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/SankareshwaranS/FileManagementSystem/cmd/fms/cmdutil"
)

var renameCmd = &cobra.Command{
	Use:   "rename <id> <new-name>",
	Short: "Rename an item",
	Long: `Rename a folder or file in place. A file keeps its extension when the
new name has none.

Examples:
  fms items rename <id> archive`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := cmdutil.GetPrinter()
		if err != nil {
			return err
		}

		item, err := cmdutil.GetClient().RenameItem(cmdutil.Context(), args[0], args[1])
		if err != nil {
			return cmdutil.DescribeError("rename item", err)
		}
		return p.Item(item, fmt.Sprintf("%s renamed to '%s'", item.Type, item.Name))
	},
}
