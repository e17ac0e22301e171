package items

import (
	"github.com/spf13/cobra"

	"github.com/SankareshwaranS/FileManagementSystem/cmd/fms/cmdutil"
)

var getCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show an item",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := cmdutil.GetPrinter()
		if err != nil {
			return err
		}

		item, err := cmdutil.GetClient().GetItem(cmdutil.Context(), args[0])
		if err != nil {
			return cmdutil.DescribeError("get item", err)
		}
		return p.Item(item, "")
	},
}
