package items

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/SankareshwaranS/FileManagementSystem/cmd/fms/cmdutil"
	"github.com/SankareshwaranS/FileManagementSystem/pkg/tree"
)

var (
	mkdirParent string
	touchParent string
)

var mkdirCmd = &cobra.Command{
	Use:   "mkdir <name>",
	Short: "Create a folder",
	Long: `Create a folder at the root, or inside --parent.

Examples:
  fms items mkdir reports
  fms items mkdir q3 --parent <folder-id>`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCreate(args[0], tree.TypeFolder, mkdirParent)
	},
}

var touchCmd = &cobra.Command{
	Use:   "touch <name>",
	Short: "Create an empty file",
	Long: `Create an empty file inside a folder. Use 'upload' to create a file
with content.

Examples:
  fms items touch notes.txt --parent <folder-id>`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCreate(args[0], tree.TypeFile, touchParent)
	},
}

func init() {
	mkdirCmd.Flags().StringVar(&mkdirParent, "parent", "", "Parent folder id (default: root)")
	touchCmd.Flags().StringVar(&touchParent, "parent", "", "Parent folder id")
	_ = touchCmd.MarkFlagRequired("parent")
}

func runCreate(name string, typ tree.ItemType, parentID string) error {
	p, err := cmdutil.GetPrinter()
	if err != nil {
		return err
	}

	item, err := cmdutil.GetClient().CreateItem(cmdutil.Context(), name, typ, parentID)
	if err != nil {
		return cmdutil.DescribeError("create "+string(typ), err)
	}
	return p.Item(item, fmt.Sprintf("%s '%s' created", typ, item.Name))
}
