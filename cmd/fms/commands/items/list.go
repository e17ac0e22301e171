package items

import (
	"github.com/spf13/cobra"

	"github.com/SankareshwaranS/FileManagementSystem/cmd/fms/cmdutil"
	"github.com/SankareshwaranS/FileManagementSystem/internal/cli/output"
	"github.com/SankareshwaranS/FileManagementSystem/pkg/apiclient"
)

var (
	listParent   string
	listRoot     bool
	listSearch   string
	listOrdering string
	listPage     int
	listLimit    int
)

var listCmd = &cobra.Command{
	Use:     "ls",
	Aliases: []string{"list"},
	Short:   "List items",
	Long: `List items, one page at a time.

Without --parent all items are listed; --root restricts the listing to
root-level items.

Examples:
  # Contents of a folder, newest first
  fms items ls --parent <folder-id> --ordering -created_at

  # Search by name, second page of 20
  fms items ls --search report --page 2 --limit 20

  # List as JSON
  fms items ls --root -o json`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	listCmd.Flags().StringVar(&listParent, "parent", "", "List the children of this folder")
	listCmd.Flags().BoolVar(&listRoot, "root", false, "List root-level items only")
	listCmd.Flags().StringVar(&listSearch, "search", "", "Case-insensitive name filter")
	listCmd.Flags().StringVar(&listOrdering, "ordering", "", "name, created_at or updated_at; prefix with - for descending")
	listCmd.Flags().IntVar(&listPage, "page", 0, "Page number (default: 1)")
	listCmd.Flags().IntVar(&listLimit, "limit", 0, "Page size (default: server setting)")
}

func runList(cmd *cobra.Command, args []string) error {
	p, err := cmdutil.GetPrinter()
	if err != nil {
		return err
	}

	page, err := cmdutil.GetClient().ListItems(cmdutil.Context(), apiclient.ListOptions{
		ParentID: listParent,
		RootOnly: listRoot,
		Search:   listSearch,
		Ordering: listOrdering,
		Page:     listPage,
		Limit:    listLimit,
	})
	if err != nil {
		return cmdutil.DescribeError("list items", err)
	}

	if err := p.Render(page, output.ItemTable(page.Results), "No items found."); err != nil {
		return err
	}
	if p.Format() == output.FormatTable && page.Count > 0 {
		p.Printf("\nPage %d, %d of %d items\n", page.Page, len(page.Results), page.Count)
	}
	return nil
}
