package items

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/SankareshwaranS/FileManagementSystem/cmd/fms/cmdutil"
)

var (
	uploadParent string
	uploadName   string
)

var uploadCmd = &cobra.Command{
	Use:   "upload <local-file>",
	Short: "Upload a local file",
	Long: `Upload a local file into a folder.

The item is named after the local file unless --name is given. A name
without an extension takes the local file's extension.

Examples:
  fms items upload ./summary.pdf --parent <folder-id>
  fms items upload ./summary.pdf --parent <folder-id> --name q3-summary`,
	Args: cobra.ExactArgs(1),
	RunE: runUpload,
}

func init() {
	uploadCmd.Flags().StringVar(&uploadParent, "parent", "", "Parent folder id")
	uploadCmd.Flags().StringVar(&uploadName, "name", "", "Item name (default: local file name)")
	_ = uploadCmd.MarkFlagRequired("parent")
}

func runUpload(cmd *cobra.Command, args []string) error {
	p, err := cmdutil.GetPrinter()
	if err != nil {
		return err
	}

	localPath := args[0]
	f, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", localPath, err)
	}
	defer func() { _ = f.Close() }()

	filename := filepath.Base(localPath)
	name := cmdutil.EmptyOr(uploadName, filename)

	item, err := cmdutil.GetClient().UploadFile(cmdutil.Context(), uploadParent, name, filename, f)
	if err != nil {
		return cmdutil.DescribeError("upload file", err)
	}
	return p.Item(item, fmt.Sprintf("file '%s' uploaded", item.Name))
}
