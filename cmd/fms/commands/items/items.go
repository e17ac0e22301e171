// Package items implements the item tree commands. They talk to a running
// server through the REST API.
package items

import (
	"github.com/spf13/cobra"
)

// Cmd is the parent command for item management.
var Cmd = &cobra.Command{
	Use:     "items",
	Aliases: []string{"item"},
	Short:   "Folder and file management",
	Long: `Manage the folders and files of an fms server.

Items are addressed by id. Files always live inside a folder; folders may
live at the root.

Examples:
  # List root-level items
  fms items ls --root

  # Create a folder at the root, then a sub-folder
  fms items mkdir reports
  fms items mkdir q3 --parent <folder-id>

  # Upload a local file into a folder
  fms items upload ./summary.pdf --parent <folder-id>

  # Rename, move and delete
  fms items rename <id> "summary-final"
  fms items mv <id> <new-parent-id>
  fms items rm <id>`,
}

func init() {
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(getCmd)
	Cmd.AddCommand(mkdirCmd)
	Cmd.AddCommand(touchCmd)
	Cmd.AddCommand(uploadCmd)
	Cmd.AddCommand(renameCmd)
	Cmd.AddCommand(moveCmd)
	Cmd.AddCommand(removeCmd)
}
