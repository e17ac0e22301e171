package output

import (
	"github.com/SankareshwaranS/FileManagementSystem/pkg/apiclient"
	"github.com/SankareshwaranS/FileManagementSystem/pkg/tree"
)

// ItemTable lists items one per row. Folders have no size.
type ItemTable []*tree.Item

func (t ItemTable) Headers() []string {
	return []string{"ID", "NAME", "TYPE", "PARENT", "SIZE", "UPDATED"}
}

func (t ItemTable) Rows() [][]string {
	rows := make([][]string, 0, len(t))
	for _, it := range t {
		size := "-"
		if it.IsFile() {
			size = Size(it.Size)
		}
		rows = append(rows, []string{it.ID, it.Name, string(it.Type), dash(it.Parent()), size, Ago(it.UpdatedAt)})
	}
	return rows
}

// ItemDetails lists every field of one item. File-only fields are left out
// for folders.
func ItemDetails(item *tree.Item) KeyValues {
	kv := KeyValues{}.
		Add("ID", item.ID).
		Add("Name", item.Name).
		Add("Type", string(item.Type)).
		Add("Parent", item.Parent())
	if item.IsFile() {
		kv = kv.
			Add("Size", Size(item.Size)).
			Add("Content type", item.ContentType).
			Add("Path", item.StoredPath)
	}
	return kv.
		Add("Created", Time(item.CreatedAt)).
		Add("Updated", Time(item.UpdatedAt))
}

// FindingTable lists the drift found by a verify pass.
type FindingTable []tree.Finding

func (t FindingTable) Headers() []string {
	return []string{"KIND", "ITEM", "TYPE", "PATH", "STORED PATH", "REPAIRED"}
}

func (t FindingTable) Rows() [][]string {
	rows := make([][]string, 0, len(t))
	for _, f := range t {
		repaired := "no"
		if f.Repaired {
			repaired = "yes"
		}
		rows = append(rows, []string{string(f.Kind), f.ItemID, string(f.Type), dash(f.Path), dash(f.StoredPath), repaired})
	}
	return rows
}

// ComponentTable lists readiness results per component.
type ComponentTable []apiclient.ComponentHealth

func (t ComponentTable) Headers() []string {
	return []string{"COMPONENT", "KIND", "STATUS", "LATENCY", "ERROR"}
}

func (t ComponentTable) Rows() [][]string {
	rows := make([][]string, 0, len(t))
	for _, c := range t {
		rows = append(rows, []string{c.Name, c.Kind, c.Status, dash(c.Latency), dash(c.Error)})
	}
	return rows
}
