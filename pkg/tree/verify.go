package tree

import (
	"context"

	"github.com/SankareshwaranS/FileManagementSystem/internal/logger"
	"github.com/SankareshwaranS/FileManagementSystem/internal/telemetry"
	treeerrors "github.com/SankareshwaranS/FileManagementSystem/pkg/tree/errors"
)

// FindingKind classifies a disagreement found by Verify.
type FindingKind string

const (
	// FindingMissingObject: nothing exists at the item's derived path.
	FindingMissingObject FindingKind = "missing_object"
	// FindingKindMismatch: a file where a directory belongs, or the reverse.
	FindingKindMismatch FindingKind = "kind_mismatch"
	// FindingStalePath: a file's cached StoredPath differs from its derived path.
	FindingStalePath FindingKind = "stale_path"
	// FindingUnreachable: the item cannot be reached from the root.
	FindingUnreachable FindingKind = "unreachable"
)

// Finding is one disagreement between the store and the backend.
type Finding struct {
	Kind       FindingKind `json:"kind" yaml:"kind"`
	ItemID     string      `json:"item_id" yaml:"item_id"`
	Type       ItemType    `json:"type" yaml:"type"`
	Path       string      `json:"path" yaml:"path"`
	StoredPath string      `json:"stored_path,omitempty" yaml:"stored_path,omitempty"`
	Repaired   bool        `json:"repaired" yaml:"repaired"`
}

// VerifyReport summarizes a Verify pass.
type VerifyReport struct {
	Checked  int       `json:"checked" yaml:"checked"`
	Findings []Finding `json:"findings" yaml:"findings"`
}

// Consistent reports whether the pass found nothing, or repaired everything.
func (r *VerifyReport) Consistent() bool {
	for _, f := range r.Findings {
		if !f.Repaired {
			return false
		}
	}
	return true
}

// Verify walks the whole tree from the root and compares every item with the
// backend. With repair set, stale StoredPath caches are rewritten; missing or
// mismatched objects are only reported since fixing them needs an operator.
func (c *Coordinator) Verify(ctx context.Context, repair bool) (report *VerifyReport, err error) {
	ctx, done := c.begin(ctx, OpVerify)
	defer func() { done(err) }()

	report = &VerifyReport{}
	visited := make(map[string]struct{})

	type entry struct {
		item *Item
		path string
	}
	roots, err := c.store.ListChildren(ctx, nil)
	if err != nil {
		return nil, err
	}
	queue := make([]entry, 0, len(roots))
	for _, it := range roots {
		queue = append(queue, entry{it, it.Name})
	}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if _, dup := visited[cur.item.ID]; dup {
			continue
		}
		visited[cur.item.ID] = struct{}{}
		report.Checked++

		if f, err := c.check(ctx, cur.item, cur.path); err != nil {
			return nil, err
		} else if f != nil {
			if repair && f.Kind == FindingStalePath {
				if err := c.repairStoredPath(ctx, cur.item.ID); err != nil {
					return nil, err
				}
				f.Repaired = true
			}
			report.Findings = append(report.Findings, *f)
		}

		if cur.item.IsFolder() {
			children, err := c.store.ListChildren(ctx, &cur.item.ID)
			if err != nil {
				return nil, err
			}
			for _, child := range children {
				queue = append(queue, entry{child, ChildPath(cur.path, child.Name)})
			}
		}
	}

	all, total, err := c.store.ListItems(ctx, Query{OrderBy: OrderByName})
	if err != nil {
		return nil, err
	}
	if int(total) != len(visited) {
		for _, it := range all {
			if _, ok := visited[it.ID]; !ok {
				report.Findings = append(report.Findings, Finding{
					Kind: FindingUnreachable, ItemID: it.ID, Type: it.Type, StoredPath: it.StoredPath,
				})
			}
		}
	}

	if len(report.Findings) > 0 {
		logger.WarnCtx(ctx, "verify found inconsistencies",
			logger.Count(len(report.Findings)), "checked", report.Checked)
	} else {
		logger.InfoCtx(ctx, "verify found no inconsistencies", "checked", report.Checked)
	}
	return report, nil
}

func (c *Coordinator) check(ctx context.Context, item *Item, path string) (*Finding, error) {
	var isDir bool
	err := c.storageCall(ctx, "stat", path, func(ctx context.Context) error {
		info, err := c.backend.Stat(ctx, path)
		if err == nil {
			isDir = info.IsDir
		}
		return err
	})
	f := &Finding{ItemID: item.ID, Type: item.Type, Path: path, StoredPath: item.StoredPath}
	switch {
	case treeerrors.IsNotFoundError(err):
		f.Kind = FindingMissingObject
		return f, nil
	case err != nil:
		return nil, err
	case isDir != item.IsFolder():
		f.Kind = FindingKindMismatch
		return f, nil
	case item.IsFile() && item.StoredPath != path:
		f.Kind = FindingStalePath
		return f, nil
	}
	return nil, nil
}

// repairStoredPath rewrites one file's cached path under its lock.
func (c *Coordinator) repairStoredPath(ctx context.Context, id string) error {
	_, lineage, err := c.resolver.ResolveID(ctx, c.store, id)
	if err != nil {
		return err
	}
	h, err := c.acquire(ctx, OpVerify, lineage.IDs)
	if err != nil {
		return err
	}
	defer h.Release()

	item, lineage, err := c.relineage(ctx, lineage)
	if err != nil {
		return err
	}
	if item.StoredPath == lineage.Path() {
		return nil
	}
	item.StoredPath = lineage.Path()
	if err := c.store.WithTransaction(ctx, func(tx Transaction) error {
		return tx.UpdateItem(ctx, item)
	}); err != nil {
		return err
	}
	logger.InfoCtx(ctx, "stored path repaired", logger.ItemID(id), logger.Path(item.StoredPath))
	telemetry.AddEvent(ctx, "repair", telemetry.ItemID(id))
	return nil
}
