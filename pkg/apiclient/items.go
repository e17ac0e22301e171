package apiclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"

	"github.com/SankareshwaranS/FileManagementSystem/pkg/tree"
)

const itemsPath = "/api/v1/items"

// ListOptions selects a listing page. The zero value lists every item.
type ListOptions struct {
	ParentID string
	RootOnly bool
	Search   string
	Ordering string
	Page     int
	Limit    int
}

// ItemPage is one page of a listing.
type ItemPage struct {
	Count    int64        `json:"count"`
	Next     *string      `json:"next"`
	Previous *string      `json:"previous"`
	Page     int          `json:"page"`
	PageSize int          `json:"page_size"`
	Results  []*tree.Item `json:"results"`
}

// CreateItemRequest is the request body for creating an item.
type CreateItemRequest struct {
	Name     string  `json:"name"`
	Type     string  `json:"type"`
	ParentID *string `json:"parent_id"`
}

func (o ListOptions) query() string {
	q := url.Values{}
	if o.ParentID != "" {
		q.Set("id", o.ParentID)
	}
	if o.RootOnly {
		q.Set("root", "true")
	}
	if o.Search != "" {
		q.Set("search", o.Search)
	}
	if o.Ordering != "" {
		q.Set("ordering", o.Ordering)
	}
	if o.Page > 0 {
		q.Set("page", strconv.Itoa(o.Page))
	}
	if o.Limit > 0 {
		q.Set("limit", strconv.Itoa(o.Limit))
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}

// ListItems returns one page of items.
func (c *Client) ListItems(ctx context.Context, opts ListOptions) (*ItemPage, error) {
	return getResource[ItemPage](ctx, c, itemsPath+opts.query())
}

// GetItem returns a single item.
func (c *Client) GetItem(ctx context.Context, id string) (*tree.Item, error) {
	return getResource[tree.Item](ctx, c, resourcePath(itemsPath+"/%s", id))
}

// CreateItem creates a folder, or an empty file, under parentID ("" for root).
func (c *Client) CreateItem(ctx context.Context, name string, typ tree.ItemType, parentID string) (*tree.Item, error) {
	return createResource[tree.Item](ctx, c, itemsPath, CreateItemRequest{
		Name:     name,
		Type:     string(typ),
		ParentID: tree.ParentRef(parentID),
	})
}

// UploadFile uploads content as a file named name inside the folder parentID.
// filename is the local file name; its extension is used when name has none.
func (c *Client) UploadFile(ctx context.Context, parentID, name, filename string, content io.Reader) (*tree.Item, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	if err := mw.WriteField("parent_id", parentID); err != nil {
		return nil, fmt.Errorf("failed to build upload: %w", err)
	}
	if err := mw.WriteField("name", name); err != nil {
		return nil, fmt.Errorf("failed to build upload: %w", err)
	}
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to build upload: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, fmt.Errorf("failed to read upload content: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to build upload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+itemsPath+"/files", &body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var item tree.Item
	if err := c.send(req, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// RenameItem renames an item in place.
func (c *Client) RenameItem(ctx context.Context, id, newName string) (*tree.Item, error) {
	return patchResource[tree.Item](ctx, c, resourcePath(itemsPath+"/%s", id), map[string]string{
		"name": newName,
	})
}

// MoveItem moves an item under the folder newParentID.
func (c *Client) MoveItem(ctx context.Context, id, newParentID string) (*tree.Item, error) {
	return createResource[tree.Item](ctx, c, resourcePath(itemsPath+"/%s/move", id), map[string]string{
		"new_parent_id": newParentID,
	})
}

// DeleteItem deletes an item and, for folders, everything below it.
func (c *Client) DeleteItem(ctx context.Context, id string) error {
	return c.delete(ctx, resourcePath(itemsPath+"/%s", id))
}
