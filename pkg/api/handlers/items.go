package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/SankareshwaranS/FileManagementSystem/pkg/bufpool"
	"github.com/SankareshwaranS/FileManagementSystem/pkg/tree"
	treeerrors "github.com/SankareshwaranS/FileManagementSystem/pkg/tree/errors"
)

// multipartMemory is the part of a multipart body kept in memory; the rest
// spills to temporary files.
const multipartMemory = 8 << 20

// multipartOverhead is the slack allowed on top of the upload limit for
// boundaries and the other form fields.
const multipartOverhead = 1 << 20

// ItemService is the tree surface the item handlers need.
// *tree.Coordinator satisfies it.
type ItemService interface {
	CreateItem(ctx context.Context, name string, typ tree.ItemType, parentID *string) (*tree.Item, error)
	CreateFile(ctx context.Context, parentID, name string, content []byte, extHint string) (*tree.Item, error)
	RenameItem(ctx context.Context, id, newName string) (*tree.Item, error)
	MoveItem(ctx context.Context, id, newParentID string) (*tree.Item, error)
	DeleteItem(ctx context.Context, id string) error
	ListContents(ctx context.Context, opts tree.ListOptions) (*tree.Page, error)
	GetItem(ctx context.Context, id string) (*tree.Item, error)
}

// ItemHandler handles the item endpoints under /api/v1/items.
type ItemHandler struct {
	items     ItemService
	maxUpload int64
}

// NewItemHandler creates a new ItemHandler. maxUpload caps the file part of
// an upload; zero disables the cap.
func NewItemHandler(items ItemService, maxUpload int64) *ItemHandler {
	return &ItemHandler{items: items, maxUpload: maxUpload}
}

// CreateItemRequest is the request body for POST /api/v1/items.
type CreateItemRequest struct {
	Name     string  `json:"name"`
	Type     string  `json:"type"`
	ParentID *string `json:"parent_id"`
}

// RenameItemRequest is the request body for PATCH /api/v1/items/{id}.
type RenameItemRequest struct {
	Name *string `json:"name"`
}

// MoveItemRequest is the request body for POST /api/v1/items/{id}/move.
type MoveItemRequest struct {
	NewParentID string `json:"new_parent_id"`
}

// ListResponse is one page of a listing.
type ListResponse struct {
	Count    int64        `json:"count"`
	Next     *string      `json:"next"`
	Previous *string      `json:"previous"`
	Page     int          `json:"page"`
	PageSize int          `json:"page_size"`
	Results  []*tree.Item `json:"results"`
}

// List handles GET /api/v1/items.
//
// Query parameters:
//   - id: list the children of this folder
//   - root: with no id, list only root-level items
//   - search: case-insensitive name filter
//   - ordering: name, created_at or updated_at, "-" for descending
//   - page, limit: pagination; a malformed limit falls back to the default
func (h *ItemHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	page := 1
	if raw := strings.TrimSpace(q.Get("page")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			BadRequest(w, "page must be a positive integer")
			return
		}
		page = n
	}

	opts := tree.ListOptions{
		RootOnly: queryBool(r, "root"),
		Search:   q.Get("search"),
		Ordering: q.Get("ordering"),
		Page:     page,
		PageSize: queryInt(r, "limit", 0),
	}
	if id := strings.TrimSpace(q.Get("id")); id != "" {
		opts.ParentID = &id
	}

	result, err := h.items.ListContents(r.Context(), opts)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	resp := ListResponse{
		Count:    result.Total,
		Page:     result.Page,
		PageSize: result.PageSize,
		Results:  result.Items,
	}
	if resp.Results == nil {
		resp.Results = []*tree.Item{}
	}
	if result.HasNext() {
		resp.Next = pageLink(r, result.Page+1)
	}
	if result.Page > 1 {
		resp.Previous = pageLink(r, result.Page-1)
	}

	WriteJSONOK(w, resp)
}

// Create handles POST /api/v1/items.
// A file created this way is empty; use Upload for content.
func (h *ItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateItemRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	typ, err := tree.ParseItemType(req.Type)
	if err != nil {
		WriteError(w, r, treeerrors.NewInvalidArgumentError("type must be %q or %q", tree.TypeFolder, tree.TypeFile))
		return
	}

	var parentID *string
	if req.ParentID != nil {
		parentID = tree.ParentRef(strings.TrimSpace(*req.ParentID))
	}

	item, err := h.items.CreateItem(r.Context(), req.Name, typ, parentID)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	WriteJSONCreated(w, item)
}

// Upload handles POST /api/v1/items/files.
//
// The multipart form carries parent_id, name and file. When name has no
// extension the uploaded file name's extension is used.
func (h *ItemHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if h.maxUpload > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload+multipartOverhead)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			RequestEntityTooLarge(w, "upload exceeds the configured size limit")
			return
		}
		BadRequest(w, "Invalid multipart form")
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	parentID := strings.TrimSpace(r.FormValue("parent_id"))
	name := r.FormValue("name")
	if parentID == "" || strings.TrimSpace(name) == "" {
		WriteError(w, r, treeerrors.NewInvalidArgumentError("parent_id and name are required"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		WriteError(w, r, treeerrors.NewInvalidArgumentError("file is required"))
		return
	}
	defer func() { _ = file.Close() }()

	src := io.Reader(file)
	if h.maxUpload > 0 {
		// One byte past the limit lets the coordinator report TooLarge.
		src = io.LimitReader(file, h.maxUpload+1)
	}
	content, err := bufpool.ReadAll(src, header.Size)
	if err != nil {
		BadRequest(w, "Failed to read uploaded file")
		return
	}
	// CreateFile is done with content once it returns.
	defer bufpool.Put(content)

	item, err := h.items.CreateFile(r.Context(), parentID, name, content, tree.Ext(path.Base(header.Filename)))
	if err != nil {
		WriteError(w, r, err)
		return
	}

	WriteJSONCreated(w, item)
}

// Get handles GET /api/v1/items/{id}.
func (h *ItemHandler) Get(w http.ResponseWriter, r *http.Request) {
	item, err := h.items.GetItem(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSONOK(w, item)
}

// Rename handles PATCH /api/v1/items/{id}.
func (h *ItemHandler) Rename(w http.ResponseWriter, r *http.Request) {
	var req RenameItemRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	if req.Name == nil {
		WriteError(w, r, treeerrors.NewInvalidArgumentError("name is required"))
		return
	}

	item, err := h.items.RenameItem(r.Context(), chi.URLParam(r, "id"), *req.Name)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSONOK(w, item)
}

// Move handles POST /api/v1/items/{id}/move.
func (h *ItemHandler) Move(w http.ResponseWriter, r *http.Request) {
	var req MoveItemRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	item, err := h.items.MoveItem(r.Context(), chi.URLParam(r, "id"), strings.TrimSpace(req.NewParentID))
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSONOK(w, item)
}

// Delete handles DELETE /api/v1/items/{id}.
func (h *ItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.items.DeleteItem(r.Context(), chi.URLParam(r, "id")); err != nil {
		WriteError(w, r, err)
		return
	}
	WriteNoContent(w)
}

// pageLink returns the request URL with its page parameter replaced.
func pageLink(r *http.Request, page int) *string {
	u := url.URL{Path: r.URL.Path}
	q := r.URL.Query()
	q.Set("page", strconv.Itoa(page))
	u.RawQuery = q.Encode()
	s := u.String()
	return &s
}
