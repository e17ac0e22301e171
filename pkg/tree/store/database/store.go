// Package database implements tree.Store on GORM. It supports SQLite (the
// default, schema created by AutoMigrate) and PostgreSQL (schema managed by
// embedded golang-migrate migrations).
package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/SankareshwaranS/FileManagementSystem/pkg/tree"
	treeerrors "github.com/SankareshwaranS/FileManagementSystem/pkg/tree/errors"
)

// itemRecord is the persisted form of tree.Item.
type itemRecord struct {
	ID       string  `gorm:"primaryKey;size:36"`
	Name     string  `gorm:"not null;size:255;uniqueIndex:idx_items_sibling,priority:3"`
	Type     string  `gorm:"not null;size:16;uniqueIndex:idx_items_sibling,priority:2"`
	ParentID *string `gorm:"size:36;index:idx_items_parent_id"`

	// ParentKey is ParentID or "" for root-level items. NULLs never collide
	// in a unique index, so uniqueness is enforced on this column instead.
	ParentKey string `gorm:"not null;size:36;default:'';uniqueIndex:idx_items_sibling,priority:1"`

	StoredPath  string    `gorm:"not null;default:''"`
	Size        int64     `gorm:"not null;default:0"`
	ContentType string    `gorm:"not null;size:255;default:''"`
	CreatedAt   time.Time `gorm:"not null;autoCreateTime:false"`
	UpdatedAt   time.Time `gorm:"not null;autoUpdateTime:false"`
}

func (itemRecord) TableName() string { return "items" }

func toRecord(it *tree.Item) *itemRecord {
	return &itemRecord{
		ID:          it.ID,
		Name:        it.Name,
		Type:        string(it.Type),
		ParentID:    it.ParentID,
		ParentKey:   it.Parent(),
		StoredPath:  it.StoredPath,
		Size:        it.Size,
		ContentType: it.ContentType,
		CreatedAt:   it.CreatedAt,
		UpdatedAt:   it.UpdatedAt,
	}
}

func (r *itemRecord) toItem() *tree.Item {
	it := &tree.Item{
		ID:          r.ID,
		Name:        r.Name,
		Type:        tree.ItemType(r.Type),
		StoredPath:  r.StoredPath,
		Size:        r.Size,
		ContentType: r.ContentType,
		CreatedAt:   r.CreatedAt.UTC(),
		UpdatedAt:   r.UpdatedAt.UTC(),
	}
	if r.ParentID != nil {
		it.ParentID = tree.ParentRef(*r.ParentID)
	}
	return it
}

// Store implements tree.Store using GORM.
type Store struct {
	queries
	config *Config
}

// New opens the database described by config and prepares its schema.
func New(ctx context.Context, config *Config) (*Store, error) {
	if config == nil {
		config = &Config{}
	}

	config.ApplyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid database configuration: %w", err)
	}

	var dialector gorm.Dialector
	switch config.Type {
	case DatabaseTypeSQLite:
		dsn := config.SQLite.Path
		if !config.inMemory() {
			if err := os.MkdirAll(filepath.Dir(config.SQLite.Path), 0755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
			// journal_mode(WAL): concurrent readers with a single writer.
			// busy_timeout(5000): wait up to 5 seconds when the database is locked.
			dsn += "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
		}
		dialector = sqlite.Open(dsn)

	case DatabaseTypePostgres:
		if config.Postgres.AutoMigrate {
			if _, err := runMigrations(ctx, config.Postgres.DSN()); err != nil {
				return nil, err
			}
		}
		dialector = postgres.Open(config.Postgres.DSN())

	default:
		return nil, fmt.Errorf("unsupported database type: %s", config.Type)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying database: %w", err)
	}

	switch config.Type {
	case DatabaseTypeSQLite:
		// A second connection to ":memory:" would see an empty database, and
		// SQLite admits one writer at a time anyway.
		sqlDB.SetMaxOpenConns(1)
		if err := db.AutoMigrate(&itemRecord{}); err != nil {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("failed to run database migration: %w", err)
		}
	case DatabaseTypePostgres:
		sqlDB.SetMaxOpenConns(config.Postgres.MaxOpenConns)
		sqlDB.SetMaxIdleConns(config.Postgres.MaxIdleConns)
	}

	return &Store{queries: queries{db: db}, config: config}, nil
}

// DB returns the underlying GORM connection.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Type reports the configured database backend.
func (s *Store) Type() DatabaseType {
	return s.config.Type
}

// WithTransaction runs fn in a database transaction, committing when fn
// returns nil.
func (s *Store) WithTransaction(ctx context.Context, fn func(tx tree.Transaction) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&queries{db: tx})
	})
}

func (s *Store) Healthcheck(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// queries implements tree.Transaction over either the root connection or an
// open transaction.
type queries struct {
	db *gorm.DB
}

func (q *queries) GetItem(ctx context.Context, id string) (*tree.Item, error) {
	var rec itemRecord
	if err := q.db.WithContext(ctx).Where("id = ?", id).Take(&rec).Error; err != nil {
		return nil, mapDBError(err, "get item", &itemRecord{ID: id})
	}
	return rec.toItem(), nil
}

func (q *queries) FindChild(ctx context.Context, parentID *string, name string, typ tree.ItemType) (*tree.Item, error) {
	var rec itemRecord
	err := q.db.WithContext(ctx).
		Where("parent_key = ? AND type = ? AND name = ?", parentKey(parentID), string(typ), name).
		Take(&rec).Error
	if err != nil {
		return nil, mapDBError(err, "find child", &itemRecord{ID: name})
	}
	return rec.toItem(), nil
}

func (q *queries) ListChildren(ctx context.Context, parentID *string) ([]*tree.Item, error) {
	var recs []itemRecord
	err := q.db.WithContext(ctx).
		Where("parent_key = ?", parentKey(parentID)).
		Order("name ASC").Order("id ASC").
		Find(&recs).Error
	if err != nil {
		return nil, mapDBError(err, "list children", nil)
	}
	return toItems(recs), nil
}

func (q *queries) ListItems(ctx context.Context, query tree.Query) ([]*tree.Item, int64, error) {
	// Count finalizes its statement, so each query starts from a fresh scope.
	filtered := func() *gorm.DB {
		db := q.db.WithContext(ctx).Model(&itemRecord{})
		switch {
		case query.ParentID != nil:
			db = db.Where("parent_key = ?", *query.ParentID)
		case query.RootOnly:
			db = db.Where("parent_key = ?", "")
		}
		if query.Search != "" {
			db = db.Where(`LOWER(name) LIKE ? ESCAPE '\'`, "%"+escapeLike(strings.ToLower(query.Search))+"%")
		}
		return db
	}

	var total int64
	if err := filtered().Count(&total).Error; err != nil {
		return nil, 0, mapDBError(err, "count items", nil)
	}

	dir := "ASC"
	if query.Desc {
		dir = "DESC"
	}
	db := filtered().Order(orderColumn(query.OrderBy) + " " + dir).Order("id ASC")
	if query.Offset > 0 {
		db = db.Offset(query.Offset)
	}
	if query.Limit > 0 {
		db = db.Limit(query.Limit)
	}

	var recs []itemRecord
	if err := db.Find(&recs).Error; err != nil {
		return nil, 0, mapDBError(err, "list items", nil)
	}
	return toItems(recs), total, nil
}

func (q *queries) CreateItem(ctx context.Context, item *tree.Item) error {
	if item.ID == "" {
		return treeerrors.NewInvalidArgumentError("item id is required")
	}
	rec := toRecord(item)
	if err := q.requireParent(ctx, rec); err != nil {
		return err
	}
	if err := q.db.WithContext(ctx).Create(rec).Error; err != nil {
		return mapDBError(err, "create item", rec)
	}
	return nil
}

func (q *queries) UpdateItem(ctx context.Context, item *tree.Item) error {
	var cur itemRecord
	if err := q.db.WithContext(ctx).Where("id = ?", item.ID).Take(&cur).Error; err != nil {
		return mapDBError(err, "update item", &itemRecord{ID: item.ID})
	}
	if cur.Type != string(item.Type) {
		return treeerrors.NewInvalidArgumentError("item type is immutable")
	}

	rec := toRecord(item)
	if err := q.requireParent(ctx, rec); err != nil {
		return err
	}

	err := q.db.WithContext(ctx).Model(&itemRecord{}).Where("id = ?", rec.ID).Updates(map[string]any{
		"name":         rec.Name,
		"parent_id":    rec.ParentID,
		"parent_key":   rec.ParentKey,
		"stored_path":  rec.StoredPath,
		"size":         rec.Size,
		"content_type": rec.ContentType,
		"updated_at":   rec.UpdatedAt,
	}).Error
	if err != nil {
		return mapDBError(err, "update item", rec)
	}
	return nil
}

func (q *queries) DeleteItem(ctx context.Context, id string) error {
	var children int64
	if err := q.db.WithContext(ctx).Model(&itemRecord{}).Where("parent_key = ?", id).Count(&children).Error; err != nil {
		return mapDBError(err, "delete item", nil)
	}
	if children > 0 {
		return treeerrors.NewInvalidArgumentError("item %s has children", id)
	}

	res := q.db.WithContext(ctx).Where("id = ?", id).Delete(&itemRecord{})
	if res.Error != nil {
		return mapDBError(res.Error, "delete item", nil)
	}
	if res.RowsAffected == 0 {
		return treeerrors.NewNotFoundError("item", id)
	}
	return nil
}

// subtreeDelete removes an item and all of its descendants in one statement
// so a parent foreign key is satisfied at statement end.
const subtreeDelete = `
WITH RECURSIVE subtree(id) AS (
	SELECT id FROM items WHERE id = ?
	UNION ALL
	SELECT i.id FROM items i JOIN subtree s ON i.parent_key = s.id
)
DELETE FROM items WHERE id IN (SELECT id FROM subtree)`

func (q *queries) DeleteSubtree(ctx context.Context, id string) (int, error) {
	res := q.db.WithContext(ctx).Exec(subtreeDelete, id)
	if res.Error != nil {
		return 0, mapDBError(res.Error, "delete subtree", nil)
	}
	if res.RowsAffected == 0 {
		return 0, treeerrors.NewNotFoundError("item", id)
	}
	return int(res.RowsAffected), nil
}

// requireParent mirrors the parent foreign key for SQLite, which does not
// enforce it by default.
func (q *queries) requireParent(ctx context.Context, rec *itemRecord) error {
	if rec.ParentID == nil {
		return nil
	}
	var n int64
	if err := q.db.WithContext(ctx).Model(&itemRecord{}).Where("id = ?", *rec.ParentID).Count(&n).Error; err != nil {
		return mapDBError(err, "check parent", nil)
	}
	if n == 0 {
		return treeerrors.NewNotFoundError("parent folder", *rec.ParentID)
	}
	return nil
}

func parentKey(parentID *string) string {
	if parentID == nil {
		return ""
	}
	return *parentID
}

func orderColumn(f tree.OrderField) string {
	switch f {
	case tree.OrderByCreatedAt:
		return "created_at"
	case tree.OrderByUpdatedAt:
		return "updated_at"
	default:
		return "name"
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func toItems(recs []itemRecord) []*tree.Item {
	out := make([]*tree.Item, len(recs))
	for i := range recs {
		out[i] = recs[i].toItem()
	}
	return out
}

var (
	_ tree.Store       = (*Store)(nil)
	_ tree.Transaction = (*queries)(nil)
)
