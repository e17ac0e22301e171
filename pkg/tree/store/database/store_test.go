package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SankareshwaranS/FileManagementSystem/pkg/tree"
	treeerrors "github.com/SankareshwaranS/FileManagementSystem/pkg/tree/errors"
	"github.com/SankareshwaranS/FileManagementSystem/pkg/tree/storetest"
)

func newSQLiteStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(context.Background(), &Config{
		Type:   DatabaseTypeSQLite,
		SQLite: SQLiteConfig{Path: ":memory:"},
	})
	require.NoError(t, err)
	return s
}

func TestSQLiteConformance(t *testing.T) {
	storetest.RunConformanceSuite(t, func(t *testing.T) tree.Store {
		return newSQLiteStore(t)
	})
}

func TestSQLiteFileStorePersists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "items.db")
	cfg := &Config{Type: DatabaseTypeSQLite, SQLite: SQLiteConfig{Path: path}}

	s, err := New(ctx, cfg)
	require.NoError(t, err)
	now := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, s.CreateItem(ctx, &tree.Item{ID: "f1", Name: "docs", Type: tree.TypeFolder, CreatedAt: now, UpdatedAt: now}))
	require.NoError(t, s.Close())

	s, err = New(ctx, cfg)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.GetItem(ctx, "f1")
	require.NoError(t, err)
	assert.Equal(t, "docs", got.Name)
	assert.True(t, got.CreatedAt.Equal(now))
}

func TestUniqueViolationMapsToNameCollision(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteStore(t)
	defer s.Close()

	now := time.Now().UTC()
	require.NoError(t, s.CreateItem(ctx, &tree.Item{ID: "a", Name: "x", Type: tree.TypeFolder, CreatedAt: now, UpdatedAt: now}))

	// Bypass the coordinator: the index alone must reject the duplicate.
	err := s.DB().Create(&itemRecord{ID: "b", Name: "x", Type: "folder", CreatedAt: now, UpdatedAt: now}).Error
	require.Error(t, err)
	assert.True(t, isUniqueConstraintError(err))

	err = s.CreateItem(ctx, &tree.Item{ID: "c", Name: "x", Type: tree.TypeFolder, CreatedAt: now, UpdatedAt: now})
	assert.True(t, treeerrors.HasCode(err, treeerrors.ErrNameCollision), "got %v", err)
}

func TestUpdateRejectsTypeChange(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteStore(t)
	defer s.Close()

	now := time.Now().UTC()
	item := &tree.Item{ID: "a", Name: "x", Type: tree.TypeFolder, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, s.CreateItem(ctx, item))

	item.Type = tree.TypeFile
	err := s.UpdateItem(ctx, item)
	assert.True(t, treeerrors.HasCode(err, treeerrors.ErrInvalidArgument), "got %v", err)
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `100\%`, escapeLike("100%"))
	assert.Equal(t, `a\_b`, escapeLike("a_b"))
	assert.Equal(t, `c:\\x`, escapeLike(`c:\x`))
	assert.Equal(t, "plain", escapeLike("plain"))
}

func TestConfigDefaultsAndValidate(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")

	var cfg Config
	cfg.ApplyDefaults()
	assert.Equal(t, DatabaseTypeSQLite, cfg.Type)
	assert.Equal(t, filepath.Join("/tmp/xdg", "fms", "items.db"), cfg.SQLite.Path)
	require.NoError(t, cfg.Validate())

	pg := Config{Type: DatabaseTypePostgres}
	pg.ApplyDefaults()
	assert.Equal(t, 5432, pg.Postgres.Port)
	assert.Equal(t, "disable", pg.Postgres.SSLMode)
	assert.Error(t, pg.Validate())

	pg.Postgres.Host = "db"
	pg.Postgres.Database = "fms"
	pg.Postgres.User = "fms"
	require.NoError(t, pg.Validate())
	assert.Equal(t, "host=db port=5432 user=fms password= dbname=fms sslmode=disable", pg.Postgres.DSN())

	bad := Config{Type: "oracle"}
	assert.Error(t, bad.Validate())
}

func TestRunMigrationsRejectsSQLite(t *testing.T) {
	_, err := RunMigrations(context.Background(), &Config{Type: DatabaseTypeSQLite, SQLite: SQLiteConfig{Path: ":memory:"}})
	assert.Error(t, err)
}
