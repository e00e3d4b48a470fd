package migration

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
	"time"

	"github.com/mfgops/backend/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"add usage logs", "add_usage_logs"},
		{"Add-Usage-Logs", "add_usage_logs"},
		{"ADD_PO_LINES", "add_po_lines"},
		{"add__po__lines", "add_po_lines"},
		{"Add Lines 123", "add_lines_123"},
		{"   spaces   ", "spaces"},
		{"special!@#$chars", "specialchars"},
		{"trailing_", "trailing"},
		{"_leading", "leading"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeName(tt.input))
		})
	}
}

func TestCreateMigration(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "migrations")
	now := time.Date(2026, 10, 2, 8, 30, 15, 0, time.UTC)

	mf, err := createMigration(dir, "add attachment checksum", "Store a checksum per attachment", now)
	require.NoError(t, err)

	assert.Equal(t, "20261002083015", mf.Version)
	assert.Equal(t, filepath.Join(dir, "20261002083015_add_attachment_checksum.up.sql"), mf.UpPath)
	assert.Equal(t, filepath.Join(dir, "20261002083015_add_attachment_checksum.down.sql"), mf.DownPath)

	up, err := os.ReadFile(mf.UpPath)
	require.NoError(t, err)
	assert.Contains(t, string(up), "add attachment checksum")
	assert.Contains(t, string(up), "Store a checksum per attachment")
	assert.Contains(t, string(up), "tenant_id")

	down, err := os.ReadFile(mf.DownPath)
	require.NoError(t, err)
	assert.Contains(t, string(down), "Rollback for Store a checksum per attachment")

	names, err := ListMigrations(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"20261002083015_add_attachment_checksum"}, names)
}

func TestCreateMigration_RefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 10, 2, 8, 30, 15, 0, time.UTC)

	_, err := createMigration(dir, "same", "", now)
	require.NoError(t, err)
	_, err = createMigration(dir, "same", "", now)
	require.Error(t, err)
}

func TestCreateMigration_RequiresName(t *testing.T) {
	_, err := CreateMigration(t.TempDir(), "!!!", "")
	require.Error(t, err)
}

func TestListMigrations(t *testing.T) {
	t.Run("sorted and paired", func(t *testing.T) {
		fsys := fstest.MapFS{
			"000002_add_products.up.sql":   {Data: []byte("--")},
			"000002_add_products.down.sql": {Data: []byte("--")},
			"000001_init.up.sql":           {Data: []byte("--")},
			"000001_init.down.sql":         {Data: []byte("--")},
			"README.md":                    {Data: []byte("docs")},
			"embed.go":                     {Data: []byte("package migrations")},
		}
		names, err := ListMigrationsFS(fsys)
		require.NoError(t, err)
		assert.Equal(t, []string{"000001_init", "000002_add_products"}, names)
	})

	t.Run("missing down file", func(t *testing.T) {
		fsys := fstest.MapFS{"000001_init.up.sql": {Data: []byte("--")}}
		_, err := ListMigrationsFS(fsys)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "000001_init")
	})

	t.Run("orphan down file", func(t *testing.T) {
		fsys := fstest.MapFS{"000001_init.down.sql": {Data: []byte("--")}}
		_, err := ListMigrationsFS(fsys)
		require.Error(t, err)
	})

	t.Run("nonexistent directory", func(t *testing.T) {
		names, err := ListMigrations("/nonexistent/path/to/migrations")
		require.NoError(t, err)
		assert.Empty(t, names)
	})
}

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	names, err := ListMigrationsFS(migrations.FS)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"20261001090000_identity",
		"20261001090100_partner",
		"20261001090200_catalog",
		"20261001090300_purchasing",
		"20261001090400_outbox",
	}, names)
}
