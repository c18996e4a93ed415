package migration

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateMigration(t *testing.T) {
	t.Run("creates up and down files", func(t *testing.T) {
		dir := t.TempDir()

		mf, err := CreateMigration(dir, "add tenants table")
		require.NoError(t, err)

		assert.FileExists(t, mf.UpPath)
		assert.FileExists(t, mf.DownPath)
		assert.True(t, strings.HasSuffix(mf.UpPath, "_add_tenants_table.up.sql"))
		assert.True(t, strings.HasSuffix(mf.DownPath, "_add_tenants_table.down.sql"))
		assert.Len(t, mf.Version, 14)

		up, err := os.ReadFile(mf.UpPath)
		require.NoError(t, err)
		assert.Contains(t, string(up), "add tenants table")
	})

	t.Run("creates missing migrations directory", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "nested", "migrations")

		_, err := CreateMigration(dir, "initial")
		require.NoError(t, err)
		assert.DirExists(t, dir)
	})
}

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"add tenants table", "add_tenants_table"},
		{"Add-Payables", "add_payables"},
		{"weird!!chars##", "weirdchars"},
		{"trailing space ", "trailing_space"},
		{"multi  spaces", "multi_spaces"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sanitizeName(tt.in))
	}
}

func TestListMigrations(t *testing.T) {
	t.Run("lists up migrations only", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "001_a.up.sql"), []byte("--"), 0644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "001_a.down.sql"), []byte("--"), 0644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "002_b.up.sql"), []byte("--"), 0644))

		migrations, err := ListMigrations(dir)
		require.NoError(t, err)
		assert.Equal(t, []string{"001_a", "002_b"}, migrations)
	})

	t.Run("returns empty list for missing directory", func(t *testing.T) {
		migrations, err := ListMigrations(filepath.Join(t.TempDir(), "missing"))
		require.NoError(t, err)
		assert.Empty(t, migrations)
	})
}
