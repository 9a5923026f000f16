package migration

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"create orders", "create_orders"},
		{"Add-Courier-Fields", "add_courier_fields"},
		{"add__tracking__link", "add_tracking_link"},
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

func TestCreateMigration_Sequential(t *testing.T) {
	dir := t.TempDir()

	first, err := CreateMigration(dir, "create products")
	require.NoError(t, err)
	assert.Equal(t, "000001", first.Version)
	assert.FileExists(t, first.UpPath)
	assert.FileExists(t, first.DownPath)

	second, err := CreateMigration(dir, "Create Orders")
	require.NoError(t, err)
	assert.Equal(t, "000002", second.Version)
	assert.Equal(t, filepath.Join(dir, "000002_create_orders.up.sql"), second.UpPath)

	body, err := os.ReadFile(second.UpPath)
	require.NoError(t, err)
	assert.Contains(t, string(body), "-- create_orders")

	names, err := ListMigrations(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"000001_create_products", "000002_create_orders"}, names)
}

func TestCreateMigration_RejectsEmptyName(t *testing.T) {
	_, err := CreateMigration(t.TempDir(), "!!!")
	assert.Error(t, err)
}

func TestListMigrations(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"000010_add_index.up.sql", "000010_add_index.down.sql",
		"000002_create_orders.up.sql", "000002_create_orders.down.sql",
		"README.md",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}

	names, err := ListMigrations(dir)

	require.NoError(t, err)
	assert.Equal(t, []string{"000002_create_orders", "000010_add_index"}, names)
}

func TestListMigrations_MissingDir(t *testing.T) {
	names, err := ListMigrations(filepath.Join(t.TempDir(), "absent"))

	require.NoError(t, err)
	assert.Empty(t, names)
}
