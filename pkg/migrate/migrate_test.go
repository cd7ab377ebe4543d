package migrate

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/expresskart/expresskart-backend/pkg/config"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrationsAreValid(t *testing.T) {
	require.NoError(t, ValidateEmbedded())
}

func TestSchemaCarriesMarketplaceConstraints(t *testing.T) {
	checks := map[string][]string{
		"*_create_users.sql": {
			"CREATE UNIQUE INDEX IF NOT EXISTS users_single_admin_idx ON users (role) WHERE role = 'admin'",
			"users_email_key",
		},
		"*_create_orders.sql": {
			"CREATE UNIQUE INDEX IF NOT EXISTS orders_order_number_key ON orders (order_number)",
			"numeric(12,2)",
			"'completed'",
		},
		"*_create_reviews.sql": {
			"reviews_user_product_key ON reviews (user_id, product_id)",
			"CHECK (rating BETWEEN 1 AND 5)",
		},
		"*_create_carts.sql": {
			"UNIQUE (cart_id, product_id)",
			"CHECK (quantity >= 1)",
		},
	}
	for pattern, wants := range checks {
		matches, err := fs.Glob(Embedded(), "migrations/"+pattern)
		require.NoError(t, err)
		require.Len(t, matches, 1, pattern)

		data, err := fs.ReadFile(Embedded(), matches[0])
		require.NoError(t, err)
		for _, want := range wants {
			require.Contains(t, string(data), want, matches[0])
		}
	}
}

func TestValidateFSRejectsBadFiles(t *testing.T) {
	body := []byte("-- +goose Up\n-- +goose Down\n")
	cases := map[string]fstest.MapFS{
		"bad name": {"m/create.sql": {Data: body}},
		"duplicate": {
			"m/20250101000000_a.sql": {Data: body},
			"m/20250101000000_b.sql": {Data: body},
		},
		"missing down": {"m/20250101000000_a.sql": {Data: []byte("-- +goose Up\n")}},
	}
	for name, fsys := range cases {
		t.Run(name, func(t *testing.T) {
			require.Error(t, ValidateFS(fsys, "m"))
		})
	}

	ok := fstest.MapFS{"m/20250101000000_a.sql": {Data: body}, "m/README": {Data: []byte("x")}}
	require.NoError(t, ValidateFS(ok, "m"))

	root := fstest.MapFS{"20250101000000_a.sql": {Data: body}}
	require.NoError(t, ValidateFS(root, "."))
	root["20250101000001_b.sql"] = &fstest.MapFile{Data: []byte("-- +goose Up\n")}
	require.Error(t, ValidateFS(root, "."))
}

func TestCreateSQLMigration(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2025, 4, 15, 10, 30, 0, 0, time.UTC)

	path, err := CreateSQLMigration(dir, "Add Order Notes!", now)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "20250415103000_add_order_notes.sql"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(data), "-- +goose Up"))
	require.NoError(t, ValidateFS(os.DirFS(dir), "."))

	_, err = CreateSQLMigration(dir, "Add Order Notes!", now)
	require.Error(t, err)
	_, err = CreateSQLMigration(dir, "!!!", now)
	require.Error(t, err)
}

func TestShouldAutoRun(t *testing.T) {
	cfg := &config.Config{}
	cfg.App.Env = config.AppEnvDev
	require.False(t, shouldAutoRun(cfg))
	cfg.FeatureFlags.AutoMigrate = true
	require.True(t, shouldAutoRun(cfg))
	cfg.App.Env = config.AppEnvProd
	require.False(t, shouldAutoRun(cfg))
	require.False(t, shouldAutoRun(nil))
}
