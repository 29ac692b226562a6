package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("Should apply defaults and environment overrides", func(t *testing.T) {
		t.Setenv("JWT_SECRET_KEY", "0123456789abcdef0123")
		t.Setenv("DSN", "host=localhost dbname=interior")
		t.Setenv("IMGBB_API_KEY", "key")
		t.Setenv("RATE_LIMIT", "50")
		t.Setenv("RATE_WINDOW", "30s")

		cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
		require.NoError(t, err)

		assert.Equal(t, ":3000", cfg.Server.Addr)
		assert.Equal(t, 50, cfg.Server.RateLimit)
		assert.Equal(t, 30*time.Second, cfg.Server.RateWindow)
		assert.Equal(t, "postgres", cfg.Database.Driver)
		assert.Equal(t, "host=localhost dbname=interior", cfg.Database.DSN)
		assert.Equal(t, "imgbb", cfg.Assets.Provider)
		assert.Equal(t, "catalog", cfg.NATS.SubjectPrefix)
	})

	t.Run("Should read values from an env file", func(t *testing.T) {
		dir := t.TempDir()
		file := filepath.Join(dir, "test.env")
		content := "JWT_SECRET_KEY=0123456789abcdef0123\nDB_DRIVER=sqlite\nDSN=" +
			filepath.Join(dir, "catalog.db") + "\nASSET_PROVIDER=r2\nACCOUNT_ID=acc\n" +
			"ACCESS_KEY_ID=id\nACCESS_KEY_SECRET=secret\nBUCKET_NAME=images\nPUBLIC_URL=https://cdn.test/%s\n"
		require.NoError(t, os.WriteFile(file, []byte(content), 0o600))
		for _, k := range []string{"JWT_SECRET_KEY", "DB_DRIVER", "DSN", "ASSET_PROVIDER", "ACCOUNT_ID", "ACCESS_KEY_ID", "ACCESS_KEY_SECRET", "BUCKET_NAME", "PUBLIC_URL"} {
			t.Setenv(k, "")
			require.NoError(t, os.Unsetenv(k))
		}

		cfg, err := Load(file)
		require.NoError(t, err)

		assert.Equal(t, "sqlite", cfg.Database.Driver)
		assert.Equal(t, "r2", cfg.Assets.Provider)
		assert.Equal(t, "images", cfg.Assets.Bucket)
		assert.Equal(t, "https://cdn.test/%s", cfg.Assets.PublicURL)
	})

	t.Run("Should reject a missing session secret", func(t *testing.T) {
		t.Setenv("JWT_SECRET_KEY", "")
		t.Setenv("DSN", "host=localhost")
		t.Setenv("IMGBB_API_KEY", "key")

		_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "validation failed")
	})

	t.Run("Should require r2 credentials when r2 is selected", func(t *testing.T) {
		t.Setenv("JWT_SECRET_KEY", "0123456789abcdef0123")
		t.Setenv("DSN", "host=localhost")
		t.Setenv("ASSET_PROVIDER", "r2")
		t.Setenv("BUCKET_NAME", "")

		_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
		require.Error(t, err)
	})
}
