package access

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petermazzocco/interior-admin/internal/store/sqlstore"
	"github.com/petermazzocco/interior-admin/models"
)

func TestResolver_ResolveFromStore(t *testing.T) {
	ctx := context.Background()
	db, err := sqlstore.Open("sqlite", filepath.Join(t.TempDir(), "resolver_test.db"))
	require.NoError(t, err)
	require.NoError(t, sqlstore.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	store := sqlstore.New(db)

	t.Run("Should grant admin access to a partner account", func(t *testing.T) {
		_, err := store.Create(ctx, models.KindPartners, models.Record{Title: "partner@x.test", Location: "Pune", Role: "admin"})
		require.NoError(t, err)

		id := NewResolver(store).Resolve(ctx, models.Session{Authenticated: true, UserID: "g-9", Email: "partner@x.test"})

		assert.Equal(t, models.Identity{UserID: "g-9", Email: "partner@x.test", Role: models.RoleAdmin, City: "Pune"}, id)
	})

	t.Run("Should keep partners out of the admins list", func(t *testing.T) {
		admins, err := store.List(ctx, models.KindAdmins, models.Filter{})
		require.NoError(t, err)
		assert.Empty(t, admins)
	})
}
