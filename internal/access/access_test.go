package access

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/petermazzocco/interior-admin/models"
)

type mockDirectory struct {
	mock.Mock
}

func (m *mockDirectory) List(ctx context.Context, kind models.Kind, filter models.Filter) ([]models.Record, error) {
	args := m.Called(ctx, kind, filter)
	recs, _ := args.Get(0).([]models.Record)
	return recs, args.Error(1)
}

// withPartners stubs the partners lookup that follows the admins one.
func (m *mockDirectory) withPartners(recs ...models.Record) *mockDirectory {
	m.On("List", mock.Anything, models.KindPartners, mock.Anything).Return(recs, nil)
	return m
}

func TestResolver_Resolve(t *testing.T) {
	ctx := context.Background()

	t.Run("Should return unauthenticated identity without a session", func(t *testing.T) {
		dir := &mockDirectory{}
		id := NewResolver(dir).Resolve(ctx, models.Session{})

		assert.Equal(t, models.RoleUnauthenticated, id.Role)
		assert.False(t, id.Authenticated())
		dir.AssertNotCalled(t, "List", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Should resolve the stored role and city by normalized email", func(t *testing.T) {
		dir := &mockDirectory{}
		dir.On("List", ctx, models.KindAdmins, models.Filter{Title: "asha@studio.in"}).
			Return([]models.Record{{ID: "a1", Title: "asha@studio.in", Role: "admin", Location: "Pune"}}, nil)
		dir.withPartners()

		id := NewResolver(dir).Resolve(ctx, models.Session{Authenticated: true, UserID: "u1", Email: " Asha@Studio.in "})

		assert.Equal(t, models.Identity{UserID: "u1", Email: "asha@studio.in", Role: models.RoleAdmin, City: "Pune"}, id)
		dir.AssertExpectations(t)
	})

	t.Run("Should resolve a partner account to admin with its city", func(t *testing.T) {
		dir := &mockDirectory{}
		dir.On("List", ctx, models.KindAdmins, mock.Anything).Return([]models.Record{}, nil)
		dir.On("List", ctx, models.KindPartners, models.Filter{Title: "partner@studio.in"}).
			Return([]models.Record{{ID: "p1", Title: "partner@studio.in", Role: "admin", Location: "Goa"}}, nil)

		id := NewResolver(dir).Resolve(ctx, models.Session{Authenticated: true, Email: "Partner@Studio.in"})

		assert.Equal(t, models.RoleAdmin, id.Role)
		assert.Equal(t, "Goa", id.City)
		dir.AssertExpectations(t)
	})

	t.Run("Should accept the legacy super-admin spelling", func(t *testing.T) {
		dir := &mockDirectory{}
		dir.On("List", ctx, models.KindAdmins, mock.Anything).
			Return([]models.Record{{Role: "super-admin"}}, nil)
		dir.withPartners()

		id := NewResolver(dir).Resolve(ctx, models.Session{Authenticated: true, Email: "owner@studio.in"})

		assert.Equal(t, models.RoleSuperAdmin, id.Role)
	})

	t.Run("Should fall back to user when no role record exists", func(t *testing.T) {
		dir := &mockDirectory{}
		dir.On("List", ctx, models.KindAdmins, mock.Anything).Return([]models.Record{}, nil)
		dir.withPartners()

		id := NewResolver(dir).Resolve(ctx, models.Session{Authenticated: true, Email: "guest@mail.com"})

		assert.Equal(t, models.RoleUser, id.Role)
		assert.Equal(t, "guest@mail.com", id.Email)
	})

	t.Run("Should fall back to user when the lookup fails", func(t *testing.T) {
		dir := &mockDirectory{}
		dir.On("List", ctx, models.KindAdmins, mock.Anything).Return(nil, errors.New("unavailable"))

		id := NewResolver(dir).Resolve(ctx, models.Session{Authenticated: true, Email: "owner@studio.in"})

		assert.Equal(t, models.RoleUser, id.Role)
		dir.AssertNotCalled(t, "List", mock.Anything, models.KindPartners, mock.Anything)
	})

	t.Run("Should fall back to user when the partners lookup fails", func(t *testing.T) {
		dir := &mockDirectory{}
		dir.On("List", ctx, models.KindAdmins, mock.Anything).Return([]models.Record{{Role: "superadmin"}}, nil)
		dir.On("List", ctx, models.KindPartners, mock.Anything).Return(nil, errors.New("unavailable"))

		id := NewResolver(dir).Resolve(ctx, models.Session{Authenticated: true, Email: "owner@studio.in"})

		assert.Equal(t, models.RoleUser, id.Role)
	})

	t.Run("Should map unknown roles to user", func(t *testing.T) {
		dir := &mockDirectory{}
		dir.On("List", ctx, models.KindAdmins, mock.Anything).Return([]models.Record{{Role: "root"}}, nil)
		dir.withPartners()

		id := NewResolver(dir).Resolve(ctx, models.Session{Authenticated: true, Email: "x@y.z"})

		assert.Equal(t, models.RoleUser, id.Role)
	})

	t.Run("Should pick the weakest role among duplicate records", func(t *testing.T) {
		dir := &mockDirectory{}
		dir.On("List", ctx, models.KindAdmins, mock.Anything).Return([]models.Record{
			{Role: "superadmin"},
			{Role: "admin", Location: "Mumbai"},
		}, nil)
		dir.withPartners()

		id := NewResolver(dir).Resolve(ctx, models.Session{Authenticated: true, Email: "x@y.z"})

		assert.Equal(t, models.RoleAdmin, id.Role)
		assert.Equal(t, "Mumbai", id.City)
	})

	t.Run("Should pick the weakest role across admins and partners", func(t *testing.T) {
		dir := &mockDirectory{}
		dir.On("List", ctx, models.KindAdmins, mock.Anything).Return([]models.Record{{Role: "superadmin"}}, nil)
		dir.withPartners(models.Record{Role: "admin", Location: "Goa"})

		id := NewResolver(dir).Resolve(ctx, models.Session{Authenticated: true, Email: "x@y.z"})

		assert.Equal(t, models.RoleAdmin, id.Role)
		assert.Equal(t, "Goa", id.City)
	})
}

func TestGate_Authorize(t *testing.T) {
	gate := NewGate()
	super := models.Identity{Email: "owner@studio.in", Role: models.RoleSuperAdmin}
	admin := models.Identity{Email: "asha@studio.in", Role: models.RoleAdmin, City: "Pune"}
	user := models.Identity{Email: "guest@mail.com", Role: models.RoleUser}
	anon := models.Unauthenticated()

	t.Run("Should deny design mutations to everyone but superadmin", func(t *testing.T) {
		for _, op := range []Operation{OpCreate, OpUpdate, OpDelete} {
			for _, id := range []models.Identity{admin, user, anon, {Role: ""}} {
				d := gate.Authorize(id, op, models.KindDesigns)
				assert.False(t, d.Allowed, "%s %s", id.Role, op)
				require.Error(t, d.Err())
				assert.ErrorIs(t, d.Err(), models.ErrUnauthorized)
			}
			assert.True(t, gate.Authorize(super, op, models.KindDesigns).Allowed)
		}
	})

	t.Run("Should follow the policy table", func(t *testing.T) {
		cases := []struct {
			id      models.Identity
			op      Operation
			kind    models.Kind
			allowed bool
		}{
			{super, OpCreate, models.KindProjects, true},
			{admin, OpCreate, models.KindProjects, false},
			{super, OpCreate, models.KindAdmins, true},
			{admin, OpDelete, models.KindPartners, false},
			{admin, OpViewAll, models.KindAdmins, false},
			{super, OpViewAll, models.KindUsers, true},
			{admin, OpViewAll, models.KindUsers, true},
			{user, OpViewAll, models.KindUsers, false},
			{anon, OpViewAll, models.KindUsers, false},
			{super, OpCreate, models.KindBlogs, true},
			{admin, OpCreate, models.KindBlogs, true},
			{admin, OpViewAll, models.KindBlogs, true},
			{user, OpViewAll, models.KindBlogs, false},
			{anon, OpCreate, models.KindBlogs, false},
			{admin, OpDelete, models.KindUsers, false},
		}
		for _, tc := range cases {
			d := gate.Authorize(tc.id, tc.op, tc.kind)
			assert.Equal(t, tc.allowed, d.Allowed, "%s %s %s", tc.id.Role, tc.op, tc.kind)
		}
	})

	t.Run("Should scope an admin's users list to their city", func(t *testing.T) {
		d := gate.Authorize(admin, OpViewAll, models.KindUsers)

		require.True(t, d.Allowed)
		assert.Equal(t, models.Filter{Location: "Pune", Role: "user"}, d.Scope)
	})

	t.Run("Should deny an admin without a city", func(t *testing.T) {
		d := gate.Authorize(models.Identity{Role: models.RoleAdmin}, OpViewAll, models.KindUsers)

		assert.False(t, d.Allowed)
	})

	t.Run("Should leave superadmin unscoped on users", func(t *testing.T) {
		d := gate.Authorize(super, OpViewAll, models.KindUsers)

		require.True(t, d.Allowed)
		assert.Equal(t, models.Filter{}, d.Scope)
	})

	t.Run("Should hide superadmin accounts from the admins list", func(t *testing.T) {
		d := gate.Authorize(super, OpViewAll, models.KindAdmins)

		require.True(t, d.Allowed)
		assert.Equal(t, []string{"superadmin"}, d.Scope.RoleNot)
	})

	t.Run("Should deny unknown kinds", func(t *testing.T) {
		assert.False(t, gate.Authorize(super, OpCreate, models.Kind("orders")).Allowed)
	})

	t.Run("Should ask unauthenticated callers to sign in", func(t *testing.T) {
		d := gate.Authorize(anon, OpViewAll, models.KindDesigns)

		assert.Equal(t, "Please sign in to continue.", models.Message(d.Err()))
	})
}
