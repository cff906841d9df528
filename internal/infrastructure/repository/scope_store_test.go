package repository

import (
	"context"
	"testing"

	"github.com/acornforum/oidc-store/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestScope(name string, resources ...string) *domain.Scope {
	scope := domain.NewScope()
	scope.Name = name
	scope.DisplayName = "Scope " + name
	if len(resources) > 0 {
		scope.Resources = resources
	}
	return scope
}

func TestScopeStore_CreateAndFind(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewScopeStore(db, zap.NewNop())
	ctx := context.Background()

	scope := newTestScope("acorn-api", "acorn-api")
	scope.SetDescription("Access to the Acorn API")
	require.NoError(t, store.Create(ctx, scope))
	require.NotZero(t, scope.ID)

	found, err := store.FindByName(ctx, "acorn-api")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, scope.ID, found.ID)
	assert.Equal(t, []string{"acorn-api"}, found.Resources)
	require.NotNil(t, found.Description)
	assert.Equal(t, "Access to the Acorn API", *found.Description)

	byID, err := store.FindByID(ctx, domain.FormatID(scope.ID))
	require.NoError(t, err)
	require.NotNil(t, byID)
	assert.Equal(t, "acorn-api", byID.Name)

	missing, err := store.FindByName(ctx, "ghost")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestScopeStore_NameUnique(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewScopeStore(db, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, newTestScope("openid")))
	err := store.Create(ctx, newTestScope("openid"))
	assert.ErrorIs(t, err, domain.ErrDuplicateScopeName)
}

func TestScopeStore_FindByNames(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewScopeStore(db, zap.NewNop())
	ctx := context.Background()

	for _, name := range []string{"openid", "profile", "email"} {
		require.NoError(t, store.Create(ctx, newTestScope(name)))
	}

	scopes, err := store.FindByNames(ctx, []string{"openid", "email", "missing"})
	require.NoError(t, err)
	assert.Len(t, scopes, 2)

	scopes, err = store.FindByNames(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, scopes)
}

func TestScopeStore_FindByResource(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewScopeStore(db, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, newTestScope("api", "acorn-api", "reporting")))
	require.NoError(t, store.Create(ctx, newTestScope("reports", "reporting")))
	require.NoError(t, store.Create(ctx, newTestScope("openid")))

	scopes, err := store.FindByResource(ctx, "reporting")
	require.NoError(t, err)
	assert.Len(t, scopes, 2)

	scopes, err = store.FindByResource(ctx, "acorn-api")
	require.NoError(t, err)
	require.Len(t, scopes, 1)
	assert.Equal(t, "api", scopes[0].Name)

	scopes, err = store.FindByResource(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, scopes)
}

func TestScopeStore_UpdateAndDelete(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewScopeStore(db, zap.NewNop())
	ctx := context.Background()

	scope := newTestScope("mutable")
	require.NoError(t, store.Create(ctx, scope))

	scope.DisplayName = "Renamed"
	scope.Resources = []string{"new-resource"}
	require.NoError(t, store.Update(ctx, scope))

	found, err := store.FindByName(ctx, "mutable")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "Renamed", found.DisplayName)
	assert.Equal(t, []string{"new-resource"}, found.Resources)

	require.NoError(t, store.Delete(ctx, scope))
	found, err = store.FindByName(ctx, "mutable")
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestScopeStore_CountAndList(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewScopeStore(db, zap.NewNop())
	ctx := context.Background()

	for _, name := range []string{"a", "b", "c", "d"} {
		require.NoError(t, store.Create(ctx, newTestScope(name)))
	}

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), count)

	count, err = store.CountBy(ctx, func(s *domain.Scope) bool { return s.Name > "b" })
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	page, err := store.List(ctx, 3, 2)
	require.NoError(t, err)
	assert.Len(t, page, 2)
}
