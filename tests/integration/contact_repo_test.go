package integration

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rolodex/internal/models"
	"rolodex/internal/repositories"
)

func seedOwner(t *testing.T, email string) *models.User {
	t.Helper()
	user, err := SeedUser(context.Background(), testDB.Pool, email, "SecurePassword123!", true)
	require.NoError(t, err)
	return user
}

func TestContactRepository_CreateAndGet(t *testing.T) {
	resetTables(t)
	ctx := context.Background()
	repo := repositories.NewContactRepository(testDB.DB)
	owner := seedOwner(t, "owner@example.com")

	created, err := repo.Create(ctx, &models.Contact{
		OwnerID: owner.ID,
		Name:    "Alice",
		Email:   "a@x.com",
		Phone:   "555-0001",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	got, err := repo.GetByID(ctx, owner.ID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", got.Name)
}

func TestContactRepository_OwnerScoping(t *testing.T) {
	resetTables(t)
	ctx := context.Background()
	repo := repositories.NewContactRepository(testDB.DB)
	owner := seedOwner(t, "owner@example.com")
	other := seedOwner(t, "other@example.com")

	created, err := repo.Create(ctx, &models.Contact{OwnerID: owner.ID, Name: "Alice"})
	require.NoError(t, err)

	// Another user cannot read, update, or delete it
	_, err = repo.GetByID(ctx, other.ID, created.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = repo.Update(ctx, other.ID, created.ID, &models.Contact{Name: "Hijacked"})
	assert.ErrorIs(t, err, models.ErrNotFound)

	err = repo.Delete(ctx, other.ID, created.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)

	got, err := repo.GetByID(ctx, owner.ID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", got.Name)
}

func TestContactRepository_ListPaginationAndSearch(t *testing.T) {
	resetTables(t)
	ctx := context.Background()
	repo := repositories.NewContactRepository(testDB.DB)
	owner := seedOwner(t, "owner@example.com")

	for i := 0; i < 12; i++ {
		_, err := repo.Create(ctx, &models.Contact{
			OwnerID: owner.ID,
			Name:    fmt.Sprintf("Contact %02d", i),
			Email:   fmt.Sprintf("c%02d@x.com", i),
		})
		require.NoError(t, err)
	}
	_, err := repo.Create(ctx, &models.Contact{OwnerID: owner.ID, Name: "Alice", Phone: "555-0001"})
	require.NoError(t, err)

	page1, err := repo.List(ctx, owner.ID, "", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(13), page1.TotalDocs)
	assert.Len(t, page1.Docs, 10)
	assert.Equal(t, 2, page1.TotalPages)

	page2, err := repo.List(ctx, owner.ID, "", 2, 10)
	require.NoError(t, err)
	assert.Len(t, page2.Docs, 3)

	// Search matches name, email, and phone case-insensitively
	byName, err := repo.List(ctx, owner.ID, "alice", 1, 10)
	require.NoError(t, err)
	require.Len(t, byName.Docs, 1)
	assert.Equal(t, "Alice", byName.Docs[0].Name)

	byPhone, err := repo.List(ctx, owner.ID, "555-0001", 1, 10)
	require.NoError(t, err)
	assert.Len(t, byPhone.Docs, 1)
}

func TestContactRepository_SearchEscapesWildcards(t *testing.T) {
	resetTables(t)
	ctx := context.Background()
	repo := repositories.NewContactRepository(testDB.DB)
	owner := seedOwner(t, "owner@example.com")

	_, err := repo.Create(ctx, &models.Contact{OwnerID: owner.ID, Name: "Alice"})
	require.NoError(t, err)
	_, err = repo.Create(ctx, &models.Contact{OwnerID: owner.ID, Name: "100% Bob"})
	require.NoError(t, err)

	// A literal % must not act as a wildcard
	result, err := repo.List(ctx, owner.ID, "100%", 1, 10)
	require.NoError(t, err)
	require.Len(t, result.Docs, 1)
	assert.Equal(t, "100% Bob", result.Docs[0].Name)
}

func TestContactRepository_DeleteByIDs(t *testing.T) {
	resetTables(t)
	ctx := context.Background()
	repo := repositories.NewContactRepository(testDB.DB)
	owner := seedOwner(t, "owner@example.com")
	other := seedOwner(t, "other@example.com")

	c1, err := repo.Create(ctx, &models.Contact{OwnerID: owner.ID, Name: "Alice"})
	require.NoError(t, err)
	c2, err := repo.Create(ctx, &models.Contact{OwnerID: owner.ID, Name: "Bob"})
	require.NoError(t, err)
	foreign, err := repo.Create(ctx, &models.Contact{OwnerID: other.ID, Name: "Carol"})
	require.NoError(t, err)

	deleted, err := repo.DeleteByIDs(ctx, owner.ID, []string{c1.ID, c2.ID, foreign.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted, "other owners' contacts are ignored")

	_, err = repo.GetByID(ctx, other.ID, foreign.ID)
	assert.NoError(t, err)
}

func TestContactRepository_DeleteBySearch(t *testing.T) {
	resetTables(t)
	ctx := context.Background()
	repo := repositories.NewContactRepository(testDB.DB)
	owner := seedOwner(t, "owner@example.com")

	_, err := repo.Create(ctx, &models.Contact{OwnerID: owner.ID, Name: "Acme Sales"})
	require.NoError(t, err)
	_, err = repo.Create(ctx, &models.Contact{OwnerID: owner.ID, Name: "Acme Support"})
	require.NoError(t, err)
	_, err = repo.Create(ctx, &models.Contact{OwnerID: owner.ID, Name: "Alice"})
	require.NoError(t, err)

	deleted, err := repo.DeleteBySearch(ctx, owner.ID, "acme")
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	remaining, err := repo.ListAll(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, "Alice", remaining[0].Name)
}

func TestContactRepository_CreateBatch(t *testing.T) {
	resetTables(t)
	ctx := context.Background()
	repo := repositories.NewContactRepository(testDB.DB)
	owner := seedOwner(t, "owner@example.com")

	inserted, err := repo.CreateBatch(ctx, owner.ID, []*models.Contact{
		{Name: "Alice", Email: "a@x.com"},
		{Name: "Bob", Phone: "555-0002"},
		{Name: "Carol"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3), inserted)

	all, err := repo.ListAll(ctx, owner.ID)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestContactRepository_SetPicture(t *testing.T) {
	resetTables(t)
	ctx := context.Background()
	repo := repositories.NewContactRepository(testDB.DB)
	owner := seedOwner(t, "owner@example.com")

	created, err := repo.Create(ctx, &models.Contact{OwnerID: owner.ID, Name: "Alice"})
	require.NoError(t, err)

	updated, err := repo.SetPicture(ctx, owner.ID, created.ID, "https://cdn.example.com/p.png")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/p.png", updated.Picture)
}
