package repository

import (
	"context"
	"testing"

	"campus-market/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	repo := NewUserRepository(pool, zerolog.Nop())

	ana := seedUser(t, pool, "ana@iteso.mx")
	luis := seedUser(t, pool, "luis@iteso.mx")

	t.Run("duplicate email", func(t *testing.T) {
		dup := *ana
		dup.ID = uuid.New()
		err := repo.Create(ctx, &dup)
		assert.ErrorIs(t, err, model.ErrUserExists)
	})

	t.Run("lookups", func(t *testing.T) {
		byEmail, err := repo.GetByEmail(ctx, "ana@iteso.mx")
		require.NoError(t, err)
		require.NotNil(t, byEmail)
		assert.Equal(t, ana.ID, byEmail.ID)
		assert.Equal(t, model.RoleUser, byEmail.Rol)

		missing, err := repo.GetByID(ctx, uuid.New())
		require.NoError(t, err)
		assert.Nil(t, missing)
	})

	t.Run("update profile to a taken email", func(t *testing.T) {
		changed := *luis
		changed.Email = ana.Email
		err := repo.UpdateProfile(ctx, &changed)
		assert.ErrorIs(t, err, model.ErrUserExists)
	})

	t.Run("set role", func(t *testing.T) {
		found, err := repo.SetRole(ctx, "luis@iteso.mx", model.RoleAdmin)
		require.NoError(t, err)
		assert.True(t, found)

		got, err := repo.GetByID(ctx, luis.ID)
		require.NoError(t, err)
		assert.Equal(t, model.RoleAdmin, got.Rol)

		found, err = repo.SetRole(ctx, "nadie@iteso.mx", model.RoleAdmin)
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("clear profile picture by url", func(t *testing.T) {
		url := "https://bucket.example/users/pic.png"
		require.NoError(t, repo.SetProfilePicture(ctx, ana.ID, url))

		cleared, err := repo.ClearProfilePicture(ctx, url)
		require.NoError(t, err)
		assert.Equal(t, int64(1), cleared)

		got, err := repo.GetByID(ctx, ana.ID)
		require.NoError(t, err)
		assert.Empty(t, got.ProfilePictureURL)
	})

	t.Run("delete", func(t *testing.T) {
		deleted, err := repo.Delete(ctx, luis.ID)
		require.NoError(t, err)
		assert.True(t, deleted)

		deleted, err = repo.Delete(ctx, luis.ID)
		require.NoError(t, err)
		assert.False(t, deleted)

		users, err := repo.List(ctx)
		require.NoError(t, err)
		assert.Len(t, users, 1)
	})
}
