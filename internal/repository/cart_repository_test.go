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

func TestCartRepository(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	repo := NewCartRepository(pool, zerolog.Nop())

	buyer := seedUser(t, pool, "comprador@iteso.mx")
	seller := seedUser(t, pool, "vendedor@iteso.mx")
	cat := seedCategory(t, pool, "Libros")
	libro := seedProduct(t, pool, seller.ID, cat.ID, "Libro", "100", nil)
	cuaderno := seedProduct(t, pool, seller.ID, cat.ID, "Cuaderno", "25", nil)

	t.Run("first access creates an empty cart", func(t *testing.T) {
		cart, err := repo.GetOrCreate(ctx, buyer.ID)
		require.NoError(t, err)
		assert.Equal(t, buyer.ID, cart.UsuarioID)
		assert.Empty(t, cart.Items)

		again, err := repo.GetOrCreate(ctx, buyer.ID)
		require.NoError(t, err)
		assert.Equal(t, cart.ID, again.ID)
	})

	t.Run("adding the same product merges quantities", func(t *testing.T) {
		require.NoError(t, repo.AddItem(ctx, buyer.ID, libro.ID, 1))
		require.NoError(t, repo.AddItem(ctx, buyer.ID, libro.ID, 2))
		require.NoError(t, repo.AddItem(ctx, buyer.ID, cuaderno.ID, 1))

		cart, err := repo.GetOrCreate(ctx, buyer.ID)
		require.NoError(t, err)
		require.Len(t, cart.Items, 2)

		quantities := map[uuid.UUID]int{}
		for _, item := range cart.Items {
			require.NotNil(t, item.Producto)
			quantities[item.ProductoID] = item.Cantidad
		}
		assert.Equal(t, 3, quantities[libro.ID])
		assert.Equal(t, 1, quantities[cuaderno.ID])
	})

	t.Run("unknown product", func(t *testing.T) {
		err := repo.AddItem(ctx, buyer.ID, uuid.New(), 1)
		assert.ErrorIs(t, err, model.ErrProductNotFound)
	})

	t.Run("remove is idempotent", func(t *testing.T) {
		require.NoError(t, repo.RemoveItem(ctx, buyer.ID, cuaderno.ID))
		require.NoError(t, repo.RemoveItem(ctx, buyer.ID, cuaderno.ID))

		cart, err := repo.GetOrCreate(ctx, buyer.ID)
		require.NoError(t, err)
		require.Len(t, cart.Items, 1)
		assert.Equal(t, libro.ID, cart.Items[0].ProductoID)
	})

	t.Run("lock and clear inside a transaction", func(t *testing.T) {
		tx, err := repo.BeginTx(ctx)
		require.NoError(t, err)
		defer tx.Rollback(ctx)

		cart, err := repo.LockForCheckout(ctx, tx, buyer.ID)
		require.NoError(t, err)
		require.NotNil(t, cart)
		assert.Len(t, cart.Items, 1)

		require.NoError(t, repo.Clear(ctx, tx, cart.ID))
		require.NoError(t, tx.Commit(ctx))

		after, err := repo.GetOrCreate(ctx, buyer.ID)
		require.NoError(t, err)
		assert.Empty(t, after.Items)
	})

	t.Run("lock without a cart", func(t *testing.T) {
		tx, err := repo.BeginTx(ctx)
		require.NoError(t, err)
		defer tx.Rollback(ctx)

		cart, err := repo.LockForCheckout(ctx, tx, seller.ID)
		require.NoError(t, err)
		assert.Nil(t, cart)
	})
}
