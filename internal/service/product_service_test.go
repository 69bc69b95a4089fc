package service

import (
	"context"
	"errors"
	"testing"

	"campus-market/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestProductService_Create(t *testing.T) {
	ctx := context.Background()
	caller := buyerIdentity()
	categoryID := uuid.New()

	t.Run("publishes active product owned by caller", func(t *testing.T) {
		repo := new(MockProductRepository)
		svc := NewProductService(repo, zerolog.Nop())
		repo.On("Create", ctx, mock.Anything).Return(nil)

		price := decimal.RequireFromString("149.90")
		p, err := svc.Create(ctx, caller, &model.CreateProductRequest{
			Titulo:      " Calculadora ",
			Precio:      &price,
			CategoriaID: categoryID,
			Stock:       intPtr(3),
		})

		require.NoError(t, err)
		assert.Equal(t, caller.UserID, p.UsuarioID)
		assert.Equal(t, "Calculadora", p.Titulo)
		assert.Equal(t, model.ProductActive, p.Estado)
		assert.Equal(t, 3, *p.Stock)
	})

	t.Run("rejects negative price", func(t *testing.T) {
		repo := new(MockProductRepository)
		svc := NewProductService(repo, zerolog.Nop())

		price := decimal.RequireFromString("-1")
		_, err := svc.Create(ctx, caller, &model.CreateProductRequest{Titulo: "x", Precio: &price, CategoriaID: categoryID})

		assert.ErrorIs(t, err, model.ErrInvalidPrice)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("propagates unknown category", func(t *testing.T) {
		repo := new(MockProductRepository)
		svc := NewProductService(repo, zerolog.Nop())
		repo.On("Create", ctx, mock.Anything).Return(model.ErrCategoryNotFound)

		price := decimal.Zero
		_, err := svc.Create(ctx, caller, &model.CreateProductRequest{Titulo: "x", Precio: &price, CategoriaID: categoryID})

		assert.ErrorIs(t, err, model.ErrCategoryNotFound)
	})
}

func TestProductService_Update_Ownership(t *testing.T) {
	owner := buyerIdentity()
	admin := model.Identity{UserID: uuid.New(), Role: model.RoleAdmin}

	tests := []struct {
		name    string
		caller  model.Identity
		wantErr error
	}{
		{name: "owner", caller: owner},
		{name: "admin", caller: admin},
		{name: "stranger", caller: buyerIdentity(), wantErr: model.ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			repo := new(MockProductRepository)
			svc := NewProductService(repo, zerolog.Nop())

			existing := &model.Product{ID: uuid.New(), UsuarioID: owner.UserID, Titulo: "Bata", Precio: decimal.RequireFromString("300"), Estado: model.ProductActive}
			repo.On("GetByID", ctx, existing.ID).Return(existing, nil)
			repo.On("Update", ctx, mock.Anything).Return(nil).Maybe()

			title := "Bata de laboratorio"
			p, err := svc.Update(ctx, tt.caller, existing.ID, &model.UpdateProductRequest{Titulo: &title})

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, title, p.Titulo)
		})
	}
}

func TestProductService_Update_InvalidFields(t *testing.T) {
	ctx := context.Background()
	caller := buyerIdentity()
	repo := new(MockProductRepository)
	svc := NewProductService(repo, zerolog.Nop())

	existing := &model.Product{ID: uuid.New(), UsuarioID: caller.UserID}
	repo.On("GetByID", ctx, existing.ID).Return(existing, nil)

	negative := decimal.RequireFromString("-5")
	_, err := svc.Update(ctx, caller, existing.ID, &model.UpdateProductRequest{Precio: &negative})
	assert.ErrorIs(t, err, model.ErrInvalidPrice)

	bogus := model.ProductStatus("vendido")
	_, err = svc.Update(ctx, caller, existing.ID, &model.UpdateProductRequest{Estado: &bogus})
	assert.ErrorIs(t, err, model.ErrInvalidStatus)

	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestProductService_GetByID(t *testing.T) {
	ctx := context.Background()
	repo := new(MockProductRepository)
	svc := NewProductService(repo, zerolog.Nop())

	missing := uuid.New()
	broken := uuid.New()
	repo.On("GetByID", ctx, missing).Return(nil, nil)
	repo.On("GetByID", ctx, broken).Return(nil, errors.New("database connection failed"))

	_, err := svc.GetByID(ctx, missing)
	assert.ErrorIs(t, err, model.ErrProductNotFound)

	_, err = svc.GetByID(ctx, broken)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to get product")
}

func TestProductService_Search_TrimsQuery(t *testing.T) {
	ctx := context.Background()
	repo := new(MockProductRepository)
	svc := NewProductService(repo, zerolog.Nop())

	minPrice := decimal.RequireFromString("10")
	repo.On("Search", ctx, model.ProductFilter{Query: "libro", MinPrice: &minPrice}).
		Return([]model.Product{{Titulo: "Libro de cálculo"}}, nil)

	products, err := svc.Search(ctx, model.ProductFilter{Query: "  libro ", MinPrice: &minPrice})

	require.NoError(t, err)
	assert.Len(t, products, 1)
}

func TestProductService_Delete(t *testing.T) {
	ctx := context.Background()
	caller := buyerIdentity()
	repo := new(MockProductRepository)
	svc := NewProductService(repo, zerolog.Nop())

	existing := &model.Product{ID: uuid.New(), UsuarioID: caller.UserID}
	repo.On("GetByID", ctx, existing.ID).Return(existing, nil)
	repo.On("Delete", ctx, existing.ID).Return(true, nil)

	require.NoError(t, svc.Delete(ctx, caller, existing.ID))
	repo.AssertExpectations(t)
}
