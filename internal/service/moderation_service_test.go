package service

import (
	"context"
	"errors"
	"testing"

	"campus-market/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCategoryService_Create_TrimsName(t *testing.T) {
	repo := new(MockCategoryRepository)
	svc := NewCategoryService(repo, zerolog.Nop())
	ctx := context.Background()

	repo.On("Create", ctx, mock.MatchedBy(func(c *model.Category) bool {
		return c.Nombre == "Libros" && c.ID != uuid.Nil
	})).Return(nil)

	category, err := svc.Create(ctx, &model.CategoryRequest{Nombre: "  Libros "})
	require.NoError(t, err)
	assert.Equal(t, "Libros", category.Nombre)
	repo.AssertExpectations(t)
}

func TestCategoryService_Create_Duplicate(t *testing.T) {
	repo := new(MockCategoryRepository)
	svc := NewCategoryService(repo, zerolog.Nop())
	ctx := context.Background()

	repo.On("Create", ctx, mock.Anything).Return(model.ErrCategoryExists)

	_, err := svc.Create(ctx, &model.CategoryRequest{Nombre: "Libros"})
	assert.ErrorIs(t, err, model.ErrCategoryExists)
}

func TestCategoryService_RenameAndDelete(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()

	tests := []struct {
		name    string
		setup   func(repo *MockCategoryRepository)
		run     func(svc CategoryService) error
		wantErr error
	}{
		{
			name: "rename returns the stored row",
			setup: func(repo *MockCategoryRepository) {
				repo.On("Rename", ctx, id, "Apuntes").Return(true, nil)
				repo.On("GetByID", ctx, id).Return(&model.Category{ID: id, Nombre: "Apuntes"}, nil)
			},
			run: func(svc CategoryService) error {
				c, err := svc.Rename(ctx, id, &model.CategoryRequest{Nombre: " Apuntes"})
				if err == nil && c.Nombre != "Apuntes" {
					return errors.New("unexpected name " + c.Nombre)
				}
				return err
			},
		},
		{
			name: "rename missing category",
			setup: func(repo *MockCategoryRepository) {
				repo.On("Rename", ctx, id, "Apuntes").Return(false, nil)
			},
			run: func(svc CategoryService) error {
				_, err := svc.Rename(ctx, id, &model.CategoryRequest{Nombre: "Apuntes"})
				return err
			},
			wantErr: model.ErrCategoryNotFound,
		},
		{
			name: "rename to a taken name",
			setup: func(repo *MockCategoryRepository) {
				repo.On("Rename", ctx, id, "Libros").Return(false, model.ErrCategoryExists)
			},
			run: func(svc CategoryService) error {
				_, err := svc.Rename(ctx, id, &model.CategoryRequest{Nombre: "Libros"})
				return err
			},
			wantErr: model.ErrCategoryExists,
		},
		{
			name: "delete missing category",
			setup: func(repo *MockCategoryRepository) {
				repo.On("Delete", ctx, id).Return(false, nil)
			},
			run: func(svc CategoryService) error {
				return svc.Delete(ctx, id)
			},
			wantErr: model.ErrCategoryNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockCategoryRepository)
			tt.setup(repo)

			err := tt.run(NewCategoryService(repo, zerolog.Nop()))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestReportService_Create_UsesCaller(t *testing.T) {
	repo := new(MockReportRepository)
	svc := NewReportService(repo, zerolog.Nop())
	ctx := context.Background()

	caller := model.Identity{UserID: uuid.New(), Role: model.RoleUser}
	productID := uuid.New()

	repo.On("Create", ctx, mock.MatchedBy(func(r *model.Report) bool {
		return r.UsuarioID == caller.UserID && r.ProductoReportadoID == productID && r.Razon == "Es falso" && !r.Resuelto
	})).Return(nil)

	report, err := svc.Create(ctx, caller, &model.CreateReportRequest{ProductoReportadoID: productID, Razon: " Es falso "})
	require.NoError(t, err)
	assert.Equal(t, caller.UserID, report.UsuarioID)
	repo.AssertExpectations(t)
}

func TestReportService_NotFound(t *testing.T) {
	repo := new(MockReportRepository)
	svc := NewReportService(repo, zerolog.Nop())
	ctx := context.Background()
	id := uuid.New()

	repo.On("GetByID", ctx, id).Return(nil, nil)
	repo.On("Resolve", ctx, id).Return(nil, nil)
	repo.On("Delete", ctx, id).Return(false, nil)

	_, err := svc.GetByID(ctx, id)
	assert.ErrorIs(t, err, model.ErrReportNotFound)

	_, err = svc.Resolve(ctx, id)
	assert.ErrorIs(t, err, model.ErrReportNotFound)

	assert.ErrorIs(t, svc.Delete(ctx, id), model.ErrReportNotFound)
}

func TestReportService_List_IncludesResolved(t *testing.T) {
	repo := new(MockReportRepository)
	svc := NewReportService(repo, zerolog.Nop())
	ctx := context.Background()

	repo.On("List", ctx, false).Return([]model.Report{{Resuelto: true}, {}}, nil)

	reports, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, reports, 2)
}

func TestAdminService(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()

	t.Run("reported products are the unresolved reports", func(t *testing.T) {
		reports := new(MockReportRepository)
		svc := NewAdminService(new(MockUserRepository), new(MockProductRepository), reports, zerolog.Nop())

		reports.On("List", ctx, true).Return([]model.Report{{ProductoTitulo: "Libro"}}, nil)

		got, err := svc.ReportedProducts(ctx)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "Libro", got[0].ProductoTitulo)
		reports.AssertExpectations(t)
	})

	t.Run("delete missing user", func(t *testing.T) {
		users := new(MockUserRepository)
		svc := NewAdminService(users, new(MockProductRepository), new(MockReportRepository), zerolog.Nop())

		users.On("Delete", ctx, id).Return(false, nil)
		assert.ErrorIs(t, svc.DeleteUser(ctx, id), model.ErrUserNotFound)
	})

	t.Run("delete product", func(t *testing.T) {
		products := new(MockProductRepository)
		svc := NewAdminService(new(MockUserRepository), products, new(MockReportRepository), zerolog.Nop())

		products.On("Delete", ctx, id).Return(true, nil)
		assert.NoError(t, svc.DeleteProduct(ctx, id))
		products.AssertExpectations(t)
	})

	t.Run("repository failure is wrapped", func(t *testing.T) {
		users := new(MockUserRepository)
		svc := NewAdminService(users, new(MockProductRepository), new(MockReportRepository), zerolog.Nop())

		boom := errors.New("connection reset")
		users.On("List", ctx).Return([]model.User(nil), boom)

		_, err := svc.ListUsers(ctx)
		assert.ErrorIs(t, err, boom)
	})
}
