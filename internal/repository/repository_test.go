package repository

import (
	"context"
	"testing"
	"time"

	"campus-market/internal/config"
	"campus-market/internal/database"
	"campus-market/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupTestDB starts a PostgreSQL testcontainer, applies the migrations and
// returns a connection pool.
func setupTestDB(t *testing.T) (*pgxpool.Pool, func()) {
	if testing.Short() {
		t.Skip("skipping database test in short mode")
	}

	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)

	host, err := pgContainer.Host(ctx)
	require.NoError(t, err)
	port, err := pgContainer.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	pool, err := database.NewPool(ctx, config.DatabaseConfig{
		Host:            host,
		Port:            port.Int(),
		User:            "postgres",
		Password:        "postgres",
		Database:        "testdb",
		MaxConnections:  5,
		MinConnections:  1,
		MaxConnLifetime: 300,
	}, zerolog.Nop())
	require.NoError(t, err)

	require.NoError(t, database.Migrate(ctx, pool, zerolog.Nop()))

	cleanup := func() {
		pool.Close()
		_ = pgContainer.Terminate(ctx)
	}

	return pool, cleanup
}

func seedUser(t *testing.T, pool *pgxpool.Pool, email string) *model.User {
	t.Helper()
	u := &model.User{
		ID:           uuid.New(),
		Nombre:       "Usuario " + email,
		Email:        email,
		PasswordHash: "hash",
		Rol:          model.RoleUser,
		CreatedAt:    time.Now().UTC(),
	}
	require.NoError(t, NewUserRepository(pool, zerolog.Nop()).Create(context.Background(), u))
	return u
}

func seedCategory(t *testing.T, pool *pgxpool.Pool, nombre string) *model.Category {
	t.Helper()
	c := &model.Category{ID: uuid.New(), Nombre: nombre, CreatedAt: time.Now().UTC()}
	require.NoError(t, NewCategoryRepository(pool, zerolog.Nop()).Create(context.Background(), c))
	return c
}

func seedProduct(t *testing.T, pool *pgxpool.Pool, owner, category uuid.UUID, titulo, precio string, stock *int) *model.Product {
	t.Helper()
	p := &model.Product{
		ID:               uuid.New(),
		UsuarioID:        owner,
		CategoriaID:      category,
		Titulo:           titulo,
		Precio:           decimal.RequireFromString(precio),
		Descripcion:      "descripcion de " + titulo,
		Stock:            stock,
		Estado:           model.ProductActive,
		FechaPublicacion: time.Now().UTC(),
	}
	require.NoError(t, NewProductRepository(pool, zerolog.Nop()).Create(context.Background(), p))
	return p
}

func intPtr(n int) *int { return &n }
