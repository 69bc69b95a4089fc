package service

import (
	"context"
	"errors"
	"testing"

	"campus-market/internal/auth"
	"campus-market/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()
	repo := new(MockUserRepository)
	svc := NewAuthService(repo, stubIssuer{}, zerolog.Nop())

	var stored *model.User
	repo.On("Create", ctx, mock.Anything).Run(func(args mock.Arguments) {
		stored = args.Get(1).(*model.User)
	}).Return(nil)

	user, err := svc.Register(ctx, &model.RegisterRequest{
		Nombre:     "  Ana López ",
		Email:      " Ana@ITESO.mx",
		Contrasena: "secreta1",
	})

	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "Ana López", user.Nombre)
	assert.Equal(t, "ana@iteso.mx", user.Email)
	assert.Equal(t, model.RoleUser, user.Rol)
	assert.NotEqual(t, "secreta1", stored.PasswordHash)
	assert.True(t, auth.CheckPassword(stored.PasswordHash, "secreta1"))
}

func TestAuthService_Register_Duplicate(t *testing.T) {
	ctx := context.Background()
	repo := new(MockUserRepository)
	svc := NewAuthService(repo, stubIssuer{}, zerolog.Nop())

	repo.On("Create", ctx, mock.Anything).Return(model.ErrUserExists)

	_, err := svc.Register(ctx, &model.RegisterRequest{Nombre: "Ana", Email: "ana@iteso.mx", Contrasena: "secreta1"})

	assert.ErrorIs(t, err, model.ErrUserExists)
}

func TestAuthService_Login(t *testing.T) {
	hash, err := auth.HashPassword("secreta1")
	require.NoError(t, err)
	user := &model.User{ID: uuid.New(), Email: "ana@iteso.mx", PasswordHash: hash, Rol: model.RoleUser}

	tests := []struct {
		name     string
		email    string
		password string
		found    *model.User
		issuer   stubIssuer
		want     string
		wantErr  error
	}{
		{name: "valid credentials", email: "ANA@iteso.mx", password: "secreta1", found: user, issuer: stubIssuer{token: "signed"}, want: "signed"},
		{name: "wrong password", email: "ana@iteso.mx", password: "otra", found: user, wantErr: model.ErrInvalidCredentials},
		{name: "unknown email", email: "nadie@iteso.mx", password: "secreta1", wantErr: model.ErrInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			repo := new(MockUserRepository)
			svc := NewAuthService(repo, tt.issuer, zerolog.Nop())

			if tt.found != nil {
				repo.On("GetByEmail", ctx, normalizeEmail(tt.email)).Return(tt.found, nil)
			} else {
				repo.On("GetByEmail", ctx, normalizeEmail(tt.email)).Return(nil, nil)
			}

			token, err := svc.Login(ctx, &model.LoginRequest{Email: tt.email, Contrasena: tt.password})

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, token)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, token)
		})
	}
}

func TestAuthService_Login_IssuerFailure(t *testing.T) {
	ctx := context.Background()
	hash, err := auth.HashPassword("secreta1")
	require.NoError(t, err)

	repo := new(MockUserRepository)
	svc := NewAuthService(repo, stubIssuer{err: errors.New("no key")}, zerolog.Nop())
	repo.On("GetByEmail", ctx, "ana@iteso.mx").Return(&model.User{ID: uuid.New(), PasswordHash: hash}, nil)

	_, err = svc.Login(ctx, &model.LoginRequest{Email: "ana@iteso.mx", Contrasena: "secreta1"})

	assert.EqualError(t, err, "no key")
}

func TestAuthService_UpdateProfile(t *testing.T) {
	ctx := context.Background()
	repo := new(MockUserRepository)
	svc := NewAuthService(repo, stubIssuer{}, zerolog.Nop())
	caller := buyerIdentity()

	repo.On("GetByID", ctx, caller.UserID).Return(&model.User{ID: caller.UserID, Nombre: "Ana", Email: "ana@iteso.mx"}, nil)
	repo.On("UpdateProfile", ctx, mock.MatchedBy(func(u *model.User) bool {
		return u.Nombre == "Ana" && u.Email == "nueva@iteso.mx"
	})).Return(nil)

	email := " Nueva@ITESO.mx "
	user, err := svc.UpdateProfile(ctx, caller, &model.UpdateProfileRequest{Email: &email})

	require.NoError(t, err)
	assert.Equal(t, "nueva@iteso.mx", user.Email)
	repo.AssertExpectations(t)
}

func TestAuthService_Promote(t *testing.T) {
	ctx := context.Background()
	repo := new(MockUserRepository)
	svc := NewAuthService(repo, stubIssuer{}, zerolog.Nop())

	repo.On("SetRole", ctx, "ana@iteso.mx", model.RoleAdmin).Return(true, nil)
	repo.On("SetRole", ctx, "nadie@iteso.mx", model.RoleAdmin).Return(false, nil)

	assert.NoError(t, svc.Promote(ctx, "Ana@iteso.mx"))
	assert.ErrorIs(t, svc.Promote(ctx, "nadie@iteso.mx"), model.ErrUserNotFound)
}

func TestAuthService_DeleteAccount_Missing(t *testing.T) {
	ctx := context.Background()
	repo := new(MockUserRepository)
	svc := NewAuthService(repo, stubIssuer{}, zerolog.Nop())
	caller := buyerIdentity()

	repo.On("Delete", ctx, caller.UserID).Return(false, nil)

	assert.ErrorIs(t, svc.DeleteAccount(ctx, caller), model.ErrUserNotFound)
}
