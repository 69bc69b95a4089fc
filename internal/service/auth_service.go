package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"campus-market/internal/auth"
	"campus-market/internal/model"
	"campus-market/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type authService struct {
	userRepo repository.UserRepository
	tokens   auth.TokenIssuer
	logger   zerolog.Logger
}

// NewAuthService creates a new account service.
func NewAuthService(userRepo repository.UserRepository, tokens auth.TokenIssuer, logger zerolog.Logger) AuthService {
	return &authService{
		userRepo: userRepo,
		tokens:   tokens,
		logger:   logger.With().Str("service", "auth").Logger(),
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *authService) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	hash, err := auth.HashPassword(req.Contrasena)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		ID:           uuid.New(),
		Nombre:       strings.TrimSpace(req.Nombre),
		Email:        normalizeEmail(req.Email),
		PasswordHash: hash,
		Rol:          model.RoleUser,
		CreatedAt:    time.Now(),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info().Str("user_id", user.ID.String()).Msg("user registered")
	return user, nil
}

func (s *authService) Login(ctx context.Context, req *model.LoginRequest) (string, error) {
	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		return "", fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil || !auth.CheckPassword(user.PasswordHash, req.Contrasena) {
		s.logger.Debug().Msg("rejected login attempt")
		return "", model.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", user.ID.String()).Msg("failed to issue token")
		return "", err
	}
	return token, nil
}

func (s *authService) Profile(ctx context.Context, caller model.Identity) (*model.User, error) {
	user, err := s.userRepo.GetByID(ctx, caller.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	if user == nil {
		return nil, model.ErrUserNotFound
	}
	return user, nil
}

func (s *authService) UpdateProfile(ctx context.Context, caller model.Identity, req *model.UpdateProfileRequest) (*model.User, error) {
	user, err := s.Profile(ctx, caller)
	if err != nil {
		return nil, err
	}

	if req.Nombre != nil {
		user.Nombre = strings.TrimSpace(*req.Nombre)
	}
	if req.Email != nil {
		user.Email = normalizeEmail(*req.Email)
	}

	if err := s.userRepo.UpdateProfile(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *authService) DeleteAccount(ctx context.Context, caller model.Identity) error {
	deleted, err := s.userRepo.Delete(ctx, caller.UserID)
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	if !deleted {
		return model.ErrUserNotFound
	}

	s.logger.Info().Str("user_id", caller.UserID.String()).Msg("account deleted")
	return nil
}

func (s *authService) Promote(ctx context.Context, email string) error {
	found, err := s.userRepo.SetRole(ctx, normalizeEmail(email), model.RoleAdmin)
	if err != nil {
		return fmt.Errorf("failed to promote user: %w", err)
	}
	if !found {
		return model.ErrUserNotFound
	}

	s.logger.Info().Str("email", normalizeEmail(email)).Msg("user promoted to admin")
	return nil
}
