package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"campus-market/internal/model"
	"campus-market/internal/repository"
	"campus-market/internal/storage"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type fileService struct {
	store       storage.ObjectStore // nil when storage is disabled
	userRepo    repository.UserRepository
	productRepo repository.ProductRepository
	logger      zerolog.Logger
	now         func() time.Time
}

// NewFileService creates a new file service. A nil store makes every
// operation fail with model.ErrStorageDisabled.
func NewFileService(
	store storage.ObjectStore,
	userRepo repository.UserRepository,
	productRepo repository.ProductRepository,
	logger zerolog.Logger,
) FileService {
	return &fileService{
		store:       store,
		userRepo:    userRepo,
		productRepo: productRepo,
		logger:      logger.With().Str("service", "file").Logger(),
		now:         time.Now,
	}
}

func (s *fileService) enabled(upload *model.Upload) error {
	if s.store == nil {
		return model.ErrStorageDisabled
	}
	if upload != nil && (upload.Body == nil || upload.Filename == "") {
		return model.ErrFileRequired
	}
	return nil
}

// discard deletes a stored object by URL; failures are logged only.
func (s *fileService) discard(ctx context.Context, url string) {
	if url == "" {
		return
	}
	key, ok := s.store.KeyFromURL(url)
	if !ok {
		return
	}
	if err := s.store.Delete(ctx, key); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("failed to delete object")
	}
}

func (s *fileService) UploadProfilePicture(ctx context.Context, caller model.Identity, upload model.Upload) (string, error) {
	if err := s.enabled(&upload); err != nil {
		return "", err
	}

	user, err := s.userRepo.GetByID(ctx, caller.UserID)
	if err != nil {
		return "", fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return "", model.ErrUserNotFound
	}

	key := storage.ProfilePictureKey(user.ID, upload.Filename, s.now())
	url, err := s.store.Put(ctx, key, upload.Body, upload.Size, upload.ContentType)
	if err != nil {
		return "", err
	}

	if err := s.userRepo.SetProfilePicture(ctx, user.ID, url); err != nil {
		s.discard(ctx, url)
		return "", fmt.Errorf("failed to save profile picture: %w", err)
	}
	// The old picture goes only once nothing points at it.
	s.discard(ctx, user.ProfilePictureURL)

	s.logger.Info().Str("user_id", user.ID.String()).Str("key", key).Msg("profile picture uploaded")
	return url, nil
}

func (s *fileService) UploadProductImage(ctx context.Context, caller model.Identity, productID uuid.UUID, upload model.Upload) (string, error) {
	if err := s.enabled(&upload); err != nil {
		return "", err
	}

	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return "", fmt.Errorf("failed to get product: %w", err)
	}
	if product == nil {
		return "", model.ErrProductNotFound
	}
	if !caller.CanAccess(product.UsuarioID) {
		return "", model.ErrForbidden
	}

	key := storage.ProductImageKey(product.ID, upload.Filename, s.now())
	url, err := s.store.Put(ctx, key, upload.Body, upload.Size, upload.ContentType)
	if err != nil {
		return "", err
	}

	if err := s.productRepo.SetImage(ctx, product.ID, url); err != nil {
		s.discard(ctx, url)
		return "", fmt.Errorf("failed to save product image: %w", err)
	}
	s.discard(ctx, product.ImageURL)

	s.logger.Info().Str("product_id", product.ID.String()).Str("key", key).Msg("product image uploaded")
	return url, nil
}

// authorizeKey allows admins everything and users only their own objects.
func (s *fileService) authorizeKey(ctx context.Context, caller model.Identity, key string) error {
	if caller.IsAdmin() {
		return nil
	}

	parts := strings.SplitN(key, "/", 3)
	if len(parts) < 3 {
		return model.ErrForbidden
	}
	id, err := uuid.Parse(parts[1])
	if err != nil {
		return model.ErrForbidden
	}

	switch parts[0] {
	case "users":
		if id == caller.UserID {
			return nil
		}
	case "products":
		product, err := s.productRepo.GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to get product: %w", err)
		}
		if product != nil && product.UsuarioID == caller.UserID {
			return nil
		}
	}
	return model.ErrForbidden
}

func (s *fileService) Delete(ctx context.Context, caller model.Identity, key string) error {
	if err := s.enabled(nil); err != nil {
		return err
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return model.ErrFileKeyRequired
	}
	if err := s.authorizeKey(ctx, caller, key); err != nil {
		return err
	}

	if err := s.store.Delete(ctx, key); err != nil {
		return err
	}

	url := s.store.URL(key)
	users, err := s.userRepo.ClearProfilePicture(ctx, url)
	if err != nil {
		return fmt.Errorf("failed to clear profile references: %w", err)
	}
	products, err := s.productRepo.ClearImage(ctx, url)
	if err != nil {
		return fmt.Errorf("failed to clear product references: %w", err)
	}

	s.logger.Info().
		Str("key", key).
		Int64("users_cleared", users).
		Int64("products_cleared", products).
		Msg("file deleted")
	return nil
}

func (s *fileService) SignedURL(ctx context.Context, key string) (string, error) {
	if err := s.enabled(nil); err != nil {
		return "", err
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return "", model.ErrFileKeyRequired
	}
	return s.store.PresignGet(ctx, key)
}
