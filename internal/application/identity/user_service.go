package identity

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/mfgops/backend/internal/domain/identity"
	"github.com/mfgops/backend/internal/infrastructure/storage"
	"go.uber.org/zap"
)

// UserService manages the signed-in user's profile
type UserService struct {
	userRepo identity.UserRepository
	objects  storage.ObjectStorage
	logger   *zap.Logger
}

// NewUserService creates a new UserService
func NewUserService(userRepo identity.UserRepository, objects storage.ObjectStorage, logger *zap.Logger) *UserService {
	return &UserService{
		userRepo: userRepo,
		objects:  objects,
		logger:   logger,
	}
}

// GetProfile returns the user with a fresh photo link
func (s *UserService) GetProfile(ctx context.Context, tenantID, userID uuid.UUID) (*UserResponse, error) {
	user, err := s.userRepo.FindByIDForTenant(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}
	return s.toResponse(ctx, user), nil
}

// UpdateProfile edits the display name and email
func (s *UserService) UpdateProfile(ctx context.Context, tenantID, userID uuid.UUID, req UpdateProfileRequest) (*UserResponse, error) {
	user, err := s.userRepo.FindByIDForTenant(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}
	if err := user.UpdateProfile(req.DisplayName, req.Email); err != nil {
		return nil, err
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return s.toResponse(ctx, user), nil
}

// UploadPhoto stores a new profile photo and drops the one it replaces
func (s *UserService) UploadPhoto(ctx context.Context, tenantID, userID uuid.UUID, req UploadPhotoRequest, body io.Reader) (*UserResponse, error) {
	if err := storage.CheckImage(req.ContentType, req.Size); err != nil {
		return nil, err
	}
	user, err := s.userRepo.FindByIDForTenant(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}

	key := storage.UserPhotoKey(tenantID, userID, req.FileName)
	if _, err := s.objects.Upload(ctx, key, body, req.Size, req.ContentType); err != nil {
		return nil, err
	}
	prev := user.SetPhoto(key)
	if err := s.userRepo.Update(ctx, user); err != nil {
		if delErr := s.objects.DeleteObject(ctx, key); delErr != nil {
			s.logger.Warn("failed to delete orphaned photo", zap.String("object_key", key), zap.Error(delErr))
		}
		return nil, err
	}
	if prev != "" && prev != key {
		if err := s.objects.DeleteObject(ctx, prev); err != nil {
			s.logger.Warn("failed to delete previous photo", zap.String("object_key", prev), zap.Error(err))
		}
	}

	return s.toResponse(ctx, user), nil
}

func (s *UserService) toResponse(ctx context.Context, user *identity.User) *UserResponse {
	resp := ToUserResponse(user)
	if user.PhotoKey == "" {
		return &resp
	}
	url, _, err := s.objects.GenerateDownloadURL(ctx, user.PhotoKey)
	if err != nil {
		s.logger.Warn("failed to sign photo url", zap.String("user_id", user.ID.String()), zap.Error(err))
		return &resp
	}
	resp.PhotoURL = url
	return &resp
}
