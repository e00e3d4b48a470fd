package identity

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mfgops/backend/internal/domain/identity"
	"github.com/mfgops/backend/internal/domain/shared"
	"github.com/mfgops/backend/internal/infrastructure/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestUser(t *testing.T) *identity.User {
	t.Helper()
	u, err := identity.NewUser(uuid.New(), "+919820012345", identity.RoleStaff, time.Now())
	require.NoError(t, err)
	u.ClearDomainEvents()
	return u
}

func TestUserService_UpdateProfile(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		users := new(MockUserRepository)
		svc := NewUserService(users, storage.NewStubObjectStorage(), zap.NewNop())
		u := newTestUser(t)
		users.On("FindByIDForTenant", ctx, u.TenantID, u.ID).Return(u, nil)
		users.On("Update", ctx, u).Return(nil)

		resp, err := svc.UpdateProfile(ctx, u.TenantID, u.ID, UpdateProfileRequest{DisplayName: " Priya ", Email: "Priya@Example.com"})

		require.NoError(t, err)
		assert.Equal(t, "Priya", resp.DisplayName)
		assert.Equal(t, "priya@example.com", resp.Email)
	})

	t.Run("invalid email", func(t *testing.T) {
		users := new(MockUserRepository)
		svc := NewUserService(users, storage.NewStubObjectStorage(), zap.NewNop())
		u := newTestUser(t)
		users.On("FindByIDForTenant", ctx, u.TenantID, u.ID).Return(u, nil)

		_, err := svc.UpdateProfile(ctx, u.TenantID, u.ID, UpdateProfileRequest{Email: "nope"})

		de, ok := shared.AsDomainError(err)
		require.True(t, ok)
		assert.Equal(t, "INVALID_EMAIL", de.Code)
		users.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("user of another tenant", func(t *testing.T) {
		users := new(MockUserRepository)
		svc := NewUserService(users, storage.NewStubObjectStorage(), zap.NewNop())
		tenantID, userID := uuid.New(), uuid.New()
		users.On("FindByIDForTenant", ctx, tenantID, userID).Return(nil, shared.ErrNotFound)

		_, err := svc.UpdateProfile(ctx, tenantID, userID, UpdateProfileRequest{})
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestUserService_UploadPhoto(t *testing.T) {
	ctx := context.Background()

	t.Run("replaces the previous photo", func(t *testing.T) {
		users := new(MockUserRepository)
		objects := storage.NewStubObjectStorage()
		svc := NewUserService(users, objects, zap.NewNop())
		u := newTestUser(t)
		oldKey := storage.UserPhotoKey(u.TenantID, u.ID, "old.jpg")
		_, err := objects.Upload(ctx, oldKey, strings.NewReader("old"), 3, "image/jpeg")
		require.NoError(t, err)
		u.PhotoKey = oldKey
		users.On("FindByIDForTenant", ctx, u.TenantID, u.ID).Return(u, nil)
		users.On("Update", ctx, u).Return(nil)

		resp, err := svc.UploadPhoto(ctx, u.TenantID, u.ID,
			UploadPhotoRequest{FileName: "me.webp", ContentType: "image/webp", Size: 2}, strings.NewReader("me"))

		require.NoError(t, err)
		assert.True(t, resp.HasPhoto)
		assert.NotEmpty(t, resp.PhotoURL)
		assert.True(t, strings.HasSuffix(u.PhotoKey, "/photo/me.webp"))
		exists, _ := objects.ObjectExists(ctx, oldKey)
		assert.False(t, exists)
	})

	t.Run("failed save removes the upload", func(t *testing.T) {
		users := new(MockUserRepository)
		objects := storage.NewStubObjectStorage()
		svc := NewUserService(users, objects, zap.NewNop())
		u := newTestUser(t)
		users.On("FindByIDForTenant", ctx, u.TenantID, u.ID).Return(u, nil)
		users.On("Update", ctx, u).Return(errors.New("db down"))

		_, err := svc.UploadPhoto(ctx, u.TenantID, u.ID,
			UploadPhotoRequest{FileName: "me.png", ContentType: "image/png", Size: 2}, strings.NewReader("me"))

		require.Error(t, err)
		exists, _ := objects.ObjectExists(ctx, storage.UserPhotoKey(u.TenantID, u.ID, "me.png"))
		assert.False(t, exists)
	})

	t.Run("too large", func(t *testing.T) {
		svc := NewUserService(new(MockUserRepository), storage.NewStubObjectStorage(), zap.NewNop())

		_, err := svc.UploadPhoto(ctx, uuid.New(), uuid.New(),
			UploadPhotoRequest{FileName: "me.png", ContentType: "image/png", Size: 50 << 20}, strings.NewReader(""))

		assert.ErrorIs(t, err, storage.ErrFileTooLarge)
	})
}
