package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mfgops/backend/internal/domain/identity"
	"github.com/mfgops/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var userColumns = []string{"id", "tenant_id", "version", "phone", "display_name", "role", "created_at", "updated_at"}

func TestGormUserRepository_FindByPhone(t *testing.T) {
	t.Run("finds across tenants", func(t *testing.T) {
		db, mock := newMockGormDB(t)
		repo := NewGormUserRepository(db)
		tenantID := uuid.New()
		now := time.Now()

		mock.ExpectQuery(`SELECT \* FROM "users" WHERE phone = \$1 ORDER BY "users"."id" LIMIT \$2`).
			WithArgs("+919820012345", 1).
			WillReturnRows(sqlmock.NewRows(userColumns).
				AddRow(uuid.NewString(), tenantID.String(), 1, "+919820012345", "Asha", "owner", now, now))

		user, err := repo.FindByPhone(context.Background(), "+919820012345")

		require.NoError(t, err)
		assert.Equal(t, tenantID, user.TenantID)
		assert.Equal(t, identity.RoleOwner, user.Role)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown phone", func(t *testing.T) {
		db, mock := newMockGormDB(t)
		repo := NewGormUserRepository(db)

		mock.ExpectQuery(`SELECT \* FROM "users"`).WillReturnRows(sqlmock.NewRows(userColumns))

		_, err := repo.FindByPhone(context.Background(), "+919820012345")

		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("unknown role is malformed", func(t *testing.T) {
		db, mock := newMockGormDB(t)
		repo := NewGormUserRepository(db)
		now := time.Now()

		mock.ExpectQuery(`SELECT \* FROM "users"`).
			WillReturnRows(sqlmock.NewRows(userColumns).
				AddRow(uuid.NewString(), uuid.NewString(), 1, "+919820012345", "", "admin", now, now))

		_, err := repo.FindByPhone(context.Background(), "+919820012345")

		assert.ErrorIs(t, err, shared.ErrMalformedDocument)
	})
}

func TestGormUserRepository_Update(t *testing.T) {
	t.Run("saves the profile", func(t *testing.T) {
		db, mock := newMockGormDB(t)
		repo := NewGormUserRepository(db)
		user, err := identity.NewUser(uuid.New(), "+919820012345", identity.RoleOwner, time.Now())
		require.NoError(t, err)
		require.NoError(t, user.UpdateProfile("Asha", "asha@example.com"))

		mock.ExpectExec(`UPDATE "users" SET "display_name"=\$1,"email"=\$2,"last_login_at"=\$3,"photo_key"=\$4,"updated_at"=\$5,"version"=version \+ 1 WHERE tenant_id = \$6 AND id = \$7`).
			WithArgs("Asha", "asha@example.com", nil, "", sqlmock.AnyArg(), user.TenantID, user.ID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.Update(context.Background(), user))
		assert.Equal(t, 2, user.Version)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing user", func(t *testing.T) {
		db, mock := newMockGormDB(t)
		repo := NewGormUserRepository(db)
		user, err := identity.NewUser(uuid.New(), "+919820012345", identity.RoleStaff, time.Now())
		require.NoError(t, err)

		mock.ExpectExec(`UPDATE "users"`).WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, repo.Update(context.Background(), user), shared.ErrNotFound)
	})
}

func TestGormTenantRepository_CreateWithOwner(t *testing.T) {
	newPair := func(t *testing.T) (*identity.Tenant, *identity.User) {
		now := time.Now()
		tn, err := identity.NewTenant("Shree Fabrics", now)
		require.NoError(t, err)
		owner, err := identity.NewUser(tn.ID, "+919820012345", identity.RoleOwner, now)
		require.NoError(t, err)
		return tn, owner
	}

	t.Run("creates both rows", func(t *testing.T) {
		db, mock := newMockGormDB(t)
		repo := NewGormTenantRepository(db)
		tn, owner := newPair(t)

		mock.ExpectBegin()
		mock.ExpectExec(`INSERT INTO "tenants"`).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`INSERT INTO "users"`).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		require.NoError(t, repo.CreateWithOwner(context.Background(), tn, owner))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("phone taken by a concurrent sign-up", func(t *testing.T) {
		db, mock := newMockGormDB(t)
		repo := NewGormTenantRepository(db)
		tn, owner := newPair(t)

		mock.ExpectBegin()
		mock.ExpectExec(`INSERT INTO "tenants"`).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`INSERT INTO "users"`).WillReturnError(&pgconn.PgError{Code: "23505"})
		mock.ExpectRollback()

		err := repo.CreateWithOwner(context.Background(), tn, owner)

		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("owner of another tenant", func(t *testing.T) {
		db, _ := newMockGormDB(t)
		repo := NewGormTenantRepository(db)
		tn, owner := newPair(t)
		owner.TenantID = uuid.New()

		assert.Error(t, repo.CreateWithOwner(context.Background(), tn, owner))
	})
}

func TestGormTenantRepository_FindByID(t *testing.T) {
	db, mock := newMockGormDB(t)
	repo := NewGormTenantRepository(db)
	id := uuid.New()
	now := time.Now()

	mock.ExpectQuery(`SELECT \* FROM "tenants" WHERE id = \$1`).
		WithArgs(id, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "version", "name", "status", "created_at", "updated_at"}).
			AddRow(id.String(), 1, "Shree Fabrics", "active", now, now))

	tn, err := repo.FindByID(context.Background(), id)

	require.NoError(t, err)
	assert.True(t, tn.IsActive())
	assert.NoError(t, mock.ExpectationsWereMet())
}
