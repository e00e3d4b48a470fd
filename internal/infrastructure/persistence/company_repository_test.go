package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/mfgops/backend/internal/domain/partner"
	"github.com/mfgops/backend/internal/domain/shared"
	"github.com/mfgops/backend/internal/domain/shared/valueobject"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCompany(t *testing.T, tenantID uuid.UUID, isOwn bool) *partner.Company {
	t.Helper()
	company, err := partner.NewCompany(tenantID, partner.CompanyInput{
		Name:    "Shree Fabrics",
		TaxID:   "27aapfs1234k1z5",
		Address: valueobject.Address{City: "Surat", Country: "India"},
	}, isOwn)
	require.NoError(t, err)
	return company
}

var companyColumns = []string{"id", "tenant_id", "version", "name", "tax_id", "address", "is_own", "created_at", "updated_at"}

func TestGormCompanyRepository_FindOwn(t *testing.T) {
	t.Run("loads the own profile", func(t *testing.T) {
		db, mock := newMockGormDB(t)
		repo := NewGormCompanyRepository(db)
		tenantID := uuid.New()
		id := uuid.New()
		now := time.Now()

		mock.ExpectQuery(`SELECT \* FROM "companies" WHERE tenant_id = \$1 AND is_own = \$2 ORDER BY "companies"."id" LIMIT \$3`).
			WithArgs(tenantID, true, 1).
			WillReturnRows(sqlmock.NewRows(companyColumns).
				AddRow(id.String(), tenantID.String(), 1, "Own Co", "", `{"city":"Pune"}`, true, now, now))

		company, err := repo.FindOwn(context.Background(), tenantID)

		require.NoError(t, err)
		assert.True(t, company.IsOwn)
		assert.Equal(t, "Pune", company.Address.City)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns ErrNotFound", func(t *testing.T) {
		db, mock := newMockGormDB(t)
		repo := NewGormCompanyRepository(db)

		mock.ExpectQuery(`SELECT \* FROM "companies"`).WillReturnRows(sqlmock.NewRows(companyColumns))

		_, err := repo.FindOwn(context.Background(), uuid.New())

		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormCompanyRepository_ExistsOwn(t *testing.T) {
	db, mock := newMockGormDB(t)
	repo := NewGormCompanyRepository(db)
	tenantID := uuid.New()

	mock.ExpectQuery(`SELECT count\(\*\) FROM "companies" WHERE tenant_id = \$1 AND is_own = \$2`).
		WithArgs(tenantID, true).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	exists, err := repo.ExistsOwn(context.Background(), tenantID)

	require.NoError(t, err)
	assert.False(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormCompanyRepository_Save(t *testing.T) {
	t.Run("updates an existing company", func(t *testing.T) {
		db, mock := newMockGormDB(t)
		repo := NewGormCompanyRepository(db)
		company := newTestCompany(t, uuid.New(), false)

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "companies" SET .* WHERE tenant_id = \$\d+ AND \(id = \$\d+ AND version = \$\d+\)`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		require.NoError(t, repo.Save(context.Background(), company))
		assert.Equal(t, 2, company.Version)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("inserts a new company", func(t *testing.T) {
		db, mock := newMockGormDB(t)
		repo := NewGormCompanyRepository(db)
		company := newTestCompany(t, uuid.New(), true)

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "companies"`).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`SELECT count\(\*\) FROM "companies" WHERE id = \$1`).
			WithArgs(company.ID).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectExec(`INSERT INTO "companies"`).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		require.NoError(t, repo.Save(context.Background(), company))
		assert.Equal(t, 1, company.Version)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("stale version is a conflict", func(t *testing.T) {
		db, mock := newMockGormDB(t)
		repo := NewGormCompanyRepository(db)
		company := newTestCompany(t, uuid.New(), false)

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "companies"`).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`SELECT count\(\*\) FROM "companies"`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
		mock.ExpectRollback()

		err := repo.Save(context.Background(), company)

		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormCompanyRepository_FindAllForTenant(t *testing.T) {
	db, mock := newMockGormDB(t)
	repo := NewGormCompanyRepository(db)
	tenantID := uuid.New()

	mock.ExpectQuery(`SELECT \* FROM "companies" WHERE tenant_id = \$1 AND is_own = \$2 ORDER BY "created_at" DESC LIMIT \$3 OFFSET \$4`).
		WithArgs(tenantID, false, 10, 10).
		WillReturnRows(sqlmock.NewRows(companyColumns))

	companies, err := repo.FindAllForTenant(context.Background(), tenantID, shared.Filter{
		Page:     2,
		PageSize: 10,
		Filters:  map[string]any{"is_own": false},
	})

	require.NoError(t, err)
	assert.Empty(t, companies)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormCompanyRepository_DeleteForTenant(t *testing.T) {
	db, mock := newMockGormDB(t)
	repo := NewGormCompanyRepository(db)
	tenantID := uuid.New()
	id := uuid.New()

	mock.ExpectExec(`DELETE FROM "companies" WHERE tenant_id = \$1 AND id = \$2`).
		WithArgs(tenantID, id).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.DeleteForTenant(context.Background(), tenantID, id))
	assert.NoError(t, mock.ExpectationsWereMet())
}
