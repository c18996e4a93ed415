package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/gestor/backend/internal/domain/finance"
	"github.com/gestor/backend/internal/domain/shared"
	"github.com/gestor/backend/internal/domain/shared/valueobject"
	"github.com/gestor/backend/internal/infrastructure/persistence/models"
)

func setupPayableTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.AccountPayableModel{},
		&models.PayableLineItemModel{},
		&models.PayableInstallmentModel{},
	)
	require.NoError(t, err)

	return db
}

func buildTestPayable(t *testing.T, tenantID uuid.UUID, firstDue time.Time) *finance.AccountPayable {
	t.Helper()

	rent, err := finance.NewLineItem("Aluguel do galpao", valueobject.NewMoneyBRLFromFloat(70.00))
	require.NoError(t, err)
	utilities, err := finance.NewLineItem("Energia eletrica", valueobject.NewMoneyBRLFromFloat(30.00))
	require.NoError(t, err)

	payable, err := finance.NewAccountPayable(
		tenantID,
		uuid.New(),
		"Imobiliaria Central",
		"Despesas mensais do galpao",
		valueobject.NewMoneyBRLFromFloat(100.00),
		[]*finance.LineItem{rent, utilities},
		finance.Recurrence{InstallmentCount: 3, IntervalDays: 30},
		firstDue.AddDate(0, -1, 0),
		firstDue,
	)
	require.NoError(t, err)
	return payable
}

func TestGormAccountPayableRepository_SaveAndFind(t *testing.T) {
	db := setupPayableTestDB(t)
	repo := NewGormAccountPayableRepository(db)
	ctx := context.Background()

	t.Run("round trips a payable with line items and installments", func(t *testing.T) {
		tenantID := uuid.New()
		payable := buildTestPayable(t, tenantID, time.Date(2026, 6, 10, 0, 0, 0, 0, time.UTC))

		require.NoError(t, repo.Save(ctx, payable))

		found, err := repo.FindByIDForTenant(ctx, payable.ID, tenantID)
		require.NoError(t, err)
		assert.Equal(t, payable.ID, found.ID)
		assert.Equal(t, tenantID, found.TenantID)
		assert.Equal(t, "Despesas mensais do galpao", found.Description)
		assert.True(t, valueobject.NewMoneyBRLFromFloat(100.00).Equals(found.TotalAmount))
		assert.Equal(t, finance.ObligationStatusPending, found.Status)
		assert.Equal(t, 1, found.GetVersion())

		require.Len(t, found.LineItems, 2)
		require.Len(t, found.Installments, 3)
		assert.Equal(t, "33.33", found.Installments[0].Amount.StringFixed(2))
		assert.Equal(t, "33.33", found.Installments[1].Amount.StringFixed(2))
		assert.Equal(t, "33.34", found.Installments[2].Amount.StringFixed(2))
		for i, inst := range found.Installments {
			assert.Equal(t, i+1, inst.Number)
		}
	})

	t.Run("does not leak payables across tenants", func(t *testing.T) {
		tenantID := uuid.New()
		payable := buildTestPayable(t, tenantID, time.Date(2026, 6, 10, 0, 0, 0, 0, time.UTC))
		require.NoError(t, repo.Save(ctx, payable))

		found, err := repo.FindByIDForTenant(ctx, payable.ID, uuid.New())
		assert.Nil(t, found)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("returns not found for unknown id", func(t *testing.T) {
		found, err := repo.FindByIDForTenant(ctx, uuid.New(), uuid.New())
		assert.Nil(t, found)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormAccountPayableRepository_SaveWithLock(t *testing.T) {
	db := setupPayableTestDB(t)
	repo := NewGormAccountPayableRepository(db)
	ctx := context.Background()

	t.Run("persists changes when version matches", func(t *testing.T) {
		tenantID := uuid.New()
		payable := buildTestPayable(t, tenantID, time.Date(2026, 6, 10, 0, 0, 0, 0, time.UTC))
		require.NoError(t, repo.Save(ctx, payable))

		expectedVersion := payable.GetVersion()
		require.NoError(t, payable.SettleInstallment(1, time.Date(2026, 6, 11, 0, 0, 0, 0, time.UTC)))
		require.NoError(t, repo.SaveWithLock(ctx, payable, expectedVersion))

		found, err := repo.FindByIDForTenant(ctx, payable.ID, tenantID)
		require.NoError(t, err)
		assert.Equal(t, expectedVersion+1, found.GetVersion())
		assert.Equal(t, finance.InstallmentStatusSettled, found.Installments[0].Status)
		assert.Equal(t, finance.InstallmentStatusPending, found.Installments[1].Status)
	})

	t.Run("rejects a stale version", func(t *testing.T) {
		tenantID := uuid.New()
		payable := buildTestPayable(t, tenantID, time.Date(2026, 6, 10, 0, 0, 0, 0, time.UTC))
		require.NoError(t, repo.Save(ctx, payable))

		require.NoError(t, payable.SettleInstallment(1, time.Date(2026, 6, 11, 0, 0, 0, 0, time.UTC)))

		// the stored row is still at version 1, so expecting 5 must fail
		err := repo.SaveWithLock(ctx, payable, 5)
		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
	})
}

func TestGormAccountPayableRepository_FindAllForTenant(t *testing.T) {
	db := setupPayableTestDB(t)
	repo := NewGormAccountPayableRepository(db)
	ctx := context.Background()

	tenantID := uuid.New()
	now := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)

	overdue := buildTestPayable(t, tenantID, now.AddDate(0, 0, -10))
	upcoming := buildTestPayable(t, tenantID, now.AddDate(0, 0, 10))
	other := buildTestPayable(t, uuid.New(), now.AddDate(0, 0, -10))
	require.NoError(t, repo.Save(ctx, overdue))
	require.NoError(t, repo.Save(ctx, upcoming))
	require.NoError(t, repo.Save(ctx, other))

	t.Run("lists only the tenant's payables", func(t *testing.T) {
		page, err := repo.FindAllForTenant(ctx, tenantID, finance.ObligationFilter{Filter: shared.DefaultFilter()})
		require.NoError(t, err)
		assert.Equal(t, int64(2), page.Total)
		assert.Len(t, page.Items, 2)
	})

	t.Run("filters overdue payables only", func(t *testing.T) {
		filter := finance.ObligationFilter{
			Filter:       shared.DefaultFilter(),
			OverdueOnly:  true,
			ReferenceNow: now,
		}
		page, err := repo.FindAllForTenant(ctx, tenantID, filter)
		require.NoError(t, err)
		require.Len(t, page.Items, 1)
		assert.Equal(t, overdue.ID, page.Items[0].ID)
	})

	t.Run("filters by status", func(t *testing.T) {
		status := finance.ObligationStatusPending
		page, err := repo.FindAllForTenant(ctx, tenantID, finance.ObligationFilter{
			Filter: shared.DefaultFilter(),
			Status: &status,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(2), page.Total)
	})

	t.Run("searches by description", func(t *testing.T) {
		page, err := repo.FindAllForTenant(ctx, tenantID, finance.ObligationFilter{
			Filter: shared.Filter{Page: 1, PageSize: 20, Search: "GALPAO"},
		})
		require.NoError(t, err)
		assert.Equal(t, int64(2), page.Total)
	})

	t.Run("unscoped listing sees every tenant", func(t *testing.T) {
		page, err := repo.FindAll(ctx, finance.ObligationFilter{Filter: shared.DefaultFilter()})
		require.NoError(t, err)
		assert.Equal(t, int64(3), page.Total)
	})
}

func TestGormAccountPayableRepository_CountByStatusForTenant(t *testing.T) {
	db := setupPayableTestDB(t)
	repo := NewGormAccountPayableRepository(db)
	ctx := context.Background()

	tenantID := uuid.New()
	first := buildTestPayable(t, tenantID, time.Date(2026, 6, 10, 0, 0, 0, 0, time.UTC))
	second := buildTestPayable(t, tenantID, time.Date(2026, 7, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, repo.Save(ctx, first))
	require.NoError(t, repo.Save(ctx, second))

	require.NoError(t, second.Cancel("Contrato rescindido"))
	require.NoError(t, repo.Save(ctx, second))

	counts, err := repo.CountByStatusForTenant(ctx, tenantID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts[finance.ObligationStatusPending])
	assert.Equal(t, int64(1), counts[finance.ObligationStatusCancelled])
}

func TestGormAccountPayableRepository_UpdateRewritesChildrenInPlace(t *testing.T) {
	db := setupPayableTestDB(t)
	repo := NewGormAccountPayableRepository(db)
	ctx := context.Background()

	tenantID := uuid.New()
	payable := buildTestPayable(t, tenantID, time.Date(2026, 6, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, repo.Save(ctx, payable))

	expectedVersion := payable.GetVersion()
	require.NoError(t, payable.SettleInstallment(1, time.Date(2026, 6, 11, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, repo.SaveWithLock(ctx, payable, expectedVersion))

	expectedVersion = payable.GetVersion()
	require.NoError(t, payable.UpdateDetails(
		payable.SupplierID,
		payable.SupplierName,
		"Despesas revisadas",
		time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		"ocupacao",
	))
	require.NoError(t, repo.SaveWithLock(ctx, payable, expectedVersion))

	found, err := repo.FindByIDForTenant(ctx, payable.ID, tenantID)
	require.NoError(t, err)
	assert.Equal(t, "Despesas revisadas", found.Description)
	assert.Equal(t, "ocupacao", found.Category)
	require.Len(t, found.LineItems, 2)
	require.Len(t, found.Installments, 3)
	assert.Equal(t, finance.InstallmentStatusSettled, found.Installments[0].Status)

	// children are rewritten, never duplicated or orphaned
	var installmentRows int64
	require.NoError(t, db.Model(&models.PayableInstallmentModel{}).
		Where("payable_id = ?", payable.ID).
		Count(&installmentRows).Error)
	assert.Equal(t, int64(3), installmentRows)

	var lineItemRows int64
	require.NoError(t, db.Model(&models.PayableLineItemModel{}).
		Where("payable_id = ?", payable.ID).
		Count(&lineItemRows).Error)
	assert.Equal(t, int64(2), lineItemRows)
}

func TestGormAccountPayableRepository_InterfaceCompliance(t *testing.T) {
	var _ finance.PayableRepository = (*GormAccountPayableRepository)(nil)
}
