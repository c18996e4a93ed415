package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/gestor/backend/internal/domain/finance"
	"github.com/gestor/backend/internal/domain/shared"
	"github.com/gestor/backend/internal/infrastructure/persistence/models"
)

// GormAccountReceivableRepository implements ReceivableRepository using GORM
type GormAccountReceivableRepository struct {
	db *gorm.DB
}

// NewGormAccountReceivableRepository creates a new GormAccountReceivableRepository
func NewGormAccountReceivableRepository(db *gorm.DB) *GormAccountReceivableRepository {
	return &GormAccountReceivableRepository{db: db}
}

// FindByIDForTenant finds an account receivable by ID for a specific tenant,
// including line items and installments
func (r *GormAccountReceivableRepository) FindByIDForTenant(ctx context.Context, id, tenantID uuid.UUID) (*finance.AccountReceivable, error) {
	var model models.AccountReceivableModel
	if err := r.db.WithContext(ctx).
		Preload("LineItems").
		Preload("Installments", func(db *gorm.DB) *gorm.DB {
			return db.Order("number ASC")
		}).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForTenant finds account receivables for a tenant with filtering
// and pagination
func (r *GormAccountReceivableRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter finance.ObligationFilter) (shared.Paginated[*finance.AccountReceivable], error) {
	query := r.db.WithContext(ctx).
		Model(&models.AccountReceivableModel{}).
		Where("tenant_id = ?", tenantID)
	return r.findPage(query, filter)
}

// FindAll finds account receivables across all tenants. Reserved for global
// administrators with no tenant scope.
func (r *GormAccountReceivableRepository) FindAll(ctx context.Context, filter finance.ObligationFilter) (shared.Paginated[*finance.AccountReceivable], error) {
	query := r.db.WithContext(ctx).Model(&models.AccountReceivableModel{})
	return r.findPage(query, filter)
}

func (r *GormAccountReceivableRepository) findPage(query *gorm.DB, filter finance.ObligationFilter) (shared.Paginated[*finance.AccountReceivable], error) {
	var empty shared.Paginated[*finance.AccountReceivable]

	query = r.applyFilter(query, filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return empty, err
	}

	var receivableModels []models.AccountReceivableModel
	if err := query.
		Preload("LineItems").
		Preload("Installments", func(db *gorm.DB) *gorm.DB {
			return db.Order("number ASC")
		}).
		Order(orderClause(filter.Filter)).
		Offset((filter.Page - 1) * filter.PageSize).
		Limit(filter.PageSize).
		Find(&receivableModels).Error; err != nil {
		return empty, err
	}

	receivables := make([]*finance.AccountReceivable, len(receivableModels))
	for i := range receivableModels {
		receivables[i] = receivableModels[i].ToDomain()
	}
	return shared.NewPaginated(receivables, total, filter.Page, filter.PageSize), nil
}

func (r *GormAccountReceivableRepository) applyFilter(query *gorm.DB, filter finance.ObligationFilter) *gorm.DB {
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.PartnerID != nil {
		query = query.Where("customer_id = ?", *filter.PartnerID)
	}
	if filter.DueDateFrom != nil {
		query = query.Where("first_due_date >= ?", *filter.DueDateFrom)
	}
	if filter.DueDateTo != nil {
		query = query.Where("first_due_date <= ?", *filter.DueDateTo)
	}
	if filter.OverdueOnly {
		query = query.Where("status = ?", finance.ObligationStatusPending).
			Where("EXISTS (SELECT 1 FROM account_receivable_installments i WHERE i.receivable_id = account_receivables.id AND i.status = ? AND i.due_date < ?)",
				finance.InstallmentStatusPending, filter.ReferenceNow)
	}
	if filter.Search != "" {
		pattern := searchPattern(filter.Search)
		query = query.Where("LOWER(description) LIKE ? OR LOWER(customer_name) LIKE ?", pattern, pattern)
	}
	return query
}

// Save creates or updates an account receivable together with its line
// items and installments in a single transaction
func (r *GormAccountReceivableRepository) Save(ctx context.Context, receivable *finance.AccountReceivable) error {
	model := models.AccountReceivableModelFromDomain(receivable)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(model).Error; err != nil {
			return err
		}
		return r.replaceChildren(tx, model)
	})
}

// SaveWithLock saves with optimistic lock verification. Returns
// ErrConcurrencyConflict when the stored version differs from
// expectedVersion.
func (r *GormAccountReceivableRepository) SaveWithLock(ctx context.Context, receivable *finance.AccountReceivable, expectedVersion int) error {
	model := models.AccountReceivableModelFromDomain(receivable)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.AccountReceivableModel{}).
			Where("id = ? AND tenant_id = ? AND version = ?", receivable.ID, receivable.TenantID, expectedVersion).
			Select("*").
			Omit("id", "tenant_id", "created_at", clause.Associations).
			Updates(model)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrConcurrencyConflict
		}
		return r.replaceChildren(tx, model)
	})
}

func (r *GormAccountReceivableRepository) replaceChildren(tx *gorm.DB, model *models.AccountReceivableModel) error {
	if err := tx.Where("receivable_id = ?", model.ID).Delete(&models.ReceivableLineItemModel{}).Error; err != nil {
		return err
	}
	if err := tx.Where("receivable_id = ?", model.ID).Delete(&models.ReceivableInstallmentModel{}).Error; err != nil {
		return err
	}
	if len(model.LineItems) > 0 {
		if err := tx.Create(&model.LineItems).Error; err != nil {
			return err
		}
	}
	if len(model.Installments) > 0 {
		if err := tx.Create(&model.Installments).Error; err != nil {
			return err
		}
	}
	return nil
}

// CountByStatusForTenant counts receivables of a tenant grouped by status
func (r *GormAccountReceivableRepository) CountByStatusForTenant(ctx context.Context, tenantID uuid.UUID) (map[finance.ObligationStatus]int64, error) {
	type statusCount struct {
		Status finance.ObligationStatus
		Count  int64
	}
	var rows []statusCount
	if err := r.db.WithContext(ctx).
		Model(&models.AccountReceivableModel{}).
		Select("status, COUNT(*) as count").
		Where("tenant_id = ?", tenantID).
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[finance.ObligationStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}
