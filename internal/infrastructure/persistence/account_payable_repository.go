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

// GormAccountPayableRepository implements PayableRepository using GORM
type GormAccountPayableRepository struct {
	db *gorm.DB
}

// NewGormAccountPayableRepository creates a new GormAccountPayableRepository
func NewGormAccountPayableRepository(db *gorm.DB) *GormAccountPayableRepository {
	return &GormAccountPayableRepository{db: db}
}

// FindByIDForTenant finds an account payable by ID for a specific tenant,
// including line items and installments
func (r *GormAccountPayableRepository) FindByIDForTenant(ctx context.Context, id, tenantID uuid.UUID) (*finance.AccountPayable, error) {
	var model models.AccountPayableModel
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

// FindAllForTenant finds account payables for a tenant with filtering and
// pagination
func (r *GormAccountPayableRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter finance.ObligationFilter) (shared.Paginated[*finance.AccountPayable], error) {
	query := r.db.WithContext(ctx).
		Model(&models.AccountPayableModel{}).
		Where("tenant_id = ?", tenantID)
	return r.findPage(query, filter)
}

// FindAll finds account payables across all tenants. Reserved for global
// administrators with no tenant scope.
func (r *GormAccountPayableRepository) FindAll(ctx context.Context, filter finance.ObligationFilter) (shared.Paginated[*finance.AccountPayable], error) {
	query := r.db.WithContext(ctx).Model(&models.AccountPayableModel{})
	return r.findPage(query, filter)
}

func (r *GormAccountPayableRepository) findPage(query *gorm.DB, filter finance.ObligationFilter) (shared.Paginated[*finance.AccountPayable], error) {
	var empty shared.Paginated[*finance.AccountPayable]

	query = r.applyFilter(query, filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return empty, err
	}

	var payableModels []models.AccountPayableModel
	if err := query.
		Preload("LineItems").
		Preload("Installments", func(db *gorm.DB) *gorm.DB {
			return db.Order("number ASC")
		}).
		Order(orderClause(filter.Filter)).
		Offset((filter.Page - 1) * filter.PageSize).
		Limit(filter.PageSize).
		Find(&payableModels).Error; err != nil {
		return empty, err
	}

	payables := make([]*finance.AccountPayable, len(payableModels))
	for i := range payableModels {
		payables[i] = payableModels[i].ToDomain()
	}
	return shared.NewPaginated(payables, total, filter.Page, filter.PageSize), nil
}

func (r *GormAccountPayableRepository) applyFilter(query *gorm.DB, filter finance.ObligationFilter) *gorm.DB {
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.PartnerID != nil {
		query = query.Where("supplier_id = ?", *filter.PartnerID)
	}
	if filter.DueDateFrom != nil {
		query = query.Where("first_due_date >= ?", *filter.DueDateFrom)
	}
	if filter.DueDateTo != nil {
		query = query.Where("first_due_date <= ?", *filter.DueDateTo)
	}
	if filter.OverdueOnly {
		query = query.Where("status = ?", finance.ObligationStatusPending).
			Where("EXISTS (SELECT 1 FROM account_payable_installments i WHERE i.payable_id = account_payables.id AND i.status = ? AND i.due_date < ?)",
				finance.InstallmentStatusPending, filter.ReferenceNow)
	}
	if filter.Search != "" {
		pattern := searchPattern(filter.Search)
		query = query.Where("LOWER(description) LIKE ? OR LOWER(supplier_name) LIKE ?", pattern, pattern)
	}
	return query
}

// Save creates or updates an account payable together with its line items
// and installments in a single transaction
func (r *GormAccountPayableRepository) Save(ctx context.Context, payable *finance.AccountPayable) error {
	model := models.AccountPayableModelFromDomain(payable)
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
func (r *GormAccountPayableRepository) SaveWithLock(ctx context.Context, payable *finance.AccountPayable, expectedVersion int) error {
	model := models.AccountPayableModelFromDomain(payable)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.AccountPayableModel{}).
			Where("id = ? AND tenant_id = ? AND version = ?", payable.ID, payable.TenantID, expectedVersion).
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

// replaceChildren rewrites the child rows. Settlements mutate installment
// state in the aggregate, so delete-and-insert keeps parent and children
// consistent without tracking per-row diffs.
func (r *GormAccountPayableRepository) replaceChildren(tx *gorm.DB, model *models.AccountPayableModel) error {
	if err := tx.Where("payable_id = ?", model.ID).Delete(&models.PayableLineItemModel{}).Error; err != nil {
		return err
	}
	if err := tx.Where("payable_id = ?", model.ID).Delete(&models.PayableInstallmentModel{}).Error; err != nil {
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

// CountByStatusForTenant counts payables of a tenant grouped by status
func (r *GormAccountPayableRepository) CountByStatusForTenant(ctx context.Context, tenantID uuid.UUID) (map[finance.ObligationStatus]int64, error) {
	type statusCount struct {
		Status finance.ObligationStatus
		Count  int64
	}
	var rows []statusCount
	if err := r.db.WithContext(ctx).
		Model(&models.AccountPayableModel{}).
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
