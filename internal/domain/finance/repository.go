package finance

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/gestor/backend/internal/domain/shared"
)

// ObligationFilter extends the common filter with finance-specific criteria
type ObligationFilter struct {
	shared.Filter
	Status       *ObligationStatus
	PartnerID    *uuid.UUID // supplier for payables, customer for receivables
	DueDateFrom  *time.Time
	DueDateTo    *time.Time
	OverdueOnly  bool
	ReferenceNow time.Time // reference time for overdue projection
}

// PayableRepository defines the persistence interface for accounts payable
type PayableRepository interface {
	// FindByIDForTenant retrieves a payable by ID scoped to a tenant,
	// including line items and installments
	FindByIDForTenant(ctx context.Context, id, tenantID uuid.UUID) (*AccountPayable, error)

	// FindAllForTenant retrieves payables of a tenant with pagination
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter ObligationFilter) (shared.Paginated[*AccountPayable], error)

	// FindAll retrieves payables across all tenants with pagination.
	// Reserved for global administrators with no tenant scope.
	FindAll(ctx context.Context, filter ObligationFilter) (shared.Paginated[*AccountPayable], error)

	// Save persists a payable and its children in a single transaction
	Save(ctx context.Context, payable *AccountPayable) error

	// SaveWithLock persists a payable with optimistic lock verification.
	// Returns ErrConcurrencyConflict if the stored version differs from
	// expectedVersion.
	SaveWithLock(ctx context.Context, payable *AccountPayable, expectedVersion int) error

	// CountByStatusForTenant counts payables of a tenant grouped by status
	CountByStatusForTenant(ctx context.Context, tenantID uuid.UUID) (map[ObligationStatus]int64, error)
}

// ReceivableRepository defines the persistence interface for accounts receivable
type ReceivableRepository interface {
	// FindByIDForTenant retrieves a receivable by ID scoped to a tenant,
	// including line items and installments
	FindByIDForTenant(ctx context.Context, id, tenantID uuid.UUID) (*AccountReceivable, error)

	// FindAllForTenant retrieves receivables of a tenant with pagination
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter ObligationFilter) (shared.Paginated[*AccountReceivable], error)

	// FindAll retrieves receivables across all tenants with pagination.
	// Reserved for global administrators with no tenant scope.
	FindAll(ctx context.Context, filter ObligationFilter) (shared.Paginated[*AccountReceivable], error)

	// Save persists a receivable and its children in a single transaction
	Save(ctx context.Context, receivable *AccountReceivable) error

	// SaveWithLock persists a receivable with optimistic lock verification.
	// Returns ErrConcurrencyConflict if the stored version differs from
	// expectedVersion.
	SaveWithLock(ctx context.Context, receivable *AccountReceivable, expectedVersion int) error

	// CountByStatusForTenant counts receivables of a tenant grouped by status
	CountByStatusForTenant(ctx context.Context, tenantID uuid.UUID) (map[ObligationStatus]int64, error)
}
