package partner

import (
	"context"

	"github.com/google/uuid"

	"github.com/gestor/backend/internal/domain/shared"
)

// CustomerRepository defines the persistence interface for customers
type CustomerRepository interface {
	// FindByIDForTenant retrieves a customer by ID scoped to a tenant
	FindByIDForTenant(ctx context.Context, id, tenantID uuid.UUID) (*Customer, error)

	// FindAllForTenant retrieves customers of a tenant with pagination
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (shared.Paginated[*Customer], error)

	// Save persists a customer (create or update)
	Save(ctx context.Context, customer *Customer) error
}

// SupplierRepository defines the persistence interface for suppliers
type SupplierRepository interface {
	// FindByIDForTenant retrieves a supplier by ID scoped to a tenant
	FindByIDForTenant(ctx context.Context, id, tenantID uuid.UUID) (*Supplier, error)

	// FindAllForTenant retrieves suppliers of a tenant with pagination
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (shared.Paginated[*Supplier], error)

	// Save persists a supplier (create or update)
	Save(ctx context.Context, supplier *Supplier) error
}
