package identity

import (
	"context"

	"github.com/google/uuid"

	"github.com/gestor/backend/internal/domain/shared"
)

// TenantRepository defines the persistence interface for tenants
type TenantRepository interface {
	// FindByID retrieves a tenant by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Tenant, error)

	// FindByCode retrieves a tenant by its unique code
	FindByCode(ctx context.Context, code string) (*Tenant, error)

	// FindAll retrieves tenants with pagination
	FindAll(ctx context.Context, filter shared.Filter) (shared.Paginated[*Tenant], error)

	// Save persists a tenant (create or update)
	Save(ctx context.Context, tenant *Tenant) error

	// ExistsByCode checks if a tenant with the given code exists
	ExistsByCode(ctx context.Context, code string) (bool, error)
}
