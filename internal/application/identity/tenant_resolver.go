// Package identity contains application services for tenants and callers.
package identity

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/gestor/backend/internal/domain/identity"
	"github.com/gestor/backend/internal/domain/shared"
)

// TenantResolver decides which tenant a request operates on. It is the only
// component that turns caller identity into a tenant scope; every service
// that touches tenant data goes through it.
type TenantResolver struct {
	tenantRepo identity.TenantRepository
}

// NewTenantResolver creates a new TenantResolver
func NewTenantResolver(tenantRepo identity.TenantRepository) *TenantResolver {
	return &TenantResolver{tenantRepo: tenantRepo}
}

// Resolve returns the tenant scope for the caller.
//
// Regular users always operate on their own tenant; any requested tenant in
// the caller context is ignored for them. Global administrators operate on
// the tenant they explicitly requested, or on no tenant at all, in which
// case uuid.Nil is returned and only cross-tenant listing is permitted.
func (r *TenantResolver) Resolve(ctx context.Context, caller identity.CallerContext) (uuid.UUID, error) {
	if caller.IsGlobalAdmin {
		if caller.RequestedTenantID == nil {
			return uuid.Nil, nil
		}
		tenant, err := r.tenantRepo.FindByID(ctx, *caller.RequestedTenantID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return uuid.Nil, shared.NewDomainError("NOT_FOUND", "Tenant not found")
			}
			return uuid.Nil, err
		}
		if !tenant.IsActive() {
			return uuid.Nil, shared.NewDomainError("INVALID_STATE", "Tenant is not active")
		}
		return tenant.ID, nil
	}

	if caller.TenantID == nil || *caller.TenantID == uuid.Nil {
		return uuid.Nil, shared.NewDomainError("UNAUTHORIZED", "Caller has no tenant binding")
	}

	tenant, err := r.tenantRepo.FindByID(ctx, *caller.TenantID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			// The caller's tenant vanished; never confirm or deny details
			return uuid.Nil, shared.NewDomainError("UNAUTHORIZED", "Caller has no valid tenant binding")
		}
		return uuid.Nil, err
	}
	if !tenant.IsActive() {
		return uuid.Nil, shared.NewDomainError("UNAUTHORIZED", "Tenant is not active")
	}
	return tenant.ID, nil
}

// Require resolves the tenant scope and rejects the unscoped case. Commands
// and single-record reads always need a concrete tenant; only cross-tenant
// listing by a global administrator may run without one.
func (r *TenantResolver) Require(ctx context.Context, caller identity.CallerContext) (uuid.UUID, error) {
	tenantID, err := r.Resolve(ctx, caller)
	if err != nil {
		return uuid.Nil, err
	}
	if tenantID == uuid.Nil {
		return uuid.Nil, shared.NewDomainError("INVALID_STATE", "A tenant must be selected for this operation")
	}
	return tenantID, nil
}
