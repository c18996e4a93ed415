package identity

import (
	"strings"

	"github.com/gestor/backend/internal/domain/shared"
)

// TenantStatus represents the lifecycle status of a tenant
type TenantStatus string

const (
	TenantStatusActive    TenantStatus = "active"
	TenantStatusInactive  TenantStatus = "inactive"
	TenantStatusSuspended TenantStatus = "suspended"
)

// Tenant is an isolated organization using the platform. Every business
// record in the system belongs to exactly one tenant.
type Tenant struct {
	shared.BaseAggregateRoot
	Code   string
	Name   string
	Status TenantStatus
}

// NewTenant creates a new active tenant
func NewTenant(code, name string) (*Tenant, error) {
	code = strings.TrimSpace(code)
	name = strings.TrimSpace(name)

	if code == "" {
		return nil, shared.NewDomainError("INVALID_TENANT_CODE", "tenant code cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_TENANT_NAME", "tenant name cannot be empty")
	}

	return &Tenant{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              strings.ToLower(code),
		Name:              name,
		Status:            TenantStatusActive,
	}, nil
}

// IsActive returns true if the tenant can be used
func (t *Tenant) IsActive() bool {
	return t.Status == TenantStatusActive
}

// Activate marks the tenant as active
func (t *Tenant) Activate() {
	t.Status = TenantStatusActive
}

// Deactivate marks the tenant as inactive
func (t *Tenant) Deactivate() {
	t.Status = TenantStatusInactive
}

// Suspend marks the tenant as suspended
func (t *Tenant) Suspend() {
	t.Status = TenantStatusSuspended
}

// Rename changes the tenant display name
func (t *Tenant) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_TENANT_NAME", "tenant name cannot be empty")
	}
	t.Name = name
	return nil
}
