package identity

import (
	"github.com/google/uuid"
)

// CallerContext carries the identity facts extracted from an authenticated
// request. It is the single input to tenant resolution: handlers build it
// from verified token claims and request headers, application services never
// look at transport details themselves.
type CallerContext struct {
	// UserID identifies the authenticated user
	UserID uuid.UUID

	// TenantID is the tenant the caller belongs to. Nil for global
	// administrators, who are not bound to any tenant.
	TenantID *uuid.UUID

	// IsGlobalAdmin is true when the caller holds the global administrator
	// role and carries no tenant binding
	IsGlobalAdmin bool

	// RequestedTenantID is the tenant a global administrator asked to act
	// on for this request. Ignored for regular users.
	RequestedTenantID *uuid.UUID
}

// NewTenantCaller builds a caller context for a regular tenant-bound user
func NewTenantCaller(userID, tenantID uuid.UUID) CallerContext {
	return CallerContext{
		UserID:   userID,
		TenantID: &tenantID,
	}
}

// NewGlobalAdminCaller builds a caller context for a global administrator.
// requestedTenant may be nil when the administrator is not acting on behalf
// of any specific tenant.
func NewGlobalAdminCaller(userID uuid.UUID, requestedTenant *uuid.UUID) CallerContext {
	return CallerContext{
		UserID:            userID,
		IsGlobalAdmin:     true,
		RequestedTenantID: requestedTenant,
	}
}
