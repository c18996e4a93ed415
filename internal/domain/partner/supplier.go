package partner

import (
	"strings"

	"github.com/google/uuid"

	"github.com/gestor/backend/internal/domain/shared"
)

// Supplier is a tenant-scoped party the tenant owes money to
type Supplier struct {
	shared.TenantAggregateRoot
	Name     string
	Document string
	Email    string
	Phone    string
	Active   bool
}

// NewSupplier creates a new active supplier for a tenant
func NewSupplier(tenantID uuid.UUID, name, document string) (*Supplier, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_SUPPLIER_NAME", "supplier name cannot be empty")
	}

	return &Supplier{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Name:                name,
		Document:            strings.TrimSpace(document),
		Active:              true,
	}, nil
}

// UpdateInfo updates the supplier contact information
func (s *Supplier) UpdateInfo(name, document, email, phone string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_SUPPLIER_NAME", "supplier name cannot be empty")
	}
	s.Name = name
	s.Document = strings.TrimSpace(document)
	s.Email = strings.TrimSpace(email)
	s.Phone = strings.TrimSpace(phone)
	return nil
}

// Deactivate marks the supplier as inactive
func (s *Supplier) Deactivate() {
	s.Active = false
}

// Activate marks the supplier as active
func (s *Supplier) Activate() {
	s.Active = true
}
