// Package partner contains the business partners of a tenant: the customers
// money is received from and the suppliers money is paid to.
package partner

import (
	"strings"

	"github.com/google/uuid"

	"github.com/gestor/backend/internal/domain/shared"
)

// Customer is a tenant-scoped party that owes money to the tenant
type Customer struct {
	shared.TenantAggregateRoot
	Name     string
	Document string // CPF/CNPJ or equivalent identifier
	Email    string
	Phone    string
	Active   bool
}

// NewCustomer creates a new active customer for a tenant
func NewCustomer(tenantID uuid.UUID, name, document string) (*Customer, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_CUSTOMER_NAME", "customer name cannot be empty")
	}

	return &Customer{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Name:                name,
		Document:            strings.TrimSpace(document),
		Active:              true,
	}, nil
}

// UpdateInfo updates the customer contact information
func (c *Customer) UpdateInfo(name, document, email, phone string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_CUSTOMER_NAME", "customer name cannot be empty")
	}
	c.Name = name
	c.Document = strings.TrimSpace(document)
	c.Email = strings.TrimSpace(email)
	c.Phone = strings.TrimSpace(phone)
	return nil
}

// Deactivate marks the customer as inactive
func (c *Customer) Deactivate() {
	c.Active = false
}

// Activate marks the customer as active
func (c *Customer) Activate() {
	c.Active = true
}
