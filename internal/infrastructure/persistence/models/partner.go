package models

import (
	"github.com/gestor/backend/internal/domain/partner"
)

// CustomerModel is the persistence model for the Customer aggregate root
type CustomerModel struct {
	TenantAggregateModel
	Name     string `gorm:"type:varchar(200);not null"`
	Document string `gorm:"type:varchar(30);index"`
	Email    string `gorm:"type:varchar(200)"`
	Phone    string `gorm:"type:varchar(30)"`
	Active   bool   `gorm:"not null;default:true;index"`
}

// TableName returns the table name for GORM
func (CustomerModel) TableName() string {
	return "customers"
}

// ToDomain converts the persistence model to a domain Customer
func (m *CustomerModel) ToDomain() *partner.Customer {
	return &partner.Customer{
		TenantAggregateRoot: m.ToDomainTenantAggregateRoot(),
		Name:                m.Name,
		Document:            m.Document,
		Email:               m.Email,
		Phone:               m.Phone,
		Active:              m.Active,
	}
}

// FromDomain populates the persistence model from a domain Customer
func (m *CustomerModel) FromDomain(c *partner.Customer) {
	m.FromDomainTenantAggregateRoot(c.TenantAggregateRoot)
	m.Name = c.Name
	m.Document = c.Document
	m.Email = c.Email
	m.Phone = c.Phone
	m.Active = c.Active
}

// CustomerModelFromDomain creates a new persistence model from a domain Customer
func CustomerModelFromDomain(c *partner.Customer) *CustomerModel {
	m := &CustomerModel{}
	m.FromDomain(c)
	return m
}

// SupplierModel is the persistence model for the Supplier aggregate root
type SupplierModel struct {
	TenantAggregateModel
	Name     string `gorm:"type:varchar(200);not null"`
	Document string `gorm:"type:varchar(30);index"`
	Email    string `gorm:"type:varchar(200)"`
	Phone    string `gorm:"type:varchar(30)"`
	Active   bool   `gorm:"not null;default:true;index"`
}

// TableName returns the table name for GORM
func (SupplierModel) TableName() string {
	return "suppliers"
}

// ToDomain converts the persistence model to a domain Supplier
func (m *SupplierModel) ToDomain() *partner.Supplier {
	return &partner.Supplier{
		TenantAggregateRoot: m.ToDomainTenantAggregateRoot(),
		Name:                m.Name,
		Document:            m.Document,
		Email:               m.Email,
		Phone:               m.Phone,
		Active:              m.Active,
	}
}

// FromDomain populates the persistence model from a domain Supplier
func (m *SupplierModel) FromDomain(s *partner.Supplier) {
	m.FromDomainTenantAggregateRoot(s.TenantAggregateRoot)
	m.Name = s.Name
	m.Document = s.Document
	m.Email = s.Email
	m.Phone = s.Phone
	m.Active = s.Active
}

// SupplierModelFromDomain creates a new persistence model from a domain Supplier
func SupplierModelFromDomain(s *partner.Supplier) *SupplierModel {
	m := &SupplierModel{}
	m.FromDomain(s)
	return m
}
