package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gestor/backend/internal/domain/finance"
	"github.com/gestor/backend/internal/domain/shared/valueobject"
)

// AccountPayableModel is the persistence model for the AccountPayable
// aggregate root. Line items and installments live in child tables and are
// written together with the parent in one transaction.
type AccountPayableModel struct {
	TenantAggregateModel
	Description      string                    `gorm:"type:varchar(500);not null"`
	SupplierID       uuid.UUID                 `gorm:"type:uuid;not null;index"`
	SupplierName     string                    `gorm:"type:varchar(200);not null"`
	TotalAmount      decimal.Decimal           `gorm:"type:decimal(18,2);not null"`
	IssueDate        time.Time                 `gorm:"not null"`
	FirstDueDate     time.Time                 `gorm:"not null;index"`
	InstallmentCount int                       `gorm:"not null"`
	IntervalDays     int                       `gorm:"not null"`
	Status           finance.ObligationStatus  `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	Category         string                    `gorm:"type:varchar(100);index"`
	LineItems        []PayableLineItemModel    `gorm:"foreignKey:PayableID;references:ID"`
	Installments     []PayableInstallmentModel `gorm:"foreignKey:PayableID;references:ID"`
	Notes            string                    `gorm:"type:text"`
	SettledAt        *time.Time
	CancelledAt      *time.Time
	CancelReason     string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (AccountPayableModel) TableName() string {
	return "account_payables"
}

// ToDomain converts the persistence model to a domain AccountPayable
func (m *AccountPayableModel) ToDomain() *finance.AccountPayable {
	ap := &finance.AccountPayable{
		TenantAggregateRoot: m.ToDomainTenantAggregateRoot(),
		Description:         m.Description,
		SupplierID:          m.SupplierID,
		SupplierName:        m.SupplierName,
		TotalAmount:         valueobject.NewMoneyBRL(m.TotalAmount),
		IssueDate:           m.IssueDate,
		FirstDueDate:        m.FirstDueDate,
		Recurrence: finance.Recurrence{
			InstallmentCount: m.InstallmentCount,
			IntervalDays:     m.IntervalDays,
		},
		Status:       m.Status,
		Category:     m.Category,
		Notes:        m.Notes,
		SettledAt:    m.SettledAt,
		CancelledAt:  m.CancelledAt,
		CancelReason: m.CancelReason,
		LineItems:    make([]*finance.LineItem, len(m.LineItems)),
		Installments: make([]*finance.Installment, len(m.Installments)),
	}
	for i, li := range m.LineItems {
		ap.LineItems[i] = li.ToDomain()
	}
	for i, inst := range m.Installments {
		ap.Installments[i] = inst.ToDomain()
	}
	return ap
}

// FromDomain populates the persistence model from a domain AccountPayable
func (m *AccountPayableModel) FromDomain(ap *finance.AccountPayable) {
	m.FromDomainTenantAggregateRoot(ap.TenantAggregateRoot)
	m.Description = ap.Description
	m.SupplierID = ap.SupplierID
	m.SupplierName = ap.SupplierName
	m.TotalAmount = ap.TotalAmount.Amount()
	m.IssueDate = ap.IssueDate
	m.FirstDueDate = ap.FirstDueDate
	m.InstallmentCount = ap.Recurrence.InstallmentCount
	m.IntervalDays = ap.Recurrence.IntervalDays
	m.Status = ap.Status
	m.Category = ap.Category
	m.Notes = ap.Notes
	m.SettledAt = ap.SettledAt
	m.CancelledAt = ap.CancelledAt
	m.CancelReason = ap.CancelReason
	m.LineItems = make([]PayableLineItemModel, len(ap.LineItems))
	for i, li := range ap.LineItems {
		m.LineItems[i] = *PayableLineItemModelFromDomain(ap.ID, li)
	}
	m.Installments = make([]PayableInstallmentModel, len(ap.Installments))
	for i, inst := range ap.Installments {
		m.Installments[i] = *PayableInstallmentModelFromDomain(ap.ID, inst)
	}
}

// AccountPayableModelFromDomain creates a new persistence model from a domain AccountPayable
func AccountPayableModelFromDomain(ap *finance.AccountPayable) *AccountPayableModel {
	m := &AccountPayableModel{}
	m.FromDomain(ap)
	return m
}

// PayableLineItemModel is the persistence model for payable line items
type PayableLineItemModel struct {
	BaseModel
	PayableID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Description string          `gorm:"type:varchar(500);not null"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	RefModule   string          `gorm:"type:varchar(50)"`
	RefID       *uuid.UUID      `gorm:"type:uuid;index"`
}

// TableName returns the table name for GORM
func (PayableLineItemModel) TableName() string {
	return "account_payable_line_items"
}

// ToDomain converts the persistence model to a domain LineItem
func (m *PayableLineItemModel) ToDomain() *finance.LineItem {
	return &finance.LineItem{
		BaseEntity:  m.BaseModel.ToDomain(),
		Description: m.Description,
		Amount:      valueobject.NewMoneyBRL(m.Amount),
		RefModule:   m.RefModule,
		RefID:       m.RefID,
	}
}

// PayableLineItemModelFromDomain creates a persistence model from a domain LineItem
func PayableLineItemModelFromDomain(payableID uuid.UUID, li *finance.LineItem) *PayableLineItemModel {
	m := &PayableLineItemModel{}
	m.FromDomainBaseEntity(li.BaseEntity)
	m.PayableID = payableID
	m.Description = li.Description
	m.Amount = li.Amount.Amount()
	m.RefModule = li.RefModule
	m.RefID = li.RefID
	return m
}

// PayableInstallmentModel is the persistence model for payable installments
type PayableInstallmentModel struct {
	BaseModel
	PayableID uuid.UUID                 `gorm:"type:uuid;not null;uniqueIndex:idx_payable_installment_number,priority:1"`
	Number    int                       `gorm:"not null;uniqueIndex:idx_payable_installment_number,priority:2"`
	Amount    decimal.Decimal           `gorm:"type:decimal(18,2);not null"`
	DueDate   time.Time                 `gorm:"not null;index"`
	Status    finance.InstallmentStatus `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	SettledAt *time.Time
}

// TableName returns the table name for GORM
func (PayableInstallmentModel) TableName() string {
	return "account_payable_installments"
}

// ToDomain converts the persistence model to a domain Installment
func (m *PayableInstallmentModel) ToDomain() *finance.Installment {
	return &finance.Installment{
		BaseEntity: m.BaseModel.ToDomain(),
		Number:     m.Number,
		Amount:     valueobject.NewMoneyBRL(m.Amount),
		DueDate:    m.DueDate,
		Status:     m.Status,
		SettledAt:  m.SettledAt,
	}
}

// PayableInstallmentModelFromDomain creates a persistence model from a domain Installment
func PayableInstallmentModelFromDomain(payableID uuid.UUID, inst *finance.Installment) *PayableInstallmentModel {
	m := &PayableInstallmentModel{}
	m.FromDomainBaseEntity(inst.BaseEntity)
	m.PayableID = payableID
	m.Number = inst.Number
	m.Amount = inst.Amount.Amount()
	m.DueDate = inst.DueDate
	m.Status = inst.Status
	m.SettledAt = inst.SettledAt
	return m
}

// AccountReceivableModel is the persistence model for the AccountReceivable
// aggregate root. It mirrors AccountPayableModel with the counterparty
// reversed.
type AccountReceivableModel struct {
	TenantAggregateModel
	Description      string                       `gorm:"type:varchar(500);not null"`
	CustomerID       uuid.UUID                    `gorm:"type:uuid;not null;index"`
	CustomerName     string                       `gorm:"type:varchar(200);not null"`
	TotalAmount      decimal.Decimal              `gorm:"type:decimal(18,2);not null"`
	IssueDate        time.Time                    `gorm:"not null"`
	FirstDueDate     time.Time                    `gorm:"not null;index"`
	InstallmentCount int                          `gorm:"not null"`
	IntervalDays     int                          `gorm:"not null"`
	Status           finance.ObligationStatus     `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	Category         string                       `gorm:"type:varchar(100);index"`
	LineItems        []ReceivableLineItemModel    `gorm:"foreignKey:ReceivableID;references:ID"`
	Installments     []ReceivableInstallmentModel `gorm:"foreignKey:ReceivableID;references:ID"`
	Notes            string                       `gorm:"type:text"`
	SettledAt        *time.Time
	CancelledAt      *time.Time
	CancelReason     string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (AccountReceivableModel) TableName() string {
	return "account_receivables"
}

// ToDomain converts the persistence model to a domain AccountReceivable
func (m *AccountReceivableModel) ToDomain() *finance.AccountReceivable {
	ar := &finance.AccountReceivable{
		TenantAggregateRoot: m.ToDomainTenantAggregateRoot(),
		Description:         m.Description,
		CustomerID:          m.CustomerID,
		CustomerName:        m.CustomerName,
		TotalAmount:         valueobject.NewMoneyBRL(m.TotalAmount),
		IssueDate:           m.IssueDate,
		FirstDueDate:        m.FirstDueDate,
		Recurrence: finance.Recurrence{
			InstallmentCount: m.InstallmentCount,
			IntervalDays:     m.IntervalDays,
		},
		Status:       m.Status,
		Category:     m.Category,
		Notes:        m.Notes,
		SettledAt:    m.SettledAt,
		CancelledAt:  m.CancelledAt,
		CancelReason: m.CancelReason,
		LineItems:    make([]*finance.LineItem, len(m.LineItems)),
		Installments: make([]*finance.Installment, len(m.Installments)),
	}
	for i, li := range m.LineItems {
		ar.LineItems[i] = li.ToDomain()
	}
	for i, inst := range m.Installments {
		ar.Installments[i] = inst.ToDomain()
	}
	return ar
}

// FromDomain populates the persistence model from a domain AccountReceivable
func (m *AccountReceivableModel) FromDomain(ar *finance.AccountReceivable) {
	m.FromDomainTenantAggregateRoot(ar.TenantAggregateRoot)
	m.Description = ar.Description
	m.CustomerID = ar.CustomerID
	m.CustomerName = ar.CustomerName
	m.TotalAmount = ar.TotalAmount.Amount()
	m.IssueDate = ar.IssueDate
	m.FirstDueDate = ar.FirstDueDate
	m.InstallmentCount = ar.Recurrence.InstallmentCount
	m.IntervalDays = ar.Recurrence.IntervalDays
	m.Status = ar.Status
	m.Category = ar.Category
	m.Notes = ar.Notes
	m.SettledAt = ar.SettledAt
	m.CancelledAt = ar.CancelledAt
	m.CancelReason = ar.CancelReason
	m.LineItems = make([]ReceivableLineItemModel, len(ar.LineItems))
	for i, li := range ar.LineItems {
		m.LineItems[i] = *ReceivableLineItemModelFromDomain(ar.ID, li)
	}
	m.Installments = make([]ReceivableInstallmentModel, len(ar.Installments))
	for i, inst := range ar.Installments {
		m.Installments[i] = *ReceivableInstallmentModelFromDomain(ar.ID, inst)
	}
}

// AccountReceivableModelFromDomain creates a new persistence model from a domain AccountReceivable
func AccountReceivableModelFromDomain(ar *finance.AccountReceivable) *AccountReceivableModel {
	m := &AccountReceivableModel{}
	m.FromDomain(ar)
	return m
}

// ReceivableLineItemModel is the persistence model for receivable line items
type ReceivableLineItemModel struct {
	BaseModel
	ReceivableID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Description  string          `gorm:"type:varchar(500);not null"`
	Amount       decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	RefModule    string          `gorm:"type:varchar(50)"`
	RefID        *uuid.UUID      `gorm:"type:uuid;index"`
}

// TableName returns the table name for GORM
func (ReceivableLineItemModel) TableName() string {
	return "account_receivable_line_items"
}

// ToDomain converts the persistence model to a domain LineItem
func (m *ReceivableLineItemModel) ToDomain() *finance.LineItem {
	return &finance.LineItem{
		BaseEntity:  m.BaseModel.ToDomain(),
		Description: m.Description,
		Amount:      valueobject.NewMoneyBRL(m.Amount),
		RefModule:   m.RefModule,
		RefID:       m.RefID,
	}
}

// ReceivableLineItemModelFromDomain creates a persistence model from a domain LineItem
func ReceivableLineItemModelFromDomain(receivableID uuid.UUID, li *finance.LineItem) *ReceivableLineItemModel {
	m := &ReceivableLineItemModel{}
	m.FromDomainBaseEntity(li.BaseEntity)
	m.ReceivableID = receivableID
	m.Description = li.Description
	m.Amount = li.Amount.Amount()
	m.RefModule = li.RefModule
	m.RefID = li.RefID
	return m
}

// ReceivableInstallmentModel is the persistence model for receivable installments
type ReceivableInstallmentModel struct {
	BaseModel
	ReceivableID uuid.UUID                 `gorm:"type:uuid;not null;uniqueIndex:idx_receivable_installment_number,priority:1"`
	Number       int                       `gorm:"not null;uniqueIndex:idx_receivable_installment_number,priority:2"`
	Amount       decimal.Decimal           `gorm:"type:decimal(18,2);not null"`
	DueDate      time.Time                 `gorm:"not null;index"`
	Status       finance.InstallmentStatus `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	SettledAt    *time.Time
}

// TableName returns the table name for GORM
func (ReceivableInstallmentModel) TableName() string {
	return "account_receivable_installments"
}

// ToDomain converts the persistence model to a domain Installment
func (m *ReceivableInstallmentModel) ToDomain() *finance.Installment {
	return &finance.Installment{
		BaseEntity: m.BaseModel.ToDomain(),
		Number:     m.Number,
		Amount:     valueobject.NewMoneyBRL(m.Amount),
		DueDate:    m.DueDate,
		Status:     m.Status,
		SettledAt:  m.SettledAt,
	}
}

// ReceivableInstallmentModelFromDomain creates a persistence model from a domain Installment
func ReceivableInstallmentModelFromDomain(receivableID uuid.UUID, inst *finance.Installment) *ReceivableInstallmentModel {
	m := &ReceivableInstallmentModel{}
	m.FromDomainBaseEntity(inst.BaseEntity)
	m.ReceivableID = receivableID
	m.Number = inst.Number
	m.Amount = inst.Amount.Amount()
	m.DueDate = inst.DueDate
	m.Status = inst.Status
	m.SettledAt = inst.SettledAt
	return m
}
