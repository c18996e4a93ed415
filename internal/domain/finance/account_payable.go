package finance

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/gestor/backend/internal/domain/shared"
	"github.com/gestor/backend/internal/domain/shared/valueobject"
)

// AccountPayable represents money a tenant owes to a supplier, split into
// an installment schedule. When line items are present they sum exactly to
// the total, and the installments always sum exactly to the total.
type AccountPayable struct {
	shared.TenantAggregateRoot
	Description  string
	SupplierID   uuid.UUID
	SupplierName string
	TotalAmount  valueobject.Money
	IssueDate    time.Time
	FirstDueDate time.Time
	Recurrence   Recurrence
	Status       ObligationStatus
	Category     string
	LineItems    []*LineItem
	Installments []*Installment
	Notes        string
	SettledAt    *time.Time
	CancelledAt  *time.Time
	CancelReason string
}

// NewAccountPayable creates a new pending payable with a generated
// installment schedule. The total is declared by the caller; line items
// are optional detail, but when present they must sum exactly to the
// declared total.
func NewAccountPayable(
	tenantID uuid.UUID,
	supplierID uuid.UUID,
	supplierName string,
	description string,
	total valueobject.Money,
	lineItems []*LineItem,
	recurrence Recurrence,
	issueDate time.Time,
	firstDueDate time.Time,
) (*AccountPayable, error) {
	if supplierID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SUPPLIER", "Supplier ID cannot be empty")
	}
	if description == "" {
		return nil, shared.NewDomainError("INVALID_DESCRIPTION", "Description cannot be empty")
	}
	if !total.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Total amount must be positive")
	}
	if len(lineItems) > 0 {
		sum, err := SumLineItems(lineItems)
		if err != nil {
			return nil, err
		}
		if !sum.Equals(total) {
			return nil, shared.NewDomainError("INVALID_STATE", "Line items do not sum to the declared total")
		}
	}

	installments, err := GenerateSchedule(total, recurrence, firstDueDate)
	if err != nil {
		return nil, err
	}

	return &AccountPayable{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Description:         description,
		SupplierID:          supplierID,
		SupplierName:        supplierName,
		TotalAmount:         total,
		IssueDate:           issueDate,
		FirstDueDate:        firstDueDate,
		Recurrence:          recurrence,
		Status:              ObligationStatusPending,
		LineItems:           lineItems,
		Installments:        installments,
	}, nil
}

// UpdateDetails changes the payable's mutable fields. The financial
// composition is fixed at creation: line items, total and the installment
// schedule never change here. Replacing the composition means cancelling
// the payable and creating a new one.
func (ap *AccountPayable) UpdateDetails(
	supplierID uuid.UUID,
	supplierName string,
	description string,
	firstDueDate time.Time,
	category string,
) error {
	if ap.Status.IsFinal() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot update payable in %s status", ap.Status))
	}
	if supplierID == uuid.Nil {
		return shared.NewDomainError("INVALID_SUPPLIER", "Supplier ID cannot be empty")
	}
	if description == "" {
		return shared.NewDomainError("INVALID_DESCRIPTION", "Description cannot be empty")
	}

	ap.SupplierID = supplierID
	ap.SupplierName = supplierName
	ap.Description = description
	ap.FirstDueDate = firstDueDate
	ap.Category = category
	ap.UpdatedAt = time.Now()
	ap.IncrementVersion()

	return nil
}

// SettleInstallment marks a single installment as settled. When the last
// pending installment is settled the whole payable becomes settled.
func (ap *AccountPayable) SettleInstallment(number int, at time.Time) error {
	if ap.Status.IsFinal() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot settle installment of payable in %s status", ap.Status))
	}

	var target *Installment
	for _, inst := range ap.Installments {
		if inst.Number == number {
			target = inst
			break
		}
	}
	if target == nil {
		return shared.NewDomainError("INSTALLMENT_NOT_FOUND", fmt.Sprintf("Installment %d does not exist", number))
	}
	if err := target.Settle(at); err != nil {
		return err
	}

	if ap.allInstallmentsSettled() {
		ap.Status = ObligationStatusSettled
		ap.SettledAt = &at
	}
	ap.UpdatedAt = time.Now()
	ap.IncrementVersion()

	return nil
}

// Settle marks all pending installments and the payable itself as settled
func (ap *AccountPayable) Settle(at time.Time) error {
	if ap.Status.IsFinal() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot settle payable in %s status", ap.Status))
	}

	for _, inst := range ap.Installments {
		if !inst.IsSettled() {
			if err := inst.Settle(at); err != nil {
				return err
			}
		}
	}
	ap.Status = ObligationStatusSettled
	ap.SettledAt = &at
	ap.UpdatedAt = time.Now()
	ap.IncrementVersion()

	return nil
}

// Cancel cancels the payable. Only allowed while pending with no settled
// installments.
func (ap *AccountPayable) Cancel(reason string) error {
	if ap.Status.IsFinal() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot cancel payable in %s status", ap.Status))
	}
	if ap.HasSettledInstallments() {
		return shared.NewDomainError("INVALID_STATE", "Cannot cancel payable with settled installments")
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Cancel reason is required")
	}

	now := time.Now()
	ap.Status = ObligationStatusCancelled
	ap.CancelledAt = &now
	ap.CancelReason = reason
	for _, inst := range ap.Installments {
		inst.Status = InstallmentStatusCancelled
	}
	ap.UpdatedAt = now
	ap.IncrementVersion()

	return nil
}

// SetNotes sets free-form notes on the payable
func (ap *AccountPayable) SetNotes(notes string) {
	ap.Notes = notes
	ap.UpdatedAt = time.Now()
	ap.IncrementVersion()
}

// EffectiveStatus projects the status at the given reference time. A
// pending payable with any unsettled installment past due is reported as
// overdue; the stored status is never changed.
func (ap *AccountPayable) EffectiveStatus(now time.Time) ObligationStatus {
	if ap.Status == ObligationStatusPending && ap.IsOverdue(now) {
		return ObligationStatusOverdue
	}
	return ap.Status
}

// IsOverdue returns true if any unsettled installment is past due
func (ap *AccountPayable) IsOverdue(now time.Time) bool {
	if ap.Status != ObligationStatusPending {
		return false
	}
	today := now.Truncate(24 * time.Hour)
	for _, inst := range ap.Installments {
		if !inst.IsSettled() && inst.DueDate.Before(today) {
			return true
		}
	}
	return false
}

// HasSettledInstallments returns true if at least one installment is settled
func (ap *AccountPayable) HasSettledInstallments() bool {
	for _, inst := range ap.Installments {
		if inst.IsSettled() {
			return true
		}
	}
	return false
}

// SettledAmount returns the sum of settled installment amounts
func (ap *AccountPayable) SettledAmount() valueobject.Money {
	settled := valueobject.Zero(ap.TotalAmount.Currency())
	for _, inst := range ap.Installments {
		if inst.IsSettled() {
			settled = settled.MustAdd(inst.Amount)
		}
	}
	return settled
}

// OutstandingAmount returns the sum of unsettled installment amounts
func (ap *AccountPayable) OutstandingAmount() valueobject.Money {
	return ap.TotalAmount.MustSubtract(ap.SettledAmount())
}

// IsPending returns true if the payable is pending
func (ap *AccountPayable) IsPending() bool {
	return ap.Status == ObligationStatusPending
}

// IsSettled returns true if the payable is fully settled
func (ap *AccountPayable) IsSettled() bool {
	return ap.Status == ObligationStatusSettled
}

// IsCancelled returns true if the payable is cancelled
func (ap *AccountPayable) IsCancelled() bool {
	return ap.Status == ObligationStatusCancelled
}

func (ap *AccountPayable) allInstallmentsSettled() bool {
	for _, inst := range ap.Installments {
		if !inst.IsSettled() {
			return false
		}
	}
	return true
}
