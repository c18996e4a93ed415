package finance

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/gestor/backend/internal/domain/shared"
	"github.com/gestor/backend/internal/domain/shared/valueobject"
)

// AccountReceivable represents money a customer owes to a tenant, split
// into an installment schedule. It mirrors AccountPayable with the
// counterparty reversed.
type AccountReceivable struct {
	shared.TenantAggregateRoot
	Description  string
	CustomerID   uuid.UUID
	CustomerName string
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

// NewAccountReceivable creates a new pending receivable with a generated
// installment schedule. Same contract as NewAccountPayable: the caller
// declares the total, and non-empty line items must sum exactly to it.
func NewAccountReceivable(
	tenantID uuid.UUID,
	customerID uuid.UUID,
	customerName string,
	description string,
	total valueobject.Money,
	lineItems []*LineItem,
	recurrence Recurrence,
	issueDate time.Time,
	firstDueDate time.Time,
) (*AccountReceivable, error) {
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
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

	return &AccountReceivable{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Description:         description,
		CustomerID:          customerID,
		CustomerName:        customerName,
		TotalAmount:         total,
		IssueDate:           issueDate,
		FirstDueDate:        firstDueDate,
		Recurrence:          recurrence,
		Status:              ObligationStatusPending,
		LineItems:           lineItems,
		Installments:        installments,
	}, nil
}

// UpdateDetails changes the receivable's mutable fields. The financial
// composition is fixed at creation, exactly as on the payable side.
func (ar *AccountReceivable) UpdateDetails(
	customerID uuid.UUID,
	customerName string,
	description string,
	firstDueDate time.Time,
	category string,
) error {
	if ar.Status.IsFinal() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot update receivable in %s status", ar.Status))
	}
	if customerID == uuid.Nil {
		return shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if description == "" {
		return shared.NewDomainError("INVALID_DESCRIPTION", "Description cannot be empty")
	}

	ar.CustomerID = customerID
	ar.CustomerName = customerName
	ar.Description = description
	ar.FirstDueDate = firstDueDate
	ar.Category = category
	ar.UpdatedAt = time.Now()
	ar.IncrementVersion()

	return nil
}

// SettleInstallment marks a single installment as settled. When the last
// pending installment is settled the whole receivable becomes settled.
func (ar *AccountReceivable) SettleInstallment(number int, at time.Time) error {
	if ar.Status.IsFinal() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot settle installment of receivable in %s status", ar.Status))
	}

	var target *Installment
	for _, inst := range ar.Installments {
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

	if ar.allInstallmentsSettled() {
		ar.Status = ObligationStatusSettled
		ar.SettledAt = &at
	}
	ar.UpdatedAt = time.Now()
	ar.IncrementVersion()

	return nil
}

// Settle marks all pending installments and the receivable itself as settled
func (ar *AccountReceivable) Settle(at time.Time) error {
	if ar.Status.IsFinal() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot settle receivable in %s status", ar.Status))
	}

	for _, inst := range ar.Installments {
		if !inst.IsSettled() {
			if err := inst.Settle(at); err != nil {
				return err
			}
		}
	}
	ar.Status = ObligationStatusSettled
	ar.SettledAt = &at
	ar.UpdatedAt = time.Now()
	ar.IncrementVersion()

	return nil
}

// Cancel cancels the receivable. Only allowed while pending with no
// settled installments.
func (ar *AccountReceivable) Cancel(reason string) error {
	if ar.Status.IsFinal() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot cancel receivable in %s status", ar.Status))
	}
	if ar.HasSettledInstallments() {
		return shared.NewDomainError("INVALID_STATE", "Cannot cancel receivable with settled installments")
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Cancel reason is required")
	}

	now := time.Now()
	ar.Status = ObligationStatusCancelled
	ar.CancelledAt = &now
	ar.CancelReason = reason
	for _, inst := range ar.Installments {
		inst.Status = InstallmentStatusCancelled
	}
	ar.UpdatedAt = now
	ar.IncrementVersion()

	return nil
}

// SetNotes sets free-form notes on the receivable
func (ar *AccountReceivable) SetNotes(notes string) {
	ar.Notes = notes
	ar.UpdatedAt = time.Now()
	ar.IncrementVersion()
}

// EffectiveStatus projects the status at the given reference time. A
// pending receivable with any unsettled installment past due is reported
// as overdue; the stored status is never changed.
func (ar *AccountReceivable) EffectiveStatus(now time.Time) ObligationStatus {
	if ar.Status == ObligationStatusPending && ar.IsOverdue(now) {
		return ObligationStatusOverdue
	}
	return ar.Status
}

// IsOverdue returns true if any unsettled installment is past due
func (ar *AccountReceivable) IsOverdue(now time.Time) bool {
	if ar.Status != ObligationStatusPending {
		return false
	}
	today := now.Truncate(24 * time.Hour)
	for _, inst := range ar.Installments {
		if !inst.IsSettled() && inst.DueDate.Before(today) {
			return true
		}
	}
	return false
}

// HasSettledInstallments returns true if at least one installment is settled
func (ar *AccountReceivable) HasSettledInstallments() bool {
	for _, inst := range ar.Installments {
		if inst.IsSettled() {
			return true
		}
	}
	return false
}

// SettledAmount returns the sum of settled installment amounts
func (ar *AccountReceivable) SettledAmount() valueobject.Money {
	settled := valueobject.Zero(ar.TotalAmount.Currency())
	for _, inst := range ar.Installments {
		if inst.IsSettled() {
			settled = settled.MustAdd(inst.Amount)
		}
	}
	return settled
}

// OutstandingAmount returns the sum of unsettled installment amounts
func (ar *AccountReceivable) OutstandingAmount() valueobject.Money {
	return ar.TotalAmount.MustSubtract(ar.SettledAmount())
}

// IsPending returns true if the receivable is pending
func (ar *AccountReceivable) IsPending() bool {
	return ar.Status == ObligationStatusPending
}

// IsSettled returns true if the receivable is fully settled
func (ar *AccountReceivable) IsSettled() bool {
	return ar.Status == ObligationStatusSettled
}

// IsCancelled returns true if the receivable is cancelled
func (ar *AccountReceivable) IsCancelled() bool {
	return ar.Status == ObligationStatusCancelled
}

func (ar *AccountReceivable) allInstallmentsSettled() bool {
	for _, inst := range ar.Installments {
		if !inst.IsSettled() {
			return false
		}
	}
	return true
}
