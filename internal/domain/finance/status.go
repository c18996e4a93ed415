// Package finance contains the recurring financial obligations of a tenant:
// accounts payable owed to suppliers and accounts receivable owed by
// customers, both split into installment schedules.
package finance

// ObligationStatus represents the stored lifecycle status of an obligation.
// OVERDUE is deliberately not a stored status: it is projected at read time
// from a pending obligation whose due date has passed.
type ObligationStatus string

const (
	ObligationStatusPending   ObligationStatus = "PENDING"
	ObligationStatusSettled   ObligationStatus = "SETTLED"
	ObligationStatusCancelled ObligationStatus = "CANCELLED"

	// ObligationStatusOverdue is a read-time projection, never persisted
	ObligationStatusOverdue ObligationStatus = "OVERDUE"
)

// IsValid returns true for statuses that may be stored
func (s ObligationStatus) IsValid() bool {
	switch s {
	case ObligationStatusPending, ObligationStatusSettled, ObligationStatusCancelled:
		return true
	}
	return false
}

// IsFinal returns true if no further state transitions are allowed
func (s ObligationStatus) IsFinal() bool {
	return s == ObligationStatusSettled || s == ObligationStatusCancelled
}

// InstallmentStatus represents the status of a single installment
type InstallmentStatus string

const (
	InstallmentStatusPending   InstallmentStatus = "PENDING"
	InstallmentStatusSettled   InstallmentStatus = "SETTLED"
	InstallmentStatusCancelled InstallmentStatus = "CANCELLED"
)
