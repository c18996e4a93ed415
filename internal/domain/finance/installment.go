package finance

import (
	"time"

	"github.com/gestor/backend/internal/domain/shared"
	"github.com/gestor/backend/internal/domain/shared/valueobject"
)

// MaxInstallments bounds the size of a generated schedule
const MaxInstallments = 360

// Installment is one slice of an obligation's total, due at a specific date
type Installment struct {
	shared.BaseEntity
	Number    int // 1-based position in the schedule
	Amount    valueobject.Money
	DueDate   time.Time
	Status    InstallmentStatus
	SettledAt *time.Time
}

// IsSettled returns true if the installment has been settled
func (i *Installment) IsSettled() bool {
	return i.Status == InstallmentStatusSettled
}

// Settle marks the installment as settled at the given time
func (i *Installment) Settle(at time.Time) error {
	if i.Status == InstallmentStatusSettled {
		return shared.NewDomainError("INVALID_STATE", "installment is already settled")
	}
	if i.Status == InstallmentStatusCancelled {
		return shared.NewDomainError("INVALID_STATE", "cannot settle a cancelled installment")
	}
	i.Status = InstallmentStatusSettled
	i.SettledAt = &at
	return nil
}

// Recurrence describes how an obligation total is split over time
type Recurrence struct {
	InstallmentCount int
	IntervalDays     int
}

// Validate checks the recurrence parameters
func (r Recurrence) Validate() error {
	if r.InstallmentCount < 1 {
		return shared.NewDomainError("INVALID_RECURRENCE", "installment count must be at least 1")
	}
	if r.InstallmentCount > MaxInstallments {
		return shared.NewDomainError("INVALID_RECURRENCE", "installment count exceeds the maximum allowed")
	}
	// zero is legal: every installment falls due on the same day
	if r.IntervalDays < 0 {
		return shared.NewDomainError("INVALID_RECURRENCE", "interval days cannot be negative")
	}
	return nil
}

// IsRecurring reports whether the recurrence splits the total at all
func (r Recurrence) IsRecurring() bool {
	return r.InstallmentCount > 1
}

// GenerateSchedule splits a total into installments via Money.Allocate:
// every installment gets the floor of total/count at the cent, and the
// last one absorbs the rounding remainder so the installments always sum
// exactly to the total. Due dates start at firstDue and advance by the
// recurrence interval.
func GenerateSchedule(total valueobject.Money, recurrence Recurrence, firstDue time.Time) ([]*Installment, error) {
	if err := recurrence.Validate(); err != nil {
		return nil, err
	}
	if !total.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "obligation total must be positive")
	}

	shares, err := total.Allocate(recurrence.InstallmentCount)
	if err != nil {
		return nil, err
	}

	installments := make([]*Installment, 0, len(shares))
	for i, amount := range shares {
		installments = append(installments, &Installment{
			BaseEntity: shared.NewBaseEntity(),
			Number:     i + 1,
			Amount:     amount,
			DueDate:    firstDue.AddDate(0, 0, i*recurrence.IntervalDays),
			Status:     InstallmentStatusPending,
		})
	}
	return installments, nil
}
