package finance

import (
	"strings"

	"github.com/google/uuid"

	"github.com/gestor/backend/internal/domain/shared"
	"github.com/gestor/backend/internal/domain/shared/valueobject"
)

// LineItem is a single detail line of an obligation. The optional reference
// links the line back to the record in another module that originated it,
// such as a purchase or a sale.
type LineItem struct {
	shared.BaseEntity
	Description string
	Amount      valueobject.Money
	RefModule   string
	RefID       *uuid.UUID
}

// NewLineItem creates a new line item with a positive amount
func NewLineItem(description string, amount valueobject.Money) (*LineItem, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, shared.NewDomainError("INVALID_LINE_ITEM", "line item description cannot be empty")
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_LINE_ITEM", "line item amount must be positive")
	}

	return &LineItem{
		BaseEntity:  shared.NewBaseEntity(),
		Description: description,
		Amount:      amount,
	}, nil
}

// WithReference attaches an origin reference to the line item
func (li *LineItem) WithReference(module string, id uuid.UUID) *LineItem {
	li.RefModule = module
	li.RefID = &id
	return li
}

// SumLineItems returns the total of all line item amounts.
// Returns error if the items carry mixed currencies.
func SumLineItems(items []*LineItem) (valueobject.Money, error) {
	if len(items) == 0 {
		return valueobject.ZeroBRL(), nil
	}
	total := valueobject.Zero(items[0].Amount.Currency())
	for _, item := range items {
		var err error
		total, err = total.Add(item.Amount)
		if err != nil {
			return valueobject.Money{}, shared.NewDomainError("INVALID_LINE_ITEM", "line items must share a single currency")
		}
	}
	return total, nil
}
