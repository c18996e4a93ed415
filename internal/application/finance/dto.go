// Package finance contains application services for accounts payable and
// accounts receivable.
package finance

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gestor/backend/internal/domain/finance"
	"github.com/gestor/backend/internal/domain/shared"
	"github.com/gestor/backend/internal/domain/shared/valueobject"
)

// LineItemRequest represents one detail line in a create or update request
type LineItemRequest struct {
	Description string          `json:"description" binding:"required"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	RefModule   string          `json:"ref_module"`
	RefID       *uuid.UUID      `json:"ref_id"`
}

// RecurrenceRequest represents the installment split parameters
type RecurrenceRequest struct {
	InstallmentCount int `json:"installment_count" binding:"required,min=1"`
	IntervalDays     int `json:"interval_days"`
}

// LineItemResponse represents a detail line in API responses
type LineItemResponse struct {
	ID          uuid.UUID       `json:"id"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	RefModule   string          `json:"ref_module,omitempty"`
	RefID       *uuid.UUID      `json:"ref_id,omitempty"`
}

// InstallmentResponse represents an installment in API responses
type InstallmentResponse struct {
	ID        uuid.UUID       `json:"id"`
	Number    int             `json:"number"`
	Amount    decimal.Decimal `json:"amount"`
	DueDate   time.Time       `json:"due_date"`
	Status    string          `json:"status"`
	SettledAt *time.Time      `json:"settled_at,omitempty"`
}

// ListObligationsFilter defines filtering options for list queries
type ListObligationsFilter struct {
	Search      string     `form:"search"`
	Status      string     `form:"status"`
	PartnerID   *uuid.UUID `form:"partner_id"`
	DueDateFrom *time.Time `form:"due_date_from" time_format:"2006-01-02"`
	DueDateTo   *time.Time `form:"due_date_to" time_format:"2006-01-02"`
	OverdueOnly bool       `form:"overdue_only"`
	Page        int        `form:"page"`
	PageSize    int        `form:"page_size"`
}

func (f ListObligationsFilter) toDomain(now time.Time) finance.ObligationFilter {
	base := shared.DefaultFilter()
	if f.Page > 0 {
		base.Page = f.Page
	}
	if f.PageSize > 0 && f.PageSize <= 100 {
		base.PageSize = f.PageSize
	}
	base.Search = f.Search

	filter := finance.ObligationFilter{
		Filter:       base,
		PartnerID:    f.PartnerID,
		DueDateFrom:  f.DueDateFrom,
		DueDateTo:    f.DueDateTo,
		OverdueOnly:  f.OverdueOnly,
		ReferenceNow: now,
	}
	if f.Status != "" {
		status := finance.ObligationStatus(f.Status)
		filter.Status = &status
	}
	return filter
}

func buildLineItems(reqs []LineItemRequest) ([]*finance.LineItem, error) {
	items := make([]*finance.LineItem, 0, len(reqs))
	for _, r := range reqs {
		item, err := finance.NewLineItem(r.Description, valueobject.NewMoneyBRL(r.Amount))
		if err != nil {
			return nil, err
		}
		if r.RefID != nil {
			item.WithReference(r.RefModule, *r.RefID)
		}
		items = append(items, item)
	}
	return items, nil
}

func toLineItemResponses(items []*finance.LineItem) []LineItemResponse {
	out := make([]LineItemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, LineItemResponse{
			ID:          item.ID,
			Description: item.Description,
			Amount:      item.Amount.Amount(),
			RefModule:   item.RefModule,
			RefID:       item.RefID,
		})
	}
	return out
}

func toInstallmentResponses(installments []*finance.Installment) []InstallmentResponse {
	out := make([]InstallmentResponse, 0, len(installments))
	for _, inst := range installments {
		out = append(out, InstallmentResponse{
			ID:        inst.ID,
			Number:    inst.Number,
			Amount:    inst.Amount.Amount(),
			DueDate:   inst.DueDate,
			Status:    string(inst.Status),
			SettledAt: inst.SettledAt,
		})
	}
	return out
}
