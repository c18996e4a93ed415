package finance

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	appidentity "github.com/gestor/backend/internal/application/identity"
	"github.com/gestor/backend/internal/domain/finance"
	domainidentity "github.com/gestor/backend/internal/domain/identity"
	"github.com/gestor/backend/internal/domain/partner"
	"github.com/gestor/backend/internal/domain/shared"
	"github.com/gestor/backend/internal/domain/shared/valueobject"
)

// idempotencyTTL is how long a creation key stays reserved
const idempotencyTTL = 24 * time.Hour

// PayableService provides application-level accounts payable operations
type PayableService struct {
	payableRepo  finance.PayableRepository
	supplierRepo partner.SupplierRepository
	resolver     *appidentity.TenantResolver
	idempotency  shared.IdempotencyStore
}

// NewPayableService creates a new PayableService
func NewPayableService(
	payableRepo finance.PayableRepository,
	supplierRepo partner.SupplierRepository,
	resolver *appidentity.TenantResolver,
	idempotency shared.IdempotencyStore,
) *PayableService {
	return &PayableService{
		payableRepo:  payableRepo,
		supplierRepo: supplierRepo,
		resolver:     resolver,
		idempotency:  idempotency,
	}
}

// CreatePayableRequest represents a request to create an account payable.
// The total is declared explicitly; line items are optional detail and,
// when present, must sum to the declared total.
type CreatePayableRequest struct {
	SupplierID     uuid.UUID          `json:"supplier_id" binding:"required"`
	Description    string             `json:"description" binding:"required"`
	Category       string             `json:"category"`
	IssueDate      time.Time          `json:"issue_date" binding:"required"`
	FirstDueDate   time.Time          `json:"first_due_date" binding:"required"`
	TotalAmount    decimal.Decimal    `json:"total_amount" binding:"required"`
	LineItems      []LineItemRequest  `json:"line_items" binding:"omitempty,dive"`
	Recurrence     *RecurrenceRequest `json:"recurrence"`
	Notes          string             `json:"notes"`
	IdempotencyKey string             `json:"-"` // Set from header by the handler
}

// UpdatePayableRequest represents a request to update an account payable.
// Only header fields can change; the total, line items, installment
// schedule, status and settlement date are controlled elsewhere. Clients
// may echo the stored values, but any attempt to change them is rejected.
type UpdatePayableRequest struct {
	SupplierID   uuid.UUID          `json:"supplier_id" binding:"required"`
	Description  string             `json:"description" binding:"required"`
	Category     string             `json:"category"`
	FirstDueDate time.Time          `json:"first_due_date" binding:"required"`
	TotalAmount  *decimal.Decimal   `json:"total_amount"`
	LineItems    []LineItemRequest  `json:"line_items"`
	Recurrence   *RecurrenceRequest `json:"recurrence"`
	Status       string             `json:"status"`
	SettledAt    *time.Time         `json:"settled_at"`
	Notes        string             `json:"notes"`
}

// SettleInstallmentRequest represents a request to settle one installment
type SettleInstallmentRequest struct {
	SettledAt *time.Time `json:"settled_at"`
}

// CancelRequest represents a request to cancel an obligation
type CancelRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// PayableResponse represents an account payable in API responses
type PayableResponse struct {
	ID              uuid.UUID             `json:"id"`
	TenantID        uuid.UUID             `json:"tenant_id"`
	Description     string                `json:"description"`
	Category        string                `json:"category,omitempty"`
	SupplierID      uuid.UUID             `json:"supplier_id"`
	SupplierName    string                `json:"supplier_name"`
	TotalAmount     decimal.Decimal       `json:"total_amount"`
	Currency        string                `json:"currency"`
	IssueDate       time.Time             `json:"issue_date"`
	FirstDueDate    time.Time             `json:"first_due_date"`
	Recurrence      RecurrenceRequest     `json:"recurrence"`
	IsRecurring     bool                  `json:"is_recurring"`
	Status          string                `json:"status"`
	EffectiveStatus string                `json:"effective_status"`
	SettledAmount   decimal.Decimal       `json:"settled_amount"`
	Outstanding     decimal.Decimal       `json:"outstanding_amount"`
	LineItems       []LineItemResponse    `json:"line_items"`
	Installments    []InstallmentResponse `json:"installments"`
	Notes           string                `json:"notes,omitempty"`
	SettledAt       *time.Time            `json:"settled_at,omitempty"`
	CancelledAt     *time.Time            `json:"cancelled_at,omitempty"`
	CancelReason    string                `json:"cancel_reason,omitempty"`
	CreatedAt       time.Time             `json:"created_at"`
	UpdatedAt       time.Time             `json:"updated_at"`
	Version         int                   `json:"version"`
}

// Create creates a new account payable for the caller's tenant
func (s *PayableService) Create(ctx context.Context, caller domainidentity.CallerContext, req CreatePayableRequest) (*PayableResponse, error) {
	tenantID, err := s.resolver.Require(ctx, caller)
	if err != nil {
		return nil, err
	}

	if req.IdempotencyKey != "" {
		fresh, err := s.idempotency.MarkProcessed(ctx, payableIdempotencyKey(tenantID, req.IdempotencyKey), idempotencyTTL)
		if err != nil {
			return nil, err
		}
		if !fresh {
			return nil, shared.NewDomainError("ALREADY_EXISTS", "A payable was already created with this idempotency key")
		}
	}

	supplier, err := s.supplierRepo.FindByIDForTenant(ctx, req.SupplierID, tenantID)
	if err != nil {
		return nil, err
	}
	if !supplier.Active {
		return nil, shared.NewDomainError("INVALID_STATE", "Supplier is not active")
	}

	items, err := buildLineItems(req.LineItems)
	if err != nil {
		return nil, err
	}

	// no explicit recurrence means a single installment at the due date
	recurrence := finance.Recurrence{InstallmentCount: 1}
	if req.Recurrence != nil {
		recurrence = finance.Recurrence{
			InstallmentCount: req.Recurrence.InstallmentCount,
			IntervalDays:     req.Recurrence.IntervalDays,
		}
	}

	payable, err := finance.NewAccountPayable(
		tenantID,
		supplier.ID,
		supplier.Name,
		req.Description,
		valueobject.NewMoneyBRL(req.TotalAmount),
		items,
		recurrence,
		req.IssueDate,
		req.FirstDueDate,
	)
	if err != nil {
		return nil, err
	}
	payable.Category = req.Category
	if req.Notes != "" {
		payable.Notes = req.Notes
	}

	if err := s.payableRepo.Save(ctx, payable); err != nil {
		return nil, err
	}

	return toPayableResponse(payable, time.Now()), nil
}

// GetByID retrieves a payable scoped to the caller's tenant. A payable in
// another tenant is reported as not found, never as forbidden.
func (s *PayableService) GetByID(ctx context.Context, caller domainidentity.CallerContext, id uuid.UUID) (*PayableResponse, error) {
	tenantID, err := s.resolver.Require(ctx, caller)
	if err != nil {
		return nil, err
	}

	payable, err := s.payableRepo.FindByIDForTenant(ctx, id, tenantID)
	if err != nil {
		return nil, err
	}
	return toPayableResponse(payable, time.Now()), nil
}

// List retrieves payables. A global administrator with no tenant selected
// lists across all tenants; everyone else lists within their tenant scope.
func (s *PayableService) List(ctx context.Context, caller domainidentity.CallerContext, filter ListObligationsFilter) (shared.Paginated[*PayableResponse], error) {
	var empty shared.Paginated[*PayableResponse]

	tenantID, err := s.resolver.Resolve(ctx, caller)
	if err != nil {
		return empty, err
	}

	now := time.Now()
	domainFilter := filter.toDomain(now)

	var page shared.Paginated[*finance.AccountPayable]
	if tenantID == uuid.Nil {
		page, err = s.payableRepo.FindAll(ctx, domainFilter)
	} else {
		page, err = s.payableRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	}
	if err != nil {
		return empty, err
	}

	items := make([]*PayableResponse, 0, len(page.Items))
	for _, p := range page.Items {
		items = append(items, toPayableResponse(p, now))
	}
	return shared.NewPaginated(items, page.Total, page.Page, page.PageSize), nil
}

// Update changes the payable's mutable fields. The installment schedule
// is pinned at creation, so a payload that tries to replace line items,
// change the recurrence or change the total is rejected outright. The
// same goes for status and settlement date, which only the settle and
// cancel operations may move.
func (s *PayableService) Update(ctx context.Context, caller domainidentity.CallerContext, id uuid.UUID, req UpdatePayableRequest) (*PayableResponse, error) {
	tenantID, err := s.resolver.Require(ctx, caller)
	if err != nil {
		return nil, err
	}

	payable, err := s.payableRepo.FindByIDForTenant(ctx, id, tenantID)
	if err != nil {
		return nil, err
	}
	expectedVersion := payable.GetVersion()

	if len(req.LineItems) > 0 {
		return nil, shared.NewDomainError("INVALID_STATE", "Composition is already fixed; create a new payable instead")
	}
	if req.Recurrence != nil &&
		(req.Recurrence.InstallmentCount != payable.Recurrence.InstallmentCount ||
			req.Recurrence.IntervalDays != payable.Recurrence.IntervalDays) {
		return nil, shared.NewDomainError("INVALID_STATE", "Composition is already fixed; create a new payable instead")
	}
	if req.TotalAmount != nil && !req.TotalAmount.Equal(payable.TotalAmount.Amount()) {
		return nil, shared.NewDomainError("INVALID_STATE", "Total cannot change once the installment schedule exists")
	}
	if req.Status != "" && req.Status != string(payable.Status) {
		return nil, shared.NewDomainError("INVALID_STATE", "Status transitions go through the settle and cancel operations")
	}
	if req.SettledAt != nil && (payable.SettledAt == nil || !req.SettledAt.Equal(*payable.SettledAt)) {
		return nil, shared.NewDomainError("INVALID_STATE", "Settlement date is set by the settle operations")
	}

	supplier, err := s.supplierRepo.FindByIDForTenant(ctx, req.SupplierID, tenantID)
	if err != nil {
		return nil, err
	}
	if !supplier.Active {
		return nil, shared.NewDomainError("INVALID_STATE", "Supplier is not active")
	}

	if err := payable.UpdateDetails(supplier.ID, supplier.Name, req.Description, req.FirstDueDate, req.Category); err != nil {
		return nil, err
	}
	payable.Notes = req.Notes

	if err := s.payableRepo.SaveWithLock(ctx, payable, expectedVersion); err != nil {
		return nil, err
	}
	return toPayableResponse(payable, time.Now()), nil
}

// SettleInstallment settles a single installment of the payable
func (s *PayableService) SettleInstallment(ctx context.Context, caller domainidentity.CallerContext, id uuid.UUID, number int, req SettleInstallmentRequest) (*PayableResponse, error) {
	tenantID, err := s.resolver.Require(ctx, caller)
	if err != nil {
		return nil, err
	}

	payable, err := s.payableRepo.FindByIDForTenant(ctx, id, tenantID)
	if err != nil {
		return nil, err
	}
	expectedVersion := payable.GetVersion()

	settledAt := time.Now()
	if req.SettledAt != nil {
		settledAt = *req.SettledAt
	}
	if err := payable.SettleInstallment(number, settledAt); err != nil {
		return nil, err
	}

	if err := s.payableRepo.SaveWithLock(ctx, payable, expectedVersion); err != nil {
		return nil, err
	}
	return toPayableResponse(payable, time.Now()), nil
}

// Settle settles all remaining installments of the payable at once
func (s *PayableService) Settle(ctx context.Context, caller domainidentity.CallerContext, id uuid.UUID, req SettleInstallmentRequest) (*PayableResponse, error) {
	tenantID, err := s.resolver.Require(ctx, caller)
	if err != nil {
		return nil, err
	}

	payable, err := s.payableRepo.FindByIDForTenant(ctx, id, tenantID)
	if err != nil {
		return nil, err
	}
	expectedVersion := payable.GetVersion()

	settledAt := time.Now()
	if req.SettledAt != nil {
		settledAt = *req.SettledAt
	}
	if err := payable.Settle(settledAt); err != nil {
		return nil, err
	}

	if err := s.payableRepo.SaveWithLock(ctx, payable, expectedVersion); err != nil {
		return nil, err
	}
	return toPayableResponse(payable, time.Now()), nil
}

// Cancel cancels a pending payable
func (s *PayableService) Cancel(ctx context.Context, caller domainidentity.CallerContext, id uuid.UUID, req CancelRequest) (*PayableResponse, error) {
	tenantID, err := s.resolver.Require(ctx, caller)
	if err != nil {
		return nil, err
	}

	payable, err := s.payableRepo.FindByIDForTenant(ctx, id, tenantID)
	if err != nil {
		return nil, err
	}
	expectedVersion := payable.GetVersion()

	if err := payable.Cancel(req.Reason); err != nil {
		return nil, err
	}

	if err := s.payableRepo.SaveWithLock(ctx, payable, expectedVersion); err != nil {
		return nil, err
	}
	return toPayableResponse(payable, time.Now()), nil
}

func payableIdempotencyKey(tenantID uuid.UUID, key string) string {
	return "payable:create:" + tenantID.String() + ":" + key
}

func toPayableResponse(ap *finance.AccountPayable, now time.Time) *PayableResponse {
	return &PayableResponse{
		ID:              ap.ID,
		TenantID:        ap.TenantID,
		Description:     ap.Description,
		Category:        ap.Category,
		SupplierID:      ap.SupplierID,
		SupplierName:    ap.SupplierName,
		TotalAmount:     ap.TotalAmount.Amount(),
		Currency:        string(ap.TotalAmount.Currency()),
		IssueDate:       ap.IssueDate,
		FirstDueDate:    ap.FirstDueDate,
		Recurrence:      RecurrenceRequest{InstallmentCount: ap.Recurrence.InstallmentCount, IntervalDays: ap.Recurrence.IntervalDays},
		IsRecurring:     ap.Recurrence.IsRecurring(),
		Status:          string(ap.Status),
		EffectiveStatus: string(ap.EffectiveStatus(now)),
		SettledAmount:   ap.SettledAmount().Amount(),
		Outstanding:     ap.OutstandingAmount().Amount(),
		LineItems:       toLineItemResponses(ap.LineItems),
		Installments:    toInstallmentResponses(ap.Installments),
		Notes:           ap.Notes,
		SettledAt:       ap.SettledAt,
		CancelledAt:     ap.CancelledAt,
		CancelReason:    ap.CancelReason,
		CreatedAt:       ap.CreatedAt,
		UpdatedAt:       ap.UpdatedAt,
		Version:         ap.GetVersion(),
	}
}
