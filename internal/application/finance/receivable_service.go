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

// ReceivableService provides application-level accounts receivable operations
type ReceivableService struct {
	receivableRepo finance.ReceivableRepository
	customerRepo   partner.CustomerRepository
	resolver       *appidentity.TenantResolver
	idempotency    shared.IdempotencyStore
}

// NewReceivableService creates a new ReceivableService
func NewReceivableService(
	receivableRepo finance.ReceivableRepository,
	customerRepo partner.CustomerRepository,
	resolver *appidentity.TenantResolver,
	idempotency shared.IdempotencyStore,
) *ReceivableService {
	return &ReceivableService{
		receivableRepo: receivableRepo,
		customerRepo:   customerRepo,
		resolver:       resolver,
		idempotency:    idempotency,
	}
}

// CreateReceivableRequest represents a request to create an account
// receivable. The total is declared explicitly; line items are optional
// detail and, when present, must sum to the declared total.
type CreateReceivableRequest struct {
	CustomerID     uuid.UUID          `json:"customer_id" binding:"required"`
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

// UpdateReceivableRequest represents a request to update an account
// receivable. Same rules as on the payable side: header fields only; the
// composition, status and settlement date are controlled elsewhere.
type UpdateReceivableRequest struct {
	CustomerID   uuid.UUID          `json:"customer_id" binding:"required"`
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

// ReceivableResponse represents an account receivable in API responses
type ReceivableResponse struct {
	ID              uuid.UUID             `json:"id"`
	TenantID        uuid.UUID             `json:"tenant_id"`
	Description     string                `json:"description"`
	Category        string                `json:"category,omitempty"`
	CustomerID      uuid.UUID             `json:"customer_id"`
	CustomerName    string                `json:"customer_name"`
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

// Create creates a new account receivable for the caller's tenant
func (s *ReceivableService) Create(ctx context.Context, caller domainidentity.CallerContext, req CreateReceivableRequest) (*ReceivableResponse, error) {
	tenantID, err := s.resolver.Require(ctx, caller)
	if err != nil {
		return nil, err
	}

	if req.IdempotencyKey != "" {
		fresh, err := s.idempotency.MarkProcessed(ctx, receivableIdempotencyKey(tenantID, req.IdempotencyKey), idempotencyTTL)
		if err != nil {
			return nil, err
		}
		if !fresh {
			return nil, shared.NewDomainError("ALREADY_EXISTS", "A receivable was already created with this idempotency key")
		}
	}

	customer, err := s.customerRepo.FindByIDForTenant(ctx, req.CustomerID, tenantID)
	if err != nil {
		return nil, err
	}
	if !customer.Active {
		return nil, shared.NewDomainError("INVALID_STATE", "Customer is not active")
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

	receivable, err := finance.NewAccountReceivable(
		tenantID,
		customer.ID,
		customer.Name,
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
	receivable.Category = req.Category
	if req.Notes != "" {
		receivable.Notes = req.Notes
	}

	if err := s.receivableRepo.Save(ctx, receivable); err != nil {
		return nil, err
	}

	return toReceivableResponse(receivable, time.Now()), nil
}

// GetByID retrieves a receivable scoped to the caller's tenant. A
// receivable in another tenant is reported as not found, never forbidden.
func (s *ReceivableService) GetByID(ctx context.Context, caller domainidentity.CallerContext, id uuid.UUID) (*ReceivableResponse, error) {
	tenantID, err := s.resolver.Require(ctx, caller)
	if err != nil {
		return nil, err
	}

	receivable, err := s.receivableRepo.FindByIDForTenant(ctx, id, tenantID)
	if err != nil {
		return nil, err
	}
	return toReceivableResponse(receivable, time.Now()), nil
}

// List retrieves receivables. A global administrator with no tenant
// selected lists across all tenants; everyone else lists within their scope.
func (s *ReceivableService) List(ctx context.Context, caller domainidentity.CallerContext, filter ListObligationsFilter) (shared.Paginated[*ReceivableResponse], error) {
	var empty shared.Paginated[*ReceivableResponse]

	tenantID, err := s.resolver.Resolve(ctx, caller)
	if err != nil {
		return empty, err
	}

	now := time.Now()
	domainFilter := filter.toDomain(now)

	var page shared.Paginated[*finance.AccountReceivable]
	if tenantID == uuid.Nil {
		page, err = s.receivableRepo.FindAll(ctx, domainFilter)
	} else {
		page, err = s.receivableRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	}
	if err != nil {
		return empty, err
	}

	items := make([]*ReceivableResponse, 0, len(page.Items))
	for _, r := range page.Items {
		items = append(items, toReceivableResponse(r, now))
	}
	return shared.NewPaginated(items, page.Total, page.Page, page.PageSize), nil
}

// Update changes the receivable's mutable fields. A payload that tries to
// replace line items, change the recurrence, change the total or move the
// status or settlement date is rejected, exactly as on the payable side.
func (s *ReceivableService) Update(ctx context.Context, caller domainidentity.CallerContext, id uuid.UUID, req UpdateReceivableRequest) (*ReceivableResponse, error) {
	tenantID, err := s.resolver.Require(ctx, caller)
	if err != nil {
		return nil, err
	}

	receivable, err := s.receivableRepo.FindByIDForTenant(ctx, id, tenantID)
	if err != nil {
		return nil, err
	}
	expectedVersion := receivable.GetVersion()

	if len(req.LineItems) > 0 {
		return nil, shared.NewDomainError("INVALID_STATE", "Composition is already fixed; create a new receivable instead")
	}
	if req.Recurrence != nil &&
		(req.Recurrence.InstallmentCount != receivable.Recurrence.InstallmentCount ||
			req.Recurrence.IntervalDays != receivable.Recurrence.IntervalDays) {
		return nil, shared.NewDomainError("INVALID_STATE", "Composition is already fixed; create a new receivable instead")
	}
	if req.TotalAmount != nil && !req.TotalAmount.Equal(receivable.TotalAmount.Amount()) {
		return nil, shared.NewDomainError("INVALID_STATE", "Total cannot change once the installment schedule exists")
	}
	if req.Status != "" && req.Status != string(receivable.Status) {
		return nil, shared.NewDomainError("INVALID_STATE", "Status transitions go through the settle and cancel operations")
	}
	if req.SettledAt != nil && (receivable.SettledAt == nil || !req.SettledAt.Equal(*receivable.SettledAt)) {
		return nil, shared.NewDomainError("INVALID_STATE", "Settlement date is set by the settle operations")
	}

	customer, err := s.customerRepo.FindByIDForTenant(ctx, req.CustomerID, tenantID)
	if err != nil {
		return nil, err
	}
	if !customer.Active {
		return nil, shared.NewDomainError("INVALID_STATE", "Customer is not active")
	}

	if err := receivable.UpdateDetails(customer.ID, customer.Name, req.Description, req.FirstDueDate, req.Category); err != nil {
		return nil, err
	}
	receivable.Notes = req.Notes

	if err := s.receivableRepo.SaveWithLock(ctx, receivable, expectedVersion); err != nil {
		return nil, err
	}
	return toReceivableResponse(receivable, time.Now()), nil
}

// SettleInstallment settles a single installment of the receivable
func (s *ReceivableService) SettleInstallment(ctx context.Context, caller domainidentity.CallerContext, id uuid.UUID, number int, req SettleInstallmentRequest) (*ReceivableResponse, error) {
	tenantID, err := s.resolver.Require(ctx, caller)
	if err != nil {
		return nil, err
	}

	receivable, err := s.receivableRepo.FindByIDForTenant(ctx, id, tenantID)
	if err != nil {
		return nil, err
	}
	expectedVersion := receivable.GetVersion()

	settledAt := time.Now()
	if req.SettledAt != nil {
		settledAt = *req.SettledAt
	}
	if err := receivable.SettleInstallment(number, settledAt); err != nil {
		return nil, err
	}

	if err := s.receivableRepo.SaveWithLock(ctx, receivable, expectedVersion); err != nil {
		return nil, err
	}
	return toReceivableResponse(receivable, time.Now()), nil
}

// Settle settles all remaining installments of the receivable at once
func (s *ReceivableService) Settle(ctx context.Context, caller domainidentity.CallerContext, id uuid.UUID, req SettleInstallmentRequest) (*ReceivableResponse, error) {
	tenantID, err := s.resolver.Require(ctx, caller)
	if err != nil {
		return nil, err
	}

	receivable, err := s.receivableRepo.FindByIDForTenant(ctx, id, tenantID)
	if err != nil {
		return nil, err
	}
	expectedVersion := receivable.GetVersion()

	settledAt := time.Now()
	if req.SettledAt != nil {
		settledAt = *req.SettledAt
	}
	if err := receivable.Settle(settledAt); err != nil {
		return nil, err
	}

	if err := s.receivableRepo.SaveWithLock(ctx, receivable, expectedVersion); err != nil {
		return nil, err
	}
	return toReceivableResponse(receivable, time.Now()), nil
}

// Cancel cancels a pending receivable
func (s *ReceivableService) Cancel(ctx context.Context, caller domainidentity.CallerContext, id uuid.UUID, req CancelRequest) (*ReceivableResponse, error) {
	tenantID, err := s.resolver.Require(ctx, caller)
	if err != nil {
		return nil, err
	}

	receivable, err := s.receivableRepo.FindByIDForTenant(ctx, id, tenantID)
	if err != nil {
		return nil, err
	}
	expectedVersion := receivable.GetVersion()

	if err := receivable.Cancel(req.Reason); err != nil {
		return nil, err
	}

	if err := s.receivableRepo.SaveWithLock(ctx, receivable, expectedVersion); err != nil {
		return nil, err
	}
	return toReceivableResponse(receivable, time.Now()), nil
}

func receivableIdempotencyKey(tenantID uuid.UUID, key string) string {
	return "receivable:create:" + tenantID.String() + ":" + key
}

func toReceivableResponse(ar *finance.AccountReceivable, now time.Time) *ReceivableResponse {
	return &ReceivableResponse{
		ID:              ar.ID,
		TenantID:        ar.TenantID,
		Description:     ar.Description,
		Category:        ar.Category,
		CustomerID:      ar.CustomerID,
		CustomerName:    ar.CustomerName,
		TotalAmount:     ar.TotalAmount.Amount(),
		Currency:        string(ar.TotalAmount.Currency()),
		IssueDate:       ar.IssueDate,
		FirstDueDate:    ar.FirstDueDate,
		Recurrence:      RecurrenceRequest{InstallmentCount: ar.Recurrence.InstallmentCount, IntervalDays: ar.Recurrence.IntervalDays},
		IsRecurring:     ar.Recurrence.IsRecurring(),
		Status:          string(ar.Status),
		EffectiveStatus: string(ar.EffectiveStatus(now)),
		SettledAmount:   ar.SettledAmount().Amount(),
		Outstanding:     ar.OutstandingAmount().Amount(),
		LineItems:       toLineItemResponses(ar.LineItems),
		Installments:    toInstallmentResponses(ar.Installments),
		Notes:           ar.Notes,
		SettledAt:       ar.SettledAt,
		CancelledAt:     ar.CancelledAt,
		CancelReason:    ar.CancelReason,
		CreatedAt:       ar.CreatedAt,
		UpdatedAt:       ar.UpdatedAt,
		Version:         ar.GetVersion(),
	}
}
