package finance

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appidentity "github.com/gestor/backend/internal/application/identity"
	"github.com/gestor/backend/internal/domain/finance"
	domainidentity "github.com/gestor/backend/internal/domain/identity"
	"github.com/gestor/backend/internal/domain/partner"
	"github.com/gestor/backend/internal/domain/shared"
)

// ---- in-memory fakes ----

type fakeTenantRepo struct {
	tenants map[uuid.UUID]*domainidentity.Tenant
}

func (r *fakeTenantRepo) FindByID(_ context.Context, id uuid.UUID) (*domainidentity.Tenant, error) {
	t, ok := r.tenants[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return t, nil
}

func (r *fakeTenantRepo) FindByCode(_ context.Context, _ string) (*domainidentity.Tenant, error) {
	return nil, shared.ErrNotFound
}

func (r *fakeTenantRepo) FindAll(_ context.Context, _ shared.Filter) (shared.Paginated[*domainidentity.Tenant], error) {
	return shared.Paginated[*domainidentity.Tenant]{}, nil
}

func (r *fakeTenantRepo) Save(_ context.Context, t *domainidentity.Tenant) error {
	r.tenants[t.ID] = t
	return nil
}

func (r *fakeTenantRepo) ExistsByCode(_ context.Context, _ string) (bool, error) {
	return false, nil
}

type fakeSupplierRepo struct {
	suppliers map[uuid.UUID]*partner.Supplier
}

func (r *fakeSupplierRepo) FindByIDForTenant(_ context.Context, id, tenantID uuid.UUID) (*partner.Supplier, error) {
	s, ok := r.suppliers[id]
	if !ok || s.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}
	return s, nil
}

func (r *fakeSupplierRepo) FindAllForTenant(_ context.Context, _ uuid.UUID, _ shared.Filter) (shared.Paginated[*partner.Supplier], error) {
	return shared.Paginated[*partner.Supplier]{}, nil
}

func (r *fakeSupplierRepo) Save(_ context.Context, s *partner.Supplier) error {
	r.suppliers[s.ID] = s
	return nil
}

type fakePayableRepo struct {
	payables    map[uuid.UUID]*finance.AccountPayable
	findAllHits int
}

func (r *fakePayableRepo) FindByIDForTenant(_ context.Context, id, tenantID uuid.UUID) (*finance.AccountPayable, error) {
	p, ok := r.payables[id]
	if !ok || p.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}
	return p, nil
}

func (r *fakePayableRepo) FindAllForTenant(_ context.Context, tenantID uuid.UUID, filter finance.ObligationFilter) (shared.Paginated[*finance.AccountPayable], error) {
	items := make([]*finance.AccountPayable, 0)
	for _, p := range r.payables {
		if p.TenantID == tenantID {
			items = append(items, p)
		}
	}
	return shared.NewPaginated(items, int64(len(items)), filter.Page, filter.PageSize), nil
}

func (r *fakePayableRepo) FindAll(_ context.Context, filter finance.ObligationFilter) (shared.Paginated[*finance.AccountPayable], error) {
	r.findAllHits++
	items := make([]*finance.AccountPayable, 0, len(r.payables))
	for _, p := range r.payables {
		items = append(items, p)
	}
	return shared.NewPaginated(items, int64(len(items)), filter.Page, filter.PageSize), nil
}

func (r *fakePayableRepo) Save(_ context.Context, p *finance.AccountPayable) error {
	r.payables[p.ID] = p
	return nil
}

func (r *fakePayableRepo) SaveWithLock(_ context.Context, p *finance.AccountPayable, expectedVersion int) error {
	if _, ok := r.payables[p.ID]; !ok {
		return shared.ErrNotFound
	}
	// the aggregate increments its version once per command
	if p.GetVersion() != expectedVersion+1 {
		return shared.ErrConcurrencyConflict
	}
	r.payables[p.ID] = p
	return nil
}

func (r *fakePayableRepo) CountByStatusForTenant(_ context.Context, _ uuid.UUID) (map[finance.ObligationStatus]int64, error) {
	return nil, nil
}

type fakeIdempotencyStore struct {
	keys map[string]bool
}

func (s *fakeIdempotencyStore) MarkProcessed(_ context.Context, key string, _ time.Duration) (bool, error) {
	if s.keys[key] {
		return false, nil
	}
	s.keys[key] = true
	return true, nil
}

func (s *fakeIdempotencyStore) IsProcessed(_ context.Context, key string) (bool, error) {
	return s.keys[key], nil
}

func (s *fakeIdempotencyStore) Close() error { return nil }

// ---- fixtures ----

type payableFixture struct {
	service    *PayableService
	repo       *fakePayableRepo
	tenantRepo *fakeTenantRepo
	tenant     *domainidentity.Tenant
	supplier   *partner.Supplier
	caller     domainidentity.CallerContext
}

func newPayableFixture(t *testing.T) *payableFixture {
	t.Helper()

	tenant, err := domainidentity.NewTenant("acme", "Acme Ltda")
	require.NoError(t, err)

	supplier, err := partner.NewSupplier(tenant.ID, "Imobiliária Central", "12.345.678/0001-00")
	require.NoError(t, err)

	tenantRepo := &fakeTenantRepo{tenants: map[uuid.UUID]*domainidentity.Tenant{tenant.ID: tenant}}
	supplierRepo := &fakeSupplierRepo{suppliers: map[uuid.UUID]*partner.Supplier{supplier.ID: supplier}}
	payableRepo := &fakePayableRepo{payables: make(map[uuid.UUID]*finance.AccountPayable)}
	store := &fakeIdempotencyStore{keys: make(map[string]bool)}

	resolver := appidentity.NewTenantResolver(tenantRepo)
	service := NewPayableService(payableRepo, supplierRepo, resolver, store)

	return &payableFixture{
		service:    service,
		repo:       payableRepo,
		tenantRepo: tenantRepo,
		tenant:     tenant,
		supplier:   supplier,
		caller:     domainidentity.NewTenantCaller(uuid.New(), tenant.ID),
	}
}

func validCreateRequest(supplierID uuid.UUID) CreatePayableRequest {
	return CreatePayableRequest{
		SupplierID:   supplierID,
		Description:  "Aluguel do escritório",
		IssueDate:    time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		FirstDueDate: time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		TotalAmount:  decimal.NewFromFloat(100.00),
		LineItems: []LineItemRequest{
			{Description: "Aluguel", Amount: decimal.NewFromFloat(100.00)},
		},
		Recurrence: &RecurrenceRequest{InstallmentCount: 3, IntervalDays: 30},
	}
}

// ---- tests ----

func TestPayableServiceCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("creates payable with installment schedule", func(t *testing.T) {
		f := newPayableFixture(t)

		resp, err := f.service.Create(ctx, f.caller, validCreateRequest(f.supplier.ID))
		require.NoError(t, err)

		assert.Equal(t, f.tenant.ID, resp.TenantID)
		assert.Equal(t, "PENDING", resp.Status)
		assert.Equal(t, "100", resp.TotalAmount.String())
		require.Len(t, resp.Installments, 3)
		assert.Equal(t, "33.33", resp.Installments[0].Amount.StringFixed(2))
		assert.Equal(t, "33.34", resp.Installments[2].Amount.StringFixed(2))
	})

	t.Run("line items are optional when a total is declared", func(t *testing.T) {
		f := newPayableFixture(t)

		req := validCreateRequest(f.supplier.ID)
		req.LineItems = nil

		resp, err := f.service.Create(ctx, f.caller, req)
		require.NoError(t, err)
		assert.Equal(t, "100", resp.TotalAmount.String())
		assert.Empty(t, resp.LineItems)
		require.Len(t, resp.Installments, 3)
	})

	t.Run("line items that do not sum to the declared total are rejected", func(t *testing.T) {
		f := newPayableFixture(t)

		req := validCreateRequest(f.supplier.ID)
		req.TotalAmount = decimal.NewFromFloat(999.00)

		_, err := f.service.Create(ctx, f.caller, req)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_STATE", domainErr.Code)
	})

	t.Run("missing recurrence yields a single installment at the due date", func(t *testing.T) {
		f := newPayableFixture(t)

		req := validCreateRequest(f.supplier.ID)
		req.Recurrence = nil

		resp, err := f.service.Create(ctx, f.caller, req)
		require.NoError(t, err)
		require.Len(t, resp.Installments, 1)
		assert.Equal(t, "100.00", resp.Installments[0].Amount.StringFixed(2))
		assert.Equal(t, req.FirstDueDate, resp.Installments[0].DueDate)
		assert.False(t, resp.IsRecurring)
	})

	t.Run("unknown supplier is not found", func(t *testing.T) {
		f := newPayableFixture(t)

		_, err := f.service.Create(ctx, f.caller, validCreateRequest(uuid.New()))
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("inactive supplier is rejected", func(t *testing.T) {
		f := newPayableFixture(t)
		f.supplier.Deactivate()

		_, err := f.service.Create(ctx, f.caller, validCreateRequest(f.supplier.ID))

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_STATE", domainErr.Code)
	})

	t.Run("duplicate idempotency key is rejected", func(t *testing.T) {
		f := newPayableFixture(t)

		req := validCreateRequest(f.supplier.ID)
		req.IdempotencyKey = "req-123"

		_, err := f.service.Create(ctx, f.caller, req)
		require.NoError(t, err)

		_, err = f.service.Create(ctx, f.caller, req)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "ALREADY_EXISTS", domainErr.Code)
	})

	t.Run("global admin without tenant selection cannot create", func(t *testing.T) {
		f := newPayableFixture(t)

		admin := domainidentity.NewGlobalAdminCaller(uuid.New(), nil)
		_, err := f.service.Create(ctx, admin, validCreateRequest(f.supplier.ID))

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_STATE", domainErr.Code)
	})
}

func TestPayableServiceGetByID(t *testing.T) {
	ctx := context.Background()

	t.Run("returns own payable with overdue projection", func(t *testing.T) {
		f := newPayableFixture(t)

		created, err := f.service.Create(ctx, f.caller, validCreateRequest(f.supplier.ID))
		require.NoError(t, err)

		resp, err := f.service.GetByID(ctx, f.caller, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created.ID, resp.ID)
		// first due date is in the past relative to the wall clock here,
		// so the stored pending status projects as overdue
		assert.Equal(t, "PENDING", resp.Status)
		assert.Equal(t, "OVERDUE", resp.EffectiveStatus)
	})

	t.Run("cross-tenant read is not found", func(t *testing.T) {
		f := newPayableFixture(t)

		created, err := f.service.Create(ctx, f.caller, validCreateRequest(f.supplier.ID))
		require.NoError(t, err)

		otherTenant, err := domainidentity.NewTenant("other", "Other Ltda")
		require.NoError(t, err)
		f.tenantRepo.tenants[otherTenant.ID] = otherTenant

		stranger := domainidentity.NewTenantCaller(uuid.New(), otherTenant.ID)
		_, err = f.service.GetByID(ctx, stranger, created.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestPayableServiceList(t *testing.T) {
	ctx := context.Background()

	t.Run("tenant user lists only own tenant", func(t *testing.T) {
		f := newPayableFixture(t)

		_, err := f.service.Create(ctx, f.caller, validCreateRequest(f.supplier.ID))
		require.NoError(t, err)

		page, err := f.service.List(ctx, f.caller, ListObligationsFilter{})
		require.NoError(t, err)
		assert.Equal(t, int64(1), page.Total)
		assert.Equal(t, 0, f.repo.findAllHits)
	})

	t.Run("unscoped global admin lists across tenants", func(t *testing.T) {
		f := newPayableFixture(t)

		_, err := f.service.Create(ctx, f.caller, validCreateRequest(f.supplier.ID))
		require.NoError(t, err)

		admin := domainidentity.NewGlobalAdminCaller(uuid.New(), nil)
		page, err := f.service.List(ctx, admin, ListObligationsFilter{})
		require.NoError(t, err)
		assert.Equal(t, int64(1), page.Total)
		assert.Equal(t, 1, f.repo.findAllHits)
	})

	t.Run("scoped global admin lists requested tenant", func(t *testing.T) {
		f := newPayableFixture(t)

		_, err := f.service.Create(ctx, f.caller, validCreateRequest(f.supplier.ID))
		require.NoError(t, err)

		admin := domainidentity.NewGlobalAdminCaller(uuid.New(), &f.tenant.ID)
		page, err := f.service.List(ctx, admin, ListObligationsFilter{})
		require.NoError(t, err)
		assert.Equal(t, int64(1), page.Total)
		assert.Equal(t, 0, f.repo.findAllHits)
	})
}

func TestPayableServiceSettleInstallment(t *testing.T) {
	ctx := context.Background()

	t.Run("settling all installments settles the payable", func(t *testing.T) {
		f := newPayableFixture(t)

		created, err := f.service.Create(ctx, f.caller, validCreateRequest(f.supplier.ID))
		require.NoError(t, err)

		for n := 1; n <= 2; n++ {
			resp, err := f.service.SettleInstallment(ctx, f.caller, created.ID, n, SettleInstallmentRequest{})
			require.NoError(t, err)
			assert.Equal(t, "PENDING", resp.Status)
		}

		resp, err := f.service.SettleInstallment(ctx, f.caller, created.ID, 3, SettleInstallmentRequest{})
		require.NoError(t, err)
		assert.Equal(t, "SETTLED", resp.Status)
		assert.True(t, resp.Outstanding.IsZero())
	})

	t.Run("unknown installment number fails", func(t *testing.T) {
		f := newPayableFixture(t)

		created, err := f.service.Create(ctx, f.caller, validCreateRequest(f.supplier.ID))
		require.NoError(t, err)

		_, err = f.service.SettleInstallment(ctx, f.caller, created.ID, 99, SettleInstallmentRequest{})
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INSTALLMENT_NOT_FOUND", domainErr.Code)
	})
}

func TestPayableServiceUpdate(t *testing.T) {
	ctx := context.Background()

	validUpdateRequest := func(supplierID uuid.UUID) UpdatePayableRequest {
		return UpdatePayableRequest{
			SupplierID:   supplierID,
			Description:  "Aluguel reajustado",
			Category:     "ocupacao",
			FirstDueDate: time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC),
		}
	}

	t.Run("updates mutable fields and keeps the schedule", func(t *testing.T) {
		f := newPayableFixture(t)

		created, err := f.service.Create(ctx, f.caller, validCreateRequest(f.supplier.ID))
		require.NoError(t, err)

		resp, err := f.service.Update(ctx, f.caller, created.ID, validUpdateRequest(f.supplier.ID))
		require.NoError(t, err)

		assert.Equal(t, "Aluguel reajustado", resp.Description)
		assert.Equal(t, "ocupacao", resp.Category)
		assert.Equal(t, created.Version+1, resp.Version)
		// composition is untouched
		assert.Equal(t, "100", resp.TotalAmount.String())
		require.Len(t, resp.Installments, 3)
		assert.Equal(t, created.Installments[0].DueDate, resp.Installments[0].DueDate)
	})

	t.Run("echoing the stored total and recurrence is accepted", func(t *testing.T) {
		f := newPayableFixture(t)

		created, err := f.service.Create(ctx, f.caller, validCreateRequest(f.supplier.ID))
		require.NoError(t, err)

		req := validUpdateRequest(f.supplier.ID)
		total := created.TotalAmount
		req.TotalAmount = &total
		req.Recurrence = &RecurrenceRequest{InstallmentCount: 3, IntervalDays: 30}

		_, err = f.service.Update(ctx, f.caller, created.ID, req)
		assert.NoError(t, err)
	})

	t.Run("new line items are rejected", func(t *testing.T) {
		f := newPayableFixture(t)

		created, err := f.service.Create(ctx, f.caller, validCreateRequest(f.supplier.ID))
		require.NoError(t, err)

		req := validUpdateRequest(f.supplier.ID)
		req.LineItems = []LineItemRequest{
			{Description: "Aluguel", Amount: decimal.NewFromFloat(150.00)},
		}

		_, err = f.service.Update(ctx, f.caller, created.ID, req)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_STATE", domainErr.Code)
	})

	t.Run("changed installment count is rejected", func(t *testing.T) {
		f := newPayableFixture(t)

		created, err := f.service.Create(ctx, f.caller, validCreateRequest(f.supplier.ID))
		require.NoError(t, err)

		req := validUpdateRequest(f.supplier.ID)
		req.Recurrence = &RecurrenceRequest{InstallmentCount: 2, IntervalDays: 30}

		_, err = f.service.Update(ctx, f.caller, created.ID, req)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_STATE", domainErr.Code)
	})

	t.Run("changed total is rejected", func(t *testing.T) {
		f := newPayableFixture(t)

		created, err := f.service.Create(ctx, f.caller, validCreateRequest(f.supplier.ID))
		require.NoError(t, err)

		req := validUpdateRequest(f.supplier.ID)
		other := decimal.NewFromFloat(150.00)
		req.TotalAmount = &other

		_, err = f.service.Update(ctx, f.caller, created.ID, req)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_STATE", domainErr.Code)
	})

	t.Run("status change through update is rejected", func(t *testing.T) {
		f := newPayableFixture(t)

		created, err := f.service.Create(ctx, f.caller, validCreateRequest(f.supplier.ID))
		require.NoError(t, err)

		req := validUpdateRequest(f.supplier.ID)
		req.Status = "SETTLED"

		_, err = f.service.Update(ctx, f.caller, created.ID, req)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_STATE", domainErr.Code)

		stored, err := f.service.GetByID(ctx, f.caller, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "PENDING", stored.Status)
		assert.Nil(t, stored.SettledAt)
	})

	t.Run("settlement date through update is rejected", func(t *testing.T) {
		f := newPayableFixture(t)

		created, err := f.service.Create(ctx, f.caller, validCreateRequest(f.supplier.ID))
		require.NoError(t, err)

		req := validUpdateRequest(f.supplier.ID)
		at := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
		req.SettledAt = &at

		_, err = f.service.Update(ctx, f.caller, created.ID, req)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_STATE", domainErr.Code)
	})

	t.Run("echoing the stored status is accepted", func(t *testing.T) {
		f := newPayableFixture(t)

		created, err := f.service.Create(ctx, f.caller, validCreateRequest(f.supplier.ID))
		require.NoError(t, err)

		req := validUpdateRequest(f.supplier.ID)
		req.Status = created.Status

		_, err = f.service.Update(ctx, f.caller, created.ID, req)
		assert.NoError(t, err)
	})

	t.Run("mutable update still works after a settlement", func(t *testing.T) {
		f := newPayableFixture(t)

		created, err := f.service.Create(ctx, f.caller, validCreateRequest(f.supplier.ID))
		require.NoError(t, err)

		_, err = f.service.SettleInstallment(ctx, f.caller, created.ID, 1, SettleInstallmentRequest{})
		require.NoError(t, err)

		resp, err := f.service.Update(ctx, f.caller, created.ID, validUpdateRequest(f.supplier.ID))
		require.NoError(t, err)
		assert.Equal(t, "SETTLED", resp.Installments[0].Status)
	})

	t.Run("update after cancel fails", func(t *testing.T) {
		f := newPayableFixture(t)

		created, err := f.service.Create(ctx, f.caller, validCreateRequest(f.supplier.ID))
		require.NoError(t, err)

		_, err = f.service.Cancel(ctx, f.caller, created.ID, CancelRequest{Reason: "lançamento duplicado"})
		require.NoError(t, err)

		_, err = f.service.Update(ctx, f.caller, created.ID, validUpdateRequest(f.supplier.ID))
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_STATE", domainErr.Code)
	})
}

func TestPayableServiceCancel(t *testing.T) {
	ctx := context.Background()

	f := newPayableFixture(t)

	created, err := f.service.Create(ctx, f.caller, validCreateRequest(f.supplier.ID))
	require.NoError(t, err)

	resp, err := f.service.Cancel(ctx, f.caller, created.ID, CancelRequest{Reason: "lançamento duplicado"})
	require.NoError(t, err)
	assert.Equal(t, "CANCELLED", resp.Status)

	_, err = f.service.Cancel(ctx, f.caller, created.ID, CancelRequest{Reason: "de novo"})
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_STATE", domainErr.Code)
}
