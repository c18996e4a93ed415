package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	financeapp "github.com/gestor/backend/internal/application/finance"
)

// PayableHandler handles account payable HTTP endpoints
type PayableHandler struct {
	BaseHandler
	service *financeapp.PayableService
}

// NewPayableHandler creates a new payable handler
func NewPayableHandler(service *financeapp.PayableService) *PayableHandler {
	return &PayableHandler{service: service}
}

// Create handles POST /finance/payables
func (h *PayableHandler) Create(c *gin.Context) {
	caller, err := callerContext(c)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	var req financeapp.CreatePayableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.InvalidJSON(c, err)
		return
	}
	req.IdempotencyKey = idempotencyKey(c)

	resp, err := h.service.Create(c.Request.Context(), caller, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, resp)
}

// GetByID handles GET /finance/payables/:id
func (h *PayableHandler) GetByID(c *gin.Context) {
	caller, err := callerContext(c)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid payable ID")
		return
	}

	resp, err := h.service.GetByID(c.Request.Context(), caller, id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, resp)
}

// List handles GET /finance/payables
func (h *PayableHandler) List(c *gin.Context) {
	caller, err := callerContext(c)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	var filter financeapp.ListObligationsFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	page, err := h.service.List(c.Request.Context(), caller, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// Update handles PUT /finance/payables/:id
func (h *PayableHandler) Update(c *gin.Context) {
	caller, err := callerContext(c)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid payable ID")
		return
	}

	var req financeapp.UpdatePayableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.InvalidJSON(c, err)
		return
	}

	resp, err := h.service.Update(c.Request.Context(), caller, id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, resp)
}

// SettleInstallment handles POST /finance/payables/:id/installments/:number/settle
func (h *PayableHandler) SettleInstallment(c *gin.Context) {
	caller, err := callerContext(c)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid payable ID")
		return
	}

	number, err := strconv.Atoi(c.Param("number"))
	if err != nil || number < 1 {
		h.BadRequest(c, "Invalid installment number")
		return
	}

	var req financeapp.SettleInstallmentRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		h.InvalidJSON(c, err)
		return
	}

	resp, err := h.service.SettleInstallment(c.Request.Context(), caller, id, number, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, resp)
}

// Settle handles POST /finance/payables/:id/settle
func (h *PayableHandler) Settle(c *gin.Context) {
	caller, err := callerContext(c)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid payable ID")
		return
	}

	var req financeapp.SettleInstallmentRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		h.InvalidJSON(c, err)
		return
	}

	resp, err := h.service.Settle(c.Request.Context(), caller, id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, resp)
}

// Cancel handles POST /finance/payables/:id/cancel
func (h *PayableHandler) Cancel(c *gin.Context) {
	caller, err := callerContext(c)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid payable ID")
		return
	}

	var req financeapp.CancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.InvalidJSON(c, err)
		return
	}

	resp, err := h.service.Cancel(c.Request.Context(), caller, id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, resp)
}
